// Package postgres registers the postgres record store backend.
package postgres

import (
	"context"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/innerfold/parts-service/internal/config"
	"github.com/innerfold/parts-service/internal/plugin/recordstore/gormstore"
	registrymigrate "github.com/innerfold/parts-service/internal/registry/migrate"
	"github.com/innerfold/parts-service/internal/registry/recordstore"
)

func init() {
	recordstore.Register(recordstore.Plugin{
		Name:   "postgres",
		Loader: load,
	})
	registrymigrate.Register(registrymigrate.Plugin{
		Order:    0,
		Migrator: migrator{},
	})
}

func load(ctx context.Context) (recordstore.RecordStore, error) {
	db, err := open(ctx)
	if err != nil {
		return nil, err
	}
	return gormstore.New(db), nil
}

func open(ctx context.Context) (*gorm.DB, error) {
	cfg := config.FromContext(ctx)
	if cfg == nil || cfg.DBURL == "" {
		return nil, fmt.Errorf("postgres: DB_URL is required")
	}
	db, err := gorm.Open(postgres.Open(cfg.DBURL), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}
	return db, nil
}

type migrator struct{}

func (migrator) Name() string { return "postgres" }

func (migrator) Migrate(ctx context.Context) error {
	cfg := config.FromContext(ctx)
	if cfg == nil || cfg.DatastoreType != "postgres" {
		return nil
	}
	db, err := open(ctx)
	if err != nil {
		return err
	}
	return gormstore.Migrate(ctx, db)
}
