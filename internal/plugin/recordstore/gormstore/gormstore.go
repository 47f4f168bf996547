// Package gormstore implements the generic keyed record store over a gorm
// DB handle. The postgres and sqlite plugins open their dialector and wrap
// it with this store, so both backends share one implementation.
package gormstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/innerfold/parts-service/internal/model"
	"github.com/innerfold/parts-service/internal/registry/recordstore"
)

// Store is a RecordStore backed by a gorm DB.
type Store struct {
	db *gorm.DB
}

// New wraps a gorm DB handle.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Insert(ctx context.Context, table string, row recordstore.Row) (recordstore.Row, error) {
	stored := recordstore.Row{}
	for k, v := range row {
		stored[k] = v
	}
	id, ok := stored["id"].(string)
	if !ok || id == "" {
		id = uuid.NewString()
		stored["id"] = id
	}
	if err := s.db.WithContext(ctx).Table(table).Create(stored).Error; err != nil {
		return nil, &recordstore.StorageError{Op: "insert " + table, Err: err}
	}
	return s.Fetch(ctx, table, id)
}

func (s *Store) Fetch(ctx context.Context, table, id string) (recordstore.Row, error) {
	row := recordstore.Row{}
	err := s.db.WithContext(ctx).Table(table).Where("id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, &recordstore.StorageError{Op: "fetch " + table, Err: err}
	}
	return row, nil
}

func (s *Store) Update(ctx context.Context, table, id string, patch recordstore.Row) (recordstore.Row, error) {
	res := s.db.WithContext(ctx).Table(table).Where("id = ?", id).Updates(patch)
	if res.Error != nil {
		return nil, &recordstore.StorageError{Op: "update " + table, Err: res.Error}
	}
	if res.RowsAffected == 0 {
		// Distinguish a missing row from a no-op patch.
		existing, err := s.Fetch(ctx, table, id)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			return nil, &recordstore.NotFoundError{Table: table, ID: id}
		}
	}
	return s.Fetch(ctx, table, id)
}

func (s *Store) Delete(ctx context.Context, table, id string) error {
	// Table names are internal constants, never caller input.
	if err := s.db.WithContext(ctx).Exec(fmt.Sprintf("DELETE FROM %s WHERE id = ?", table), id).Error; err != nil {
		return &recordstore.StorageError{Op: "delete " + table, Err: err}
	}
	return nil
}

func (s *Store) List(ctx context.Context, table string, filter recordstore.Row, limit int) ([]recordstore.Row, error) {
	q := s.db.WithContext(ctx).Table(table)
	for col, v := range filter {
		q = q.Where(fmt.Sprintf("%s = ?", col), v)
	}
	q = q.Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var rows []recordstore.Row
	if err := q.Find(&rows).Error; err != nil {
		return nil, &recordstore.StorageError{Op: "list " + table, Err: err}
	}
	return rows, nil
}

// Migrate creates/updates the schema for all typed models.
func Migrate(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).AutoMigrate(
		&model.MutationRecord{},
		&model.Part{},
		&model.Relationship{},
	)
}
