package migrate

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/innerfold/parts-service/internal/config"
	registrymigrate "github.com/innerfold/parts-service/internal/registry/migrate"

	// Import plugins to trigger init() registration of their migrators.
	// Record store plugins register their own migrators alongside their
	// primary interface.
	_ "github.com/innerfold/parts-service/internal/plugin/recordstore/postgres"
	_ "github.com/innerfold/parts-service/internal/plugin/recordstore/sqlite"
)

// Command returns the migrate sub-command.
func Command() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Run database migrations",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "db-url",
				Sources:  cli.EnvVars("PARTS_SERVICE_DB_URL"),
				Usage:    "Database connection URL (postgres URL or sqlite file path)",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "db-kind",
				Sources: cli.EnvVars("PARTS_SERVICE_DB_KIND"),
				Usage:   "Record store backend (postgres|sqlite)",
				Value:   "postgres",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg := config.DefaultConfig()
			cfg.DBURL = cmd.String("db-url")
			cfg.DatastoreType = cmd.String("db-kind")
			ctx = config.WithContext(ctx, &cfg)

			log.Info("Running migrations...")
			if err := registrymigrate.RunAll(ctx); err != nil {
				return err
			}
			log.Info("All migrations completed successfully")
			return nil
		},
	}
}
