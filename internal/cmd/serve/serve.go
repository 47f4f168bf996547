package serve

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/innerfold/parts-service/internal/config"
	registrydocstore "github.com/innerfold/parts-service/internal/registry/docstore"
	registryrecordstore "github.com/innerfold/parts-service/internal/registry/recordstore"

	// Import all plugins to trigger init() registration
	_ "github.com/innerfold/parts-service/internal/plugin/docstore/fsstore"
	_ "github.com/innerfold/parts-service/internal/plugin/docstore/s3store"
	_ "github.com/innerfold/parts-service/internal/plugin/recordstore/memstore"
	_ "github.com/innerfold/parts-service/internal/plugin/recordstore/postgres"
	_ "github.com/innerfold/parts-service/internal/plugin/recordstore/sqlite"
	_ "github.com/innerfold/parts-service/internal/plugin/route/system"
)

// Command returns the serve sub-command.
func Command() *cli.Command {
	cfg := config.DefaultConfig()
	var readHeaderTimeoutSecs int = 5
	var rollbackWindowMinutes int = int(cfg.RollbackWindow / time.Minute)
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the parts service HTTP server",
		Flags: flags(&cfg, &readHeaderTimeoutSecs, &rollbackWindowMinutes),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg.Listener.ReadHeaderTimeout = time.Duration(readHeaderTimeoutSecs) * time.Second
			cfg.RollbackWindow = time.Duration(rollbackWindowMinutes) * time.Minute
			if !cmd.IsSet("management-port") {
				cfg.ManagementPort = 0
			}
			return run(config.WithContext(ctx, &cfg), cfg)
		},
	}
}

func flags(cfg *config.Config, readHeaderTimeoutSecs, rollbackWindowMinutes *int) []cli.Flag {
	return []cli.Flag{

		// ── Server ────────────────────────────────────────────────
		&cli.IntFlag{
			Name:        "port",
			Category:    "Server:",
			Sources:     cli.EnvVars("PARTS_SERVICE_PORT"),
			Destination: &cfg.Listener.Port,
			Value:       cfg.Listener.Port,
			Usage:       "HTTP server port",
		},
		&cli.IntFlag{
			Name:        "management-port",
			Category:    "Server:",
			Sources:     cli.EnvVars("PARTS_SERVICE_MANAGEMENT_PORT"),
			Destination: &cfg.ManagementPort,
			Usage:       "Dedicated port for health and metrics; when unset, served on the main port",
		},
		&cli.IntFlag{
			Name:        "read-header-timeout-seconds",
			Category:    "Server:",
			Sources:     cli.EnvVars("PARTS_SERVICE_READ_HEADER_TIMEOUT_SECONDS"),
			Destination: readHeaderTimeoutSecs,
			Value:       *readHeaderTimeoutSecs,
			Usage:       "HTTP read header timeout in seconds",
		},
		&cli.BoolFlag{
			Name:        "management-access-log",
			Category:    "Server:",
			Sources:     cli.EnvVars("PARTS_SERVICE_MANAGEMENT_ACCESS_LOG"),
			Destination: &cfg.AccessLog,
			Usage:       "Enable HTTP access logging for management endpoints (/health, /ready, /metrics)",
		},

		// ── Database ───────────────────────────────────────────────
		&cli.StringFlag{
			Name:        "db-kind",
			Category:    "Database:",
			Sources:     cli.EnvVars("PARTS_SERVICE_DB_KIND"),
			Destination: &cfg.DatastoreType,
			Value:       cfg.DatastoreType,
			Usage:       "Record store backend (" + strings.Join(registryrecordstore.Names(), "|") + ")",
		},
		&cli.StringFlag{
			Name:        "db-url",
			Category:    "Database:",
			Sources:     cli.EnvVars("PARTS_SERVICE_DB_URL"),
			Destination: &cfg.DBURL,
			Usage:       "Database connection URL (postgres URL or sqlite file path)",
		},
		&cli.BoolFlag{
			Name:        "db-migrate",
			Category:    "Database:",
			Sources:     cli.EnvVars("PARTS_SERVICE_DB_MIGRATE"),
			Destination: &cfg.DatastoreMigrateAtStart,
			Value:       cfg.DatastoreMigrateAtStart,
			Usage:       "Run schema migrations on startup",
		},

		// ── Document Storage ──────────────────────────────────────
		&cli.StringFlag{
			Name:        "documents-kind",
			Category:    "Document Storage:",
			Sources:     cli.EnvVars("PARTS_SERVICE_DOCUMENTS_KIND"),
			Destination: &cfg.DocstoreType,
			Value:       cfg.DocstoreType,
			Usage:       "Document store backend (" + strings.Join(registrydocstore.Names(), "|") + ")",
		},
		&cli.StringFlag{
			Name:        "documents-root",
			Category:    "Document Storage:",
			Sources:     cli.EnvVars("PARTS_SERVICE_DOCUMENTS_ROOT"),
			Destination: &cfg.DocstoreRoot,
			Value:       cfg.DocstoreRoot,
			Usage:       "Root directory for the fs document store",
		},
		&cli.StringFlag{
			Name:        "documents-s3-bucket",
			Category:    "Document Storage:",
			Sources:     cli.EnvVars("PARTS_SERVICE_DOCUMENTS_S3_BUCKET"),
			Destination: &cfg.S3Bucket,
			Usage:       "S3 bucket for the s3 document store",
		},
		&cli.StringFlag{
			Name:        "documents-s3-prefix",
			Category:    "Document Storage:",
			Sources:     cli.EnvVars("PARTS_SERVICE_DOCUMENTS_S3_PREFIX"),
			Destination: &cfg.S3Prefix,
			Usage:       "Key prefix for the s3 document store",
		},
		&cli.BoolFlag{
			Name:        "documents-s3-use-path-style",
			Category:    "Document Storage:",
			Sources:     cli.EnvVars("PARTS_SERVICE_DOCUMENTS_S3_USE_PATH_STYLE"),
			Destination: &cfg.S3UsePathStyle,
			Usage:       "Use path-style S3 addressing (required for LocalStack/MinIO)",
		},

		// ── Rollback ──────────────────────────────────────────────
		&cli.IntFlag{
			Name:        "rollback-window-minutes",
			Category:    "Rollback:",
			Sources:     cli.EnvVars("PARTS_SERVICE_ROLLBACK_WINDOW_MINUTES"),
			Destination: rollbackWindowMinutes,
			Value:       *rollbackWindowMinutes,
			Usage:       "Default lookback window for rollback-by-description",
		},
		&cli.IntFlag{
			Name:        "rollback-candidate-limit",
			Category:    "Rollback:",
			Sources:     cli.EnvVars("PARTS_SERVICE_ROLLBACK_CANDIDATE_LIMIT"),
			Destination: &cfg.RollbackCandidateLimit,
			Value:       cfg.RollbackCandidateLimit,
			Usage:       "How many recent actions are matched against a rollback description",
		},

		// ── Monitoring ────────────────────────────────────────────
		&cli.StringFlag{
			Name:        "metrics-labels",
			Category:    "Monitoring:",
			Sources:     cli.EnvVars("PARTS_SERVICE_METRICS_LABELS"),
			Destination: &cfg.MetricsLabels,
			Value:       cfg.MetricsLabels,
			Usage:       "Comma-separated key=value pairs added as constant labels to all Prometheus metrics. Supports ${VAR} expansion.",
		},
	}
}

func run(ctx context.Context, cfg config.Config) error {
	srv, err := StartServer(ctx, &cfg)
	if err != nil {
		return err
	}

	<-ctx.Done()
	log.Info("Shutting down...")

	drainCtx, drainCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer drainCancel()
	if err := srv.Shutdown(drainCtx); err != nil {
		log.Error("Shutdown error", "err", err)
	}
	log.Info("Server stopped")
	return nil
}
