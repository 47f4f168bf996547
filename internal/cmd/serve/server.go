package serve

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/innerfold/parts-service/internal/audit"
	"github.com/innerfold/parts-service/internal/config"
	storemetrics "github.com/innerfold/parts-service/internal/plugin/recordstore/metrics"
	"github.com/innerfold/parts-service/internal/plugin/route/actions"
	"github.com/innerfold/parts-service/internal/plugin/route/documents"
	"github.com/innerfold/parts-service/internal/plugin/route/parts"
	routesystem "github.com/innerfold/parts-service/internal/plugin/route/system"
	"github.com/innerfold/parts-service/internal/profile"
	registrydocstore "github.com/innerfold/parts-service/internal/registry/docstore"
	registrymigrate "github.com/innerfold/parts-service/internal/registry/migrate"
	registryrecordstore "github.com/innerfold/parts-service/internal/registry/recordstore"
	registryroute "github.com/innerfold/parts-service/internal/registry/route"
	"github.com/innerfold/parts-service/internal/security"
)

// Server holds the running server and its subsystems.
type Server struct {
	Config          *config.Config
	Store           registryrecordstore.RecordStore
	Docs            registrydocstore.DocumentStore
	Router          *gin.Engine
	closeMain       func(context.Context) error
	closeManagement func(context.Context) error
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.closeManagement != nil {
		_ = s.closeManagement(ctx)
	}
	return s.closeMain(ctx)
}

// StartServer initializes all subsystems and starts the HTTP server.
func StartServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	log.Info("Starting parts service",
		"httpPort", cfg.Listener.Port,
		"db", cfg.DatastoreType,
		"documents", cfg.DocstoreType,
	)

	// Initialize Prometheus metrics with configured constant labels.
	metricsLabels, err := security.ParseMetricsLabels(cfg.MetricsLabels)
	if err != nil {
		return nil, fmt.Errorf("invalid --metrics-labels: %w", err)
	}
	security.InitMetrics(metricsLabels)

	// Run migrations
	if cfg.DatastoreMigrateAtStart {
		if err := registrymigrate.RunAll(ctx); err != nil {
			return nil, fmt.Errorf("migrations failed: %w", err)
		}
	}

	// Initialize record store
	storeLoader, err := registryrecordstore.Select(cfg.DatastoreType)
	if err != nil {
		return nil, err
	}
	store, err := storeLoader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize record store: %w", err)
	}
	store = storemetrics.Wrap(store)

	// Initialize document store
	docsLoader, err := registrydocstore.Select(cfg.DocstoreType)
	if err != nil {
		return nil, err
	}
	docs, err := docsLoader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize document store: %w", err)
	}

	auditLog := audit.New(store,
		audit.WithCandidateLimit(cfg.RollbackCandidateLimit),
		audit.WithRollbackWindow(cfg.RollbackWindow),
	)
	syncer := profile.NewSyncer(docs)

	// Set up gin
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.AccessLog {
		router.Use(security.AccessLogMiddleware())
	} else {
		router.Use(security.AccessLogMiddleware("/health", "/ready", "/metrics"))
	}
	router.Use(security.MetricsMiddleware())

	for _, loader := range registryroute.Loaders(registryroute.TypeMain) {
		if err := loader(router); err != nil {
			return nil, fmt.Errorf("failed to load routes: %w", err)
		}
	}

	// Mount the API routes
	actions.MountRoutes(router, auditLog)
	documents.MountRoutes(router, docs)
	parts.MountRoutes(router, auditLog, syncer)

	// Mount management route plugins. With a dedicated management port they
	// run on their own bare gin engine; otherwise on the main router.
	var closeManagement func(context.Context) error
	if cfg.ManagementPort > 0 {
		mgmtRouter := gin.New()
		mgmtRouter.Use(gin.Recovery())
		if cfg.AccessLog {
			mgmtRouter.Use(security.AccessLogMiddleware())
		}
		for _, loader := range registryroute.Loaders(registryroute.TypeManagement) {
			if err := loader(mgmtRouter); err != nil {
				return nil, fmt.Errorf("failed to load management routes: %w", err)
			}
		}
		closeManagement, err = startHTTPServer(cfg.ManagementPort, cfg.Listener.ReadHeaderTimeout, mgmtRouter, "management")
		if err != nil {
			return nil, fmt.Errorf("failed to start management server: %w", err)
		}
	} else {
		for _, loader := range registryroute.Loaders(registryroute.TypeManagement) {
			if err := loader(router); err != nil {
				return nil, fmt.Errorf("failed to load management routes: %w", err)
			}
		}
	}

	closeMain, err := startHTTPServer(cfg.Listener.Port, cfg.Listener.ReadHeaderTimeout, router, "main")
	if err != nil {
		if closeManagement != nil {
			_ = closeManagement(context.Background())
		}
		return nil, err
	}

	routesystem.MarkReady()
	return &Server{
		Config:          cfg,
		Store:           store,
		Docs:            docs,
		Router:          router,
		closeMain:       closeMain,
		closeManagement: closeManagement,
	}, nil
}

func startHTTPServer(port int, readHeaderTimeout time.Duration, handler http.Handler, name string) (func(context.Context) error, error) {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return nil, fmt.Errorf("%s listen failed: %w", name, err)
	}

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	go func() {
		if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server failed", "server", name, "err", err)
		}
	}()

	log.Info("Server listening", "server", name, "addr", lis.Addr())
	return srv.Shutdown, nil
}
