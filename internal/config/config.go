package config

import (
	"context"
	"time"
)

// ListenerConfig holds the network settings for a single listener.
type ListenerConfig struct {
	Port              int
	ReadHeaderTimeout time.Duration
}

type contextKey struct{}

// WithContext returns a new context carrying the given Config.
func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, contextKey{}, cfg)
}

// FromContext retrieves the Config from the context.
func FromContext(ctx context.Context) *Config {
	cfg, _ := ctx.Value(contextKey{}).(*Config)
	return cfg
}

// Config holds all configuration for the parts service. Values are bound to
// CLI flags with PARTS_SERVICE_* env sources in the cmd packages; nothing in
// this package reads the environment directly.
type Config struct {
	// Record store backend: "postgres", "sqlite", or "memory".
	DatastoreType string

	// DBURL is the database connection string (postgres URL or sqlite
	// file path, depending on DatastoreType).
	DBURL string

	// Run datastore migrations on startup.
	DatastoreMigrateAtStart bool

	// Document store backend: "fs" or "s3".
	DocstoreType string

	// DocstoreRoot is the root directory for the fs backend.
	DocstoreRoot string

	// S3 settings for the s3 backend.
	S3Bucket       string
	S3Prefix       string
	S3UsePathStyle bool

	// RollbackWindow bounds how far back rollback-by-description searches
	// when the caller does not say.
	RollbackWindow time.Duration

	// RollbackCandidateLimit caps how many recent actions are matched
	// against a rollback description.
	RollbackCandidateLimit int

	// MetricsLabels is a comma-separated list of key=value pairs added as
	// constant labels to all Prometheus metrics.
	MetricsLabels string

	// AccessLog enables HTTP access logging for management endpoints;
	// API endpoints are always logged.
	AccessLog bool

	// Server
	Listener       ListenerConfig
	ManagementPort int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		DatastoreType:           "postgres",
		DatastoreMigrateAtStart: true,
		DocstoreType:            "fs",
		DocstoreRoot:            "./data/documents",
		RollbackWindow:          30 * time.Minute,
		RollbackCandidateLimit:  20,
		MetricsLabels:           "service=parts-service",
		Listener: ListenerConfig{
			Port:              8080,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}
