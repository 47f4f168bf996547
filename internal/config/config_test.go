package config

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.Equal(t, "postgres", cfg.DatastoreType)
	require.Equal(t, "fs", cfg.DocstoreType)
	require.Equal(t, 30*time.Minute, cfg.RollbackWindow)
	require.Equal(t, 20, cfg.RollbackCandidateLimit)
	require.Equal(t, 8080, cfg.Listener.Port)
}

func TestContextRoundTrip(t *testing.T) {
	require.Nil(t, FromContext(context.Background()))

	cfg := DefaultConfig()
	ctx := WithContext(context.Background(), &cfg)
	require.Same(t, &cfg, FromContext(ctx))
}
