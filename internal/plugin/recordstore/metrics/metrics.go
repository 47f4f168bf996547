// Package metrics decorates a record store with Prometheus latency
// observations per operation.
package metrics

import (
	"context"
	"time"

	"github.com/innerfold/parts-service/internal/registry/recordstore"
	"github.com/innerfold/parts-service/internal/security"
)

type store struct {
	inner recordstore.RecordStore
}

// Wrap returns a RecordStore that records per-operation latency into the
// security.StoreLatency histogram.
func Wrap(inner recordstore.RecordStore) recordstore.RecordStore {
	return &store{inner: inner}
}

func observe(op string, start time.Time) {
	if security.StoreLatency == nil {
		return
	}
	security.StoreLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func (s *store) Insert(ctx context.Context, table string, row recordstore.Row) (recordstore.Row, error) {
	defer observe("insert", time.Now())
	return s.inner.Insert(ctx, table, row)
}

func (s *store) Fetch(ctx context.Context, table, id string) (recordstore.Row, error) {
	defer observe("fetch", time.Now())
	return s.inner.Fetch(ctx, table, id)
}

func (s *store) Update(ctx context.Context, table, id string, patch recordstore.Row) (recordstore.Row, error) {
	defer observe("update", time.Now())
	return s.inner.Update(ctx, table, id, patch)
}

func (s *store) Delete(ctx context.Context, table, id string) error {
	defer observe("delete", time.Now())
	return s.inner.Delete(ctx, table, id)
}

func (s *store) List(ctx context.Context, table string, filter recordstore.Row, limit int) ([]recordstore.Row, error) {
	defer observe("list", time.Now())
	return s.inner.List(ctx, table, filter, limit)
}
