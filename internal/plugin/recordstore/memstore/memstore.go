// Package memstore is an in-memory record store used by tests and by the
// "memory" dev mode. It keeps the same observable semantics as the gorm
// backends: generated ids, nil for missing fetches, newest-first listing.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/innerfold/parts-service/internal/registry/recordstore"
)

func init() {
	recordstore.Register(recordstore.Plugin{
		Name: "memory",
		Loader: func(ctx context.Context) (recordstore.RecordStore, error) {
			return New(), nil
		},
	})
}

// Store is a thread-safe in-memory RecordStore.
type Store struct {
	mu     sync.RWMutex
	tables map[string]map[string]recordstore.Row
}

// New returns an empty store.
func New() *Store {
	return &Store{tables: map[string]map[string]recordstore.Row{}}
}

func clone(row recordstore.Row) recordstore.Row {
	out := recordstore.Row{}
	for k, v := range row {
		out[k] = v
	}
	return out
}

func (s *Store) table(name string) map[string]recordstore.Row {
	t, ok := s.tables[name]
	if !ok {
		t = map[string]recordstore.Row{}
		s.tables[name] = t
	}
	return t
}

func (s *Store) Insert(ctx context.Context, table string, row recordstore.Row) (recordstore.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := clone(row)
	id, ok := stored["id"].(string)
	if !ok || id == "" {
		id = uuid.NewString()
		stored["id"] = id
	}
	s.table(table)[id] = stored
	return clone(stored), nil
}

func (s *Store) Fetch(ctx context.Context, table, id string) (recordstore.Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.tables[table][id]
	if !ok {
		return nil, nil
	}
	return clone(row), nil
}

func (s *Store) Update(ctx context.Context, table, id string, patch recordstore.Row) (recordstore.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.tables[table][id]
	if !ok {
		return nil, &recordstore.NotFoundError{Table: table, ID: id}
	}
	for k, v := range patch {
		row[k] = v
	}
	return clone(row), nil
}

func (s *Store) Delete(ctx context.Context, table, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.tables[table], id)
	return nil
}

func (s *Store) List(ctx context.Context, table string, filter recordstore.Row, limit int) ([]recordstore.Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rows []recordstore.Row
	for _, row := range s.tables[table] {
		match := true
		for k, want := range filter {
			if got, ok := row[k]; !ok || got != want {
				match = false
				break
			}
		}
		if match {
			rows = append(rows, clone(row))
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return createdAt(rows[i]).After(createdAt(rows[j]))
	})
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func createdAt(row recordstore.Row) time.Time {
	if t, ok := row["created_at"].(time.Time); ok {
		return t
	}
	return time.Time{}
}
