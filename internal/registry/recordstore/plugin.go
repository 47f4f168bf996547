// Package recordstore defines the generic keyed record store used by the
// mutation log. Backends register themselves as plugins from init(); the
// serve command selects one by name from config. The interface is
// deliberately narrow: primary-key insert/fetch/update/delete plus an
// equality-filtered list. No other SQL semantics leak out of it.
package recordstore

import (
	"context"
	"fmt"
)

// Row is a generic record: column name -> value.
type Row = map[string]any

// RecordStore is a generic keyed store over named tables. Rows are
// identified by their "id" column (a UUID string).
type RecordStore interface {
	// Insert writes a new row, generating an "id" if absent, and returns
	// the stored row.
	Insert(ctx context.Context, table string, row Row) (Row, error)

	// Fetch returns the row with the given id, or nil when missing.
	// Missing is not an error.
	Fetch(ctx context.Context, table, id string) (Row, error)

	// Update applies the patch columns to the row and returns the updated
	// row. Returns a NotFoundError when the row does not exist.
	Update(ctx context.Context, table, id string, patch Row) (Row, error)

	// Delete removes the row. Deleting a missing row is not an error.
	Delete(ctx context.Context, table, id string) error

	// List returns up to limit rows matching all equality filters, ordered
	// newest first by created_at.
	List(ctx context.Context, table string, filter Row, limit int) ([]Row, error)
}

// Loader creates a RecordStore from config (carried in ctx).
type Loader func(ctx context.Context) (RecordStore, error)

// Plugin represents a record store backend.
type Plugin struct {
	Name   string
	Loader Loader
}

var plugins []Plugin

// Register adds a record store plugin. Called from init() in plugin packages.
func Register(p Plugin) {
	plugins = append(plugins, p)
}

// Names returns all registered record store plugin names.
func Names() []string {
	names := make([]string, len(plugins))
	for i, p := range plugins {
		names[i] = p.Name
	}
	return names
}

// Select returns the loader for the named record store plugin.
func Select(name string) (Loader, error) {
	for _, p := range plugins {
		if p.Name == name {
			return p.Loader, nil
		}
	}
	return nil, fmt.Errorf("unknown record store %q; valid: %v", name, Names())
}
