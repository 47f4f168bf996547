// Package docstore defines the keyed blob store holding the narrative
// markdown documents. Two backends register themselves as plugins: the local
// filesystem and S3. Selection happens once at startup from config, never by
// runtime environment sniffing.
package docstore

import (
	"context"
	"fmt"
)

// DocumentStore is keyed blob storage for canonical-text documents.
// Paths use forward slashes on every backend.
type DocumentStore interface {
	// Put stores text at path, creating parent prefixes as needed.
	Put(ctx context.Context, path, text string) error

	// Get returns the document text. ok is false when the document does
	// not exist; missing is never an error.
	Get(ctx context.Context, path string) (text string, ok bool, err error)

	// Exists reports whether a document is stored at path.
	Exists(ctx context.Context, path string) (bool, error)

	// List returns all document paths under the prefix, recursively.
	// An unreadable prefix yields an empty list.
	List(ctx context.Context, prefix string) ([]string, error)

	// Delete removes the document. Best effort: deleting a missing
	// document is not an error.
	Delete(ctx context.Context, path string) error
}

// StorageError indicates a backend I/O failure.
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("document store %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Loader creates a DocumentStore from config (carried in ctx).
type Loader func(ctx context.Context) (DocumentStore, error)

// Plugin represents a document store backend.
type Plugin struct {
	Name   string
	Loader Loader
}

var plugins []Plugin

// Register adds a document store plugin. Called from init() in plugin packages.
func Register(p Plugin) {
	plugins = append(plugins, p)
}

// Names returns all registered document store plugin names.
func Names() []string {
	names := make([]string, len(plugins))
	for i, p := range plugins {
		names[i] = p.Name
	}
	return names
}

// Select returns the loader for the named document store plugin.
func Select(name string) (Loader, error) {
	for _, p := range plugins {
		if p.Name == name {
			return p.Loader, nil
		}
	}
	return nil, fmt.Errorf("unknown document store %q; valid: %v", name, Names())
}
