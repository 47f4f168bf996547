// Package fsstore is the local filesystem document store backend. Documents
// live under a configured root directory; stored paths always use forward
// slashes regardless of OS.
package fsstore

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/innerfold/parts-service/internal/config"
	"github.com/innerfold/parts-service/internal/registry/docstore"
)

func init() {
	docstore.Register(docstore.Plugin{
		Name: "fs",
		Loader: func(ctx context.Context) (docstore.DocumentStore, error) {
			cfg := config.FromContext(ctx)
			if cfg == nil || cfg.DocstoreRoot == "" {
				return nil, fmt.Errorf("fsstore: DOCSTORE_ROOT is required")
			}
			return New(cfg.DocstoreRoot)
		},
	})
}

// Store is a DocumentStore rooted at a local directory.
type Store struct {
	root string
}

// New creates the root directory if needed and returns the store.
func New(root string) (*Store, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("fsstore: resolve root %s: %w", root, err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("fsstore: create root %s: %w", abs, err)
	}
	return &Store{root: abs}, nil
}

// resolve maps a document path to a filesystem path, rejecting anything
// that would escape the root.
func (s *Store) resolve(p string) (string, error) {
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." {
			return "", &docstore.StorageError{Op: "resolve", Path: p, Err: fmt.Errorf("path escapes root")}
		}
	}
	cleaned := path.Clean("/" + p)
	if cleaned == "/" {
		return "", &docstore.StorageError{Op: "resolve", Path: p, Err: fmt.Errorf("empty path")}
	}
	return filepath.Join(s.root, filepath.FromSlash(cleaned)), nil
}

func (s *Store) Put(ctx context.Context, p, text string) error {
	full, err := s.resolve(p)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return &docstore.StorageError{Op: "put", Path: p, Err: err}
	}
	if err := os.WriteFile(full, []byte(text), 0o644); err != nil {
		return &docstore.StorageError{Op: "put", Path: p, Err: err}
	}
	return nil
}

func (s *Store) Get(ctx context.Context, p string) (string, bool, error) {
	full, err := s.resolve(p)
	if err != nil {
		return "", false, err
	}
	data, err := os.ReadFile(full)
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, &docstore.StorageError{Op: "get", Path: p, Err: err}
	}
	return string(data), true, nil
}

func (s *Store) Exists(ctx context.Context, p string) (bool, error) {
	full, err := s.resolve(p)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(full)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, &docstore.StorageError{Op: "exists", Path: p, Err: err}
	}
	return !info.IsDir(), nil
}

func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	prefix = strings.TrimPrefix(path.Clean("/"+prefix), "/")
	var out []string
	err := filepath.WalkDir(s.root, func(full string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable directories yield an empty (or partial) list.
			return nil
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(s.root, full)
		if err != nil {
			return nil
		}
		docPath := filepath.ToSlash(rel)
		if prefix == "" || strings.HasPrefix(docPath, prefix) {
			out = append(out, docPath)
		}
		return nil
	})
	if err != nil {
		return []string{}, nil
	}
	return out, nil
}

func (s *Store) Delete(ctx context.Context, p string) error {
	full, err := s.resolve(p)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return &docstore.StorageError{Op: "delete", Path: p, Err: err}
	}
	return nil
}
