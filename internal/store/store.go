package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// Collection file names
const (
	CollectionProducts = "products"
	CollectionOrders   = "orders"
	CollectionUsers    = "users"
)

// Store persists collections as pretty-printed JSON arrays under a data
// directory, one file per collection. A missing file reads as an empty
// collection; an unreadable or unparsable file is reported as an error so
// callers can tell "empty" from "broken".
//
// Writes replace the whole file with no atomic rename. Read-modify-write
// cycles inside one process are serialized through WithLock; concurrent
// processes sharing a data directory are not supported.
type Store struct {
	dir string
	mu  sync.Mutex
}

// NewStore creates a store rooted at dir, creating it if absent.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the data directory.
func (s *Store) Dir() string {
	return s.dir
}

// WithLock runs fn while holding the store's mutex. Every flow that reads a
// collection, mutates it in memory and writes it back must run inside
// WithLock, otherwise two such flows can both read the same stock count and
// both decrement from it.
func (s *Store) WithLock(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn()
}

func (s *Store) path(collection string) string {
	return filepath.Join(s.dir, collection+".json")
}

func readCollection[T any](ctx context.Context, s *Store, collection string) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path(collection))
	if errors.Is(err, fs.ErrNotExist) {
		return []T{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read collection %s: %w", collection, err)
	}

	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse collection %s: %w", collection, err)
	}
	if records == nil {
		records = []T{}
	}
	return records, nil
}

func writeCollection[T any](ctx context.Context, s *Store, collection string, records []T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if records == nil {
		records = []T{}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal collection %s: %w", collection, err)
	}

	if err := os.WriteFile(s.path(collection), data, 0o644); err != nil {
		return fmt.Errorf("failed to write collection %s: %w", collection, err)
	}
	return nil
}
