// Package storage persists quality report rows into a database in addition
// to the CSV artifact. It holds the storage-agnostic contracts (Repository,
// factory registration, the report table layout) and the batched loader;
// concrete backends register themselves from their init functions, and
// importing dmml/internal/storage/all enables every built-in backend.
package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"dmml/internal/config"
)

// ErrUnknownKind is returned by New for a kind with no registered backend.
var ErrUnknownKind = errors.New("unknown storage kind")

// Config selects and configures a backend.
type Config struct {
	Kind  string
	DSN   string
	Table string
	// Options carries backend-specific settings (pool sizes, timeouts).
	Options config.Options
}

// FromConfig adapts the storage section of the run configuration.
func FromConfig(s config.Storage) Config {
	return Config{Kind: s.Kind, DSN: s.DSN, Table: s.Table, Options: s.Options}
}

// Repository is the write side of a report store.
type Repository interface {
	// EnsureTable creates the report table when it does not exist.
	EnsureTable(ctx context.Context) error
	// CopyFrom bulk-inserts rows aligned to columns and returns the number
	// of rows inserted.
	CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error)
	// Close releases connections.
	Close()
}

// Factory opens a Repository for cfg.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register makes a backend available under kind. It panics on duplicate
// registration, which can only happen through a programming error.
func Register(kind string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	if _, dup := factories[kind]; dup {
		panic("storage: Register called twice for " + kind)
	}
	factories[kind] = f
}

// New opens the backend registered for cfg.Kind.
func New(ctx context.Context, cfg Config) (Repository, error) {
	mu.RLock()
	f, ok := factories[cfg.Kind]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w %q (registered: %v)", ErrUnknownKind, cfg.Kind, Kinds())
	}
	if cfg.Options == nil {
		cfg.Options = config.Options{}
	}
	repo, err := f(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("storage %s: %w", cfg.Kind, err)
	}
	return repo, nil
}

// Kinds lists the registered backend kinds.
func Kinds() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
