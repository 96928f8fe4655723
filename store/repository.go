// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Config selects and configures a backend.
//
// Edge cases:
//   - Kind must match a registered backend ("sqlite", "postgres").
//   - DSN is passed through to the backend unchanged.
type Config struct {
	Kind string `yaml:"kind"`
	DSN  string `yaml:"dsn"`
}

// Repository persists Models.
//
// Implementations create their table on construction, are safe for
// concurrent use, and return ErrNotFound (wrapped) for unknown IDs.
type Repository interface {
	// Save inserts or replaces m, assigning ID and CreatedAt when unset.
	Save(ctx context.Context, m *Model) error
	// Load returns the model with id.
	Load(ctx context.Context, id uuid.UUID) (*Model, error)
	// List returns every model without its Spec, oldest first.
	List(ctx context.Context) ([]Model, error)
	// Delete removes the model with id.
	Delete(ctx context.Context, id uuid.UUID) error
	// Close releases the backend. Call once.
	Close()
}

// Factory opens a Repository for cfg.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register makes a backend available under kind.
//
// Panics:
//   - If kind is empty, f is nil, or kind is already registered.
func Register(kind string, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if kind == "" {
		panic("store: Register called with empty kind")
	}
	if f == nil {
		panic("store: Register called with nil factory")
	}
	if _, exists := factories[kind]; exists {
		panic(fmt.Sprintf("store: factory already registered for kind=%q", kind))
	}
	factories[kind] = f
}

// Kinds lists the registered backend kinds, sorted.
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

// New opens the backend registered for cfg.Kind.
func New(ctx context.Context, cfg Config) (Repository, error) {
	if cfg.Kind == "" {
		return nil, fmt.Errorf("store: missing kind")
	}

	mu.RLock()
	f := factories[cfg.Kind]
	mu.RUnlock()

	if f == nil {
		return nil, fmt.Errorf("store: unsupported kind=%s (registered: %v)", cfg.Kind, Kinds())
	}

	return f(ctx, cfg)
}
