// Package backend selects and constructs the state store implementation.
package backend

import (
	"context"

	"zenwallet/internal/core"
)

// StateStore is the persistence collaborator: whole-state load and save.
// Load is total with respect to malformed persisted data (it falls back
// to defaults); Save persists the entire state atomically.
type StateStore interface {
	Load(ctx context.Context) (core.AppState, error)
	Save(ctx context.Context, state core.AppState) error
	Close() error
}

// CleanupFunc releases resources owned by a store.
type CleanupFunc func() error

// Result contains the constructed store and its cleanup function.
type Result struct {
	Store   StateStore
	Cleanup CleanupFunc
}

// Factory creates state stores based on configuration.
type Factory interface {
	CreateStore(ctx context.Context, config Config) (*Result, error)
}

// Config holds configuration for store creation.
type Config struct {
	Type Type

	// SQLite specific
	SQLiteDBPath string
}

// Type represents the kind of store backing the application.
type Type string

const (
	SQLiteStore Type = "sqlite"
	MemoryStore Type = "memory"
)

func (t Type) String() string { return string(t) }

func (t Type) IsValid() bool {
	switch t {
	case SQLiteStore, MemoryStore:
		return true
	}
	return false
}
