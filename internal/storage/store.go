// Package storage persists the application state as a single versioned
// JSON blob in SQLite. Every mutation in the app is a read-modify-write
// of the whole blob; there are no partial updates at this layer.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"zenwallet/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Load reads the persisted state. It is total: a missing row or an
// unparsable blob falls back to the default state with a warning, and a
// partially-shaped blob gets its missing collections default-filled. The
// caller never sees an error for malformed persisted data.
func (s *SQLiteStore) Load(ctx context.Context) (core.AppState, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM app_state WHERE id = 1`).Scan(&payload)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		slog.InfoContext(ctx, "No persisted state, starting from defaults")
		return DefaultState(), nil
	case err != nil:
		return core.AppState{}, fmt.Errorf("read app state: %w", err)
	}

	var state core.AppState
	if err := json.Unmarshal(payload, &state); err != nil {
		slog.WarnContext(ctx, "Persisted state is unparsable, falling back to defaults", "error", err)
		return DefaultState(), nil
	}

	return FillDefaults(state), nil
}

// Save persists the entire state in one statement. The upsert bumps the
// version counter so concurrent tooling can spot lost writes.
func (s *SQLiteStore) Save(ctx context.Context, state core.AppState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal app state: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO app_state (id, payload, version, updated_at)
		VALUES (1, ?, 1, ?)
		ON CONFLICT (id) DO UPDATE SET
			payload    = excluded.payload,
			version    = app_state.version + 1,
			updated_at = excluded.updated_at`,
		payload, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("write app state: %w", err)
	}

	slog.DebugContext(ctx, "State saved",
		"wallets", len(state.Wallets),
		"transactions", len(state.Transactions),
		"schedules", len(state.Schedules))
	return nil
}

// FillDefaults replaces collections that are absent from a decoded blob
// with their defaults. Absent means nil: an explicitly empty array in the
// payload is respected.
func FillDefaults(state core.AppState) core.AppState {
	def := DefaultState()
	if state.Wallets == nil {
		state.Wallets = def.Wallets
	}
	if state.Transactions == nil {
		state.Transactions = def.Transactions
	}
	if state.Schedules == nil {
		state.Schedules = def.Schedules
	}
	if state.Categories == nil {
		state.Categories = def.Categories
	}
	if len(state.WalletTypes) == 0 {
		state.WalletTypes = def.WalletTypes
	}
	return state
}
