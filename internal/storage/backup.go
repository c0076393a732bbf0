package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"zenwallet/internal/core"
)

// ErrInvalidBackup marks an import payload that does not resemble a
// ZenWallet backup. The operation is aborted and no state is mutated.
var ErrInvalidBackup = errors.New("not a recognizable backup file")

// ExportState writes the full state as indented JSON, the same shape the
// store persists, so an export round-trips through ImportState unchanged.
func ExportState(w io.Writer, state core.AppState) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(state); err != nil {
		return fmt.Errorf("encode backup: %w", err)
	}
	return nil
}

// importPayload mirrors AppState with optional fields so a merge can
// distinguish "absent" from "present but empty".
type importPayload struct {
	Wallets      []core.Wallet      `json:"wallets"`
	Transactions []core.Transaction `json:"transactions"`
	Categories   []core.Category    `json:"categories"`
	WalletTypes  []string           `json:"walletTypes"`
	Schedules    []core.Schedule    `json:"schedules"`
	IsDarkMode   *bool              `json:"isDarkMode"`
}

// ImportState parses a backup payload and merges it field-by-field over
// the current state: collections present in the payload replace the
// current ones, missing collections are kept from current. A payload with
// neither wallets nor transactions is rejected as ErrInvalidBackup.
func ImportState(r io.Reader, current core.AppState) (core.AppState, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return core.AppState{}, fmt.Errorf("read backup: %w", err)
	}
	if len(raw) == 0 {
		return core.AppState{}, fmt.Errorf("%w: file is empty", ErrInvalidBackup)
	}

	var payload importPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return core.AppState{}, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}
	if payload.Wallets == nil && payload.Transactions == nil {
		return core.AppState{}, fmt.Errorf("%w: no wallets or transactions present", ErrInvalidBackup)
	}

	merged := current
	if payload.Wallets != nil {
		merged.Wallets = payload.Wallets
	}
	if payload.Transactions != nil {
		merged.Transactions = payload.Transactions
	}
	if payload.Categories != nil {
		merged.Categories = payload.Categories
	}
	if payload.WalletTypes != nil {
		merged.WalletTypes = payload.WalletTypes
	}
	if payload.Schedules != nil {
		merged.Schedules = payload.Schedules
	}
	if payload.IsDarkMode != nil {
		merged.IsDarkMode = *payload.IsDarkMode
	}
	return merged, nil
}
