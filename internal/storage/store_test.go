package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"zenwallet/internal/core"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "zenwallet.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestLoadReturnsDefaultsOnFreshDatabase(t *testing.T) {
	store := newTestStore(t)

	state, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(state.Wallets) != 1 || state.Wallets[0].Name != "Main Savings" {
		t.Fatalf("expected seed wallet, got %+v", state.Wallets)
	}
	if len(state.WalletTypes) == 0 || len(state.Categories) == 0 {
		t.Fatalf("expected non-empty catalogs")
	}
	if state.Transactions == nil || state.Schedules == nil {
		t.Fatalf("collections must be initialized, not nil")
	}
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	state, _ := store.Load(ctx)
	state.Transactions = []core.Transaction{{
		ID: "tx-1", WalletID: "w-1", Amount: core.Money{Cents: 999},
		Type: core.Expense, CategoryID: "cat-1",
		Date: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
		Note: "coffee",
	}}
	state.IsDarkMode = true

	if err := store.Save(ctx, state); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(got.Transactions) != 1 || got.Transactions[0].Note != "coffee" {
		t.Fatalf("transactions not persisted: %+v", got.Transactions)
	}
	if got.Transactions[0].Amount.Cents != 999 {
		t.Fatalf("amount not persisted: %+v", got.Transactions[0].Amount)
	}
	if !got.IsDarkMode {
		t.Fatalf("preference not persisted")
	}
}

func TestSaveOverwritesWholeBlob(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	state, _ := store.Load(ctx)
	state.Wallets = append(state.Wallets, core.Wallet{ID: "w-2", Name: "Cash", Type: "Cash"})
	if err := store.Save(ctx, state); err != nil {
		t.Fatalf("first save: %v", err)
	}

	state.Wallets = state.Wallets[:1]
	if err := store.Save(ctx, state); err != nil {
		t.Fatalf("second save: %v", err)
	}

	got, _ := store.Load(ctx)
	if len(got.Wallets) != 1 {
		t.Fatalf("expected whole-blob replace, got %d wallets", len(got.Wallets))
	}
}

func TestFillDefaultsRespectsExplicitEmpty(t *testing.T) {
	state := FillDefaults(core.AppState{
		Wallets:      []core.Wallet{},
		Transactions: nil,
	})
	if len(state.Wallets) != 0 {
		t.Fatalf("explicit empty wallets must be respected")
	}
	if state.Transactions == nil {
		t.Fatalf("nil transactions must be default-filled")
	}
}
