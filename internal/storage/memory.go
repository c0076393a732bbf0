package storage

import (
	"context"
	"sync"

	"zenwallet/internal/core"
)

// MemoryStore keeps the state in process memory. It backs the "memory"
// data backend and every service-level test.
type MemoryStore struct {
	mu    sync.Mutex
	state core.AppState
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: DefaultState()}
}

// NewMemoryStoreWith seeds the store with a specific state, bypassing the
// defaults. Intended for tests.
func NewMemoryStoreWith(state core.AppState) *MemoryStore {
	return &MemoryStore{state: FillDefaults(state)}
}

func (m *MemoryStore) Load(ctx context.Context) (core.AppState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneState(m.state), nil
}

func (m *MemoryStore) Save(ctx context.Context, state core.AppState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = cloneState(state)
	return nil
}

func (m *MemoryStore) Close() error { return nil }

// cloneState copies the slice headers so callers cannot alias the stored
// collections. Element values are plain data and safe to share.
func cloneState(s core.AppState) core.AppState {
	out := s
	out.Wallets = append([]core.Wallet(nil), s.Wallets...)
	out.Transactions = append([]core.Transaction(nil), s.Transactions...)
	out.Categories = append([]core.Category(nil), s.Categories...)
	out.WalletTypes = append([]string(nil), s.WalletTypes...)
	out.Schedules = append([]core.Schedule(nil), s.Schedules...)
	return out
}
