package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"zenwallet/internal/amqp"
	"zenwallet/internal/backend"
	"zenwallet/internal/core"
	"zenwallet/internal/storage"
)

var (
	ErrWalletNotFound      = errors.New("wallet not found")
	ErrCategoryNotFound    = errors.New("category not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrScheduleNotFound    = errors.New("schedule not found")
)

// EventPublisher pushes schedule-fired events to a broker. *amqp.Client
// satisfies it; a nil publisher disables eventing.
type EventPublisher interface {
	PublishScheduleFired(ctx context.Context, msg *amqp.ScheduleFiredMessage) error
}

// StateService owns every mutation of the application state. Each
// operation is a whole-state read-modify-write: load, apply, save. A
// single mutex serializes mutations so concurrent API calls cannot lose
// each other's writes.
type StateService struct {
	mu     sync.Mutex
	store  backend.StateStore
	events EventPublisher
	logger *slog.Logger
	now    func() time.Time
}

func NewStateService(store backend.StateStore, events EventPublisher, logger *slog.Logger) *StateService {
	if logger == nil {
		logger = slog.Default()
	}
	return &StateService{
		store:  store,
		events: events,
		logger: logger,
		now:    time.Now,
	}
}

// GetState returns the current state snapshot.
func (s *StateService) GetState(ctx context.Context) (core.AppState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Load(ctx)
}

// mutate runs fn on the loaded state and persists the result. fn returns
// the new state, or an error to abort without saving.
func (s *StateService) mutate(ctx context.Context, fn func(core.AppState) (core.AppState, error)) (core.AppState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.store.Load(ctx)
	if err != nil {
		return core.AppState{}, err
	}
	next, err := fn(state)
	if err != nil {
		return core.AppState{}, err
	}
	if err := s.store.Save(ctx, next); err != nil {
		return core.AppState{}, fmt.Errorf("persist state: %w", err)
	}
	return next, nil
}

// --- wallets ---

func (s *StateService) CreateWallet(ctx context.Context, w core.Wallet) (core.Wallet, error) {
	if err := w.Validate(); err != nil {
		return core.Wallet{}, err
	}
	w.ID = uuid.NewString()

	_, err := s.mutate(ctx, func(state core.AppState) (core.AppState, error) {
		state.Wallets = append(state.Wallets, w)
		state.WalletTypes = growWalletTypes(state.WalletTypes, w.Type)
		return state, nil
	})
	if err != nil {
		return core.Wallet{}, err
	}
	s.logger.Info("Created wallet", "wallet_id", w.ID, "wallet_name", w.Name)
	return w, nil
}

func (s *StateService) UpdateWallet(ctx context.Context, w core.Wallet) (core.Wallet, error) {
	if err := w.Validate(); err != nil {
		return core.Wallet{}, err
	}

	_, err := s.mutate(ctx, func(state core.AppState) (core.AppState, error) {
		for i := range state.Wallets {
			if state.Wallets[i].ID == w.ID {
				state.Wallets[i] = w
				state.WalletTypes = growWalletTypes(state.WalletTypes, w.Type)
				return state, nil
			}
		}
		return core.AppState{}, ErrWalletNotFound
	})
	if err != nil {
		return core.Wallet{}, err
	}
	return w, nil
}

// DeleteWallet removes the wallet only. Its transactions stay in the
// log; the dangling reference degrades to a display fallback and never
// contributes to any remaining wallet's balance.
func (s *StateService) DeleteWallet(ctx context.Context, id string) error {
	_, err := s.mutate(ctx, func(state core.AppState) (core.AppState, error) {
		for i := range state.Wallets {
			if state.Wallets[i].ID == id {
				state.Wallets = append(state.Wallets[:i], state.Wallets[i+1:]...)
				return state, nil
			}
		}
		return core.AppState{}, ErrWalletNotFound
	})
	return err
}

// growWalletTypes adds a custom wallet type to the catalog, keeping it
// deduplicated and sorted. Blank types are ignored.
func growWalletTypes(types []string, candidate string) []string {
	candidate = strings.TrimSpace(candidate)
	if candidate == "" {
		return types
	}
	for _, t := range types {
		if t == candidate {
			return types
		}
	}
	types = append(types, candidate)
	sort.Strings(types)
	return types
}

// --- categories ---

func (s *StateService) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	c.ID = uuid.NewString()

	_, err := s.mutate(ctx, func(state core.AppState) (core.AppState, error) {
		state.Categories = append(state.Categories, c)
		return state, nil
	})
	if err != nil {
		return core.Category{}, err
	}
	return c, nil
}

func (s *StateService) UpdateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}

	_, err := s.mutate(ctx, func(state core.AppState) (core.AppState, error) {
		for i := range state.Categories {
			if state.Categories[i].ID == c.ID {
				state.Categories[i] = c
				return state, nil
			}
		}
		return core.AppState{}, ErrCategoryNotFound
	})
	if err != nil {
		return core.Category{}, err
	}
	return c, nil
}

func (s *StateService) DeleteCategory(ctx context.Context, id string) error {
	_, err := s.mutate(ctx, func(state core.AppState) (core.AppState, error) {
		for i := range state.Categories {
			if state.Categories[i].ID == id {
				state.Categories = append(state.Categories[:i], state.Categories[i+1:]...)
				return state, nil
			}
		}
		return core.AppState{}, ErrCategoryNotFound
	})
	return err
}

// --- transactions ---

func (s *StateService) AddTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	tx.ID = uuid.NewString()

	_, err := s.mutate(ctx, func(state core.AppState) (core.AppState, error) {
		state.Transactions = PrependTransactions(state.Transactions, []core.Transaction{tx})
		return state, nil
	})
	if err != nil {
		return core.Transaction{}, err
	}
	return tx, nil
}

func (s *StateService) UpdateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	_, err := s.mutate(ctx, func(state core.AppState) (core.AppState, error) {
		for i := range state.Transactions {
			if state.Transactions[i].ID == tx.ID {
				state.Transactions[i] = tx
				return state, nil
			}
		}
		return core.AppState{}, ErrTransactionNotFound
	})
	if err != nil {
		return core.Transaction{}, err
	}
	return tx, nil
}

func (s *StateService) DeleteTransaction(ctx context.Context, id string) error {
	_, err := s.mutate(ctx, func(state core.AppState) (core.AppState, error) {
		for i := range state.Transactions {
			if state.Transactions[i].ID == id {
				state.Transactions = append(state.Transactions[:i], state.Transactions[i+1:]...)
				return state, nil
			}
		}
		return core.AppState{}, ErrTransactionNotFound
	})
	return err
}

// --- schedules ---

// CreateSchedule computes the first due instant from the frequency and
// target day, anchored at the standard run hour.
func (s *StateService) CreateSchedule(ctx context.Context, sch core.Schedule) (core.Schedule, error) {
	sch.ID = uuid.NewString()
	sch.IsActive = true
	sch.NextRun = core.InitialNextRun(s.now(), sch.Frequency, sch.DayOfMonth, sch.DayOfWeek)
	if err := sch.Validate(); err != nil {
		return core.Schedule{}, err
	}

	_, err := s.mutate(ctx, func(state core.AppState) (core.AppState, error) {
		state.Schedules = append(state.Schedules, sch)
		return state, nil
	})
	if err != nil {
		return core.Schedule{}, err
	}
	s.logger.Info("Created schedule",
		"schedule_id", sch.ID,
		"schedule_name", sch.Name,
		"frequency", sch.Frequency,
		"next_run", sch.NextRun)
	return sch, nil
}

// UpdateSchedule replaces the editable fields. When frequency or target
// day changed the next-run is recomputed, otherwise the existing cadence
// is preserved.
func (s *StateService) UpdateSchedule(ctx context.Context, sch core.Schedule) (core.Schedule, error) {
	var updated core.Schedule
	_, err := s.mutate(ctx, func(state core.AppState) (core.AppState, error) {
		for i := range state.Schedules {
			if state.Schedules[i].ID != sch.ID {
				continue
			}
			prev := state.Schedules[i]
			sch.IsActive = prev.IsActive
			if sch.Frequency != prev.Frequency || sch.DayOfMonth != prev.DayOfMonth || sch.DayOfWeek != prev.DayOfWeek {
				sch.NextRun = core.InitialNextRun(s.now(), sch.Frequency, sch.DayOfMonth, sch.DayOfWeek)
			} else {
				sch.NextRun = prev.NextRun
			}
			if err := sch.Validate(); err != nil {
				return core.AppState{}, err
			}
			state.Schedules[i] = sch
			updated = sch
			return state, nil
		}
		return core.AppState{}, ErrScheduleNotFound
	})
	if err != nil {
		return core.Schedule{}, err
	}
	return updated, nil
}

func (s *StateService) DeleteSchedule(ctx context.Context, id string) error {
	_, err := s.mutate(ctx, func(state core.AppState) (core.AppState, error) {
		for i := range state.Schedules {
			if state.Schedules[i].ID == id {
				state.Schedules = append(state.Schedules[:i], state.Schedules[i+1:]...)
				return state, nil
			}
		}
		return core.AppState{}, ErrScheduleNotFound
	})
	return err
}

// ToggleSchedule flips the active flag. Pausing keeps the next-run as
// is; a later reactivation lets the next reconcile pass catch it up.
func (s *StateService) ToggleSchedule(ctx context.Context, id string) (core.Schedule, error) {
	var toggled core.Schedule
	_, err := s.mutate(ctx, func(state core.AppState) (core.AppState, error) {
		for i := range state.Schedules {
			if state.Schedules[i].ID == id {
				state.Schedules[i].IsActive = !state.Schedules[i].IsActive
				toggled = state.Schedules[i]
				return state, nil
			}
		}
		return core.AppState{}, ErrScheduleNotFound
	})
	if err != nil {
		return core.Schedule{}, err
	}
	return toggled, nil
}

// RunScheduleNow fires one occurrence immediately, regardless of
// dueness. Inactive schedules are rejected with ErrScheduleInactive.
func (s *StateService) RunScheduleNow(ctx context.Context, id string) (core.Transaction, error) {
	now := s.now()
	var fired core.Transaction

	_, err := s.mutate(ctx, func(state core.AppState) (core.AppState, error) {
		for i := range state.Schedules {
			if state.Schedules[i].ID != id {
				continue
			}
			advanced, tx, err := RunNow(state.Schedules[i], now)
			if err != nil {
				return core.AppState{}, err
			}
			state.Schedules[i] = advanced
			state.Transactions = PrependTransactions(state.Transactions, []core.Transaction{tx})
			fired = tx
			return state, nil
		}
		return core.AppState{}, ErrScheduleNotFound
	})
	if err != nil {
		return core.Transaction{}, err
	}

	s.publishFired(ctx, id, fired, now)
	return fired, nil
}

// Reconcile catches every schedule up to now and persists the result in
// one save. It is called on startup and periodically while serving.
func (s *StateService) Reconcile(ctx context.Context) (RunResult, error) {
	now := s.now()
	var result RunResult

	_, err := s.mutate(ctx, func(state core.AppState) (core.AppState, error) {
		result = ProcessDueSchedules(state.Schedules, now, s.logger)
		state.Schedules = result.Schedules
		state.Transactions = PrependTransactions(state.Transactions, result.Transactions)
		return state, nil
	})
	if err != nil {
		return RunResult{}, err
	}

	for _, occ := range result.Occurrences {
		s.publishFired(ctx, occ.ScheduleID, occ.Transaction, now)
	}

	if result.Fired > 0 || result.Failed > 0 {
		s.logger.Info("Reconciled schedules",
			"fired", result.Fired,
			"failed", result.Failed,
			"schedules", len(result.Schedules))
	}
	return result, nil
}

func (s *StateService) publishFired(ctx context.Context, scheduleID string, tx core.Transaction, firedAt time.Time) {
	if s.events == nil {
		return
	}
	msg := amqp.NewScheduleFiredMessage(scheduleID, tx.ID, string(tx.Type), tx.Amount.Cents, firedAt)
	if err := s.events.PublishScheduleFired(ctx, msg); err != nil {
		// Eventing is best-effort; the state is already saved.
		s.logger.Warn("Failed to publish schedule fired event",
			"schedule_id", scheduleID,
			"transaction_id", tx.ID,
			"error", err)
	}
}

// --- preferences ---

func (s *StateService) SetDarkMode(ctx context.Context, enabled bool) error {
	_, err := s.mutate(ctx, func(state core.AppState) (core.AppState, error) {
		state.IsDarkMode = enabled
		return state, nil
	})
	return err
}

// --- backup ---

func (s *StateService) Export(ctx context.Context, w io.Writer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.store.Load(ctx)
	if err != nil {
		return err
	}
	return storage.ExportState(w, state)
}

// Import merges a backup over the current state and persists the result.
// An unrecognizable payload leaves the state untouched.
func (s *StateService) Import(ctx context.Context, r io.Reader) (core.AppState, error) {
	return s.mutate(ctx, func(state core.AppState) (core.AppState, error) {
		merged, err := storage.ImportState(r, state)
		if err != nil {
			return core.AppState{}, err
		}
		return merged, nil
	})
}
