// Package services provides business logic and orchestration over the
// domain model: the recurring-schedule engine and the state mutations
// behind the API.
//
// This file implements the Strategy Pattern for schedule advancement.
// Each frequency has its own step strategy encapsulating how one period
// is added to a schedule's next-run instant.
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"zenwallet/internal/core"
)

var (
	// ErrScheduleInactive rejects manual runs on paused schedules.
	ErrScheduleInactive = errors.New("schedule is inactive")

	// ErrMalformedSchedule marks a schedule whose fields cannot drive the
	// advancement loop. The schedule is left unadvanced for inspection.
	ErrMalformedSchedule = errors.New("malformed schedule")
)

// StepStrategy advances a next-run instant by exactly one period.
type StepStrategy interface {
	// Step returns the occurrence following prev for the given schedule.
	Step(s core.Schedule, prev time.Time) time.Time
}

// DailyStep implements StepStrategy for daily schedules.
type DailyStep struct{}

func (DailyStep) Step(_ core.Schedule, prev time.Time) time.Time {
	return core.AddDays(prev, 1)
}

// WeeklyStep implements StepStrategy for weekly schedules.
type WeeklyStep struct{}

func (WeeklyStep) Step(_ core.Schedule, prev time.Time) time.Time {
	return core.AddDays(prev, 7)
}

// MonthlyStep implements StepStrategy for monthly schedules. Every step
// re-clamps the target day against the destination month.
type MonthlyStep struct{}

func (MonthlyStep) Step(s core.Schedule, prev time.Time) time.Time {
	return core.AddMonthClamped(prev, 1, s.DayOfMonth)
}

var stepStrategies = map[core.Frequency]StepStrategy{
	core.Daily:   DailyStep{},
	core.Weekly:  WeeklyStep{},
	core.Monthly: MonthlyStep{},
}

// stepFor resolves the strategy for a schedule and rejects field values
// the loop cannot safely iterate on.
func stepFor(s core.Schedule) (StepStrategy, error) {
	strategy, ok := stepStrategies[s.Frequency]
	if !ok {
		return nil, fmt.Errorf("%w: unknown frequency %q", ErrMalformedSchedule, s.Frequency)
	}
	if s.NextRun.IsZero() {
		return nil, fmt.Errorf("%w: zero next-run", ErrMalformedSchedule)
	}
	if s.Frequency == core.Monthly && (s.DayOfMonth < 1 || s.DayOfMonth > 31) {
		return nil, fmt.Errorf("%w: day of month %d", ErrMalformedSchedule, s.DayOfMonth)
	}
	if s.Frequency == core.Weekly && (s.DayOfWeek < 0 || s.DayOfWeek > 6) {
		return nil, fmt.Errorf("%w: day of week %d", ErrMalformedSchedule, s.DayOfWeek)
	}
	return strategy, nil
}

// Advance catches a single schedule up to now. It emits one synthetic
// transaction per missed occurrence, each dated at the occurrence's own
// due instant (not now), and returns the schedule with its next-run
// stepped strictly past now. Occurrences are computed from the previous
// scheduled time, never from now, so the cadence cannot drift.
//
// Inactive schedules are untouched and emit nothing. On a malformed
// schedule the original is returned with an error so the caller can
// isolate it without losing the rest of the pass.
func Advance(s core.Schedule, now time.Time) (core.Schedule, []core.Transaction, error) {
	if !s.IsActive {
		return s, nil, nil
	}

	strategy, err := stepFor(s)
	if err != nil {
		return s, nil, err
	}

	var generated []core.Transaction
	for !s.NextRun.After(now) {
		generated = append(generated, syntheticTransaction(s, s.NextRun))

		next := strategy.Step(s, s.NextRun)
		if !next.After(s.NextRun) {
			// Every strategy moves at least a day; a stalled step means
			// corrupt data and an unbounded loop.
			return s, nil, fmt.Errorf("%w: next-run did not advance from %v", ErrMalformedSchedule, s.NextRun)
		}
		s.NextRun = next
	}

	return s, generated, nil
}

// RunNow is the manual trigger and deliberately not a special case of
// Advance: it always emits exactly one transaction dated now, even when
// nothing is due, and steps the next-run one period from its previous
// value rather than from now.
func RunNow(s core.Schedule, now time.Time) (core.Schedule, core.Transaction, error) {
	if !s.IsActive {
		return s, core.Transaction{}, ErrScheduleInactive
	}

	strategy, err := stepFor(s)
	if err != nil {
		return s, core.Transaction{}, err
	}

	tx := syntheticTransaction(s, now)
	s.NextRun = strategy.Step(s, s.NextRun)
	return s, tx, nil
}

func syntheticTransaction(s core.Schedule, date time.Time) core.Transaction {
	return core.Transaction{
		ID:         uuid.NewString(),
		WalletID:   s.WalletID,
		Amount:     s.Amount,
		Type:       s.Type,
		CategoryID: s.CategoryID,
		Date:       date,
		Note:       "Auto: " + s.Name,
	}
}
