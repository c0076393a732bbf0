package services

import (
	"log/slog"
	"sort"
	"time"

	"zenwallet/internal/core"
)

// FiredOccurrence pairs a generated transaction with its schedule, for
// event publication.
type FiredOccurrence struct {
	ScheduleID  string
	Transaction core.Transaction
}

// RunResult summarizes one reconciliation pass.
type RunResult struct {
	Schedules    []core.Schedule
	Transactions []core.Transaction // generated this pass, not the whole log
	Occurrences  []FiredOccurrence
	Fired        int
	Failed       int
}

// ProcessDueSchedules catches every schedule up to now. Each schedule is
// advanced in isolation: a malformed one is logged, left unadvanced and
// does not stop the pass. Generated transactions come back sorted
// newest-first so callers can prepend them to the transaction log.
func ProcessDueSchedules(schedules []core.Schedule, now time.Time, logger *slog.Logger) RunResult {
	if logger == nil {
		logger = slog.Default()
	}

	result := RunResult{Schedules: make([]core.Schedule, 0, len(schedules))}

	for _, s := range schedules {
		advanced, generated, err := Advance(s, now)
		if err != nil {
			logger.Warn("Skipping schedule that cannot be advanced",
				"schedule_id", s.ID,
				"schedule_name", s.Name,
				"error", err)
			result.Schedules = append(result.Schedules, s)
			result.Failed++
			continue
		}

		result.Schedules = append(result.Schedules, advanced)
		if len(generated) > 0 {
			result.Transactions = append(result.Transactions, generated...)
			for _, tx := range generated {
				result.Occurrences = append(result.Occurrences, FiredOccurrence{ScheduleID: s.ID, Transaction: tx})
			}
			result.Fired += len(generated)
			logger.Info("Schedule caught up",
				"schedule_id", s.ID,
				"schedule_name", s.Name,
				"occurrences", len(generated),
				"next_run", advanced.NextRun)
		}
	}

	sort.SliceStable(result.Transactions, func(i, j int) bool {
		return result.Transactions[i].Date.After(result.Transactions[j].Date)
	})

	return result
}

// PrependTransactions puts the newest entries at the head of the log,
// matching how the transaction list is displayed.
func PrependTransactions(log []core.Transaction, newest []core.Transaction) []core.Transaction {
	if len(newest) == 0 {
		return log
	}
	merged := make([]core.Transaction, 0, len(log)+len(newest))
	merged = append(merged, newest...)
	merged = append(merged, log...)
	return merged
}
