package services

import (
	"log/slog"
	"testing"

	"zenwallet/internal/core"
)

func TestProcessDueSchedulesIsolatesFailures(t *testing.T) {
	now := mustParse(t, "2024-04-15T12:00:00Z")

	healthy := monthlySchedule(mustParse(t, "2024-03-01T09:00:00Z"), 1)
	healthy.ID = "sch-ok"

	broken := monthlySchedule(mustParse(t, "2024-03-01T09:00:00Z"), 1)
	broken.ID = "sch-broken"
	broken.Frequency = "FORTNIGHTLY"

	result := ProcessDueSchedules([]core.Schedule{broken, healthy}, now, slog.Default())

	if result.Failed != 1 {
		t.Fatalf("Failed = %d, want 1", result.Failed)
	}
	if result.Fired != 2 {
		t.Fatalf("Fired = %d, want 2 (Mar and Apr occurrences)", result.Fired)
	}
	if len(result.Schedules) != 2 {
		t.Fatalf("kept %d schedules, want 2", len(result.Schedules))
	}

	// The broken schedule survives untouched.
	for _, s := range result.Schedules {
		if s.ID == "sch-broken" && !s.NextRun.Equal(broken.NextRun) {
			t.Fatalf("broken schedule advanced to %v", s.NextRun)
		}
		if s.ID == "sch-ok" {
			if want := mustParse(t, "2024-05-01T09:00:00Z"); !s.NextRun.Equal(want) {
				t.Fatalf("healthy schedule NextRun = %v, want %v", s.NextRun, want)
			}
		}
	}
}

func TestProcessDueSchedulesSortsNewestFirst(t *testing.T) {
	now := mustParse(t, "2024-03-05T12:00:00Z")

	daily := core.Schedule{
		ID: "sch-d", Name: "Coffee", Amount: core.Money{Cents: 350},
		Type: core.Expense, CategoryID: "cat-1", WalletID: "w-1",
		Frequency: core.Daily,
		NextRun:   mustParse(t, "2024-03-03T09:00:00Z"),
		IsActive:  true,
	}

	result := ProcessDueSchedules([]core.Schedule{daily}, now, nil)
	if result.Fired != 3 {
		t.Fatalf("Fired = %d, want 3", result.Fired)
	}
	for i := 1; i < len(result.Transactions); i++ {
		if result.Transactions[i].Date.After(result.Transactions[i-1].Date) {
			t.Fatalf("transactions not sorted newest-first at index %d", i)
		}
	}
}

func TestProcessDueSchedulesRecordsOccurrences(t *testing.T) {
	now := mustParse(t, "2024-04-15T12:00:00Z")
	s := monthlySchedule(mustParse(t, "2024-04-01T09:00:00Z"), 1)

	result := ProcessDueSchedules([]core.Schedule{s}, now, nil)
	if len(result.Occurrences) != 1 {
		t.Fatalf("recorded %d occurrences, want 1", len(result.Occurrences))
	}
	occ := result.Occurrences[0]
	if occ.ScheduleID != s.ID {
		t.Fatalf("occurrence schedule id = %s, want %s", occ.ScheduleID, s.ID)
	}
	if occ.Transaction.ID != result.Transactions[0].ID {
		t.Fatal("occurrence transaction does not match generated transaction")
	}
}

func TestPrependTransactions(t *testing.T) {
	older := core.Transaction{ID: "t-old", Date: mustParse(t, "2024-01-01T09:00:00Z")}
	newer := core.Transaction{ID: "t-new", Date: mustParse(t, "2024-02-01T09:00:00Z")}

	merged := PrependTransactions([]core.Transaction{older}, []core.Transaction{newer})
	if len(merged) != 2 {
		t.Fatalf("merged %d transactions, want 2", len(merged))
	}
	if merged[0].ID != "t-new" || merged[1].ID != "t-old" {
		t.Fatalf("merged order = [%s, %s], want newest first", merged[0].ID, merged[1].ID)
	}

	unchanged := PrependTransactions([]core.Transaction{older}, nil)
	if len(unchanged) != 1 || unchanged[0].ID != "t-old" {
		t.Fatal("prepending nothing changed the log")
	}
}
