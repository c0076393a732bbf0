package core

import (
	"testing"
	"time"
)

func TestComputeMonthOverview(t *testing.T) {
	date := func(day int) time.Time {
		return time.Date(2024, 3, day, 9, 0, 0, 0, time.UTC)
	}

	st := AppState{
		Categories: []Category{
			{ID: "cat-1", Name: "Food & Drinks", Type: Expense},
			{ID: "cat-4", Name: "Bills", Type: Expense},
			{ID: "cat-7", Name: "Salary", Type: Income},
		},
		Transactions: []Transaction{
			{ID: "t-1", WalletID: "w-1", Amount: Money{Cents: 1200}, Type: Expense, CategoryID: "cat-1", Date: date(3)},
			{ID: "t-2", WalletID: "w-1", Amount: Money{Cents: 800}, Type: Expense, CategoryID: "cat-1", Date: date(10)},
			{ID: "t-3", WalletID: "w-1", Amount: Money{Cents: 9500}, Type: Expense, CategoryID: "cat-4", Date: date(1)},
			{ID: "t-4", WalletID: "w-1", Amount: Money{Cents: 250000}, Type: Income, CategoryID: "cat-7", Date: date(25)},
			// Deleted category groups under Uncategorized.
			{ID: "t-5", WalletID: "w-1", Amount: Money{Cents: 400}, Type: Expense, CategoryID: "cat-gone", Date: date(12)},
			// Transfers never count.
			{ID: "t-6", WalletID: "w-1", ToWalletID: "w-2", Amount: Money{Cents: 50000}, Type: Transfer, Date: date(15)},
			// Other months are excluded.
			{ID: "t-7", WalletID: "w-1", Amount: Money{Cents: 7000}, Type: Expense, CategoryID: "cat-4", Date: time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)},
		},
	}

	ov := ComputeMonthOverview(st, 2024, 3)

	if ov.TotalExpense.Cents != 1200+800+9500+400 {
		t.Fatalf("TotalExpense = %d, want %d", ov.TotalExpense.Cents, 1200+800+9500+400)
	}
	if ov.TotalIncome.Cents != 250000 {
		t.Fatalf("TotalIncome = %d, want 250000", ov.TotalIncome.Cents)
	}

	want := []CategoryAmount{
		{Name: "Bills", Amount: Money{Cents: 9500}},
		{Name: "Food & Drinks", Amount: Money{Cents: 2000}},
		{Name: "Uncategorized", Amount: Money{Cents: 400}},
	}
	if len(ov.ByCategory) != len(want) {
		t.Fatalf("ByCategory has %d rows, want %d: %+v", len(ov.ByCategory), len(want), ov.ByCategory)
	}
	for i, w := range want {
		got := ov.ByCategory[i]
		if got.Name != w.Name || got.Amount.Cents != w.Amount.Cents {
			t.Fatalf("ByCategory[%d] = %+v, want %+v", i, got, w)
		}
	}
}

func TestComputeMonthOverviewEmptyMonth(t *testing.T) {
	ov := ComputeMonthOverview(AppState{}, 2024, 7)
	if ov.TotalExpense.Cents != 0 || ov.TotalIncome.Cents != 0 || len(ov.ByCategory) != 0 {
		t.Fatalf("empty month overview = %+v", ov)
	}
}
