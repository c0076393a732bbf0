package core

import "sort"

// CategoryAmount is an amount aggregated under one category name.
type CategoryAmount struct {
	Name   string `json:"name"`
	Amount Money  `json:"amount"`
}

// MonthOverview summarizes spending for one calendar month.
type MonthOverview struct {
	Year         int              `json:"year"`
	Month        int              `json:"month"` // 1-12
	TotalExpense Money            `json:"totalExpense"`
	TotalIncome  Money            `json:"totalIncome"`
	ByCategory   []CategoryAmount `json:"byCategory"`
}

// ComputeMonthOverview aggregates the month's income and expense totals
// and breaks expenses down by category, largest first. Transfers move
// money between own wallets and are excluded. Transactions referencing a
// deleted category are grouped under "Uncategorized".
func ComputeMonthOverview(st AppState, year, month int) MonthOverview {
	ov := MonthOverview{Year: year, Month: month}
	byCat := make(map[string]int64)

	for _, tx := range st.Transactions {
		if tx.Date.Year() != year || int(tx.Date.Month()) != month {
			continue
		}
		switch tx.Type {
		case Income:
			ov.TotalIncome.Cents += tx.Amount.Cents
		case Expense:
			ov.TotalExpense.Cents += tx.Amount.Cents
			name := "Uncategorized"
			if cat, ok := st.CategoryByID(tx.CategoryID); ok {
				name = cat.Name
			}
			byCat[name] += tx.Amount.Cents
		}
	}

	for name, cents := range byCat {
		ov.ByCategory = append(ov.ByCategory, CategoryAmount{Name: name, Amount: Money{Cents: cents}})
	}
	sort.Slice(ov.ByCategory, func(i, j int) bool {
		if ov.ByCategory[i].Amount.Cents != ov.ByCategory[j].Amount.Cents {
			return ov.ByCategory[i].Amount.Cents > ov.ByCategory[j].Amount.Cents
		}
		return ov.ByCategory[i].Name < ov.ByCategory[j].Name
	})
	return ov
}
