package storage

import "zenwallet/internal/core"

// DefaultState is the state a fresh install (or an unrecoverable blob)
// starts from: one seed wallet, the known wallet-type catalog and the
// stock category set.
func DefaultState() core.AppState {
	return core.AppState{
		Wallets: []core.Wallet{
			{ID: "w-1", Name: "Main Savings", Balance: core.Money{Cents: 0}, Type: "Bank Account", Color: "#3b82f6"},
		},
		Transactions: []core.Transaction{},
		Schedules:    []core.Schedule{},
		Categories:   DefaultCategories(),
		WalletTypes: []string{
			"Bank Account",
			"Touch & Go E-Wallet",
			"Touch & Go Card (NFC)",
			"Wise Account",
			"Cash",
			"Credit Card",
			"Investment Account",
			"Crypto Wallet",
			"ShopeePay",
			"GrabPay",
		},
		IsDarkMode: false,
	}
}

// DefaultCategories returns the stock categories. IconName values are
// symbolic keys into the frontend's icon catalog and carry no meaning here.
func DefaultCategories() []core.Category {
	return []core.Category{
		{ID: "cat-1", Name: "Food & Drinks", IconName: "utensils", Color: "#f97316", Type: core.Expense},
		{ID: "cat-2", Name: "Transport", IconName: "car", Color: "#0ea5e9", Type: core.Expense},
		{ID: "cat-3", Name: "Shopping", IconName: "shopping-bag", Color: "#ec4899", Type: core.Expense},
		{ID: "cat-4", Name: "Bills", IconName: "receipt", Color: "#8b5cf6", Type: core.Expense},
		{ID: "cat-5", Name: "Entertainment", IconName: "gamepad", Color: "#22c55e", Type: core.Expense},
		{ID: "cat-6", Name: "Health", IconName: "heart-pulse", Color: "#ef4444", Type: core.Expense},
		{ID: "cat-7", Name: "Salary", IconName: "banknote", Color: "#10b981", Type: core.Income},
		{ID: "cat-8", Name: "Freelance", IconName: "laptop", Color: "#6366f1", Type: core.Income},
	}
}
