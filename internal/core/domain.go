package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income   TransactionType = "INCOME"
	Expense  TransactionType = "EXPENSE"
	Transfer TransactionType = "TRANSFER"
)

const (
	Daily   Frequency = "DAILY"
	Weekly  Frequency = "WEEKLY"
	Monthly Frequency = "MONTHLY"
)

type (
	TransactionType string

	Frequency string

	Wallet struct {
		ID   string `json:"id"`
		Name string `json:"name"`
		// Balance is the baseline set at creation or by a direct edit.
		// The current balance is always derived, see DeriveBalance.
		Balance Money  `json:"balance"`
		Type    string `json:"type"`
		Color   string `json:"color"`
	}

	Category struct {
		ID       string          `json:"id"`
		Name     string          `json:"name"`
		IconName string          `json:"iconName"`
		Color    string          `json:"color"`
		Type     TransactionType `json:"type"` // INCOME or EXPENSE, never TRANSFER
	}

	Transaction struct {
		ID         string          `json:"id"`
		WalletID   string          `json:"walletId"`
		ToWalletID string          `json:"toWalletId,omitempty"` // set iff Type == TRANSFER
		Amount     Money           `json:"amount"`
		Type       TransactionType `json:"type"`
		CategoryID string          `json:"categoryId,omitempty"` // set iff Type != TRANSFER
		Date       time.Time       `json:"date"`
		Note       string          `json:"note"`
	}

	Schedule struct {
		ID         string          `json:"id"`
		Name       string          `json:"name"`
		Amount     Money           `json:"amount"`
		Type       TransactionType `json:"type"` // INCOME or EXPENSE, transfers are not schedulable
		CategoryID string          `json:"categoryId"`
		WalletID   string          `json:"walletId"`
		Frequency  Frequency       `json:"frequency"`
		DayOfMonth int             `json:"dayOfMonth,omitempty"` // 1-31, meaningful for MONTHLY
		DayOfWeek  int             `json:"dayOfWeek,omitempty"`  // 0=Sunday..6=Saturday, meaningful for WEEKLY
		NextRun    time.Time       `json:"nextRun"`
		IsActive   bool            `json:"isActive"`
	}

	AppState struct {
		Wallets      []Wallet      `json:"wallets"`
		Transactions []Transaction `json:"transactions"`
		Categories   []Category    `json:"categories"`
		WalletTypes  []string      `json:"walletTypes"`
		Schedules    []Schedule    `json:"schedules"`
		IsDarkMode   bool          `json:"isDarkMode"`
	}
)

var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrEmptyName          = errors.New("empty name")
	ErrEmptyWallet        = errors.New("empty wallet reference")
	ErrInvalidType        = errors.New("invalid transaction type")
	ErrInvalidFrequency   = errors.New("invalid frequency")
	ErrInvalidDayOfMonth  = errors.New("day of month must be between 1 and 31")
	ErrInvalidDayOfWeek   = errors.New("day of week must be between 0 and 6")
	ErrCategoryOnTransfer = errors.New("transfers carry no category")
	ErrMissingCategory    = errors.New("missing category reference")
	ErrMissingDestination = errors.New("transfer requires a destination wallet")
	ErrStrayDestination   = errors.New("destination wallet only valid on transfers")
	ErrSameWalletTransfer = errors.New("transfer source and destination must differ")
	ErrZeroDate           = errors.New("date cannot be zero")
)

func (t TransactionType) Valid() bool {
	switch t {
	case Income, Expense, Transfer:
		return true
	}
	return false
}

func (f Frequency) Valid() bool {
	switch f {
	case Daily, Weekly, Monthly:
		return true
	}
	return false
}

func (w Wallet) Validate() error {
	if strings.TrimSpace(w.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	// Transfers are rendered generically and never categorized.
	if c.Type != Income && c.Type != Expense {
		return ErrInvalidType
	}
	return nil
}

func (t Transaction) Validate() error {
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if t.WalletID == "" {
		return ErrEmptyWallet
	}
	if t.Date.IsZero() {
		return ErrZeroDate
	}
	if t.Type == Transfer {
		if t.ToWalletID == "" {
			return ErrMissingDestination
		}
		if t.ToWalletID == t.WalletID {
			return ErrSameWalletTransfer
		}
		if t.CategoryID != "" {
			return ErrCategoryOnTransfer
		}
		return nil
	}
	if t.ToWalletID != "" {
		return ErrStrayDestination
	}
	if t.CategoryID == "" {
		return ErrMissingCategory
	}
	return nil
}

func (s Schedule) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return ErrEmptyName
	}
	if s.Type != Income && s.Type != Expense {
		return ErrInvalidType
	}
	if err := s.Amount.Validate(); err != nil {
		return err
	}
	if s.WalletID == "" {
		return ErrEmptyWallet
	}
	if s.CategoryID == "" {
		return ErrMissingCategory
	}
	if !s.Frequency.Valid() {
		return ErrInvalidFrequency
	}
	if s.Frequency == Monthly && (s.DayOfMonth < 1 || s.DayOfMonth > 31) {
		return ErrInvalidDayOfMonth
	}
	if s.Frequency == Weekly && (s.DayOfWeek < 0 || s.DayOfWeek > 6) {
		return ErrInvalidDayOfWeek
	}
	return nil
}

// WalletByID resolves a wallet reference. A false result is not an error:
// deleted wallets stay referenced by history and degrade to a display fallback.
func (st *AppState) WalletByID(id string) (Wallet, bool) {
	for _, w := range st.Wallets {
		if w.ID == id {
			return w, true
		}
	}
	return Wallet{}, false
}

func (st *AppState) CategoryByID(id string) (Category, bool) {
	for _, c := range st.Categories {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}

func (st *AppState) ScheduleByID(id string) (Schedule, bool) {
	for _, s := range st.Schedules {
		if s.ID == id {
			return s, true
		}
	}
	return Schedule{}, false
}

func (st *AppState) TransactionByID(id string) (Transaction, bool) {
	for _, t := range st.Transactions {
		if t.ID == id {
			return t, true
		}
	}
	return Transaction{}, false
}
