package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"zenwallet/internal/core"
)

// walletView is a wallet plus its derived balance. The stored Balance
// stays the baseline; CurrentBalance folds every transaction effect on
// top of it.
type walletView struct {
	core.Wallet
	CurrentBalance core.Money `json:"currentBalance"`
}

type stateView struct {
	Wallets      []walletView       `json:"wallets"`
	Transactions []core.Transaction `json:"transactions"`
	Categories   []core.Category    `json:"categories"`
	WalletTypes  []string           `json:"walletTypes"`
	Schedules    []core.Schedule    `json:"schedules"`
	IsDarkMode   bool               `json:"isDarkMode"`
}

func newStateView(state core.AppState) stateView {
	view := stateView{
		Wallets:      make([]walletView, 0, len(state.Wallets)),
		Transactions: state.Transactions,
		Categories:   state.Categories,
		WalletTypes:  state.WalletTypes,
		Schedules:    state.Schedules,
		IsDarkMode:   state.IsDarkMode,
	}
	for _, w := range state.Wallets {
		view.Wallets = append(view.Wallets, walletView{
			Wallet:         w,
			CurrentBalance: core.DeriveBalance(w, state.Transactions),
		})
	}
	return view
}

func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	state, err := s.svc.GetState(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newStateView(state))
}

func (s *Server) handleMonthOverview(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	year, month := now.Year(), int(now.Month())
	if v := strings.TrimSpace(r.URL.Query().Get("year")); v != "" {
		if y, err := strconv.Atoi(v); err == nil {
			year = y
		}
	}
	if v := strings.TrimSpace(r.URL.Query().Get("month")); v != "" {
		if m, err := strconv.Atoi(v); err == nil {
			month = m
		}
	}
	if month < 1 || month > 12 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "month must be between 1 and 12"})
		return
	}

	key := overviewKey(year, month)
	if ov, found := s.overviewCache.Get(key); found {
		writeJSON(w, http.StatusOK, ov)
		return
	}

	state, err := s.svc.GetState(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	ov := core.ComputeMonthOverview(state, year, month)
	s.overviewCache.Set(key, ov)
	writeJSON(w, http.StatusOK, ov)
}

// --- wallets ---

func (s *Server) handleCreateWallet(w http.ResponseWriter, r *http.Request) {
	var wallet core.Wallet
	if err := decodeBody(r, &wallet); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}
	created, err := s.svc.CreateWallet(r.Context(), wallet)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateOverviews()
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateWallet(w http.ResponseWriter, r *http.Request) {
	var wallet core.Wallet
	if err := decodeBody(r, &wallet); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}
	wallet.ID = r.PathValue("id")
	updated, err := s.svc.UpdateWallet(r.Context(), wallet)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateOverviews()
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteWallet(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteWallet(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateOverviews()
	writeJSON(w, http.StatusNoContent, nil)
}

// --- categories ---

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var cat core.Category
	if err := decodeBody(r, &cat); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}
	created, err := s.svc.CreateCategory(r.Context(), cat)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	var cat core.Category
	if err := decodeBody(r, &cat); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}
	cat.ID = r.PathValue("id")
	updated, err := s.svc.UpdateCategory(r.Context(), cat)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateOverviews()
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteCategory(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateOverviews()
	writeJSON(w, http.StatusNoContent, nil)
}

// --- transactions ---

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var tx core.Transaction
	if err := decodeBody(r, &tx); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}
	created, err := s.svc.AddTransaction(r.Context(), tx)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateOverviews()
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var tx core.Transaction
	if err := decodeBody(r, &tx); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}
	tx.ID = r.PathValue("id")
	updated, err := s.svc.UpdateTransaction(r.Context(), tx)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateOverviews()
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteTransaction(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateOverviews()
	writeJSON(w, http.StatusNoContent, nil)
}

// --- schedules ---

func (s *Server) handleCreateSchedule(w http.ResponseWriter, r *http.Request) {
	var sch core.Schedule
	if err := decodeBody(r, &sch); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}
	created, err := s.svc.CreateSchedule(r.Context(), sch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateSchedule(w http.ResponseWriter, r *http.Request) {
	var sch core.Schedule
	if err := decodeBody(r, &sch); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}
	sch.ID = r.PathValue("id")
	updated, err := s.svc.UpdateSchedule(r.Context(), sch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteSchedule(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteSchedule(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleToggleSchedule(w http.ResponseWriter, r *http.Request) {
	toggled, err := s.svc.ToggleSchedule(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toggled)
}

func (s *Server) handleRunScheduleNow(w http.ResponseWriter, r *http.Request) {
	tx, err := s.svc.RunScheduleNow(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateOverviews()
	writeJSON(w, http.StatusCreated, tx)
}

func (s *Server) handleReconcile(w http.ResponseWriter, r *http.Request) {
	result, err := s.svc.Reconcile(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if result.Fired > 0 {
		s.invalidateOverviews()
	}
	writeJSON(w, http.StatusOK, struct {
		Fired        int                `json:"fired"`
		Failed       int                `json:"failed"`
		Transactions []core.Transaction `json:"transactions"`
	}{
		Fired:        result.Fired,
		Failed:       result.Failed,
		Transactions: result.Transactions,
	})
}

// --- backup & preferences ---

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="zenwallet-backup.json"`)
	if err := s.svc.Export(r.Context(), w); err != nil {
		// Headers are already written; nothing sensible left to send.
		slog.ErrorContext(r.Context(), "Backup export failed", "error", err)
	}
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	state, err := s.svc.Import(r.Context(), r.Body)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateOverviews()
	writeJSON(w, http.StatusOK, newStateView(state))
}

func (s *Server) handleDarkMode(w http.ResponseWriter, r *http.Request) {
	var body struct {
		IsDarkMode *bool `json:"isDarkMode"`
	}
	if err := decodeBody(r, &body); err != nil || body.IsDarkMode == nil {
		if err == nil {
			err = errors.New("isDarkMode is required")
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}
	if err := s.svc.SetDarkMode(r.Context(), *body.IsDarkMode); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
