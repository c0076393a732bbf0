package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"zenwallet/internal/core"
	"zenwallet/internal/services"
	"zenwallet/internal/storage"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// writeError maps domain errors onto HTTP statuses: validation failures
// are 422, missing entities 404, rejected manual runs 409, unreadable
// payloads 400, everything else 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError

	switch {
	case isValidationError(err):
		status = http.StatusUnprocessableEntity
	case isNotFound(err):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrScheduleInactive):
		status = http.StatusConflict
	case errors.Is(err, services.ErrMalformedSchedule):
		status = http.StatusConflict
	case errors.Is(err, storage.ErrInvalidBackup):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "Request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func isValidationError(err error) bool {
	for _, target := range []error{
		core.ErrInvalidAmount,
		core.ErrEmptyName,
		core.ErrEmptyWallet,
		core.ErrInvalidType,
		core.ErrInvalidFrequency,
		core.ErrInvalidDayOfMonth,
		core.ErrInvalidDayOfWeek,
		core.ErrCategoryOnTransfer,
		core.ErrMissingCategory,
		core.ErrMissingDestination,
		core.ErrStrayDestination,
		core.ErrSameWalletTransfer,
		core.ErrZeroDate,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func isNotFound(err error) bool {
	for _, target := range []error{
		services.ErrWalletNotFound,
		services.ErrCategoryNotFound,
		services.ErrTransactionNotFound,
		services.ErrScheduleNotFound,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// decodeBody parses a JSON request body into dst, rejecting unknown
// fields so typos surface as 400s instead of silently dropped data.
func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
