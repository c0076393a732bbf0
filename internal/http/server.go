// Package http exposes the JSON API: the state snapshot with derived
// balances, CRUD for wallets, categories, transactions and schedules,
// the schedule triggers, and backup export/import.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"zenwallet/internal/cache"
	"zenwallet/internal/core"
	applog "zenwallet/internal/log"
	"zenwallet/internal/middleware/ratelimit"
	"zenwallet/internal/middleware/security"
	"zenwallet/internal/middleware/trace"
	"zenwallet/internal/services"
)

type Server struct {
	http.Server

	svc         *services.StateService
	rateLimiter *ratelimit.Limiter
	detector    *security.Detector

	// Month overviews are recomputed on demand and cached briefly; any
	// mutation invalidates the whole cache.
	overviewCache *cache.LRUCache[core.MonthOverview]
	cacheManager  *cache.Manager

	shutdownOnce sync.Once
}

// NewServer configures middleware and routes, returning a ready-to-run server.
func NewServer(addr string, svc *services.StateService, logger *applog.Logger) *Server {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	mux := http.NewServeMux()

	s := &Server{
		svc:           svc,
		rateLimiter:   ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		detector:      security.NewDetector(),
		overviewCache: cache.NewLRUCache[core.MonthOverview](24, 5*time.Minute),
		cacheManager:  cache.NewManager(),
	}

	s.cacheManager.Register(s.overviewCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	headers := security.NewHeadersMiddleware(apiHeadersConfig())
	traced := trace.NewMiddleware(s.detector.ExtractClientIP)
	limited := mutatingOnly(s.rateLimiter.Middleware(s.detector.ExtractClientIP, nil))
	logged := applog.Middleware(logger.WithComponent(applog.ComponentHTTP))

	chain := func(h http.Handler) http.Handler {
		return logged(traced.Middleware(headers.Middleware(s.withDetection(limited(h)))))
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	api := http.NewServeMux()
	api.HandleFunc("GET /api/state", s.handleGetState)
	api.HandleFunc("GET /api/summary", s.handleMonthOverview)

	api.HandleFunc("POST /api/wallets", s.handleCreateWallet)
	api.HandleFunc("PUT /api/wallets/{id}", s.handleUpdateWallet)
	api.HandleFunc("DELETE /api/wallets/{id}", s.handleDeleteWallet)

	api.HandleFunc("POST /api/categories", s.handleCreateCategory)
	api.HandleFunc("PUT /api/categories/{id}", s.handleUpdateCategory)
	api.HandleFunc("DELETE /api/categories/{id}", s.handleDeleteCategory)

	api.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	api.HandleFunc("PUT /api/transactions/{id}", s.handleUpdateTransaction)
	api.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)

	api.HandleFunc("POST /api/schedules", s.handleCreateSchedule)
	api.HandleFunc("PUT /api/schedules/{id}", s.handleUpdateSchedule)
	api.HandleFunc("DELETE /api/schedules/{id}", s.handleDeleteSchedule)
	api.HandleFunc("POST /api/schedules/{id}/toggle", s.handleToggleSchedule)
	api.HandleFunc("POST /api/schedules/{id}/run", s.handleRunScheduleNow)
	api.HandleFunc("POST /api/schedules/reconcile", s.handleReconcile)

	api.HandleFunc("GET /api/export", s.handleExport)
	api.HandleFunc("POST /api/import", s.handleImport)
	api.HandleFunc("PUT /api/settings/dark-mode", s.handleDarkMode)

	mux.Handle("/api/", chain(api))

	s.Server = http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return s
}

// apiHeadersConfig narrows the default policy for a JSON-only surface:
// nothing is ever rendered, so every content source is denied.
func apiHeadersConfig() security.HeadersConfig {
	cfg := security.DefaultHeadersConfig()
	cfg.CSP = "default-src 'none'; frame-ancestors 'none'; base-uri 'none'"
	return cfg
}

// mutatingOnly applies mw to writes and lets reads through untouched.
// The state snapshot is polled freely; only mutations are rate limited.
func mutatingOnly(mw func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		guarded := mw(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
			default:
				guarded.ServeHTTP(w, r)
			}
		})
	}
}

// withDetection logs requests that match known probe patterns. They are
// served normally; the signal is for the operator, not the client.
func (s *Server) withDetection(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.detector.DetectSuspiciousRequest(r) {
			slog.WarnContext(r.Context(), "Suspicious request detected",
				"method", r.Method,
				"path", r.URL.Path,
				"client_ip", s.detector.ExtractClientIP(r))
		}
		next.ServeHTTP(w, r)
	})
}

// Shutdown stops the background routines and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		s.cacheManager.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func (s *Server) invalidateOverviews() {
	// Mutations are rare enough that dropping the whole cache is simpler
	// than tracking which months a change touches.
	s.overviewCache.Clear()
}

func overviewKey(year, month int) string {
	return strconv.Itoa(year) + "-" + strconv.Itoa(month)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if _, err := s.svc.GetState(r.Context()); err != nil {
		slog.ErrorContext(r.Context(), "Readiness check failed", "error", err)
		http.Error(w, "not ready", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
