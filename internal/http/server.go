// Package http exposes the household ledger over a JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"coppia/internal/core"
	"coppia/internal/equity"
	"coppia/internal/log"
	"coppia/internal/services"
)

// DashboardProvider serves the cached monthly snapshot.
type DashboardProvider interface {
	MonthlyStatus(ctx context.Context, period core.Period) (equity.MonthlyStatus, error)
}

// ExpenseAPI is the slice of the ledger service the handlers need.
type ExpenseAPI interface {
	CreateExpense(ctx context.Context, in services.NewExpenseInput) (core.SharedExpense, error)
	ListExpenses(ctx context.Context, period core.Period) ([]core.SharedExpense, error)
	DeleteExpense(ctx context.Context, id string) error
}

// SavingsAPI is the slice of the savings service the handlers need.
type SavingsAPI interface {
	CreateGoal(ctx context.Context, in services.NewGoalInput) (core.SavingsGoal, error)
	Goal(ctx context.Context, id string) (core.SavingsGoal, error)
	ListOpenGoals(ctx context.Context) ([]core.SavingsGoal, error)
	Contribute(ctx context.Context, goalID, memberID string, amount core.Money, date time.Time) (core.SavingsGoal, error)
}

// FinancesAPI declares a member's monthly figures.
type FinancesAPI interface {
	Declare(ctx context.Context, memberID string, period core.Period, income, fixed core.Money) error
}

// Seeder bootstraps the two household members.
type Seeder interface {
	SeedMembers(ctx context.Context, first, second core.Member, firstEmail, secondEmail string) error
}

// Pinger verifies storage connectivity for the readiness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server wires the JSON API over the service layer.
type Server struct {
	http.Server

	dashboard DashboardProvider
	expenses  ExpenseAPI
	savings   SavingsAPI
	finances  FinancesAPI
	seeder    Seeder
	pinger    Pinger

	rateLimiter  *rateLimiter
	started      time.Time
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(addr string, dashboard DashboardProvider, expenses ExpenseAPI, savings SavingsAPI, finances FinancesAPI, seeder Seeder, pinger Pinger, requestsPerMinute int, logger *log.Logger) *Server {
	s := &Server{
		dashboard:   dashboard,
		expenses:    expenses,
		savings:     savings,
		finances:    finances,
		seeder:      seeder,
		pinger:      pinger,
		rateLimiter: newRateLimiter(requestsPerMinute),
		started:     time.Now(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /api/dashboard", s.handleDashboard)
	mux.HandleFunc("POST /api/expenses", s.handleCreateExpense)
	mux.HandleFunc("GET /api/expenses", s.handleListExpenses)
	mux.HandleFunc("DELETE /api/expenses/{id}", s.handleDeleteExpense)
	mux.HandleFunc("GET /api/savings", s.handleListGoals)
	mux.HandleFunc("POST /api/savings", s.handleCreateGoal)
	mux.HandleFunc("GET /api/savings/{id}", s.handleGetGoal)
	mux.HandleFunc("POST /api/savings/{id}/contributions", s.handleContribute)
	mux.HandleFunc("PUT /api/monthly-finances", s.handleDeclareFinances)
	mux.HandleFunc("POST /api/seed", s.handleSeed)

	handler := s.withGuards(mux)
	if logger != nil {
		handler = log.RequestMiddleware(logger)(handler)
	}

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return s
}

// withGuards adds security headers and rate limits mutating requests.
func (s *Server) withGuards(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodDelete:
			if !s.rateLimiter.allow(clientIP(r)) {
				w.Header().Set("Retry-After", "60")
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded, try again later")
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

// Shutdown stops the rate limiter cleanup goroutine and then drains the
// HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).String(),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]string)

	if s.pinger == nil {
		checks["storage"] = "not_configured"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else if err := s.pinger.Ping(ctx); err != nil {
		checks["storage"] = "failed: " + err.Error()
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["storage"] = "ok"
	}

	writeJSON(w, httpStatus, map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}
