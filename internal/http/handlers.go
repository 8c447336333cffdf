package http

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"coppia/internal/core"
	"coppia/internal/services"
	"coppia/internal/storage"
)

// handleDashboard returns the full monthly snapshot: participation split,
// debt settlement, residual for savings and goal projections.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	period, err := parsePeriod(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	status, err := s.dashboard.MonthlyStatus(r.Context(), period)
	if err != nil {
		slog.ErrorContext(r.Context(), "Dashboard snapshot error",
			"error", err, "year", period.Year, "month", period.Month)
		writeError(w, http.StatusInternalServerError, "could not load monthly status")
		return
	}

	writeJSON(w, http.StatusOK, toDashboardView(status))
}

type createExpenseRequest struct {
	Description   string `json:"description"`
	Amount        string `json:"amount"`
	Category      string `json:"category"`
	PaidByID      string `json:"paid_by_id"`
	SplitType     string `json:"split_type"`
	BeneficiaryID string `json:"beneficiary_id"`
	Date          string `json:"date"`
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req createExpenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid amount")
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid date, expected YYYY-MM-DD")
		return
	}

	expense, err := s.expenses.CreateExpense(r.Context(), services.NewExpenseInput{
		Description:   sanitizeInput(req.Description),
		Amount:        core.Money{Cents: cents},
		Category:      req.Category,
		PaidByID:      req.PaidByID,
		SplitType:     core.SplitType(req.SplitType),
		BeneficiaryID: req.BeneficiaryID,
		Date:          date,
	})
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, toExpenseView(expense))
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	period, err := parsePeriod(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	expenses, err := s.expenses.ListExpenses(r.Context(), period)
	if err != nil {
		slog.ErrorContext(r.Context(), "List expenses error",
			"error", err, "year", period.Year, "month", period.Month)
		writeError(w, http.StatusInternalServerError, "could not list expenses")
		return
	}

	views := make([]expenseView, 0, len(expenses))
	for _, e := range expenses {
		views = append(views, toExpenseView(e))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := s.expenses.DeleteExpense(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "expense not found")
			return
		}
		slog.ErrorContext(r.Context(), "Delete expense error", "error", err, "expense_id", id)
		writeError(w, http.StatusInternalServerError, "could not delete expense")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type createGoalRequest struct {
	Name         string `json:"name"`
	TargetAmount string `json:"target_amount"`
	TargetDate   string `json:"target_date"`
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var req createGoalRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cents, err := core.ParseDecimalToCents(req.TargetAmount)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid target amount")
		return
	}

	date, err := parseDate(req.TargetDate)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid target date, expected YYYY-MM-DD")
		return
	}

	goal, err := s.savings.CreateGoal(r.Context(), services.NewGoalInput{
		Name:         sanitizeInput(req.Name),
		TargetAmount: core.Money{Cents: cents},
		TargetDate:   date,
	})
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, toGoalView(goal, false))
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := s.savings.ListOpenGoals(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "List goals error", "error", err)
		writeError(w, http.StatusInternalServerError, "could not list savings goals")
		return
	}

	views := make([]goalView, 0, len(goals))
	for _, g := range goals {
		views = append(views, toGoalView(g, false))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleGetGoal(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	goal, err := s.savings.Goal(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "goal not found")
			return
		}
		slog.ErrorContext(r.Context(), "Load goal error", "error", err, "goal_id", id)
		writeError(w, http.StatusInternalServerError, "could not load goal")
		return
	}

	writeJSON(w, http.StatusOK, toGoalView(goal, true))
}

type contributeRequest struct {
	MemberID string `json:"member_id"`
	Amount   string `json:"amount"`
	Date     string `json:"date"`
}

func (s *Server) handleContribute(w http.ResponseWriter, r *http.Request) {
	goalID := r.PathValue("id")

	var req contributeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid amount")
		return
	}

	var date time.Time
	if req.Date != "" {
		date, err = parseDate(req.Date)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "invalid date, expected YYYY-MM-DD")
			return
		}
	}

	goal, err := s.savings.Contribute(r.Context(), goalID, req.MemberID, core.Money{Cents: cents}, date)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			writeError(w, http.StatusNotFound, "goal not found")
		case errors.Is(err, storage.ErrGoalCompleted):
			writeError(w, http.StatusConflict, "goal already completed")
		case errors.Is(err, core.ErrInvalidAmount):
			writeError(w, http.StatusUnprocessableEntity, "invalid amount")
		default:
			slog.ErrorContext(r.Context(), "Contribution error", "error", err, "goal_id", goalID)
			writeError(w, http.StatusInternalServerError, "could not record contribution")
		}
		return
	}

	writeJSON(w, http.StatusOK, toGoalView(goal, true))
}

type declareFinancesRequest struct {
	MemberID      string `json:"member_id"`
	Year          int    `json:"year"`
	Month         int    `json:"month"`
	TotalIncome   string `json:"total_income"`
	FixedExpenses string `json:"fixed_expenses"`
}

func (s *Server) handleDeclareFinances(w http.ResponseWriter, r *http.Request) {
	var req declareFinancesRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	income, err := core.ParseNonNegativeCents(req.TotalIncome)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid total income")
		return
	}
	fixed, err := core.ParseNonNegativeCents(req.FixedExpenses)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid fixed expenses")
		return
	}

	period := core.Period{Year: req.Year, Month: req.Month}
	if err := s.finances.Declare(r.Context(), req.MemberID, period, core.Money{Cents: income}, core.Money{Cents: fixed}); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type seedRequest struct {
	First struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"first"`
	Second struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"second"`
}

// handleSeed bootstraps the two household members. Seeding is a no-op once
// members exist.
func (s *Server) handleSeed(w http.ResponseWriter, r *http.Request) {
	var req seedRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.First.Name == "" || req.Second.Name == "" {
		writeError(w, http.StatusUnprocessableEntity, "both member names are required")
		return
	}

	first := core.Member{ID: uuid.NewString(), Name: sanitizeInput(req.First.Name)}
	second := core.Member{ID: uuid.NewString(), Name: sanitizeInput(req.Second.Name)}

	if err := s.seeder.SeedMembers(r.Context(), first, second, req.First.Email, req.Second.Email); err != nil {
		slog.ErrorContext(r.Context(), "Seed error", "error", err)
		writeError(w, http.StatusInternalServerError, "could not seed members")
		return
	}

	w.WriteHeader(http.StatusCreated)
}
