// Package storage persists the household ledger in SQLite.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"coppia/internal/core"

	_ "modernc.org/sqlite"
)

const dateLayout = "2006-01-02"

var (
	// ErrNotFound is returned when a record does not exist or was deleted.
	ErrNotFound = errors.New("record not found")
	// ErrHouseholdIncomplete is returned until exactly two members exist.
	ErrHouseholdIncomplete = errors.New("household needs exactly two members")
	// ErrGoalCompleted is returned when contributing to a finished goal.
	ErrGoalCompleted = errors.New("goal already completed")
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping verifies the database connection, for readiness checks.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// HouseholdMembers returns the two members in creation order. The contract
// is fixed at exactly two; any other count is an error.
func (r *SQLiteRepository) HouseholdMembers(ctx context.Context) (core.Member, core.Member, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name FROM members ORDER BY created_at, id LIMIT 3`)
	if err != nil {
		return core.Member{}, core.Member{}, fmt.Errorf("query members: %w", err)
	}
	defer rows.Close()

	var members []core.Member
	for rows.Next() {
		var m core.Member
		if err := rows.Scan(&m.ID, &m.Name); err != nil {
			return core.Member{}, core.Member{}, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return core.Member{}, core.Member{}, fmt.Errorf("iterate members: %w", err)
	}
	if len(members) != 2 {
		return core.Member{}, core.Member{}, ErrHouseholdIncomplete
	}

	return members[0], members[1], nil
}

// SeedMembers inserts the two household members if none exist yet.
func (r *SQLiteRepository) SeedMembers(ctx context.Context, first, second core.Member, firstEmail, secondEmail string) error {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM members`).Scan(&count); err != nil {
		return fmt.Errorf("count members: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, m := range []struct {
		member core.Member
		email  string
	}{{first, firstEmail}, {second, secondEmail}} {
		var email any
		if m.email != "" {
			email = m.email
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO members (id, name, email) VALUES (?, ?, ?)`,
			m.member.ID, m.member.Name, email); err != nil {
			return fmt.Errorf("insert member %s: %w", m.member.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed: %w", err)
	}

	slog.InfoContext(ctx, "Household members seeded",
		"first", first.Name, "second", second.Name)
	return nil
}

// UpsertMonthlyFinances stores one member's declared figures for a period.
// Net available is never written; it is always derived from these inputs.
func (r *SQLiteRepository) UpsertMonthlyFinances(ctx context.Context, memberID string, period core.Period, incomeCents, fixedCents int64) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO monthly_finances (member_id, year, month, total_income_cents, fixed_expenses_cents, updated_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (member_id, year, month) DO UPDATE SET
			total_income_cents = excluded.total_income_cents,
			fixed_expenses_cents = excluded.fixed_expenses_cents,
			updated_at = CURRENT_TIMESTAMP`,
		memberID, period.Year, period.Month, incomeCents, fixedCents)
	if err != nil {
		return fmt.Errorf("upsert monthly finances: %w", err)
	}
	return nil
}

// MonthlyFinances loads a member's figures for a period. A member with no
// record for the period reports zero income and zero fixed expenses.
func (r *SQLiteRepository) MonthlyFinances(ctx context.Context, member core.Member, period core.Period) (core.MemberFinances, error) {
	finances := core.MemberFinances{
		MemberID:   member.ID,
		MemberName: member.Name,
	}

	var income, fixed int64
	err := r.db.QueryRowContext(ctx, `
		SELECT total_income_cents, fixed_expenses_cents
		FROM monthly_finances
		WHERE member_id = ? AND year = ? AND month = ?`,
		member.ID, period.Year, period.Month).Scan(&income, &fixed)
	if errors.Is(err, sql.ErrNoRows) {
		return finances, nil
	}
	if err != nil {
		return finances, fmt.Errorf("query monthly finances: %w", err)
	}

	finances.TotalIncome = core.Money{Cents: income}
	finances.FixedExpenses = core.Money{Cents: fixed}
	return finances, nil
}

// CreateExpense stores a new expense record. The record's period tag was
// derived from its date at creation and is stored frozen; it never changes
// afterwards.
func (r *SQLiteRepository) CreateExpense(ctx context.Context, e core.SharedExpense) error {
	var beneficiary any
	if e.BeneficiaryID != "" {
		beneficiary = e.BeneficiaryID
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO shared_expenses
			(id, description, amount_cents, category, paid_by, split_type, beneficiary_id, spent_on, year, month)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Description, e.Amount.Cents, e.Category, e.PaidByID,
		string(e.SplitType), beneficiary, e.Date.Format(dateLayout),
		e.Period.Year, e.Period.Month)
	if err != nil {
		return fmt.Errorf("insert expense: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved",
		"expense_id", e.ID,
		"amount_cents", e.Amount.Cents,
		"split_type", string(e.SplitType),
		"year", e.Period.Year,
		"month", e.Period.Month)
	return nil
}

// ListExpenses returns the live expense records for a period.
func (r *SQLiteRepository) ListExpenses(ctx context.Context, period core.Period) ([]core.SharedExpense, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, description, amount_cents, category, paid_by, split_type, beneficiary_id, spent_on, year, month
		FROM shared_expenses
		WHERE year = ? AND month = ? AND deleted_at IS NULL
		ORDER BY spent_on, created_at`,
		period.Year, period.Month)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	var expenses []core.SharedExpense
	for rows.Next() {
		var (
			e           core.SharedExpense
			splitType   string
			beneficiary sql.NullString
			spentOn     string
		)
		if err := rows.Scan(&e.ID, &e.Description, &e.Amount.Cents, &e.Category,
			&e.PaidByID, &splitType, &beneficiary, &spentOn,
			&e.Period.Year, &e.Period.Month); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		e.SplitType = core.SplitType(splitType)
		if beneficiary.Valid {
			e.BeneficiaryID = beneficiary.String
		}
		if e.Date, err = time.Parse(dateLayout, spentOn); err != nil {
			return nil, fmt.Errorf("parse expense date %q: %w", spentOn, err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}

	return expenses, nil
}

// SoftDeleteExpense marks an expense deleted. Expense records are immutable
// once created; deletion is the only lifecycle transition.
func (r *SQLiteRepository) SoftDeleteExpense(ctx context.Context, id string) (core.Period, error) {
	var period core.Period
	err := r.db.QueryRowContext(ctx,
		`SELECT year, month FROM shared_expenses WHERE id = ? AND deleted_at IS NULL`,
		id).Scan(&period.Year, &period.Month)
	if errors.Is(err, sql.ErrNoRows) {
		return period, ErrNotFound
	}
	if err != nil {
		return period, fmt.Errorf("query expense period: %w", err)
	}

	if _, err := r.db.ExecContext(ctx,
		`UPDATE shared_expenses SET deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted_at IS NULL`,
		id); err != nil {
		return period, fmt.Errorf("soft delete expense: %w", err)
	}

	slog.InfoContext(ctx, "Expense deleted", "expense_id", id)
	return period, nil
}

// CreateGoal stores a new savings goal. The current target date starts equal
// to the original one; the monthly target derives from the remainder.
func (r *SQLiteRepository) CreateGoal(ctx context.Context, g core.SavingsGoal, now time.Time) error {
	monthlyTarget := deriveMonthlyTarget(g, now)

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO savings_goals
			(id, name, target_cents, current_cents, original_target_date, current_target_date, monthly_target_cents, is_completed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.Name, g.TargetAmount.Cents, g.CurrentAmount.Cents,
		g.OriginalTargetDate.Format(dateLayout), g.CurrentTargetDate.Format(dateLayout),
		monthlyTarget, boolToInt(g.IsCompleted()))
	if err != nil {
		return fmt.Errorf("insert goal: %w", err)
	}

	slog.InfoContext(ctx, "Savings goal created",
		"goal_id", g.ID, "amount_cents", g.TargetAmount.Cents)
	return nil
}

// Goal loads one savings goal with its contribution history.
func (r *SQLiteRepository) Goal(ctx context.Context, id string) (core.SavingsGoal, error) {
	g, err := r.scanGoal(r.db.QueryRowContext(ctx, `
		SELECT id, name, target_cents, current_cents, original_target_date, current_target_date, monthly_target_cents
		FROM savings_goals WHERE id = ?`, id))
	if err != nil {
		return core.SavingsGoal{}, err
	}

	contributions, err := r.goalContributions(ctx, id)
	if err != nil {
		return core.SavingsGoal{}, err
	}
	g.Contributions = contributions
	return g, nil
}

// ListOpenGoals returns the goals still in progress, nearest deadline first.
// Completed goals stay stored for history but are excluded from monthly
// recalculation.
func (r *SQLiteRepository) ListOpenGoals(ctx context.Context) ([]core.SavingsGoal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, target_cents, current_cents, original_target_date, current_target_date, monthly_target_cents
		FROM savings_goals
		WHERE is_completed = 0
		ORDER BY current_target_date`)
	if err != nil {
		return nil, fmt.Errorf("query open goals: %w", err)
	}
	defer rows.Close()

	var goals []core.SavingsGoal
	for rows.Next() {
		g, err := r.scanGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate goals: %w", err)
	}

	return goals, nil
}

// AddContribution appends a contribution and updates the goal's derived
// state in one transaction: the saved amount grows monotonically, the
// monthly target is recomputed from the new remainder, and the goal flips
// to completed once the target is reached.
func (r *SQLiteRepository) AddContribution(ctx context.Context, goalID string, c core.Contribution) (core.SavingsGoal, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.SavingsGoal{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	g, err := r.scanGoal(tx.QueryRowContext(ctx, `
		SELECT id, name, target_cents, current_cents, original_target_date, current_target_date, monthly_target_cents
		FROM savings_goals WHERE id = ?`, goalID))
	if err != nil {
		return core.SavingsGoal{}, err
	}
	if g.IsCompleted() {
		return core.SavingsGoal{}, ErrGoalCompleted
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO savings_contributions (goal_id, member_id, amount_cents, contributed_on)
		VALUES (?, ?, ?, ?)`,
		goalID, c.MemberID, c.Amount.Cents, c.Date.Format(dateLayout)); err != nil {
		return core.SavingsGoal{}, fmt.Errorf("insert contribution: %w", err)
	}

	g.CurrentAmount.Cents += c.Amount.Cents
	monthlyTarget := deriveMonthlyTarget(g, c.Date)

	if _, err := tx.ExecContext(ctx, `
		UPDATE savings_goals
		SET current_cents = ?, monthly_target_cents = ?, is_completed = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		g.CurrentAmount.Cents, monthlyTarget, boolToInt(g.IsCompleted()), goalID); err != nil {
		return core.SavingsGoal{}, fmt.Errorf("update goal: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return core.SavingsGoal{}, fmt.Errorf("commit contribution: %w", err)
	}

	g.MonthlyTarget = core.Money{Cents: monthlyTarget}
	slog.InfoContext(ctx, "Contribution recorded",
		"goal_id", goalID,
		"member_id", c.MemberID,
		"amount_cents", c.Amount.Cents,
		"completed", g.IsCompleted())
	return g, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *SQLiteRepository) scanGoal(row rowScanner) (core.SavingsGoal, error) {
	var (
		g                  core.SavingsGoal
		originalTargetDate string
		currentTargetDate  string
	)
	err := row.Scan(&g.ID, &g.Name, &g.TargetAmount.Cents, &g.CurrentAmount.Cents,
		&originalTargetDate, &currentTargetDate, &g.MonthlyTarget.Cents)
	if errors.Is(err, sql.ErrNoRows) {
		return g, ErrNotFound
	}
	if err != nil {
		return g, fmt.Errorf("scan goal: %w", err)
	}

	if g.OriginalTargetDate, err = time.Parse(dateLayout, originalTargetDate); err != nil {
		return g, fmt.Errorf("parse original target date %q: %w", originalTargetDate, err)
	}
	if g.CurrentTargetDate, err = time.Parse(dateLayout, currentTargetDate); err != nil {
		return g, fmt.Errorf("parse current target date %q: %w", currentTargetDate, err)
	}
	return g, nil
}

func (r *SQLiteRepository) goalContributions(ctx context.Context, goalID string) ([]core.Contribution, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT member_id, amount_cents, contributed_on
		FROM savings_contributions
		WHERE goal_id = ?
		ORDER BY contributed_on, id`, goalID)
	if err != nil {
		return nil, fmt.Errorf("query contributions: %w", err)
	}
	defer rows.Close()

	var contributions []core.Contribution
	for rows.Next() {
		var (
			c    core.Contribution
			date string
		)
		if err := rows.Scan(&c.MemberID, &c.Amount.Cents, &date); err != nil {
			return nil, fmt.Errorf("scan contribution: %w", err)
		}
		if c.Date, err = time.Parse(dateLayout, date); err != nil {
			return nil, fmt.Errorf("parse contribution date %q: %w", date, err)
		}
		contributions = append(contributions, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contributions: %w", err)
	}

	return contributions, nil
}

// deriveMonthlyTarget recomputes the contribution needed per month from the
// remainder and the months left to the current target date, clamped to 1.
func deriveMonthlyTarget(g core.SavingsGoal, now time.Time) int64 {
	remaining := g.Remaining().Cents
	if remaining == 0 {
		return 0
	}
	months := int64(core.MonthsBetween(now, g.CurrentTargetDate))
	if months < 1 {
		months = 1
	}
	return core.DivRoundHalfUp(remaining, months)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
