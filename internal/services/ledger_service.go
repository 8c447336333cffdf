// Package services orchestrates storage, messaging, caching and the equity
// engine behind the HTTP handlers.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"coppia/internal/amqp"
	"coppia/internal/core"
)

// ExpenseStore is the slice of the repository the ledger service needs.
type ExpenseStore interface {
	CreateExpense(ctx context.Context, e core.SharedExpense) error
	ListExpenses(ctx context.Context, period core.Period) ([]core.SharedExpense, error)
	SoftDeleteExpense(ctx context.Context, id string) (core.Period, error)
}

// ChangePublisher notifies the worker that a period's records changed.
type ChangePublisher interface {
	PublishLedgerChange(ctx context.Context, entity, id string, period core.Period) error
}

// Invalidator drops cached snapshots for a period after a mutation.
type Invalidator interface {
	Invalidate(period core.Period)
}

// LedgerService handles expense record creation and deletion. Writes land in
// SQLite first; the change notification is best-effort and never fails the
// request.
type LedgerService struct {
	store     ExpenseStore
	publisher ChangePublisher
	snapshots Invalidator
}

func NewLedgerService(store ExpenseStore, publisher ChangePublisher, snapshots Invalidator) *LedgerService {
	return &LedgerService{
		store:     store,
		publisher: publisher,
		snapshots: snapshots,
	}
}

// NewExpenseInput carries the validated caller intent for one expense.
type NewExpenseInput struct {
	Description   string
	Amount        core.Money
	Category      string
	PaidByID      string
	SplitType     core.SplitType
	BeneficiaryID string
	Date          time.Time
}

// CreateExpense records an expense. The record's period is derived from its
// date here, once, and frozen for the lifetime of the record.
func (s *LedgerService) CreateExpense(ctx context.Context, in NewExpenseInput) (core.SharedExpense, error) {
	expense := core.SharedExpense{
		ID:            uuid.NewString(),
		Description:   in.Description,
		Amount:        in.Amount,
		Category:      in.Category,
		PaidByID:      in.PaidByID,
		SplitType:     in.SplitType,
		BeneficiaryID: in.BeneficiaryID,
		Date:          in.Date,
		Period:        core.PeriodOf(in.Date),
	}

	if err := expense.Validate(); err != nil {
		return core.SharedExpense{}, fmt.Errorf("validate expense: %w", err)
	}

	if err := s.store.CreateExpense(ctx, expense); err != nil {
		return core.SharedExpense{}, fmt.Errorf("save expense: %w", err)
	}

	s.afterChange(ctx, amqp.EntityExpense, expense.ID, expense.Period)
	return expense, nil
}

// ListExpenses returns the live records for a period.
func (s *LedgerService) ListExpenses(ctx context.Context, period core.Period) ([]core.SharedExpense, error) {
	if err := period.Validate(); err != nil {
		return nil, err
	}
	expenses, err := s.store.ListExpenses(ctx, period)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return expenses, nil
}

// DeleteExpense soft deletes a record and invalidates its period.
func (s *LedgerService) DeleteExpense(ctx context.Context, id string) error {
	period, err := s.store.SoftDeleteExpense(ctx, id)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}

	s.afterChange(ctx, amqp.EntityExpense, id, period)
	return nil
}

// afterChange drops the cached snapshot and notifies the worker. Neither
// step may fail the request: the write already committed.
func (s *LedgerService) afterChange(ctx context.Context, entity, id string, period core.Period) {
	if s.snapshots != nil {
		s.snapshots.Invalidate(period)
	}

	if s.publisher == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping change message")
		return
	}
	if err := s.publisher.PublishLedgerChange(ctx, entity, id, period); err != nil {
		slog.ErrorContext(ctx, "Failed to publish change message",
			"entity", entity, "id", id, "error", err)
	}
}
