package services

import (
	"context"
	"fmt"
	"log/slog"

	"coppia/internal/amqp"
	"coppia/internal/core"
)

// FinancesStore is the slice of the repository the finances service needs.
type FinancesStore interface {
	HouseholdMembers(ctx context.Context) (core.Member, core.Member, error)
	UpsertMonthlyFinances(ctx context.Context, memberID string, period core.Period, incomeCents, fixedCents int64) error
	MonthlyFinances(ctx context.Context, member core.Member, period core.Period) (core.MemberFinances, error)
}

// FinancesService maintains each member's declared monthly figures.
type FinancesService struct {
	store     FinancesStore
	publisher ChangePublisher
	snapshots Invalidator
}

func NewFinancesService(store FinancesStore, publisher ChangePublisher, snapshots Invalidator) *FinancesService {
	return &FinancesService{
		store:     store,
		publisher: publisher,
		snapshots: snapshots,
	}
}

// Declare records a member's income and fixed expenses for a period. Net
// available is deliberately not accepted as input: it is always rederived
// from these two figures so it can never go stale.
func (s *FinancesService) Declare(ctx context.Context, memberID string, period core.Period, income, fixed core.Money) error {
	if err := period.Validate(); err != nil {
		return err
	}
	if income.Cents < 0 || fixed.Cents < 0 {
		return core.ErrInvalidAmount
	}

	first, second, err := s.store.HouseholdMembers(ctx)
	if err != nil {
		return fmt.Errorf("load members: %w", err)
	}
	if memberID != first.ID && memberID != second.ID {
		return fmt.Errorf("member %s is not part of the household", memberID)
	}

	if err := s.store.UpsertMonthlyFinances(ctx, memberID, period, income.Cents, fixed.Cents); err != nil {
		return fmt.Errorf("save monthly finances: %w", err)
	}

	if s.snapshots != nil {
		s.snapshots.Invalidate(period)
	}
	if s.publisher != nil {
		if err := s.publisher.PublishLedgerChange(ctx, amqp.EntityFinances, memberID, period); err != nil {
			slog.ErrorContext(ctx, "Failed to publish finances message",
				"member_id", memberID, "error", err)
		}
	}

	return nil
}
