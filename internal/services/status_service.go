package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"coppia/internal/cache"
	"coppia/internal/core"
	"coppia/internal/equity"
)

// StatusRepository is the slice of the repository the status service needs
// to assemble one period's input snapshot.
type StatusRepository interface {
	HouseholdMembers(ctx context.Context) (core.Member, core.Member, error)
	MonthlyFinances(ctx context.Context, member core.Member, period core.Period) (core.MemberFinances, error)
	ListExpenses(ctx context.Context, period core.Period) ([]core.SharedExpense, error)
	ListOpenGoals(ctx context.Context) ([]core.SavingsGoal, error)
}

// StatusService loads a period's records, runs the equity aggregator over
// them and caches the resulting snapshot. The engine itself never touches
// storage: all records are loaded up front and handed over as one immutable
// snapshot, so concurrent recomputations of the same period are safe.
type StatusService struct {
	repo       StatusRepository
	aggregator *equity.Aggregator
	snapshots  cache.Cache[equity.MonthlyStatus]
	now        func() time.Time
}

func NewStatusService(repo StatusRepository, aggregator *equity.Aggregator, snapshots cache.Cache[equity.MonthlyStatus]) *StatusService {
	return &StatusService{
		repo:       repo,
		aggregator: aggregator,
		snapshots:  snapshots,
		now:        time.Now,
	}
}

// MonthlyStatus returns the financial snapshot for a period, from cache
// when available.
func (s *StatusService) MonthlyStatus(ctx context.Context, period core.Period) (equity.MonthlyStatus, error) {
	if err := period.Validate(); err != nil {
		return equity.MonthlyStatus{}, err
	}

	key := snapshotKey(period)
	if s.snapshots != nil {
		if status, ok := s.snapshots.Get(key); ok {
			return status, nil
		}
	}

	status, err := s.Recompute(ctx, period)
	if err != nil {
		return equity.MonthlyStatus{}, err
	}
	return status, nil
}

// Recompute bypasses the cache, rebuilds the snapshot from storage and
// rewarms the cache. The worker calls this on every ledger change.
func (s *StatusService) Recompute(ctx context.Context, period core.Period) (equity.MonthlyStatus, error) {
	first, second, err := s.repo.HouseholdMembers(ctx)
	if err != nil {
		return equity.MonthlyStatus{}, fmt.Errorf("load members: %w", err)
	}

	firstFinances, err := s.repo.MonthlyFinances(ctx, first, period)
	if err != nil {
		return equity.MonthlyStatus{}, fmt.Errorf("load finances for %s: %w", first.ID, err)
	}
	secondFinances, err := s.repo.MonthlyFinances(ctx, second, period)
	if err != nil {
		return equity.MonthlyStatus{}, fmt.Errorf("load finances for %s: %w", second.ID, err)
	}

	expenses, err := s.repo.ListExpenses(ctx, period)
	if err != nil {
		return equity.MonthlyStatus{}, fmt.Errorf("load expenses: %w", err)
	}

	goals, err := s.repo.ListOpenGoals(ctx)
	if err != nil {
		return equity.MonthlyStatus{}, fmt.Errorf("load goals: %w", err)
	}

	status := s.aggregator.ComputeMonthlyStatus(period, firstFinances, secondFinances, expenses, goals, s.now())

	if s.snapshots != nil {
		s.snapshots.Set(snapshotKey(period), status)
	}

	slog.InfoContext(ctx, "Monthly snapshot computed",
		"year", period.Year,
		"month", period.Month,
		"settlement", status.Summary)
	return status, nil
}

// Invalidate drops the cached snapshot for a period.
func (s *StatusService) Invalidate(period core.Period) {
	if s.snapshots != nil {
		s.snapshots.Delete(snapshotKey(period))
	}
}

func snapshotKey(period core.Period) string {
	return fmt.Sprintf("snapshot:%04d-%02d", period.Year, period.Month)
}
