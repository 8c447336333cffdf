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

// GoalStore is the slice of the repository the savings service needs.
type GoalStore interface {
	CreateGoal(ctx context.Context, g core.SavingsGoal, now time.Time) error
	Goal(ctx context.Context, id string) (core.SavingsGoal, error)
	ListOpenGoals(ctx context.Context) ([]core.SavingsGoal, error)
	AddContribution(ctx context.Context, goalID string, c core.Contribution) (core.SavingsGoal, error)
}

// SavingsService manages savings goals and their contribution history.
type SavingsService struct {
	store     GoalStore
	publisher ChangePublisher
	snapshots Invalidator
	now       func() time.Time
}

func NewSavingsService(store GoalStore, publisher ChangePublisher, snapshots Invalidator) *SavingsService {
	return &SavingsService{
		store:     store,
		publisher: publisher,
		snapshots: snapshots,
		now:       time.Now,
	}
}

// NewGoalInput carries the caller intent for a new savings goal.
type NewGoalInput struct {
	Name         string
	TargetAmount core.Money
	TargetDate   time.Time
}

// CreateGoal stores a new goal. The current target date starts equal to the
// original; only re-projection may stretch it later. The original date is
// immutable from here on.
func (s *SavingsService) CreateGoal(ctx context.Context, in NewGoalInput) (core.SavingsGoal, error) {
	goal := core.SavingsGoal{
		ID:                 uuid.NewString(),
		Name:               in.Name,
		TargetAmount:       in.TargetAmount,
		OriginalTargetDate: in.TargetDate,
		CurrentTargetDate:  in.TargetDate,
	}

	if err := goal.Validate(); err != nil {
		return core.SavingsGoal{}, fmt.Errorf("validate goal: %w", err)
	}

	if err := s.store.CreateGoal(ctx, goal, s.now()); err != nil {
		return core.SavingsGoal{}, fmt.Errorf("save goal: %w", err)
	}

	return goal, nil
}

// Goal loads one goal with its contribution history.
func (s *SavingsService) Goal(ctx context.Context, id string) (core.SavingsGoal, error) {
	goal, err := s.store.Goal(ctx, id)
	if err != nil {
		return core.SavingsGoal{}, fmt.Errorf("load goal: %w", err)
	}
	return goal, nil
}

// ListOpenGoals returns the goals still being funded.
func (s *SavingsService) ListOpenGoals(ctx context.Context) ([]core.SavingsGoal, error) {
	goals, err := s.store.ListOpenGoals(ctx)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	return goals, nil
}

// Contribute appends a contribution to a goal and invalidates the snapshot
// for the contribution's period.
func (s *SavingsService) Contribute(ctx context.Context, goalID, memberID string, amount core.Money, date time.Time) (core.SavingsGoal, error) {
	if amount.Cents <= 0 {
		return core.SavingsGoal{}, core.ErrInvalidAmount
	}
	if date.IsZero() {
		date = s.now()
	}

	goal, err := s.store.AddContribution(ctx, goalID, core.Contribution{
		Date:     date,
		Amount:   amount,
		MemberID: memberID,
	})
	if err != nil {
		return core.SavingsGoal{}, fmt.Errorf("add contribution: %w", err)
	}

	period := core.PeriodOf(date)
	if s.snapshots != nil {
		s.snapshots.Invalidate(period)
	}
	if s.publisher != nil {
		if err := s.publisher.PublishLedgerChange(ctx, amqp.EntityContribution, goalID, period); err != nil {
			// The contribution is committed; the worker catches up on the
			// next scheduled refresh.
			slog.ErrorContext(ctx, "Failed to publish contribution message",
				"goal_id", goalID, "error", err)
		}
	}

	return goal, nil
}
