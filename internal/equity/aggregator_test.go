package equity

import (
	"strings"
	"testing"
	"time"

	"coppia/internal/core"
)

func TestComputeMonthlyStatus(t *testing.T) {
	now := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	period := core.Period{Year: 2026, Month: 3}
	first := finances("u1", "Ana", 300000, 0)
	second := finances("u2", "Luca", 100000, 0)

	expenses := []core.SharedExpense{
		expense("u1", core.SplitShared, 40000, ""),
	}
	goals := []core.SavingsGoal{
		goal(1200000, 0, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)),
	}

	status := NewAggregator(nil).ComputeMonthlyStatus(period, first, second, expenses, goals, now)

	if status.Participation.First.ShareBP != 7500 {
		t.Errorf("First.ShareBP = %d, want 7500", status.Participation.First.ShareBP)
	}
	if status.Debt.Settlement == nil || status.Debt.Settlement.Amount.Cents != 10000 {
		t.Fatalf("settlement = %+v, want u2 owes 10000", status.Debt.Settlement)
	}

	// Residual: 4000.00 net available minus 400.00 shared spend.
	if status.AvailableForSavings.Cents != 360000 {
		t.Errorf("AvailableForSavings = %d, want 360000", status.AvailableForSavings.Cents)
	}

	if len(status.Projections) != 1 {
		t.Fatalf("got %d projections, want 1", len(status.Projections))
	}
	proj := status.Projections[0]
	// 3600.00/month against an ideal of 2000.00/month keeps the schedule.
	if proj.IsDelayed {
		t.Error("projection delayed, want on schedule")
	}

	if !strings.Contains(status.Summary, "Luca owes Ana") {
		t.Errorf("Summary = %q, want it to name Luca as debtor", status.Summary)
	}
}

func TestComputeMonthlyStatus_BalancedSummary(t *testing.T) {
	now := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	period := core.Period{Year: 2026, Month: 3}
	first := finances("u1", "Ana", 100000, 0)
	second := finances("u2", "Luca", 100000, 0)

	status := NewAggregator(nil).ComputeMonthlyStatus(period, first, second, nil, nil, now)

	if status.Debt.Settlement != nil {
		t.Errorf("settlement = %+v, want none", status.Debt.Settlement)
	}
	if status.Summary != "All square this month" {
		t.Errorf("Summary = %q, want balanced message", status.Summary)
	}
}

func TestComputeMonthlyStatus_ResidualSplitsEvenlyAcrossOpenGoals(t *testing.T) {
	now := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	period := core.Period{Year: 2026, Month: 3}
	first := finances("u1", "Ana", 150000, 0)
	second := finances("u2", "Luca", 150000, 0)

	far := time.Date(2027, 3, 1, 0, 0, 0, 0, time.UTC)
	near := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	completed := goal(100000, 100000, near)
	goals := []core.SavingsGoal{
		goal(600000, 0, far),
		goal(600000, 0, near), // closer deadline gets no larger share
		completed,
	}

	status := NewAggregator(nil).ComputeMonthlyStatus(period, first, second, nil, goals, now)

	if status.AvailableForSavings.Cents != 300000 {
		t.Errorf("AvailableForSavings = %d, want 300000", status.AvailableForSavings.Cents)
	}

	// Completed goals are excluded before the split: 3000.00 over 2 goals,
	// 1500.00 each, with no weighting toward the closer deadline.
	if len(status.Projections) != 2 {
		t.Fatalf("got %d projections, want 2 (completed goal excluded)", len(status.Projections))
	}

	farProj, nearProj := status.Projections[0], status.Projections[1]

	// Far goal: ideal 500.00/month over 12 months, the 1500.00 share covers it.
	if farProj.IsDelayed {
		t.Error("far goal delayed, want on schedule")
	}
	if farProj.MonthlyContributionNeeded.Cents != 50000 {
		t.Errorf("far goal needed = %d, want ideal 50000", farProj.MonthlyContributionNeeded.Cents)
	}

	// Near goal: ideal 3000.00/month over 2 months, but only its equal
	// 1500.00 share is offered, so it slips.
	if !nearProj.IsDelayed {
		t.Error("near goal on schedule, want delayed")
	}
	if nearProj.MonthlyContributionNeeded.Cents != 150000 {
		t.Errorf("near goal needed = %d, want equal share 150000", nearProj.MonthlyContributionNeeded.Cents)
	}
}

func TestComputeMonthlyStatus_SharedSpendAboveNetClampsResidual(t *testing.T) {
	now := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	period := core.Period{Year: 2026, Month: 3}
	first := finances("u1", "Ana", 50000, 0)
	second := finances("u2", "Luca", 0, 0)

	expenses := []core.SharedExpense{
		expense("u1", core.SplitShared, 80000, ""),
	}

	status := NewAggregator(nil).ComputeMonthlyStatus(period, first, second, expenses, nil, now)

	if status.AvailableForSavings.Cents != 0 {
		t.Errorf("AvailableForSavings = %d, want 0 when spend exceeds net", status.AvailableForSavings.Cents)
	}
}

func TestEqualSplit_Allocate(t *testing.T) {
	goals := []core.SavingsGoal{
		goal(100000, 0, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)),
		goal(200000, 0, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)),
		goal(300000, 0, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)),
	}

	shares := EqualSplit{}.Allocate(core.Money{Cents: 100}, goals)
	if len(shares) != 3 {
		t.Fatalf("got %d shares, want 3", len(shares))
	}
	var sum int64
	for _, s := range shares {
		if s.Cents != 33 {
			t.Errorf("share = %d, want 33", s.Cents)
		}
		sum += s.Cents
	}
	if sum > 100 {
		t.Errorf("allocated %d, must not exceed available 100", sum)
	}

	if got := (EqualSplit{}).Allocate(core.Money{Cents: 100}, nil); len(got) != 0 {
		t.Errorf("no goals should yield no shares, got %v", got)
	}
}

func TestAllocationStrategyRegistry(t *testing.T) {
	if _, err := GetAllocationStrategy("equal"); err != nil {
		t.Errorf("GetAllocationStrategy(equal) error = %v", err)
	}
	if _, err := GetAllocationStrategy("deadline"); err == nil {
		t.Error("expected error for unregistered strategy")
	}

	RegisterAllocationStrategy("custom", EqualSplit{})
	if _, err := GetAllocationStrategy("custom"); err != nil {
		t.Errorf("GetAllocationStrategy(custom) after register error = %v", err)
	}
}
