package equity

import (
	"fmt"
	"time"

	"coppia/internal/core"
)

// MonthlyStatus is the aggregated financial snapshot for one period.
type MonthlyStatus struct {
	Period              core.Period
	Participation       ParticipationResult
	Debt                DebtResult
	AvailableForSavings core.Money
	Projections         []SavingsProjection
	Summary             string
}

// Aggregator chains the three equity computations over one period.
type Aggregator struct {
	allocation AllocationStrategy
}

// NewAggregator builds an aggregator with the given savings allocation
// policy. A nil strategy falls back to the uniform split.
func NewAggregator(allocation AllocationStrategy) *Aggregator {
	if allocation == nil {
		allocation = EqualSplit{}
	}
	return &Aggregator{allocation: allocation}
}

// ComputeMonthlyStatus runs participation once, feeds it to the settlement
// engine with the period's full expense list, then divides the residual
// (net available minus shared spend, floored at zero) across the open goals
// and projects each one.
//
// Completed goals are skipped before allocation so they neither receive a
// share nor dilute the split for the goals still in progress.
func (a *Aggregator) ComputeMonthlyStatus(period core.Period, first, second core.MemberFinances, expenses []core.SharedExpense, goals []core.SavingsGoal, now time.Time) MonthlyStatus {
	participation := CalculateParticipation(first, second)
	debt := CalculateProportionalDebt(participation, expenses)

	available := participation.TotalNetAvailable.Cents - debt.TotalSharedExpenses.Cents
	if available < 0 {
		available = 0
	}

	open := make([]core.SavingsGoal, 0, len(goals))
	for _, g := range goals {
		if !g.IsCompleted() {
			open = append(open, g)
		}
	}

	shares := a.allocation.Allocate(core.Money{Cents: available}, open)

	projections := make([]SavingsProjection, len(open))
	for i, g := range open {
		projections[i] = RecalculateSavingsGoal(g, shares[i], participation, now)
	}

	return MonthlyStatus{
		Period:              period,
		Participation:       participation,
		Debt:                debt,
		AvailableForSavings: core.Money{Cents: available},
		Projections:         projections,
		Summary:             settlementSummary(debt),
	}
}

// settlementSummary renders the one-line "who owes whom" sentence from the
// settlement alone.
func settlementSummary(debt DebtResult) string {
	if debt.Settlement == nil {
		return "All square this month"
	}
	s := debt.Settlement
	return fmt.Sprintf("%s owes %s %s", s.DebtorName, s.CreditorName, s.Amount)
}
