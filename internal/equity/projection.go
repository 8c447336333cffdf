package equity

import (
	"time"

	"coppia/internal/core"
)

// SavingsProjection is the re-estimated completion picture for one goal
// given the contribution actually affordable this month.
type SavingsProjection struct {
	GoalID             string
	GoalName           string
	TargetAmount       core.Money
	CurrentAmount      core.Money
	Remaining          core.Money
	OriginalTargetDate time.Time
	NewTargetDate      time.Time
	// MonthlyContributionNeeded is the ideal monthly amount when the
	// original date still holds, or the affordable amount when delayed.
	MonthlyContributionNeeded core.Money
	FirstContribution         core.Money
	SecondContribution        core.Money
	IsDelayed                 bool
	MonthsDelayed             int
}

// RecalculateSavingsGoal projects whether a goal's original target date is
// still reachable with the given affordable monthly contribution and, if
// not, stretches the date instead of generating debt.
//
// Month arithmetic is calendar-month based (day-of-month ignored) and the
// months remaining to the original date are clamped to at least 1, so a goal
// whose date is this month or already past asks for the full remainder now
// rather than dividing by zero.
//
// The per-member contribution split uses the same participation shares as
// the debt settlement: savings follow the identical proportional
// responsibility principle as shared expenses.
func RecalculateSavingsGoal(goal core.SavingsGoal, monthlyAvailable core.Money, p ParticipationResult, now time.Time) SavingsProjection {
	proj := SavingsProjection{
		GoalID:             goal.ID,
		GoalName:           goal.Name,
		TargetAmount:       goal.TargetAmount,
		CurrentAmount:      goal.CurrentAmount,
		Remaining:          goal.Remaining(),
		OriginalTargetDate: goal.OriginalTargetDate,
		NewTargetDate:      goal.CurrentTargetDate,
	}

	remaining := proj.Remaining.Cents
	if remaining == 0 {
		// Completed: nothing to contribute, the current date stands.
		return proj
	}

	originalMonthsRemaining := int64(core.MonthsBetween(now, goal.OriginalTargetDate))
	if originalMonthsRemaining < 1 {
		originalMonthsRemaining = 1
	}

	ideal := core.DivRoundHalfUp(remaining, originalMonthsRemaining)
	needed := ideal

	// Delayed iff 0 < available < remaining/months, compared in exact
	// integer form. A zero available is a stall, not a date stretch: the
	// projection keeps the original schedule and reports the ideal amount.
	if monthlyAvailable.Cents > 0 && monthlyAvailable.Cents*originalMonthsRemaining < remaining {
		monthsNeeded := core.CeilDiv(remaining, monthlyAvailable.Cents)
		proj.NewTargetDate = core.AddMonths(now, int(monthsNeeded))
		proj.IsDelayed = true
		if d := core.MonthsBetween(goal.OriginalTargetDate, proj.NewTargetDate); d > 0 {
			proj.MonthsDelayed = d
		}
		needed = monthlyAvailable.Cents
	}

	proj.MonthlyContributionNeeded = core.Money{Cents: needed}
	proj.FirstContribution = core.Money{Cents: core.MulBasisPoints(needed, p.First.ShareBP)}
	proj.SecondContribution = core.Money{Cents: core.MulBasisPoints(needed, p.Second.ShareBP)}

	return proj
}
