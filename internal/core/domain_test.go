package core

import (
	"errors"
	"testing"
	"time"
)

func TestMemberFinancesNetAvailable(t *testing.T) {
	cases := []struct {
		income, fixed, want int64
	}{
		{300000, 100000, 200000},
		{100000, 100000, 0},
		{50000, 120000, 0}, // floored at zero
		{0, 0, 0},
	}
	for i, tc := range cases {
		f := MemberFinances{
			TotalIncome:   Money{Cents: tc.income},
			FixedExpenses: Money{Cents: tc.fixed},
		}
		if got := f.NetAvailable().Cents; got != tc.want {
			t.Fatalf("case %d: NetAvailable = %d, want %d", i, got, tc.want)
		}
	}
}

func TestSharedExpenseValidate(t *testing.T) {
	good := SharedExpense{
		Description: "groceries run",
		Amount:      Money{Cents: 4500},
		Category:    CategoryGroceries,
		PaidByID:    "u1",
		SplitType:   SplitShared,
		Date:        time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC),
		Period:      Period{Year: 2026, Month: 3},
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name    string
		mutate  func(*SharedExpense)
		wantErr error
	}{
		{"empty description", func(e *SharedExpense) { e.Description = "  " }, ErrEmptyDescription},
		{"zero amount", func(e *SharedExpense) { e.Amount = Money{} }, ErrInvalidAmount},
		{"negative amount", func(e *SharedExpense) { e.Amount = Money{Cents: -1} }, ErrInvalidAmount},
		{"unknown category", func(e *SharedExpense) { e.Category = "crypto" }, ErrInvalidCategory},
		{"unknown split type", func(e *SharedExpense) { e.SplitType = "halvsies" }, ErrInvalidSplitType},
		{"paid_for_other without beneficiary", func(e *SharedExpense) {
			e.SplitType = SplitPaidForOther
		}, ErrMissingBeneficiary},
		{"paid_for_other for self", func(e *SharedExpense) {
			e.SplitType = SplitPaidForOther
			e.BeneficiaryID = e.PaidByID
		}, ErrSameMember},
		{"bad month", func(e *SharedExpense) { e.Period.Month = 13 }, ErrInvalidPeriod},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := good
			tc.mutate(&e)
			err := e.Validate()
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("Validate() = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestSavingsGoalDerivedState(t *testing.T) {
	target := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	g := SavingsGoal{
		ID:                 "g1",
		Name:               "vacation",
		TargetAmount:       Money{Cents: 500000},
		CurrentAmount:      Money{Cents: 200000},
		OriginalTargetDate: target,
		CurrentTargetDate:  target,
	}
	if err := g.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if g.IsCompleted() {
		t.Fatal("goal should not be completed")
	}
	if got := g.Remaining().Cents; got != 300000 {
		t.Fatalf("Remaining = %d, want 300000", got)
	}

	g.CurrentAmount = Money{Cents: 500000}
	if !g.IsCompleted() {
		t.Fatal("goal should be completed at target")
	}
	if got := g.Remaining().Cents; got != 0 {
		t.Fatalf("Remaining = %d, want 0", got)
	}

	// Over-funded goals do not report a negative remainder.
	g.CurrentAmount = Money{Cents: 600000}
	if got := g.Remaining().Cents; got != 0 {
		t.Fatalf("Remaining = %d, want 0", got)
	}
}

func TestMonthsBetween(t *testing.T) {
	cases := []struct {
		a, b time.Time
		want int
	}{
		{
			time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
			time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
			6,
		},
		{
			// Day-of-month is ignored: 1st and 28th of the same month
			// are zero months apart.
			time.Date(2026, 3, 28, 0, 0, 0, 0, time.UTC),
			time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
			0,
		},
		{
			time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2027, 2, 1, 0, 0, 0, 0, time.UTC),
			3,
		},
		{
			time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC),
			-3,
		},
	}
	for i, tc := range cases {
		if got := MonthsBetween(tc.a, tc.b); got != tc.want {
			t.Fatalf("case %d: MonthsBetween = %d, want %d", i, got, tc.want)
		}
	}
}

func TestPeriodOf(t *testing.T) {
	p := PeriodOf(time.Date(2026, 7, 31, 23, 59, 0, 0, time.UTC))
	if p.Year != 2026 || p.Month != 7 {
		t.Fatalf("PeriodOf = %+v, want 2026-07", p)
	}
}
