package core

import (
	"errors"
	"strings"
	"time"
)

// SplitType classifies how an expense record is attributed in the debt engine.
type SplitType string

const (
	SplitShared            SplitType = "shared"
	SplitPersonal          SplitType = "personal"
	SplitPaidForOther      SplitType = "paid_for_other"
	SplitFullReimbursement SplitType = "full_reimbursement"
)

// Expense categories are informational tags only; they never affect the
// equity calculations.
const (
	CategoryRent          = "rent"
	CategoryGroceries     = "groceries"
	CategoryUtilities     = "utilities"
	CategoryTransport     = "transport"
	CategoryHealth        = "health"
	CategoryEntertainment = "entertainment"
	CategoryRestaurants   = "restaurants"
	CategoryOther         = "other"
)

var categories = map[string]bool{
	CategoryRent:          true,
	CategoryGroceries:     true,
	CategoryUtilities:     true,
	CategoryTransport:     true,
	CategoryHealth:        true,
	CategoryEntertainment: true,
	CategoryRestaurants:   true,
	CategoryOther:         true,
}

var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrEmptyDescription   = errors.New("empty description")
	ErrInvalidCategory    = errors.New("invalid category")
	ErrInvalidSplitType   = errors.New("invalid split type")
	ErrMissingBeneficiary = errors.New("paid_for_other requires a beneficiary")
	ErrSameMember         = errors.New("payer and beneficiary must differ")
	ErrInvalidPeriod      = errors.New("invalid period")
	ErrEmptyName          = errors.New("empty name")
	ErrInvalidTargetDate  = errors.New("invalid target date")
)

type (
	// Period is a calendar month tag. Expense records are bound to the
	// period derived from their date at creation and never reclassified.
	Period struct {
		Year  int
		Month int // 1-12
	}

	// Member is one of the exactly two household members.
	Member struct {
		ID   string
		Name string
	}

	// MemberFinances holds one member's declared figures for one period.
	// NetAvailable is always derived; it is never stored on its own.
	MemberFinances struct {
		MemberID      string
		MemberName    string
		TotalIncome   Money
		FixedExpenses Money
	}

	// SharedExpense is one logged expense record. Records are immutable
	// once created except for deletion.
	SharedExpense struct {
		ID            string
		Description   string
		Amount        Money
		Category      string
		PaidByID      string
		SplitType     SplitType
		BeneficiaryID string // set iff SplitType == SplitPaidForOther
		Date          time.Time
		Period        Period
	}

	// Contribution is one deposit toward a savings goal.
	Contribution struct {
		Date     time.Time
		Amount   Money
		MemberID string
	}

	// SavingsGoal is a shared target the couple funds over time. The
	// original target date is immutable; the current one stretches
	// forward when contributions fall short.
	SavingsGoal struct {
		ID                 string
		Name               string
		TargetAmount       Money
		CurrentAmount      Money
		OriginalTargetDate time.Time
		CurrentTargetDate  time.Time
		MonthlyTarget      Money
		Contributions      []Contribution
	}
)

// PeriodOf derives the period tag for a date.
func PeriodOf(t time.Time) Period {
	return Period{Year: t.Year(), Month: int(t.Month())}
}

func (p Period) Validate() error {
	if p.Year < 1970 || p.Year > 9999 {
		return ErrInvalidPeriod
	}
	if p.Month < 1 || p.Month > 12 {
		return ErrInvalidPeriod
	}
	return nil
}

// NetAvailable is income minus fixed personal expenses, floored at zero.
func (f MemberFinances) NetAvailable() Money {
	net := f.TotalIncome.Cents - f.FixedExpenses.Cents
	if net < 0 {
		net = 0
	}
	return Money{Cents: net}
}

func (f MemberFinances) Validate() error {
	if f.TotalIncome.Cents < 0 || f.FixedExpenses.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// ValidCategory reports whether the tag is one of the known categories.
func ValidCategory(c string) bool {
	return categories[c]
}

func (st SplitType) Valid() bool {
	switch st {
	case SplitShared, SplitPersonal, SplitPaidForOther, SplitFullReimbursement:
		return true
	}
	return false
}

func (e SharedExpense) Validate() error {
	if len(strings.TrimSpace(e.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(e.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if e.Amount.Cents <= 0 {
		return ErrInvalidAmount
	}
	if !ValidCategory(e.Category) {
		return ErrInvalidCategory
	}
	if !e.SplitType.Valid() {
		return ErrInvalidSplitType
	}
	if e.SplitType == SplitPaidForOther {
		if e.BeneficiaryID == "" {
			return ErrMissingBeneficiary
		}
		if e.BeneficiaryID == e.PaidByID {
			return ErrSameMember
		}
	}
	if e.Date.IsZero() {
		return errors.New("date cannot be zero")
	}
	return e.Period.Validate()
}

func (g SavingsGoal) Validate() error {
	if len(strings.TrimSpace(g.Name)) == 0 {
		return ErrEmptyName
	}
	if g.TargetAmount.Cents <= 0 {
		return ErrInvalidAmount
	}
	if g.CurrentAmount.Cents < 0 {
		return ErrInvalidAmount
	}
	if g.OriginalTargetDate.IsZero() || g.CurrentTargetDate.IsZero() {
		return ErrInvalidTargetDate
	}
	return nil
}

// Remaining is the amount still to save, floored at zero.
func (g SavingsGoal) Remaining() Money {
	rem := g.TargetAmount.Cents - g.CurrentAmount.Cents
	if rem < 0 {
		rem = 0
	}
	return Money{Cents: rem}
}

// IsCompleted reports whether the goal has reached its target. Completed
// goals are excluded from monthly recalculation.
func (g SavingsGoal) IsCompleted() bool {
	return g.CurrentAmount.Cents >= g.TargetAmount.Cents
}

// MonthsBetween is the calendar-month distance from a to b, computed as
// (yearDiff*12 + monthDiff). Day-of-month is ignored entirely: the 1st and
// the 28th of the same month are zero months apart. Goal-date UX depends on
// this exact semantics.
func MonthsBetween(a, b time.Time) int {
	return (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
}

// AddMonths advances t by n calendar months, normalizing overflow the way
// time.AddDate does.
func AddMonths(t time.Time, n int) time.Time {
	return t.AddDate(0, n, 0)
}
