package http

import (
	"coppia/internal/core"
	"coppia/internal/equity"
)

// JSON views for the API. Amounts travel as integer cents; formatted Euro
// strings are included only where the UI renders them verbatim.

type memberShareView struct {
	MemberID          string  `json:"member_id"`
	MemberName        string  `json:"member_name"`
	NetAvailableCents int64   `json:"net_available_cents"`
	SharePercent      float64 `json:"share_percent"`
}

type participationView struct {
	First                  memberShareView `json:"first"`
	Second                 memberShareView `json:"second"`
	TotalNetAvailableCents int64           `json:"total_net_available_cents"`
}

type memberBalanceView struct {
	MemberID          string `json:"member_id"`
	MemberName        string `json:"member_name"`
	ShouldPayCents    int64  `json:"should_pay_cents"`
	ActuallyPaidCents int64  `json:"actually_paid_cents"`
	DifferenceCents   int64  `json:"difference_cents"`
}

type settlementView struct {
	DebtorID     string `json:"debtor_id"`
	DebtorName   string `json:"debtor_name"`
	CreditorID   string `json:"creditor_id"`
	CreditorName string `json:"creditor_name"`
	AmountCents  int64  `json:"amount_cents"`
	Amount       string `json:"amount"`
}

type debtView struct {
	TotalSharedExpensesCents int64             `json:"total_shared_expenses_cents"`
	First                    memberBalanceView `json:"first"`
	Second                   memberBalanceView `json:"second"`
	Settlement               *settlementView   `json:"settlement"`
}

type projectionView struct {
	GoalID                         string `json:"goal_id"`
	GoalName                       string `json:"goal_name"`
	TargetAmountCents              int64  `json:"target_amount_cents"`
	CurrentAmountCents             int64  `json:"current_amount_cents"`
	RemainingCents                 int64  `json:"remaining_cents"`
	OriginalTargetDate             string `json:"original_target_date"`
	NewTargetDate                  string `json:"new_target_date"`
	MonthlyContributionNeededCents int64  `json:"monthly_contribution_needed_cents"`
	FirstContributionCents         int64  `json:"first_contribution_cents"`
	SecondContributionCents        int64  `json:"second_contribution_cents"`
	IsDelayed                      bool   `json:"is_delayed"`
	MonthsDelayed                  int    `json:"months_delayed"`
}

type dashboardView struct {
	Year                     int               `json:"year"`
	Month                    int               `json:"month"`
	Participation            participationView `json:"participation"`
	Debt                     debtView          `json:"debt"`
	AvailableForSavingsCents int64             `json:"available_for_savings_cents"`
	Projections              []projectionView  `json:"projections"`
	Summary                  string            `json:"summary"`
}

type expenseView struct {
	ID            string `json:"id"`
	Description   string `json:"description"`
	AmountCents   int64  `json:"amount_cents"`
	Amount        string `json:"amount"`
	Category      string `json:"category"`
	PaidByID      string `json:"paid_by_id"`
	SplitType     string `json:"split_type"`
	BeneficiaryID string `json:"beneficiary_id,omitempty"`
	Date          string `json:"date"`
	Year          int    `json:"year"`
	Month         int    `json:"month"`
}

type contributionView struct {
	Date        string `json:"date"`
	AmountCents int64  `json:"amount_cents"`
	MemberID    string `json:"member_id"`
}

type goalView struct {
	ID                 string             `json:"id"`
	Name               string             `json:"name"`
	TargetAmountCents  int64              `json:"target_amount_cents"`
	CurrentAmountCents int64              `json:"current_amount_cents"`
	RemainingCents     int64              `json:"remaining_cents"`
	OriginalTargetDate string             `json:"original_target_date"`
	CurrentTargetDate  string             `json:"current_target_date"`
	MonthlyTargetCents int64              `json:"monthly_target_cents"`
	IsCompleted        bool               `json:"is_completed"`
	Contributions      []contributionView `json:"contributions,omitempty"`
}

const dateLayout = "2006-01-02"

func toMemberShareView(s equity.MemberShare) memberShareView {
	return memberShareView{
		MemberID:          s.MemberID,
		MemberName:        s.MemberName,
		NetAvailableCents: s.NetAvailable.Cents,
		SharePercent:      s.Percent(),
	}
}

func toMemberBalanceView(b equity.MemberBalance) memberBalanceView {
	return memberBalanceView{
		MemberID:          b.MemberID,
		MemberName:        b.MemberName,
		ShouldPayCents:    b.ShouldPay.Cents,
		ActuallyPaidCents: b.ActuallyPaid.Cents,
		DifferenceCents:   b.Difference.Cents,
	}
}

func toProjectionView(p equity.SavingsProjection) projectionView {
	return projectionView{
		GoalID:                         p.GoalID,
		GoalName:                       p.GoalName,
		TargetAmountCents:              p.TargetAmount.Cents,
		CurrentAmountCents:             p.CurrentAmount.Cents,
		RemainingCents:                 p.Remaining.Cents,
		OriginalTargetDate:             p.OriginalTargetDate.Format(dateLayout),
		NewTargetDate:                  p.NewTargetDate.Format(dateLayout),
		MonthlyContributionNeededCents: p.MonthlyContributionNeeded.Cents,
		FirstContributionCents:         p.FirstContribution.Cents,
		SecondContributionCents:        p.SecondContribution.Cents,
		IsDelayed:                      p.IsDelayed,
		MonthsDelayed:                  p.MonthsDelayed,
	}
}

func toDashboardView(status equity.MonthlyStatus) dashboardView {
	view := dashboardView{
		Year:  status.Period.Year,
		Month: status.Period.Month,
		Participation: participationView{
			First:                  toMemberShareView(status.Participation.First),
			Second:                 toMemberShareView(status.Participation.Second),
			TotalNetAvailableCents: status.Participation.TotalNetAvailable.Cents,
		},
		Debt: debtView{
			TotalSharedExpensesCents: status.Debt.TotalSharedExpenses.Cents,
			First:                    toMemberBalanceView(status.Debt.First),
			Second:                   toMemberBalanceView(status.Debt.Second),
		},
		AvailableForSavingsCents: status.AvailableForSavings.Cents,
		Projections:              make([]projectionView, 0, len(status.Projections)),
		Summary:                  status.Summary,
	}

	if s := status.Debt.Settlement; s != nil {
		view.Debt.Settlement = &settlementView{
			DebtorID:     s.DebtorID,
			DebtorName:   s.DebtorName,
			CreditorID:   s.CreditorID,
			CreditorName: s.CreditorName,
			AmountCents:  s.Amount.Cents,
			Amount:       formatEuros(s.Amount.Cents),
		}
	}

	for _, p := range status.Projections {
		view.Projections = append(view.Projections, toProjectionView(p))
	}

	return view
}

func toExpenseView(e core.SharedExpense) expenseView {
	return expenseView{
		ID:            e.ID,
		Description:   e.Description,
		AmountCents:   e.Amount.Cents,
		Amount:        formatEuros(e.Amount.Cents),
		Category:      e.Category,
		PaidByID:      e.PaidByID,
		SplitType:     string(e.SplitType),
		BeneficiaryID: e.BeneficiaryID,
		Date:          e.Date.Format(dateLayout),
		Year:          e.Period.Year,
		Month:         e.Period.Month,
	}
}

func toGoalView(g core.SavingsGoal, withContributions bool) goalView {
	view := goalView{
		ID:                 g.ID,
		Name:               g.Name,
		TargetAmountCents:  g.TargetAmount.Cents,
		CurrentAmountCents: g.CurrentAmount.Cents,
		RemainingCents:     g.Remaining().Cents,
		OriginalTargetDate: g.OriginalTargetDate.Format(dateLayout),
		CurrentTargetDate:  g.CurrentTargetDate.Format(dateLayout),
		MonthlyTargetCents: g.MonthlyTarget.Cents,
		IsCompleted:        g.IsCompleted(),
	}
	if withContributions {
		for _, c := range g.Contributions {
			view.Contributions = append(view.Contributions, contributionView{
				Date:        c.Date.Format(dateLayout),
				AmountCents: c.Amount.Cents,
				MemberID:    c.MemberID,
			})
		}
	}
	return view
}
