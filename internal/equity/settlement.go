package equity

import (
	"coppia/internal/core"
)

// SettlementToleranceCents is the imbalance below which a period is
// considered balanced and no settlement instruction is produced.
const SettlementToleranceCents = 1

// MemberBalance is one member's side of a period's debt calculation.
type MemberBalance struct {
	MemberID     string
	MemberName   string
	ShouldPay    core.Money
	ActuallyPaid core.Money
	// Difference is ActuallyPaid - ShouldPay: positive means overpaid.
	Difference core.Money
}

// Settlement is the single net payment instruction that reconciles a
// period's imbalance.
type Settlement struct {
	DebtorID     string
	DebtorName   string
	CreditorID   string
	CreditorName string
	Amount       core.Money
}

// DebtResult is the derived outcome of the proportional debt calculation.
type DebtResult struct {
	TotalSharedExpenses core.Money
	First               MemberBalance
	Second              MemberBalance
	// Settlement is nil when the period is balanced within tolerance.
	Settlement *Settlement
}

// CalculateProportionalDebt computes what each member should have paid for
// the period's shared spend, what each actually paid given every record's
// split type, and the single net settlement instruction if the two diverge
// by more than one cent.
//
// Attribution rules per split type:
//   - shared: counts into the shared total; full amount credited to the payer.
//   - personal: excluded entirely.
//   - paid_for_other: full amount credited to the payer only when the
//     beneficiary is the other member; otherwise the record contributes
//     nothing.
//   - full_reimbursement: full amount credited to the payer, same as shared,
//     but not counted into the shared total.
//
// The caller is expected to have validated records before submission; the
// engine does not re-validate.
func CalculateProportionalDebt(p ParticipationResult, expenses []core.SharedExpense) DebtResult {
	var totalShared, firstPaid, secondPaid int64

	for _, e := range expenses {
		switch e.SplitType {
		case core.SplitShared:
			totalShared += e.Amount.Cents
			if e.PaidByID == p.First.MemberID {
				firstPaid += e.Amount.Cents
			} else if e.PaidByID == p.Second.MemberID {
				secondPaid += e.Amount.Cents
			}
		case core.SplitPersonal:
			// Personal spend never moves money between the members.
		case core.SplitPaidForOther:
			// Same-amount reimbursement owed by the beneficiary. A record
			// whose beneficiary is not the other member contributes nothing.
			if e.PaidByID == p.First.MemberID && e.BeneficiaryID == p.Second.MemberID {
				firstPaid += e.Amount.Cents
			} else if e.PaidByID == p.Second.MemberID && e.BeneficiaryID == p.First.MemberID {
				secondPaid += e.Amount.Cents
			}
		case core.SplitFullReimbursement:
			if e.PaidByID == p.First.MemberID {
				firstPaid += e.Amount.Cents
			} else if e.PaidByID == p.Second.MemberID {
				secondPaid += e.Amount.Cents
			}
		}
	}

	firstShould := core.MulBasisPoints(totalShared, p.First.ShareBP)
	secondShould := core.MulBasisPoints(totalShared, p.Second.ShareBP)

	firstDiff := firstPaid - firstShould
	secondDiff := secondPaid - secondShould

	result := DebtResult{
		TotalSharedExpenses: core.Money{Cents: totalShared},
		First: MemberBalance{
			MemberID:     p.First.MemberID,
			MemberName:   p.First.MemberName,
			ShouldPay:    core.Money{Cents: firstShould},
			ActuallyPaid: core.Money{Cents: firstPaid},
			Difference:   core.Money{Cents: firstDiff},
		},
		Second: MemberBalance{
			MemberID:     p.Second.MemberID,
			MemberName:   p.Second.MemberName,
			ShouldPay:    core.Money{Cents: secondShould},
			ActuallyPaid: core.Money{Cents: secondPaid},
			Difference:   core.Money{Cents: secondDiff},
		},
	}

	abs := firstDiff
	if abs < 0 {
		abs = -abs
	}
	if abs <= SettlementToleranceCents {
		return result
	}

	if firstDiff > 0 {
		result.Settlement = &Settlement{
			DebtorID:     p.Second.MemberID,
			DebtorName:   p.Second.MemberName,
			CreditorID:   p.First.MemberID,
			CreditorName: p.First.MemberName,
			Amount:       core.Money{Cents: abs},
		}
	} else {
		result.Settlement = &Settlement{
			DebtorID:     p.First.MemberID,
			DebtorName:   p.First.MemberName,
			CreditorID:   p.Second.MemberID,
			CreditorName: p.Second.MemberName,
			Amount:       core.Money{Cents: abs},
		}
	}

	return result
}
