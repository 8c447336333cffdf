package equity

import (
	"testing"

	"coppia/internal/core"
)

func expense(payer string, split core.SplitType, amountCents int64, beneficiary string) core.SharedExpense {
	return core.SharedExpense{
		ID:            "e1",
		Description:   "test expense",
		Amount:        core.Money{Cents: amountCents},
		Category:      core.CategoryGroceries,
		PaidByID:      payer,
		SplitType:     split,
		BeneficiaryID: beneficiary,
	}
}

func participation(firstBP int64, totalCents int64) ParticipationResult {
	return ParticipationResult{
		First:             MemberShare{MemberID: "u1", MemberName: "Ana", ShareBP: firstBP},
		Second:            MemberShare{MemberID: "u2", MemberName: "Luca", ShareBP: 10000 - firstBP},
		TotalNetAvailable: core.Money{Cents: totalCents},
	}
}

func TestCalculateProportionalDebt_SingleSharedExpense(t *testing.T) {
	// 75/25 split, one shared expense of 400.00 paid by the first member.
	p := participation(7500, 400000)
	debt := CalculateProportionalDebt(p, []core.SharedExpense{
		expense("u1", core.SplitShared, 40000, ""),
	})

	if debt.TotalSharedExpenses.Cents != 40000 {
		t.Errorf("TotalSharedExpenses = %d, want 40000", debt.TotalSharedExpenses.Cents)
	}
	if debt.First.ShouldPay.Cents != 30000 {
		t.Errorf("First.ShouldPay = %d, want 30000", debt.First.ShouldPay.Cents)
	}
	if debt.Second.ShouldPay.Cents != 10000 {
		t.Errorf("Second.ShouldPay = %d, want 10000", debt.Second.ShouldPay.Cents)
	}
	if debt.First.ActuallyPaid.Cents != 40000 {
		t.Errorf("First.ActuallyPaid = %d, want 40000", debt.First.ActuallyPaid.Cents)
	}
	if debt.Second.ActuallyPaid.Cents != 0 {
		t.Errorf("Second.ActuallyPaid = %d, want 0", debt.Second.ActuallyPaid.Cents)
	}

	if debt.Settlement == nil {
		t.Fatal("expected a settlement, got none")
	}
	if debt.Settlement.DebtorID != "u2" || debt.Settlement.CreditorID != "u1" {
		t.Errorf("settlement direction = %s -> %s, want u2 -> u1",
			debt.Settlement.DebtorID, debt.Settlement.CreditorID)
	}
	if debt.Settlement.Amount.Cents != 10000 {
		t.Errorf("settlement amount = %d, want 10000", debt.Settlement.Amount.Cents)
	}
}

func TestCalculateProportionalDebt_SplitTypeAttribution(t *testing.T) {
	p := participation(5000, 200000)

	tests := []struct {
		name            string
		expenses        []core.SharedExpense
		wantTotalShared int64
		wantFirstPaid   int64
		wantSecondPaid  int64
	}{
		{
			name:            "personal expenses contribute nothing",
			expenses:        []core.SharedExpense{expense("u1", core.SplitPersonal, 15000, "")},
			wantTotalShared: 0,
			wantFirstPaid:   0,
			wantSecondPaid:  0,
		},
		{
			name:            "paid_for_other credits payer when beneficiary is the other member",
			expenses:        []core.SharedExpense{expense("u1", core.SplitPaidForOther, 20000, "u2")},
			wantTotalShared: 0,
			wantFirstPaid:   20000,
			wantSecondPaid:  0,
		},
		{
			name:            "paid_for_other with mismatched beneficiary contributes nothing",
			expenses:        []core.SharedExpense{expense("u1", core.SplitPaidForOther, 20000, "u1")},
			wantTotalShared: 0,
			wantFirstPaid:   0,
			wantSecondPaid:  0,
		},
		{
			// Observed legacy behavior, kept intentionally: the full
			// amount goes to the payer's paid total without entering the
			// shared total, exactly as a shared record's credit does.
			name:            "full_reimbursement credits payer like shared",
			expenses:        []core.SharedExpense{expense("u2", core.SplitFullReimbursement, 5000, "")},
			wantTotalShared: 0,
			wantFirstPaid:   0,
			wantSecondPaid:  5000,
		},
		{
			name: "mixed list",
			expenses: []core.SharedExpense{
				expense("u1", core.SplitShared, 10000, ""),
				expense("u2", core.SplitShared, 6000, ""),
				expense("u1", core.SplitPersonal, 99900, ""),
				expense("u2", core.SplitPaidForOther, 4000, "u1"),
			},
			wantTotalShared: 16000,
			wantFirstPaid:   10000,
			wantSecondPaid:  10000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			debt := CalculateProportionalDebt(p, tt.expenses)
			if debt.TotalSharedExpenses.Cents != tt.wantTotalShared {
				t.Errorf("TotalSharedExpenses = %d, want %d", debt.TotalSharedExpenses.Cents, tt.wantTotalShared)
			}
			if debt.First.ActuallyPaid.Cents != tt.wantFirstPaid {
				t.Errorf("First.ActuallyPaid = %d, want %d", debt.First.ActuallyPaid.Cents, tt.wantFirstPaid)
			}
			if debt.Second.ActuallyPaid.Cents != tt.wantSecondPaid {
				t.Errorf("Second.ActuallyPaid = %d, want %d", debt.Second.ActuallyPaid.Cents, tt.wantSecondPaid)
			}
		})
	}
}

func TestCalculateProportionalDebt_ShouldPaySumsToTotal(t *testing.T) {
	// Shares that do not divide the total evenly.
	p := participation(3333, 300000)
	debt := CalculateProportionalDebt(p, []core.SharedExpense{
		expense("u1", core.SplitShared, 10001, ""),
		expense("u2", core.SplitShared, 4999, ""),
	})

	sum := debt.First.ShouldPay.Cents + debt.Second.ShouldPay.Cents
	diff := sum - debt.TotalSharedExpenses.Cents
	if diff < -1 || diff > 1 {
		t.Errorf("shouldPay sum = %d, total = %d, want within 1 cent",
			sum, debt.TotalSharedExpenses.Cents)
	}
}

func TestCalculateProportionalDebt_BalancedPeriodHasNoSettlement(t *testing.T) {
	// 50/50 split, both paid exactly their half.
	p := participation(5000, 200000)
	debt := CalculateProportionalDebt(p, []core.SharedExpense{
		expense("u1", core.SplitShared, 10000, ""),
		expense("u2", core.SplitShared, 10000, ""),
	})

	if debt.Settlement != nil {
		t.Errorf("expected no settlement, got %+v", debt.Settlement)
	}
	if debt.First.Difference.Cents != 0 || debt.Second.Difference.Cents != 0 {
		t.Errorf("differences = (%d, %d), want (0, 0)",
			debt.First.Difference.Cents, debt.Second.Difference.Cents)
	}
}

func TestCalculateProportionalDebt_OneCentImbalanceIsTolerated(t *testing.T) {
	p := participation(5000, 200000)
	// Total 100.01 shared: halves round to 50.01 and 50.01, so the payer of
	// the odd cent is off by exactly one cent.
	debt := CalculateProportionalDebt(p, []core.SharedExpense{
		expense("u1", core.SplitShared, 5001, ""),
		expense("u2", core.SplitShared, 5000, ""),
	})

	if debt.Settlement != nil {
		t.Errorf("one-cent imbalance should be tolerated, got settlement %+v", debt.Settlement)
	}
}

func TestCalculateProportionalDebt_DifferencesSumToZero(t *testing.T) {
	p := participation(7500, 400000)
	debt := CalculateProportionalDebt(p, []core.SharedExpense{
		expense("u1", core.SplitShared, 40000, ""),
		expense("u2", core.SplitShared, 12345, ""),
	})

	sum := debt.First.Difference.Cents + debt.Second.Difference.Cents
	if sum < -1 || sum > 1 {
		t.Errorf("differences sum = %d, want within 1 cent of zero", sum)
	}

	if debt.Settlement == nil {
		t.Fatal("expected a settlement")
	}
	wantAmount := debt.First.Difference.Cents
	if wantAmount < 0 {
		wantAmount = -wantAmount
	}
	if debt.Settlement.Amount.Cents != wantAmount {
		t.Errorf("settlement amount = %d, want |first difference| = %d",
			debt.Settlement.Amount.Cents, wantAmount)
	}
}

func TestCalculateProportionalDebt_ZeroIncomeStillSettles(t *testing.T) {
	// Both members with zero net available and one shared expense of 100.00
	// paid by the first member: the forced 50/50 split makes the second
	// member owe 50.00.
	p := CalculateParticipation(
		finances("u1", "Ana", 0, 0),
		finances("u2", "Luca", 0, 0),
	)
	debt := CalculateProportionalDebt(p, []core.SharedExpense{
		expense("u1", core.SplitShared, 10000, ""),
	})

	if debt.Settlement == nil {
		t.Fatal("expected a settlement")
	}
	if debt.Settlement.DebtorID != "u2" || debt.Settlement.Amount.Cents != 5000 {
		t.Errorf("settlement = %s owes %d, want u2 owes 5000",
			debt.Settlement.DebtorID, debt.Settlement.Amount.Cents)
	}
}

func TestCalculateProportionalDebt_EmptyExpenseList(t *testing.T) {
	p := participation(7500, 400000)
	debt := CalculateProportionalDebt(p, nil)

	if debt.TotalSharedExpenses.Cents != 0 {
		t.Errorf("TotalSharedExpenses = %d, want 0", debt.TotalSharedExpenses.Cents)
	}
	if debt.Settlement != nil {
		t.Errorf("expected no settlement for empty period, got %+v", debt.Settlement)
	}
}
