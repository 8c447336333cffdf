// Package equity implements the household equity-calculation engine: the
// participation split, the proportional debt settlement, the savings-goal
// re-projection, and the monthly aggregator that chains them.
//
// Every function in this package is pure: inputs are never mutated, no I/O is
// performed, and the same snapshot always produces the same result. Amounts
// are int64 cents and percentage shares are int64 basis points (hundredths of
// a percent); half-up rounding is applied only at output boundaries so
// intermediate computation never compounds rounding error.
package equity

import (
	"coppia/internal/core"
)

// MemberShare is one member's side of a participation split.
type MemberShare struct {
	MemberID     string
	MemberName   string
	NetAvailable core.Money
	// ShareBP is the participation share in basis points (0-10000).
	ShareBP int64
}

// ParticipationResult is the derived per-period responsibility split. It is
// computed fresh from the two members' finances and never persisted.
type ParticipationResult struct {
	First             MemberShare
	Second            MemberShare
	TotalNetAvailable core.Money
}

// CalculateParticipation converts each member's net-available income into a
// share of the combined net-available income.
//
// When neither member has disposable income the split is forced to 50/50:
// equal responsibility when there is nothing to apportion, and no division
// by zero.
func CalculateParticipation(first, second core.MemberFinances) ParticipationResult {
	firstNet := first.NetAvailable()
	secondNet := second.NetAvailable()
	total := firstNet.Cents + secondNet.Cents

	if total == 0 {
		return ParticipationResult{
			First:  MemberShare{MemberID: first.MemberID, MemberName: first.MemberName, ShareBP: 5000},
			Second: MemberShare{MemberID: second.MemberID, MemberName: second.MemberName, ShareBP: 5000},
		}
	}

	// Each share is rounded independently, matching the two-decimal
	// percentage contract. The two may differ from 10000 by at most 1bp.
	return ParticipationResult{
		First: MemberShare{
			MemberID:     first.MemberID,
			MemberName:   first.MemberName,
			NetAvailable: firstNet,
			ShareBP:      core.DivRoundHalfUp(firstNet.Cents*10000, total),
		},
		Second: MemberShare{
			MemberID:     second.MemberID,
			MemberName:   second.MemberName,
			NetAvailable: secondNet,
			ShareBP:      core.DivRoundHalfUp(secondNet.Cents*10000, total),
		},
		TotalNetAvailable: core.Money{Cents: total},
	}
}

// Percent returns the share as a percentage with two decimals, for display.
func (s MemberShare) Percent() float64 {
	return float64(s.ShareBP) / 100.0
}
