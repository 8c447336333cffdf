// This file implements the Strategy Pattern for dividing the month's
// residual funds across open savings goals. The default policy is a uniform
// split; alternative policies (deadline-weighted, shortfall-weighted) can be
// registered without touching the aggregator.

package equity

import (
	"fmt"

	"coppia/internal/core"
)

// AllocationStrategy decides how much of the available monthly residual each
// open goal receives. Implementations must return one amount per goal, in
// order, and must not mutate the goals slice.
type AllocationStrategy interface {
	// Allocate splits available across the goals. The sum of the returned
	// amounts must not exceed available.
	Allocate(available core.Money, goals []core.SavingsGoal) []core.Money
}

// EqualSplit divides the available amount uniformly across all goals,
// regardless of deadline proximity or shortfall severity. This is the
// household's standing policy: goals do not compete.
type EqualSplit struct{}

// Allocate returns available/len(goals) for every goal (integer division;
// the sub-cent remainder is left unallocated rather than assigned to an
// arbitrary goal).
func (EqualSplit) Allocate(available core.Money, goals []core.SavingsGoal) []core.Money {
	shares := make([]core.Money, len(goals))
	if len(goals) == 0 || available.Cents <= 0 {
		return shares
	}
	per := available.Cents / int64(len(goals))
	for i := range shares {
		shares[i] = core.Money{Cents: per}
	}
	return shares
}

// allocationStrategies maps policy names to their implementations.
var allocationStrategies = map[string]AllocationStrategy{
	"equal": EqualSplit{},
}

// GetAllocationStrategy returns the strategy registered under name.
func GetAllocationStrategy(name string) (AllocationStrategy, error) {
	s, ok := allocationStrategies[name]
	if !ok {
		return nil, fmt.Errorf("unknown allocation strategy: %s", name)
	}
	return s, nil
}

// RegisterAllocationStrategy registers a custom allocation policy under the
// given name, replacing any previous registration.
func RegisterAllocationStrategy(name string, s AllocationStrategy) {
	allocationStrategies[name] = s
}
