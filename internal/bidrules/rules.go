// Package bidrules decides whether a proposed bid price is admissible for a
// project auction. It is pure: callers snapshot the competing market state,
// the engine evaluates the rules in a fixed order and reports the first
// violation with full diagnostic context.
package bidrules

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Violation kinds, surfaced verbatim in API error bodies.
const (
	KindDuplicateBid          = "duplicate_bid"
	KindInsufficientDecrement = "insufficient_decrement"
	KindBelowMinBudget        = "below_min_budget"
	KindDuplicatePrice        = "duplicate_price"
	KindBidFinalized          = "bid_finalized"
	KindUpdateLimitExceeded   = "update_limit_exceeded"
)

// Decrement tier boundaries and the minimum undercut required in each tier.
var (
	tierLowCeiling = decimal.NewFromInt(15000)
	tierMidCeiling = decimal.NewFromInt(100000)

	decrementLow  = decimal.NewFromInt(200)
	decrementMid  = decimal.NewFromInt(1000)
	decrementHigh = decimal.NewFromInt(2000)

	one = decimal.NewFromInt(1)
)

// Violation is a single admissibility failure. Context fields are populated
// per kind; nil pointers mean the field does not apply.
type Violation struct {
	Kind             string
	Message          string
	CurrentLowestBid *decimal.Decimal
	RequiredBid      *decimal.Decimal
	MinDecrement     *decimal.Decimal
	MinBudget        *decimal.Decimal
	SuggestedPrice   *decimal.Decimal
	Status           string
}

// Error satisfies the error interface.
func (v *Violation) Error() string {
	return v.Message
}

// Market is a snapshot of the competing state for one project at evaluation
// time. For revisions the bid under revision must be excluded from Lowest and
// Prices before building the snapshot.
// Prices carries every competing bid price regardless of status: a price
// that cleared the decrement rule is below every live competitor, so the only
// possible exact collision is with a rejected bid's price. Lowest considers
// live (non-rejected) bids only.
type Market struct {
	Lowest    *decimal.Decimal  // price of the cheapest live competing bid, nil if none
	Prices    []decimal.Decimal // all competing bid prices, for duplicate detection
	MinBudget *decimal.Decimal  // project floor, nil if the project has none
}

// MinDecrement returns the minimum amount a new bid must undercut the given
// lowest price by.
func MinDecrement(lowest decimal.Decimal) decimal.Decimal {
	switch {
	case lowest.LessThanOrEqual(tierLowCeiling):
		return decrementLow
	case lowest.LessThanOrEqual(tierMidCeiling):
		return decrementMid
	default:
		return decrementHigh
	}
}

// CheckPrice evaluates the price-affecting rules for a proposed price against
// a market snapshot: tiered decrement, then budget floor, then duplicate
// price. The first failing rule wins. Returns nil when the price is
// admissible.
func CheckPrice(proposed decimal.Decimal, m Market) *Violation {
	if m.Lowest != nil {
		minDec := MinDecrement(*m.Lowest)
		required := m.Lowest.Sub(minDec)
		if proposed.GreaterThan(required) {
			return &Violation{
				Kind: KindInsufficientDecrement,
				Message: fmt.Sprintf("bid must be at least %s lower than the current lowest bid of %s",
					minDec.String(), m.Lowest.String()),
				CurrentLowestBid: m.Lowest,
				RequiredBid:      &required,
				MinDecrement:     &minDec,
			}
		}
	}

	if m.MinBudget != nil && proposed.LessThan(*m.MinBudget) {
		return &Violation{
			Kind:      KindBelowMinBudget,
			Message:   fmt.Sprintf("bid cannot be below the project minimum budget of %s", m.MinBudget.String()),
			MinBudget: m.MinBudget,
		}
	}

	for _, p := range m.Prices {
		if p.Equal(proposed) {
			suggested := proposed.Add(one)
			return &Violation{
				Kind:           KindDuplicatePrice,
				Message:        fmt.Sprintf("a bid of %s already exists for this project", proposed.String()),
				SuggestedPrice: &suggested,
			}
		}
	}

	return nil
}

// CheckRevisable evaluates the revision-only guards: a bid in a terminal
// state can never be revised, and a bid may be revised at most maxUpdates
// times. Returns nil when revision is permitted.
func CheckRevisable(status string, updateCount, maxUpdates int) *Violation {
	if status != "pending" {
		return &Violation{
			Kind:    KindBidFinalized,
			Message: fmt.Sprintf("bid has been %s and can no longer be updated", status),
			Status:  status,
		}
	}
	if updateCount >= maxUpdates {
		return &Violation{
			Kind:    KindUpdateLimitExceeded,
			Message: fmt.Sprintf("bid has already been updated %d times, no further updates allowed", updateCount),
		}
	}
	return nil
}

// DuplicateBidder reports the creation-only violation for a contractor who
// already holds a bid on the project.
func DuplicateBidder(contractorName string) *Violation {
	return &Violation{
		Kind:    KindDuplicateBid,
		Message: fmt.Sprintf("%s already has a bid on this project, update the existing bid instead", contractorName),
	}
}
