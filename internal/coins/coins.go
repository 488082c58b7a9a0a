// Package coins validates coin denominations and splits amounts into coins.
package coins

import (
	"errors"
	"fmt"

	"github.com/fairyhunter13/vending-machine-simulator/internal/model"
)

// Denominations is the accepted coin set in the order change is paid out.
var Denominations = []model.Amount{10, 5, 2, 1}

// ErrInvariant reports a breakdown that could not be made exact. It signals a
// programming error, never a customer mistake.
var ErrInvariant = errors.New("change invariant violated")

// IsValidCoin reports whether v is an accepted denomination.
func IsValidCoin(v model.Amount) bool {
	for _, d := range Denominations {
		if d == v {
			return true
		}
	}
	return false
}

// ComputeBreakdown splits amount greedily over denoms, which must be strictly
// descending and positive. An amount of zero yields an empty breakdown.
func ComputeBreakdown(amount model.Amount, denoms []model.Amount) (model.Breakdown, error) {
	if amount < 0 {
		return nil, fmt.Errorf("%w: negative amount %d", ErrInvariant, amount)
	}
	for i, d := range denoms {
		if d <= 0 || (i > 0 && d >= denoms[i-1]) {
			return nil, fmt.Errorf("%w: denominations not strictly descending at %d", ErrInvariant, i)
		}
	}
	out := model.Breakdown{}
	remaining := amount
	for _, d := range denoms {
		if n := remaining / d; n > 0 {
			out[d] = int(n)
			remaining -= n * d
		}
	}
	if remaining != 0 {
		return nil, fmt.Errorf("%w: %d left over from %d", ErrInvariant, remaining, amount)
	}
	return out, nil
}
