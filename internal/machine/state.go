// Package machine implements the vending machine's purchase state machine.
package machine

import (
	"github.com/fairyhunter13/vending-machine-simulator/internal/catalog"
	"github.com/fairyhunter13/vending-machine-simulator/internal/model"
)

// State is the machine's shared mutable state. The transaction engine and the
// admin session both receive it explicitly; nothing holds it globally.
type State struct {
	Products      *catalog.Catalog
	Balance       model.Amount
	InsertedCoins []model.Amount
	Revenue       model.Amount
}

// NewState creates a State over the given catalog.
func NewState(products *catalog.Catalog) *State {
	return &State{Products: products}
}

// NewDefaultState creates a State seeded with the bootstrap products.
func NewDefaultState() *State {
	c, err := catalog.New(catalog.DefaultSeed()...)
	if err != nil {
		panic(err) // static seed
	}
	return NewState(c)
}

// CoinTotal sums the coin log.
func (s *State) CoinTotal() model.Amount {
	var sum model.Amount
	for _, c := range s.InsertedCoins {
		sum += c
	}
	return sum
}

// ClearCoins empties the coin log. Earlier snapshots of the log stay intact.
func (s *State) ClearCoins() { s.InsertedCoins = nil }
