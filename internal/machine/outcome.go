package machine

import (
	"errors"

	"github.com/fairyhunter13/vending-machine-simulator/internal/model"
)

// ErrInvalidDenomination is returned for coins outside the accepted set.
var ErrInvalidDenomination = errors.New("invalid coin denomination")

// PurchaseKind discriminates the result of a purchase attempt.
type PurchaseKind string

const (
	Purchased          PurchaseKind = "purchased"
	InsufficientFunds  PurchaseKind = "insufficient_funds"
	OutOfStock         PurchaseKind = "out_of_stock"
	ProductUnavailable PurchaseKind = "product_unavailable"
	InvalidIDFormat    PurchaseKind = "invalid_id_format"
)

// PurchaseResult reports a purchase attempt. Product is set whenever the id
// resolved to a catalog entry; Balance is the balance after the attempt.
type PurchaseResult struct {
	Kind    PurchaseKind   `json:"result"`
	Product *model.Product `json:"product,omitempty"`
	Balance model.Amount   `json:"balance"`
}

// OK reports whether the product was dispensed.
func (r PurchaseResult) OK() bool { return r.Kind == Purchased }

// SettlementKind discriminates what FinalizeVisit returned to the customer.
type SettlementKind string

const (
	Refund          SettlementKind = "refund"
	Change          SettlementKind = "change"
	NothingToReturn SettlementKind = "nothing_to_return"
)

// Settlement is the money handed back at the end of a visit.
type Settlement struct {
	Kind      SettlementKind  `json:"result"`
	Amount    model.Amount    `json:"amount"`
	Breakdown model.Breakdown `json:"-"`
}

// Listing is the product display with the current balance.
type Listing struct {
	Products []model.Product `json:"products"`
	Balance  model.Amount    `json:"balance"`
	Phase    Phase           `json:"phase"`
}
