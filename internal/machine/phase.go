package machine

// Phase is a state of the purchase state machine.
type Phase string

const (
	// PhaseCollectingPayment accepts coins; every visit starts here.
	PhaseCollectingPayment Phase = "collecting_payment"
	// PhaseSelectingProduct is entered once the customer picks a product.
	PhaseSelectingProduct Phase = "selecting_product"
	// PhaseDispensed follows a successful purchase.
	PhaseDispensed Phase = "dispensed"
	// PhaseInsufficientFunds keeps the balance so the customer may top up.
	PhaseInsufficientFunds Phase = "insufficient_funds"
	// PhaseCancelled follows a refund.
	PhaseCancelled Phase = "cancelled"
)

// transitions lists the permitted moves. Self-loops are listed explicitly.
var transitions = map[Phase][]Phase{
	PhaseCollectingPayment: {
		PhaseCollectingPayment,
		PhaseSelectingProduct,
		PhaseCancelled,
	},
	PhaseSelectingProduct: {
		PhaseSelectingProduct,
		PhaseDispensed,
		PhaseInsufficientFunds,
		PhaseCollectingPayment,
		PhaseCancelled,
	},
	PhaseInsufficientFunds: {
		PhaseCollectingPayment,
		PhaseSelectingProduct,
		PhaseCancelled,
	},
	PhaseDispensed: {
		PhaseDispensed,
		PhaseCollectingPayment,
		PhaseSelectingProduct,
		PhaseCancelled,
	},
	PhaseCancelled: {
		PhaseCollectingPayment,
	},
}

// CanTransition reports whether the machine may move from one phase to another.
func CanTransition(from, to Phase) bool {
	for _, p := range transitions[from] {
		if p == to {
			return true
		}
	}
	return false
}

// terminal reports whether p ends a visit.
func (p Phase) terminal() bool {
	return p == PhaseDispensed || p == PhaseCancelled
}
