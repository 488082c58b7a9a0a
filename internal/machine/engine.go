package machine

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fairyhunter13/vending-machine-simulator/internal/coins"
	"github.com/fairyhunter13/vending-machine-simulator/internal/model"
	"github.com/fairyhunter13/vending-machine-simulator/internal/obs"
)

// Engine runs customer visits against a State. Every method runs to
// completion without blocking; callers serialize access.
type Engine struct {
	st      *State
	phase   Phase
	visitID string
}

// NewEngine creates an Engine at the start of a fresh visit.
func NewEngine(st *State) *Engine {
	e := &Engine{st: st}
	e.beginVisit()
	return e
}

// State returns the shared machine state.
func (e *Engine) State() *State { return e.st }

// Phase returns the current phase of the visit.
func (e *Engine) Phase() Phase { return e.phase }

// VisitID identifies the current visit in logs.
func (e *Engine) VisitID() string { return e.visitID }

// Balance returns the customer's current balance.
func (e *Engine) Balance() model.Amount { return e.st.Balance }

// ListProducts returns the products in catalog order with the balance.
func (e *Engine) ListProducts() Listing {
	return Listing{Products: e.st.Products.List(), Balance: e.st.Balance, Phase: e.phase}
}

// InsertCoin adds a coin to the balance and returns the new balance. Invalid
// denominations leave the state untouched.
func (e *Engine) InsertCoin(v model.Amount) (model.Amount, error) {
	if !coins.IsValidCoin(v) {
		obs.Logger.Info("coin_rejected", zap.String("visit_id", e.visitID), zap.Int64("value", int64(v)))
		return e.st.Balance, fmt.Errorf("%w: %d", ErrInvalidDenomination, v)
	}
	e.resume()
	e.st.Balance += v
	e.st.InsertedCoins = append(e.st.InsertedCoins, v)
	e.moveTo(PhaseCollectingPayment)
	obs.Logger.Info("coin_inserted",
		zap.String("visit_id", e.visitID),
		zap.Int64("value", int64(v)),
		zap.Int64("balance", int64(e.st.Balance)),
	)
	return e.st.Balance, nil
}

// AttemptPurchase tries to buy the product whose id is given as text.
// Rejections other than InsufficientFunds leave the state untouched.
func (e *Engine) AttemptPurchase(idText string) PurchaseResult {
	id, err := strconv.Atoi(strings.TrimSpace(idText))
	if err != nil {
		return e.reject(InvalidIDFormat, nil)
	}
	p, ok := e.st.Products.FindByID(id)
	if !ok {
		return e.reject(ProductUnavailable, nil)
	}
	if p.Stock <= 0 {
		return e.reject(OutOfStock, &p)
	}
	if e.st.Balance < p.Price {
		e.resume()
		e.moveTo(PhaseSelectingProduct)
		e.moveTo(PhaseInsufficientFunds)
		return e.reject(InsufficientFunds, &p)
	}
	if err := e.st.Products.DecrementStock(p.ID); err != nil {
		// FindByID just saw stock > 0; treat a failure as unavailable.
		obs.Logger.Error("stock_decrement_failed", zap.Int("product_id", p.ID), zap.Error(err))
		return e.reject(ProductUnavailable, &p)
	}
	e.moveTo(PhaseSelectingProduct)
	e.st.Balance -= p.Price
	e.st.Revenue += p.Price
	p.Stock--
	e.moveTo(PhaseDispensed)
	obs.Logger.Info("purchase_completed",
		zap.String("visit_id", e.visitID),
		zap.Int("product_id", p.ID),
		zap.Int64("price", int64(p.Price)),
		zap.Int64("balance", int64(e.st.Balance)),
		zap.Int64("revenue", int64(e.st.Revenue)),
	)
	return PurchaseResult{Kind: Purchased, Product: &p, Balance: e.st.Balance}
}

// FinalizeVisit hands the balance back as a refund (cancellation) or as
// change. A zero balance yields NothingToReturn and changes nothing. An error
// is returned only if the change could not be made exact, in which case the
// state is left as it was.
func (e *Engine) FinalizeVisit(isCancellation bool) (Settlement, error) {
	amount := e.st.Balance
	if amount <= 0 {
		return Settlement{Kind: NothingToReturn}, nil
	}
	b, err := coins.ComputeBreakdown(amount, coins.Denominations)
	if err != nil {
		obs.Logger.Error("change_invariant_violated", zap.String("visit_id", e.visitID), zap.Error(err))
		return Settlement{}, fmt.Errorf("finalize visit: %w", err)
	}
	kind := Change
	if isCancellation {
		kind = Refund
	}
	e.st.Balance = 0
	switch {
	case isCancellation:
		e.st.ClearCoins()
		e.moveTo(PhaseCancelled)
	case e.phase == PhaseDispensed:
		e.moveTo(PhaseDispensed)
	default:
		e.moveTo(PhaseCancelled)
	}
	obs.Logger.Info("visit_settled",
		zap.String("visit_id", e.visitID),
		zap.String("kind", string(kind)),
		zap.Int64("amount", int64(amount)),
	)
	return Settlement{Kind: kind, Amount: amount, Breakdown: b}, nil
}

func (e *Engine) reject(kind PurchaseKind, p *model.Product) PurchaseResult {
	obs.Logger.Info("purchase_rejected",
		zap.String("visit_id", e.visitID),
		zap.String("result", string(kind)),
		zap.Int64("balance", int64(e.st.Balance)),
	)
	return PurchaseResult{Kind: kind, Product: p, Balance: e.st.Balance}
}

// resume starts a new visit once the previous one is over and nothing is owed.
// Change left after a purchase keeps the visit open for further shopping.
func (e *Engine) resume() {
	if e.phase.terminal() && e.st.Balance == 0 {
		e.beginVisit()
	}
}

func (e *Engine) beginVisit() {
	e.visitID = uuid.NewString()
	e.phase = PhaseCollectingPayment
	e.st.ClearCoins()
	obs.Logger.Debug("visit_started", zap.String("visit_id", e.visitID))
}

func (e *Engine) moveTo(to Phase) {
	if !CanTransition(e.phase, to) {
		panic(fmt.Sprintf("machine: illegal transition %s -> %s", e.phase, to))
	}
	e.phase = to
}
