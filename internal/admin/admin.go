// Package admin implements the password-gated maintenance session: fund
// collection and restocking.
package admin

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/fairyhunter13/vending-machine-simulator/internal/coins"
	"github.com/fairyhunter13/vending-machine-simulator/internal/machine"
	"github.com/fairyhunter13/vending-machine-simulator/internal/model"
	"github.com/fairyhunter13/vending-machine-simulator/internal/obs"
)

var (
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrSessionClosed        = errors.New("admin session closed")
)

// Authenticator checks the shared admin secret against a bcrypt hash.
type Authenticator struct {
	hash []byte
}

// NewAuthenticator hashes secret with the given bcrypt cost.
func NewAuthenticator(secret string, cost int) (*Authenticator, error) {
	if secret == "" {
		return nil, errors.New("admin secret is required")
	}
	h, err := bcrypt.GenerateFromPassword([]byte(secret), cost)
	if err != nil {
		return nil, fmt.Errorf("hash admin secret: %w", err)
	}
	return &Authenticator{hash: h}, nil
}

// NewAuthenticatorFromHash uses a precomputed bcrypt hash.
func NewAuthenticatorFromHash(hash string) (*Authenticator, error) {
	if _, err := bcrypt.Cost([]byte(hash)); err != nil {
		return nil, fmt.Errorf("admin secret hash: %w", err)
	}
	return &Authenticator{hash: []byte(hash)}, nil
}

// Enter grants a Session over st when password matches. There is exactly one
// attempt per call and no lockout.
func (a *Authenticator) Enter(password string, st *machine.State) (*Session, error) {
	if bcrypt.CompareHashAndPassword(a.hash, []byte(password)) != nil {
		obs.Logger.Warn("admin_login_failed")
		return nil, ErrAuthenticationFailed
	}
	s := &Session{id: uuid.NewString(), st: st}
	obs.Logger.Info("admin_login", zap.String("session_id", s.id))
	return s, nil
}

// CollectionKind discriminates the outcome of CollectFunds.
type CollectionKind string

const (
	Collected        CollectionKind = "collected"
	NothingToCollect CollectionKind = "nothing_to_collect"
)

// Collection reports collected revenue. Terminate asks the caller to end the
// machine's service; the session never stops anything itself.
type Collection struct {
	Kind      CollectionKind  `json:"result"`
	Amount    model.Amount    `json:"amount"`
	Breakdown model.Breakdown `json:"-"`
	Terminate bool            `json:"terminate"`
}

// Session is an authenticated admin handle.
type Session struct {
	id     string
	st     *machine.State
	closed bool
}

func (s *Session) ID() string { return s.id }

// Closed reports whether Exit has been called.
func (s *Session) Closed() bool { return s.closed }

// CollectFunds drains the revenue and resets the balance and the coin log.
// The breakdown is computed first so a failed breakdown changes nothing.
func (s *Session) CollectFunds() (Collection, error) {
	if s.closed {
		return Collection{}, ErrSessionClosed
	}
	amount := s.st.Revenue
	if amount == 0 {
		return Collection{Kind: NothingToCollect}, nil
	}
	b, err := coins.ComputeBreakdown(amount, coins.Denominations)
	if err != nil {
		obs.Logger.Error("collection_invariant_violated", zap.String("session_id", s.id), zap.Error(err))
		return Collection{}, fmt.Errorf("collect funds: %w", err)
	}
	pending := s.st.Balance
	s.st.Revenue = 0
	s.st.Balance = 0
	s.st.ClearCoins()
	obs.Logger.Info("funds_collected",
		zap.String("session_id", s.id),
		zap.Int64("amount", int64(amount)),
		zap.Int64("balance_cleared", int64(pending)),
	)
	return Collection{Kind: Collected, Amount: amount, Breakdown: b, Terminate: true}, nil
}

// AddProduct creates a new catalog entry.
func (s *Session) AddProduct(id int, name string, price model.Amount, stock int) error {
	if s.closed {
		return ErrSessionClosed
	}
	p := model.Product{ID: id, Name: strings.TrimSpace(name), Price: price, Stock: stock}
	if err := s.st.Products.Add(p); err != nil {
		return err
	}
	obs.Logger.Info("product_added",
		zap.String("session_id", s.id),
		zap.Int("product_id", id),
		zap.String("name", p.Name),
		zap.Int64("price", int64(price)),
		zap.Int("stock", stock),
	)
	return nil
}

// RestockExisting adds amount units to a product and returns its new stock.
func (s *Session) RestockExisting(id, amount int) (int, error) {
	if s.closed {
		return 0, ErrSessionClosed
	}
	n, err := s.st.Products.Restock(id, amount)
	if err != nil {
		return 0, err
	}
	obs.Logger.Info("product_restocked",
		zap.String("session_id", s.id),
		zap.Int("product_id", id),
		zap.Int("added", amount),
		zap.Int("stock", n),
	)
	return n, nil
}

// Exit hands control back to the customer flow without ending service.
func (s *Session) Exit() {
	if s.closed {
		return
	}
	s.closed = true
	obs.Logger.Info("admin_logout", zap.String("session_id", s.id))
}
