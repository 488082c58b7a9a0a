// Package session drives repeated customer visits and admin sessions over a
// line-based text terminal.
package session

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/fairyhunter13/vending-machine-simulator/internal/admin"
	"github.com/fairyhunter13/vending-machine-simulator/internal/machine"
	"github.com/fairyhunter13/vending-machine-simulator/internal/model"
	"github.com/fairyhunter13/vending-machine-simulator/internal/obs"
)

var (
	// errQuit ends Run once the input is exhausted or the customer types quit.
	errQuit = errors.New("quit")
	// errServiceEnded ends Run after an admin collected the funds.
	errServiceEnded = errors.New("service ended")
)

// Console binds the transaction engine and the admin authenticator to a text
// terminal.
type Console struct {
	engine *machine.Engine
	auth   *admin.Authenticator
	in     *bufio.Scanner
	out    io.Writer
}

// NewConsole creates a Console reading commands from in and writing to out.
func NewConsole(engine *machine.Engine, auth *admin.Authenticator, in io.Reader, out io.Writer) *Console {
	return &Console{engine: engine, auth: auth, in: bufio.NewScanner(in), out: out}
}

// Run serves visits until the input ends, the operator types "quit", or an
// admin collects the funds.
func (c *Console) Run(ctx context.Context) error {
	obs.Logger.Info("console_started")
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := c.visit(ctx)
		if errors.Is(err, errServiceEnded) {
			c.printf("Funds collected. The machine is now out of service.\n")
			obs.Logger.Info("console_stopped", zap.String("reason", "funds_collected"))
			return nil
		}
		if errors.Is(err, errQuit) {
			c.settle(c.engine.Phase() != machine.PhaseDispensed)
			c.printf("Thank you for using the machine. Goodbye!\n")
			obs.Logger.Info("console_stopped")
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (c *Console) visit(ctx context.Context) error {
	c.printf("-------------------\nWelcome!\n")
	c.showProducts()
	c.printf("Insert coins one per line. Type 'finish' when done, 'admin' for maintenance, 'quit' to leave.\n")
	if err := c.collectCoins(ctx, true); err != nil {
		return err
	}

	c.printf("Enter a product id. Type 'cancel' to cancel.\n")
	if err := c.selectProduct(ctx); err != nil {
		return err
	}

	c.printf("Type 'continue' to keep shopping with your balance or 'finish' to take your change.\n")
	line, err := c.readLine(ctx)
	if err != nil {
		return err
	}
	if is(line, "continue") {
		return nil
	}
	c.settle(false)
	c.printf("Thank you, have a nice day!\n")
	return nil
}

// collectCoins reads coins until "finish". The admin entry is offered only at
// the start of a visit.
func (c *Console) collectCoins(ctx context.Context, allowAdmin bool) error {
	for {
		line, err := c.readLine(ctx)
		if err != nil {
			return err
		}
		switch {
		case is(line, "finish"):
			return nil
		case is(line, "quit"):
			return errQuit
		case allowAdmin && is(line, "admin"):
			if c.engine.Balance() > 0 {
				c.printf("Finish or cancel the current purchase first.\n")
				continue
			}
			if err := c.adminSession(ctx); err != nil {
				return err
			}
			c.showProducts()
			continue
		}
		v, err := strconv.ParseInt(line, 10, 64)
		if err != nil {
			c.printf("Invalid coin format.\n")
			continue
		}
		bal, err := c.engine.InsertCoin(model.Amount(v))
		if err != nil {
			c.printf("--- Invalid coin denomination ---\n")
			continue
		}
		c.printf("Your balance: %s\n", bal)
	}
}

func (c *Console) selectProduct(ctx context.Context) error {
	for {
		line, err := c.readLine(ctx)
		if err != nil {
			return err
		}
		if is(line, "cancel") {
			c.settle(true)
			return nil
		}
		r := c.engine.AttemptPurchase(line)
		switch r.Kind {
		case machine.Purchased:
			c.printf("Enjoy your %s!\nYour balance: %s\n", r.Product.Name, r.Balance)
			return nil
		case machine.InvalidIDFormat:
			c.printf("--- Invalid product id format ---\n")
		case machine.ProductUnavailable:
			c.printf("--- Product not found ---\n")
		case machine.OutOfStock:
			c.printf("--- %s is sold out ---\n", r.Product.Name)
		case machine.InsufficientFunds:
			c.printf("Insufficient balance: %s (price %s).\nAdd more coins? (yes/no)\n", r.Balance, r.Product.Price)
			answer, err := c.readLine(ctx)
			if err != nil {
				return err
			}
			if !is(answer, "yes") {
				c.settle(true)
				return nil
			}
			c.printf("Insert coins. Type 'finish' when done.\n")
			if err := c.collectCoins(ctx, false); err != nil {
				return err
			}
			c.printf("Enter a product id. Type 'cancel' to cancel.\n")
		}
	}
}

func (c *Console) settle(isCancellation bool) {
	s, err := c.engine.FinalizeVisit(isCancellation)
	if err != nil {
		c.printf("Machine error, please call service.\n")
		obs.Logger.Error("settle_failed", zap.Error(err))
		return
	}
	switch s.Kind {
	case machine.NothingToReturn:
		c.printf("Nothing to return.\n")
	case machine.Refund:
		c.printf("Refund: %s\n", s.Amount)
		c.printBreakdown(s.Breakdown)
	case machine.Change:
		c.printf("Change: %s\n", s.Amount)
		c.printBreakdown(s.Breakdown)
	}
}

func (c *Console) showProducts() {
	l := c.engine.ListProducts()
	c.printf("--- Available products ---\n")
	for _, p := range l.Products {
		c.printf("--- %d --- %s --- %s --- %d pcs ---\n", p.ID, p.Name, p.Price, p.Stock)
	}
	c.printf("Your balance: %s\n", l.Balance)
}

func (c *Console) printBreakdown(b model.Breakdown) {
	for _, e := range b.Entries() {
		c.printf("  %s x %d\n", e.Denomination, e.Count)
	}
}

func (c *Console) readLine(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !c.in.Scan() {
		if err := c.in.Err(); err != nil {
			return "", fmt.Errorf("read input: %w", err)
		}
		return "", errQuit
	}
	return strings.TrimSpace(c.in.Text()), nil
}

func (c *Console) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(c.out, format, args...)
}

func is(line, word string) bool { return strings.EqualFold(line, word) }
