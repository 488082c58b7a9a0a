package session

import (
	"context"
	"errors"
	"strconv"

	"github.com/fairyhunter13/vending-machine-simulator/internal/admin"
	"github.com/fairyhunter13/vending-machine-simulator/internal/catalog"
	"github.com/fairyhunter13/vending-machine-simulator/internal/model"
)

// adminSession asks for the password once and runs the admin menu. It returns
// errServiceEnded after a collection.
func (c *Console) adminSession(ctx context.Context) error {
	c.printf("Password:\n")
	pw, err := c.readLine(ctx)
	if err != nil {
		return err
	}
	s, err := c.auth.Enter(pw, c.engine.State())
	if err != nil {
		c.printf("--- Authentication failed ---\n")
		return nil
	}
	defer s.Exit()
	for {
		c.printf("Admin menu: 1) collect funds  2) restock  3) exit\n")
		line, err := c.readLine(ctx)
		if err != nil {
			return err
		}
		switch line {
		case "1":
			col, err := s.CollectFunds()
			if err != nil {
				c.printf("Machine error, please call service.\n")
				continue
			}
			if col.Kind == admin.NothingToCollect {
				c.printf("Nothing to collect.\n")
				continue
			}
			c.printf("Collected: %s\n", col.Amount)
			c.printBreakdown(col.Breakdown)
			if col.Terminate {
				return errServiceEnded
			}
		case "2":
			if err := c.restockMenu(ctx, s); err != nil {
				return err
			}
		case "3":
			return nil
		default:
			c.printf("Unknown option.\n")
		}
	}
}

func (c *Console) restockMenu(ctx context.Context, s *admin.Session) error {
	for {
		c.printf("Restock: 1) add product  2) restock existing  3) return\n")
		line, err := c.readLine(ctx)
		if err != nil {
			return err
		}
		switch line {
		case "1":
			if err := c.addProduct(ctx, s); err != nil {
				return err
			}
		case "2":
			if err := c.restockExisting(ctx, s); err != nil {
				return err
			}
		case "3":
			return nil
		default:
			c.printf("Unknown option.\n")
		}
	}
}

func (c *Console) addProduct(ctx context.Context, s *admin.Session) error {
	id, ok, err := c.askInt(ctx, "Product id:")
	if err != nil || !ok {
		return err
	}
	c.printf("Name:\n")
	name, err := c.readLine(ctx)
	if err != nil {
		return err
	}
	price, ok, err := c.askInt(ctx, "Price:")
	if err != nil || !ok {
		return err
	}
	stock, ok, err := c.askInt(ctx, "Stock:")
	if err != nil || !ok {
		return err
	}
	switch err := s.AddProduct(id, name, model.Amount(price), stock); {
	case errors.Is(err, catalog.ErrDuplicateID):
		c.printf("--- A product with id %d already exists ---\n", id)
	case err != nil:
		c.printf("--- Invalid product: %v ---\n", err)
	default:
		c.printf("Product %d added.\n", id)
	}
	return nil
}

func (c *Console) restockExisting(ctx context.Context, s *admin.Session) error {
	id, ok, err := c.askInt(ctx, "Product id:")
	if err != nil || !ok {
		return err
	}
	amount, ok, err := c.askInt(ctx, "Units to add:")
	if err != nil || !ok {
		return err
	}
	n, err := s.RestockExisting(id, amount)
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		c.printf("--- Product not found ---\n")
	case err != nil:
		c.printf("--- Invalid amount ---\n")
	default:
		c.printf("Product %d now has %d pcs.\n", id, n)
	}
	return nil
}

// askInt prompts for a number. ok is false when the answer was not a number.
func (c *Console) askInt(ctx context.Context, prompt string) (int, bool, error) {
	c.printf("%s\n", prompt)
	line, err := c.readLine(ctx)
	if err != nil {
		return 0, false, err
	}
	n, err := strconv.Atoi(line)
	if err != nil {
		c.printf("--- Not a number ---\n")
		return 0, false, nil
	}
	return n, true, nil
}
