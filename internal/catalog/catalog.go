// Package catalog holds the machine's mutable product list.
package catalog

import (
	"errors"
	"fmt"

	"github.com/fairyhunter13/vending-machine-simulator/internal/model"
)

var (
	ErrDuplicateID  = errors.New("product id already exists")
	ErrNotFound     = errors.New("product not found")
	ErrInvalidInput = errors.New("invalid product input")
	ErrOutOfStock   = errors.New("product out of stock")
)

// Catalog is an id-indexed product list that remembers insertion order.
// It is not safe for concurrent use.
type Catalog struct {
	m     map[int]*model.Product
	order []int
}

// New creates a Catalog holding the given products. Invalid or duplicate
// seed entries are reported as an error.
func New(seed ...model.Product) (*Catalog, error) {
	c := &Catalog{m: make(map[int]*model.Product)}
	for _, p := range seed {
		if err := c.Add(p); err != nil {
			return nil, fmt.Errorf("seed product %d: %w", p.ID, err)
		}
	}
	return c, nil
}

// DefaultSeed returns the bootstrap products.
func DefaultSeed() []model.Product {
	return []model.Product{
		{ID: 1, Name: "Cola", Price: 50, Stock: 10},
		{ID: 2, Name: "Chips", Price: 30, Stock: 5},
		{ID: 3, Name: "Water", Price: 25, Stock: 8},
	}
}

// FindByID returns a copy of the product with the given id.
func (c *Catalog) FindByID(id int) (model.Product, bool) {
	p, ok := c.m[id]
	if !ok {
		return model.Product{}, false
	}
	return *p, true
}

// Add inserts a new product. Names need not be unique.
func (c *Catalog) Add(p model.Product) error {
	switch {
	case p.ID <= 0:
		return fmt.Errorf("%w: id must be positive", ErrInvalidInput)
	case p.Name == "":
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	case p.Price <= 0:
		return fmt.Errorf("%w: price must be positive", ErrInvalidInput)
	case p.Stock < 0:
		return fmt.Errorf("%w: stock must be >= 0", ErrInvalidInput)
	}
	if _, ok := c.m[p.ID]; ok {
		return fmt.Errorf("%w: %d", ErrDuplicateID, p.ID)
	}
	c.m[p.ID] = &p
	c.order = append(c.order, p.ID)
	return nil
}

// Restock adds extra units to an existing product and returns the new stock.
func (c *Catalog) Restock(id, extra int) (int, error) {
	p, ok := c.m[id]
	if !ok {
		return 0, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	if extra <= 0 {
		return 0, fmt.Errorf("%w: restock amount must be positive", ErrInvalidInput)
	}
	p.Stock += extra
	return p.Stock, nil
}

// DecrementStock removes one unit of a product.
func (c *Catalog) DecrementStock(id int) error {
	p, ok := c.m[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	if p.Stock <= 0 {
		return fmt.Errorf("%w: %d", ErrOutOfStock, id)
	}
	p.Stock--
	return nil
}

// List returns a copy of every product in insertion order.
func (c *Catalog) List() []model.Product {
	out := make([]model.Product, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, *c.m[id])
	}
	return out
}

// Len returns the number of products.
func (c *Catalog) Len() int { return len(c.order) }
