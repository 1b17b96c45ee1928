package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartLine is one product reserved in a cart
type CartLine struct {
	Product  *Product `json:"product"`
	Quantity float64  `json:"quantity"`
}

// Subtotal is the line's cost at the product's current price
func (l CartLine) Subtotal() float64 {
	return l.Product.Price() * l.Quantity
}

// Cart is a customer's reservation of catalog products pending checkout.
//
// The cart is the single place where stock gets reserved: adding or raising a
// line withdraws the amount from the product, removing or lowering it gives
// the difference back. A Cart is not safe for concurrent use; its Customer
// serializes access.
type Cart struct {
	lines map[uuid.UUID]*CartLine
	order []uuid.UUID
}

// NewCart creates an empty cart
func NewCart() *Cart {
	return &Cart{lines: make(map[uuid.UUID]*CartLine)}
}

// AddProduct reserves quantity of p and adds it to the cart, increasing the
// existing line when p is already present.
func (c *Cart) AddProduct(p *Product, quantity float64) error {
	if p == nil {
		return fmt.Errorf("%w: product is required", ErrInvalidArgument)
	}
	if !(quantity > 0) {
		return fmt.Errorf("%w: quantity must be greater than zero", ErrInvalidArgument)
	}

	if err := p.Reserve(quantity); err != nil {
		return err
	}

	if line, ok := c.lines[p.ID()]; ok {
		line.Quantity = decimal.NewFromFloat(line.Quantity).Add(decimal.NewFromFloat(quantity)).InexactFloat64()
		return nil
	}
	c.lines[p.ID()] = &CartLine{Product: p, Quantity: quantity}
	c.order = append(c.order, p.ID())
	return nil
}

// UpdateProductQuantity overwrites the quantity of p. Zero removes the line.
// Only the difference to what the cart already holds is checked against the
// live stock.
func (c *Cart) UpdateProductQuantity(p *Product, quantity float64) error {
	if p == nil {
		return fmt.Errorf("%w: product is required", ErrInvalidArgument)
	}
	if quantity < 0 {
		return fmt.Errorf("%w: quantity cannot be negative", ErrInvalidArgument)
	}
	if quantity == 0 {
		return c.RemoveProduct(p)
	}

	line, ok := c.lines[p.ID()]
	if !ok {
		return c.AddProduct(p, quantity)
	}

	// The new quantity must make sense for the unit on its own, not just its delta.
	if _, err := NewStock(p.Unit(), quantity); err != nil {
		return err
	}

	delta := decimal.NewFromFloat(quantity).Sub(decimal.NewFromFloat(line.Quantity)).InexactFloat64()
	switch {
	case delta > 0:
		if err := p.Reserve(delta); err != nil {
			return err
		}
	case delta < 0:
		if err := p.Release(-delta); err != nil {
			return err
		}
	}
	line.Quantity = quantity
	return nil
}

// RemoveProduct drops p from the cart and returns its reservation to stock.
// Removing a product that is not in the cart is a no-op.
func (c *Cart) RemoveProduct(p *Product) error {
	if p == nil {
		return nil
	}
	line, ok := c.lines[p.ID()]
	if !ok {
		return nil
	}

	if err := line.Product.Release(line.Quantity); err != nil {
		return err
	}
	c.drop(p.ID())
	return nil
}

// Products returns a copy of the cart's lines in insertion order
func (c *Cart) Products() []CartLine {
	out := make([]CartLine, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, *c.lines[id])
	}
	return out
}

// Quantities returns a copy of the product ID to quantity mapping
func (c *Cart) Quantities() map[uuid.UUID]float64 {
	out := make(map[uuid.UUID]float64, len(c.lines))
	for id, line := range c.lines {
		out[id] = line.Quantity
	}
	return out
}

// Quantity returns the quantity of p held by the cart
func (c *Cart) Quantity(p *Product) float64 {
	if line, ok := c.lines[p.ID()]; ok {
		return line.Quantity
	}
	return 0
}

// Len returns the number of distinct products in the cart
func (c *Cart) Len() int {
	return len(c.order)
}

// IsEmpty reports whether the cart has no entries
func (c *Cart) IsEmpty() bool {
	return len(c.order) == 0
}

// TotalCost sums price times quantity over every line, at current prices
func (c *Cart) TotalCost() float64 {
	var total float64
	for _, id := range c.order {
		total += c.lines[id].Subtotal()
	}
	return total
}

// Clear empties the cart without giving the reserved stock back.
// Used once the reservation has become an order.
func (c *Cart) Clear() {
	for _, id := range c.order {
		line := c.lines[id]
		line.Product.settle(line.Quantity)
	}
	c.reset()
}

func (c *Cart) reset() {
	c.lines = make(map[uuid.UUID]*CartLine)
	c.order = nil
}

// Release empties the cart and returns every reservation to stock
func (c *Cart) Release() error {
	var errs []error
	for _, id := range c.order {
		line := c.lines[id]
		if err := line.Product.Release(line.Quantity); err != nil {
			errs = append(errs, err)
		}
	}
	c.reset()
	return errors.Join(errs...)
}

// Summary renders the cart as text, one line per product
func (c *Cart) Summary() string {
	var sb strings.Builder
	sb.WriteString("Shopping Cart:\n")
	if c.IsEmpty() {
		sb.WriteString("The cart is empty.\n")
		return sb.String()
	}

	for _, line := range c.Products() {
		fmt.Fprintf(&sb, "- %s: %s %s (Total: %s)\n",
			line.Product.Title(),
			decimal.NewFromFloat(line.Quantity).StringFixed(2),
			unitLabel(line.Product.Unit()),
			FormatEuro(line.Subtotal()),
		)
	}
	fmt.Fprintf(&sb, "Total Cost: %s", FormatEuro(c.TotalCost()))
	return sb.String()
}

func (c *Cart) drop(id uuid.UUID) {
	delete(c.lines, id)
	for i, v := range c.order {
		if v == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// FormatEuro renders an amount with two fractional digits and a leading euro sign
func FormatEuro(amount float64) string {
	return "€" + decimal.NewFromFloat(amount).StringFixed(2)
}

func unitLabel(u Unit) string {
	if u == UnitPieces {
		return "pieces"
	}
	return "kg"
}
