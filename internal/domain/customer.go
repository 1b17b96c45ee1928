package domain

import (
	"sync"

	"github.com/google/uuid"
)

// Customer owns one cart and an append-only order history. The only way to
// append to the history is completing the cart's checkout.
type Customer struct {
	id uuid.UUID

	mu      sync.Mutex
	cart    *Cart
	history []*Order
}

// NewCustomer creates a customer with an empty cart and no orders
func NewCustomer(id uuid.UUID) *Customer {
	return &Customer{id: id, cart: NewCart()}
}

// RestoreCustomer creates a customer whose history already holds orders, oldest first
func RestoreCustomer(id uuid.UUID, history []*Order) *Customer {
	c := NewCustomer(id)
	c.history = append(c.history, history...)
	return c
}

func (c *Customer) ID() uuid.UUID { return c.id }

// WithCart runs fn with exclusive access to the customer's cart
func (c *Customer) WithCart(fn func(cart *Cart) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return fn(c.cart)
}

// AddToCart reserves quantity of p in the cart
func (c *Customer) AddToCart(p *Product, quantity float64) error {
	return c.WithCart(func(cart *Cart) error {
		return cart.AddProduct(p, quantity)
	})
}

// UpdateCart overwrites the quantity of p in the cart
func (c *Customer) UpdateCart(p *Product, quantity float64) error {
	return c.WithCart(func(cart *Cart) error {
		return cart.UpdateProductQuantity(p, quantity)
	})
}

// RemoveFromCart drops p from the cart
func (c *Customer) RemoveFromCart(p *Product) error {
	return c.WithCart(func(cart *Cart) error {
		return cart.RemoveProduct(p)
	})
}

// CartLines returns a copy of the cart's lines
func (c *Customer) CartLines() []CartLine {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cart.Products()
}

// CartTotal returns the cart's total cost
func (c *Customer) CartTotal() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cart.TotalCost()
}

// CompleteOrder turns the cart into an order, appends it to the history and
// clears the cart.
func (c *Customer) CompleteOrder() (*Order, error) {
	return c.CompleteOrderWith(nil)
}

// CompleteOrderWith is CompleteOrder with a commit step run between building
// the order and applying it. When commit fails the cart and the history are
// left exactly as they were.
func (c *Customer) CompleteOrderWith(commit func(*Order) error) (*Order, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cart.IsEmpty() {
		return nil, ErrEmptyCart
	}

	order, err := NewOrder(c.id, c.cart.Products())
	if err != nil {
		return nil, err
	}

	if commit != nil {
		if err := commit(order); err != nil {
			return nil, err
		}
	}

	c.history = append(c.history, order)
	c.cart.Clear()
	return order, nil
}

// Orders returns a copy of the order history, oldest first
func (c *Customer) Orders() []*Order {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]*Order, len(c.history))
	copy(out, c.history)
	return out
}

// Order returns the order with the given ID from the customer's history
func (c *Customer) Order(id uuid.UUID) (*Order, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, o := range c.history {
		if o.ID() == id {
			return o, nil
		}
	}
	return nil, ErrNotFound
}

// AbandonCart empties the cart and gives every reservation back to stock
func (c *Customer) AbandonCart() error {
	return c.WithCart(func(cart *Cart) error {
		return cart.Release()
	})
}
