package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a sellable catalog item. Its identity is the generated ID: two
// products with identical fields are still distinct products.
//
// All accessors are safe for concurrent use. Stock changes go through the
// product's own lock so a check-then-reduce can never interleave with another
// customer's reservation.
//
// stock is what is still available to customers. held is what carts have
// reserved and not yet ordered; available plus held is the stock on hand,
// which is what gets persisted.
type Product struct {
	id          uuid.UUID
	category    string
	subcategory string
	createdAt   time.Time

	mu          sync.RWMutex
	title       string
	description string
	price       float64
	stock       Stock
	held        decimal.Decimal
	updatedAt   time.Time
}

// ProductView is a consistent copy of a product's state, used for JSON and persistence
type ProductView struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	Category    string    `json:"category" db:"category"`
	Subcategory string    `json:"subcategory" db:"subcategory"`
	Price       float64   `json:"price" db:"price"`
	Unit        Unit      `json:"unit" db:"unit"`
	Quantity    float64   `json:"quantity" db:"quantity"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// ProductEdit holds the editable fields of a product
type ProductEdit struct {
	Title       string
	Description string
	Price       float64
	Quantity    float64
}

// NewPieceProduct creates a product sold in whole pieces
func NewPieceProduct(title, description, category, subcategory string, price float64, pieces int) (*Product, error) {
	if pieces < 0 {
		return nil, fmt.Errorf("%w: available pieces cannot be negative", ErrInvalidArgument)
	}
	return newProduct(uuid.New(), title, description, category, subcategory, price, PieceStock{Pieces: pieces}, time.Now().UTC())
}

// NewWeightProduct creates a product sold by weight in kilograms
func NewWeightProduct(title, description, category, subcategory string, price, kilograms float64) (*Product, error) {
	if kilograms < 0 {
		return nil, fmt.Errorf("%w: available weight cannot be negative", ErrInvalidArgument)
	}
	return newProduct(uuid.New(), title, description, category, subcategory, price, WeightStock{Kilograms: kilograms}, time.Now().UTC())
}

// RestoreProduct rebuilds a product from persisted state, keeping its ID and timestamps
func RestoreProduct(v ProductView) (*Product, error) {
	if v.ID == uuid.Nil {
		return nil, fmt.Errorf("%w: product id is required", ErrInvalidArgument)
	}

	stock, err := NewStock(v.Unit, v.Quantity)
	if err != nil {
		return nil, err
	}

	p, err := newProduct(v.ID, v.Title, v.Description, v.Category, v.Subcategory, v.Price, stock, v.CreatedAt)
	if err != nil {
		return nil, err
	}
	if !v.UpdatedAt.IsZero() {
		p.updatedAt = v.UpdatedAt
	}
	return p, nil
}

func newProduct(id uuid.UUID, title, description, category, subcategory string, price float64, stock Stock, createdAt time.Time) (*Product, error) {
	if err := requireText("title", title); err != nil {
		return nil, err
	}
	if err := requireText("description", description); err != nil {
		return nil, err
	}
	if err := requireText("category", category); err != nil {
		return nil, err
	}
	if err := requireText("subcategory", subcategory); err != nil {
		return nil, err
	}
	if err := requirePrice(price); err != nil {
		return nil, err
	}

	return &Product{
		id:          id,
		title:       title,
		description: description,
		category:    category,
		subcategory: subcategory,
		price:       price,
		stock:       stock,
		createdAt:   createdAt,
		updatedAt:   createdAt,
	}, nil
}

func (p *Product) ID() uuid.UUID { return p.id }
func (p *Product) Category() string { return p.category }
func (p *Product) Subcategory() string { return p.subcategory }
func (p *Product) CreatedAt() time.Time { return p.createdAt }

func (p *Product) Title() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.title
}

func (p *Product) Description() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.description
}

func (p *Product) Price() float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.price
}

// Unit returns the unit of sale; it never changes over the product's life
func (p *Product) Unit() Unit {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.stock.Unit()
}

// Stock returns the current availability
func (p *Product) Stock() Stock {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.stock
}

// Available returns the current availability in the product's unit
func (p *Product) Available() float64 {
	return p.Stock().Amount()
}

// ValidatePurchase reports whether amount is a valid purchase against the live stock:
// a positive whole number of pieces, or a positive weight, not exceeding availability.
func (p *Product) ValidatePurchase(amount float64) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.stock.accepts(amount) && p.stock.covers(amount)
}

// ReduceStock decrements the stock by amount
func (p *Product) ReduceStock(amount float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.stock.accepts(amount) || !p.stock.covers(amount) {
		return fmt.Errorf("%w: cannot reduce stock of %q by %v %s", ErrInvalidQuantity, p.title, amount, p.stock.Unit())
	}
	p.stock = p.stock.withdraw(amount)
	return nil
}

// Reserve atomically checks and withdraws amount from the live stock.
// Unlike ReduceStock it tells a malformed amount apart from a shortage.
func (p *Product) Reserve(amount float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.stock.accepts(amount) {
		return fmt.Errorf("%w: %v is not a valid amount of %s for %q", ErrInvalidQuantity, amount, p.stock.Unit(), p.title)
	}
	if !p.stock.covers(amount) {
		return fmt.Errorf("%w: requested %v %s of %q, %v available",
			ErrInsufficientStock, amount, p.stock.Unit(), p.title, p.stock.Amount())
	}
	p.stock = p.stock.withdraw(amount)
	p.held = p.held.Add(decimal.NewFromFloat(amount))
	return nil
}

// Release returns a previously reserved amount to the stock
func (p *Product) Release(amount float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.stock.accepts(amount) {
		return fmt.Errorf("%w: cannot release %v %s of %q", ErrInvalidQuantity, amount, p.stock.Unit(), p.title)
	}
	p.stock = p.stock.deposit(amount)
	p.unhold(amount)
	return nil
}

// settle turns a reservation into a sale: the amount leaves the stock on
// hand while availability stays as the reservation left it.
func (p *Product) settle(amount float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.unhold(amount)
}

func (p *Product) unhold(amount float64) {
	p.held = p.held.Sub(decimal.NewFromFloat(amount))
	if p.held.IsNegative() {
		p.held = decimal.Zero
	}
}

// Held returns the amount reserved by carts and not yet ordered
func (p *Product) Held() float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.held.InexactFloat64()
}

// OnHand returns the available amount plus what carts hold
func (p *Product) OnHand() float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.onHand()
}

func (p *Product) onHand() float64 {
	return decimal.NewFromFloat(p.stock.Amount()).Add(p.held).InexactFloat64()
}

// Validate is a sanity check: price is positive and stock is not negative
func (p *Product) Validate() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.price > 0 && p.stock.valid()
}

// Edit replaces title, description, price and available quantity. Every field
// is validated before anything changes, so either all changes apply or none do.
// Amounts held by carts stay held on top of the new availability.
func (p *Product) Edit(e ProductEdit) error {
	if err := requireText("title", e.Title); err != nil {
		return err
	}
	if err := requireText("description", e.Description); err != nil {
		return err
	}
	if err := requirePrice(e.Price); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	stock, err := NewStock(p.stock.Unit(), e.Quantity)
	if err != nil {
		return err
	}

	p.title = e.Title
	p.description = e.Description
	p.price = e.Price
	p.stock = stock
	p.updatedAt = time.Now().UTC()
	return nil
}

// Snapshot returns a consistent copy of the product's state
func (p *Product) Snapshot() ProductView {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.snapshot()
}

func (p *Product) snapshot() ProductView {
	return ProductView{
		ID:          p.id,
		Title:       p.title,
		Description: p.description,
		Category:    p.category,
		Subcategory: p.subcategory,
		Price:       p.price,
		Unit:        p.stock.Unit(),
		Quantity:    p.stock.Amount(),
		CreatedAt:   p.createdAt,
		UpdatedAt:   p.updatedAt,
	}
}

// Stored is Snapshot with Quantity set to the stock on hand, the figure the
// products table and the catalog file keep
func (p *Product) Stored() ProductView {
	p.mu.RLock()
	defer p.mu.RUnlock()

	v := p.snapshot()
	v.Quantity = p.onHand()
	return v
}

func (p *Product) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Snapshot())
}

func (p *Product) String() string {
	v := p.Snapshot()
	return fmt.Sprintf("%s (%s/%s) €%.2f, available: %v %s", v.Title, v.Category, v.Subcategory, v.Price, v.Quantity, v.Unit)
}

func requireText(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s cannot be empty", ErrInvalidArgument, field)
	}
	return nil
}

func requirePrice(price float64) error {
	if !(price > 0) {
		return fmt.Errorf("%w: price must be greater than zero", ErrInvalidArgument)
	}
	return nil
}

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// Create stores a new product
	Create(ctx context.Context, product ProductView) error

	// List retrieves every stored product in creation order
	List(ctx context.Context) ([]ProductView, error)

	// Update stores edited fields of an existing product. Quantity is the stock on hand.
	Update(ctx context.Context, product ProductView) error

	// UpdateStock overwrites the stored quantities of several products at once
	UpdateStock(ctx context.Context, products []ProductView) error

	// Delete removes a product
	Delete(ctx context.Context, id uuid.UUID) error

	// Count returns the number of stored products
	Count(ctx context.Context) (int, error)
}
