package domain

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderLine is a frozen copy of one ordered product. It does not point back to
// the live product, so later edits to the catalog never change an order.
type OrderLine struct {
	ProductID uuid.UUID `json:"product_id" db:"product_id"`
	Title     string    `json:"title" db:"title"`
	Unit      Unit      `json:"unit" db:"unit"`
	UnitPrice float64   `json:"unit_price" db:"unit_price"`
	Quantity  float64   `json:"quantity" db:"quantity"`
}

// Subtotal is the line's cost at the price captured when the order was placed
func (l OrderLine) Subtotal() float64 {
	return l.UnitPrice * l.Quantity
}

// Order is the immutable record of a completed cart
type Order struct {
	id         uuid.UUID
	customerID uuid.UUID
	createdAt  time.Time
	lines      []OrderLine
}

// NewOrder snapshots cart lines into a new order with a fresh ID and the current time
func NewOrder(customerID uuid.UUID, lines []CartLine) (*Order, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyOrder
	}

	snapshot := make([]OrderLine, 0, len(lines))
	for _, line := range lines {
		if line.Product == nil {
			return nil, fmt.Errorf("%w: order line without product", ErrInvalidArgument)
		}
		if !(line.Quantity > 0) {
			return nil, fmt.Errorf("%w: quantity of %q must be greater than zero", ErrInvalidQuantity, line.Product.Title())
		}
		v := line.Product.Snapshot()
		snapshot = append(snapshot, OrderLine{
			ProductID: v.ID,
			Title:     v.Title,
			Unit:      v.Unit,
			UnitPrice: v.Price,
			Quantity:  line.Quantity,
		})
	}

	return &Order{
		id:         uuid.New(),
		customerID: customerID,
		createdAt:  time.Now().UTC(),
		lines:      snapshot,
	}, nil
}

// RestoreOrder rebuilds a persisted order
func RestoreOrder(id, customerID uuid.UUID, createdAt time.Time, lines []OrderLine) (*Order, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyOrder
	}
	for _, l := range lines {
		if !(l.Quantity > 0) {
			return nil, fmt.Errorf("%w: quantity of %q must be greater than zero", ErrInvalidQuantity, l.Title)
		}
	}

	out := make([]OrderLine, len(lines))
	copy(out, lines)
	return &Order{id: id, customerID: customerID, createdAt: createdAt, lines: out}, nil
}

func (o *Order) ID() uuid.UUID { return o.id }
func (o *Order) CustomerID() uuid.UUID { return o.customerID }
func (o *Order) CreatedAt() time.Time { return o.createdAt }

// OrderedProducts returns a copy of the order lines
func (o *Order) OrderedProducts() []OrderLine {
	out := make([]OrderLine, len(o.lines))
	copy(out, o.lines)
	return out
}

// TotalCost sums price times quantity over every line
func (o *Order) TotalCost() float64 {
	var total float64
	for _, l := range o.lines {
		total += l.Subtotal()
	}
	return total
}

// OrderView is the serializable form of an order
type OrderView struct {
	ID         uuid.UUID   `json:"id"`
	CustomerID uuid.UUID   `json:"customer_id"`
	CreatedAt  time.Time   `json:"created_at"`
	Lines      []OrderLine `json:"lines"`
	TotalCost  float64     `json:"total_cost"`
}

// View returns the serializable form of the order
func (o *Order) View() OrderView {
	return OrderView{
		ID:         o.id,
		CustomerID: o.customerID,
		CreatedAt:  o.createdAt,
		Lines:      o.OrderedProducts(),
		TotalCost:  o.TotalCost(),
	}
}

// Summary renders the order as text
func (o *Order) Summary() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Order ID: %s\n", o.id)
	fmt.Fprintf(&sb, "Order Date: %s\n", o.createdAt.Format(time.RFC3339))
	sb.WriteString("Ordered Products:\n")
	for _, l := range o.lines {
		fmt.Fprintf(&sb, "- %s: %s %s (Total: %s)\n",
			l.Title, decimal.NewFromFloat(l.Quantity).String(), unitLabel(l.Unit), FormatEuro(l.Subtotal()))
	}
	fmt.Fprintf(&sb, "Total Cost: %s", FormatEuro(o.TotalCost()))
	return sb.String()
}

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	// Create stores an order with its lines and deducts the ordered
	// quantities from stored stock, atomically
	Create(ctx context.Context, order *Order) error

	// GetByID retrieves an order by ID
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// ListByCustomer retrieves a customer's orders, oldest first
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*Order, error)
}

// ProductSales is the total quantity of a product sold across completed orders
type ProductSales struct {
	ProductID   uuid.UUID `json:"product_id" db:"product_id"`
	Title       string    `json:"title" db:"title"`
	Quantity    float64   `json:"quantity" db:"quantity"`
	OrdersCount int       `json:"orders_count" db:"orders_count"`
}

// SalesRepository reads the per-product sales statistics
type SalesRepository interface {
	// TopSelling returns the most ordered products, by number of orders
	TopSelling(ctx context.Context, limit int) ([]ProductSales, error)
}
