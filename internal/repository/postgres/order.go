package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Pesokrava/grocery_cart/internal/domain"
)

// OrderRepository implements domain.OrderRepository for PostgreSQL
type OrderRepository struct {
	db *sqlx.DB
}

// NewOrderRepository creates a new PostgreSQL order repository
func NewOrderRepository(db *sqlx.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

type orderRow struct {
	ID         uuid.UUID `db:"id"`
	CustomerID uuid.UUID `db:"customer_id"`
	CreatedAt  time.Time `db:"created_at"`
}

type orderItemRow struct {
	OrderID uuid.UUID `db:"order_id"`
	domain.OrderLine
}

// Create inserts the order and its lines and deducts the ordered quantities
// from the stock on hand, all in one transaction. products.quantity counts
// what carts hold as well, so the deduction happens only here, when a hold
// becomes a sale.
func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, customer_id, total_cost, created_at)
		VALUES ($1, $2, $3, $4)
	`, order.ID(), order.CustomerID(), order.TotalCost(), order.CreatedAt())
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	for i, line := range order.OrderedProducts() {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, position, product_id, title, unit, unit_price, quantity)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, order.ID(), i, line.ProductID, line.Title, line.Unit, line.UnitPrice, line.Quantity)
		if err != nil {
			return fmt.Errorf("failed to insert order line %d: %w", i, err)
		}

		// Products removed from the catalog keep their rows soft-deleted, so
		// the deduction still applies
		_, err = tx.ExecContext(ctx, `
			UPDATE products
			SET quantity = GREATEST(quantity - $1, 0), updated_at = $2
			WHERE id = $3
		`, line.Quantity, order.CreatedAt(), line.ProductID)
		if err != nil {
			return fmt.Errorf("failed to deduct stock of product %s: %w", line.ProductID, err)
		}
	}

	return tx.Commit()
}

// GetByID retrieves an order with its lines
func (r *OrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	var row orderRow
	err := r.db.GetContext(ctx, &row, `
		SELECT id, customer_id, created_at
		FROM orders
		WHERE id = $1
	`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	orders, err := r.attachLines(ctx, []orderRow{row})
	if err != nil {
		return nil, err
	}

	return orders[0], nil
}

// ListByCustomer retrieves a customer's orders, oldest first
func (r *OrderRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*domain.Order, error) {
	var rows []orderRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, customer_id, created_at
		FROM orders
		WHERE customer_id = $1
		ORDER BY created_at ASC
	`, customerID)
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return []*domain.Order{}, nil
	}

	return r.attachLines(ctx, rows)
}

// attachLines loads the lines of every order in a single query
func (r *OrderRepository) attachLines(ctx context.Context, rows []orderRow) ([]*domain.Order, error) {
	ids := make([]uuid.UUID, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}

	query, args, err := sqlx.In(`
		SELECT order_id, product_id, title, unit, unit_price, quantity
		FROM order_items
		WHERE order_id IN (?)
		ORDER BY order_id, position
	`, ids)
	if err != nil {
		return nil, err
	}

	var items []orderItemRow
	if err := r.db.SelectContext(ctx, &items, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}

	lines := make(map[uuid.UUID][]domain.OrderLine, len(rows))
	for _, item := range items {
		lines[item.OrderID] = append(lines[item.OrderID], item.OrderLine)
	}

	orders := make([]*domain.Order, 0, len(rows))
	for _, row := range rows {
		order, err := domain.RestoreOrder(row.ID, row.CustomerID, row.CreatedAt, lines[row.ID])
		if err != nil {
			return nil, fmt.Errorf("failed to restore order %s: %w", row.ID, err)
		}
		orders = append(orders, order)
	}

	return orders, nil
}
