package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Pesokrava/grocery_cart/internal/pkg/logger"
)

// Calculator rebuilds per-product sales statistics from stored orders
type Calculator struct {
	db     *sqlx.DB
	logger *logger.Logger
}

// NewCalculator creates a new sales calculator
func NewCalculator(db *sqlx.DB, logger *logger.Logger) *Calculator {
	return &Calculator{
		db:     db,
		logger: logger,
	}
}

// Recalculate recomputes the sales row of a product from every order line
// that references it. A full recount keeps the statistic correct even when an
// event is delivered twice.
func (c *Calculator) Recalculate(ctx context.Context, productID uuid.UUID) error {
	query := `
		INSERT INTO product_sales (product_id, title, quantity, orders_count, updated_at)
		SELECT
			oi.product_id,
			(ARRAY_AGG(oi.title ORDER BY o.created_at DESC))[1],
			SUM(oi.quantity),
			COUNT(DISTINCT oi.order_id),
			$2
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		WHERE oi.product_id = $1
		GROUP BY oi.product_id
		ON CONFLICT (product_id) DO UPDATE
		SET title = EXCLUDED.title,
			quantity = EXCLUDED.quantity,
			orders_count = EXCLUDED.orders_count,
			updated_at = EXCLUDED.updated_at
	`

	result, err := c.db.ExecContext(ctx, query, productID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to update product sales: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		c.logger.WithFields(map[string]any{
			"product_id": productID.String(),
		}).Info("No orders reference product, skipping sales update")
		return nil
	}

	c.logger.WithFields(map[string]any{
		"product_id": productID.String(),
	}).Info("Successfully updated product sales")

	return nil
}
