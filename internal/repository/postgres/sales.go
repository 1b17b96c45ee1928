package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/Pesokrava/grocery_cart/internal/domain"
)

// SalesRepository implements domain.SalesRepository for PostgreSQL
type SalesRepository struct {
	db *sqlx.DB
}

// NewSalesRepository creates a new PostgreSQL sales repository
func NewSalesRepository(db *sqlx.DB) *SalesRepository {
	return &SalesRepository{db: db}
}

// TopSelling returns up to limit products ordered most often, ties broken by quantity
func (r *SalesRepository) TopSelling(ctx context.Context, limit int) ([]domain.ProductSales, error) {
	query := `
		SELECT product_id, title, quantity, orders_count
		FROM product_sales
		WHERE orders_count > 0
		ORDER BY orders_count DESC, quantity DESC, title ASC
		LIMIT $1
	`

	sales := []domain.ProductSales{}
	if err := r.db.SelectContext(ctx, &sales, query, limit); err != nil {
		return nil, err
	}

	return sales, nil
}
