package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Pesokrava/grocery_cart/internal/domain"
)

const productColumns = `id, title, description, category, subcategory, price, unit, quantity, created_at, updated_at`

// ProductRepository implements domain.ProductRepository for PostgreSQL
type ProductRepository struct {
	db *sqlx.DB
}

// NewProductRepository creates a new PostgreSQL product repository
func NewProductRepository(db *sqlx.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// Create inserts a new product under the ID the domain generated
func (r *ProductRepository) Create(ctx context.Context, product domain.ProductView) error {
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		product.ID,
		product.Title,
		product.Description,
		product.Category,
		product.Subcategory,
		product.Price,
		product.Unit,
		product.Quantity,
		product.CreatedAt,
		product.UpdatedAt,
	)
	return err
}

// List retrieves every product in creation order
func (r *ProductRepository) List(ctx context.Context) ([]domain.ProductView, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE deleted_at IS NULL
		ORDER BY created_at ASC, id ASC
	`

	var products []domain.ProductView
	if err := r.db.SelectContext(ctx, &products, query); err != nil {
		return nil, err
	}

	return products, nil
}

// Update stores the editable fields of an existing product
func (r *ProductRepository) Update(ctx context.Context, product domain.ProductView) error {
	query := `
		UPDATE products
		SET title = $1, description = $2, price = $3, quantity = $4, updated_at = $5
		WHERE id = $6 AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		product.Title,
		product.Description,
		product.Price,
		product.Quantity,
		product.UpdatedAt,
		product.ID,
	)
	if err != nil {
		return err
	}

	return requireAffected(result)
}

// UpdateStock overwrites the quantities of several products in one transaction
func (r *ProductRepository) UpdateStock(ctx context.Context, products []domain.ProductView) error {
	if len(products) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE products
		SET quantity = $1, updated_at = $2
		WHERE id = $3 AND deleted_at IS NULL
	`

	now := time.Now().UTC()
	for _, p := range products {
		if _, err := tx.ExecContext(ctx, query, p.Quantity, now, p.ID); err != nil {
			return fmt.Errorf("failed to update stock of product %s: %w", p.ID, err)
		}
	}

	return tx.Commit()
}

// Delete soft-deletes a product
func (r *ProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE products
		SET deleted_at = $1
		WHERE id = $2 AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return err
	}

	return requireAffected(result)
}

// Count returns the total number of products
func (r *ProductRepository) Count(ctx context.Context) (int, error) {
	query := `SELECT COUNT(*) FROM products WHERE deleted_at IS NULL`

	var count int
	if err := r.db.GetContext(ctx, &count, query); err != nil {
		return 0, err
	}

	return count, nil
}

func requireAffected(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return domain.ErrNotFound
	}

	return nil
}
