package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pesokrava/grocery_cart/internal/domain"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return sqlx.NewDb(db, "sqlmock"), mock
}

var productRowColumns = []string{"id", "title", "description", "category", "subcategory", "price", "unit", "quantity", "created_at", "updated_at"}

func salmonView() domain.ProductView {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	return domain.ProductView{
		ID:          uuid.New(),
		Title:       "Salmon",
		Description: "Fresh fillet",
		Category:    "Fresh food",
		Subcategory: "Fish",
		Price:       12,
		Unit:        domain.UnitPieces,
		Quantity:    50,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestProductRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProductRepository(db)
	v := salmonView()

	mock.ExpectExec("INSERT INTO products").
		WithArgs(v.ID, v.Title, v.Description, v.Category, v.Subcategory, v.Price, "pieces", v.Quantity, v.CreatedAt, v.UpdatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.Create(context.Background(), v))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_List(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProductRepository(db)
	v := salmonView()

	mock.ExpectQuery("SELECT (.+) FROM products WHERE deleted_at IS NULL ORDER BY created_at").
		WillReturnRows(sqlmock.NewRows(productRowColumns).
			AddRow(v.ID.String(), v.Title, v.Description, v.Category, v.Subcategory, v.Price, "pieces", v.Quantity, v.CreatedAt, v.UpdatedAt))

	got, err := repo.List(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []domain.ProductView{v}, got)
}

func TestProductRepository_Update_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProductRepository(db)
	v := salmonView()

	mock.ExpectExec("UPDATE products SET title").
		WithArgs(v.Title, v.Description, v.Price, v.Quantity, v.UpdatedAt, v.ID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), v)

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_UpdateStock(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProductRepository(db)
	a, b := salmonView(), salmonView()
	b.Quantity = 7

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE products SET quantity").
		WithArgs(a.Quantity, sqlmock.AnyArg(), a.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE products SET quantity").
		WithArgs(b.Quantity, sqlmock.AnyArg(), b.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	assert.NoError(t, repo.UpdateStock(context.Background(), []domain.ProductView{a, b}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_UpdateStock_RollsBack(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProductRepository(db)
	v := salmonView()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE products SET quantity").
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := repo.UpdateStock(context.Background(), []domain.ProductView{v})

	assert.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_Delete(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProductRepository(db)
	id := uuid.New()

	mock.ExpectExec("UPDATE products SET deleted_at").
		WithArgs(sqlmock.AnyArg(), id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.Delete(context.Background(), id))
}

func TestProductRepository_Count(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProductRepository(db)

	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	count, err := repo.Count(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 4, count)
}

func newTestOrder(t *testing.T) *domain.Order {
	t.Helper()
	salmon, err := domain.NewPieceProduct("Salmon", "Fresh fillet", "Fresh food", "Fish", 12, 50)
	require.NoError(t, err)
	oranges, err := domain.NewWeightProduct("Oranges", "Juicy", "Fresh food", "Fruit", 1.2, 200)
	require.NoError(t, err)

	order, err := domain.NewOrder(uuid.New(), []domain.CartLine{
		{Product: salmon, Quantity: 2},
		{Product: oranges, Quantity: 2.5},
	})
	require.NoError(t, err)
	return order
}

func TestOrderRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOrderRepository(db)
	order := newTestOrder(t)
	lines := order.OrderedProducts()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO orders").
		WithArgs(order.ID(), order.CustomerID(), order.TotalCost(), order.CreatedAt()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	for i, l := range lines {
		mock.ExpectExec("INSERT INTO order_items").
			WithArgs(order.ID(), i, l.ProductID, l.Title, string(l.Unit), l.UnitPrice, l.Quantity).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE products SET quantity = GREATEST").
			WithArgs(l.Quantity, order.CreatedAt(), l.ProductID).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectCommit()

	assert.NoError(t, repo.Create(context.Background(), order))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_Create_RollsBackOnLineFailure(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOrderRepository(db)
	order := newTestOrder(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO orders").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO order_items").WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := repo.Create(context.Background(), order)

	assert.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_GetByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOrderRepository(db)
	orderID, customerID, productID := uuid.New(), uuid.New(), uuid.New()
	createdAt := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT id, customer_id, created_at FROM orders WHERE id").
		WithArgs(orderID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "customer_id", "created_at"}).AddRow(orderID.String(), customerID.String(), createdAt))
	mock.ExpectQuery("SELECT order_id, product_id, title, unit, unit_price, quantity FROM order_items").
		WithArgs(orderID).
		WillReturnRows(sqlmock.NewRows([]string{"order_id", "product_id", "title", "unit", "unit_price", "quantity"}).
			AddRow(orderID.String(), productID.String(), "Salmon", "pieces", 12.0, 2.0))

	order, err := repo.GetByID(context.Background(), orderID)

	require.NoError(t, err)
	assert.Equal(t, customerID, order.CustomerID())
	assert.Equal(t, createdAt, order.CreatedAt())
	assert.Equal(t, []domain.OrderLine{{ProductID: productID, Title: "Salmon", Unit: domain.UnitPieces, UnitPrice: 12, Quantity: 2}}, order.OrderedProducts())
	assert.Equal(t, 24.0, order.TotalCost())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_GetByID_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOrderRepository(db)
	id := uuid.New()

	mock.ExpectQuery("SELECT id, customer_id, created_at FROM orders").
		WithArgs(id).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), id)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOrderRepository_ListByCustomer(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOrderRepository(db)
	customerID := uuid.New()
	first, second := uuid.New(), uuid.New()
	productID := uuid.New()
	t1 := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)

	mock.ExpectQuery("SELECT id, customer_id, created_at FROM orders WHERE customer_id").
		WithArgs(customerID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "customer_id", "created_at"}).
			AddRow(first.String(), customerID.String(), t1).
			AddRow(second.String(), customerID.String(), t2))
	mock.ExpectQuery("SELECT order_id, product_id, title, unit, unit_price, quantity FROM order_items WHERE order_id IN \\(\\?, \\?\\)").
		WithArgs(first, second).
		WillReturnRows(sqlmock.NewRows([]string{"order_id", "product_id", "title", "unit", "unit_price", "quantity"}).
			AddRow(first.String(), productID.String(), "Oranges", "kg", 1.2, 2.5).
			AddRow(second.String(), productID.String(), "Oranges", "kg", 1.5, 1.0))

	orders, err := repo.ListByCustomer(context.Background(), customerID)

	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, first, orders[0].ID())
	assert.Equal(t, 1.5, orders[1].OrderedProducts()[0].UnitPrice)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_ListByCustomer_Empty(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOrderRepository(db)
	customerID := uuid.New()

	mock.ExpectQuery("SELECT id, customer_id, created_at FROM orders").
		WithArgs(customerID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "customer_id", "created_at"}))

	orders, err := repo.ListByCustomer(context.Background(), customerID)

	require.NoError(t, err)
	assert.Empty(t, orders)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSalesRepository_TopSelling(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSalesRepository(db)
	productID := uuid.New()

	mock.ExpectQuery("SELECT product_id, title, quantity, orders_count FROM product_sales").
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"product_id", "title", "quantity", "orders_count"}).
			AddRow(productID.String(), "Salmon", 9.0, 4))

	sales, err := repo.TopSelling(context.Background(), 5)

	require.NoError(t, err)
	assert.Equal(t, []domain.ProductSales{{ProductID: productID, Title: "Salmon", Quantity: 9, OrdersCount: 4}}, sales)
	assert.NoError(t, mock.ExpectationsWereMet())
}
