package shopping

import (
	"context"
	"database/sql/driver"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pesokrava/grocery_cart/internal/domain"
	"github.com/Pesokrava/grocery_cart/internal/pkg/logger"
	"github.com/Pesokrava/grocery_cart/internal/repository/postgres"
	"github.com/Pesokrava/grocery_cart/internal/taxonomy"
	"github.com/Pesokrava/grocery_cart/internal/usecase/catalog"
)

// quantityArg matches any float64 argument and remembers it
type quantityArg struct {
	got *float64
}

func (a quantityArg) Match(v driver.Value) bool {
	f, ok := v.(float64)
	if ok {
		*a.got = f
	}
	return ok
}

type stockFixture struct {
	db       *sqlx.DB
	mock     sqlmock.Sqlmock
	catalog  *catalog.Service
	shopping *Service
	product  *domain.Product
	customer uuid.UUID
}

func newStockFixture(t *testing.T) *stockFixture {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	db := sqlx.NewDb(sqlDB, "sqlmock")

	p, err := domain.NewPieceProduct("Φιλέτο Σολομού 300g", "Φρέσκος σολομός", "Φρέσκα τρόφιμα", "Ψάρια", 12, 10)
	require.NoError(t, err)
	cat, err := domain.NewCatalog(p)
	require.NoError(t, err)

	log := logger.New("test")
	return &stockFixture{
		db:       db,
		mock:     mock,
		catalog:  catalog.NewService(cat, postgres.NewProductRepository(db), nil, taxonomy.Default(), nil, nil, "", log),
		shopping: NewService(cat, postgres.NewOrderRepository(db), nil, nil, nil, log),
		product:  p,
		customer: uuid.New(),
	}
}

func (f *stockFixture) expectNewCustomer() {
	f.mock.ExpectQuery("SELECT id, customer_id, created_at FROM orders WHERE customer_id").
		WithArgs(f.customer).
		WillReturnRows(sqlmock.NewRows([]string{"id", "customer_id", "created_at"}))
}

func (f *stockFixture) expectSyncStock(stored *float64) {
	f.mock.ExpectBegin()
	f.mock.ExpectExec("UPDATE products SET quantity = \\$1, updated_at").
		WithArgs(quantityArg{got: stored}, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	f.mock.ExpectCommit()
}

func TestStock_EditWhileHeldThenCheckout(t *testing.T) {
	f := newStockFixture(t)
	ctx := context.Background()

	f.expectNewCustomer()
	_, err := f.shopping.AddToCart(ctx, f.customer, f.product.ID(), 3)
	require.NoError(t, err)
	require.Equal(t, 7.0, f.product.Available())

	// A price-only edit sends back the availability the admin was shown
	var edited float64
	f.mock.ExpectExec("UPDATE products SET title").
		WithArgs("Φιλέτο Σολομού 300g", "Φρέσκος σολομός", 13.0, quantityArg{got: &edited}, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	_, err = f.catalog.Edit(ctx, f.product.ID(), catalog.EditInput{
		Title:       "Φιλέτο Σολομού 300g",
		Description: "Φρέσκος σολομός",
		Price:       13,
		Quantity:    f.product.Available(),
	})
	require.NoError(t, err)
	assert.Equal(t, 10.0, edited)

	var deducted float64
	f.mock.ExpectBegin()
	f.mock.ExpectExec("INSERT INTO orders").WillReturnResult(sqlmock.NewResult(0, 1))
	f.mock.ExpectExec("INSERT INTO order_items").WillReturnResult(sqlmock.NewResult(0, 1))
	f.mock.ExpectExec("UPDATE products SET quantity = GREATEST").
		WithArgs(quantityArg{got: &deducted}, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	f.mock.ExpectCommit()

	_, err = f.shopping.Checkout(ctx, f.customer, "")
	require.NoError(t, err)
	require.NoError(t, f.mock.ExpectationsWereMet())

	persisted := edited - deducted
	assert.Equal(t, 7.0, persisted)
	assert.Equal(t, f.product.Available(), persisted)
	assert.Equal(t, f.product.OnHand(), persisted)
	assert.Equal(t, 0.0, f.product.Held())
}

func TestStock_RestartWithOpenCartKeepsHeldStock(t *testing.T) {
	f := newStockFixture(t)
	ctx := context.Background()

	f.expectNewCustomer()
	_, err := f.shopping.AddToCart(ctx, f.customer, f.product.ID(), 4)
	require.NoError(t, err)

	var stored float64
	f.expectSyncStock(&stored)
	require.NoError(t, f.catalog.SyncStock(ctx))
	assert.Equal(t, 10.0, stored)

	// A fresh process only has the stored row; the open cart is gone
	v := f.product.Stored()
	f.mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	f.mock.ExpectQuery("SELECT (.+) FROM products WHERE deleted_at IS NULL").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "description", "category", "subcategory", "price", "unit", "quantity", "created_at", "updated_at"}).
			AddRow(v.ID.String(), v.Title, v.Description, v.Category, v.Subcategory, v.Price, string(v.Unit), stored, v.CreatedAt, v.UpdatedAt))

	restoredCatalog, err := domain.NewCatalog()
	require.NoError(t, err)
	restarted := catalog.NewService(restoredCatalog, postgres.NewProductRepository(f.db), nil, taxonomy.Default(), nil, nil, "", logger.New("test"))
	n, err := restarted.Bootstrap(ctx, false)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	restored, err := restoredCatalog.Get(f.product.ID())
	require.NoError(t, err)
	assert.Equal(t, 10.0, restored.Available())
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestStock_ReleaseAllThenSync(t *testing.T) {
	f := newStockFixture(t)
	ctx := context.Background()

	f.expectNewCustomer()
	_, err := f.shopping.AddToCart(ctx, f.customer, f.product.ID(), 4)
	require.NoError(t, err)
	require.Equal(t, 6.0, f.product.Available())

	assert.Equal(t, 1, f.shopping.ReleaseAll())

	var stored float64
	f.expectSyncStock(&stored)
	require.NoError(t, f.catalog.SyncStock(ctx))

	assert.Equal(t, 10.0, stored)
	assert.Equal(t, f.product.Available(), stored)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestStock_WeightHoldsReturnExactly(t *testing.T) {
	f := newStockFixture(t)
	ctx := context.Background()

	oranges, err := domain.NewWeightProduct("Πορτοκάλια 1kg", "Ζουμερά", "Φρέσκα τρόφιμα", "Φρούτα", 1.2, 0.3)
	require.NoError(t, err)
	f.mock.ExpectExec("INSERT INTO products").WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, f.catalog.Add(ctx, oranges))

	f.expectNewCustomer()
	_, err = f.shopping.AddToCart(ctx, f.customer, oranges.ID(), 0.1)
	require.NoError(t, err)
	_, err = f.shopping.AddToCart(ctx, f.customer, oranges.ID(), 0.2)
	require.NoError(t, err)
	assert.Equal(t, 0.0, oranges.Available())

	require.NoError(t, f.shopping.AbandonCart(ctx, f.customer))
	assert.Equal(t, 0.3, oranges.Available())
	assert.Equal(t, 0.0, oranges.Held())
	assert.NoError(t, f.mock.ExpectationsWereMet())
}
