package worker

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pesokrava/grocery_cart/internal/pkg/logger"
)

func newTestCalculator(t *testing.T) (*Calculator, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewCalculator(sqlx.NewDb(db, "sqlmock"), logger.New("test")), mock
}

func TestCalculator_Recalculate_Success(t *testing.T) {
	calculator, mock := newTestCalculator(t)
	productID := uuid.New()

	mock.ExpectExec("INSERT INTO product_sales").
		WithArgs(productID, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := calculator.Recalculate(context.Background(), productID)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCalculator_Recalculate_NoOrders(t *testing.T) {
	calculator, mock := newTestCalculator(t)
	productID := uuid.New()

	mock.ExpectExec("INSERT INTO product_sales").
		WithArgs(productID, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := calculator.Recalculate(context.Background(), productID)

	// Nothing to count is not a failure
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCalculator_Recalculate_ContextTimeout(t *testing.T) {
	calculator, mock := newTestCalculator(t)
	productID := uuid.New()

	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()

	mock.ExpectExec("INSERT INTO product_sales").
		WithArgs(productID, sqlmock.AnyArg()).
		WillDelayFor(100 * time.Millisecond).
		WillReturnResult(sqlmock.NewResult(0, 1))

	time.Sleep(10 * time.Millisecond)

	err := calculator.Recalculate(ctx, productID)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "context")
}
