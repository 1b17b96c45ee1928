package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Pesokrava/grocery_cart/internal/delivery/http/middleware"
	"github.com/Pesokrava/grocery_cart/internal/domain"
	"github.com/Pesokrava/grocery_cart/internal/pkg/logger"
	"github.com/Pesokrava/grocery_cart/internal/usecase/shopping"
)

type shoppingFixture struct {
	cart     *CartHandler
	orders   *OrderHandler
	repo     *MockOrderRepository
	product  *domain.Product
	customer uuid.UUID
}

func newShoppingFixture(t *testing.T) *shoppingFixture {
	t.Helper()

	p := salmon(t, 5)
	cat, err := domain.NewCatalog(p)
	require.NoError(t, err)

	repo := new(MockOrderRepository)
	repo.On("ListByCustomer", mock.Anything, mock.Anything).Return([]*domain.Order{}, nil)

	log := logger.New("test")
	service := shopping.NewService(cat, repo, nil, nil, nil, log)

	return &shoppingFixture{
		cart:     NewCartHandler(service, log),
		orders:   NewOrderHandler(service, log),
		repo:     repo,
		product:  p,
		customer: uuid.New(),
	}
}

func (f *shoppingFixture) request(method, target string, body any) *http.Request {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	return req.WithContext(middleware.WithCustomerID(req.Context(), f.customer))
}

func (f *shoppingFixture) addItem(t *testing.T, quantity float64) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	f.cart.AddItem(w, f.request(http.MethodPost, "/api/v1/cart/items", AddItemRequest{
		ProductID: f.product.ID(),
		Quantity:  quantity,
	}))
	return w
}

func TestCartHandler_AddItem(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		f := newShoppingFixture(t)

		w := f.addItem(t, 2)

		assert.Equal(t, http.StatusCreated, w.Code)
		data := decodeBody(t, w)["data"].(map[string]any)
		assert.Equal(t, 24.0, data["total_cost"])
		assert.Len(t, data["lines"].([]any), 1)
		assert.Equal(t, 3.0, f.product.Available())
	})

	t.Run("insufficient stock", func(t *testing.T) {
		f := newShoppingFixture(t)

		w := f.addItem(t, 6)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, 5.0, f.product.Available())
	})

	t.Run("fractional pieces", func(t *testing.T) {
		f := newShoppingFixture(t)

		w := f.addItem(t, 0.5)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("zero quantity", func(t *testing.T) {
		f := newShoppingFixture(t)

		w := f.addItem(t, 0)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, decodeBody(t, w)["detail"], "quantity must satisfy gt=0")
	})

	t.Run("unknown product", func(t *testing.T) {
		f := newShoppingFixture(t)
		w := httptest.NewRecorder()

		f.cart.AddItem(w, f.request(http.MethodPost, "/api/v1/cart/items", AddItemRequest{
			ProductID: uuid.New(),
			Quantity:  1,
		}))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("unknown field", func(t *testing.T) {
		f := newShoppingFixture(t)
		w := httptest.NewRecorder()

		f.cart.AddItem(w, f.request(http.MethodPost, "/api/v1/cart/items", map[string]any{
			"product_id": f.product.ID(),
			"quantity":   1,
			"price":      0.01,
		}))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestCartHandler_UpdateAndRemove(t *testing.T) {
	f := newShoppingFixture(t)
	require.Equal(t, http.StatusCreated, f.addItem(t, 2).Code)
	id := f.product.ID().String()

	w := httptest.NewRecorder()
	f.cart.UpdateItem(w, withURLParam(f.request(http.MethodPut, "/", UpdateItemRequest{Quantity: 4}), "productID", id))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1.0, f.product.Available())

	w = httptest.NewRecorder()
	f.cart.UpdateItem(w, withURLParam(f.request(http.MethodPut, "/", UpdateItemRequest{Quantity: 9}), "productID", id))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, 1.0, f.product.Available())

	w = httptest.NewRecorder()
	f.cart.RemoveItem(w, withURLParam(f.request(http.MethodDelete, "/", nil), "productID", id))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5.0, f.product.Available())

	w = httptest.NewRecorder()
	f.cart.RemoveItem(w, withURLParam(f.request(http.MethodDelete, "/", nil), "productID", id))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCartHandler_GetAndAbandon(t *testing.T) {
	f := newShoppingFixture(t)
	require.Equal(t, http.StatusCreated, f.addItem(t, 3).Code)

	w := httptest.NewRecorder()
	f.cart.Get(w, f.request(http.MethodGet, "/api/v1/cart", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)["data"].(map[string]any)
	assert.Contains(t, data["summary"], "Total Cost: €36.00")

	w = httptest.NewRecorder()
	f.cart.Abandon(w, f.request(http.MethodDelete, "/api/v1/cart", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, 5.0, f.product.Available())
}

func TestOrderHandler_Checkout(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		f := newShoppingFixture(t)
		f.repo.On("Create", mock.Anything, mock.Anything).Return(nil)
		require.Equal(t, http.StatusCreated, f.addItem(t, 2).Code)

		w := httptest.NewRecorder()
		f.orders.Checkout(w, f.request(http.MethodPost, "/api/v1/orders", nil))

		assert.Equal(t, http.StatusCreated, w.Code)
		data := decodeBody(t, w)["data"].(map[string]any)
		assert.Equal(t, 24.0, data["total_cost"])
		assert.Equal(t, f.customer.String(), data["customer_id"])
		assert.Contains(t, data["summary"], "Φιλέτο Σολομού 300g")

		w = httptest.NewRecorder()
		f.orders.List(w, f.request(http.MethodGet, "/api/v1/orders", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		orders := decodeBody(t, w)["data"].([]any)
		require.Len(t, orders, 1)

		orderID := orders[0].(map[string]any)["id"].(string)
		w = httptest.NewRecorder()
		f.orders.GetByID(w, withURLParam(f.request(http.MethodGet, "/", nil), "id", orderID))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("empty cart", func(t *testing.T) {
		f := newShoppingFixture(t)

		w := httptest.NewRecorder()
		f.orders.Checkout(w, f.request(http.MethodPost, "/api/v1/orders", nil))

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("repository error", func(t *testing.T) {
		f := newShoppingFixture(t)
		f.repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("database error"))
		require.Equal(t, http.StatusCreated, f.addItem(t, 2).Code)

		w := httptest.NewRecorder()
		f.orders.Checkout(w, f.request(http.MethodPost, "/api/v1/orders", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, 3.0, f.product.Available())
	})
}

func TestOrderHandler_GetByID_NotFound(t *testing.T) {
	f := newShoppingFixture(t)

	w := httptest.NewRecorder()
	f.orders.GetByID(w, withURLParam(f.request(http.MethodGet, "/", nil), "id", uuid.New().String()))

	assert.Equal(t, http.StatusNotFound, w.Code)
}
