package handler

import (
	"net/http"

	"github.com/Pesokrava/grocery_cart/internal/delivery/http/middleware"
	"github.com/Pesokrava/grocery_cart/internal/delivery/http/request"
	"github.com/Pesokrava/grocery_cart/internal/delivery/http/response"
	"github.com/Pesokrava/grocery_cart/internal/domain"
	"github.com/Pesokrava/grocery_cart/internal/pkg/logger"
	"github.com/Pesokrava/grocery_cart/internal/usecase/shopping"
)

// OrderHandler handles checkout and order history requests
type OrderHandler struct {
	service *shopping.Service
	logger  *logger.Logger
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(service *shopping.Service, log *logger.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  log,
	}
}

// OrderResponse is an order together with its text summary
type OrderResponse struct {
	domain.OrderView
	Summary string `json:"summary"`
}

func newOrderResponse(o *domain.Order) OrderResponse {
	return OrderResponse{OrderView: o.View(), Summary: o.Summary()}
}

// Checkout handles POST /api/v1/orders
// @Summary Check out the cart
// @Description Turns the cart into an order. Retrying with the same Idempotency-Key returns the first order.
// @Tags Orders
// @Produce json
// @Param X-Customer-ID header string true "Customer ID (UUID)"
// @Param Idempotency-Key header string false "Client generated retry key"
// @Success 201 {object} map[string]interface{} "Order created"
// @Failure 404 {object} response.ErrorBody "A product left the catalog"
// @Failure 409 {object} response.ErrorBody "Same checkout already in progress"
// @Failure 422 {object} response.ErrorBody "Cart is empty"
// @Failure 500 {object} response.ErrorBody "Internal server error"
// @Router /orders [post]
func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	key, err := request.GetIdempotencyKey(r)
	if err != nil {
		response.ErrorDetail(w, http.StatusBadRequest, "Invalid input", err.Error())
		return
	}

	order, err := h.service.Checkout(r.Context(), middleware.CustomerID(r.Context()), key)
	if err != nil {
		h.handleError(w, err)
		return
	}

	response.Created(w, newOrderResponse(order))
}

// List handles GET /api/v1/orders
// @Summary Order history
// @Description The customer's completed orders, oldest first
// @Tags Orders
// @Produce json
// @Param X-Customer-ID header string true "Customer ID (UUID)"
// @Success 200 {object} map[string]interface{} "Orders"
// @Failure 500 {object} response.ErrorBody "Internal server error"
// @Router /orders [get]
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.ListOrders(r.Context(), middleware.CustomerID(r.Context()))
	if err != nil {
		h.handleError(w, err)
		return
	}

	out := make([]OrderResponse, len(orders))
	for i, o := range orders {
		out[i] = newOrderResponse(o)
	}

	response.Success(w, out)
}

// GetByID handles GET /api/v1/orders/:id
// @Summary Get an order
// @Tags Orders
// @Produce json
// @Param X-Customer-ID header string true "Customer ID (UUID)"
// @Param id path string true "Order ID (UUID)"
// @Success 200 {object} map[string]interface{} "Order"
// @Failure 400 {object} response.ErrorBody "Invalid order ID"
// @Failure 404 {object} response.ErrorBody "Order not found"
// @Router /orders/{id} [get]
func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := request.GetUUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid order ID")
		return
	}

	order, err := h.service.GetOrder(r.Context(), middleware.CustomerID(r.Context()), id)
	if err != nil {
		h.handleError(w, err)
		return
	}

	response.Success(w, newOrderResponse(order))
}

// handleError handles service layer errors and returns appropriate HTTP responses
func (h *OrderHandler) handleError(w http.ResponseWriter, err error) {
	writeError(w, h.logger, "order handler", err)
}
