package handler

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/Pesokrava/grocery_cart/internal/delivery/http/middleware"
	"github.com/Pesokrava/grocery_cart/internal/delivery/http/request"
	"github.com/Pesokrava/grocery_cart/internal/delivery/http/response"
	"github.com/Pesokrava/grocery_cart/internal/pkg/logger"
	pkgvalidator "github.com/Pesokrava/grocery_cart/internal/pkg/validator"
	"github.com/Pesokrava/grocery_cart/internal/usecase/shopping"
)

// CartHandler handles HTTP requests for the customer's cart
type CartHandler struct {
	service  *shopping.Service
	validate *validator.Validate
	logger   *logger.Logger
}

// NewCartHandler creates a new cart handler
func NewCartHandler(service *shopping.Service, log *logger.Logger) *CartHandler {
	return &CartHandler{
		service:  service,
		validate: pkgvalidator.Get(),
		logger:   log,
	}
}

// AddItemRequest represents the request body for adding a product to the cart
type AddItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  float64   `json:"quantity" validate:"gt=0"`
}

// UpdateItemRequest represents the request body for changing a cart quantity
type UpdateItemRequest struct {
	Quantity float64 `json:"quantity" validate:"gte=0"`
}

// Get handles GET /api/v1/cart
// @Summary Show the cart
// @Description Cart lines with subtotals, total cost and a text summary
// @Tags Cart
// @Produce json
// @Param X-Customer-ID header string true "Customer ID (UUID)"
// @Success 200 {object} map[string]interface{} "Cart"
// @Failure 400 {object} response.ErrorBody "Missing customer"
// @Router /cart [get]
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	cart, err := h.service.GetCart(r.Context(), middleware.CustomerID(r.Context()))
	if err != nil {
		h.handleError(w, err)
		return
	}

	response.Success(w, cart)
}

// AddItem handles POST /api/v1/cart/items
// @Summary Add a product to the cart
// @Description Reserves the quantity from live stock. Adding a product already in the cart increases its quantity.
// @Tags Cart
// @Accept json
// @Produce json
// @Param X-Customer-ID header string true "Customer ID (UUID)"
// @Param item body AddItemRequest true "Product and quantity"
// @Success 201 {object} map[string]interface{} "Updated cart"
// @Failure 400 {object} response.ErrorBody "Invalid quantity"
// @Failure 404 {object} response.ErrorBody "Product not found"
// @Failure 409 {object} response.ErrorBody "Insufficient stock"
// @Router /cart/items [post]
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := request.DecodeJSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		response.ErrorDetail(w, http.StatusBadRequest, "Invalid input", pkgvalidator.Message(err))
		return
	}

	cart, err := h.service.AddToCart(r.Context(), middleware.CustomerID(r.Context()), req.ProductID, req.Quantity)
	if err != nil {
		h.handleError(w, err)
		return
	}

	response.Created(w, cart)
}

// UpdateItem handles PUT /api/v1/cart/items/:productID
// @Summary Change a cart quantity
// @Description Sets the quantity of a product in the cart. Zero removes the product.
// @Tags Cart
// @Accept json
// @Produce json
// @Param X-Customer-ID header string true "Customer ID (UUID)"
// @Param productID path string true "Product ID (UUID)"
// @Param item body UpdateItemRequest true "New quantity"
// @Success 200 {object} map[string]interface{} "Updated cart"
// @Failure 400 {object} response.ErrorBody "Invalid quantity"
// @Failure 404 {object} response.ErrorBody "Product not found"
// @Failure 409 {object} response.ErrorBody "Insufficient stock"
// @Router /cart/items/{productID} [put]
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	productID, err := request.GetUUIDParam(r, "productID")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	var req UpdateItemRequest
	if err := request.DecodeJSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		response.ErrorDetail(w, http.StatusBadRequest, "Invalid input", pkgvalidator.Message(err))
		return
	}

	cart, err := h.service.UpdateCart(r.Context(), middleware.CustomerID(r.Context()), productID, req.Quantity)
	if err != nil {
		h.handleError(w, err)
		return
	}

	response.Success(w, cart)
}

// RemoveItem handles DELETE /api/v1/cart/items/:productID
// @Summary Remove a product from the cart
// @Description Drops the product and returns its reservation to stock
// @Tags Cart
// @Produce json
// @Param X-Customer-ID header string true "Customer ID (UUID)"
// @Param productID path string true "Product ID (UUID)"
// @Success 200 {object} map[string]interface{} "Updated cart"
// @Failure 404 {object} response.ErrorBody "Product not in cart"
// @Router /cart/items/{productID} [delete]
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID, err := request.GetUUIDParam(r, "productID")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	cart, err := h.service.RemoveFromCart(r.Context(), middleware.CustomerID(r.Context()), productID)
	if err != nil {
		h.handleError(w, err)
		return
	}

	response.Success(w, cart)
}

// Abandon handles DELETE /api/v1/cart
// @Summary Abandon the cart
// @Description Empties the cart and returns every reservation to stock
// @Tags Cart
// @Param X-Customer-ID header string true "Customer ID (UUID)"
// @Success 204 "Cart abandoned"
// @Router /cart [delete]
func (h *CartHandler) Abandon(w http.ResponseWriter, r *http.Request) {
	if err := h.service.AbandonCart(r.Context(), middleware.CustomerID(r.Context())); err != nil {
		h.handleError(w, err)
		return
	}

	response.NoContent(w)
}

// handleError handles service layer errors and returns appropriate HTTP responses
func (h *CartHandler) handleError(w http.ResponseWriter, err error) {
	writeError(w, h.logger, "cart handler", err)
}
