package handler

import (
	"net/http"

	"github.com/Pesokrava/grocery_cart/internal/delivery/http/request"
	"github.com/Pesokrava/grocery_cart/internal/delivery/http/response"
	"github.com/Pesokrava/grocery_cart/internal/domain"
	"github.com/Pesokrava/grocery_cart/internal/pkg/logger"
	"github.com/Pesokrava/grocery_cart/internal/usecase/catalog"
)

// ProductHandler handles HTTP requests for catalog products
type ProductHandler struct {
	service *catalog.Service
	logger  *logger.Logger
}

// NewProductHandler creates a new product handler
func NewProductHandler(service *catalog.Service, log *logger.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		logger:  log,
	}
}

// CreateProductRequest represents the request body for registering a product
type CreateProductRequest struct {
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Category    string      `json:"category"`
	Subcategory string      `json:"subcategory"`
	Price       float64     `json:"price"`
	Unit        domain.Unit `json:"unit" enums:"pieces,kg"`
	Quantity    float64     `json:"quantity"`
}

// UpdateProductRequest represents the request body for editing a product
type UpdateProductRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Quantity    float64 `json:"quantity"`
}

// Create handles POST /api/v1/products
// @Summary Register a new product
// @Description Register a product sold by piece or by kilogram. Category and subcategory must exist in the taxonomy.
// @Tags Products
// @Accept json
// @Produce json
// @Param product body CreateProductRequest true "Product details"
// @Success 201 {object} map[string]interface{} "Product created successfully"
// @Failure 400 {object} response.ErrorBody "Invalid request body"
// @Failure 500 {object} response.ErrorBody "Internal server error"
// @Router /products [post]
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := request.DecodeJSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	product, err := h.service.Register(r.Context(), catalog.RegisterInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Subcategory: req.Subcategory,
		Price:       req.Price,
		Unit:        req.Unit,
		Quantity:    req.Quantity,
	})
	if err != nil {
		h.handleError(w, err)
		return
	}

	response.Created(w, product)
}

// GetByID handles GET /api/v1/products/:id
// @Summary Get a product by ID
// @Description Get a catalog product with its live stock
// @Tags Products
// @Accept json
// @Produce json
// @Param id path string true "Product ID (UUID)"
// @Success 200 {object} map[string]interface{} "Product details"
// @Failure 400 {object} response.ErrorBody "Invalid product ID"
// @Failure 404 {object} response.ErrorBody "Product not found"
// @Router /products/{id} [get]
func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := request.GetUUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	product, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.handleError(w, err)
		return
	}

	response.Success(w, product)
}

// List handles GET /api/v1/products
// @Summary Search products
// @Description List catalog products, optionally filtered by exact case-insensitive title, category and subcategory
// @Tags Products
// @Accept json
// @Produce json
// @Param title query string false "Exact title"
// @Param category query string false "Exact category"
// @Param subcategory query string false "Exact subcategory"
// @Param limit query int false "Number of items per page (max 100)" default(20)
// @Param offset query int false "Number of items to skip" default(0)
// @Success 200 {object} map[string]interface{} "Paginated list of products"
// @Router /products [get]
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := request.GetPaginationParams(r)

	products := h.service.Search(r.Context(), request.GetCriteria(r))
	if products == nil {
		products = []*domain.Product{}
	}

	total := len(products)
	start := min(offset, total)
	end := min(start+limit, total)

	response.Paginated(w, products[start:end], total, limit, offset)
}

// Update handles PUT /api/v1/products/:id
// @Summary Edit a product
// @Description Replace title, description, price and stock of a product
// @Tags Products
// @Accept json
// @Produce json
// @Param id path string true "Product ID (UUID)"
// @Param product body UpdateProductRequest true "Updated product details"
// @Success 200 {object} map[string]interface{} "Product updated successfully"
// @Failure 400 {object} response.ErrorBody "Invalid request"
// @Failure 404 {object} response.ErrorBody "Product not found"
// @Failure 500 {object} response.ErrorBody "Internal server error"
// @Router /products/{id} [put]
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := request.GetUUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	var req UpdateProductRequest
	if err := request.DecodeJSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	product, err := h.service.Edit(r.Context(), id, catalog.EditInput{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Quantity:    req.Quantity,
	})
	if err != nil {
		h.handleError(w, err)
		return
	}

	response.Success(w, product)
}

// Delete handles DELETE /api/v1/products/:id
// @Summary Remove a product
// @Description Remove a product from the catalog. Past orders keep their copy.
// @Tags Products
// @Accept json
// @Produce json
// @Param id path string true "Product ID (UUID)"
// @Success 204 "Product removed successfully"
// @Failure 400 {object} response.ErrorBody "Invalid product ID"
// @Failure 404 {object} response.ErrorBody "Product not found"
// @Failure 500 {object} response.ErrorBody "Internal server error"
// @Router /products/{id} [delete]
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := request.GetUUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	if err := h.service.Remove(r.Context(), id); err != nil {
		h.handleError(w, err)
		return
	}

	response.NoContent(w)
}

// Statistics handles GET /api/v1/products/statistics
// @Summary Catalog statistics
// @Description Unavailable products and the most ordered products
// @Tags Products
// @Produce json
// @Param limit query int false "Number of most ordered products" default(5)
// @Success 200 {object} map[string]interface{} "Catalog statistics"
// @Failure 500 {object} response.ErrorBody "Internal server error"
// @Router /products/statistics [get]
func (h *ProductHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Statistics(r.Context(), request.GetIntQuery(r, "limit", 0))
	if err != nil {
		h.handleError(w, err)
		return
	}

	response.Success(w, stats)
}

// handleError handles service layer errors and returns appropriate HTTP responses
func (h *ProductHandler) handleError(w http.ResponseWriter, err error) {
	writeError(w, h.logger, "product handler", err)
}
