package domain

import "errors"

var (
	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("resource not found")

	// ErrConflict is returned when a persisted row changed underneath an update
	ErrConflict = errors.New("conflict occurred")

	// ErrInternal is returned when an internal error occurs
	ErrInternal = errors.New("internal error")

	// ErrInvalidArgument is returned for malformed or missing input (blank title, non-positive price, ...)
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInsufficientStock is returned when a requested quantity exceeds live availability
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrInvalidQuantity is returned for a non-positive amount or one that breaks the product's unit semantics
	ErrInvalidQuantity = errors.New("invalid quantity")

	// ErrDuplicateProduct is returned when registering a product that is already in the catalog
	ErrDuplicateProduct = errors.New("product already exists")

	// ErrProductNotFound is returned when a product is not part of the catalog
	ErrProductNotFound = errors.New("product not found")

	// ErrEmptyCart is returned when checking out a cart with no entries
	ErrEmptyCart = errors.New("cart is empty")

	// ErrEmptyOrder is returned when constructing an order without lines
	ErrEmptyOrder = errors.New("order has no products")
)
