package handler

import (
	"errors"
	"net/http"

	"github.com/Pesokrava/grocery_cart/internal/delivery/http/response"
	"github.com/Pesokrava/grocery_cart/internal/domain"
	"github.com/Pesokrava/grocery_cart/internal/pkg/logger"
)

// errorStatus maps a service error to its HTTP status and public message.
// ok is false for errors that are not the client's fault.
func errorStatus(err error) (status int, message string, ok bool) {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument), errors.Is(err, domain.ErrInvalidQuantity):
		return http.StatusBadRequest, "Invalid input", true
	case errors.Is(err, domain.ErrInsufficientStock):
		return http.StatusConflict, "Insufficient stock", true
	case errors.Is(err, domain.ErrDuplicateProduct):
		return http.StatusConflict, "Product already exists", true
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, "Request conflicts with one in progress", true
	case errors.Is(err, domain.ErrProductNotFound):
		return http.StatusNotFound, "Product not found", true
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "Resource not found", true
	case errors.Is(err, domain.ErrEmptyCart), errors.Is(err, domain.ErrEmptyOrder):
		return http.StatusUnprocessableEntity, "Cart is empty", true
	default:
		return http.StatusInternalServerError, "Internal server error", false
	}
}

func writeError(w http.ResponseWriter, log *logger.Logger, source string, err error) {
	status, message, ok := errorStatus(err)
	if !ok {
		log.Error("Internal error in "+source, err)
		response.Error(w, status, message)
		return
	}
	response.ErrorDetail(w, status, message, err.Error())
}
