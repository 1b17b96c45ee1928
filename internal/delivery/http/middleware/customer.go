package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/Pesokrava/grocery_cart/internal/delivery/http/response"
)

// CustomerHeader identifies the shopping customer of a request
const CustomerHeader = "X-Customer-ID"

type customerKey struct{}

// Customer rejects requests without a valid customer ID header and stores
// the ID in the request context
func Customer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get(CustomerHeader)
		if raw == "" {
			response.Error(w, http.StatusBadRequest, "Missing "+CustomerHeader+" header")
			return
		}

		id, err := uuid.Parse(raw)
		if err != nil || id == uuid.Nil {
			response.Error(w, http.StatusBadRequest, "Invalid "+CustomerHeader+" header")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithCustomerID(r.Context(), id)))
	})
}

// WithCustomerID returns a copy of ctx carrying the customer ID
func WithCustomerID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, customerKey{}, id)
}

// CustomerID returns the customer ID stored by Customer, or uuid.Nil
func CustomerID(ctx context.Context) uuid.UUID {
	id, _ := ctx.Value(customerKey{}).(uuid.UUID)
	return id
}
