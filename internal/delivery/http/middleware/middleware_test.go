package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pesokrava/grocery_cart/internal/pkg/logger"
	"github.com/Pesokrava/grocery_cart/internal/pkg/metrics"
)

func TestCustomer(t *testing.T) {
	var seen uuid.UUID
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = CustomerID(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	handler := Customer(next)

	id := uuid.New()
	tests := []struct {
		name   string
		header string
		status int
		want   uuid.UUID
	}{
		{name: "valid", header: id.String(), status: http.StatusOK, want: id},
		{name: "missing", header: "", status: http.StatusBadRequest},
		{name: "malformed", header: "alice", status: http.StatusBadRequest},
		{name: "nil UUID", header: uuid.Nil.String(), status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = uuid.Nil
			req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
			if tt.header != "" {
				req.Header.Set(CustomerHeader, tt.header)
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.want, seen)
		})
	}
}

func TestRecovery(t *testing.T) {
	var buf bytes.Buffer
	handler := Recovery(logger.NewWithWriter(&buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, buf.String(), "boom")
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	handler := Logger(logger.NewWithWriter(&buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	out := buf.String()
	assert.Contains(t, out, `"status":418`)
	assert.Contains(t, out, `"path":"/health"`)
}

func TestMetrics_UsesRoutePattern(t *testing.T) {
	m := metrics.New("test")

	r := chi.NewRouter()
	r.Use(Metrics(m))
	r.Get("/products/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	id := uuid.NewString()
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/products/"+id, nil))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `test_http_requests_total{method="GET",route="/products/{id}",status="404"} 1`)
	assert.NotContains(t, body, id)
}
