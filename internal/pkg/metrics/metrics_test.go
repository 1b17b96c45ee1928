package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestMetrics_Exposition(t *testing.T) {
	m := New("grocery")

	m.OrderCompleted()
	m.OrderCompleted()
	m.CartRejected("insufficient_stock")
	m.ObserveRequest("/api/v1/cart/items", http.MethodPost, http.StatusCreated, 12*time.Millisecond)

	body := scrape(t, m)

	assert.Contains(t, body, "grocery_orders_completed_total 2")
	assert.Contains(t, body, `grocery_cart_rejections_total{reason="insufficient_stock"} 1`)
	assert.Contains(t, body, `grocery_http_requests_total{method="POST",route="/api/v1/cart/items",status="201"} 1`)
	assert.Contains(t, body, "grocery_http_request_duration_ms_bucket")
}

func TestMetrics_SeparateRegistries(t *testing.T) {
	// Registering twice on the default registry would panic
	assert.NotPanics(t, func() {
		New("a")
		New("a")
	})
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.OrderCompleted()
		m.CartRejected("empty_cart")
		m.ObserveRequest("", http.MethodGet, http.StatusOK, time.Millisecond)
	})
	assert.NotNil(t, m.Handler())
}
