package shopping

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Pesokrava/grocery_cart/internal/domain"
	"github.com/Pesokrava/grocery_cart/internal/pkg/logger"
	"github.com/Pesokrava/grocery_cart/internal/pkg/metrics"
)

const (
	// OrdersSubject carries order.completed events
	OrdersSubject = "orders.events"

	eventOrderCompleted = "order.completed"
)

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}

// IdempotencyStore remembers which order a checkout key produced
type IdempotencyStore interface {
	ClaimCheckout(ctx context.Context, customerID uuid.UUID, key string) (uuid.UUID, error)
	CompleteCheckout(ctx context.Context, customerID uuid.UUID, key string, orderID uuid.UUID) error
	ReleaseCheckout(ctx context.Context, customerID uuid.UUID, key string) error
}

// CartLineView is one cart line as shown to the customer
type CartLineView struct {
	ProductID uuid.UUID   `json:"product_id"`
	Title     string      `json:"title"`
	Unit      domain.Unit `json:"unit"`
	UnitPrice float64     `json:"unit_price"`
	Quantity  float64     `json:"quantity"`
	Subtotal  float64     `json:"subtotal"`
}

// CartView is a consistent copy of a customer's cart
type CartView struct {
	CustomerID uuid.UUID      `json:"customer_id"`
	Lines      []CartLineView `json:"lines"`
	TotalCost  float64        `json:"total_cost"`
	Summary    string         `json:"summary"`
}

// OrderEventLine is one product of an order.completed event
type OrderEventLine struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  float64   `json:"quantity"`
}

// OrderEvent is published once an order has been stored
type OrderEvent struct {
	EventType  string           `json:"event_type"`
	Timestamp  time.Time        `json:"timestamp"`
	OrderID    uuid.UUID        `json:"order_id"`
	CustomerID uuid.UUID        `json:"customer_id"`
	TotalCost  float64          `json:"total_cost"`
	Lines      []OrderEventLine `json:"lines"`
}

// Service handles carts, checkout and order history of every customer
type Service struct {
	catalog     *domain.Catalog
	orders      domain.OrderRepository
	idempotency IdempotencyStore
	publisher   EventPublisher
	metrics     *metrics.Metrics
	logger      *logger.Logger

	mu        sync.RWMutex
	customers map[uuid.UUID]*domain.Customer
}

// NewService creates a new shopping service. idempotency, publisher and m may be nil.
func NewService(
	catalog *domain.Catalog,
	orders domain.OrderRepository,
	idempotency IdempotencyStore,
	publisher EventPublisher,
	m *metrics.Metrics,
	log *logger.Logger,
) *Service {
	return &Service{
		catalog:     catalog,
		orders:      orders,
		idempotency: idempotency,
		publisher:   publisher,
		metrics:     m,
		logger:      log,
		customers:   make(map[uuid.UUID]*domain.Customer),
	}
}

// customer returns the in-memory customer, restoring its order history from
// the store the first time the customer is seen
func (s *Service) customer(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("%w: customer ID is required", domain.ErrInvalidArgument)
	}

	s.mu.RLock()
	c, ok := s.customers[id]
	s.mu.RUnlock()
	if ok {
		return c, nil
	}

	history, err := s.orders.ListByCustomer(ctx, id)
	if err != nil {
		s.logger.Errorf(err, "Failed to load order history of customer %s", id)
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Another request may have restored the customer meanwhile
	if c, ok := s.customers[id]; ok {
		return c, nil
	}
	c = domain.RestoreCustomer(id, history)
	s.customers[id] = c
	return c, nil
}

// AddToCart reserves quantity of a catalog product in the customer's cart
func (s *Service) AddToCart(ctx context.Context, customerID, productID uuid.UUID, quantity float64) (*CartView, error) {
	return s.changeCart(ctx, customerID, productID, func(c *domain.Customer, p *domain.Product) error {
		return c.AddToCart(p, quantity)
	})
}

// UpdateCart sets the quantity of a product in the cart. Zero removes it.
func (s *Service) UpdateCart(ctx context.Context, customerID, productID uuid.UUID, quantity float64) (*CartView, error) {
	return s.changeCart(ctx, customerID, productID, func(c *domain.Customer, p *domain.Product) error {
		return c.UpdateCart(p, quantity)
	})
}

// RemoveFromCart drops a product from the cart and returns its stock
func (s *Service) RemoveFromCart(ctx context.Context, customerID, productID uuid.UUID) (*CartView, error) {
	c, err := s.customer(ctx, customerID)
	if err != nil {
		return nil, err
	}

	// A product removed from the catalog can still be dropped from the cart
	var target *domain.Product
	for _, line := range c.CartLines() {
		if line.Product.ID() == productID {
			target = line.Product
			break
		}
	}
	if target == nil {
		return nil, fmt.Errorf("%w: product %s is not in the cart", domain.ErrProductNotFound, productID)
	}

	if err := c.RemoveFromCart(target); err != nil {
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"customer_id": customerID,
		"product_id":  productID,
	}).Info("Product removed from cart")

	return s.cartView(c), nil
}

func (s *Service) changeCart(
	ctx context.Context,
	customerID, productID uuid.UUID,
	change func(c *domain.Customer, p *domain.Product) error,
) (*CartView, error) {
	c, err := s.customer(ctx, customerID)
	if err != nil {
		return nil, err
	}

	p, err := s.catalog.Get(productID)
	if err != nil {
		s.metrics.CartRejected(rejectionReason(err))
		return nil, err
	}

	if err := change(c, p); err != nil {
		s.metrics.CartRejected(rejectionReason(err))
		s.logger.WithFields(map[string]interface{}{
			"customer_id": customerID,
			"product_id":  productID,
		}).Debugf("Cart change rejected: %v", err)
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"customer_id": customerID,
		"product_id":  productID,
	}).Info("Cart updated")

	return s.cartView(c), nil
}

// GetCart returns the customer's cart
func (s *Service) GetCart(ctx context.Context, customerID uuid.UUID) (*CartView, error) {
	c, err := s.customer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return s.cartView(c), nil
}

// AbandonCart empties the cart and returns every reservation to stock
func (s *Service) AbandonCart(ctx context.Context, customerID uuid.UUID) error {
	c, err := s.customer(ctx, customerID)
	if err != nil {
		return err
	}

	if err := c.AbandonCart(); err != nil {
		s.logger.Errorf(err, "Failed to release cart of customer %s", customerID)
		return err
	}

	s.logger.Infof("Cart of customer %s abandoned", customerID)
	return nil
}

func (s *Service) cartView(c *domain.Customer) *CartView {
	view := &CartView{CustomerID: c.ID()}

	// Lines, total and summary come from the same locked read
	_ = c.WithCart(func(cart *domain.Cart) error {
		lines := cart.Products()
		view.Lines = make([]CartLineView, len(lines))
		for i, l := range lines {
			view.Lines[i] = CartLineView{
				ProductID: l.Product.ID(),
				Title:     l.Product.Title(),
				Unit:      l.Product.Unit(),
				UnitPrice: l.Product.Price(),
				Quantity:  l.Quantity,
				Subtotal:  l.Subtotal(),
			}
		}
		view.TotalCost = cart.TotalCost()
		view.Summary = cart.Summary()
		return nil
	})

	return view
}

// Checkout turns the customer's cart into an order. A non-empty
// idempotencyKey makes retries of the same checkout return the first order.
func (s *Service) Checkout(ctx context.Context, customerID uuid.UUID, idempotencyKey string) (*domain.Order, error) {
	c, err := s.customer(ctx, customerID)
	if err != nil {
		return nil, err
	}

	if idempotencyKey != "" && s.idempotency != nil {
		orderID, err := s.idempotency.ClaimCheckout(ctx, customerID, idempotencyKey)
		if err != nil {
			return nil, err
		}
		if orderID != uuid.Nil {
			s.logger.WithFields(map[string]interface{}{
				"customer_id": customerID,
				"order_id":    orderID,
			}).Info("Checkout replayed")
			return c.Order(orderID)
		}
	}

	order, err := c.CompleteOrderWith(func(o *domain.Order) error {
		for _, line := range o.OrderedProducts() {
			if !s.catalog.Contains(line.ProductID) {
				return fmt.Errorf("%w: %q is no longer sold", domain.ErrProductNotFound, line.Title)
			}
		}
		return s.orders.Create(ctx, o)
	})
	if err != nil {
		s.releaseKey(customerID, idempotencyKey)
		if errors.Is(err, domain.ErrEmptyCart) {
			s.metrics.CartRejected(rejectionReason(err))
		}
		s.logger.WithFields(map[string]interface{}{
			"customer_id": customerID,
		}).Error("Checkout failed", err)
		return nil, err
	}

	if idempotencyKey != "" && s.idempotency != nil {
		if err := s.idempotency.CompleteCheckout(ctx, customerID, idempotencyKey, order.ID()); err != nil {
			s.logger.Errorf(err, "Failed to record checkout key of order %s", order.ID())
		}
	}

	s.metrics.OrderCompleted()
	s.publishOrderCompleted(order)

	s.logger.WithFields(map[string]interface{}{
		"customer_id": customerID,
		"order_id":    order.ID(),
		"total_cost":  order.TotalCost(),
	}).Info("Order completed successfully")

	return order, nil
}

func (s *Service) releaseKey(customerID uuid.UUID, key string) {
	if key == "" || s.idempotency == nil {
		return
	}
	// The request context may already be cancelled
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.idempotency.ReleaseCheckout(ctx, customerID, key); err != nil {
		s.logger.Errorf(err, "Failed to release checkout key %q", key)
	}
}

// ListOrders returns the customer's order history, oldest first
func (s *Service) ListOrders(ctx context.Context, customerID uuid.UUID) ([]*domain.Order, error) {
	c, err := s.customer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return c.Orders(), nil
}

// GetOrder returns one order of the customer
func (s *Service) GetOrder(ctx context.Context, customerID, orderID uuid.UUID) (*domain.Order, error) {
	c, err := s.customer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return c.Order(orderID)
}

// ReleaseAll abandons every open cart. Called on shutdown so reserved
// stock is back in the catalog before it is persisted.
func (s *Service) ReleaseAll() int {
	s.mu.RLock()
	customers := make([]*domain.Customer, 0, len(s.customers))
	for _, c := range s.customers {
		customers = append(customers, c)
	}
	s.mu.RUnlock()

	released := 0
	for _, c := range customers {
		if len(c.CartLines()) == 0 {
			continue
		}
		if err := c.AbandonCart(); err != nil {
			s.logger.Errorf(err, "Failed to release cart of customer %s", c.ID())
			continue
		}
		released++
	}

	s.logger.Infof("Released %d open carts", released)
	return released
}

// publishOrderCompleted publishes the order event (non-blocking)
func (s *Service) publishOrderCompleted(order *domain.Order) {
	if s.publisher == nil {
		return
	}

	lines := order.OrderedProducts()
	event := OrderEvent{
		EventType:  eventOrderCompleted,
		Timestamp:  time.Now().UTC(),
		OrderID:    order.ID(),
		CustomerID: order.CustomerID(),
		TotalCost:  order.TotalCost(),
		Lines:      make([]OrderEventLine, len(lines)),
	}
	for i, l := range lines {
		event.Lines[i] = OrderEventLine{ProductID: l.ProductID, Quantity: l.Quantity}
	}

	data, err := json.Marshal(event)
	if err != nil {
		s.logger.Errorf(err, "Failed to marshal event for order %s", order.ID())
		return
	}

	go func() {
		if err := s.publisher.Publish(context.Background(), OrdersSubject, data); err != nil {
			s.logger.Errorf(err, "Failed to publish event for order %s", order.ID())
		}
	}()
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, domain.ErrInvalidQuantity):
		return "invalid_quantity"
	case errors.Is(err, domain.ErrProductNotFound):
		return "product_not_found"
	case errors.Is(err, domain.ErrEmptyCart):
		return "empty_cart"
	default:
		return "invalid_argument"
	}
}
