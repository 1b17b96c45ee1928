package events

import (
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/Pesokrava/grocery_cart/internal/config"
	"github.com/Pesokrava/grocery_cart/internal/pkg/logger"
)

// Consumer receives events over core NATS subscriptions
type Consumer struct {
	nc     *nats.Conn
	logger *logger.Logger
	subs   []*nats.Subscription
}

// NewConsumer creates a new NATS consumer
func NewConsumer(cfg *config.Config, log *logger.Logger) (*Consumer, error) {
	nc, err := nats.Connect(cfg.NATS.URL, nats.Name("grocery-cart-notifier"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	log.Infof("Connected to NATS at %s", cfg.NATS.URL)

	return &Consumer{
		nc:     nc,
		logger: log,
	}, nil
}

// Subscribe delivers every message on subject to handler
func (c *Consumer) Subscribe(subject string, handler func(data []byte) error) error {
	sub, err := c.nc.Subscribe(subject, func(msg *nats.Msg) {
		c.logger.Debugf("Received message on subject %s", subject)

		if err := handler(msg.Data); err != nil {
			c.logger.Errorf(err, "Failed to handle message on subject %s", subject)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to subject %s: %w", subject, err)
	}

	c.subs = append(c.subs, sub)
	c.logger.Infof("Subscribed to NATS subject: %s", subject)
	return nil
}

// Close unsubscribes and closes the NATS connection
func (c *Consumer) Close() {
	for _, sub := range c.subs {
		if err := sub.Unsubscribe(); err != nil {
			c.logger.Warnf("Failed to unsubscribe from %s: %v", sub.Subject, err)
		}
	}
	if c.nc != nil {
		c.nc.Close()
		c.logger.Info("NATS consumer connection closed")
	}
}

type notification struct {
	EventType  string  `json:"event_type"`
	OrderID    string  `json:"order_id"`
	CustomerID string  `json:"customer_id"`
	ProductID  string  `json:"product_id"`
	Title      string  `json:"title"`
	TotalCost  float64 `json:"total_cost"`
	Lines      []struct {
		ProductID string  `json:"product_id"`
		Quantity  float64 `json:"quantity"`
	} `json:"lines"`
}

// NotificationHandler logs one structured line per order or catalog event
func NotificationHandler(log *logger.Logger) func(data []byte) error {
	return func(data []byte) error {
		var event notification
		if err := json.Unmarshal(data, &event); err != nil {
			log.Error("Failed to unmarshal event", err)
			return err
		}

		fields := map[string]interface{}{"event_type": event.EventType}
		switch {
		case event.OrderID != "":
			fields["order_id"] = event.OrderID
			fields["customer_id"] = event.CustomerID
			fields["lines"] = len(event.Lines)
			fields["total_cost"] = event.TotalCost
		case event.ProductID != "":
			fields["product_id"] = event.ProductID
			fields["title"] = event.Title
		}

		log.WithFields(fields).Info("Received event")
		return nil
	}
}
