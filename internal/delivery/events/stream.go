package events

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/Pesokrava/grocery_cart/internal/pkg/logger"
)

const (
	// StreamName is the JetStream stream holding order and catalog events
	StreamName = "ORDERS"

	// OrdersSubject carries order.completed events
	OrdersSubject = "orders.events"

	// CatalogSubject carries product.created, product.updated and product.deleted events
	CatalogSubject = "catalog.events"

	// ConsumerName is the durable consumer of the sales worker
	ConsumerName = "sales-worker"

	// MaxDeliveryAttempts is the max number of delivery attempts before discarding.
	// A discarded event is recovered by the next order of the same product.
	MaxDeliveryAttempts = 3

	// AckWait is how long to wait for acknowledgment before redelivery
	AckWait = 30 * time.Second
)

var streamSubjects = []string{OrdersSubject, CatalogSubject}

// StreamConfig creates the stream and consumer the services rely on
type StreamConfig struct {
	js     nats.JetStreamContext
	logger *logger.Logger
}

// NewStreamConfig creates a new stream configuration helper
func NewStreamConfig(js nats.JetStreamContext, log *logger.Logger) *StreamConfig {
	return &StreamConfig{
		js:     js,
		logger: log,
	}
}

// generateExponentialBackoff returns 1s, 2s, 4s, ... for the redeliveries
// after the first attempt
func generateExponentialBackoff(maxDeliveryAttempts int) []time.Duration {
	if maxDeliveryAttempts <= 1 {
		return nil
	}

	backoff := make([]time.Duration, maxDeliveryAttempts-1)
	for i := range backoff {
		backoff[i] = time.Duration(1<<i) * time.Second
	}
	return backoff
}

func streamDefinition() *nats.StreamConfig {
	return &nats.StreamConfig{
		Name:        StreamName,
		Subjects:    streamSubjects,
		Retention:   nats.LimitsPolicy,
		Storage:     nats.FileStorage,
		Replicas:    1,
		MaxAge:      7 * 24 * time.Hour,
		Discard:     nats.DiscardOld,
		Description: "Order and catalog events",
	}
}

// EnsureStream creates the stream, or widens an existing one that lacks a subject.
// Limits retention lets the sales worker and the notifier read the same events.
func (s *StreamConfig) EnsureStream() error {
	stream, err := s.js.StreamInfo(StreamName)

	if errors.Is(err, nats.ErrStreamNotFound) {
		s.logger.WithFields(map[string]any{
			"stream":   StreamName,
			"subjects": streamSubjects,
		}).Info("Creating JetStream stream")

		if _, err := s.js.AddStream(streamDefinition()); err != nil {
			return fmt.Errorf("failed to create stream: %w", err)
		}

		s.logger.Info("JetStream stream created successfully")
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to get stream info: %w", err)
	}

	for _, subject := range streamSubjects {
		if slices.Contains(stream.Config.Subjects, subject) {
			continue
		}

		cfg := stream.Config
		cfg.Subjects = append(slices.Clone(cfg.Subjects), subject)
		if _, err := s.js.UpdateStream(&cfg); err != nil {
			return fmt.Errorf("failed to add subject %s to stream: %w", subject, err)
		}
		stream.Config = cfg
		s.logger.Infof("Added subject %s to stream %s", subject, StreamName)
	}

	s.logger.WithFields(map[string]any{
		"stream":   stream.Config.Name,
		"messages": stream.State.Msgs,
		"bytes":    stream.State.Bytes,
	}).Info("JetStream stream already exists")

	return nil
}

// EnsureConsumer creates the durable, explicitly acked consumer of the sales
// worker, filtered to order events, with exponential redelivery backoff
func (s *StreamConfig) EnsureConsumer() error {
	consumerInfo, err := s.js.ConsumerInfo(StreamName, ConsumerName)

	if errors.Is(err, nats.ErrConsumerNotFound) {
		s.logger.WithFields(map[string]any{
			"stream":   StreamName,
			"consumer": ConsumerName,
		}).Info("Creating JetStream consumer")

		_, err = s.js.AddConsumer(StreamName, &nats.ConsumerConfig{
			Durable:       ConsumerName,
			AckPolicy:     nats.AckExplicitPolicy,
			AckWait:       AckWait,
			MaxDeliver:    MaxDeliveryAttempts,
			FilterSubject: OrdersSubject,
			BackOff:       generateExponentialBackoff(MaxDeliveryAttempts),
			Description:   "Sales worker consumer for completed orders",
		})
		if err != nil {
			return fmt.Errorf("failed to create consumer: %w", err)
		}

		s.logger.Info("JetStream consumer created successfully")
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to get consumer info: %w", err)
	}

	s.logger.WithFields(map[string]any{
		"consumer":    consumerInfo.Name,
		"pending":     consumerInfo.NumPending,
		"redelivered": consumerInfo.NumRedelivered,
		"ack_pending": consumerInfo.NumAckPending,
	}).Info("JetStream consumer already exists")

	return nil
}
