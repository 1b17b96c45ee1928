package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/Pesokrava/grocery_cart/internal/delivery/events"
	"github.com/Pesokrava/grocery_cart/internal/pkg/logger"
)

const (
	fetchBatch   = 10
	fetchMaxWait = 5 * time.Second
	fetchBackoff = 5 * time.Second
)

// Subscribe makes sure the ORDERS stream and the durable sales consumer exist
// and binds a pull subscription to them
func Subscribe(js nats.JetStreamContext, log *logger.Logger) (*nats.Subscription, error) {
	streamConfig := events.NewStreamConfig(js, log)

	if err := streamConfig.EnsureStream(); err != nil {
		return nil, fmt.Errorf("failed to ensure stream: %w", err)
	}
	if err := streamConfig.EnsureConsumer(); err != nil {
		return nil, fmt.Errorf("failed to ensure consumer: %w", err)
	}

	sub, err := js.PullSubscribe(events.OrdersSubject, events.ConsumerName, nats.Bind(events.StreamName, events.ConsumerName), nats.ManualAck())
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to JetStream consumer: %w", err)
	}

	return sub, nil
}

// Run fetches batches from sub and hands each message to w until ctx is done.
// Handled messages are acked; failed ones are nacked for redelivery.
func (w *SalesWorker) Run(ctx context.Context, sub *nats.Subscription) {
	for {
		if ctx.Err() != nil {
			return
		}

		msgs, err := sub.Fetch(fetchBatch, nats.MaxWait(fetchMaxWait))
		if err != nil {
			if errors.Is(err, nats.ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
				continue
			}
			w.logger.Error("Failed to fetch messages from JetStream", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(fetchBackoff):
			}
			continue
		}

		for _, msg := range msgs {
			if err := w.HandleEvent(msg.Data); err != nil {
				// Redelivered with backoff until MaxDeliver; the next order
				// touching the product triggers a full recount anyway
				if nackErr := msg.Nak(); nackErr != nil {
					w.logger.Error("Failed to NACK message", nackErr)
				}
				continue
			}

			if ackErr := msg.Ack(); ackErr != nil {
				w.logger.Error("Failed to ACK message", ackErr)
			}
		}
	}
}
