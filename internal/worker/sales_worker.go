package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Pesokrava/grocery_cart/internal/pkg/logger"
)

const (
	// Events for the same product inside this window collapse into one recount
	debounceWindow = 1 * time.Second

	maxRetries     = 3
	initialBackoff = 100 * time.Millisecond

	orderCompleted = "order.completed"
)

// OrderEvent is the part of an order event the worker reads
type OrderEvent struct {
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
	OrderID   uuid.UUID `json:"order_id"`
	Lines     []struct {
		ProductID uuid.UUID `json:"product_id"`
	} `json:"lines"`
}

// SalesWorker turns completed-order events into debounced sales recounts
type SalesWorker struct {
	calculator *Calculator
	logger     *logger.Logger

	mu             sync.Mutex
	pendingUpdates map[uuid.UUID]*pendingUpdate
	shutdownCh     chan struct{}
	wg             sync.WaitGroup
	ctx            context.Context
	cancel         context.CancelFunc
}

type pendingUpdate struct {
	timestamp time.Time
	timer     *time.Timer
}

// NewSalesWorker creates a new sales worker
func NewSalesWorker(calculator *Calculator, logger *logger.Logger) *SalesWorker {
	ctx, cancel := context.WithCancel(context.Background())

	return &SalesWorker{
		calculator:     calculator,
		logger:         logger,
		pendingUpdates: make(map[uuid.UUID]*pendingUpdate),
		shutdownCh:     make(chan struct{}),
		ctx:            ctx,
		cancel:         cancel,
	}
}

// HandleEvent schedules a recount for every product of a completed order.
// Other event types are acknowledged and ignored.
func (w *SalesWorker) HandleEvent(data []byte) error {
	var event OrderEvent
	if err := json.Unmarshal(data, &event); err != nil {
		w.logger.Error("Failed to unmarshal order event", err)
		return fmt.Errorf("failed to unmarshal event: %w", err)
	}

	if event.EventType != orderCompleted {
		w.logger.Debugf("Ignoring %s event", event.EventType)
		return nil
	}

	w.logger.WithFields(map[string]any{
		"order_id":  event.OrderID.String(),
		"lines":     len(event.Lines),
		"timestamp": event.Timestamp,
	}).Info("Received order event")

	for _, line := range event.Lines {
		w.scheduleUpdate(line.ProductID, event.Timestamp)
	}

	return nil
}

func (w *SalesWorker) scheduleUpdate(productID uuid.UUID, timestamp time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()

	select {
	case <-w.shutdownCh:
		w.logger.Info("Worker shutting down, ignoring new event")
		return
	default:
	}

	existing, found := w.pendingUpdates[productID]
	if found {
		// The pending recount already covers older orders
		if timestamp.Before(existing.timestamp) {
			w.logger.WithFields(map[string]any{
				"product_id":  productID.String(),
				"existing_ts": existing.timestamp,
				"event_ts":    timestamp,
			}).Debug("Ignoring stale event")
			return
		}

		if existing.timer.Stop() {
			// The replaced timer never ran, its wg slot passes to the new one
			w.logger.WithFields(map[string]any{
				"product_id": productID.String(),
			}).Debug("Debouncing: resetting timer for product")
		} else {
			w.wg.Add(1)
		}
	} else {
		w.wg.Add(1)
	}

	update := &pendingUpdate{timestamp: timestamp}
	update.timer = time.AfterFunc(debounceWindow, func() {
		w.processUpdate(productID, update)
	})
	w.pendingUpdates[productID] = update
}

// processUpdate runs the recount with exponential backoff between attempts
func (w *SalesWorker) processUpdate(productID uuid.UUID, update *pendingUpdate) {
	defer w.wg.Done()

	w.mu.Lock()
	if w.pendingUpdates[productID] == update {
		delete(w.pendingUpdates, productID)
	}
	w.mu.Unlock()

	var lastErr error
	backoff := initialBackoff

	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			w.logger.WithFields(map[string]any{
				"product_id": productID.String(),
				"attempt":    attempt + 1,
				"backoff_ms": backoff.Milliseconds(),
			}).Warn("Retrying sales update")

			select {
			case <-time.After(backoff):
			case <-w.ctx.Done():
				w.logger.Info("Worker context cancelled, aborting retry")
				return
			}

			backoff *= 2
		}

		ctx, cancel := context.WithTimeout(w.ctx, 5*time.Second)
		err := w.calculator.Recalculate(ctx, productID)
		cancel()

		if err == nil {
			return
		}

		lastErr = err
		w.logger.WithFields(map[string]any{
			"product_id": productID.String(),
			"attempt":    attempt + 1,
		}).Error("Failed to update sales", err)
	}

	w.logger.WithFields(map[string]any{
		"product_id":  productID.String(),
		"max_retries": maxRetries,
	}).Error("Sales update failed after all retries", lastErr)
}

// Shutdown drops pending recounts and waits for in-flight ones until ctx is done
func (w *SalesWorker) Shutdown(ctx context.Context) error {
	w.logger.Info("Shutting down sales worker...")

	close(w.shutdownCh)
	w.cancel()

	w.mu.Lock()
	pendingCount := 0
	for id, update := range w.pendingUpdates {
		// A timer that already fired owns its wg slot
		if update.timer.Stop() {
			w.wg.Done()
			pendingCount++
		}
		delete(w.pendingUpdates, id)
	}
	w.mu.Unlock()

	w.logger.WithFields(map[string]any{
		"cancelled_updates": pendingCount,
	}).Info("Cancelled pending updates")

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		w.logger.Info("All in-flight updates completed")
		return nil
	case <-ctx.Done():
		w.logger.Warn("Shutdown timeout reached, forcing exit")
		return ctx.Err()
	}
}

// GetPendingCount returns the number of scheduled recounts
func (w *SalesWorker) GetPendingCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pendingUpdates)
}
