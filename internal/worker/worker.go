package worker

import (
	"context"
	"sync"

	"storefront-service/internal/broker"
	"storefront-service/internal/models"
	"storefront-service/internal/util"

	"go.uber.org/zap"
)

// AnalyticsWorker consumes the checkout event stream and maintains rolling
// counters for successful orders and failed attempts. It runs alongside the
// API server and is entirely passive; losing it never affects checkout.
type AnalyticsWorker struct {
	consumer *broker.Consumer
	handler  *broker.EventHandler
	logger   *zap.Logger

	mu           sync.Mutex
	ordersSeen   int64
	revenue      int64
	failuresSeen map[string]int64
}

// NewAnalyticsWorker creates a worker bound to the given consumer
func NewAnalyticsWorker(consumer *broker.Consumer) *AnalyticsWorker {
	w := &AnalyticsWorker{
		consumer:     consumer,
		logger:       util.GetLogger(),
		failuresSeen: make(map[string]int64),
	}

	handler := broker.NewEventHandler()
	handler.OnOrderRecorded(w.handleOrderRecorded)
	handler.OnCheckoutFailed(w.handleCheckoutFailed)
	w.handler = handler
	return w
}

// Start consumes events until the context is cancelled
func (w *AnalyticsWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting checkout analytics worker")
	return w.consumer.StartConsuming(ctx, w.handler.HandleMessage)
}

// Stop closes the underlying consumer
func (w *AnalyticsWorker) Stop() error {
	return w.consumer.Close()
}

func (w *AnalyticsWorker) handleOrderRecorded(ctx context.Context, event *models.OrderRecordedEvent) error {
	w.mu.Lock()
	w.ordersSeen++
	w.revenue += event.Total
	w.mu.Unlock()

	w.logger.Info("Order recorded event consumed",
		zap.String("order_id", event.OrderID),
		zap.String("session_id", event.SessionID),
		zap.Int64("total", event.Total),
		zap.Int("items", len(event.Items)))
	return nil
}

func (w *AnalyticsWorker) handleCheckoutFailed(ctx context.Context, event *models.CheckoutFailedEvent) error {
	w.mu.Lock()
	w.failuresSeen[event.Reason]++
	w.mu.Unlock()

	w.logger.Warn("Checkout failed event consumed",
		zap.String("session_id", event.SessionID),
		zap.String("reason", event.Reason),
		zap.String("message", event.Message))
	return nil
}

// Stats is a point-in-time snapshot of the counters
type Stats struct {
	OrdersSeen int64            `json:"orders_seen"`
	Revenue    int64            `json:"revenue"`
	Failures   map[string]int64 `json:"failures"`
}

// Snapshot returns the current analytics counters
func (w *AnalyticsWorker) Snapshot() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()

	failures := make(map[string]int64, len(w.failuresSeen))
	for reason, n := range w.failuresSeen {
		failures[reason] = n
	}
	return Stats{
		OrdersSeen: w.ordersSeen,
		Revenue:    w.revenue,
		Failures:   failures,
	}
}
