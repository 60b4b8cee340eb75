package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"storefront-service/internal/models"
	"storefront-service/internal/util"

	"go.uber.org/zap"
)

// OrderStorage is the durable backing store for per-session order history
type OrderStorage interface {
	SaveOrders(ctx context.Context, sessionID string, orders []models.Order) error
	LoadOrders(ctx context.Context, sessionID string) ([]models.Order, error)
	DeleteOrders(ctx context.Context, sessionID string) error
}

// OrderService keeps an append-only order history per session, newest first,
// capped at the most recent 20 entries. It also owns the transient
// "just succeeded" banner flag that auto-clears after a fixed delay.
type OrderService struct {
	storage    OrderStorage
	logger     *zap.Logger
	successTTL time.Duration

	mu      sync.Mutex
	success map[string]*time.Timer
}

// NewOrderService creates a new order ledger service
func NewOrderService(storage OrderStorage) *OrderService {
	return &OrderService{
		storage:    storage,
		logger:     util.GetLogger(),
		successTTL: 5 * time.Second,
		success:    make(map[string]*time.Timer),
	}
}

// PersistOrder snapshots the cart items into an immutable order, prepends it
// to the session history and truncates to the newest entries.
func (s *OrderService) PersistOrder(ctx context.Context, sessionID, orderID string, items []models.CartItem, total int64) (*models.Order, error) {
	order := models.Order{
		ID:     orderID,
		Date:   time.Now(),
		Status: models.OrderStatusCompleted,
		Items:  make([]models.OrderItem, 0, len(items)),
		Total:  total,
	}
	for _, item := range items {
		order.Items = append(order.Items, models.OrderItem{
			ID:       item.Product.ID,
			Title:    item.Product.Title,
			Image:    item.Product.Image,
			Quantity: item.Quantity,
			Price:    item.Product.Price,
		})
	}

	existing, err := s.storage.LoadOrders(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order history: %w", err)
	}

	orders := append([]models.Order{order}, existing...)
	if len(orders) > models.OrderHistoryLimit {
		util.OrdersEvictedTotal.Add(float64(len(orders) - models.OrderHistoryLimit))
		orders = orders[:models.OrderHistoryLimit]
	}

	if err := s.storage.SaveOrders(ctx, sessionID, orders); err != nil {
		return nil, fmt.Errorf("failed to persist order: %w", err)
	}

	util.OrdersRecordedTotal.Inc()
	s.logger.Info("Order recorded",
		zap.String("session_id", sessionID),
		zap.String("order_id", orderID),
		zap.Int64("total", total))
	return &order, nil
}

// LoadOrders reads the session order history. Malformed stored data degrades
// to an empty list at the storage layer, never an error here.
func (s *OrderService) LoadOrders(ctx context.Context, sessionID string) ([]models.Order, error) {
	return s.storage.LoadOrders(ctx, sessionID)
}

// ClearOrders empties the session order history
func (s *OrderService) ClearOrders(ctx context.Context, sessionID string) error {
	return s.storage.DeleteOrders(ctx, sessionID)
}

// TriggerSuccess raises the one-time confirmation banner for the session.
// The flag clears itself after the configured delay; re-triggering restarts
// the timer.
func (s *OrderService) TriggerSuccess(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if timer, ok := s.success[sessionID]; ok {
		timer.Stop()
	}
	s.success[sessionID] = time.AfterFunc(s.successTTL, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.success, sessionID)
	})
}

// ShowSuccess reports whether the confirmation banner is currently visible
func (s *OrderService) ShowSuccess(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.success[sessionID]
	return ok
}
