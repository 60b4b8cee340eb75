package service

import (
	"context"
	"fmt"
	"sync"

	"storefront-service/internal/models"
	"storefront-service/internal/util"

	"go.uber.org/zap"
)

// CartStorage is the durable backing store for session carts
type CartStorage interface {
	SaveCart(ctx context.Context, sessionID string, items []models.CartItem) error
	LoadCart(ctx context.Context, sessionID string) ([]models.CartItem, error)
}

// ProductCatalog resolves product ids to catalog entries
type ProductCatalog interface {
	GetProductByID(ctx context.Context, id int64) (*models.Product, error)
}

// CartSnapshot is the read view of a session cart
type CartSnapshot struct {
	Items      []models.CartItem `json:"items"`
	TotalPrice int64             `json:"total_price"`
	Count      int               `json:"count"`
}

// CartService manages per-session cart ledgers with write-through
// persistence. Durability is best-effort: a failed write is logged and the
// in-memory mutation stands.
type CartService struct {
	catalog ProductCatalog
	storage CartStorage
	logger  *zap.Logger

	mu    sync.Mutex
	carts map[string]*CartLedger
}

// NewCartService creates a new cart service
func NewCartService(catalog ProductCatalog, storage CartStorage) *CartService {
	return &CartService{
		catalog: catalog,
		storage: storage,
		logger:  util.GetLogger(),
		carts:   make(map[string]*CartLedger),
	}
}

// AddToCart adds one unit of the product to the session cart
func (s *CartService) AddToCart(ctx context.Context, sessionID string, productID int64) (*CartSnapshot, error) {
	ctx, span := util.StartSpan(ctx, "CartService.AddToCart")
	defer span.End()

	product, err := s.catalog.GetProductByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve product: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ledger := s.ledgerLocked(ctx, sessionID)
	ledger.Add(*product)
	util.CartMutationsTotal.WithLabelValues("add").Inc()
	s.persistLocked(ctx, sessionID, ledger)

	return snapshot(ledger), nil
}

// RemoveFromCart removes the product from the session cart. Removing an
// absent product is a no-op and writes nothing.
func (s *CartService) RemoveFromCart(ctx context.Context, sessionID string, productID int64) (*CartSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ledger := s.ledgerLocked(ctx, sessionID)
	if ledger.Remove(productID) {
		util.CartMutationsTotal.WithLabelValues("remove").Inc()
		s.persistLocked(ctx, sessionID, ledger)
	}
	return snapshot(ledger), nil
}

// UpdateQuantity sets the quantity for a product in the session cart.
// Quantities are truncated toward zero; zero or below removes the item.
// Unknown products are a no-op.
func (s *CartService) UpdateQuantity(ctx context.Context, sessionID string, productID int64, quantity float64) (*CartSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ledger := s.ledgerLocked(ctx, sessionID)
	if ledger.UpdateQuantity(productID, quantity) {
		util.CartMutationsTotal.WithLabelValues("update").Inc()
		s.persistLocked(ctx, sessionID, ledger)
	}
	return snapshot(ledger), nil
}

// ClearCart empties the session cart and persists the empty state
func (s *CartService) ClearCart(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ledger := s.ledgerLocked(ctx, sessionID)
	ledger.Clear()
	util.CartMutationsTotal.WithLabelValues("clear").Inc()
	s.persistLocked(ctx, sessionID, ledger)
	return nil
}

// GetCart returns the current session cart
func (s *CartService) GetCart(ctx context.Context, sessionID string) (*CartSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return snapshot(s.ledgerLocked(ctx, sessionID)), nil
}

// ledgerLocked returns the session ledger, hydrating it from storage on
// first access. Storage failures degrade to an empty ledger.
func (s *CartService) ledgerLocked(ctx context.Context, sessionID string) *CartLedger {
	if ledger, ok := s.carts[sessionID]; ok {
		return ledger
	}

	items, err := s.storage.LoadCart(ctx, sessionID)
	if err != nil {
		s.logger.Error("Failed to load cart from storage",
			zap.String("session_id", sessionID),
			zap.Error(err))
		items = nil
	}

	ledger := NewCartLedger(items)
	s.carts[sessionID] = ledger
	return ledger
}

// persistLocked writes the ledger through to storage. Failures are swallowed
// after logging; the in-memory state is not rolled back.
func (s *CartService) persistLocked(ctx context.Context, sessionID string, ledger *CartLedger) {
	if err := s.storage.SaveCart(ctx, sessionID, ledger.Items()); err != nil {
		util.CartPersistFailuresTotal.Inc()
		s.logger.Error("Failed to persist cart",
			zap.String("session_id", sessionID),
			zap.Error(err))
	}
}

func snapshot(ledger *CartLedger) *CartSnapshot {
	return &CartSnapshot{
		Items:      ledger.Items(),
		TotalPrice: ledger.TotalPrice(),
		Count:      ledger.Count(),
	}
}
