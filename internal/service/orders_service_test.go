package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"storefront-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOrderStorage struct {
	orders   map[string][]models.Order
	failSave bool
}

func newFakeOrderStorage() *fakeOrderStorage {
	return &fakeOrderStorage{orders: make(map[string][]models.Order)}
}

func (s *fakeOrderStorage) SaveOrders(ctx context.Context, sessionID string, orders []models.Order) error {
	if s.failSave {
		return errors.New("storage unavailable")
	}
	s.orders[sessionID] = orders
	return nil
}

func (s *fakeOrderStorage) LoadOrders(ctx context.Context, sessionID string) ([]models.Order, error) {
	return s.orders[sessionID], nil
}

func (s *fakeOrderStorage) DeleteOrders(ctx context.Context, sessionID string) error {
	delete(s.orders, sessionID)
	return nil
}

func cartItems() []models.CartItem {
	return []models.CartItem{
		{Product: models.Product{ID: 1, Title: "Mug", Image: "mug.jpg", Price: 900}, Quantity: 2},
		{Product: models.Product{ID: 2, Title: "Shirt", Price: 2500}, Quantity: 1},
	}
}

func TestPersistOrderSnapshotsCart(t *testing.T) {
	svc := NewOrderService(newFakeOrderStorage())

	order, err := svc.PersistOrder(context.Background(), "s1", "order_1", cartItems(), 4300)
	require.NoError(t, err)

	assert.Equal(t, "order_1", order.ID)
	assert.Equal(t, models.OrderStatusCompleted, order.Status)
	assert.Equal(t, int64(4300), order.Total)
	require.Len(t, order.Items, 2)
	assert.Equal(t, "Mug", order.Items[0].Title)
	assert.Equal(t, 2, order.Items[0].Quantity)
	assert.Equal(t, int64(900), order.Items[0].Price)
	assert.WithinDuration(t, time.Now(), order.Date, time.Second)
}

func TestPersistOrderPrependsNewestFirst(t *testing.T) {
	svc := NewOrderService(newFakeOrderStorage())
	ctx := context.Background()

	_, err := svc.PersistOrder(ctx, "s1", "first", cartItems(), 100)
	require.NoError(t, err)
	_, err = svc.PersistOrder(ctx, "s1", "second", cartItems(), 200)
	require.NoError(t, err)

	orders, err := svc.LoadOrders(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "second", orders[0].ID)
	assert.Equal(t, "first", orders[1].ID)
}

func TestPersistOrderEvictsBeyondLimit(t *testing.T) {
	svc := NewOrderService(newFakeOrderStorage())
	ctx := context.Background()

	for i := 0; i < models.OrderHistoryLimit+3; i++ {
		_, err := svc.PersistOrder(ctx, "s1", fmt.Sprintf("order_%d", i), cartItems(), 100)
		require.NoError(t, err)
	}

	orders, err := svc.LoadOrders(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, orders, models.OrderHistoryLimit)

	// newest kept, oldest evicted
	assert.Equal(t, fmt.Sprintf("order_%d", models.OrderHistoryLimit+2), orders[0].ID)
	assert.Equal(t, "order_3", orders[len(orders)-1].ID)
}

func TestPersistOrderSaveFailure(t *testing.T) {
	storage := newFakeOrderStorage()
	storage.failSave = true
	svc := NewOrderService(storage)

	_, err := svc.PersistOrder(context.Background(), "s1", "order_1", cartItems(), 100)
	assert.Error(t, err)
}

func TestClearOrders(t *testing.T) {
	svc := NewOrderService(newFakeOrderStorage())
	ctx := context.Background()

	_, err := svc.PersistOrder(ctx, "s1", "order_1", cartItems(), 100)
	require.NoError(t, err)

	require.NoError(t, svc.ClearOrders(ctx, "s1"))

	orders, err := svc.LoadOrders(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestSuccessBannerAutoClears(t *testing.T) {
	svc := NewOrderService(newFakeOrderStorage())
	svc.successTTL = 20 * time.Millisecond

	assert.False(t, svc.ShowSuccess("s1"))

	svc.TriggerSuccess("s1")
	assert.True(t, svc.ShowSuccess("s1"))
	assert.False(t, svc.ShowSuccess("s2"))

	assert.Eventually(t, func() bool {
		return !svc.ShowSuccess("s1")
	}, time.Second, 5*time.Millisecond)
}

func TestSuccessBannerRetriggerRestartsTimer(t *testing.T) {
	svc := NewOrderService(newFakeOrderStorage())
	svc.successTTL = 50 * time.Millisecond

	svc.TriggerSuccess("s1")
	time.Sleep(30 * time.Millisecond)
	svc.TriggerSuccess("s1")
	time.Sleep(30 * time.Millisecond)

	// the original timer would have fired by now
	assert.True(t, svc.ShowSuccess("s1"))
}
