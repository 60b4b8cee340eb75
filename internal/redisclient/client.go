package redisclient

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"storefront-service/internal/models"
	"storefront-service/internal/util"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Versioned storage keys. Bump the version when the stored shape changes;
// old entries then read back as empty rather than half-decoded.
const (
	cartKeyPrefix   = "cart:v1:"
	ordersKeyPrefix = "orders:v1:"
)

type Client struct {
	rdb    *redis.Client
	logger *zap.Logger
}

// NewClient creates a new Redis client for durable storefront state
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb, logger: util.GetLogger()}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// SaveCart stores the cart items for a session
func (c *Client) SaveCart(ctx context.Context, sessionID string, items []models.CartItem) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}
	if err := c.rdb.Set(ctx, cartKeyPrefix+sessionID, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// LoadCart reads the cart items for a session. Missing or malformed data
// yields an empty cart, never an error to the caller.
func (c *Client) LoadCart(ctx context.Context, sessionID string) ([]models.CartItem, error) {
	data, err := c.rdb.Get(ctx, cartKeyPrefix+sessionID).Bytes()
	if err == redis.Nil {
		return []models.CartItem{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var items []models.CartItem
	if err := json.Unmarshal(data, &items); err != nil {
		c.logger.Warn("Discarding malformed stored cart",
			zap.String("session_id", sessionID),
			zap.Error(err))
		return []models.CartItem{}, nil
	}
	if items == nil {
		items = []models.CartItem{}
	}
	return items, nil
}

// SaveOrders stores the order history for a session, newest first
func (c *Client) SaveOrders(ctx context.Context, sessionID string, orders []models.Order) error {
	data, err := json.Marshal(orders)
	if err != nil {
		return fmt.Errorf("marshal orders failed: %w", err)
	}
	if err := c.rdb.Set(ctx, ordersKeyPrefix+sessionID, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// LoadOrders reads the order history for a session. Missing or malformed
// data yields an empty history, never an error to the caller.
func (c *Client) LoadOrders(ctx context.Context, sessionID string) ([]models.Order, error) {
	data, err := c.rdb.Get(ctx, ordersKeyPrefix+sessionID).Bytes()
	if err == redis.Nil {
		return []models.Order{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var orders []models.Order
	if err := json.Unmarshal(data, &orders); err != nil {
		c.logger.Warn("Discarding malformed stored orders",
			zap.String("session_id", sessionID),
			zap.Error(err))
		return []models.Order{}, nil
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return orders, nil
}

// DeleteOrders removes the stored order history for a session
func (c *Client) DeleteOrders(ctx context.Context, sessionID string) error {
	return c.rdb.Del(ctx, ordersKeyPrefix+sessionID).Err()
}
