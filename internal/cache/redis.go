package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"arqueo-backend/internal/models"

	"github.com/redis/go-redis/v9"
)

const debtorsKey = "arqueo:clients:debtors"

// New connects to Redis and verifies the connection.
func New(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("cache: ping: %w", err)
	}
	return client, nil
}

// DebtorCache keeps the list of clients with an outstanding balance. A nil
// client disables caching and every call goes to the loader.
type DebtorCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewDebtorCache(client *redis.Client, ttl time.Duration) *DebtorCache {
	return &DebtorCache{client: client, ttl: ttl}
}

// Debtors returns the cached list or fills it from loader.
func (c *DebtorCache) Debtors(ctx context.Context, loader func(context.Context) ([]models.Client, error)) ([]models.Client, error) {
	if loader == nil {
		return nil, errors.New("cache: loader required")
	}
	if c == nil || c.client == nil {
		return loader(ctx)
	}

	payload, err := c.client.Get(ctx, debtorsKey).Bytes()
	if err == nil {
		var clients []models.Client
		if err := json.Unmarshal(payload, &clients); err == nil {
			return clients, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		return nil, err
	}

	clients, err := loader(ctx)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(clients)
	if err != nil {
		return nil, err
	}
	// a failed write only costs the next caller a reload
	_ = c.client.Set(ctx, debtorsKey, raw, c.ttl).Err()
	return clients, nil
}

// InvalidateDebtors drops the cached list.
func (c *DebtorCache) InvalidateDebtors(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Del(ctx, debtorsKey).Err()
}
