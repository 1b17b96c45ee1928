package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Pesokrava/grocery_cart/internal/domain"
)

const (
	searchKeysSet      = "catalog:search:cache_keys"
	checkoutInProgress = "pending"
)

// RedisCache caches catalog search results and tracks checkout idempotency keys
type RedisCache struct {
	client         *redis.Client
	searchTTL      time.Duration
	idempotencyTTL time.Duration
}

// NewRedisCache creates a new Redis cache instance
func NewRedisCache(client *redis.Client, searchTTL, idempotencyTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:         client,
		searchTTL:      searchTTL,
		idempotencyTTL: idempotencyTTL,
	}
}

// Search result cache keys and methods

func (c *RedisCache) searchKey(criteria domain.Criteria) string {
	n := criteria.Normalize()
	return fmt.Sprintf("catalog:search:title:%s:category:%s:subcategory:%s",
		strings.ToLower(n.Title), strings.ToLower(n.Category), strings.ToLower(n.Subcategory))
}

// GetSearch retrieves the cached product IDs matching criteria
func (c *RedisCache) GetSearch(ctx context.Context, criteria domain.Criteria) ([]uuid.UUID, error) {
	val, err := c.client.Get(ctx, c.searchKey(criteria)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	var ids []uuid.UUID
	if err := json.Unmarshal([]byte(val), &ids); err != nil {
		return nil, err
	}

	return ids, nil
}

// SetSearch stores the product IDs matching criteria and tracks the key in a SET
func (c *RedisCache) SetSearch(ctx context.Context, criteria domain.Criteria, ids []uuid.UUID) error {
	key := c.searchKey(criteria)

	data, err := json.Marshal(ids)
	if err != nil {
		return err
	}

	pipe := c.client.Pipeline()
	pipe.Set(ctx, key, data, c.searchTTL)
	pipe.SAdd(ctx, searchKeysSet, key)
	pipe.Expire(ctx, searchKeysSet, c.searchTTL)
	_, err = pipe.Exec(ctx)
	return err
}

// InvalidateSearch removes every cached search result using SET-based tracking
func (c *RedisCache) InvalidateSearch(ctx context.Context) error {
	keys, err := c.client.SMembers(ctx, searchKeysSet).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}

	if len(keys) > 0 {
		keys = append(keys, searchKeysSet)
		return c.client.Unlink(ctx, keys...).Err()
	}

	return nil
}

// Checkout idempotency keys and methods

func (c *RedisCache) checkoutKey(customerID uuid.UUID, key string) string {
	return fmt.Sprintf("customer:%s:checkout:%s", customerID.String(), key)
}

// ClaimCheckout marks an idempotency key as in flight. It returns uuid.Nil
// when the caller now owns the key, the order ID when a checkout with that key
// already completed, and domain.ErrConflict while another one is running.
func (c *RedisCache) ClaimCheckout(ctx context.Context, customerID uuid.UUID, key string) (uuid.UUID, error) {
	redisKey := c.checkoutKey(customerID, key)

	claimed, err := c.client.SetNX(ctx, redisKey, checkoutInProgress, c.idempotencyTTL).Result()
	if err != nil {
		return uuid.Nil, err
	}
	if claimed {
		return uuid.Nil, nil
	}

	val, err := c.client.Get(ctx, redisKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			// Expired between SETNX and GET
			return c.ClaimCheckout(ctx, customerID, key)
		}
		return uuid.Nil, err
	}
	if val == checkoutInProgress {
		return uuid.Nil, fmt.Errorf("%w: checkout %q is already in progress", domain.ErrConflict, key)
	}

	orderID, err := uuid.Parse(val)
	if err != nil {
		return uuid.Nil, fmt.Errorf("corrupt idempotency record %q: %w", redisKey, err)
	}
	return orderID, nil
}

// CompleteCheckout records the order created under an idempotency key
func (c *RedisCache) CompleteCheckout(ctx context.Context, customerID uuid.UUID, key string, orderID uuid.UUID) error {
	return c.client.Set(ctx, c.checkoutKey(customerID, key), orderID.String(), c.idempotencyTTL).Err()
}

// ReleaseCheckout forgets an idempotency key after a failed checkout so it can be retried
func (c *RedisCache) ReleaseCheckout(ctx context.Context, customerID uuid.UUID, key string) error {
	return c.client.Del(ctx, c.checkoutKey(customerID, key)).Err()
}
