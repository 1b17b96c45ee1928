package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Pesokrava/grocery_cart/internal/config"
	"github.com/Pesokrava/grocery_cart/internal/pkg/logger"
)

const pingTimeout = 5 * time.Second

// NewRedisClient creates a Redis client and verifies it answers PING
func NewRedisClient(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.GetRedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}

// WaitForRedis retries NewRedisClient until it succeeds, ctx is done or
// maxRetries attempts have failed
func WaitForRedis(ctx context.Context, cfg *config.Config, log *logger.Logger, maxRetries int, retryDelay time.Duration) (*redis.Client, error) {
	var err error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		var client *redis.Client
		client, err = NewRedisClient(ctx, cfg)
		if err == nil {
			return client, nil
		}

		log.WithFields(map[string]interface{}{
			"attempt": attempt,
			"addr":    cfg.GetRedisAddr(),
		}).Warn("Redis not ready")

		if attempt == maxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryDelay):
		}
	}

	return nil, fmt.Errorf("failed to connect to Redis after %d retries: %w", maxRetries, err)
}
