package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/Pesokrava/grocery_cart/internal/config"
	"github.com/Pesokrava/grocery_cart/internal/pkg/logger"
)

// NewPostgresDB opens a pooled PostgreSQL connection and pings it
func NewPostgresDB(ctx context.Context, cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	return db, nil
}

// WaitForDB retries NewPostgresDB until it succeeds, ctx is done or
// maxRetries attempts have failed
func WaitForDB(ctx context.Context, cfg *config.Config, log *logger.Logger, maxRetries int, retryDelay time.Duration) (*sqlx.DB, error) {
	var err error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		var db *sqlx.DB
		db, err = NewPostgresDB(ctx, cfg)
		if err == nil {
			return db, nil
		}

		log.WithFields(map[string]interface{}{
			"attempt": attempt,
			"host":    cfg.Database.Host,
		}).Warn("Database not ready")

		if attempt == maxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryDelay):
		}
	}

	return nil, fmt.Errorf("failed to connect to database after %d retries: %w", maxRetries, err)
}
