package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/Pesokrava/grocery_cart/internal/config"
	"github.com/Pesokrava/grocery_cart/internal/delivery/events"
	httpDelivery "github.com/Pesokrava/grocery_cart/internal/delivery/http"
	"github.com/Pesokrava/grocery_cart/internal/delivery/http/handler"
	"github.com/Pesokrava/grocery_cart/internal/domain"
	"github.com/Pesokrava/grocery_cart/internal/pkg/cache"
	"github.com/Pesokrava/grocery_cart/internal/pkg/database"
	"github.com/Pesokrava/grocery_cart/internal/pkg/logger"
	"github.com/Pesokrava/grocery_cart/internal/pkg/metrics"
	cacheRepo "github.com/Pesokrava/grocery_cart/internal/repository/cache"
	"github.com/Pesokrava/grocery_cart/internal/repository/postgres"
	"github.com/Pesokrava/grocery_cart/internal/taxonomy"
	"github.com/Pesokrava/grocery_cart/internal/usecase/catalog"
	"github.com/Pesokrava/grocery_cart/internal/usecase/shopping"

	_ "github.com/Pesokrava/grocery_cart/docs"
)

const startupTimeout = 2 * time.Minute

// @title Grocery Cart API
// @version 1.0
// @description Catalog, shopping cart and checkout service with stock reservation, caching and order events.
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url http://github.com/Pesokrava/grocery_cart
// @contact.email support@example.com

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

// @tag.name Products
// @tag.description Catalog management and search

// @tag.name Cart
// @tag.description Stock reservation in the customer's cart

// @tag.name Orders
// @tag.description Checkout and order history

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger := logger.NewWithLevel(cfg.Env, cfg.LogLevel)
	logger.SetGlobalLogger(appLogger)
	appLogger.Info("Starting Grocery Cart API...")

	startCtx, cancelStart := context.WithTimeout(context.Background(), startupTimeout)
	defer cancelStart()

	var (
		db          *sqlx.DB
		redisClient *redis.Client
		publisher   *events.Publisher
	)

	// Dependencies come up independently; the first failure cancels the rest
	g, gctx := errgroup.WithContext(startCtx)
	g.Go(func() error {
		var err error
		db, err = database.WaitForDB(gctx, cfg, appLogger, 10, 2*time.Second)
		return err
	})
	g.Go(func() error {
		var err error
		redisClient, err = cache.WaitForRedis(gctx, cfg, appLogger, 10, 2*time.Second)
		return err
	})
	g.Go(func() error {
		var err error
		publisher, err = events.NewPublisher(cfg, appLogger)
		return err
	})
	if err := g.Wait(); err != nil {
		appLogger.Fatal("Failed to connect to dependencies", err)
	}
	defer db.Close()
	defer redisClient.Close()
	defer publisher.Close()

	if err := database.RunMigrations(db, cfg.Database.MigrationsDir); err != nil {
		appLogger.Fatal("Failed to run migrations", err)
	}

	tax, err := loadTaxonomy(cfg)
	if err != nil {
		appLogger.Fatal("Failed to load taxonomy", err)
	}

	appMetrics := metrics.New(cfg.Metrics.Namespace)

	productRepo := postgres.NewProductRepository(db)
	orderRepo := postgres.NewOrderRepository(db)
	salesRepo := postgres.NewSalesRepository(db)
	redisCache := cacheRepo.NewRedisCache(
		redisClient,
		cfg.Cache.SearchTTL,
		cfg.Cache.IdempotencyTTL,
	)

	productCatalog, err := domain.NewCatalog()
	if err != nil {
		appLogger.Fatal("Failed to create catalog", err)
	}

	catalogService := catalog.NewService(
		productCatalog,
		productRepo,
		salesRepo,
		tax,
		redisCache,
		publisher,
		cfg.Catalog.File,
		appLogger,
	)
	shoppingService := shopping.NewService(productCatalog, orderRepo, redisCache, publisher, appMetrics, appLogger)

	loaded, err := catalogService.Bootstrap(startCtx, cfg.Catalog.SeedDefaults)
	if err != nil {
		appLogger.Fatal("Failed to load catalog", err)
	}
	appLogger.Infof("Catalog ready with %d products", loaded)

	router := httpDelivery.NewRouter(
		handler.NewProductHandler(catalogService, appLogger),
		handler.NewCartHandler(shoppingService, appLogger),
		handler.NewOrderHandler(shoppingService, appLogger),
		appMetrics,
		cfg,
		appLogger,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		appLogger.Infof("HTTP server listening on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("HTTP server failed", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", err)
	}

	// Open carts do not survive a restart, their reservations go back to stock
	shoppingService.ReleaseAll()
	if err := catalogService.SyncStock(ctx); err != nil {
		appLogger.Error("Failed to persist stock on shutdown", err)
	}
	if err := catalogService.SaveCatalogFile(); err != nil {
		appLogger.Error("Failed to persist catalog file on shutdown", err)
	}

	appLogger.Info("Server stopped gracefully")
}

func loadTaxonomy(cfg *config.Config) (*taxonomy.Taxonomy, error) {
	if cfg.Catalog.TaxonomyFile == "" {
		return taxonomy.Default(), nil
	}
	return taxonomy.LoadFile(cfg.Catalog.TaxonomyFile)
}
