package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/Pesokrava/grocery_cart/internal/config"
	"github.com/Pesokrava/grocery_cart/internal/delivery/events"
	"github.com/Pesokrava/grocery_cart/internal/pkg/database"
	"github.com/Pesokrava/grocery_cart/internal/pkg/logger"
	"github.com/Pesokrava/grocery_cart/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger := logger.NewWithLevel(cfg.Env, cfg.LogLevel)
	appLogger.Info("Starting sales worker...")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.WaitForDB(ctx, cfg, appLogger, 10, 2*time.Second)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", err)
	}
	defer db.Close()

	calculator := worker.NewCalculator(db, appLogger)
	salesWorker := worker.NewSalesWorker(calculator, appLogger)

	nc, err := nats.Connect(cfg.NATS.URL, nats.Name("grocery-cart-sales-worker"))
	if err != nil {
		appLogger.Fatal("Failed to connect to NATS", err)
	}
	defer nc.Close()

	js, err := nc.JetStream()
	if err != nil {
		appLogger.Fatal("Failed to create JetStream context", err)
	}

	sub, err := worker.Subscribe(js, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to subscribe to order events", err)
	}
	defer func() {
		if err := sub.Unsubscribe(); err != nil {
			appLogger.Error("Failed to unsubscribe from JetStream", err)
		}
	}()

	appLogger.WithFields(map[string]any{
		"stream":   events.StreamName,
		"consumer": events.ConsumerName,
	}).Info("Subscribed to JetStream consumer")

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		salesWorker.Run(ctx, sub)
	}()

	<-ctx.Done()
	appLogger.Info("Received shutdown signal")
	wg.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := salesWorker.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Error during shutdown", err)
	}

	appLogger.Info("Sales worker stopped")
}
