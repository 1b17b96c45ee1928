package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Pesokrava/grocery_cart/internal/config"
	"github.com/Pesokrava/grocery_cart/internal/delivery/events"
	"github.com/Pesokrava/grocery_cart/internal/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger := logger.NewWithLevel(cfg.Env, cfg.LogLevel)
	appLogger.Info("Starting notifier service...")

	consumer, err := events.NewConsumer(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to create NATS consumer", err)
	}
	defer consumer.Close()

	handler := events.NotificationHandler(appLogger)
	for _, subject := range []string{events.OrdersSubject, events.CatalogSubject} {
		if err := consumer.Subscribe(subject, handler); err != nil {
			appLogger.Fatalf(err, "Failed to subscribe to %s", subject)
		}
	}

	appLogger.Info("Notifier service started and listening for events...")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down notifier service...")
}
