package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/example/orderflow/internal/config"
	"github.com/example/orderflow/internal/events"
	"github.com/example/orderflow/internal/infrastructure/kafka"
	"github.com/example/orderflow/internal/infrastructure/store"
	"github.com/example/orderflow/internal/inventory"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	var cfg config.Inventory
	if err := config.Load(&cfg); err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := store.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("connect postgres", zap.Error(err))
	}
	defer db.Close()
	if err := store.Migrate(db, store.SchemaProducts); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	svc := inventory.NewService(store.NewPostgresProductStore(db), logger)
	reconciler := inventory.NewReconciler(svc, logger)

	// One consumer loop per terminal topic; both feed the reconciler.
	// Offsets commit on read, so a crash mid-update drops that event.
	var wg sync.WaitGroup
	for _, topic := range []string{events.TopicPaymentSuccess, events.TopicPaymentFailed} {
		consumer := kafka.NewConsumer(cfg.BrokerList(), topic, cfg.ConsumerGroup, logger)
		defer consumer.Close()

		wg.Add(1)
		go func(topic string, c *kafka.Consumer) {
			defer wg.Done()
			if err := kafka.WaitReady(ctx, cfg.BrokerList()[0], cfg.ConnectRetries, cfg.ConnectBackoff, cfg.RetryInterval, logger); err != nil {
				return
			}
			logger.Info("reconciler consuming", zap.String("topic", topic))
			if err := c.Consume(ctx, reconciler.Handle); err != nil && ctx.Err() == nil {
				logger.Error("consumer stopped", zap.String("topic", topic), zap.Error(err))
			}
		}(topic, consumer)
	}

	handlers := inventory.NewHandlers(svc, logger)
	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: inventory.NewRouter(handlers),
	}

	go func() {
		logger.Info("inventory service listening", zap.String("addr", cfg.HTTPAddr))
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	server.Shutdown(shutdownCtx)
	wg.Wait()
}
