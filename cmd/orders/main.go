package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/example/orderflow/internal/config"
	"github.com/example/orderflow/internal/directory"
	"github.com/example/orderflow/internal/events"
	"github.com/example/orderflow/internal/infrastructure/kafka"
	"github.com/example/orderflow/internal/infrastructure/store"
	"github.com/example/orderflow/internal/orders"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	var cfg config.Orders
	if err := config.Load(&cfg); err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	db, err := store.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("connect postgres", zap.Error(err))
	}
	defer db.Close()
	if err := store.Migrate(db, store.SchemaOrders); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	producer := kafka.NewProducer(cfg.BrokerList(), events.TopicOrderCreated)
	defer producer.Close()

	merchants := directory.NewMerchantClient(cfg.MerchantServiceURL, cfg.ClientTimeout, logger)
	buyers := directory.NewBuyerClient(cfg.BuyerServiceURL, cfg.ClientTimeout, logger)
	inventory := directory.NewInventoryClient(cfg.InventoryServiceURL, cfg.ClientTimeout, logger)

	svc := orders.NewService(store.NewPostgresOrderStore(db), merchants, buyers, inventory, producer, logger)
	handlers := orders.NewHandlers(svc, logger)

	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: orders.NewRouter(handlers),
	}

	go func() {
		logger.Info("order service listening", zap.String("addr", cfg.HTTPAddr))
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	server.Shutdown(shutdownCtx)
}
