package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/example/orderflow/internal/config"
	"github.com/example/orderflow/internal/events"
	"github.com/example/orderflow/internal/infrastructure/kafka"
	"github.com/example/orderflow/internal/infrastructure/store"
	"github.com/example/orderflow/internal/payments"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	var cfg config.Payments
	if err := config.Load(&cfg); err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	paymentStore, cleanup, err := buildPaymentStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("payment store", zap.Error(err))
	}
	defer cleanup()

	success := kafka.NewProducer(cfg.BrokerList(), events.TopicPaymentSuccess)
	defer success.Close()
	failed := kafka.NewProducer(cfg.BrokerList(), events.TopicPaymentFailed)
	defer failed.Close()

	processor := payments.NewProcessor(paymentStore, success, failed, logger)

	consumer := kafka.NewConsumer(cfg.BrokerList(), events.TopicOrderCreated, cfg.ConsumerGroup, logger)
	defer consumer.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := kafka.WaitReady(ctx, cfg.BrokerList()[0], cfg.ConnectRetries, cfg.ConnectBackoff, cfg.RetryInterval, logger); err != nil {
			return
		}
		logger.Info("payment processor consuming", zap.String("topic", events.TopicOrderCreated))
		if err := consumer.Consume(ctx, processor.Handle); err != nil && ctx.Err() == nil {
			logger.Error("consumer stopped", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down")
	cancel()
	<-done
}

// buildPaymentStore selects the record backend: Postgres by default, or
// DynamoDB with its conditional-put idempotency guard.
func buildPaymentStore(ctx context.Context, cfg config.Payments, logger *zap.Logger) (store.PaymentStore, func(), error) {
	if cfg.PaymentStore == "dynamo" {
		client, err := store.NewDynamoClient(ctx, cfg.AWSRegion, cfg.DynamoDBEndpoint)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("payment records in DynamoDB", zap.String("table", cfg.DynamoTableName))
		return store.NewDynamoPaymentStore(client, cfg.DynamoTableName), func() {}, nil
	}

	db, err := store.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	if err := store.Migrate(db, store.SchemaPayments); err != nil {
		db.Close()
		return nil, nil, err
	}
	logger.Info("payment records in PostgreSQL")
	return store.NewPostgresPaymentStore(db), func() { db.Close() }, nil
}
