package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"go.uber.org/zap"

	"github.com/example/orderflow/internal/config"
	"github.com/example/orderflow/internal/directory"
	"github.com/example/orderflow/internal/events"
	"github.com/example/orderflow/internal/infrastructure/kafka"
	"github.com/example/orderflow/internal/notification"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	var cfg config.Notifier
	if err := config.Load(&cfg); err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var notifier notification.Notifier
	if cfg.SMTPHost != "" {
		notifier = notification.NewSMTPNotifier(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom)
		logger.Info("notifying via SMTP", zap.String("host", cfg.SMTPHost), zap.String("port", cfg.SMTPPort))
	} else {
		notifier = notification.NewLogNotifier(logger)
		logger.Info("no SMTP host configured, notifications go to the log")
	}

	buyers := directory.NewBuyerClient(cfg.BuyerServiceURL, cfg.ClientTimeout, logger)
	merchants := directory.NewMerchantClient(cfg.MerchantServiceURL, cfg.ClientTimeout, logger)
	dispatcher := notification.NewDispatcher(notifier, buyers, merchants, logger)

	topics := []string{events.TopicOrderCreated, events.TopicPaymentSuccess, events.TopicPaymentFailed}

	var wg sync.WaitGroup
	for _, topic := range topics {
		consumer := kafka.NewConsumer(cfg.BrokerList(), topic, cfg.ConsumerGroup, logger)
		defer consumer.Close()

		wg.Add(1)
		go func(topic string, c *kafka.Consumer) {
			defer wg.Done()
			if err := kafka.WaitReady(ctx, cfg.BrokerList()[0], cfg.ConnectRetries, cfg.ConnectBackoff, cfg.RetryInterval, logger); err != nil {
				return
			}
			logger.Info("notifier consuming", zap.String("topic", topic))
			if err := c.Consume(ctx, dispatcher.Handle); err != nil && ctx.Err() == nil {
				logger.Error("consumer stopped", zap.String("topic", topic), zap.Error(err))
			}
		}(topic, consumer)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down")
	cancel()
	wg.Wait()
}
