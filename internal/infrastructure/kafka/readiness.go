package kafka

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// dialBroker is replaced in tests.
var dialBroker = func(ctx context.Context, address string) error {
	conn, err := kafka.DialContext(ctx, "tcp", address)
	if err != nil {
		return err
	}
	return conn.Close()
}

// WaitReady blocks until a broker accepts a connection. It probes with
// bounded attempts at a fixed backoff; when a round is exhausted it logs
// and falls back to a coarser interval instead of giving up, so a consumer
// process survives a bus outage at startup. Returns the context error on
// cancellation.
func WaitReady(ctx context.Context, broker string, attempts int, backoff, retryInterval time.Duration, logger *zap.Logger) error {
	for {
		for i := 0; i < attempts; i++ {
			err := dialBroker(ctx, broker)
			if err == nil {
				return nil
			}
			logger.Warn("broker not reachable",
				zap.String("broker", broker),
				zap.Int("attempt", i+1),
				zap.Error(err))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}
		logger.Error("broker connection attempts exhausted, backing off",
			zap.String("broker", broker),
			zap.Duration("retry_in", retryInterval))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryInterval):
		}
	}
}
