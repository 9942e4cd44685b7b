package kafka

import (
	"context"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageHandler processes one message. The offset is committed by the
// reader on receipt, before the handler runs, so delivery is at most once:
// a crash mid-handler drops the message. Handlers must not assume they will
// see every event and should be idempotent where the domain allows it.
type MessageHandler func(ctx context.Context, topic string, value []byte) error

// Consumer runs a long-lived read loop on one topic for one consumer group.
type Consumer struct {
	reader *kafka.Reader
	logger *zap.Logger
}

func NewConsumer(brokers []string, topic, groupID string, logger *zap.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 10e3, // 10KB
		MaxBytes: 10e6, // 10MB
	})
	return &Consumer{reader: reader, logger: logger}
}

// Consume reads until the context is cancelled. Read and handler errors are
// logged and the loop continues; a malformed or failed message never kills
// the consumer.
func (c *Consumer) Consume(ctx context.Context, handler MessageHandler) error {
	topic := c.reader.Config().Topic
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				c.logger.Error("read message", zap.String("topic", topic), zap.Error(err))
				continue
			}

			if err := handler(ctx, topic, msg.Value); err != nil {
				c.logger.Error("handle message",
					zap.String("topic", topic),
					zap.String("key", string(msg.Key)),
					zap.Error(err))
			}
		}
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
