package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/example/orderflow/internal/directory"
	"github.com/example/orderflow/internal/events"
)

// Dispatcher reacts to saga events by notifying the buyer and the merchant,
// exactly two sends per event. It tolerates unknown topics (ignored) and
// malformed bodies (logged, dropped). A failed send is logged and the other
// recipient is still attempted; a lost notification is an accepted loss
// under at-most-once delivery.
type Dispatcher struct {
	notifier  Notifier
	buyers    *directory.BuyerClient
	merchants *directory.MerchantClient
	logger    *zap.Logger
}

func NewDispatcher(notifier Notifier, buyers *directory.BuyerClient, merchants *directory.MerchantClient, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		notifier:  notifier,
		buyers:    buyers,
		merchants: merchants,
		logger:    logger,
	}
}

// Handle implements the consumer handler for all three topics.
func (d *Dispatcher) Handle(ctx context.Context, topic string, value []byte) error {
	var ev events.OrderEvent
	if err := json.Unmarshal(value, &ev); err != nil {
		d.logger.Warn("drop malformed event", zap.String("topic", topic), zap.Error(err))
		return nil
	}

	var subject, body string
	switch topic {
	case events.TopicOrderCreated:
		subject = "Order received"
		body = fmt.Sprintf("Order %s has been received and is awaiting payment", ev.ID)
	case events.TopicPaymentSuccess:
		subject = "Order has been purchased"
		body = fmt.Sprintf("Order %s has been successfully purchased", ev.ID)
	case events.TopicPaymentFailed:
		subject = "Order purchase failed"
		body = fmt.Sprintf("Order %s purchase has failed", ev.ID)
	default:
		return nil
	}

	d.send(d.buyerEmail(ctx, ev.BuyerID), subject, body)
	d.send(d.merchantEmail(ctx, ev.MerchantID), subject, body)
	return nil
}

func (d *Dispatcher) send(to, subject, body string) {
	if err := d.notifier.Send(to, subject, body); err != nil {
		d.logger.Error("send notification",
			zap.String("to", to),
			zap.String("subject", subject),
			zap.Error(err))
	}
}

// buyerEmail resolves the recipient from the directory, falling back to a
// derived address when the directory is unreachable or the record is gone.
func (d *Dispatcher) buyerEmail(ctx context.Context, buyerID string) string {
	if rec, st := d.buyers.Get(ctx, buyerID); st == directory.Found && rec.Email != "" {
		return rec.Email
	}
	return fmt.Sprintf("buyer%s@example.com", buyerID)
}

func (d *Dispatcher) merchantEmail(ctx context.Context, merchantID string) string {
	if rec, st := d.merchants.Get(ctx, merchantID); st == directory.Found && rec.Email != "" {
		return rec.Email
	}
	return fmt.Sprintf("merchant%s@example.com", merchantID)
}
