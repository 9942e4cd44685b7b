package payments

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/example/orderflow/internal/domain/payment"
	"github.com/example/orderflow/internal/events"
	"github.com/example/orderflow/internal/infrastructure/store"
)

// Publisher is the outcome-event side of the processor.
type Publisher interface {
	Publish(ctx context.Context, key string, event any) error
}

// Processor consumes order_created, validates the card, persists the
// outcome and publishes exactly one terminal event. Redelivery of an
// already-recorded order re-publishes the stored outcome without writing a
// second record, so a crash-before-ack or a future at-least-once upgrade
// never double-charges a side effect.
type Processor struct {
	store   store.PaymentStore
	success Publisher
	failed  Publisher
	logger  *zap.Logger
	nowFunc func() time.Time
}

func NewProcessor(paymentStore store.PaymentStore, success, failed Publisher, logger *zap.Logger) *Processor {
	return &Processor{
		store:   paymentStore,
		success: success,
		failed:  failed,
		logger:  logger,
		nowFunc: time.Now,
	}
}

// Handle implements the consumer handler for the order_created topic.
func (p *Processor) Handle(ctx context.Context, topic string, value []byte) error {
	var ev events.OrderEvent
	if err := json.Unmarshal(value, &ev); err != nil {
		p.logger.Warn("drop malformed order event", zap.Error(err))
		return nil
	}
	if ev.ID == "" {
		p.logger.Warn("drop order event without id")
		return nil
	}

	// Redelivery check first: an existing record means the order was
	// already processed, so only the outcome event is (re-)published.
	existing, err := p.store.GetByOrderID(ctx, ev.ID)
	if err != nil {
		return err
	}
	if existing != nil {
		p.logger.Info("order already processed, republishing outcome",
			zap.String("order_id", ev.ID),
			zap.Bool("success", existing.Success))
		return p.publishOutcome(ctx, ev, existing.Success)
	}

	ok, reason := payment.ValidateCard(ev.CreditCard)
	rec := &payment.Record{
		OrderID:   ev.ID,
		Success:   ok,
		Reason:    reason,
		CreatedAt: p.nowFunc(),
	}
	if err := p.store.Insert(ctx, rec); err != nil {
		// A concurrent duplicate lost the insert race; defer to the
		// stored outcome.
		if errors.Is(err, store.ErrDuplicatePayment) {
			stored, gerr := p.store.GetByOrderID(ctx, ev.ID)
			if gerr != nil || stored == nil {
				return gerr
			}
			return p.publishOutcome(ctx, ev, stored.Success)
		}
		return err
	}

	if ok {
		p.logger.Info("payment succeeded", zap.String("order_id", ev.ID))
	} else {
		p.logger.Info("payment failed",
			zap.String("order_id", ev.ID),
			zap.String("reason", reason))
	}
	return p.publishOutcome(ctx, ev, ok)
}

// publishOutcome forwards the original payload unchanged on the terminal
// topic matching the recorded outcome.
func (p *Processor) publishOutcome(ctx context.Context, ev events.OrderEvent, success bool) error {
	if success {
		return p.success.Publish(ctx, ev.ID, ev)
	}
	return p.failed.Publish(ctx, ev.ID, ev)
}
