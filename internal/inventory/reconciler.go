package inventory

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/example/orderflow/internal/events"
)

// Reconciler settles reservations from payment outcomes: a success commits
// the held unit, a failure returns it. It keeps no state of its own and is
// safe against duplicate delivery because Consume and Release are guarded
// no-ops once reserved hits zero.
type Reconciler struct {
	svc    *Service
	logger *zap.Logger
}

func NewReconciler(svc *Service, logger *zap.Logger) *Reconciler {
	return &Reconciler{svc: svc, logger: logger}
}

// Handle implements the consumer handler. Unknown topics are ignored and a
// malformed body is logged and dropped; neither kills the loop.
func (r *Reconciler) Handle(ctx context.Context, topic string, value []byte) error {
	var ev events.OrderEvent
	if err := json.Unmarshal(value, &ev); err != nil {
		r.logger.Warn("drop malformed payment event", zap.String("topic", topic), zap.Error(err))
		return nil
	}

	switch topic {
	case events.TopicPaymentSuccess:
		if err := r.svc.Consume(ctx, ev.ProductID); err != nil {
			return err
		}
		r.logger.Info("reservation consumed",
			zap.String("order_id", ev.ID),
			zap.String("product_id", ev.ProductID))
	case events.TopicPaymentFailed:
		if err := r.svc.Release(ctx, ev.ProductID); err != nil {
			return err
		}
		r.logger.Info("reservation released",
			zap.String("order_id", ev.ID),
			zap.String("product_id", ev.ProductID))
	default:
		// Future event kinds flow past without effect.
	}
	return nil
}
