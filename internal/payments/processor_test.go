package payments

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/example/orderflow/internal/domain/order"
	"github.com/example/orderflow/internal/events"
	"github.com/example/orderflow/internal/infrastructure/store"
)

type capturedPublish struct {
	key   string
	event events.OrderEvent
}

type fakePublisher struct {
	published []capturedPublish
}

func (f *fakePublisher) Publish(ctx context.Context, key string, event any) error {
	f.published = append(f.published, capturedPublish{key: key, event: event.(events.OrderEvent)})
	return nil
}

func newTestProcessor() (*Processor, *store.MemoryPaymentStore, *fakePublisher, *fakePublisher) {
	paymentStore := store.NewMemoryPaymentStore()
	success := &fakePublisher{}
	failed := &fakePublisher{}
	p := NewProcessor(paymentStore, success, failed, zap.NewNop())
	return p, paymentStore, success, failed
}

func orderEvent(id, cardNumber string) []byte {
	ev := events.OrderEvent{
		ID:         id,
		ProductID:  "p-1",
		MerchantID: "m-1",
		BuyerID:    "b-1",
		CreditCard: order.CreditCard{
			CardNumber:      cardNumber,
			ExpirationMonth: 12,
			ExpirationYear:  2030,
			CVC:             123,
		},
		Discount: 0.1,
	}
	data, _ := json.Marshal(ev)
	return data
}

func TestProcessor_ValidCardPublishesSuccess(t *testing.T) {
	p, paymentStore, success, failed := newTestProcessor()

	err := p.Handle(context.Background(), events.TopicOrderCreated, orderEvent("o-1", "4532015112830366"))

	require.NoError(t, err)
	require.Len(t, success.published, 1)
	assert.Empty(t, failed.published)

	// The original payload is forwarded unchanged, raw card included.
	ev := success.published[0].event
	assert.Equal(t, "o-1", ev.ID)
	assert.Equal(t, "4532015112830366", ev.CreditCard.CardNumber)
	assert.Equal(t, 0.1, ev.Discount)

	rec, err := paymentStore.GetByOrderID(context.Background(), "o-1")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.True(t, rec.Success)
}

func TestProcessor_InvalidCardPublishesFailure(t *testing.T) {
	p, paymentStore, success, failed := newTestProcessor()

	err := p.Handle(context.Background(), events.TopicOrderCreated, orderEvent("o-1", "1234567890123456"))

	require.NoError(t, err)
	assert.Empty(t, success.published)
	require.Len(t, failed.published, 1)

	rec, err := paymentStore.GetByOrderID(context.Background(), "o-1")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.False(t, rec.Success)
	assert.Equal(t, "Invalid card number", rec.Reason)
}

// Redelivering the same order_created event must not create a second
// record; the stored outcome is re-published instead.
func TestProcessor_RedeliveryIsIdempotent(t *testing.T) {
	p, paymentStore, success, failed := newTestProcessor()
	ctx := context.Background()
	body := orderEvent("o-1", "4532015112830366")

	require.NoError(t, p.Handle(ctx, events.TopicOrderCreated, body))
	require.NoError(t, p.Handle(ctx, events.TopicOrderCreated, body))

	assert.Len(t, success.published, 2, "outcome re-published on redelivery")
	assert.Empty(t, failed.published)

	rec, err := paymentStore.GetByOrderID(ctx, "o-1")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.True(t, rec.Success)
}

func TestProcessor_RedeliveryReplaysStoredOutcome(t *testing.T) {
	p, _, success, failed := newTestProcessor()
	ctx := context.Background()

	require.NoError(t, p.Handle(ctx, events.TopicOrderCreated, orderEvent("o-1", "1234567890123456")))
	require.NoError(t, p.Handle(ctx, events.TopicOrderCreated, orderEvent("o-1", "1234567890123456")))

	assert.Empty(t, success.published)
	assert.Len(t, failed.published, 2, "failure outcome replayed, never re-validated into success")
}

func TestProcessor_MalformedEventDropped(t *testing.T) {
	p, paymentStore, success, failed := newTestProcessor()

	err := p.Handle(context.Background(), events.TopicOrderCreated, []byte("{not json"))

	assert.NoError(t, err, "malformed body must not kill the consumer loop")
	assert.Empty(t, success.published)
	assert.Empty(t, failed.published)

	rec, _ := paymentStore.GetByOrderID(context.Background(), "")
	assert.Nil(t, rec)
}

func TestProcessor_EventWithoutIDDropped(t *testing.T) {
	p, _, success, failed := newTestProcessor()

	err := p.Handle(context.Background(), events.TopicOrderCreated, []byte(`{"productId":"p-1"}`))

	assert.NoError(t, err)
	assert.Empty(t, success.published)
	assert.Empty(t, failed.published)
}
