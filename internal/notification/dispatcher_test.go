package notification

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/example/orderflow/internal/directory"
	"github.com/example/orderflow/internal/events"
)

type sentMessage struct {
	to      string
	subject string
	body    string
}

type recordingNotifier struct {
	sent []sentMessage
	err  error
}

func (r *recordingNotifier) Send(to, subject, body string) error {
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, sentMessage{to: to, subject: subject, body: body})
	return nil
}

func newTestDispatcher(t *testing.T) (*Dispatcher, *recordingNotifier, func()) {
	t.Helper()

	buyerSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/buyers/b-1" {
			json.NewEncoder(w).Encode(map[string]string{"name": "alice", "email": "alice@example.com"})
			return
		}
		http.Error(w, "not found", http.StatusNotFound)
	}))
	merchantSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/merchants/m-1" {
			json.NewEncoder(w).Encode(map[string]string{"name": "shop", "email": "shop@example.com"})
			return
		}
		http.Error(w, "not found", http.StatusNotFound)
	}))

	logger := zap.NewNop()
	notifier := &recordingNotifier{}
	d := NewDispatcher(
		notifier,
		directory.NewBuyerClient(buyerSrv.URL, time.Second, logger),
		directory.NewMerchantClient(merchantSrv.URL, time.Second, logger),
		logger,
	)
	return d, notifier, func() {
		buyerSrv.Close()
		merchantSrv.Close()
	}
}

func eventBody(buyerID, merchantID string) []byte {
	data, _ := json.Marshal(events.OrderEvent{ID: "o-1", ProductID: "p-1", MerchantID: merchantID, BuyerID: buyerID})
	return data
}

func TestDispatcher_TwoSendsPerEvent(t *testing.T) {
	tests := []struct {
		topic   string
		subject string
	}{
		{events.TopicOrderCreated, "Order received"},
		{events.TopicPaymentSuccess, "Order has been purchased"},
		{events.TopicPaymentFailed, "Order purchase failed"},
	}

	for _, tt := range tests {
		t.Run(tt.topic, func(t *testing.T) {
			d, notifier, cleanup := newTestDispatcher(t)
			defer cleanup()

			err := d.Handle(context.Background(), tt.topic, eventBody("b-1", "m-1"))

			require.NoError(t, err)
			require.Len(t, notifier.sent, 2, "exactly one send to the buyer and one to the merchant")
			assert.Equal(t, "alice@example.com", notifier.sent[0].to)
			assert.Equal(t, "shop@example.com", notifier.sent[1].to)
			for _, msg := range notifier.sent {
				assert.Equal(t, tt.subject, msg.subject)
				assert.Contains(t, msg.body, "o-1")
			}
		})
	}
}

func TestDispatcher_UnknownTopicIgnored(t *testing.T) {
	d, notifier, cleanup := newTestDispatcher(t)
	defer cleanup()

	err := d.Handle(context.Background(), "order_shipped", eventBody("b-1", "m-1"))

	require.NoError(t, err)
	assert.Empty(t, notifier.sent)
}

func TestDispatcher_FallbackAddresses(t *testing.T) {
	d, notifier, cleanup := newTestDispatcher(t)
	defer cleanup()

	// Neither directory knows these ids; the derived addresses are used.
	err := d.Handle(context.Background(), events.TopicOrderCreated, eventBody("b-9", "m-9"))

	require.NoError(t, err)
	require.Len(t, notifier.sent, 2)
	assert.Equal(t, "buyerb-9@example.com", notifier.sent[0].to)
	assert.Equal(t, "merchantm-9@example.com", notifier.sent[1].to)
}

func TestDispatcher_MalformedEventDropped(t *testing.T) {
	d, notifier, cleanup := newTestDispatcher(t)
	defer cleanup()

	err := d.Handle(context.Background(), events.TopicOrderCreated, []byte("nope"))

	assert.NoError(t, err)
	assert.Empty(t, notifier.sent)
}

func TestDispatcher_SendFailureDoesNotError(t *testing.T) {
	d, notifier, cleanup := newTestDispatcher(t)
	defer cleanup()
	notifier.err = errors.New("relay down")

	err := d.Handle(context.Background(), events.TopicOrderCreated, eventBody("b-1", "m-1"))

	assert.NoError(t, err, "a failed send is an accepted, logged loss")
}
