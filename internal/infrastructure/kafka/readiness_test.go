package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestWaitReady_SucceedsAfterRetries(t *testing.T) {
	orig := dialBroker
	defer func() { dialBroker = orig }()

	calls := 0
	dialBroker = func(ctx context.Context, address string) error {
		calls++
		if calls < 3 {
			return errors.New("connection refused")
		}
		return nil
	}

	err := WaitReady(context.Background(), "localhost:9092", 5, time.Millisecond, time.Millisecond, zap.NewNop())

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestWaitReady_KeepsProbingAfterExhaustedRound(t *testing.T) {
	orig := dialBroker
	defer func() { dialBroker = orig }()

	calls := 0
	dialBroker = func(ctx context.Context, address string) error {
		calls++
		if calls <= 4 {
			return errors.New("connection refused")
		}
		return nil
	}

	// Two attempts per round: the first round exhausts, the coarser
	// interval passes, and the third round's first probe succeeds.
	err := WaitReady(context.Background(), "localhost:9092", 2, time.Millisecond, time.Millisecond, zap.NewNop())

	require.NoError(t, err)
	assert.Equal(t, 5, calls)
}

func TestWaitReady_CancelledContext(t *testing.T) {
	orig := dialBroker
	defer func() { dialBroker = orig }()

	dialBroker = func(ctx context.Context, address string) error {
		return errors.New("connection refused")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := WaitReady(ctx, "localhost:9092", 1000, time.Millisecond, time.Second, zap.NewNop())

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
