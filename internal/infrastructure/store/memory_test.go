package store

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/orderflow/internal/domain/payment"
	"github.com/example/orderflow/internal/domain/product"
)

func seedProduct(t *testing.T, s *MemoryProductStore, id string, quantity, reserved int) {
	t.Helper()
	err := s.Insert(context.Background(), &product.Product{
		ID:         id,
		MerchantID: "m-1",
		Name:       "widget",
		Price:      9.99,
		Quantity:   quantity,
		Reserved:   reserved,
	})
	require.NoError(t, err)
}

func TestMemoryProductStore_Reserve(t *testing.T) {
	s := NewMemoryProductStore()
	ctx := context.Background()
	seedProduct(t, s, "p-1", 2, 0)

	require.NoError(t, s.Reserve(ctx, "p-1"))
	require.NoError(t, s.Reserve(ctx, "p-1"))

	err := s.Reserve(ctx, "p-1")
	assert.ErrorIs(t, err, product.ErrSoldOut)

	p, err := s.Get(ctx, "p-1")
	require.NoError(t, err)
	assert.Equal(t, 2, p.Reserved)
	assert.Equal(t, 0, p.Available())
}

func TestMemoryProductStore_Reserve_NotFound(t *testing.T) {
	s := NewMemoryProductStore()

	err := s.Reserve(context.Background(), "missing")

	assert.ErrorIs(t, err, product.ErrProductNotFound)
}

// Concurrent reservations on a product with quantity Q must yield exactly
// min(N, Q) successes: the check and the increment commit atomically.
func TestMemoryProductStore_ConcurrentReserve(t *testing.T) {
	const (
		attempts = 100
		quantity = 7
	)

	s := NewMemoryProductStore()
	ctx := context.Background()
	seedProduct(t, s, "p-1", quantity, 0)

	var wg sync.WaitGroup
	var mu sync.Mutex
	successes := 0
	soldOut := 0

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.Reserve(ctx, "p-1")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, product.ErrSoldOut):
				soldOut++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, quantity, successes)
	assert.Equal(t, attempts-quantity, soldOut)

	p, err := s.Get(ctx, "p-1")
	require.NoError(t, err)
	assert.Equal(t, quantity, p.Reserved)
	assert.NoError(t, p.CheckInvariant())
}

func TestMemoryProductStore_Consume(t *testing.T) {
	s := NewMemoryProductStore()
	ctx := context.Background()
	seedProduct(t, s, "p-1", 3, 1)

	require.NoError(t, s.Consume(ctx, "p-1"))

	p, _ := s.Get(ctx, "p-1")
	assert.Equal(t, 2, p.Quantity)
	assert.Equal(t, 0, p.Reserved)

	// Duplicate delivery: reserved is zero, so the second consume is a
	// no-op rather than an oversell.
	require.NoError(t, s.Consume(ctx, "p-1"))

	p, _ = s.Get(ctx, "p-1")
	assert.Equal(t, 2, p.Quantity)
	assert.Equal(t, 0, p.Reserved)
	assert.NoError(t, p.CheckInvariant())
}

func TestMemoryProductStore_Release(t *testing.T) {
	s := NewMemoryProductStore()
	ctx := context.Background()
	seedProduct(t, s, "p-1", 3, 1)

	require.NoError(t, s.Release(ctx, "p-1"))

	p, _ := s.Get(ctx, "p-1")
	assert.Equal(t, 3, p.Quantity)
	assert.Equal(t, 0, p.Reserved)

	require.NoError(t, s.Release(ctx, "p-1"))

	p, _ = s.Get(ctx, "p-1")
	assert.Equal(t, 0, p.Reserved)
	assert.NoError(t, p.CheckInvariant())
}

func TestMemoryProductStore_ConcurrentMixedOps(t *testing.T) {
	s := NewMemoryProductStore()
	ctx := context.Background()
	seedProduct(t, s, "p-1", 10, 0)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(3)
		go func() {
			defer wg.Done()
			_ = s.Reserve(ctx, "p-1")
		}()
		go func() {
			defer wg.Done()
			_ = s.Consume(ctx, "p-1")
		}()
		go func() {
			defer wg.Done()
			_ = s.Release(ctx, "p-1")
		}()
	}
	wg.Wait()

	p, err := s.Get(ctx, "p-1")
	require.NoError(t, err)
	assert.NoError(t, p.CheckInvariant(), "reserved must stay within [0, quantity] under any interleaving")
}

func TestMemoryPaymentStore_DuplicateInsert(t *testing.T) {
	s := NewMemoryPaymentStore()
	ctx := context.Background()

	rec := &payment.Record{OrderID: "o-1", Success: true, Reason: "Validation successful"}
	require.NoError(t, s.Insert(ctx, rec))

	err := s.Insert(ctx, &payment.Record{OrderID: "o-1", Success: false, Reason: "Invalid CVC"})
	assert.ErrorIs(t, err, ErrDuplicatePayment)

	stored, err := s.GetByOrderID(ctx, "o-1")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.True(t, stored.Success, "first record wins")
}

func TestMemoryPaymentStore_GetMissing(t *testing.T) {
	s := NewMemoryPaymentStore()

	rec, err := s.GetByOrderID(context.Background(), "missing")

	require.NoError(t, err)
	assert.Nil(t, rec)
}
