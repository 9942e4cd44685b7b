package store

import (
	"context"
	"sync"

	"github.com/example/orderflow/internal/domain/buyer"
	"github.com/example/orderflow/internal/domain/merchant"
	"github.com/example/orderflow/internal/domain/order"
	"github.com/example/orderflow/internal/domain/payment"
	"github.com/example/orderflow/internal/domain/product"
)

// In-memory implementations of the store interfaces. They back unit tests
// and local runs without Postgres. The product store performs its
// conditional updates inside a single critical section, which gives the
// same check-and-write atomicity the SQL stores get from conditional
// UPDATE statements.

type MemoryOrderStore struct {
	mu     sync.RWMutex
	orders map[string]order.Order
}

func NewMemoryOrderStore() *MemoryOrderStore {
	return &MemoryOrderStore{orders: make(map[string]order.Order)}
}

func (s *MemoryOrderStore) Insert(ctx context.Context, o *order.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[o.ID] = *o
	return nil
}

func (s *MemoryOrderStore) Get(ctx context.Context, id string) (*order.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, order.ErrOrderNotFound
	}
	return &o, nil
}

type MemoryPaymentStore struct {
	mu      sync.RWMutex
	records map[string]payment.Record
}

func NewMemoryPaymentStore() *MemoryPaymentStore {
	return &MemoryPaymentStore{records: make(map[string]payment.Record)}
}

func (s *MemoryPaymentStore) Insert(ctx context.Context, rec *payment.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[rec.OrderID]; ok {
		return ErrDuplicatePayment
	}
	s.records[rec.OrderID] = *rec
	return nil
}

func (s *MemoryPaymentStore) GetByOrderID(ctx context.Context, orderID string) (*payment.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[orderID]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

type MemoryProductStore struct {
	mu       sync.Mutex
	products map[string]product.Product
}

func NewMemoryProductStore() *MemoryProductStore {
	return &MemoryProductStore{products: make(map[string]product.Product)}
}

func (s *MemoryProductStore) Insert(ctx context.Context, p *product.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = *p
	return nil
}

func (s *MemoryProductStore) Get(ctx context.Context, id string) (*product.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return nil, product.ErrProductNotFound
	}
	return &p, nil
}

func (s *MemoryProductStore) Reserve(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return product.ErrProductNotFound
	}
	if p.Reserved >= p.Quantity {
		return product.ErrSoldOut
	}
	p.Reserved++
	s.products[id] = p
	return nil
}

func (s *MemoryProductStore) Consume(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok || p.Reserved <= 0 {
		return nil
	}
	p.Quantity--
	p.Reserved--
	s.products[id] = p
	return nil
}

func (s *MemoryProductStore) Release(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok || p.Reserved <= 0 {
		return nil
	}
	p.Reserved--
	s.products[id] = p
	return nil
}

type MemoryBuyerStore struct {
	mu     sync.RWMutex
	buyers map[string]buyer.Buyer
}

func NewMemoryBuyerStore() *MemoryBuyerStore {
	return &MemoryBuyerStore{buyers: make(map[string]buyer.Buyer)}
}

func (s *MemoryBuyerStore) Insert(ctx context.Context, b *buyer.Buyer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buyers[b.ID] = *b
	return nil
}

func (s *MemoryBuyerStore) Get(ctx context.Context, id string) (*buyer.Buyer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.buyers[id]
	if !ok {
		return nil, buyer.ErrBuyerNotFound
	}
	return &b, nil
}

type MemoryMerchantStore struct {
	mu        sync.RWMutex
	merchants map[string]merchant.Merchant
}

func NewMemoryMerchantStore() *MemoryMerchantStore {
	return &MemoryMerchantStore{merchants: make(map[string]merchant.Merchant)}
}

func (s *MemoryMerchantStore) Insert(ctx context.Context, m *merchant.Merchant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.merchants[m.ID] = *m
	return nil
}

func (s *MemoryMerchantStore) Get(ctx context.Context, id string) (*merchant.Merchant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.merchants[id]
	if !ok {
		return nil, merchant.ErrMerchantNotFound
	}
	return &m, nil
}
