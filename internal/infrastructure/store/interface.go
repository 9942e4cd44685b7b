package store

import (
	"context"

	"github.com/example/orderflow/internal/domain/buyer"
	"github.com/example/orderflow/internal/domain/merchant"
	"github.com/example/orderflow/internal/domain/order"
	"github.com/example/orderflow/internal/domain/payment"
	"github.com/example/orderflow/internal/domain/product"
)

// OrderStore persists immutable orders. No update path exists.
type OrderStore interface {
	Insert(ctx context.Context, o *order.Order) error
	Get(ctx context.Context, id string) (*order.Order, error)
}

// PaymentStore persists payment outcomes keyed on the order id. Insert must
// be conditional: a second insert for the same order id returns
// ErrDuplicatePayment so the processor can detect a redelivered event.
type PaymentStore interface {
	Insert(ctx context.Context, rec *payment.Record) error
	GetByOrderID(ctx context.Context, orderID string) (*payment.Record, error)
}

// ProductStore owns all product mutation. Reserve, Consume and Release must
// each be a single conditional update: the availability check and the
// counter write may not be separate operations, or concurrent reservations
// can oversell.
type ProductStore interface {
	Insert(ctx context.Context, p *product.Product) error
	Get(ctx context.Context, id string) (*product.Product, error)

	// Reserve increments reserved by one iff reserved < quantity.
	// Returns product.ErrProductNotFound or product.ErrSoldOut.
	Reserve(ctx context.Context, id string) error

	// Consume decrements quantity and reserved by one iff reserved > 0;
	// otherwise it is a no-op. Missing products are also a no-op.
	Consume(ctx context.Context, id string) error

	// Release decrements reserved by one iff reserved > 0; otherwise no-op.
	Release(ctx context.Context, id string) error
}

type BuyerStore interface {
	Insert(ctx context.Context, b *buyer.Buyer) error
	Get(ctx context.Context, id string) (*buyer.Buyer, error)
}

type MerchantStore interface {
	Insert(ctx context.Context, m *merchant.Merchant) error
	Get(ctx context.Context, id string) (*merchant.Merchant, error)
}
