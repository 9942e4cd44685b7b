package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/orderflow/internal/domain/product"
	"github.com/example/orderflow/internal/infrastructure/store"
)

// CreateRequest is the POST /products payload.
type CreateRequest struct {
	MerchantID string  `json:"merchantId" validate:"required"`
	Name       string  `json:"productName" validate:"required"`
	Price      float64 `json:"price" validate:"gte=0"`
	Quantity   int     `json:"quantity" validate:"gte=0"`
}

// Service is the inventory ledger: it owns every product mutation. The
// conditional-update contract lives in the ProductStore; the service adds
// logging and the invariant re-check after mutations.
type Service struct {
	store  store.ProductStore
	logger *zap.Logger
}

func NewService(productStore store.ProductStore, logger *zap.Logger) *Service {
	return &Service{store: productStore, logger: logger}
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (*product.Product, error) {
	p := &product.Product{
		ID:         uuid.New().String(),
		MerchantID: req.MerchantID,
		Name:       req.Name,
		Price:      req.Price,
		Quantity:   req.Quantity,
		Reserved:   0,
		CreatedAt:  time.Now(),
	}
	if err := s.store.Insert(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Get(ctx context.Context, id string) (*product.Product, error) {
	return s.store.Get(ctx, id)
}

// Reserve places a provisional hold on one unit. The store performs the
// check and the increment as one conditional update, so concurrent
// reservations on the same product cannot oversell.
func (s *Service) Reserve(ctx context.Context, id string) error {
	if err := s.store.Reserve(ctx, id); err != nil {
		return err
	}
	s.assertInvariant(ctx, id)
	return nil
}

// Consume commits a reservation after a successful payment. Duplicate or
// stray deliveries hit the reserved > 0 guard and become no-ops.
func (s *Service) Consume(ctx context.Context, id string) error {
	if err := s.store.Consume(ctx, id); err != nil {
		return err
	}
	s.assertInvariant(ctx, id)
	return nil
}

// Release returns a reserved unit after a failed payment.
func (s *Service) Release(ctx context.Context, id string) error {
	if err := s.store.Release(ctx, id); err != nil {
		return err
	}
	s.assertInvariant(ctx, id)
	return nil
}

// assertInvariant re-reads the product and logs loudly if the reservation
// bounds are violated. The conditional updates should make this
// unreachable; the log is the tripwire if a store implementation regresses.
func (s *Service) assertInvariant(ctx context.Context, id string) {
	p, err := s.store.Get(ctx, id)
	if err != nil {
		return
	}
	if err := p.CheckInvariant(); err != nil {
		s.logger.Error("inventory invariant violated", zap.Error(err))
	}
}
