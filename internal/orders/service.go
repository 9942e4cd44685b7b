package orders

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/orderflow/internal/directory"
	"github.com/example/orderflow/internal/domain/order"
	"github.com/example/orderflow/internal/events"
	"github.com/example/orderflow/internal/infrastructure/store"
)

// Validation failures, one per precondition so the rejection names the
// violated rule. All map to a 400 with no side effects.
var (
	ErrMerchantNotFound    = errors.New("Merchant does not exist")
	ErrBuyerNotFound       = errors.New("Buyer does not exist")
	ErrProductNotFound     = errors.New("Product does not exist")
	ErrOwnershipMismatch   = errors.New("Product does not belong to merchant")
	ErrDiscountNotAllowed  = errors.New("Merchant does not allow discount")
	ErrSoldOut             = errors.New("Product is sold out")
	ErrReservationRejected = errors.New("Reservation failed")
)

// Publisher is the slice of the Kafka producer the service needs.
type Publisher interface {
	Publish(ctx context.Context, key string, event any) error
}

// CreateRequest is the POST /orders payload.
type CreateRequest struct {
	ProductID  string           `json:"productId" validate:"required"`
	MerchantID string           `json:"merchantId" validate:"required"`
	BuyerID    string           `json:"buyerId" validate:"required"`
	CreditCard order.CreditCard `json:"creditCard" validate:"required"`
	Discount   float64          `json:"discount" validate:"gte=0,lte=1"`
}

// Service orchestrates order creation: synchronous validation fan-out,
// reservation, persistence, then the order_created publish.
type Service struct {
	store     store.OrderStore
	merchants *directory.MerchantClient
	buyers    *directory.BuyerClient
	inventory *directory.InventoryClient
	producer  Publisher
	logger    *zap.Logger
}

func NewService(
	orderStore store.OrderStore,
	merchants *directory.MerchantClient,
	buyers *directory.BuyerClient,
	inventory *directory.InventoryClient,
	producer Publisher,
	logger *zap.Logger,
) *Service {
	return &Service{
		store:     orderStore,
		merchants: merchants,
		buyers:    buyers,
		inventory: inventory,
		producer:  producer,
		logger:    logger,
	}
}

// Create runs the validation chain in fixed order, short-circuiting on the
// first failure. A collaborator outage is rejected like absence but the
// distinction is preserved in the logs by the directory clients. Only after
// every precondition and the reservation succeed is the order persisted.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*order.Order, error) {
	mrec, st := s.merchants.Get(ctx, req.MerchantID)
	if st != directory.Found {
		return nil, ErrMerchantNotFound
	}

	if _, st := s.buyers.Get(ctx, req.BuyerID); st != directory.Found {
		return nil, ErrBuyerNotFound
	}

	prec, st := s.inventory.GetProduct(ctx, req.ProductID)
	if st != directory.Found {
		return nil, ErrProductNotFound
	}

	if prec.MerchantID != req.MerchantID {
		return nil, ErrOwnershipMismatch
	}

	if req.Discount > 0 && !mrec.AllowsDiscount {
		return nil, ErrDiscountNotAllowed
	}

	res, st := s.inventory.Reserve(ctx, req.ProductID)
	if st != directory.Found {
		return nil, ErrReservationRejected
	}
	if !res.Success {
		s.logger.Info("reservation rejected",
			zap.String("product_id", req.ProductID),
			zap.String("message", res.Message))
		return nil, ErrSoldOut
	}

	o := &order.Order{
		ID:         uuid.New().String(),
		ProductID:  req.ProductID,
		MerchantID: req.MerchantID,
		BuyerID:    req.BuyerID,
		CreditCard: req.CreditCard,
		Discount:   req.Discount,
		CreatedAt:  time.Now(),
	}
	if err := s.store.Insert(ctx, o); err != nil {
		return nil, err
	}

	// Publish failure does not roll back the order or the reservation.
	// The order stands; replaying unpublished orders is an operational
	// recovery concern, not handled inline.
	if err := s.producer.Publish(ctx, o.ID, events.FromOrder(o)); err != nil {
		s.logger.Error("publish order_created failed, order kept",
			zap.String("order_id", o.ID),
			zap.Error(err))
	} else {
		s.logger.Info("order created", zap.String("order_id", o.ID))
	}

	return o, nil
}

// Get returns the masked client view. The unit price comes from the
// inventory service at read time; if the lookup fails the price falls back
// to zero, matching the write model which never stores price.
func (s *Service) Get(ctx context.Context, id string) (*order.View, error) {
	o, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	var price float64
	if prec, st := s.inventory.GetProduct(ctx, o.ProductID); st == directory.Found {
		price = prec.Price
	} else {
		s.logger.Warn("product lookup failed on order read",
			zap.String("order_id", id),
			zap.String("product_id", o.ProductID),
			zap.String("status", st.String()))
	}

	return &order.View{
		ProductID:  o.ProductID,
		MerchantID: o.MerchantID,
		BuyerID:    o.BuyerID,
		CardNumber: order.MaskCardNumber(o.CreditCard.CardNumber),
		TotalPrice: order.TotalPrice(price, o.Discount),
	}, nil
}

// IsValidationError reports whether err is one of the precondition
// rejections, i.e. a client-facing 400 rather than a server failure.
func IsValidationError(err error) bool {
	for _, v := range []error{
		ErrMerchantNotFound, ErrBuyerNotFound, ErrProductNotFound,
		ErrOwnershipMismatch, ErrDiscountNotAllowed, ErrSoldOut, ErrReservationRejected,
	} {
		if errors.Is(err, v) {
			return true
		}
	}
	return false
}
