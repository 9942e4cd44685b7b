package events

import "github.com/example/orderflow/internal/domain/order"

// Topic names shared by every producer and consumer.
const (
	TopicOrderCreated   = "order_created"
	TopicPaymentSuccess = "payment_success"
	TopicPaymentFailed  = "payment_failed"
)

// OrderEvent is the payload published on all three topics. The payment
// processor needs the raw card number, so the instrument travels unmasked;
// the bus is a trusted internal boundary.
type OrderEvent struct {
	ID         string           `json:"id"`
	ProductID  string           `json:"productId"`
	MerchantID string           `json:"merchantId"`
	BuyerID    string           `json:"buyerId"`
	CreditCard order.CreditCard `json:"creditCard"`
	Discount   float64          `json:"discount"`
}

// FromOrder builds the wire payload for an order.
func FromOrder(o *order.Order) OrderEvent {
	return OrderEvent{
		ID:         o.ID,
		ProductID:  o.ProductID,
		MerchantID: o.MerchantID,
		BuyerID:    o.BuyerID,
		CreditCard: o.CreditCard,
		Discount:   o.Discount,
	}
}
