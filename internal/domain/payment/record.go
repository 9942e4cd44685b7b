package payment

import "time"

// Record is the append-only payment outcome, keyed on the order id so that
// re-processing a redelivered event is detectable.
type Record struct {
	OrderID   string    `json:"orderId"`
	Success   bool      `json:"success"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"createdAt"`
}
