package order

import (
	"errors"
	"math"
	"strings"
	"time"
)

var ErrOrderNotFound = errors.New("order not found")

// CreditCard is the payment instrument as it travels on the wire. Events
// carry it unmasked because the payment processor validates the raw number;
// read paths must go through MaskCardNumber.
type CreditCard struct {
	CardNumber      string `json:"cardNumber"`
	ExpirationMonth int    `json:"expirationMonth"`
	ExpirationYear  int    `json:"expirationYear"`
	CVC             int    `json:"cvc"`
}

// Order is immutable once persisted. It carries no status field: lifecycle
// state is derived from the payment event stream, not stored here.
type Order struct {
	ID         string     `json:"id"`
	ProductID  string     `json:"productId"`
	MerchantID string     `json:"merchantId"`
	BuyerID    string     `json:"buyerId"`
	CreditCard CreditCard `json:"creditCard"`
	Discount   float64    `json:"discount"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// View is the client-facing read model: card masked, price resolved.
type View struct {
	ProductID  string  `json:"productId"`
	MerchantID string  `json:"merchantId"`
	BuyerID    string  `json:"buyerId"`
	CardNumber string  `json:"cardNumber"`
	TotalPrice float64 `json:"totalPrice"`
}

// MaskCardNumber replaces every character before the last four with '*'.
// Numbers shorter than four characters are masked entirely.
func MaskCardNumber(cardNumber string) string {
	if len(cardNumber) <= 4 {
		return strings.Repeat("*", len(cardNumber))
	}
	return strings.Repeat("*", len(cardNumber)-4) + cardNumber[len(cardNumber)-4:]
}

// TotalPrice applies the discount to the unit price, rounded to cents.
func TotalPrice(price, discount float64) float64 {
	return math.Round(price*(1-discount)*100) / 100
}
