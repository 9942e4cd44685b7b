package product

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrSoldOut         = errors.New("product is sold out")
)

// Product tracks total owned units and provisional holds. The invariant
// 0 <= reserved <= quantity must hold after every mutation.
type Product struct {
	ID         string    `json:"id"`
	MerchantID string    `json:"merchantId"`
	Name       string    `json:"productName"`
	Price      float64   `json:"price"`
	Quantity   int       `json:"quantity"`
	Reserved   int       `json:"reserved"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Available returns the units not held by a pending reservation.
func (p *Product) Available() int {
	return p.Quantity - p.Reserved
}

// CheckInvariant reports a violation of the reservation bounds.
func (p *Product) CheckInvariant() error {
	if p.Reserved < 0 || p.Reserved > p.Quantity {
		return fmt.Errorf("product %s: reserved=%d out of bounds [0,%d]", p.ID, p.Reserved, p.Quantity)
	}
	return nil
}
