package merchant

import (
	"errors"
	"time"
)

var ErrMerchantNotFound = errors.New("merchant not found")

type Merchant struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	SSN            string    `json:"ssn"`
	Email          string    `json:"email"`
	PhoneNumber    string    `json:"phoneNumber"`
	AllowsDiscount bool      `json:"allowsDiscount"`
	CreatedAt      time.Time `json:"createdAt"`
}
