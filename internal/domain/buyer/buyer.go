package buyer

import (
	"errors"
	"time"
)

var ErrBuyerNotFound = errors.New("buyer not found")

type Buyer struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	SSN         string    `json:"ssn"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phoneNumber"`
	CreatedAt   time.Time `json:"createdAt"`
}
