package payment

import (
	"strconv"

	"github.com/example/orderflow/internal/domain/order"
)

// Validation outcomes recorded as the payment reason. The texts are part of
// the stored record contract, so keep them stable.
const (
	ReasonOK       = "Validation successful"
	ReasonBadCard  = "Invalid card number"
	ReasonBadMonth = "Invalid expiration month"
	ReasonBadYear  = "Invalid expiration year"
	ReasonBadCVC   = "Invalid CVC"
)

// ValidateCard checks the payment instrument. It is pure: the first failing
// rule's message becomes the reason, rules run in a fixed order.
func ValidateCard(card order.CreditCard) (bool, string) {
	if !luhnValid(card.CardNumber) {
		return false, ReasonBadCard
	}
	if card.ExpirationMonth < 1 || card.ExpirationMonth > 12 {
		return false, ReasonBadMonth
	}
	if card.ExpirationYear < 1000 || card.ExpirationYear > 9999 {
		return false, ReasonBadYear
	}
	cvc := strconv.Itoa(card.CVC)
	if len(cvc) != 3 {
		return false, ReasonBadCVC
	}
	return true, ReasonOK
}

// luhnValid runs the Luhn checksum: digits at odd positions from the right
// are summed unchanged, digits at even positions are doubled and their own
// digits summed. Valid iff the total is a multiple of ten.
func luhnValid(cardNumber string) bool {
	if cardNumber == "" {
		return false
	}
	sum := 0
	pos := 0
	for i := len(cardNumber) - 1; i >= 0; i-- {
		c := cardNumber[i]
		if c < '0' || c > '9' {
			return false
		}
		d := int(c - '0')
		pos++
		if pos%2 == 0 {
			d *= 2
			if d > 9 {
				d = d/10 + d%10
			}
		}
		sum += d
	}
	return sum%10 == 0
}
