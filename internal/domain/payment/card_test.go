package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/example/orderflow/internal/domain/order"
)

func validCard() order.CreditCard {
	return order.CreditCard{
		CardNumber:      "4532015112830366",
		ExpirationMonth: 12,
		ExpirationYear:  2030,
		CVC:             123,
	}
}

func TestValidateCard_Valid(t *testing.T) {
	ok, reason := ValidateCard(validCard())

	assert.True(t, ok)
	assert.Equal(t, ReasonOK, reason)
}

func TestValidateCard_Luhn(t *testing.T) {
	tests := []struct {
		name       string
		cardNumber string
		valid      bool
	}{
		{"known valid number", "4532015112830366", true},
		{"known invalid number", "1234567890123456", false},
		{"empty", "", false},
		{"non-digit characters", "4532a15112830366", false},
		{"short valid checksum", "59", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			card := validCard()
			card.CardNumber = tt.cardNumber

			ok, reason := ValidateCard(card)

			assert.Equal(t, tt.valid, ok)
			if !tt.valid {
				assert.Equal(t, ReasonBadCard, reason)
			}
		})
	}
}

func TestValidateCard_ExpirationMonth(t *testing.T) {
	tests := []struct {
		month int
		valid bool
	}{
		{0, false},
		{1, true},
		{12, true},
		{13, false},
		{-1, false},
	}

	for _, tt := range tests {
		card := validCard()
		card.ExpirationMonth = tt.month

		ok, reason := ValidateCard(card)

		assert.Equal(t, tt.valid, ok, "month %d", tt.month)
		if !tt.valid {
			assert.Equal(t, ReasonBadMonth, reason)
		}
	}
}

func TestValidateCard_ExpirationYear(t *testing.T) {
	tests := []struct {
		year  int
		valid bool
	}{
		{999, false},
		{1000, true},
		{9999, true},
		{10000, false},
	}

	for _, tt := range tests {
		card := validCard()
		card.ExpirationYear = tt.year

		ok, reason := ValidateCard(card)

		assert.Equal(t, tt.valid, ok, "year %d", tt.year)
		if !tt.valid {
			assert.Equal(t, ReasonBadYear, reason)
		}
	}
}

func TestValidateCard_CVC(t *testing.T) {
	tests := []struct {
		cvc   int
		valid bool
	}{
		{12, false},
		{123, true},
		{999, true},
		{1234, false},
	}

	for _, tt := range tests {
		card := validCard()
		card.CVC = tt.cvc

		ok, reason := ValidateCard(card)

		assert.Equal(t, tt.valid, ok, "cvc %d", tt.cvc)
		if !tt.valid {
			assert.Equal(t, ReasonBadCVC, reason)
		}
	}
}

func TestValidateCard_FirstFailureWins(t *testing.T) {
	// Several rules broken at once; the Luhn failure is reported because
	// the rules run in a fixed order.
	card := order.CreditCard{
		CardNumber:      "1234567890123456",
		ExpirationMonth: 13,
		ExpirationYear:  999,
		CVC:             12,
	}

	ok, reason := ValidateCard(card)

	assert.False(t, ok)
	assert.Equal(t, ReasonBadCard, reason)
}
