package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// FiatPlaces is the number of minor-unit places kept for fiat amounts.
const FiatPlaces int32 = 2

// AssetPlaces is the precision used when presenting asset quantities.
const AssetPlaces int32 = 8

// Money is an amount tagged with the currency it is denominated in.
// A bare decimal never crosses a component boundary as a fiat amount.
type Money struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

// NewMoney builds a Money value with a normalized currency code.
func NewMoney(amount decimal.Decimal, currency string) Money {
	return Money{Amount: amount, Currency: NormalizeCurrencyCode(currency)}
}

// Rounded returns m rounded to FiatPlaces.
func (m Money) Rounded() Money {
	return Money{Amount: m.Amount.Round(FiatPlaces), Currency: m.Currency}
}

// IsPositive reports whether the amount is strictly greater than zero.
func (m Money) IsPositive() bool {
	return m.Amount.IsPositive()
}

func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.Amount.StringFixed(FiatPlaces), m.Currency)
}
