package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RateTable maps a currency code to units of that currency per 1 USD.
type RateTable map[string]decimal.Decimal

// Has reports whether code has an explicit entry.
func (t RateTable) Has(code string) bool {
	if code == PivotCurrency {
		return true
	}
	_, ok := t[code]
	return ok
}

// Rate returns the rate for code. An absent code yields 1, which silently treats the
// currency as USD-equivalent. Callers that care check Has first.
func (t RateTable) Rate(code string) decimal.Decimal {
	if r, ok := t[code]; ok {
		return r
	}
	return decimal.NewFromInt(1)
}

// RateSnapshot is a rate table plus the moment it was fetched.
type RateSnapshot struct {
	Rates     RateTable `json:"rates"`
	FetchedAt time.Time `json:"fetchedAt"`
	Source    string    `json:"source"`
}

// Age returns how old the snapshot is at now.
func (s RateSnapshot) Age(now time.Time) time.Duration {
	return now.Sub(s.FetchedAt)
}

// IsZero reports whether the snapshot holds no data.
func (s RateSnapshot) IsZero() bool {
	return len(s.Rates) == 0 && s.FetchedAt.IsZero()
}
