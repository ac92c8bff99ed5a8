// Package fx converts amounts between currencies through the USD pivot.
// It performs no I/O; rates are supplied by the caller.
package fx

import (
	"github.com/SscSPs/p2p_ledger/internal/apperrors"
	"github.com/SscSPs/p2p_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// Convert returns amount expressed in `to`: amount / rate[from] * rate[to].
// Identical codes return amount unchanged. A code missing from rates is priced at 1.
// The result is not rounded.
func Convert(amount decimal.Decimal, from, to string, rates domain.RateTable) (decimal.Decimal, error) {
	if !domain.IsValidCurrencyCode(from) || !domain.IsValidCurrencyCode(to) {
		return decimal.Zero, apperrors.NewConversionError(from, to, "malformed currency code", nil)
	}
	if from == to {
		return amount, nil
	}

	fromRate := rates.Rate(from)
	toRate := rates.Rate(to)
	if !fromRate.IsPositive() {
		return decimal.Zero, apperrors.NewConversionError(from, to, "non-positive rate for "+from, nil)
	}
	if !toRate.IsPositive() {
		return decimal.Zero, apperrors.NewConversionError(from, to, "non-positive rate for "+to, nil)
	}

	return amount.Div(fromRate).Mul(toRate), nil
}

// ConvertRounded converts m into `to` and rounds the result to two decimal places.
// Each step of a multi-hop conversion calls this separately, so rounding happens per step.
func ConvertRounded(m domain.Money, to string, rates domain.RateTable) (domain.Money, error) {
	amount, err := Convert(m.Amount, m.Currency, to, rates)
	if err != nil {
		return domain.Money{}, err
	}
	return domain.Money{Amount: amount, Currency: to}.Rounded(), nil
}

// MissingRates lists the codes that have no explicit entry in rates.
func MissingRates(rates domain.RateTable, codes ...string) []string {
	var missing []string
	seen := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		if !rates.Has(c) {
			missing = append(missing, c)
		}
	}
	return missing
}
