package domain

import (
	"regexp"
	"strings"
)

// PivotCurrency is the currency every rate table is quoted against.
const PivotCurrency = "USD"

var (
	currencyCodePattern = regexp.MustCompile(`^[A-Z]{3}$`)
	assetSymbolPattern  = regexp.MustCompile(`^[A-Z0-9]{2,10}$`)
)

// NormalizeCurrencyCode upper-cases and trims a currency code.
func NormalizeCurrencyCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// IsValidCurrencyCode reports whether code is an ISO-4217 shaped code ("USD", "EUR").
func IsValidCurrencyCode(code string) bool {
	return currencyCodePattern.MatchString(code)
}

// IsValidAssetSymbol reports whether symbol looks like a ticker ("BTC", "USDT").
func IsValidAssetSymbol(symbol string) bool {
	return assetSymbolPattern.MatchString(symbol)
}
