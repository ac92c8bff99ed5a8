// Package rates fetches USD-pivoted exchange rates and keeps a cached snapshot of them.
package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/SscSPs/p2p_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// DefaultFrankfurterURL is the public Frankfurter API.
const DefaultFrankfurterURL = "https://api.frankfurter.app"

// Fetcher retrieves a fresh snapshot from an upstream provider.
type Fetcher interface {
	Fetch(ctx context.Context) (domain.RateSnapshot, error)
}

// FrankfurterProvider reads the latest USD-based rates from a Frankfurter-compatible API.
type FrankfurterProvider struct {
	baseURL string
	client  *http.Client
	now     func() time.Time
}

var _ Fetcher = (*FrankfurterProvider)(nil)

// NewFrankfurterProvider creates a provider. An empty baseURL uses DefaultFrankfurterURL.
func NewFrankfurterProvider(baseURL string, client *http.Client) *FrankfurterProvider {
	if baseURL == "" {
		baseURL = DefaultFrankfurterURL
	}
	if client == nil {
		client = NewHTTPClient(0)
	}
	return &FrankfurterProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

type frankfurterResponse struct {
	Base  string                     `json:"base"`
	Date  string                     `json:"date"`
	Rates map[string]decimal.Decimal `json:"rates"`
}

// Fetch calls GET {base}/latest?from=USD. The pivot itself is not listed upstream and is
// added with rate 1.
func (p *FrankfurterProvider) Fetch(ctx context.Context) (domain.RateSnapshot, error) {
	url := fmt.Sprintf("%s/latest?from=%s", p.baseURL, domain.PivotCurrency)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return domain.RateSnapshot{}, fmt.Errorf("failed to build rates request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return domain.RateSnapshot{}, fmt.Errorf("rates request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.RateSnapshot{}, fmt.Errorf("rates provider returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload frankfurterResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return domain.RateSnapshot{}, fmt.Errorf("failed to decode rates response: %w", err)
	}
	if payload.Base != "" && !strings.EqualFold(payload.Base, domain.PivotCurrency) {
		return domain.RateSnapshot{}, fmt.Errorf("rates provider answered with base %s, want %s", payload.Base, domain.PivotCurrency)
	}
	if len(payload.Rates) == 0 {
		return domain.RateSnapshot{}, fmt.Errorf("rates provider returned an empty table")
	}

	table := make(domain.RateTable, len(payload.Rates)+1)
	for code, rate := range payload.Rates {
		code = domain.NormalizeCurrencyCode(code)
		if !domain.IsValidCurrencyCode(code) || !rate.IsPositive() {
			continue
		}
		table[code] = rate
	}
	table[domain.PivotCurrency] = decimal.NewFromInt(1)

	return domain.RateSnapshot{Rates: table, FetchedAt: p.now(), Source: "frankfurter"}, nil
}
