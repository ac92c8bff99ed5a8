package domain_test

import (
	"testing"
	"time"

	"github.com/SscSPs/p2p_ledger/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func money(amount, currency string) domain.Money {
	return domain.NewMoney(d(amount), currency)
}

func TestNewConversionProvenance(t *testing.T) {
	asOf := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		input   domain.Money
		deduct  domain.Money
		credit  domain.Money
		display domain.Money
		wantErr bool
	}{
		{name: "valid", input: money("50", "USD"), deduct: money("45.00", "EUR"), credit: money("45.00", "EUR"), display: money("270.00", "BRL")},
		{name: "unrounded deducted amount", input: money("50", "USD"), deduct: money("45.004", "EUR"), credit: money("45.00", "EUR"), display: money("270.00", "BRL"), wantErr: true},
		{name: "missing currency", input: money("50", ""), deduct: money("45.00", "EUR"), credit: money("45.00", "EUR"), display: money("270.00", "BRL"), wantErr: true},
		{name: "zero credit", input: money("50", "USD"), deduct: money("45.00", "EUR"), credit: money("0", "EUR"), display: money("270.00", "BRL"), wantErr: true},
		{name: "display rounded to zero is kept", input: money("0.01", "USD"), deduct: money("0.01", "USD"), credit: money("0.01", "USD"), display: money("0.00", "KWD")},
		{name: "negative display", input: money("50", "USD"), deduct: money("45.00", "EUR"), credit: money("45.00", "EUR"), display: money("-1.00", "BRL"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := domain.NewConversionProvenance(tt.input, tt.deduct, tt.credit, tt.display, asOf)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, asOf, p.RatesAsOf)
		})
	}
}

func TestNewCostBasis(t *testing.T) {
	cb := domain.NewCostBasis("BTC", d("0.1"), d("30000.555"))
	assert.True(t, cb.USDValue.Equal(d("3000.06")), "got %s", cb.USDValue)
}

func TestTransferRecord_ViewFor(t *testing.T) {
	prov, err := domain.NewConversionProvenance(money("50", "USD"), money("45.00", "EUR"), money("45.00", "EUR"), money("270.00", "BRL"), time.Now())
	require.NoError(t, err)

	rec := domain.TransferRecord{
		Reference:      "TRF01",
		SenderID:       "sender",
		ReceiverID:     "receiver",
		SenderHandle:   "1111111111",
		ReceiverHandle: "2222222222",
		AssetKind:      domain.AssetKindFiat,
		SettledAmount:  d("45.00"),
		SettledUnit:    "EUR",
		Status:         domain.TransferStatusCompleted,
		Provenance:     &prov,
	}
	require.NoError(t, rec.Validate())

	sent, ok := rec.ViewFor("sender")
	require.True(t, ok)
	assert.Equal(t, domain.DirectionSent, sent.Direction)
	assert.Equal(t, "USD", sent.Unit)
	assert.True(t, sent.Amount.Equal(d("50")))
	assert.Equal(t, "2222222222", sent.CounterpartyHandle)

	received, ok := rec.ViewFor("receiver")
	require.True(t, ok)
	assert.Equal(t, domain.DirectionReceived, received.Direction)
	assert.Equal(t, "BRL", received.Unit)
	assert.True(t, received.Amount.Equal(d("270")))

	_, ok = rec.ViewFor("stranger")
	assert.False(t, ok)
}

func TestTransferRecord_Validate(t *testing.T) {
	cb := domain.NewCostBasis("BTC", d("0.1"), d("30000"))
	rec := domain.TransferRecord{
		SenderID: "a", ReceiverID: "a", AssetKind: "BTC",
		SettledAmount: d("0.1"), SettledUnit: "BTC", CostBasis: &cb,
	}
	assert.Error(t, rec.Validate(), "self transfer must not validate")

	rec.ReceiverID = "b"
	assert.NoError(t, rec.Validate())

	rec.AssetKind = "ETH"
	assert.Error(t, rec.Validate(), "cost basis symbol must match")
}
