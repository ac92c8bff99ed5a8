package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// AssetKindFiat marks a fiat-balance transfer. Asset transfers use the symbol itself.
const AssetKindFiat = "FIAT"

// TransferStatus of a persisted record. Only completed transfers are ever written.
type TransferStatus string

const TransferStatusCompleted TransferStatus = "COMPLETED"

// TransferDirection is a record as seen by one of its participants.
type TransferDirection string

const (
	DirectionSent     TransferDirection = "SENT"
	DirectionReceived TransferDirection = "RECEIVED"
)

var errInvalidProvenance = errors.New("invalid conversion provenance")

// ConversionProvenance captures every amount a fiat transfer passed through, so either
// party's history can be rendered later without re-deriving rates.
type ConversionProvenance struct {
	Input     Money     `json:"input"`    // what the sender typed, in their display currency
	Deducted  Money     `json:"deducted"` // removed from the sender, in their balance currency
	Credited  Money     `json:"credited"` // added to the receiver, in their balance currency
	Display   Money     `json:"display"`  // credited amount in the receiver's display currency
	RatesAsOf time.Time `json:"ratesAsOf"`
}

// NewConversionProvenance validates and builds a provenance block. Every amount must
// carry a currency; settled amounts must already be rounded to FiatPlaces. Display is
// record-only and may round to zero, the other amounts must be positive.
func NewConversionProvenance(input, deducted, credited, display Money, ratesAsOf time.Time) (ConversionProvenance, error) {
	p := ConversionProvenance{Input: input, Deducted: deducted, Credited: credited, Display: display, RatesAsOf: ratesAsOf}
	if err := p.Validate(); err != nil {
		return ConversionProvenance{}, err
	}
	return p, nil
}

// Validate checks the invariants NewConversionProvenance enforces.
func (p ConversionProvenance) Validate() error {
	named := []struct {
		name     string
		m        Money
		rounded  bool
		zeroable bool
	}{
		{"input", p.Input, false, false},
		{"deducted", p.Deducted, true, false},
		{"credited", p.Credited, true, false},
		{"display", p.Display, true, true},
	}
	for _, n := range named {
		if !IsValidCurrencyCode(n.m.Currency) {
			return fmt.Errorf("%w: %s currency %q", errInvalidProvenance, n.name, n.m.Currency)
		}
		if n.zeroable && n.m.Amount.IsNegative() {
			return fmt.Errorf("%w: %s amount must not be negative", errInvalidProvenance, n.name)
		}
		if !n.zeroable && !n.m.IsPositive() {
			return fmt.Errorf("%w: %s amount must be positive", errInvalidProvenance, n.name)
		}
		if n.rounded && !n.m.Amount.Equal(n.m.Amount.Round(FiatPlaces)) {
			return fmt.Errorf("%w: %s amount %s is not rounded", errInvalidProvenance, n.name, n.m.Amount)
		}
	}
	return nil
}

// CostBasis is recorded for asset transfers in place of conversion provenance.
type CostBasis struct {
	Symbol   string          `json:"symbol"`
	Quantity decimal.Decimal `json:"quantity"`
	UnitCost decimal.Decimal `json:"unitCost"` // sender's average cost, USD
	USDValue decimal.Decimal `json:"usdValue"` // Quantity * UnitCost, rounded to FiatPlaces
}

// NewCostBasis derives the USD-equivalent value of quantity units at unitCost.
func NewCostBasis(symbol string, quantity, unitCost decimal.Decimal) CostBasis {
	return CostBasis{
		Symbol:   symbol,
		Quantity: quantity,
		UnitCost: unitCost,
		USDValue: quantity.Mul(unitCost).Round(FiatPlaces),
	}
}

// TransferRecord is the immutable audit entry for one completed transfer.
type TransferRecord struct {
	Reference      string                `json:"reference"`
	SenderID       string                `json:"senderID"`
	ReceiverID     string                `json:"receiverID"`
	SenderHandle   string                `json:"senderHandle"`
	ReceiverHandle string                `json:"receiverHandle"`
	AssetKind      string                `json:"assetKind"` // AssetKindFiat or the asset symbol
	SettledAmount  decimal.Decimal       `json:"settledAmount"`
	SettledUnit    string                `json:"settledUnit"` // currency code or symbol
	Status         TransferStatus        `json:"status"`
	Memo           string                `json:"memo,omitempty"`
	Provenance     *ConversionProvenance `json:"provenance,omitempty"`
	CostBasis      *CostBasis            `json:"costBasis,omitempty"`
	CreatedAt      time.Time             `json:"createdAt"`
}

// IsFiat reports whether the record settled a fiat balance.
func (r TransferRecord) IsFiat() bool {
	return r.AssetKind == AssetKindFiat
}

// Validate checks a record (or a draft awaiting its reference) before it is persisted.
func (r TransferRecord) Validate() error {
	if r.SenderID == "" || r.ReceiverID == "" {
		return errors.New("transfer record requires both participants")
	}
	if r.SenderID == r.ReceiverID {
		return errors.New("transfer record sender and receiver must differ")
	}
	if !r.SettledAmount.IsPositive() {
		return errors.New("transfer record settled amount must be positive")
	}
	if r.IsFiat() {
		if r.Provenance == nil || r.CostBasis != nil {
			return errors.New("fiat transfer record requires conversion provenance only")
		}
		return r.Provenance.Validate()
	}
	if r.Provenance != nil || r.CostBasis == nil {
		return errors.New("asset transfer record requires cost basis only")
	}
	if r.CostBasis.Symbol != r.AssetKind {
		return fmt.Errorf("cost basis symbol %q does not match asset kind %q", r.CostBasis.Symbol, r.AssetKind)
	}
	return nil
}

// TransferView is a record rendered for one participant.
type TransferView struct {
	Reference          string            `json:"reference"`
	Direction          TransferDirection `json:"direction"`
	AssetKind          string            `json:"assetKind"`
	Amount             decimal.Decimal   `json:"amount"`
	Unit               string            `json:"unit"`
	CounterpartyID     string            `json:"counterpartyID"`
	CounterpartyHandle string            `json:"counterpartyHandle"`
	Memo               string            `json:"memo,omitempty"`
	Status             TransferStatus    `json:"status"`
	CreatedAt          time.Time         `json:"createdAt"`
	Record             TransferRecord    `json:"-"`
}

// ViewFor renders r from accountID's perspective using the stored provenance: the
// sender sees what they typed, the receiver sees what arrived in their display currency.
func (r TransferRecord) ViewFor(accountID string) (TransferView, bool) {
	v := TransferView{
		Reference: r.Reference,
		AssetKind: r.AssetKind,
		Memo:      r.Memo,
		Status:    r.Status,
		CreatedAt: r.CreatedAt,
		Record:    r,
	}
	switch accountID {
	case r.SenderID:
		v.Direction = DirectionSent
		v.CounterpartyID = r.ReceiverID
		v.CounterpartyHandle = r.ReceiverHandle
	case r.ReceiverID:
		v.Direction = DirectionReceived
		v.CounterpartyID = r.SenderID
		v.CounterpartyHandle = r.SenderHandle
	default:
		return TransferView{}, false
	}

	switch {
	case r.IsFiat() && r.Provenance != nil && v.Direction == DirectionSent:
		v.Amount, v.Unit = r.Provenance.Input.Amount, r.Provenance.Input.Currency
	case r.IsFiat() && r.Provenance != nil:
		v.Amount, v.Unit = r.Provenance.Display.Amount, r.Provenance.Display.Currency
	default:
		v.Amount, v.Unit = r.SettledAmount, r.SettledUnit
	}
	return v, true
}
