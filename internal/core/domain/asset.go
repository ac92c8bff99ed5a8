package domain

import (
	"github.com/shopspring/decimal"
)

// DustThreshold is the quantity at or below which a holding is removed from an inventory.
var DustThreshold = decimal.New(1, -8)

// AssetPlaces is the most decimal places a stored asset quantity can carry.
const AssetPlaces = 18

// AssetHolding is one entry of an account's crypto inventory.
type AssetHolding struct {
	Symbol      string          `json:"symbol"`
	Quantity    decimal.Decimal `json:"quantity"`
	AverageCost decimal.Decimal `json:"averageCost"` // per-unit cost basis in USD
}

// IsDust reports whether the holding is small enough to be dropped.
func (h AssetHolding) IsDust() bool {
	return h.Quantity.LessThanOrEqual(DustThreshold)
}

// AssetInventory is an ordered set of holdings, unique by symbol.
type AssetInventory []AssetHolding

// Find returns the holding for symbol and whether it exists.
func (inv AssetInventory) Find(symbol string) (AssetHolding, bool) {
	for _, h := range inv {
		if h.Symbol == symbol {
			return h, true
		}
	}
	return AssetHolding{}, false
}

// Clone returns a copy that shares no backing array with inv.
func (inv AssetInventory) Clone() AssetInventory {
	if inv == nil {
		return nil
	}
	out := make(AssetInventory, len(inv))
	copy(out, inv)
	return out
}

// Debit removes quantity of symbol. It returns the new inventory and the holding as it
// was before the debit (the cost basis carried to the receiver). ok is false when the
// symbol is absent or the held quantity is short; inv is then returned unchanged.
// A remainder at or below DustThreshold removes the entry.
func (inv AssetInventory) Debit(symbol string, quantity decimal.Decimal) (out AssetInventory, before AssetHolding, ok bool) {
	idx := -1
	for i, h := range inv {
		if h.Symbol == symbol {
			idx = i
			break
		}
	}
	if idx < 0 || inv[idx].Quantity.LessThan(quantity) {
		return inv, AssetHolding{}, false
	}

	before = inv[idx]
	remaining := before
	remaining.Quantity = before.Quantity.Sub(quantity)

	out = make(AssetInventory, 0, len(inv))
	out = append(out, inv[:idx]...)
	if !remaining.IsDust() {
		out = append(out, remaining)
	}
	out = append(out, inv[idx+1:]...)
	return out, before, true
}

// Credit upserts incoming. An existing entry keeps its own average cost and only gains
// quantity; a new entry is appended with the incoming cost basis.
func (inv AssetInventory) Credit(incoming AssetHolding) AssetInventory {
	out := inv.Clone()
	for i, h := range out {
		if h.Symbol == incoming.Symbol {
			out[i].Quantity = h.Quantity.Add(incoming.Quantity)
			return out
		}
	}
	if incoming.IsDust() {
		return out
	}
	return append(out, incoming)
}
