package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AuditFields holds standard audit columns.
type AuditFields struct {
	CreatedAt     time.Time `db:"created_at"`
	LastUpdatedAt time.Time `db:"last_updated_at"`
}

// Account is a row of the accounts table.
type Account struct {
	AccountID           string          `db:"account_id"`
	Email               string          `db:"email"`
	Name                string          `db:"name"`
	AccountHandle       *string         `db:"account_handle"` // Nullable, unique
	DisplayCurrency     string          `db:"display_currency"`
	FiatBalance         decimal.Decimal `db:"fiat_balance"`
	FiatBalanceCurrency *string         `db:"fiat_balance_currency"` // Nullable until first funding
	TransferPINHash     *string         `db:"transfer_pin_hash"`     // Nullable
	AuditFields
	DeletedAt *time.Time `db:"deleted_at"`
}

// AssetHolding is a row of the asset_holdings table.
type AssetHolding struct {
	AccountID   string          `db:"account_id"`
	Symbol      string          `db:"symbol"`
	Quantity    decimal.Decimal `db:"quantity"`
	AverageCost decimal.Decimal `db:"average_cost"`
	Position    int64           `db:"position"` // insertion order within the inventory
}
