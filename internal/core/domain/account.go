package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is a user's wallet: one fiat balance plus an inventory of crypto assets.
type Account struct {
	AccountID       string `json:"accountID"` // Primary Key (UUID)
	Email           string `json:"email"`
	Name            string `json:"name"`
	AccountHandle   string `json:"accountHandle"`   // 10-digit account number, empty until provisioned
	DisplayCurrency string `json:"displayCurrency"` // currency the user enters and sees amounts in
	// FiatBalance is denominated in FiatBalanceCurrency, never in DisplayCurrency.
	FiatBalance         decimal.Decimal `json:"fiatBalance"`
	FiatBalanceCurrency string          `json:"fiatBalanceCurrency"` // empty until first funding
	Assets              AssetInventory  `json:"assets"`
	TransferPINHash     string          `json:"-"`
	AuditFields
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
}

// IsDeleted reports whether the account has been soft deleted.
func (a Account) IsDeleted() bool {
	return a.DeletedAt != nil
}

// HasHandle reports whether an account number has been provisioned.
func (a Account) HasHandle() bool {
	return a.AccountHandle != ""
}

// HasTransferPIN reports whether a transfer PIN has been set up.
func (a Account) HasTransferPIN() bool {
	return a.TransferPINHash != ""
}

// SettlementCurrency is the currency fiat movements are booked in.
// Until the first funding fixes the balance currency, the display currency is used.
func (a Account) SettlementCurrency() string {
	if a.FiatBalanceCurrency != "" {
		return a.FiatBalanceCurrency
	}
	return a.DisplayCurrency
}
