package dto

import (
	"time"

	"github.com/SscSPs/p2p_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// OpenAccountRequest defines the data needed to open a wallet for the authenticated user.
type OpenAccountRequest struct {
	Email           string `json:"email" binding:"required,email"`
	Name            string `json:"name" binding:"required,max=100"`
	DisplayCurrency string `json:"displayCurrency" binding:"required,len=3,alpha"`
}

// UpdateDisplayCurrencyRequest changes the currency amounts are entered and shown in.
type UpdateDisplayCurrencyRequest struct {
	DisplayCurrency string `json:"displayCurrency" binding:"required,len=3,alpha"`
}

// SetTransferPINRequest sets or replaces the 4-digit transfer PIN.
type SetTransferPINRequest struct {
	PIN string `json:"pin" binding:"required,len=4,numeric"`
}

// AssetHoldingResponse is one inventory entry.
type AssetHoldingResponse struct {
	Symbol      string          `json:"symbol"`
	Quantity    decimal.Decimal `json:"quantity"`
	AverageCost decimal.Decimal `json:"averageCost"`
}

// AccountResponse defines the data returned for the caller's own account.
type AccountResponse struct {
	AccountID           string                 `json:"accountID"`
	Email               string                 `json:"email"`
	Name                string                 `json:"name"`
	AccountHandle       string                 `json:"accountHandle"`
	DisplayCurrency     string                 `json:"displayCurrency"`
	FiatBalance         decimal.Decimal        `json:"fiatBalance"`
	FiatBalanceCurrency string                 `json:"fiatBalanceCurrency"`
	Assets              []AssetHoldingResponse `json:"assets"`
	HasTransferPIN      bool                   `json:"hasTransferPIN"`
	CreatedAt           time.Time              `json:"createdAt"`
	LastUpdatedAt       time.Time              `json:"lastUpdatedAt"`
}

// ReceiverResponse is what a sender may learn about a prospective receiver.
type ReceiverResponse struct {
	AccountID     string `json:"accountID"`
	Name          string `json:"name"`
	AccountHandle string `json:"accountHandle"`
}

// ToAccountResponse converts a domain.Account to AccountResponse DTO
func ToAccountResponse(acc *domain.Account) AccountResponse {
	assets := make([]AssetHoldingResponse, len(acc.Assets))
	for i, h := range acc.Assets {
		assets[i] = AssetHoldingResponse{Symbol: h.Symbol, Quantity: h.Quantity, AverageCost: h.AverageCost}
	}
	return AccountResponse{
		AccountID:           acc.AccountID,
		Email:               acc.Email,
		Name:                acc.Name,
		AccountHandle:       acc.AccountHandle,
		DisplayCurrency:     acc.DisplayCurrency,
		FiatBalance:         acc.FiatBalance,
		FiatBalanceCurrency: acc.FiatBalanceCurrency,
		Assets:              assets,
		HasTransferPIN:      acc.HasTransferPIN(),
		CreatedAt:           acc.CreatedAt,
		LastUpdatedAt:       acc.LastUpdatedAt,
	}
}

// ToReceiverResponse exposes only the public part of an account.
func ToReceiverResponse(acc *domain.Account) ReceiverResponse {
	return ReceiverResponse{AccountID: acc.AccountID, Name: acc.Name, AccountHandle: acc.AccountHandle}
}
