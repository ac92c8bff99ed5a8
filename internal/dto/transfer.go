package dto

import (
	"time"

	"github.com/SscSPs/p2p_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateFiatTransferRequest moves part of the caller's fiat balance. Amount is in the
// caller's display currency.
type CreateFiatTransferRequest struct {
	Receiver string          `json:"receiver" binding:"required"` // email or account number
	Amount   decimal.Decimal `json:"amount" binding:"gt=0"`
	PIN      string          `json:"pin" binding:"required,len=4,numeric"`
	Memo     string          `json:"memo" binding:"max=280"`
}

// CreateAssetTransferRequest moves a quantity of a crypto asset.
type CreateAssetTransferRequest struct {
	Receiver string          `json:"receiver" binding:"required"`
	Symbol   string          `json:"symbol" binding:"required,max=10"`
	Quantity decimal.Decimal `json:"quantity" binding:"gt=0"`
	PIN      string          `json:"pin" binding:"required,len=4,numeric"`
	Memo     string          `json:"memo" binding:"max=280"`
}

// TransferResponse defines the data returned for a completed transfer.
type TransferResponse struct {
	Reference      string                       `json:"reference"`
	Status         domain.TransferStatus        `json:"status"`
	AssetKind      string                       `json:"assetKind"`
	SenderID       string                       `json:"senderID"`
	ReceiverID     string                       `json:"receiverID"`
	ReceiverHandle string                       `json:"receiverHandle"`
	SettledAmount  decimal.Decimal              `json:"settledAmount"`
	SettledUnit    string                       `json:"settledUnit"`
	Memo           string                       `json:"memo,omitempty"`
	Provenance     *domain.ConversionProvenance `json:"provenance,omitempty"`
	CostBasis      *domain.CostBasis            `json:"costBasis,omitempty"`
	CreatedAt      time.Time                    `json:"createdAt"`
}

// ToTransferResponse converts a domain.TransferRecord to TransferResponse DTO
func ToTransferResponse(r *domain.TransferRecord) TransferResponse {
	return TransferResponse{
		Reference:      r.Reference,
		Status:         r.Status,
		AssetKind:      r.AssetKind,
		SenderID:       r.SenderID,
		ReceiverID:     r.ReceiverID,
		ReceiverHandle: r.ReceiverHandle,
		SettledAmount:  r.SettledAmount,
		SettledUnit:    r.SettledUnit,
		Memo:           r.Memo,
		Provenance:     r.Provenance,
		CostBasis:      r.CostBasis,
		CreatedAt:      r.CreatedAt,
	}
}

// TransferViewResponse is a history entry seen by one participant.
type TransferViewResponse struct {
	Reference          string                   `json:"reference"`
	Direction          domain.TransferDirection `json:"direction"`
	AssetKind          string                   `json:"assetKind"`
	Amount             decimal.Decimal          `json:"amount"`
	Unit               string                   `json:"unit"`
	CounterpartyID     string                   `json:"counterpartyID"`
	CounterpartyHandle string                   `json:"counterpartyHandle"`
	Memo               string                   `json:"memo,omitempty"`
	Status             domain.TransferStatus    `json:"status"`
	CreatedAt          time.Time                `json:"createdAt"`
}

// ToTransferViewResponse converts a domain.TransferView to its DTO
func ToTransferViewResponse(v domain.TransferView) TransferViewResponse {
	return TransferViewResponse{
		Reference:          v.Reference,
		Direction:          v.Direction,
		AssetKind:          v.AssetKind,
		Amount:             v.Amount,
		Unit:               v.Unit,
		CounterpartyID:     v.CounterpartyID,
		CounterpartyHandle: v.CounterpartyHandle,
		Memo:               v.Memo,
		Status:             v.Status,
		CreatedAt:          v.CreatedAt,
	}
}

// ListTransfersParams defines query parameters for the transfer history.
type ListTransfersParams struct {
	Direction string  `form:"direction,default=all" binding:"omitempty,oneof=sent received all"`
	Limit     int     `form:"limit,default=50" binding:"omitempty,min=1,max=100"`
	NextToken *string `form:"nextToken"`
}

// ListTransfersResponse is one page of history.
type ListTransfersResponse struct {
	Transfers []TransferViewResponse `json:"transfers"`
	NextToken *string                `json:"nextToken,omitempty"`
}
