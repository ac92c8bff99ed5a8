package services

import (
	"context"

	"github.com/SscSPs/p2p_ledger/internal/core/domain"
	"github.com/SscSPs/p2p_ledger/internal/dto"
	"github.com/shopspring/decimal"
)

// FiatTransferRequest asks the engine to move InputAmount, expressed in the sender's
// display currency, to the receiver. Participants may be referenced by id, email or
// account number.
type FiatTransferRequest struct {
	Authorization domain.Authorization
	SenderRef     string
	ReceiverRef   string
	InputAmount   decimal.Decimal
	Memo          string
}

// AssetTransferRequest asks the engine to move Quantity units of Symbol.
type AssetTransferRequest struct {
	Authorization domain.Authorization
	SenderRef     string
	ReceiverRef   string
	Symbol        string
	Quantity      decimal.Decimal
	Memo          string
}

// TransferSettlerSvc settles transfers. Both operations either return the persisted
// record or leave every balance untouched.
type TransferSettlerSvc interface {
	SettleFiatTransfer(ctx context.Context, req FiatTransferRequest) (*domain.TransferRecord, error)
	SettleAssetTransfer(ctx context.Context, req AssetTransferRequest) (*domain.TransferRecord, error)
}

// TransferReaderSvc reads transfer history for a participant.
type TransferReaderSvc interface {
	// GetTransfer returns the record if viewerID took part in it.
	GetTransfer(ctx context.Context, viewerID string, reference string) (*domain.TransferView, error)

	// ListTransfers returns one page of the viewer's history.
	ListTransfers(ctx context.Context, viewerID string, params dto.ListTransfersParams) (*dto.ListTransfersResponse, error)
}

// TransferSvcFacade combines all transfer-related service interfaces
type TransferSvcFacade interface {
	TransferSettlerSvc
	TransferReaderSvc
}
