package repositories

import (
	"context"

	"github.com/SscSPs/p2p_ledger/internal/core/domain"
)

// TransferListFilter selects records for one participant.
type TransferListFilter struct {
	AccountID string
	// Direction limits results to one side; empty means both.
	Direction domain.TransferDirection
	Limit     int
	NextToken *string
}

// TransferReader defines read operations for transfer records. Records are written only
// through LedgerUnit.InsertTransferRecord.
type TransferReader interface {
	// FindTransferByReference retrieves a record by its reference.
	FindTransferByReference(ctx context.Context, reference string) (*domain.TransferRecord, error)

	// ListTransfers returns records newest first and a token for the next page, nil when done.
	ListTransfers(ctx context.Context, filter TransferListFilter) ([]domain.TransferRecord, *string, error)
}
