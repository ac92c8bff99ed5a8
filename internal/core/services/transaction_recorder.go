package services

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/p2p_ledger/internal/apperrors"
	"github.com/SscSPs/p2p_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/p2p_ledger/internal/core/ports/repositories"
)

// ReferenceGenerator issues transfer references.
type ReferenceGenerator interface {
	NewReference() string
}

// TransactionRecorder stamps a draft record with its reference, status and time and
// writes it through the caller's atomic unit. Amounts are written as given.
type TransactionRecorder struct {
	refs ReferenceGenerator
	now  func() time.Time
}

// NewTransactionRecorder creates a recorder using refs for references.
func NewTransactionRecorder(refs ReferenceGenerator) *TransactionRecorder {
	return &TransactionRecorder{refs: refs, now: time.Now}
}

// Record validates draft and inserts it inside unit.
func (r *TransactionRecorder) Record(ctx context.Context, unit portsrepo.LedgerUnit, draft domain.TransferRecord) (*domain.TransferRecord, error) {
	rec := draft
	rec.Reference = r.refs.NewReference()
	rec.Status = domain.TransferStatusCompleted
	// storage keeps microseconds; truncating here keeps history cursors exact
	rec.CreatedAt = r.now().UTC().Truncate(time.Microsecond)

	if err := rec.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	if err := unit.InsertTransferRecord(ctx, rec); err != nil {
		return nil, err
	}
	return &rec, nil
}
