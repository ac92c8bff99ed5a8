package repositories

import (
	"context"

	"github.com/SscSPs/p2p_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// LedgerUnit is the set of mutations available inside one atomic unit. Nothing done
// through a unit is visible to other units until the enclosing RunAtomic commits.
type LedgerUnit interface {
	// DebitFiat removes amount from the account's fiat balance as one conditional
	// operation: it fails with *apperrors.InsufficientFundsError, and changes nothing,
	// when the balance is short. A balance currency different from amount.Currency is a
	// persistence conflict.
	DebitFiat(ctx context.Context, accountID string, amount domain.Money) error

	// CreditFiat adds amount as a relative increment. An unset balance currency is fixed
	// to amount.Currency; a different, already-set currency is a persistence conflict.
	CreditFiat(ctx context.Context, accountID string, amount domain.Money) error

	// DebitAsset removes quantity of symbol, dropping the holding when the remainder is
	// dust. It returns the holding as it was before the debit.
	DebitAsset(ctx context.Context, accountID string, symbol string, quantity decimal.Decimal) (domain.AssetHolding, error)

	// CreditAsset upserts holding. An existing holding keeps its own average cost.
	CreditAsset(ctx context.Context, accountID string, holding domain.AssetHolding) error

	// InsertTransferRecord writes the record. A reference collision is a persistence conflict.
	InsertTransferRecord(ctx context.Context, record domain.TransferRecord) error
}

// LedgerStore runs fn inside a single atomic unit. If fn returns an error, or the commit
// fails, none of fn's mutations survive.
type LedgerStore interface {
	RunAtomic(ctx context.Context, fn func(ctx context.Context, unit LedgerUnit) error) error
}
