package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/p2p_ledger/internal/core/domain"
)

// AccountReader defines read operations for account data.
// Every finder ignores soft-deleted accounts unless stated otherwise.
type AccountReader interface {
	// FindAccountByID retrieves an account by id, including soft-deleted ones.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// FindAccountByEmail retrieves a non-deleted account by email (case-insensitive).
	FindAccountByEmail(ctx context.Context, email string) (*domain.Account, error)

	// FindAccountByHandle retrieves a non-deleted account by its 10-digit account number.
	FindAccountByHandle(ctx context.Context, handle string) (*domain.Account, error)
}

// AccountWriter defines write operations for account profile data.
// Balances and inventories are never written here; see LedgerUnit.
type AccountWriter interface {
	// SaveAccount persists a new account. A handle or email collision yields apperrors.ErrDuplicate.
	SaveAccount(ctx context.Context, account domain.Account) error

	// UpdateDisplayCurrency changes only the display currency.
	UpdateDisplayCurrency(ctx context.Context, accountID string, currency string, now time.Time) error

	// UpdateTransferPIN stores a new transfer PIN hash.
	UpdateTransferPIN(ctx context.Context, accountID string, pinHash string, now time.Time) error
}

// AccountRepositoryFacade combines all account-related repository interfaces.
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
}
