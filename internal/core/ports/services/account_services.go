package services

import (
	"context"

	"github.com/SscSPs/p2p_ledger/internal/core/domain"
	"github.com/SscSPs/p2p_ledger/internal/dto"
)

// AccountReaderSvc defines read operations for account data
type AccountReaderSvc interface {
	// GetAccount retrieves the caller's own account.
	GetAccount(ctx context.Context, accountID string) (*domain.Account, error)

	// LookupReceiver resolves an email or account number to a transferable receiver.
	// The caller itself and accounts without an account number are rejected.
	LookupReceiver(ctx context.Context, callerID string, identifier string) (*domain.Account, error)
}

// AccountWriterSvc defines write operations for account profile data
type AccountWriterSvc interface {
	// OpenAccount creates a zero-balance account with a fresh account number.
	OpenAccount(ctx context.Context, accountID string, req dto.OpenAccountRequest) (*domain.Account, error)

	// ChangeDisplayCurrency updates the display currency. The balance currency is untouched.
	ChangeDisplayCurrency(ctx context.Context, accountID string, currency string) (*domain.Account, error)

	// SetTransferPIN stores a bcrypt hash of a 4-digit PIN.
	SetTransferPIN(ctx context.Context, accountID string, pin string) error
}

// AccountSvcFacade combines all account-related service interfaces
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
}

// TransferAuthorizerSvc is the authorization collaborator: it verifies the sender's
// transfer PIN and returns the proof the settlement engine requires.
type TransferAuthorizerSvc interface {
	Authorize(ctx context.Context, accountID string, pin string) (domain.Authorization, error)
}
