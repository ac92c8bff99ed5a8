package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/SscSPs/p2p_ledger/internal/apperrors"
	"github.com/SscSPs/p2p_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/p2p_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/p2p_ledger/internal/core/ports/services"
	"github.com/SscSPs/p2p_ledger/internal/dto"
	"github.com/SscSPs/p2p_ledger/internal/utils"
)

const (
	handleDigits          = 10
	handleGenerationTries = 5
)

var transferPINPattern = regexp.MustCompile(`^\d{4}$`)

// accountService implements the AccountSvcFacade interface
type accountService struct {
	BaseService
	accountRepo portsrepo.AccountRepositoryFacade
	newHandle   func() (string, error)
	now         func() time.Time
}

// ServiceOption is a functional option for configuring the account service
type ServiceOption func(*accountService)

// WithHandleGenerator replaces the random 10-digit account number generator.
func WithHandleGenerator(fn func() (string, error)) ServiceOption {
	return func(s *accountService) {
		s.newHandle = fn
	}
}

// NewAccountService creates a new account service with the provided options
func NewAccountService(repo portsrepo.AccountRepositoryFacade, options ...ServiceOption) portssvc.AccountSvcFacade {
	svc := &accountService{
		accountRepo: repo,
		newHandle:   func() (string, error) { return utils.GenerateNumericCode(handleDigits) },
		now:         time.Now,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

func (s *accountService) OpenAccount(ctx context.Context, accountID string, req dto.OpenAccountRequest) (*domain.Account, error) {
	currency := domain.NormalizeCurrencyCode(req.DisplayCurrency)
	if !domain.IsValidCurrencyCode(currency) {
		return nil, fmt.Errorf("%w: invalid display currency %q", apperrors.ErrValidation, req.DisplayCurrency)
	}

	now := s.now().UTC()
	account := domain.Account{
		AccountID:       accountID,
		Email:           strings.TrimSpace(req.Email),
		Name:            strings.TrimSpace(req.Name),
		DisplayCurrency: currency,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			LastUpdatedAt: now,
		},
	}

	// account numbers are random; a collision just means drawing again
	for try := 1; ; try++ {
		handle, err := s.newHandle()
		if err != nil {
			s.LogError(ctx, err, "Failed to generate account number")
			return nil, apperrors.NewAppError(500, "failed to generate account number", err)
		}
		account.AccountHandle = handle

		err = s.accountRepo.SaveAccount(ctx, account)
		if err == nil {
			break
		}
		if !errors.Is(err, apperrors.ErrDuplicate) || try >= handleGenerationTries {
			s.LogError(ctx, err, "Failed to save account", slog.String("account_id", accountID))
			return nil, err
		}
		// the id or email may be the duplicate rather than the handle
		if _, findErr := s.accountRepo.FindAccountByID(ctx, accountID); findErr == nil {
			return nil, fmt.Errorf("%w: account %s already exists", apperrors.ErrDuplicate, accountID)
		}
		if _, findErr := s.accountRepo.FindAccountByEmail(ctx, account.Email); findErr == nil {
			return nil, fmt.Errorf("%w: email already registered", apperrors.ErrDuplicate)
		}
	}

	s.LogInfo(ctx, "Account opened",
		slog.String("account_id", accountID),
		slog.String("display_currency", currency))
	return &account, nil
}

func (s *accountService) GetAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	acc, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if acc.IsDeleted() {
		return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
	}
	return acc, nil
}

func (s *accountService) LookupReceiver(ctx context.Context, callerID string, identifier string) (*domain.Account, error) {
	identifier = strings.TrimSpace(identifier)
	if !strings.Contains(identifier, "@") && !isAccountHandle(identifier) {
		return nil, fmt.Errorf("%w: identifier must be an email or a 10-digit account number", apperrors.ErrValidation)
	}
	acc, err := resolveParticipant(ctx, s.accountRepo, apperrors.RoleReceiver, identifier)
	if err != nil {
		return nil, err
	}
	if acc.AccountID == callerID {
		return nil, apperrors.NewParticipantError(apperrors.RoleReceiver, apperrors.ParticipantSelfTransfer, identifier)
	}
	if !acc.HasHandle() {
		return nil, apperrors.NewParticipantError(apperrors.RoleReceiver, apperrors.ParticipantMissingHandle, identifier)
	}
	return acc, nil
}

func (s *accountService) ChangeDisplayCurrency(ctx context.Context, accountID string, currency string) (*domain.Account, error) {
	code := domain.NormalizeCurrencyCode(currency)
	if !domain.IsValidCurrencyCode(code) {
		return nil, fmt.Errorf("%w: invalid display currency %q", apperrors.ErrValidation, currency)
	}
	if err := s.accountRepo.UpdateDisplayCurrency(ctx, accountID, code, s.now().UTC()); err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to update display currency", slog.String("account_id", accountID))
		}
		return nil, err
	}
	s.LogInfo(ctx, "Display currency changed",
		slog.String("account_id", accountID),
		slog.String("display_currency", code))
	return s.GetAccount(ctx, accountID)
}

func (s *accountService) SetTransferPIN(ctx context.Context, accountID string, pin string) error {
	if !transferPINPattern.MatchString(pin) {
		return fmt.Errorf("%w: transfer PIN must be exactly 4 digits", apperrors.ErrValidation)
	}
	hash, err := utils.HashPIN(pin)
	if err != nil {
		s.LogError(ctx, err, "Failed to hash transfer PIN")
		return apperrors.NewAppError(500, "failed to hash transfer PIN", err)
	}
	if err := s.accountRepo.UpdateTransferPIN(ctx, accountID, hash, s.now().UTC()); err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to store transfer PIN", slog.String("account_id", accountID))
		}
		return err
	}
	s.LogInfo(ctx, "Transfer PIN set", slog.String("account_id", accountID))
	return nil
}
