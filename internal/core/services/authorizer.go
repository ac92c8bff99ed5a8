package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/p2p_ledger/internal/apperrors"
	"github.com/SscSPs/p2p_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/p2p_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/p2p_ledger/internal/core/ports/services"
	"github.com/SscSPs/p2p_ledger/internal/utils"
)

// pinAuthorizer verifies transfer PINs against the stored bcrypt hash.
type pinAuthorizer struct {
	BaseService
	accountRepo portsrepo.AccountReader
	now         func() time.Time
}

// NewPINAuthorizer creates the transfer authorizer.
func NewPINAuthorizer(repo portsrepo.AccountReader) portssvc.TransferAuthorizerSvc {
	return &pinAuthorizer{accountRepo: repo, now: time.Now}
}

var _ portssvc.TransferAuthorizerSvc = (*pinAuthorizer)(nil)

func (a *pinAuthorizer) Authorize(ctx context.Context, accountID string, pin string) (domain.Authorization, error) {
	acc, err := a.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return domain.Authorization{}, err
	}
	if acc.IsDeleted() {
		return domain.Authorization{}, apperrors.NewParticipantError(apperrors.RoleSender, apperrors.ParticipantDeleted, accountID)
	}
	if !acc.HasTransferPIN() {
		return domain.Authorization{}, fmt.Errorf("%w: transfer PIN not set", apperrors.ErrUnauthorized)
	}
	if !utils.CheckPINHash(pin, acc.TransferPINHash) {
		a.LogWarn(ctx, "Transfer PIN rejected", slog.String("account_id", accountID))
		return domain.Authorization{}, fmt.Errorf("%w: invalid transfer PIN", apperrors.ErrUnauthorized)
	}
	return domain.Authorization{
		AccountID:  acc.AccountID,
		Method:     domain.AuthorizationTransferPIN,
		VerifiedAt: a.now().UTC(),
	}, nil
}
