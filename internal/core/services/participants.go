package services

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/SscSPs/p2p_ledger/internal/apperrors"
	"github.com/SscSPs/p2p_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/p2p_ledger/internal/core/ports/repositories"
)

var handlePattern = regexp.MustCompile(`^\d{10}$`)

// isAccountHandle reports whether ref looks like a 10-digit account number.
func isAccountHandle(ref string) bool {
	return handlePattern.MatchString(ref)
}

// findByRef resolves an id, email or account number. Soft-deleted accounts are returned
// for id lookups so the caller can tell "deleted" from "never existed".
func findByRef(ctx context.Context, repo portsrepo.AccountReader, ref string) (*domain.Account, error) {
	switch {
	case strings.Contains(ref, "@"):
		return repo.FindAccountByEmail(ctx, ref)
	case isAccountHandle(ref):
		acc, err := repo.FindAccountByHandle(ctx, ref)
		if errors.Is(err, apperrors.ErrNotFound) {
			return repo.FindAccountByID(ctx, ref)
		}
		return acc, err
	default:
		return repo.FindAccountByID(ctx, ref)
	}
}

// resolveParticipant maps a lookup into a transferable account or a ParticipantError.
func resolveParticipant(ctx context.Context, repo portsrepo.AccountReader, role, ref string) (*domain.Account, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, apperrors.NewParticipantError(role, apperrors.ParticipantNotFound, ref)
	}
	acc, err := findByRef(ctx, repo, ref)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewParticipantError(role, apperrors.ParticipantNotFound, ref)
		}
		return nil, err
	}
	if acc.IsDeleted() {
		return nil, apperrors.NewParticipantError(role, apperrors.ParticipantDeleted, ref)
	}
	return acc, nil
}

// resolveParticipants resolves both sides and rejects self-transfers and receivers
// without an account number.
func resolveParticipants(ctx context.Context, repo portsrepo.AccountReader, senderRef, receiverRef string) (*domain.Account, *domain.Account, error) {
	sender, err := resolveParticipant(ctx, repo, apperrors.RoleSender, senderRef)
	if err != nil {
		return nil, nil, err
	}
	receiver, err := resolveParticipant(ctx, repo, apperrors.RoleReceiver, receiverRef)
	if err != nil {
		return nil, nil, err
	}
	if sender.AccountID == receiver.AccountID {
		return nil, nil, apperrors.NewParticipantError(apperrors.RoleReceiver, apperrors.ParticipantSelfTransfer, receiverRef)
	}
	if !receiver.HasHandle() {
		return nil, nil, apperrors.NewParticipantError(apperrors.RoleReceiver, apperrors.ParticipantMissingHandle, receiverRef)
	}
	return sender, receiver, nil
}
