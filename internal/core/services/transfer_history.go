package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/p2p_ledger/internal/apperrors"
	"github.com/SscSPs/p2p_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/p2p_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/p2p_ledger/internal/dto"
)

func (s *transferService) GetTransfer(ctx context.Context, viewerID string, reference string) (*domain.TransferView, error) {
	rec, err := s.transferRepo.FindTransferByReference(ctx, reference)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find transfer", slog.String("reference", reference))
		}
		return nil, err
	}
	view, ok := rec.ViewFor(viewerID)
	if !ok {
		return nil, fmt.Errorf("%w: transfer %s does not involve account %s", apperrors.ErrForbidden, reference, viewerID)
	}
	return &view, nil
}

func (s *transferService) ListTransfers(ctx context.Context, viewerID string, params dto.ListTransfersParams) (*dto.ListTransfersResponse, error) {
	filter := portsrepo.TransferListFilter{
		AccountID: viewerID,
		Limit:     params.Limit,
		NextToken: params.NextToken,
	}
	switch strings.ToLower(params.Direction) {
	case "sent":
		filter.Direction = domain.DirectionSent
	case "received":
		filter.Direction = domain.DirectionReceived
	case "", "all":
	default:
		return nil, fmt.Errorf("%w: unknown direction %q", apperrors.ErrValidation, params.Direction)
	}

	records, next, err := s.transferRepo.ListTransfers(ctx, filter)
	if err != nil {
		if !errors.Is(err, apperrors.ErrValidation) {
			s.LogError(ctx, err, "Failed to list transfers", slog.String("account_id", viewerID))
		}
		return nil, err
	}

	resp := &dto.ListTransfersResponse{
		Transfers: make([]dto.TransferViewResponse, 0, len(records)),
		NextToken: next,
	}
	for _, rec := range records {
		if view, ok := rec.ViewFor(viewerID); ok {
			resp.Transfers = append(resp.Transfers, dto.ToTransferViewResponse(view))
		}
	}
	return resp, nil
}
