package services

import (
	"context"

	"github.com/SscSPs/p2p_ledger/internal/core/domain"
)

// RateSource supplies a USD-pivoted rate table. The snapshot may be stale within the
// source's staleness policy; callers read FetchedAt to know how stale.
type RateSource interface {
	GetRates(ctx context.Context) (domain.RateSnapshot, error)
}
