package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/SscSPs/p2p_ledger/internal/apperrors"
	"github.com/SscSPs/p2p_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/p2p_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/p2p_ledger/internal/models"
	"github.com/SscSPs/p2p_ledger/internal/utils/mapping"
	"github.com/SscSPs/p2p_ledger/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	transferColumns = `reference, sender_id, receiver_id, sender_handle, receiver_handle, asset_kind,
		settled_amount, settled_unit, status, memo, provenance, cost_basis, created_at`
	defaultPageSize = 50
)

type PgxTransferRepository struct {
	BaseRepository
}

func newPgxTransferRepository(pool *pgxpool.Pool) *PgxTransferRepository {
	return &PgxTransferRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.TransferReader = (*PgxTransferRepository)(nil)

func (r *PgxTransferRepository) FindTransferByReference(ctx context.Context, reference string) (*domain.TransferRecord, error) {
	query := `SELECT ` + transferColumns + ` FROM transfers WHERE reference = $1;`
	m, err := scanTransfer(r.Pool.QueryRow(ctx, query, reference))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: transfer %s", apperrors.ErrNotFound, reference)
		}
		return nil, fmt.Errorf("failed to find transfer %s: %w", reference, err)
	}
	rec, err := mapping.ToDomainTransfer(m)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListTransfers pages with a (created_at, reference) keyset, newest first.
func (r *PgxTransferRepository) ListTransfers(ctx context.Context, filter portsrepo.TransferListFilter) ([]domain.TransferRecord, *string, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}

	args := []any{filter.AccountID}
	var where []string
	switch filter.Direction {
	case domain.DirectionSent:
		where = append(where, "sender_id = $1")
	case domain.DirectionReceived:
		where = append(where, "receiver_id = $1")
	default:
		where = append(where, "(sender_id = $1 OR receiver_id = $1)")
	}

	if filter.NextToken != nil && *filter.NextToken != "" {
		cursorAt, cursorKey, err := pagination.DecodeCursor(*filter.NextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		args = append(args, cursorAt, cursorKey)
		where = append(where, fmt.Sprintf("(created_at, reference) < ($%d, $%d)", len(args)-1, len(args)))
	}
	args = append(args, limit+1)

	query := fmt.Sprintf(`SELECT %s FROM transfers WHERE %s ORDER BY created_at DESC, reference DESC LIMIT $%d;`,
		transferColumns, strings.Join(where, " AND "), len(args))

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list transfers for account %s: %w", filter.AccountID, err)
	}
	defer rows.Close()

	records := make([]domain.TransferRecord, 0, limit)
	for rows.Next() {
		m, err := scanTransfer(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan transfer: %w", err)
		}
		rec, err := mapping.ToDomainTransfer(m)
		if err != nil {
			return nil, nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating transfers: %w", err)
	}

	if len(records) <= limit {
		return records, nil, nil
	}
	records = records[:limit]
	last := records[len(records)-1]
	next := pagination.EncodeCursor(last.CreatedAt, last.Reference)
	return records, &next, nil
}

func scanTransfer(row pgx.Row) (models.Transfer, error) {
	var m models.Transfer
	err := row.Scan(
		&m.Reference,
		&m.SenderID,
		&m.ReceiverID,
		&m.SenderHandle,
		&m.ReceiverHandle,
		&m.AssetKind,
		&m.SettledAmount,
		&m.SettledUnit,
		&m.Status,
		&m.Memo,
		&m.Provenance,
		&m.CostBasis,
		&m.CreatedAt,
	)
	return m, err
}
