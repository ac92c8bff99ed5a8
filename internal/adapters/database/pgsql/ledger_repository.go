package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/p2p_ledger/internal/apperrors"
	"github.com/SscSPs/p2p_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/p2p_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/p2p_ledger/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PgxLedgerStore runs atomic units inside a single Postgres transaction.
type PgxLedgerStore struct {
	BaseRepository
	now func() time.Time
}

func newPgxLedgerStore(pool *pgxpool.Pool) *PgxLedgerStore {
	return &PgxLedgerStore{
		BaseRepository: BaseRepository{Pool: pool},
		now:            func() time.Time { return time.Now().UTC() },
	}
}

var _ portsrepo.LedgerStore = (*PgxLedgerStore)(nil)

// RunAtomic begins a transaction, hands fn a unit bound to it and commits when fn succeeds.
func (s *PgxLedgerStore) RunAtomic(ctx context.Context, fn func(ctx context.Context, unit portsrepo.LedgerUnit) error) error {
	tx, err := s.Begin(ctx)
	if err != nil {
		return err
	}
	defer s.Rollback(ctx, tx)

	if err := fn(ctx, &pgxLedgerUnit{tx: tx, now: s.now()}); err != nil {
		return err
	}
	return s.Commit(ctx, tx)
}

type pgxLedgerUnit struct {
	tx  pgx.Tx
	now time.Time
}

var _ portsrepo.LedgerUnit = (*pgxLedgerUnit)(nil)

// DebitFiat is a single conditional UPDATE. When it matches no row the account is
// re-read to tell a short balance apart from a concurrent change.
func (u *pgxLedgerUnit) DebitFiat(ctx context.Context, accountID string, amount domain.Money) error {
	query := `
		UPDATE accounts
		SET fiat_balance = fiat_balance - $2, last_updated_at = $4
		WHERE account_id = $1
			AND deleted_at IS NULL
			AND fiat_balance_currency = $3
			AND fiat_balance >= $2
		RETURNING fiat_balance;
	`
	var remaining decimal.Decimal
	err := u.tx.QueryRow(ctx, query, accountID, amount.Amount, amount.Currency, u.now).Scan(&remaining)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return wrapUnitError("debit fiat", err)
	}

	var (
		balance   decimal.Decimal
		currency  *string
		deletedAt *time.Time
	)
	err = u.tx.QueryRow(ctx,
		`SELECT fiat_balance, fiat_balance_currency, deleted_at FROM accounts WHERE account_id = $1;`,
		accountID,
	).Scan(&balance, &currency, &deletedAt)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return apperrors.NewPersistenceConflict("debit fiat", fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID))
	case err != nil:
		return wrapUnitError("debit fiat", err)
	case deletedAt != nil:
		return apperrors.NewPersistenceConflict("debit fiat", fmt.Errorf("account %s was deleted", accountID))
	case currency == nil:
		return apperrors.NewInsufficientFundsError(amount.Currency, amount.Amount, decimal.Zero)
	case *currency != amount.Currency:
		return apperrors.NewPersistenceConflict("debit fiat",
			fmt.Errorf("balance currency is %s, debit is in %s", *currency, amount.Currency))
	}
	return apperrors.NewInsufficientFundsError(amount.Currency, amount.Amount, balance)
}

// CreditFiat increments the balance relative to its stored value, fixing the balance
// currency on first funding.
func (u *pgxLedgerUnit) CreditFiat(ctx context.Context, accountID string, amount domain.Money) error {
	query := `
		UPDATE accounts
		SET fiat_balance = fiat_balance + $2,
			fiat_balance_currency = COALESCE(fiat_balance_currency, $3),
			last_updated_at = $4
		WHERE account_id = $1
			AND deleted_at IS NULL
			AND (fiat_balance_currency IS NULL OR fiat_balance_currency = $3);
	`
	tag, err := u.tx.Exec(ctx, query, accountID, amount.Amount, amount.Currency, u.now)
	if err != nil {
		return wrapUnitError("credit fiat", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewPersistenceConflict("credit fiat",
			fmt.Errorf("account %s is gone or no longer settles in %s", accountID, amount.Currency))
	}
	return nil
}

func (u *pgxLedgerUnit) DebitAsset(ctx context.Context, accountID string, symbol string, quantity decimal.Decimal) (domain.AssetHolding, error) {
	if err := u.lockAccount(ctx, accountID, "debit asset"); err != nil {
		return domain.AssetHolding{}, err
	}

	before := domain.AssetHolding{Symbol: symbol}
	err := u.tx.QueryRow(ctx,
		`SELECT quantity, average_cost FROM asset_holdings WHERE account_id = $1 AND symbol = $2 FOR UPDATE;`,
		accountID, symbol,
	).Scan(&before.Quantity, &before.AverageCost)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.AssetHolding{}, apperrors.NewInsufficientAssetError(symbol, quantity, decimal.Zero)
	}
	if err != nil {
		return domain.AssetHolding{}, wrapUnitError("debit asset", err)
	}
	if before.Quantity.LessThan(quantity) {
		return domain.AssetHolding{}, apperrors.NewInsufficientAssetError(symbol, quantity, before.Quantity)
	}

	remaining := domain.AssetHolding{Symbol: symbol, Quantity: before.Quantity.Sub(quantity)}
	if remaining.IsDust() {
		_, err = u.tx.Exec(ctx, `DELETE FROM asset_holdings WHERE account_id = $1 AND symbol = $2;`, accountID, symbol)
	} else {
		_, err = u.tx.Exec(ctx,
			`UPDATE asset_holdings SET quantity = $3 WHERE account_id = $1 AND symbol = $2;`,
			accountID, symbol, remaining.Quantity)
	}
	if err != nil {
		return domain.AssetHolding{}, wrapUnitError("debit asset", err)
	}
	return before, nil
}

// CreditAsset upserts the holding. On conflict only the quantity grows, so an existing
// holding keeps its own average cost.
func (u *pgxLedgerUnit) CreditAsset(ctx context.Context, accountID string, holding domain.AssetHolding) error {
	if err := u.lockAccount(ctx, accountID, "credit asset"); err != nil {
		return err
	}
	if holding.IsDust() {
		// never open a dust entry; only top up one that already exists
		_, err := u.tx.Exec(ctx,
			`UPDATE asset_holdings SET quantity = quantity + $3 WHERE account_id = $1 AND symbol = $2;`,
			accountID, holding.Symbol, holding.Quantity)
		if err != nil {
			return wrapUnitError("credit asset", err)
		}
		return nil
	}
	query := `
		INSERT INTO asset_holdings (account_id, symbol, quantity, average_cost, position)
		VALUES ($1, $2, $3, $4, (SELECT COALESCE(MAX(position), 0) + 1 FROM asset_holdings WHERE account_id = $1))
		ON CONFLICT (account_id, symbol)
		DO UPDATE SET quantity = asset_holdings.quantity + EXCLUDED.quantity;
	`
	if _, err := u.tx.Exec(ctx, query, accountID, holding.Symbol, holding.Quantity, holding.AverageCost); err != nil {
		return wrapUnitError("credit asset", err)
	}
	return nil
}

func (u *pgxLedgerUnit) InsertTransferRecord(ctx context.Context, record domain.TransferRecord) error {
	m, err := mapping.ToModelTransfer(record)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO transfers (reference, sender_id, receiver_id, sender_handle, receiver_handle, asset_kind,
			settled_amount, settled_unit, status, memo, provenance, cost_basis, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	_, err = u.tx.Exec(ctx, query,
		m.Reference,
		m.SenderID,
		m.ReceiverID,
		m.SenderHandle,
		m.ReceiverHandle,
		m.AssetKind,
		m.SettledAmount,
		m.SettledUnit,
		m.Status,
		m.Memo,
		m.Provenance,
		m.CostBasis,
		m.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewPersistenceConflict("insert transfer record",
				fmt.Errorf("%w: reference %s", apperrors.ErrDuplicate, m.Reference))
		}
		return wrapUnitError("insert transfer record", err)
	}
	return nil
}

// lockAccount takes the account row lock so holding changes serialize per account.
func (u *pgxLedgerUnit) lockAccount(ctx context.Context, accountID, op string) error {
	var deletedAt *time.Time
	err := u.tx.QueryRow(ctx, `SELECT deleted_at FROM accounts WHERE account_id = $1 FOR UPDATE;`, accountID).Scan(&deletedAt)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return apperrors.NewPersistenceConflict(op, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID))
	case err != nil:
		return wrapUnitError(op, err)
	case deletedAt != nil:
		return apperrors.NewPersistenceConflict(op, fmt.Errorf("account %s was deleted", accountID))
	}
	return nil
}
