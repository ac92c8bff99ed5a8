package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/p2p_ledger/internal/apperrors"
	"github.com/SscSPs/p2p_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/p2p_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/p2p_ledger/internal/models"
	"github.com/SscSPs/p2p_ledger/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const accountColumns = `account_id, email, name, account_handle, display_currency, fiat_balance,
	fiat_balance_currency, transfer_pin_hash, created_at, last_updated_at, deleted_at`

// rowQuerier is satisfied by both *pgxpool.Pool and pgx.Tx.
type rowQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PgxAccountRepository struct {
	BaseRepository
}

// newPgxAccountRepository creates a new repository for account data.
func newPgxAccountRepository(pool *pgxpool.Pool) *PgxAccountRepository {
	return &PgxAccountRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

// SaveAccount inserts a new account. Holdings are written only by ledger units.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	m := mapping.ToModelAccount(account)

	query := `
		INSERT INTO accounts (account_id, email, name, account_handle, display_currency, fiat_balance,
			fiat_balance_currency, transfer_pin_hash, created_at, last_updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.AccountID,
		m.Email,
		m.Name,
		m.AccountHandle,
		m.DisplayCurrency,
		m.FiatBalance,
		m.FiatBalanceCurrency,
		m.TransferPINHash,
		m.CreatedAt,
		m.LastUpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: account %s, email or account number already in use", apperrors.ErrDuplicate, m.AccountID)
		}
		return fmt.Errorf("failed to save account %s: %w", m.AccountID, err)
	}
	return nil
}

// FindAccountByID retrieves an account by its ID, soft-deleted or not.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = $1;`
	return findAccount(ctx, r.Pool, query, accountID)
}

// FindAccountByEmail retrieves a live account by email, ignoring case.
func (r *PgxAccountRepository) FindAccountByEmail(ctx context.Context, email string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE lower(email) = lower($1) AND deleted_at IS NULL;`
	return findAccount(ctx, r.Pool, query, email)
}

// FindAccountByHandle retrieves a live account by its account number.
func (r *PgxAccountRepository) FindAccountByHandle(ctx context.Context, handle string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_handle = $1 AND deleted_at IS NULL;`
	return findAccount(ctx, r.Pool, query, handle)
}

// UpdateDisplayCurrency changes only the display currency of a live account.
func (r *PgxAccountRepository) UpdateDisplayCurrency(ctx context.Context, accountID string, currency string, now time.Time) error {
	query := `UPDATE accounts SET display_currency = $2, last_updated_at = $3 WHERE account_id = $1 AND deleted_at IS NULL;`
	return r.updateProfile(ctx, query, accountID, currency, now)
}

// UpdateTransferPIN stores a new PIN hash for a live account.
func (r *PgxAccountRepository) UpdateTransferPIN(ctx context.Context, accountID string, pinHash string, now time.Time) error {
	query := `UPDATE accounts SET transfer_pin_hash = $2, last_updated_at = $3 WHERE account_id = $1 AND deleted_at IS NULL;`
	return r.updateProfile(ctx, query, accountID, pinHash, now)
}

func (r *PgxAccountRepository) updateProfile(ctx context.Context, query, accountID, value string, now time.Time) error {
	tag, err := r.Pool.Exec(ctx, query, accountID, value, now)
	if err != nil {
		return fmt.Errorf("failed to update account %s: %w", accountID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
	}
	return nil
}

func findAccount(ctx context.Context, q rowQuerier, query string, arg string) (*domain.Account, error) {
	var m models.Account
	err := q.QueryRow(ctx, query, arg).Scan(
		&m.AccountID,
		&m.Email,
		&m.Name,
		&m.AccountHandle,
		&m.DisplayCurrency,
		&m.FiatBalance,
		&m.FiatBalanceCurrency,
		&m.TransferPINHash,
		&m.CreatedAt,
		&m.LastUpdatedAt,
		&m.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, arg)
		}
		return nil, fmt.Errorf("failed to find account %s: %w", arg, err)
	}

	holdings, err := loadHoldings(ctx, q, m.AccountID)
	if err != nil {
		return nil, err
	}
	acc := mapping.ToDomainAccount(m, holdings)
	return &acc, nil
}

func loadHoldings(ctx context.Context, q rowQuerier, accountID string) ([]models.AssetHolding, error) {
	query := `
		SELECT account_id, symbol, quantity, average_cost, position
		FROM asset_holdings
		WHERE account_id = $1
		ORDER BY position;
	`
	rows, err := q.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query holdings of account %s: %w", accountID, err)
	}
	defer rows.Close()

	holdings := make([]models.AssetHolding, 0)
	for rows.Next() {
		var h models.AssetHolding
		if err := rows.Scan(&h.AccountID, &h.Symbol, &h.Quantity, &h.AverageCost, &h.Position); err != nil {
			return nil, fmt.Errorf("failed to scan holding: %w", err)
		}
		holdings = append(holdings, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating holdings of account %s: %w", accountID, err)
	}
	return holdings, nil
}
