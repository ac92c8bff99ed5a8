// Package memory is an in-process ledger backend. A single mutex serializes atomic
// units, and a unit's mutations are staged and applied only when it commits.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/SscSPs/p2p_ledger/internal/apperrors"
	"github.com/SscSPs/p2p_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/p2p_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/p2p_ledger/internal/utils/pagination"
	"github.com/shopspring/decimal"
)

const defaultPageSize = 50

// Store keeps accounts, transfer records and notifications in memory.
type Store struct {
	mu            sync.Mutex
	accounts      map[string]domain.Account
	transfers     map[string]domain.TransferRecord
	notifications []domain.Notification
	commitHook    func() error
}

// Option configures a Store.
type Option func(*Store)

// WithCommitHook installs fn to run at the commit point of every atomic unit, after fn
// of RunAtomic has succeeded. A non-nil error aborts the commit.
func WithCommitHook(fn func() error) Option {
	return func(s *Store) { s.commitHook = fn }
}

// NewStore creates an empty Store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		accounts:  make(map[string]domain.Account),
		transfers: make(map[string]domain.TransferRecord),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var (
	_ portsrepo.AccountRepositoryFacade = (*Store)(nil)
	_ portsrepo.LedgerStore             = (*Store)(nil)
	_ portsrepo.TransferReader          = (*Store)(nil)
	_ portsrepo.NotificationWriter      = (*Store)(nil)
)

// Seed inserts or replaces an account wholesale, balances included. Used to stand up
// fixtures; production funding goes through deposit workflows outside this service.
func (s *Store) Seed(account domain.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[account.AccountID] = cloneAccount(account)
}

// SoftDelete marks an account deleted.
func (s *Store) SoftDelete(accountID string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if acc, ok := s.accounts[accountID]; ok {
		acc.DeletedAt = &at
		s.accounts[accountID] = acc
	}
}

// Notifications returns every saved notification in arrival order.
func (s *Store) Notifications() []domain.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Notification, len(s.notifications))
	copy(out, s.notifications)
	return out
}

// --- AccountReader ---

func (s *Store) FindAccountByID(_ context.Context, accountID string) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[accountID]
	if !ok {
		return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
	}
	out := cloneAccount(acc)
	return &out, nil
}

func (s *Store) FindAccountByEmail(_ context.Context, email string) (*domain.Account, error) {
	return s.findActive(func(a domain.Account) bool { return strings.EqualFold(a.Email, strings.TrimSpace(email)) }, "email "+email)
}

func (s *Store) FindAccountByHandle(_ context.Context, handle string) (*domain.Account, error) {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return nil, fmt.Errorf("%w: empty account number", apperrors.ErrNotFound)
	}
	return s.findActive(func(a domain.Account) bool { return a.AccountHandle == handle }, "account number "+handle)
}

func (s *Store) findActive(match func(domain.Account) bool, what string) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, acc := range s.accounts {
		if !acc.IsDeleted() && match(acc) {
			out := cloneAccount(acc)
			return &out, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", apperrors.ErrNotFound, what)
}

// --- AccountWriter ---

func (s *Store) SaveAccount(_ context.Context, account domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[account.AccountID]; exists {
		return fmt.Errorf("%w: account %s", apperrors.ErrDuplicate, account.AccountID)
	}
	for _, other := range s.accounts {
		if strings.EqualFold(other.Email, account.Email) {
			return fmt.Errorf("%w: email %s", apperrors.ErrDuplicate, account.Email)
		}
		if account.AccountHandle != "" && other.AccountHandle == account.AccountHandle {
			return fmt.Errorf("%w: account number %s", apperrors.ErrDuplicate, account.AccountHandle)
		}
	}
	s.accounts[account.AccountID] = cloneAccount(account)
	return nil
}

func (s *Store) UpdateDisplayCurrency(_ context.Context, accountID string, currency string, now time.Time) error {
	return s.updateProfile(accountID, now, func(a *domain.Account) { a.DisplayCurrency = currency })
}

func (s *Store) UpdateTransferPIN(_ context.Context, accountID string, pinHash string, now time.Time) error {
	return s.updateProfile(accountID, now, func(a *domain.Account) { a.TransferPINHash = pinHash })
}

func (s *Store) updateProfile(accountID string, now time.Time, apply func(*domain.Account)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[accountID]
	if !ok || acc.IsDeleted() {
		return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
	}
	apply(&acc)
	acc.LastUpdatedAt = now
	s.accounts[accountID] = acc
	return nil
}

// --- NotificationWriter ---

func (s *Store) SaveNotification(_ context.Context, n domain.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = append(s.notifications, n)
	return nil
}

// --- TransferReader ---

func (s *Store) FindTransferByReference(_ context.Context, reference string) (*domain.TransferRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.transfers[reference]
	if !ok {
		return nil, fmt.Errorf("%w: transfer %s", apperrors.ErrNotFound, reference)
	}
	return &rec, nil
}

func (s *Store) ListTransfers(_ context.Context, filter portsrepo.TransferListFilter) ([]domain.TransferRecord, *string, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}

	var (
		cursorAt  time.Time
		cursorKey string
		hasCursor bool
	)
	if filter.NextToken != nil && *filter.NextToken != "" {
		at, key, err := pagination.DecodeCursor(*filter.NextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		cursorAt, cursorKey, hasCursor = at, key, true
	}

	s.mu.Lock()
	matched := make([]domain.TransferRecord, 0)
	for _, rec := range s.transfers {
		sent := rec.SenderID == filter.AccountID
		received := rec.ReceiverID == filter.AccountID
		switch filter.Direction {
		case domain.DirectionSent:
			received = false
		case domain.DirectionReceived:
			sent = false
		}
		if !sent && !received {
			continue
		}
		if hasCursor && !pagination.IsBefore(rec.CreatedAt, rec.Reference, cursorAt, cursorKey) {
			continue
		}
		matched = append(matched, rec)
	}
	s.mu.Unlock()

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].Reference > matched[j].Reference
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	if len(matched) <= limit {
		return matched, nil, nil
	}
	page := matched[:limit]
	last := page[len(page)-1]
	next := pagination.EncodeCursor(last.CreatedAt, last.Reference)
	return page, &next, nil
}

// --- LedgerStore ---

// RunAtomic holds the store lock for the whole unit, so units never interleave.
func (s *Store) RunAtomic(ctx context.Context, fn func(ctx context.Context, unit portsrepo.LedgerUnit) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := &unit{store: s, staged: make(map[string]domain.Account)}
	if err := fn(ctx, u); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return apperrors.NewPersistenceConflict("commit", err)
	}
	if s.commitHook != nil {
		if err := s.commitHook(); err != nil {
			return apperrors.NewPersistenceConflict("commit", err)
		}
	}

	for id, acc := range u.staged {
		s.accounts[id] = acc
	}
	for _, rec := range u.records {
		s.transfers[rec.Reference] = rec
	}
	return nil
}

// unit stages mutations; the store lock is held by RunAtomic for its whole lifetime.
type unit struct {
	store   *Store
	staged  map[string]domain.Account
	records []domain.TransferRecord
}

func (u *unit) load(accountID string) (domain.Account, error) {
	if acc, ok := u.staged[accountID]; ok {
		return acc, nil
	}
	acc, ok := u.store.accounts[accountID]
	if !ok || acc.IsDeleted() {
		return domain.Account{}, apperrors.NewPersistenceConflict("load account",
			fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID))
	}
	return cloneAccount(acc), nil
}

func (u *unit) DebitFiat(_ context.Context, accountID string, amount domain.Money) error {
	acc, err := u.load(accountID)
	if err != nil {
		return err
	}
	switch acc.FiatBalanceCurrency {
	case amount.Currency:
	case "":
		// never funded: the balance is zero in any currency
		return apperrors.NewInsufficientFundsError(amount.Currency, amount.Amount, decimal.Zero)
	default:
		return apperrors.NewPersistenceConflict("debit fiat",
			fmt.Errorf("balance currency is %s, debit is in %s", acc.FiatBalanceCurrency, amount.Currency))
	}
	if acc.FiatBalance.LessThan(amount.Amount) {
		return apperrors.NewInsufficientFundsError(amount.Currency, amount.Amount, acc.FiatBalance)
	}
	acc.FiatBalance = acc.FiatBalance.Sub(amount.Amount)
	u.staged[accountID] = acc
	return nil
}

func (u *unit) CreditFiat(_ context.Context, accountID string, amount domain.Money) error {
	acc, err := u.load(accountID)
	if err != nil {
		return err
	}
	switch acc.FiatBalanceCurrency {
	case amount.Currency:
	case "":
		acc.FiatBalanceCurrency = amount.Currency
	default:
		return apperrors.NewPersistenceConflict("credit fiat",
			fmt.Errorf("balance currency is %s, credit is in %s", acc.FiatBalanceCurrency, amount.Currency))
	}
	acc.FiatBalance = acc.FiatBalance.Add(amount.Amount)
	u.staged[accountID] = acc
	return nil
}

func (u *unit) DebitAsset(_ context.Context, accountID string, symbol string, quantity decimal.Decimal) (domain.AssetHolding, error) {
	acc, err := u.load(accountID)
	if err != nil {
		return domain.AssetHolding{}, err
	}
	inv, before, ok := acc.Assets.Debit(symbol, quantity)
	if !ok {
		held, _ := acc.Assets.Find(symbol)
		return domain.AssetHolding{}, apperrors.NewInsufficientAssetError(symbol, quantity, held.Quantity)
	}
	acc.Assets = inv
	u.staged[accountID] = acc
	return before, nil
}

func (u *unit) CreditAsset(_ context.Context, accountID string, holding domain.AssetHolding) error {
	acc, err := u.load(accountID)
	if err != nil {
		return err
	}
	acc.Assets = acc.Assets.Credit(holding)
	u.staged[accountID] = acc
	return nil
}

func (u *unit) InsertTransferRecord(_ context.Context, record domain.TransferRecord) error {
	if _, exists := u.store.transfers[record.Reference]; exists {
		return apperrors.NewPersistenceConflict("insert transfer record",
			fmt.Errorf("%w: reference %s", apperrors.ErrDuplicate, record.Reference))
	}
	for _, r := range u.records {
		if r.Reference == record.Reference {
			return apperrors.NewPersistenceConflict("insert transfer record",
				fmt.Errorf("%w: reference %s", apperrors.ErrDuplicate, record.Reference))
		}
	}
	u.records = append(u.records, record)
	return nil
}

func cloneAccount(a domain.Account) domain.Account {
	out := a
	out.Assets = a.Assets.Clone()
	if a.DeletedAt != nil {
		at := *a.DeletedAt
		out.DeletedAt = &at
	}
	return out
}
