//go:build integration

package pgsql

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/SscSPs/p2p_ledger/internal/apperrors"
	"github.com/SscSPs/p2p_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/p2p_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/p2p_ledger/pkg/database"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

type PgsqlLedgerTestSuite struct {
	suite.Suite
	container testcontainers.Container
	pool      *pgxpool.Pool
	provider  portsrepo.RepositoryProvider
}

func TestPgsqlLedgerTestSuite(t *testing.T) {
	suite.Run(t, new(PgsqlLedgerTestSuite))
}

func (s *PgsqlLedgerTestSuite) SetupSuite() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	const (
		user     = "ledger"
		password = "ledger"
		dbName   = "p2p_ledger"
	)
	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     user,
			"POSTGRES_PASSWORD": password,
			"POSTGRES_DB":       dbName,
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).WithStartupTimeout(60 * time.Second),
	}
	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	s.Require().NoError(err)
	s.container = c

	host, err := c.Host(ctx)
	s.Require().NoError(err)
	port, err := c.MappedPort(ctx, "5432/tcp")
	s.Require().NoError(err)
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, password, host, port.Port(), dbName)

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	s.Require().NoError(database.RunMigrations(dsn, "file://../../../../migrations", logger))

	s.pool, err = database.NewPgxPool(ctx, dsn, 10)
	s.Require().NoError(err)
	s.provider = NewRepositoryProvider(s.pool)
}

func (s *PgsqlLedgerTestSuite) TearDownSuite() {
	database.ClosePgxPool(s.pool)
	if s.container != nil {
		_ = s.container.Terminate(context.Background())
	}
}

func (s *PgsqlLedgerTestSuite) SetupTest() {
	_, err := s.pool.Exec(context.Background(), `TRUNCATE notifications, transfers, asset_holdings, accounts;`)
	s.Require().NoError(err)
}

func (s *PgsqlLedgerTestSuite) seed(id, handle, display string, balance string, currency string) {
	now := time.Now().UTC()
	acc := domain.Account{
		AccountID:           id,
		Email:               id + "@example.com",
		Name:                id,
		AccountHandle:       handle,
		DisplayCurrency:     display,
		FiatBalance:         decimal.RequireFromString(balance),
		FiatBalanceCurrency: currency,
		AuditFields:         domain.AuditFields{CreatedAt: now, LastUpdatedAt: now},
	}
	s.Require().NoError(s.provider.AccountRepo.SaveAccount(context.Background(), acc))
}

func (s *PgsqlLedgerTestSuite) TestSaveAccount_DuplicateEmail() {
	s.seed("a", "1000000001", "USD", "0", "")
	now := time.Now().UTC()
	err := s.provider.AccountRepo.SaveAccount(context.Background(), domain.Account{
		AccountID: "b", Email: "A@example.com", Name: "b", DisplayCurrency: "USD",
		AuditFields: domain.AuditFields{CreatedAt: now, LastUpdatedAt: now},
	})
	s.ErrorIs(err, apperrors.ErrDuplicate)

	found, err := s.provider.AccountRepo.FindAccountByEmail(context.Background(), "A@EXAMPLE.COM")
	s.Require().NoError(err)
	s.Equal("a", found.AccountID)
	s.Empty(found.FiatBalanceCurrency)
}

func (s *PgsqlLedgerTestSuite) TestFiatUnit_CommitsDebitCreditAndRecord() {
	ctx := context.Background()
	s.seed("sender", "1000000001", "USD", "100.00", "EUR")
	s.seed("receiver", "1000000002", "BRL", "0", "")

	prov, err := domain.NewConversionProvenance(
		domain.NewMoney(decimal.RequireFromString("50"), "USD"),
		domain.NewMoney(decimal.RequireFromString("45.00"), "EUR"),
		domain.NewMoney(decimal.RequireFromString("270.00"), "BRL"),
		domain.NewMoney(decimal.RequireFromString("270.00"), "BRL"),
		time.Now().UTC(),
	)
	s.Require().NoError(err)
	rec := domain.TransferRecord{
		Reference: "TRF01", SenderID: "sender", ReceiverID: "receiver",
		SenderHandle: "1000000001", ReceiverHandle: "1000000002",
		AssetKind: domain.AssetKindFiat, SettledAmount: prov.Deducted.Amount, SettledUnit: "EUR",
		Status: domain.TransferStatusCompleted, Provenance: &prov,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}

	err = s.provider.Ledger.RunAtomic(ctx, func(ctx context.Context, unit portsrepo.LedgerUnit) error {
		if err := unit.DebitFiat(ctx, "sender", prov.Deducted); err != nil {
			return err
		}
		if err := unit.CreditFiat(ctx, "receiver", prov.Credited); err != nil {
			return err
		}
		return unit.InsertTransferRecord(ctx, rec)
	})
	s.Require().NoError(err)

	sender, _ := s.provider.AccountRepo.FindAccountByID(ctx, "sender")
	receiver, _ := s.provider.AccountRepo.FindAccountByID(ctx, "receiver")
	s.True(sender.FiatBalance.Equal(decimal.RequireFromString("55.00")))
	s.True(receiver.FiatBalance.Equal(decimal.RequireFromString("270.00")))
	s.Equal("BRL", receiver.FiatBalanceCurrency)

	stored, err := s.provider.TransferRepo.FindTransferByReference(ctx, "TRF01")
	s.Require().NoError(err)
	s.Require().NotNil(stored.Provenance)
	s.True(stored.Provenance.Input.Amount.Equal(decimal.RequireFromString("50")))
}

func (s *PgsqlLedgerTestSuite) TestFiatUnit_ShortBalanceRollsBack() {
	ctx := context.Background()
	s.seed("sender", "1000000001", "EUR", "20.50", "EUR")
	s.seed("receiver", "1000000002", "EUR", "0", "")

	err := s.provider.Ledger.RunAtomic(ctx, func(ctx context.Context, unit portsrepo.LedgerUnit) error {
		if err := unit.CreditFiat(ctx, "receiver", domain.NewMoney(decimal.RequireFromString("45.00"), "EUR")); err != nil {
			return err
		}
		return unit.DebitFiat(ctx, "sender", domain.NewMoney(decimal.RequireFromString("45.00"), "EUR"))
	})
	var ie *apperrors.InsufficientFundsError
	s.Require().ErrorAs(err, &ie)
	s.True(ie.Shortfall().Equal(decimal.RequireFromString("24.50")))

	receiver, _ := s.provider.AccountRepo.FindAccountByID(ctx, "receiver")
	s.True(receiver.FiatBalance.IsZero())
	s.Empty(receiver.FiatBalanceCurrency)
}

func (s *PgsqlLedgerTestSuite) TestAssetUnit_DustAndAverageCost() {
	ctx := context.Background()
	s.seed("sender", "1000000001", "USD", "0", "")
	s.seed("receiver", "1000000002", "USD", "0", "")

	credit := func(id string, h domain.AssetHolding) {
		s.Require().NoError(s.provider.Ledger.RunAtomic(ctx, func(ctx context.Context, unit portsrepo.LedgerUnit) error {
			return unit.CreditAsset(ctx, id, h)
		}))
	}
	credit("sender", domain.AssetHolding{Symbol: "BTC", Quantity: decimal.RequireFromString("0.500000005"), AverageCost: decimal.NewFromInt(30000)})
	credit("receiver", domain.AssetHolding{Symbol: "BTC", Quantity: decimal.RequireFromString("1"), AverageCost: decimal.NewFromInt(20000)})

	var before domain.AssetHolding
	err := s.provider.Ledger.RunAtomic(ctx, func(ctx context.Context, unit portsrepo.LedgerUnit) error {
		var err error
		before, err = unit.DebitAsset(ctx, "sender", "BTC", decimal.RequireFromString("0.5"))
		if err != nil {
			return err
		}
		return unit.CreditAsset(ctx, "receiver", domain.AssetHolding{Symbol: "BTC", Quantity: decimal.RequireFromString("0.5"), AverageCost: before.AverageCost})
	})
	s.Require().NoError(err)
	s.True(before.AverageCost.Equal(decimal.NewFromInt(30000)))

	sender, _ := s.provider.AccountRepo.FindAccountByID(ctx, "sender")
	receiver, _ := s.provider.AccountRepo.FindAccountByID(ctx, "receiver")
	s.Empty(sender.Assets)
	held, ok := receiver.Assets.Find("BTC")
	s.Require().True(ok)
	s.True(held.Quantity.Equal(decimal.RequireFromString("1.5")))
	s.True(held.AverageCost.Equal(decimal.NewFromInt(20000)))
}

func (s *PgsqlLedgerTestSuite) TestInsertTransferRecord_DuplicateIsConflict() {
	ctx := context.Background()
	s.seed("a", "1000000001", "USD", "0", "")
	s.seed("b", "1000000002", "USD", "0", "")
	cb := domain.NewCostBasis("ETH", decimal.NewFromInt(1), decimal.NewFromInt(1500))
	rec := domain.TransferRecord{
		Reference: "TRFDUP", SenderID: "a", ReceiverID: "b", AssetKind: "ETH",
		SettledAmount: decimal.NewFromInt(1), SettledUnit: "ETH", Status: domain.TransferStatusCompleted,
		CostBasis: &cb, CreatedAt: time.Now().UTC(),
	}
	insert := func() error {
		return s.provider.Ledger.RunAtomic(ctx, func(ctx context.Context, unit portsrepo.LedgerUnit) error {
			return unit.InsertTransferRecord(ctx, rec)
		})
	}
	s.Require().NoError(insert())
	err := insert()
	s.True(apperrors.IsRetryable(err))
	s.ErrorIs(err, apperrors.ErrDuplicate)
}

func (s *PgsqlLedgerTestSuite) TestListTransfers_KeysetPages() {
	ctx := context.Background()
	s.seed("a", "1000000001", "USD", "0", "")
	s.seed("b", "1000000002", "USD", "0", "")
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		cb := domain.NewCostBasis("ETH", decimal.NewFromInt(1), decimal.NewFromInt(1500))
		rec := domain.TransferRecord{
			Reference: fmt.Sprintf("TRF%02d", i), SenderID: "a", ReceiverID: "b", AssetKind: "ETH",
			SettledAmount: decimal.NewFromInt(1), SettledUnit: "ETH", Status: domain.TransferStatusCompleted,
			CostBasis: &cb, CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		s.Require().NoError(s.provider.Ledger.RunAtomic(ctx, func(ctx context.Context, unit portsrepo.LedgerUnit) error {
			return unit.InsertTransferRecord(ctx, rec)
		}))
	}

	page, next, err := s.provider.TransferRepo.ListTransfers(ctx, portsrepo.TransferListFilter{AccountID: "b", Direction: domain.DirectionReceived, Limit: 3})
	s.Require().NoError(err)
	s.Require().Len(page, 3)
	s.Equal("TRF04", page[0].Reference)
	s.Require().NotNil(next)

	rest, next, err := s.provider.TransferRepo.ListTransfers(ctx, portsrepo.TransferListFilter{AccountID: "b", Limit: 3, NextToken: next})
	s.Require().NoError(err)
	s.Len(rest, 2)
	s.Nil(next)
	s.Equal("TRF00", rest[1].Reference)

	sent, _, err := s.provider.TransferRepo.ListTransfers(ctx, portsrepo.TransferListFilter{AccountID: "b", Direction: domain.DirectionSent})
	s.Require().NoError(err)
	s.Empty(sent)
}
