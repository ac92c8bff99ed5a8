package services_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/SscSPs/p2p_ledger/internal/adapters/database/memory"
	"github.com/SscSPs/p2p_ledger/internal/apperrors"
	"github.com/SscSPs/p2p_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/p2p_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/p2p_ledger/internal/core/ports/services"
	"github.com/SscSPs/p2p_ledger/internal/core/services"
	"github.com/SscSPs/p2p_ledger/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// MockRateSource is a mock type for the RateSource interface
type MockRateSource struct {
	mock.Mock
}

func (m *MockRateSource) GetRates(ctx context.Context) (domain.RateSnapshot, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.RateSnapshot), args.Error(1)
}

// recordingDispatcher keeps every dispatched notification.
type recordingDispatcher struct {
	mu   sync.Mutex
	sent []domain.Notification
}

func (d *recordingDispatcher) Dispatch(_ context.Context, notifications ...domain.Notification) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sent = append(d.sent, notifications...)
}

func (d *recordingDispatcher) all() []domain.Notification {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]domain.Notification(nil), d.sent...)
}

// sequenceRefs hands out references in order, repeating the last one.
type sequenceRefs struct {
	mu   sync.Mutex
	refs []string
}

func (g *sequenceRefs) NewReference() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	ref := g.refs[0]
	if len(g.refs) > 1 {
		g.refs = g.refs[1:]
	}
	return ref
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

var testRates = domain.RateSnapshot{
	Rates: domain.RateTable{
		"USD": dec("1"),
		"EUR": dec("0.90"),
		"BRL": dec("5.40"),
		"GBP": dec("0.80"),
	},
	FetchedAt: time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC),
	Source:    "test",
}

type TransferServiceTestSuite struct {
	suite.Suite
	ctx        context.Context
	store      *memory.Store
	rates      *MockRateSource
	dispatcher *recordingDispatcher
	service    portssvc.TransferSvcFacade
}

func (suite *TransferServiceTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.store = memory.NewStore()
	suite.rates = new(MockRateSource)
	suite.rates.On("GetRates", mock.Anything).Return(testRates, nil).Maybe()
	suite.dispatcher = &recordingDispatcher{}
	suite.service = suite.newService()

	seedAccounts(suite.store)
}

func (suite *TransferServiceTestSuite) newService(opts ...services.TransferServiceOption) portssvc.TransferSvcFacade {
	base := []services.TransferServiceOption{
		services.WithNotificationDispatcher(suite.dispatcher),
		services.WithRetryPolicy(3, 0, 0),
	}
	return services.NewTransferService(suite.store, suite.store, suite.store, suite.rates, append(base, opts...)...)
}

func seedAccounts(store *memory.Store) {
	// sender: balance in EUR, enters amounts in USD
	store.Seed(domain.Account{
		AccountID:           "alice",
		Email:               "alice@example.com",
		Name:                "Alice",
		AccountHandle:       "1000000001",
		DisplayCurrency:     "USD",
		FiatBalance:         dec("100.00"),
		FiatBalanceCurrency: "EUR",
		Assets: domain.AssetInventory{
			{Symbol: "BTC", Quantity: dec("0.5"), AverageCost: dec("30000")},
			{Symbol: "ETH", Quantity: dec("2"), AverageCost: dec("1500")},
		},
	})
	store.Seed(domain.Account{
		AccountID:           "bruno",
		Email:               "bruno@example.com",
		Name:                "Bruno",
		AccountHandle:       "1000000002",
		DisplayCurrency:     "BRL",
		FiatBalance:         dec("10.00"),
		FiatBalanceCurrency: "BRL",
		Assets: domain.AssetInventory{
			{Symbol: "ETH", Quantity: dec("1"), AverageCost: dec("2000")},
		},
	})
}

func authFor(accountID string) domain.Authorization {
	return domain.Authorization{AccountID: accountID, Method: domain.AuthorizationTransferPIN, VerifiedAt: time.Now()}
}

func (suite *TransferServiceTestSuite) fiat(receiver, amount string) (*domain.TransferRecord, error) {
	return suite.service.SettleFiatTransfer(suite.ctx, portssvc.FiatTransferRequest{
		Authorization: authFor("alice"),
		SenderRef:     "alice",
		ReceiverRef:   receiver,
		InputAmount:   dec(amount),
	})
}

func (suite *TransferServiceTestSuite) account(id string) *domain.Account {
	acc, err := suite.store.FindAccountByID(suite.ctx, id)
	suite.Require().NoError(err)
	return acc
}

// --- Fiat settlement ---

func (suite *TransferServiceTestSuite) TestSettleFiat_CrossCurrency() {
	rec, err := suite.fiat("bruno@example.com", "50.00")
	suite.Require().NoError(err)

	suite.True(rec.IsFiat())
	suite.Equal(domain.TransferStatusCompleted, rec.Status)
	suite.Len(rec.Reference, 29)
	suite.True(rec.SettledAmount.Equal(dec("45.00")))
	suite.Equal("EUR", rec.SettledUnit)
	suite.Equal("1000000002", rec.ReceiverHandle)

	p := rec.Provenance
	suite.Require().NotNil(p)
	suite.Equal("USD", p.Input.Currency)
	suite.True(p.Input.Amount.Equal(dec("50.00")))
	suite.True(p.Deducted.Amount.Equal(dec("45.00")))
	suite.True(p.Credited.Amount.Equal(dec("270.00")))
	suite.Equal("BRL", p.Credited.Currency)
	suite.True(p.Display.Amount.Equal(p.Credited.Amount))
	suite.Equal(testRates.FetchedAt, p.RatesAsOf)

	alice := suite.account("alice")
	suite.True(alice.FiatBalance.Equal(dec("55.00")))
	suite.Equal("EUR", alice.FiatBalanceCurrency)
	bruno := suite.account("bruno")
	suite.True(bruno.FiatBalance.Equal(dec("280.00")))
	suite.Equal("BRL", bruno.FiatBalanceCurrency)

	notes := suite.dispatcher.all()
	suite.Require().Len(notes, 2)
	suite.Equal("alice", notes[0].AccountID)
	suite.Equal("Transfer Sent", notes[0].Title)
	suite.Equal("You sent 50.00 USD to 1000000002", notes[0].Message)
	suite.Equal("bruno", notes[1].AccountID)
	suite.Equal("You received 270.00 BRL from 1000000001", notes[1].Message)
	suite.Equal(rec.Reference, notes[1].Reference)
}

func (suite *TransferServiceTestSuite) TestSettleFiat_ReceiverByAccountNumber() {
	rec, err := suite.fiat("1000000002", "10.00")
	suite.Require().NoError(err)
	suite.Equal("bruno", rec.ReceiverID)
}

func (suite *TransferServiceTestSuite) TestSettleFiat_FirstFundingFixesReceiverCurrency() {
	suite.store.Seed(domain.Account{
		AccountID:       "carol",
		Email:           "carol@example.com",
		AccountHandle:   "1000000003",
		DisplayCurrency: "GBP",
	})

	rec, err := suite.fiat("carol", "10.00")
	suite.Require().NoError(err)
	suite.True(rec.Provenance.Credited.Amount.Equal(dec("8.00")))

	carol := suite.account("carol")
	suite.Equal("GBP", carol.FiatBalanceCurrency)
	suite.True(carol.FiatBalance.Equal(dec("8.00")))
}

func (suite *TransferServiceTestSuite) TestSettleFiat_DisplayCurrencyChangeKeepsBalanceCurrency() {
	_, err := suite.fiat("bruno", "10.00")
	suite.Require().NoError(err)
	suite.Require().NoError(suite.store.UpdateDisplayCurrency(suite.ctx, "bruno", "USD", time.Now()))

	_, err = suite.fiat("bruno", "10.00")
	suite.Require().NoError(err)

	bruno := suite.account("bruno")
	suite.Equal("BRL", bruno.FiatBalanceCurrency)
	suite.True(bruno.FiatBalance.Equal(dec("118.00")))
}

func (suite *TransferServiceTestSuite) TestSettleFiat_ConservesValueAtRates() {
	before := suite.account("alice").FiatBalance.Add(suite.account("bruno").FiatBalance.Div(dec("5.40")).Mul(dec("0.90")))
	_, err := suite.fiat("bruno", "33.33")
	suite.Require().NoError(err)
	after := suite.account("alice").FiatBalance.Add(suite.account("bruno").FiatBalance.Div(dec("5.40")).Mul(dec("0.90")))
	// per-step rounding may move at most a cent either way
	suite.True(before.Sub(after).Abs().LessThanOrEqual(dec("0.01")))
}

func (suite *TransferServiceTestSuite) TestSettleFiat_InsufficientFunds() {
	_, err := suite.fiat("bruno", "200.00")

	var insufficient *apperrors.InsufficientFundsError
	suite.Require().ErrorAs(err, &insufficient)
	suite.Equal("EUR", insufficient.Unit)
	suite.True(insufficient.Shortfall().Equal(dec("80.00")))
	suite.True(suite.account("alice").FiatBalance.Equal(dec("100.00")))
	suite.True(suite.account("bruno").FiatBalance.Equal(dec("10.00")))
	suite.Empty(suite.dispatcher.all())
}

func (suite *TransferServiceTestSuite) TestSettleFiat_UnfundedSender() {
	suite.store.Seed(domain.Account{AccountID: "dan", Email: "dan@example.com", AccountHandle: "1000000004", DisplayCurrency: "USD"})
	_, err := suite.service.SettleFiatTransfer(suite.ctx, portssvc.FiatTransferRequest{
		Authorization: authFor("dan"),
		SenderRef:     "dan",
		ReceiverRef:   "bruno",
		InputAmount:   dec("1.00"),
	})
	suite.ErrorIs(err, apperrors.ErrInsufficientFunds)
}

func (suite *TransferServiceTestSuite) TestSettleFiat_SelfTransferRejectedForAnyAmount() {
	for _, amount := range []string{"0", "-5", "1.00", "1000000"} {
		_, err := suite.fiat("alice@example.com", amount)
		var pe *apperrors.ParticipantError
		suite.Require().ErrorAs(err, &pe, amount)
		suite.Equal(apperrors.ParticipantSelfTransfer, pe.Reason)
	}
	suite.True(suite.account("alice").FiatBalance.Equal(dec("100.00")))
}

func (suite *TransferServiceTestSuite) TestSettleFiat_ParticipantErrors() {
	suite.store.Seed(domain.Account{AccountID: "nohandle", Email: "nohandle@example.com", DisplayCurrency: "USD"})
	suite.store.Seed(domain.Account{AccountID: "gone", Email: "gone@example.com", AccountHandle: "1000000009", DisplayCurrency: "USD"})
	suite.store.SoftDelete("gone", time.Now())

	cases := []struct {
		receiver string
		reason   apperrors.ParticipantReason
	}{
		{"nobody", apperrors.ParticipantNotFound},
		{"nobody@example.com", apperrors.ParticipantNotFound},
		{"gone", apperrors.ParticipantDeleted},
		{"nohandle", apperrors.ParticipantMissingHandle},
	}
	for _, tc := range cases {
		_, err := suite.fiat(tc.receiver, "1.00")
		var pe *apperrors.ParticipantError
		suite.Require().ErrorAs(err, &pe, tc.receiver)
		suite.Equal(tc.reason, pe.Reason, tc.receiver)
		suite.Equal(apperrors.RoleReceiver, pe.Role)
	}
}

func (suite *TransferServiceTestSuite) TestSettleFiat_InvalidAmounts() {
	for _, amount := range []string{"0", "-1.00", "1.001", "0.001"} {
		_, err := suite.fiat("bruno", amount)
		suite.ErrorIs(err, apperrors.ErrValidation, amount)
	}
}

func (suite *TransferServiceTestSuite) TestSettleFiat_RequiresAuthorization() {
	_, err := suite.service.SettleFiatTransfer(suite.ctx, portssvc.FiatTransferRequest{
		SenderRef:   "alice",
		ReceiverRef: "bruno",
		InputAmount: dec("1.00"),
	})
	suite.ErrorIs(err, apperrors.ErrAuthorizationPrecondition)

	_, err = suite.service.SettleFiatTransfer(suite.ctx, portssvc.FiatTransferRequest{
		Authorization: authFor("bruno"),
		SenderRef:     "alice",
		ReceiverRef:   "bruno",
		InputAmount:   dec("1.00"),
	})
	suite.ErrorIs(err, apperrors.ErrAuthorizationPrecondition)
	suite.True(suite.account("alice").FiatBalance.Equal(dec("100.00")))
}

func (suite *TransferServiceTestSuite) TestSettleFiat_RatesUnavailable() {
	rates := new(MockRateSource)
	rates.On("GetRates", mock.Anything).Return(domain.RateSnapshot{}, errors.New("dial tcp: timeout"))
	svc := services.NewTransferService(suite.store, suite.store, suite.store, rates)

	_, err := svc.SettleFiatTransfer(suite.ctx, portssvc.FiatTransferRequest{
		Authorization: authFor("alice"),
		SenderRef:     "alice",
		ReceiverRef:   "bruno",
		InputAmount:   dec("1.00"),
	})
	suite.ErrorIs(err, apperrors.ErrConversion)
	suite.True(suite.account("alice").FiatBalance.Equal(dec("100.00")))
}

func (suite *TransferServiceTestSuite) TestSettleFiat_DisplayAmountMayRoundToZero() {
	suite.store.Seed(domain.Account{
		AccountID: "carla", Email: "carla@example.com", AccountHandle: "1000000006",
		DisplayCurrency: "USD", FiatBalance: dec("5.00"), FiatBalanceCurrency: "USD",
	})
	suite.store.Seed(domain.Account{
		AccountID: "kai", Email: "kai@example.com", AccountHandle: "1000000007",
		DisplayCurrency: "KWD", FiatBalance: dec("1.00"), FiatBalanceCurrency: "USD",
	})
	rates := new(MockRateSource)
	rates.On("GetRates", mock.Anything).Return(domain.RateSnapshot{
		Rates:     domain.RateTable{"USD": dec("1"), "KWD": dec("0.31")},
		FetchedAt: time.Now().UTC(),
		Source:    "test",
	}, nil)
	svc := services.NewTransferService(suite.store, suite.store, suite.store, rates)

	rec, err := svc.SettleFiatTransfer(suite.ctx, portssvc.FiatTransferRequest{
		Authorization: authFor("carla"),
		SenderRef:     "carla",
		ReceiverRef:   "kai",
		InputAmount:   dec("0.01"),
	})
	suite.Require().NoError(err)
	suite.True(rec.Provenance.Credited.Amount.Equal(dec("0.01")))
	suite.True(rec.Provenance.Display.Amount.IsZero())
	suite.Equal("KWD", rec.Provenance.Display.Currency)
	suite.True(suite.account("carla").FiatBalance.Equal(dec("4.99")))
	suite.True(suite.account("kai").FiatBalance.Equal(dec("1.01")))
}

func (suite *TransferServiceTestSuite) TestSettleFiat_MissingRateTreatedAsOne() {
	suite.store.Seed(domain.Account{AccountID: "yui", Email: "yui@example.com", AccountHandle: "1000000005", DisplayCurrency: "JPY"})

	rec, err := suite.fiat("yui", "9.00")
	suite.Require().NoError(err)
	// 9 USD -> 8.10 EUR -> 9.00 USD-equivalent JPY
	suite.True(rec.Provenance.Credited.Amount.Equal(dec("9.00")))
	suite.Equal("JPY", rec.Provenance.Credited.Currency)
}

// --- Atomicity and retries ---

func (suite *TransferServiceTestSuite) TestSettleFiat_FailedCommitLeavesNoTrace() {
	suite.store = memory.NewStore(memory.WithCommitHook(func() error { return errors.New("disk full") }))
	seedAccounts(suite.store)
	suite.service = suite.newService()

	_, err := suite.fiat("bruno", "50.00")
	suite.ErrorIs(err, apperrors.ErrPersistenceConflict)
	suite.True(suite.account("alice").FiatBalance.Equal(dec("100.00")))
	suite.True(suite.account("bruno").FiatBalance.Equal(dec("10.00")))

	page, _, err := suite.store.ListTransfers(suite.ctx, portsrepo.TransferListFilter{AccountID: "alice"})
	suite.Require().NoError(err)
	suite.Empty(page)
	suite.Empty(suite.dispatcher.all())
}

func (suite *TransferServiceTestSuite) TestSettleFiat_RetriesTransientConflict() {
	var calls atomic.Int32
	suite.store = memory.NewStore(memory.WithCommitHook(func() error {
		if calls.Add(1) == 1 {
			return errors.New("serialization failure")
		}
		return nil
	}))
	seedAccounts(suite.store)
	suite.service = suite.newService()

	_, err := suite.fiat("bruno", "50.00")
	suite.Require().NoError(err)
	suite.Equal(int32(2), calls.Load())
	suite.True(suite.account("alice").FiatBalance.Equal(dec("55.00")))
}

func (suite *TransferServiceTestSuite) TestSettleFiat_ReferenceCollisionRetriesWithFreshReference() {
	refs := &sequenceRefs{refs: []string{"TRF0001", "TRF0001", "TRF0002"}}
	suite.service = suite.newService(services.WithReferenceGenerator(refs))

	first, err := suite.fiat("bruno", "10.00")
	suite.Require().NoError(err)
	second, err := suite.fiat("bruno", "10.00")
	suite.Require().NoError(err)

	suite.Equal("TRF0001", first.Reference)
	suite.Equal("TRF0002", second.Reference)
	suite.True(suite.account("alice").FiatBalance.Equal(dec("82.00")))
}

func (suite *TransferServiceTestSuite) TestSettleFiat_ConcurrentTransfersNeverOverdraw() {
	const workers = 30
	var (
		wg        sync.WaitGroup
		succeeded atomic.Int32
	)
	// each transfer deducts 9.00 EUR from 100.00
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := suite.fiat("bruno", "10.00"); err == nil {
				succeeded.Add(1)
			} else {
				suite.ErrorIs(err, apperrors.ErrInsufficientFunds)
			}
		}()
	}
	wg.Wait()

	suite.Equal(int32(11), succeeded.Load())
	alice := suite.account("alice")
	suite.True(alice.FiatBalance.Equal(dec("1.00")), alice.FiatBalance.String())
	suite.False(alice.FiatBalance.IsNegative())
}

// --- Asset settlement ---

func (suite *TransferServiceTestSuite) asset(symbol, quantity string) (*domain.TransferRecord, error) {
	return suite.service.SettleAssetTransfer(suite.ctx, portssvc.AssetTransferRequest{
		Authorization: authFor("alice"),
		SenderRef:     "alice",
		ReceiverRef:   "bruno",
		Symbol:        symbol,
		Quantity:      dec(quantity),
	})
}

func (suite *TransferServiceTestSuite) TestSettleAsset_NewHoldingInheritsCost() {
	rec, err := suite.asset("btc", "0.2")
	suite.Require().NoError(err)

	suite.Equal("BTC", rec.AssetKind)
	suite.Nil(rec.Provenance)
	suite.Require().NotNil(rec.CostBasis)
	suite.True(rec.CostBasis.USDValue.Equal(dec("6000.00")))

	btc, ok := suite.account("bruno").Assets.Find("BTC")
	suite.Require().True(ok)
	suite.True(btc.Quantity.Equal(dec("0.2")))
	suite.True(btc.AverageCost.Equal(dec("30000")))

	left, ok := suite.account("alice").Assets.Find("BTC")
	suite.Require().True(ok)
	suite.True(left.Quantity.Equal(dec("0.3")))

	notes := suite.dispatcher.all()
	suite.Require().Len(notes, 2)
	suite.Equal("You sent 0.20000000 BTC to 1000000002", notes[0].Message)
}

func (suite *TransferServiceTestSuite) TestSettleAsset_ExistingHoldingKeepsOwnCost() {
	_, err := suite.asset("ETH", "2")
	suite.Require().NoError(err)

	eth, _ := suite.account("bruno").Assets.Find("ETH")
	suite.True(eth.Quantity.Equal(dec("3")))
	suite.True(eth.AverageCost.Equal(dec("2000")))

	_, held := suite.account("alice").Assets.Find("ETH")
	suite.False(held)
}

func (suite *TransferServiceTestSuite) TestSettleAsset_DustRemainderRemoved() {
	_, err := suite.asset("BTC", "0.499999995")
	suite.Require().NoError(err)
	_, held := suite.account("alice").Assets.Find("BTC")
	suite.False(held)
}

func (suite *TransferServiceTestSuite) TestSettleAsset_DustQuantityRejected() {
	for _, qty := range []string{"0.000000001", "0.00000001"} {
		_, err := suite.asset("BTC", qty)
		suite.ErrorIs(err, apperrors.ErrValidation, qty)
	}

	_, held := suite.account("bruno").Assets.Find("BTC")
	suite.False(held)
	btc, _ := suite.account("alice").Assets.Find("BTC")
	suite.True(btc.Quantity.Equal(dec("0.5")))
}

func (suite *TransferServiceTestSuite) TestSettleAsset_ExcessPrecisionRejected() {
	_, err := suite.asset("BTC", "0.1000000000000000001")
	suite.ErrorIs(err, apperrors.ErrValidation)

	rec, err := suite.asset("BTC", "0.100000000000000001")
	suite.Require().NoError(err)
	suite.True(rec.SettledAmount.Equal(dec("0.100000000000000001")))
}

func (suite *TransferServiceTestSuite) TestSettleAsset_Insufficient() {
	_, err := suite.asset("BTC", "0.6")
	var insufficient *apperrors.InsufficientFundsError
	suite.Require().ErrorAs(err, &insufficient)
	suite.True(insufficient.Asset)
	suite.True(insufficient.Shortfall().Equal(dec("0.1")))

	_, err = suite.asset("SOL", "1")
	suite.Require().ErrorAs(err, &insufficient)
	suite.True(insufficient.Available.IsZero())
}

func (suite *TransferServiceTestSuite) TestSettleAsset_InvalidInput() {
	_, err := suite.asset("BTC", "0")
	suite.ErrorIs(err, apperrors.ErrValidation)
	_, err = suite.asset("not a symbol", "1")
	suite.ErrorIs(err, apperrors.ErrValidation)
}

// --- History ---

func (suite *TransferServiceTestSuite) TestGetTransfer_PerspectiveAndAccess() {
	rec, err := suite.fiat("bruno", "50.00")
	suite.Require().NoError(err)

	sent, err := suite.service.GetTransfer(suite.ctx, "alice", rec.Reference)
	suite.Require().NoError(err)
	suite.Equal(domain.DirectionSent, sent.Direction)
	suite.True(sent.Amount.Equal(dec("50.00")))
	suite.Equal("USD", sent.Unit)

	received, err := suite.service.GetTransfer(suite.ctx, "bruno", rec.Reference)
	suite.Require().NoError(err)
	suite.Equal(domain.DirectionReceived, received.Direction)
	suite.Equal("BRL", received.Unit)

	_, err = suite.service.GetTransfer(suite.ctx, "mallory", rec.Reference)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	_, err = suite.service.GetTransfer(suite.ctx, "alice", "TRFMISSING")
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *TransferServiceTestSuite) TestListTransfers_DirectionAndPaging() {
	for i := 0; i < 3; i++ {
		_, err := suite.fiat("bruno", "1.00")
		suite.Require().NoError(err)
	}
	_, err := suite.service.SettleFiatTransfer(suite.ctx, portssvc.FiatTransferRequest{
		Authorization: authFor("bruno"),
		SenderRef:     "bruno",
		ReceiverRef:   "alice",
		InputAmount:   dec("5.40"),
	})
	suite.Require().NoError(err)

	sent, err := suite.service.ListTransfers(suite.ctx, "alice", dto.ListTransfersParams{Direction: "sent", Limit: 10})
	suite.Require().NoError(err)
	suite.Len(sent.Transfers, 3)
	suite.Nil(sent.NextToken)

	received, err := suite.service.ListTransfers(suite.ctx, "alice", dto.ListTransfersParams{Direction: "received", Limit: 10})
	suite.Require().NoError(err)
	suite.Require().Len(received.Transfers, 1)
	suite.Equal(domain.DirectionReceived, received.Transfers[0].Direction)

	page1, err := suite.service.ListTransfers(suite.ctx, "alice", dto.ListTransfersParams{Direction: "all", Limit: 3})
	suite.Require().NoError(err)
	suite.Len(page1.Transfers, 3)
	suite.Require().NotNil(page1.NextToken)

	page2, err := suite.service.ListTransfers(suite.ctx, "alice", dto.ListTransfersParams{Limit: 3, NextToken: page1.NextToken})
	suite.Require().NoError(err)
	suite.Len(page2.Transfers, 1)
	suite.Nil(page2.NextToken)

	_, err = suite.service.ListTransfers(suite.ctx, "alice", dto.ListTransfersParams{Direction: "sideways"})
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func TestTransferServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TransferServiceTestSuite))
}
