package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/p2p_ledger/internal/apperrors"
	"github.com/SscSPs/p2p_ledger/internal/core/domain"
	"github.com/SscSPs/p2p_ledger/internal/core/fx"
	portsrepo "github.com/SscSPs/p2p_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/p2p_ledger/internal/core/ports/services"
	"github.com/SscSPs/p2p_ledger/internal/observability"
	"github.com/SscSPs/p2p_ledger/internal/utils/backoff"
	"github.com/SscSPs/p2p_ledger/internal/utils/reference"
	"github.com/shopspring/decimal"
)

const (
	defaultMaxAttempts    = 3
	defaultRetryBaseDelay = 20 * time.Millisecond
	defaultRetryMaxDelay  = 500 * time.Millisecond

	settlementKindFiat  = "fiat"
	settlementKindAsset = "asset"
)

// transferService settles fiat and asset transfers and serves transfer history.
type transferService struct {
	BaseService
	accountRepo  portsrepo.AccountReader
	ledger       portsrepo.LedgerStore
	transferRepo portsrepo.TransferReader
	rates        portssvc.RateSource
	dispatcher   portssvc.NotificationDispatcher
	recorder     *TransactionRecorder
	metrics      *observability.Metrics

	maxAttempts int
	retryBase   time.Duration
	retryMax    time.Duration
	sleep       func(ctx context.Context, d time.Duration) error
}

// TransferServiceOption is a functional option for configuring the transfer service
type TransferServiceOption func(*transferService)

// WithNotificationDispatcher sets where completed transfers are announced.
func WithNotificationDispatcher(d portssvc.NotificationDispatcher) TransferServiceOption {
	return func(s *transferService) {
		s.dispatcher = d
	}
}

// WithReferenceGenerator replaces the default ULID reference generator.
func WithReferenceGenerator(refs ReferenceGenerator) TransferServiceOption {
	return func(s *transferService) {
		s.recorder = NewTransactionRecorder(refs)
	}
}

// WithTransferMetrics records settlement outcomes.
func WithTransferMetrics(m *observability.Metrics) TransferServiceOption {
	return func(s *transferService) {
		s.metrics = m
	}
}

// WithRetryPolicy sets how many times a settlement is attempted on a persistence
// conflict and the backoff between attempts.
func WithRetryPolicy(maxAttempts int, base, max time.Duration) TransferServiceOption {
	return func(s *transferService) {
		if maxAttempts > 0 {
			s.maxAttempts = maxAttempts
		}
		s.retryBase = base
		s.retryMax = max
	}
}

// NewTransferService creates a new transfer service with the provided options
func NewTransferService(
	accountRepo portsrepo.AccountReader,
	ledger portsrepo.LedgerStore,
	transferRepo portsrepo.TransferReader,
	rates portssvc.RateSource,
	options ...TransferServiceOption,
) portssvc.TransferSvcFacade {
	svc := &transferService{
		accountRepo:  accountRepo,
		ledger:       ledger,
		transferRepo: transferRepo,
		rates:        rates,
		recorder:     NewTransactionRecorder(reference.NewGenerator()),
		maxAttempts:  defaultMaxAttempts,
		retryBase:    defaultRetryBaseDelay,
		retryMax:     defaultRetryMaxDelay,
		sleep:        sleepCtx,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.TransferSvcFacade = (*transferService)(nil)

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// fiatPlan is everything a fiat settlement decided before touching storage.
type fiatPlan struct {
	sender, receiver *domain.Account
	provenance       domain.ConversionProvenance
	memo             string
}

// SettleFiatTransfer moves req.InputAmount, entered in the sender's display currency,
// from the sender's fiat balance to the receiver's.
func (s *transferService) SettleFiatTransfer(ctx context.Context, req portssvc.FiatTransferRequest) (*domain.TransferRecord, error) {
	start := time.Now()
	rec, plan, attempts, err := s.settleFiat(ctx, req)
	s.metrics.ObserveSettlement(settlementKindFiat, attempts, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, fiatNotifications(rec, plan.sender, plan.receiver))
	return rec, nil
}

func (s *transferService) settleFiat(ctx context.Context, req portssvc.FiatTransferRequest) (*domain.TransferRecord, *fiatPlan, int, error) {
	attempts := 0
	for {
		attempts++
		plan, err := s.planFiat(ctx, req)
		if err != nil {
			return nil, nil, attempts, err
		}
		rec, err := s.commitFiat(ctx, plan)
		if err == nil {
			return rec, plan, attempts, nil
		}
		if !s.shouldRetry(ctx, err, attempts) {
			return nil, nil, attempts, err
		}
	}
}

// planFiat validates the request, converts the amount and checks sufficiency against a
// fresh read of both accounts. Re-running it on retry re-reads everything.
func (s *transferService) planFiat(ctx context.Context, req portssvc.FiatTransferRequest) (*fiatPlan, error) {
	logger := s.GetLogger(ctx)

	sender, receiver, err := s.authorizeAndResolve(ctx, req.Authorization, req.SenderRef, req.ReceiverRef)
	if err != nil {
		return nil, err
	}
	if !req.InputAmount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be greater than zero", apperrors.ErrValidation)
	}
	if !req.InputAmount.Equal(req.InputAmount.Round(domain.FiatPlaces)) {
		return nil, fmt.Errorf("%w: amount must have at most 2 decimal places", apperrors.ErrValidation)
	}
	logger.Debug("Transfer validated",
		slog.String("stage", "VALIDATED"),
		slog.String("sender_id", sender.AccountID),
		slog.String("receiver_id", receiver.AccountID))

	snapshot, err := s.rates.GetRates(ctx)
	if err != nil {
		if errors.Is(err, apperrors.ErrConversion) {
			return nil, err
		}
		return nil, apperrors.NewConversionError("", "", "exchange rates unavailable", err)
	}

	input := domain.NewMoney(req.InputAmount, sender.DisplayCurrency)
	codes := []string{sender.DisplayCurrency, sender.SettlementCurrency(), receiver.SettlementCurrency(), receiver.DisplayCurrency}
	if missing := fx.MissingRates(snapshot.Rates, codes...); len(missing) > 0 {
		logger.Warn("Exchange rate missing, treating currency as USD-equivalent",
			slog.String("missing", strings.Join(missing, ",")),
			slog.String("rates_source", snapshot.Source))
	}

	deducted, err := fx.ConvertRounded(input, sender.SettlementCurrency(), snapshot.Rates)
	if err != nil {
		return nil, err
	}
	if !deducted.IsPositive() {
		return nil, fmt.Errorf("%w: amount is too small to transfer", apperrors.ErrValidation)
	}
	credited, err := fx.ConvertRounded(deducted, receiver.SettlementCurrency(), snapshot.Rates)
	if err != nil {
		return nil, err
	}
	display, err := fx.ConvertRounded(credited, receiver.DisplayCurrency, snapshot.Rates)
	if err != nil {
		return nil, err
	}
	logger.Debug("Transfer converted",
		slog.String("stage", "CONVERTED"),
		slog.String("input", input.String()),
		slog.String("deducted", deducted.String()),
		slog.String("credited", credited.String()),
		slog.String("display", display.String()))

	if sender.FiatBalanceCurrency == "" || sender.FiatBalance.LessThan(deducted.Amount) {
		available := decimal.Zero
		if sender.FiatBalanceCurrency != "" {
			available = sender.FiatBalance
		}
		return nil, apperrors.NewInsufficientFundsError(deducted.Currency, deducted.Amount, available)
	}
	logger.Debug("Balance checked", slog.String("stage", "BALANCE_CHECKED"))

	provenance, err := domain.NewConversionProvenance(input, deducted, credited, display, snapshot.FetchedAt)
	if err != nil {
		// rounding pushed a downstream leg to zero
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	return &fiatPlan{sender: sender, receiver: receiver, provenance: provenance, memo: req.Memo}, nil
}

func (s *transferService) commitFiat(ctx context.Context, plan *fiatPlan) (*domain.TransferRecord, error) {
	var rec *domain.TransferRecord
	// a caller that goes away must not leave a half-decided settlement behind
	err := s.ledger.RunAtomic(context.WithoutCancel(ctx), func(ctx context.Context, unit portsrepo.LedgerUnit) error {
		p := plan.provenance
		if err := unit.DebitFiat(ctx, plan.sender.AccountID, p.Deducted); err != nil {
			return err
		}
		if err := unit.CreditFiat(ctx, plan.receiver.AccountID, p.Credited); err != nil {
			return err
		}
		s.LogDebug(ctx, "Balances updated", slog.String("stage", "COMMITTED"))

		var err error
		rec, err = s.recorder.Record(ctx, unit, domain.TransferRecord{
			SenderID:       plan.sender.AccountID,
			ReceiverID:     plan.receiver.AccountID,
			SenderHandle:   plan.sender.AccountHandle,
			ReceiverHandle: plan.receiver.AccountHandle,
			AssetKind:      domain.AssetKindFiat,
			SettledAmount:  p.Deducted.Amount,
			SettledUnit:    p.Deducted.Currency,
			Memo:           plan.memo,
			Provenance:     &p,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.LogInfo(ctx, "Transfer recorded",
		slog.String("stage", "RECORDED"),
		slog.String("reference", rec.Reference),
		slog.String("settled", plan.provenance.Deducted.String()))
	return rec, nil
}

// assetPlan is everything an asset settlement decided before touching storage.
type assetPlan struct {
	sender, receiver *domain.Account
	symbol           string
	quantity         decimal.Decimal
	memo             string
}

// SettleAssetTransfer moves req.Quantity of req.Symbol between inventories. The
// receiver inherits the sender's average cost unless it already holds the symbol.
func (s *transferService) SettleAssetTransfer(ctx context.Context, req portssvc.AssetTransferRequest) (*domain.TransferRecord, error) {
	start := time.Now()
	rec, plan, attempts, err := s.settleAsset(ctx, req)
	s.metrics.ObserveSettlement(settlementKindAsset, attempts, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, assetNotifications(rec, plan.sender, plan.receiver))
	return rec, nil
}

func (s *transferService) settleAsset(ctx context.Context, req portssvc.AssetTransferRequest) (*domain.TransferRecord, *assetPlan, int, error) {
	attempts := 0
	for {
		attempts++
		plan, err := s.planAsset(ctx, req)
		if err != nil {
			return nil, nil, attempts, err
		}
		rec, err := s.commitAsset(ctx, plan)
		if err == nil {
			return rec, plan, attempts, nil
		}
		if !s.shouldRetry(ctx, err, attempts) {
			return nil, nil, attempts, err
		}
	}
}

func (s *transferService) planAsset(ctx context.Context, req portssvc.AssetTransferRequest) (*assetPlan, error) {
	sender, receiver, err := s.authorizeAndResolve(ctx, req.Authorization, req.SenderRef, req.ReceiverRef)
	if err != nil {
		return nil, err
	}
	symbol := domain.NormalizeCurrencyCode(req.Symbol)
	if !domain.IsValidAssetSymbol(symbol) {
		return nil, fmt.Errorf("%w: invalid asset symbol %q", apperrors.ErrValidation, req.Symbol)
	}
	if !req.Quantity.IsPositive() {
		return nil, fmt.Errorf("%w: quantity must be greater than zero", apperrors.ErrValidation)
	}
	if req.Quantity.LessThanOrEqual(domain.DustThreshold) {
		return nil, fmt.Errorf("%w: quantity must be greater than %s", apperrors.ErrValidation, domain.DustThreshold.String())
	}
	if !req.Quantity.Equal(req.Quantity.Truncate(domain.AssetPlaces)) {
		return nil, fmt.Errorf("%w: quantity must have at most %d decimal places", apperrors.ErrValidation, domain.AssetPlaces)
	}
	s.LogDebug(ctx, "Transfer validated",
		slog.String("stage", "VALIDATED"),
		slog.String("symbol", symbol),
		slog.String("sender_id", sender.AccountID),
		slog.String("receiver_id", receiver.AccountID))

	holding, ok := sender.Assets.Find(symbol)
	if !ok || holding.Quantity.LessThan(req.Quantity) {
		return nil, apperrors.NewInsufficientAssetError(symbol, req.Quantity, holding.Quantity)
	}
	s.LogDebug(ctx, "Holding checked", slog.String("stage", "BALANCE_CHECKED"))

	return &assetPlan{sender: sender, receiver: receiver, symbol: symbol, quantity: req.Quantity, memo: req.Memo}, nil
}

func (s *transferService) commitAsset(ctx context.Context, plan *assetPlan) (*domain.TransferRecord, error) {
	var rec *domain.TransferRecord
	err := s.ledger.RunAtomic(context.WithoutCancel(ctx), func(ctx context.Context, unit portsrepo.LedgerUnit) error {
		before, err := unit.DebitAsset(ctx, plan.sender.AccountID, plan.symbol, plan.quantity)
		if err != nil {
			return err
		}
		err = unit.CreditAsset(ctx, plan.receiver.AccountID, domain.AssetHolding{
			Symbol:      plan.symbol,
			Quantity:    plan.quantity,
			AverageCost: before.AverageCost,
		})
		if err != nil {
			return err
		}
		s.LogDebug(ctx, "Inventories updated", slog.String("stage", "COMMITTED"))

		basis := domain.NewCostBasis(plan.symbol, plan.quantity, before.AverageCost)
		rec, err = s.recorder.Record(ctx, unit, domain.TransferRecord{
			SenderID:       plan.sender.AccountID,
			ReceiverID:     plan.receiver.AccountID,
			SenderHandle:   plan.sender.AccountHandle,
			ReceiverHandle: plan.receiver.AccountHandle,
			AssetKind:      plan.symbol,
			SettledAmount:  plan.quantity,
			SettledUnit:    plan.symbol,
			Memo:           plan.memo,
			CostBasis:      &basis,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.LogInfo(ctx, "Transfer recorded",
		slog.String("stage", "RECORDED"),
		slog.String("reference", rec.Reference),
		slog.String("settled", rec.SettledAmount.String()+" "+rec.SettledUnit))
	return rec, nil
}

// authorizeAndResolve enforces the authorization precondition and resolves both
// participants. The authorization must have been issued for the resolved sender.
func (s *transferService) authorizeAndResolve(ctx context.Context, auth domain.Authorization, senderRef, receiverRef string) (*domain.Account, *domain.Account, error) {
	if auth.IsZero() {
		s.LogError(ctx, apperrors.ErrAuthorizationPrecondition, "Settlement invoked without authorization")
		return nil, nil, apperrors.ErrAuthorizationPrecondition
	}
	sender, receiver, err := resolveParticipants(ctx, s.accountRepo, senderRef, receiverRef)
	if err != nil {
		return nil, nil, err
	}
	if auth.AccountID != sender.AccountID {
		s.LogError(ctx, apperrors.ErrAuthorizationPrecondition, "Authorization issued for a different account",
			slog.String("authorized_id", auth.AccountID),
			slog.String("sender_id", sender.AccountID))
		return nil, nil, apperrors.ErrAuthorizationPrecondition
	}
	return sender, receiver, nil
}

// shouldRetry reports whether another attempt should run, sleeping first.
func (s *transferService) shouldRetry(ctx context.Context, err error, attempt int) bool {
	if !apperrors.IsRetryable(err) || attempt >= s.maxAttempts {
		return false
	}
	delay := backoff.ExponentialWithJitter(attempt, s.retryBase, s.retryMax)
	s.LogWarn(ctx, "Persistence conflict, retrying transfer",
		slog.String("error", err.Error()),
		slog.Int("attempt", attempt),
		slog.Duration("delay", delay))
	return s.sleep(ctx, delay) == nil
}

func (s *transferService) notify(ctx context.Context, notifications []domain.Notification) {
	if s.dispatcher == nil {
		return
	}
	s.dispatcher.Dispatch(ctx, notifications...)
}
