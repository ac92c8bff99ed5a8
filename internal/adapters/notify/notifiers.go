package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/p2p_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/p2p_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/p2p_ledger/internal/core/ports/services"
	"github.com/SscSPs/p2p_ledger/internal/middleware"
	"github.com/SscSPs/p2p_ledger/internal/observability"
)

// LogNotifier writes notifications to the structured log.
type LogNotifier struct{}

func (LogNotifier) Notify(ctx context.Context, n domain.Notification) error {
	middleware.GetLoggerFromCtx(ctx).Info("Transfer notification",
		slog.String("account_id", n.AccountID),
		slog.String("kind", string(n.Kind)),
		slog.String("reference", n.Reference),
		slog.String("message", n.Message))
	return nil
}

// StoreNotifier persists notifications so they can be listed later.
type StoreNotifier struct {
	repo portsrepo.NotificationWriter
}

func NewStoreNotifier(repo portsrepo.NotificationWriter) *StoreNotifier {
	return &StoreNotifier{repo: repo}
}

func (s *StoreNotifier) Notify(ctx context.Context, n domain.Notification) error {
	return s.repo.SaveNotification(ctx, n)
}

// Sink is a named Notifier, the name being the metrics label.
type Sink struct {
	Name     string
	Notifier portssvc.Notifier
}

// Fanout delivers each notification to every sink; one failing sink does not stop the others.
type Fanout struct {
	sinks   []Sink
	metrics *observability.Metrics
}

func NewFanout(metrics *observability.Metrics, sinks ...Sink) *Fanout {
	return &Fanout{sinks: sinks, metrics: metrics}
}

func (f *Fanout) Notify(ctx context.Context, n domain.Notification) error {
	var errs []error
	for _, s := range f.sinks {
		err := s.Notifier.Notify(ctx, n)
		f.metrics.ObserveNotification(s.Name, err)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Name, err))
		}
	}
	return errors.Join(errs...)
}

var (
	_ portssvc.Notifier = LogNotifier{}
	_ portssvc.Notifier = (*StoreNotifier)(nil)
	_ portssvc.Notifier = (*Fanout)(nil)
)
