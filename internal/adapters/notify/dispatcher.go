// Package notify delivers transfer notifications after settlement, off the request path.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/SscSPs/p2p_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/p2p_ledger/internal/core/ports/services"
	"github.com/SscSPs/p2p_ledger/internal/middleware"
)

const DefaultTimeout = 5 * time.Second

// Dispatcher hands notifications to a Notifier on a background goroutine. Failures and
// panics are logged and never reach the caller.
type Dispatcher struct {
	notifier portssvc.Notifier
	timeout  time.Duration
	wg       sync.WaitGroup
}

var _ portssvc.NotificationDispatcher = (*Dispatcher)(nil)

// NewDispatcher creates a Dispatcher. timeout bounds one delivery batch; zero uses DefaultTimeout.
func NewDispatcher(notifier portssvc.Notifier, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Dispatcher{notifier: notifier, timeout: timeout}
}

// Dispatch returns immediately. The request context's logger is kept but its
// cancellation is not, since the request usually ends first.
func (d *Dispatcher) Dispatch(ctx context.Context, notifications ...domain.Notification) {
	if len(notifications) == 0 {
		return
	}
	logger := middleware.GetLoggerFromCtx(ctx)
	bg := context.WithoutCancel(ctx)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				logger.Error("Notification delivery panicked", slog.String("panic", fmt.Sprint(r)))
			}
		}()

		dctx, cancel := context.WithTimeout(bg, d.timeout)
		defer cancel()
		for _, n := range notifications {
			if err := d.notifier.Notify(dctx, n); err != nil {
				logger.Warn("Failed to deliver notification",
					slog.String("reference", n.Reference),
					slog.String("account_id", n.AccountID),
					slog.String("kind", string(n.Kind)),
					slog.String("error", err.Error()))
			}
		}
	}()
}

// Wait blocks until every in-flight dispatch has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
