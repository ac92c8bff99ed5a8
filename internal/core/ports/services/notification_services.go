package services

import (
	"context"

	"github.com/SscSPs/p2p_ledger/internal/core/domain"
)

// NotificationDispatcher is told about completed transfers. It returns nothing: failures
// are contained and logged by the implementation and never reach the caller.
type NotificationDispatcher interface {
	Dispatch(ctx context.Context, notifications ...domain.Notification)
}

// Notifier delivers a single notification to one sink (database, log, message broker).
type Notifier interface {
	Notify(ctx context.Context, n domain.Notification) error
}
