package repositories

import (
	"context"

	"github.com/SscSPs/p2p_ledger/internal/core/domain"
)

// NotificationWriter persists user-facing notifications.
type NotificationWriter interface {
	SaveNotification(ctx context.Context, n domain.Notification) error
}
