package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/p2p_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/p2p_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/p2p_ledger/internal/utils/mapping"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxNotificationRepository struct {
	BaseRepository
}

func newPgxNotificationRepository(pool *pgxpool.Pool) *PgxNotificationRepository {
	return &PgxNotificationRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.NotificationWriter = (*PgxNotificationRepository)(nil)

func (r *PgxNotificationRepository) SaveNotification(ctx context.Context, n domain.Notification) error {
	m := mapping.ToModelNotification(uuid.NewString(), n)
	query := `
		INSERT INTO notifications (notification_id, account_id, kind, title, message, amount, unit, reference, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, FALSE, $9);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.NotificationID,
		m.AccountID,
		m.Kind,
		m.Title,
		m.Message,
		m.Amount,
		m.Unit,
		m.Reference,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save notification for account %s: %w", m.AccountID, err)
	}
	return nil
}
