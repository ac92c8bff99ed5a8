package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transfer is a row of the transfers table. Provenance and CostBasis are JSONB.
type Transfer struct {
	Reference      string          `db:"reference"`
	SenderID       string          `db:"sender_id"`
	ReceiverID     string          `db:"receiver_id"`
	SenderHandle   string          `db:"sender_handle"`
	ReceiverHandle string          `db:"receiver_handle"`
	AssetKind      string          `db:"asset_kind"`
	SettledAmount  decimal.Decimal `db:"settled_amount"`
	SettledUnit    string          `db:"settled_unit"`
	Status         string          `db:"status"`
	Memo           string          `db:"memo"`
	Provenance     []byte          `db:"provenance"` // Nullable
	CostBasis      []byte          `db:"cost_basis"` // Nullable
	CreatedAt      time.Time       `db:"created_at"`
}

// Notification is a row of the notifications table.
type Notification struct {
	NotificationID string          `db:"notification_id"`
	AccountID      string          `db:"account_id"`
	Kind           string          `db:"kind"`
	Title          string          `db:"title"`
	Message        string          `db:"message"`
	Amount         decimal.Decimal `db:"amount"`
	Unit           string          `db:"unit"`
	Reference      string          `db:"reference"`
	IsRead         bool            `db:"is_read"`
	CreatedAt      time.Time       `db:"created_at"`
}
