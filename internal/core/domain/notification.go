package domain

import "github.com/shopspring/decimal"

// NotificationKind distinguishes the two sides of a transfer.
type NotificationKind string

const (
	NotificationTransferSent     NotificationKind = "TRANSFER_SENT"
	NotificationTransferReceived NotificationKind = "TRANSFER_RECEIVED"
)

// Notification is a message for one party of a completed transfer.
type Notification struct {
	AccountID string           `json:"accountID"`
	Kind      NotificationKind `json:"kind"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Amount    decimal.Decimal  `json:"amount"`
	Unit      string           `json:"unit"` // currency code or asset symbol
	Reference string           `json:"reference"`
}
