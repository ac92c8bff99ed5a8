package services

import (
	"fmt"

	"github.com/SscSPs/p2p_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// displayName is how a counterparty is named in a notification.
func displayName(acc *domain.Account) string {
	if acc.HasHandle() {
		return acc.AccountHandle
	}
	return acc.Name
}

// fiatNotifications tells each side what moved, in its own display currency.
func fiatNotifications(rec *domain.TransferRecord, sender, receiver *domain.Account) []domain.Notification {
	sent := rec.Provenance.Input
	received := rec.Provenance.Display
	return []domain.Notification{
		{
			AccountID: rec.SenderID,
			Kind:      domain.NotificationTransferSent,
			Title:     "Transfer Sent",
			Message:   fmt.Sprintf("You sent %s %s to %s", sent.Amount.StringFixed(domain.FiatPlaces), sent.Currency, displayName(receiver)),
			Amount:    sent.Amount,
			Unit:      sent.Currency,
			Reference: rec.Reference,
		},
		{
			AccountID: rec.ReceiverID,
			Kind:      domain.NotificationTransferReceived,
			Title:     "Money Received",
			Message:   fmt.Sprintf("You received %s %s from %s", received.Amount.StringFixed(domain.FiatPlaces), received.Currency, displayName(sender)),
			Amount:    received.Amount,
			Unit:      received.Currency,
			Reference: rec.Reference,
		},
	}
}

func assetNotifications(rec *domain.TransferRecord, sender, receiver *domain.Account) []domain.Notification {
	qty := func(d decimal.Decimal) string { return d.StringFixed(domain.AssetPlaces) }
	return []domain.Notification{
		{
			AccountID: rec.SenderID,
			Kind:      domain.NotificationTransferSent,
			Title:     "Transfer Sent",
			Message:   fmt.Sprintf("You sent %s %s to %s", qty(rec.SettledAmount), rec.SettledUnit, displayName(receiver)),
			Amount:    rec.SettledAmount,
			Unit:      rec.SettledUnit,
			Reference: rec.Reference,
		},
		{
			AccountID: rec.ReceiverID,
			Kind:      domain.NotificationTransferReceived,
			Title:     "Crypto Received",
			Message:   fmt.Sprintf("You received %s %s from %s", qty(rec.SettledAmount), rec.SettledUnit, displayName(sender)),
			Amount:    rec.SettledAmount,
			Unit:      rec.SettledUnit,
			Reference: rec.Reference,
		},
	}
}
