package mapping

import (
	"encoding/json"
	"fmt"

	"github.com/SscSPs/p2p_ledger/internal/core/domain"
	"github.com/SscSPs/p2p_ledger/internal/models"
)

// ToModelTransfer converts a domain TransferRecord to a model Transfer. Provenance and
// cost basis are serialized verbatim; nothing is recomputed.
func ToModelTransfer(d domain.TransferRecord) (models.Transfer, error) {
	m := models.Transfer{
		Reference:      d.Reference,
		SenderID:       d.SenderID,
		ReceiverID:     d.ReceiverID,
		SenderHandle:   d.SenderHandle,
		ReceiverHandle: d.ReceiverHandle,
		AssetKind:      d.AssetKind,
		SettledAmount:  d.SettledAmount,
		SettledUnit:    d.SettledUnit,
		Status:         string(d.Status),
		Memo:           d.Memo,
		CreatedAt:      d.CreatedAt,
	}
	if d.Provenance != nil {
		raw, err := json.Marshal(d.Provenance)
		if err != nil {
			return models.Transfer{}, fmt.Errorf("failed to encode provenance: %w", err)
		}
		m.Provenance = raw
	}
	if d.CostBasis != nil {
		raw, err := json.Marshal(d.CostBasis)
		if err != nil {
			return models.Transfer{}, fmt.Errorf("failed to encode cost basis: %w", err)
		}
		m.CostBasis = raw
	}
	return m, nil
}

// ToDomainTransfer converts a model Transfer to a domain TransferRecord.
func ToDomainTransfer(m models.Transfer) (domain.TransferRecord, error) {
	d := domain.TransferRecord{
		Reference:      m.Reference,
		SenderID:       m.SenderID,
		ReceiverID:     m.ReceiverID,
		SenderHandle:   m.SenderHandle,
		ReceiverHandle: m.ReceiverHandle,
		AssetKind:      m.AssetKind,
		SettledAmount:  m.SettledAmount,
		SettledUnit:    m.SettledUnit,
		Status:         domain.TransferStatus(m.Status),
		Memo:           m.Memo,
		CreatedAt:      m.CreatedAt,
	}
	if len(m.Provenance) > 0 {
		var p domain.ConversionProvenance
		if err := json.Unmarshal(m.Provenance, &p); err != nil {
			return domain.TransferRecord{}, fmt.Errorf("failed to decode provenance of %s: %w", m.Reference, err)
		}
		d.Provenance = &p
	}
	if len(m.CostBasis) > 0 {
		var cb domain.CostBasis
		if err := json.Unmarshal(m.CostBasis, &cb); err != nil {
			return domain.TransferRecord{}, fmt.Errorf("failed to decode cost basis of %s: %w", m.Reference, err)
		}
		d.CostBasis = &cb
	}
	return d, nil
}

// ToModelNotification converts a domain Notification to a model Notification.
func ToModelNotification(id string, n domain.Notification) models.Notification {
	return models.Notification{
		NotificationID: id,
		AccountID:      n.AccountID,
		Kind:           string(n.Kind),
		Title:          n.Title,
		Message:        n.Message,
		Amount:         n.Amount,
		Unit:           n.Unit,
		Reference:      n.Reference,
	}
}
