package mapping

import (
	"github.com/SscSPs/p2p_ledger/internal/core/domain"
	"github.com/SscSPs/p2p_ledger/internal/models"
)

// ToModelAccount converts a domain Account to a model Account. Holdings are stored in
// their own table; see ToModelHoldings.
func ToModelAccount(d domain.Account) models.Account {
	return models.Account{
		AccountID:           d.AccountID,
		Email:               d.Email,
		Name:                d.Name,
		AccountHandle:       nullableString(d.AccountHandle),
		DisplayCurrency:     d.DisplayCurrency,
		FiatBalance:         d.FiatBalance,
		FiatBalanceCurrency: nullableString(d.FiatBalanceCurrency),
		TransferPINHash:     nullableString(d.TransferPINHash),
		AuditFields: models.AuditFields{
			CreatedAt:     d.CreatedAt,
			LastUpdatedAt: d.LastUpdatedAt,
		},
		DeletedAt: d.DeletedAt,
	}
}

// ToDomainAccount converts a model Account and its holdings (already ordered) to a domain Account.
func ToDomainAccount(m models.Account, holdings []models.AssetHolding) domain.Account {
	inv := make(domain.AssetInventory, 0, len(holdings))
	for _, h := range holdings {
		inv = append(inv, domain.AssetHolding{Symbol: h.Symbol, Quantity: h.Quantity, AverageCost: h.AverageCost})
	}
	return domain.Account{
		AccountID:           m.AccountID,
		Email:               m.Email,
		Name:                m.Name,
		AccountHandle:       derefString(m.AccountHandle),
		DisplayCurrency:     m.DisplayCurrency,
		FiatBalance:         m.FiatBalance,
		FiatBalanceCurrency: derefString(m.FiatBalanceCurrency),
		Assets:              inv,
		TransferPINHash:     derefString(m.TransferPINHash),
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			LastUpdatedAt: m.LastUpdatedAt,
		},
		DeletedAt: m.DeletedAt,
	}
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
