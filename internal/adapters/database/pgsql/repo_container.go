package pgsql

import (
	portsrepo "github.com/SscSPs/p2p_ledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		AccountRepo:      newPgxAccountRepository(dbPool),
		Ledger:           newPgxLedgerStore(dbPool),
		TransferRepo:     newPgxTransferRepository(dbPool),
		NotificationRepo: newPgxNotificationRepository(dbPool),
	}
}
