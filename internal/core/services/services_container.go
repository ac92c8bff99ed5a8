package services

import (
	portsrepo "github.com/SscSPs/p2p_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/p2p_ledger/internal/core/ports/services"
	"github.com/SscSPs/p2p_ledger/internal/observability"
	"github.com/SscSPs/p2p_ledger/pkg/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(
	cfg *config.Config,
	repos portsrepo.RepositoryProvider,
	rates portssvc.RateSource,
	dispatcher portssvc.NotificationDispatcher,
	metrics *observability.Metrics,
) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.Account = NewAccountService(repos.AccountRepo)
	container.Authorizer = NewPINAuthorizer(repos.AccountRepo)
	container.Transfer = NewTransferService(
		repos.AccountRepo,
		repos.Ledger,
		repos.TransferRepo,
		rates,
		WithNotificationDispatcher(dispatcher),
		WithTransferMetrics(metrics),
		WithRetryPolicy(cfg.TransferMaxAttempts, cfg.TransferRetryBaseDelay, cfg.TransferRetryMaxDelay),
	)

	return container
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.AccountSvcFacade      = (*accountService)(nil)
	_ portssvc.TransferSvcFacade     = (*transferService)(nil)
	_ portssvc.TransferAuthorizerSvc = (*pinAuthorizer)(nil)
)
