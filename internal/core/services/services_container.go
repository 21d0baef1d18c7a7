package services

import (
	portsrepo "github.com/hostelhq/housing_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/hostelhq/housing_ledger_app/internal/core/ports/services"
	"github.com/hostelhq/housing_ledger_app/internal/platform/config"
	"github.com/hostelhq/housing_ledger_app/internal/utils/locking"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// One keyed mutex shared by every writer that serializes per debtor, so
	// an allocation and a forfeiture for the same debtor cannot interleave.
	debtorLocks := locking.NewKeyedMutex()

	container.Obligation = NewObligationService(
		repos.Ledger,
		WithCategoryPriority(cfg.CategoryPriority),
	)

	container.Posting = NewPostingService(repos.Ledger, repos.Chart, container.Obligation)

	container.Allocation = NewAllocationService(
		repos.Ledger,
		container.Obligation,
		debtorLocks,
		WithOverpaymentPolicy(cfg.OverpaymentPolicy),
	)

	container.Statement = NewStatementService(repos.Ledger, repos.Chart)

	container.Forfeiture = NewForfeitureService(
		repos.Ledger,
		repos.Debtors,
		repos.Events,
		debtorLocks,
		WithRoomReleaseTopic(cfg.RoomReleaseTopic),
	)

	return container
}
