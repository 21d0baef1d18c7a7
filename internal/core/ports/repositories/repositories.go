package repositories

// RepositoryProvider bundles every outbound dependency so wiring code can
// pass one value instead of a parameter list.
type RepositoryProvider struct {
	Ledger  LedgerRepositoryFacade
	Chart   ChartOfAccountsFacade
	Debtors DebtorRegistry
	Events  EventPublisher
}
