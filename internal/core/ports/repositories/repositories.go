package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// This makes passing dependencies to the service container constructor cleaner.
type RepositoryProvider struct {
	ProjectRepo   ProjectRepositoryFacade
	MemberRepo    MemberRepositoryFacade
	ExpenseRepo   ExpenseRepositoryFacade
	Sequencer     Sequencer
	AdminChannels AdminChannelRegistry
}
