package services

import (
	"github.com/SscSPs/expense_tracker/internal/core/domain"
	portsrepo "github.com/SscSPs/expense_tracker/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/expense_tracker/internal/core/ports/services"
	"github.com/SscSPs/expense_tracker/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies.
// The notifier is started and stopped by the caller.
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, sessions portsrepo.ConversationStore, notifier portssvc.NotificationSvc) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	currencies := domain.CurrencyPolicy{Base: cfg.BaseCurrency, Allowed: cfg.AllowedCurrencies}

	container.Notification = notifier
	container.Normalizer = NewNormalizer(repos.MemberRepo, repos.ProjectRepo, currencies)
	container.Expense = NewExpenseService(container.Normalizer, repos.ExpenseRepo, container.Notification)
	container.AdminChannel = NewAdminChannelService(repos.AdminChannels)
	container.Auth = NewAuthService(cfg, repos.MemberRepo)
	container.Wizard = NewWizardService(
		sessions,
		repos.MemberRepo,
		repos.ProjectRepo,
		container.Expense,
		currencies,
		WithAdminCommand(container.AdminChannel, cfg.AdminBotSecret),
	)

	return container
}
