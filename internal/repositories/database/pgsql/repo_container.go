package pgsql

import (
	portsrepo "github.com/SscSPs/expense_tracker/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	projectRepo := newPgxProjectRepository(dbPool)
	memberRepo := newPgxMemberRepository(dbPool)
	sequencer := newPgxSequenceRepository(dbPool)
	expenseRepo := newPgxExpenseRepository(dbPool, sequencer)
	settingsRepo := newPgxSettingsRepository(dbPool)

	return portsrepo.RepositoryProvider{
		ProjectRepo:   projectRepo,
		MemberRepo:    memberRepo,
		ExpenseRepo:   expenseRepo,
		Sequencer:     sequencer,
		AdminChannels: settingsRepo,
	}
}
