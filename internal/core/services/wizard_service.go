package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/SscSPs/expense_tracker/internal/apperrors"
	"github.com/SscSPs/expense_tracker/internal/core/domain"
	portsrepo "github.com/SscSPs/expense_tracker/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/expense_tracker/internal/core/ports/services"
	"github.com/SscSPs/expense_tracker/internal/utils"
)

const (
	commandStart  = "/start"
	commandCancel = "/cancel"
	commandAdmin  = "/admin"

	answerAddAnother = "Add another"
	answerDone       = "Done"
)

var (
	addAnotherAnswers = map[string]bool{"add another": true, "add": true, "+": true, "ещё": true, "еще": true}
	doneAnswers       = map[string]bool{"done": true, "finish": true, "готово": true}
)

// keyedMutex hands out one mutex per key and forgets it when nobody holds it.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refLock
}

type refLock struct {
	sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*refLock)}
}

// Lock blocks until key is free and returns its unlock function.
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &refLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

type wizardService struct {
	BaseService
	store        portsrepo.ConversationStore
	memberRepo   portsrepo.MemberRepositoryFacade
	projectRepo  portsrepo.ProjectReader
	expenses     portssvc.ExpenseWriterSvc
	adminChannel portssvc.AdminChannelSvc
	currencies   domain.CurrencyPolicy
	adminSecret  string
	now          func() time.Time
	locks        *keyedMutex
}

// WizardOption configures the wizard service.
type WizardOption func(*wizardService)

// WithAdminCommand enables "/admin <secret>" to register the current channel
// as the administrator channel.
func WithAdminCommand(adminChannel portssvc.AdminChannelSvc, secret string) WizardOption {
	return func(s *wizardService) {
		s.adminChannel = adminChannel
		s.adminSecret = secret
	}
}

// WithWizardClock overrides the clock used for the "now" date answer.
func WithWizardClock(now func() time.Time) WizardOption {
	return func(s *wizardService) {
		s.now = now
	}
}

// NewWizardService creates a new WizardSvc.
func NewWizardService(
	store portsrepo.ConversationStore,
	memberRepo portsrepo.MemberRepositoryFacade,
	projectRepo portsrepo.ProjectReader,
	expenses portssvc.ExpenseWriterSvc,
	currencies domain.CurrencyPolicy,
	options ...WizardOption,
) portssvc.WizardSvc {
	s := &wizardService{
		store:       store,
		memberRepo:  memberRepo,
		projectRepo: projectRepo,
		expenses:    expenses,
		currencies:  currencies,
		now:         time.Now,
		locks:       newKeyedMutex(),
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

var _ portssvc.WizardSvc = (*wizardService)(nil)

// HandleMessage advances the conversation by one message. Messages of one
// conversation are processed one at a time; other conversations are not blocked.
func (s *wizardService) HandleMessage(ctx context.Context, conversationID string, text string) (*domain.WizardReply, error) {
	unlock := s.locks.Lock(conversationID)
	defer unlock()

	text = strings.TrimSpace(text)
	switch {
	case strings.EqualFold(text, commandStart):
		return s.start(ctx, conversationID)
	case strings.EqualFold(text, commandCancel):
		if err := s.store.Delete(ctx, conversationID); err != nil {
			return nil, fmt.Errorf("failed to drop conversation: %w", err)
		}
		return reply("Cancelled. Send /start to submit a new request."), nil
	case strings.HasPrefix(strings.ToLower(text), commandAdmin+" ") || strings.EqualFold(text, commandAdmin):
		return s.registerAdmin(ctx, conversationID, strings.TrimSpace(text[len(commandAdmin):]))
	}

	conv, ok, err := s.store.Load(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}
	if !ok {
		return reply("Send /start to submit an expense request."), nil
	}

	r, done, err := s.step(ctx, conv, text)
	if err != nil {
		return nil, err
	}
	if done {
		if err := s.store.Delete(ctx, conversationID); err != nil {
			s.LogError(ctx, err, "Failed to drop finished conversation", slog.String("conversation_id", conversationID))
		}
		return r, nil
	}
	if err := s.save(ctx, conv); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *wizardService) start(ctx context.Context, conversationID string) (*domain.WizardReply, error) {
	conv := domain.NewConversation(conversationID)

	member, err := s.memberRepo.FindMemberByChannelID(ctx, conversationID)
	switch {
	case err == nil && member.IsActive():
		r, done, err := s.begin(ctx, conv, member)
		if err != nil {
			return nil, err
		}
		if done {
			return r, s.store.Delete(ctx, conversationID)
		}
		return r, s.save(ctx, conv)
	case err != nil && !errors.Is(err, apperrors.ErrNotFound):
		return nil, fmt.Errorf("failed to resolve channel member: %w", err)
	}

	if err := s.save(ctx, conv); err != nil {
		return nil, err
	}
	return reply("Enter your login."), nil
}

func (s *wizardService) registerAdmin(ctx context.Context, conversationID, secret string) (*domain.WizardReply, error) {
	if s.adminChannel == nil || s.adminSecret == "" || secret != s.adminSecret {
		s.LogInfo(ctx, "Rejected admin channel registration", slog.String("conversation_id", conversationID))
		return reply("Unknown command."), nil
	}
	if err := s.adminChannel.RegisterAdminChannel(ctx, conversationID); err != nil {
		return nil, err
	}
	return reply("This channel now receives administrator notices."), nil
}

// step handles one answer. done reports that the conversation is over.
func (s *wizardService) step(ctx context.Context, conv *domain.Conversation, text string) (*domain.WizardReply, bool, error) {
	switch conv.Step {
	case domain.StepAwaitingLogin:
		if text == "" {
			return reply("Enter your login."), false, nil
		}
		conv.Login = text
		conv.Step = domain.StepAwaitingPassword
		return reply("Enter your password."), false, nil

	case domain.StepAwaitingPassword:
		return s.authenticate(ctx, conv, text)

	case domain.StepAwaitingProject:
		p, ok := conv.SelectProject(text)
		if !ok {
			return projectPrompt(conv, "Pick one of the listed projects."), false, nil
		}
		conv.ProjectID = p.ProjectID
		conv.Step = domain.StepAwaitingDate
		return datePrompt(""), false, nil

	case domain.StepAwaitingDate:
		date, err := domain.ParseDateInput(text, s.now())
		if err != nil {
			return datePrompt("Date not recognized. "), false, nil
		}
		conv.Date = date
		conv.Step = domain.StepAwaitingPurpose
		return reply("What is the purpose of the expense?"), false, nil

	case domain.StepAwaitingPurpose:
		if text == "" {
			return reply("The purpose cannot be empty. What is the purpose of the expense?"), false, nil
		}
		conv.Purpose = text
		conv.Step = domain.StepAwaitingItemName
		return reply("Enter the item name."), false, nil

	case domain.StepAwaitingItemName:
		if text == "" {
			return reply("The item name cannot be empty. Enter the item name."), false, nil
		}
		conv.PendingName = text
		conv.Step = domain.StepAwaitingItemQuantity
		return reply("Enter the quantity."), false, nil

	case domain.StepAwaitingItemQuantity:
		q, err := domain.ParseDecimalInput(text)
		if err != nil {
			return reply("Enter the quantity as a positive number, e.g. 2 or 1,5."), false, nil
		}
		conv.PendingQuantity = q
		conv.Step = domain.StepAwaitingItemAmount
		return reply("Enter the amount."), false, nil

	case domain.StepAwaitingItemAmount:
		a, err := domain.ParseDecimalInput(text)
		if err != nil {
			return reply("Enter the amount as a positive number, e.g. 1000.50 or 1000,50."), false, nil
		}
		conv.PendingAmount = a
		conv.Step = domain.StepAwaitingItemCurrency
		return s.currencyPrompt(conv, ""), false, nil

	case domain.StepAwaitingItemCurrency:
		cur := s.currencies.Normalize(text)
		if !s.currencies.IsAllowed(cur) {
			return s.currencyPrompt(conv, "Unsupported currency. "), false, nil
		}
		if err := conv.CommitItem(cur); err != nil {
			chosen := conv.ChosenCurrency()
			return &domain.WizardReply{
				Text:    fmt.Sprintf("All items of one request must be in %s. Enter the currency again.", chosen),
				Options: []string{chosen},
			}, false, nil
		}
		conv.Step = domain.StepAwaitingMoreOrDone
		return &domain.WizardReply{
			Text:    fmt.Sprintf("Item added (%d in total). Add another item or finish?", len(conv.Items)),
			Options: []string{answerAddAnother, answerDone},
		}, false, nil

	case domain.StepAwaitingMoreOrDone:
		answer := strings.ToLower(text)
		switch {
		case addAnotherAnswers[answer]:
			conv.Step = domain.StepAwaitingItemName
			return reply("Enter the item name."), false, nil
		case doneAnswers[answer]:
			return s.submit(ctx, conv)
		default:
			return &domain.WizardReply{
				Text:    "Answer \"Add another\" or \"Done\".",
				Options: []string{answerAddAnother, answerDone},
			}, false, nil
		}
	}

	return nil, false, fmt.Errorf("%w: conversation %s is in unknown step %q", apperrors.ErrInternal, conv.ConversationID, conv.Step)
}

const channelMismatchText = "Your account is linked to a different chat. Submit requests from that chat or ask the administrator to reset the link."

func (s *wizardService) authenticate(ctx context.Context, conv *domain.Conversation, password string) (*domain.WizardReply, bool, error) {
	member, err := s.memberRepo.FindMemberByLogin(ctx, conv.Login)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, false, fmt.Errorf("failed to find member by login: %w", err)
	}
	matched := false
	if err == nil {
		matched = utils.CheckPasswordHash(password, member.PasswordHash)
	} else {
		utils.RejectUnknownLogin(password)
	}
	if !matched {
		s.LogInfo(ctx, "Wizard login failed", slog.String("conversation_id", conv.ConversationID))
		conv.Login = ""
		conv.Step = domain.StepAwaitingLogin
		return reply("Wrong login or password. Enter your login."), false, nil
	}
	if !member.IsActive() {
		return reply("Your account is blocked. Contact the administrator."), true, nil
	}

	// Drafts are resolved to their submitter by channel, so the member must
	// own this chat before the wizard goes on.
	if member.HasChannel() {
		if *member.ChannelID != conv.ConversationID {
			s.LogInfo(ctx, "Member is linked to another channel",
				slog.String("member_id", member.MemberID),
				slog.String("conversation_id", conv.ConversationID))
			return reply(channelMismatchText), true, nil
		}
		return s.begin(ctx, conv, member)
	}

	linked, err := s.memberRepo.LinkChannel(ctx, member.MemberID, conv.ConversationID)
	switch {
	case errors.Is(err, apperrors.ErrConflict):
		s.LogInfo(ctx, "Channel already linked to another member", slog.String("conversation_id", conv.ConversationID))
		return reply(channelMismatchText), true, nil
	case err != nil:
		return nil, false, fmt.Errorf("failed to link channel: %w", err)
	case !linked:
		// Linked concurrently from another chat.
		return reply(channelMismatchText), true, nil
	}
	s.LogInfo(ctx, "Channel linked to member",
		slog.String("member_id", member.MemberID),
		slog.String("conversation_id", conv.ConversationID))
	return s.begin(ctx, conv, member)
}

// begin moves an authenticated conversation to project selection or, with a
// single project, straight to the date.
func (s *wizardService) begin(ctx context.Context, conv *domain.Conversation, member *domain.Member) (*domain.WizardReply, bool, error) {
	conv.MemberID = member.MemberID
	conv.Login = member.Login

	projects, err := s.projectRepo.ListProjectsByMember(ctx, member.MemberID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to list member projects: %w", err)
	}
	switch len(projects) {
	case 0:
		return reply("You are not assigned to any project. Contact the administrator."), true, nil
	case 1:
		conv.ProjectID = projects[0].ProjectID
		conv.Step = domain.StepAwaitingDate
		return datePrompt(fmt.Sprintf("Hello, %s! Project: %s. ", member.FirstName, projects[0].Name)), false, nil
	}

	conv.Projects = make([]domain.ProjectOption, 0, len(projects))
	for _, p := range projects {
		conv.Projects = append(conv.Projects, domain.ProjectOption{ProjectID: p.ProjectID, Name: p.Name, Code: p.Code})
	}
	conv.Step = domain.StepAwaitingProject
	return projectPrompt(conv, fmt.Sprintf("Hello, %s! Pick a project.", member.FirstName)), false, nil
}

func (s *wizardService) submit(ctx context.Context, conv *domain.Conversation) (*domain.WizardReply, bool, error) {
	expense, err := s.expenses.CreateExpense(ctx, conv.Draft())
	switch {
	case errors.Is(err, apperrors.ErrInvalidArgument), errors.Is(err, apperrors.ErrInvalidState), errors.Is(err, apperrors.ErrNotFound):
		s.LogInfo(ctx, "Wizard draft rejected", slog.String("conversation_id", conv.ConversationID), slog.String("error", err.Error()))
		return reply(fmt.Sprintf("The request was rejected: %v. Send /start to try again.", err)), true, nil
	case err != nil:
		return nil, false, err
	}
	return reply(fmt.Sprintf("Request %s submitted for %s. You will be notified when its status changes.",
		expense.RequestID, utils.FormatMoney(expense.TotalAmount, expense.Currency))), true, nil
}

func (s *wizardService) currencyPrompt(conv *domain.Conversation, prefix string) *domain.WizardReply {
	if chosen := conv.ChosenCurrency(); chosen != "" {
		return &domain.WizardReply{Text: prefix + "Enter the currency (" + chosen + ").", Options: []string{chosen}}
	}
	return &domain.WizardReply{Text: prefix + "Enter the currency.", Options: append([]string(nil), s.currencies.Allowed...)}
}

func (s *wizardService) save(ctx context.Context, conv *domain.Conversation) error {
	conv.UpdatedAt = s.now().UTC()
	if err := s.store.Save(ctx, conv); err != nil {
		return fmt.Errorf("failed to save conversation: %w", err)
	}
	return nil
}

func projectPrompt(conv *domain.Conversation, text string) *domain.WizardReply {
	options := make([]string, 0, len(conv.Projects))
	for _, p := range conv.Projects {
		options = append(options, p.Label())
	}
	return &domain.WizardReply{Text: text, Options: options}
}

func datePrompt(prefix string) *domain.WizardReply {
	return &domain.WizardReply{Text: prefix + "Enter the expense date as YYYY-MM-DD or \"now\".", Options: []string{"now"}}
}

func reply(text string) *domain.WizardReply {
	return &domain.WizardReply{Text: text}
}
