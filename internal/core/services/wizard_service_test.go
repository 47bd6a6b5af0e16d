package services_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/expense_tracker/internal/apperrors"
	"github.com/SscSPs/expense_tracker/internal/core/domain"
	portssvc "github.com/SscSPs/expense_tracker/internal/core/ports/services"
	"github.com/SscSPs/expense_tracker/internal/core/services"
	"github.com/SscSPs/expense_tracker/internal/utils"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type WizardServiceTestSuite struct {
	suite.Suite
	store       *fakeConversationStore
	members     *MockMemberRepository
	projects    *MockProjectRepository
	expenses    *MockExpenseWriter
	admins      *MockAdminChannels
	service     portssvc.WizardSvc
	member      *domain.Member
	now         time.Time
	ctx         context.Context
	channelID   string
	projectList []domain.Project
}

func (s *WizardServiceTestSuite) SetupTest() {
	s.store = newFakeConversationStore()
	s.members = new(MockMemberRepository)
	s.projects = new(MockProjectRepository)
	s.expenses = new(MockExpenseWriter)
	s.admins = new(MockAdminChannels)
	s.now = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	s.ctx = context.Background()
	s.channelID = "chan-1"

	hash, err := utils.HashPassword("s3cret")
	s.Require().NoError(err)
	s.member = &domain.Member{MemberID: "m-1", FirstName: "Aziz", LastName: "Karimov", Login: "aziz", PasswordHash: hash, Status: domain.MemberActive}
	s.projectList = []domain.Project{
		{ProjectID: "p-1", Name: "Alpha", Code: "ALP"},
		{ProjectID: "p-2", Name: "Beta", Code: "BET"},
	}

	s.service = services.NewWizardService(
		s.store,
		s.members,
		s.projects,
		s.expenses,
		domain.CurrencyPolicy{Base: "UZS", Allowed: []string{"UZS", "USD"}},
		services.WithAdminCommand(services.NewAdminChannelService(s.admins), "letmein"),
		services.WithWizardClock(func() time.Time { return s.now }),
	)
}

func TestWizardServiceTestSuite(t *testing.T) {
	suite.Run(t, new(WizardServiceTestSuite))
}

func (s *WizardServiceTestSuite) send(text string) *domain.WizardReply {
	r, err := s.service.HandleMessage(s.ctx, s.channelID, text)
	s.Require().NoError(err)
	s.Require().NotNil(r)
	return r
}

func (s *WizardServiceTestSuite) conversation() *domain.Conversation {
	conv, ok, err := s.store.Load(s.ctx, s.channelID)
	s.Require().NoError(err)
	s.Require().True(ok)
	return conv
}

// loginAndReachItems runs the unlinked-channel login and stops at the first item name.
func (s *WizardServiceTestSuite) loginAndReachItems() {
	s.members.On("FindMemberByChannelID", s.ctx, s.channelID).Return(nil, apperrors.ErrNotFound).Once()
	s.members.On("FindMemberByLogin", s.ctx, "aziz").Return(s.member, nil).Once()
	s.members.On("LinkChannel", s.ctx, "m-1", s.channelID).Return(true, nil).Once()
	s.projects.On("ListProjectsByMember", s.ctx, "m-1").Return(s.projectList, nil).Once()

	s.send("/start")
	s.send("aziz")
	r := s.send("s3cret")
	s.Equal([]string{"Alpha (ALP)", "Beta (BET)"}, r.Options)
	s.Equal(domain.StepAwaitingProject, s.conversation().Step)

	s.send("BET")
	s.send("now")
	s.send("Cement delivery")
	s.Equal(domain.StepAwaitingItemName, s.conversation().Step)
}

func (s *WizardServiceTestSuite) addItem(name, qty, amount, currency string) *domain.WizardReply {
	s.send(name)
	s.send(qty)
	s.send(amount)
	return s.send(currency)
}

func (s *WizardServiceTestSuite) TestFullRun_SubmitsDraftVerbatim() {
	s.loginAndReachItems()
	s.addItem("Cement", "10", "1000,50", "usd")
	s.send("Add another")
	s.addItem("Sand", "1.5", "250.25", "USD")

	s.expenses.On("CreateExpense", s.ctx, mock.MatchedBy(func(raw domain.RawDraft) bool {
		d, ok := raw.(domain.WizardDraft)
		return ok && d.ChannelID == s.channelID && d.ProjectID == "p-2" &&
			d.Purpose == "Cement delivery" && len(d.Items) == 2 &&
			d.Items[0].Amount.Equal(dec("1000.50")) && d.Items[1].Quantity.Equal(dec("1.5")) &&
			d.Date == s.now.Format(time.RFC3339)
	})).Return(&domain.ExpenseRequest{RequestID: "BET-3", TotalAmount: dec("1250.75"), Currency: "USD"}, nil).Once()

	r := s.send("Done")

	s.Contains(r.Text, "BET-3")
	s.Contains(r.Text, "1 250.75 USD")
	_, ok, _ := s.store.Load(s.ctx, s.channelID)
	s.False(ok, "conversation must be dropped after submission")
	s.expenses.AssertExpectations(s.T())
	s.members.AssertExpectations(s.T())
}

func (s *WizardServiceTestSuite) TestCurrencyMismatchRejectsSecondItem() {
	s.loginAndReachItems()
	s.addItem("Cement", "1", "100", "USD")
	s.send("add")

	r := s.addItem("Bricks", "2", "300", "UZS")

	s.Contains(r.Text, "USD")
	s.Equal([]string{"USD"}, r.Options)
	conv := s.conversation()
	s.Len(conv.Items, 1)
	s.Equal(domain.StepAwaitingItemCurrency, conv.Step)

	s.send("USD")
	s.Len(s.conversation().Items, 2)
}

func (s *WizardServiceTestSuite) TestBadNumbersRePromptWithoutAdvancing() {
	s.loginAndReachItems()
	s.send("Cement")

	s.send("ten")
	s.Equal(domain.StepAwaitingItemQuantity, s.conversation().Step)
	s.send("-1")
	s.Equal(domain.StepAwaitingItemQuantity, s.conversation().Step)
	s.send("2,5")
	conv := s.conversation()
	s.Equal(domain.StepAwaitingItemAmount, conv.Step)
	s.True(conv.PendingQuantity.Equal(dec("2.5")))
}

func (s *WizardServiceTestSuite) TestBadDateRePrompts() {
	s.members.On("FindMemberByChannelID", s.ctx, s.channelID).Return(s.member, nil).Once()
	s.projects.On("ListProjectsByMember", s.ctx, "m-1").Return(s.projectList[:1], nil).Once()

	r := s.send("/start")
	s.Contains(r.Text, "Alpha")
	s.Equal(domain.StepAwaitingDate, s.conversation().Step)

	s.send("14/03/2025")
	s.Equal(domain.StepAwaitingDate, s.conversation().Step)
	s.send("2025-03-10")
	conv := s.conversation()
	s.Equal(domain.StepAwaitingPurpose, conv.Step)
	s.Equal("2025-03-10", conv.Date)
	s.Equal("p-1", conv.ProjectID)
	s.members.AssertNotCalled(s.T(), "FindMemberByLogin", mock.Anything, mock.Anything)
}

func (s *WizardServiceTestSuite) TestWrongPasswordRestartsLogin() {
	s.members.On("FindMemberByChannelID", s.ctx, s.channelID).Return(nil, apperrors.ErrNotFound).Once()
	s.members.On("FindMemberByLogin", s.ctx, "aziz").Return(s.member, nil).Once()
	s.members.On("FindMemberByLogin", s.ctx, "ghost").Return(nil, apperrors.ErrNotFound).Once()

	s.send("/start")
	s.send("aziz")
	r := s.send("wrong")
	s.Contains(r.Text, "Wrong login or password")
	s.Equal(domain.StepAwaitingLogin, s.conversation().Step)

	s.send("ghost")
	s.send("whatever")
	s.Equal(domain.StepAwaitingLogin, s.conversation().Step)
	s.members.AssertNotCalled(s.T(), "LinkChannel", mock.Anything, mock.Anything, mock.Anything)
}

func (s *WizardServiceTestSuite) TestBlockedMemberIsRefused() {
	blocked := *s.member
	blocked.Status = domain.MemberBlocked
	s.members.On("FindMemberByChannelID", s.ctx, s.channelID).Return(nil, apperrors.ErrNotFound).Once()
	s.members.On("FindMemberByLogin", s.ctx, "aziz").Return(&blocked, nil).Once()

	s.send("/start")
	s.send("aziz")
	r := s.send("s3cret")

	s.Contains(r.Text, "blocked")
	_, ok, _ := s.store.Load(s.ctx, s.channelID)
	s.False(ok)
}

func (s *WizardServiceTestSuite) TestChannelOwnedByAnotherMemberIsRefused() {
	s.members.On("FindMemberByChannelID", s.ctx, s.channelID).Return(nil, apperrors.ErrNotFound).Once()
	s.members.On("FindMemberByLogin", s.ctx, "aziz").Return(s.member, nil).Once()
	s.members.On("LinkChannel", s.ctx, "m-1", s.channelID).Return(false, apperrors.ErrConflict).Once()

	s.send("/start")
	s.send("aziz")
	r := s.send("s3cret")

	s.Contains(r.Text, "linked to a different chat")
	_, ok, _ := s.store.Load(s.ctx, s.channelID)
	s.False(ok)
	s.projects.AssertNotCalled(s.T(), "ListProjectsByMember", mock.Anything, mock.Anything)
}

func (s *WizardServiceTestSuite) TestMemberLinkedElsewhereIsRefused() {
	elsewhere := *s.member
	oldChannel := "old-chan"
	elsewhere.ChannelID = &oldChannel
	s.members.On("FindMemberByChannelID", s.ctx, s.channelID).Return(nil, apperrors.ErrNotFound).Once()
	s.members.On("FindMemberByLogin", s.ctx, "aziz").Return(&elsewhere, nil).Once()

	s.send("/start")
	s.send("aziz")
	r := s.send("s3cret")

	s.Contains(r.Text, "linked to a different chat")
	_, ok, _ := s.store.Load(s.ctx, s.channelID)
	s.False(ok)
	s.members.AssertNotCalled(s.T(), "LinkChannel", mock.Anything, mock.Anything, mock.Anything)
	s.projects.AssertNotCalled(s.T(), "ListProjectsByMember", mock.Anything, mock.Anything)
}

func (s *WizardServiceTestSuite) TestLinkLostToConcurrentChatIsRefused() {
	s.members.On("FindMemberByChannelID", s.ctx, s.channelID).Return(nil, apperrors.ErrNotFound).Once()
	s.members.On("FindMemberByLogin", s.ctx, "aziz").Return(s.member, nil).Once()
	s.members.On("LinkChannel", s.ctx, "m-1", s.channelID).Return(false, nil).Once()

	s.send("/start")
	s.send("aziz")
	r := s.send("s3cret")

	s.Contains(r.Text, "linked to a different chat")
	_, ok, _ := s.store.Load(s.ctx, s.channelID)
	s.False(ok)
}

func (s *WizardServiceTestSuite) TestRejectedDraftEndsConversation() {
	s.loginAndReachItems()
	s.addItem("Cement", "1", "100", "USD")
	s.expenses.On("CreateExpense", s.ctx, mock.Anything).Return(nil, fmt.Errorf("%w: member blocked", apperrors.ErrInvalidState)).Once()

	r := s.send("done")

	s.Contains(r.Text, "rejected")
	_, ok, _ := s.store.Load(s.ctx, s.channelID)
	s.False(ok)
}

func (s *WizardServiceTestSuite) TestCancelAndUnknownConversation() {
	r := s.send("hello")
	s.Contains(r.Text, "/start")

	s.members.On("FindMemberByChannelID", s.ctx, s.channelID).Return(nil, apperrors.ErrNotFound).Once()
	s.send("/start")
	s.send("/cancel")
	_, ok, _ := s.store.Load(s.ctx, s.channelID)
	s.False(ok)
}

func (s *WizardServiceTestSuite) TestAdminCommand() {
	s.admins.On("SetAdminChannel", s.ctx, s.channelID).Return(nil).Once()

	r := s.send("/admin nope")
	s.Equal("Unknown command.", r.Text)

	r = s.send("/admin letmein")
	s.Contains(r.Text, "administrator notices")
	s.admins.AssertExpectations(s.T())
}

func (s *WizardServiceTestSuite) TestConversationsAreSerializedPerKey() {
	s.members.On("FindMemberByChannelID", mock.Anything, mock.Anything).Return(nil, apperrors.ErrNotFound)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("chan-%d", i%4)
			_, err := s.service.HandleMessage(s.ctx, id, "/start")
			s.NoError(err)
			_, err = s.service.HandleMessage(s.ctx, id, "login")
			s.NoError(err)
		}(i)
	}
	wg.Wait()

	for i := 0; i < 4; i++ {
		conv, ok, err := s.store.Load(s.ctx, fmt.Sprintf("chan-%d", i))
		s.Require().NoError(err)
		s.Require().True(ok)
		s.Contains([]domain.WizardStep{domain.StepAwaitingLogin, domain.StepAwaitingPassword}, conv.Step)
	}
}
