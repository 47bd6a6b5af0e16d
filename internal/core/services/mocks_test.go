package services_test

import (
	"context"
	"sync"

	"github.com/SscSPs/expense_tracker/internal/core/domain"
	portsrepo "github.com/SscSPs/expense_tracker/internal/core/ports/repositories"
	"github.com/stretchr/testify/mock"
)

// --- Mock MemberRepository ---
type MockMemberRepository struct {
	mock.Mock
}

func (m *MockMemberRepository) FindMemberByID(ctx context.Context, memberID string) (*domain.Member, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Member), args.Error(1)
}

func (m *MockMemberRepository) FindMemberByLogin(ctx context.Context, login string) (*domain.Member, error) {
	args := m.Called(ctx, login)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Member), args.Error(1)
}

func (m *MockMemberRepository) FindMemberByChannelID(ctx context.Context, channelID string) (*domain.Member, error) {
	args := m.Called(ctx, channelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Member), args.Error(1)
}

func (m *MockMemberRepository) SaveMember(ctx context.Context, member domain.Member) error {
	args := m.Called(ctx, member)
	return args.Error(0)
}

func (m *MockMemberRepository) LinkChannel(ctx context.Context, memberID, channelID string) (bool, error) {
	args := m.Called(ctx, memberID, channelID)
	return args.Bool(0), args.Error(1)
}

// --- Mock ProjectRepository ---
type MockProjectRepository struct {
	mock.Mock
}

func (m *MockProjectRepository) FindProjectByID(ctx context.Context, projectID string) (*domain.Project, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Project), args.Error(1)
}

func (m *MockProjectRepository) ListProjectsByMember(ctx context.Context, memberID string) ([]domain.Project, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Project), args.Error(1)
}

func (m *MockProjectRepository) SaveProject(ctx context.Context, project domain.Project) error {
	args := m.Called(ctx, project)
	return args.Error(0)
}

// --- Mock ExpenseRepository ---
type MockExpenseRepository struct {
	mock.Mock
	// stored is the row UpdateExpenseStatus hands to the mutator.
	stored *domain.ExpenseRequest
}

func (m *MockExpenseRepository) FindExpenseByID(ctx context.Context, expenseID string) (*domain.ExpenseRequest, error) {
	args := m.Called(ctx, expenseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExpenseRequest), args.Error(1)
}

func (m *MockExpenseRepository) ListExpenses(ctx context.Context, filter domain.ExpenseFilter) ([]domain.ExpenseRequest, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ExpenseRequest), args.Error(1)
}

func (m *MockExpenseRepository) CreateExpense(ctx context.Context, draft domain.CanonicalDraft) (*domain.ExpenseRequest, error) {
	args := m.Called(ctx, draft)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExpenseRequest), args.Error(1)
}

// UpdateExpenseStatus runs mutate against a copy of stored, like the row-locked
// read-modify-write of the database implementation.
func (m *MockExpenseRepository) UpdateExpenseStatus(ctx context.Context, expenseID string, mutate portsrepo.StatusMutator) (*domain.ExpenseRequest, error) {
	args := m.Called(ctx, expenseID)
	if err := args.Error(0); err != nil {
		return nil, err
	}
	current := *m.stored
	persist, err := mutate(&current)
	if err != nil {
		return nil, err
	}
	if persist {
		m.stored = &current
	}
	out := current
	return &out, nil
}

func (m *MockExpenseRepository) UpdateInternalComment(ctx context.Context, expenseID string, comment *string) error {
	args := m.Called(ctx, expenseID, comment)
	return args.Error(0)
}

func (m *MockExpenseRepository) DeleteExpense(ctx context.Context, expenseID string) error {
	args := m.Called(ctx, expenseID)
	return args.Error(0)
}

// --- Mock Normalizer ---
type MockNormalizer struct {
	mock.Mock
}

func (m *MockNormalizer) Normalize(ctx context.Context, raw domain.RawDraft) (*domain.CanonicalDraft, error) {
	args := m.Called(ctx, raw)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CanonicalDraft), args.Error(1)
}

// --- Mock Notifier ---
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyCreated(ctx context.Context, expense domain.ExpenseRequest) {
	m.Called(ctx, expense)
}

func (m *MockNotifier) NotifyStatusChanged(ctx context.Context, expense domain.ExpenseRequest) {
	m.Called(ctx, expense)
}

// --- Mock ExpenseWriter ---
type MockExpenseWriter struct {
	mock.Mock
}

func (m *MockExpenseWriter) CreateExpense(ctx context.Context, raw domain.RawDraft) (*domain.ExpenseRequest, error) {
	args := m.Called(ctx, raw)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExpenseRequest), args.Error(1)
}

func (m *MockExpenseWriter) UpdateInternalComment(ctx context.Context, expenseID string, comment string) error {
	return m.Called(ctx, expenseID, comment).Error(0)
}

func (m *MockExpenseWriter) DeleteExpense(ctx context.Context, expenseID string) error {
	return m.Called(ctx, expenseID).Error(0)
}

// --- Mock AdminChannelRegistry ---
type MockAdminChannels struct {
	mock.Mock
}

func (m *MockAdminChannels) GetAdminChannel(ctx context.Context) (string, bool, error) {
	args := m.Called(ctx)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockAdminChannels) SetAdminChannel(ctx context.Context, channelID string) error {
	return m.Called(ctx, channelID).Error(0)
}

// --- Recording transport ---
type sentMessage struct {
	ChannelID string
	Text      string
	Buttons   []domain.Button
	CtxErr    error
}

type recordingTransport struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
	got  chan struct{}
}

func newRecordingTransport() *recordingTransport {
	return &recordingTransport{got: make(chan struct{}, 16)}
}

func (t *recordingTransport) Send(ctx context.Context, channelID string, text string, buttons []domain.Button) error {
	t.mu.Lock()
	t.sent = append(t.sent, sentMessage{ChannelID: channelID, Text: text, Buttons: buttons, CtxErr: ctx.Err()})
	t.mu.Unlock()
	t.got <- struct{}{}
	return t.err
}

func (t *recordingTransport) messages() []sentMessage {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]sentMessage(nil), t.sent...)
}

// --- In-memory conversation store ---
type fakeConversationStore struct {
	mu    sync.Mutex
	convs map[string]domain.Conversation
}

func newFakeConversationStore() *fakeConversationStore {
	return &fakeConversationStore{convs: make(map[string]domain.Conversation)}
}

func (s *fakeConversationStore) Load(_ context.Context, id string) (*domain.Conversation, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.convs[id]
	if !ok {
		return nil, false, nil
	}
	c.Items = append([]domain.LineItem(nil), c.Items...)
	return &c, true, nil
}

func (s *fakeConversationStore) Save(_ context.Context, conv *domain.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *conv
	c.Items = append([]domain.LineItem(nil), conv.Items...)
	s.convs[conv.ConversationID] = c
	return nil
}

func (s *fakeConversationStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.convs, id)
	return nil
}

func strPtr(s string) *string { return &s }
