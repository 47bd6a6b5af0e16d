package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/SscSPs/expense_tracker/internal/apperrors"
	"github.com/SscSPs/expense_tracker/internal/core/domain"
	"github.com/SscSPs/expense_tracker/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type staticTokens struct{}

func (staticTokens) IssueDownloadToken(expenseID string) (string, error) {
	return "tok-" + expenseID, nil
}

func sampleExpense() domain.ExpenseRequest {
	return domain.ExpenseRequest{
		ExpenseID:     "e-1",
		RequestID:     "TST-7",
		Purpose:       "Cement",
		TotalAmount:   dec("1250000.5"),
		Currency:      "UZS",
		Status:        domain.StatusRequest,
		SubmitterID:   strPtr("m-1"),
		SubmitterName: "Karimov Aziz",
		ProjectName:   "Test Site",
		ProjectCode:   "TST",
		AuditFields:   domain.AuditFields{CreatedAt: time.Date(2025, 3, 14, 5, 0, 0, 0, time.UTC)},
	}
}

func newTestDispatcher(t *testing.T, transport *recordingTransport, admins *MockAdminChannels, members *MockMemberRepository) *services.NotificationDispatcher {
	t.Helper()
	tashkent := time.FixedZone("UZT", 5*60*60)
	d := services.NewNotificationDispatcher(services.DispatcherConfig{
		Workers:     2,
		QueueSize:   8,
		SendTimeout: time.Second,
		Location:    tashkent,
		Locale:      "en",
		WebBaseURL:  "https://expenses.example.com/",
	}, transport, admins, members, staticTokens{}, nil)
	d.Start()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = d.Stop(ctx)
	})
	return d
}

func waitSent(t *testing.T, transport *recordingTransport) {
	t.Helper()
	select {
	case <-transport.got:
	case <-time.After(2 * time.Second):
		t.Fatal("notification was not sent")
	}
}

func TestDispatcher_AdminNoticeSurvivesCancelledCaller(t *testing.T) {
	transport := newRecordingTransport()
	admins := new(MockAdminChannels)
	admins.On("GetAdminChannel", mock.Anything).Return("admin-chan", true, nil)
	d := newTestDispatcher(t, transport, admins, new(MockMemberRepository))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d.NotifyCreated(ctx, sampleExpense())
	waitSent(t, transport)

	msgs := transport.messages()
	require.Len(t, msgs, 1)
	msg := msgs[0]
	assert.NoError(t, msg.CtxErr)
	assert.Equal(t, "admin-chan", msg.ChannelID)
	assert.Contains(t, msg.Text, "TST-7")
	assert.Contains(t, msg.Text, "Test Site (TST)")
	assert.Contains(t, msg.Text, "Karimov Aziz")
	assert.Contains(t, msg.Text, "1 250 000.50 UZS")
	assert.Contains(t, msg.Text, "10:00:00 14.03.2025")
	assert.Contains(t, msg.Text, "awaiting review")
	require.Len(t, msg.Buttons, 2)
	assert.Equal(t, "https://expenses.example.com/api/v1/expenses/e-1/document?token=tok-e-1", msg.Buttons[0].URL)
	assert.Equal(t, "https://expenses.example.com/dashboard", msg.Buttons[1].URL)
}

func TestDispatcher_NoAdminChannelSkips(t *testing.T) {
	transport := newRecordingTransport()
	admins := new(MockAdminChannels)
	admins.On("GetAdminChannel", mock.Anything).Return("", false, nil)
	d := newTestDispatcher(t, transport, admins, new(MockMemberRepository))

	d.NotifyCreated(context.Background(), sampleExpense())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, d.Stop(ctx))
	assert.Empty(t, transport.messages())
	admins.AssertExpectations(t)
}

func TestDispatcher_TransportFailureIsSwallowed(t *testing.T) {
	transport := newRecordingTransport()
	transport.err = errors.New("discord is down")
	members := new(MockMemberRepository)
	members.On("FindMemberByID", mock.Anything, "m-1").
		Return(&domain.Member{MemberID: "m-1", ChannelID: strPtr("member-chan")}, nil)
	d := newTestDispatcher(t, transport, new(MockAdminChannels), members)

	e := sampleExpense()
	e.Status = domain.StatusDeclined
	e.StatusComment = strPtr("over budget")

	assert.NotPanics(t, func() {
		d.NotifyStatusChanged(context.Background(), e)
		d.NotifyStatusChanged(context.Background(), e)
	})
	waitSent(t, transport)
	waitSent(t, transport)

	msgs := transport.messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "member-chan", msgs[0].ChannelID)
	assert.True(t, strings.HasPrefix(msgs[0].Text, "❌ TST-7: Declined"))
	assert.Contains(t, msgs[0].Text, "Comment: over budget")
}

func TestDispatcher_SubmitterWithoutChannelSkips(t *testing.T) {
	transport := newRecordingTransport()
	members := new(MockMemberRepository)
	members.On("FindMemberByID", mock.Anything, "m-1").Return(&domain.Member{MemberID: "m-1"}, nil).Once()
	members.On("FindMemberByID", mock.Anything, "m-2").Return(nil, apperrors.ErrNotFound).Once()
	d := newTestDispatcher(t, transport, new(MockAdminChannels), members)

	d.NotifyStatusChanged(context.Background(), sampleExpense())
	gone := sampleExpense()
	gone.SubmitterID = strPtr("m-2")
	d.NotifyStatusChanged(context.Background(), gone)
	orphan := sampleExpense()
	orphan.SubmitterID = nil
	d.NotifyStatusChanged(context.Background(), orphan)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, d.Stop(ctx))
	assert.Empty(t, transport.messages())
	members.AssertExpectations(t)
}

func TestDispatcher_StoppedDropsNotices(t *testing.T) {
	transport := newRecordingTransport()
	d := newTestDispatcher(t, transport, new(MockAdminChannels), new(MockMemberRepository))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, d.Stop(ctx))

	assert.NotPanics(t, func() { d.NotifyCreated(context.Background(), sampleExpense()) })
	assert.Empty(t, transport.messages())
}

func TestStatusNoticeText_RussianLabels(t *testing.T) {
	d := services.NewNotificationDispatcher(services.DispatcherConfig{Locale: "ru"}, nil, nil, nil, nil, nil)
	e := sampleExpense()
	e.Status = domain.StatusConfirmed

	text := d.StatusNoticeText(e)

	assert.Equal(t, "✅ TST-7: Подтверждено\nAmount: 1 250 000.50 UZS", text)
}
