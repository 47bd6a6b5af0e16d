package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/SscSPs/expense_tracker/internal/core/domain"
	"github.com/SscSPs/expense_tracker/internal/core/ports/messaging"
	portsrepo "github.com/SscSPs/expense_tracker/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/expense_tracker/internal/core/ports/services"
	"github.com/SscSPs/expense_tracker/internal/utils"
)

// DownloadTokenIssuer issues the short-lived token embedded in the admin notice.
type DownloadTokenIssuer interface {
	IssueDownloadToken(expenseID string) (string, error)
}

// DispatcherConfig tunes the notification worker pool and message rendering.
type DispatcherConfig struct {
	Workers     int
	QueueSize   int
	SendTimeout time.Duration
	Location    *time.Location
	Locale      string
	WebBaseURL  string
}

type noticeKind int

const (
	noticeCreated noticeKind = iota
	noticeStatusChanged
)

type noticeJob struct {
	ctx     context.Context
	kind    noticeKind
	expense domain.ExpenseRequest
}

// NotificationDispatcher delivers chat notices on a bounded pool of workers,
// decoupled from the request that triggered them.
type NotificationDispatcher struct {
	BaseService
	cfg           DispatcherConfig
	transport     messaging.Transport
	adminChannels portsrepo.AdminChannelRegistry
	memberRepo    portsrepo.MemberReader
	tokens        DownloadTokenIssuer
	logger        *slog.Logger

	jobs      chan noticeJob
	wg        sync.WaitGroup
	mu        sync.RWMutex
	stopped   bool
	startOnce sync.Once
}

// NewNotificationDispatcher creates a dispatcher. Call Start before use and Stop on shutdown.
func NewNotificationDispatcher(cfg DispatcherConfig, transport messaging.Transport, adminChannels portsrepo.AdminChannelRegistry, memberRepo portsrepo.MemberReader, tokens DownloadTokenIssuer, logger *slog.Logger) *NotificationDispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 100
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 10 * time.Second
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &NotificationDispatcher{
		cfg:           cfg,
		transport:     transport,
		adminChannels: adminChannels,
		memberRepo:    memberRepo,
		tokens:        tokens,
		logger:        logger.With(slog.String("component", "notification_dispatcher")),
		jobs:          make(chan noticeJob, cfg.QueueSize),
	}
}

var _ portssvc.NotificationSvc = (*NotificationDispatcher)(nil)

// Start launches the workers.
func (d *NotificationDispatcher) Start() {
	d.startOnce.Do(func() {
		for i := 0; i < d.cfg.Workers; i++ {
			d.wg.Add(1)
			go d.worker(i)
		}
		d.logger.Info("Notification dispatcher started", slog.Int("workers", d.cfg.Workers))
	})
}

// Stop stops accepting jobs and waits for queued ones until ctx expires.
func (d *NotificationDispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return nil
	}
	d.stopped = true
	close(d.jobs)
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		d.logger.Info("Notification dispatcher stopped")
		return nil
	case <-ctx.Done():
		d.logger.Warn("Notification dispatcher stopped before the queue drained", slog.Int("pending", len(d.jobs)))
		return ctx.Err()
	}
}

// NotifyCreated schedules the administrator notice for a new request.
func (d *NotificationDispatcher) NotifyCreated(ctx context.Context, expense domain.ExpenseRequest) {
	d.enqueue(ctx, noticeCreated, expense)
}

// NotifyStatusChanged schedules the submitter notice after a status change.
func (d *NotificationDispatcher) NotifyStatusChanged(ctx context.Context, expense domain.ExpenseRequest) {
	d.enqueue(ctx, noticeStatusChanged, expense)
}

func (d *NotificationDispatcher) enqueue(ctx context.Context, kind noticeKind, expense domain.ExpenseRequest) {
	// The notice must survive the caller: the request is already committed.
	job := noticeJob{ctx: context.WithoutCancel(ctx), kind: kind, expense: expense}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		d.LogError(ctx, errors.New("dispatcher stopped"), "Notification dropped", slog.String("request_id", expense.RequestID))
		return
	}
	select {
	case d.jobs <- job:
	default:
		d.LogError(ctx, errors.New("queue full"), "Notification dropped", slog.String("request_id", expense.RequestID))
	}
}

func (d *NotificationDispatcher) worker(id int) {
	defer d.wg.Done()
	for job := range d.jobs {
		d.process(id, job)
	}
}

func (d *NotificationDispatcher) process(workerID int, job noticeJob) {
	ctx, cancel := context.WithTimeout(job.ctx, d.cfg.SendTimeout)
	defer cancel()

	logger := d.logger.With(
		slog.Int("worker", workerID),
		slog.String("request_id", job.expense.RequestID),
	)

	var err error
	switch job.kind {
	case noticeCreated:
		err = d.sendAdminNotice(ctx, logger, job.expense)
	case noticeStatusChanged:
		err = d.sendStatusNotice(ctx, logger, job.expense)
	}
	if err != nil {
		logger.Error("Failed to deliver notification", slog.String("error", err.Error()))
	}
}

func (d *NotificationDispatcher) sendAdminNotice(ctx context.Context, logger *slog.Logger, e domain.ExpenseRequest) error {
	channelID, ok, err := d.adminChannels.GetAdminChannel(ctx)
	if err != nil {
		return fmt.Errorf("failed to resolve admin channel: %w", err)
	}
	if !ok {
		logger.Info("No admin channel registered, notice skipped")
		return nil
	}

	buttons := make([]domain.Button, 0, 2)
	if d.tokens != nil && d.cfg.WebBaseURL != "" {
		token, err := d.tokens.IssueDownloadToken(e.ExpenseID)
		if err != nil {
			logger.Warn("Failed to issue download token", slog.String("error", err.Error()))
		} else {
			buttons = append(buttons, domain.Button{
				Label: "Download estimate",
				URL:   fmt.Sprintf("%s/api/v1/expenses/%s/document?token=%s", d.baseURL(), e.ExpenseID, token),
			})
		}
	}
	if d.cfg.WebBaseURL != "" {
		buttons = append(buttons, domain.Button{Label: "Open dashboard", URL: d.baseURL() + "/dashboard"})
	}

	if err := d.transport.Send(ctx, channelID, d.AdminNoticeText(e), buttons); err != nil {
		return fmt.Errorf("admin notice: %w", err)
	}
	logger.Info("Admin notice sent", slog.String("channel_id", channelID))
	return nil
}

func (d *NotificationDispatcher) sendStatusNotice(ctx context.Context, logger *slog.Logger, e domain.ExpenseRequest) error {
	if e.SubmitterID == nil {
		logger.Info("Submitter no longer exists, status notice skipped")
		return nil
	}
	member, err := d.memberRepo.FindMemberByID(ctx, *e.SubmitterID)
	if err != nil {
		return fmt.Errorf("failed to resolve submitter %s: %w", *e.SubmitterID, err)
	}
	if !member.HasChannel() {
		logger.Info("Submitter has no linked channel, status notice skipped")
		return nil
	}

	if err := d.transport.Send(ctx, *member.ChannelID, d.StatusNoticeText(e), nil); err != nil {
		return fmt.Errorf("status notice: %w", err)
	}
	logger.Info("Status notice sent", slog.String("status", string(e.Status)))
	return nil
}

// AdminNoticeText renders the administrator notice for a new request.
func (d *NotificationDispatcher) AdminNoticeText(e domain.ExpenseRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🆕 New expense request %s\n", e.RequestID)
	fmt.Fprintf(&b, "Project: %s (%s)\n", e.ProjectName, e.ProjectCode)
	fmt.Fprintf(&b, "Submitter: %s\n", e.SubmitterName)
	fmt.Fprintf(&b, "Purpose: %s\n", e.Purpose)
	fmt.Fprintf(&b, "Amount: %s\n", utils.FormatMoney(e.TotalAmount, e.Currency))
	fmt.Fprintf(&b, "Submitted: %s\n", e.CreatedAt.In(d.cfg.Location).Format("15:04:05 02.01.2006"))
	b.WriteString("Status: awaiting review")
	return b.String()
}

// StatusNoticeText renders the submitter notice after a status change.
func (d *NotificationDispatcher) StatusNoticeText(e domain.ExpenseRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s: %s\n", domain.StatusEmoji(e.Status), e.RequestID, domain.StatusLabel(e.Status, d.cfg.Locale))
	fmt.Fprintf(&b, "Amount: %s", utils.FormatMoney(e.TotalAmount, e.Currency))
	if e.StatusComment != nil && *e.StatusComment != "" {
		fmt.Fprintf(&b, "\nComment: %s", *e.StatusComment)
	}
	return b.String()
}

func (d *NotificationDispatcher) baseURL() string {
	return strings.TrimRight(d.cfg.WebBaseURL, "/")
}
