package services

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/SscSPs/expense_tracker/internal/apperrors"
	"github.com/SscSPs/expense_tracker/internal/core/domain"
	portsrepo "github.com/SscSPs/expense_tracker/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/expense_tracker/internal/core/ports/services"
	"github.com/microcosm-cc/bluemonday"
	"github.com/shopspring/decimal"
)

// normalizer converts drafts from every ingestion channel into one canonical shape.
type normalizer struct {
	BaseService
	memberRepo  portsrepo.MemberReader
	projectRepo portsrepo.ProjectReader
	currencies  domain.CurrencyPolicy
	sanitizer   *bluemonday.Policy
	now         func() time.Time
}

// NormalizerOption configures the normalizer.
type NormalizerOption func(*normalizer)

// WithNormalizerClock overrides the clock used for absent dates.
func WithNormalizerClock(now func() time.Time) NormalizerOption {
	return func(n *normalizer) {
		n.now = now
	}
}

// NewNormalizer creates a new NormalizerSvc.
func NewNormalizer(memberRepo portsrepo.MemberReader, projectRepo portsrepo.ProjectReader, currencies domain.CurrencyPolicy, options ...NormalizerOption) portssvc.NormalizerSvc {
	n := &normalizer{
		memberRepo:  memberRepo,
		projectRepo: projectRepo,
		currencies:  currencies,
		sanitizer:   bluemonday.StrictPolicy(),
		now:         time.Now,
	}
	for _, opt := range options {
		opt(n)
	}
	return n
}

var _ portssvc.NormalizerSvc = (*normalizer)(nil)

// intake is the channel-independent shape every draft variant is converted into.
type intake struct {
	source    domain.Channel
	submitter domain.Principal // typed drafts
	channelID string           // form and wizard drafts
	projectID string
	purpose   string
	items     []domain.LineItem
	total     *decimal.Decimal
	currency  string
	date      *time.Time
}

// Normalize validates raw and fills in derived fields.
func (s *normalizer) Normalize(ctx context.Context, raw domain.RawDraft) (*domain.CanonicalDraft, error) {
	var (
		in  intake
		err error
	)
	switch d := raw.(type) {
	case domain.TypedDraft:
		in = fromTyped(d)
	case domain.FormDraft:
		in, err = fromForm(d)
	case domain.WizardDraft:
		in, err = fromWizard(d)
	default:
		err = fmt.Errorf("%w: unsupported draft type %T", apperrors.ErrInvalidArgument, raw)
	}
	if err != nil {
		s.LogDebug(ctx, "Draft rejected during conversion", slog.String("error", err.Error()))
		return nil, err
	}

	draft, err := s.canonicalize(ctx, in)
	if err != nil {
		s.LogDebug(ctx, "Draft rejected during validation",
			slog.String("source", string(in.source)),
			slog.String("error", err.Error()))
		return nil, err
	}
	return draft, nil
}

func fromTyped(d domain.TypedDraft) intake {
	in := intake{
		source:    domain.ChannelAPI,
		submitter: d.Submitter,
		projectID: d.ProjectID,
		purpose:   d.Purpose,
		items:     append([]domain.LineItem(nil), d.Items...),
		total:     d.Total,
		date:      d.Date,
	}
	if d.Currency != nil {
		in.currency = *d.Currency
	}
	return in
}

func fromWizard(d domain.WizardDraft) (intake, error) {
	in := intake{
		source:    domain.ChannelWizard,
		channelID: d.ChannelID,
		projectID: d.ProjectID,
		purpose:   d.Purpose,
		items:     append([]domain.LineItem(nil), d.Items...),
	}
	if strings.TrimSpace(d.Date) != "" {
		t, err := domain.ParseDraftDate(d.Date)
		if err != nil {
			return intake{}, err
		}
		in.date = &t
	}
	return in, nil
}

func fromForm(d domain.FormDraft) (intake, error) {
	f := d.Fields
	in := intake{source: domain.ChannelForm}

	var err error
	if in.channelID, err = looseString(f["chat_id"]); err != nil {
		return intake{}, fieldError("chat_id", err)
	}
	if in.projectID, err = looseString(f["project_id"]); err != nil {
		return intake{}, fieldError("project_id", err)
	}
	if in.purpose, err = looseString(f["purpose"]); err != nil {
		return intake{}, fieldError("purpose", err)
	}
	if in.currency, err = looseString(f["currency"]); err != nil {
		return intake{}, fieldError("currency", err)
	}

	if v, ok := f["total_amount"]; ok && v != nil && v != "" {
		total, err := looseDecimal(v)
		if err != nil {
			return intake{}, fieldError("total_amount", err)
		}
		in.total = &total
	}

	if v, ok := f["date"]; ok && v != nil {
		s, err := looseString(v)
		if err != nil {
			return intake{}, fieldError("date", err)
		}
		if s != "" {
			t, err := domain.ParseDraftDate(s)
			if err != nil {
				return intake{}, err
			}
			in.date = &t
		}
	}

	if v, ok := f["items"]; ok && v != nil {
		list, ok := v.([]any)
		if !ok {
			return intake{}, fmt.Errorf("%w: items must be a list", apperrors.ErrInvalidArgument)
		}
		for i, raw := range list {
			obj, ok := raw.(map[string]any)
			if !ok {
				return intake{}, fmt.Errorf("%w: items[%d] must be an object", apperrors.ErrInvalidArgument, i)
			}
			item, err := formItem(obj)
			if err != nil {
				return intake{}, fmt.Errorf("items[%d]: %w", i, err)
			}
			in.items = append(in.items, item)
		}
	}
	return in, nil
}

func formItem(obj map[string]any) (domain.LineItem, error) {
	var item domain.LineItem
	var err error
	if item.Name, err = looseString(obj["name"]); err != nil {
		return item, fieldError("name", err)
	}
	if item.Currency, err = looseString(obj["currency"]); err != nil {
		return item, fieldError("currency", err)
	}
	if item.Quantity, err = looseDecimal(obj["quantity"]); err != nil {
		return item, fieldError("quantity", err)
	}
	if item.Amount, err = looseDecimal(obj["amount"]); err != nil {
		return item, fieldError("amount", err)
	}
	return item, nil
}

func fieldError(field string, err error) error {
	return fmt.Errorf("%w: field %s: %v", apperrors.ErrInvalidArgument, field, err)
}

// looseString accepts strings and numbers; chat ids often arrive as numbers.
func looseString(v any) (string, error) {
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return strings.TrimSpace(t), nil
	case json.Number:
		return t.String(), nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	case int:
		return strconv.Itoa(t), nil
	case int64:
		return strconv.FormatInt(t, 10), nil
	default:
		return "", fmt.Errorf("unexpected type %T", v)
	}
}

// looseDecimal accepts numbers and numeric strings with "." or "," separators.
func looseDecimal(v any) (decimal.Decimal, error) {
	switch t := v.(type) {
	case nil:
		return decimal.Zero, fmt.Errorf("value is missing")
	case json.Number:
		return decimal.NewFromString(t.String())
	case float64:
		return decimal.NewFromFloat(t), nil
	case int:
		return decimal.NewFromInt(int64(t)), nil
	case int64:
		return decimal.NewFromInt(t), nil
	case string:
		s := strings.ReplaceAll(strings.ReplaceAll(strings.TrimSpace(t), " ", ""), ",", ".")
		return decimal.NewFromString(s)
	default:
		return decimal.Zero, fmt.Errorf("unexpected type %T", v)
	}
}

func (s *normalizer) canonicalize(ctx context.Context, in intake) (*domain.CanonicalDraft, error) {
	purpose := s.clean(in.purpose)
	if purpose == "" {
		return nil, fmt.Errorf("%w: purpose is required", apperrors.ErrInvalidArgument)
	}
	if len(in.items) == 0 {
		return nil, fmt.Errorf("%w: at least one item is required", apperrors.ErrInvalidState)
	}

	explicit := s.currencies.Normalize(in.currency)
	if explicit != "" && !s.currencies.IsAllowed(explicit) {
		return nil, fmt.Errorf("%w: unsupported currency %s", apperrors.ErrInvalidArgument, explicit)
	}
	// Items without a currency inherit the request currency: the explicit one,
	// else the first item's, else the base currency.
	fallback := explicit
	for _, it := range in.items {
		if fallback != "" {
			break
		}
		fallback = s.currencies.Normalize(it.Currency)
	}
	if fallback == "" {
		fallback = s.currencies.Normalize(s.currencies.Base)
	}

	items := make([]domain.LineItem, 0, len(in.items))
	for i, it := range in.items {
		name := s.clean(it.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: item %d has no name", apperrors.ErrInvalidArgument, i+1)
		}
		if !it.Quantity.IsPositive() {
			return nil, fmt.Errorf("%w: item %q quantity must be positive", apperrors.ErrInvalidState, name)
		}
		if !it.Amount.IsPositive() {
			return nil, fmt.Errorf("%w: item %q amount must be positive", apperrors.ErrInvalidState, name)
		}
		cur := s.currencies.Normalize(it.Currency)
		if cur == "" {
			cur = fallback
		}
		if !s.currencies.IsAllowed(cur) {
			return nil, fmt.Errorf("%w: unsupported currency %s", apperrors.ErrInvalidArgument, cur)
		}
		items = append(items, domain.LineItem{Name: name, Quantity: it.Quantity, Amount: it.Amount, Currency: cur})
	}

	currency := items[0].Currency
	for _, it := range items[1:] {
		if it.Currency != currency {
			return nil, fmt.Errorf("%w: items mix currencies %s and %s", apperrors.ErrInvalidState, currency, it.Currency)
		}
	}
	if explicit != "" && explicit != currency {
		return nil, fmt.Errorf("%w: request currency %s differs from item currency %s", apperrors.ErrInvalidState, explicit, currency)
	}

	total := domain.SumItemAmounts(items)
	if in.total != nil {
		if !in.total.IsPositive() {
			return nil, fmt.Errorf("%w: total amount must be positive", apperrors.ErrInvalidState)
		}
		total = *in.total
	}

	date := s.now().UTC()
	if in.date != nil {
		date = in.date.UTC()
	}

	member, err := s.resolveSubmitter(ctx, in)
	if err != nil {
		return nil, err
	}
	if !member.IsActive() {
		return nil, fmt.Errorf("%w: member %s is blocked", apperrors.ErrInvalidState, member.MemberID)
	}

	if strings.TrimSpace(in.projectID) == "" {
		return nil, fmt.Errorf("%w: project is required", apperrors.ErrInvalidArgument)
	}
	project, err := s.projectRepo.FindProjectByID(ctx, in.projectID)
	if err != nil {
		return nil, wrapLookup(err, "project", in.projectID)
	}

	return &domain.CanonicalDraft{
		Source:         in.source,
		ProjectID:      project.ProjectID,
		ProjectName:    project.Name,
		ProjectCode:    project.Code,
		SubmitterID:    member.MemberID,
		SubmitterName:  member.FullName(),
		SubmitterTitle: member.Position,
		Purpose:        purpose,
		Items:          items,
		TotalAmount:    total,
		Currency:       currency,
		Date:           date,
	}, nil
}

func (s *normalizer) resolveSubmitter(ctx context.Context, in intake) (*domain.Member, error) {
	if in.source == domain.ChannelAPI {
		switch p := in.submitter.(type) {
		case domain.MemberPrincipal:
			m, err := s.memberRepo.FindMemberByID(ctx, p.MemberID)
			if err != nil {
				return nil, wrapLookup(err, "member", p.MemberID)
			}
			return m, nil
		case domain.AdminPrincipal:
			return nil, fmt.Errorf("%w: the administrator cannot submit requests", apperrors.ErrInvalidArgument)
		default:
			return nil, fmt.Errorf("%w: submitter is required", apperrors.ErrInvalidArgument)
		}
	}

	if in.channelID == "" {
		return nil, fmt.Errorf("%w: channel id is required", apperrors.ErrInvalidArgument)
	}
	m, err := s.memberRepo.FindMemberByChannelID(ctx, in.channelID)
	if err != nil {
		return nil, wrapLookup(err, "member linked to channel", in.channelID)
	}
	return m, nil
}

// clean strips markup; the strict policy escapes entities, which are restored
// because the text is stored and rendered as plain text.
func (s *normalizer) clean(text string) string {
	return strings.TrimSpace(html.UnescapeString(s.sanitizer.Sanitize(text)))
}
