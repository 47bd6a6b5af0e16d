package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/expense_tracker/internal/apperrors"
	"github.com/shopspring/decimal"
)

// WizardStep is the input the conversation wizard waits for next.
type WizardStep string

const (
	StepAwaitingLogin        WizardStep = "awaiting-login"
	StepAwaitingPassword     WizardStep = "awaiting-password"
	StepAwaitingProject      WizardStep = "awaiting-project-selection"
	StepAwaitingDate         WizardStep = "awaiting-date"
	StepAwaitingPurpose      WizardStep = "awaiting-purpose"
	StepAwaitingItemName     WizardStep = "awaiting-item-name"
	StepAwaitingItemQuantity WizardStep = "awaiting-item-quantity"
	StepAwaitingItemAmount   WizardStep = "awaiting-item-amount"
	StepAwaitingItemCurrency WizardStep = "awaiting-item-currency"
	StepAwaitingMoreOrDone   WizardStep = "awaiting-more-or-done"
)

const wizardDateLayout = "2006-01-02"

// ProjectOption is a project offered for selection in the wizard.
type ProjectOption struct {
	ProjectID string `json:"projectID"`
	Name      string `json:"name"`
	Code      string `json:"code"`
}

// Label is the text shown on the selection button.
func (p ProjectOption) Label() string {
	return fmt.Sprintf("%s (%s)", p.Name, p.Code)
}

// Conversation is the state of one wizard run, keyed by conversation id.
// It is a plain value: the caller loads it from and stores it into an arena.
type Conversation struct {
	ConversationID  string          `json:"conversationID"`
	Step            WizardStep      `json:"step"`
	Login           string          `json:"login,omitempty"`
	MemberID        string          `json:"memberID,omitempty"`
	Projects        []ProjectOption `json:"projects,omitempty"`
	ProjectID       string          `json:"projectID,omitempty"`
	Date            string          `json:"date,omitempty"`
	Purpose         string          `json:"purpose,omitempty"`
	Items           []LineItem      `json:"items,omitempty"`
	PendingName     string          `json:"pendingName,omitempty"`
	PendingQuantity decimal.Decimal `json:"pendingQuantity"`
	PendingAmount   decimal.Decimal `json:"pendingAmount"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// NewConversation starts a run waiting for the login.
func NewConversation(conversationID string) *Conversation {
	return &Conversation{ConversationID: conversationID, Step: StepAwaitingLogin}
}

// ChosenCurrency is the currency fixed by the first item, or "" before any item.
func (c *Conversation) ChosenCurrency() string {
	if len(c.Items) == 0 {
		return ""
	}
	return c.Items[0].Currency
}

// CommitItem appends the pending item with the given currency. Once the draft
// has an item every further item must use the same currency; on mismatch the
// item list is left untouched.
func (c *Conversation) CommitItem(currency string) error {
	if chosen := c.ChosenCurrency(); chosen != "" && chosen != currency {
		return fmt.Errorf("%w: request currency is %s, got %s", apperrors.ErrInvalidState, chosen, currency)
	}
	c.Items = append(c.Items, LineItem{
		Name:     c.PendingName,
		Quantity: c.PendingQuantity,
		Amount:   c.PendingAmount,
		Currency: currency,
	})
	c.PendingName = ""
	c.PendingQuantity = decimal.Zero
	c.PendingAmount = decimal.Zero
	return nil
}

// SelectProject matches the user's answer against the offered projects by
// label, code or 1-based position.
func (c *Conversation) SelectProject(answer string) (ProjectOption, bool) {
	answer = strings.TrimSpace(answer)
	for i, p := range c.Projects {
		if strings.EqualFold(answer, p.Label()) || strings.EqualFold(answer, p.Code) || answer == fmt.Sprint(i+1) {
			return p, true
		}
	}
	return ProjectOption{}, false
}

// WizardReply is what the wizard answers to one incoming message.
type WizardReply struct {
	Text    string
	Options []string // Suggested answers, rendered as buttons or a hint line
}

// Draft hands the accumulated fields over for normalization.
func (c *Conversation) Draft() WizardDraft {
	items := make([]LineItem, len(c.Items))
	copy(items, c.Items)
	return WizardDraft{
		ChannelID: c.ConversationID,
		ProjectID: c.ProjectID,
		Purpose:   c.Purpose,
		Items:     items,
		Date:      c.Date,
	}
}

// ParseDecimalInput reads a positive number typed by a person. Both "." and ","
// are accepted as the decimal separator; spaces are ignored.
func ParseDecimalInput(text string) (decimal.Decimal, error) {
	s := strings.ReplaceAll(strings.TrimSpace(text), " ", "")
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q is not a number", apperrors.ErrInvalidArgument, text)
	}
	if !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: %q must be greater than zero", apperrors.ErrInvalidArgument, text)
	}
	return d, nil
}

// nowSentinels are the answers meaning "use the current moment".
var nowSentinels = map[string]bool{"now": true, "сейчас": true}

// ParseDateInput accepts a literal YYYY-MM-DD or a "now" sentinel and returns
// the value recorded in the draft.
func ParseDateInput(text string, now time.Time) (string, error) {
	s := strings.ToLower(strings.TrimSpace(text))
	if nowSentinels[s] {
		return now.UTC().Format(time.RFC3339), nil
	}
	d, err := time.Parse(wizardDateLayout, s)
	if err != nil {
		return "", fmt.Errorf("%w: %q is not a YYYY-MM-DD date", apperrors.ErrInvalidArgument, text)
	}
	return d.Format(wizardDateLayout), nil
}

// ParseDraftDate reads a date recorded by ParseDateInput or any RFC 3339 timestamp.
func ParseDraftDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(wizardDateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date %q", apperrors.ErrInvalidArgument, s)
	}
	return t, nil
}
