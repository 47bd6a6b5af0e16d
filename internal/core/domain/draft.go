package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Channel names the ingestion path a draft arrived through.
type Channel string

const (
	ChannelAPI    Channel = "api"
	ChannelForm   Channel = "form"
	ChannelWizard Channel = "wizard"
)

// RawDraft is an unvalidated submission from one of the ingestion channels.
// The set of variants is closed: TypedDraft, FormDraft and WizardDraft.
type RawDraft interface {
	Channel() Channel
	isRawDraft()
}

// TypedDraft is the strongly typed payload of the programmatic API.
type TypedDraft struct {
	Submitter Principal
	ProjectID string
	Purpose   string
	Items     []LineItem
	Total     *decimal.Decimal
	Currency  *string
	Date      *time.Time
}

func (TypedDraft) Channel() Channel { return ChannelAPI }
func (TypedDraft) isRawDraft()      {}

// FormDraft is the loosely typed payload posted by the anonymous web form.
// Keys: chat_id, project_id, purpose, items[{name, quantity, amount, currency}],
// total_amount, currency, date.
type FormDraft struct {
	Fields map[string]any
}

func (FormDraft) Channel() Channel { return ChannelForm }
func (FormDraft) isRawDraft()      {}

// WizardDraft carries the fields accumulated by the chat wizard, passed on verbatim.
type WizardDraft struct {
	ChannelID string
	ProjectID string
	Purpose   string
	Items     []LineItem
	Date      string // YYYY-MM-DD or RFC 3339 as recorded by the wizard
}

func (WizardDraft) Channel() Channel { return ChannelWizard }
func (WizardDraft) isRawDraft()      {}

// CanonicalDraft is a validated request ready for id assignment and insertion.
type CanonicalDraft struct {
	Source         Channel
	ProjectID      string
	ProjectName    string
	ProjectCode    string
	SubmitterID    string
	SubmitterName  string
	SubmitterTitle *string
	Purpose        string
	Items          []LineItem
	TotalAmount    decimal.Decimal
	Currency       string
	Date           time.Time
}

// SumItemAmounts adds up the recorded item amounts. Quantities are not applied.
func SumItemAmounts(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Amount)
	}
	return total
}
