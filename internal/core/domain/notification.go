package domain

// Button is an interactive element attached to an outgoing chat message.
// Only link buttons are used.
type Button struct {
	Label string
	URL   string
}

var statusLabels = map[string]map[ExpenseStatus]string{
	"ru": {
		StatusRequest:   "Запрос",
		StatusReview:    "На рассмотрении",
		StatusConfirmed: "Подтверждено",
		StatusDeclined:  "Отклонено",
		StatusRevision:  "Возврат на доработку",
		StatusArchived:  "Архивировано",
	},
	"en": {
		StatusRequest:   "Request",
		StatusReview:    "Under review",
		StatusConfirmed: "Confirmed",
		StatusDeclined:  "Declined",
		StatusRevision:  "Returned for revision",
		StatusArchived:  "Archived",
	},
}

// StatusLabel returns the human label of status in locale, falling back to
// Russian and then to the raw value.
func StatusLabel(status ExpenseStatus, locale string) string {
	if labels, ok := statusLabels[locale]; ok {
		if l, ok := labels[status]; ok {
			return l
		}
	}
	if l, ok := statusLabels["ru"][status]; ok {
		return l
	}
	return string(status)
}

// StatusEmoji is the marker prefixed to status notices.
func StatusEmoji(status ExpenseStatus) string {
	switch status {
	case StatusRequest, StatusReview:
		return "⏳"
	case StatusConfirmed:
		return "✅"
	case StatusDeclined:
		return "❌"
	case StatusRevision:
		return "🔄"
	case StatusArchived:
		return "📦"
	default:
		return "📌"
	}
}
