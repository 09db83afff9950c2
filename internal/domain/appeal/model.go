package appeal

import "time"

// Appeal represents one insurance-denial appeal submission.
type Appeal struct {
	ID         string    `json:"id"`
	UserID     int64     `json:"user_id"`
	Payer      string    `json:"payer"`
	DenialCode string    `json:"denial_code"`
	LetterText string    `json:"letter_text"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Lifecycle states. An appeal starts as a draft and moves to generated
// exactly once; there is no backward transition.
const (
	StatusDraft     = "draft"
	StatusGenerated = "generated"
)

// ValidStatus reports whether s is a known appeal status.
func ValidStatus(s string) bool {
	return s == StatusDraft || s == StatusGenerated
}

// Filter narrows appeal listings.
type Filter struct {
	Status string
}

// QuotaStatus reports a user's appeal quota consumption.
type QuotaStatus struct {
	Limit     int64 `json:"limit"`
	Used      int64 `json:"used"`
	Remaining int64 `json:"remaining"`
	Unlimited bool  `json:"unlimited"`
}
