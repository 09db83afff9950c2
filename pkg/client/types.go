package client

import "time"

// Profile represents a clinic account
type Profile struct {
	ID            int64     `json:"id"`
	Email         string    `json:"email"`
	Name          string    `json:"name,omitempty"`
	Role          string    `json:"role"`
	Plan          string    `json:"plan"`
	AppealQuota   *int64    `json:"appeal_quota"`
	TrialEndDate  time.Time `json:"trial_end_date"`
	TrialDaysLeft int       `json:"trial_days_left"`
	CreatedAt     time.Time `json:"created_at"`
}

// Appeal represents an insurance-denial appeal
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

// QuotaStatus reports letter quota consumption
type QuotaStatus struct {
	Limit     int64 `json:"limit"`
	Used      int64 `json:"used"`
	Remaining int64 `json:"remaining"`
	Unlimited bool  `json:"unlimited"`
}

// ListOptions contains common pagination options
type ListOptions struct {
	Page     int
	PageSize int
}

// AppealPage wraps a paginated appeal listing
type AppealPage struct {
	Data       []Appeal `json:"data"`
	Page       int      `json:"page"`
	PageSize   int      `json:"page_size"`
	TotalItems int64    `json:"total_items"`
	TotalPages int      `json:"total_pages"`
}

// ProfilePage wraps a paginated profile listing
type ProfilePage struct {
	Data       []Profile `json:"data"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalItems int64     `json:"total_items"`
	TotalPages int       `json:"total_pages"`
}
