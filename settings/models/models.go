package models

import "time"

// ---- Practice Profile ----

type Practice struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Phone   *string `json:"phone,omitempty"`
	Address *string `json:"address,omitempty"`
	NPI     *string `json:"npi,omitempty"`
	LogoURL *string `json:"logoUrl,omitempty"`
}

type UpdatePracticeRequest struct {
	Name    *string `json:"name"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
	NPI     *string `json:"npi"`
}

type UploadLogoResponse struct {
	URL string `json:"url"`
}

// ---- Account Settings ----

type AccountSettings struct {
	Language string `json:"language"`
	Timezone string `json:"timezone"`
	Theme    string `json:"theme"`
}

type UpdateAccountSettingsRequest struct {
	Language *string `json:"language"`
	Timezone *string `json:"timezone"`
	Theme    *string `json:"theme"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ---- Letter Preferences ----

type LetterSettings struct {
	Letterhead       bool   `json:"letterhead"`
	Tone             string `json:"tone"`
	IncludeCitations bool   `json:"includeCitations"`
	SignatureBlock   string `json:"signatureBlock"`
}

type UpdateLetterSettingsRequest struct {
	Letterhead       *bool   `json:"letterhead"`
	Tone             *string `json:"tone"`
	IncludeCitations *bool   `json:"includeCitations"`
}

type UpdateSignatureRequest struct {
	SignatureBlock string `json:"signatureBlock"`
}

// ---- Notifications ----

type NotificationSettings struct {
	EmailOnLetterReady bool    `json:"emailOnLetterReady"`
	EmailOnQuotaLow    bool    `json:"emailOnQuotaLow"`
	WebhookURL         *string `json:"webhookUrl,omitempty"`
	QuotaThreshold     float64 `json:"quotaThreshold"`
}

type UpdateNotificationSettingsRequest struct {
	EmailOnLetterReady *bool    `json:"emailOnLetterReady"`
	EmailOnQuotaLow    *bool    `json:"emailOnQuotaLow"`
	WebhookURL         *string  `json:"webhookUrl"`
	QuotaThreshold     *float64 `json:"quotaThreshold"`
}

type UpdateQuotaThresholdRequest struct {
	QuotaThreshold float64 `json:"quotaThreshold"`
}

// ---- Billing ----

type PlanSummary struct {
	Plan         string     `json:"plan"`
	AppealQuota  *int64     `json:"appealQuota"`
	TrialEndDate *time.Time `json:"trialEndDate,omitempty"`
	RenewsAt     *time.Time `json:"renewsAt,omitempty"`
}

type UpgradeRequest struct {
	Plan string `json:"plan"`
}

// ---- Team & Access ----

type TeamMember struct {
	ID     string `json:"id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Status string `json:"status"`
}

type InviteRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

type UpdateMemberRequest struct {
	Role   *string `json:"role"`
	Status *string `json:"status"`
}
