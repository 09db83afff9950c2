package dto

import (
	"time"

	"github.com/appealdesk/appealdesk/internal/domain/profile"
)

// ProfileDTO is the API representation of a profile
type ProfileDTO struct {
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

// NewProfileDTO converts a domain profile to its API shape
func NewProfileDTO(p *profile.Profile) *ProfileDTO {
	return &ProfileDTO{
		ID:            p.ID,
		Email:         p.Email,
		Name:          p.Name,
		Role:          p.Role,
		Plan:          p.Plan,
		AppealQuota:   p.AppealQuota,
		TrialEndDate:  p.TrialEndDate,
		TrialDaysLeft: p.TrialDaysRemaining(time.Now()),
		CreatedAt:     p.CreatedAt,
	}
}

// UpdateSubscriptionRequest is the admin panel's plan/quota patch. Exactly
// one of AppealQuota or Unlimited applies when both are present; Unlimited
// wins.
type UpdateSubscriptionRequest struct {
	Plan        *string `json:"plan" validate:"omitempty,oneof=starter pro enterprise"`
	AppealQuota *int64  `json:"appeal_quota" validate:"omitempty,min=0"`
	Unlimited   bool    `json:"unlimited"`
}
