package dto

import (
	"time"

	"github.com/appealdesk/appealdesk/internal/domain/appeal"
)

// CreateAppealRequest represents a new appeal submission
type CreateAppealRequest struct {
	Payer      string `json:"payer" validate:"required"`
	DenialCode string `json:"denial_code" validate:"required"`
	LetterText string `json:"letter_text"`
}

// GenerateLetterRequest triggers letter generation for an appeal
type GenerateLetterRequest struct {
	AppealID string `json:"appeal_id" validate:"required"`
}

// LegacyGenerateLetterRequest is the flat body the original frontend sends
// to /api/generate-letter. Payer and denial code ride along but the stored
// appeal row stays authoritative.
type LegacyGenerateLetterRequest struct {
	AppealID   string `json:"appealId"`
	Payer      string `json:"payer"`
	DenialCode string `json:"denialCode"`
	// UserID rides along on the legacy wire but the authenticated session
	// is authoritative.
	UserID string `json:"userId"`
}

// AppealDTO is the API representation of an appeal
type AppealDTO struct {
	ID         string    `json:"id"`
	UserID     int64     `json:"user_id"`
	Payer      string    `json:"payer"`
	DenialCode string    `json:"denial_code"`
	LetterText string    `json:"letter_text"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewAppealDTO converts a domain appeal to its API shape
func NewAppealDTO(a *appeal.Appeal) *AppealDTO {
	return &AppealDTO{
		ID:         a.ID,
		UserID:     a.UserID,
		Payer:      a.Payer,
		DenialCode: a.DenialCode,
		LetterText: a.LetterText,
		Status:     a.Status,
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  a.UpdatedAt,
	}
}

// NewAppealDTOs converts a slice of domain appeals
func NewAppealDTOs(appeals []*appeal.Appeal) []*AppealDTO {
	dtos := make([]*AppealDTO, 0, len(appeals))
	for _, a := range appeals {
		dtos = append(dtos, NewAppealDTO(a))
	}
	return dtos
}
