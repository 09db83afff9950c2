package appeal

import "context"

// CreateInput carries the client-supplied fields for a new appeal.
type CreateInput struct {
	Payer      string
	DenialCode string
	LetterText string
}

// Service defines the interface for appeal business logic
type Service interface {
	// Create validates the input and inserts a draft appeal for the user,
	// quota-gated when the configured policy counts drafts.
	Create(ctx context.Context, userID int64, input CreateInput) (*Appeal, error)

	// GetByID retrieves one of the caller's appeals. Foreign and unknown
	// ids are both reported as not found so existence never leaks.
	GetByID(ctx context.Context, userID int64, id string) (*Appeal, error)

	// List retrieves the caller's appeals, newest first.
	List(ctx context.Context, userID int64, filter Filter, limit, offset int) ([]*Appeal, int64, error)

	// GenerateLetter runs the letter pipeline for one of the caller's
	// appeals: ownership check, quota check, provider call with fallback,
	// atomic persist. Re-invoking on a generated appeal returns the stored
	// letter without calling the provider or mutating the row.
	GenerateLetter(ctx context.Context, userID int64, appealID string) (*Appeal, error)

	// Quota reports the caller's quota consumption under the configured policy.
	Quota(ctx context.Context, userID int64) (*QuotaStatus, error)
}
