package profile

import (
	"context"
	"time"
)

// QuotaPatch describes an admin update to a profile's subscription fields.
// Nil fields are left untouched; SetUnlimited clears the quota entirely.
type QuotaPatch struct {
	Plan         *string
	AppealQuota  *int64
	SetUnlimited bool
}

// Repository defines the interface for profile data access
type Repository interface {
	// Create creates a new profile
	Create(ctx context.Context, p *Profile) error

	// GetByID retrieves a profile by ID
	GetByID(ctx context.Context, id int64) (*Profile, error)

	// GetByEmail retrieves a profile by email
	GetByEmail(ctx context.Context, email string) (*Profile, error)

	// List retrieves profiles matching the filter, with pagination
	List(ctx context.Context, filter Filter, limit, offset int) ([]*Profile, int64, error)

	// UpdateSubscription applies an admin plan/quota patch
	UpdateSubscription(ctx context.Context, id int64, patch QuotaPatch) (*Profile, error)

	// ExpireTrials floors the quota of starter profiles whose trial lapsed
	// before now and returns how many rows were affected.
	ExpireTrials(ctx context.Context, now time.Time) (int64, error)
}
