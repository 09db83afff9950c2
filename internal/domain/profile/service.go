package profile

import "context"

// Service defines the interface for profile business logic
type Service interface {
	// Register creates a new profile with a hashed password, the starter
	// plan, the default appeal quota and a fresh trial window.
	Register(ctx context.Context, email, password, name string) (*Profile, error)

	// Authenticate verifies credentials and returns the profile on success
	Authenticate(ctx context.Context, email, password string) (*Profile, error)

	// GetByID retrieves a profile by ID
	GetByID(ctx context.Context, id int64) (*Profile, error)

	// List retrieves profiles for the admin panel
	List(ctx context.Context, filter Filter, limit, offset int) ([]*Profile, int64, error)

	// UpdateSubscription applies an admin plan/quota change
	UpdateSubscription(ctx context.Context, id int64, patch QuotaPatch) (*Profile, error)
}
