package appeal

import "context"

// Repository defines the interface for appeal data access.
//
// The quota-sensitive operations (Create with a counted status, and
// FinalizeLetter) must be atomic with respect to concurrent requests for
// the same user: the quota count and the row write happen in one store
// transaction so that two racing requests at the quota boundary cannot
// both succeed.
type Repository interface {
	// Create inserts a new draft appeal. When countedStatus is non-empty
	// the insert is quota-gated: the user's appeals with that status are
	// counted against profiles.appeal_quota inside the same transaction
	// and the insert fails with a QUOTA_EXCEEDED error at the boundary.
	Create(ctx context.Context, a *Appeal, countedStatus string) error

	// GetByID retrieves an appeal by ID regardless of owner. Callers are
	// responsible for the ownership check.
	GetByID(ctx context.Context, id string) (*Appeal, error)

	// ListByUser retrieves a user's appeals, newest first.
	ListByUser(ctx context.Context, userID int64, filter Filter, limit, offset int) ([]*Appeal, int64, error)

	// CountByStatus counts a user's appeals with the given status.
	CountByStatus(ctx context.Context, userID int64, status string) (int64, error)

	// FinalizeLetter atomically stores the letter and flips the appeal to
	// generated. Inside one transaction it verifies ownership, re-checks
	// the quota against countedStatus, and applies the update guarded by
	// both the user_id and the draft-status predicates. An appeal that is
	// already generated is returned as-is with no mutation.
	FinalizeLetter(ctx context.Context, appealID string, userID int64, letter, countedStatus string) (*Appeal, error)
}
