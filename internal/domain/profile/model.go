package profile

import "time"

// Profile represents a clinic user account and its subscription state.
// There is exactly one profile per authenticated user; it is created once
// at registration and its ID never changes.
type Profile struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name,omitempty"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	Plan         string    `json:"plan"`
	AppealQuota  *int64    `json:"appeal_quota"` // nil = unlimited
	TrialEndDate time.Time `json:"trial_end_date"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Subscription plans
const (
	PlanStarter    = "starter"
	PlanPro        = "pro"
	PlanEnterprise = "enterprise"
)

// Roles
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// ValidPlan reports whether p is a known subscription plan.
func ValidPlan(p string) bool {
	return p == PlanStarter || p == PlanPro || p == PlanEnterprise
}

// TrialDaysRemaining returns the whole days left on the trial, floored at zero.
func (p *Profile) TrialDaysRemaining(now time.Time) int {
	if !p.TrialEndDate.After(now) {
		return 0
	}
	return int(p.TrialEndDate.Sub(now).Hours()/24) + 1
}

// Filter narrows admin profile listings.
type Filter struct {
	Search string // matches email or name
	Plan   string
}
