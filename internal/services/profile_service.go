package services

import (
	"context"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/appealdesk/appealdesk/internal/config"
	"github.com/appealdesk/appealdesk/internal/domain/profile"
	"github.com/appealdesk/appealdesk/internal/pkg/errors"
	"github.com/appealdesk/appealdesk/internal/pkg/logger"
)

// ProfileService implements profile.Service
type ProfileService struct {
	repo   profile.Repository
	auth   config.AuthConfig
	quota  config.QuotaConfig
	logger *logger.Logger
}

// NewProfileService creates a new profile service
func NewProfileService(repo profile.Repository, auth config.AuthConfig, quota config.QuotaConfig, log *logger.Logger) profile.Service {
	return &ProfileService{
		repo:   repo,
		auth:   auth,
		quota:  quota,
		logger: log,
	}
}

// Register creates a new profile on the starter plan with the default quota
// and a fresh trial window.
func (s *ProfileService) Register(ctx context.Context, email, password, name string) (*profile.Profile, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, errors.BadRequest("Email and password are required")
	}
	if len(password) < 8 {
		return nil, errors.BadRequest("Password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.auth.BCryptCost)
	if err != nil {
		return nil, errors.Internal("Failed to hash password", err)
	}

	quota := s.quota.DefaultAppealQuota
	now := time.Now()
	p := &profile.Profile{
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: string(hash),
		Role:         profile.RoleUser,
		Plan:         profile.PlanStarter,
		AppealQuota:  &quota,
		TrialEndDate: now.AddDate(0, 0, s.quota.TrialDays),
	}

	if err := s.repo.Create(ctx, p); err != nil {
		if errors.IsCode(err, errors.ErrCodeConflict) {
			return nil, errors.Conflict("Email already registered")
		}
		s.logger.ErrorWithErr(err, "Failed to create profile")
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"user_id": p.ID,
		"email":   p.Email,
		"plan":    p.Plan,
	}).Info("Profile registered")

	return p, nil
}

// Authenticate verifies credentials and returns the profile on success
func (s *ProfileService) Authenticate(ctx context.Context, email, password string) (*profile.Profile, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	p, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.IsCode(err, errors.ErrCodeNotFound) {
			return nil, errors.Unauthorized("Invalid credentials")
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(password)); err != nil {
		return nil, errors.Unauthorized("Invalid credentials")
	}

	return p, nil
}

// GetByID retrieves a profile by ID
func (s *ProfileService) GetByID(ctx context.Context, id int64) (*profile.Profile, error) {
	return s.repo.GetByID(ctx, id)
}

// List retrieves profiles for the admin panel
func (s *ProfileService) List(ctx context.Context, filter profile.Filter, limit, offset int) ([]*profile.Profile, int64, error) {
	if filter.Plan != "" && !profile.ValidPlan(filter.Plan) {
		return nil, 0, errors.BadRequest("Invalid plan filter")
	}
	return s.repo.List(ctx, filter, limit, offset)
}

// UpdateSubscription applies an admin plan/quota change
func (s *ProfileService) UpdateSubscription(ctx context.Context, id int64, patch profile.QuotaPatch) (*profile.Profile, error) {
	if patch.Plan == nil && patch.AppealQuota == nil && !patch.SetUnlimited {
		return nil, errors.BadRequest("No subscription fields to update")
	}
	if patch.Plan != nil && !profile.ValidPlan(*patch.Plan) {
		return nil, errors.BadRequest("Invalid plan")
	}
	if patch.AppealQuota != nil && *patch.AppealQuota < 0 {
		return nil, errors.BadRequest("Quota must be non-negative")
	}

	p, err := s.repo.UpdateSubscription(ctx, id, patch)
	if err != nil {
		s.logger.ErrorWithErr(err, "Failed to update subscription")
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"user_id": id,
		"plan":    p.Plan,
	}).Info("Subscription updated")

	return p, nil
}
