package services

import (
	"context"
	"strings"
	"time"

	"github.com/appealdesk/appealdesk/internal/config"
	"github.com/appealdesk/appealdesk/internal/domain/appeal"
	"github.com/appealdesk/appealdesk/internal/domain/profile"
	"github.com/appealdesk/appealdesk/internal/pkg/errors"
	"github.com/appealdesk/appealdesk/internal/pkg/logger"
	"github.com/appealdesk/appealdesk/internal/pkg/metrics"
	"github.com/appealdesk/appealdesk/internal/providers"
)

// AppealService implements appeal.Service
type AppealService struct {
	repo      appeal.Repository
	profiles  profile.Repository
	generator providers.LetterGenerator
	quota     config.QuotaConfig
	logger    *logger.Logger
	locks     *userLocks
}

// NewAppealService creates a new appeal service. A nil generator means no
// provider is configured and every letter comes from the fallback template.
func NewAppealService(repo appeal.Repository, profiles profile.Repository, generator providers.LetterGenerator, quota config.QuotaConfig, log *logger.Logger) appeal.Service {
	return &AppealService{
		repo:      repo,
		profiles:  profiles,
		generator: generator,
		quota:     quota,
		logger:    log,
		locks:     newUserLocks(),
	}
}

// Create validates the input and inserts a draft appeal for the user
func (s *AppealService) Create(ctx context.Context, userID int64, input appeal.CreateInput) (*appeal.Appeal, error) {
	payer := strings.TrimSpace(input.Payer)
	denialCode := strings.TrimSpace(input.DenialCode)
	if payer == "" || denialCode == "" {
		return nil, errors.BadRequest("Missing required fields")
	}

	a := &appeal.Appeal{
		UserID:     userID,
		Payer:      payer,
		DenialCode: denialCode,
		LetterText: input.LetterText,
	}

	// Drafts only count against quota under the draft-counting policy.
	countedStatus := ""
	if s.quota.CountedStatus == config.QuotaCountsDraft {
		countedStatus = config.QuotaCountsDraft
	}

	if err := s.repo.Create(ctx, a, countedStatus); err != nil {
		if errors.IsCode(err, errors.ErrCodeQuotaExceeded) {
			metrics.RecordQuotaDenied()
			return nil, err
		}
		s.logger.ErrorWithErr(err, "Failed to create appeal")
		return nil, err
	}

	metrics.RecordAppealCreated()
	s.logger.WithFields(map[string]interface{}{
		"appeal_id":   a.ID,
		"user_id":     userID,
		"payer":       a.Payer,
		"denial_code": a.DenialCode,
	}).Info("Appeal created")

	return a, nil
}

// GetByID retrieves one of the caller's appeals
func (s *AppealService) GetByID(ctx context.Context, userID int64, id string) (*appeal.Appeal, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	// A foreign appeal reads the same as a missing one.
	if a.UserID != userID {
		return nil, errors.NotFound("Appeal")
	}
	return a, nil
}

// List retrieves the caller's appeals, newest first
func (s *AppealService) List(ctx context.Context, userID int64, filter appeal.Filter, limit, offset int) ([]*appeal.Appeal, int64, error) {
	if filter.Status != "" && !appeal.ValidStatus(filter.Status) {
		return nil, 0, errors.BadRequest("Invalid status filter")
	}
	return s.repo.ListByUser(ctx, userID, filter, limit, offset)
}

// GenerateLetter runs the letter pipeline for one of the caller's appeals.
func (s *AppealService) GenerateLetter(ctx context.Context, userID int64, appealID string) (*appeal.Appeal, error) {
	m := s.locks.lock(userID)
	defer m.Unlock()

	a, err := s.repo.GetByID(ctx, appealID)
	if err != nil {
		if errors.IsCode(err, errors.ErrCodeNotFound) {
			return nil, errors.Forbidden("Unauthorized access to appeal")
		}
		return nil, err
	}
	if a.UserID != userID {
		return nil, errors.Forbidden("Unauthorized access to appeal")
	}

	// Re-generation returns the stored letter without touching the provider.
	if a.Status == appeal.StatusGenerated {
		s.logger.WithFields(map[string]interface{}{
			"appeal_id": appealID,
			"user_id":   userID,
		}).Debug("Letter already generated, returning stored letter")
		return a, nil
	}

	// Fail fast before the provider call. The authoritative check runs again
	// inside FinalizeLetter's transaction.
	if err := s.precheckQuota(ctx, userID); err != nil {
		if errors.IsCode(err, errors.ErrCodeQuotaExceeded) {
			metrics.RecordQuotaDenied()
		}
		return nil, err
	}

	letter, source := s.generate(ctx, a.Payer, a.DenialCode)

	updated, err := s.repo.FinalizeLetter(ctx, appealID, userID, letter, s.quota.CountedStatus)
	if err != nil {
		if errors.IsCode(err, errors.ErrCodeQuotaExceeded) {
			metrics.RecordQuotaDenied()
			return nil, err
		}
		// Lost a race with a concurrent generation; the stored letter wins.
		if errors.IsCode(err, errors.ErrCodeConflict) {
			return s.repo.GetByID(ctx, appealID)
		}
		s.logger.ErrorWithErr(err, "Failed to save letter")
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"appeal_id": appealID,
		"user_id":   userID,
		"source":    source,
	}).Info("Letter generated")

	return updated, nil
}

// generate calls the configured provider and falls back to the template on
// any failure. It never returns an error; a letter is always produced.
func (s *AppealService) generate(ctx context.Context, payer, denialCode string) (letter, source string) {
	start := time.Now()

	if s.generator != nil {
		text, err := s.generator.GenerateLetter(ctx, payer, denialCode)
		if err == nil && strings.TrimSpace(text) != "" {
			metrics.RecordLetterGenerated("provider", time.Since(start))
			return text, "provider"
		}
		if err != nil {
			s.logger.WithError(err).Warn("Provider generation failed, using fallback letter")
		}
	}

	metrics.RecordLetterGenerated("fallback", time.Since(start))
	return providers.FallbackLetter(payer, denialCode), "fallback"
}

func (s *AppealService) precheckQuota(ctx context.Context, userID int64) error {
	status, err := s.Quota(ctx, userID)
	if err != nil {
		return err
	}
	if !status.Unlimited && status.Remaining <= 0 {
		return errors.QuotaExceeded("Appeal quota exceeded")
	}
	return nil
}

// Quota reports the caller's quota consumption under the configured policy.
func (s *AppealService) Quota(ctx context.Context, userID int64) (*appeal.QuotaStatus, error) {
	p, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	used, err := s.repo.CountByStatus(ctx, userID, s.quota.CountedStatus)
	if err != nil {
		return nil, err
	}

	if p.AppealQuota == nil {
		return &appeal.QuotaStatus{Used: used, Unlimited: true}, nil
	}

	remaining := *p.AppealQuota - used
	if remaining < 0 {
		remaining = 0
	}

	return &appeal.QuotaStatus{
		Limit:     *p.AppealQuota,
		Used:      used,
		Remaining: remaining,
	}, nil
}
