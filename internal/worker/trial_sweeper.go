package worker

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/appealdesk/appealdesk/internal/domain/profile"
	"github.com/appealdesk/appealdesk/internal/pkg/logger"
	"github.com/appealdesk/appealdesk/internal/pkg/metrics"
)

// TrialSweeper periodically floors the quota of starter profiles whose
// trial has lapsed, so an expired trial stops minting letters even if the
// account never comes back online.
type TrialSweeper struct {
	profiles  profile.Repository
	schedule  string
	logger    *logger.Logger
	scheduler *cron.Cron
}

// NewTrialSweeper creates a trial sweeper with a standard cron schedule
func NewTrialSweeper(profiles profile.Repository, schedule string, log *logger.Logger) (*TrialSweeper, error) {
	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, err
	}
	return &TrialSweeper{
		profiles: profiles,
		schedule: schedule,
		logger:   log,
	}, nil
}

// Start runs one sweep immediately and then on the schedule
func (s *TrialSweeper) Start() error {
	s.scheduler = cron.New()

	if _, err := s.scheduler.AddFunc(s.schedule, func() {
		s.Sweep(context.Background())
	}); err != nil {
		return err
	}

	s.scheduler.Start()
	s.logger.Infof("Trial sweeper started with schedule %q", s.schedule)

	go s.Sweep(context.Background())
	return nil
}

// Stop halts the scheduler, waiting for a running sweep to finish
func (s *TrialSweeper) Stop() {
	if s.scheduler == nil {
		return
	}
	ctx := s.scheduler.Stop()
	<-ctx.Done()
	s.logger.Info("Trial sweeper stopped")
}

// Sweep expires lapsed trials once
func (s *TrialSweeper) Sweep(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	n, err := s.profiles.ExpireTrials(ctx, time.Now())
	if err != nil {
		s.logger.ErrorWithErr(err, "Trial sweep failed")
		return
	}

	if n > 0 {
		metrics.RecordTrialsExpired(n)
		s.logger.WithFields(map[string]interface{}{
			"expired": n,
		}).Info("Expired lapsed trials")
	}
}
