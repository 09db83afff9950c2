package worker

import (
	"context"
	"testing"
	"time"

	"github.com/appealdesk/appealdesk/internal/domain/profile"
	"github.com/appealdesk/appealdesk/internal/pkg/logger"
	"github.com/appealdesk/appealdesk/internal/testutil"
)

func TestTrialSweeper_Sweep(t *testing.T) {
	repo := testutil.NewMockProfileRepository()
	log := logger.New(logger.Config{Level: "error", Format: "json"})

	quota := int64(5)
	lapsed := &profile.Profile{
		Email:        "lapsed@example.com",
		Plan:         profile.PlanStarter,
		AppealQuota:  &quota,
		TrialEndDate: time.Now().AddDate(0, 0, -1),
	}
	active := &profile.Profile{
		Email:        "active@example.com",
		Plan:         profile.PlanStarter,
		AppealQuota:  &quota,
		TrialEndDate: time.Now().AddDate(0, 0, 3),
	}
	if err := repo.Create(context.Background(), lapsed); err != nil {
		t.Fatalf("seed lapsed: %v", err)
	}
	if err := repo.Create(context.Background(), active); err != nil {
		t.Fatalf("seed active: %v", err)
	}

	sweeper, err := NewTrialSweeper(repo, "0 * * * *", log)
	if err != nil {
		t.Fatalf("NewTrialSweeper() error: %v", err)
	}

	sweeper.Sweep(context.Background())

	got, _ := repo.GetByID(context.Background(), lapsed.ID)
	if got.AppealQuota == nil || *got.AppealQuota != 0 {
		t.Errorf("Sweep() lapsed quota = %v, want 0", got.AppealQuota)
	}

	got, _ = repo.GetByID(context.Background(), active.ID)
	if got.AppealQuota == nil || *got.AppealQuota != 5 {
		t.Errorf("Sweep() active quota = %v, want untouched 5", got.AppealQuota)
	}
}

func TestNewTrialSweeper_InvalidSchedule(t *testing.T) {
	repo := testutil.NewMockProfileRepository()
	log := logger.New(logger.Config{Level: "error", Format: "json"})

	if _, err := NewTrialSweeper(repo, "not a schedule", log); err == nil {
		t.Error("NewTrialSweeper() accepted an invalid schedule")
	}
}
