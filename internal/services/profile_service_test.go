package services

import (
	"context"
	"testing"
	"time"

	"github.com/appealdesk/appealdesk/internal/config"
	"github.com/appealdesk/appealdesk/internal/domain/profile"
	"github.com/appealdesk/appealdesk/internal/pkg/errors"
	"github.com/appealdesk/appealdesk/internal/pkg/logger"
	"github.com/appealdesk/appealdesk/internal/testutil"
)

func newTestProfileService(t *testing.T) (profile.Service, *testutil.MockProfileRepository) {
	t.Helper()
	repo := testutil.NewMockProfileRepository()
	log := logger.New(logger.Config{Level: "error", Format: "json"})
	auth := config.AuthConfig{BCryptCost: 4}
	quota := config.QuotaConfig{DefaultAppealQuota: 5, TrialDays: 7}
	return NewProfileService(repo, auth, quota, log), repo
}

func TestProfileService_Register(t *testing.T) {
	service, _ := newTestProfileService(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  bool
		wantCode string
	}{
		{
			name:     "valid registration",
			email:    "clinic@example.com",
			password: "s3cret-pass",
		},
		{
			name:     "duplicate email",
			email:    "clinic@example.com",
			password: "s3cret-pass",
			wantErr:  true,
			wantCode: errors.ErrCodeConflict,
		},
		{
			name:     "missing email",
			password: "s3cret-pass",
			wantErr:  true,
			wantCode: errors.ErrCodeBadRequest,
		},
		{
			name:     "short password",
			email:    "other@example.com",
			password: "short",
			wantErr:  true,
			wantCode: errors.ErrCodeBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := service.Register(ctx, tt.email, tt.password, "Test Clinic")

			if (err != nil) != tt.wantErr {
				t.Errorf("Register() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				if !errors.IsCode(err, tt.wantCode) {
					t.Errorf("Register() error code = %v, want %v", err, tt.wantCode)
				}
				return
			}
			if p.Plan != profile.PlanStarter {
				t.Errorf("Register() plan = %v, want %v", p.Plan, profile.PlanStarter)
			}
			if p.Role != profile.RoleUser {
				t.Errorf("Register() role = %v, want %v", p.Role, profile.RoleUser)
			}
			if p.AppealQuota == nil || *p.AppealQuota != 5 {
				t.Errorf("Register() quota = %v, want 5", p.AppealQuota)
			}
			if !p.TrialEndDate.After(time.Now().AddDate(0, 0, 6)) {
				t.Errorf("Register() trial end %v too soon", p.TrialEndDate)
			}
			if p.PasswordHash == "s3cret-pass" || p.PasswordHash == "" {
				t.Error("Register() password stored unhashed")
			}
		})
	}
}

func TestProfileService_Authenticate(t *testing.T) {
	service, _ := newTestProfileService(t)
	ctx := context.Background()

	if _, err := service.Register(ctx, "clinic@example.com", "s3cret-pass", ""); err != nil {
		t.Fatalf("Register() error: %v", err)
	}

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  bool
	}{
		{
			name:     "valid credentials",
			email:    "clinic@example.com",
			password: "s3cret-pass",
		},
		{
			name:     "email is case insensitive",
			email:    "Clinic@Example.COM",
			password: "s3cret-pass",
		},
		{
			name:     "wrong password",
			email:    "clinic@example.com",
			password: "wrong",
			wantErr:  true,
		},
		{
			name:     "unknown email",
			email:    "nobody@example.com",
			password: "s3cret-pass",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Authenticate(ctx, tt.email, tt.password)

			if (err != nil) != tt.wantErr {
				t.Errorf("Authenticate() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			// Unknown email and bad password must be indistinguishable.
			if tt.wantErr && !errors.IsCode(err, errors.ErrCodeUnauthorized) {
				t.Errorf("Authenticate() error code = %v, want unauthorized", err)
			}
		})
	}
}

func TestProfileService_UpdateSubscription(t *testing.T) {
	service, _ := newTestProfileService(t)
	ctx := context.Background()

	p, err := service.Register(ctx, "clinic@example.com", "s3cret-pass", "")
	if err != nil {
		t.Fatalf("Register() error: %v", err)
	}

	pro := profile.PlanPro
	q := int64(50)
	updated, err := service.UpdateSubscription(ctx, p.ID, profile.QuotaPatch{Plan: &pro, AppealQuota: &q})
	if err != nil {
		t.Fatalf("UpdateSubscription() error: %v", err)
	}
	if updated.Plan != profile.PlanPro {
		t.Errorf("UpdateSubscription() plan = %v, want pro", updated.Plan)
	}
	if updated.AppealQuota == nil || *updated.AppealQuota != 50 {
		t.Errorf("UpdateSubscription() quota = %v, want 50", updated.AppealQuota)
	}

	updated, err = service.UpdateSubscription(ctx, p.ID, profile.QuotaPatch{SetUnlimited: true})
	if err != nil {
		t.Fatalf("UpdateSubscription() unlimited error: %v", err)
	}
	if updated.AppealQuota != nil {
		t.Errorf("UpdateSubscription() quota = %v, want unlimited", updated.AppealQuota)
	}

	bogus := "platinum"
	if _, err := service.UpdateSubscription(ctx, p.ID, profile.QuotaPatch{Plan: &bogus}); !errors.IsCode(err, errors.ErrCodeBadRequest) {
		t.Errorf("UpdateSubscription() invalid plan error = %v, want bad request", err)
	}

	if _, err := service.UpdateSubscription(ctx, p.ID, profile.QuotaPatch{}); !errors.IsCode(err, errors.ErrCodeBadRequest) {
		t.Errorf("UpdateSubscription() empty patch error = %v, want bad request", err)
	}

	if _, err := service.UpdateSubscription(ctx, 999, profile.QuotaPatch{Plan: &pro}); !errors.IsCode(err, errors.ErrCodeNotFound) {
		t.Errorf("UpdateSubscription() unknown id error = %v, want not found", err)
	}
}
