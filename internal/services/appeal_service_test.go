package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/appealdesk/appealdesk/internal/config"
	"github.com/appealdesk/appealdesk/internal/domain/appeal"
	"github.com/appealdesk/appealdesk/internal/domain/profile"
	"github.com/appealdesk/appealdesk/internal/pkg/errors"
	"github.com/appealdesk/appealdesk/internal/pkg/logger"
	"github.com/appealdesk/appealdesk/internal/providers"
	"github.com/appealdesk/appealdesk/internal/testutil"
)

func newTestAppealService(t *testing.T, quota config.QuotaConfig, gen providers.LetterGenerator) (appeal.Service, *testutil.MockAppealRepository, *testutil.MockProfileRepository) {
	t.Helper()
	profiles := testutil.NewMockProfileRepository()
	appeals := testutil.NewMockAppealRepository(profiles)
	log := logger.New(logger.Config{Level: "error", Format: "json"})
	return NewAppealService(appeals, profiles, gen, quota, log), appeals, profiles
}

func seedProfile(t *testing.T, profiles *testutil.MockProfileRepository, email string, quota int64) int64 {
	t.Helper()
	p := &profile.Profile{
		Email:       email,
		Role:        profile.RoleUser,
		Plan:        profile.PlanStarter,
		AppealQuota: &quota,
	}
	if err := profiles.Create(context.Background(), p); err != nil {
		t.Fatalf("seed profile: %v", err)
	}
	return p.ID
}

func seedUnlimitedProfile(t *testing.T, profiles *testutil.MockProfileRepository, email string) int64 {
	t.Helper()
	p := &profile.Profile{
		Email: email,
		Role:  profile.RoleUser,
		Plan:  profile.PlanEnterprise,
	}
	if err := profiles.Create(context.Background(), p); err != nil {
		t.Fatalf("seed profile: %v", err)
	}
	return p.ID
}

func TestAppealService_Create(t *testing.T) {
	quota := config.QuotaConfig{CountedStatus: config.QuotaCountsGenerated}
	service, _, profiles := newTestAppealService(t, quota, nil)
	userID := seedProfile(t, profiles, "clinic@example.com", 5)

	tests := []struct {
		name     string
		input    appeal.CreateInput
		wantErr  bool
		wantCode string
	}{
		{
			name:  "valid appeal",
			input: appeal.CreateInput{Payer: "Aetna", DenialCode: "CO-197"},
		},
		{
			name:     "missing payer",
			input:    appeal.CreateInput{DenialCode: "CO-197"},
			wantErr:  true,
			wantCode: errors.ErrCodeBadRequest,
		},
		{
			name:     "missing denial code",
			input:    appeal.CreateInput{Payer: "Aetna"},
			wantErr:  true,
			wantCode: errors.ErrCodeBadRequest,
		},
		{
			name:     "whitespace only payer",
			input:    appeal.CreateInput{Payer: "   ", DenialCode: "CO-197"},
			wantErr:  true,
			wantCode: errors.ErrCodeBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := service.Create(context.Background(), userID, tt.input)

			if (err != nil) != tt.wantErr {
				t.Errorf("Create() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				if !errors.IsCode(err, tt.wantCode) {
					t.Errorf("Create() error code = %v, want %v", err, tt.wantCode)
				}
				return
			}
			if a.ID == "" {
				t.Error("Create() appeal has empty id")
			}
			if a.Status != appeal.StatusDraft {
				t.Errorf("Create() status = %v, want %v", a.Status, appeal.StatusDraft)
			}
		})
	}
}

func TestAppealService_Create_DraftCountingPolicy(t *testing.T) {
	quota := config.QuotaConfig{CountedStatus: config.QuotaCountsDraft}
	service, _, profiles := newTestAppealService(t, quota, nil)
	userID := seedProfile(t, profiles, "clinic@example.com", 2)

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if _, err := service.Create(ctx, userID, appeal.CreateInput{Payer: "Cigna", DenialCode: "CO-50"}); err != nil {
			t.Fatalf("Create() #%d unexpected error: %v", i+1, err)
		}
	}

	_, err := service.Create(ctx, userID, appeal.CreateInput{Payer: "Cigna", DenialCode: "CO-50"})
	if !errors.IsCode(err, errors.ErrCodeQuotaExceeded) {
		t.Errorf("Create() over quota error = %v, want quota exceeded", err)
	}
}

func TestAppealService_GetByID_OwnershipCollapsesToNotFound(t *testing.T) {
	quota := config.QuotaConfig{CountedStatus: config.QuotaCountsGenerated}
	service, _, profiles := newTestAppealService(t, quota, nil)
	owner := seedProfile(t, profiles, "owner@example.com", 5)
	other := seedProfile(t, profiles, "other@example.com", 5)

	ctx := context.Background()
	a, err := service.Create(ctx, owner, appeal.CreateInput{Payer: "UHC", DenialCode: "CO-16"})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	if _, err := service.GetByID(ctx, owner, a.ID); err != nil {
		t.Errorf("GetByID() owner error = %v", err)
	}

	_, err = service.GetByID(ctx, other, a.ID)
	if !errors.IsCode(err, errors.ErrCodeNotFound) {
		t.Errorf("GetByID() foreign appeal error = %v, want not found", err)
	}

	_, err = service.GetByID(ctx, owner, "no-such-id")
	if !errors.IsCode(err, errors.ErrCodeNotFound) {
		t.Errorf("GetByID() unknown id error = %v, want not found", err)
	}
}

func TestAppealService_GenerateLetter(t *testing.T) {
	ctx := context.Background()
	quota := config.QuotaConfig{CountedStatus: config.QuotaCountsGenerated}

	t.Run("provider letter is persisted", func(t *testing.T) {
		gen := &testutil.MockLetterGenerator{Letter: "Dear reviewer, please reconsider."}
		service, _, profiles := newTestAppealService(t, quota, gen)
		userID := seedProfile(t, profiles, "clinic@example.com", 5)

		a, err := service.Create(ctx, userID, appeal.CreateInput{Payer: "Aetna", DenialCode: "CO-197"})
		if err != nil {
			t.Fatalf("Create() error: %v", err)
		}

		got, err := service.GenerateLetter(ctx, userID, a.ID)
		if err != nil {
			t.Fatalf("GenerateLetter() error: %v", err)
		}
		if got.LetterText != gen.Letter {
			t.Errorf("GenerateLetter() letter = %q, want %q", got.LetterText, gen.Letter)
		}
		if got.Status != appeal.StatusGenerated {
			t.Errorf("GenerateLetter() status = %v, want %v", got.Status, appeal.StatusGenerated)
		}
	})

	t.Run("provider failure falls back to template", func(t *testing.T) {
		gen := &testutil.MockLetterGenerator{Err: fmt.Errorf("provider down")}
		service, _, profiles := newTestAppealService(t, quota, gen)
		userID := seedProfile(t, profiles, "clinic@example.com", 5)

		a, _ := service.Create(ctx, userID, appeal.CreateInput{Payer: "Aetna", DenialCode: "CO-197"})
		got, err := service.GenerateLetter(ctx, userID, a.ID)
		if err != nil {
			t.Fatalf("GenerateLetter() error: %v", err)
		}
		want := providers.FallbackLetter("Aetna", "CO-197")
		if got.LetterText != want {
			t.Errorf("GenerateLetter() letter = %q, want fallback template", got.LetterText)
		}
		if got.Status != appeal.StatusGenerated {
			t.Errorf("GenerateLetter() status = %v, want %v", got.Status, appeal.StatusGenerated)
		}
	})

	t.Run("nil generator uses fallback", func(t *testing.T) {
		service, _, profiles := newTestAppealService(t, quota, nil)
		userID := seedProfile(t, profiles, "clinic@example.com", 5)

		a, _ := service.Create(ctx, userID, appeal.CreateInput{Payer: "Humana", DenialCode: "CO-97"})
		got, err := service.GenerateLetter(ctx, userID, a.ID)
		if err != nil {
			t.Fatalf("GenerateLetter() error: %v", err)
		}
		if got.LetterText != providers.FallbackLetter("Humana", "CO-97") {
			t.Errorf("GenerateLetter() letter = %q, want fallback template", got.LetterText)
		}
	})

	t.Run("regeneration returns stored letter without provider call", func(t *testing.T) {
		gen := &testutil.MockLetterGenerator{Letter: "First letter."}
		service, _, profiles := newTestAppealService(t, quota, gen)
		userID := seedProfile(t, profiles, "clinic@example.com", 5)

		a, _ := service.Create(ctx, userID, appeal.CreateInput{Payer: "Aetna", DenialCode: "CO-197"})
		first, err := service.GenerateLetter(ctx, userID, a.ID)
		if err != nil {
			t.Fatalf("GenerateLetter() first call error: %v", err)
		}

		gen.Letter = "Second letter."
		second, err := service.GenerateLetter(ctx, userID, a.ID)
		if err != nil {
			t.Fatalf("GenerateLetter() second call error: %v", err)
		}
		if second.LetterText != first.LetterText {
			t.Errorf("GenerateLetter() regeneration letter = %q, want stored %q", second.LetterText, first.LetterText)
		}
		if gen.CallCount() != 1 {
			t.Errorf("GenerateLetter() provider calls = %d, want 1", gen.CallCount())
		}
	})

	t.Run("foreign and unknown appeals report forbidden", func(t *testing.T) {
		service, _, profiles := newTestAppealService(t, quota, nil)
		owner := seedProfile(t, profiles, "owner@example.com", 5)
		other := seedProfile(t, profiles, "other@example.com", 5)

		a, _ := service.Create(ctx, owner, appeal.CreateInput{Payer: "Aetna", DenialCode: "CO-197"})

		_, err := service.GenerateLetter(ctx, other, a.ID)
		if !errors.IsCode(err, errors.ErrCodeForbidden) {
			t.Errorf("GenerateLetter() foreign appeal error = %v, want forbidden", err)
		}

		_, err = service.GenerateLetter(ctx, owner, "no-such-id")
		if !errors.IsCode(err, errors.ErrCodeForbidden) {
			t.Errorf("GenerateLetter() unknown id error = %v, want forbidden", err)
		}
	})

	t.Run("exhausted quota denies generation and skips the provider", func(t *testing.T) {
		gen := &testutil.MockLetterGenerator{Letter: "Letter."}
		service, _, profiles := newTestAppealService(t, quota, gen)
		userID := seedProfile(t, profiles, "clinic@example.com", 1)

		first, _ := service.Create(ctx, userID, appeal.CreateInput{Payer: "Aetna", DenialCode: "CO-197"})
		second, _ := service.Create(ctx, userID, appeal.CreateInput{Payer: "Cigna", DenialCode: "CO-50"})

		if _, err := service.GenerateLetter(ctx, userID, first.ID); err != nil {
			t.Fatalf("GenerateLetter() within quota error: %v", err)
		}

		calls := gen.CallCount()
		_, err := service.GenerateLetter(ctx, userID, second.ID)
		if !errors.IsCode(err, errors.ErrCodeQuotaExceeded) {
			t.Errorf("GenerateLetter() over quota error = %v, want quota exceeded", err)
		}
		if gen.CallCount() != calls {
			t.Error("GenerateLetter() called the provider after quota denial")
		}
	})

	t.Run("unlimited quota never denies", func(t *testing.T) {
		service, _, profiles := newTestAppealService(t, quota, nil)
		userID := seedUnlimitedProfile(t, profiles, "enterprise@example.com")

		for i := 0; i < 10; i++ {
			a, err := service.Create(ctx, userID, appeal.CreateInput{Payer: "Aetna", DenialCode: "CO-197"})
			if err != nil {
				t.Fatalf("Create() #%d error: %v", i+1, err)
			}
			if _, err := service.GenerateLetter(ctx, userID, a.ID); err != nil {
				t.Fatalf("GenerateLetter() #%d error: %v", i+1, err)
			}
		}
	})
}

func TestAppealService_GenerateLetter_QuotaBoundaryConcurrency(t *testing.T) {
	ctx := context.Background()
	quota := config.QuotaConfig{CountedStatus: config.QuotaCountsGenerated}
	gen := &testutil.MockLetterGenerator{Letter: "Letter."}
	service, _, profiles := newTestAppealService(t, quota, gen)

	// One unit of quota left, several distinct drafts racing for it.
	userID := seedProfile(t, profiles, "clinic@example.com", 1)

	const racers = 8
	ids := make([]string, racers)
	for i := range ids {
		a, err := service.Create(ctx, userID, appeal.CreateInput{Payer: "Aetna", DenialCode: "CO-197"})
		if err != nil {
			t.Fatalf("Create() error: %v", err)
		}
		ids[i] = a.ID
	}

	var wg sync.WaitGroup
	results := make([]error, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = service.GenerateLetter(ctx, userID, ids[i])
		}(i)
	}
	wg.Wait()

	var succeeded, denied int
	for _, err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.IsCode(err, errors.ErrCodeQuotaExceeded):
			denied++
		default:
			t.Errorf("GenerateLetter() unexpected error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Errorf("GenerateLetter() successes = %d, want exactly 1", succeeded)
	}
	if denied != racers-1 {
		t.Errorf("GenerateLetter() quota denials = %d, want %d", denied, racers-1)
	}
}

func TestAppealService_Quota(t *testing.T) {
	ctx := context.Background()
	quota := config.QuotaConfig{CountedStatus: config.QuotaCountsGenerated}
	service, _, profiles := newTestAppealService(t, quota, &testutil.MockLetterGenerator{Letter: "Letter."})
	userID := seedProfile(t, profiles, "clinic@example.com", 3)

	status, err := service.Quota(ctx, userID)
	if err != nil {
		t.Fatalf("Quota() error: %v", err)
	}
	if status.Limit != 3 || status.Used != 0 || status.Remaining != 3 || status.Unlimited {
		t.Errorf("Quota() = %+v, want limit 3 used 0 remaining 3", status)
	}

	a, _ := service.Create(ctx, userID, appeal.CreateInput{Payer: "Aetna", DenialCode: "CO-197"})

	// Drafts do not consume quota under the generated-counting policy.
	status, _ = service.Quota(ctx, userID)
	if status.Used != 0 {
		t.Errorf("Quota() used after draft = %d, want 0", status.Used)
	}

	if _, err := service.GenerateLetter(ctx, userID, a.ID); err != nil {
		t.Fatalf("GenerateLetter() error: %v", err)
	}

	status, _ = service.Quota(ctx, userID)
	if status.Used != 1 || status.Remaining != 2 {
		t.Errorf("Quota() after generation = %+v, want used 1 remaining 2", status)
	}

	unlimited := seedUnlimitedProfile(t, profiles, "enterprise@example.com")
	status, err = service.Quota(ctx, unlimited)
	if err != nil {
		t.Fatalf("Quota() unlimited error: %v", err)
	}
	if !status.Unlimited {
		t.Errorf("Quota() unlimited = %+v, want Unlimited true", status)
	}
}
