package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/appealdesk/appealdesk/internal/api/handlers"
	"github.com/appealdesk/appealdesk/internal/api/middleware"
	"github.com/appealdesk/appealdesk/internal/config"
	"github.com/appealdesk/appealdesk/internal/domain/appeal"
	"github.com/appealdesk/appealdesk/internal/domain/profile"
	"github.com/appealdesk/appealdesk/internal/pkg/logger"
	"github.com/appealdesk/appealdesk/internal/pkg/validator"
	"github.com/appealdesk/appealdesk/internal/repository/postgres"
	"github.com/appealdesk/appealdesk/internal/services"
	"github.com/appealdesk/appealdesk/internal/testutil"
)

// TestAppealLifecycle walks the full clinic flow against a real database:
// register, submit an appeal, generate the letter, read it back, check quota.
func TestAppealLifecycle(t *testing.T) {
	db := testutil.NewTestDB(t)

	log := logger.New(logger.Config{Level: "error", Format: "json"})
	val := validator.New()

	quotaCfg := config.QuotaConfig{
		CountedStatus:      config.QuotaCountsGenerated,
		DefaultAppealQuota: 2,
		TrialDays:          14,
	}
	authCfg := config.AuthConfig{
		JWTSecret:  "integration-test-secret",
		BCryptCost: 4,
	}

	profileRepo := postgres.NewProfileRepository(db)
	appealRepo := postgres.NewAppealRepository(db)

	profileService := services.NewProfileService(profileRepo, authCfg, quotaCfg, log)
	generator := &testutil.MockLetterGenerator{Letter: "Dear Claims Review Department,"}
	appealService := services.NewAppealService(appealRepo, profileRepo, generator, quotaCfg, log)

	appealHandler := handlers.NewAppealHandler(appealService, log, val)

	// Register through the service directly; the HTTP auth surface has its
	// own tests and the flow here is about appeals.
	user, err := profileService.Register(context.Background(), "clinic@example.com", "super-secret-pw", "Demo Clinic")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	var appealID string

	t.Run("Create Appeal", func(t *testing.T) {
		body := []byte(`{"payer":"Aetna","denial_code":"CO-197"}`)
		req := authedRequest(http.MethodPost, "/api/v1/appeals", body, user.ID)

		rr := httptest.NewRecorder()
		appealHandler.Create(rr, req)

		if rr.Code != http.StatusCreated {
			t.Fatalf("Create failed with status %v, body: %s", rr.Code, rr.Body.String())
		}

		var response map[string]interface{}
		if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		data := response["data"].(map[string]interface{})
		appealID = data["id"].(string)
		if data["status"] != "draft" {
			t.Errorf("expected draft status, got %v", data["status"])
		}
	})

	t.Run("Generate Letter", func(t *testing.T) {
		req := authedRequest(http.MethodPost, "/api/v1/appeals/"+appealID+"/letter", nil, user.ID)
		req = withURLParam(req, "id", appealID)

		rr := httptest.NewRecorder()
		appealHandler.GenerateLetter(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("GenerateLetter failed with status %v, body: %s", rr.Code, rr.Body.String())
		}

		var response map[string]interface{}
		if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		data := response["data"].(map[string]interface{})
		if data["status"] != "generated" {
			t.Errorf("expected generated status, got %v", data["status"])
		}
		if data["letter_text"] != "Dear Claims Review Department," {
			t.Errorf("unexpected letter text: %v", data["letter_text"])
		}
	})

	t.Run("Regenerate Returns Stored Letter", func(t *testing.T) {
		req := authedRequest(http.MethodPost, "/api/v1/appeals/"+appealID+"/letter", nil, user.ID)
		req = withURLParam(req, "id", appealID)

		rr := httptest.NewRecorder()
		appealHandler.GenerateLetter(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("regenerate failed with status %v", rr.Code)
		}
		if generator.CallCount() != 1 {
			t.Errorf("expected 1 provider call, got %d", generator.CallCount())
		}
	})

	t.Run("Get Appeal", func(t *testing.T) {
		req := authedRequest(http.MethodGet, "/api/v1/appeals/"+appealID, nil, user.ID)
		req = withURLParam(req, "id", appealID)

		rr := httptest.NewRecorder()
		appealHandler.Get(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("Get failed with status %v", rr.Code)
		}
	})

	t.Run("Quota Reflects Usage", func(t *testing.T) {
		req := authedRequest(http.MethodGet, "/api/v1/quota", nil, user.ID)

		rr := httptest.NewRecorder()
		appealHandler.Quota(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("Quota failed with status %v", rr.Code)
		}

		var response map[string]interface{}
		if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		data := response["data"].(map[string]interface{})
		if used := data["used"].(float64); used != 1 {
			t.Errorf("expected 1 used, got %v", used)
		}
		if remaining := data["remaining"].(float64); remaining != 1 {
			t.Errorf("expected 1 remaining, got %v", remaining)
		}
	})

	t.Run("Quota Exhaustion Denies Generation", func(t *testing.T) {
		// Burn the second slot, then a third appeal must be denied.
		for i := 0; i < 2; i++ {
			body := []byte(fmt.Sprintf(`{"payer":"Cigna","denial_code":"CO-%d"}`, 50+i))
			req := authedRequest(http.MethodPost, "/api/v1/appeals", body, user.ID)
			rr := httptest.NewRecorder()
			appealHandler.Create(rr, req)
			if rr.Code != http.StatusCreated {
				t.Fatalf("create %d failed with status %v", i, rr.Code)
			}
			var response map[string]interface{}
			if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			id := response["data"].(map[string]interface{})["id"].(string)

			genReq := authedRequest(http.MethodPost, "/api/v1/appeals/"+id+"/letter", nil, user.ID)
			genReq = withURLParam(genReq, "id", id)
			genRR := httptest.NewRecorder()
			appealHandler.GenerateLetter(genRR, genReq)

			if i == 0 {
				if genRR.Code != http.StatusOK {
					t.Fatalf("second generation should succeed, got %v: %s", genRR.Code, genRR.Body.String())
				}
				continue
			}

			if genRR.Code != http.StatusPaymentRequired {
				t.Fatalf("expected 402 over quota, got %v: %s", genRR.Code, genRR.Body.String())
			}
			var errResp map[string]interface{}
			if err := json.NewDecoder(genRR.Body).Decode(&errResp); err != nil {
				t.Fatalf("failed to decode error response: %v", err)
			}
			apiErr := errResp["error"].(map[string]interface{})
			if apiErr["code"] != "QUOTA_EXCEEDED" {
				t.Errorf("expected QUOTA_EXCEEDED, got %v", apiErr["code"])
			}
		}
	})

	t.Run("Foreign Appeal Is Invisible", func(t *testing.T) {
		other, err := profileService.Register(context.Background(), "other@example.com", "super-secret-pw", "Other Clinic")
		if err != nil {
			t.Fatalf("register: %v", err)
		}

		req := authedRequest(http.MethodGet, "/api/v1/appeals/"+appealID, nil, other.ID)
		req = withURLParam(req, "id", appealID)

		rr := httptest.NewRecorder()
		appealHandler.Get(rr, req)

		if rr.Code != http.StatusNotFound {
			t.Errorf("expected 404 for foreign appeal, got %v", rr.Code)
		}
	})
}

// TestAdminSubscriptionFlow verifies an admin quota bump unblocks generation.
func TestAdminSubscriptionFlow(t *testing.T) {
	db := testutil.NewTestDB(t)

	log := logger.New(logger.Config{Level: "error", Format: "json"})

	quotaCfg := config.QuotaConfig{
		CountedStatus:      config.QuotaCountsGenerated,
		DefaultAppealQuota: 0,
		TrialDays:          14,
	}
	authCfg := config.AuthConfig{JWTSecret: "integration-test-secret", BCryptCost: 4}

	profileRepo := postgres.NewProfileRepository(db)
	appealRepo := postgres.NewAppealRepository(db)

	profileService := services.NewProfileService(profileRepo, authCfg, quotaCfg, log)
	generator := &testutil.MockLetterGenerator{Letter: "Dear Claims Review Department,"}
	appealService := services.NewAppealService(appealRepo, profileRepo, generator, quotaCfg, log)

	ctx := context.Background()
	user, err := profileService.Register(ctx, "blocked@example.com", "super-secret-pw", "Blocked Clinic")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	a, err := appealService.Create(ctx, user.ID, appeal.CreateInput{Payer: "UnitedHealthcare", DenialCode: "CO-29"})
	if err != nil {
		t.Fatalf("create appeal: %v", err)
	}

	if _, err := appealService.GenerateLetter(ctx, user.ID, a.ID); err == nil {
		t.Fatal("expected generation to be denied at zero quota")
	}

	plan := "pro"
	newQuota := int64(50)
	if _, err := profileService.UpdateSubscription(ctx, user.ID, profile.QuotaPatch{Plan: &plan, AppealQuota: &newQuota}); err != nil {
		t.Fatalf("update subscription: %v", err)
	}

	generated, err := appealService.GenerateLetter(ctx, user.ID, a.ID)
	if err != nil {
		t.Fatalf("generation after upgrade should succeed: %v", err)
	}
	if generated.LetterText == "" {
		t.Error("expected a stored letter after upgrade")
	}
}

func authedRequest(method, target string, body []byte, userID int64) *http.Request {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	return req.WithContext(context.WithValue(req.Context(), middleware.UserIDKey, userID))
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}
