package postgres

import (
	"context"
	"testing"

	"github.com/appealdesk/appealdesk/internal/domain/appeal"
	"github.com/appealdesk/appealdesk/internal/pkg/errors"
	"github.com/appealdesk/appealdesk/internal/testutil"
)

func TestAppealRepository_Create(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewAppealRepository(db)
	ctx := context.Background()

	userID := testutil.SeedProfile(t, db, "clinic@example.com", "starter", 5)

	a := &appeal.Appeal{
		UserID:     userID,
		Payer:      "Aetna",
		DenialCode: "CO-197",
	}
	if err := repo.Create(ctx, a, ""); err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if a.ID == "" {
		t.Error("Create() did not assign an id")
	}
	if a.Status != appeal.StatusDraft {
		t.Errorf("Create() status = %v, want %v", a.Status, appeal.StatusDraft)
	}

	got, err := repo.GetByID(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetByID() error: %v", err)
	}
	if got.Payer != "Aetna" || got.DenialCode != "CO-197" || got.UserID != userID {
		t.Errorf("GetByID() = %+v, want seeded fields", got)
	}
}

func TestAppealRepository_Create_DraftGate(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewAppealRepository(db)
	ctx := context.Background()

	userID := testutil.SeedProfile(t, db, "clinic@example.com", "starter", 1)

	first := &appeal.Appeal{UserID: userID, Payer: "Aetna", DenialCode: "CO-197"}
	if err := repo.Create(ctx, first, appeal.StatusDraft); err != nil {
		t.Fatalf("Create() within quota error: %v", err)
	}

	second := &appeal.Appeal{UserID: userID, Payer: "Cigna", DenialCode: "CO-50"}
	err := repo.Create(ctx, second, appeal.StatusDraft)
	if !errors.IsCode(err, errors.ErrCodeQuotaExceeded) {
		t.Errorf("Create() over quota error = %v, want quota exceeded", err)
	}
}

func TestAppealRepository_ListByUser(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewAppealRepository(db)
	ctx := context.Background()

	userID := testutil.SeedProfile(t, db, "clinic@example.com", "starter", 10)
	other := testutil.SeedProfile(t, db, "other@example.com", "starter", 10)

	for _, payer := range []string{"Aetna", "Cigna", "UHC"} {
		a := &appeal.Appeal{UserID: userID, Payer: payer, DenialCode: "CO-16"}
		if err := repo.Create(ctx, a, ""); err != nil {
			t.Fatalf("Create() error: %v", err)
		}
	}
	foreign := &appeal.Appeal{UserID: other, Payer: "Humana", DenialCode: "CO-97"}
	if err := repo.Create(ctx, foreign, ""); err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	appeals, total, err := repo.ListByUser(ctx, userID, appeal.Filter{}, 10, 0)
	if err != nil {
		t.Fatalf("ListByUser() error: %v", err)
	}
	if total != 3 || len(appeals) != 3 {
		t.Errorf("ListByUser() total = %d len = %d, want 3", total, len(appeals))
	}
	for _, a := range appeals {
		if a.UserID != userID {
			t.Errorf("ListByUser() leaked appeal of user %d", a.UserID)
		}
	}

	drafts, _, err := repo.ListByUser(ctx, userID, appeal.Filter{Status: appeal.StatusDraft}, 10, 0)
	if err != nil {
		t.Fatalf("ListByUser() filtered error: %v", err)
	}
	if len(drafts) != 3 {
		t.Errorf("ListByUser() drafts = %d, want 3", len(drafts))
	}

	page, total, err := repo.ListByUser(ctx, userID, appeal.Filter{}, 2, 0)
	if err != nil {
		t.Fatalf("ListByUser() paged error: %v", err)
	}
	if total != 3 || len(page) != 2 {
		t.Errorf("ListByUser() paged total = %d len = %d, want 3 and 2", total, len(page))
	}
}

func TestAppealRepository_FinalizeLetter(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewAppealRepository(db)
	ctx := context.Background()

	userID := testutil.SeedProfile(t, db, "clinic@example.com", "starter", 1)
	other := testutil.SeedProfile(t, db, "other@example.com", "starter", 1)

	a := &appeal.Appeal{UserID: userID, Payer: "Aetna", DenialCode: "CO-197"}
	if err := repo.Create(ctx, a, ""); err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	t.Run("ownership is enforced", func(t *testing.T) {
		_, err := repo.FinalizeLetter(ctx, a.ID, other, "letter", appeal.StatusGenerated)
		if !errors.IsCode(err, errors.ErrCodeForbidden) {
			t.Errorf("FinalizeLetter() foreign error = %v, want forbidden", err)
		}
	})

	t.Run("unknown appeal is not found", func(t *testing.T) {
		_, err := repo.FinalizeLetter(ctx, "no-such-id", userID, "letter", appeal.StatusGenerated)
		if !errors.IsCode(err, errors.ErrCodeNotFound) {
			t.Errorf("FinalizeLetter() unknown error = %v, want not found", err)
		}
	})

	t.Run("stores letter and flips status", func(t *testing.T) {
		got, err := repo.FinalizeLetter(ctx, a.ID, userID, "Dear reviewer", appeal.StatusGenerated)
		if err != nil {
			t.Fatalf("FinalizeLetter() error: %v", err)
		}
		if got.Status != appeal.StatusGenerated || got.LetterText != "Dear reviewer" {
			t.Errorf("FinalizeLetter() = %+v, want generated with letter", got)
		}

		stored, err := repo.GetByID(ctx, a.ID)
		if err != nil {
			t.Fatalf("GetByID() error: %v", err)
		}
		if stored.Status != appeal.StatusGenerated || stored.LetterText != "Dear reviewer" {
			t.Errorf("GetByID() after finalize = %+v, want persisted letter", stored)
		}
	})

	t.Run("already generated returns stored letter unchanged", func(t *testing.T) {
		got, err := repo.FinalizeLetter(ctx, a.ID, userID, "overwrite attempt", appeal.StatusGenerated)
		if err != nil {
			t.Fatalf("FinalizeLetter() repeat error: %v", err)
		}
		if got.LetterText != "Dear reviewer" {
			t.Errorf("FinalizeLetter() repeat letter = %q, want stored letter", got.LetterText)
		}
	})

	t.Run("quota is re-checked in the transaction", func(t *testing.T) {
		b := &appeal.Appeal{UserID: userID, Payer: "Cigna", DenialCode: "CO-50"}
		if err := repo.Create(ctx, b, ""); err != nil {
			t.Fatalf("Create() error: %v", err)
		}
		_, err := repo.FinalizeLetter(ctx, b.ID, userID, "letter", appeal.StatusGenerated)
		if !errors.IsCode(err, errors.ErrCodeQuotaExceeded) {
			t.Errorf("FinalizeLetter() over quota error = %v, want quota exceeded", err)
		}

		stored, _ := repo.GetByID(ctx, b.ID)
		if stored.Status != appeal.StatusDraft {
			t.Errorf("FinalizeLetter() denied appeal status = %v, want draft", stored.Status)
		}
	})
}

func TestAppealRepository_CountByStatus(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewAppealRepository(db)
	ctx := context.Background()

	userID := testutil.SeedProfile(t, db, "clinic@example.com", "pro", 10)

	for i := 0; i < 3; i++ {
		a := &appeal.Appeal{UserID: userID, Payer: "Aetna", DenialCode: "CO-197"}
		if err := repo.Create(ctx, a, ""); err != nil {
			t.Fatalf("Create() error: %v", err)
		}
		if i == 0 {
			if _, err := repo.FinalizeLetter(ctx, a.ID, userID, "letter", appeal.StatusGenerated); err != nil {
				t.Fatalf("FinalizeLetter() error: %v", err)
			}
		}
	}

	generated, err := repo.CountByStatus(ctx, userID, appeal.StatusGenerated)
	if err != nil {
		t.Fatalf("CountByStatus() error: %v", err)
	}
	if generated != 1 {
		t.Errorf("CountByStatus(generated) = %d, want 1", generated)
	}

	drafts, _ := repo.CountByStatus(ctx, userID, appeal.StatusDraft)
	if drafts != 2 {
		t.Errorf("CountByStatus(draft) = %d, want 2", drafts)
	}
}
