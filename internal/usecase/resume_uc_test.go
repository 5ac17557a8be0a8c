//go:build !integration

package usecase_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"pure-resume/internal/domain"
	"pure-resume/internal/domain/model"
	"pure-resume/internal/domain/ports/repository"
	"pure-resume/internal/usecase"
)

// resumeFixture builds a resume use case whose gate passes or fails depending
// on the subscription shape written by mutate.
func resumeFixture(t *testing.T, mutate func(u *model.User)) (usecase.ResumeUseCase, *MockResumeRepo) {
	t.Helper()
	mockUserRepo := NewMockUserRepo()
	u := seedUser(t, mockUserRepo, "user-1")
	if mutate != nil {
		mutate(u)
	}
	mockUserRepo.Save(context.Background(), repository.NoTX, u)

	mockResumeRepo := NewMockResumeRepo()
	ent := usecase.NewEntitlementUseCase(mockUserRepo, newTestLogger())
	return usecase.NewResumeUseCase(mockResumeRepo, ent, newTestLogger()), mockResumeRepo
}

func entitled(u *model.User) { u.SubscriptionExpiresAt = ptrTime(now().AddDate(0, 1, 0)) }

func TestResumeUseCase_SaveGate(t *testing.T) {
	ctx := context.Background()
	content := json.RawMessage(`{"sections":[]}`)

	t.Run("should allow create for an entitled user", func(t *testing.T) {
		uc, repo := resumeFixture(t, entitled)

		r, err := uc.Create(ctx, "user-1", "My Resume", content)
		if err != nil {
			t.Fatalf("expected create to pass, got: %v", err)
		}
		if _, err := repo.FindByID(ctx, repository.NoTX, r.ID); err != nil {
			t.Error("expected the resume persisted")
		}
	})

	t.Run("should block create for a user with no subscription", func(t *testing.T) {
		uc, repo := resumeFixture(t, nil)

		_, err := uc.Create(ctx, "user-1", "My Resume", content)
		if !errors.Is(err, domain.ErrSubscriptionRequired) {
			t.Fatalf("expected ErrSubscriptionRequired, got: %v", err)
		}
		if resumes, _ := repo.ListByUser(ctx, repository.NoTX, "user-1"); len(resumes) != 0 {
			t.Error("expected nothing persisted behind the gate")
		}
	})

	t.Run("should block update for an expired user but allow reads", func(t *testing.T) {
		// --- Arrange: persist while entitled, then expire ---
		mockUserRepo := NewMockUserRepo()
		u := seedUser(t, mockUserRepo, "user-1")
		entitled(u)
		mockUserRepo.Save(ctx, repository.NoTX, u)

		mockResumeRepo := NewMockResumeRepo()
		ent := usecase.NewEntitlementUseCase(mockUserRepo, newTestLogger())
		uc := usecase.NewResumeUseCase(mockResumeRepo, ent, newTestLogger())

		r, err := uc.Create(ctx, "user-1", "My Resume", content)
		if err != nil {
			t.Fatalf("create while entitled: %v", err)
		}

		u.SubscriptionExpiresAt = ptrTime(now().AddDate(0, -1, 0))
		mockUserRepo.Save(ctx, repository.NoTX, u)

		// --- Act / Assert ---
		if _, err := uc.Update(ctx, "user-1", r.ID, "New Title", nil); !errors.Is(err, domain.ErrSubscriptionExpired) {
			t.Fatalf("expected update blocked with ErrSubscriptionExpired, got: %v", err)
		}
		if _, err := uc.Get(ctx, "user-1", r.ID); err != nil {
			t.Errorf("expected read to stay open, got: %v", err)
		}
		if _, err := uc.List(ctx, "user-1"); err != nil {
			t.Errorf("expected list to stay open, got: %v", err)
		}
		if _, err := uc.Export(ctx, "user-1", r.ID); err != nil {
			t.Errorf("expected export to stay open, got: %v", err)
		}
		if err := uc.Delete(ctx, "user-1", r.ID); err != nil {
			t.Errorf("expected delete to stay open, got: %v", err)
		}
	})

	t.Run("should block create for a banned user regardless of expiry", func(t *testing.T) {
		uc, _ := resumeFixture(t, func(u *model.User) {
			entitled(u)
			u.Banned = true
		})

		_, err := uc.Create(ctx, "user-1", "My Resume", content)
		if !errors.Is(err, domain.ErrAccountBanned) {
			t.Fatalf("expected ErrAccountBanned, got: %v", err)
		}
	})
}

func TestResumeUseCase_Ownership(t *testing.T) {
	ctx := context.Background()
	content := json.RawMessage(`{"sections":[]}`)

	t.Run("should hide another user's resume", func(t *testing.T) {
		// --- Arrange ---
		mockUserRepo := NewMockUserRepo()
		owner := seedUser(t, mockUserRepo, "owner")
		entitled(owner)
		mockUserRepo.Save(ctx, repository.NoTX, owner)
		intruder := seedUser(t, mockUserRepo, "intruder")
		entitled(intruder)
		mockUserRepo.Save(ctx, repository.NoTX, intruder)

		mockResumeRepo := NewMockResumeRepo()
		ent := usecase.NewEntitlementUseCase(mockUserRepo, newTestLogger())
		uc := usecase.NewResumeUseCase(mockResumeRepo, ent, newTestLogger())

		r, err := uc.Create(ctx, "owner", "My Resume", content)
		if err != nil {
			t.Fatalf("create: %v", err)
		}

		// --- Act / Assert ---
		if _, err := uc.Get(ctx, "intruder", r.ID); !errors.Is(err, domain.ErrForbidden) {
			t.Errorf("get: expected ErrForbidden, got: %v", err)
		}
		if _, err := uc.Update(ctx, "intruder", r.ID, "Stolen", nil); !errors.Is(err, domain.ErrForbidden) {
			t.Errorf("update: expected ErrForbidden, got: %v", err)
		}
		if err := uc.Delete(ctx, "intruder", r.ID); !errors.Is(err, domain.ErrForbidden) {
			t.Errorf("delete: expected ErrForbidden, got: %v", err)
		}
	})

	t.Run("should reject invalid JSON content", func(t *testing.T) {
		uc, _ := resumeFixture(t, entitled)

		if _, err := uc.Create(ctx, "user-1", "Bad", json.RawMessage(`{not json`)); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Fatalf("create: expected ErrInvalidArgument, got: %v", err)
		}

		r, err := uc.Create(ctx, "user-1", "Good", content)
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if _, err := uc.Update(ctx, "user-1", r.ID, "", json.RawMessage(`{not json`)); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Fatalf("update: expected ErrInvalidArgument, got: %v", err)
		}
	})
}
