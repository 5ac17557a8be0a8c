package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"pure-resume/internal/domain"
	"pure-resume/internal/domain/model"
	"pure-resume/internal/domain/ports/repository"
	"pure-resume/internal/infra/logging"
)

// Compile-time check
var _ ResumeUseCase = (*resumeUC)(nil)

// ResumeUseCase wraps resume storage with the save-gate. Create and Update
// consult the entitlement evaluator first; Get, List, Delete, and Export
// are deliberately ungated.
type ResumeUseCase interface {
	Create(ctx context.Context, userID, title string, content json.RawMessage) (*model.Resume, error)
	Update(ctx context.Context, userID, resumeID, title string, content json.RawMessage) (*model.Resume, error)
	Get(ctx context.Context, userID, resumeID string) (*model.Resume, error)
	List(ctx context.Context, userID string) ([]*model.Resume, error)
	Delete(ctx context.Context, userID, resumeID string) error
	Export(ctx context.Context, userID, resumeID string) (*model.Resume, error)
}

type resumeUC struct {
	resumes     repository.ResumeRepository
	entitlement EntitlementUseCase
	log         *zerolog.Logger
}

func NewResumeUseCase(resumes repository.ResumeRepository, entitlement EntitlementUseCase, logger *zerolog.Logger) *resumeUC {
	return &resumeUC{resumes: resumes, entitlement: entitlement, log: logger}
}

func (uc *resumeUC) Create(ctx context.Context, userID, title string, content json.RawMessage) (*model.Resume, error) {
	defer logging.TraceDuration(uc.log, "ResumeUC.Create")()

	if err := uc.entitlement.RequireEntitled(ctx, userID); err != nil {
		return nil, err
	}
	r, err := model.NewResume(userID, title, content)
	if err != nil {
		return nil, err
	}
	if err := uc.resumes.Save(ctx, repository.NoTX, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (uc *resumeUC) Update(ctx context.Context, userID, resumeID, title string, content json.RawMessage) (*model.Resume, error) {
	defer logging.TraceDuration(uc.log, "ResumeUC.Update")()

	if err := uc.entitlement.RequireEntitled(ctx, userID); err != nil {
		return nil, err
	}
	r, err := uc.owned(ctx, userID, resumeID)
	if err != nil {
		return nil, err
	}
	if title != "" {
		r.Title = title
	}
	if content != nil {
		if !json.Valid(content) {
			return nil, domain.ErrInvalidArgument
		}
		r.Content = content
	}
	r.UpdatedAt = time.Now()
	if err := uc.resumes.Save(ctx, repository.NoTX, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (uc *resumeUC) Get(ctx context.Context, userID, resumeID string) (*model.Resume, error) {
	defer logging.TraceDuration(uc.log, "ResumeUC.Get")()
	return uc.owned(ctx, userID, resumeID)
}

func (uc *resumeUC) List(ctx context.Context, userID string) ([]*model.Resume, error) {
	defer logging.TraceDuration(uc.log, "ResumeUC.List")()
	return uc.resumes.ListByUser(ctx, repository.NoTX, userID)
}

func (uc *resumeUC) Delete(ctx context.Context, userID, resumeID string) error {
	defer logging.TraceDuration(uc.log, "ResumeUC.Delete")()

	if _, err := uc.owned(ctx, userID, resumeID); err != nil {
		return err
	}
	return uc.resumes.Delete(ctx, repository.NoTX, resumeID)
}

// Export returns the document for rendering by the (external) PDF pipeline.
// Export stays available to expired users.
func (uc *resumeUC) Export(ctx context.Context, userID, resumeID string) (*model.Resume, error) {
	defer logging.TraceDuration(uc.log, "ResumeUC.Export")()
	return uc.owned(ctx, userID, resumeID)
}

// owned fetches a resume and enforces ownership.
func (uc *resumeUC) owned(ctx context.Context, userID, resumeID string) (*model.Resume, error) {
	r, err := uc.resumes.FindByID(ctx, repository.NoTX, resumeID)
	if err != nil {
		return nil, err
	}
	if r.UserID != userID {
		return nil, domain.ErrForbidden
	}
	return r, nil
}
