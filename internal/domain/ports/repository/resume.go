package repository

import (
	"context"

	"pure-resume/internal/domain/model"
)

// ResumeRepository is the port for resume document storage. The documents
// themselves are opaque to the subscription core; this port exists so the
// save-gate has a real write path to guard.
type ResumeRepository interface {
	Save(ctx context.Context, tx Tx, r *model.Resume) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Resume, error)
	ListByUser(ctx context.Context, tx Tx, userID string) ([]*model.Resume, error)
	Delete(ctx context.Context, tx Tx, id string) error
}
