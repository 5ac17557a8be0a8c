package repository

import (
	"context"
	"time"

	"pure-resume/internal/domain/model"
)

// ActivationCodeRepository is the port for managing activation codes.
type ActivationCodeRepository interface {
	// Create inserts a new, unredeemed code. Returns domain.ErrAlreadyExists
	// on a code-value collision so the caller can regenerate and retry.
	Create(ctx context.Context, tx Tx, code *model.ActivationCode) error

	// FindByCode looks a code up by canonical value regardless of redemption
	// state. Misses map to domain.ErrCodeNotFound.
	FindByCode(ctx context.Context, tx Tx, code string) (*model.ActivationCode, error)

	FindByID(ctx context.Context, tx Tx, id string) (*model.ActivationCode, error)

	// ListAll returns codes newest-created-first for admin display.
	ListAll(ctx context.Context, tx Tx, offset, limit int) ([]*model.ActivationCode, error)

	// MarkRedeemed conditionally sets the redemption sub-record; the update
	// commits only if the code is still unredeemed, otherwise it reports
	// domain.ErrCodeAlreadyUsed. This is the single-redemption guarantee
	// under concurrent callers.
	MarkRedeemed(ctx context.Context, tx Tx, codeID, userID string, at time.Time) error

	// Release clears the redemption sub-record, returning the code to the
	// unredeemed pool. Only the redemption engine calls this, when a user
	// replaces their previously attached code.
	Release(ctx context.Context, tx Tx, codeID string) error
}
