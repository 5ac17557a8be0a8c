package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"pure-resume/internal/domain"
	"pure-resume/internal/domain/model"
	"pure-resume/internal/domain/ports/repository"
	"pure-resume/internal/infra/logging"
	"pure-resume/internal/infra/metrics"
)

// Compile-time check
var _ EntitlementUseCase = (*entitlementUC)(nil)

// UngatedActions are the resume operations that stay available to users
// without a valid subscription.
var UngatedActions = []string{"read", "export", "delete"}

// GateError is the save-gate rejection. It wraps the matching domain
// sentinel so errors.Is works, and carries enough state for the caller to
// render an actionable message.
type GateError struct {
	Reason    error
	State     model.EntitlementState
	ExpiresAt *time.Time
	Allowed   []string
}

func (e *GateError) Error() string {
	return fmt.Sprintf("save blocked: %v (state=%s)", e.Reason, e.State)
}

func (e *GateError) Unwrap() error { return e.Reason }

// EntitlementUseCase computes a user's entitlement and enforces the
// save-gate on mutating resume operations.
type EntitlementUseCase interface {
	Status(ctx context.Context, userID string) (model.Entitlement, error)

	// RequireEntitled returns nil when the user may create/update resumes,
	// or a *GateError otherwise. Read, delete, and export paths must not
	// call this.
	RequireEntitled(ctx context.Context, userID string) error
}

type entitlementUC struct {
	users repository.UserRepository
	log   *zerolog.Logger
}

func NewEntitlementUseCase(users repository.UserRepository, logger *zerolog.Logger) *entitlementUC {
	return &entitlementUC{users: users, log: logger}
}

func (uc *entitlementUC) Status(ctx context.Context, userID string) (model.Entitlement, error) {
	defer logging.TraceDuration(uc.log, "EntitlementUC.Status")()

	user, err := uc.users.FindByID(ctx, repository.NoTX, userID)
	if err != nil {
		return model.Entitlement{}, err
	}
	return model.EvaluateEntitlement(user, time.Now()), nil
}

func (uc *entitlementUC) RequireEntitled(ctx context.Context, userID string) error {
	defer logging.TraceDuration(uc.log, "EntitlementUC.RequireEntitled")()

	user, err := uc.users.FindByID(ctx, repository.NoTX, userID)
	if err != nil {
		return err
	}

	ent := model.EvaluateEntitlement(user, time.Now())
	if ent.Valid {
		return nil
	}

	ge := &GateError{State: ent.State, ExpiresAt: ent.ExpiresAt, Allowed: UngatedActions}
	switch {
	case user.Banned:
		// Surfaced distinctly so clients force a re-login instead of
		// offering a renew call-to-action.
		ge.Reason = domain.ErrAccountBanned
		metrics.IncSaveGateDenial("banned")
	case ent.State == model.EntitlementNone:
		ge.Reason = domain.ErrSubscriptionRequired
		metrics.IncSaveGateDenial("required")
	default:
		// expired, or admin-disabled with a live expiry: both render as an
		// expired-class rejection at this boundary.
		ge.Reason = domain.ErrSubscriptionExpired
		metrics.IncSaveGateDenial("expired")
	}
	return ge
}
