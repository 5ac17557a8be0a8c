package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"pure-resume/internal/domain"
	"pure-resume/internal/domain/model"
	"pure-resume/internal/domain/ports/repository"
	"pure-resume/internal/infra/logging"
	"pure-resume/internal/infra/metrics"
)

// Compile-time check
var _ AdminUseCase = (*adminUC)(nil)

// maxCodeBatch caps one generation request; larger batches come in pages.
const maxCodeBatch = 500

// codeCreateAttempts bounds the regenerate-on-collision loop per code. The
// collision probability is negligible at this keyspace, but creation is
// still modeled as fallible.
const codeCreateAttempts = 5

// AdminUseCase covers the admin console operations: code generation and
// listing, user listing, and the subscription ban/unban override.
type AdminUseCase interface {
	GenerateCodes(ctx context.Context, adminID string, count, expiresInDays int) ([]*model.ActivationCode, error)
	ListCodes(ctx context.Context, adminID string, offset, limit int) ([]*model.ActivationCode, error)
	ListUsers(ctx context.Context, adminID string, filter repository.UserFilter, offset, limit int) ([]*model.User, int, error)
	SetSubscriptionActive(ctx context.Context, adminID, targetUserID string, active bool) error
}

type adminUC struct {
	users repository.UserRepository
	codes repository.ActivationCodeRepository
	tm    repository.TransactionManager
	log   *zerolog.Logger
}

func NewAdminUseCase(
	users repository.UserRepository,
	codes repository.ActivationCodeRepository,
	tm repository.TransactionManager,
	logger *zerolog.Logger,
) *adminUC {
	return &adminUC{users: users, codes: codes, tm: tm, log: logger}
}

// requireAdmin resolves the caller and verifies the admin role.
func (uc *adminUC) requireAdmin(ctx context.Context, adminID string) (*model.User, error) {
	caller, err := uc.users.FindByID(ctx, repository.NoTX, adminID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	if !caller.IsAdmin {
		return nil, domain.ErrUnauthorized
	}
	return caller, nil
}

func (uc *adminUC) GenerateCodes(ctx context.Context, adminID string, count, expiresInDays int) ([]*model.ActivationCode, error) {
	defer logging.TraceDuration(uc.log, "AdminUC.GenerateCodes")()

	if _, err := uc.requireAdmin(ctx, adminID); err != nil {
		metrics.IncAdminCommand("generate_codes", "unauthorized")
		return nil, err
	}
	if count <= 0 || count > maxCodeBatch || expiresInDays <= 0 {
		return nil, domain.ErrInvalidArgument
	}

	now := time.Now()
	deadline := now.AddDate(0, 0, expiresInDays)
	out := make([]*model.ActivationCode, 0, count)

	for i := 0; i < count; i++ {
		code, err := uc.createOne(ctx, now, deadline)
		if err != nil {
			return nil, err
		}
		out = append(out, code)
	}

	metrics.IncAdminCommand("generate_codes", "authorized")
	metrics.AddCodesGenerated(len(out))
	uc.log.Info().Int("count", len(out)).Int("expires_in_days", expiresInDays).Msg("activation codes generated")
	return out, nil
}

// createOne generates and persists a single code, regenerating on the
// (astronomically unlikely) unique-constraint collision.
func (uc *adminUC) createOne(ctx context.Context, now, deadline time.Time) (*model.ActivationCode, error) {
	for attempt := 0; attempt < codeCreateAttempts; attempt++ {
		value, err := generateActivationCode()
		if err != nil {
			return nil, err
		}
		code := &model.ActivationCode{
			ID:        uuid.NewString(),
			Code:      value,
			CreatedAt: now,
			ExpiresAt: deadline,
		}
		err = uc.codes.Create(ctx, repository.NoTX, code)
		if err == nil {
			return code, nil
		}
		if !errors.Is(err, domain.ErrAlreadyExists) {
			return nil, err
		}
		uc.log.Warn().Str("code", value).Msg("activation code collision, regenerating")
	}
	return nil, domain.ErrOperationFailed
}

func (uc *adminUC) ListCodes(ctx context.Context, adminID string, offset, limit int) ([]*model.ActivationCode, error) {
	defer logging.TraceDuration(uc.log, "AdminUC.ListCodes")()

	if _, err := uc.requireAdmin(ctx, adminID); err != nil {
		metrics.IncAdminCommand("list_codes", "unauthorized")
		return nil, err
	}
	metrics.IncAdminCommand("list_codes", "authorized")
	return uc.codes.ListAll(ctx, repository.NoTX, offset, limit)
}

func (uc *adminUC) ListUsers(ctx context.Context, adminID string, filter repository.UserFilter, offset, limit int) ([]*model.User, int, error) {
	defer logging.TraceDuration(uc.log, "AdminUC.ListUsers")()

	if _, err := uc.requireAdmin(ctx, adminID); err != nil {
		metrics.IncAdminCommand("list_users", "unauthorized")
		return nil, 0, err
	}
	switch filter {
	case repository.UserFilterAll, repository.UserFilterValid, repository.UserFilterExpired,
		repository.UserFilterBanned, repository.UserFilterNone:
	case "":
		filter = repository.UserFilterAll
	default:
		return nil, 0, domain.ErrInvalidArgument
	}

	users, err := uc.users.List(ctx, repository.NoTX, filter, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	total, err := uc.users.CountUsers(ctx, repository.NoTX)
	if err != nil {
		return nil, 0, err
	}
	metrics.IncAdminCommand("list_users", "authorized")
	return users, total, nil
}

// SetSubscriptionActive is the ban/unban override. It flips only the
// override flag; the target's expiry keeps ticking, so re-enabling restores
// exactly the prior entitlement.
func (uc *adminUC) SetSubscriptionActive(ctx context.Context, adminID, targetUserID string, active bool) error {
	defer logging.TraceDuration(uc.log, "AdminUC.SetSubscriptionActive")()

	if _, err := uc.requireAdmin(ctx, adminID); err != nil {
		metrics.IncAdminCommand("set_subscription", "unauthorized")
		return err
	}
	if targetUserID == adminID {
		return domain.ErrInvalidOperation
	}

	txOpts := pgx.TxOptions{IsoLevel: pgx.ReadCommitted}
	err := uc.tm.WithTx(ctx, txOpts, func(ctx context.Context, tx repository.Tx) error {
		target, err := uc.users.FindByID(ctx, tx, targetUserID)
		if err != nil {
			return err
		}
		if target.IsAdmin {
			return domain.ErrForbidden
		}
		return uc.users.SetSubscriptionActive(ctx, tx, targetUserID, active)
	})
	if err != nil {
		return err
	}

	metrics.IncAdminCommand("set_subscription", "authorized")
	uc.log.Info().
		Str("admin_id", adminID).
		Str("user_id", targetUserID).
		Bool("active", active).
		Msg("subscription override updated")
	return nil
}
