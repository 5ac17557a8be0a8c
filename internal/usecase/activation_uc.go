package usecase

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"pure-resume/internal/domain"
	"pure-resume/internal/domain/model"
	"pure-resume/internal/domain/ports/repository"
	"pure-resume/internal/infra/logging"
	"pure-resume/internal/infra/metrics"
)

// Compile-time check
var _ ActivationUseCase = (*activationUC)(nil)

// RedeemResult reports the outcome of a successful redemption.
type RedeemResult struct {
	ExpiresAt time.Time
	DaysLeft  int
}

// ActivationUseCase is the redemption engine: it consumes an activation
// code and extends the caller's subscription window.
type ActivationUseCase interface {
	Redeem(ctx context.Context, userID, rawCode string) (*RedeemResult, error)
	History(ctx context.Context, userID string) ([]*model.SubscriptionRecord, error)
}

type activationUC struct {
	users repository.UserRepository
	codes repository.ActivationCodeRepository
	subs  repository.SubscriptionRepository
	tm    repository.TransactionManager
	log   *zerolog.Logger
}

func NewActivationUseCase(
	users repository.UserRepository,
	codes repository.ActivationCodeRepository,
	subs repository.SubscriptionRepository,
	tm repository.TransactionManager,
	logger *zerolog.Logger,
) *activationUC {
	return &activationUC{users: users, codes: codes, subs: subs, tm: tm, log: logger}
}

// Redeem runs the full redemption state transition. Every precondition
// failure aborts the whole operation; the mutation steps (release previous
// code, mark redeemed, update expiry, append ledger) commit atomically or
// not at all.
func (uc *activationUC) Redeem(ctx context.Context, userID, rawCode string) (*RedeemResult, error) {
	defer logging.TraceDuration(uc.log, "ActivationUC.Redeem")()

	canonical, err := model.NormalizeCode(rawCode)
	if err != nil {
		metrics.IncRedemption("format_error")
		return nil, err
	}

	now := time.Now()
	var result *RedeemResult

	// Serializable so two concurrent redemptions by the same user observe
	// each other's attached-code and expiry writes.
	txOpts := pgx.TxOptions{IsoLevel: pgx.Serializable}
	err = uc.tm.WithTx(ctx, txOpts, func(ctx context.Context, tx repository.Tx) error {
		code, err := uc.codes.FindByCode(ctx, tx, canonical)
		if err != nil {
			return err
		}
		if code.IsRedeemed() {
			return domain.ErrCodeAlreadyUsed
		}
		if !code.ExpiresAt.After(now) {
			return domain.ErrCodeExpired
		}

		user, err := uc.users.FindByID(ctx, tx, userID)
		if err != nil {
			return err
		}

		newExpiry := model.NextExpiry(user.SubscriptionExpiresAt, now)

		// Hand the previously attached code back to the unredeemed pool so
		// at most one code stays bound to this user.
		if user.ActivationCodeID != nil && *user.ActivationCodeID != code.ID {
			if err := uc.codes.Release(ctx, tx, *user.ActivationCodeID); err != nil {
				return err
			}
		}

		// Conditional update: the loser of a same-code race observes
		// ErrCodeAlreadyUsed here even though the read above looked clean.
		if err := uc.codes.MarkRedeemed(ctx, tx, code.ID, userID, now); err != nil {
			return err
		}
		if err := uc.users.UpdateSubscription(ctx, tx, userID, newExpiry, code.ID); err != nil {
			return err
		}

		rec, err := model.NewSubscriptionRecord(userID, code.ID, now, newExpiry)
		if err != nil {
			return err
		}
		if err := uc.subs.Append(ctx, tx, rec); err != nil {
			return err
		}

		result = &RedeemResult{ExpiresAt: newExpiry, DaysLeft: model.DaysUntil(newExpiry, now)}
		return nil
	})
	if err != nil {
		metrics.IncRedemption(redemptionResult(err))
		return nil, err
	}

	metrics.IncRedemption("success")
	uc.log.Info().
		Str("user_id", userID).
		Time("expires_at", result.ExpiresAt).
		Msg("activation code redeemed")
	return result, nil
}

func (uc *activationUC) History(ctx context.Context, userID string) ([]*model.SubscriptionRecord, error) {
	defer logging.TraceDuration(uc.log, "ActivationUC.History")()
	return uc.subs.ListByUser(ctx, repository.NoTX, userID)
}

func redemptionResult(err error) string {
	switch domain.ReasonCode(err) {
	case domain.CodeCodeNotFound:
		return "not_found"
	case domain.CodeCodeAlreadyUsed:
		return "already_used"
	case domain.CodeCodeExpired:
		return "code_expired"
	case domain.CodeCodeFormat:
		return "format_error"
	default:
		return "error"
	}
}
