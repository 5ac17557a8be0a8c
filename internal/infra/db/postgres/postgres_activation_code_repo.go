package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"pure-resume/internal/domain"
	"pure-resume/internal/domain/model"
	"pure-resume/internal/domain/ports/repository"
)

// Ensure implementation satisfies the interface.
var _ repository.ActivationCodeRepository = (*activationCodeRepo)(nil)

type activationCodeRepo struct {
	pool *pgxpool.Pool
}

func NewActivationCodeRepo(pool *pgxpool.Pool) repository.ActivationCodeRepository {
	return &activationCodeRepo{pool: pool}
}

func (r *activationCodeRepo) Create(ctx context.Context, tx repository.Tx, code *model.ActivationCode) error {
	if code.ID == "" {
		code.ID = uuid.NewString()
	}

	const q = `
INSERT INTO activation_codes (id, code, created_at, expires_at, redeemed_by_user_id, redeemed_at)
VALUES ($1, $2, $3, $4, $5, $6);
`
	_, err := execSQL(ctx, r.pool, tx, q,
		code.ID, code.Code, code.CreatedAt, code.ExpiresAt, code.RedeemedByUserID, code.RedeemedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return domain.ErrOperationFailed
	}
	return nil
}

// FindByCode looks a code up by its canonical value regardless of
// redemption state; the redemption engine decides what a redeemed hit means.
func (r *activationCodeRepo) FindByCode(ctx context.Context, tx repository.Tx, code string) (*model.ActivationCode, error) {
	const q = `
SELECT id, code, created_at, expires_at, redeemed_by_user_id, redeemed_at
  FROM activation_codes
 WHERE code = $1;
`
	row, err := pickRow(ctx, r.pool, tx, q, code)
	if err != nil {
		return nil, err
	}
	return scanCode(row)
}

func (r *activationCodeRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.ActivationCode, error) {
	const q = `
SELECT id, code, created_at, expires_at, redeemed_by_user_id, redeemed_at
  FROM activation_codes
 WHERE id = $1;
`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanCode(row)
}

// ListAll joins the redeeming user so the admin listing can show who
// consumed a code, not just the bare user id.
func (r *activationCodeRepo) ListAll(ctx context.Context, tx repository.Tx, offset, limit int) ([]*model.ActivationCode, error) {
	const q = `
SELECT ac.id, ac.code, ac.created_at, ac.expires_at, ac.redeemed_by_user_id, ac.redeemed_at,
       u.email, u.username
  FROM activation_codes ac
  LEFT JOIN users u ON u.id = ac.redeemed_by_user_id
 ORDER BY ac.created_at DESC
 OFFSET $1 LIMIT $2;
`
	rows, err := queryRows(ctx, r.pool, tx, q, offset, limit)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	var out []*model.ActivationCode
	for rows.Next() {
		var ac model.ActivationCode
		if err := rows.Scan(&ac.ID, &ac.Code, &ac.CreatedAt, &ac.ExpiresAt, &ac.RedeemedByUserID, &ac.RedeemedAt,
			&ac.RedeemedByEmail, &ac.RedeemedByUsername); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, &ac)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}

// MarkRedeemed conditions the write on the code still being unredeemed so
// that of two concurrent redeemers exactly one commits.
func (r *activationCodeRepo) MarkRedeemed(ctx context.Context, tx repository.Tx, codeID, userID string, at time.Time) error {
	const q = `
UPDATE activation_codes
   SET redeemed_by_user_id = $2, redeemed_at = $3
 WHERE id = $1 AND redeemed_by_user_id IS NULL;
`
	tag, err := execSQL(ctx, r.pool, tx, q, codeID, userID, at)
	if err != nil {
		return domain.ErrOperationFailed
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCodeAlreadyUsed
	}
	return nil
}

func (r *activationCodeRepo) Release(ctx context.Context, tx repository.Tx, codeID string) error {
	const q = `
UPDATE activation_codes
   SET redeemed_by_user_id = NULL, redeemed_at = NULL
 WHERE id = $1;
`
	if _, err := execSQL(ctx, r.pool, tx, q, codeID); err != nil {
		return domain.ErrOperationFailed
	}
	return nil
}

func scanCode(row pgx.Row) (*model.ActivationCode, error) {
	var ac model.ActivationCode
	err := row.Scan(&ac.ID, &ac.Code, &ac.CreatedAt, &ac.ExpiresAt, &ac.RedeemedByUserID, &ac.RedeemedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCodeNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return &ac, nil
}
