package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"

	"pure-resume/internal/domain"
	"pure-resume/internal/domain/model"
	"pure-resume/internal/domain/ports/repository"
)

// Ensure subscriptionRepo implements repository.SubscriptionRepository
var _ repository.SubscriptionRepository = (*subscriptionRepo)(nil)

type subscriptionRepo struct {
	pool *pgxpool.Pool
}

func NewSubscriptionRepo(pool *pgxpool.Pool) *subscriptionRepo {
	return &subscriptionRepo{pool: pool}
}

// Append is insert-only: the ledger has no update path at all.
func (r *subscriptionRepo) Append(ctx context.Context, tx repository.Tx, rec *model.SubscriptionRecord) error {
	const q = `
INSERT INTO subscription_records (id, user_id, activation_code_id, start_at, expires_at, created_at)
VALUES ($1,$2,$3,$4,$5,$6);
`
	_, err := execSQL(ctx, r.pool, tx, q,
		rec.ID, rec.UserID, rec.ActivationCodeID, rec.StartAt, rec.ExpiresAt, rec.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *subscriptionRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.SubscriptionRecord, error) {
	const q = `
SELECT id, user_id, activation_code_id, start_at, expires_at, created_at
  FROM subscription_records
 WHERE user_id = $1
 ORDER BY created_at DESC;
`
	rows, err := queryRows(ctx, r.pool, tx, q, userID)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	var out []*model.SubscriptionRecord
	for rows.Next() {
		var rec model.SubscriptionRecord
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.ActivationCodeID, &rec.StartAt, &rec.ExpiresAt, &rec.CreatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}
