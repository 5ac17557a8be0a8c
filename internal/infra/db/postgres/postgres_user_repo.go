package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"pure-resume/internal/domain"
	"pure-resume/internal/domain/model"
	"pure-resume/internal/domain/ports/repository"
)

var _ repository.UserRepository = (*PostgresUserRepo)(nil)

type PostgresUserRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresUserRepo(pool *pgxpool.Pool) *PostgresUserRepo {
	return &PostgresUserRepo{pool: pool}
}

const userColumns = `
  id, email, username, is_admin, banned,
  subscription_active, subscription_expires_at, activation_code_id,
  registered_at, last_active_at`

func (r *PostgresUserRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	const q = `
INSERT INTO users (
  id, email, username, is_admin, banned,
  subscription_active, subscription_expires_at, activation_code_id,
  registered_at, last_active_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10
) ON CONFLICT (id) DO UPDATE SET
  email=$2, username=$3, is_admin=$4, banned=$5, last_active_at=$10;
`
	_, err := execSQL(ctx, r.pool, tx, q,
		u.ID, u.Email, u.Username, u.IsAdmin, u.Banned,
		u.SubscriptionActive, u.SubscriptionExpiresAt, u.ActivationCodeID,
		u.RegisteredAt, u.LastActiveAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *PostgresUserRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	q := `SELECT` + userColumns + ` FROM users WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanUser(row)
}

func (r *PostgresUserRepo) FindByEmail(ctx context.Context, tx repository.Tx, email string) (*model.User, error) {
	q := `SELECT` + userColumns + ` FROM users WHERE email=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, email)
	if err != nil {
		return nil, err
	}
	return scanUser(row)
}

// List filters users by their entitlement-relevant state. The filter is
// translated to SQL over the same fields the evaluator reads, so listings
// agree with per-user status queries.
func (r *PostgresUserRepo) List(ctx context.Context, tx repository.Tx, filter repository.UserFilter, offset, limit int) ([]*model.User, error) {
	where := ""
	switch filter {
	case repository.UserFilterValid:
		where = `WHERE subscription_expires_at > NOW() AND NOT banned AND subscription_active`
	case repository.UserFilterExpired:
		where = `WHERE subscription_expires_at IS NOT NULL AND subscription_expires_at <= NOW()`
	case repository.UserFilterBanned:
		where = `WHERE banned OR NOT subscription_active`
	case repository.UserFilterNone:
		where = `WHERE subscription_expires_at IS NULL`
	case repository.UserFilterAll, "":
	default:
		return nil, domain.ErrInvalidArgument
	}

	q := fmt.Sprintf(`SELECT%s FROM users %s ORDER BY registered_at DESC OFFSET $1 LIMIT $2;`, userColumns, where)
	rows, err := queryRows(ctx, r.pool, tx, q, offset, limit)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	var out []*model.User
	for rows.Next() {
		u, err := scanUserRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}

func (r *PostgresUserRepo) CountUsers(ctx context.Context, tx repository.Tx) (int, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT COUNT(*) FROM users;`)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

// UpdateSubscription touches only the redemption-owned columns so a
// concurrent admin override on subscription_active is never clobbered.
func (r *PostgresUserRepo) UpdateSubscription(ctx context.Context, tx repository.Tx, userID string, expiresAt time.Time, codeID string) error {
	const q = `
UPDATE users
   SET subscription_expires_at = $2, activation_code_id = $3
 WHERE id = $1;
`
	tag, err := execSQL(ctx, r.pool, tx, q, userID, expiresAt, codeID)
	if err != nil {
		return domain.ErrOperationFailed
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *PostgresUserRepo) SetSubscriptionActive(ctx context.Context, tx repository.Tx, userID string, active bool) error {
	const q = `UPDATE users SET subscription_active = $2 WHERE id = $1;`
	tag, err := execSQL(ctx, r.pool, tx, q, userID, active)
	if err != nil {
		return domain.ErrOperationFailed
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(
		&u.ID, &u.Email, &u.Username, &u.IsAdmin, &u.Banned,
		&u.SubscriptionActive, &u.SubscriptionExpiresAt, &u.ActivationCodeID,
		&u.RegisteredAt, &u.LastActiveAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return &u, nil
}

func scanUserRows(rows pgx.Rows) (*model.User, error) {
	var u model.User
	err := rows.Scan(
		&u.ID, &u.Email, &u.Username, &u.IsAdmin, &u.Banned,
		&u.SubscriptionActive, &u.SubscriptionExpiresAt, &u.ActivationCodeID,
		&u.RegisteredAt, &u.LastActiveAt,
	)
	if err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return &u, nil
}
