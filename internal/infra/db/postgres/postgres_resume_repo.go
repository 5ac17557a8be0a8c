package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"pure-resume/internal/domain"
	"pure-resume/internal/domain/model"
	"pure-resume/internal/domain/ports/repository"
)

var _ repository.ResumeRepository = (*resumeRepo)(nil)

type resumeRepo struct {
	pool *pgxpool.Pool
}

func NewResumeRepo(pool *pgxpool.Pool) *resumeRepo {
	return &resumeRepo{pool: pool}
}

func (r *resumeRepo) Save(ctx context.Context, tx repository.Tx, res *model.Resume) error {
	const q = `
INSERT INTO resumes (id, user_id, title, content, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6)
ON CONFLICT (id) DO UPDATE SET
  title=$3, content=$4, updated_at=$6;
`
	_, err := execSQL(ctx, r.pool, tx, q,
		res.ID, res.UserID, res.Title, res.Content, res.CreatedAt, res.UpdatedAt,
	)
	if err != nil {
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *resumeRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Resume, error) {
	const q = `
SELECT id, user_id, title, content, created_at, updated_at
  FROM resumes WHERE id=$1;
`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	var res model.Resume
	if err := row.Scan(&res.ID, &res.UserID, &res.Title, &res.Content, &res.CreatedAt, &res.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return &res, nil
}

func (r *resumeRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.Resume, error) {
	const q = `
SELECT id, user_id, title, content, created_at, updated_at
  FROM resumes
 WHERE user_id=$1
 ORDER BY updated_at DESC;
`
	rows, err := queryRows(ctx, r.pool, tx, q, userID)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	var out []*model.Resume
	for rows.Next() {
		var res model.Resume
		if err := rows.Scan(&res.ID, &res.UserID, &res.Title, &res.Content, &res.CreatedAt, &res.UpdatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, &res)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}

func (r *resumeRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	tag, err := execSQL(ctx, r.pool, tx, `DELETE FROM resumes WHERE id=$1;`, id)
	if err != nil {
		return domain.ErrOperationFailed
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
