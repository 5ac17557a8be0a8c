package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"pure-resume/internal/domain/model"
	"pure-resume/internal/domain/ports/repository"
	"pure-resume/internal/infra/metrics"
	red "pure-resume/internal/infra/redis"
)

var _ repository.UserRepository = (*userRepoCacheDecorator)(nil)

type userRepoCacheDecorator struct {
	inner repository.UserRepository
	cache red.RedisClient
	ttl   time.Duration

	// Delay before the second invalidation pass after a transactional
	// write. A concurrent cache miss between our Del and the caller's
	// commit can re-cache the pre-commit row; the delayed pass clears it.
	recacheDelay time.Duration
}

func NewUserRepoCacheDecorator(inner repository.UserRepository, cache red.RedisClient, ttl time.Duration) repository.UserRepository {
	if ttl <= 0 {
		ttl = 1 * time.Hour
	}
	return &userRepoCacheDecorator{
		inner:        inner,
		cache:        cache,
		ttl:          ttl,
		recacheDelay: 3 * time.Second,
	}
}

func userIDKey(id string) string { return fmt.Sprintf("user:id:%s", id) }

func userEmailKey(email string) string { return fmt.Sprintf("user:email:%s", email) }

// Write operations invalidate every key the user may be cached under, and
// only after the inner write so a failed write cannot drop a good entry
// for nothing. Transactional writes get a delayed second pass, since the
// commit happens after we return.
func (d *userRepoCacheDecorator) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	if err := d.inner.Save(ctx, tx, u); err != nil {
		return err
	}
	_ = d.cache.Del(ctx, userIDKey(u.ID))
	_ = d.cache.Del(ctx, userEmailKey(u.Email))
	d.invalidateAfterCommit(tx, u.ID)
	return nil
}

func (d *userRepoCacheDecorator) UpdateSubscription(ctx context.Context, tx repository.Tx, userID string, expiresAt time.Time, codeID string) error {
	if err := d.inner.UpdateSubscription(ctx, tx, userID, expiresAt, codeID); err != nil {
		return err
	}
	d.invalidate(ctx, userID)
	d.invalidateAfterCommit(tx, userID)
	return nil
}

func (d *userRepoCacheDecorator) SetSubscriptionActive(ctx context.Context, tx repository.Tx, userID string, active bool) error {
	if err := d.inner.SetSubscriptionActive(ctx, tx, userID, active); err != nil {
		return err
	}
	d.invalidate(ctx, userID)
	d.invalidateAfterCommit(tx, userID)
	return nil
}

// invalidate needs the email key too, so it resolves the cached copy first.
func (d *userRepoCacheDecorator) invalidate(ctx context.Context, userID string) {
	if val, err := d.cache.Get(ctx, userIDKey(userID)); err == nil {
		var u model.User
		if json.Unmarshal([]byte(val), &u) == nil {
			_ = d.cache.Del(ctx, userEmailKey(u.Email))
		}
	}
	_ = d.cache.Del(ctx, userIDKey(userID))
}

// invalidateAfterCommit schedules a second invalidation for writes made
// inside a transaction. The request context may be gone by then, so the
// pass runs on the background context.
func (d *userRepoCacheDecorator) invalidateAfterCommit(tx repository.Tx, userID string) {
	if tx == repository.NoTX {
		return
	}
	time.AfterFunc(d.recacheDelay, func() {
		d.invalidate(context.Background(), userID)
	})
}

// Reads carrying a live transaction handle must see the transaction's own
// view of the row, never a cached snapshot, so they delegate straight to
// the inner repo and skip the cache fill.
func (d *userRepoCacheDecorator) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	if tx != repository.NoTX {
		metrics.IncCacheRequest("user", "bypass")
		return d.inner.FindByID(ctx, tx, id)
	}

	key := userIDKey(id)
	if val, err := d.cache.Get(ctx, key); err == nil {
		metrics.IncCacheRequest("user", "hit")
		var user model.User
		if json.Unmarshal([]byte(val), &user) == nil {
			return &user, nil
		}
	}

	metrics.IncCacheRequest("user", "miss")
	user, err := d.inner.FindByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if user != nil {
		bytes, _ := json.Marshal(user)
		_ = d.cache.Set(ctx, key, bytes, d.ttl)
		_ = d.cache.Set(ctx, userEmailKey(user.Email), bytes, d.ttl)
	}
	return user, nil
}

func (d *userRepoCacheDecorator) FindByEmail(ctx context.Context, tx repository.Tx, email string) (*model.User, error) {
	if tx != repository.NoTX {
		metrics.IncCacheRequest("user", "bypass")
		return d.inner.FindByEmail(ctx, tx, email)
	}

	key := userEmailKey(email)
	if val, err := d.cache.Get(ctx, key); err == nil {
		metrics.IncCacheRequest("user", "hit")
		var user model.User
		if json.Unmarshal([]byte(val), &user) == nil {
			return &user, nil
		}
	}

	metrics.IncCacheRequest("user", "miss")
	user, err := d.inner.FindByEmail(ctx, tx, email)
	if err != nil {
		return nil, err
	}
	if user != nil {
		// Warm both keys so a follow-up FindByID hits.
		bytes, _ := json.Marshal(user)
		_ = d.cache.Set(ctx, key, bytes, d.ttl)
		_ = d.cache.Set(ctx, userIDKey(user.ID), bytes, d.ttl)
	}
	return user, nil
}

// Pass-through methods that don't need caching.
func (d *userRepoCacheDecorator) CountUsers(ctx context.Context, tx repository.Tx) (int, error) {
	return d.inner.CountUsers(ctx, tx)
}

func (d *userRepoCacheDecorator) List(ctx context.Context, tx repository.Tx, filter repository.UserFilter, offset, limit int) ([]*model.User, error) {
	metrics.IncCacheRequest("user_list", "bypass")
	return d.inner.List(ctx, tx, filter, offset, limit)
}
