//go:build !integration

package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"pure-resume/internal/domain/model"
	"pure-resume/internal/domain/ports/repository"
)

// --- Fakes ---

type fakeCache struct {
	mu    sync.Mutex
	store map[string]string
	onDel func(key string)
}

func newFakeCache() *fakeCache { return &fakeCache{store: map[string]string{}} }

func (f *fakeCache) Ping(ctx context.Context) error { return nil }

func (f *fakeCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch v := value.(type) {
	case []byte:
		f.store[key] = string(v)
	case string:
		f.store[key] = v
	}
	return nil
}

func (f *fakeCache) Get(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v, ok := f.store[key]; ok {
		return v, nil
	}
	return "", errors.New("redis: nil")
}

func (f *fakeCache) Incr(ctx context.Context, key string) (int64, error) { return 0, nil }

func (f *fakeCache) Expire(ctx context.Context, key string, ttl time.Duration) error { return nil }

func (f *fakeCache) Del(ctx context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.store, k)
		if f.onDel != nil {
			f.onDel(k)
		}
	}
	return nil
}

func (f *fakeCache) FlushDB(ctx context.Context) error { return nil }

func (f *fakeCache) Close() error { return nil }

func (f *fakeCache) seed(t *testing.T, key string, u *model.User) {
	t.Helper()
	bytes, err := json.Marshal(u)
	if err != nil {
		t.Fatalf("failed to marshal seed user: %v", err)
	}
	f.mu.Lock()
	f.store[key] = string(bytes)
	f.mu.Unlock()
}

type stubUserRepo struct {
	user *model.User

	FindByIDCalls    int
	FindByEmailCalls int

	SetActiveFunc func(ctx context.Context, tx repository.Tx, userID string, active bool) error
}

func (s *stubUserRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error { return nil }

func (s *stubUserRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	s.FindByIDCalls++
	return s.user, nil
}

func (s *stubUserRepo) FindByEmail(ctx context.Context, tx repository.Tx, email string) (*model.User, error) {
	s.FindByEmailCalls++
	return s.user, nil
}

func (s *stubUserRepo) List(ctx context.Context, tx repository.Tx, filter repository.UserFilter, offset, limit int) ([]*model.User, error) {
	return nil, nil
}

func (s *stubUserRepo) CountUsers(ctx context.Context, tx repository.Tx) (int, error) {
	return 0, nil
}

func (s *stubUserRepo) UpdateSubscription(ctx context.Context, tx repository.Tx, userID string, expiresAt time.Time, codeID string) error {
	return nil
}

func (s *stubUserRepo) SetSubscriptionActive(ctx context.Context, tx repository.Tx, userID string, active bool) error {
	if s.SetActiveFunc != nil {
		return s.SetActiveFunc(ctx, tx, userID, active)
	}
	return nil
}

// liveTx stands in for a pgx transaction handle; the decorator only ever
// compares it against NoTX.
type liveTx struct{}

func newDecorator(inner repository.UserRepository, cache *fakeCache) *userRepoCacheDecorator {
	return &userRepoCacheDecorator{
		inner:        inner,
		cache:        cache,
		ttl:          time.Hour,
		recacheDelay: 5 * time.Millisecond,
	}
}

// --- Tests ---

func TestUserRepoCacheDecorator_Reads(t *testing.T) {
	ctx := context.Background()

	freshExpiry := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second)
	fresh := &model.User{
		ID:                    "u1",
		Email:                 "jane@example.com",
		SubscriptionActive:    true,
		SubscriptionExpiresAt: &freshExpiry,
	}
	stale := &model.User{ID: "u1", Email: "jane@example.com", SubscriptionActive: true}

	t.Run("should bypass the cache when a transaction handle is supplied", func(t *testing.T) {
		cache := newFakeCache()
		cache.seed(t, userIDKey("u1"), stale)
		inner := &stubUserRepo{user: fresh}
		repo := newDecorator(inner, cache)

		got, err := repo.FindByID(ctx, liveTx{}, "u1")

		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if inner.FindByIDCalls != 1 {
			t.Fatalf("expected the inner repo to serve the read, calls=%d", inner.FindByIDCalls)
		}
		if got.SubscriptionExpiresAt == nil {
			t.Error("got the stale cached snapshot instead of the transaction's view")
		}
	})

	t.Run("should bypass the cache on FindByEmail inside a transaction", func(t *testing.T) {
		cache := newFakeCache()
		cache.seed(t, userEmailKey("jane@example.com"), stale)
		inner := &stubUserRepo{user: fresh}
		repo := newDecorator(inner, cache)

		got, err := repo.FindByEmail(ctx, liveTx{}, "jane@example.com")

		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if inner.FindByEmailCalls != 1 {
			t.Fatalf("expected the inner repo to serve the read, calls=%d", inner.FindByEmailCalls)
		}
		if got.SubscriptionExpiresAt == nil {
			t.Error("got the stale cached snapshot instead of the transaction's view")
		}
	})

	t.Run("should serve repeat non-transactional reads from the cache", func(t *testing.T) {
		cache := newFakeCache()
		inner := &stubUserRepo{user: fresh}
		repo := newDecorator(inner, cache)

		if _, err := repo.FindByID(ctx, repository.NoTX, "u1"); err != nil {
			t.Fatalf("warming read failed: %v", err)
		}
		if _, err := repo.FindByID(ctx, repository.NoTX, "u1"); err != nil {
			t.Fatalf("cached read failed: %v", err)
		}

		if inner.FindByIDCalls != 1 {
			t.Errorf("expected exactly one inner read, got %d", inner.FindByIDCalls)
		}
	})

	t.Run("should not warm the cache from a transactional read", func(t *testing.T) {
		cache := newFakeCache()
		inner := &stubUserRepo{user: fresh}
		repo := newDecorator(inner, cache)

		if _, err := repo.FindByID(ctx, liveTx{}, "u1"); err != nil {
			t.Fatalf("transactional read failed: %v", err)
		}

		if _, err := cache.Get(ctx, userIDKey("u1")); err == nil {
			t.Error("transactional read must not leave an uncommitted row in the cache")
		}
	})
}

func TestUserRepoCacheDecorator_WriteInvalidation(t *testing.T) {
	ctx := context.Background()
	user := &model.User{ID: "u1", Email: "jane@example.com", SubscriptionActive: true}

	t.Run("should invalidate only after the inner write succeeded", func(t *testing.T) {
		cache := newFakeCache()
		cache.seed(t, userIDKey("u1"), user)
		inner := &stubUserRepo{user: user}
		repo := newDecorator(inner, cache)

		var order []string
		cache.onDel = func(key string) { order = append(order, "del") }
		inner.SetActiveFunc = func(ctx context.Context, tx repository.Tx, userID string, active bool) error {
			order = append(order, "write")
			return nil
		}

		if err := repo.SetSubscriptionActive(ctx, repository.NoTX, "u1", false); err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}

		if len(order) < 2 || order[0] != "write" {
			t.Errorf("expected the write to precede invalidation, got %v", order)
		}
	})

	t.Run("should keep the cache entry when the inner write fails", func(t *testing.T) {
		cache := newFakeCache()
		cache.seed(t, userIDKey("u1"), user)
		inner := &stubUserRepo{user: user}
		inner.SetActiveFunc = func(ctx context.Context, tx repository.Tx, userID string, active bool) error {
			return errors.New("write failed")
		}
		repo := newDecorator(inner, cache)

		if err := repo.SetSubscriptionActive(ctx, repository.NoTX, "u1", false); err == nil {
			t.Fatal("expected the inner error to propagate")
		}
		if _, err := cache.Get(ctx, userIDKey("u1")); err != nil {
			t.Error("a failed write must not drop the cached entry")
		}
	})

	t.Run("should clear an entry re-cached before the transaction committed", func(t *testing.T) {
		cache := newFakeCache()
		inner := &stubUserRepo{user: user}
		repo := newDecorator(inner, cache)

		if err := repo.SetSubscriptionActive(ctx, liveTx{}, "u1", false); err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		// A concurrent miss lands between our Del and the commit and
		// re-caches the pre-commit row.
		cache.seed(t, userIDKey("u1"), user)

		deadline := time.Now().Add(time.Second)
		for {
			if _, err := cache.Get(ctx, userIDKey("u1")); err != nil {
				break
			}
			if time.Now().After(deadline) {
				t.Fatal("expected the delayed invalidation to clear the re-cached entry")
			}
			time.Sleep(time.Millisecond)
		}
	})

	t.Run("should not schedule a delayed pass for non-transactional writes", func(t *testing.T) {
		cache := newFakeCache()
		inner := &stubUserRepo{user: user}
		repo := newDecorator(inner, cache)

		if err := repo.SetSubscriptionActive(ctx, repository.NoTX, "u1", false); err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		// The direct invalidation already ran; a refill now must survive.
		cache.seed(t, userIDKey("u1"), user)
		time.Sleep(20 * time.Millisecond)

		if _, err := cache.Get(ctx, userIDKey("u1")); err != nil {
			t.Error("non-transactional write must not clear later refills")
		}
	})
}
