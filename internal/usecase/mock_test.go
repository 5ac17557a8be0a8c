//go:build !integration

package usecase_test

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"pure-resume/internal/domain"
	"pure-resume/internal/domain/model"
	"pure-resume/internal/domain/ports/repository"
)

// -----------------------------
// Utilities: tiny helpers
// -----------------------------

func now() time.Time { return time.Now().Truncate(time.Millisecond) }

func ptrTime(t time.Time) *time.Time { return &t }

func ptrStr(s string) *string { return &s }

// newTestLogger creates a silent zerolog.Logger for use in tests.
// It writes to io.Discard to prevent logs from cluttering test output.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

// =============================
// Repositories
// =============================

// ---- Mock UserRepository ----

type MockUserRepo struct {
	mu   sync.Mutex
	byID map[string]*model.User

	SaveFunc                  func(ctx context.Context, tx repository.Tx, u *model.User) error
	FindByIDFunc              func(ctx context.Context, tx repository.Tx, id string) (*model.User, error)
	FindByEmailFunc           func(ctx context.Context, tx repository.Tx, email string) (*model.User, error)
	ListFunc                  func(ctx context.Context, tx repository.Tx, filter repository.UserFilter, offset, limit int) ([]*model.User, error)
	CountUsersFunc            func(ctx context.Context, tx repository.Tx) (int, error)
	UpdateSubscriptionFunc    func(ctx context.Context, tx repository.Tx, userID string, expiresAt time.Time, codeID string) error
	SetSubscriptionActiveFunc func(ctx context.Context, tx repository.Tx, userID string, active bool) error
}

var _ repository.UserRepository = (*MockUserRepo)(nil)

func NewMockUserRepo() *MockUserRepo {
	return &MockUserRepo{byID: map[string]*model.User{}}
}

func (r *MockUserRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	if r.SaveFunc != nil {
		return r.SaveFunc(ctx, tx, u)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *u
	if cp.ID == "" {
		cp.ID = uuid.NewString()
	}
	r.byID[cp.ID] = &cp
	return nil
}

func (r *MockUserRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	if r.FindByIDFunc != nil {
		return r.FindByIDFunc(ctx, tx, id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.byID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *MockUserRepo) FindByEmail(ctx context.Context, tx repository.Tx, email string) (*model.User, error) {
	if r.FindByEmailFunc != nil {
		return r.FindByEmailFunc(ctx, tx, email)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *MockUserRepo) List(ctx context.Context, tx repository.Tx, filter repository.UserFilter, offset, limit int) ([]*model.User, error) {
	if r.ListFunc != nil {
		return r.ListFunc(ctx, tx, filter, offset, limit)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.User, 0, len(r.byID))
	for _, u := range r.byID {
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

func (r *MockUserRepo) CountUsers(ctx context.Context, tx repository.Tx) (int, error) {
	if r.CountUsersFunc != nil {
		return r.CountUsersFunc(ctx, tx)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID), nil
}

func (r *MockUserRepo) UpdateSubscription(ctx context.Context, tx repository.Tx, userID string, expiresAt time.Time, codeID string) error {
	if r.UpdateSubscriptionFunc != nil {
		return r.UpdateSubscriptionFunc(ctx, tx, userID, expiresAt, codeID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	exp := expiresAt
	cid := codeID
	u.SubscriptionExpiresAt = &exp
	u.ActivationCodeID = &cid
	return nil
}

func (r *MockUserRepo) SetSubscriptionActive(ctx context.Context, tx repository.Tx, userID string, active bool) error {
	if r.SetSubscriptionActiveFunc != nil {
		return r.SetSubscriptionActiveFunc(ctx, tx, userID, active)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.SubscriptionActive = active
	return nil
}

// ---- Mock ActivationCodeRepository ----

type MockActivationCodeRepo struct {
	mu     sync.Mutex
	byID   map[string]*model.ActivationCode
	byCode map[string]*model.ActivationCode

	CreateFunc       func(ctx context.Context, tx repository.Tx, code *model.ActivationCode) error
	FindByCodeFunc   func(ctx context.Context, tx repository.Tx, code string) (*model.ActivationCode, error)
	FindByIDFunc     func(ctx context.Context, tx repository.Tx, id string) (*model.ActivationCode, error)
	ListAllFunc      func(ctx context.Context, tx repository.Tx, offset, limit int) ([]*model.ActivationCode, error)
	MarkRedeemedFunc func(ctx context.Context, tx repository.Tx, codeID, userID string, at time.Time) error
	ReleaseFunc      func(ctx context.Context, tx repository.Tx, codeID string) error

	Released []string
}

var _ repository.ActivationCodeRepository = (*MockActivationCodeRepo)(nil)

func NewMockActivationCodeRepo() *MockActivationCodeRepo {
	return &MockActivationCodeRepo{
		byID:   map[string]*model.ActivationCode{},
		byCode: map[string]*model.ActivationCode{},
	}
}

func (r *MockActivationCodeRepo) Create(ctx context.Context, tx repository.Tx, code *model.ActivationCode) error {
	if r.CreateFunc != nil {
		return r.CreateFunc(ctx, tx, code)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byCode[code.Code]; ok {
		return domain.ErrAlreadyExists
	}
	cp := *code
	r.byID[cp.ID] = &cp
	r.byCode[cp.Code] = &cp
	return nil
}

func (r *MockActivationCodeRepo) FindByCode(ctx context.Context, tx repository.Tx, code string) (*model.ActivationCode, error) {
	if r.FindByCodeFunc != nil {
		return r.FindByCodeFunc(ctx, tx, code)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.byCode[code]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, domain.ErrCodeNotFound
}

func (r *MockActivationCodeRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.ActivationCode, error) {
	if r.FindByIDFunc != nil {
		return r.FindByIDFunc(ctx, tx, id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.byID[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, domain.ErrCodeNotFound
}

func (r *MockActivationCodeRepo) ListAll(ctx context.Context, tx repository.Tx, offset, limit int) ([]*model.ActivationCode, error) {
	if r.ListAllFunc != nil {
		return r.ListAllFunc(ctx, tx, offset, limit)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.ActivationCode, 0, len(r.byID))
	for _, c := range r.byID {
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}

func (r *MockActivationCodeRepo) MarkRedeemed(ctx context.Context, tx repository.Tx, codeID, userID string, at time.Time) error {
	if r.MarkRedeemedFunc != nil {
		return r.MarkRedeemedFunc(ctx, tx, codeID, userID, at)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[codeID]
	if !ok {
		return domain.ErrCodeNotFound
	}
	if c.RedeemedByUserID != nil {
		return domain.ErrCodeAlreadyUsed
	}
	uid := userID
	ts := at
	c.RedeemedByUserID = &uid
	c.RedeemedAt = &ts
	r.byCode[c.Code] = c
	return nil
}

func (r *MockActivationCodeRepo) Release(ctx context.Context, tx repository.Tx, codeID string) error {
	if r.ReleaseFunc != nil {
		return r.ReleaseFunc(ctx, tx, codeID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Released = append(r.Released, codeID)
	if c, ok := r.byID[codeID]; ok {
		c.RedeemedByUserID = nil
		c.RedeemedAt = nil
	}
	return nil
}

// ---- Mock SubscriptionRepository ----

type MockSubscriptionRepo struct {
	mu      sync.Mutex
	Records []*model.SubscriptionRecord

	AppendFunc     func(ctx context.Context, tx repository.Tx, rec *model.SubscriptionRecord) error
	ListByUserFunc func(ctx context.Context, tx repository.Tx, userID string) ([]*model.SubscriptionRecord, error)
}

var _ repository.SubscriptionRepository = (*MockSubscriptionRepo)(nil)

func NewMockSubscriptionRepo() *MockSubscriptionRepo {
	return &MockSubscriptionRepo{}
}

func (r *MockSubscriptionRepo) Append(ctx context.Context, tx repository.Tx, rec *model.SubscriptionRecord) error {
	if r.AppendFunc != nil {
		return r.AppendFunc(ctx, tx, rec)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *rec
	r.Records = append(r.Records, &cp)
	return nil
}

func (r *MockSubscriptionRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.SubscriptionRecord, error) {
	if r.ListByUserFunc != nil {
		return r.ListByUserFunc(ctx, tx, userID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.SubscriptionRecord, 0)
	for _, rec := range r.Records {
		if rec.UserID == userID {
			cp := *rec
			out = append(out, &cp)
		}
	}
	return out, nil
}

// ---- Mock ResumeRepository ----

type MockResumeRepo struct {
	mu   sync.Mutex
	byID map[string]*model.Resume

	SaveFunc       func(ctx context.Context, tx repository.Tx, res *model.Resume) error
	FindByIDFunc   func(ctx context.Context, tx repository.Tx, id string) (*model.Resume, error)
	ListByUserFunc func(ctx context.Context, tx repository.Tx, userID string) ([]*model.Resume, error)
	DeleteFunc     func(ctx context.Context, tx repository.Tx, id string) error
}

var _ repository.ResumeRepository = (*MockResumeRepo)(nil)

func NewMockResumeRepo() *MockResumeRepo {
	return &MockResumeRepo{byID: map[string]*model.Resume{}}
}

func (r *MockResumeRepo) Save(ctx context.Context, tx repository.Tx, res *model.Resume) error {
	if r.SaveFunc != nil {
		return r.SaveFunc(ctx, tx, res)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *res
	r.byID[cp.ID] = &cp
	return nil
}

func (r *MockResumeRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Resume, error) {
	if r.FindByIDFunc != nil {
		return r.FindByIDFunc(ctx, tx, id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if res, ok := r.byID[id]; ok {
		cp := *res
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r *MockResumeRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.Resume, error) {
	if r.ListByUserFunc != nil {
		return r.ListByUserFunc(ctx, tx, userID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.Resume, 0)
	for _, res := range r.byID {
		if res.UserID == userID {
			cp := *res
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *MockResumeRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	if r.DeleteFunc != nil {
		return r.DeleteFunc(ctx, tx, id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

// ---- Mock TransactionManager ----

type MockTxManager struct {
	WithTxFunc func(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error
}

func NewMockTxManager() *MockTxManager {
	return &MockTxManager{}
}

var _ repository.TransactionManager = (*MockTxManager)(nil)

// WithTx provides a way to control transaction behavior during tests.
// By default, it runs the function immediately without a real transaction.
func (m *MockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, txOpt, fn)
	}
	return fn(ctx, repository.NoTX)
}
