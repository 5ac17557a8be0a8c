package repository

import (
	"context"
	"time"

	"pure-resume/internal/domain/model"
)

// UserFilter selects users by their current entitlement-relevant state for
// admin listings.
type UserFilter string

const (
	UserFilterAll     UserFilter = "all"
	UserFilterValid   UserFilter = "valid"
	UserFilterExpired UserFilter = "expired"
	UserFilterBanned  UserFilter = "banned"
	UserFilterNone    UserFilter = "none"
)

type UserRepository interface {
	Save(ctx context.Context, tx Tx, u *model.User) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.User, error)
	FindByEmail(ctx context.Context, tx Tx, email string) (*model.User, error)
	List(ctx context.Context, tx Tx, filter UserFilter, offset, limit int) ([]*model.User, error)
	CountUsers(ctx context.Context, tx Tx) (int, error)

	// UpdateSubscription writes only the redemption-owned columns (expiry and
	// attached code) so a concurrent admin override cannot be clobbered.
	UpdateSubscription(ctx context.Context, tx Tx, userID string, expiresAt time.Time, codeID string) error

	// SetSubscriptionActive writes only the admin override column.
	SetSubscriptionActive(ctx context.Context, tx Tx, userID string, active bool) error
}
