package model

import (
	"time"

	"pure-resume/internal/domain"

	"github.com/google/uuid"
)

// User is a domain entity representing a registered account. Only the
// subscription-relevant subset of the profile lives here; credentials and
// login flows are owned by the auth collaborator.
type User struct {
	ID       string
	Email    string
	Username string
	IsAdmin  bool
	Banned   bool

	// SubscriptionActive is the admin override switch. It defaults to true
	// and is flipped only by the admin ban/unban action; it never touches
	// SubscriptionExpiresAt, so re-enabling restores the prior entitlement.
	SubscriptionActive bool

	// SubscriptionExpiresAt is nil for users who never redeemed a code.
	SubscriptionExpiresAt *time.Time

	// ActivationCodeID is the code currently attached to this user, if any.
	// Bookkeeping only; entitlement math reads SubscriptionExpiresAt.
	ActivationCodeID *string

	RegisteredAt time.Time
	LastActiveAt time.Time
}

func NewUser(id, email, username string) (*User, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if email == "" || username == "" {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &User{
		ID:                 id,
		Email:              email,
		Username:           username,
		SubscriptionActive: true,
		RegisteredAt:       now,
		LastActiveAt:       now,
	}, nil
}

func (u *User) IsZero() bool { return u == nil || u.ID == "" }
func (u *User) Touch()       { u.LastActiveAt = time.Now() }
