package model

import (
	"crypto/rand"
	"time"

	"pure-resume/internal/domain"

	"github.com/oklog/ulid/v2"
)

// GrantPeriodMonths is the fixed subscription extension applied by every
// successful redemption, independent of the code's own redemption deadline.
const GrantPeriodMonths = 3

type SubscriptionStatus string

const (
	SubscriptionStatusActive  SubscriptionStatus = "active"
	SubscriptionStatusExpired SubscriptionStatus = "expired"
)

// SubscriptionRecord is one row of the append-only redemption ledger. A
// record is written once per successful redemption and never mutated;
// display status is derived live from ExpiresAt.
type SubscriptionRecord struct {
	ID               string // ULID, lexically sortable by creation time
	UserID           string
	ActivationCodeID string
	StartAt          time.Time
	ExpiresAt        time.Time
	CreatedAt        time.Time
}

// NewSubscriptionRecord builds a ledger entry for a redemption event.
func NewSubscriptionRecord(userID, codeID string, startAt, expiresAt time.Time) (*SubscriptionRecord, error) {
	if userID == "" || codeID == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &SubscriptionRecord{
		ID:               ulid.MustNew(ulid.Timestamp(startAt), rand.Reader).String(),
		UserID:           userID,
		ActivationCodeID: codeID,
		StartAt:          startAt,
		ExpiresAt:        expiresAt,
		CreatedAt:        startAt,
	}, nil
}

// Status derives the display status from the record's expiry.
func (r *SubscriptionRecord) Status(now time.Time) SubscriptionStatus {
	if r.ExpiresAt.After(now) {
		return SubscriptionStatusActive
	}
	return SubscriptionStatusExpired
}

// NextExpiry computes the expiry a redemption at `now` grants: stacking on
// top of a still-valid current expiry, or a fresh grant from `now` when the
// user has no subscription or it already lapsed. Lapsed time is not carried
// forward.
func NextExpiry(current *time.Time, now time.Time) time.Time {
	if current != nil && current.After(now) {
		return current.AddDate(0, GrantPeriodMonths, 0)
	}
	return now.AddDate(0, GrantPeriodMonths, 0)
}
