package model

import (
	"time"
)

type EntitlementState string

const (
	EntitlementNone    EntitlementState = "none"
	EntitlementExpired EntitlementState = "expired"
	EntitlementValid   EntitlementState = "valid"
)

// Entitlement is the computed permission to perform gated actions.
// DaysLeft is nil when there is no subscription on record, so clients can
// tell "never redeemed" from "expired just now" without consulting State.
type Entitlement struct {
	Valid     bool
	State     EntitlementState
	ExpiresAt *time.Time
	DaysLeft  *int
}

// EvaluateEntitlement maps a user's persisted subscription fields to a
// semantic entitlement. Deterministic, no side effects.
//
// State is always derived from the expiry timestamp so that a banned or
// admin-disabled user still sees their real window in status displays. Both
// veto flags compose by AND with the expiry-derived validity: a user is
// entitled only when expiry-valid, not admin-disabled, and not banned.
func EvaluateEntitlement(u *User, now time.Time) Entitlement {
	e := Entitlement{State: EntitlementNone}
	switch {
	case u.SubscriptionExpiresAt == nil:
		// never redeemed, DaysLeft stays nil
	case !u.SubscriptionExpiresAt.After(now):
		e.State = EntitlementExpired
		e.ExpiresAt = u.SubscriptionExpiresAt
		e.DaysLeft = new(int)
	default:
		e.State = EntitlementValid
		e.ExpiresAt = u.SubscriptionExpiresAt
		e.Valid = true
		d := DaysUntil(*u.SubscriptionExpiresAt, now)
		e.DaysLeft = &d
	}
	if u.Banned || !u.SubscriptionActive {
		e.Valid = false
		if e.DaysLeft != nil {
			e.DaysLeft = new(int)
		}
	}
	return e
}

// DaysUntil is ceil(remaining / 24h); a window of any positive length
// counts as at least one day.
func DaysUntil(expiresAt, now time.Time) int {
	remaining := expiresAt.Sub(now)
	if remaining <= 0 {
		return 0
	}
	const day = 24 * time.Hour
	d := int(remaining / day)
	if remaining%day > 0 {
		d++
	}
	return d
}
