package model

import (
	"strings"
	"time"

	"pure-resume/internal/domain"
)

// ActivationCode represents a single-use code that, once redeemed, extends
// the redeeming user's subscription window by the fixed grant period.
type ActivationCode struct {
	ID               string
	Code             string
	CreatedAt        time.Time
	ExpiresAt        time.Time  // redemption deadline, not the granted period
	RedeemedByUserID *string    // Pointer to allow for NULL
	RedeemedAt       *time.Time // Pointer to allow for NULL

	// Redeemer identity, filled only by listing queries that join users.
	RedeemedByEmail    *string
	RedeemedByUsername *string
}

// CodeAlphabet is the restricted, case-insensitive symbol set used for
// activation codes. Visually ambiguous characters (0/O, 1/I/L) are excluded.
const CodeAlphabet = "23456789ABCDEFGHJKMNPQRSTUVWXYZ"

// Code layout: 5 groups of 5 symbols joined by hyphens.
const (
	codeGroupLen  = 5
	codeGroups    = 5
	CodeRawLength = codeGroupLen * codeGroups
)

func (c *ActivationCode) IsRedeemed() bool { return c.RedeemedByUserID != nil }

// RedeemableAt reports whether the code can still be consumed at the given
// instant: never redeemed and the redemption deadline has not passed.
func (c *ActivationCode) RedeemableAt(now time.Time) bool {
	return !c.IsRedeemed() && c.ExpiresAt.After(now)
}

// NormalizeCode canonicalizes user-supplied code input. Hyphens and
// whitespace are stripped and letters uppercased; exactly 25 symbols must
// remain, all drawn from the code alphabet, and hyphens are re-inserted
// every 5 symbols. Canonical input normalizes to itself.
func NormalizeCode(raw string) (string, error) {
	var b strings.Builder
	b.Grow(CodeRawLength)
	for _, r := range strings.ToUpper(raw) {
		switch {
		case r == '-' || r == ' ' || r == '\t':
			continue
		case strings.ContainsRune(CodeAlphabet, r):
			b.WriteRune(r)
		default:
			return "", domain.ErrCodeFormat
		}
	}
	stripped := b.String()
	if len(stripped) != CodeRawLength {
		return "", domain.ErrCodeFormat
	}
	groups := make([]string, 0, codeGroups)
	for i := 0; i < CodeRawLength; i += codeGroupLen {
		groups = append(groups, stripped[i:i+codeGroupLen])
	}
	return strings.Join(groups, "-"), nil
}
