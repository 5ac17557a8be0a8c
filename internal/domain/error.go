package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrAlreadyExists      = errors.New("entity already exists")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInvalidOperation   = errors.New("operation not permitted on this target")
	ErrUnauthorized       = errors.New("caller is not authorized")
	ErrForbidden          = errors.New("caller is forbidden from this action")
	ErrRateLimited        = errors.New("too many attempts, slow down")
	ErrOperationFailed    = errors.New("storage operation failed")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
	ErrInvalidExecContext = errors.New("invalid executor context")

	// Activation code errors
	ErrCodeFormat      = errors.New("activation code is malformed")
	ErrCodeNotFound    = errors.New("activation code not found")
	ErrCodeAlreadyUsed = errors.New("activation code already used")
	ErrCodeExpired     = errors.New("activation code redemption deadline passed")

	// Entitlement errors
	ErrSubscriptionRequired = errors.New("no subscription on record")
	ErrSubscriptionExpired  = errors.New("subscription has expired")
	ErrAccountBanned        = errors.New("account is banned")
)

// Stable machine-readable codes surfaced at the API boundary. Clients
// branch on these instead of matching message prose.
const (
	CodeCodeFormat           = "CODE_FORMAT"
	CodeCodeNotFound         = "CODE_NOT_FOUND"
	CodeCodeAlreadyUsed      = "CODE_ALREADY_USED"
	CodeCodeExpired          = "CODE_EXPIRED"
	CodeSubscriptionRequired = "SUBSCRIPTION_REQUIRED"
	CodeSubscriptionExpired  = "SUBSCRIPTION_EXPIRED"
	CodeAccountBanned        = "ACCOUNT_BANNED"
	CodeInvalidArgument      = "INVALID_ARGUMENT"
	CodeUnauthorized         = "UNAUTHORIZED"
	CodeForbidden            = "FORBIDDEN"
	CodeInvalidOperation     = "INVALID_OPERATION"
	CodeNotFound             = "NOT_FOUND"
	CodeRateLimited          = "RATE_LIMITED"
	CodeInternal             = "INTERNAL"
)

// ReasonCode maps a domain error to its stable API code. Unknown errors
// map to CodeInternal; callers must not leak their detail to clients.
func ReasonCode(err error) string {
	switch {
	case errors.Is(err, ErrCodeFormat):
		return CodeCodeFormat
	case errors.Is(err, ErrCodeNotFound):
		return CodeCodeNotFound
	case errors.Is(err, ErrCodeAlreadyUsed):
		return CodeCodeAlreadyUsed
	case errors.Is(err, ErrCodeExpired):
		return CodeCodeExpired
	case errors.Is(err, ErrSubscriptionRequired):
		return CodeSubscriptionRequired
	case errors.Is(err, ErrSubscriptionExpired):
		return CodeSubscriptionExpired
	case errors.Is(err, ErrAccountBanned):
		return CodeAccountBanned
	case errors.Is(err, ErrInvalidArgument):
		return CodeInvalidArgument
	case errors.Is(err, ErrUnauthorized):
		return CodeUnauthorized
	case errors.Is(err, ErrForbidden):
		return CodeForbidden
	case errors.Is(err, ErrInvalidOperation):
		return CodeInvalidOperation
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrUserNotFound):
		return CodeNotFound
	case errors.Is(err, ErrRateLimited):
		return CodeRateLimited
	default:
		return CodeInternal
	}
}
