package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"pure-resume/internal/domain"
	"pure-resume/internal/infra/logging"
	"pure-resume/internal/usecase"
)

// errorBody is the payload inside the stable error envelope. The optional
// entitlement fields are set only for save-gate rejections so the client
// can render an actionable message.
type errorBody struct {
	Code           string     `json:"code"`
	Message        string     `json:"message"`
	State          string     `json:"state,omitempty"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	AllowedActions []string   `json:"allowed_actions,omitempty"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeDomainError maps a domain error to the envelope. Unknown errors are
// logged with context and surfaced as an opaque INTERNAL.
func writeDomainError(w http.ResponseWriter, r *http.Request, logger *zerolog.Logger, err error) {
	code := domain.ReasonCode(err)

	body := errorBody{Code: code, Message: err.Error()}
	if code == domain.CodeInternal {
		l := logging.With(r.Context(), logger)
		l.Error().Err(err).Str("path", r.URL.Path).Msg("unhandled domain error")
		body.Message = "internal error"
	}

	var gate *usecase.GateError
	if errors.As(err, &gate) {
		body.State = string(gate.State)
		body.ExpiresAt = gate.ExpiresAt
		body.AllowedActions = gate.Allowed
	}

	writeJSON(w, httpStatus(code), errorEnvelope{Error: body})
}

func writeErrorCode(w http.ResponseWriter, code, message string) {
	writeJSON(w, httpStatus(code), errorEnvelope{Error: errorBody{Code: code, Message: message}})
}

func httpStatus(code string) int {
	switch code {
	case domain.CodeCodeFormat, domain.CodeInvalidArgument:
		return http.StatusBadRequest
	case domain.CodeCodeNotFound, domain.CodeNotFound:
		return http.StatusNotFound
	case domain.CodeCodeAlreadyUsed:
		return http.StatusConflict
	case domain.CodeCodeExpired:
		return http.StatusGone
	case domain.CodeSubscriptionRequired, domain.CodeSubscriptionExpired:
		return http.StatusPaymentRequired
	case domain.CodeAccountBanned, domain.CodeForbidden:
		return http.StatusForbidden
	case domain.CodeUnauthorized:
		return http.StatusUnauthorized
	case domain.CodeInvalidOperation:
		return http.StatusUnprocessableEntity
	case domain.CodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
