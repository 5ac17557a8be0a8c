package web

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"pure-resume/internal/domain"
	"pure-resume/internal/infra/logging"
	red "pure-resume/internal/infra/redis"
	"pure-resume/internal/usecase"
)

type ctxKey int

const claimsKey ctxKey = iota

// RedeemLimit bounds redemption attempts per user per window.
type RedeemLimit struct {
	Attempts int
	Window   time.Duration
}

type Server struct {
	activationUC  usecase.ActivationUseCase
	entitlementUC usecase.EntitlementUseCase
	resumeUC      usecase.ResumeUseCase
	adminUC       usecase.AdminUseCase
	auth          *AuthManager
	limiter       *red.RateLimiter
	redeemLimit   RedeemLimit
	log           *zerolog.Logger
}

func NewServer(
	activationUC usecase.ActivationUseCase,
	entitlementUC usecase.EntitlementUseCase,
	resumeUC usecase.ResumeUseCase,
	adminUC usecase.AdminUseCase,
	auth *AuthManager,
	limiter *red.RateLimiter,
	redeemLimit RedeemLimit,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		activationUC:  activationUC,
		entitlementUC: entitlementUC,
		resumeUC:      resumeUC,
		adminUC:       adminUC,
		auth:          auth,
		limiter:       limiter,
		redeemLimit:   redeemLimit,
		log:           logger,
	}
}

// Routes builds the full router: ops endpoints in the clear, everything
// under /api/v1 behind JWT, admin endpoints additionally behind the
// is_admin claim.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(TraceID(s.log))
	r.Use(RequestLog(s.log))
	r.Use(Recover(s.log))
	r.Use(Timeout(30 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(s.requireUser)

			r.Post("/subscription/redeem", s.handleRedeem)
			r.Get("/subscription/status", s.handleStatus)
			r.Get("/subscription/history", s.handleHistory)

			r.Route("/resumes", func(r chi.Router) {
				r.Post("/", s.handleResumeCreate)
				r.Get("/", s.handleResumeList)
				r.Get("/{id}", s.handleResumeGet)
				r.Put("/{id}", s.handleResumeUpdate)
				r.Delete("/{id}", s.handleResumeDelete)
				r.Get("/{id}/export", s.handleResumeExport)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(s.requireUser, s.requireAdmin)

			r.Post("/admin/codes", s.handleAdminCodesCreate)
			r.Get("/admin/codes", s.handleAdminCodesList)
			r.Get("/admin/users", s.handleAdminUsersList)
			r.Put("/admin/users/{id}/subscription", s.handleAdminUserSubscription)
		})
	})

	return r
}

// requireUser authenticates the request and enriches the context with the
// caller's identity for downstream logging.
func (s *Server) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := s.auth.ParseFromRequest(r)
		if err != nil {
			writeErrorCode(w, domain.CodeUnauthorized, "authentication required")
			return
		}
		ctx := context.WithValue(r.Context(), claimsKey, claims)
		ctx = logging.WithUserID(ctx, claims.Subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireAdmin is a cheap routing gate on the token claim. The admin use
// case re-verifies the caller against the database on every operation.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := claimsFrom(r.Context())
		if claims == nil || !claims.IsAdmin {
			writeErrorCode(w, domain.CodeForbidden, "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func claimsFrom(ctx context.Context) *UserClaims {
	claims, _ := ctx.Value(claimsKey).(*UserClaims)
	return claims
}
