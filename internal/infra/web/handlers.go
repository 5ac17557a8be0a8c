package web

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"pure-resume/internal/domain"
	"pure-resume/internal/domain/model"
	"pure-resume/internal/domain/ports/repository"
	"pure-resume/internal/infra/logging"
	red "pure-resume/internal/infra/redis"
)

// ===== subscription =====

type redeemRequest struct {
	Code string `json:"code"`
}

type redeemResponse struct {
	ExpiresAt time.Time `json:"expires_at"`
	DaysLeft  int       `json:"days_left"`
}

func (s *Server) handleRedeem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := claimsFrom(ctx).Subject

	var req redeemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorCode(w, domain.CodeCodeFormat, "invalid request body")
		return
	}

	// Brute-force guard. A limiter outage must not take redemption down
	// with it, so failures only log.
	allowed, err := s.limiter.Allow(ctx,
		red.UserActionKey(userID, "redeem"),
		s.redeemLimit.Attempts, s.redeemLimit.Window)
	if err != nil {
		l := logging.With(ctx, s.log)
		l.Warn().Err(err).Msg("rate limiter unavailable")
	} else if !allowed {
		writeDomainError(w, r, s.log, domain.ErrRateLimited)
		return
	}

	result, err := s.activationUC.Redeem(ctx, userID, req.Code)
	if err != nil {
		writeDomainError(w, r, s.log, err)
		return
	}

	writeJSON(w, http.StatusOK, redeemResponse{
		ExpiresAt: result.ExpiresAt,
		DaysLeft:  result.DaysLeft,
	})
}

type statusResponse struct {
	Valid     bool       `json:"valid"`
	State     string     `json:"state"`
	ExpiresAt *time.Time `json:"expires_at"`
	DaysLeft  *int       `json:"days_left"` // null when there is no subscription on record
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ent, err := s.entitlementUC.Status(ctx, claimsFrom(ctx).Subject)
	if err != nil {
		writeDomainError(w, r, s.log, err)
		return
	}

	writeJSON(w, http.StatusOK, statusResponse{
		Valid:     ent.Valid,
		State:     string(ent.State),
		ExpiresAt: ent.ExpiresAt,
		DaysLeft:  ent.DaysLeft,
	})
}

type historyEntry struct {
	ID        string    `json:"id"`
	CodeID    string    `json:"code_id"`
	StartAt   time.Time `json:"start_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Status    string    `json:"status"`
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	records, err := s.activationUC.History(ctx, claimsFrom(ctx).Subject)
	if err != nil {
		writeDomainError(w, r, s.log, err)
		return
	}

	now := time.Now()
	entries := make([]historyEntry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, historyEntry{
			ID:        rec.ID,
			CodeID:    rec.ActivationCodeID,
			StartAt:   rec.StartAt,
			ExpiresAt: rec.ExpiresAt,
			Status:    string(rec.Status(now)),
		})
	}

	writeJSON(w, http.StatusOK, struct {
		Data []historyEntry `json:"data"`
	}{Data: entries})
}

// ===== resumes =====

type resumeRequest struct {
	Title   string          `json:"title"`
	Content json.RawMessage `json:"content"`
}

type resumeView struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Content   json.RawMessage `json:"content"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func toResumeView(res *model.Resume) resumeView {
	return resumeView{
		ID:        res.ID,
		Title:     res.Title,
		Content:   res.Content,
		CreatedAt: res.CreatedAt,
		UpdatedAt: res.UpdatedAt,
	}
}

func (s *Server) handleResumeCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req resumeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorCode(w, domain.CodeInvalidArgument, "invalid request body")
		return
	}

	res, err := s.resumeUC.Create(ctx, claimsFrom(ctx).Subject, req.Title, req.Content)
	if err != nil {
		writeDomainError(w, r, s.log, err)
		return
	}

	writeJSON(w, http.StatusCreated, toResumeView(res))
}

func (s *Server) handleResumeUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req resumeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorCode(w, domain.CodeInvalidArgument, "invalid request body")
		return
	}

	res, err := s.resumeUC.Update(ctx, claimsFrom(ctx).Subject, chi.URLParam(r, "id"), req.Title, req.Content)
	if err != nil {
		writeDomainError(w, r, s.log, err)
		return
	}

	writeJSON(w, http.StatusOK, toResumeView(res))
}

func (s *Server) handleResumeGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	res, err := s.resumeUC.Get(ctx, claimsFrom(ctx).Subject, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, s.log, err)
		return
	}

	writeJSON(w, http.StatusOK, toResumeView(res))
}

func (s *Server) handleResumeList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	resumes, err := s.resumeUC.List(ctx, claimsFrom(ctx).Subject)
	if err != nil {
		writeDomainError(w, r, s.log, err)
		return
	}

	views := make([]resumeView, 0, len(resumes))
	for _, res := range resumes {
		views = append(views, toResumeView(res))
	}

	writeJSON(w, http.StatusOK, struct {
		Data []resumeView `json:"data"`
	}{Data: views})
}

func (s *Server) handleResumeDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := s.resumeUC.Delete(ctx, claimsFrom(ctx).Subject, chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, r, s.log, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleResumeExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	res, err := s.resumeUC.Export(ctx, claimsFrom(ctx).Subject, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, s.log, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="resume-`+res.ID+`.json"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Content)
}

// ===== admin =====

type codesCreateRequest struct {
	Count         int `json:"count"`
	ExpiresInDays int `json:"expires_in_days"`
}

type codeView struct {
	ID                 string     `json:"id"`
	Code               string     `json:"code"`
	CreatedAt          time.Time  `json:"created_at"`
	ExpiresAt          time.Time  `json:"expires_at"`
	RedeemedBy         *string    `json:"redeemed_by,omitempty"`
	RedeemedByEmail    *string    `json:"redeemed_by_email,omitempty"`
	RedeemedByUsername *string    `json:"redeemed_by_username,omitempty"`
	RedeemedAt         *time.Time `json:"redeemed_at,omitempty"`
}

func toCodeView(c *model.ActivationCode) codeView {
	return codeView{
		ID:                 c.ID,
		Code:               c.Code,
		CreatedAt:          c.CreatedAt,
		ExpiresAt:          c.ExpiresAt,
		RedeemedBy:         c.RedeemedByUserID,
		RedeemedByEmail:    c.RedeemedByEmail,
		RedeemedByUsername: c.RedeemedByUsername,
		RedeemedAt:         c.RedeemedAt,
	}
}

func (s *Server) handleAdminCodesCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req codesCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorCode(w, domain.CodeInvalidArgument, "invalid request body")
		return
	}

	codes, err := s.adminUC.GenerateCodes(ctx, claimsFrom(ctx).Subject, req.Count, req.ExpiresInDays)
	if err != nil {
		writeDomainError(w, r, s.log, err)
		return
	}

	views := make([]codeView, 0, len(codes))
	for _, c := range codes {
		views = append(views, toCodeView(c))
	}

	writeJSON(w, http.StatusCreated, struct {
		Data []codeView `json:"data"`
	}{Data: views})
}

func (s *Server) handleAdminCodesList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	offset, limit := pagination(r)

	codes, err := s.adminUC.ListCodes(ctx, claimsFrom(ctx).Subject, offset, limit)
	if err != nil {
		writeDomainError(w, r, s.log, err)
		return
	}

	views := make([]codeView, 0, len(codes))
	for _, c := range codes {
		views = append(views, toCodeView(c))
	}

	writeJSON(w, http.StatusOK, struct {
		Data   []codeView `json:"data"`
		Limit  int        `json:"limit"`
		Offset int        `json:"offset"`
	}{Data: views, Limit: limit, Offset: offset})
}

type userView struct {
	ID                    string     `json:"id"`
	Email                 string     `json:"email"`
	Username              string     `json:"username"`
	IsAdmin               bool       `json:"is_admin"`
	Banned                bool       `json:"banned"`
	SubscriptionActive    bool       `json:"subscription_active"`
	SubscriptionExpiresAt *time.Time `json:"subscription_expires_at"`
	State                 string     `json:"state"`
	RegisteredAt          time.Time  `json:"registered_at"`
}

func toUserView(u *model.User, now time.Time) userView {
	ent := model.EvaluateEntitlement(u, now)
	return userView{
		ID:                    u.ID,
		Email:                 u.Email,
		Username:              u.Username,
		IsAdmin:               u.IsAdmin,
		Banned:                u.Banned,
		SubscriptionActive:    u.SubscriptionActive,
		SubscriptionExpiresAt: u.SubscriptionExpiresAt,
		State:                 string(ent.State),
		RegisteredAt:          u.RegisteredAt,
	}
}

func (s *Server) handleAdminUsersList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	offset, limit := pagination(r)

	filter := repository.UserFilter(r.URL.Query().Get("filter"))
	if filter == "" {
		filter = repository.UserFilterAll
	}

	users, total, err := s.adminUC.ListUsers(ctx, claimsFrom(ctx).Subject, filter, offset, limit)
	if err != nil {
		writeDomainError(w, r, s.log, err)
		return
	}

	now := time.Now()
	views := make([]userView, 0, len(users))
	for _, u := range users {
		views = append(views, toUserView(u, now))
	}

	writeJSON(w, http.StatusOK, struct {
		Data   []userView `json:"data"`
		Total  int        `json:"total"`
		Limit  int        `json:"limit"`
		Offset int        `json:"offset"`
	}{Data: views, Total: total, Limit: limit, Offset: offset})
}

type subscriptionOverrideRequest struct {
	Active *bool `json:"active"`
}

func (s *Server) handleAdminUserSubscription(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req subscriptionOverrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Active == nil {
		writeErrorCode(w, domain.CodeInvalidArgument, "body must carry an explicit active flag")
		return
	}

	err := s.adminUC.SetSubscriptionActive(ctx, claimsFrom(ctx).Subject, chi.URLParam(r, "id"), *req.Active)
	if err != nil {
		writeDomainError(w, r, s.log, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		UserID string `json:"user_id"`
		Active bool   `json:"active"`
	}{UserID: chi.URLParam(r, "id"), Active: *req.Active})
}

func pagination(r *http.Request) (offset, limit int) {
	offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return offset, limit
}
