// internal/app/features/login/handler.go
package login

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/dalemusser/influencerhub/internal/app/features/shared/respond"
	"github.com/dalemusser/influencerhub/internal/app/store/audit"
	operatorstore "github.com/dalemusser/influencerhub/internal/app/store/operators"
	"github.com/dalemusser/influencerhub/internal/app/system/auditlog"
	"github.com/dalemusser/influencerhub/internal/app/system/auth"
	"github.com/dalemusser/influencerhub/internal/app/system/metrics"
	"github.com/dalemusser/influencerhub/internal/app/system/normalize"
	"github.com/dalemusser/influencerhub/internal/app/system/ratelimit"
	"github.com/dalemusser/influencerhub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Sign-in outcomes, as counted in metrics.
const (
	OutcomeSuccess     = "success"
	OutcomeInvalid     = "invalid_credentials"
	OutcomeDisabled    = "disabled"
	OutcomeRateLimited = "rate_limited"
	OutcomeError       = "error"
)

type Handler struct {
	Operators  *operatorstore.Store
	SessionMgr *auth.SessionManager
	Limiter    *ratelimit.LoginLimiter
	AuditLog   *auditlog.Logger
	Metrics    *metrics.Metrics
	Log        *zap.Logger
}

func NewHandler(ops *operatorstore.Store, sm *auth.SessionManager, limiter *ratelimit.LoginLimiter, al *auditlog.Logger, m *metrics.Metrics, logger *zap.Logger) *Handler {
	return &Handler{
		Operators:  ops,
		SessionMgr: sm,
		Limiter:    limiter,
		AuditLog:   al,
		Metrics:    m,
		Log:        logger,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Operator  *auth.SessionUser `json:"operator"`
	Token     string            `json:"token,omitempty"`
	ExpiresAt *time.Time        `json:"expiresAt,omitempty"`
}

// HandleLoginPost handles POST /api/login. On success the response sets the
// session cookie and, when bearer tokens are enabled, carries a token.
func (h *Handler) HandleLoginPost(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := respond.Decode(w, r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	email := normalize.Email(req.Email)
	if email == "" || req.Password == "" {
		respond.Error(w, http.StatusBadRequest, "email and password are required")
		return
	}

	if h.Limiter != nil {
		if ok, reason, retry := h.Limiter.Check(r, email); !ok {
			h.Metrics.ObserveLogin(OutcomeRateLimited)
			h.AuditLog.LoginFailed(r.Context(), r, audit.EventLoginFailedRateLimit, email, "rate limited by "+reason)
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(retry.Seconds()))))
			respond.Error(w, http.StatusTooManyRequests, "too many sign-in attempts; try again later")
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Read())
	defer cancel()

	op, err := h.Operators.Authenticate(ctx, email, req.Password)
	switch {
	case errors.Is(err, operatorstore.ErrInvalidCredentials):
		h.Metrics.ObserveLogin(OutcomeInvalid)
		h.AuditLog.LoginFailed(ctx, r, audit.EventLoginFailedWrongPassword, email, "invalid credentials")
		respond.Error(w, http.StatusUnauthorized, "invalid email or password")
		return
	case errors.Is(err, operatorstore.ErrDisabled):
		h.Metrics.ObserveLogin(OutcomeDisabled)
		h.AuditLog.LoginFailed(ctx, r, audit.EventLoginFailedUserDisabled, email, "account disabled")
		respond.Error(w, http.StatusForbidden, "account disabled")
		return
	case err != nil:
		h.Metrics.ObserveLogin(OutcomeError)
		respond.ServerError(w, h.Log, "login", err)
		return
	}

	if err := h.SessionMgr.SignIn(w, r, op); err != nil {
		h.Metrics.ObserveLogin(OutcomeError)
		respond.ServerError(w, h.Log, "login: save session", err)
		return
	}
	if err := h.Operators.TouchLogin(ctx, op.ID); err != nil {
		h.Log.Warn("login: record last login", zap.Error(err), zap.String("operator_id", op.ID))
	}
	if h.Limiter != nil {
		h.Limiter.ResetEmail(email)
	}
	h.Metrics.ObserveLogin(OutcomeSuccess)
	h.AuditLog.LoginSuccess(ctx, r, op.ID, op.Email)

	resp := loginResponse{Operator: &auth.SessionUser{ID: op.ID, Name: op.Name, Email: op.Email, Via: "session"}}
	if tok := h.SessionMgr.Tokens(); tok != nil {
		raw, exp, err := tok.Issue(op.ID, op.Email, op.Name)
		if err != nil {
			respond.ServerError(w, h.Log, "login: issue token", err)
			return
		}
		resp.Token = raw
		resp.ExpiresAt = &exp
	}
	respond.JSON(w, http.StatusOK, resp)
}

// ServeMe handles GET /api/me.
func (h *Handler) ServeMe(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	respond.JSON(w, http.StatusOK, u)
}
