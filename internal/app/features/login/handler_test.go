package login_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/influencerhub/internal/app/features/login"
	"github.com/dalemusser/influencerhub/internal/app/store/audit"
	operatorstore "github.com/dalemusser/influencerhub/internal/app/store/operators"
	"github.com/dalemusser/influencerhub/internal/app/system/auditlog"
	"github.com/dalemusser/influencerhub/internal/app/system/auth"
	"github.com/dalemusser/influencerhub/internal/app/system/metrics"
	"github.com/dalemusser/influencerhub/internal/app/system/ratelimit"
	"github.com/dalemusser/influencerhub/internal/app/system/tokens"
	"github.com/dalemusser/influencerhub/internal/testutil"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
)

type env struct {
	h       *login.Handler
	audit   *audit.Store
	metrics *metrics.Metrics
	fx      *testutil.Fixtures
}

func newEnv(t *testing.T, limit ratelimit.LoginConfig) env {
	t.Helper()
	db := testutil.SetupTestStore(t)
	fx := testutil.NewFixtures(t, db)

	tok, err := tokens.New("test-jwt-key-must-be-32-chars-long!", "influencerhub", time.Hour)
	if err != nil {
		t.Fatalf("tokens.New failed: %v", err)
	}
	sm, err := auth.NewSessionManager("test-session-key-must-be-32-chars-long", "", "", time.Hour, false, tok, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	limiter := ratelimit.NewLoginLimiter(limit)
	t.Cleanup(limiter.Close)

	as := audit.New(db)
	al := auditlog.New(as, zap.NewNop(), auditlog.Config{Auth: auditlog.ModeDB, Roster: auditlog.ModeOff})
	m := metrics.New(nil)

	h := login.NewHandler(operatorstore.New(db), sm, limiter, al, m, zap.NewNop())
	return env{h: h, audit: as, metrics: m, fx: fx}
}

type loginResponse struct {
	Operator  auth.SessionUser `json:"operator"`
	Token     string           `json:"token"`
	ExpiresAt *time.Time       `json:"expiresAt"`
}

func post(t *testing.T, h *login.Handler, body any) *testutil.ResponseRecorder {
	t.Helper()
	rec := testutil.NewRecorder()
	h.HandleLoginPost(rec, testutil.NewJSONRequest(t, "POST", "/api/login", body))
	return rec
}

func TestLogin_Success(t *testing.T) {
	e := newEnv(t, ratelimit.DefaultLoginConfig)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	op := e.fx.CreateOperator(ctx, "ada@example.com", "Ada")

	rec := post(t, e.h, map[string]string{"email": " ADA@example.com", "password": testutil.DefaultPassword})
	rec.AssertStatus(t, http.StatusOK)

	var got loginResponse
	rec.DecodeJSON(t, &got)
	if got.Operator.ID != op.ID || got.Operator.Email != "ada@example.com" {
		t.Errorf("operator = %+v", got.Operator)
	}
	if got.Token == "" || got.ExpiresAt == nil {
		t.Error("expected a bearer token with expiry")
	}
	if len(rec.Result().Cookies()) == 0 {
		t.Error("expected a session cookie")
	}

	stored, _, err := operatorstore.New(e.fx.DB()).GetByID(ctx, op.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if stored.LastLoginAt == nil {
		t.Error("expected LastLoginAt to be recorded")
	}

	events, err := e.audit.Query(ctx, audit.QueryFilter{EventType: audit.EventLoginSuccess})
	if err != nil {
		t.Fatalf("audit query failed: %v", err)
	}
	if len(events) != 1 || events[0].ActorID != op.ID {
		t.Errorf("login_success events = %+v", events)
	}
	if n := promtest.ToFloat64(e.metrics.LoginAttemptsTotal.WithLabelValues(login.OutcomeSuccess)); n != 1 {
		t.Errorf("success counter = %v, want 1", n)
	}
}

func TestLogin_Failures(t *testing.T) {
	e := newEnv(t, ratelimit.DefaultLoginConfig)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	e.fx.CreateOperator(ctx, "ada@example.com", "Ada")

	tests := []struct {
		name string
		body any
		want int
	}{
		{"wrong password", map[string]string{"email": "ada@example.com", "password": "wronghorse9"}, http.StatusUnauthorized},
		{"unknown email", map[string]string{"email": "ghost@example.com", "password": "wronghorse9"}, http.StatusUnauthorized},
		{"missing password", map[string]string{"email": "ada@example.com"}, http.StatusBadRequest},
		{"unknown field", map[string]string{"email": "ada@example.com", "password": "x", "role": "admin"}, http.StatusBadRequest},
		{"malformed", `{"email":`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, e.h, tt.body)
			rec.AssertStatus(t, tt.want)
			if len(rec.Result().Cookies()) != 0 {
				t.Error("failed sign-in must not set a cookie")
			}
		})
	}

	events, err := e.audit.Query(ctx, audit.QueryFilter{EventType: audit.EventLoginFailedWrongPassword})
	if err != nil {
		t.Fatalf("audit query failed: %v", err)
	}
	if len(events) != 2 {
		t.Errorf("wrong-password events = %d, want 2", len(events))
	}
}

func TestLogin_Disabled(t *testing.T) {
	e := newEnv(t, ratelimit.DefaultLoginConfig)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	op := e.fx.CreateOperator(ctx, "off@example.com", "Off")
	if err := operatorstore.New(e.fx.DB()).SetStatus(ctx, op.ID, "disabled"); err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}

	rec := post(t, e.h, map[string]string{"email": "off@example.com", "password": testutil.DefaultPassword})
	rec.AssertStatus(t, http.StatusForbidden)
}

func TestLogin_RateLimited(t *testing.T) {
	e := newEnv(t, ratelimit.LoginConfig{IPLimit: 100, IPWindow: time.Minute, EmailLimit: 2, EmailWindow: time.Minute})
	ctx, cancel := testutil.TestContext()
	defer cancel()
	e.fx.CreateOperator(ctx, "ada@example.com", "Ada")

	bad := map[string]string{"email": "ada@example.com", "password": "wronghorse9"}
	post(t, e.h, bad).AssertStatus(t, http.StatusUnauthorized)
	post(t, e.h, bad).AssertStatus(t, http.StatusUnauthorized)

	rec := post(t, e.h, map[string]string{"email": "ada@example.com", "password": testutil.DefaultPassword})
	rec.AssertStatus(t, http.StatusTooManyRequests)
	if rec.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header")
	}

	events, err := e.audit.Query(ctx, audit.QueryFilter{EventType: audit.EventLoginFailedRateLimit})
	if err != nil {
		t.Fatalf("audit query failed: %v", err)
	}
	if len(events) != 1 {
		t.Errorf("rate-limit events = %d, want 1", len(events))
	}
}

func TestServeMe(t *testing.T) {
	e := newEnv(t, ratelimit.DefaultLoginConfig)

	rec := testutil.NewRecorder()
	e.h.ServeMe(rec, testutil.NewRequest("GET", "/api/me"))
	rec.AssertStatus(t, http.StatusUnauthorized)

	u := testutil.TestOperator()
	rec = testutil.NewRecorder()
	e.h.ServeMe(rec, testutil.WithUser(testutil.NewRequest("GET", "/api/me"), u))
	rec.AssertStatus(t, http.StatusOK)

	var got auth.SessionUser
	rec.DecodeJSON(t, &got)
	if got.ID != u.ID {
		t.Errorf("ID = %q, want %q", got.ID, u.ID)
	}
}
