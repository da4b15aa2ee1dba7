package logout_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/influencerhub/internal/app/features/logout"
	"github.com/dalemusser/influencerhub/internal/app/store/audit"
	"github.com/dalemusser/influencerhub/internal/app/system/auditlog"
	"github.com/dalemusser/influencerhub/internal/app/system/auth"
	"github.com/dalemusser/influencerhub/internal/domain/models"
	"github.com/dalemusser/influencerhub/internal/testutil"
	"go.uber.org/zap"
)

func TestServeLogout_ClearsSession(t *testing.T) {
	db := testutil.SetupTestStore(t)
	as := audit.New(db)
	sm, err := auth.NewSessionManager("test-session-key-must-be-32-chars-long", "", "", time.Hour, false, nil, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	h := logout.NewHandler(sm, auditlog.New(as, zap.NewNop(), auditlog.Config{Auth: auditlog.ModeDB}), zap.NewNop())

	signIn := httptest.NewRecorder()
	if err := sm.SignIn(signIn, httptest.NewRequest("POST", "/api/login", nil), models.Operator{ID: "op-1", Email: "a@example.com"}); err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}

	req := httptest.NewRequest("POST", "/api/logout", nil)
	for _, c := range signIn.Result().Cookies() {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	sm.LoadSessionUser(logout.Routes(h)).ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status %d, got %d", http.StatusNoContent, rec.Code)
	}
	cleared := false
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("expected the session cookie to be expired")
	}

	ctx, cancel := testutil.TestContext()
	defer cancel()
	events, err := as.Query(ctx, audit.QueryFilter{EventType: audit.EventLogout})
	if err != nil {
		t.Fatalf("audit query failed: %v", err)
	}
	if len(events) != 1 || events[0].ActorID != "op-1" {
		t.Errorf("logout events = %+v", events)
	}
}

func TestServeLogout_Anonymous(t *testing.T) {
	sm, err := auth.NewSessionManager("test-session-key-must-be-32-chars-long", "", "", time.Hour, false, nil, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	h := logout.NewHandler(sm, nil, zap.NewNop())

	rec := httptest.NewRecorder()
	h.ServeLogout(rec, httptest.NewRequest("POST", "/api/logout", nil))
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected status %d, got %d", http.StatusNoContent, rec.Code)
	}
}
