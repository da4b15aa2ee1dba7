package bootstrap

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	operatorstore "github.com/dalemusser/influencerhub/internal/app/store/operators"
	"github.com/dalemusser/influencerhub/internal/app/system/timeouts"
	"github.com/dalemusser/influencerhub/internal/testutil"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func validConfig() AppConfig {
	return AppConfig{
		StoreBackend:   BackendSQLite,
		SQLitePath:     ":memory:",
		SessionKey:     "test-session-key-must-be-32-chars-long",
		SessionMaxAge:  time.Hour,
		JWTSigningKey:  "test-jwt-key-must-be-32-chars-long!",
		JWTIssuer:      "influencerhub",
		JWTTTL:         time.Hour,
		AuditLogAuth:   "all",
		AuditLogRoster: "db",
		BackfillBatch:  50,
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*AppConfig)
		wantErr bool
	}{
		{"valid sqlite", func(*AppConfig) {}, false},
		{"valid mongo", func(c *AppConfig) {
			c.StoreBackend = BackendMongo
			c.MongoURI = "mongodb://localhost:27017"
			c.MongoDatabase = "influencer_hub"
		}, false},
		{"unknown backend", func(c *AppConfig) { c.StoreBackend = "postgres" }, true},
		{"missing mongo database", func(c *AppConfig) {
			c.StoreBackend = BackendMongo
			c.MongoURI = "mongodb://localhost:27017"
			c.MongoDatabase = ""
		}, true},
		{"missing sqlite path", func(c *AppConfig) { c.SQLitePath = "" }, true},
		{"short jwt key", func(c *AppConfig) { c.JWTSigningKey = "short" }, true},
		{"tokens disabled", func(c *AppConfig) { c.JWTSigningKey = "" }, false},
		{"bad audit mode", func(c *AppConfig) { c.AuditLogRoster = "sometimes" }, true},
		{"bad admin email", func(c *AppConfig) { c.AdminEmail = "nope"; c.AdminPassword = "correcthorse9" }, true},
		{"weak admin password", func(c *AppConfig) { c.AdminEmail = "a@example.com"; c.AdminPassword = "short" }, true},
		{"negative backfill interval", func(c *AppConfig) { c.BackfillInterval = -time.Second }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := ValidateConfig(&config.CoreConfig{Env: "dev"}, cfg, testLogger())
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestEnsureAdmin_CreatesNew(t *testing.T) {
	db := testutil.SetupTestStore(t)
	testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	ops := operatorstore.New(db)

	if err := ensureAdmin(ctx, ops, "admin@test.com", "Admin", "correcthorse9", testLogger()); err != nil {
		t.Fatalf("ensureAdmin failed: %v", err)
	}
	if _, err := ops.Authenticate(ctx, "admin@test.com", "correcthorse9"); err != nil {
		t.Errorf("bootstrap operator cannot sign in: %v", err)
	}
}

func TestEnsureAdmin_LeavesExisting(t *testing.T) {
	db := testutil.SetupTestStore(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	existing := fx.CreateOperator(ctx, "admin@test.com", "Existing")
	ops := operatorstore.New(db)

	if err := ensureAdmin(ctx, ops, "admin@test.com", "Admin", "batterystaple7", testLogger()); err != nil {
		t.Fatalf("ensureAdmin failed: %v", err)
	}
	got, _, err := ops.GetByEmail(ctx, "admin@test.com")
	if err != nil {
		t.Fatalf("GetByEmail failed: %v", err)
	}
	if got.ID != existing.ID || got.Name != "Existing" {
		t.Errorf("existing operator changed: %+v", got)
	}
	if _, err := ops.Authenticate(ctx, "admin@test.com", testutil.DefaultPassword); err != nil {
		t.Errorf("existing password no longer works: %v", err)
	}
}

// startApp runs the lifecycle hooks WAFFLE would run, over an in-memory
// SQLite store.
func startApp(t *testing.T) http.Handler {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	core := &config.CoreConfig{Env: "dev"}
	cfg := validConfig()
	cfg.AdminEmail = "admin@test.com"
	cfg.AdminPassword = "correcthorse9"
	cfg.AdminName = "Admin"

	deps, err := ConnectDB(ctx, core, cfg, testLogger())
	if err != nil {
		t.Fatalf("ConnectDB failed: %v", err)
	}
	if err := EnsureSchema(ctx, core, cfg, deps, testLogger()); err != nil {
		t.Fatalf("EnsureSchema failed: %v", err)
	}
	if err := Startup(ctx, core, cfg, deps, testLogger()); err != nil {
		t.Fatalf("Startup failed: %v", err)
	}
	t.Cleanup(func() {
		_ = Shutdown(context.Background(), core, cfg, deps, testLogger())
		timeouts.Reset()
	})

	h, err := BuildHandler(core, cfg, deps, testLogger())
	if err != nil {
		t.Fatalf("BuildHandler failed: %v", err)
	}
	return h
}

func send(t *testing.T, h http.Handler, method, target, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestBuildHandler_EndToEnd(t *testing.T) {
	h := startApp(t)

	if rec := send(t, h, "GET", "/health", "", nil); rec.Code != http.StatusOK {
		t.Fatalf("/health = %d", rec.Code)
	}
	if rec := send(t, h, "GET", "/api/influencers", "", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous list = %d, want 401", rec.Code)
	}

	rec := send(t, h, "POST", "/api/login", "", map[string]string{"email": "admin@test.com", "password": "correcthorse9"})
	if rec.Code != http.StatusOK {
		t.Fatalf("login = %d: %s", rec.Code, rec.Body.String())
	}
	var login struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &login); err != nil || login.Token == "" {
		t.Fatalf("login response %q: %v", rec.Body.String(), err)
	}

	rec = send(t, h, "POST", "/api/influencers", login.Token, map[string]any{"email": "jose@x.com", "name": "José Núñez"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create = %d: %s", rec.Code, rec.Body.String())
	}

	rec = send(t, h, "GET", "/api/influencers/search?q=jose+nunez", login.Token, nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "jose@x.com") {
		t.Errorf("search = %d: %s", rec.Code, rec.Body.String())
	}

	rec = send(t, h, "GET", "/api/me", login.Token, nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "admin@test.com") {
		t.Errorf("me = %d: %s", rec.Code, rec.Body.String())
	}

	rec = send(t, h, "GET", "/api/audit?limit=10", login.Token, nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "influencer_created") {
		t.Errorf("audit = %d: %s", rec.Code, rec.Body.String())
	}

	rec = send(t, h, "GET", "/metrics", "", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "influencerhub_login_attempts_total") {
		t.Errorf("metrics = %d", rec.Code)
	}
}
