// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/influencerhub/internal/app/system/auditlog"
	"github.com/dalemusser/influencerhub/internal/app/system/authutil"
	"github.com/dalemusser/influencerhub/internal/app/system/tokens"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/validate"
	"go.uber.org/zap"
)

// EnvPrefix prefixes the environment variables of app keys.
const EnvPrefix = "INFLUENCERHUB"

const devSessionKey = "dev-only-change-me-please-0123456789ABCDEF"

// appConfigKeys defines the configuration keys for influencerhub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: INFLUENCERHUB_MONGO_URI, INFLUENCERHUB_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "store_backend", Default: BackendMongo, Desc: "Document store: 'mongo' or 'sqlite'"},
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "influencer_hub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "sqlite_path", Default: "influencerhub.db", Desc: "SQLite database file (':memory:' for a throwaway store)"},

	{Name: "session_key", Default: devSessionKey, Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "influencerhub-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "24h", Desc: "Session cookie lifetime"},

	// Bearer tokens
	{Name: "jwt_signing_key", Default: "", Desc: "HS256 key for bearer tokens (blank disables them; 32+ chars)"},
	{Name: "jwt_issuer", Default: "influencerhub", Desc: "Bearer token issuer"},
	{Name: "jwt_ttl", Default: "12h", Desc: "Bearer token lifetime"},

	// Normalization and repository
	{Name: "keyword_cap", Default: 100, Desc: "Max keywords derived per record"},
	{Name: "keyword_prefix_len", Default: 8, Desc: "Longest keyword prefix, in characters"},
	{Name: "list_page_size", Default: 50, Desc: "Default page size for roster listing"},
	{Name: "search_default_limit", Default: 200, Desc: "Default result limit for searches"},

	// Backfill
	{Name: "backfill_interval", Default: "1h", Desc: "How often the derived-field backfill runs (0 disables)"},
	{Name: "backfill_batch", Default: 200, Desc: "Records read per backfill batch"},
	{Name: "backfill_concurrency", Default: 4, Desc: "Concurrent writes per backfill batch"},

	// Login throttling
	{Name: "login_ip_limit", Default: 10, Desc: "Sign-in attempts allowed per client IP per window"},
	{Name: "login_ip_window", Default: "1m", Desc: "Per-IP sign-in window"},
	{Name: "login_email_limit", Default: 5, Desc: "Sign-in attempts allowed per email per window"},
	{Name: "login_email_window", Default: "5m", Desc: "Per-email sign-in window"},

	// Audit logging settings
	{Name: "audit_log_auth", Default: "all", Desc: "Auth event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_roster", Default: "all", Desc: "Roster event logging: 'all' (db+log), 'db', 'log', or 'off'"},

	// Operator bootstrap
	{Name: "admin_email", Default: "", Desc: "Email of the bootstrap operator (created on startup if missing)"},
	{Name: "admin_password", Default: "", Desc: "Password of the bootstrap operator"},
	{Name: "admin_name", Default: "Administrator", Desc: "Display name of the bootstrap operator"},

	// Timeouts
	{Name: "timeout_ping", Default: "2s", Desc: "Health check ping timeout"},
	{Name: "timeout_read", Default: "5s", Desc: "Single-record read timeout"},
	{Name: "timeout_search", Default: "10s", Desc: "List and search timeout"},
	{Name: "timeout_write", Default: "10s", Desc: "Create, update and delete timeout"},
	{Name: "timeout_backfill", Default: "10m", Desc: "Timeout for one backfill pass"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig merges .env files, config files,
// INFLUENCERHUB_* environment variables and flags, with precedence
// flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, EnvPrefix, appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		StoreBackend:     appValues.String("store_backend"),
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		SQLitePath:       appValues.String("sqlite_path"),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),
		SessionMaxAge: appValues.Duration("session_max_age", 24*time.Hour),

		JWTSigningKey: appValues.String("jwt_signing_key"),
		JWTIssuer:     appValues.String("jwt_issuer"),
		JWTTTL:        appValues.Duration("jwt_ttl", 12*time.Hour),

		KeywordCap:         appValues.Int("keyword_cap"),
		KeywordPrefixLen:   appValues.Int("keyword_prefix_len"),
		ListPageSize:       appValues.Int("list_page_size"),
		SearchDefaultLimit: appValues.Int("search_default_limit"),

		BackfillInterval:    appValues.Duration("backfill_interval", time.Hour),
		BackfillBatch:       appValues.Int("backfill_batch"),
		BackfillConcurrency: appValues.Int("backfill_concurrency"),

		LoginIPLimit:     appValues.Int("login_ip_limit"),
		LoginIPWindow:    appValues.Duration("login_ip_window", time.Minute),
		LoginEmailLimit:  appValues.Int("login_email_limit"),
		LoginEmailWindow: appValues.Duration("login_email_window", 5*time.Minute),

		AuditLogAuth:   appValues.String("audit_log_auth"),
		AuditLogRoster: appValues.String("audit_log_roster"),

		AdminEmail:    appValues.String("admin_email"),
		AdminPassword: appValues.String("admin_password"),
		AdminName:     appValues.String("admin_name"),

		TimeoutPing:     appValues.Duration("timeout_ping", 2*time.Second),
		TimeoutRead:     appValues.Duration("timeout_read", 5*time.Second),
		TimeoutSearch:   appValues.Duration("timeout_search", 10*time.Second),
		TimeoutWrite:    appValues.Duration("timeout_write", 10*time.Second),
		TimeoutBackfill: appValues.Duration("timeout_backfill", 10*time.Minute),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// The MongoDB URI format is checked here to catch configuration errors
// before attempting to connect.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	switch appCfg.StoreBackend {
	case BackendMongo:
		if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
			logger.Error("invalid MongoDB URI", zap.Error(err))
			return fmt.Errorf("invalid MongoDB URI: %w", err)
		}
		if appCfg.MongoDatabase == "" {
			return fmt.Errorf("mongo_database is required")
		}
	case BackendSQLite:
		if appCfg.SQLitePath == "" {
			return fmt.Errorf("sqlite_path is required for the sqlite backend")
		}
	default:
		return fmt.Errorf("store_backend must be %q or %q, got %q", BackendMongo, BackendSQLite, appCfg.StoreBackend)
	}

	if k := appCfg.JWTSigningKey; k != "" && len(k) < tokens.MinKeyLen {
		return fmt.Errorf("jwt_signing_key must be at least %d characters", tokens.MinKeyLen)
	}
	if appCfg.JWTSigningKey != "" && appCfg.JWTTTL <= 0 {
		return fmt.Errorf("jwt_ttl must be positive")
	}

	for key, mode := range map[string]string{
		"audit_log_auth":   appCfg.AuditLogAuth,
		"audit_log_roster": appCfg.AuditLogRoster,
	} {
		if !auditlog.ValidMode(mode) {
			return fmt.Errorf("%s must be one of all, db, log, off; got %q", key, mode)
		}
	}

	if appCfg.AdminEmail != "" {
		if !validate.SimpleEmailValid(appCfg.AdminEmail) {
			return fmt.Errorf("admin_email is not a valid email address")
		}
		if err := authutil.ValidatePassword(appCfg.AdminPassword); err != nil {
			return fmt.Errorf("admin_password: %w", err)
		}
	}

	if appCfg.BackfillInterval < 0 {
		return fmt.Errorf("backfill_interval must not be negative")
	}

	if coreCfg != nil && coreCfg.Env == "prod" && appCfg.SessionKey == devSessionKey {
		logger.Warn("session_key is the development default; set a strong key in production")
	}

	return nil
}
