// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// Store backends.
const (
	BackendMongo  = "mongo"
	BackendSQLite = "sqlite"
)

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig handles
// ports, TLS, logging level and CORS; everything below is specific to the
// roster service.
type AppConfig struct {
	// Document store selection
	StoreBackend     string // "mongo" or "sqlite"
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	SQLitePath       string // file path, or ":memory:"

	// Session management configuration
	SessionKey    string // Secret key for signing session cookies (must be strong in production)
	SessionName   string // Cookie name for sessions (default: influencerhub-session)
	SessionDomain string // Cookie domain (blank means current host)
	SessionMaxAge time.Duration

	// Bearer tokens; a blank signing key disables them
	JWTSigningKey string
	JWTIssuer     string
	JWTTTL        time.Duration

	// Normalizer knobs
	KeywordCap       int
	KeywordPrefixLen int

	// Repository defaults
	ListPageSize       int
	SearchDefaultLimit int

	// Derived-field backfill; a zero interval disables the worker
	BackfillInterval    time.Duration
	BackfillBatch       int
	BackfillConcurrency int

	// Login throttling
	LoginIPLimit     int
	LoginIPWindow    time.Duration
	LoginEmailLimit  int
	LoginEmailWindow time.Duration

	// Audit logging: "all", "db", "log" or "off"
	AuditLogAuth   string
	AuditLogRoster string

	// Bootstrap operator, ensured on startup when both are set
	AdminEmail    string
	AdminPassword string
	AdminName     string

	// Operation timeouts
	TimeoutPing     time.Duration
	TimeoutRead     time.Duration
	TimeoutSearch   time.Duration
	TimeoutWrite    time.Duration
	TimeoutBackfill time.Duration
}
