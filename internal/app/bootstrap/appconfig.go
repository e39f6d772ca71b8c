// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// Values come from environment variables (COLLEGEHUB_*), configuration
// files, or command-line flags (loaded in LoadConfig). Framework settings
// such as ports, TLS and log level live in WAFFLE's CoreConfig.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session cookie configuration. Sessions are read, never issued here.
	SessionKey    string // Secret key for verifying session cookies (must be strong in production)
	SessionName   string // Cookie name (default: collegehub-session)
	SessionDomain string // Cookie domain (blank means current host)

	// Redis notification publishing. Blank RedisAddr disables it.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	NotifyChannel string

	// Dashboard behavior
	DepartmentDeletePolicy string        // "cascade" or "reject_nonempty"
	StatsConcurrency       int           // max concurrent per-department stats reads
	DashboardCacheSize     int           // max cached dashboard instances per kind
	DashboardCacheTTL      time.Duration // idle lifetime of a cached dashboard instance
	MutationRateLimit      int           // department mutations per operator per minute (0 disables)

	// Audit logging: "all" (db+log), "db", "log", or "off"
	AuditLogAdmin string
}
