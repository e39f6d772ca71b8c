// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/collegehub/internal/app/dashboard"
	departmentstore "github.com/dalemusser/collegehub/internal/app/store/departments"
	"github.com/dalemusser/collegehub/internal/app/system/notify"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// devSessionKey is the session_key default; production must override it.
const devSessionKey = "dev-only-change-me-please-0123456789ABCDEF"

// appConfigKeys defines the configuration keys for CollegeHub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: COLLEGEHUB_MONGO_URI, COLLEGEHUB_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "collegehub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size"},
	{Name: "session_key", Default: devSessionKey, Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "collegehub-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},

	// Notification publishing
	{Name: "redis_addr", Default: "", Desc: "Redis address for notification publishing (blank disables)"},
	{Name: "redis_password", Default: "", Desc: "Redis password"},
	{Name: "redis_db", Default: 0, Desc: "Redis database number"},
	{Name: "notify_channel", Default: notify.DefaultChannel, Desc: "Redis channel notifications are published on"},

	// Dashboards
	{Name: "department_delete_policy", Default: string(departmentstore.PolicyCascade), Desc: "What deleting a department does to its users and courses: 'cascade' or 'reject_nonempty'"},
	{Name: "stats_concurrency", Default: dashboard.DefaultStatsConcurrency, Desc: "Max concurrent per-department stats reads"},
	{Name: "dashboard_cache_size", Default: dashboard.DefaultRegistrySize, Desc: "Max cached dashboard instances per dashboard kind"},
	{Name: "dashboard_cache_ttl", Default: "30m", Desc: "Idle lifetime of a cached dashboard instance (e.g., 30m, 1h)"},
	{Name: "mutation_rate_limit", Default: 30, Desc: "Department create/delete requests per operator per minute (0 disables)"},

	// Audit logging
	{Name: "audit_log_admin", Default: "all", Desc: "Admin event logging: 'all' (db+log), 'db', 'log', or 'off'"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig merges .env files, config files,
// WAFFLE_*/COLLEGEHUB_* environment variables and flags with precedence
// flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "COLLEGEHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),
		SessionKey:       appValues.String("session_key"),
		SessionName:      appValues.String("session_name"),
		SessionDomain:    appValues.String("session_domain"),

		RedisAddr:     appValues.String("redis_addr"),
		RedisPassword: appValues.String("redis_password"),
		RedisDB:       appValues.Int("redis_db"),
		NotifyChannel: appValues.String("notify_channel"),

		DepartmentDeletePolicy: appValues.String("department_delete_policy"),
		StatsConcurrency:       appValues.Int("stats_concurrency"),
		DashboardCacheSize:     appValues.Int("dashboard_cache_size"),
		DashboardCacheTTL:      appValues.Duration("dashboard_cache_ttl", dashboard.DefaultRegistryTTL),
		MutationRateLimit:      appValues.Int("mutation_rate_limit"),

		AuditLogAdmin: appValues.String("audit_log_admin"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// The MongoDB URI and the enumerated settings are checked here so a typo
// aborts startup before any connection is attempted.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if appCfg.MongoDatabase == "" {
		return fmt.Errorf("mongo_database is required")
	}
	if _, err := departmentstore.ParseDeletePolicy(appCfg.DepartmentDeletePolicy); err != nil {
		return err
	}
	switch appCfg.AuditLogAdmin {
	case "all", "db", "log", "off":
	default:
		return fmt.Errorf("audit_log_admin must be one of all, db, log, off; got %q", appCfg.AuditLogAdmin)
	}
	if appCfg.StatsConcurrency < 0 {
		return fmt.Errorf("stats_concurrency must not be negative")
	}
	if appCfg.DashboardCacheTTL < time.Second {
		return fmt.Errorf("dashboard_cache_ttl must be at least 1s; got %s", appCfg.DashboardCacheTTL)
	}
	if coreCfg != nil && coreCfg.Env == "prod" && appCfg.SessionKey == devSessionKey {
		return fmt.Errorf("session_key must be changed in production")
	}
	return nil
}
