// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/collegehub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs after DB connections and schema setup, before the handler is
// built. It logs the effective dashboard settings and the operation
// timeouts every store and handler reads from the timeouts package.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	t := timeouts.Current()
	logger.Info("collegehub starting",
		zap.String("env", coreCfg.Env),
		zap.String("department_delete_policy", appCfg.DepartmentDeletePolicy),
		zap.Int("stats_concurrency", appCfg.StatsConcurrency),
		zap.Int("dashboard_cache_size", appCfg.DashboardCacheSize),
		zap.Duration("dashboard_cache_ttl", appCfg.DashboardCacheTTL),
		zap.Bool("redis_notifications", deps.Redis != nil),
		zap.String("audit_log_admin", appCfg.AuditLogAdmin),
		zap.Duration("timeout_short", t.Short),
		zap.Duration("timeout_medium", t.Medium),
		zap.Duration("timeout_long", t.Long),
	)
	return nil
}
