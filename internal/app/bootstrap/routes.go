// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"time"

	"github.com/dalemusser/collegehub/internal/app/dashboard"
	auditlogfeature "github.com/dalemusser/collegehub/internal/app/features/auditlog"
	dashboardfeature "github.com/dalemusser/collegehub/internal/app/features/dashboard"
	departmentsfeature "github.com/dalemusser/collegehub/internal/app/features/departments"
	errorsfeature "github.com/dalemusser/collegehub/internal/app/features/errors"
	healthfeature "github.com/dalemusser/collegehub/internal/app/features/health"
	homefeature "github.com/dalemusser/collegehub/internal/app/features/home"
	userinfofeature "github.com/dalemusser/collegehub/internal/app/features/userinfo"
	"github.com/dalemusser/collegehub/internal/app/store/audit"
	coursestore "github.com/dalemusser/collegehub/internal/app/store/courses"
	departmentstore "github.com/dalemusser/collegehub/internal/app/store/departments"
	userstore "github.com/dalemusser/collegehub/internal/app/store/users"
	"github.com/dalemusser/collegehub/internal/app/system/auditlog"
	"github.com/dalemusser/collegehub/internal/app/system/auth"
	"github.com/dalemusser/collegehub/internal/app/system/metrics"
	"github.com/dalemusser/collegehub/internal/app/system/notify"
	"github.com/dalemusser/collegehub/internal/app/system/ratelimit"
	"github.com/dalemusser/collegehub/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// gaugeInterval is how often the cached-instance gauge is refreshed.
const gaugeInterval = 30 * time.Second

// instanceGauge is started by BuildHandler and stopped by Shutdown.
var instanceGauge *workers.InstanceGauge

// BuildHandler constructs the root HTTP handler for this WAFFLE app.
//
// It wires the repositories, audit logger, metrics and notification sinks
// into one shared dashboard aggregator and instance registry, then mounts
// the feature routers.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Fetch fresh user data on each request so role and department changes
	// take effect immediately.
	sessionMgr.SetUserFetcher(userstore.NewFetcher(deps.MongoDatabase))

	m := metrics.New(prometheus.NewRegistry())
	registry, err := buildDashboards(appCfg, deps, m, logger)
	if err != nil {
		return nil, err
	}

	instanceGauge = workers.NewInstanceGauge(registry, m.SetInstances, logger, gaugeInterval)
	instanceGauge.Start()

	errLog := errorsfeature.NewErrorLogger(logger)
	errorsHandler := errorsfeature.NewHandler()

	r := chi.NewRouter()
	r.NotFound(errorsHandler.NotFound)
	r.MethodNotAllowed(errorsHandler.MethodNotAllowed)

	r.Use(m.Middleware)

	// Loads SessionUser into context if the cookie names a known user.
	r.Use(sessionMgr.LoadSessionUser)

	healthHandler := healthfeature.NewHandler(deps.MongoClient, deps.Redis, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))
	r.Handle("/metrics", m.Handler())

	homeHandler := homefeature.NewHandler(logger)
	r.Mount("/", homefeature.Routes(homeHandler))

	userinfofeature.MountRoutes(r, userinfofeature.NewHandler())

	dashboardHandler := dashboardfeature.NewHandler(registry, errLog, logger)
	r.Mount("/dashboard", dashboardfeature.Routes(dashboardHandler, sessionMgr))

	departmentsHandler := departmentsfeature.NewHandler(registry, errLog, logger)
	mutationLimiter := ratelimit.New(appCfg.MutationRateLimit, time.Minute)
	r.Mount("/departments", departmentsfeature.Routes(departmentsHandler, sessionMgr, mutationLimiter.Middleware))

	auditHandler := auditlogfeature.NewHandler(deps.MongoDatabase, errLog, logger)
	r.Mount("/audit", auditlogfeature.Routes(auditHandler, sessionMgr))

	return r, nil
}

// buildDashboards assembles the aggregator and the per-operator instance
// registry from configuration.
func buildDashboards(appCfg AppConfig, deps DBDeps, m *metrics.Metrics, logger *zap.Logger) (*dashboard.Registry, error) {
	policy, err := departmentstore.ParseDeletePolicy(appCfg.DepartmentDeletePolicy)
	if err != nil {
		return nil, err
	}

	auditLog := auditlog.New(audit.New(deps.MongoDatabase), logger, auditlog.Config{Admin: appCfg.AuditLogAdmin})

	agg := dashboard.New(
		departmentstore.New(deps.MongoDatabase, policy).WithLogger(logger),
		userstore.New(deps.MongoDatabase),
		coursestore.New(deps.MongoDatabase),
		dashboard.Options{
			StatsConcurrency: appCfg.StatsConcurrency,
			Audit:            auditLog,
			Metrics:          m,
			Logger:           logger,
		},
	)

	sink := notify.Multi{notify.NewZapNotifier(logger)}
	if deps.Redis != nil {
		pub := notify.NewRedisPublisher(deps.Redis, appCfg.NotifyChannel, logger)
		sink = append(sink, pub)
		logger.Info("publishing notifications to redis", zap.String("channel", pub.Channel()))
	}

	return dashboard.NewRegistry(agg, appCfg.DashboardCacheSize, appCfg.DashboardCacheTTL, sink, m), nil
}
