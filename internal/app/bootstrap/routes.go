// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"time"

	feedfeature "github.com/dalemusser/threadhub/internal/app/features/feed"
	healthfeature "github.com/dalemusser/threadhub/internal/app/features/health"
	threadsfeature "github.com/dalemusser/threadhub/internal/app/features/threads"
	auditstore "github.com/dalemusser/threadhub/internal/app/store/audit"
	"github.com/dalemusser/threadhub/internal/app/system/auditlog"
	"github.com/dalemusser/threadhub/internal/app/system/metrics"
	"github.com/dalemusser/threadhub/internal/app/system/ratelimit"
	"github.com/dalemusser/threadhub/internal/app/system/requestid"
	"github.com/dalemusser/threadhub/internal/app/system/revalidate"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. At this point you have access to:
//   - coreCfg: WAFFLE core configuration (ports, env, timeouts, etc.)
//   - appCfg: app-specific configuration defined in AppConfig
//   - deps: any DB or backend clients bundled in DBDeps
//   - logger: the fully configured zap.Logger for this app
//
// ThreadHub sets up request IDs and HTTP metrics globally, then mounts the
// health check, the Prometheus scrape endpoint, and the JSON API features:
// threads (create, read, reply, cascade delete) and the feed.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.ThreadHubMongoDatabase

	// Frontend cache revalidation client. A blank base URL yields a
	// disabled client, so handlers never have to branch on config.
	reval := revalidate.New(appCfg.RevalidateBaseURL, logger)

	// Cascade delete audit trail: DB store plus structured log,
	// per the audit_log_threads setting.
	audit := auditlog.New(auditstore.New(db), logger, auditlog.Config{
		Threads: appCfg.AuditLogThreads,
	})

	// Writes go through a per-IP limiter when configured. A nil limiter
	// passes everything through.
	var writeLimiter *ratelimit.Limiter
	if appCfg.WriteRateLimit > 0 {
		writeLimiter = ratelimit.New(appCfg.WriteRateLimit, time.Minute)
		logger.Info("write rate limiting enabled",
			zap.Int("requests_per_minute", appCfg.WriteRateLimit))
	}

	r := chi.NewRouter()

	r.Use(requestid.Middleware)
	r.Use(metrics.Middleware)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.ThreadHubMongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Prometheus scrape endpoint
	r.Handle("/metrics", promhttp.Handler())

	// JSON API
	threadsHandler := threadsfeature.NewHandler(db, logger, audit, reval)
	r.Mount("/api/threads", threadsfeature.Routes(threadsHandler, ratelimit.Middleware(writeLimiter)))

	feedHandler := feedfeature.NewHandler(db, logger, appCfg.FeedPageSize)
	r.Mount("/api/feed", feedfeature.Routes(feedHandler))

	return r, nil
}
