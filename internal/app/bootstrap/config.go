// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"

	"github.com/dalemusser/threadhub/internal/app/system/paging"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for ThreadHub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, feed_page_size, etc.
//   - Environment variables: THREADHUB_MONGO_URI, THREADHUB_FEED_PAGE_SIZE, etc.
//   - Command-line flags: --mongo_uri, --feed_page_size, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "thread_hub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	// Frontend cache revalidation
	{Name: "revalidate_base_url", Default: "", Desc: "Frontend base URL for cache revalidation callbacks (blank disables)"},

	// Feed settings
	{Name: "feed_page_size", Default: 20, Desc: "Default feed page size"},

	// Audit logging settings
	{Name: "audit_log_threads", Default: "all", Desc: "Cascade delete event logging: 'all' (db+log), 'db', 'log', or 'off'"},

	// Write protection
	{Name: "write_rate_limit", Default: 0, Desc: "Max write requests per minute per client IP (0 disables)"},

	// Background maintenance
	{Name: "integrity_scan_interval", Default: "0s", Desc: "Referential integrity scan interval (e.g., 10m; 0 disables)"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// It is called early in startup so that both WAFFLE and the app have
// access to configuration before any backends or handlers are built.
// CoreConfig comes from the shared WAFFLE layer; AppConfig is specific
// to this app and can be extended as the app grows.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, THREADHUB_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "THREADHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		// Revalidation
		RevalidateBaseURL: appValues.String("revalidate_base_url"),

		// Feed
		FeedPageSize: appValues.Int("feed_page_size"),

		// Audit logging
		AuditLogThreads: appValues.String("audit_log_threads"),

		// Write protection
		WriteRateLimit: appValues.Int("write_rate_limit"),

		// Background maintenance
		IntegrityScanInterval: appValues.Duration("integrity_scan_interval", 0),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// This is the right place to enforce required fields or invariants that
// involve both the core and app configs.
//
// ThreadHub validates the MongoDB URI format to catch configuration
// errors early, before attempting to connect.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	switch appCfg.AuditLogThreads {
	case "", "all", "db", "log", "off":
	default:
		return fmt.Errorf("audit_log_threads must be 'all', 'db', 'log', or 'off', got %q", appCfg.AuditLogThreads)
	}

	if appCfg.WriteRateLimit < 0 {
		return fmt.Errorf("write_rate_limit must not be negative, got %d", appCfg.WriteRateLimit)
	}

	if appCfg.FeedPageSize < 1 || appCfg.FeedPageSize > paging.MaxPageSize {
		return fmt.Errorf("feed_page_size must be between 1 and %d, got %d", paging.MaxPageSize, appCfg.FeedPageSize)
	}

	return nil
}
