// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like:
//   - HTTP/HTTPS ports and TLS configuration
//   - Logging level and format
//   - CORS settings
//   - Request body size limits
//
// AppConfig is where you put everything specific to YOUR application.
// Add fields here as the application grows. The struct is passed to
// most lifecycle hooks, so any configuration needed during startup,
// request handling, or shutdown should live here.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Driver connection pool ceiling
	MongoMinPoolSize uint64 // Driver connection pool floor

	// Frontend cache revalidation
	RevalidateBaseURL string // Frontend base URL for revalidation callbacks (blank disables)

	// Feed configuration
	FeedPageSize int // Default page size for GET /api/feed

	// Audit logging configuration
	AuditLogThreads string // Cascade delete event logging: 'all' (db+log), 'db', 'log', or 'off'

	// Write protection
	WriteRateLimit int // Max write requests per minute per client IP (0 disables)

	// Background maintenance
	IntegrityScanInterval time.Duration // Referential integrity scan interval (0 disables)
}
