// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/threadhub/internal/app/store/audit"
	"github.com/dalemusser/threadhub/internal/app/system/tasks"
	"github.com/dalemusser/threadhub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// taskRunner owns the background maintenance jobs for the life of the
// process. Startup creates it; Shutdown stops it.
var taskRunner *tasks.Runner

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built. It is the
// place to apply runtime tuning and launch background maintenance that
// depends on config and backends.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if n := timeouts.ConfigureFromEnv(); n > 0 {
		logger.Info("timeout overrides applied", zap.Int("count", n))
	}

	if appCfg.IntegrityScanInterval > 0 {
		taskRunner = tasks.NewRunner(logger,
			tasks.IntegrityScanJob(
				deps.ThreadHubMongoDatabase,
				audit.New(deps.ThreadHubMongoDatabase),
				logger,
				appCfg.IntegrityScanInterval,
			),
		)
		taskRunner.Start()
	}

	return nil
}
