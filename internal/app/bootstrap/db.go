// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/threadhub/internal/app/system/indexes"
	"github.com/dalemusser/threadhub/internal/app/system/validators"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// EnsureSchema creates the collection validators and indexes the stores
// rely on. It runs on every startup; both steps are idempotent, so a
// restart against an already provisioned database is a no-op.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	db := deps.ThreadHubMongoDatabase

	if err := validators.EnsureAll(ctx, db); err != nil {
		logger.Error("collection validator setup failed", zap.Error(err))
		return err
	}

	if err := indexes.EnsureAll(ctx, db); err != nil {
		logger.Error("index setup failed", zap.Error(err))
		return err
	}

	logger.Info("schema ensured", zap.String("database", appCfg.MongoDatabase))
	return nil
}
