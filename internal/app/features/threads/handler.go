// internal/app/features/threads/handler.go
package threads

import (
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/dalemusser/threadhub/internal/app/system/auditlog"
	"github.com/dalemusser/threadhub/internal/app/system/revalidate"
)

// Handler is the shared dependency container for the threads feature. It
// holds the Mongo database, the logger, the audit logger for cascade
// deletes, and the frontend revalidation client, so the various handlers
// (create, reply, view, delete) can all share the same core dependencies.
type Handler struct {
	DB    *mongo.Database
	Log   *zap.Logger
	Audit *auditlog.Logger
	Reval *revalidate.Client
}

// NewHandler constructs a new threads Handler. It is typically called from
// the bootstrap BuildHandler function, where the application's DB and
// logger are already initialized.
func NewHandler(db *mongo.Database, logger *zap.Logger, audit *auditlog.Logger, reval *revalidate.Client) *Handler {
	return &Handler{
		DB:    db,
		Log:   logger,
		Audit: audit,
		Reval: reval,
	}
}
