// internal/app/features/feed/handler.go
package feed

import (
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler is the dependency container for the feed feature.
type Handler struct {
	DB  *mongo.Database
	Log *zap.Logger

	// PageSize is the default page size when the request doesn't carry one.
	PageSize int
}

// NewHandler constructs a feed Handler.
func NewHandler(db *mongo.Database, logger *zap.Logger, pageSize int) *Handler {
	return &Handler{
		DB:       db,
		Log:      logger,
		PageSize: pageSize,
	}
}
