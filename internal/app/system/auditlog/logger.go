// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"

	"github.com/dalemusser/threadhub/internal/app/store/audit"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Config holds audit logging configuration.
type Config struct {
	// Threads controls logging for thread lifecycle events (cascade deletes).
	// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off" (disabled)
	Threads string
}

// Logger provides convenience methods for logging audit events.
// It logs to both MongoDB (via audit.Store) and structured logs (via zap).
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

// logToZap logs the event to zap with consistent structure.
func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("root_id", event.RootID.Hex()),
		zap.Int("victim_count", len(event.VictimIDs)),
	}

	if !event.Success {
		// Surviving victim ids are what an operator needs to repair the
		// owner lists, so they go into the log verbatim.
		victims := make([]string, 0, len(event.VictimIDs))
		for _, id := range event.VictimIDs {
			victims = append(victims, id.Hex())
		}
		fields = append(fields, zap.Strings("victim_ids", victims))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event based on configuration.
// If the logger is nil, this is a no-op (allows tests to use nil audit logger).
// Logging destination is controlled by config: "all", "db", "log", or "off".
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	setting := l.config.Threads
	if setting == "" {
		setting = "all"
	}
	if setting == "off" {
		return
	}

	if setting == "all" || setting == "log" {
		l.logToZap(event)
	}

	if setting == "all" || setting == "db" {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

// CascadeDeleteSucceeded logs a completed subtree deletion.
func (l *Logger) CascadeDeleteSucceeded(ctx context.Context, rootID primitive.ObjectID, victimIDs, authorIDs, communityIDs []primitive.ObjectID) {
	l.Log(ctx, audit.Event{
		EventType:    audit.EventCascadeDelete,
		RootID:       rootID,
		VictimIDs:    victimIDs,
		AuthorIDs:    authorIDs,
		CommunityIDs: communityIDs,
		Success:      true,
	})
}

// CascadeDeleteFailed logs a cascade whose records were deleted but whose
// owner-list retraction failed. The event keeps the surviving victim id set
// for later repair.
func (l *Logger) CascadeDeleteFailed(ctx context.Context, rootID primitive.ObjectID, victimIDs, authorIDs, communityIDs []primitive.ObjectID, reason string) {
	l.Log(ctx, audit.Event{
		EventType:     audit.EventCascadeDelete,
		RootID:        rootID,
		VictimIDs:     victimIDs,
		AuthorIDs:     authorIDs,
		CommunityIDs:  communityIDs,
		Success:       false,
		FailureReason: reason,
	})
}
