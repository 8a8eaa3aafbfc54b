// internal/app/system/tasks/jobs.go
package tasks

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/dalemusser/threadhub/internal/app/store/audit"
	"github.com/dalemusser/threadhub/internal/app/store/queries/integrity"
	"github.com/dalemusser/threadhub/internal/app/system/metrics"
)

// IntegrityScanJob creates a job that counts orphan replies and stale
// thread references and publishes them as metrics. The scan only reports;
// repairs go through the operator CLI.
func IntegrityScanJob(db *mongo.Database, auditStore *audit.Store, logger *zap.Logger, interval time.Duration) Job {
	return Job{
		Name:     "integrity-scan",
		Interval: interval,
		Run: func(ctx context.Context) error {
			report, err := integrity.Scan(ctx, db, 0)
			if err != nil {
				return err
			}

			metrics.SetIntegrityCounts(
				len(report.OrphanReplies),
				report.StaleUserRefs,
				report.StaleCommunityRefs)

			if report.Clean() {
				logger.Debug("integrity scan clean")
			} else {
				logger.Warn("integrity scan found drift",
					zap.Int("orphan_replies", len(report.OrphanReplies)),
					zap.Int("stale_user_refs", report.StaleUserRefs),
					zap.Int("stale_community_refs", report.StaleCommunityRefs))
			}

			if pending, err := auditStore.CountUnrepaired(ctx); err == nil && pending > 0 {
				logger.Warn("failed cascades awaiting repair", zap.Int64("pending", pending))
			}
			return nil
		},
	}
}
