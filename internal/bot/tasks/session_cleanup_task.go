package tasks

import (
	"context"
	"fmt"
	"time"
)

// newSessionCleanupTask creates the scheduled task that removes download
// sessions that have not been touched within the configured TTL.
func newSessionCleanupTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "session_cleanup")
	ttl := deps.Config.Scheduler.SessionTTL

	return func(ctx context.Context) error {
		log.InfoContext(ctx, "Starting scheduled session cleanup task...", "ttl", ttl)
		startTime := time.Now()

		removed, err := deps.Store.DeleteExpiredSessions(ctx, ttl)

		duration := time.Since(startTime)

		if err != nil {
			log.ErrorContext(ctx, "Session cleanup task failed", "error", err, "duration", duration)
			return fmt.Errorf("session cleanup failed: %w", err)
		}

		log.InfoContext(ctx, "Scheduled session cleanup task completed", "removed", removed, "duration", duration)
		return nil
	}
}
