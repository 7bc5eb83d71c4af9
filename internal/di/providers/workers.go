package providers

import (
	"context"
	"time"

	"github.com/samber/do/v2"

	"github.com/nutritrackapp/nutritrack-server/internal/logger"
	"github.com/nutritrackapp/nutritrack-server/internal/service"
)

// cacheRetention is how long stale cached products are kept around before
// the sweep removes them. Stale rows are deliberately useful (a later miss
// can refresh them in place), so this is generous.
const cacheRetention = 180 * 24 * time.Hour

// SessionCleanupJob runs periodic session cleanup.
type SessionCleanupJob struct {
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (j *SessionCleanupJob) Shutdown() error {
	j.cancel()
	return nil
}

// ProvideSessionCleanupJob provides the periodic session cleanup job.
func ProvideSessionCleanupJob(i do.Injector) (*SessionCleanupJob, error) {
	authService := do.MustInvoke[*service.AuthService](i)
	log := do.MustInvoke[*logger.Logger](i)

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		// Initial cleanup on startup
		if count, err := authService.CleanupExpiredSessions(ctx); err != nil {
			log.Warn("Initial session cleanup failed", "error", err)
		} else if count > 0 {
			log.Info("Initial session cleanup completed", "deleted", count)
		}

		for {
			select {
			case <-ticker.C:
				if count, err := authService.CleanupExpiredSessions(ctx); err != nil {
					log.Warn("Session cleanup failed", "error", err)
				} else if count > 0 {
					log.Info("Session cleanup completed", "deleted", count)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	log.Info("Session cleanup job started")

	return &SessionCleanupJob{cancel: cancel}, nil
}

// CacheRetentionJob prunes cached products that have not been refreshed in a
// long time.
type CacheRetentionJob struct {
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (j *CacheRetentionJob) Shutdown() error {
	j.cancel()
	return nil
}

// ProvideCacheRetentionJob provides the daily product cache retention sweep.
func ProvideCacheRetentionJob(i do.Injector) (*CacheRetentionJob, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				cutoff := time.Now().UTC().Add(-cacheRetention)
				if count, err := storeHandle.DeleteCachedProductsBefore(ctx, cutoff); err != nil {
					log.Warn("Cache retention sweep failed", "error", err)
				} else if count > 0 {
					log.Info("Cache retention sweep completed", "deleted", count)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	log.Info("Cache retention job started")

	return &CacheRetentionJob{cancel: cancel}, nil
}
