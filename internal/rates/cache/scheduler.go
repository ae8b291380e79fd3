package cache

import (
	"context"
	"log/slog"
	"time"
)

// StartScheduler opportunistically refreshes the cache: every check interval
// it looks at IsStale and triggers a refresh when needed. It blocks until
// ctx is cancelled, so run it in its own goroutine.
func (c *Cache) StartScheduler(ctx context.Context) {
	ticker := time.NewTicker(c.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if !c.IsStale() {
				continue
			}
			if err := c.Refresh(ctx); err != nil {
				slog.Error("scheduled rate refresh failed", "error", err)
			}

		case <-ctx.Done():
			slog.Info("rate refresh scheduler stopped")
			return
		}
	}
}
