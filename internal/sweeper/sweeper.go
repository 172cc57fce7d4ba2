// Package sweeper removes expired results in the background.
package sweeper

import (
	"context"
	"log/slog"
	"time"
)

// DefaultInterval is how often expired results are swept when no interval is configured.
const DefaultInterval = time.Hour

// Sweepable is the part of a result store the sweeper drives.
type Sweepable interface {
	Sweep(ctx context.Context) (int64, error)
}

// Start runs a goroutine that sweeps s every interval until ctx is cancelled.
// The returned channel is closed once the goroutine has exited.
//
// Stores also expire entries on read, so a missed tick only delays reclaiming space.
func Start(ctx context.Context, s Sweepable, interval time.Duration) <-chan struct{} {
	if interval <= 0 {
		interval = DefaultInterval
	}
	done := make(chan struct{})
	ticker := time.NewTicker(interval)

	go func() {
		defer close(done)
		defer ticker.Stop()
		slog.Info("Result sweeper started", "interval", interval)

		for {
			select {
			case <-ticker.C:
				RunOnce(ctx, s)
			case <-ctx.Done():
				slog.Info("Result sweeper shutting down", "reason", ctx.Err())
				return
			}
		}
	}()
	return done
}

// RunOnce performs a single sweep and logs the outcome.
func RunOnce(ctx context.Context, s Sweepable) int64 {
	removed, err := s.Sweep(ctx)
	if err != nil {
		if ctx.Err() != nil {
			slog.Debug("Result sweep interrupted by shutdown", "error", err)
			return 0
		}
		slog.Error("Result sweep failed", "error", err)
		return 0
	}
	if removed > 0 {
		slog.Info("Result sweep completed", "removed", removed)
	}
	return removed
}
