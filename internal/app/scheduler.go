package app

import (
	"context"
	"time"
)

// startScheduler refreshes the portfolio snapshot on a fixed interval.
// An immediate first pass warms the snapshot so the HTTP layer has rows
// as soon as possible after startup.
func startScheduler(ctx context.Context, a *App, interval time.Duration) {
	refresh(ctx, a)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.Logger.Info().Msg("Refresh scheduler: stopped")
			return
		case <-ticker.C:
			refresh(ctx, a)
		}
	}
}

func refresh(ctx context.Context, a *App) {
	start := time.Now()

	result, err := a.RefreshNow(ctx)
	if err != nil {
		a.Logger.Warn().Err(err).Msg("Scheduled refresh failed")
		return
	}

	a.Logger.Debug().
		Str("pass", result.PassID).
		Int("rows", len(result.Rows)).
		Dur("elapsed", time.Since(start)).
		Msg("Scheduled refresh: complete")
}
