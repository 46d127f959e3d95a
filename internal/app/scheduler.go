package app

import (
	"context"
	"time"

	"github.com/laneview/laneview/internal/common"
	"github.com/laneview/laneview/internal/interfaces"
)

// startSnapshotScheduler refreshes cached market snapshots on a fixed interval.
// It reads registered companies from storage and updates stale snapshot components for their tickers.
func startSnapshotScheduler(ctx context.Context, storage interfaces.StorageManager, companies interfaces.CompanyService, metrics interfaces.MetricsService, logger *common.Logger, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("Snapshot scheduler: stopped")
			return
		case <-ticker.C:
			refreshSnapshots(ctx, storage, companies, metrics, logger)
		}
	}
}

func refreshSnapshots(ctx context.Context, storage interfaces.StorageManager, companies interfaces.CompanyService, metrics interfaces.MetricsService, logger *common.Logger) {
	start := time.Now()

	tickers := registeredTickers(ctx, storage, companies, logger)
	if len(tickers) == 0 {
		return
	}

	refreshed := 0
	for _, t := range tickers {
		if ctx.Err() != nil {
			return
		}
		if _, err := metrics.Snapshot(ctx, t); err != nil {
			logger.Warn().Str("ticker", t).Err(err).Msg("Snapshot refresh: fetch failed")
			continue
		}
		refreshed++
	}

	logger.Info().
		Int("tickers", refreshed).
		Dur("elapsed", time.Since(start)).
		Msg("Snapshot refresh: complete")
}

// registeredTickers collects the distinct tickers across every user's companies.
func registeredTickers(ctx context.Context, storage interfaces.StorageManager, companies interfaces.CompanyService, logger *common.Logger) []string {
	users, err := storage.InternalStore().ListUsers(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("Snapshot refresh: failed to list users")
		return nil
	}

	seen := make(map[string]bool)
	var tickers []string
	for _, userID := range users {
		list, err := companies.List(ctx, userID)
		if err != nil {
			logger.Warn().Str("user_id", userID).Err(err).Msg("Snapshot refresh: failed to list companies")
			continue
		}
		for _, c := range list {
			if !seen[c.Ticker] {
				seen[c.Ticker] = true
				tickers = append(tickers, c.Ticker)
			}
		}
	}
	return tickers
}
