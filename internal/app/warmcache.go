package app

import (
	"context"
	"os"
	"time"

	"github.com/laneview/laneview/internal/common"
	"github.com/laneview/laneview/internal/interfaces"
)

// warmSnapshots pre-fetches market snapshots for every registered ticker on startup so the first dashboard request is fast.
func warmSnapshots(ctx context.Context, storage interfaces.StorageManager, companies interfaces.CompanyService, metrics interfaces.MetricsService, logger *common.Logger) {
	// Check env var override
	if os.Getenv("LANEVIEW_WARM_CACHE") == "off" {
		logger.Info().Msg("Warm cache: disabled via LANEVIEW_WARM_CACHE=off")
		return
	}

	start := time.Now()

	tickers := registeredTickers(ctx, storage, companies, logger)
	if len(tickers) == 0 {
		logger.Info().Msg("Warm cache: no registered companies, skipping")
		return
	}

	logger.Info().Int("tickers", len(tickers)).Msg("Warm cache: starting")

	warmed := 0
	for _, ticker := range tickers {
		if ctx.Err() != nil {
			return
		}
		// Snapshot is incremental, only stale or missing components are fetched
		if _, err := metrics.Snapshot(ctx, ticker); err != nil {
			logger.Warn().Str("ticker", ticker).Err(err).Msg("Warm cache: snapshot fetch failed")
			continue
		}
		warmed++
	}

	logger.Info().
		Int("tickers", warmed).
		Dur("elapsed", time.Since(start)).
		Msg("Warm cache: complete")
}
