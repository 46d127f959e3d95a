package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/laneview/laneview/internal/common"
	"github.com/laneview/laneview/internal/interfaces"
	"github.com/laneview/laneview/internal/models"
)

// Snapshot returns the cached market snapshot for a ticker, refreshing
// stale components from the provider when one is configured. A failed
// refresh keeps the cached component rather than erroring out.
func (s *Service) Snapshot(ctx context.Context, ticker string) (*models.MarketSnapshot, error) {
	now := time.Now()

	existing, _ := s.storage.MarketDataStorage().GetSnapshot(ctx, ticker)
	snapshot := &models.MarketSnapshot{Ticker: ticker}
	if existing != nil {
		snapshot = existing
	}

	if s.market == nil {
		if existing == nil {
			return nil, fmt.Errorf("market data client not configured and no cached data for '%s'", ticker)
		}
		return snapshot, nil
	}

	changed := false

	if !common.IsFresh(snapshot.QuoteUpdatedAt, common.FreshnessQuote) {
		quote, err := s.market.GetQuote(ctx, ticker)
		if err != nil {
			s.logger.Warn().Str("ticker", ticker).Err(err).Msg("Quote fetch failed, keeping cached value")
		} else {
			snapshot.Quote = quote
			snapshot.QuoteUpdatedAt = now
			changed = true
		}
	}

	if !common.IsFresh(snapshot.FundamentalsUpdatedAt, common.FreshnessFundamentals) {
		fundamentals, err := s.market.GetFundamentals(ctx, ticker)
		if err != nil {
			s.logger.Warn().Str("ticker", ticker).Err(err).Msg("Fundamentals fetch failed, keeping cached value")
		} else {
			snapshot.Fundamentals = fundamentals
			snapshot.Name = fundamentals.Name
			snapshot.FundamentalsUpdatedAt = now
			changed = true
		}
	}

	if !common.IsFresh(snapshot.HistoryUpdatedAt, common.FreshnessHistory) {
		// One year plus a buffer so the 1Y return always has a bar to land on
		bars, err := s.market.GetEOD(ctx, ticker, interfaces.WithDateRange(now.AddDate(-1, 0, -14), now))
		if err != nil {
			s.logger.Warn().Str("ticker", ticker).Err(err).Msg("History fetch failed, keeping cached value")
		} else {
			snapshot.History = bars
			snapshot.HistoryUpdatedAt = now
			changed = true
		}
	}

	if changed {
		if err := s.storage.MarketDataStorage().SaveSnapshot(ctx, snapshot); err != nil {
			s.logger.Warn().Str("ticker", ticker).Err(err).Msg("Failed to cache market snapshot")
		}
	}

	if snapshot.Quote == nil && snapshot.Fundamentals == nil && len(snapshot.History) == 0 {
		return nil, fmt.Errorf("no market data available for '%s'", ticker)
	}

	return snapshot, nil
}
