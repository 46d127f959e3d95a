package surrealdb

import (
	"context"
	"fmt"

	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/laneview/laneview/internal/common"
	"github.com/laneview/laneview/internal/models"
)

type MarketStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

func NewMarketStore(db *surrealdb.DB, logger *common.Logger) *MarketStore {
	return &MarketStore{
		db:     db,
		logger: logger,
	}
}

func (s *MarketStore) GetSnapshot(ctx context.Context, ticker string) (*models.MarketSnapshot, error) {
	snap, err := surrealdb.Select[models.MarketSnapshot](ctx, s.db, surrealmodels.NewRecordID("market_data", ticker))
	if err != nil {
		return nil, fmt.Errorf("failed to select market data: %w", err)
	}
	if snap == nil {
		return nil, fmt.Errorf("market data for '%s' not found", ticker)
	}
	return snap, nil
}

func (s *MarketStore) SaveSnapshot(ctx context.Context, snap *models.MarketSnapshot) error {
	sql := "UPSERT $rid CONTENT $data"
	vars := map[string]any{"rid": surrealmodels.NewRecordID("market_data", snap.Ticker), "data": snap}

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		_, err := surrealdb.Query[[]models.MarketSnapshot](ctx, s.db, sql, vars)
		if err == nil {
			s.logger.Debug().Str("ticker", snap.Ticker).Msg("Market snapshot saved")
			return nil
		}
		lastErr = err
	}
	return fmt.Errorf("failed to save market data after retries: %w", lastErr)
}

func (s *MarketStore) PurgeSnapshots(ctx context.Context) (int, error) {
	sql := "DELETE market_data RETURN BEFORE"
	results, err := surrealdb.Query[[]models.MarketSnapshot](ctx, s.db, sql, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to purge market data: %w", err)
	}
	if results != nil && len(*results) > 0 {
		return len((*results)[0].Result), nil
	}
	return 0, nil
}
