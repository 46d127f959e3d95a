// Package metrics computes dashboard and company detail bundles from
// cached market data.
package metrics

import (
	"context"
	"fmt"
	"sync"

	"github.com/laneview/laneview/internal/common"
	"github.com/laneview/laneview/internal/interfaces"
	"github.com/laneview/laneview/internal/models"
)

// Compile-time interface check
var _ interfaces.MetricsService = (*Service)(nil)

// Service implements MetricsService
type Service struct {
	storage   interfaces.StorageManager
	companies interfaces.CompanyService
	market    interfaces.MarketDataClient // nil when no provider key is configured
	logger    *common.Logger
}

// NewService creates a new metrics service
func NewService(storage interfaces.StorageManager, companies interfaces.CompanyService, market interfaces.MarketDataClient, logger *common.Logger) *Service {
	return &Service{
		storage:   storage,
		companies: companies,
		market:    market,
		logger:    logger,
	}
}

// Dashboard assembles the per-company metrics rows for a user. Rows keep
// the company list's (segment, name) order; a company whose market data
// cannot be fetched still gets a row with nil figures.
func (s *Service) Dashboard(ctx context.Context, userID string) (*models.DashboardResponse, error) {
	companies, err := s.companies.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}

	rows := make([]models.CompanyMetrics, len(companies))

	const maxConcurrent = 5
	sem := make(chan struct{}, maxConcurrent)
	var wg sync.WaitGroup

	for i, c := range companies {
		rows[i] = models.CompanyMetrics{
			ID:      c.ID,
			Name:    c.Name,
			Ticker:  c.Ticker,
			Segment: c.Segment,
		}

		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			break
		}
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		go func(i int, ticker string) {
			defer wg.Done()
			defer func() { <-sem }()

			snapshot, err := s.Snapshot(ctx, ticker)
			if err != nil {
				s.logger.Warn().Str("ticker", ticker).Err(err).Msg("Dashboard row has no market data")
				return
			}
			fillMetrics(&rows[i], snapshot)
		}(i, c.Ticker)
	}

	wg.Wait()

	return &models.DashboardResponse{Companies: rows}, nil
}
