// Package analytics produces Gemini commentary for the sector and
// company panels.
package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/laneview/laneview/internal/common"
	"github.com/laneview/laneview/internal/interfaces"
)

// Compile-time interface check
var _ interfaces.AnalyticsService = (*Service)(nil)

// ErrUnavailable is returned when no Gemini client is configured.
var ErrUnavailable = errors.New("analytics unavailable")

// EmptyPortfolioText is shown instead of commentary when the user has no
// companies yet.
const EmptyPortfolioText = "No companies added yet. Please add logistics companies to view sector analysis."

const (
	sectorWordCap  = 150
	companyWordCap = 100
)

// Service implements AnalyticsService
type Service struct {
	companies interfaces.CompanyService
	metrics   interfaces.MetricsService
	gemini    interfaces.GeminiClient // nil when no API key is configured
	logger    *common.Logger
}

// NewService creates a new analytics service
func NewService(companies interfaces.CompanyService, metrics interfaces.MetricsService, gemini interfaces.GeminiClient, logger *common.Logger) *Service {
	return &Service{
		companies: companies,
		metrics:   metrics,
		gemini:    gemini,
		logger:    logger,
	}
}

// sectorMetric is the compact per-company summary fed to the sector prompt.
type sectorMetric struct {
	Name          string   `json:"name"`
	Ticker        string   `json:"ticker"`
	Segment       string   `json:"segment"`
	Revenue       *float64 `json:"revenue"`
	NetIncome     *float64 `json:"net_income"`
	NetMargin     *float64 `json:"net_margin"`
	ROE           *float64 `json:"roe"`
	DebtToEquity  *float64 `json:"debt_to_equity"`
	CurrentRatio  *float64 `json:"current_ratio"`
	OneYearReturn *float64 `json:"one_year_return"`
}

// SectorCommentary generates portfolio-wide sector commentary.
func (s *Service) SectorCommentary(ctx context.Context, userID string) (string, error) {
	companies, err := s.companies.List(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to list companies: %w", err)
	}
	if len(companies) == 0 {
		return EmptyPortfolioText, nil
	}

	if s.gemini == nil {
		return "", ErrUnavailable
	}

	dashboard, err := s.metrics.Dashboard(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to compute metrics: %w", err)
	}

	summary := make([]sectorMetric, 0, len(dashboard.Companies))
	for _, row := range dashboard.Companies {
		summary = append(summary, sectorMetric{
			Name:          row.Name,
			Ticker:        row.Ticker,
			Segment:       string(row.Segment),
			Revenue:       row.Revenue,
			NetIncome:     row.NetIncome,
			NetMargin:     row.NetMargin,
			ROE:           row.ROE,
			DebtToEquity:  row.DebtToEquity,
			CurrentRatio:  row.CurrentRatio,
			OneYearReturn: row.OneYearReturn,
		})
	}
	metricsJSON, err := json.Marshal(summary)
	if err != nil {
		return "", fmt.Errorf("failed to encode metrics: %w", err)
	}

	prompt := fmt.Sprintf(
		"You are a financial analyst specialising in logistics, ports and warehousing.\n"+
			"You are given a portfolio of listed companies with some key metrics.\n"+
			"Provide a concise sector-level commentary in at most 150 words.\n"+
			"Highlight broad themes: beta (calculate or research), risk adjusted portfolio returns, growth/profitability, leverage, liquidity and recent price momentum.\n"+
			"Avoid any investment recommendation language like 'buy/sell/hold'.\n\n"+
			"Metrics JSON:\n%s\n\n"+
			"Now write the 150-word commentary:",
		metricsJSON,
	)

	text, err := s.gemini.GenerateContent(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("failed to generate sector commentary: %w", err)
	}

	s.logger.Debug().Str("user", userID).Int("companies", len(summary)).Msg("Sector commentary generated")
	return capWords(strings.TrimSpace(text), sectorWordCap), nil
}

// CompanyCommentary generates commentary for a single company.
func (s *Service) CompanyCommentary(ctx context.Context, userID, companyID string) (string, error) {
	c, err := s.companies.Get(ctx, userID, companyID)
	if err != nil {
		return "", err
	}

	if s.gemini == nil {
		return "", ErrUnavailable
	}

	detail, err := s.metrics.CompanyDetail(ctx, userID, companyID)
	if err != nil {
		return "", fmt.Errorf("failed to compute ratios: %w", err)
	}

	ratiosJSON, err := json.Marshal(detail.Ratios)
	if err != nil {
		return "", fmt.Errorf("failed to encode ratios: %w", err)
	}

	prompt := fmt.Sprintf(
		"You are a financial analyst specialising in logistics, ports and warehousing.\n"+
			"Provide a focused company-level commentary with brief background on the business it does (max 150 words).\n"+
			"Comment briefly on size (revenue), profitability, leverage, liquidity and recent price performance.\n"+
			"Avoid the words 'buy', 'sell', 'hold', 'recommend', 'target price'.\n\n"+
			"Company name: %s\n"+
			"Ticker: %s\n"+
			"Segment: %s\n"+
			"Ratios JSON: %s\n\n"+
			"Now write the 100-word commentary:",
		c.Name, c.Ticker, c.Segment, ratiosJSON,
	)

	text, err := s.gemini.GenerateContent(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("failed to generate company commentary: %w", err)
	}

	s.logger.Debug().Str("user", userID).Str("ticker", c.Ticker).Msg("Company commentary generated")
	return capWords(strings.TrimSpace(text), companyWordCap), nil
}

// capWords enforces a hard word limit. Text at or under the limit passes
// through untouched, whitespace included.
func capWords(text string, maxWords int) string {
	words := strings.Fields(text)
	if len(words) <= maxWords {
		return text
	}
	return strings.Join(words[:maxWords], " ")
}
