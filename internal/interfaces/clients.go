// Package interfaces defines service contracts for LaneView
package interfaces

import (
	"context"
	"time"

	"github.com/laneview/laneview/internal/models"
)

// MarketDataClient provides access to the market data provider API
type MarketDataClient interface {
	// GetQuote retrieves the latest price snapshot
	GetQuote(ctx context.Context, ticker string) (*models.Quote, error)

	// GetFundamentals retrieves profile, figures and financial statements
	GetFundamentals(ctx context.Context, ticker string) (*models.Fundamentals, error)

	// GetEOD retrieves end-of-day price history
	GetEOD(ctx context.Context, ticker string, opts ...EODOption) ([]models.EODBar, error)
}

// EODOption configures EOD data requests
type EODOption func(*EODParams)

// EODParams holds EOD query parameters
type EODParams struct {
	From   time.Time
	To     time.Time
	Period string // d=daily, w=weekly, m=monthly
	Order  string // a=ascending, d=descending
	Limit  int
}

// WithDateRange sets the date range for EOD query
func WithDateRange(from, to time.Time) EODOption {
	return func(p *EODParams) {
		p.From = from
		p.To = to
	}
}

// WithPeriod sets the period for EOD query
func WithPeriod(period string) EODOption {
	return func(p *EODParams) {
		p.Period = period
	}
}

// WithLimit sets the limit for EOD query
func WithLimit(limit int) EODOption {
	return func(p *EODParams) {
		p.Limit = limit
	}
}

// GeminiClient provides access to the Gemini API
type GeminiClient interface {
	// GenerateContent generates AI content from a prompt
	GenerateContent(ctx context.Context, prompt string) (string, error)
}
