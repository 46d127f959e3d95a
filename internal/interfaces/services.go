// Package interfaces defines service contracts for LaneView
package interfaces

import (
	"context"

	"github.com/laneview/laneview/internal/models"
)

// CompanyService manages the user's registered companies
type CompanyService interface {
	// List returns the user's companies ordered by (segment, name)
	List(ctx context.Context, userID string) ([]*models.Company, error)

	// Get retrieves one company owned by the user
	Get(ctx context.Context, userID, companyID string) (*models.Company, error)

	// Create validates and stores a new company
	Create(ctx context.Context, userID, name, ticker, segment string) (*models.Company, error)

	// Delete removes a company owned by the user
	Delete(ctx context.Context, userID, companyID string) error
}

// MetricsService computes dashboard and detail bundles from market data
type MetricsService interface {
	// Snapshot returns the cached market snapshot for a ticker, refreshing
	// stale components when a provider is configured
	Snapshot(ctx context.Context, ticker string) (*models.MarketSnapshot, error)

	// Dashboard assembles the per-company metrics rows for a user
	Dashboard(ctx context.Context, userID string) (*models.DashboardResponse, error)

	// CompanyDetail assembles the detail bundle for one company
	CompanyDetail(ctx context.Context, userID, companyID string) (*models.CompanyDetail, error)

	// SegmentRevenueChart renders a PNG bar chart of revenue by segment
	SegmentRevenueChart(ctx context.Context, userID string) ([]byte, error)
}

// AnalyticsService produces AI commentary texts
type AnalyticsService interface {
	// SectorCommentary generates portfolio-wide sector commentary
	SectorCommentary(ctx context.Context, userID string) (string, error)

	// CompanyCommentary generates commentary for a single company
	CompanyCommentary(ctx context.Context, userID, companyID string) (string, error)
}

// Mailer delivers account emails. Implementations must degrade to logging
// when the provider is not configured.
type Mailer interface {
	SendVerificationEmail(ctx context.Context, toEmail, verifyLink string) error
	SendPasswordResetEmail(ctx context.Context, toEmail, resetLink string) error
}
