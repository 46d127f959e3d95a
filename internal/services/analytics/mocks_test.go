package analytics

import (
	"context"
	"errors"
	"fmt"

	"github.com/laneview/laneview/internal/models"
	"github.com/laneview/laneview/internal/services/company"
)

// mockCompanyService serves a fixed per-user company list.
type mockCompanyService struct {
	companies map[string][]*models.Company
	listErr   error
}

func newMockCompanyService() *mockCompanyService {
	return &mockCompanyService{companies: make(map[string][]*models.Company)}
}

func (m *mockCompanyService) add(userID string, c *models.Company) {
	m.companies[userID] = append(m.companies[userID], c)
}

func (m *mockCompanyService) List(ctx context.Context, userID string) ([]*models.Company, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.companies[userID], nil
}

func (m *mockCompanyService) Get(ctx context.Context, userID, companyID string) (*models.Company, error) {
	for _, c := range m.companies[userID] {
		if c.ID == companyID {
			return c, nil
		}
	}
	return nil, company.ErrNotFound
}

func (m *mockCompanyService) Create(ctx context.Context, userID, name, ticker, segment string) (*models.Company, error) {
	return nil, errors.New("not implemented")
}

func (m *mockCompanyService) Delete(ctx context.Context, userID, companyID string) error {
	return errors.New("not implemented")
}

// mockMetricsService returns canned dashboard and detail bundles.
type mockMetricsService struct {
	dashboard    *models.DashboardResponse
	dashboardErr error
	detail       *models.CompanyDetail
	detailErr    error
}

func (m *mockMetricsService) Snapshot(ctx context.Context, ticker string) (*models.MarketSnapshot, error) {
	return nil, errors.New("not implemented")
}

func (m *mockMetricsService) Dashboard(ctx context.Context, userID string) (*models.DashboardResponse, error) {
	if m.dashboardErr != nil {
		return nil, m.dashboardErr
	}
	if m.dashboard == nil {
		return &models.DashboardResponse{Companies: []models.CompanyMetrics{}}, nil
	}
	return m.dashboard, nil
}

func (m *mockMetricsService) CompanyDetail(ctx context.Context, userID, companyID string) (*models.CompanyDetail, error) {
	if m.detailErr != nil {
		return nil, m.detailErr
	}
	if m.detail == nil {
		return &models.CompanyDetail{}, nil
	}
	return m.detail, nil
}

func (m *mockMetricsService) SegmentRevenueChart(ctx context.Context, userID string) ([]byte, error) {
	return nil, errors.New("not implemented")
}

// mockGeminiClient records prompts and replays a fixed response.
type mockGeminiClient struct {
	response string
	err      error
	prompts  []string
}

func (m *mockGeminiClient) GenerateContent(ctx context.Context, prompt string) (string, error) {
	m.prompts = append(m.prompts, prompt)
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func fp(v float64) *float64 {
	return &v
}

func repeatWords(word string, n int) string {
	out := ""
	for i := 0; i < n; i++ {
		if i > 0 {
			out += " "
		}
		out += fmt.Sprintf("%s%d", word, i)
	}
	return out
}
