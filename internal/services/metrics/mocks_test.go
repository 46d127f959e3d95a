package metrics

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/laneview/laneview/internal/interfaces"
	"github.com/laneview/laneview/internal/models"
	"github.com/laneview/laneview/internal/services/company"
)

// mockMarketStorage is a concurrency-safe snapshot store.
type mockMarketStorage struct {
	mu        sync.Mutex
	snapshots map[string]*models.MarketSnapshot
	saveCount int
}

func newMockMarketStorage() *mockMarketStorage {
	return &mockMarketStorage{snapshots: make(map[string]*models.MarketSnapshot)}
}

func (m *mockMarketStorage) GetSnapshot(_ context.Context, ticker string) (*models.MarketSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap, ok := m.snapshots[ticker]
	if !ok {
		return nil, fmt.Errorf("market data for '%s' not found", ticker)
	}
	return snap, nil
}

func (m *mockMarketStorage) SaveSnapshot(_ context.Context, snapshot *models.MarketSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[snapshot.Ticker] = snapshot
	m.saveCount++
	return nil
}

func (m *mockMarketStorage) PurgeSnapshots(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.snapshots)
	m.snapshots = make(map[string]*models.MarketSnapshot)
	return n, nil
}

func (m *mockMarketStorage) saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveCount
}

type mockStorageManager struct {
	market *mockMarketStorage

	mu        sync.Mutex
	rawWrites map[string][]byte // "subdir/key" -> data
}

func newMockStorageManager() *mockStorageManager {
	return &mockStorageManager{
		market:    newMockMarketStorage(),
		rawWrites: make(map[string][]byte),
	}
}

func (m *mockStorageManager) InternalStore() interfaces.InternalStore         { return nil }
func (m *mockStorageManager) UserDataStore() interfaces.UserDataStore         { return nil }
func (m *mockStorageManager) MarketDataStorage() interfaces.MarketDataStorage { return m.market }
func (m *mockStorageManager) DataPath() string                                { return "/tmp/test" }
func (m *mockStorageManager) Close() error                                    { return nil }

func (m *mockStorageManager) WriteRaw(subdir, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rawWrites[subdir+"/"+key] = data
	return nil
}

// mockCompanyService serves a fixed per-user company list.
type mockCompanyService struct {
	companies map[string][]*models.Company // by userID
}

func newMockCompanyService() *mockCompanyService {
	return &mockCompanyService{companies: make(map[string][]*models.Company)}
}

func (m *mockCompanyService) add(c *models.Company) {
	m.companies[c.UserID] = append(m.companies[c.UserID], c)
}

func (m *mockCompanyService) List(_ context.Context, userID string) ([]*models.Company, error) {
	return m.companies[userID], nil
}

func (m *mockCompanyService) Get(_ context.Context, userID, companyID string) (*models.Company, error) {
	for _, c := range m.companies[userID] {
		if c.ID == companyID {
			return c, nil
		}
	}
	return nil, company.ErrNotFound
}

func (m *mockCompanyService) Create(_ context.Context, _, _, _, _ string) (*models.Company, error) {
	return nil, fmt.Errorf("not implemented")
}

func (m *mockCompanyService) Delete(_ context.Context, _, _ string) error {
	return fmt.Errorf("not implemented")
}

// mockMarketClient returns canned provider data and counts calls.
type mockMarketClient struct {
	quote           *models.Quote
	quoteErr        error
	fundamentals    *models.Fundamentals
	fundamentalsErr error
	bars            []models.EODBar
	eodErr          error

	quoteCalls        atomic.Int32
	fundamentalsCalls atomic.Int32
	eodCalls          atomic.Int32
}

func (m *mockMarketClient) GetQuote(_ context.Context, _ string) (*models.Quote, error) {
	m.quoteCalls.Add(1)
	if m.quoteErr != nil {
		return nil, m.quoteErr
	}
	return m.quote, nil
}

func (m *mockMarketClient) GetFundamentals(_ context.Context, _ string) (*models.Fundamentals, error) {
	m.fundamentalsCalls.Add(1)
	if m.fundamentalsErr != nil {
		return nil, m.fundamentalsErr
	}
	return m.fundamentals, nil
}

func (m *mockMarketClient) GetEOD(_ context.Context, _ string, _ ...interfaces.EODOption) ([]models.EODBar, error) {
	m.eodCalls.Add(1)
	if m.eodErr != nil {
		return nil, m.eodErr
	}
	return m.bars, nil
}

// fp returns a pointer to v.
func fp(v float64) *float64 { return &v }
