package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/laneview/laneview/internal/app"
	"github.com/laneview/laneview/internal/common"
	"github.com/laneview/laneview/internal/models"
	"github.com/laneview/laneview/internal/services/company"
	"github.com/laneview/laneview/internal/storage"
)

// stubMetricsService replays canned metrics payloads.
type stubMetricsService struct {
	dashboard    *models.DashboardResponse
	dashboardErr error
	detail       *models.CompanyDetail
	detailErr    error
	chart        []byte
	chartErr     error
}

func (m *stubMetricsService) Snapshot(ctx context.Context, ticker string) (*models.MarketSnapshot, error) {
	return &models.MarketSnapshot{Ticker: ticker}, nil
}

func (m *stubMetricsService) Dashboard(ctx context.Context, userID string) (*models.DashboardResponse, error) {
	if m.dashboardErr != nil {
		return nil, m.dashboardErr
	}
	if m.dashboard == nil {
		return &models.DashboardResponse{Companies: []models.CompanyMetrics{}}, nil
	}
	return m.dashboard, nil
}

func (m *stubMetricsService) CompanyDetail(ctx context.Context, userID, companyID string) (*models.CompanyDetail, error) {
	if m.detailErr != nil {
		return nil, m.detailErr
	}
	if m.detail == nil {
		return &models.CompanyDetail{}, nil
	}
	return m.detail, nil
}

func (m *stubMetricsService) SegmentRevenueChart(ctx context.Context, userID string) ([]byte, error) {
	if m.chartErr != nil {
		return nil, m.chartErr
	}
	return m.chart, nil
}

// stubAnalyticsService replays canned commentary.
type stubAnalyticsService struct {
	sectorText  string
	sectorErr   error
	companyText string
	companyErr  error
}

func (m *stubAnalyticsService) SectorCommentary(ctx context.Context, userID string) (string, error) {
	if m.sectorErr != nil {
		return "", m.sectorErr
	}
	return m.sectorText, nil
}

func (m *stubAnalyticsService) CompanyCommentary(ctx context.Context, userID, companyID string) (string, error) {
	if m.companyErr != nil {
		return "", m.companyErr
	}
	return m.companyText, nil
}

// captureMailer records outgoing mail instead of sending it.
type captureMailer struct {
	verifyTo    []string
	verifyLinks []string
	resetTo     []string
	resetLinks  []string
}

func (m *captureMailer) SendVerificationEmail(ctx context.Context, toEmail, verifyLink string) error {
	m.verifyTo = append(m.verifyTo, toEmail)
	m.verifyLinks = append(m.verifyLinks, verifyLink)
	return nil
}

func (m *captureMailer) SendPasswordResetEmail(ctx context.Context, toEmail, resetLink string) error {
	m.resetTo = append(m.resetTo, toEmail)
	m.resetLinks = append(m.resetLinks, resetLink)
	return nil
}

// testServer bundles the server with the fakes the tests poke at.
type testServer struct {
	*Server
	metrics   *stubMetricsService
	analytics *stubAnalyticsService
	mailer    *captureMailer
}

// newTestServer builds a server over real storage in a temp dir, with the
// company service live and metrics/analytics stubbed.
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	dir := t.TempDir()
	logger := common.NewSilentLogger()

	cfg := common.NewDefaultConfig()
	cfg.Storage.Internal.Path = filepath.Join(dir, "internal")
	cfg.Storage.User.Path = filepath.Join(dir, "user")
	cfg.Storage.Market.Path = filepath.Join(dir, "market")
	cfg.Auth.JWTSecret = "test-secret"

	mgr, err := storage.NewStorageManager(logger, cfg)
	if err != nil {
		t.Fatalf("NewStorageManager failed: %v", err)
	}
	t.Cleanup(func() { mgr.Close() })

	metrics := &stubMetricsService{}
	analytics := &stubAnalyticsService{}
	mailer := &captureMailer{}

	a := &app.App{
		Config:    cfg,
		Logger:    logger,
		Storage:   mgr,
		Mailer:    mailer,
		Companies: company.NewService(mgr, logger),
		Metrics:   metrics,
		Analytics: analytics,
	}
	return &testServer{
		Server:    NewServer(a),
		metrics:   metrics,
		analytics: analytics,
		mailer:    mailer,
	}
}

func jsonBody(t *testing.T, v interface{}) *bytes.Buffer {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("failed to marshal JSON: %v", err)
	}
	return bytes.NewBuffer(data)
}

// doRequest runs a request through the full middleware-wrapped handler.
func doRequest(t *testing.T, srv *testServer, method, path string, body io.Reader, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func doJSON(t *testing.T, srv *testServer, method, path string, payload interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()
	headers := map[string]string{"Content-Type": "application/json"}
	if token != "" {
		headers["Authorization"] = "Bearer " + token
	}
	var body io.Reader
	if payload != nil {
		body = jsonBody(t, payload)
	}
	return doRequest(t, srv, method, path, body, headers)
}

func doGet(t *testing.T, srv *testServer, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	headers := map[string]string{}
	if token != "" {
		headers["Authorization"] = "Bearer " + token
	}
	return doRequest(t, srv, http.MethodGet, path, nil, headers)
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
}

func errorDetail(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp ErrorResponse
	decodeBody(t, rec, &resp)
	return resp.Detail
}

// registerUser registers an account through the handler.
func registerUser(t *testing.T, srv *testServer, username, email, password string) {
	t.Helper()
	rec := doJSON(t, srv, http.MethodPost, "/register", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	}, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("registerUser: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
}

// verifyUser flips the verified flag directly in storage.
func verifyUser(t *testing.T, srv *testServer, username string) {
	t.Helper()
	ctx := context.Background()
	store := srv.app.Storage.InternalStore()
	user, err := store.GetUserByUsername(ctx, username)
	if err != nil {
		t.Fatalf("verifyUser: %v", err)
	}
	user.IsVerified = true
	if err := store.SaveUser(ctx, user); err != nil {
		t.Fatalf("verifyUser: %v", err)
	}
}

// login obtains an access token via the form endpoint.
func login(t *testing.T, srv *testServer, username, password string) string {
	t.Helper()
	form := url.Values{"username": {username}, "password": {password}}
	rec := doRequest(t, srv, http.MethodPost, "/token", strings.NewReader(form.Encode()),
		map[string]string{"Content-Type": "application/x-www-form-urlencoded"})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	decodeBody(t, rec, &resp)
	if resp.AccessToken == "" || resp.TokenType != "bearer" {
		t.Fatalf("login: unexpected token response: %+v", resp)
	}
	return resp.AccessToken
}

// seedVerifiedUser registers, verifies and logs in a user.
func seedVerifiedUser(t *testing.T, srv *testServer, username, email, password string) string {
	t.Helper()
	registerUser(t, srv, username, email, password)
	verifyUser(t, srv, username)
	return login(t, srv, username, password)
}
