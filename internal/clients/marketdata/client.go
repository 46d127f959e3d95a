// Package marketdata provides a client for the EODHD market data API.
package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/laneview/laneview/internal/common"
	"github.com/laneview/laneview/internal/interfaces"
	"github.com/laneview/laneview/internal/models"
)

// flexFloat64 handles JSON values that may be either a number or a string.
type flexFloat64 float64

func (f *flexFloat64) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*f = flexFloat64(num)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "" || s == "N/A" || s == "NA" {
			*f = 0
			return nil
		}
		num, err := strconv.ParseFloat(s, 64)
		if err != nil {
			*f = 0
			return nil
		}
		*f = flexFloat64(num)
		return nil
	}
	return fmt.Errorf("cannot unmarshal %s into float64", string(data))
}

// flexInt64 handles JSON values that may be either a number or a string.
type flexInt64 int64

func (f *flexInt64) UnmarshalJSON(data []byte) error {
	var num int64
	if err := json.Unmarshal(data, &num); err == nil {
		*f = flexInt64(num)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "" || s == "N/A" || s == "NA" {
			*f = 0
			return nil
		}
		num, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			*f = 0
			return nil
		}
		*f = flexInt64(num)
		return nil
	}
	return fmt.Errorf("cannot unmarshal %s into int64", string(data))
}

const (
	DefaultBaseURL   = "https://eodhd.com/api"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 10 // requests per second
)

// Client implements the MarketDataClient interface against EODHD.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new market data client
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents an API error
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("market data API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// get performs a rate-limited GET request
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	// Wait for rate limiter
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	// Add API key
	if params == nil {
		params = url.Values{}
	}
	params.Set("api_token", c.apiKey)
	params.Set("fmt", "json")

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Debug().Str("url", c.baseURL+path).Msg("Market data API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   path,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// quoteResponse represents the /real-time API response
type quoteResponse struct {
	Code          string      `json:"code"`
	Timestamp     flexInt64   `json:"timestamp"`
	Close         flexFloat64 `json:"close"`
	PreviousClose flexFloat64 `json:"previousClose"`
	Change        flexFloat64 `json:"change"`
	ChangePct     flexFloat64 `json:"change_p"`
	Volume        flexFloat64 `json:"volume"`
}

// GetQuote retrieves the latest delayed quote for a ticker.
func (c *Client) GetQuote(ctx context.Context, ticker string) (*models.Quote, error) {
	path := fmt.Sprintf("/real-time/%s", ticker)

	var resp quoteResponse
	if err := c.get(ctx, path, nil, &resp); err != nil {
		return nil, err
	}

	return &models.Quote{
		Code:          resp.Code,
		Close:         float64(resp.Close),
		PreviousClose: float64(resp.PreviousClose),
		Change:        float64(resp.Change),
		ChangePct:     float64(resp.ChangePct),
		Volume:        int64(resp.Volume),
		Timestamp:     time.Unix(int64(resp.Timestamp), 0),
	}, nil
}

// GetEOD retrieves end-of-day price history.
func (c *Client) GetEOD(ctx context.Context, ticker string, opts ...interfaces.EODOption) ([]models.EODBar, error) {
	params := &interfaces.EODParams{
		Period: "d",
		Order:  "d", // descending (most recent first)
	}

	for _, opt := range opts {
		opt(params)
	}

	urlParams := url.Values{}
	urlParams.Set("period", params.Period)
	urlParams.Set("order", params.Order)

	if !params.From.IsZero() {
		urlParams.Set("from", params.From.Format("2006-01-02"))
	}
	if !params.To.IsZero() {
		urlParams.Set("to", params.To.Format("2006-01-02"))
	}

	path := fmt.Sprintf("/eod/%s", ticker)

	var bars []eodBarResponse
	if err := c.get(ctx, path, urlParams, &bars); err != nil {
		return nil, err
	}

	result := make([]models.EODBar, len(bars))
	for i, bar := range bars {
		date, _ := time.Parse("2006-01-02", bar.Date)
		result[i] = models.EODBar{
			Date:     date,
			Open:     bar.Open,
			High:     bar.High,
			Low:      bar.Low,
			Close:    bar.Close,
			AdjClose: bar.AdjustedClose,
			Volume:   bar.Volume,
		}
	}

	if params.Limit > 0 && len(result) > params.Limit {
		result = result[:params.Limit]
	}

	return result, nil
}

// eodBarResponse represents the API response for EOD data
type eodBarResponse struct {
	Date          string  `json:"date"`
	Open          float64 `json:"open"`
	High          float64 `json:"high"`
	Low           float64 `json:"low"`
	Close         float64 `json:"close"`
	AdjustedClose float64 `json:"adjusted_close"`
	Volume        int64   `json:"volume"`
}

// GetFundamentals retrieves fundamental data including the three
// financial statements.
func (c *Client) GetFundamentals(ctx context.Context, ticker string) (*models.Fundamentals, error) {
	path := fmt.Sprintf("/fundamentals/%s", ticker)

	var resp fundamentalsResponse
	if err := c.get(ctx, path, nil, &resp); err != nil {
		return nil, err
	}

	fundamentals := &models.Fundamentals{
		Ticker:            ticker,
		Name:              resp.General.Name,
		Description:       resp.General.Description,
		Sector:            resp.General.Sector,
		Industry:          resp.General.Industry,
		Country:           resp.General.CountryName,
		Currency:          resp.General.CurrencyCode,
		Exchange:          resp.General.Exchange,
		WebURL:            resp.General.WebURL,
		MarketCap:         optPtr(resp.Highlights.MarketCapitalization),
		EPS:               optPtr(resp.Highlights.EarningsShare),
		BookValuePerShare: optPtr(resp.Highlights.BookValue),
		DividendYield:     optPtr(resp.Highlights.DividendYield),
		EBITDA:            optPtr(resp.Highlights.EBITDA),
		Beta:              optPtr(resp.Technicals.Beta),
		SharesOutstanding: optPtr(resp.SharesStats.SharesOutstanding),
		LastUpdated:       time.Now(),
	}

	// Statements, newest period first, capped later by the metrics layer
	fundamentals.IncomeStatement = buildStatement(resp.Financials.IncomeStatement.Yearly)
	fundamentals.BalanceSheet = buildStatement(resp.Financials.BalanceSheet.Yearly)
	fundamentals.CashFlow = buildStatement(resp.Financials.CashFlow.Yearly)

	// Ratio inputs from the latest annual statements
	if income := latestPeriod(fundamentals.IncomeStatement); income != nil {
		fundamentals.TotalRevenue = income.Values["totalRevenue"]
		fundamentals.NetIncome = income.Values["netIncome"]
		if fundamentals.EBITDA == nil {
			fundamentals.EBITDA = income.Values["ebitda"]
		}
	}
	if balance := latestPeriod(fundamentals.BalanceSheet); balance != nil {
		fundamentals.TotalEquity = balance.Values["totalStockholderEquity"]
		fundamentals.TotalDebt = balance.Values["shortLongTermDebtTotal"]
		fundamentals.Cash = balance.Values["cashAndShortTermInvestments"]
		if fundamentals.Cash == nil {
			fundamentals.Cash = balance.Values["cash"]
		}
		fundamentals.CurrentAssets = balance.Values["totalCurrentAssets"]
		fundamentals.CurrentLiabilities = balance.Values["totalCurrentLiabilities"]
	}

	return fundamentals, nil
}

// optPtr converts an optional API value to *float64. Absent or null
// fields stay nil so downstream ratio math can skip them.
func optPtr(f *flexFloat64) *float64 {
	if f == nil {
		return nil
	}
	v := float64(*f)
	return &v
}

// statementEntry is one reported period keyed by line item. Non-numeric
// metadata keys are filtered out when building rows.
type statementEntry map[string]*flexFloat64

var statementMetaKeys = map[string]bool{
	"date":            true,
	"filing_date":     true,
	"currency_symbol": true,
}

// buildStatement converts EODHD yearly statement data into a
// FinancialStatement with periods ordered newest first.
func buildStatement(yearly map[string]statementEntry) *models.FinancialStatement {
	if len(yearly) == 0 {
		return nil
	}

	dates := make([]string, 0, len(yearly))
	for date := range yearly {
		dates = append(dates, date)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))

	rowSet := make(map[string]bool)
	periods := make([]models.StatementPeriod, 0, len(dates))
	for _, date := range dates {
		entry := yearly[date]
		values := make(map[string]*float64, len(entry))
		for key, val := range entry {
			if statementMetaKeys[key] {
				continue
			}
			rowSet[key] = true
			values[key] = optPtr(val)
		}
		periods = append(periods, models.StatementPeriod{
			Date:   date,
			Values: values,
		})
	}

	rows := make([]string, 0, len(rowSet))
	for row := range rowSet {
		rows = append(rows, row)
	}
	sort.Strings(rows)

	return &models.FinancialStatement{
		Rows:    rows,
		Periods: periods,
	}
}

func latestPeriod(stmt *models.FinancialStatement) *models.StatementPeriod {
	if stmt == nil || len(stmt.Periods) == 0 {
		return nil
	}
	return &stmt.Periods[0]
}

// fundamentalsResponse represents the API response structure
type fundamentalsResponse struct {
	General struct {
		Code         string `json:"Code"`
		Name         string `json:"Name"`
		Type         string `json:"Type"`
		Sector       string `json:"Sector"`
		Industry     string `json:"Industry"`
		Description  string `json:"Description"`
		WebURL       string `json:"WebURL"`
		CountryName  string `json:"CountryName"`
		CurrencyCode string `json:"CurrencyCode"`
		Exchange     string `json:"Exchange"`
	} `json:"General"`
	Highlights struct {
		MarketCapitalization *flexFloat64 `json:"MarketCapitalization"`
		EBITDA               *flexFloat64 `json:"EBITDA"`
		EarningsShare        *flexFloat64 `json:"EarningsShare"`
		BookValue            *flexFloat64 `json:"BookValue"`
		DividendYield        *flexFloat64 `json:"DividendYield"`
	} `json:"Highlights"`
	SharesStats struct {
		SharesOutstanding *flexFloat64 `json:"SharesOutstanding"`
	} `json:"SharesStats"`
	Technicals struct {
		Beta *flexFloat64 `json:"Beta"`
	} `json:"Technicals"`
	Financials struct {
		BalanceSheet struct {
			Yearly map[string]statementEntry `json:"yearly"`
		} `json:"Balance_Sheet"`
		CashFlow struct {
			Yearly map[string]statementEntry `json:"yearly"`
		} `json:"Cash_Flow"`
		IncomeStatement struct {
			Yearly map[string]statementEntry `json:"yearly"`
		} `json:"Income_Statement"`
	} `json:"Financials"`
}

// Ensure Client implements MarketDataClient
var _ interfaces.MarketDataClient = (*Client)(nil)
