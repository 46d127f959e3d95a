// Package models defines data structures for LaneView
package models

import "time"

// Quote holds a live price snapshot from the market data provider
type Quote struct {
	Code          string    `json:"code"`
	Close         float64   `json:"close"`          // current/last price
	PreviousClose float64   `json:"previous_close"` // previous day's close
	Change        float64   `json:"change"`         // absolute change from previous close
	ChangePct     float64   `json:"change_p"`       // percentage change from previous close
	Volume        int64     `json:"volume"`
	Timestamp     time.Time `json:"timestamp"`
}

// EODBar represents a single day's price data
type EODBar struct {
	Date     time.Time `json:"date"`
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	AdjClose float64   `json:"adjusted_close"`
	Volume   int64     `json:"volume"`
}

// Fundamentals contains the profile and financial figures used for ratio
// computation. Pointer fields distinguish "not reported" from zero.
type Fundamentals struct {
	Ticker      string `json:"ticker"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Sector      string `json:"sector,omitempty"`
	Industry    string `json:"industry,omitempty"`
	Country     string `json:"country,omitempty"`
	Currency    string `json:"currency,omitempty"`
	Exchange    string `json:"exchange,omitempty"`
	WebURL      string `json:"web_url,omitempty"`

	MarketCap         *float64 `json:"market_cap,omitempty"`
	EPS               *float64 `json:"eps,omitempty"`
	BookValuePerShare *float64 `json:"book_value_per_share,omitempty"`
	DividendYield     *float64 `json:"dividend_yield,omitempty"`
	Beta              *float64 `json:"beta,omitempty"`
	SharesOutstanding *float64 `json:"shares_outstanding,omitempty"`

	TotalRevenue       *float64 `json:"total_revenue,omitempty"`
	NetIncome          *float64 `json:"net_income,omitempty"`
	EBITDA             *float64 `json:"ebitda,omitempty"`
	TotalEquity        *float64 `json:"total_equity,omitempty"`
	TotalDebt          *float64 `json:"total_debt,omitempty"`
	Cash               *float64 `json:"cash,omitempty"`
	CurrentAssets      *float64 `json:"current_assets,omitempty"`
	CurrentLiabilities *float64 `json:"current_liabilities,omitempty"`

	IncomeStatement *FinancialStatement `json:"income_statement,omitempty"`
	BalanceSheet    *FinancialStatement `json:"balance_sheet,omitempty"`
	CashFlow        *FinancialStatement `json:"cash_flow,omitempty"`

	LastUpdated time.Time `json:"last_updated"`
}

// FinancialStatement is a reported statement as a labeled grid:
// Rows carries the sorted line-item labels, Periods the reported
// periods newest first.
type FinancialStatement struct {
	Rows    []string          `json:"rows"`
	Periods []StatementPeriod `json:"periods"`
}

// StatementPeriod holds one reporting period's values keyed by line item.
// A missing key means the provider reported no value for that item.
type StatementPeriod struct {
	Date   string              `json:"date"`
	Values map[string]*float64 `json:"values"`
}

// MarketSnapshot bundles everything fetched for a ticker, with
// per-component freshness timestamps for cache decisions.
type MarketSnapshot struct {
	Ticker       string        `json:"ticker"`
	Name         string        `json:"name"`
	Quote        *Quote        `json:"quote,omitempty"`
	Fundamentals *Fundamentals `json:"fundamentals,omitempty"`
	History      []EODBar      `json:"history,omitempty"`

	QuoteUpdatedAt        time.Time `json:"quote_updated_at"`
	FundamentalsUpdatedAt time.Time `json:"fundamentals_updated_at"`
	HistoryUpdatedAt      time.Time `json:"history_updated_at"`
}
