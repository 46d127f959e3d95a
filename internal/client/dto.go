// Package client implements the terminal-side of LaneView: session
// handling, the HTTP gateway with its auth guard, panel state, and the
// markdown renderers behind the laneview CLI.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Wire shapes as this client consumes them. They are owned here rather
// than shared with the server: the client names only the fields it renders
// and ignores anything else the server sends.

// Company is one registered company row.
type Company struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Ticker  string `json:"ticker"`
	Segment string `json:"segment"`
}

// Summary is one dashboard row. Every metric is nullable; nil renders "-".
type Summary struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Ticker  string `json:"ticker"`
	Segment string `json:"segment"`

	Price         *float64 `json:"price"`
	Revenue       *float64 `json:"revenue"`
	NetMargin     *float64 `json:"net_margin"`
	ROE           *float64 `json:"roe"`
	DebtToEquity  *float64 `json:"debt_to_equity"`
	OneYearReturn *float64 `json:"one_year_return"`
	PE            *float64 `json:"pe"`
	PB            *float64 `json:"pb"`
	EVToEBITDA    *float64 `json:"ev_to_ebitda"`
}

// Dashboard is the aggregate metrics payload.
type Dashboard struct {
	Companies []Summary `json:"companies"`
}

// Ratios is the fixed 8-key bundle on the detail view.
type Ratios struct {
	Price         *float64 `json:"price"`
	Revenue       *float64 `json:"revenue"`
	NetIncome     *float64 `json:"net_income"`
	NetMargin     *float64 `json:"net_margin"`
	ROE           *float64 `json:"roe"`
	DebtToEquity  *float64 `json:"debt_to_equity"`
	CurrentRatio  *float64 `json:"current_ratio"`
	OneYearReturn *float64 `json:"one_year_return"`
}

// Statement is a row-major financial table; data[i] aligns with columns.
type Statement struct {
	Columns []string `json:"columns"`
	Index   []string `json:"index"`
	Data    [][]any  `json:"data"`
}

// Detail is the per-company bundle.
type Detail struct {
	Info            Info       `json:"info"`
	Ratios          Ratios     `json:"ratios"`
	IncomeStatement *Statement `json:"income_statement"`
	BalanceSheet    *Statement `json:"balance_sheet"`
	CashFlow        *Statement `json:"cash_flow"`
}

// Info is the profile map with the server's key order preserved; the
// snapshot panel shows the first keys in that order. Numeric values keep
// their wire text (json.Number) so they stringify exactly as sent.
type Info struct {
	Keys   []string
	Values map[string]any
}

func (inf *Info) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("info: expected a JSON object")
	}
	inf.Keys = nil
	inf.Values = make(map[string]any)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("info: non-string key %v", keyTok)
		}
		var val any
		if err := dec.Decode(&val); err != nil {
			return err
		}
		inf.Keys = append(inf.Keys, key)
		inf.Values[key] = val
	}
	_, err = dec.Token()
	return err
}

// analyticsText is the commentary payload shape.
type analyticsText struct {
	Text string `json:"text"`
}

// Segments returns the closed set of logistics sub-sectors a company can
// be filed under. The server enforces the same list; validating here keeps
// a doomed create from ever leaving the client.
func Segments() []string {
	return []string{
		"PORTS",
		"SHIPPING",
		"ROADS & HIGHWAYS",
		"CONTAINER",
		"GENERAL LOGISTICS",
		"PARCEL & EXPRESS",
	}
}

// ValidSegment reports whether s is in the closed segment set.
func ValidSegment(s string) bool {
	for _, seg := range Segments() {
		if s == seg {
			return true
		}
	}
	return false
}
