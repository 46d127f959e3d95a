package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// CompanyMetrics is one dashboard row: identity plus the computed ratio
// bundle. Every numeric field is nullable; a nil means the underlying
// market data was unavailable and renders as "-".
type CompanyMetrics struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Ticker  string  `json:"ticker"`
	Segment Segment `json:"segment"`

	Price         *float64 `json:"price"`
	Revenue       *float64 `json:"revenue"`
	NetIncome     *float64 `json:"net_income"`
	NetMargin     *float64 `json:"net_margin"`
	ROE           *float64 `json:"roe"`
	DebtToEquity  *float64 `json:"debt_to_equity"`
	CurrentRatio  *float64 `json:"current_ratio"`
	OneYearReturn *float64 `json:"one_year_return"`
	PE            *float64 `json:"pe"`
	PB            *float64 `json:"pb"`
	EVToEBITDA    *float64 `json:"ev_to_ebitda"`
}

// DashboardResponse is the aggregate metrics payload for all of a user's
// companies.
type DashboardResponse struct {
	Companies []CompanyMetrics `json:"companies"`
}

// RatioBundle is the fixed 8-key ratio set shown on the company detail view.
type RatioBundle struct {
	Price         *float64 `json:"price"`
	Revenue       *float64 `json:"revenue"`
	NetIncome     *float64 `json:"net_income"`
	NetMargin     *float64 `json:"net_margin"`
	ROE           *float64 `json:"roe"`
	DebtToEquity  *float64 `json:"debt_to_equity"`
	CurrentRatio  *float64 `json:"current_ratio"`
	OneYearReturn *float64 `json:"one_year_return"`
}

// Statement is a row-major financial statement table: data[i] aligns
// positionally with columns, one row per index entry. Cells are numbers,
// strings, or null.
type Statement struct {
	Columns []string `json:"columns"`
	Index   []string `json:"index"`
	Data    [][]any  `json:"data"`
}

// InfoEntry is one profile key/value pair.
type InfoEntry struct {
	Key   string
	Value any
}

// OrderedInfo is a profile map that keeps key order across JSON. It
// marshals as an object whose keys appear in slice order and unmarshals
// preserving the object's own key order, which the snapshot view depends
// on when it takes the first N keys.
type OrderedInfo []InfoEntry

// Get returns the value for key, or nil when absent.
func (oi OrderedInfo) Get(key string) any {
	for _, e := range oi {
		if e.Key == key {
			return e.Value
		}
	}
	return nil
}

func (oi OrderedInfo) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range oi {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(e.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := json.Marshal(e.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (oi *OrderedInfo) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("info: expected JSON object")
	}
	out := (*oi)[:0]
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
		out = append(out, InfoEntry{Key: key, Value: val})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*oi = out
	return nil
}

// CompanyDetail is the per-company detail bundle: a scalar profile map,
// the ratio bundle, and up to three financial statements.
type CompanyDetail struct {
	Info            OrderedInfo `json:"info"`
	Ratios          RatioBundle `json:"ratios"`
	IncomeStatement *Statement  `json:"income_statement,omitempty"`
	BalanceSheet    *Statement  `json:"balance_sheet,omitempty"`
	CashFlow        *Statement  `json:"cash_flow,omitempty"`
}

// AnalyticsText is the free-text commentary payload.
type AnalyticsText struct {
	Text string `json:"text"`
}
