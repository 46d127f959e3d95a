package client

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ImportRow is one holding parsed out of a brokerage statement.
type ImportRow struct {
	Ticker string
	Name   string
}

// ImportOutcome reports what happened to one parsed row.
type ImportOutcome struct {
	Row     ImportRow
	Company *Company
	Err     error
}

// Tickers are upper-case alphanumerics, optionally dotted or dashed like
// MAERSK-B.CO or 9101.T.
var tickerPattern = regexp.MustCompile(`^[A-Z0-9]+([.-][A-Z0-9]+)*$`)

// ParseHoldingsPDF extracts ticker/name rows from the text layer of a
// holdings PDF. A line qualifies when its first token looks like a ticker
// and readable words follow before the numeric columns.
func ParseHoldingsPDF(path string) ([]ImportRow, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}

	return parseHoldings(sb.String()), nil
}

func parseHoldings(text string) []ImportRow {
	seen := make(map[string]bool)
	var rows []ImportRow
	for _, line := range strings.Split(text, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		ticker := fields[0]
		if len(ticker) < 2 || len(ticker) > 12 || !tickerPattern.MatchString(ticker) {
			continue
		}
		// Pure numbers are quantity columns, not tickers
		if looksNumeric(ticker) {
			continue
		}
		name := nameBeforeNumbers(fields[1:])
		if name == "" || seen[ticker] {
			continue
		}
		seen[ticker] = true
		rows = append(rows, ImportRow{Ticker: ticker, Name: name})
	}
	return rows
}

// nameBeforeNumbers keeps the leading words of a holdings line up to the
// first quantity/value column.
func nameBeforeNumbers(fields []string) string {
	var words []string
	for _, f := range fields {
		if looksNumeric(f) {
			break
		}
		words = append(words, f)
	}
	return strings.Join(words, " ")
}

func looksNumeric(s string) bool {
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return false
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// ImportCompaniesPDF parses the PDF and registers every holding under the
// given segment, one create per row, continuing past individual failures.
// One full reload runs at the end when anything was created.
func (c *Client) ImportCompaniesPDF(ctx context.Context, path, segment string) ([]ImportOutcome, *ReloadResult, error) {
	segment = strings.TrimSpace(segment)
	if !ValidSegment(segment) {
		return nil, nil, fmt.Errorf("Unknown segment %q. Valid segments: %s.", segment, strings.Join(Segments(), ", "))
	}

	rows, err := ParseHoldingsPDF(path)
	if err != nil {
		return nil, nil, err
	}
	if len(rows) == 0 {
		return nil, nil, errors.New("no holdings found in the PDF")
	}

	created := 0
	outcomes := make([]ImportOutcome, 0, len(rows))
	for _, row := range rows {
		company, err := c.createCompany(ctx, row.Name, row.Ticker, segment)
		if err == nil {
			created++
		}
		outcomes = append(outcomes, ImportOutcome{Row: row, Company: company, Err: err})
	}

	if created == 0 {
		return outcomes, nil, nil
	}
	reload, err := c.FullReload(ctx)
	return outcomes, reload, err
}
