package client

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Panel copy shared between the renderers and the CLI.
const (
	SectorPlaceholder   = "Generating sector insights..."
	CompanyPlaceholder  = "Generating company insights..."
	NoAnalysisFallback  = "No analysis generated."
	UnclassifiedSegment = "Unclassified"
	snapshotKeyLimit    = 10
)

// RenderDashboard groups companies by segment and emits one markdown table
// per segment, headings sorted lexicographically. An empty or missing
// segment lands in the "Unclassified" bucket.
func RenderDashboard(d *Dashboard) string {
	if d == nil || len(d.Companies) == 0 {
		return "No companies yet.\n"
	}

	groups := make(map[string][]Summary)
	for _, c := range d.Companies {
		seg := c.Segment
		if seg == "" {
			seg = UnclassifiedSegment
		}
		groups[seg] = append(groups[seg], c)
	}
	names := make([]string, 0, len(groups))
	for seg := range groups {
		names = append(names, seg)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("# Dashboard\n")
	for _, seg := range names {
		fmt.Fprintf(&b, "\n## %s\n\n", seg)
		b.WriteString("| Name | Ticker | Price | Revenue | Net Margin | ROE | Debt/Equity | 1Y Return | P/E | P/B | EV/EBITDA |\n")
		b.WriteString("|---|---|---|---|---|---|---|---|---|---|---|\n")
		for _, c := range groups[seg] {
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s | %s | %s | %s | %s |\n",
				c.Name, c.Ticker,
				FormatNumber(c.Price), FormatNumber(c.Revenue),
				FormatPercent(c.NetMargin), FormatPercent(c.ROE),
				FormatNumber(c.DebtToEquity), FormatPercent(c.OneYearReturn),
				FormatNumber(c.PE), FormatNumber(c.PB), FormatNumber(c.EVToEBITDA))
		}
	}
	return b.String()
}

// RenderCompanies lists the registered companies with the ids the rm
// command needs.
func RenderCompanies(companies []Company) string {
	if len(companies) == 0 {
		return "No companies yet.\n"
	}
	var b strings.Builder
	b.WriteString("# Companies\n\n")
	b.WriteString("| Name | Ticker | Segment | ID |\n")
	b.WriteString("|---|---|---|---|\n")
	for _, c := range companies {
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", c.Name, c.Ticker, c.Segment, c.ID)
	}
	b.WriteString("\nRemove one with: laneview rm <id>\n")
	return b.String()
}

// ratioRow pairs a fixed label with its formatted value.
type ratioRow struct {
	label string
	value string
}

// RenderDetail renders the detail bundle: the snapshot block (first 10
// info keys, upper-cased, server order), the fixed 8-row Key Ratios table,
// then whichever statements are present.
func RenderDetail(d *Detail) string {
	var b strings.Builder

	title := "Company Detail"
	if name, ok := d.Info.Values["name"].(string); ok && name != "" {
		title = name
	}
	fmt.Fprintf(&b, "# %s\n\n## Snapshot\n\n", title)

	keys := d.Info.Keys
	if len(keys) > snapshotKeyLimit {
		keys = keys[:snapshotKeyLimit]
	}
	if len(keys) == 0 {
		b.WriteString("No profile data.\n")
	} else {
		b.WriteString("| Field | Value |\n|---|---|\n")
		for _, key := range keys {
			fmt.Fprintf(&b, "| %s | %s |\n", strings.ToUpper(key), infoValue(d.Info.Values[key]))
		}
	}

	b.WriteString("\n## Key Ratios\n\n| Ratio | Value |\n|---|---|\n")
	rows := []ratioRow{
		{"Price", FormatNumber(d.Ratios.Price)},
		{"Revenue", FormatNumber(d.Ratios.Revenue)},
		{"Net Income", FormatNumber(d.Ratios.NetIncome)},
		{"Net Margin (%)", FormatPercent(d.Ratios.NetMargin)},
		{"ROE (%)", FormatPercent(d.Ratios.ROE)},
		{"Debt/Equity", FormatNumber(d.Ratios.DebtToEquity)},
		{"Current Ratio", FormatNumber(d.Ratios.CurrentRatio)},
		{"1Y Return (%)", FormatPercent(d.Ratios.OneYearReturn)},
	}
	for _, row := range rows {
		fmt.Fprintf(&b, "| %s | %s |\n", row.label, row.value)
	}

	renderStatement(&b, "Income Statement", d.IncomeStatement)
	renderStatement(&b, "Balance Sheet", d.BalanceSheet)
	renderStatement(&b, "Cash Flow", d.CashFlow)

	return b.String()
}

func renderStatement(b *strings.Builder, title string, st *Statement) {
	if st == nil {
		return
	}
	fmt.Fprintf(b, "\n## %s (last 3 periods)\n\n", title)

	b.WriteString("| |")
	for _, col := range st.Columns {
		fmt.Fprintf(b, " %s |", col)
	}
	b.WriteString("\n|---|")
	for range st.Columns {
		b.WriteString("---|")
	}
	b.WriteString("\n")

	for i, label := range st.Index {
		fmt.Fprintf(b, "| %s |", label)
		for j := range st.Columns {
			cell := any(nil)
			if i < len(st.Data) && j < len(st.Data[i]) {
				cell = st.Data[i][j]
			}
			fmt.Fprintf(b, " %s |", renderCell(cell))
		}
		b.WriteString("\n")
	}
}

// renderCell formats one statement cell: numbers through FormatNumber,
// strings verbatim, null as "-".
func renderCell(v any) string {
	switch x := v.(type) {
	case nil:
		return "-"
	case string:
		return x
	case float64:
		return FormatNumber(&x)
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return x.String()
		}
		return FormatNumber(&f)
	default:
		return fmt.Sprintf("%v", x)
	}
}

// infoValue stringifies a snapshot value the way it came over the wire.
func infoValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "-"
	case string:
		return x
	case json.Number:
		return x.String()
	default:
		return fmt.Sprintf("%v", x)
	}
}

// RenderAnalytics substitutes the fallback line for empty commentary.
func RenderAnalytics(text string) string {
	if strings.TrimSpace(text) == "" {
		return NoAnalysisFallback
	}
	return text
}
