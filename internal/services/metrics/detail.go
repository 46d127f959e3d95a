package metrics

import (
	"context"
	"math"

	"github.com/laneview/laneview/internal/models"
)

// maxStatementColumns caps statement tables at the most recent periods.
const maxStatementColumns = 3

// CompanyDetail assembles the detail bundle for one company: the profile
// snapshot, the fixed ratio set, and up to three annual statements.
func (s *Service) CompanyDetail(ctx context.Context, userID, companyID string) (*models.CompanyDetail, error) {
	company, err := s.companies.Get(ctx, userID, companyID)
	if err != nil {
		return nil, err
	}

	snapshot, err := s.Snapshot(ctx, company.Ticker)
	if err != nil {
		s.logger.Warn().Str("ticker", company.Ticker).Err(err).Msg("Detail has no market data")
		return &models.CompanyDetail{Info: buildInfo(company, nil)}, nil
	}

	detail := &models.CompanyDetail{
		Info:   buildInfo(company, snapshot.Fundamentals),
		Ratios: ratioBundle(snapshot),
	}
	if f := snapshot.Fundamentals; f != nil {
		detail.IncomeStatement = buildStatement(f.IncomeStatement)
		detail.BalanceSheet = buildStatement(f.BalanceSheet)
		detail.CashFlow = buildStatement(f.CashFlow)
	}

	return detail, nil
}

// buildInfo assembles the ordered profile map. Registration identity
// leads, provider profile and headline figures follow; empty strings and
// non-finite numbers are dropped.
func buildInfo(company *models.Company, f *models.Fundamentals) models.OrderedInfo {
	var info models.OrderedInfo

	addString := func(key, val string) {
		if val != "" {
			info = append(info, models.InfoEntry{Key: key, Value: val})
		}
	}
	addNumber := func(key string, val *float64) {
		if val == nil || math.IsNaN(*val) || math.IsInf(*val, 0) {
			return
		}
		info = append(info, models.InfoEntry{Key: key, Value: *val})
	}

	name := company.Name
	if f != nil && f.Name != "" {
		name = f.Name
	}
	addString("name", name)
	addString("ticker", company.Ticker)
	addString("segment", string(company.Segment))

	if f != nil {
		addString("sector", f.Sector)
		addString("industry", f.Industry)
		addString("country", f.Country)
		addString("currency", f.Currency)
		addString("exchange", f.Exchange)
		addString("website", f.WebURL)
		addNumber("market_cap", f.MarketCap)
		addNumber("eps", f.EPS)
		addNumber("book_value_per_share", f.BookValuePerShare)
		addNumber("dividend_yield", f.DividendYield)
		addNumber("beta", f.Beta)
		addNumber("shares_outstanding", f.SharesOutstanding)
		addString("description", f.Description)
	}

	return info
}

// buildStatement converts a reported statement into the row-major wire
// table, columns capped at the most recent periods, newest first.
func buildStatement(stmt *models.FinancialStatement) *models.Statement {
	if stmt == nil || len(stmt.Periods) == 0 {
		return nil
	}

	periods := stmt.Periods
	if len(periods) > maxStatementColumns {
		periods = periods[:maxStatementColumns]
	}

	columns := make([]string, len(periods))
	for i, p := range periods {
		columns[i] = p.Date
	}

	index := make([]string, len(stmt.Rows))
	copy(index, stmt.Rows)

	data := make([][]any, len(index))
	for i, row := range index {
		cells := make([]any, len(periods))
		for j, p := range periods {
			v := p.Values[row]
			if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
				cells[j] = nil
				continue
			}
			cells[j] = *v
		}
		data[i] = cells
	}

	return &models.Statement{
		Columns: columns,
		Index:   index,
		Data:    data,
	}
}
