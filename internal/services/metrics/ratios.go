package metrics

import (
	"time"

	"github.com/laneview/laneview/internal/models"
)

// latestClose picks the current price: the live quote when it carries
// one, otherwise the newest history bar.
func latestClose(snap *models.MarketSnapshot) *float64 {
	if snap.Quote != nil && snap.Quote.Close > 0 {
		v := snap.Quote.Close
		return &v
	}
	if len(snap.History) > 0 && snap.History[0].Close > 0 {
		v := snap.History[0].Close
		return &v
	}
	return nil
}

// closeOneYearAgo walks the newest-first history for the first bar at or
// before one year before asOf.
func closeOneYearAgo(history []models.EODBar, asOf time.Time) *float64 {
	cutoff := asOf.AddDate(-1, 0, 0)
	for _, bar := range history {
		if !bar.Date.After(cutoff) {
			if bar.Close > 0 {
				v := bar.Close
				return &v
			}
			return nil
		}
	}
	return nil
}

// ratio divides two optional values, nil when either side is missing or
// the denominator is zero.
func ratio(num, den *float64) *float64 {
	if num == nil || den == nil || *den == 0 {
		return nil
	}
	v := *num / *den
	return &v
}

func oneYearReturn(now, yearAgo *float64) *float64 {
	if now == nil || yearAgo == nil || *yearAgo == 0 {
		return nil
	}
	v := *now / *yearAgo - 1
	return &v
}

// enterpriseValue is market cap plus total debt minus cash. Debt and
// cash default to zero when unreported; market cap is required.
func enterpriseValue(f *models.Fundamentals) *float64 {
	if f == nil || f.MarketCap == nil {
		return nil
	}
	v := *f.MarketCap
	if f.TotalDebt != nil {
		v += *f.TotalDebt
	}
	if f.Cash != nil {
		v -= *f.Cash
	}
	return &v
}

// ratioBundle computes the fixed ratio set shown on the detail view.
func ratioBundle(snap *models.MarketSnapshot) models.RatioBundle {
	price := latestClose(snap)
	b := models.RatioBundle{Price: price}

	if f := snap.Fundamentals; f != nil {
		b.Revenue = f.TotalRevenue
		b.NetIncome = f.NetIncome
		b.NetMargin = ratio(f.NetIncome, f.TotalRevenue)
		b.ROE = ratio(f.NetIncome, f.TotalEquity)
		b.DebtToEquity = ratio(f.TotalDebt, f.TotalEquity)
		b.CurrentRatio = ratio(f.CurrentAssets, f.CurrentLiabilities)
	}

	// Anchor the lookback to the newest bar so weekends and data lag
	// don't shift the reference point.
	if len(snap.History) > 0 {
		b.OneYearReturn = oneYearReturn(price, closeOneYearAgo(snap.History, snap.History[0].Date))
	}

	return b
}

// fillMetrics computes the full dashboard ratio set onto a row.
func fillMetrics(row *models.CompanyMetrics, snap *models.MarketSnapshot) {
	bundle := ratioBundle(snap)
	row.Price = bundle.Price
	row.Revenue = bundle.Revenue
	row.NetIncome = bundle.NetIncome
	row.NetMargin = bundle.NetMargin
	row.ROE = bundle.ROE
	row.DebtToEquity = bundle.DebtToEquity
	row.CurrentRatio = bundle.CurrentRatio
	row.OneYearReturn = bundle.OneYearReturn

	if f := snap.Fundamentals; f != nil {
		row.PE = ratio(bundle.Price, f.EPS)
		row.PB = ratio(bundle.Price, f.BookValuePerShare)
		row.EVToEBITDA = ratio(enterpriseValue(f), f.EBITDA)
	}
}
