package metrics

import (
	"bytes"
	"context"
	"fmt"
	"sort"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// SegmentRevenueChart renders a PNG bar chart of total revenue by
// segment across the user's companies. The rendered image is also cached
// under the data directory.
func (s *Service) SegmentRevenueChart(ctx context.Context, userID string) ([]byte, error) {
	dashboard, err := s.Dashboard(ctx, userID)
	if err != nil {
		return nil, err
	}

	totals := make(map[string]float64)
	for _, row := range dashboard.Companies {
		if row.Revenue == nil {
			continue
		}
		totals[string(row.Segment)] += *row.Revenue
	}
	if len(totals) == 0 {
		return nil, fmt.Errorf("no revenue data to chart")
	}

	segments := make([]string, 0, len(totals))
	for seg := range totals {
		segments = append(segments, seg)
	}
	sort.Strings(segments)

	bars := make([]chart.Value, 0, len(segments))
	for _, seg := range segments {
		bars = append(bars, chart.Value{
			Label: seg,
			Value: totals[seg] / 1e9, // billions
			Style: chart.Style{
				FillColor:   drawing.ColorFromHex("2563eb"), // blue-600
				StrokeColor: drawing.ColorFromHex("2563eb"),
			},
		})
	}

	graph := chart.BarChart{
		Title:    "Total Revenue by Segment",
		Width:    900,
		Height:   400,
		BarWidth: 60,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("$%.1fB", f)
				}
				return ""
			},
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}

	png := buf.Bytes()
	if err := s.storage.WriteRaw("charts", userID+"-segments.png", png); err != nil {
		s.logger.Warn().Str("user", userID).Err(err).Msg("Failed to cache segment chart")
	}

	return png, nil
}
