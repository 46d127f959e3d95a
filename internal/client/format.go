package client

import (
	"fmt"
	"math"
)

// FormatNumber renders a nullable metric for table cells. Nil and NaN come
// out as "-"; large magnitudes are scaled to K/M/B with two decimals; the
// magnitude test uses the absolute value so signs survive scaling.
func FormatNumber(v *float64) string {
	if v == nil || math.IsNaN(*v) {
		return "-"
	}
	x := *v
	switch abs := math.Abs(x); {
	case abs >= 1e9:
		return fmt.Sprintf("%.2fB", x/1e9)
	case abs >= 1e6:
		return fmt.Sprintf("%.2fM", x/1e6)
	case abs >= 1e3:
		return fmt.Sprintf("%.2fK", x/1e3)
	default:
		return fmt.Sprintf("%.2f", x)
	}
}

// FormatPercent renders a nullable fraction as a percentage with one
// decimal, so 0.5 becomes "50.0%".
func FormatPercent(v *float64) string {
	if v == nil || math.IsNaN(*v) {
		return "-"
	}
	return fmt.Sprintf("%.1f%%", *v*100)
}
