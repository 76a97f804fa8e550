package analytics

// Trend classification labels.
const (
	TrendImproving        = "improving"
	TrendDeclining        = "declining"
	TrendStable           = "stable"
	TrendInsufficientData = "insufficient_data"
)

// DetectTrend compares the average of the first half of a series against
// the second half. A relative change above 10% in either direction is
// reported as improving or declining.
func DetectTrend(values []float64) string {
	if len(values) < 2 {
		return TrendInsufficientData
	}

	mid := len(values) / 2
	firstAvg := Average(values[:mid])
	secondAvg := Average(values[mid:])

	if firstAvg == 0 {
		return TrendStable
	}

	change := (secondAvg - firstAvg) / firstAvg
	switch {
	case change > 0.1:
		return TrendImproving
	case change < -0.1:
		return TrendDeclining
	default:
		return TrendStable
	}
}
