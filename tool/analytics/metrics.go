package analytics

import (
	"math"
	"time"

	"github.com/Abraxas-365/nido/tool"
)

// Round rounds a value to the given number of decimals.
func Round(value float64, decimals int) float64 {
	factor := math.Pow(10, float64(decimals))
	return math.Round(value*factor) / factor
}

// Average returns the plain arithmetic mean, 0.0 for an empty slice.
func Average(values []float64) float64 {
	if len(values) == 0 {
		return 0.0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// AverageWithPrecision averages values and rounds the result using the
// precision rules configured for the metric type. Sleep and duration
// averages below the small-value threshold keep extra decimals so short
// naps do not round away to zero.
func AverageWithPrecision(values []float64, cfg tool.Configuration, metricType string) float64 {
	if len(values) == 0 {
		return 0.0
	}

	return RoundMetric(Average(values), cfg, metricType)
}

// RoundMetric rounds a computed value using the precision configured for
// the metric type, applying the small-value tier where it applies.
func RoundMetric(value float64, cfg tool.Configuration, metricType string) float64 {
	decimals := decimalsFor(cfg, metricType)

	threshold := cfg.Precision.SmallValueThreshold
	if threshold > 0 && (metricType == "sleep" || metricType == "duration") && value < threshold {
		decimals = cfg.GetSmallValueDecimals()
	}

	return Round(value, decimals)
}

func decimalsFor(cfg tool.Configuration, metricType string) int {
	switch metricType {
	case "volume":
		return cfg.GetVolumeDecimals()
	case "duration", "sleep":
		return cfg.GetDurationDecimals()
	case "frequency":
		return cfg.GetFrequencyDecimals()
	default:
		return cfg.GetNormalDecimals()
	}
}

// Percentage returns part/total as a percentage, 0.0 when total is zero.
func Percentage(part, total float64, decimals int) float64 {
	if total == 0 {
		return 0.0
	}
	return Round(part/total*100, decimals)
}

// StdDev returns the population standard deviation, 0.0 for fewer than
// two values.
func StdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0.0
	}
	mean := Average(values)
	var sumSquares float64
	for _, v := range values {
		diff := v - mean
		sumSquares += diff * diff
	}
	return math.Sqrt(sumSquares / float64(len(values)))
}

// AggregateByDate groups items into calendar-day buckets keyed by
// YYYY-MM-DD.
func AggregateByDate[T any](items []T, timeOf func(T) time.Time) map[string][]T {
	buckets := make(map[string][]T)
	for _, item := range items {
		day := timeOf(item).Format("2006-01-02")
		buckets[day] = append(buckets[day], item)
	}
	return buckets
}

// DistributionEntry is one bucket of a categorical distribution.
type DistributionEntry struct {
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// Distribution counts occurrences of each value and computes its share
// of the total.
func Distribution(values []string, decimals int) map[string]DistributionEntry {
	if len(values) == 0 {
		return map[string]DistributionEntry{}
	}

	counts := make(map[string]int)
	for _, v := range values {
		counts[v]++
	}

	total := float64(len(values))
	distribution := make(map[string]DistributionEntry, len(counts))
	for value, count := range counts {
		distribution[value] = DistributionEntry{
			Count:      count,
			Percentage: Percentage(float64(count), total, decimals),
		}
	}
	return distribution
}

// MinMax returns the minimum and maximum of a non-empty slice.
func MinMax(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	min, max := values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}
