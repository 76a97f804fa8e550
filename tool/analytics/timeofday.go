package analytics

import (
	"sort"
	"time"

	"github.com/Abraxas-365/nido/tool"
)

// PeriodForHour maps an hour of day to its configured period name.
func PeriodForHour(hour int, periods map[string]tool.TimeWindow) string {
	// Deterministic iteration keeps the answer stable if windows overlap.
	names := make([]string, 0, len(periods))
	for name := range periods {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if periods[name].Contains(hour) {
			return name
		}
	}
	return "unknown"
}

// FilterByTimePeriod keeps the items whose hour of day falls inside the
// window. Windows that cross midnight are handled by the window itself.
func FilterByTimePeriod[T any](items []T, hourOf func(T) int, window tool.TimeWindow) []T {
	filtered := make([]T, 0, len(items))
	for _, item := range items {
		if window.Contains(hourOf(item)) {
			filtered = append(filtered, item)
		}
	}
	return filtered
}

// Intervals returns the gaps in hours between consecutive timestamps,
// sorted chronologically. Fewer than two timestamps yield no intervals.
func Intervals(times []time.Time) []float64 {
	if len(times) < 2 {
		return nil
	}

	sorted := make([]time.Time, len(times))
	copy(sorted, times)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	intervals := make([]float64, 0, len(sorted)-1)
	for i := 1; i < len(sorted); i++ {
		intervals = append(intervals, Round(sorted[i].Sub(sorted[i-1]).Hours(), 2))
	}
	return intervals
}
