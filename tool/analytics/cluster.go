package analytics

import (
	"sort"
	"time"
)

// DetectTimeClusters finds groups of timestamps where each event falls
// within windowMinutes of the previous event in the group. Only groups
// of at least minSize events are reported. The input is not modified.
func DetectTimeClusters(times []time.Time, windowMinutes, minSize int) [][]time.Time {
	if len(times) < minSize || minSize < 1 {
		return nil
	}

	sorted := make([]time.Time, len(times))
	copy(sorted, times)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	window := time.Duration(windowMinutes) * time.Minute

	var clusters [][]time.Time
	current := []time.Time{sorted[0]}

	for _, t := range sorted[1:] {
		// Gap is measured against the last event of the running group,
		// so a cluster can stretch beyond the window as long as
		// consecutive events stay close.
		if t.Sub(current[len(current)-1]) <= window {
			current = append(current, t)
			continue
		}
		if len(current) >= minSize {
			clusters = append(clusters, current)
		}
		current = []time.Time{t}
	}

	if len(current) >= minSize {
		clusters = append(clusters, current)
	}

	return clusters
}
