package analytics

// Rate computes amount per minute, returning nil when the duration is
// missing or non-positive rather than producing an undefined rate.
func Rate(amount float64, durationMinutes float64) *float64 {
	if durationMinutes <= 0 {
		return nil
	}
	rate := Round(amount/durationMinutes, 2)
	return &rate
}

// RateBand maps a half-open rate interval [Min, Max) to a human label.
type RateBand struct {
	Min   float64
	Max   float64
	Label string
}

// InterpretRate finds the band containing the rate. Rates outside every
// band are reported as within normal range.
func InterpretRate(rate float64, bands []RateBand) string {
	for _, band := range bands {
		if rate >= band.Min && rate < band.Max {
			return band.Label
		}
	}
	return "Within normal range"
}
