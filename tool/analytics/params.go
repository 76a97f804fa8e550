package analytics

import (
	"strconv"

	"github.com/Abraxas-365/nido/tool"
)

// Parameter validation follows a silent-substitution policy: raw values
// that are missing, malformed or out of range are replaced by configured
// defaults instead of failing the execution.

// ValidateBaseParameters normalizes the parameters shared by every
// analysis tool: timeframe, metrics and include_details.
func ValidateBaseParameters(raw map[string]any, cfg tool.Configuration, fallbackMetrics []string) map[string]any {
	validated := make(map[string]any, 3)

	// timeframe: coerce to int, fall back to default, clamp to bounds
	defaultTimeframe := cfg.DefaultTimeframe(7)
	min, max := cfg.TimeframeBounds(1, 365)

	timeframe := defaultTimeframe
	if v, ok := raw["timeframe"]; ok {
		if n, ok := CoerceInt(v); ok {
			timeframe = n
		}
	}
	if timeframe < min {
		timeframe = min
	}
	if timeframe > max {
		timeframe = max
	}
	validated["timeframe"] = timeframe

	// metrics: must be a list of known metric names. Unknown entries are
	// dropped; a list left empty after filtering means the caller wanted
	// everything, so the full allowed set is used.
	allowed := cfg.AllowedMetrics(fallbackMetrics)
	defaults := cfg.DefaultMetrics(fallbackMetrics)

	metrics := defaults
	if v, ok := raw["metrics"]; ok {
		if requested := toStringSlice(v); len(requested) > 0 {
			filtered := make([]string, 0, len(requested))
			for _, m := range requested {
				if containsString(allowed, m) {
					filtered = append(filtered, m)
				}
			}
			if len(filtered) > 0 {
				metrics = filtered
			} else {
				metrics = allowed
			}
		}
	}
	validated["metrics"] = metrics

	// include_details: plain boolean passthrough
	includeDetails := false
	if cfg.Defaults.IncludeDetails != nil {
		includeDetails = *cfg.Defaults.IncludeDetails
	}
	if v, ok := raw["include_details"].(bool); ok {
		includeDetails = v
	}
	validated["include_details"] = includeDetails

	return validated
}

// ValidateFilterParameter checks membership of a string parameter against
// an allowed set, substituting the default on any mismatch.
func ValidateFilterParameter(raw map[string]any, key string, allowed []string, defaultValue string) string {
	v, ok := raw[key].(string)
	if !ok || v == "" {
		return defaultValue
	}
	if containsString(allowed, v) {
		return v
	}
	return defaultValue
}

// CoerceInt converts the loosely typed values JSON decoding produces
// into an int. Digit strings are accepted, anything else is rejected.
func CoerceInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case float32:
		return int(n), true
	case string:
		if parsed, err := strconv.Atoi(n); err == nil {
			return parsed, true
		}
	}
	return 0, false
}

// CoerceFloat converts loosely typed numeric values into a float64.
func CoerceFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		if parsed, err := strconv.ParseFloat(n, 64); err == nil {
			return parsed, true
		}
	}
	return 0, false
}

func toStringSlice(v any) []string {
	switch list := v.(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func containsString(list []string, target string) bool {
	for _, item := range list {
		if item == target {
			return true
		}
	}
	return false
}
