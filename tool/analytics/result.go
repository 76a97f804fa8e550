package analytics

import (
	"github.com/Abraxas-365/nido/tool"
)

// EmptyAnalysisResult builds the standard payload returned when no
// records exist in the analysis window. The message is configurable per
// tool so the response can be localized without code changes.
func EmptyAnalysisResult(cfg tool.Configuration, timeframe int, metrics []string, messageKey, fallbackMessage string, filters map[string]any) map[string]any {
	result := map[string]any{
		"analysis_period_days": timeframe,
		"babies_analyzed":      0,
		"metrics_analyzed":     metrics,
		"message":              cfg.Message(messageKey, fallbackMessage),
	}
	if len(filters) > 0 {
		result["filters_applied"] = filters
	}
	return result
}

// BuildSummaryWithMetrics builds the summary block shared by every
// analysis response.
func BuildSummaryWithMetrics(babiesAnalyzed, timeframe, totalRecords int, metrics []string) map[string]any {
	return map[string]any{
		"babies_analyzed":      babiesAnalyzed,
		"analysis_period_days": timeframe,
		"total_records":        totalRecords,
		"metrics_analyzed":     metrics,
	}
}
