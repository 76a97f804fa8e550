package toolexec

import (
	"context"
	"fmt"

	"github.com/Abraxas-365/nido/pkg/kernel"
	"github.com/Abraxas-365/nido/record"
	"github.com/Abraxas-365/nido/tool"
	"github.com/Abraxas-365/nido/tool/analytics"
)

var sleepMetrics = []string{"total_sleep", "night_sleep", "naps", "quality"}

var sleepCalculationMethods = []string{"PSQI", "custom"}

// SleepAnalyzer aggregates per-baby sleep pattern summaries into a
// combined analysis across all requested babies.
type SleepAnalyzer struct {
	patterns record.SleepPatternProvider
}

// NewSleepAnalyzer creates the sleep analysis executor
func NewSleepAnalyzer(patterns record.SleepPatternProvider) *SleepAnalyzer {
	return &SleepAnalyzer{patterns: patterns}
}

// Type returns the tool type this executor serves
func (e *SleepAnalyzer) Type() tool.ToolType {
	return tool.ToolTypeSleepPatternAnalyzer
}

// ValidateParameters normalizes sleep analyzer parameters. The
// calculation_method is only meaningful when the quality metric was
// requested; otherwise it is cleared.
func (e *SleepAnalyzer) ValidateParameters(raw map[string]any, cfg tool.Configuration) map[string]any {
	params := analytics.ValidateBaseParameters(raw, cfg, sleepMetrics)
	metrics := params["metrics"].([]string)

	allowedMethods := cfg.AllowedCalculationMethods(sleepCalculationMethods)
	defaultMethod := cfg.DefaultCalculationMethod("custom")

	var method string
	if v, ok := raw["calculation_method"].(string); ok && v != "" {
		method = v
		if !containsMethod(allowedMethods, method) {
			method = defaultMethod
		}
		if !hasMetric(metrics, "quality") {
			method = ""
		}
	} else if hasMetric(metrics, "quality") {
		method = defaultMethod
	}

	params["calculation_method"] = method
	return params
}

// Execute runs the sleep pattern analysis across the given babies
func (e *SleepAnalyzer) Execute(ctx context.Context, cfg tool.Configuration, babyIDs []kernel.BabyID, userID kernel.UserID, raw map[string]any) (map[string]any, error) {
	params := e.ValidateParameters(raw, cfg)

	timeframe := params["timeframe"].(int)
	metrics := params["metrics"].([]string)
	method := params["calculation_method"].(string)

	allPatterns := make(map[kernel.BabyID]*record.SleepPatterns)
	var analyzed []kernel.BabyID

	for _, babyID := range babyIDs {
		patterns, err := e.patterns.GetSleepPatterns(ctx, babyID, userID, timeframe, method)
		if err != nil {
			return nil, err
		}
		if patterns != nil && patterns.HasData() {
			allPatterns[babyID] = patterns
			analyzed = append(analyzed, babyID)
		}
	}

	if len(analyzed) == 0 {
		return e.emptyResult(cfg, timeframe, metrics, method), nil
	}

	summary := map[string]any{
		"analysis_period_days": timeframe,
		"babies_analyzed":      len(analyzed),
		"metrics_analyzed":     metrics,
	}
	if hasMetric(metrics, "quality") && method != "" {
		summary["calculation_method_used"] = method
	}
	for key, value := range e.aggregateMetrics(allPatterns, analyzed, metrics, cfg) {
		summary[key] = value
	}

	result := map[string]any{"summary": summary}

	if params["include_details"].(bool) {
		detailed := make(map[string]any, len(analyzed))
		for _, babyID := range analyzed {
			detailed[babyID.String()] = e.filterPattern(allPatterns[babyID], metrics)
		}
		result["detailed_patterns"] = detailed
	}

	return result, nil
}

// aggregateMetrics averages each requested metric across babies. Quality
// scores of zero mean no data for that baby and are excluded from the
// quality average.
func (e *SleepAnalyzer) aggregateMetrics(allPatterns map[kernel.BabyID]*record.SleepPatterns, analyzed []kernel.BabyID, metrics []string, cfg tool.Configuration) map[string]any {
	babyCount := float64(len(analyzed))

	var totalSleepHours, totalNightHours, totalNaps float64
	var qualityTotal float64
	var babiesWithScores int
	var explanations, ratings []string
	methods := make(map[string]bool)

	for _, babyID := range analyzed {
		summary := allPatterns[babyID].Summary

		totalSleepHours += summary.AvgTotalSleepHours
		totalNightHours += summary.AvgNightSleepHours
		totalNaps += summary.AvgNapsPerDay

		if hasMetric(metrics, "quality") && summary.SleepQualityScore > 0 {
			qualityTotal += summary.SleepQualityScore
			babiesWithScores++
			if summary.SleepQualityExplanation != "" {
				explanations = append(explanations, summary.SleepQualityExplanation)
			}
			if summary.SleepQualityRating != "" {
				ratings = append(ratings, summary.SleepQualityRating)
			}
			if summary.CalculationMethod != "" {
				methods[summary.CalculationMethod] = true
			}
		}
	}

	result := make(map[string]any)

	if hasMetric(metrics, "total_sleep") {
		result["avg_total_sleep_hours"] = analytics.RoundMetric(totalSleepHours/babyCount, cfg, "sleep")
	}
	if hasMetric(metrics, "night_sleep") {
		result["avg_night_sleep_hours"] = analytics.RoundMetric(totalNightHours/babyCount, cfg, "sleep")
	}
	if hasMetric(metrics, "naps") {
		result["avg_naps_per_day"] = analytics.Round(totalNaps/babyCount, cfg.GetNormalDecimals())
	}

	if hasMetric(metrics, "quality") {
		if babiesWithScores > 0 {
			avgScore := analytics.Round(qualityTotal/float64(babiesWithScores), cfg.GetNormalDecimals())
			result["sleep_quality_score"] = avgScore

			methodStr := "Mixed"
			if len(methods) == 1 {
				for m := range methods {
					methodStr = m
				}
			}

			if babiesWithScores == 1 {
				if len(ratings) > 0 {
					result["sleep_quality_rating"] = ratings[0]
				} else {
					result["sleep_quality_rating"] = cfg.Message("no_data_rating", "No Data")
				}
				if len(explanations) > 0 {
					result["sleep_quality_explanation"] = explanations[0]
				} else {
					result["sleep_quality_explanation"] = fmt.Sprintf("%s Score: %v/100", methodStr, avgScore)
				}
			} else {
				result["sleep_quality_rating"] = mostCommonRating(ratings)
				result["sleep_quality_explanation"] = fmt.Sprintf(
					"Average %s Score: %v/100 across %d babies", methodStr, avgScore, babiesWithScores,
				)
			}

			result["calculation_method"] = methodStr
		} else {
			result["sleep_quality_score"] = 0
			result["sleep_quality_rating"] = cfg.Message("no_data_rating", "No Data")
			result["sleep_quality_explanation"] = cfg.Message("no_quality_data", "No sleep quality data available")
			result["calculation_method"] = cfg.Message("calculation_method_na", "N/A")
		}
	}

	return result
}

// filterPattern keeps only the detail fields belonging to requested
// metrics so the detailed section does not repeat the summary.
func (e *SleepAnalyzer) filterPattern(patterns *record.SleepPatterns, metrics []string) map[string]any {
	summary := map[string]any{
		"total_days_analyzed":  patterns.Summary.TotalDaysAnalyzed,
		"days_with_sleep_data": patterns.Summary.DaysWithSleepData,
	}

	if hasMetric(metrics, "total_sleep") {
		summary["avg_total_sleep_minutes"] = patterns.Summary.AvgTotalSleepMinutes
	}
	if hasMetric(metrics, "night_sleep") {
		summary["avg_night_sleep_minutes"] = patterns.Summary.AvgNightSleepMinutes
	}
	if hasMetric(metrics, "naps") {
		summary["avg_naps_per_day"] = patterns.Summary.AvgNapsPerDay
		summary["avg_nap_duration_minutes"] = patterns.Summary.AvgNapDurationMinutes
	}

	filtered := map[string]any{"summary": summary}

	wantsSleepData := hasMetric(metrics, "total_sleep") ||
		hasMetric(metrics, "night_sleep") || hasMetric(metrics, "naps")
	if wantsSleepData && len(patterns.DailySleep) > 0 {
		filtered["daily_sleep"] = patterns.DailySleep
	}
	if hasMetric(metrics, "total_sleep") && len(patterns.ByLocation) > 0 {
		filtered["by_location"] = patterns.ByLocation
	}

	return filtered
}

func (e *SleepAnalyzer) emptyResult(cfg tool.Configuration, timeframe int, metrics []string, method string) map[string]any {
	summary := map[string]any{
		"analysis_period_days": timeframe,
		"babies_analyzed":      0,
		"metrics_analyzed":     metrics,
		"message":              cfg.Message("no_data_available", "No sleep data available for the specified timeframe"),
	}

	if hasMetric(metrics, "total_sleep") {
		summary["avg_total_sleep_hours"] = 0.0
	}
	if hasMetric(metrics, "night_sleep") {
		summary["avg_night_sleep_hours"] = 0.0
	}
	if hasMetric(metrics, "naps") {
		summary["avg_naps_per_day"] = 0.0
	}
	if hasMetric(metrics, "quality") {
		summary["sleep_quality_score"] = 0
		summary["sleep_quality_rating"] = cfg.Message("no_data_rating", "No Data")
		summary["sleep_quality_explanation"] = cfg.Message("no_quality_data", "No sleep quality data available")
		if method != "" {
			summary["calculation_method"] = method
			summary["calculation_method_used"] = method
		} else {
			summary["calculation_method"] = cfg.Message("calculation_method_na", "N/A")
		}
	}

	return map[string]any{"summary": summary}
}

func mostCommonRating(ratings []string) string {
	counts := make(map[string]int)
	for _, r := range ratings {
		counts[r]++
	}

	var best string
	var bestCount int
	for rating, count := range counts {
		if count > bestCount || (count == bestCount && rating < best) {
			best = rating
			bestCount = count
		}
	}
	return best
}

func containsMethod(methods []string, target string) bool {
	for _, m := range methods {
		if m == target {
			return true
		}
	}
	return false
}

var _ tool.Executor = (*SleepAnalyzer)(nil)
