package toolexec

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/Abraxas-365/nido/pkg/kernel"
	"github.com/Abraxas-365/nido/record"
	"github.com/Abraxas-365/nido/tool"
	"github.com/Abraxas-365/nido/tool/analytics"
)

// Calories per ml for liquid feedings (~20 cal/oz).
const (
	caloriesPerMlBreastMilk = 0.67
	caloriesPerMlFormula    = 0.67
	caloriesPerMlMixed      = 0.67
)

// Approximate calories per gram for common solid foods.
var solidsCaloriesPerGram = map[string]float64{
	"cereals":    3.5,
	"fruits":     0.6,
	"vegetables": 0.4,
	"proteins":   1.5,
}

const solidsCaloriesDefault = 1.0

var bottleCaloriesPerMl = map[string]float64{
	"breast_milk": caloriesPerMlBreastMilk,
	"formula":     caloriesPerMlFormula,
	"mixed":       caloriesPerMlMixed,
}

// Typical feeding rate ranges in ml per minute by age.
var feedingRateBands = []analytics.RateBand{
	{Min: 0, Max: 1.0, Label: "Below typical range - may indicate slow feeding or latching difficulties"},
	{Min: 1.0, Max: 2.0, Label: "Typical for newborns (0-3 months)"},
	{Min: 2.0, Max: 4.0, Label: "Typical for infants (3-6 months)"},
	{Min: 4.0, Max: 6.0, Label: "Typical for older infants (6+ months)"},
	{Min: 6.0, Max: math.Inf(1), Label: "Above typical range - very efficient feeding"},
}

var feedingMetrics = []string{
	"frequency", "volume", "duration", "types", "nutrition",
	"pumping", "schedule", "clusters", "efficiency",
}

var timeOfDayFilters = []string{"morning", "afternoon", "evening", "night", "all"}

// A cluster needs at least two feedings close together.
const minClusterSize = 2

// FeedingTracker analyzes feeding records: frequency, volume, nutrition,
// cluster feeding episodes and feeding efficiency.
type FeedingTracker struct {
	feedings record.FeedingRepository
}

// NewFeedingTracker creates the feeding analysis executor
func NewFeedingTracker(feedings record.FeedingRepository) *FeedingTracker {
	return &FeedingTracker{feedings: feedings}
}

// Type returns the tool type this executor serves
func (e *FeedingTracker) Type() tool.ToolType {
	return tool.ToolTypeFeedingTracker
}

// ValidateParameters normalizes feeding tracker parameters
func (e *FeedingTracker) ValidateParameters(raw map[string]any, cfg tool.Configuration) map[string]any {
	params := analytics.ValidateBaseParameters(raw, cfg, feedingMetrics)

	defaultTypesFilter := cfg.Defaults.FeedingTypesFilter
	if defaultTypesFilter == "" {
		defaultTypesFilter = "all"
	}
	params["feeding_types_filter"] = analytics.ValidateFilterParameter(
		raw, "feeding_types_filter",
		cfg.AllowedFeedingTypes([]string{"all"}),
		defaultTypesFilter,
	)

	defaultTimeFilter := cfg.Defaults.TimeOfDayFilter
	if defaultTimeFilter == "" {
		defaultTimeFilter = "all"
	}
	params["time_of_day_filter"] = analytics.ValidateFilterParameter(
		raw, "time_of_day_filter", timeOfDayFilters, defaultTimeFilter,
	)

	includeTrends := true
	if v, ok := raw["include_trends"].(bool); ok {
		includeTrends = v
	}
	params["include_trends"] = includeTrends

	detailLevel := "summary"
	if v, ok := raw["nutrition_detail_level"].(string); ok && v != "" {
		detailLevel = v
	}
	params["nutrition_detail_level"] = detailLevel

	return params
}

// Execute runs the feeding analysis across the given babies
func (e *FeedingTracker) Execute(ctx context.Context, cfg tool.Configuration, babyIDs []kernel.BabyID, userID kernel.UserID, raw map[string]any) (map[string]any, error) {
	params := e.ValidateParameters(raw, cfg)

	timeframe := params["timeframe"].(int)
	metrics := params["metrics"].([]string)
	typesFilter := params["feeding_types_filter"].(string)
	timeFilter := params["time_of_day_filter"].(string)

	end := time.Now()
	start := end.AddDate(0, 0, -timeframe)

	allFeedings := make(map[kernel.BabyID][]record.Feeding)
	var analyzed []kernel.BabyID

	for _, babyID := range babyIDs {
		feedings, err := e.feedings.FindForBabyInRange(ctx, babyID, userID, start, end)
		if err != nil {
			return nil, err
		}

		filtered := e.applyFilters(feedings, typesFilter, timeFilter, cfg)
		if len(filtered) > 0 {
			allFeedings[babyID] = filtered
			analyzed = append(analyzed, babyID)
		}
	}

	if len(analyzed) == 0 {
		return e.emptyResult(cfg, params), nil
	}

	summary := map[string]any{
		"analysis_period_days": timeframe,
		"babies_analyzed":      len(analyzed),
		"metrics_analyzed":     metrics,
		"filters_applied": map[string]any{
			"feeding_types": typesFilter,
			"time_of_day":   timeFilter,
		},
	}
	for key, value := range e.summaryMetrics(allFeedings, analyzed, metrics, timeframe, cfg) {
		summary[key] = value
	}

	result := map[string]any{"summary": summary}

	if params["include_details"].(bool) {
		detailed := make(map[string]any, len(analyzed))
		for _, babyID := range analyzed {
			detailed[babyID.String()] = e.babyPatterns(allFeedings[babyID], metrics, timeframe, cfg)
		}
		result["detailed_patterns"] = detailed
	}

	if params["include_trends"].(bool) {
		result["trends"] = e.trends(allFeedings, metrics)
	}

	return result, nil
}

func (e *FeedingTracker) calculateCalories(f record.Feeding) float64 {
	var calories float64

	switch {
	case f.Type.IsBreastfeeding():
		if f.Amount != nil {
			calories = *f.Amount * caloriesPerMlBreastMilk
		}
	case f.Type == record.FeedingBottle:
		if f.Amount != nil && f.BottleContentType != "" {
			calPerMl, ok := bottleCaloriesPerMl[f.BottleContentType]
			if !ok {
				calPerMl = caloriesPerMlMixed
			}
			calories = *f.Amount * calPerMl
		}
	case f.Type == record.FeedingFormula:
		if f.Amount != nil {
			calories = *f.Amount * caloriesPerMlFormula
		}
	case f.Type == record.FeedingSolids:
		// Amount is grams for solids.
		if f.Amount != nil {
			calPerGram, ok := solidsCaloriesPerGram[f.FoodType]
			if !ok {
				calPerGram = solidsCaloriesDefault
			}
			calories = *f.Amount * calPerGram
		}
	}

	return analytics.Round(calories, 1)
}

func (e *FeedingTracker) applyFilters(feedings []record.Feeding, typesFilter, timeFilter string, cfg tool.Configuration) []record.Feeding {
	filtered := feedings

	if typesFilter != "all" {
		kept := make([]record.Feeding, 0, len(filtered))
		for _, f := range filtered {
			if string(f.Type) == typesFilter {
				kept = append(kept, f)
			}
		}
		filtered = kept
	}

	if timeFilter != "all" {
		if window, ok := cfg.TimePeriods()[timeFilter]; ok {
			filtered = analytics.FilterByTimePeriod(filtered, func(f record.Feeding) int {
				return f.StartTime.Hour()
			}, window)
		}
	}

	return filtered
}

type feedingAggregate struct {
	totalFeedings          int
	totalVolume            float64
	totalDuration          float64
	totalCalories          float64
	feedingTypes           []string
	bottleContents         []string
	pumpingVolume          float64
	pumpingSessions        int
	feedingTimes           []time.Time
	babiesWithVolume       int
	babiesWithDuration     int
	clusters               [][]time.Time
	efficiencies           []float64
	efficiencyByType       map[string][]float64
	nutritionByType        map[string]float64
	feedingsWithEfficiency int
}

func (e *FeedingTracker) aggregate(allFeedings map[kernel.BabyID][]record.Feeding, analyzed []kernel.BabyID, metrics []string, cfg tool.Configuration) *feedingAggregate {
	agg := &feedingAggregate{
		efficiencyByType: make(map[string][]float64),
		nutritionByType:  make(map[string]float64),
	}

	wantNutrition := hasMetric(metrics, "nutrition")
	wantEfficiency := hasMetric(metrics, "efficiency")
	wantClusters := hasMetric(metrics, "clusters")

	for _, babyID := range analyzed {
		feedings := allFeedings[babyID]
		babyHasVolume := false
		babyHasDuration := false

		if wantClusters {
			times := feedingTimesOf(feedings)
			agg.clusters = append(agg.clusters, analytics.DetectTimeClusters(
				times, cfg.ClusterWindowMinutes(), minClusterSize,
			)...)
		}

		for _, f := range feedings {
			agg.totalFeedings++
			agg.feedingTypes = append(agg.feedingTypes, string(f.Type))
			agg.feedingTimes = append(agg.feedingTimes, f.StartTime)

			if wantNutrition {
				calories := e.calculateCalories(f)
				agg.totalCalories += calories
				agg.nutritionByType[string(f.Type)] += calories
			}

			if wantEfficiency && f.Amount != nil && f.DurationMinutes != nil {
				if rate := analytics.Rate(*f.Amount, *f.DurationMinutes); rate != nil {
					agg.feedingsWithEfficiency++
					agg.efficiencies = append(agg.efficiencies, *rate)
					agg.efficiencyByType[string(f.Type)] = append(agg.efficiencyByType[string(f.Type)], *rate)
				}
			}

			if f.Amount != nil && *f.Amount > 0 {
				agg.totalVolume += *f.Amount
				babyHasVolume = true

				if f.Type == record.FeedingBottle && f.BottleContentType != "" {
					agg.bottleContents = append(agg.bottleContents, f.BottleContentType)
				}
			}

			if f.DurationMinutes != nil && *f.DurationMinutes > 0 {
				agg.totalDuration += *f.DurationMinutes
				babyHasDuration = true
			}

			if f.Type == record.FeedingPumping {
				agg.pumpingSessions++
				agg.pumpingVolume += f.TotalPumpedVolume()
			}
		}

		if babyHasVolume {
			agg.babiesWithVolume++
		}
		if babyHasDuration {
			agg.babiesWithDuration++
		}
	}

	return agg
}

func (e *FeedingTracker) summaryMetrics(allFeedings map[kernel.BabyID][]record.Feeding, analyzed []kernel.BabyID, metrics []string, days int, cfg tool.Configuration) map[string]any {
	agg := e.aggregate(allFeedings, analyzed, metrics, cfg)
	summary := make(map[string]any)

	if hasMetric(metrics, "frequency") {
		avgDaily := float64(agg.totalFeedings) / float64(days) / float64(len(analyzed))
		summary["avg_daily_feedings"] = analytics.Round(avgDaily, cfg.GetFrequencyDecimals())
		summary["total_feedings_analyzed"] = agg.totalFeedings

		if len(agg.feedingTimes) >= cfg.MinFeedingsForPattern() {
			if intervals := analytics.Intervals(agg.feedingTimes); len(intervals) > 0 {
				summary["avg_hours_between_feedings"] = analytics.Round(
					analytics.Average(intervals), cfg.GetDurationDecimals(),
				)
			}
		}
	}

	if hasMetric(metrics, "volume") {
		if agg.babiesWithVolume > 0 {
			summary["avg_volume_per_feeding_ml"] = analytics.Round(
				agg.totalVolume/float64(agg.totalFeedings), cfg.GetVolumeDecimals(),
			)
			summary["avg_daily_volume_ml"] = analytics.Round(
				agg.totalVolume/float64(days), cfg.GetVolumeDecimals(),
			)
		} else {
			summary["volume_data"] = cfg.Message("no_volume_data", "Volume data not available")
		}
	}

	if hasMetric(metrics, "duration") {
		if agg.babiesWithDuration > 0 {
			summary["avg_feeding_duration_minutes"] = analytics.RoundMetric(
				agg.totalDuration/float64(agg.totalFeedings), cfg, "duration",
			)
		} else {
			summary["duration_data"] = cfg.Message("no_duration_data", "Duration data not available")
		}
	}

	if hasMetric(metrics, "types") {
		summary["feeding_type_distribution"] = analytics.Distribution(agg.feedingTypes, 1)
		if len(agg.bottleContents) > 0 {
			summary["bottle_content_distribution"] = analytics.Distribution(agg.bottleContents, 1)
		}
	}

	if hasMetric(metrics, "nutrition") && agg.totalCalories > 0 {
		nutrition := map[string]any{
			"total_calories":           analytics.Round(agg.totalCalories, 1),
			"avg_daily_calories":       analytics.Round(agg.totalCalories/float64(days)/float64(len(analyzed)), 1),
			"avg_calories_per_feeding": analytics.Round(agg.totalCalories/float64(agg.totalFeedings), 1),
		}

		breakdown := make(map[string]any, len(agg.nutritionByType))
		for feedingType, calories := range agg.nutritionByType {
			breakdown[feedingType] = map[string]any{
				"calories":   analytics.Round(calories, 1),
				"percentage": analytics.Percentage(calories, agg.totalCalories, 1),
			}
		}
		nutrition["breakdown_by_type"] = breakdown
		summary["nutrition_metrics"] = nutrition
	}

	if hasMetric(metrics, "pumping") && agg.pumpingSessions > 0 {
		summary["pumping_sessions"] = agg.pumpingSessions
		summary["avg_pumping_volume_ml"] = analytics.Round(
			agg.pumpingVolume/float64(agg.pumpingSessions), cfg.GetVolumeDecimals(),
		)
		summary["total_pumped_ml"] = analytics.Round(agg.pumpingVolume, cfg.GetVolumeDecimals())
	}

	if hasMetric(metrics, "schedule") && len(agg.feedingTimes) >= cfg.MinFeedingsForPattern() {
		summary["schedule_analysis"] = e.schedulePatterns(agg.feedingTimes, cfg)
	}

	if hasMetric(metrics, "clusters") {
		clusterCount := len(agg.clusters)
		if clusterCount > 0 {
			var totalSize int
			for _, c := range agg.clusters {
				totalSize += len(c)
			}
			summary["cluster_feeding_analysis"] = map[string]any{
				"total_clusters_detected":  clusterCount,
				"avg_feedings_per_cluster": analytics.Round(float64(totalSize)/float64(clusterCount), 1),
				"cluster_frequency":        analytics.Round(float64(clusterCount)/float64(days), 1),
				"message":                  clusterMessage(clusterCount),
			}
		} else {
			summary["cluster_feeding_analysis"] = map[string]any{
				"total_clusters_detected": 0,
				"message":                 "No cluster feeding patterns detected",
			}
		}
	}

	if hasMetric(metrics, "efficiency") {
		if len(agg.efficiencies) > 0 {
			summary["feeding_efficiency"] = e.efficiencyMetrics(agg, cfg)
		} else {
			summary["feeding_efficiency"] = map[string]any{
				"message":     "No efficiency data available - requires both volume and duration data for calculation",
				"explanation": "Feeding efficiency measures ml consumed per minute during feeding sessions",
			}
		}
	}

	return summary
}

func (e *FeedingTracker) efficiencyMetrics(agg *feedingAggregate, cfg tool.Configuration) map[string]any {
	avgEfficiency := analytics.Average(agg.efficiencies)
	minRate, maxRate := analytics.MinMax(agg.efficiencies)

	metrics := map[string]any{
		"avg_feeding_rate_ml_per_min": analytics.Round(avgEfficiency, 2),
		"efficiency_interpretation":   analytics.InterpretRate(avgEfficiency, feedingRateBands),
		"min_rate_ml_per_min":         analytics.Round(minRate, 2),
		"max_rate_ml_per_min":         analytics.Round(maxRate, 2),
		"feedings_with_valid_data":    agg.feedingsWithEfficiency,
		"total_feedings":              agg.totalFeedings,
		"data_coverage_percentage": analytics.Percentage(
			float64(agg.feedingsWithEfficiency), float64(agg.totalFeedings), 1,
		),
		"explanation": "Feeding rate (efficiency) measures how quickly baby consumes milk/formula in ml per minute. " +
			"Higher rates indicate faster feeding. Rates typically increase as babies grow and become more efficient feeders.",
	}

	if len(agg.efficiencies) > 1 {
		metrics["rate_variability_std_dev"] = analytics.Round(analytics.StdDev(agg.efficiencies), 2)
	}

	byType := make(map[string]any, len(agg.efficiencyByType))
	for feedingType, rates := range agg.efficiencyByType {
		byType[feedingType] = map[string]any{
			"avg_rate_ml_per_min": analytics.Round(analytics.Average(rates), 2),
			"sample_count":        len(rates),
		}
	}
	metrics["rate_by_feeding_type"] = byType

	return metrics
}

func (e *FeedingTracker) schedulePatterns(feedingTimes []time.Time, cfg tool.Configuration) map[string]any {
	periods := cfg.TimePeriods()

	periodNames := make([]string, 0, len(feedingTimes))
	hourCounts := make(map[int]int)
	periodCounts := make(map[string]int)

	for _, t := range feedingTimes {
		period := analytics.PeriodForHour(t.Hour(), periods)
		periodNames = append(periodNames, period)
		periodCounts[period]++
		hourCounts[t.Hour()]++
	}

	var peakPeriod string
	var peakCount int
	for period, count := range periodCounts {
		if count > peakCount || (count == peakCount && period < peakPeriod) {
			peakPeriod = period
			peakCount = count
		}
	}

	type hourCount struct {
		hour  int
		count int
	}
	hours := make([]hourCount, 0, len(hourCounts))
	for hour, count := range hourCounts {
		hours = append(hours, hourCount{hour, count})
	}
	sort.Slice(hours, func(i, j int) bool {
		if hours[i].count != hours[j].count {
			return hours[i].count > hours[j].count
		}
		return hours[i].hour < hours[j].hour
	})
	if len(hours) > 3 {
		hours = hours[:3]
	}

	topHours := make([]map[string]any, 0, len(hours))
	for _, h := range hours {
		topHours = append(topHours, map[string]any{"hour": h.hour, "count": h.count})
	}

	return map[string]any{
		"distribution_by_time": analytics.Distribution(periodNames, 1),
		"peak_feeding_period":  peakPeriod,
		"most_common_hours":    topHours,
		"total_feedings":       len(feedingTimes),
	}
}

func (e *FeedingTracker) trends(allFeedings map[kernel.BabyID][]record.Feeding, metrics []string) map[string]any {
	trends := make(map[string]any)

	byDate := make(map[string][]record.Feeding)
	for _, feedings := range allFeedings {
		for _, f := range feedings {
			day := f.StartTime.Format("2006-01-02")
			byDate[day] = append(byDate[day], f)
		}
	}

	dates := make([]string, 0, len(byDate))
	for day := range byDate {
		dates = append(dates, day)
	}
	sort.Strings(dates)

	if hasMetric(metrics, "volume") {
		volumeTrend := make([]map[string]any, 0, len(dates))
		for _, day := range dates {
			daily := byDate[day]
			var dailyVolume float64
			for _, f := range daily {
				if f.Amount != nil {
					dailyVolume += *f.Amount
				}
			}
			volumeTrend = append(volumeTrend, map[string]any{
				"date":            day,
				"total_volume_ml": analytics.Round(dailyVolume, 1),
				"feeding_count":   len(daily),
			})
		}
		trends["volume_trend"] = volumeTrend
	}

	if hasMetric(metrics, "efficiency") {
		efficiencyTrend := make([]map[string]any, 0, len(dates))
		for _, day := range dates {
			daily := byDate[day]
			var rates []float64
			for _, f := range daily {
				if f.Amount != nil && f.DurationMinutes != nil {
					if rate := analytics.Rate(*f.Amount, *f.DurationMinutes); rate != nil {
						rates = append(rates, *rate)
					}
				}
			}
			if len(rates) == 0 {
				continue
			}
			minRate, maxRate := analytics.MinMax(rates)
			efficiencyTrend = append(efficiencyTrend, map[string]any{
				"date":                          day,
				"avg_feeding_rate_ml_per_min":   analytics.Round(analytics.Average(rates), 2),
				"min_rate":                      analytics.Round(minRate, 2),
				"max_rate":                      analytics.Round(maxRate, 2),
				"feedings_with_efficiency_data": len(rates),
				"total_feedings":                len(daily),
				"data_coverage_percentage":      analytics.Percentage(float64(len(rates)), float64(len(daily)), 1),
			})
		}
		if len(efficiencyTrend) > 0 {
			trends["efficiency_trend"] = map[string]any{
				"daily_data":  efficiencyTrend,
				"explanation": "Shows daily average feeding rates (ml/min) with data coverage information",
			}
		}
	}

	if hasMetric(metrics, "nutrition") {
		nutritionTrend := make([]map[string]any, 0, len(dates))
		for _, day := range dates {
			daily := byDate[day]
			var dailyCalories float64
			for _, f := range daily {
				dailyCalories += e.calculateCalories(f)
			}
			nutritionTrend = append(nutritionTrend, map[string]any{
				"date":           day,
				"total_calories": analytics.Round(dailyCalories, 1),
				"feeding_count":  len(daily),
			})
		}
		trends["nutrition_trend"] = nutritionTrend
	}

	return trends
}

func (e *FeedingTracker) babyPatterns(feedings []record.Feeding, metrics []string, days int, cfg tool.Configuration) map[string]any {
	patterns := map[string]any{
		"total_feedings": len(feedings),
		"analysis_days":  days,
	}

	if hasMetric(metrics, "frequency") {
		patterns["daily_feeding_frequency"] = analytics.Round(
			float64(len(feedings))/float64(days), cfg.GetFrequencyDecimals(),
		)

		byDate := analytics.AggregateByDate(feedings, func(f record.Feeding) time.Time {
			return f.StartTime
		})
		dates := make([]string, 0, len(byDate))
		for day := range byDate {
			dates = append(dates, day)
		}
		sort.Strings(dates)

		dailyCounts := make([]map[string]any, 0, len(dates))
		for _, day := range dates {
			dailyCounts = append(dailyCounts, map[string]any{
				"date":  day,
				"count": len(byDate[day]),
			})
		}
		patterns["daily_feeding_counts"] = dailyCounts
	}

	if hasMetric(metrics, "volume") {
		var volumes []float64
		for _, f := range feedings {
			if f.Amount != nil && *f.Amount > 0 {
				volumes = append(volumes, *f.Amount)
			}
		}
		if len(volumes) > 0 {
			minVolume, maxVolume := analytics.MinMax(volumes)
			var total float64
			for _, v := range volumes {
				total += v
			}
			patterns["avg_volume_ml"] = analytics.Round(analytics.Average(volumes), cfg.GetVolumeDecimals())
			patterns["total_volume_ml"] = analytics.Round(total, cfg.GetVolumeDecimals())
			patterns["min_volume_ml"] = analytics.Round(minVolume, cfg.GetVolumeDecimals())
			patterns["max_volume_ml"] = analytics.Round(maxVolume, cfg.GetVolumeDecimals())
		}
	}

	if hasMetric(metrics, "duration") {
		var durations []float64
		for _, f := range feedings {
			if f.DurationMinutes != nil && *f.DurationMinutes > 0 {
				durations = append(durations, *f.DurationMinutes)
			}
		}
		if len(durations) > 0 {
			minDuration, maxDuration := analytics.MinMax(durations)
			patterns["avg_duration_minutes"] = analytics.Round(analytics.Average(durations), cfg.GetDurationDecimals())
			patterns["min_duration_minutes"] = analytics.Round(minDuration, cfg.GetDurationDecimals())
			patterns["max_duration_minutes"] = analytics.Round(maxDuration, cfg.GetDurationDecimals())
		}
	}

	if hasMetric(metrics, "types") {
		typeCounts := make(map[string]int)
		for _, f := range feedings {
			typeCounts[string(f.Type)]++
		}
		patterns["feeding_types"] = typeCounts
	}

	if hasMetric(metrics, "nutrition") {
		var totalCalories float64
		for _, f := range feedings {
			totalCalories += e.calculateCalories(f)
		}
		avgPerFeeding := 0.0
		if len(feedings) > 0 {
			avgPerFeeding = analytics.Round(totalCalories/float64(len(feedings)), 1)
		}
		patterns["nutrition"] = map[string]any{
			"total_calories":           analytics.Round(totalCalories, 1),
			"avg_calories_per_feeding": avgPerFeeding,
			"daily_average_calories":   analytics.Round(totalCalories/float64(days), 1),
		}
	}

	if hasMetric(metrics, "clusters") {
		clusters := analytics.DetectTimeClusters(
			feedingTimesOf(feedings), cfg.ClusterWindowMinutes(), minClusterSize,
		)

		largest := 0
		clusterDates := make([]map[string]any, 0, len(clusters))
		for _, cluster := range clusters {
			if len(cluster) > largest {
				largest = len(cluster)
			}
			clusterDates = append(clusterDates, map[string]any{
				"date":             cluster[0].Format("2006-01-02"),
				"size":             len(cluster),
				"duration_minutes": analytics.Round(cluster[len(cluster)-1].Sub(cluster[0]).Minutes(), 1),
			})
		}

		patterns["cluster_analysis"] = map[string]any{
			"clusters_detected":    len(clusters),
			"largest_cluster_size": largest,
			"cluster_dates":        clusterDates,
		}
	}

	if hasMetric(metrics, "efficiency") {
		var rates []float64
		for _, f := range feedings {
			if f.Amount != nil && f.DurationMinutes != nil {
				if rate := analytics.Rate(*f.Amount, *f.DurationMinutes); rate != nil {
					rates = append(rates, *rate)
				}
			}
		}

		if len(rates) > 0 {
			avgRate := analytics.Average(rates)
			minRate, maxRate := analytics.MinMax(rates)
			analysis := map[string]any{
				"avg_feeding_rate_ml_per_min": analytics.Round(avgRate, 2),
				"rate_interpretation":         analytics.InterpretRate(avgRate, feedingRateBands),
				"improving_trend":             e.weeklyEfficiencyTrend(feedings),
				"feedings_with_complete_data": len(rates),
				"total_feedings":              len(feedings),
				"data_completeness_percentage": analytics.Percentage(
					float64(len(rates)), float64(len(feedings)), 1,
				),
				"rate_range": map[string]any{
					"min_ml_per_min": analytics.Round(minRate, 2),
					"max_ml_per_min": analytics.Round(maxRate, 2),
				},
			}
			if len(rates) > 1 {
				analysis["rate_consistency_std_dev"] = analytics.Round(analytics.StdDev(rates), 2)
			}
			patterns["efficiency_analysis"] = analysis
		} else {
			patterns["efficiency_analysis"] = map[string]any{
				"message": "No feedings with both volume and duration data available for efficiency calculation",
			}
		}
	}

	return patterns
}

// weeklyEfficiencyTrend groups feeding rates by ISO week and runs trend
// detection over the weekly averages.
func (e *FeedingTracker) weeklyEfficiencyTrend(feedings []record.Feeding) string {
	weekly := make(map[int][]float64)
	for _, f := range feedings {
		if f.Amount == nil || f.DurationMinutes == nil {
			continue
		}
		rate := analytics.Rate(*f.Amount, *f.DurationMinutes)
		if rate == nil {
			continue
		}
		year, week := f.StartTime.ISOWeek()
		weekly[year*100+week] = append(weekly[year*100+week], *rate)
	}

	if len(weekly) < 2 {
		return analytics.TrendInsufficientData
	}

	weeks := make([]int, 0, len(weekly))
	for week := range weekly {
		weeks = append(weeks, week)
	}
	sort.Ints(weeks)

	weeklyAvgs := make([]float64, 0, len(weeks))
	for _, week := range weeks {
		weeklyAvgs = append(weeklyAvgs, analytics.Average(weekly[week]))
	}

	switch analytics.DetectTrend(weeklyAvgs) {
	case analytics.TrendImproving:
		return "improving - feeding rate increasing over time"
	case analytics.TrendDeclining:
		return "declining - feeding rate decreasing over time"
	case analytics.TrendInsufficientData:
		return analytics.TrendInsufficientData
	default:
		return "stable - consistent feeding rate"
	}
}

func (e *FeedingTracker) emptyResult(cfg tool.Configuration, params map[string]any) map[string]any {
	timeframe := params["timeframe"].(int)
	metrics := params["metrics"].([]string)

	result := analytics.EmptyAnalysisResult(cfg, timeframe, metrics,
		"no_data_available", "No feeding data available for the analysis period",
		map[string]any{
			"feeding_types": params["feeding_types_filter"],
			"time_of_day":   params["time_of_day_filter"],
		},
	)

	if hasMetric(metrics, "frequency") {
		result["avg_daily_feedings"] = 0.0
		result["total_feedings_analyzed"] = 0
	}
	if hasMetric(metrics, "volume") {
		result["volume_data"] = cfg.Message("no_volume_data", "Volume data not available")
	}
	if hasMetric(metrics, "duration") {
		result["duration_data"] = cfg.Message("no_duration_data", "Duration data not available")
	}
	if hasMetric(metrics, "types") {
		result["feeding_type_distribution"] = map[string]any{}
	}
	if hasMetric(metrics, "nutrition") {
		result["nutrition_metrics"] = map[string]any{
			"message": cfg.Message("no_data_available", "No nutrition data available"),
		}
	}
	if hasMetric(metrics, "pumping") {
		result["pumping_sessions"] = 0
	}
	if hasMetric(metrics, "schedule") {
		result["schedule_analysis"] = map[string]any{
			"message": cfg.Message("insufficient_data", "Insufficient data for pattern analysis"),
		}
	}
	if hasMetric(metrics, "clusters") {
		result["cluster_feeding_analysis"] = map[string]any{
			"total_clusters_detected": 0,
			"message":                 "No data available for cluster analysis",
		}
	}
	if hasMetric(metrics, "efficiency") {
		result["feeding_efficiency"] = map[string]any{
			"message":     "No efficiency data available",
			"explanation": "Feeding efficiency measures ml consumed per minute during feeding sessions",
		}
	}

	return result
}

func clusterMessage(count int) string {
	return fmt.Sprintf("Detected %d cluster feeding episodes", count)
}

func feedingTimesOf(feedings []record.Feeding) []time.Time {
	times := make([]time.Time, 0, len(feedings))
	for _, f := range feedings {
		times = append(times, f.StartTime)
	}
	return times
}

func hasMetric(metrics []string, target string) bool {
	for _, m := range metrics {
		if m == target {
			return true
		}
	}
	return false
}

var _ tool.Executor = (*FeedingTracker)(nil)
