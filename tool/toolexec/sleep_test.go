package toolexec

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abraxas-365/nido/pkg/kernel"
	"github.com/Abraxas-365/nido/record"
	"github.com/Abraxas-365/nido/tool"
)

type mockSleepPatterns struct {
	getFn func(ctx context.Context, babyID kernel.BabyID, userID kernel.UserID, days int, calculationMethod string) (*record.SleepPatterns, error)
}

func (m *mockSleepPatterns) GetSleepPatterns(ctx context.Context, babyID kernel.BabyID, userID kernel.UserID, days int, calculationMethod string) (*record.SleepPatterns, error) {
	return m.getFn(ctx, babyID, userID, days, calculationMethod)
}

func patternsByBaby(byBaby map[kernel.BabyID]*record.SleepPatterns) *mockSleepPatterns {
	return &mockSleepPatterns{
		getFn: func(_ context.Context, babyID kernel.BabyID, _ kernel.UserID, _ int, _ string) (*record.SleepPatterns, error) {
			return byBaby[babyID], nil
		},
	}
}

func sleepSummary(score float64, rating, explanation, method string) record.PatternSummary {
	return record.PatternSummary{
		TotalDaysAnalyzed:       7,
		DaysWithSleepData:       7,
		AvgTotalSleepHours:      13.5,
		AvgTotalSleepMinutes:    810,
		AvgNightSleepHours:      10.0,
		AvgNightSleepMinutes:    600,
		AvgNapsPerDay:           2.5,
		AvgNapDurationMinutes:   45,
		SleepQualityScore:       score,
		SleepQualityRating:      rating,
		SleepQualityExplanation: explanation,
		CalculationMethod:       method,
	}
}

func TestSleepAnalyzer_Type(t *testing.T) {
	e := NewSleepAnalyzer(patternsByBaby(nil))
	assert.Equal(t, tool.ToolTypeSleepPatternAnalyzer, e.Type())
}

func TestSleepAnalyzer_ValidateParameters_CalculationMethod(t *testing.T) {
	e := NewSleepAnalyzer(patternsByBaby(nil))
	cfg := tool.Configuration{}

	tests := []struct {
		name string
		raw  map[string]any
		want string
	}{
		{
			name: "valid method with quality metric",
			raw:  map[string]any{"metrics": []any{"quality"}, "calculation_method": "PSQI"},
			want: "PSQI",
		},
		{
			name: "invalid method replaced by default",
			raw:  map[string]any{"metrics": []any{"quality"}, "calculation_method": "epworth"},
			want: "custom",
		},
		{
			name: "quality without method gets default",
			raw:  map[string]any{"metrics": []any{"quality"}},
			want: "custom",
		},
		{
			name: "method cleared when quality not requested",
			raw:  map[string]any{"metrics": []any{"total_sleep"}, "calculation_method": "PSQI"},
			want: "",
		},
		{
			name: "no quality and no method",
			raw:  map[string]any{"metrics": []any{"naps"}},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := e.ValidateParameters(tt.raw, cfg)
			assert.Equal(t, tt.want, params["calculation_method"])
		})
	}
}

func TestSleepAnalyzer_Execute_NoData(t *testing.T) {
	e := NewSleepAnalyzer(patternsByBaby(nil))

	result, err := e.Execute(context.Background(), tool.Configuration{},
		[]kernel.BabyID{kernel.NewBabyID("baby-1")}, kernel.NewUserID("user-1"),
		map[string]any{"timeframe": 7, "metrics": []any{"total_sleep", "quality"}})

	require.NoError(t, err)
	summary, ok := result["summary"].(map[string]any)
	require.True(t, ok)

	assert.Equal(t, 0, summary["babies_analyzed"])
	assert.Equal(t, "No sleep data available for the specified timeframe", summary["message"])
	assert.Equal(t, 0.0, summary["avg_total_sleep_hours"])
	assert.Equal(t, 0, summary["sleep_quality_score"])
	assert.Equal(t, "No Data", summary["sleep_quality_rating"])
	assert.Equal(t, "custom", summary["calculation_method"])
	assert.Equal(t, "custom", summary["calculation_method_used"])
}

func TestSleepAnalyzer_Execute_SingleBaby(t *testing.T) {
	babyID := kernel.NewBabyID("baby-1")
	e := NewSleepAnalyzer(patternsByBaby(map[kernel.BabyID]*record.SleepPatterns{
		babyID: {
			Status:  "success",
			Summary: sleepSummary(82, "Good", "Consistent sleep schedule", "custom"),
		},
	}))

	result, err := e.Execute(context.Background(), tool.Configuration{},
		[]kernel.BabyID{babyID}, kernel.NewUserID("user-1"),
		map[string]any{"timeframe": 7, "metrics": []any{"total_sleep", "night_sleep", "naps", "quality"}})

	require.NoError(t, err)
	summary := result["summary"].(map[string]any)

	assert.Equal(t, 1, summary["babies_analyzed"])
	assert.Equal(t, "custom", summary["calculation_method_used"])
	assert.Equal(t, 13.5, summary["avg_total_sleep_hours"])
	assert.Equal(t, 10.0, summary["avg_night_sleep_hours"])
	assert.Equal(t, 2.5, summary["avg_naps_per_day"])
	assert.Equal(t, 82.0, summary["sleep_quality_score"])

	// Single baby keeps its own rating and explanation verbatim.
	assert.Equal(t, "Good", summary["sleep_quality_rating"])
	assert.Equal(t, "Consistent sleep schedule", summary["sleep_quality_explanation"])
	assert.Equal(t, "custom", summary["calculation_method"])
}

func TestSleepAnalyzer_Execute_MultiBabyQuality(t *testing.T) {
	babyA := kernel.NewBabyID("baby-a")
	babyB := kernel.NewBabyID("baby-b")
	e := NewSleepAnalyzer(patternsByBaby(map[kernel.BabyID]*record.SleepPatterns{
		babyA: {Summary: sleepSummary(80, "Good", "Solid nights", "custom")},
		babyB: {Summary: sleepSummary(90, "Excellent", "Long stretches", "custom")},
	}))

	result, err := e.Execute(context.Background(), tool.Configuration{},
		[]kernel.BabyID{babyA, babyB}, kernel.NewUserID("user-1"),
		map[string]any{"timeframe": 7, "metrics": []any{"quality"}})

	require.NoError(t, err)
	summary := result["summary"].(map[string]any)

	assert.Equal(t, 2, summary["babies_analyzed"])
	assert.Equal(t, 85.0, summary["sleep_quality_score"])
	assert.Equal(t, "Average custom Score: 85/100 across 2 babies", summary["sleep_quality_explanation"])

	// Rating ties resolve to the lexicographically smallest rating.
	assert.Equal(t, "Excellent", summary["sleep_quality_rating"])
	assert.Equal(t, "custom", summary["calculation_method"])
}

func TestSleepAnalyzer_Execute_ZeroScoreExcludedFromQualityAverage(t *testing.T) {
	babyA := kernel.NewBabyID("baby-a")
	babyB := kernel.NewBabyID("baby-b")
	e := NewSleepAnalyzer(patternsByBaby(map[kernel.BabyID]*record.SleepPatterns{
		babyA: {Summary: sleepSummary(76, "Fair", "Frequent wakings", "PSQI")},
		babyB: {Summary: sleepSummary(0, "", "", "")},
	}))

	result, err := e.Execute(context.Background(), tool.Configuration{},
		[]kernel.BabyID{babyA, babyB}, kernel.NewUserID("user-1"),
		map[string]any{"timeframe": 7, "metrics": []any{"quality"}, "calculation_method": "PSQI"})

	require.NoError(t, err)
	summary := result["summary"].(map[string]any)

	// Only the baby with a score contributes, so its data passes through.
	assert.Equal(t, 76.0, summary["sleep_quality_score"])
	assert.Equal(t, "Fair", summary["sleep_quality_rating"])
	assert.Equal(t, "Frequent wakings", summary["sleep_quality_explanation"])
	assert.Equal(t, "PSQI", summary["calculation_method"])
}

func TestSleepAnalyzer_Execute_IncludeDetails(t *testing.T) {
	babyID := kernel.NewBabyID("baby-1")
	patterns := &record.SleepPatterns{
		Summary: sleepSummary(82, "Good", "Consistent", "custom"),
		DailySleep: []record.DailySleep{
			{Date: "2025-03-01", TotalMinutes: 800, NightMinutes: 590, NapCount: 3},
		},
		ByLocation: map[string]float64{"crib": 90.0},
	}
	e := NewSleepAnalyzer(patternsByBaby(map[kernel.BabyID]*record.SleepPatterns{babyID: patterns}))

	result, err := e.Execute(context.Background(), tool.Configuration{},
		[]kernel.BabyID{babyID}, kernel.NewUserID("user-1"),
		map[string]any{
			"timeframe":       7,
			"metrics":         []any{"total_sleep", "naps"},
			"include_details": true,
		})

	require.NoError(t, err)
	detailed, ok := result["detailed_patterns"].(map[string]any)
	require.True(t, ok)

	babyDetail, ok := detailed["baby-1"].(map[string]any)
	require.True(t, ok)

	detailSummary := babyDetail["summary"].(map[string]any)
	assert.Equal(t, 810.0, detailSummary["avg_total_sleep_minutes"])
	assert.Equal(t, 2.5, detailSummary["avg_naps_per_day"])

	// Night sleep was not requested so its detail field stays out.
	assert.NotContains(t, detailSummary, "avg_night_sleep_minutes")

	assert.NotEmpty(t, babyDetail["daily_sleep"])
	assert.Contains(t, babyDetail, "by_location")
}

func TestSleepAnalyzer_Execute_ProviderError(t *testing.T) {
	wantErr := errors.New("query failed")
	e := NewSleepAnalyzer(&mockSleepPatterns{
		getFn: func(context.Context, kernel.BabyID, kernel.UserID, int, string) (*record.SleepPatterns, error) {
			return nil, wantErr
		},
	})

	result, err := e.Execute(context.Background(), tool.Configuration{},
		[]kernel.BabyID{kernel.NewBabyID("baby-1")}, kernel.NewUserID("user-1"),
		map[string]any{"timeframe": 7})

	assert.Nil(t, result)
	assert.ErrorIs(t, err, wantErr)
}
