package recordinfra

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abraxas-365/nido/pkg/kernel"
	"github.com/Abraxas-365/nido/record"
)

func sleepRecord(start time.Time, duration time.Duration, location string, quality *int) record.Sleep {
	end := start.Add(duration)
	return record.Sleep{
		ID:        "sleep-" + start.Format("0102-1504"),
		BabyID:    kernel.NewBabyID("baby-1"),
		StartTime: start,
		EndTime:   &end,
		Location:  location,
		Quality:   quality,
	}
}

func intPtr(v int) *int { return &v }

func TestBuildSleepPatterns_NoData(t *testing.T) {
	patterns := BuildSleepPatterns(nil, 7, "custom")

	assert.Equal(t, "no_data", patterns.Status)
	assert.Equal(t, 7, patterns.Summary.TotalDaysAnalyzed)
	assert.Equal(t, 0, patterns.Summary.DaysWithSleepData)
	assert.Equal(t, "custom", patterns.Summary.CalculationMethod)
	assert.False(t, patterns.HasData())
}

func TestBuildSleepPatterns_OpenRecordsIgnored(t *testing.T) {
	open := record.Sleep{
		ID:        "sleep-open",
		BabyID:    kernel.NewBabyID("baby-1"),
		StartTime: time.Date(2025, 3, 1, 20, 0, 0, 0, time.UTC),
	}

	patterns := BuildSleepPatterns([]record.Sleep{open}, 7, "custom")
	assert.Equal(t, "no_data", patterns.Status)
}

func TestBuildSleepPatterns_NightAndNapSplit(t *testing.T) {
	day := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	sleeps := []record.Sleep{
		sleepRecord(day.Add(13*time.Hour), 90*time.Minute, "crib", nil),
		sleepRecord(day.Add(20*time.Hour), 10*time.Hour, "crib", nil),
	}

	patterns := BuildSleepPatterns(sleeps, 7, "custom")

	require.Equal(t, "ok", patterns.Status)
	assert.True(t, patterns.HasData())
	assert.Equal(t, 1, patterns.Summary.DaysWithSleepData)
	assert.Equal(t, 690.0, patterns.Summary.AvgTotalSleepMinutes)
	assert.Equal(t, 11.5, patterns.Summary.AvgTotalSleepHours)
	assert.Equal(t, 600.0, patterns.Summary.AvgNightSleepMinutes)
	assert.Equal(t, 10.0, patterns.Summary.AvgNightSleepHours)
	assert.Equal(t, 1.0, patterns.Summary.AvgNapsPerDay)
	assert.Equal(t, 90.0, patterns.Summary.AvgNapDurationMinutes)

	require.Len(t, patterns.DailySleep, 1)
	assert.Equal(t, "2025-03-01", patterns.DailySleep[0].Date)
	assert.Equal(t, 690.0, patterns.DailySleep[0].TotalMinutes)
	assert.Equal(t, 600.0, patterns.DailySleep[0].NightMinutes)
	assert.Equal(t, 1, patterns.DailySleep[0].NapCount)

	assert.Equal(t, 690.0, patterns.ByLocation["crib"])
}

func TestBuildSleepPatterns_CustomQualityScore(t *testing.T) {
	day := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	sleeps := []record.Sleep{
		sleepRecord(day.Add(13*time.Hour), 90*time.Minute, "", nil),
		sleepRecord(day.Add(20*time.Hour), 10*time.Hour, "", nil),
	}

	// Duración 11.5/12 -> 47.9 pts, consolidación nocturna 600/690 -> 26.1 pts,
	// cobertura 1/7 -> 2.9 pts.
	patterns := BuildSleepPatterns(sleeps, 7, "custom")

	assert.InDelta(t, 76.9, patterns.Summary.SleepQualityScore, 0.05)
	assert.Equal(t, "Good", patterns.Summary.SleepQualityRating)
	assert.Contains(t, patterns.Summary.SleepQualityExplanation, "Good sleep quality")
	assert.Equal(t, "custom", patterns.Summary.CalculationMethod)
}

func TestBuildSleepPatterns_PSQIBlendsSubjectiveQuality(t *testing.T) {
	day := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	sleeps := []record.Sleep{
		sleepRecord(day.Add(20*time.Hour), 10*time.Hour, "", intPtr(8)),
	}

	// Base 100 - (12-10)*5 = 90, mezclado con la calidad subjetiva 8/10:
	// 90*0.7 + 80*0.3 = 87.
	patterns := BuildSleepPatterns(sleeps, 1, "PSQI")

	assert.InDelta(t, 87.0, patterns.Summary.SleepQualityScore, 0.05)
	assert.Equal(t, "Excellent", patterns.Summary.SleepQualityRating)
	assert.Equal(t, "PSQI", patterns.Summary.CalculationMethod)
}

func TestBuildSleepPatterns_PSQIPenalizesMissingDays(t *testing.T) {
	day := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	sleeps := []record.Sleep{
		sleepRecord(day.Add(20*time.Hour), 12*time.Hour, "", nil),
	}

	// 12h cumplen la referencia, pero un solo día con datos sobre 10
	// descuenta (1 - 0.1) * 20 = 18 puntos.
	patterns := BuildSleepPatterns(sleeps, 10, "PSQI")

	assert.InDelta(t, 82.0, patterns.Summary.SleepQualityScore, 0.05)
}

func TestSleepQualityRatingBands(t *testing.T) {
	tests := []struct {
		hours  float64
		rating string
	}{
		{12, "Excellent"}, // 50 + 30 + 20 = 100
		{7, "Good"},       // 29.2 + 30 + 20 = 79.2
		{3, "Fair"},       // 12.5 + 30 + 20 = 62.5
	}

	for _, tt := range tests {
		summary := record.PatternSummary{
			AvgTotalSleepHours:   tt.hours,
			AvgTotalSleepMinutes: tt.hours * 60,
			AvgNightSleepMinutes: tt.hours * 60,
			DaysWithSleepData:    7,
		}
		score, rating, _ := scoreSleepQuality(summary, 0, 0, 7, "custom")
		assert.Equal(t, tt.rating, rating, "hours=%v score=%v", tt.hours, score)
	}

	// Sin consolidación nocturna ni cobertura el puntaje cae a Poor.
	score, rating, _ := scoreSleepQuality(record.PatternSummary{
		AvgTotalSleepHours:   2,
		AvgTotalSleepMinutes: 120,
		DaysWithSleepData:    1,
	}, 0, 0, 7, "custom")
	assert.Equal(t, "Poor", rating)
	assert.Less(t, score, 50.0)
}
