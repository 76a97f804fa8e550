package recordinfra

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/Abraxas-365/nido/pkg/kernel"
	"github.com/Abraxas-365/nido/record"
	"github.com/jmoiron/sqlx"
)

// PostgresSleepPatternProvider implementación de record.SleepPatternProvider.
// Lee los registros crudos de sueño y calcula los agregados en memoria.
type PostgresSleepPatternProvider struct {
	db *sqlx.DB
}

// NewPostgresSleepPatternProvider crea un nuevo proveedor de patrones de sueño
func NewPostgresSleepPatternProvider(db *sqlx.DB) *PostgresSleepPatternProvider {
	return &PostgresSleepPatternProvider{db: db}
}

// GetSleepPatterns calcula los patrones de sueño de un bebé para los últimos
// N días usando el método de cálculo de calidad indicado ("PSQI" o "custom").
func (p *PostgresSleepPatternProvider) GetSleepPatterns(ctx context.Context, babyID kernel.BabyID, userID kernel.UserID, days int, calculationMethod string) (*record.SleepPatterns, error) {
	if days < 1 {
		days = 7
	}
	if calculationMethod != "PSQI" && calculationMethod != "custom" {
		calculationMethod = "custom"
	}

	end := time.Now()
	start := end.AddDate(0, 0, -days)

	query := `
		SELECT DISTINCT s.id, s.baby_id, s.start_time, s.end_time, s.location,
		       s.quality, s.created_by, s.created_at
		FROM sleeps s
		JOIN babies b ON b.id = s.baby_id
		LEFT JOIN baby_caregivers bc ON bc.baby_id = b.id
		WHERE s.baby_id = $1
		  AND (b.owner_id = $2 OR bc.user_id = $2)
		  AND s.start_time >= $3
		  AND s.start_time < $4
		  AND s.end_time IS NOT NULL
		ORDER BY s.start_time ASC`

	var sleeps []record.Sleep
	if err := p.db.SelectContext(ctx, &sleeps, query, babyID, userID, start, end); err != nil {
		return nil, record.ErrDatabaseError(err)
	}

	return BuildSleepPatterns(sleeps, days, calculationMethod), nil
}

// BuildSleepPatterns agrega registros de sueño en un resumen de patrones.
// Separado de la capa de base de datos para poder probarlo con datos en memoria.
func BuildSleepPatterns(sleeps []record.Sleep, days int, calculationMethod string) *record.SleepPatterns {
	if len(sleeps) == 0 {
		return &record.SleepPatterns{
			Status: "no_data",
			Summary: record.PatternSummary{
				TotalDaysAnalyzed: days,
				CalculationMethod: calculationMethod,
			},
		}
	}

	type dayAgg struct {
		totalMinutes float64
		nightMinutes float64
		napCount     int
		napMinutes   float64
	}

	byDay := make(map[string]*dayAgg)
	byLocation := make(map[string]float64)
	var qualitySum float64
	var qualityCount int

	for _, s := range sleeps {
		duration := s.DurationMinutes()
		if duration <= 0 {
			continue
		}

		day := s.StartTime.Format("2006-01-02")
		agg, ok := byDay[day]
		if !ok {
			agg = &dayAgg{}
			byDay[day] = agg
		}

		agg.totalMinutes += duration
		if s.IsNightSleep() {
			agg.nightMinutes += duration
		} else {
			agg.napCount++
			agg.napMinutes += duration
		}

		if s.Location != "" {
			byLocation[s.Location] += duration
		}
		if s.Quality != nil {
			qualitySum += float64(*s.Quality)
			qualityCount++
		}
	}

	if len(byDay) == 0 {
		return &record.SleepPatterns{
			Status: "no_data",
			Summary: record.PatternSummary{
				TotalDaysAnalyzed: days,
				CalculationMethod: calculationMethod,
			},
		}
	}

	daysWithData := len(byDay)
	var totalMinutes, nightMinutes, napMinutes float64
	var napCount int
	daily := make([]record.DailySleep, 0, daysWithData)

	dayKeys := make([]string, 0, daysWithData)
	for day := range byDay {
		dayKeys = append(dayKeys, day)
	}
	sort.Strings(dayKeys)

	for _, day := range dayKeys {
		agg := byDay[day]
		totalMinutes += agg.totalMinutes
		nightMinutes += agg.nightMinutes
		napMinutes += agg.napMinutes
		napCount += agg.napCount
		daily = append(daily, record.DailySleep{
			Date:         day,
			TotalMinutes: round1(agg.totalMinutes),
			NightMinutes: round1(agg.nightMinutes),
			NapCount:     agg.napCount,
		})
	}

	n := float64(daysWithData)
	summary := record.PatternSummary{
		TotalDaysAnalyzed:    days,
		DaysWithSleepData:    daysWithData,
		AvgTotalSleepMinutes: round1(totalMinutes / n),
		AvgTotalSleepHours:   round1(totalMinutes / n / 60),
		AvgNightSleepMinutes: round1(nightMinutes / n),
		AvgNightSleepHours:   round1(nightMinutes / n / 60),
		AvgNapsPerDay:        round1(float64(napCount) / n),
		CalculationMethod:    calculationMethod,
	}
	if napCount > 0 {
		summary.AvgNapDurationMinutes = round1(napMinutes / float64(napCount))
	}

	score, rating, explanation := scoreSleepQuality(summary, qualitySum, qualityCount, days, calculationMethod)
	summary.SleepQualityScore = score
	summary.SleepQualityRating = rating
	summary.SleepQualityExplanation = explanation

	for loc, minutes := range byLocation {
		byLocation[loc] = round1(minutes)
	}

	return &record.SleepPatterns{
		Status:     "ok",
		Summary:    summary,
		DailySleep: daily,
		ByLocation: byLocation,
	}
}

// scoreSleepQuality calcula un puntaje 0-100 de calidad del sueño.
//
// El método "custom" pondera duración total contra las 12 horas diarias de
// referencia para lactantes, la consolidación nocturna y la cobertura de
// datos. El método "PSQI" parte de 100 y descuenta por déficit de duración,
// fragmentación en siestas y días sin registros, incorporando la calidad
// subjetiva registrada cuando existe.
func scoreSleepQuality(summary record.PatternSummary, qualitySum float64, qualityCount, days int, method string) (float64, string, string) {
	var score float64

	switch method {
	case "PSQI":
		score = 100
		if summary.AvgTotalSleepHours < 12 {
			score -= (12 - summary.AvgTotalSleepHours) * 5
		}
		if summary.AvgNapsPerDay > 4 {
			score -= (summary.AvgNapsPerDay - 4) * 5
		}
		coverage := float64(summary.DaysWithSleepData) / float64(days)
		score -= (1 - coverage) * 20
		if qualityCount > 0 {
			subjective := qualitySum / float64(qualityCount) * 10
			score = score*0.7 + subjective*0.3
		}
	default:
		durationComponent := math.Min(summary.AvgTotalSleepHours/12, 1) * 50
		var nightComponent float64
		if summary.AvgTotalSleepMinutes > 0 {
			nightComponent = summary.AvgNightSleepMinutes / summary.AvgTotalSleepMinutes * 30
		}
		coverageComponent := float64(summary.DaysWithSleepData) / float64(days) * 20
		score = durationComponent + nightComponent + coverageComponent
	}

	score = math.Max(0, math.Min(100, score))
	score = round1(score)

	var rating string
	switch {
	case score >= 85:
		rating = "Excellent"
	case score >= 70:
		rating = "Good"
	case score >= 50:
		rating = "Fair"
	default:
		rating = "Poor"
	}

	explanation := fmt.Sprintf(
		"%s sleep quality: %.1f hours average daily sleep over %d days with data, %.1f naps per day",
		rating, summary.AvgTotalSleepHours, summary.DaysWithSleepData, summary.AvgNapsPerDay,
	)

	return score, rating, explanation
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

var _ record.SleepPatternProvider = (*PostgresSleepPatternProvider)(nil)
