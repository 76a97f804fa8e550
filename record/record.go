package record

import (
	"time"

	"github.com/Abraxas-365/nido/pkg/kernel"
)

// ============================================================================
// Feeding Records
// ============================================================================

// FeedingType tipo de alimentación registrada
type FeedingType string

const (
	FeedingBreastLeft  FeedingType = "breast_left"
	FeedingBreastRight FeedingType = "breast_right"
	FeedingBreastBoth  FeedingType = "breast_both"
	FeedingBottle      FeedingType = "bottle"
	FeedingFormula     FeedingType = "formula"
	FeedingSolids      FeedingType = "solids"
	FeedingPumping     FeedingType = "pumping"
)

// IsBreastfeeding indica si el registro corresponde a lactancia directa
func (t FeedingType) IsBreastfeeding() bool {
	return t == FeedingBreastLeft || t == FeedingBreastRight || t == FeedingBreastBoth
}

// Feeding representa un registro de alimentación
type Feeding struct {
	ID                string        `db:"id" json:"id"`
	BabyID            kernel.BabyID `db:"baby_id" json:"baby_id"`
	Type              FeedingType   `db:"type" json:"type"`
	StartTime         time.Time     `db:"start_time" json:"start_time"`
	Amount            *float64      `db:"amount" json:"amount,omitempty"`
	DurationMinutes   *float64      `db:"duration_minutes" json:"duration_minutes,omitempty"`
	BottleContentType string        `db:"bottle_content_type" json:"bottle_content_type,omitempty"`
	FoodType          string        `db:"food_type" json:"food_type,omitempty"`
	PumpedVolumeLeft  *float64      `db:"pumped_volume_left" json:"pumped_volume_left,omitempty"`
	PumpedVolumeRight *float64      `db:"pumped_volume_right" json:"pumped_volume_right,omitempty"`
	Notes             string        `db:"notes" json:"notes,omitempty"`
	CreatedBy         kernel.UserID `db:"created_by" json:"created_by"`
	CreatedAt         time.Time     `db:"created_at" json:"created_at"`
}

// TotalPumpedVolume suma el volumen extraído de ambos lados
func (f *Feeding) TotalPumpedVolume() float64 {
	var total float64
	if f.PumpedVolumeLeft != nil {
		total += *f.PumpedVolumeLeft
	}
	if f.PumpedVolumeRight != nil {
		total += *f.PumpedVolumeRight
	}
	return total
}

// ============================================================================
// Sleep Patterns
// ============================================================================

// PatternSummary resumen agregado de los patrones de sueño de un bebé
type PatternSummary struct {
	TotalDaysAnalyzed       int     `json:"total_days_analyzed"`
	DaysWithSleepData       int     `json:"days_with_sleep_data"`
	AvgTotalSleepHours      float64 `json:"avg_total_sleep_hours"`
	AvgTotalSleepMinutes    float64 `json:"avg_total_sleep_minutes"`
	AvgNightSleepHours      float64 `json:"avg_night_sleep_hours"`
	AvgNightSleepMinutes    float64 `json:"avg_night_sleep_minutes"`
	AvgNapsPerDay           float64 `json:"avg_naps_per_day"`
	AvgNapDurationMinutes   float64 `json:"avg_nap_duration_minutes"`
	SleepQualityScore       float64 `json:"sleep_quality_score"`
	SleepQualityRating      string  `json:"sleep_quality_rating"`
	SleepQualityExplanation string  `json:"sleep_quality_explanation"`
	CalculationMethod       string  `json:"calculation_method"`
}

// DailySleep totales de sueño para un día calendario
type DailySleep struct {
	Date         string  `json:"date"`
	TotalMinutes float64 `json:"total_minutes"`
	NightMinutes float64 `json:"night_minutes"`
	NapCount     int     `json:"nap_count"`
}

// SleepPatterns resultado del análisis de sueño de un bebé
type SleepPatterns struct {
	Status     string             `json:"status"`
	Summary    PatternSummary     `json:"summary"`
	DailySleep []DailySleep       `json:"daily_sleep,omitempty"`
	ByLocation map[string]float64 `json:"by_location,omitempty"`
}

// HasData indica si el análisis encontró registros de sueño
func (p *SleepPatterns) HasData() bool {
	return p.Summary.DaysWithSleepData > 0
}

// Sleep representa un registro de sueño individual
type Sleep struct {
	ID        string        `db:"id" json:"id"`
	BabyID    kernel.BabyID `db:"baby_id" json:"baby_id"`
	StartTime time.Time     `db:"start_time" json:"start_time"`
	EndTime   *time.Time    `db:"end_time" json:"end_time,omitempty"`
	Location  string        `db:"location" json:"location,omitempty"`
	Quality   *int          `db:"quality" json:"quality,omitempty"`
	CreatedBy kernel.UserID `db:"created_by" json:"created_by"`
	CreatedAt time.Time     `db:"created_at" json:"created_at"`
}

// DurationMinutes retorna la duración del registro en minutos, 0 si sigue abierto
func (s *Sleep) DurationMinutes() float64 {
	if s.EndTime == nil {
		return 0
	}
	return s.EndTime.Sub(s.StartTime).Minutes()
}

// IsNightSleep clasifica el registro como sueño nocturno si empieza
// entre las 19:00 y las 07:00
func (s *Sleep) IsNightSleep() bool {
	hour := s.StartTime.Hour()
	return hour >= 19 || hour < 7
}
