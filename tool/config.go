package tool

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// ============================================================================
// JSONMap - mapa genérico persistido como JSONB
// ============================================================================

// JSONMap mapa arbitrario serializado como JSON en la base de datos
type JSONMap map[string]any

// Value implementa driver.Valuer
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

// Scan implementa sql.Scanner
func (m *JSONMap) Scan(value any) error {
	if value == nil {
		*m = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("cannot scan %T into JSONMap", value)
	}
	return json.Unmarshal(bytes, m)
}

// ============================================================================
// Tool Configuration
// ============================================================================

// Configuration configuración de comportamiento de un tool de análisis.
// Se persiste como JSONB; todos los campos son opcionales y los accessors
// aplican defaults cuando faltan.
type Configuration struct {
	Defaults   ConfigDefaults    `json:"defaults,omitempty"`
	Validation ConfigValidation  `json:"validation,omitempty"`
	Precision  ConfigPrecision   `json:"precision,omitempty"`
	Thresholds ConfigThresholds  `json:"thresholds,omitempty"`
	Messages   map[string]string `json:"messages,omitempty"`
}

// ConfigDefaults valores por defecto de parámetros de ejecución
type ConfigDefaults struct {
	Timeframe          int      `json:"timeframe,omitempty"`
	Metrics            []string `json:"metrics,omitempty"`
	IncludeDetails     *bool    `json:"include_details,omitempty"`
	FeedingTypesFilter string   `json:"feeding_types_filter,omitempty"`
	TimeOfDayFilter    string   `json:"time_of_day_filter,omitempty"`
	CalculationMethod  string   `json:"calculation_method,omitempty"`
}

// ConfigValidation reglas de validación de parámetros
type ConfigValidation struct {
	TimeframeBounds           Bounds                `json:"timeframe_bounds,omitempty"`
	AllowedMetrics            []string              `json:"allowed_metrics,omitempty"`
	AllowedFeedingTypes       []string              `json:"allowed_feeding_types,omitempty"`
	AllowedCalculationMethods []string              `json:"allowed_calculation_methods,omitempty"`
	TimePeriods               map[string]TimeWindow `json:"time_periods,omitempty"`
}

// Bounds rango inclusivo de un parámetro numérico
type Bounds struct {
	Min int `json:"min,omitempty"`
	Max int `json:"max,omitempty"`
}

// TimeWindow ventana horaria [start, end). Si start > end la ventana
// cruza la medianoche.
type TimeWindow struct {
	StartHour int `json:"start_hour"`
	EndHour   int `json:"end_hour"`
}

// Contains verifica si una hora cae dentro de la ventana
func (w TimeWindow) Contains(hour int) bool {
	if w.StartHour > w.EndHour {
		return hour >= w.StartHour || hour < w.EndHour
	}
	return hour >= w.StartHour && hour < w.EndHour
}

// ConfigPrecision reglas de redondeo para valores calculados
type ConfigPrecision struct {
	SmallValueThreshold float64 `json:"small_value_threshold,omitempty"`
	SmallValueDecimals  int     `json:"small_value_decimals,omitempty"`
	NormalDecimals      int     `json:"normal_decimals,omitempty"`
	VolumeDecimals      int     `json:"volume_decimals,omitempty"`
	DurationDecimals    int     `json:"duration_decimals,omitempty"`
	FrequencyDecimals   int     `json:"frequency_decimals,omitempty"`
}

// ConfigThresholds umbrales de detección de patrones
type ConfigThresholds struct {
	MinFeedingsForPattern int `json:"min_feedings_for_pattern,omitempty"`
	ClusterWindowMinutes  int `json:"cluster_window_minutes,omitempty"`
}

// Value implementa driver.Valuer
func (c Configuration) Value() (driver.Value, error) {
	return json.Marshal(c)
}

// Scan implementa sql.Scanner
func (c *Configuration) Scan(value any) error {
	if value == nil {
		*c = Configuration{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("cannot scan %T into Configuration", value)
	}
	return json.Unmarshal(bytes, c)
}

// ============================================================================
// Accessors con defaults
// ============================================================================

// DefaultTimeframe retorna el timeframe por defecto, o el fallback si no hay
func (c Configuration) DefaultTimeframe(fallback int) int {
	if c.Defaults.Timeframe > 0 {
		return c.Defaults.Timeframe
	}
	return fallback
}

// DefaultMetrics retorna las métricas por defecto, o el fallback si no hay
func (c Configuration) DefaultMetrics(fallback []string) []string {
	if len(c.Defaults.Metrics) > 0 {
		return c.Defaults.Metrics
	}
	return fallback
}

// DefaultCalculationMethod retorna el método de cálculo por defecto
func (c Configuration) DefaultCalculationMethod(fallback string) string {
	if c.Defaults.CalculationMethod != "" {
		return c.Defaults.CalculationMethod
	}
	return fallback
}

// TimeframeBounds retorna los límites del timeframe, o los fallback si no hay
func (c Configuration) TimeframeBounds(fallbackMin, fallbackMax int) (int, int) {
	min, max := c.Validation.TimeframeBounds.Min, c.Validation.TimeframeBounds.Max
	if min <= 0 {
		min = fallbackMin
	}
	if max <= 0 {
		max = fallbackMax
	}
	return min, max
}

// AllowedMetrics retorna las métricas permitidas, o el fallback si no hay
func (c Configuration) AllowedMetrics(fallback []string) []string {
	if len(c.Validation.AllowedMetrics) > 0 {
		return c.Validation.AllowedMetrics
	}
	return fallback
}

// AllowedFeedingTypes retorna los filtros de tipo permitidos
func (c Configuration) AllowedFeedingTypes(fallback []string) []string {
	if len(c.Validation.AllowedFeedingTypes) > 0 {
		return c.Validation.AllowedFeedingTypes
	}
	return fallback
}

// AllowedCalculationMethods retorna los métodos de cálculo permitidos
func (c Configuration) AllowedCalculationMethods(fallback []string) []string {
	if len(c.Validation.AllowedCalculationMethods) > 0 {
		return c.Validation.AllowedCalculationMethods
	}
	return fallback
}

// TimePeriods retorna las ventanas horarias configuradas, o las estándar
func (c Configuration) TimePeriods() map[string]TimeWindow {
	if len(c.Validation.TimePeriods) > 0 {
		return c.Validation.TimePeriods
	}
	return map[string]TimeWindow{
		"night":     {StartHour: 0, EndHour: 6},
		"morning":   {StartHour: 6, EndHour: 12},
		"afternoon": {StartHour: 12, EndHour: 18},
		"evening":   {StartHour: 18, EndHour: 24},
	}
}

// GetSmallValueDecimals decimales para valores pequeños (default 2)
func (c Configuration) GetSmallValueDecimals() int {
	if c.Precision.SmallValueDecimals > 0 {
		return c.Precision.SmallValueDecimals
	}
	return 2
}

// GetNormalDecimals decimales estándar (default 1)
func (c Configuration) GetNormalDecimals() int {
	if c.Precision.NormalDecimals > 0 {
		return c.Precision.NormalDecimals
	}
	return 1
}

// GetVolumeDecimals decimales para volúmenes (default 1)
func (c Configuration) GetVolumeDecimals() int {
	if c.Precision.VolumeDecimals > 0 {
		return c.Precision.VolumeDecimals
	}
	return 1
}

// GetDurationDecimals decimales para duraciones (default 1)
func (c Configuration) GetDurationDecimals() int {
	if c.Precision.DurationDecimals > 0 {
		return c.Precision.DurationDecimals
	}
	return 1
}

// GetFrequencyDecimals decimales para frecuencias (default 2)
func (c Configuration) GetFrequencyDecimals() int {
	if c.Precision.FrequencyDecimals > 0 {
		return c.Precision.FrequencyDecimals
	}
	return 2
}

// MinFeedingsForPattern mínimo de registros para reportar patrones (default 3)
func (c Configuration) MinFeedingsForPattern() int {
	if c.Thresholds.MinFeedingsForPattern > 0 {
		return c.Thresholds.MinFeedingsForPattern
	}
	return 3
}

// ClusterWindowMinutes ventana de agrupación de clusters (default 60)
func (c Configuration) ClusterWindowMinutes() int {
	if c.Thresholds.ClusterWindowMinutes > 0 {
		return c.Thresholds.ClusterWindowMinutes
	}
	return 60
}

// Message retorna un mensaje configurable, o el fallback si no existe
func (c Configuration) Message(key, fallback string) string {
	if msg, ok := c.Messages[key]; ok && msg != "" {
		return msg
	}
	return fallback
}
