package tool

import (
	"time"

	"github.com/google/uuid"

	"github.com/Abraxas-365/nido/pkg/kernel"
)

// ============================================================================
// Tool Entity
// ============================================================================

// Tool representa una herramienta de análisis ejecutable sobre los
// registros de cuidado de un bebé
type Tool struct {
	ID           kernel.ToolID `db:"id" json:"id"`
	Name         string        `db:"name" json:"name"`
	Description  string        `db:"description" json:"description"`
	Type         ToolType      `db:"type" json:"type"`
	Config       Configuration `db:"configuration" json:"configuration"`
	Capabilities JSONMap       `db:"capabilities" json:"capabilities,omitempty"`
	Status       ToolStatus    `db:"status" json:"status"`
	Version      string        `db:"version" json:"version"`
	UsageCount   int           `db:"usage_count" json:"usage_count"`
	LastUsedAt   *time.Time    `db:"last_used_at" json:"last_used_at,omitempty"`
	CreatedAt    time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time     `db:"updated_at" json:"updated_at"`
}

// ToolType define los tipos de tools de análisis disponibles
type ToolType string

const (
	ToolTypeActivityAnalyzer     ToolType = "activity_analyzer"
	ToolTypeSleepPatternAnalyzer ToolType = "sleep_pattern_analyzer"
	ToolTypeFeedingTracker       ToolType = "feeding_tracker"
	ToolTypeHealthMonitor        ToolType = "health_monitor"
	ToolTypeGrowthTracker        ToolType = "growth_tracker"
	ToolTypeMilestoneTracker     ToolType = "milestone_tracker"
	ToolTypeCareMetricsAnalyzer  ToolType = "care_metrics_analyzer"
	ToolTypeScheduleAssistant    ToolType = "schedule_assistant"
)

// AllToolTypes lista completa de tipos conocidos
func AllToolTypes() []ToolType {
	return []ToolType{
		ToolTypeActivityAnalyzer,
		ToolTypeSleepPatternAnalyzer,
		ToolTypeFeedingTracker,
		ToolTypeHealthMonitor,
		ToolTypeGrowthTracker,
		ToolTypeMilestoneTracker,
		ToolTypeCareMetricsAnalyzer,
		ToolTypeScheduleAssistant,
	}
}

// IsValid verifica si el tipo es uno de los conocidos
func (t ToolType) IsValid() bool {
	for _, known := range AllToolTypes() {
		if t == known {
			return true
		}
	}
	return false
}

// ToolStatus estado operativo del tool
type ToolStatus string

const (
	ToolStatusActive      ToolStatus = "active"
	ToolStatusInactive    ToolStatus = "inactive"
	ToolStatusMaintenance ToolStatus = "maintenance"
)

// ============================================================================
// Execution Entity
// ============================================================================

// Execution representa una ejecución individual de un tool
type Execution struct {
	ID         kernel.ExecutionID `db:"id" json:"id"`
	ToolID     kernel.ToolID      `db:"tool_id" json:"tool_id"`
	UserID     kernel.UserID      `db:"user_id" json:"user_id"`
	BabyID     *kernel.BabyID     `db:"baby_id" json:"baby_id,omitempty"`
	Parameters JSONMap            `db:"parameters" json:"parameters"`
	Result     JSONMap            `db:"result" json:"result,omitempty"`
	Status     ExecutionStatus    `db:"status" json:"status"`
	Error      string             `db:"error" json:"error,omitempty"`
	Metadata   JSONMap            `db:"metadata" json:"metadata,omitempty"`
	StartedAt  time.Time          `db:"started_at" json:"started_at"`
	EndedAt    *time.Time         `db:"ended_at" json:"ended_at,omitempty"`
	DurationMs int64              `db:"duration_ms" json:"duration_ms"`
}

// ExecutionStatus estado de una ejecución
type ExecutionStatus string

const (
	ExecutionStatusPending ExecutionStatus = "pending"
	ExecutionStatusRunning ExecutionStatus = "running"
	ExecutionStatusSuccess ExecutionStatus = "success"
	ExecutionStatusFailed  ExecutionStatus = "failed"
)

// ============================================================================
// Domain Methods - Tool
// ============================================================================

// IsActive indica si el tool puede ejecutarse
func (t *Tool) IsActive() bool {
	return t.Status == ToolStatusActive
}

// IsValid verifica si el tool es válido
func (t *Tool) IsValid() bool {
	return t.Name != "" && t.Type.IsValid()
}

// Activate activa el tool
func (t *Tool) Activate() {
	t.Status = ToolStatusActive
	t.UpdatedAt = time.Now()
}

// Deactivate desactiva el tool
func (t *Tool) Deactivate() {
	t.Status = ToolStatusInactive
	t.UpdatedAt = time.Now()
}

// SetMaintenance pone el tool en mantenimiento
func (t *Tool) SetMaintenance() {
	t.Status = ToolStatusMaintenance
	t.UpdatedAt = time.Now()
}

// UpdateConfig actualiza la configuración del tool
func (t *Tool) UpdateConfig(config Configuration) {
	t.Config = config
	t.UpdatedAt = time.Now()
}

// UpdateDetails actualiza nombre y descripción
func (t *Tool) UpdateDetails(name, description string) {
	if name != "" {
		t.Name = name
	}
	if description != "" {
		t.Description = description
	}
	t.UpdatedAt = time.Now()
}

// ============================================================================
// Domain Methods - Execution
// ============================================================================

// NewExecution crea una nueva ejecución pendiente
func NewExecution(toolID kernel.ToolID, userID kernel.UserID, parameters map[string]any) Execution {
	return Execution{
		ID:         kernel.NewExecutionID(uuid.NewString()),
		ToolID:     toolID,
		UserID:     userID,
		Parameters: JSONMap(parameters),
		Status:     ExecutionStatusPending,
		StartedAt:  time.Now(),
	}
}

// Start marca la ejecución como en curso
func (e *Execution) Start() {
	e.Status = ExecutionStatusRunning
	e.StartedAt = time.Now()
}

// Complete marca la ejecución como exitosa
func (e *Execution) Complete(result map[string]any) {
	now := time.Now()
	e.EndedAt = &now
	e.Status = ExecutionStatusSuccess
	e.Result = JSONMap(result)
	e.DurationMs = now.Sub(e.StartedAt).Milliseconds()
}

// Fail marca la ejecución como fallida
func (e *Execution) Fail(err error) {
	now := time.Now()
	e.EndedAt = &now
	e.Status = ExecutionStatusFailed
	e.Error = err.Error()
	e.DurationMs = now.Sub(e.StartedAt).Milliseconds()
}

// IsCompleted verifica si la ejecución terminó
func (e *Execution) IsCompleted() bool {
	return e.Status == ExecutionStatusSuccess || e.Status == ExecutionStatusFailed
}

// IsSuccessful verifica si la ejecución fue exitosa
func (e *Execution) IsSuccessful() bool {
	return e.Status == ExecutionStatusSuccess
}
