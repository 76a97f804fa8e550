package tool

import (
	"github.com/Abraxas-365/craftable/storex"
	"github.com/Abraxas-365/nido/pkg/kernel"
)

// ============================================================================
// Request DTOs
// ============================================================================

// CreateToolRequest request para crear un tool
type CreateToolRequest struct {
	Name         string        `json:"name" validate:"required,min=2"`
	Description  string        `json:"description"`
	Type         ToolType      `json:"type" validate:"required"`
	Config       Configuration `json:"configuration"`
	Capabilities JSONMap       `json:"capabilities,omitempty"`
	Version      string        `json:"version"`
}

// UpdateToolRequest request para actualizar un tool
type UpdateToolRequest struct {
	Name         *string        `json:"name,omitempty"`
	Description  *string        `json:"description,omitempty"`
	Config       *Configuration `json:"configuration,omitempty"`
	Capabilities *JSONMap       `json:"capabilities,omitempty"`
	Status       *ToolStatus    `json:"status,omitempty"`
	Version      *string        `json:"version,omitempty"`
}

// ExecuteToolRequest request para ejecutar un tool
type ExecuteToolRequest struct {
	ToolID     kernel.ToolID  `json:"tool_id" validate:"required"`
	BabyID     *kernel.BabyID `json:"baby_id,omitempty"`
	Parameters map[string]any `json:"parameters"`
}

// ============================================================================
// List Request DTOs (con embedding de storex)
// ============================================================================

// ListToolsRequest request para listar tools con paginación y filtros
type ListToolsRequest struct {
	storex.PaginationOptions

	// Filtros tipados propios
	Type   *ToolType   `json:"type,omitempty"`
	Status *ToolStatus `json:"status,omitempty"`
	Search string      `json:"search,omitempty"`
}

// GetOffset retorna el offset SQL de la página solicitada
func (ltr ListToolsRequest) GetOffset() int {
	return (ltr.Page - 1) * ltr.PageSize
}

// ListExecutionsRequest request para listar ejecuciones con filtros
type ListExecutionsRequest struct {
	storex.PaginationOptions

	// Filtros tipados propios
	ToolID *kernel.ToolID   `json:"tool_id,omitempty"`
	UserID *kernel.UserID   `json:"user_id,omitempty"`
	Status *ExecutionStatus `json:"status,omitempty"`
	From   *string          `json:"from,omitempty"` // ISO 8601 date
	To     *string          `json:"to,omitempty"`   // ISO 8601 date
}

// GetOffset retorna el offset SQL de la página solicitada
func (ler ListExecutionsRequest) GetOffset() int {
	return (ler.Page - 1) * ler.PageSize
}

// ============================================================================
// Response DTOs
// ============================================================================

// ToolListResponse lista paginada de tools (usa storex.Paginated)
type ToolListResponse = storex.Paginated[Tool]

// ExecutionListResponse lista paginada de ejecuciones (usa storex.Paginated)
type ExecutionListResponse = storex.Paginated[Execution]

// ExecutionResult resultado consolidado de ejecutar un tool
type ExecutionResult struct {
	ToolID          kernel.ToolID      `json:"tool_id"`
	ExecutionID     kernel.ExecutionID `json:"execution_id"`
	Status          ExecutionStatus    `json:"status"`
	Data            map[string]any     `json:"data,omitempty"`
	Metadata        map[string]any     `json:"metadata,omitempty"`
	ExecutionTimeMs int64              `json:"execution_time_ms"`
}

// ============================================================================
// Stats DTOs
// ============================================================================

// ToolStatsResponse estadísticas de un tool
type ToolStatsResponse struct {
	ToolID          kernel.ToolID `json:"tool_id"`
	ToolName        string        `json:"tool_name"`
	TotalExecutions int           `json:"total_executions"`
	SuccessCount    int           `json:"success_count"`
	FailureCount    int           `json:"failure_count"`
	AvgDuration     float64       `json:"avg_duration_ms"`
	UsageCount      int           `json:"usage_count"`
	LastUsedAt      *string       `json:"last_used_at,omitempty"`
}

// ============================================================================
// Simple DTOs
// ============================================================================

// ToolDetailsDTO DTO simplificado de tool
type ToolDetailsDTO struct {
	ID          kernel.ToolID `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Type        ToolType      `json:"type"`
	Status      ToolStatus    `json:"status"`
}

// ToDTO convierte Tool a ToolDetailsDTO
func (t *Tool) ToDTO() ToolDetailsDTO {
	return ToolDetailsDTO{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		Type:        t.Type,
		Status:      t.Status,
	}
}
