package tool

import (
	"context"

	"github.com/Abraxas-365/nido/pkg/kernel"
)

// ============================================================================
// Repository Interfaces
// ============================================================================

// Repository define el contrato para persistencia de tools
type Repository interface {
	// CRUD básico
	Save(ctx context.Context, tool Tool) error
	Update(ctx context.Context, tool Tool) error
	FindByID(ctx context.Context, id kernel.ToolID) (*Tool, error)
	FindByName(ctx context.Context, name string) (*Tool, error)
	Delete(ctx context.Context, id kernel.ToolID) error
	ExistsByName(ctx context.Context, name string) (bool, error)

	// List con filtros y paginación
	List(ctx context.Context, req ListToolsRequest) (ToolListResponse, error)

	// Búsquedas específicas
	FindByType(ctx context.Context, toolType ToolType) ([]*Tool, error)
	FindActive(ctx context.Context) ([]Tool, error)

	// Contadores de uso. El incremento es atómico en la base de datos
	// para tolerar ejecuciones concurrentes del mismo tool.
	IncrementUsage(ctx context.Context, id kernel.ToolID) error
}

// ExecutionRepository define el contrato para persistencia de ejecuciones
type ExecutionRepository interface {
	Save(ctx context.Context, execution Execution) error
	Update(ctx context.Context, execution Execution) error
	FindByID(ctx context.Context, id kernel.ExecutionID) (*Execution, error)

	// List con filtros y paginación
	List(ctx context.Context, req ListExecutionsRequest) (ExecutionListResponse, error)

	// Estadísticas
	CountByTool(ctx context.Context, toolID kernel.ToolID) (int, error)
	CountByStatus(ctx context.Context, toolID kernel.ToolID, status ExecutionStatus) (int, error)
	GetAverageDuration(ctx context.Context, toolID kernel.ToolID) (float64, error)

	// Mantenimiento: marca como fallidas las ejecuciones running más
	// antiguas que maxAge. Retorna cuántas fueron marcadas.
	FailStaleRunning(ctx context.Context, maxAgeSeconds int) (int, error)
}

// ============================================================================
// Executor Interface
// ============================================================================

// Executor ejecuta el análisis de un tipo de tool concreto
type Executor interface {
	// Type retorna el tipo de tool que este ejecutor atiende
	Type() ToolType

	// ValidateParameters normaliza los parámetros crudos aplicando los
	// defaults de la configuración. Valores inválidos se sustituyen en
	// silencio por sus defaults, nunca se rechaza la ejecución.
	ValidateParameters(raw map[string]any, cfg Configuration) map[string]any

	// Execute corre el análisis sobre los bebés indicados
	Execute(ctx context.Context, cfg Configuration, babyIDs []kernel.BabyID, userID kernel.UserID, raw map[string]any) (map[string]any, error)
}
