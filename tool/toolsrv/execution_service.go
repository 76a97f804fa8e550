package toolsrv

import (
	"context"

	"github.com/Abraxas-365/craftable/logx"
	"github.com/Abraxas-365/nido/baby"
	"github.com/Abraxas-365/nido/pkg/kernel"
	"github.com/Abraxas-365/nido/tool"
)

// ExecutionService ejecuta tools sobre los bebés del usuario, registrando
// cada ejecución con su resultado o error.
type ExecutionService struct {
	tools      tool.Repository
	executions tool.ExecutionRepository
	registry   *tool.Registry
	babies     baby.Repository
}

// NewExecutionService crea el servicio de ejecución de tools
func NewExecutionService(
	tools tool.Repository,
	executions tool.ExecutionRepository,
	registry *tool.Registry,
	babies baby.Repository,
) *ExecutionService {
	return &ExecutionService{
		tools:      tools,
		executions: executions,
		registry:   registry,
		babies:     babies,
	}
}

// Execute corre un tool para el usuario. Si el request trae baby_id se
// verifica el acceso a ese bebé; si no, se analizan todos los bebés
// visibles para el usuario.
//
// Un tool que no está activo se rechaza antes de crear el registro de
// ejecución; los fallos posteriores quedan registrados como ejecuciones
// fallidas.
func (s *ExecutionService) Execute(ctx context.Context, userID kernel.UserID, req tool.ExecuteToolRequest) (*tool.ExecutionResult, error) {
	babyIDs, err := s.resolveBabies(ctx, userID, req.BabyID)
	if err != nil {
		return nil, err
	}

	t, err := s.tools.FindByID(ctx, req.ToolID)
	if err != nil {
		return nil, err
	}

	if !t.IsActive() {
		return nil, tool.ErrToolNotActive().
			WithDetail("tool_id", t.ID.String()).
			WithDetail("status", string(t.Status))
	}

	execution := tool.NewExecution(t.ID, userID, req.Parameters)
	execution.BabyID = req.BabyID
	execution.Metadata = tool.JSONMap{
		"tool_name":    t.Name,
		"tool_type":    string(t.Type),
		"tool_version": t.Version,
		"baby_count":   len(babyIDs),
	}
	execution.Start()
	if err := s.executions.Save(ctx, execution); err != nil {
		return nil, err
	}

	executor, err := s.registry.Executor(t.Type)
	if err != nil {
		return nil, s.failExecution(ctx, &execution, err)
	}

	data, err := executor.Execute(ctx, t.Config, babyIDs, userID, req.Parameters)
	if err != nil {
		return nil, s.failExecution(ctx, &execution, err)
	}

	execution.Complete(data)
	if err := s.executions.Update(ctx, execution); err != nil {
		return nil, err
	}

	// Usage bookkeeping must not fail the execution.
	if err := s.tools.IncrementUsage(ctx, t.ID); err != nil {
		logx.Error("failed to increment usage for tool %s: %v", t.ID.String(), err)
	}

	return &tool.ExecutionResult{
		ToolID:      t.ID,
		ExecutionID: execution.ID,
		Status:      execution.Status,
		Data:        data,
		Metadata: map[string]any{
			"tool_name":        t.Name,
			"tool_description": t.Description,
			"tool_type":        string(t.Type),
		},
		ExecutionTimeMs: execution.DurationMs,
	}, nil
}

// GetExecution busca una ejecución por ID
func (s *ExecutionService) GetExecution(ctx context.Context, id kernel.ExecutionID) (*tool.Execution, error) {
	return s.executions.FindByID(ctx, id)
}

func (s *ExecutionService) resolveBabies(ctx context.Context, userID kernel.UserID, babyID *kernel.BabyID) ([]kernel.BabyID, error) {
	if babyID != nil {
		b, err := s.babies.FindForUser(ctx, *babyID, userID)
		if err != nil {
			return nil, err
		}
		return []kernel.BabyID{b.ID}, nil
	}

	babies, err := s.babies.FindAllForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(babies) == 0 {
		return nil, tool.ErrNoBabiesAccessible().WithDetail("user_id", userID.String())
	}

	ids := make([]kernel.BabyID, 0, len(babies))
	for _, b := range babies {
		ids = append(ids, b.ID)
	}
	return ids, nil
}

// failExecution records the failure and returns the original error so
// the caller sees the executor's failure, not the bookkeeping result.
func (s *ExecutionService) failExecution(ctx context.Context, execution *tool.Execution, cause error) error {
	execution.Fail(cause)
	if err := s.executions.Update(ctx, *execution); err != nil {
		logx.Error("failed to record execution failure %s: %v", execution.ID.String(), err)
	}
	return cause
}
