package toolsrv

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Abraxas-365/nido/pkg/kernel"
	"github.com/Abraxas-365/nido/tool"
)

// ToolService maneja el ciclo de vida administrativo de los tools
type ToolService struct {
	tools      tool.Repository
	executions tool.ExecutionRepository
}

// NewToolService crea el servicio de administración de tools
func NewToolService(tools tool.Repository, executions tool.ExecutionRepository) *ToolService {
	return &ToolService{
		tools:      tools,
		executions: executions,
	}
}

// CreateTool registra un nuevo tool de análisis
func (s *ToolService) CreateTool(ctx context.Context, req tool.CreateToolRequest) (*tool.Tool, error) {
	if !req.Type.IsValid() {
		return nil, tool.ErrInvalidToolType().WithDetail("type", string(req.Type))
	}

	exists, err := s.tools.ExistsByName(ctx, req.Name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, tool.ErrToolAlreadyExists().WithDetail("name", req.Name)
	}

	version := req.Version
	if version == "" {
		version = "1.0.0"
	}

	now := time.Now()
	t := tool.Tool{
		ID:           kernel.NewToolID(uuid.NewString()),
		Name:         req.Name,
		Description:  req.Description,
		Type:         req.Type,
		Config:       req.Config,
		Capabilities: req.Capabilities,
		Status:       tool.ToolStatusActive,
		Version:      version,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.tools.Save(ctx, t); err != nil {
		return nil, err
	}

	return &t, nil
}

// UpdateTool actualiza un tool existente
func (s *ToolService) UpdateTool(ctx context.Context, id kernel.ToolID, req tool.UpdateToolRequest) (*tool.Tool, error) {
	t, err := s.tools.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil || req.Description != nil {
		name, description := "", ""
		if req.Name != nil {
			name = *req.Name
		}
		if req.Description != nil {
			description = *req.Description
		}
		t.UpdateDetails(name, description)
	}

	if req.Config != nil {
		t.UpdateConfig(*req.Config)
	}

	if req.Capabilities != nil {
		t.Capabilities = *req.Capabilities
		t.UpdatedAt = time.Now()
	}

	if req.Status != nil {
		switch *req.Status {
		case tool.ToolStatusActive:
			t.Activate()
		case tool.ToolStatusInactive:
			t.Deactivate()
		case tool.ToolStatusMaintenance:
			t.SetMaintenance()
		}
	}

	if req.Version != nil && *req.Version != "" {
		t.Version = *req.Version
		t.UpdatedAt = time.Now()
	}

	if err := s.tools.Update(ctx, *t); err != nil {
		return nil, err
	}

	return t, nil
}

// GetTool busca un tool por ID
func (s *ToolService) GetTool(ctx context.Context, id kernel.ToolID) (*tool.Tool, error) {
	return s.tools.FindByID(ctx, id)
}

// ListTools lista tools con filtros y paginación
func (s *ToolService) ListTools(ctx context.Context, req tool.ListToolsRequest) (tool.ToolListResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 {
		req.PageSize = 20
	}
	return s.tools.List(ctx, req)
}

// DeleteTool elimina un tool
func (s *ToolService) DeleteTool(ctx context.Context, id kernel.ToolID) error {
	return s.tools.Delete(ctx, id)
}

// ListExecutions lista ejecuciones con filtros y paginación
func (s *ToolService) ListExecutions(ctx context.Context, req tool.ListExecutionsRequest) (tool.ExecutionListResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 {
		req.PageSize = 20
	}
	return s.executions.List(ctx, req)
}

// GetStats calcula las estadísticas de ejecución de un tool
func (s *ToolService) GetStats(ctx context.Context, id kernel.ToolID) (*tool.ToolStatsResponse, error) {
	t, err := s.tools.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	total, err := s.executions.CountByTool(ctx, id)
	if err != nil {
		return nil, err
	}

	successCount, err := s.executions.CountByStatus(ctx, id, tool.ExecutionStatusSuccess)
	if err != nil {
		return nil, err
	}

	failureCount, err := s.executions.CountByStatus(ctx, id, tool.ExecutionStatusFailed)
	if err != nil {
		return nil, err
	}

	avgDuration, err := s.executions.GetAverageDuration(ctx, id)
	if err != nil {
		return nil, err
	}

	stats := &tool.ToolStatsResponse{
		ToolID:          t.ID,
		ToolName:        t.Name,
		TotalExecutions: total,
		SuccessCount:    successCount,
		FailureCount:    failureCount,
		AvgDuration:     avgDuration,
		UsageCount:      t.UsageCount,
	}

	if t.LastUsedAt != nil {
		lastUsed := t.LastUsedAt.Format(time.RFC3339)
		stats.LastUsedAt = &lastUsed
	}

	return stats, nil
}
