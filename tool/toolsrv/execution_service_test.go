package toolsrv

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Abraxas-365/craftable/errx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abraxas-365/nido/baby"
	"github.com/Abraxas-365/nido/pkg/kernel"
	"github.com/Abraxas-365/nido/tool"
)

// ============================================================================
// Mocks
// ============================================================================

type mockToolRepo struct {
	findByIDFn       func(ctx context.Context, id kernel.ToolID) (*tool.Tool, error)
	incrementUsageFn func(ctx context.Context, id kernel.ToolID) error
}

func (m *mockToolRepo) Save(context.Context, tool.Tool) error   { return nil }
func (m *mockToolRepo) Update(context.Context, tool.Tool) error { return nil }
func (m *mockToolRepo) FindByID(ctx context.Context, id kernel.ToolID) (*tool.Tool, error) {
	return m.findByIDFn(ctx, id)
}
func (m *mockToolRepo) FindByName(context.Context, string) (*tool.Tool, error) { return nil, nil }
func (m *mockToolRepo) Delete(context.Context, kernel.ToolID) error            { return nil }
func (m *mockToolRepo) ExistsByName(context.Context, string) (bool, error)     { return false, nil }
func (m *mockToolRepo) List(context.Context, tool.ListToolsRequest) (tool.ToolListResponse, error) {
	return tool.ToolListResponse{}, nil
}
func (m *mockToolRepo) FindByType(context.Context, tool.ToolType) ([]*tool.Tool, error) {
	return nil, nil
}
func (m *mockToolRepo) FindActive(context.Context) ([]tool.Tool, error) { return nil, nil }
func (m *mockToolRepo) IncrementUsage(ctx context.Context, id kernel.ToolID) error {
	if m.incrementUsageFn != nil {
		return m.incrementUsageFn(ctx, id)
	}
	return nil
}

type mockExecutionRepo struct {
	saved   []tool.Execution
	updated []tool.Execution

	saveErr   error
	updateErr error
}

func (m *mockExecutionRepo) Save(_ context.Context, execution tool.Execution) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = append(m.saved, execution)
	return nil
}

func (m *mockExecutionRepo) Update(_ context.Context, execution tool.Execution) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.updated = append(m.updated, execution)
	return nil
}

func (m *mockExecutionRepo) FindByID(context.Context, kernel.ExecutionID) (*tool.Execution, error) {
	return nil, nil
}
func (m *mockExecutionRepo) List(context.Context, tool.ListExecutionsRequest) (tool.ExecutionListResponse, error) {
	return tool.ExecutionListResponse{}, nil
}
func (m *mockExecutionRepo) CountByTool(context.Context, kernel.ToolID) (int, error) { return 0, nil }
func (m *mockExecutionRepo) CountByStatus(context.Context, kernel.ToolID, tool.ExecutionStatus) (int, error) {
	return 0, nil
}
func (m *mockExecutionRepo) GetAverageDuration(context.Context, kernel.ToolID) (float64, error) {
	return 0, nil
}
func (m *mockExecutionRepo) FailStaleRunning(context.Context, int) (int, error) { return 0, nil }

type mockBabyRepo struct {
	findForUserFn    func(ctx context.Context, babyID kernel.BabyID, userID kernel.UserID) (*baby.Baby, error)
	findAllForUserFn func(ctx context.Context, userID kernel.UserID) ([]baby.Baby, error)
}

func (m *mockBabyRepo) FindForUser(ctx context.Context, babyID kernel.BabyID, userID kernel.UserID) (*baby.Baby, error) {
	return m.findForUserFn(ctx, babyID, userID)
}

func (m *mockBabyRepo) FindAllForUser(ctx context.Context, userID kernel.UserID) ([]baby.Baby, error) {
	return m.findAllForUserFn(ctx, userID)
}

type stubExecutor struct {
	toolType tool.ToolType
	data     map[string]any
	err      error

	gotBabies []kernel.BabyID
}

func (s *stubExecutor) Type() tool.ToolType { return s.toolType }

func (s *stubExecutor) ValidateParameters(raw map[string]any, _ tool.Configuration) map[string]any {
	return raw
}

func (s *stubExecutor) Execute(_ context.Context, _ tool.Configuration, babyIDs []kernel.BabyID, _ kernel.UserID, _ map[string]any) (map[string]any, error) {
	s.gotBabies = babyIDs
	if s.err != nil {
		return nil, s.err
	}
	return s.data, nil
}

// ============================================================================
// Helpers
// ============================================================================

func activeTool(toolType tool.ToolType) *tool.Tool {
	now := time.Now()
	return &tool.Tool{
		ID:          kernel.NewToolID("tool-1"),
		Name:        "feeding-tracker",
		Description: "Analiza patrones de alimentación",
		Type:        toolType,
		Status:      tool.ToolStatusActive,
		Version:     "1.0.0",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func singleBabyRepo() *mockBabyRepo {
	return &mockBabyRepo{
		findAllForUserFn: func(_ context.Context, _ kernel.UserID) ([]baby.Baby, error) {
			return []baby.Baby{{ID: kernel.NewBabyID("baby-1")}}, nil
		},
		findForUserFn: func(_ context.Context, babyID kernel.BabyID, _ kernel.UserID) (*baby.Baby, error) {
			return &baby.Baby{ID: babyID}, nil
		},
	}
}

// ============================================================================
// Tests
// ============================================================================

func TestExecutionService_Execute_Success(t *testing.T) {
	found := activeTool(tool.ToolTypeFeedingTracker)
	tools := &mockToolRepo{
		findByIDFn: func(_ context.Context, _ kernel.ToolID) (*tool.Tool, error) {
			return found, nil
		},
	}
	executions := &mockExecutionRepo{}

	executor := &stubExecutor{
		toolType: tool.ToolTypeFeedingTracker,
		data:     map[string]any{"summary": map[string]any{"babies_analyzed": 1}},
	}
	registry := tool.NewRegistry()
	registry.Register(executor)

	var usageIncrements int
	tools.incrementUsageFn = func(_ context.Context, _ kernel.ToolID) error {
		usageIncrements++
		return nil
	}

	svc := NewExecutionService(tools, executions, registry, singleBabyRepo())

	result, err := svc.Execute(context.Background(), kernel.NewUserID("user-1"), tool.ExecuteToolRequest{
		ToolID:     found.ID,
		Parameters: map[string]any{"timeframe": 7},
	})

	require.NoError(t, err)
	assert.Equal(t, tool.ExecutionStatusSuccess, result.Status)
	assert.Equal(t, found.ID, result.ToolID)
	assert.Equal(t, "feeding-tracker", result.Metadata["tool_name"])
	assert.NotEmpty(t, result.Data)

	// The record is saved as running and then updated to success.
	require.Len(t, executions.saved, 1)
	assert.Equal(t, tool.ExecutionStatusRunning, executions.saved[0].Status)
	require.Len(t, executions.updated, 1)
	assert.Equal(t, tool.ExecutionStatusSuccess, executions.updated[0].Status)

	assert.Equal(t, 1, usageIncrements)
	assert.Equal(t, []kernel.BabyID{kernel.NewBabyID("baby-1")}, executor.gotBabies)
}

func TestExecutionService_Execute_RecordsAuditFields(t *testing.T) {
	found := activeTool(tool.ToolTypeFeedingTracker)
	tools := &mockToolRepo{
		findByIDFn: func(_ context.Context, _ kernel.ToolID) (*tool.Tool, error) {
			return found, nil
		},
	}
	executions := &mockExecutionRepo{}

	registry := tool.NewRegistry()
	registry.Register(&stubExecutor{toolType: tool.ToolTypeFeedingTracker, data: map[string]any{}})

	svc := NewExecutionService(tools, executions, registry, singleBabyRepo())

	babyID := kernel.NewBabyID("baby-7")
	_, err := svc.Execute(context.Background(), kernel.NewUserID("user-1"), tool.ExecuteToolRequest{
		ToolID: found.ID,
		BabyID: &babyID,
	})
	require.NoError(t, err)

	require.Len(t, executions.saved, 1)
	saved := executions.saved[0]
	require.NotNil(t, saved.BabyID)
	assert.Equal(t, babyID, *saved.BabyID)
	assert.Equal(t, "feeding-tracker", saved.Metadata["tool_name"])
	assert.Equal(t, string(tool.ToolTypeFeedingTracker), saved.Metadata["tool_type"])
	assert.Equal(t, "1.0.0", saved.Metadata["tool_version"])
	assert.Equal(t, 1, saved.Metadata["baby_count"])

	// Without an explicit baby the record keeps a nil scope.
	_, err = svc.Execute(context.Background(), kernel.NewUserID("user-1"), tool.ExecuteToolRequest{
		ToolID: found.ID,
	})
	require.NoError(t, err)
	require.Len(t, executions.saved, 2)
	assert.Nil(t, executions.saved[1].BabyID)
}

func TestExecutionService_Execute_ScopedToRequestedBaby(t *testing.T) {
	found := activeTool(tool.ToolTypeFeedingTracker)
	tools := &mockToolRepo{
		findByIDFn: func(_ context.Context, _ kernel.ToolID) (*tool.Tool, error) {
			return found, nil
		},
	}

	executor := &stubExecutor{toolType: tool.ToolTypeFeedingTracker, data: map[string]any{}}
	registry := tool.NewRegistry()
	registry.Register(executor)

	svc := NewExecutionService(tools, &mockExecutionRepo{}, registry, singleBabyRepo())

	babyID := kernel.NewBabyID("baby-7")
	_, err := svc.Execute(context.Background(), kernel.NewUserID("user-1"), tool.ExecuteToolRequest{
		ToolID: found.ID,
		BabyID: &babyID,
	})

	require.NoError(t, err)
	assert.Equal(t, []kernel.BabyID{babyID}, executor.gotBabies)
}

func TestExecutionService_Execute_RejectsInactiveTool(t *testing.T) {
	inMaintenance := activeTool(tool.ToolTypeFeedingTracker)
	inMaintenance.SetMaintenance()

	tools := &mockToolRepo{
		findByIDFn: func(_ context.Context, _ kernel.ToolID) (*tool.Tool, error) {
			return inMaintenance, nil
		},
	}
	executions := &mockExecutionRepo{}

	svc := NewExecutionService(tools, executions, tool.NewRegistry(), singleBabyRepo())

	result, err := svc.Execute(context.Background(), kernel.NewUserID("user-1"), tool.ExecuteToolRequest{
		ToolID: inMaintenance.ID,
	})

	assert.Nil(t, result)
	require.Error(t, err)
	assert.True(t, errx.IsType(err, errx.TypeBusiness))

	// The rejection happens before any execution record exists.
	assert.Empty(t, executions.saved)
	assert.Empty(t, executions.updated)
}

func TestExecutionService_Execute_NoExecutorRegistered(t *testing.T) {
	found := activeTool(tool.ToolTypeGrowthTracker)
	tools := &mockToolRepo{
		findByIDFn: func(_ context.Context, _ kernel.ToolID) (*tool.Tool, error) {
			return found, nil
		},
	}
	executions := &mockExecutionRepo{}

	svc := NewExecutionService(tools, executions, tool.NewRegistry(), singleBabyRepo())

	result, err := svc.Execute(context.Background(), kernel.NewUserID("user-1"), tool.ExecuteToolRequest{
		ToolID: found.ID,
	})

	assert.Nil(t, result)
	require.Error(t, err)

	// The failure is recorded on the already saved execution.
	require.Len(t, executions.saved, 1)
	require.Len(t, executions.updated, 1)
	assert.Equal(t, tool.ExecutionStatusFailed, executions.updated[0].Status)
	assert.NotEmpty(t, executions.updated[0].Error)
}

func TestExecutionService_Execute_ExecutorFailureRecorded(t *testing.T) {
	found := activeTool(tool.ToolTypeFeedingTracker)
	tools := &mockToolRepo{
		findByIDFn: func(_ context.Context, _ kernel.ToolID) (*tool.Tool, error) {
			return found, nil
		},
	}
	executions := &mockExecutionRepo{}

	wantErr := errors.New("analysis blew up")
	registry := tool.NewRegistry()
	registry.Register(&stubExecutor{toolType: tool.ToolTypeFeedingTracker, err: wantErr})

	svc := NewExecutionService(tools, executions, registry, singleBabyRepo())

	result, err := svc.Execute(context.Background(), kernel.NewUserID("user-1"), tool.ExecuteToolRequest{
		ToolID: found.ID,
	})

	assert.Nil(t, result)
	assert.ErrorIs(t, err, wantErr)

	require.Len(t, executions.updated, 1)
	assert.Equal(t, tool.ExecutionStatusFailed, executions.updated[0].Status)
	assert.Equal(t, "analysis blew up", executions.updated[0].Error)
}

func TestExecutionService_Execute_UsageFailureDoesNotFailExecution(t *testing.T) {
	found := activeTool(tool.ToolTypeFeedingTracker)
	tools := &mockToolRepo{
		findByIDFn: func(_ context.Context, _ kernel.ToolID) (*tool.Tool, error) {
			return found, nil
		},
		incrementUsageFn: func(_ context.Context, _ kernel.ToolID) error {
			return errors.New("counter update failed")
		},
	}

	registry := tool.NewRegistry()
	registry.Register(&stubExecutor{toolType: tool.ToolTypeFeedingTracker, data: map[string]any{}})

	svc := NewExecutionService(tools, &mockExecutionRepo{}, registry, singleBabyRepo())

	result, err := svc.Execute(context.Background(), kernel.NewUserID("user-1"), tool.ExecuteToolRequest{
		ToolID: found.ID,
	})

	require.NoError(t, err)
	assert.Equal(t, tool.ExecutionStatusSuccess, result.Status)
}

func TestExecutionService_Execute_NoBabiesAccessible(t *testing.T) {
	babies := &mockBabyRepo{
		findAllForUserFn: func(_ context.Context, _ kernel.UserID) ([]baby.Baby, error) {
			return nil, nil
		},
	}

	svc := NewExecutionService(&mockToolRepo{}, &mockExecutionRepo{}, tool.NewRegistry(), babies)

	result, err := svc.Execute(context.Background(), kernel.NewUserID("user-1"), tool.ExecuteToolRequest{
		ToolID: kernel.NewToolID("tool-1"),
	})

	assert.Nil(t, result)
	require.Error(t, err)
	assert.True(t, errx.IsType(err, errx.TypeBusiness))
}
