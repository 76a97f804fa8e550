package querysrv

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Abraxas-365/craftable/ai/llm"
	"github.com/Abraxas-365/craftable/errx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abraxas-365/nido/pkg/config"
	"github.com/Abraxas-365/nido/pkg/kernel"
	"github.com/Abraxas-365/nido/query"
	"github.com/Abraxas-365/nido/tool"
)

// ============================================================================
// Mocks
// ============================================================================

type mockToolSource struct {
	tools []tool.Tool
	err   error
}

func (m *mockToolSource) FindActive(context.Context) ([]tool.Tool, error) {
	return m.tools, m.err
}

type mockToolExecutor struct {
	executeFn func(ctx context.Context, userID kernel.UserID, req tool.ExecuteToolRequest) (*tool.ExecutionResult, error)
	requests  []tool.ExecuteToolRequest
}

func (m *mockToolExecutor) Execute(ctx context.Context, userID kernel.UserID, req tool.ExecuteToolRequest) (*tool.ExecutionResult, error) {
	m.requests = append(m.requests, req)
	return m.executeFn(ctx, userID, req)
}

type mockChatClient struct {
	responses []string
	err       error
	calls     int
}

func (m *mockChatClient) Chat(_ context.Context, _ []llm.Message, _ ...llm.Option) (llm.Response, error) {
	m.calls++
	if m.err != nil {
		return llm.Response{}, m.err
	}
	content := m.responses[0]
	if len(m.responses) > 1 {
		m.responses = m.responses[1:]
	}
	return llm.Response{Message: llm.NewAssistantMessage(content)}, nil
}

type mockSelectionCache struct {
	stored map[string]*query.CachedSelection
	sets   int
}

func (m *mockSelectionCache) Get(_ context.Context, key string) (*query.CachedSelection, error) {
	return m.stored[key], nil
}

func (m *mockSelectionCache) Set(_ context.Context, key string, selection *query.CachedSelection) error {
	if m.stored == nil {
		m.stored = map[string]*query.CachedSelection{}
	}
	m.stored[key] = selection
	m.sets++
	return nil
}

// ============================================================================
// Helpers
// ============================================================================

func testConfig() config.ClaudeConfig {
	return config.ClaudeConfig{
		Model:                        "gpt-4o-mini",
		MaxTokens:                    1024,
		Temperature:                  0.2,
		MaxToolsPerQuery:             3,
		SelectionConfidenceThreshold: 0.5,
		CallTimeout:                  5 * time.Second,
	}
}

func successfulExecutor() *mockToolExecutor {
	return &mockToolExecutor{
		executeFn: func(_ context.Context, _ kernel.UserID, req tool.ExecuteToolRequest) (*tool.ExecutionResult, error) {
			return &tool.ExecutionResult{
				ToolID:          req.ToolID,
				ExecutionID:     kernel.NewExecutionID("exec-1"),
				Status:          tool.ExecutionStatusSuccess,
				Data:            map[string]any{"summary": map[string]any{"babies_analyzed": 1}},
				ExecutionTimeMs: 12,
			}, nil
		},
	}
}

// ============================================================================
// Tests
// ============================================================================

func TestOrchestrator_ProcessQuery_EmptyQuery(t *testing.T) {
	o := NewOrchestrator(&mockToolSource{}, successfulExecutor(), nil, nil, testConfig())

	result, err := o.ProcessQuery(context.Background(), kernel.NewUserID("user-1"), query.ProcessQueryRequest{
		Query: "   ",
	})

	assert.Nil(t, result)
	require.Error(t, err)
	assert.True(t, errx.IsType(err, errx.TypeValidation))
}

func TestOrchestrator_ProcessQuery_NoActiveTools(t *testing.T) {
	chat := &mockChatClient{responses: []string{"{}"}}
	o := NewOrchestrator(&mockToolSource{}, successfulExecutor(), chat, nil, testConfig())

	result, err := o.ProcessQuery(context.Background(), kernel.NewUserID("user-1"), query.ProcessQueryRequest{
		Query: "How did my baby sleep?",
	})

	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "no active tools available", result.Error)
	assert.True(t, result.ToolSelection.FallbackUsed)

	// Sin tools no hay nada que seleccionar: el LLM no se invoca.
	assert.Zero(t, chat.calls)
}

func TestOrchestrator_ProcessQuery_DiscoveryFailure(t *testing.T) {
	source := &mockToolSource{err: errors.New("db unavailable")}
	o := NewOrchestrator(source, successfulExecutor(), nil, nil, testConfig())

	result, err := o.ProcessQuery(context.Background(), kernel.NewUserID("user-1"), query.ProcessQueryRequest{
		Query: "How did my baby sleep?",
	})

	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "db unavailable", result.Error)
	assert.Equal(t, "tool_discovery", result.ProcessingMetadata["error_phase"])
}

func TestOrchestrator_ProcessQuery_KeywordFallback(t *testing.T) {
	sleepTool := makeTool("sleep_analyzer", tool.ToolTypeSleepPatternAnalyzer)
	source := &mockToolSource{tools: []tool.Tool{
		makeTool("feeding_tracker", tool.ToolTypeFeedingTracker),
		sleepTool,
	}}
	executor := successfulExecutor()

	// Sin cliente LLM toda selección es por palabras clave.
	o := NewOrchestrator(source, executor, nil, nil, testConfig())

	babyID := kernel.NewBabyID("baby-1")
	result, err := o.ProcessQuery(context.Background(), kernel.NewUserID("user-1"), query.ProcessQueryRequest{
		Query:  "How did my baby sleep last night?",
		BabyID: &babyID,
	})

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.True(t, result.ToolSelection.FallbackUsed)
	require.Len(t, result.ToolSelection.SelectedTools, 1)
	assert.Equal(t, tool.ToolTypeSleepPatternAnalyzer, result.ToolSelection.SelectedTools[0].Type)
	assert.Equal(t, query.QueryTypeSleepAnalysis, result.ToolSelection.QueryClassification)

	// Parámetros de respaldo del analizador de sueño, etiquetados.
	require.Len(t, executor.requests, 1)
	params := executor.requests[0].Parameters
	assert.Equal(t, 7, params["timeframe"])
	assert.Equal(t, true, params["include_details"])
	assert.Equal(t, "fallback_default", params["extraction_method"])
	assert.Equal(t, &babyID, executor.requests[0].BabyID)

	summary := result.ExecutionSummary
	assert.Equal(t, 1, summary["successful"])
	assert.Equal(t, 0, summary["failed"])
	assert.Equal(t, false, summary["has_errors"])

	phases, ok := result.ProcessingMetadata["phase_durations_ms"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, phases, "tool_discovery")
	assert.Contains(t, phases, "tool_selection")
	assert.Contains(t, phases, "tool_execution")
	assert.Contains(t, phases, "completion")
}

func TestOrchestrator_ProcessQuery_LLMSelection(t *testing.T) {
	sleepTool := makeTool("sleep_analyzer", tool.ToolTypeSleepPatternAnalyzer)
	source := &mockToolSource{tools: []tool.Tool{sleepTool}}
	executor := successfulExecutor()

	chat := &mockChatClient{responses: []string{
		`{"query_classification": "sleep_analysis",
		  "selected_tools": [{"tool_name": "sleep_analyzer", "relevance_score": 0.95, "selection_reason": "sleep query"}],
		  "reasoning": "Asks about sleep", "confidence": 0.9}`,
		`{"timeframe": 14, "include_details": false}`,
	}}

	o := NewOrchestrator(source, executor, chat, nil, testConfig())

	result, err := o.ProcessQuery(context.Background(), kernel.NewUserID("user-1"), query.ProcessQueryRequest{
		Query: "How has sleep been the past two weeks?",
	})

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.False(t, result.ToolSelection.FallbackUsed)
	assert.Equal(t, 0.9, result.ToolSelection.Confidence)
	assert.Equal(t, 2, chat.calls)

	require.Len(t, executor.requests, 1)
	params := executor.requests[0].Parameters
	assert.Equal(t, float64(14), params["timeframe"])
	assert.Equal(t, "llm", params["extraction_method"])
}

func TestOrchestrator_ProcessQuery_LLMFailureFallsBack(t *testing.T) {
	source := &mockToolSource{tools: []tool.Tool{
		makeTool("sleep_analyzer", tool.ToolTypeSleepPatternAnalyzer),
	}}
	chat := &mockChatClient{err: errors.New("rate limited")}

	o := NewOrchestrator(source, successfulExecutor(), chat, nil, testConfig())

	result, err := o.ProcessQuery(context.Background(), kernel.NewUserID("user-1"), query.ProcessQueryRequest{
		Query: "how is the nap situation?",
	})

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.True(t, result.ToolSelection.FallbackUsed)
	assert.Equal(t, 0.6, result.ToolSelection.Confidence)
}

func TestOrchestrator_ProcessQuery_PerToolIsolation(t *testing.T) {
	sleepTool := makeTool("sleep_analyzer", tool.ToolTypeSleepPatternAnalyzer)
	feedingTool := makeTool("feeding_tracker", tool.ToolTypeFeedingTracker)
	source := &mockToolSource{tools: []tool.Tool{sleepTool, feedingTool}}

	executor := &mockToolExecutor{
		executeFn: func(_ context.Context, _ kernel.UserID, req tool.ExecuteToolRequest) (*tool.ExecutionResult, error) {
			if req.ToolID == feedingTool.ID {
				return nil, errors.New("feeding analysis failed")
			}
			return &tool.ExecutionResult{
				ToolID: req.ToolID,
				Status: tool.ExecutionStatusSuccess,
				Data:   map[string]any{"summary": map[string]any{}},
			}, nil
		},
	}

	o := NewOrchestrator(source, executor, nil, nil, testConfig())

	result, err := o.ProcessQuery(context.Background(), kernel.NewUserID("user-1"), query.ProcessQueryRequest{
		Query: "compare feeding and sleep",
	})

	require.NoError(t, err)

	// El fallo de un tool no aborta la consulta ni los demás tools.
	assert.True(t, result.Success)
	assert.Len(t, executor.requests, 2)

	summary := result.ExecutionSummary
	assert.Equal(t, 1, summary["successful"])
	assert.Equal(t, 1, summary["failed"])
	assert.Equal(t, true, summary["has_errors"])

	executions := summary["executions"].([]query.ToolExecutionInfo)
	require.Len(t, executions, 2)
	var failed *query.ToolExecutionInfo
	for i := range executions {
		if executions[i].Status == tool.ExecutionStatusFailed {
			failed = &executions[i]
		}
	}
	require.NotNil(t, failed)
	assert.Equal(t, "feeding_tracker", failed.ToolName)
	assert.Equal(t, "feeding analysis failed", failed.ErrorMessage)
}

func TestOrchestrator_SelectTools_CacheHit(t *testing.T) {
	sleepTool := makeTool("sleep_analyzer", tool.ToolTypeSleepPatternAnalyzer)
	source := &mockToolSource{tools: []tool.Tool{sleepTool}}

	queryText := "How did my baby sleep last night?"
	cache := &mockSelectionCache{stored: map[string]*query.CachedSelection{
		selectionCacheKey(queryText): {
			ToolInfo: []query.ToolSelectionInfo{{
				ToolID:         sleepTool.ID,
				ToolName:       sleepTool.Name,
				ToolType:       sleepTool.Type,
				RelevanceScore: 0.95,
			}},
			Reasoning:           "cached reasoning",
			Confidence:          0.9,
			QueryClassification: query.QueryTypeSleepAnalysis,
		},
	}}

	chat := &mockChatClient{responses: []string{"{}"}}
	cfg := testConfig()
	cfg.CacheSelections = true

	o := NewOrchestrator(source, successfulExecutor(), chat, cache, cfg)

	selection, err := o.SelectTools(context.Background(), queryText, nil, false)
	require.NoError(t, err)

	assert.Equal(t, "cached reasoning", selection.Reasoning)
	require.Len(t, selection.SelectedTools, 1)
	assert.Equal(t, sleepTool.ID, selection.SelectedTools[0].ID)
	assert.Zero(t, chat.calls)
}

func TestOrchestrator_SelectTools_CacheMissStoresSelection(t *testing.T) {
	sleepTool := makeTool("sleep_analyzer", tool.ToolTypeSleepPatternAnalyzer)
	source := &mockToolSource{tools: []tool.Tool{sleepTool}}
	cache := &mockSelectionCache{}

	chat := &mockChatClient{responses: []string{
		`{"selected_tools": [{"tool_name": "sleep_analyzer", "relevance_score": 0.9}], "confidence": 0.8}`,
	}}
	cfg := testConfig()
	cfg.CacheSelections = true

	o := NewOrchestrator(source, successfulExecutor(), chat, cache, cfg)

	_, err := o.SelectTools(context.Background(), "how is sleep going?", nil, false)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets)
}

func TestHydrateSelection_DropsRetiredTools(t *testing.T) {
	active := makeTool("sleep_analyzer", tool.ToolTypeSleepPatternAnalyzer)
	cached := &query.CachedSelection{
		ToolInfo: []query.ToolSelectionInfo{
			{ToolID: active.ID, ToolName: active.Name, ToolType: active.Type},
			{ToolID: kernel.NewToolID("retired"), ToolName: "retired_tool"},
		},
	}

	selection := hydrateSelection(cached, []tool.Tool{active})
	require.NotNil(t, selection)
	assert.Len(t, selection.SelectedTools, 1)

	// Si ningún tool cacheado sigue activo la selección no sirve.
	assert.Nil(t, hydrateSelection(cached, nil))
}

func TestSelectionCacheKey_NormalizesQuery(t *testing.T) {
	assert.Equal(t, selectionCacheKey("  Sleep QUERY "), selectionCacheKey("sleep query"))
	assert.NotEqual(t, selectionCacheKey("sleep"), selectionCacheKey("feeding"))
}
