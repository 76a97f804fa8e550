package querysrv

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/Abraxas-365/craftable/ai/llm"
	"github.com/Abraxas-365/craftable/logx"
	"github.com/Abraxas-365/nido/pkg/config"
	"github.com/Abraxas-365/nido/pkg/kernel"
	"github.com/Abraxas-365/nido/query"
	"github.com/Abraxas-365/nido/tool"
)

// Orchestrator procesa consultas en lenguaje natural: descubre tools activos,
// pide al LLM que clasifique la consulta y seleccione tools, extrae parámetros
// por tool, los ejecuta en orden y sintetiza un resultado combinado.
//
// Cada fallo del LLM se absorbe con un camino de respaldo determinista
// (selección por palabras clave, parámetros por defecto); solo errores sin
// default razonable llegan al caller.
type Orchestrator struct {
	tools    query.ToolSource
	executor query.ToolExecutor
	chat     query.ChatClient
	cache    query.SelectionCache
	cfg      config.ClaudeConfig
}

// NewOrchestrator crea el orquestador de consultas. chat puede ser nil (todas
// las selecciones usan el respaldo por palabras clave) y cache puede ser nil
// (sin cache de selecciones).
func NewOrchestrator(
	tools query.ToolSource,
	executor query.ToolExecutor,
	chat query.ChatClient,
	cache query.SelectionCache,
	cfg config.ClaudeConfig,
) *Orchestrator {
	return &Orchestrator{
		tools:    tools,
		executor: executor,
		chat:     chat,
		cache:    cache,
		cfg:      cfg,
	}
}

// ActiveTools expone los tools activos disponibles para una consulta
func (o *Orchestrator) ActiveTools(ctx context.Context) ([]tool.Tool, error) {
	return o.tools.FindActive(ctx)
}

// ProcessQuery es el punto de entrada principal. Ejecuta el pipeline completo
// capturando la duración de cada fase, tanto en éxito como en fallo.
func (o *Orchestrator) ProcessQuery(ctx context.Context, userID kernel.UserID, req query.ProcessQueryRequest) (*query.ProcessingResult, error) {
	if strings.TrimSpace(req.Query) == "" {
		return nil, query.ErrEmptyQuery()
	}

	started := time.Now()
	phases := map[string]any{}
	metadata := map[string]any{"phase_durations_ms": phases}

	// Fase 1: descubrimiento de tools activos
	phaseStart := time.Now()
	available, err := o.tools.FindActive(ctx)
	phases[string(query.PhaseToolDiscovery)] = time.Since(phaseStart).Milliseconds()
	if err != nil {
		logx.Error("tool discovery failed: %v", err)
		metadata["error_phase"] = string(query.PhaseToolDiscovery)
		return &query.ProcessingResult{
			Success:               false,
			Data:                  map[string]any{"query": req.Query},
			ToolSelection:         &query.ToolSelectionResult{Reasoning: "Tool discovery failed before selection could run"},
			ExecutionSummary:      emptyExecutionSummary(),
			ProcessingMetadata:    metadata,
			Error:                 err.Error(),
			TotalProcessingTimeMs: time.Since(started).Milliseconds(),
		}, nil
	}

	// Sin tools activos: fallo estructurado, sin llamada al LLM
	if len(available) == 0 {
		return &query.ProcessingResult{
			Success: false,
			Data:    map[string]any{"query": req.Query},
			ToolSelection: &query.ToolSelectionResult{
				Reasoning:    "No active tools are available to answer this query",
				FallbackUsed: true,
			},
			ExecutionSummary:      emptyExecutionSummary(),
			ProcessingMetadata:    metadata,
			Error:                 "no active tools available",
			TotalProcessingTimeMs: time.Since(started).Milliseconds(),
		}, nil
	}

	// Fase 2: selección de tools
	selection := o.selectTools(ctx, req.Query, available, req.IncludeThinking)
	phases[string(query.PhaseToolSelection)] = selection.SelectionTimeMs

	// Fases 3 y 4: extracción de parámetros y ejecución, tool por tool.
	// El fallo de un tool no aborta los demás.
	var (
		executions   []query.ToolExecutionInfo
		toolResults  []map[string]any
		extractionMs int64
		executionMs  int64
	)
	for _, t := range selection.SelectedTools {
		phaseStart = time.Now()
		params := o.extractParameters(ctx, req.Query, t.Type)
		extractionMs += time.Since(phaseStart).Milliseconds()

		phaseStart = time.Now()
		result, execErr := o.executor.Execute(ctx, userID, tool.ExecuteToolRequest{
			ToolID:     t.ID,
			BabyID:     req.BabyID,
			Parameters: params,
		})
		elapsed := time.Since(phaseStart).Milliseconds()
		executionMs += elapsed

		if execErr != nil {
			logx.Error("tool %s failed during query processing: %v", t.Name, execErr)
			executions = append(executions, query.ToolExecutionInfo{
				ToolID:          t.ID,
				ToolName:        t.Name,
				ToolType:        t.Type,
				Status:          tool.ExecutionStatusFailed,
				ExecutionTimeMs: elapsed,
				ErrorMessage:    execErr.Error(),
				ParametersUsed:  params,
			})
			continue
		}

		executions = append(executions, query.ToolExecutionInfo{
			ToolID:          t.ID,
			ToolName:        t.Name,
			ToolType:        t.Type,
			Status:          result.Status,
			ExecutionTimeMs: result.ExecutionTimeMs,
			ResultCount:     len(result.Data),
			ParametersUsed:  params,
		})
		toolResults = append(toolResults, map[string]any{
			"tool_id":           result.ToolID,
			"tool_name":         t.Name,
			"tool_type":         t.Type,
			"execution_status":  result.Status,
			"data":              result.Data,
			"execution_time_ms": result.ExecutionTimeMs,
		})
	}
	phases[string(query.PhaseParameterExtraction)] = extractionMs
	phases[string(query.PhaseToolExecution)] = executionMs

	// Fase 5: síntesis del resultado combinado
	phaseStart = time.Now()
	successful, failed, totalDataPoints := 0, 0, 0
	for _, e := range executions {
		if e.Status == tool.ExecutionStatusSuccess {
			successful++
			totalDataPoints += e.ResultCount
		} else {
			failed++
		}
	}

	data := map[string]any{
		"query":     req.Query,
		"reasoning": selection.Reasoning,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"results":   toolResults,
		"summary": map[string]any{
			"successful_executions": successful,
			"failed_executions":     failed,
			"total_data_points":     totalDataPoints,
		},
	}
	phases[string(query.PhaseResultSynthesis)] = time.Since(phaseStart).Milliseconds()

	total := time.Since(started).Milliseconds()
	phases[string(query.PhaseCompletion)] = total

	return &query.ProcessingResult{
		Success:       true,
		Data:          data,
		ToolSelection: selection,
		ExecutionSummary: map[string]any{
			"executions": executions,
			"successful": successful,
			"failed":     failed,
			"total":      len(executions),
			"has_errors": failed > 0,
		},
		ProcessingMetadata:    metadata,
		TotalProcessingTimeMs: total,
	}, nil
}

// SelectTools ejecuta solo la fase de selección. Con available nil descubre
// los tools activos; es el punto de entrada del endpoint de debug.
func (o *Orchestrator) SelectTools(ctx context.Context, queryText string, available []tool.Tool, includeThinking bool) (*query.ToolSelectionResult, error) {
	if strings.TrimSpace(queryText) == "" {
		return nil, query.ErrEmptyQuery()
	}

	if available == nil {
		var err error
		available, err = o.tools.FindActive(ctx)
		if err != nil {
			return nil, err
		}
	}

	if len(available) == 0 {
		return &query.ToolSelectionResult{
			Reasoning:    "No active tools are available to answer this query",
			FallbackUsed: true,
		}, nil
	}

	return o.selectTools(ctx, queryText, available, includeThinking), nil
}

// selectTools intenta la selección vía LLM (con cache opcional) y cae al
// respaldo por palabras clave ante cualquier fallo. Nunca devuelve una
// selección vacía habiendo tools disponibles.
func (o *Orchestrator) selectTools(ctx context.Context, queryText string, available []tool.Tool, includeThinking bool) *query.ToolSelectionResult {
	started := time.Now()

	selection := o.selectWithLLM(ctx, queryText, available, includeThinking)
	if selection == nil {
		selection = fallbackSelection(queryText, available, o.cfg.MaxToolsPerQuery)
	}

	selection.SelectionTimeMs = time.Since(started).Milliseconds()
	return selection
}

// selectWithLLM devuelve nil ante cualquier fallo (cliente ausente, llamada
// fallida, respuesta no parseable) para que el caller use el respaldo.
func (o *Orchestrator) selectWithLLM(ctx context.Context, queryText string, available []tool.Tool, includeThinking bool) *query.ToolSelectionResult {
	if o.chat == nil {
		return nil
	}

	key := selectionCacheKey(queryText)
	if o.cache != nil && o.cfg.CacheSelections {
		if cached, err := o.cache.Get(ctx, key); err == nil && cached != nil {
			if selection := hydrateSelection(cached, available); selection != nil {
				return selection
			}
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, o.cfg.CallTimeout)
	defer cancel()

	response, err := o.chat.Chat(
		callCtx,
		[]llm.Message{
			llm.NewSystemMessage(buildSelectionPrompt(available, o.cfg.MaxToolsPerQuery, o.cfg.SelectionConfidenceThreshold)),
			llm.NewUserMessage(queryText),
		},
		o.llmOptions()...,
	)
	if err != nil {
		logx.Error("tool selection LLM call failed: %v", err)
		return nil
	}

	selection, err := parseSelection(response.Message.Content, available, o.cfg.MaxToolsPerQuery)
	if err != nil {
		logx.Error("tool selection response unparsable: %v", err)
		return nil
	}

	if !includeThinking {
		selection.ThinkingProcess = ""
	}

	if o.cache != nil && o.cfg.CacheSelections {
		cached := &query.CachedSelection{
			ToolInfo:            selection.ToolInfo,
			Reasoning:           selection.Reasoning,
			Confidence:          selection.Confidence,
			QueryClassification: selection.QueryClassification,
		}
		if err := o.cache.Set(ctx, key, cached); err != nil {
			logx.Error("failed to cache tool selection: %v", err)
		}
	}

	return selection
}

// extractParameters pide al LLM un JSON mínimo de parámetros para el tool;
// ante cualquier fallo sustituye los defaults del tipo de tool. Todo juego de
// parámetros queda etiquetado con su método de extracción.
func (o *Orchestrator) extractParameters(ctx context.Context, queryText string, toolType tool.ToolType) map[string]any {
	if o.chat == nil {
		return tagParameters(fallbackParameters(toolType), "fallback_default")
	}

	callCtx, cancel := context.WithTimeout(ctx, o.cfg.CallTimeout)
	defer cancel()

	response, err := o.chat.Chat(
		callCtx,
		[]llm.Message{
			llm.NewSystemMessage(buildExtractionPrompt(toolType)),
			llm.NewUserMessage(queryText),
		},
		o.llmOptions()...,
	)
	if err != nil {
		logx.Error("parameter extraction LLM call failed for %s: %v", toolType, err)
		return tagParameters(fallbackParameters(toolType), "fallback_default")
	}

	params, err := parseParameters(response.Message.Content)
	if err != nil {
		logx.Error("parameter extraction response unparsable for %s: %v", toolType, err)
		return tagParameters(fallbackParameters(toolType), "fallback_default")
	}

	return tagParameters(params, "llm")
}

func (o *Orchestrator) llmOptions() []llm.Option {
	return []llm.Option{
		llm.WithModel(o.cfg.Model),
		llm.WithTemperature(o.cfg.Temperature),
		llm.WithMaxTokens(o.cfg.MaxTokens),
	}
}

// hydrateSelection reconstruye una selección cacheada contra la lista de
// tools activos actual. Devuelve nil si ningún tool cacheado sigue activo.
func hydrateSelection(cached *query.CachedSelection, available []tool.Tool) *query.ToolSelectionResult {
	byID := make(map[kernel.ToolID]tool.Tool, len(available))
	for _, t := range available {
		byID[t.ID] = t
	}

	selection := &query.ToolSelectionResult{
		Reasoning:           cached.Reasoning,
		Confidence:          cached.Confidence,
		QueryClassification: cached.QueryClassification,
	}
	for _, info := range cached.ToolInfo {
		t, ok := byID[info.ToolID]
		if !ok {
			continue
		}
		selection.SelectedTools = append(selection.SelectedTools, t)
		selection.ToolInfo = append(selection.ToolInfo, info)
	}

	if len(selection.SelectedTools) == 0 {
		return nil
	}
	return selection
}

func selectionCacheKey(queryText string) string {
	normalized := strings.ToLower(strings.TrimSpace(queryText))
	sum := sha256.Sum256([]byte(normalized))
	return "query:selection:" + hex.EncodeToString(sum[:])
}

func emptyExecutionSummary() map[string]any {
	return map[string]any{
		"executions": []query.ToolExecutionInfo{},
		"successful": 0,
		"failed":     0,
		"total":      0,
		"has_errors": false,
	}
}
