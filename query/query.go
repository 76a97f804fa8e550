package query

import (
	"github.com/Abraxas-365/nido/pkg/kernel"
	"github.com/Abraxas-365/nido/tool"
)

// ============================================================================
// Query Types & Enums
// ============================================================================

// QueryType clasifica la consulta en lenguaje natural del usuario
type QueryType string

const (
	QueryTypeActivityInquiry     QueryType = "activity_inquiry"
	QueryTypeSleepAnalysis       QueryType = "sleep_analysis"
	QueryTypeCareMetrics         QueryType = "care_metrics"
	QueryTypeHealthCheck         QueryType = "health_check"
	QueryTypeScheduleQuery       QueryType = "schedule_query"
	QueryTypeGeneralQuestion     QueryType = "general_question"
	QueryTypeComparativeAnalysis QueryType = "comparative_analysis"
)

// ProcessingPhase fases del pipeline de procesamiento de una consulta
type ProcessingPhase string

const (
	PhaseToolDiscovery       ProcessingPhase = "tool_discovery"
	PhaseToolSelection       ProcessingPhase = "tool_selection"
	PhaseParameterExtraction ProcessingPhase = "parameter_extraction"
	PhaseToolExecution       ProcessingPhase = "tool_execution"
	PhaseResultSynthesis     ProcessingPhase = "result_synthesis"
	PhaseCompletion          ProcessingPhase = "completion"
)

// ============================================================================
// Selection & Execution Info (transient, no se persisten)
// ============================================================================

// ToolSelectionInfo información sobre un tool seleccionado para la consulta
type ToolSelectionInfo struct {
	ToolID          kernel.ToolID `json:"tool_id"`
	ToolName        string        `json:"tool_name"`
	ToolType        tool.ToolType `json:"tool_type"`
	RelevanceScore  float64       `json:"relevance_score"`
	SelectionReason string        `json:"selection_reason"`
}

// ToolExecutionInfo información sobre la ejecución de un tool seleccionado
type ToolExecutionInfo struct {
	ToolID          kernel.ToolID        `json:"tool_id"`
	ToolName        string               `json:"tool_name"`
	ToolType        tool.ToolType        `json:"tool_type"`
	Status          tool.ExecutionStatus `json:"status"`
	ExecutionTimeMs int64                `json:"execution_time_ms"`
	ResultCount     int                  `json:"result_count"`
	ErrorMessage    string               `json:"error_message,omitempty"`
	ParametersUsed  map[string]any       `json:"parameters_used,omitempty"`
}

// ToolSelectionResult resultado de la fase de selección de tools
type ToolSelectionResult struct {
	SelectedTools       []tool.Tool         `json:"-"`
	ToolInfo            []ToolSelectionInfo `json:"tool_info"`
	Reasoning           string              `json:"reasoning"`
	Confidence          float64             `json:"confidence"`
	QueryClassification QueryType           `json:"query_classification,omitempty"`
	ThinkingProcess     string              `json:"thinking_process,omitempty"`
	FallbackUsed        bool                `json:"fallback_used"`
	SelectionTimeMs     int64               `json:"selection_time_ms"`
}

// ToMap serializa el resultado de selección para metadata de respuesta
func (r *ToolSelectionResult) ToMap() map[string]any {
	selected := make([]map[string]any, 0, len(r.SelectedTools))
	for _, t := range r.SelectedTools {
		selected = append(selected, map[string]any{
			"id":          t.ID,
			"name":        t.Name,
			"type":        t.Type,
			"description": t.Description,
		})
	}

	m := map[string]any{
		"selected_tools":    selected,
		"tool_info":         r.ToolInfo,
		"reasoning":         r.Reasoning,
		"confidence":        r.Confidence,
		"fallback_used":     r.FallbackUsed,
		"selection_time_ms": r.SelectionTimeMs,
	}
	if r.QueryClassification != "" {
		m["query_classification"] = string(r.QueryClassification)
	}
	if r.ThinkingProcess != "" {
		m["thinking_process"] = r.ThinkingProcess
	}
	return m
}

// ProcessingResult resultado completo del procesamiento de una consulta
type ProcessingResult struct {
	Success               bool                 `json:"success"`
	Data                  map[string]any       `json:"data"`
	ToolSelection         *ToolSelectionResult `json:"tool_selection"`
	ExecutionSummary      map[string]any       `json:"execution_summary"`
	ProcessingMetadata    map[string]any       `json:"processing_metadata"`
	Error                 string               `json:"error,omitempty"`
	TotalProcessingTimeMs int64                `json:"total_processing_time_ms"`
}

// CachedSelection selección cacheada de una consulta previa. Solo guarda la
// decisión del LLM; los tools se rehidratan contra la lista activa actual.
type CachedSelection struct {
	ToolInfo            []ToolSelectionInfo `json:"tool_info"`
	Reasoning           string              `json:"reasoning"`
	Confidence          float64             `json:"confidence"`
	QueryClassification QueryType           `json:"query_classification,omitempty"`
}
