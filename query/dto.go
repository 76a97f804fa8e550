package query

import (
	"time"

	"github.com/Abraxas-365/nido/pkg/kernel"
	"github.com/Abraxas-365/nido/tool"
)

// ============================================================================
// Request DTOs
// ============================================================================

// ProcessQueryRequest request para procesar una consulta en lenguaje natural
type ProcessQueryRequest struct {
	Query           string         `json:"query" validate:"required"`
	BabyID          *kernel.BabyID `json:"baby_id,omitempty"`
	IncludeThinking bool           `json:"include_thinking"`
	IncludeMetadata *bool          `json:"include_metadata,omitempty"`
	Stream          bool           `json:"stream"`
}

// WantsMetadata indica si la respuesta debe incluir metadata de procesamiento
func (r ProcessQueryRequest) WantsMetadata() bool {
	return r.IncludeMetadata == nil || *r.IncludeMetadata
}

// ============================================================================
// Response DTOs
// ============================================================================

// QueryResponse respuesta principal del endpoint de consultas
type QueryResponse struct {
	Success   bool           `json:"success"`
	Data      map[string]any `json:"data"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Error     string         `json:"error,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// ToolSelectionResponse respuesta del endpoint de debug de selección
type ToolSelectionResponse struct {
	Query               string                `json:"query"`
	BabyID              *kernel.BabyID        `json:"baby_id,omitempty"`
	AvailableTools      []tool.ToolDetailsDTO `json:"available_tools"`
	SelectedTools       []ToolSelectionInfo   `json:"selected_tools"`
	Reasoning           string                `json:"reasoning"`
	Confidence          float64               `json:"confidence"`
	QueryClassification QueryType             `json:"query_classification,omitempty"`
	ThinkingProcess     string                `json:"thinking_process,omitempty"`
	FallbackUsed        bool                  `json:"fallback_used"`
	ProcessingTimeMs    int64                 `json:"processing_time_ms"`
}
