package query

import (
	"context"

	"github.com/Abraxas-365/craftable/ai/llm"
	"github.com/Abraxas-365/nido/pkg/kernel"
	"github.com/Abraxas-365/nido/tool"
)

// ============================================================================
// Ports (interfaces del dominio)
// ============================================================================

// ChatClient cliente de chat LLM usado para selección de tools y extracción
// de parámetros. *llm.Client lo satisface directamente.
type ChatClient interface {
	Chat(ctx context.Context, messages []llm.Message, options ...llm.Option) (llm.Response, error)
}

// ToolSource expone los tools activos disponibles para una consulta
type ToolSource interface {
	FindActive(ctx context.Context) ([]tool.Tool, error)
}

// ToolExecutor ejecuta un tool en nombre de un usuario
type ToolExecutor interface {
	Execute(ctx context.Context, userID kernel.UserID, req tool.ExecuteToolRequest) (*tool.ExecutionResult, error)
}

// SelectionCache cache opcional de selecciones de tools por consulta.
// Get devuelve (nil, nil) cuando no hay entrada.
type SelectionCache interface {
	Get(ctx context.Context, key string) (*CachedSelection, error)
	Set(ctx context.Context, key string, selection *CachedSelection) error
}
