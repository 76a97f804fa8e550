package queryapi

import (
	"time"

	"github.com/Abraxas-365/nido/baby"
	"github.com/Abraxas-365/nido/iam"
	"github.com/Abraxas-365/nido/iam/auth"
	"github.com/Abraxas-365/nido/query"
	"github.com/Abraxas-365/nido/query/querysrv"
	"github.com/Abraxas-365/nido/tool"
	"github.com/gofiber/fiber/v2"
)

// QueryHandler maneja las peticiones HTTP de consultas en lenguaje natural
type QueryHandler struct {
	orchestrator *querysrv.Orchestrator
	babies       baby.Repository
}

// NewQueryHandler crea un nuevo handler de consultas
func NewQueryHandler(orchestrator *querysrv.Orchestrator, babies baby.Repository) *QueryHandler {
	return &QueryHandler{
		orchestrator: orchestrator,
		babies:       babies,
	}
}

// RegisterRoutes configura las rutas de consultas
func (h *QueryHandler) RegisterRoutes(app *fiber.App, authMW *auth.AuthMiddleware) {
	queries := app.Group("/query", authMW.Authenticate())
	queries.Post("/", h.ProcessQuery)
	queries.Post("/debug", h.DebugToolSelection)
}

// ProcessQuery procesa una consulta usando selección de tools vía LLM
// POST /query
func (h *QueryHandler) ProcessQuery(c *fiber.Ctx) error {
	authCtx, ok := auth.GetAuthContext(c)
	if !ok {
		return iam.ErrUnauthorized()
	}

	var req query.ProcessQueryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	// Validar acceso al bebé antes de tocar el pipeline
	if req.BabyID != nil {
		if _, err := h.babies.FindForUser(c.Context(), *req.BabyID, authCtx.UserID); err != nil {
			return err
		}
	}

	result, err := h.orchestrator.ProcessQuery(c.Context(), authCtx.UserID, req)
	if err != nil {
		return err
	}

	if !result.Success {
		return c.Status(fiber.StatusBadRequest).JSON(query.QueryResponse{
			Success:   false,
			Data:      result.Data,
			Error:     result.Error,
			Timestamp: time.Now().UTC(),
		})
	}

	response := query.QueryResponse{
		Success:   true,
		Data:      result.Data,
		Timestamp: time.Now().UTC(),
	}

	if req.WantsMetadata() {
		metadata := map[string]any{
			"query_info": map[string]any{
				"original_query":       req.Query,
				"baby_id":              req.BabyID,
				"processing_timestamp": time.Now().UTC().Format(time.RFC3339),
			},
			"tool_selection":      result.ToolSelection.ToMap(),
			"execution_summary":   result.ExecutionSummary,
			"processing_metadata": result.ProcessingMetadata,
		}
		if req.IncludeThinking && result.ToolSelection.ThinkingProcess != "" {
			metadata["thinking_process"] = result.ToolSelection.ThinkingProcess
		}
		response.Metadata = metadata
	}

	return c.JSON(response)
}

// DebugToolSelection corre solo la fase de selección, para introspección
// POST /query/debug
func (h *QueryHandler) DebugToolSelection(c *fiber.Ctx) error {
	var req query.ProcessQueryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	available, err := h.orchestrator.ActiveTools(c.Context())
	if err != nil {
		return err
	}

	selection, err := h.orchestrator.SelectTools(c.Context(), req.Query, available, req.IncludeThinking)
	if err != nil {
		return err
	}

	availableDTOs := make([]tool.ToolDetailsDTO, 0, len(available))
	for _, t := range available {
		availableDTOs = append(availableDTOs, t.ToDTO())
	}

	return c.JSON(query.ToolSelectionResponse{
		Query:               req.Query,
		BabyID:              req.BabyID,
		AvailableTools:      availableDTOs,
		SelectedTools:       selection.ToolInfo,
		Reasoning:           selection.Reasoning,
		Confidence:          selection.Confidence,
		QueryClassification: selection.QueryClassification,
		ThinkingProcess:     selection.ThinkingProcess,
		FallbackUsed:        selection.FallbackUsed,
		ProcessingTimeMs:    selection.SelectionTimeMs,
	})
}
