package toolapi

import (
	"github.com/Abraxas-365/nido/iam"
	"github.com/Abraxas-365/nido/iam/auth"
	"github.com/Abraxas-365/nido/pkg/kernel"
	"github.com/Abraxas-365/nido/tool"
	"github.com/Abraxas-365/nido/tool/toolsrv"
	"github.com/gofiber/fiber/v2"
)

// ToolHandler maneja las peticiones HTTP para herramientas de análisis
type ToolHandler struct {
	tools      *toolsrv.ToolService
	executions *toolsrv.ExecutionService
}

// NewToolHandler crea un nuevo handler de herramientas
func NewToolHandler(tools *toolsrv.ToolService, executions *toolsrv.ExecutionService) *ToolHandler {
	return &ToolHandler{
		tools:      tools,
		executions: executions,
	}
}

// RegisterRoutes configura las rutas de herramientas
func (h *ToolHandler) RegisterRoutes(app *fiber.App, authMW *auth.AuthMiddleware) {
	tools := app.Group("/tools", authMW.Authenticate())

	// Administración de herramientas (solo admin)
	tools.Post("/", authMW.RequireAdmin(), h.CreateTool)
	tools.Put("/:toolId", authMW.RequireAdmin(), h.UpdateTool)
	tools.Delete("/:toolId", authMW.RequireAdmin(), h.DeleteTool)

	// Consulta y ejecución
	tools.Get("/", h.ListTools)
	tools.Post("/execute", h.ExecuteTool)
	tools.Get("/:toolId", h.GetTool)
	tools.Get("/:toolId/stats", h.GetToolStats)

	executions := app.Group("/executions", authMW.Authenticate())
	executions.Get("/", h.ListExecutions)
	executions.Get("/:executionId", h.GetExecution)
}

// CreateTool registra una nueva herramienta
// POST /tools
func (h *ToolHandler) CreateTool(c *fiber.Ctx) error {
	var req tool.CreateToolRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	created, err := h.tools.CreateTool(c.Context(), req)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

// UpdateTool actualiza una herramienta existente
// PUT /tools/:toolId
func (h *ToolHandler) UpdateTool(c *fiber.Ctx) error {
	toolID, err := parseToolID(c)
	if err != nil {
		return err
	}

	var req tool.UpdateToolRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	updated, err := h.tools.UpdateTool(c.Context(), toolID, req)
	if err != nil {
		return err
	}

	return c.JSON(updated)
}

// DeleteTool elimina una herramienta
// DELETE /tools/:toolId
func (h *ToolHandler) DeleteTool(c *fiber.Ctx) error {
	toolID, err := parseToolID(c)
	if err != nil {
		return err
	}

	if err := h.tools.DeleteTool(c.Context(), toolID); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// GetTool obtiene una herramienta por ID
// GET /tools/:toolId
func (h *ToolHandler) GetTool(c *fiber.Ctx) error {
	toolID, err := parseToolID(c)
	if err != nil {
		return err
	}

	t, err := h.tools.GetTool(c.Context(), toolID)
	if err != nil {
		return err
	}

	return c.JSON(t)
}

// ListTools lista herramientas con filtros y paginación
// GET /tools
func (h *ToolHandler) ListTools(c *fiber.Ctx) error {
	var req tool.ListToolsRequest
	req.Page = c.QueryInt("page", 1)
	req.PageSize = c.QueryInt("page_size", 20)
	req.Search = c.Query("search")

	if raw := c.Query("type"); raw != "" {
		toolType := tool.ToolType(raw)
		req.Type = &toolType
	}
	if raw := c.Query("status"); raw != "" {
		status := tool.ToolStatus(raw)
		req.Status = &status
	}

	result, err := h.tools.ListTools(c.Context(), req)
	if err != nil {
		return err
	}

	return c.JSON(result)
}

// GetToolStats obtiene estadísticas de uso de una herramienta
// GET /tools/:toolId/stats
func (h *ToolHandler) GetToolStats(c *fiber.Ctx) error {
	toolID, err := parseToolID(c)
	if err != nil {
		return err
	}

	stats, err := h.tools.GetStats(c.Context(), toolID)
	if err != nil {
		return err
	}

	return c.JSON(stats)
}

// ExecuteTool ejecuta una herramienta para el usuario autenticado
// POST /tools/execute
func (h *ToolHandler) ExecuteTool(c *fiber.Ctx) error {
	authCtx, ok := auth.GetAuthContext(c)
	if !ok {
		return iam.ErrUnauthorized()
	}

	var req tool.ExecuteToolRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	result, err := h.executions.Execute(c.Context(), authCtx.UserID, req)
	if err != nil {
		return err
	}

	return c.JSON(result)
}

// ListExecutions lista ejecuciones con filtros y paginación
// GET /executions
func (h *ToolHandler) ListExecutions(c *fiber.Ctx) error {
	authCtx, ok := auth.GetAuthContext(c)
	if !ok {
		return iam.ErrUnauthorized()
	}

	var req tool.ListExecutionsRequest
	req.Page = c.QueryInt("page", 1)
	req.PageSize = c.QueryInt("page_size", 20)

	if raw := c.Query("status"); raw != "" {
		status := tool.ExecutionStatus(raw)
		req.Status = &status
	}
	if raw := c.Query("tool_id"); raw != "" {
		toolID := kernel.NewToolID(raw)
		req.ToolID = &toolID
	}
	if raw := c.Query("from"); raw != "" {
		req.From = &raw
	}
	if raw := c.Query("to"); raw != "" {
		req.To = &raw
	}

	// Los usuarios normales solo ven sus propias ejecuciones
	if !authCtx.IsAdmin {
		req.UserID = &authCtx.UserID
	} else if raw := c.Query("user_id"); raw != "" {
		userID := kernel.NewUserID(raw)
		req.UserID = &userID
	}

	result, err := h.tools.ListExecutions(c.Context(), req)
	if err != nil {
		return err
	}

	return c.JSON(result)
}

// GetExecution obtiene una ejecución por ID
// GET /executions/:executionId
func (h *ToolHandler) GetExecution(c *fiber.Ctx) error {
	authCtx, ok := auth.GetAuthContext(c)
	if !ok {
		return iam.ErrUnauthorized()
	}

	rawID := c.Params("executionId")
	if rawID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Execution ID is required",
		})
	}

	exec, err := h.executions.GetExecution(c.Context(), kernel.NewExecutionID(rawID))
	if err != nil {
		return err
	}

	if !authCtx.IsAdmin && exec.UserID != authCtx.UserID {
		return tool.ErrExecutionNotFound()
	}

	return c.JSON(exec)
}

func parseToolID(c *fiber.Ctx) (kernel.ToolID, error) {
	rawID := c.Params("toolId")
	if rawID == "" {
		return "", tool.ErrToolNotFound()
	}
	return kernel.NewToolID(rawID), nil
}
