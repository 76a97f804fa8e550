package tool

import (
	"net/http"

	"github.com/Abraxas-365/craftable/errx"
)

// ============================================================================
// Error Registry
// ============================================================================

var ErrRegistry = errx.NewRegistry("TOOL")

// ============================================================================
// Error Codes
// ============================================================================

var (
	// Tool errors
	CodeToolNotFound      = ErrRegistry.Register("NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Tool no encontrado")
	CodeToolAlreadyExists = ErrRegistry.Register("ALREADY_EXISTS", errx.TypeConflict, http.StatusConflict, "Tool ya existe")
	CodeInvalidToolType   = ErrRegistry.Register("INVALID_TYPE", errx.TypeValidation, http.StatusBadRequest, "Tipo de tool inválido")
	CodeToolNotActive     = ErrRegistry.Register("NOT_ACTIVE", errx.TypeBusiness, http.StatusForbidden, "Tool no está activo")

	// Execution errors
	CodeExecutionFailed      = ErrRegistry.Register("EXECUTION_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Ejecución de tool falló")
	CodeExecutionNotFound    = ErrRegistry.Register("EXECUTION_NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Ejecución no encontrada")
	CodeNoExecutorRegistered = ErrRegistry.Register("NO_EXECUTOR", errx.TypeInternal, http.StatusNotImplemented, "No hay ejecutor registrado para el tipo de tool")
	CodeNoBabiesAccessible   = ErrRegistry.Register("NO_BABIES", errx.TypeBusiness, http.StatusNotFound, "El usuario no tiene bebés registrados")

	// Infra errors
	CodeDatabaseError = ErrRegistry.Register("DATABASE_ERROR", errx.TypeInternal, http.StatusInternalServerError, "Error de base de datos")
)

// ============================================================================
// Error Constructor Functions
// ============================================================================

// Tool errors
func ErrToolNotFound() *errx.Error {
	return ErrRegistry.New(CodeToolNotFound)
}

func ErrToolAlreadyExists() *errx.Error {
	return ErrRegistry.New(CodeToolAlreadyExists)
}

func ErrInvalidToolType() *errx.Error {
	return ErrRegistry.New(CodeInvalidToolType)
}

func ErrToolNotActive() *errx.Error {
	return ErrRegistry.New(CodeToolNotActive)
}

// Execution errors
func ErrExecutionFailed() *errx.Error {
	return ErrRegistry.New(CodeExecutionFailed)
}

func ErrExecutionNotFound() *errx.Error {
	return ErrRegistry.New(CodeExecutionNotFound)
}

func ErrNoExecutorRegistered(toolType ToolType) *errx.Error {
	return ErrRegistry.New(CodeNoExecutorRegistered).WithDetail("tool_type", string(toolType))
}

func ErrNoBabiesAccessible() *errx.Error {
	return ErrRegistry.New(CodeNoBabiesAccessible)
}

// Infra errors
func ErrDatabaseError(err error) *errx.Error {
	return ErrRegistry.New(CodeDatabaseError).WithDetail("error", err.Error())
}
