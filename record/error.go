package record

import (
	"net/http"

	"github.com/Abraxas-365/craftable/errx"
)

// ============================================================================
// Error Registry - Errores del módulo Record
// ============================================================================

var ErrRegistry = errx.NewRegistry("RECORD")

// Códigos de error
var (
	CodeDatabaseError = ErrRegistry.Register("DATABASE_ERROR", errx.TypeInternal, http.StatusInternalServerError, "Error de base de datos")
	CodeInvalidRange  = ErrRegistry.Register("INVALID_RANGE", errx.TypeValidation, http.StatusBadRequest, "Rango de fechas inválido")
)

// Helper functions para crear errores
func ErrDatabaseError(err error) *errx.Error {
	return ErrRegistry.New(CodeDatabaseError).WithDetail("error", err.Error())
}

func ErrInvalidRange() *errx.Error {
	return ErrRegistry.New(CodeInvalidRange)
}
