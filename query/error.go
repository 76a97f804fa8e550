package query

import (
	"net/http"

	"github.com/Abraxas-365/craftable/errx"
)

// ============================================================================
// Error Registry
// ============================================================================

// ErrRegistry registro de errores del dominio de consultas
var ErrRegistry = errx.NewRegistry("QUERY")

var (
	CodeEmptyQuery       = ErrRegistry.Register("EMPTY_QUERY", errx.TypeValidation, http.StatusBadRequest, "La consulta no puede estar vacía")
	CodeProcessingFailed = ErrRegistry.Register("PROCESSING_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Error procesando la consulta")
)

// Errores de dominio

func ErrEmptyQuery() *errx.Error {
	return ErrRegistry.New(CodeEmptyQuery)
}

func ErrProcessingFailed(err error) *errx.Error {
	return ErrRegistry.New(CodeProcessingFailed).WithDetail("error", err.Error())
}
