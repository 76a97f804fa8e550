package baby

import (
	"net/http"

	"github.com/Abraxas-365/craftable/errx"
)

// ============================================================================
// Error Registry - Errores del módulo Baby
// ============================================================================

var ErrRegistry = errx.NewRegistry("BABY")

// Códigos de error
var (
	CodeBabyNotFound  = ErrRegistry.Register("NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Bebé no encontrado")
	CodeAccessDenied  = ErrRegistry.Register("ACCESS_DENIED", errx.TypeAuthorization, http.StatusForbidden, "No tienes acceso a este bebé")
	CodeDatabaseError = ErrRegistry.Register("DATABASE_ERROR", errx.TypeInternal, http.StatusInternalServerError, "Error de base de datos")
)

// Helper functions para crear errores
func ErrBabyNotFound() *errx.Error {
	return ErrRegistry.New(CodeBabyNotFound)
}

func ErrAccessDenied() *errx.Error {
	return ErrRegistry.New(CodeAccessDenied)
}

func ErrDatabaseError(err error) *errx.Error {
	return ErrRegistry.New(CodeDatabaseError).WithDetail("error", err.Error())
}
