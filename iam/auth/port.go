package auth

import (
	"github.com/Abraxas-365/nido/pkg/kernel"
)

// TokenService define el contrato para el manejo de tokens JWT
type TokenService interface {
	GenerateAccessToken(userID kernel.UserID, claims map[string]any) (string, error)
	ValidateAccessToken(token string) (*TokenClaims, error)
}
