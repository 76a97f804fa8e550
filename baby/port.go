package baby

import (
	"context"

	"github.com/Abraxas-365/nido/pkg/kernel"
)

// Repository define el contrato para la persistencia de bebés.
// Toda búsqueda va acompañada del usuario que la realiza: un bebé
// solo es visible para su dueño o para un cuidador vinculado.
type Repository interface {
	FindForUser(ctx context.Context, babyID kernel.BabyID, userID kernel.UserID) (*Baby, error)
	FindAllForUser(ctx context.Context, userID kernel.UserID) ([]Baby, error)
}
