package baby

import (
	"time"

	"github.com/Abraxas-365/nido/pkg/kernel"
)

// ============================================================================
// Baby Entity
// ============================================================================

// Baby representa un bebé registrado en el sistema
type Baby struct {
	ID        kernel.BabyID `db:"id" json:"id"`
	Name      string        `db:"name" json:"name"`
	BirthDate time.Time     `db:"birth_date" json:"birth_date"`
	Gender    string        `db:"gender" json:"gender,omitempty"`
	OwnerID   kernel.UserID `db:"owner_id" json:"owner_id"`
	CreatedAt time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt time.Time     `db:"updated_at" json:"updated_at"`
}

// AgeInDays retorna la edad del bebé en días
func (b *Baby) AgeInDays() int {
	return int(time.Since(b.BirthDate).Hours() / 24)
}

// AgeInMonths retorna la edad del bebé en meses aproximados
func (b *Baby) AgeInMonths() int {
	return b.AgeInDays() / 30
}

// IsOwnedBy verifica si el usuario es el dueño del registro
func (b *Baby) IsOwnedBy(userID kernel.UserID) bool {
	return b.OwnerID == userID
}
