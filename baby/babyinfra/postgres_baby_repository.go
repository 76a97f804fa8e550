package babyinfra

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Abraxas-365/nido/baby"
	"github.com/Abraxas-365/nido/pkg/kernel"
	"github.com/jmoiron/sqlx"
)

// PostgresBabyRepository implementación de baby.Repository usando PostgreSQL
type PostgresBabyRepository struct {
	db *sqlx.DB
}

// NewPostgresBabyRepository crea un nuevo repositorio de bebés
func NewPostgresBabyRepository(db *sqlx.DB) *PostgresBabyRepository {
	return &PostgresBabyRepository{db: db}
}

// FindForUser busca un bebé por ID verificando que el usuario tenga acceso.
// El acceso puede ser como dueño o como cuidador vinculado (co-padre).
func (r *PostgresBabyRepository) FindForUser(ctx context.Context, babyID kernel.BabyID, userID kernel.UserID) (*baby.Baby, error) {
	query := `
		SELECT DISTINCT b.id, b.name, b.birth_date, b.gender, b.owner_id, b.created_at, b.updated_at
		FROM babies b
		LEFT JOIN baby_caregivers bc ON bc.baby_id = b.id
		WHERE b.id = $1 AND (b.owner_id = $2 OR bc.user_id = $2)`

	var result baby.Baby
	err := r.db.GetContext(ctx, &result, query, babyID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, baby.ErrBabyNotFound().WithDetail("baby_id", babyID.String())
		}
		return nil, baby.ErrDatabaseError(err)
	}

	return &result, nil
}

// FindAllForUser retorna todos los bebés visibles para el usuario
func (r *PostgresBabyRepository) FindAllForUser(ctx context.Context, userID kernel.UserID) ([]baby.Baby, error) {
	query := `
		SELECT DISTINCT b.id, b.name, b.birth_date, b.gender, b.owner_id, b.created_at, b.updated_at
		FROM babies b
		LEFT JOIN baby_caregivers bc ON bc.baby_id = b.id
		WHERE b.owner_id = $1 OR bc.user_id = $1
		ORDER BY b.created_at ASC`

	var results []baby.Baby
	err := r.db.SelectContext(ctx, &results, query, userID)
	if err != nil {
		return nil, baby.ErrDatabaseError(err)
	}

	return results, nil
}

var _ baby.Repository = (*PostgresBabyRepository)(nil)
