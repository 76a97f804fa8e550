package recordinfra

import (
	"context"
	"time"

	"github.com/Abraxas-365/nido/pkg/kernel"
	"github.com/Abraxas-365/nido/record"
	"github.com/jmoiron/sqlx"
)

// PostgresFeedingRepository implementación de record.FeedingRepository usando PostgreSQL
type PostgresFeedingRepository struct {
	db *sqlx.DB
}

// NewPostgresFeedingRepository crea un nuevo repositorio de alimentación
func NewPostgresFeedingRepository(db *sqlx.DB) *PostgresFeedingRepository {
	return &PostgresFeedingRepository{db: db}
}

// FindForBabyInRange retorna los registros de alimentación de un bebé en una
// ventana temporal. El JOIN contra babies y baby_caregivers garantiza que el
// usuario tenga acceso al bebé consultado.
func (r *PostgresFeedingRepository) FindForBabyInRange(ctx context.Context, babyID kernel.BabyID, userID kernel.UserID, start, end time.Time) ([]record.Feeding, error) {
	if end.Before(start) {
		return nil, record.ErrInvalidRange().
			WithDetail("start", start.Format(time.RFC3339)).
			WithDetail("end", end.Format(time.RFC3339))
	}

	query := `
		SELECT DISTINCT f.id, f.baby_id, f.type, f.start_time, f.amount,
		       f.duration_minutes, f.bottle_content_type, f.food_type,
		       f.pumped_volume_left, f.pumped_volume_right, f.notes,
		       f.created_by, f.created_at
		FROM feedings f
		JOIN babies b ON b.id = f.baby_id
		LEFT JOIN baby_caregivers bc ON bc.baby_id = b.id
		WHERE f.baby_id = $1
		  AND (b.owner_id = $2 OR bc.user_id = $2)
		  AND f.start_time >= $3
		  AND f.start_time < $4
		ORDER BY f.start_time ASC`

	var results []record.Feeding
	err := r.db.SelectContext(ctx, &results, query, babyID, userID, start, end)
	if err != nil {
		return nil, record.ErrDatabaseError(err)
	}

	return results, nil
}

var _ record.FeedingRepository = (*PostgresFeedingRepository)(nil)
