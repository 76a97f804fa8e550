package record

import (
	"context"
	"time"

	"github.com/Abraxas-365/nido/pkg/kernel"
)

// FeedingRepository define el contrato para consultar registros de alimentación
type FeedingRepository interface {
	FindForBabyInRange(ctx context.Context, babyID kernel.BabyID, userID kernel.UserID, start, end time.Time) ([]Feeding, error)
}

// SleepPatternProvider define el contrato para obtener patrones de sueño
// ya agregados de un bebé en una ventana de días.
type SleepPatternProvider interface {
	GetSleepPatterns(ctx context.Context, babyID kernel.BabyID, userID kernel.UserID, days int, calculationMethod string) (*SleepPatterns, error)
}
