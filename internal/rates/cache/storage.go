package cache

import (
	"context"

	"github.com/224solutions/exchange/internal/entities"
)

// Store reads historical rate observations from the persistent rate store.
// Implementations must return rows ordered by LastUpdated descending.
type Store interface {
	LatestObservations(ctx context.Context) ([]entities.RateObservation, error)
}
