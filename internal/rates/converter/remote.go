package converter

import (
	"context"

	"github.com/224solutions/exchange/internal/entities"
)

// RemoteConverter delegates an authoritative conversion to the remote rate
// source.
type RemoteConverter interface {
	Convert(ctx context.Context, amount float64, from, to string) (entities.ConversionResult, error)
}
