package public

import (
	"context"

	"github.com/224solutions/exchange/internal/entities"
)

// Service is the surface the HTTP port consumes.
type Service interface {
	SupportedCurrencies() []entities.CurrencyRate
	GetRate(code string) (entities.CurrencyRate, error)
	Convert(ctx context.Context, amount float64, from, to string) (entities.ConversionResult, error)
	FormatAmount(amount float64, code string, showAlternative bool) string
	Refresh(ctx context.Context) error
	PreferredCurrency(ctx context.Context, userID string) string
	SetPreferredCurrency(ctx context.Context, userID, code string) error
}
