package service

import (
	"context"

	"github.com/224solutions/exchange/internal/entities"
	"github.com/224solutions/exchange/internal/rates/cache"
	"github.com/224solutions/exchange/internal/rates/converter"
	"github.com/224solutions/exchange/internal/rates/format"
	"github.com/224solutions/exchange/internal/rates/prefs"
)

// Service aggregates the rate cache, the conversion engine, the formatter
// and the preference store behind one surface for the HTTP port.
type Service struct {
	cache     *cache.Cache
	converter *converter.Converter
	formatter *format.Formatter
	prefs     *prefs.Store
}

func NewService(rateCache *cache.Cache, conv *converter.Converter, fmter *format.Formatter, prefStore *prefs.Store) *Service {
	return &Service{
		cache:     rateCache,
		converter: conv,
		formatter: fmter,
		prefs:     prefStore,
	}
}

func (s *Service) SupportedCurrencies() []entities.CurrencyRate {
	return s.cache.SupportedCurrencies()
}

func (s *Service) GetRate(code string) (entities.CurrencyRate, error) {
	rate, ok := s.cache.GetRate(code)
	if !ok {
		return entities.CurrencyRate{}, entities.ErrRateNotFound
	}
	return rate, nil
}

func (s *Service) Convert(ctx context.Context, amount float64, from, to string) (entities.ConversionResult, error) {
	return s.converter.Convert(ctx, amount, from, to)
}

func (s *Service) FormatAmount(amount float64, code string, showAlternative bool) string {
	return s.formatter.Amount(amount, code, showAlternative)
}

func (s *Service) Refresh(ctx context.Context) error {
	return s.cache.Refresh(ctx)
}

func (s *Service) PreferredCurrency(ctx context.Context, userID string) string {
	return s.prefs.Preferred(ctx, userID)
}

func (s *Service) SetPreferredCurrency(ctx context.Context, userID, code string) error {
	return s.prefs.SetPreferred(ctx, userID, code)
}
