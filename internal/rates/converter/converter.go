package converter

import (
	"context"
	"log/slog"
	"math"
	"strings"

	"github.com/224solutions/exchange/internal/entities"
	"github.com/224solutions/exchange/internal/rates/cache"
	"github.com/224solutions/exchange/internal/rates/metrics"
)

// defaultSanityBound is the maximum relative deviation tolerated between a
// remote conversion and the local estimate before the remote result is
// discarded in favour of the local one.
const defaultSanityBound = 0.5

// Converter converts amounts between currencies with a remote-first,
// local-fallback strategy. The local path pivots through USD using the rate
// cache and never performs I/O.
type Converter struct {
	cache       *cache.Cache
	remote      RemoteConverter
	sanityBound float64
}

type Option func(*Converter)

// WithSanityBound overrides the relative deviation bound applied to remote
// results. Zero disables the check and trusts the remote unconditionally.
func WithSanityBound(bound float64) Option {
	return func(c *Converter) { c.sanityBound = bound }
}

func New(rateCache *cache.Cache, remote RemoteConverter, opts ...Option) *Converter {
	c := &Converter{
		cache:       rateCache,
		remote:      remote,
		sanityBound: defaultSanityBound,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Convert converts amount from one currency to another. Remote failures are
// absorbed and translated into a local fallback; the only error surfaced is
// an unsupported currency pair when the fallback cannot resolve either code.
func (c *Converter) Convert(ctx context.Context, amount float64, from, to string) (entities.ConversionResult, error) {
	const op = "converter.Convert"

	from = strings.ToUpper(from)
	to = strings.ToUpper(to)

	if from == to {
		metrics.CountConversion("identity")
		return entities.ConversionResult{
			Amount:          amount,
			FromCurrency:    from,
			ToCurrency:      to,
			Rate:            1,
			ConvertedAmount: round2(amount),
		}, nil
	}

	remote, err := c.remote.Convert(ctx, amount, from, to)
	if err != nil || remote.ConvertedAmount == 0 {
		if err != nil {
			slog.Warn("remote conversion unavailable, falling back to cached rates",
				"op", op, "from", from, "to", to, "error", err)
		}
		res, err := c.ConvertLocal(amount, from, to)
		if err != nil {
			return entities.ConversionResult{}, err
		}
		metrics.CountConversion("local")
		return res, nil
	}

	remote.Amount = amount
	remote.FromCurrency = from
	remote.ToCurrency = to
	remote.ConvertedAmount = round2(remote.ConvertedAmount)

	if replaced, local := c.sanityCheck(amount, from, to, remote); replaced {
		metrics.CountConversion("local")
		return local, nil
	}

	metrics.CountConversion("remote")
	return remote, nil
}

// ConvertLocal converts using cached rates only, pivoting through USD. It is
// deterministic given the current cache state and performs no I/O.
func (c *Converter) ConvertLocal(amount float64, from, to string) (entities.ConversionResult, error) {
	from = strings.ToUpper(from)
	to = strings.ToUpper(to)

	if from == to {
		return entities.ConversionResult{
			Amount:          amount,
			FromCurrency:    from,
			ToCurrency:      to,
			Rate:            1,
			ConvertedAmount: round2(amount),
		}, nil
	}

	fromRate, okFrom := c.cache.GetRate(from)
	toRate, okTo := c.cache.GetRate(to)
	if !okFrom || !okTo {
		return entities.ConversionResult{}, &entities.UnsupportedCurrencyError{From: from, To: to}
	}

	var rate, converted float64
	switch {
	case from == "USD":
		rate = toRate.Rate
		converted = amount * rate
	case to == "USD":
		rate = 1 / fromRate.Rate
		converted = amount * rate
	default:
		// amount → USD → target
		converted = amount / fromRate.Rate * toRate.Rate
		rate = toRate.Rate / fromRate.Rate
	}

	return entities.ConversionResult{
		Amount:          amount,
		FromCurrency:    from,
		ToCurrency:      to,
		Rate:            rate,
		ConvertedAmount: round2(converted),
	}, nil
}

// sanityCheck compares a remote result against the local estimate and
// replaces it when the deviation exceeds the configured bound. When no local
// estimate exists the remote result is trusted as-is.
func (c *Converter) sanityCheck(amount float64, from, to string, remote entities.ConversionResult) (bool, entities.ConversionResult) {
	if c.sanityBound <= 0 {
		return false, entities.ConversionResult{}
	}

	local, err := c.ConvertLocal(amount, from, to)
	if err != nil || local.ConvertedAmount == 0 {
		return false, entities.ConversionResult{}
	}

	deviation := math.Abs(remote.ConvertedAmount-local.ConvertedAmount) / math.Abs(local.ConvertedAmount)
	if deviation <= c.sanityBound {
		return false, entities.ConversionResult{}
	}

	slog.Warn("remote conversion deviates from cached rates, using local result",
		"from", from, "to", to,
		"remote", remote.ConvertedAmount, "local", local.ConvertedAmount)

	return true, local
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
