package format

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/224solutions/exchange/deploy/config"
	"github.com/224solutions/exchange/internal/entities"
	"github.com/224solutions/exchange/internal/rates/cache"
	"github.com/224solutions/exchange/internal/rates/converter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubStore struct {
	obs []entities.RateObservation
}

func (s *stubStore) LatestObservations(_ context.Context) ([]entities.RateObservation, error) {
	return s.obs, nil
}

type stubRemote struct{}

func (stubRemote) Refresh(_ context.Context) error { return nil }

func (stubRemote) Convert(_ context.Context, _ float64, _, _ string) (entities.ConversionResult, error) {
	return entities.ConversionResult{}, nil
}

type memKV struct {
	mu   sync.Mutex
	data map[string]string
}

func (kv *memKV) Get(_ context.Context, key string) (string, error) {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	return kv.data[key], nil
}

func (kv *memKV) Set(_ context.Context, key string, value string) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	kv.data[key] = value
	return nil
}

func newFormatter(t *testing.T) *Formatter {
	t.Helper()

	now := time.Now()
	rates := map[string]float64{"EUR": 0.92, "GNF": 8600, "XOF": 600}

	obs := make([]entities.RateObservation, 0, len(rates))
	for code, rate := range rates {
		obs = append(obs, entities.RateObservation{
			BaseCurrency:   "USD",
			TargetCurrency: code,
			Rate:           rate,
			LastUpdated:    now,
		})
	}

	cfg := &config.Config{Rates: config.Rates{
		StaleAfter:    24 * time.Hour,
		RemoteTimeout: 5 * time.Second,
		CheckInterval: time.Hour,
	}}

	c := cache.New(&stubStore{obs: obs}, stubRemote{}, &memKV{data: map[string]string{}}, cfg)
	require.NoError(t, c.Refresh(context.Background()))

	return New(c, converter.New(c, stubRemote{}))
}

func TestAmount_USDPrefixTwoDecimals(t *testing.T) {
	f := newFormatter(t)

	assert.Equal(t, "$1,234.50", f.Amount(1234.5, "USD", false))
}

func TestAmount_EURPrefix(t *testing.T) {
	f := newFormatter(t)

	assert.Equal(t, "€92.00", f.Amount(92, "EUR", false))
}

func TestAmount_ZeroDecimalSuffix(t *testing.T) {
	f := newFormatter(t)

	out := f.Amount(8600, "GNF", false)
	assert.Equal(t, "8,600 FCFA", out)
	assert.NotContains(t, out, ".")
}

func TestAmount_ZeroDecimalDropsFraction(t *testing.T) {
	f := newFormatter(t)

	out := f.Amount(1234.5, "GNF", false)
	assert.True(t, strings.HasSuffix(out, " FCFA"))
	assert.NotContains(t, out, ".")
}

func TestAmount_UnknownCurrencyDegradesToPlainNumber(t *testing.T) {
	f := newFormatter(t)

	assert.Equal(t, "12.34", f.Amount(12.34, "ZZZ", false))
}

func TestAmount_CaseInsensitive(t *testing.T) {
	f := newFormatter(t)

	assert.Equal(t, f.Amount(10, "USD", false), f.Amount(10, "usd", false))
}

func TestAmount_AlternativeAnnotation(t *testing.T) {
	f := newFormatter(t)

	// 8600 GNF is exactly 1 USD with the test rates
	out := f.Amount(8600, "GNF", true)
	assert.Contains(t, out, "(~$1)")
}

func TestAmount_NoAlternativeForUSD(t *testing.T) {
	f := newFormatter(t)

	assert.NotContains(t, f.Amount(100, "USD", true), "~$")
}

func TestAmount_AlternativeFailureSwallowed(t *testing.T) {
	f := newFormatter(t)

	// unknown currency: primary rendering still comes back, without annotation
	out := f.Amount(50, "ZZZ", true)
	assert.Equal(t, "50.00", out)
}
