package cache

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/224solutions/exchange/deploy/config"
	"github.com/224solutions/exchange/internal/entities"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	obs   []entities.RateObservation
	err   error
	calls int32
}

func (s *fakeStore) LatestObservations(_ context.Context) ([]entities.RateObservation, error) {
	atomic.AddInt32(&s.calls, 1)
	return s.obs, s.err
}

type fakeRemote struct {
	err   error
	delay time.Duration
	calls int32
}

func (r *fakeRemote) Refresh(_ context.Context) error {
	atomic.AddInt32(&r.calls, 1)
	if r.delay > 0 {
		time.Sleep(r.delay)
	}
	return r.err
}

type memKV struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemKV() *memKV {
	return &memKV{data: map[string]string{}}
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

func testConfig() *config.Config {
	return &config.Config{
		Rates: config.Rates{
			StaleAfter:    24 * time.Hour,
			RemoteTimeout: 5 * time.Second,
			CheckInterval: time.Hour,
		},
	}
}

func usdObservations(rates map[string]float64, at time.Time) []entities.RateObservation {
	obs := make([]entities.RateObservation, 0, len(rates))
	for code, rate := range rates {
		obs = append(obs, entities.RateObservation{
			BaseCurrency:   "USD",
			TargetCurrency: code,
			Rate:           rate,
			LastUpdated:    at,
		})
	}
	return obs
}

func TestSupportedCurrencies_AlwaysIncludesUSD(t *testing.T) {
	c := New(&fakeStore{}, &fakeRemote{}, newMemKV(), testConfig())

	currencies := c.SupportedCurrencies()
	require.NotEmpty(t, currencies)

	var usd *entities.CurrencyRate
	for i := range currencies {
		if currencies[i].Code == "USD" {
			usd = &currencies[i]
		}
	}
	require.NotNil(t, usd, "bootstrap set must contain USD")
	assert.Equal(t, float64(1), usd.Rate)
}

func TestSupportedCurrencies_SortedByName(t *testing.T) {
	c := New(&fakeStore{}, &fakeRemote{}, newMemKV(), testConfig())

	currencies := c.SupportedCurrencies()
	for i := 1; i < len(currencies); i++ {
		assert.LessOrEqual(t, currencies[i-1].Name, currencies[i].Name)
	}
}

func TestGetRate_CaseInsensitive(t *testing.T) {
	c := New(&fakeStore{}, &fakeRemote{}, newMemKV(), testConfig())

	lower, okLower := c.GetRate("usd")
	upper, okUpper := c.GetRate("USD")

	require.True(t, okLower)
	require.True(t, okUpper)
	assert.Equal(t, upper, lower)
}

func TestGetRate_UnknownCurrency(t *testing.T) {
	c := New(&fakeStore{}, &fakeRemote{}, newMemKV(), testConfig())

	_, ok := c.GetRate("ZZZ")
	assert.False(t, ok)
}

func TestIsStale(t *testing.T) {
	c := New(
		&fakeStore{obs: usdObservations(map[string]float64{"EUR": 0.92}, time.Now())},
		&fakeRemote{},
		newMemKV(),
		testConfig(),
	)

	assert.True(t, c.IsStale(), "never-refreshed cache must be stale")

	require.NoError(t, c.Refresh(context.Background()))
	assert.False(t, c.IsStale())

	c.mu.Lock()
	c.lastUpdated = time.Now().Add(-25 * time.Hour)
	c.mu.Unlock()
	assert.True(t, c.IsStale())
}

func TestRefresh_SingleFlight(t *testing.T) {
	remote := &fakeRemote{delay: 50 * time.Millisecond}
	store := &fakeStore{obs: usdObservations(map[string]float64{"EUR": 0.92}, time.Now())}
	c := New(store, remote, newMemKV(), testConfig())

	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_ = c.Refresh(context.Background())
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&remote.calls),
		"concurrent refreshes must share one remote call")
}

func TestRefresh_RemoteFailureKeepsOldValues(t *testing.T) {
	remote := &fakeRemote{err: errors.New("rate source down")}
	c := New(&fakeStore{}, remote, newMemKV(), testConfig())

	before, ok := c.GetRate("GNF")
	require.True(t, ok)

	err := c.Refresh(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, entities.ErrRefreshFailed)

	after, ok := c.GetRate("GNF")
	require.True(t, ok)
	assert.Equal(t, before, after)
	assert.True(t, c.IsStale())
}

func TestRefresh_StoreFailureKeepsOldValues(t *testing.T) {
	store := &fakeStore{err: errors.New("connection refused")}
	c := New(store, &fakeRemote{}, newMemKV(), testConfig())

	_, ok := c.GetRate("USD")
	require.True(t, ok)

	err := c.Refresh(context.Background())
	assert.ErrorIs(t, err, entities.ErrRefreshFailed)

	_, ok = c.GetRate("USD")
	assert.True(t, ok)
}

func TestRefresh_KeepsNewestObservationPerPair(t *testing.T) {
	now := time.Now()
	store := &fakeStore{obs: []entities.RateObservation{
		// newest first, as the persistent store returns them
		{BaseCurrency: "USD", TargetCurrency: "GNF", Rate: 8700, LastUpdated: now},
		{BaseCurrency: "USD", TargetCurrency: "GNF", Rate: 8600, LastUpdated: now.Add(-time.Hour)},
		{BaseCurrency: "EUR", TargetCurrency: "USD", Rate: 2, LastUpdated: now},
	}}
	c := New(store, &fakeRemote{}, newMemKV(), testConfig())

	require.NoError(t, c.Refresh(context.Background()))

	gnf, ok := c.GetRate("GNF")
	require.True(t, ok)
	assert.Equal(t, float64(8700), gnf.Rate)

	// inverted pairs are re-based onto USD
	eur, ok := c.GetRate("EUR")
	require.True(t, ok)
	assert.InDelta(t, 0.5, eur.Rate, 1e-9)

	usd, ok := c.GetRate("USD")
	require.True(t, ok)
	assert.Equal(t, float64(1), usd.Rate)
}

func TestRefresh_EmptyStoreIsAFailure(t *testing.T) {
	c := New(&fakeStore{}, &fakeRemote{}, newMemKV(), testConfig())

	err := c.Refresh(context.Background())
	assert.ErrorIs(t, err, entities.ErrRefreshFailed)
}

func TestRefresh_WritesSnapshot(t *testing.T) {
	kv := newMemKV()
	store := &fakeStore{obs: usdObservations(map[string]float64{"EUR": 0.92}, time.Now())}
	c := New(store, &fakeRemote{}, kv, testConfig())

	require.NoError(t, c.Refresh(context.Background()))

	raw, err := kv.Get(context.Background(), snapshotKey)
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	var snap snapshot
	require.NoError(t, json.Unmarshal([]byte(raw), &snap))
	assert.Contains(t, snap.Rates, "EUR")
	assert.Contains(t, snap.Rates, "USD")
	assert.False(t, snap.LastUpdated.IsZero())
}

func TestInitialize_AdoptsFreshSnapshot(t *testing.T) {
	kv := newMemKV()
	now := time.Now()

	raw, err := json.Marshal(snapshot{
		Rates: map[string]entities.CurrencyRate{
			"USD": {Code: "USD", Name: "Dollar américain", Symbol: "$", Rate: 1, LastUpdated: now},
			"GNF": {Code: "GNF", Name: "Franc guinéen", Symbol: "FCFA", Rate: 9999, LastUpdated: now},
		},
		LastUpdated: now,
	})
	require.NoError(t, err)
	require.NoError(t, kv.Set(context.Background(), snapshotKey, string(raw)))

	remote := &fakeRemote{}
	c := New(&fakeStore{}, remote, kv, testConfig())
	c.Initialize(context.Background())

	gnf, ok := c.GetRate("GNF")
	require.True(t, ok)
	assert.Equal(t, float64(9999), gnf.Rate)
	assert.False(t, c.IsStale())
	assert.Equal(t, int32(0), atomic.LoadInt32(&remote.calls),
		"a fresh snapshot must not trigger a refresh")
}

func TestInitialize_StaleSnapshotSeedsDefaultsAndRefreshes(t *testing.T) {
	kv := newMemKV()
	old := time.Now().Add(-48 * time.Hour)

	raw, err := json.Marshal(snapshot{
		Rates: map[string]entities.CurrencyRate{
			"USD": {Code: "USD", Rate: 1, LastUpdated: old},
		},
		LastUpdated: old,
	})
	require.NoError(t, err)
	require.NoError(t, kv.Set(context.Background(), snapshotKey, string(raw)))

	remote := &fakeRemote{}
	store := &fakeStore{obs: usdObservations(map[string]float64{"EUR": 0.95}, time.Now())}
	c := New(store, remote, kv, testConfig())
	c.Initialize(context.Background())

	require.Eventually(t, func() bool {
		return !c.IsStale()
	}, time.Second, 10*time.Millisecond, "async refresh should complete")

	eur, ok := c.GetRate("EUR")
	require.True(t, ok)
	assert.Equal(t, 0.95, eur.Rate)
}

func TestScheduler_RefreshesStaleCache(t *testing.T) {
	cfg := testConfig()
	cfg.Rates.CheckInterval = 10 * time.Millisecond

	remote := &fakeRemote{}
	store := &fakeStore{obs: usdObservations(map[string]float64{"EUR": 0.92}, time.Now())}
	c := New(store, remote, newMemKV(), cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.StartScheduler(ctx)

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&remote.calls) >= 1 && !c.IsStale()
	}, time.Second, 10*time.Millisecond)

	// once fresh, the scheduler must stop triggering refreshes
	calls := atomic.LoadInt32(&remote.calls)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, calls, atomic.LoadInt32(&remote.calls))
}
