package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/224solutions/exchange/deploy/config"
	"github.com/224solutions/exchange/internal/entities"
	"github.com/224solutions/exchange/internal/rates/metrics"
	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"
)

const snapshotKey = "rates:snapshot"

// Cache holds the in-process map of USD-quoted exchange rates. It is backed
// by a durable snapshot in a KV slot so it survives restarts, refreshed from
// the remote rate source no more often than the staleness window allows, and
// guarded against duplicate concurrent refreshes.
type Cache struct {
	store  Store
	remote Remote
	kv     KV

	staleAfter    time.Duration
	remoteTimeout time.Duration
	checkInterval time.Duration

	mu          sync.RWMutex
	rates       map[string]entities.CurrencyRate
	lastUpdated time.Time

	sf singleflight.Group
}

type snapshot struct {
	Rates       map[string]entities.CurrencyRate `json:"rates"`
	LastUpdated time.Time                        `json:"lastUpdated"`
}

func New(store Store, remote Remote, kv KV, cfg *config.Config) *Cache {
	return &Cache{
		store:         store,
		remote:        remote,
		kv:            kv,
		staleAfter:    cfg.Rates.StaleAfter,
		remoteTimeout: cfg.Rates.RemoteTimeout,
		checkInterval: cfg.Rates.CheckInterval,
	}
}

// Initialize adopts the durable snapshot when it is still within the
// staleness window. Otherwise it seeds the hard-coded defaults with a zero
// timestamp and fires an asynchronous refresh.
func (c *Cache) Initialize(ctx context.Context) {
	const op = "cache.Initialize"

	c.mu.Lock()
	if c.rates != nil {
		c.mu.Unlock()
		return
	}

	if snap, err := c.loadSnapshot(ctx); err == nil && time.Since(snap.LastUpdated) <= c.staleAfter {
		c.rates = snap.Rates
		c.lastUpdated = snap.LastUpdated
		c.mu.Unlock()

		slog.Info("rate snapshot adopted", "currencies", len(snap.Rates), "lastUpdated", snap.LastUpdated)
		metrics.SetCachedCurrencies(len(snap.Rates))
		return
	}

	c.rates = defaultRates()
	c.lastUpdated = time.Time{}
	seeded := len(c.rates)
	c.mu.Unlock()

	slog.Info("rate cache seeded with defaults, scheduling refresh")
	metrics.SetCachedCurrencies(seeded)

	go func() {
		if err := c.Refresh(context.WithoutCancel(ctx)); err != nil {
			slog.Warn("initial rate refresh failed", "op", op, "error", err)
		}
	}()
}

// SupportedCurrencies returns all cached entries sorted by display name.
// The cache is seeded lazily, so the bootstrap set is always available.
func (c *Cache) SupportedCurrencies() []entities.CurrencyRate {
	c.ensureSeeded()

	c.mu.RLock()
	out := make([]entities.CurrencyRate, 0, len(c.rates))
	for _, r := range c.rates {
		out = append(out, r)
	}
	c.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	return out
}

// GetRate looks up a single currency, case-insensitively. The second return
// value is false for unsupported codes.
func (c *Cache) GetRate(code string) (entities.CurrencyRate, bool) {
	c.ensureSeeded()

	c.mu.RLock()
	defer c.mu.RUnlock()

	r, ok := c.rates[strings.ToUpper(code)]
	return r, ok
}

// IsStale reports whether the cache has never completed a refresh or the
// last one is older than the staleness window.
func (c *Cache) IsStale() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.lastUpdated.IsZero() || time.Since(c.lastUpdated) > c.staleAfter
}

// Refresh triggers a remote refresh and reloads the cache from the
// persistent rate store. At most one refresh is in flight at a time;
// concurrent callers join it and share its outcome.
func (c *Cache) Refresh(ctx context.Context) error {
	_, err, _ := c.sf.Do("refresh", func() (interface{}, error) {
		return nil, c.refresh(ctx)
	})
	return err
}

func (c *Cache) refresh(ctx context.Context) error {
	const op = "cache.refresh"

	started := time.Now()

	ctx, cancel := context.WithTimeout(ctx, c.remoteTimeout)
	defer cancel()

	if err := c.remote.Refresh(ctx); err != nil {
		slog.Error("remote rate refresh trigger failed", "op", op, "error", err)
		metrics.ObserveRefresh("failure", time.Since(started))
		return errors.Wrap(entities.ErrRefreshFailed, op)
	}

	if err := c.loadFromStore(ctx); err != nil {
		metrics.ObserveRefresh("failure", time.Since(started))
		return errors.Wrap(err, op)
	}

	metrics.ObserveRefresh("success", time.Since(started))
	return nil
}

// loadFromStore reads the most recent observation per currency pair, maps
// rows into cache entries through the static metadata table, forces USD=1
// and atomically swaps the in-memory map before re-serializing the snapshot.
func (c *Cache) loadFromStore(ctx context.Context) error {
	const op = "cache.loadFromStore"

	observations, err := c.store.LatestObservations(ctx)
	if err != nil {
		slog.Error("persistent rate store unavailable", "op", op, "error", err)
		return errors.Wrap(entities.ErrRefreshFailed, op)
	}

	now := time.Now()

	fresh := make(map[string]entities.CurrencyRate, len(observations)+1)
	for _, obs := range observations {
		base := strings.ToUpper(obs.BaseCurrency)
		target := strings.ToUpper(obs.TargetCurrency)

		var code string
		var rate float64
		switch {
		case base == "USD":
			code, rate = target, obs.Rate
		case target == "USD" && obs.Rate != 0:
			code, rate = base, 1/obs.Rate
		default:
			continue
		}

		// rows come newest first, keep only the most recent per pair
		if _, seen := fresh[code]; seen {
			continue
		}

		meta := entities.CurrencyInfo(code)
		fresh[code] = entities.CurrencyRate{
			Code:        code,
			Name:        meta.Name,
			Symbol:      meta.Symbol,
			Rate:        rate,
			LastUpdated: obs.LastUpdated,
		}
	}

	if len(fresh) == 0 {
		slog.Error("persistent rate store returned no usable rows", "op", op)
		return errors.Wrap(entities.ErrRefreshFailed, op)
	}

	usdMeta := entities.CurrencyInfo("USD")
	fresh["USD"] = entities.CurrencyRate{
		Code:        "USD",
		Name:        usdMeta.Name,
		Symbol:      usdMeta.Symbol,
		Rate:        1,
		LastUpdated: now,
	}

	c.mu.Lock()
	c.rates = fresh
	c.lastUpdated = now
	c.mu.Unlock()

	metrics.SetCachedCurrencies(len(fresh))
	slog.Info("rate cache refreshed", "currencies", len(fresh))

	if err := c.saveSnapshot(ctx, snapshot{Rates: fresh, LastUpdated: now}); err != nil {
		// snapshot is an optimization, a write failure must not fail the refresh
		slog.Warn("rate snapshot write failed", "op", op, "error", err)
	}

	return nil
}

// ensureSeeded guarantees the map is never nil for read paths without
// touching the network or the KV slot.
func (c *Cache) ensureSeeded() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.rates == nil {
		c.rates = defaultRates()
	}
}

func (c *Cache) loadSnapshot(ctx context.Context) (snapshot, error) {
	const op = "cache.loadSnapshot"

	raw, err := c.kv.Get(ctx, snapshotKey)
	if err != nil {
		return snapshot{}, errors.Wrap(err, op)
	}

	var snap snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return snapshot{}, errors.Wrap(err, op)
	}

	if len(snap.Rates) == 0 {
		return snapshot{}, errors.Wrap(entities.ErrRateNotFound, op)
	}

	return snap, nil
}

func (c *Cache) saveSnapshot(ctx context.Context, snap snapshot) error {
	const op = "cache.saveSnapshot"

	raw, err := json.Marshal(snap)
	if err != nil {
		return errors.Wrap(err, op)
	}

	if err := c.kv.Set(ctx, snapshotKey, string(raw)); err != nil {
		return errors.Wrap(err, op)
	}

	return nil
}

// defaultRates is the hard-coded bootstrap set served until a refresh
// succeeds. Values are approximate and marked infinitely stale.
func defaultRates() map[string]entities.CurrencyRate {
	seed := map[string]float64{
		"USD": 1,
		"EUR": 0.92,
		"GBP": 0.79,
		"CAD": 1.36,
		"GNF": 8600,
		"XOF": 600,
		"NGN": 1550,
		"CNY": 7.25,
	}

	rates := make(map[string]entities.CurrencyRate, len(seed))
	for code, rate := range seed {
		meta := entities.CurrencyInfo(code)
		rates[code] = entities.CurrencyRate{
			Code:   code,
			Name:   meta.Name,
			Symbol: meta.Symbol,
			Rate:   rate,
		}
	}

	return rates
}
