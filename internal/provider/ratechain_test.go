package provider

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"assettracker/internal/models"
)

// --- mock rate source ---

type mockRateSource struct {
	name         string
	latestFn     func(base string) (map[string]float64, error)
	historicalFn func(base string, day time.Time) (map[string]float64, error)
	latestCalls  atomic.Int32
}

func (m *mockRateSource) Name() string { return m.name }

func (m *mockRateSource) LatestRates(_ context.Context, base string) (map[string]float64, error) {
	m.latestCalls.Add(1)
	if m.latestFn != nil {
		return m.latestFn(base)
	}
	return nil, ErrNotSupported
}

func (m *mockRateSource) HistoricalRates(_ context.Context, base string, day time.Time) (map[string]float64, error) {
	if m.historicalFn != nil {
		return m.historicalFn(base, day)
	}
	return nil, ErrNotSupported
}

func fixedRates(cny, hkd float64) func(string) (map[string]float64, error) {
	return func(string) (map[string]float64, error) {
		return map[string]float64{"CNY": cny, "HKD": hkd}, nil
	}
}

func failing(string) (map[string]float64, error) { return nil, errors.New("boom") }

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestChain(clock *fakeClock, sources ...RateSource) *RateChain {
	return NewRateChain(NewRateCache(time.Hour, clock.Now), zap.NewNop().Sugar(), sources...)
}

func TestRateChain_FirstValidSourceWinsAndIsCached(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	broken := &mockRateSource{name: "broken", latestFn: failing}
	good := &mockRateSource{name: "good", latestFn: fixedRates(7.2, 7.8)}
	unused := &mockRateSource{name: "unused", latestFn: fixedRates(1, 1)}
	chain := newTestChain(clock, broken, good, unused)

	res := chain.Rates(context.Background(), "usd", "")
	assert.Equal(t, "good", res.Source)
	assert.Equal(t, models.OriginProvider, res.Origin)
	assert.False(t, res.Substituted)
	assert.Equal(t, map[string]float64{"USD": 1.0, "CNY": 7.2, "HKD": 7.8}, res.Rates)
	assert.EqualValues(t, 0, unused.latestCalls.Load())

	clock.Advance(59 * time.Minute)
	res = chain.Rates(context.Background(), "USD", "")
	assert.Equal(t, models.OriginCache, res.Origin)
	assert.EqualValues(t, 1, good.latestCalls.Load())

	clock.Advance(2 * time.Minute)
	res = chain.Rates(context.Background(), "USD", "")
	assert.Equal(t, models.OriginProvider, res.Origin)
	assert.EqualValues(t, 2, good.latestCalls.Load())
}

func TestRateChain_CachedMapIsNotAliased(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	chain := newTestChain(clock, &mockRateSource{name: "good", latestFn: fixedRates(7.2, 7.8)})

	first := chain.Rates(context.Background(), "USD", "")
	first.Rates["CNY"] = 0

	second := chain.Rates(context.Background(), "USD", "")
	assert.Equal(t, 7.2, second.Rates["CNY"])
}

func TestRateChain_StaleCacheThenDefaults(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	var fail atomic.Bool
	src := &mockRateSource{name: "flaky", latestFn: func(base string) (map[string]float64, error) {
		if fail.Load() {
			return nil, errors.New("down")
		}
		return map[string]float64{"CNY": 7.1, "HKD": 7.8}, nil
	}}
	chain := newTestChain(clock, src)

	chain.Rates(context.Background(), "USD", "")
	fail.Store(true)
	clock.Advance(2 * time.Hour)

	res := chain.Rates(context.Background(), "USD", "")
	assert.Equal(t, models.OriginStaleCache, res.Origin)
	assert.Equal(t, 7.1, res.Rates["CNY"])

	empty := newTestChain(clock, &mockRateSource{name: "down", latestFn: failing})
	res = empty.Rates(context.Background(), "USD", "")
	assert.Equal(t, models.OriginDefaultTable, res.Origin)
	assert.Equal(t, map[string]float64{"USD": 1.0, "CNY": 7.0, "HKD": 7.8}, res.Rates)
}

func TestRateChain_RejectsUnusableTables(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	empty := &mockRateSource{name: "empty", latestFn: func(string) (map[string]float64, error) {
		return map[string]float64{}, nil
	}}
	negative := &mockRateSource{name: "negative", latestFn: func(string) (map[string]float64, error) {
		return map[string]float64{"USD": 1, "CNY": -7}, nil
	}}
	good := &mockRateSource{name: "good", latestFn: fixedRates(7.2, 7.8)}

	res := newTestChain(clock, empty, negative, good).Rates(context.Background(), "USD", "")
	assert.Equal(t, "good", res.Source)
}

func TestRateChain_HistoricalCachedPermanently(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	var calls atomic.Int32
	hist := &mockRateSource{name: "history", historicalFn: func(base string, day time.Time) (map[string]float64, error) {
		calls.Add(1)
		assert.Equal(t, "2024-03-01", day.Format(models.DateLayout))
		return map[string]float64{"CNY": 7.19, "HKD": 7.82}, nil
	}}
	chain := newTestChain(clock, hist)

	res := chain.Rates(context.Background(), "USD", "2024-03-01")
	assert.Equal(t, models.OriginProvider, res.Origin)
	assert.False(t, res.Substituted)
	assert.Equal(t, 7.19, res.Rates["CNY"])

	clock.Advance(30 * 24 * time.Hour)
	res = chain.Rates(context.Background(), "USD", "2024-03-01")
	assert.Equal(t, models.OriginCache, res.Origin)
	assert.EqualValues(t, 1, calls.Load())
}

func TestRateChain_HistoricalFallsBackToCurrent(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	noHistory := &mockRateSource{name: "history", historicalFn: func(string, time.Time) (map[string]float64, error) {
		return nil, ErrNoData
	}}
	current := &mockRateSource{name: "current", latestFn: fixedRates(7.25, 7.81)}
	chain := newTestChain(clock, noHistory, current)

	res := chain.Rates(context.Background(), "USD", "2020-01-01")
	assert.True(t, res.Substituted)
	assert.Equal(t, "current", res.Source)
	assert.Equal(t, 7.25, res.Rates["CNY"])

	status := res.Status()
	assert.True(t, status.Substituted)
	assert.Equal(t, models.OriginProvider, status.Origin)
}

func TestRateChain_ConcurrentLookupsShareOneFetch(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	src := &mockRateSource{name: "slow", latestFn: func(string) (map[string]float64, error) {
		time.Sleep(20 * time.Millisecond)
		return map[string]float64{"CNY": 7.2, "HKD": 7.8}, nil
	}}
	chain := newTestChain(clock, src)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			chain.Rates(context.Background(), "USD", "")
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 1, src.latestCalls.Load())
}

func TestDefaultRates_Rebased(t *testing.T) {
	hkd := defaultRates("HKD")
	require.Equal(t, 1.0, hkd["HKD"])
	assert.InDelta(t, 1/7.8, hkd["USD"], 1e-12)
	assert.InDelta(t, 7.0/7.8, hkd["CNY"], 1e-12)

	assert.Equal(t, map[string]float64{"EUR": 1.0}, defaultRates("EUR"))
}

func TestRateChain_IncompleteTableFallsThrough(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	partial := &mockRateSource{name: "partial", latestFn: func(string) (map[string]float64, error) {
		return map[string]float64{"CNY": 7.2, "EUR": 0.9}, nil
	}}
	good := &mockRateSource{name: "good", latestFn: fixedRates(7.1, 7.8)}
	chain := newTestChain(clock, partial, good).WithRequired(RateQuotes...)

	res := chain.Rates(context.Background(), "USD", "")
	assert.Equal(t, "good", res.Source)
	assert.Equal(t, 7.8, res.Rates["HKD"])

	alone := newTestChain(clock, &mockRateSource{name: "partial", latestFn: partial.latestFn}).WithRequired("cny", "hkd")
	res = alone.Rates(context.Background(), "USD", "")
	assert.Equal(t, models.OriginDefaultTable, res.Origin)
	assert.Equal(t, DefaultRates["HKD"], res.Rates["HKD"])

	// The partial table was never cached.
	res = alone.Rates(context.Background(), "USD", "")
	assert.Equal(t, models.OriginDefaultTable, res.Origin)
}
