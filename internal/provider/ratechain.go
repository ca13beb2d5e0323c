package provider

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"assettracker/internal/models"
)

// DefaultRates is the last-resort USD-based table used when no source
// answers and nothing is cached.
var DefaultRates = map[string]float64{"USD": 1.0, "CNY": 7.0, "HKD": 7.8}

// RateResult is a best-effort rate table with a description of how it was
// obtained.
type RateResult struct {
	Rates  map[string]float64
	Source string
	Origin models.RateOrigin
	// Substituted is set when a historical request was answered with
	// current rates.
	Substituted bool
}

// Status returns the result's provenance for recording on a day.
func (r RateResult) Status() *models.RateStatus {
	return &models.RateStatus{Origin: r.Origin, Source: r.Source, Substituted: r.Substituted}
}

// RateChain tries rate sources in priority order behind a RateCache.
// Lookups for the same key are serialised so concurrent callers do not
// issue duplicate upstream requests.
type RateChain struct {
	sources  []RateSource
	cache    *RateCache
	logger   *zap.SugaredLogger
	required []string

	mu       sync.Mutex
	keyLocks map[string]*sync.Mutex
}

// NewRateChain creates a chain over sources, tried in the given order.
func NewRateChain(cache *RateCache, logger *zap.SugaredLogger, sources ...RateSource) *RateChain {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &RateChain{
		sources:  sources,
		cache:    cache,
		logger:   logger,
		keyLocks: make(map[string]*sync.Mutex),
	}
}

// WithRequired makes a table missing any of quotes count as a source
// failure, so the next source is tried instead of caching it.
func (c *RateChain) WithRequired(quotes ...string) *RateChain {
	c.required = make([]string, 0, len(quotes))
	for _, q := range quotes {
		c.required = append(c.required, strings.ToUpper(q))
	}
	return c
}

// Rates returns the rate table for base. An empty asOf asks for current
// rates; otherwise asOf is a YYYY-MM-DD date. It never fails: exhausted
// sources fall back to the stale cache and then to DefaultRates.
func (c *RateChain) Rates(ctx context.Context, base, asOf string) RateResult {
	base = strings.ToUpper(base)
	if asOf == "" {
		return c.current(ctx, base)
	}

	day, err := time.Parse(models.DateLayout, asOf)
	if err != nil {
		c.logger.Warnw("invalid rate date, using current rates", "date", asOf, "error", err)
		res := c.current(ctx, base)
		res.Substituted = true
		return res
	}

	if res, ok := c.historical(ctx, base, asOf, day); ok {
		return res
	}

	c.logger.Warnw("no historical rates for date, using current rates", "base", base, "date", asOf)
	res := c.current(ctx, base)
	res.Substituted = true
	return res
}

func (c *RateChain) historical(ctx context.Context, base, asOf string, day time.Time) (RateResult, bool) {
	key := base + "@" + asOf
	unlock := c.lock(key)
	defer unlock()

	if rates, ok := c.cache.Fresh(key); ok {
		return RateResult{Rates: rates, Source: "cache", Origin: models.OriginCache}, true
	}

	for _, src := range c.sources {
		raw, err := src.HistoricalRates(ctx, base, day)
		if errors.Is(err, ErrNotSupported) {
			continue
		}
		rates, err := checkRates(base, raw, c.required, err)
		if err != nil {
			c.logger.Debugw("historical rate source failed", "source", src.Name(), "base", base, "date", asOf, "error", err)
			continue
		}
		c.cache.Put(key, rates, true)
		return RateResult{Rates: rates, Source: src.Name(), Origin: models.OriginProvider}, true
	}
	return RateResult{}, false
}

func (c *RateChain) current(ctx context.Context, base string) RateResult {
	unlock := c.lock(base)
	defer unlock()

	if rates, ok := c.cache.Fresh(base); ok {
		return RateResult{Rates: rates, Source: "cache", Origin: models.OriginCache}
	}

	for _, src := range c.sources {
		raw, err := src.LatestRates(ctx, base)
		if errors.Is(err, ErrNotSupported) {
			continue
		}
		rates, err := checkRates(base, raw, c.required, err)
		if err != nil {
			c.logger.Debugw("rate source failed", "source", src.Name(), "base", base, "error", err)
			continue
		}
		c.cache.Put(base, rates, false)
		return RateResult{Rates: rates, Source: src.Name(), Origin: models.OriginProvider}
	}

	if rates, fetchedAt, ok := c.cache.Last(base); ok {
		c.logger.Warnw("all rate sources failed, using stale cached rates", "base", base, "fetched_at", fetchedAt)
		return RateResult{Rates: rates, Source: "cache", Origin: models.OriginStaleCache}
	}

	c.logger.Errorw("all rate sources failed and nothing cached, using default rates", "base", base)
	return RateResult{Rates: defaultRates(base), Source: "default", Origin: models.OriginDefaultTable}
}

// lock serialises lookups per cache key.
func (c *RateChain) lock(key string) func() {
	c.mu.Lock()
	l, ok := c.keyLocks[key]
	if !ok {
		l = &sync.Mutex{}
		c.keyLocks[key] = l
	}
	c.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// checkRates drops unusable entries and pins base to 1.0. A table with no
// usable quote currency, or missing a required one, is a failure.
func checkRates(base string, raw map[string]float64, required []string, err error) (map[string]float64, error) {
	if err != nil {
		return nil, err
	}
	rates := make(map[string]float64, len(raw)+1)
	for cur, v := range raw {
		cur = strings.ToUpper(cur)
		if cur == base || !validPrice(v) {
			continue
		}
		rates[cur] = v
	}
	if len(rates) == 0 {
		return nil, fmt.Errorf("empty rate table for %s", base)
	}
	for _, cur := range required {
		if _, ok := rates[cur]; !ok && cur != base {
			return nil, fmt.Errorf("rate table for %s has no %s", base, cur)
		}
	}
	rates[base] = 1.0
	return rates, nil
}

// defaultRates re-expresses DefaultRates relative to base.
func defaultRates(base string) map[string]float64 {
	pivot, ok := DefaultRates[base]
	if !ok {
		return map[string]float64{base: 1.0}
	}
	rates := maps.Clone(DefaultRates)
	for cur, v := range rates {
		rates[cur] = v / pivot
	}
	rates[base] = 1.0
	return rates
}
