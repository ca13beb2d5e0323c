package provider

import (
	"maps"
	"sync"
	"time"
)

// RateCache holds rate tables by lookup key. Entries written as permanent
// never expire; others are fresh for the TTL and then kept as stale
// fallbacks.
type RateCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]rateEntry
}

type rateEntry struct {
	rates     map[string]float64
	fetchedAt time.Time
	permanent bool
}

// NewRateCache creates a cache with the given TTL. A nil clock uses time.Now.
func NewRateCache(ttl time.Duration, now func() time.Time) *RateCache {
	if now == nil {
		now = time.Now
	}
	return &RateCache{ttl: ttl, now: now, entries: make(map[string]rateEntry)}
}

// Fresh returns a copy of the entry for key if it has not expired.
func (c *RateCache) Fresh(key string) (map[string]float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if !e.permanent && c.now().Sub(e.fetchedAt) >= c.ttl {
		return nil, false
	}
	return maps.Clone(e.rates), true
}

// Last returns a copy of the entry for key regardless of age.
func (c *RateCache) Last(key string) (map[string]float64, time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, time.Time{}, false
	}
	return maps.Clone(e.rates), e.fetchedAt, true
}

// Put stores a copy of rates under key, stamped with the current time.
func (c *RateCache) Put(key string, rates map[string]float64, permanent bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = rateEntry{rates: maps.Clone(rates), fetchedAt: c.now(), permanent: permanent}
}
