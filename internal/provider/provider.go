// Package provider turns unreliable upstream market-data and forex sources
// into two uniform contracts: a rate chain that always yields a rate table,
// and per-market price chains that yield an optional price. Upstream
// failures are logged and absorbed here; they never reach callers.
package provider

import (
	"context"
	"errors"
	"math"
	"time"
)

var (
	// ErrNotSupported is returned by a source that lacks a capability,
	// e.g. a current-only rate API asked for a historical date.
	ErrNotSupported = errors.New("not supported by source")

	// ErrNoData is returned when the upstream answered but had nothing
	// for the requested code or date.
	ErrNoData = errors.New("no data")
)

// RateSource fetches exchange-rate tables: units of each currency per one
// unit of base.
type RateSource interface {
	// Name returns the source's display name (e.g., "ExchangeRate-API").
	Name() string

	// LatestRates returns the current rate table for base.
	LatestRates(ctx context.Context, base string) (map[string]float64, error)

	// HistoricalRates returns the rate table for base on day.
	HistoricalRates(ctx context.Context, base string, day time.Time) (map[string]float64, error)
}

// PriceSource fetches prices for instrument codes of a single market.
type PriceSource interface {
	// Name returns the source's display name (e.g., "Yahoo Finance").
	Name() string

	// Quote returns the latest price for code.
	Quote(ctx context.Context, code string) (float64, error)

	// DailyClose returns the close of the first daily bar within [from, to].
	DailyClose(ctx context.Context, code string, from, to time.Time) (float64, error)
}

func validPrice(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
