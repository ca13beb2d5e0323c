package provider

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// YahooForex fetches exchange rates from Yahoo Finance forex tickers such
// as USDCNY=X. A table is returned only if every quote currency resolved.
type YahooForex struct {
	fetch   *fetcher
	baseURL string
	quotes  []string
	window  time.Duration
}

// NewYahooForex creates a Yahoo rate source for the given quote currencies.
// Historical lookups search [day, day+window] for the first close.
func NewYahooForex(httpClient *http.Client, limiter *rate.Limiter, baseURL string, quotes []string, window time.Duration) *YahooForex {
	if baseURL == "" {
		baseURL = YahooChartURL
	}
	if window <= 0 {
		window = defaultHistoryWindow
	}
	return &YahooForex{fetch: newFetcher(httpClient, limiter), baseURL: baseURL, quotes: quotes, window: window}
}

// Name returns the provider's display name.
func (f *YahooForex) Name() string { return "Yahoo Finance FX" }

// LatestRates returns the current regular market price of each pair.
func (f *YahooForex) LatestRates(ctx context.Context, base string) (map[string]float64, error) {
	return f.collect(base, func(ticker string) (float64, error) {
		return chartQuote(ctx, f.fetch, f.baseURL, ticker)
	})
}

// HistoricalRates returns the first daily close of each pair on or after day.
func (f *YahooForex) HistoricalRates(ctx context.Context, base string, day time.Time) (map[string]float64, error) {
	return f.collect(base, func(ticker string) (float64, error) {
		return chartFirstClose(ctx, f.fetch, f.baseURL, ticker, day, day.Add(f.window))
	})
}

func (f *YahooForex) collect(base string, fetchRate func(ticker string) (float64, error)) (map[string]float64, error) {
	base = strings.ToUpper(base)
	rates := map[string]float64{base: 1.0}
	for _, q := range f.quotes {
		q = strings.ToUpper(q)
		if q == base {
			continue
		}
		rate, err := fetchRate(base + q + "=X")
		if err != nil {
			return nil, fmt.Errorf("forex %s/%s: %w", base, q, err)
		}
		rates[q] = rate
	}
	return rates, nil
}
