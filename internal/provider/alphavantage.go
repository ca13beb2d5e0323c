package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"assettracker/internal/models"
)

// AlphaVantageURL is the Alpha Vantage query endpoint.
const AlphaVantageURL = "https://www.alphavantage.co/query"

type avFXDailyResponse struct {
	Series       map[string]avBar `json:"Time Series FX (Daily)"`
	Note         string           `json:"Note"`
	Information  string           `json:"Information"`
	ErrorMessage string           `json:"Error Message"`
}

type avBar struct {
	Close string `json:"4. close"`
}

// AlphaVantage serves historical rates from the FX_DAILY series. Each
// pair's series is fetched once and cached, since a single response covers
// about a hundred trading days.
type AlphaVantage struct {
	fetch   *fetcher
	baseURL string
	apiKey  string
	quotes  []string
	series  *cache.Cache
}

// NewAlphaVantage creates an Alpha Vantage source for the given quote currencies.
func NewAlphaVantage(httpClient *http.Client, limiter *rate.Limiter, baseURL, apiKey string, quotes []string) *AlphaVantage {
	if baseURL == "" {
		baseURL = AlphaVantageURL
	}
	return &AlphaVantage{
		fetch:   newFetcher(httpClient, limiter),
		baseURL: baseURL,
		apiKey:  apiKey,
		quotes:  quotes,
		series:  cache.New(time.Hour, 2*time.Hour),
	}
}

// Name returns the provider's display name.
func (a *AlphaVantage) Name() string { return "Alpha Vantage" }

// LatestRates is served by other sources.
func (a *AlphaVantage) LatestRates(context.Context, string) (map[string]float64, error) {
	return nil, ErrNotSupported
}

// HistoricalRates returns the close of each pair on day. Every quote
// currency must have a bar for the date.
func (a *AlphaVantage) HistoricalRates(ctx context.Context, base string, day time.Time) (map[string]float64, error) {
	base = strings.ToUpper(base)
	date := day.Format(models.DateLayout)

	rates := map[string]float64{base: 1.0}
	for _, q := range a.quotes {
		q = strings.ToUpper(q)
		if q == base {
			continue
		}
		series, err := a.dailySeries(ctx, base, q)
		if err != nil {
			return nil, err
		}
		bar, ok := series[date]
		if !ok {
			return nil, fmt.Errorf("FX_DAILY %s/%s on %s: %w", base, q, date, ErrNoData)
		}
		v, err := decimal.NewFromString(bar.Close)
		if err != nil {
			return nil, fmt.Errorf("FX_DAILY %s/%s on %s: bad close %q: %w", base, q, date, bar.Close, err)
		}
		rates[q] = v.InexactFloat64()
	}
	return rates, nil
}

func (a *AlphaVantage) dailySeries(ctx context.Context, from, to string) (map[string]avBar, error) {
	key := from + to
	if cached, ok := a.series.Get(key); ok {
		return cached.(map[string]avBar), nil
	}

	q := url.Values{
		"function":    {"FX_DAILY"},
		"from_symbol": {from},
		"to_symbol":   {to},
		"outputsize":  {"compact"},
		"apikey":      {a.apiKey},
	}
	var resp avFXDailyResponse
	if err := a.fetch.getJSON(ctx, a.baseURL+"?"+q.Encode(), nil, &resp); err != nil {
		return nil, fmt.Errorf("FX_DAILY %s/%s: %w", from, to, err)
	}
	switch {
	case resp.ErrorMessage != "":
		return nil, fmt.Errorf("FX_DAILY %s/%s: %s", from, to, resp.ErrorMessage)
	case resp.Note != "":
		return nil, fmt.Errorf("FX_DAILY %s/%s: %s", from, to, resp.Note)
	case resp.Information != "":
		return nil, fmt.Errorf("FX_DAILY %s/%s: %s", from, to, resp.Information)
	case len(resp.Series) == 0:
		return nil, fmt.Errorf("FX_DAILY %s/%s: %w", from, to, ErrNoData)
	}

	a.series.Set(key, resp.Series, cache.DefaultExpiration)
	return resp.Series, nil
}
