package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// ExchangeRateAPIURL is the open access ExchangeRate-API endpoint.
const ExchangeRateAPIURL = "https://open.er-api.com/v6/latest"

type erAPIResponse struct {
	Result    string             `json:"result"`
	ErrorType string             `json:"error-type"`
	BaseCode  string             `json:"base_code"`
	Rates     map[string]float64 `json:"rates"`
}

// ExchangeRateAPI fetches current rates from open.er-api.com. It has no
// historical data.
type ExchangeRateAPI struct {
	fetch   *fetcher
	baseURL string
}

// NewExchangeRateAPI creates an ExchangeRate-API source.
func NewExchangeRateAPI(httpClient *http.Client, limiter *rate.Limiter, baseURL string) *ExchangeRateAPI {
	if baseURL == "" {
		baseURL = ExchangeRateAPIURL
	}
	return &ExchangeRateAPI{fetch: newFetcher(httpClient, limiter), baseURL: baseURL}
}

// Name returns the provider's display name.
func (a *ExchangeRateAPI) Name() string { return "ExchangeRate-API" }

// LatestRates returns the full table for base.
func (a *ExchangeRateAPI) LatestRates(ctx context.Context, base string) (map[string]float64, error) {
	base = strings.ToUpper(base)

	var resp erAPIResponse
	if err := a.fetch.getJSON(ctx, a.baseURL+"/"+url.PathEscape(base), nil, &resp); err != nil {
		return nil, fmt.Errorf("exchange rates for %s: %w", base, err)
	}
	if resp.Result != "success" {
		return nil, fmt.Errorf("exchange rates for %s: result %q (%s)", base, resp.Result, resp.ErrorType)
	}
	if len(resp.Rates) == 0 {
		return nil, fmt.Errorf("exchange rates for %s: %w", base, ErrNoData)
	}
	return resp.Rates, nil
}

// HistoricalRates is not offered by the open endpoint.
func (a *ExchangeRateAPI) HistoricalRates(context.Context, string, time.Time) (map[string]float64, error) {
	return nil, ErrNotSupported
}
