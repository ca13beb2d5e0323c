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

// YahooChartURL is the public Yahoo Finance v8 chart endpoint.
const YahooChartURL = "https://query1.finance.yahoo.com/v8/finance/chart"

// yahooChartResponse is the top-level Yahoo Finance chart response.
type yahooChartResponse struct {
	Chart struct {
		Result []yahooChartResult `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// yahooChartResult is a single chart series.
type yahooChartResult struct {
	Meta struct {
		Symbol             string  `json:"symbol"`
		Currency           string  `json:"currency"`
		RegularMarketPrice float64 `json:"regularMarketPrice"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Close []*float64 `json:"close"`
		} `json:"quote"`
	} `json:"indicators"`
}

// fetchChart loads the chart for ticker with the given query.
func fetchChart(ctx context.Context, f *fetcher, baseURL, ticker string, query url.Values) (*yahooChartResult, error) {
	u := baseURL + "/" + url.PathEscape(ticker) + "?" + query.Encode()

	var chartResp yahooChartResponse
	if err := f.getJSON(ctx, u, nil, &chartResp); err != nil {
		return nil, fmt.Errorf("chart for %s: %w", ticker, err)
	}
	if chartResp.Chart.Error != nil {
		return nil, fmt.Errorf("chart error for %s: %s: %s", ticker, chartResp.Chart.Error.Code, chartResp.Chart.Error.Description)
	}
	if len(chartResp.Chart.Result) == 0 {
		return nil, fmt.Errorf("no chart results for %s: %w", ticker, ErrNoData)
	}
	return &chartResp.Chart.Result[0], nil
}

func chartQuote(ctx context.Context, f *fetcher, baseURL, ticker string) (float64, error) {
	res, err := fetchChart(ctx, f, baseURL, ticker, url.Values{"interval": {"1d"}, "range": {"1d"}})
	if err != nil {
		return 0, err
	}
	price := res.Meta.RegularMarketPrice
	if !validPrice(price) {
		return 0, fmt.Errorf("invalid price for %s: %f", ticker, price)
	}
	return price, nil
}

func chartFirstClose(ctx context.Context, f *fetcher, baseURL, ticker string, from, to time.Time) (float64, error) {
	res, err := fetchChart(ctx, f, baseURL, ticker, url.Values{
		"interval": {"1d"},
		"period1":  {fmt.Sprint(from.Unix())},
		"period2":  {fmt.Sprint(to.Unix())},
	})
	if err != nil {
		return 0, err
	}
	if len(res.Indicators.Quote) == 0 {
		return 0, fmt.Errorf("no bars for %s: %w", ticker, ErrNoData)
	}
	for _, c := range res.Indicators.Quote[0].Close {
		if c != nil && validPrice(*c) {
			return *c, nil
		}
	}
	return 0, fmt.Errorf("no closes for %s: %w", ticker, ErrNoData)
}

// YahooSource fetches stock prices from the Yahoo Finance chart API.
type YahooSource struct {
	fetch   *fetcher
	baseURL string
	symbol  func(code string) string
}

// NewYahooSource creates a Yahoo price source. symbol maps a market code to
// a Yahoo ticker.
func NewYahooSource(httpClient *http.Client, limiter *rate.Limiter, baseURL string, symbol func(code string) string) *YahooSource {
	if baseURL == "" {
		baseURL = YahooChartURL
	}
	return &YahooSource{fetch: newFetcher(httpClient, limiter), baseURL: baseURL, symbol: symbol}
}

// Name returns the provider's display name.
func (p *YahooSource) Name() string { return "Yahoo Finance" }

// Quote returns the regular market price.
func (p *YahooSource) Quote(ctx context.Context, code string) (float64, error) {
	return chartQuote(ctx, p.fetch, p.baseURL, p.symbol(code))
}

// DailyClose returns the first daily close within [from, to].
func (p *YahooSource) DailyClose(ctx context.Context, code string, from, to time.Time) (float64, error) {
	return chartFirstClose(ctx, p.fetch, p.baseURL, p.symbol(code), from, to)
}

// YahooAShareSymbol maps a six-digit A-share code to its Shanghai (.SS) or
// Shenzhen (.SZ) ticker. Codes that already carry a suffix pass through.
func YahooAShareSymbol(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if strings.Contains(code, ".") {
		return code
	}
	switch {
	case strings.HasPrefix(code, "5"), strings.HasPrefix(code, "6"), strings.HasPrefix(code, "9"):
		return code + ".SS"
	default:
		return code + ".SZ"
	}
}

// YahooHKSymbol maps an HKEX code to Yahoo's four-digit form, e.g. 00700 → 0700.HK.
func YahooHKSymbol(code string) string {
	code = strings.TrimLeft(strings.TrimSpace(code), "0")
	if len(code) < 4 {
		code = strings.Repeat("0", 4-len(code)) + code
	}
	return code + ".HK"
}

// YahooUSSymbol upper-cases a US ticker and uses Yahoo's dash for share
// classes, e.g. BRK.B → BRK-B.
func YahooUSSymbol(code string) string {
	return strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(code)), ".", "-")
}
