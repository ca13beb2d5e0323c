package provider

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"assettracker/internal/models"
)

// RateQuotes are the currencies every rate table must carry against USD.
var RateQuotes = []string{string(models.CNY), string(models.HKD)}

// Endpoints overrides upstream URLs. Empty fields use the public defaults.
type Endpoints struct {
	ExchangeRateAPI string
	AlphaVantage    string
	YahooChart      string
	EastmoneyQuote  string
	EastmoneyKline  string
	FundEstimate    string
	FundHistory     string
}

// Options configures the default provider chains.
type Options struct {
	HTTPClient        *http.Client
	RequestsPerSecond int
	CacheTTL          time.Duration
	HistoryWindow     time.Duration
	AlphaVantageKey   string
	Endpoints         Endpoints
	Now               func() time.Time
	Logger            *zap.SugaredLogger
}

// NewDefaultRateChain wires the rate sources in priority order: Yahoo FX,
// ExchangeRate-API, then Alpha Vantage for history when a key is set.
func NewDefaultRateChain(opts Options) *RateChain {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = time.Hour
	}
	sources := []RateSource{
		NewYahooForex(opts.HTTPClient, NewLimiter(opts.RequestsPerSecond), opts.Endpoints.YahooChart, RateQuotes, opts.HistoryWindow),
		NewExchangeRateAPI(opts.HTTPClient, NewLimiter(opts.RequestsPerSecond), opts.Endpoints.ExchangeRateAPI),
	}
	if opts.AlphaVantageKey != "" {
		sources = append(sources, NewAlphaVantage(opts.HTTPClient, NewLimiter(opts.RequestsPerSecond),
			opts.Endpoints.AlphaVantage, opts.AlphaVantageKey, RateQuotes))
	}
	return NewRateChain(NewRateCache(opts.CacheTTL, opts.Now), opts.Logger, sources...).WithRequired(RateQuotes...)
}

// NewDefaultPriceRouter wires one price chain per market.
func NewDefaultPriceRouter(opts Options) *PriceRouter {
	yahooLimiter := NewLimiter(opts.RequestsPerSecond)
	eastmoneyLimiter := NewLimiter(opts.RequestsPerSecond)
	window := WithHistoryWindow(opts.HistoryWindow)

	yahoo := func(symbol func(string) string) PriceSource {
		return NewYahooSource(opts.HTTPClient, yahooLimiter, opts.Endpoints.YahooChart, symbol)
	}
	eastmoney := func(secid func(string) (string, error)) PriceSource {
		return NewEastmoneySource(opts.HTTPClient, eastmoneyLimiter, opts.Endpoints.EastmoneyQuote, opts.Endpoints.EastmoneyKline, secid)
	}
	funds := NewFundSource(opts.HTTPClient, NewLimiter(opts.RequestsPerSecond), opts.Endpoints.FundEstimate, opts.Endpoints.FundHistory)

	aShares := NewPriceChain(models.AShares, opts.Logger,
		[]PriceSource{eastmoney(AShareSecID), yahoo(YahooAShareSymbol)},
		window,
		WithSecondary(SecondaryClass{Name: "fund", Match: IsAShareFund, Sources: []PriceSource{funds}}),
	)
	usStocks := NewPriceChain(models.USStocks, opts.Logger,
		[]PriceSource{yahoo(YahooUSSymbol)},
		window,
	)
	hkStocks := NewPriceChain(models.HKStocks, opts.Logger,
		[]PriceSource{eastmoney(HKSecID), yahoo(YahooHKSymbol)},
		window,
		WithSecondary(SecondaryClass{Name: "etf", Match: IsHKFund, Sources: []PriceSource{
			WithCodeVariants(eastmoney(HKSecID), HKCodeVariants),
			WithCodeVariants(yahoo(YahooHKSymbol), HKCodeVariants),
		}}),
	)
	return NewPriceRouter(opts.Logger, aShares, usStocks, hkStocks)
}
