// Package portfolio manages per-day portfolio state: cash, holdings, price
// refreshes and valuation passes.
package portfolio

import (
	"context"
	"math"
	"strings"

	"go.uber.org/zap"

	apperrors "assettracker/internal/errors"
	"assettracker/internal/models"
	"assettracker/internal/provider"
	"assettracker/internal/valuation"
)

// BaseCurrency is the currency rate tables are requested against.
const BaseCurrency = models.USD

// RateProvider yields a best-effort rate table; see provider.RateChain.
type RateProvider interface {
	Rates(ctx context.Context, base, asOf string) provider.RateResult
}

// PriceUpdater refreshes the prices of one market's holdings; see
// provider.PriceRouter.
type PriceUpdater interface {
	UpdateStockPrices(ctx context.Context, market models.Market, h *models.Holdings, asOf string) []provider.PriceResult
}

// Manager applies day-level operations to an in-memory portfolio. It is not
// safe for concurrent use; callers serialise access.
type Manager struct {
	portfolio *models.Portfolio
	prices    PriceUpdater
	rates     RateProvider
	logger    *zap.SugaredLogger
}

// NewManager creates a Manager over p.
func NewManager(p *models.Portfolio, prices PriceUpdater, rates RateProvider, logger *zap.SugaredLogger) *Manager {
	if p == nil {
		p = models.NewPortfolio()
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Manager{portfolio: p, prices: prices, rates: rates, logger: logger}
}

// Portfolio returns the managed portfolio.
func (m *Manager) Portfolio() *models.Portfolio { return m.portfolio }

// GetOrCreateDay returns the day for date, creating a zero-valued one if
// absent. An existing day is returned unchanged.
func (m *Manager) GetOrCreateDay(date string) (*models.PortfolioDay, error) {
	date, err := models.ParseDate(date)
	if err != nil {
		return nil, err
	}
	if day, ok := m.portfolio.Get(date); ok {
		return day, nil
	}
	day := models.NewPortfolioDay()
	m.portfolio.Put(date, day)
	m.logger.Debugw("created portfolio day", "date", date)
	return day, nil
}

// Day resolves date, or the latest day when date is empty.
func (m *Manager) Day(date string) (string, *models.PortfolioDay, bool) {
	if date == "" {
		return m.portfolio.Latest()
	}
	day, ok := m.portfolio.Get(date)
	return date, day, ok
}

// SetCash overwrites the balance of one currency on date.
func (m *Manager) SetCash(date, currency string, amount float64) error {
	cur, err := models.ParseCurrency(currency)
	if err != nil {
		return err
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "Amount must be a finite number")
	}
	day, err := m.GetOrCreateDay(date)
	if err != nil {
		return err
	}
	if err := day.Cash.Set(cur, amount); err != nil {
		return err
	}
	m.logger.Infow("set cash", "date", date, "currency", cur, "amount", amount)
	return nil
}

// UpsertStock adds stock to a market on date, replacing any holding with the
// same code.
func (m *Manager) UpsertStock(date, market string, stock models.Stock) error {
	mkt, err := models.ParseMarket(market)
	if err != nil {
		return err
	}
	stock.Code = strings.TrimSpace(stock.Code)
	if stock.Code == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "Stock code is required")
	}
	day, err := m.GetOrCreateDay(date)
	if err != nil {
		return err
	}
	replaced := day.Stocks.Market(mkt).Upsert(stock)
	m.logger.Infow("upserted stock", "date", date, "market", mkt, "code", stock.Code, "replaced", replaced)
	return nil
}

// PriceReport describes a price refresh. Skipped is set when there was no
// day to refresh; Approximate counts current prices standing in for
// historical ones.
type PriceReport struct {
	Date        string                                   `json:"date"`
	Skipped     bool                                     `json:"skipped"`
	Results     map[models.Market][]provider.PriceResult `json:"results"`
	Resolved    int                                      `json:"resolved"`
	Missing     int                                      `json:"missing"`
	Approximate int                                      `json:"approximate"`
}

// RefreshPrices updates every holding's price on date, or on the latest day
// with current prices when date is empty. Each market is refreshed
// independently. A missing day is a logged no-op.
func (m *Manager) RefreshPrices(ctx context.Context, date string) (*PriceReport, error) {
	resolvedDate, asOf, day, err := m.resolve(date)
	if err != nil || day == nil {
		return &PriceReport{Date: resolvedDate, Skipped: true}, err
	}

	report := &PriceReport{Date: resolvedDate, Results: make(map[models.Market][]provider.PriceResult, len(models.Markets))}
	for _, market := range models.Markets {
		results := m.prices.UpdateStockPrices(ctx, market, day.Stocks.Market(market), asOf)
		report.Results[market] = results
		for _, r := range results {
			switch {
			case !r.Resolved():
				report.Missing++
			case r.Approximate:
				report.Resolved++
				report.Approximate++
			default:
				report.Resolved++
			}
		}
	}
	if err := ctx.Err(); err != nil {
		return report, err
	}

	m.logger.Infow("refreshed prices", "date", report.Date, "resolved", report.Resolved,
		"missing", report.Missing, "approximate", report.Approximate)
	return report, nil
}

// ValuationReport describes a valuation pass. Complete is false when any
// market was valued at zero for a missing price.
type ValuationReport struct {
	Date          string                  `json:"date"`
	Skipped       bool                    `json:"skipped"`
	TotalAssets   models.TotalAssets      `json:"totalAssets"`
	ExchangeRates models.ExchangeRates    `json:"exchangeRates"`
	RateStatus    *models.RateStatus      `json:"rateStatus,omitempty"`
	Markets       []valuation.MarketValue `json:"markets"`
	Complete      bool                    `json:"complete"`
}

// RefreshValuation values the day on date (latest when empty) with rates
// for that date, and records the totals and the rates used on the day.
func (m *Manager) RefreshValuation(ctx context.Context, date string) (*ValuationReport, error) {
	resolvedDate, asOf, day, err := m.resolve(date)
	if err != nil || day == nil {
		return &ValuationReport{Date: resolvedDate, Skipped: true}, err
	}

	rateRes := m.rates.Rates(ctx, string(BaseCurrency), asOf)
	if err := ctx.Err(); err != nil {
		return &ValuationReport{Date: resolvedDate, Skipped: true}, err
	}
	rates := models.NewExchangeRates(rateRes.Rates)
	if !rates.Complete() {
		m.logger.Warnw("rate table incomplete, missing rates count as 1.0", "date", resolvedDate, "source", rateRes.Source)
	}

	res := valuation.Value(day.Cash, &day.Stocks, rates)
	day.TotalAssets = res.Totals
	day.ExchangeRates = rates
	day.RateStatus = rateRes.Status()

	for _, mv := range res.Markets {
		if !mv.Complete {
			m.logger.Warnw("market valued at zero due to missing prices",
				"date", resolvedDate, "market", mv.Market, "missing", mv.MissingPrices)
		}
	}
	m.logger.Infow("refreshed valuation", "date", resolvedDate, "total_usd", res.TotalUSD,
		"rate_origin", rateRes.Origin, "rate_source", rateRes.Source, "substituted", rateRes.Substituted)

	return &ValuationReport{
		Date:          resolvedDate,
		TotalAssets:   res.Totals,
		ExchangeRates: rates,
		RateStatus:    day.RateStatus,
		Markets:       res.Markets,
		Complete:      res.Complete(),
	}, nil
}

// resolve returns the day's key, the as-of date to pass to providers (""
// for current data on the latest day) and the day. A nil day means nothing
// to do.
func (m *Manager) resolve(date string) (string, string, *models.PortfolioDay, error) {
	if date != "" {
		d, err := models.ParseDate(date)
		if err != nil {
			return date, "", nil, err
		}
		day, ok := m.portfolio.Get(d)
		if !ok {
			m.logger.Warnw("no portfolio data for date", "date", d)
			return d, d, nil, nil
		}
		return d, d, day, nil
	}

	latest, day, ok := m.portfolio.Latest()
	if !ok {
		m.logger.Warn("no portfolio data")
		return "", "", nil, nil
	}
	return latest, "", day, nil
}

// Summary is a read-only projection of one day.
type Summary struct {
	Date          string                                  `json:"date"`
	Cash          models.CashHoldings                     `json:"cash"`
	Markets       map[models.Market]valuation.MarketValue `json:"markets"`
	TotalAssets   models.TotalAssets                      `json:"totalAssets"`
	ExchangeRates models.ExchangeRates                    `json:"exchangeRates"`
	RateStatus    *models.RateStatus                      `json:"rateStatus,omitempty"`
	Error         string                                  `json:"error,omitempty"`
}

// Found reports whether the summary describes an existing day.
func (s *Summary) Found() bool { return s.Error == "" }

// Summarize projects the day on date, or the latest day when date is
// empty. The date label is "latest" when no date was given.
func (m *Manager) Summarize(date string) *Summary {
	label := date
	if label == "" {
		label = "latest"
	}

	_, day, ok := m.Day(date)
	if !ok {
		return &Summary{Date: label, Error: apperrors.ErrNoData.Message}
	}

	s := &Summary{
		Date:          label,
		Cash:          day.Cash,
		Markets:       make(map[models.Market]valuation.MarketValue, len(models.Markets)),
		TotalAssets:   day.TotalAssets,
		ExchangeRates: day.ExchangeRates,
		RateStatus:    day.RateStatus,
	}
	for _, market := range models.Markets {
		s.Markets[market] = valuation.ValueMarket(market, day.Stocks.Market(market))
	}
	return s
}
