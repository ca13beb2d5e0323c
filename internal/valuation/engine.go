// Package valuation computes the three-currency total of a portfolio day.
// Everything here is pure: no I/O, no clocks, no logging.
package valuation

import "assettracker/internal/models"

// MarketValue is the aggregate of one market in its own currency.
type MarketValue struct {
	Market models.Market `json:"market"`
	Count  int           `json:"count"`
	// Value is Σ quantity×price, or 0 when any holding lacks a price.
	Value float64 `json:"value"`
	// Complete is false when Value was degraded to zero.
	Complete      bool `json:"complete"`
	MissingPrices int  `json:"missingPrices"`
}

// Result is a valuation with its intermediate figures.
type Result struct {
	Markets  []MarketValue
	CashUSD  float64
	TotalUSD float64
	Totals   models.TotalAssets
}

// Complete reports whether every market had all prices resolved.
func (r Result) Complete() bool {
	for _, m := range r.Markets {
		if !m.Complete {
			return false
		}
	}
	return true
}

// ValueMarket aggregates one market's holdings. A market with any
// unpriced holding is valued at 0 rather than unknown.
func ValueMarket(market models.Market, h *models.Holdings) MarketValue {
	mv := MarketValue{Market: market, Complete: true}
	if h == nil {
		return mv
	}
	mv.Count = h.Len()

	var sum float64
	for _, s := range h.Stocks() {
		if s.Price == nil {
			mv.MissingPrices++
			continue
		}
		sum += s.Quantity * *s.Price
	}
	if mv.MissingPrices > 0 {
		mv.Complete = false
		return mv
	}
	mv.Value = sum
	return mv
}

// Value runs the full valuation: per-market aggregates, conversion to USD,
// then the USD total re-expressed in CNY and HKD.
func Value(cash models.CashHoldings, stocks *models.StockHoldings, rates models.ExchangeRates) Result {
	cnyRate := rates.Rate(models.CNY)
	hkdRate := rates.Rate(models.HKD)

	var res Result
	var stocksUSD float64
	for _, m := range models.Markets {
		var h *models.Holdings
		if stocks != nil {
			h = stocks.Market(m)
		}
		mv := ValueMarket(m, h)
		res.Markets = append(res.Markets, mv)

		switch m.Currency() {
		case models.CNY:
			stocksUSD += mv.Value / cnyRate
		case models.HKD:
			stocksUSD += mv.Value / hkdRate
		default:
			stocksUSD += mv.Value
		}
	}

	// USD target never fails.
	res.CashUSD, _ = cash.TotalInCurrency(models.USD, rates)
	res.TotalUSD = stocksUSD + res.CashUSD
	res.Totals = models.TotalAssets{
		USD: models.Float(res.TotalUSD),
		CNY: models.Float(res.TotalUSD * cnyRate),
		HKD: models.Float(res.TotalUSD * hkdRate),
	}
	return res
}

// ValuePortfolioDay returns the day's total assets under rates.
func ValuePortfolioDay(cash models.CashHoldings, stocks *models.StockHoldings, rates models.ExchangeRates) models.TotalAssets {
	return Value(cash, stocks, rates).Totals
}
