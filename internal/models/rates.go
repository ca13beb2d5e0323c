package models

import (
	"math"

	apperrors "assettracker/internal/errors"
)

// DefaultRate stands in for a missing rate. It is a neutral placeholder,
// not a market rate.
const DefaultRate = 1.0

// ExchangeRates is the USD-based rate snapshot stored with a valuation:
// units of each currency per 1 USD.
type ExchangeRates struct {
	USD float64  `json:"USD"`
	CNY *float64 `json:"CNY"`
	HKD *float64 `json:"HKD"`
}

// NewExchangeRates picks the supported currencies out of a rate table.
// Missing, non-positive and non-finite entries stay unset.
func NewExchangeRates(table map[string]float64) ExchangeRates {
	r := ExchangeRates{USD: 1.0}
	if v, ok := table[string(CNY)]; ok && validRate(v) {
		r.CNY = Float(v)
	}
	if v, ok := table[string(HKD)]; ok && validRate(v) {
		r.HKD = Float(v)
	}
	return r
}

// Rate returns the rate for c. USD is always 1.0; an unset rate reads as
// DefaultRate.
func (r ExchangeRates) Rate(c Currency) float64 {
	var p *float64
	switch c {
	case CNY:
		p = r.CNY
	case HKD:
		p = r.HKD
	default:
		return 1.0
	}
	if p == nil || !validRate(*p) {
		return DefaultRate
	}
	return *p
}

// Complete reports whether both non-USD rates are set.
func (r ExchangeRates) Complete() bool {
	return r.CNY != nil && r.HKD != nil
}

// Convert converts amount from one currency to another.
func (r ExchangeRates) Convert(amount float64, from, to Currency) (float64, error) {
	if !from.Valid() || !to.Valid() {
		return 0, apperrors.WithMessage(apperrors.ErrUnsupportedCurrencyConversion,
			"Unsupported currency conversion: "+string(from)+" to "+string(to))
	}
	if from == to {
		return amount, nil
	}
	return amount / r.Rate(from) * r.Rate(to), nil
}

func validRate(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

// TotalAssets is the valuation of a day in each currency. All fields are
// nil until a valuation pass populates them together.
type TotalAssets struct {
	USD *float64 `json:"USD"`
	HKD *float64 `json:"HKD"`
	CNY *float64 `json:"CNY"`
}

// Computed reports whether a valuation has populated the totals.
func (t TotalAssets) Computed() bool {
	return t.USD != nil && t.HKD != nil && t.CNY != nil
}

// Get returns the total in c, or nil.
func (t TotalAssets) Get(c Currency) *float64 {
	switch c {
	case USD:
		return t.USD
	case HKD:
		return t.HKD
	case CNY:
		return t.CNY
	}
	return nil
}
