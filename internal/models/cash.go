package models

import apperrors "assettracker/internal/errors"

// CashHoldings holds a balance in each supported currency.
type CashHoldings struct {
	USD float64 `json:"USD"`
	HKD float64 `json:"HKD"`
	CNY float64 `json:"CNY"`
}

// Get returns the balance for c. Unsupported currencies read as zero.
func (c CashHoldings) Get(cur Currency) float64 {
	switch cur {
	case USD:
		return c.USD
	case HKD:
		return c.HKD
	case CNY:
		return c.CNY
	}
	return 0
}

// Set overwrites the balance for cur.
func (c *CashHoldings) Set(cur Currency, amount float64) error {
	switch cur {
	case USD:
		c.USD = amount
	case HKD:
		c.HKD = amount
	case CNY:
		c.CNY = amount
	default:
		return apperrors.WithMessage(apperrors.ErrUnsupportedCurrency, "Unsupported currency: "+string(cur))
	}
	return nil
}

// TotalInCurrency converts all balances into target using USD-based rates.
// Converting between two non-USD currencies goes through both USD rates.
func (c CashHoldings) TotalInCurrency(target Currency, rates ExchangeRates) (float64, error) {
	cnyRate := rates.Rate(CNY)
	hkdRate := rates.Rate(HKD)

	switch target {
	case USD:
		return c.USD + c.HKD/hkdRate + c.CNY/cnyRate, nil
	case HKD:
		return c.HKD + c.USD*hkdRate + c.CNY*hkdRate/cnyRate, nil
	case CNY:
		return c.CNY + c.USD*cnyRate + c.HKD*cnyRate/hkdRate, nil
	}
	return 0, apperrors.WithMessage(apperrors.ErrUnsupportedCurrency, "Unsupported currency: "+string(target))
}
