// Package models defines the portfolio data model and its persisted JSON form.
package models

import (
	"strings"

	apperrors "assettracker/internal/errors"
)

// Currency is one of the three supported accounting currencies.
type Currency string

// Supported currencies.
const (
	USD Currency = "USD"
	HKD Currency = "HKD"
	CNY Currency = "CNY"
)

// Currencies lists the supported currencies in display order.
var Currencies = []Currency{USD, HKD, CNY}

// ParseCurrency validates s against the supported set. Matching is
// case-insensitive; the returned value is canonical.
func ParseCurrency(s string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", apperrors.WithMessage(apperrors.ErrUnsupportedCurrency, "Unsupported currency: "+s)
	}
	return c, nil
}

// Valid reports whether c is a supported currency.
func (c Currency) Valid() bool {
	switch c {
	case USD, HKD, CNY:
		return true
	}
	return false
}

func (c Currency) String() string { return string(c) }
