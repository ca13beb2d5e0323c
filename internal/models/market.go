package models

import (
	"strings"

	apperrors "assettracker/internal/errors"
)

// Market is one of the three stock venues.
type Market string

// Supported markets.
const (
	AShares  Market = "AShares"
	USStocks Market = "USStocks"
	HKStocks Market = "HKStocks"
)

// Markets lists the markets in persisted order.
var Markets = []Market{AShares, USStocks, HKStocks}

// ParseMarket validates s against the supported markets, ignoring case.
func ParseMarket(s string) (Market, error) {
	name := strings.TrimSpace(s)
	for _, m := range Markets {
		if strings.EqualFold(name, string(m)) {
			return m, nil
		}
	}
	return "", apperrors.WithMessage(apperrors.ErrUnknownMarket, "Unknown market: "+s)
}

// Currency returns the currency the market's prices are quoted in.
func (m Market) Currency() Currency {
	switch m {
	case AShares:
		return CNY
	case HKStocks:
		return HKD
	default:
		return USD
	}
}

func (m Market) String() string { return string(m) }
