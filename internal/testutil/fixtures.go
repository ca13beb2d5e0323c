package testutil

import (
	"testing"

	"assettracker/internal/models"
)

// NewTestDay returns a day holding cash in all three currencies and one
// priced stock per market.
func NewTestDay(t *testing.T) *models.PortfolioDay {
	t.Helper()

	day := models.NewPortfolioDay()
	day.Cash = models.CashHoldings{USD: 10000, HKD: 10000, CNY: 10000}
	day.Stocks.AShares.Upsert(models.Stock{Name: "Kweichow Moutai", Code: "600519", Quantity: 10, Cost: 1600, Price: models.Float(1700)})
	day.Stocks.USStocks.Upsert(models.Stock{Name: "Apple", Code: "AAPL", Quantity: 10, Cost: 150, Price: models.Float(180)})
	day.Stocks.HKStocks.Upsert(models.Stock{Name: "Tencent", Code: "00700", Quantity: 100, Cost: 300, Price: models.Float(390)})
	return day
}

// NewTestPortfolio returns a portfolio with a NewTestDay on each date.
func NewTestPortfolio(t *testing.T, dates ...string) *models.Portfolio {
	t.Helper()

	p := models.NewPortfolio()
	for _, date := range dates {
		if _, err := models.ParseDate(date); err != nil {
			t.Fatalf("invalid fixture date %q: %v", date, err)
		}
		p.Put(date, NewTestDay(t))
	}
	return p
}

// SetRates records a complete rate table on day.
func SetRates(day *models.PortfolioDay, cny, hkd float64) {
	day.ExchangeRates = models.ExchangeRates{USD: 1, CNY: models.Float(cny), HKD: models.Float(hkd)}
}
