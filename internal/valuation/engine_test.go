package valuation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assettracker/internal/models"
)

func rates() models.ExchangeRates {
	return models.ExchangeRates{USD: 1, CNY: models.Float(7.0), HKD: models.Float(7.8)}
}

func TestValueMarket(t *testing.T) {
	var h models.Holdings
	h.Upsert(models.Stock{Code: "AAPL", Quantity: 10, Price: models.Float(180)})
	h.Upsert(models.Stock{Code: "MSFT", Quantity: 2, Price: models.Float(400)})

	mv := ValueMarket(models.USStocks, &h)
	assert.Equal(t, 2, mv.Count)
	assert.InDelta(t, 2600, mv.Value, 1e-9)
	assert.True(t, mv.Complete)

	empty := ValueMarket(models.HKStocks, &models.Holdings{})
	assert.Equal(t, 0.0, empty.Value)
	assert.True(t, empty.Complete)
}

func TestValue_DegradesMarketWithMissingPrice(t *testing.T) {
	stocks := &models.StockHoldings{}
	stocks.USStocks.Upsert(models.Stock{Code: "AAPL", Quantity: 10, Price: models.Float(180)})
	stocks.USStocks.Upsert(models.Stock{Code: "GONE", Quantity: 5})
	stocks.HKStocks.Upsert(models.Stock{Code: "00700", Quantity: 100, Price: models.Float(390)})

	res := Value(models.CashHoldings{USD: 1000}, stocks, rates())

	us := res.Markets[1]
	assert.Equal(t, models.USStocks, us.Market)
	assert.Equal(t, 0.0, us.Value)
	assert.False(t, us.Complete)
	assert.Equal(t, 1, us.MissingPrices)
	assert.False(t, res.Complete())

	require.True(t, res.Totals.Computed(), "totals stay fully populated")
	assert.InDelta(t, 1000+39000/7.8, *res.Totals.USD, 1e-9)
}

func TestValuePortfolioDay(t *testing.T) {
	stocks := &models.StockHoldings{}
	stocks.AShares.Upsert(models.Stock{Code: "600519", Quantity: 10, Price: models.Float(1700)})
	stocks.USStocks.Upsert(models.Stock{Code: "AAPL", Quantity: 10, Price: models.Float(180)})
	stocks.HKStocks.Upsert(models.Stock{Code: "00700", Quantity: 100, Price: models.Float(390)})
	cash := models.CashHoldings{USD: 10000, HKD: 10000, CNY: 10000}

	totals := ValuePortfolioDay(cash, stocks, rates())

	wantUSD := 1800 + 17000/7.0 + 39000/7.8 + 10000 + 10000/7.8 + 10000/7.0
	require.True(t, totals.Computed())
	assert.InEpsilon(t, wantUSD, *totals.USD, 1e-9)
	assert.InEpsilon(t, wantUSD*7.0, *totals.CNY, 1e-9)
	assert.InEpsilon(t, wantUSD*7.8, *totals.HKD, 1e-9)

	again := ValuePortfolioDay(cash, stocks, rates())
	assert.Equal(t, *totals.USD, *again.USD, "valuation is deterministic")
	assert.Equal(t, *totals.CNY, *again.CNY)
	assert.Equal(t, *totals.HKD, *again.HKD)
}

func TestValue_MissingRatesUseNeutralDefault(t *testing.T) {
	stocks := &models.StockHoldings{}
	stocks.AShares.Upsert(models.Stock{Code: "600519", Quantity: 1, Price: models.Float(700)})

	totals := ValuePortfolioDay(models.CashHoldings{}, stocks, models.ExchangeRates{USD: 1})
	assert.InDelta(t, 700, *totals.USD, 1e-9)
	assert.InDelta(t, 700, *totals.CNY, 1e-9)
}

func TestValue_EmptyDay(t *testing.T) {
	totals := ValuePortfolioDay(models.CashHoldings{}, &models.StockHoldings{}, rates())
	require.True(t, totals.Computed())
	assert.Equal(t, 0.0, *totals.USD)
}
