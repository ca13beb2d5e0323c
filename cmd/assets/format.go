package main

import (
	"fmt"
	"math"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"assettracker/internal/models"
)

// formatMoney renders amount in cur with the currency's symbol and
// fraction digits.
func formatMoney(amount float64, cur models.Currency) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return fmt.Sprintf("%v %s", amount, cur)
	}
	c := money.GetCurrency(string(cur))
	if c == nil {
		return decimal.NewFromFloat(amount).StringFixed(2) + " " + string(cur)
	}
	minor := decimal.NewFromFloat(amount).Shift(int32(c.Fraction)).Round(0).IntPart()
	return money.New(minor, c.Code).Display()
}

// printTotals prints the three totals, or a note when the day has not been
// valued.
func printTotals(t models.TotalAssets) {
	if !t.Computed() {
		fmt.Println("  not valued yet")
		return
	}
	for _, cur := range models.Currencies {
		fmt.Printf("  %-4s %s\n", cur, formatMoney(*t.Get(cur), cur))
	}
}

// describeRates explains where the rates of a valuation came from.
func describeRates(s *models.RateStatus) string {
	desc := fmt.Sprintf("%s (%s)", s.Source, s.Origin)
	if s.Substituted {
		desc += ", current rates used for a historical date"
	}
	return desc
}
