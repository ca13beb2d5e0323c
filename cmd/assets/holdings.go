package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"strings"

	"github.com/google/subcommands"

	"assettracker/internal/models"
	"assettracker/internal/pagination"
)

type cashCmd struct {
	Date     string `validate:"required,isodate"`
	Currency string `validate:"required,currency"`
	Amount   float64
}

func (*cashCmd) Name() string     { return "cash" }
func (*cashCmd) Synopsis() string { return "set a cash balance on a day" }
func (*cashCmd) Usage() string {
	return `cash -d <YYYY-MM-DD> -c <USD|HKD|CNY> -a <amount>

  Overwrites the balance of one currency on the day, creating the day if needed.
`
}

func (c *cashCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.Date, "d", "", "Date (required)")
	f.StringVar(&c.Currency, "c", "", "Currency: USD, HKD or CNY (required)")
	f.Float64Var(&c.Amount, "a", math.NaN(), "Amount (required)")
}

func (c *cashCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := checkFlags.Struct(c); err != nil || math.IsNaN(c.Amount) {
		fail("-d, -c and -a are required; -d is YYYY-MM-DD and -c one of USD, HKD, CNY")
		return subcommands.ExitFailure
	}

	a, err := openApp(ctx)
	if err != nil {
		fail("%v", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	day, err := a.service.SetCash(ctx, c.Date, c.Currency, c.Amount)
	if err != nil {
		fail("%v", err)
		return subcommands.ExitFailure
	}

	cur, _ := models.ParseCurrency(c.Currency)
	fmt.Printf("Cash on %s set to %s\n", c.Date, formatMoney(day.Cash.Get(cur), cur))
	return subcommands.ExitSuccess
}

type stockCmd struct {
	Date      string `validate:"required,isodate"`
	Market    string `validate:"required,market"`
	Code      string `validate:"required,max=32"`
	StockName string
	Quantity  float64 `validate:"gte=0"`
	Cost      float64 `validate:"gte=0"`
	price     float64
}

func (*stockCmd) Name() string     { return "stock" }
func (*stockCmd) Synopsis() string { return "add or replace a holding on a day" }
func (*stockCmd) Usage() string {
	return `stock -d <YYYY-MM-DD> -m <AShares|USStocks|HKStocks> -code <code> -name <name> -q <quantity> -cost <cost> [-price <price>]

  Adds the stock to the market's holdings on the day. A holding with the same
  code is replaced in place.
`
}

func (c *stockCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.Date, "d", "", "Date (required)")
	f.StringVar(&c.Market, "m", "", "Market: AShares, USStocks or HKStocks (required)")
	f.StringVar(&c.Code, "code", "", "Stock code (required)")
	f.StringVar(&c.StockName, "name", "", "Display name")
	f.Float64Var(&c.Quantity, "q", 0, "Quantity held")
	f.Float64Var(&c.Cost, "cost", 0, "Cost per share")
	f.Float64Var(&c.price, "price", 0, "Known price; omitted leaves the price unresolved")
}

func (c *stockCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := checkFlags.Struct(c); err != nil {
		fail("invalid flags: %v", err)
		return subcommands.ExitFailure
	}

	stock := models.Stock{Name: c.StockName, Code: strings.TrimSpace(c.Code), Quantity: c.Quantity, Cost: c.Cost}
	if c.price > 0 {
		stock.Price = models.Float(c.price)
	}

	a, err := openApp(ctx)
	if err != nil {
		fail("%v", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	if _, err := a.service.UpsertStock(ctx, c.Date, c.Market, stock); err != nil {
		fail("%v", err)
		return subcommands.ExitFailure
	}

	fmt.Printf("Saved %s %s on %s\n", c.Market, stock.Code, c.Date)
	return subcommands.ExitSuccess
}

type daysCmd struct{}

func (*daysCmd) Name() string             { return "days" }
func (*daysCmd) Synopsis() string         { return "list the recorded days" }
func (*daysCmd) Usage() string            { return "days\n\n  Lists every day with its USD total.\n" }
func (*daysCmd) SetFlags(_ *flag.FlagSet) {}

func (*daysCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openApp(ctx)
	if err != nil {
		fail("%v", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	page := pagination.PageRequest{Page: 1, PageSize: 100}
	for {
		resp, err := a.service.ListDays(page)
		if err != nil {
			fail("%v", err)
			return subcommands.ExitFailure
		}
		for _, item := range resp.Data {
			total := "not valued"
			if item.TotalUSD != nil {
				total = formatMoney(*item.TotalUSD, models.USD)
			}
			fmt.Printf("%s  %3d holdings  %s\n", item.Date, item.Holdings, total)
		}
		if page.Page >= resp.TotalPages {
			return subcommands.ExitSuccess
		}
		page.Page++
	}
}
