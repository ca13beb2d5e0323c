package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	apperrors "assettracker/internal/errors"
	"assettracker/internal/models"
	"assettracker/internal/portfolio"
)

type summaryCmd struct {
	Date   string `validate:"omitempty,isodate"`
	asJSON bool
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "print a day's holdings and totals" }
func (*summaryCmd) Usage() string {
	return `summary [-d <YYYY-MM-DD>] [-json]

  Prints cash, per-market values and total assets for the day (the latest
  day when -d is omitted).
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.Date, "d", "", "Date; defaults to the latest day")
	f.BoolVar(&c.asJSON, "json", false, "Print the summary as JSON")
}

func (c *summaryCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := checkFlags.Struct(c); err != nil {
		fail("-d must be formatted as YYYY-MM-DD")
		return subcommands.ExitFailure
	}

	a, err := openApp(ctx)
	if err != nil {
		fail("%v", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	sum, err := a.service.Summary(c.Date)
	if err != nil && !errors.Is(err, apperrors.ErrNoData) {
		fail("%v", err)
		return subcommands.ExitFailure
	}

	if c.asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(sum); err != nil {
			fail("%v", err)
			return subcommands.ExitFailure
		}
	} else {
		printSummary(sum)
	}
	if !sum.Found() {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func printSummary(sum *portfolio.Summary) {
	if !sum.Found() {
		fmt.Printf("%s: %s\n", sum.Date, sum.Error)
		return
	}

	fmt.Printf("Portfolio summary (%s)\n\n", sum.Date)
	fmt.Println("Cash:")
	for _, cur := range models.Currencies {
		fmt.Printf("  %-4s %s\n", cur, formatMoney(sum.Cash.Get(cur), cur))
	}

	fmt.Println("\nStocks:")
	for _, market := range models.Markets {
		mv := sum.Markets[market]
		line := fmt.Sprintf("  %-9s %3d holding(s)  %s", market, mv.Count, formatMoney(mv.Value, market.Currency()))
		if !mv.Complete {
			line += fmt.Sprintf("  (incomplete: %d without price)", mv.MissingPrices)
		}
		fmt.Println(line)
	}

	fmt.Println("\nTotal assets:")
	printTotals(sum.TotalAssets)
	if sum.RateStatus != nil {
		fmt.Printf("\nRates: %s\n", describeRates(sum.RateStatus))
	}
}
