package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/subcommands"

	"assettracker/internal/models"
)

type pricesCmd struct {
	Date string `validate:"omitempty,isodate"`
}

func (*pricesCmd) Name() string     { return "prices" }
func (*pricesCmd) Synopsis() string { return "refresh stock prices for a day" }
func (*pricesCmd) Usage() string {
	return `prices [-d <YYYY-MM-DD>]

  Refreshes every holding's price. With -d the prices are historical closes
  for that date; without it the latest day gets current quotes.
`
}

func (c *pricesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.Date, "d", "", "Date; defaults to the latest day")
}

func (c *pricesCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	report, err := a.service.RefreshPrices(ctx, c.Date)
	if err != nil {
		fail("%v", err)
		return subcommands.ExitFailure
	}
	if report.Skipped {
		fmt.Println("No portfolio data to refresh")
		return subcommands.ExitSuccess
	}

	for _, market := range models.Markets {
		for _, r := range report.Results[market] {
			switch {
			case !r.Resolved():
				fmt.Printf("%-9s %-10s no price\n", market, r.Code)
			case r.Approximate:
				fmt.Printf("%-9s %-10s %12.4f  (%s, current price)\n", market, r.Code, *r.Price, r.Source)
			default:
				fmt.Printf("%-9s %-10s %12.4f  (%s)\n", market, r.Code, *r.Price, r.Source)
			}
		}
	}
	fmt.Printf("%s: %d resolved, %d missing, %d approximate\n", report.Date, report.Resolved, report.Missing, report.Approximate)
	return subcommands.ExitSuccess
}

type valueCmd struct {
	Date string `validate:"omitempty,isodate"`
}

func (*valueCmd) Name() string     { return "value" }
func (*valueCmd) Synopsis() string { return "recompute a day's total assets" }
func (*valueCmd) Usage() string {
	return `value [-d <YYYY-MM-DD>]

  Values the day with exchange rates for its date (current rates for the
  latest day when -d is omitted) and records the totals.
`
}

func (c *valueCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.Date, "d", "", "Date; defaults to the latest day")
}

func (c *valueCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	report, err := a.service.RefreshValuation(ctx, c.Date)
	if err != nil {
		fail("%v", err)
		return subcommands.ExitFailure
	}
	if report.Skipped {
		fmt.Println("No portfolio data to value")
		return subcommands.ExitSuccess
	}

	fmt.Printf("Total assets on %s:\n", report.Date)
	printTotals(report.TotalAssets)
	if report.RateStatus != nil {
		fmt.Printf("Rates: %s\n", describeRates(report.RateStatus))
	}
	if !report.Complete {
		for _, mv := range report.Markets {
			if !mv.Complete {
				fmt.Fprintf(os.Stderr, "Warning: %s valued at 0, %d holding(s) without a price\n", mv.Market, mv.MissingPrices)
			}
		}
	}
	return subcommands.ExitSuccess
}

type batchCmd struct {
	Start string `validate:"omitempty,isodate"`
	End   string `validate:"omitempty,isodate"`
	delay time.Duration
}

func (*batchCmd) Name() string     { return "batch" }
func (*batchCmd) Synopsis() string { return "refresh prices and totals over a date range" }
func (*batchCmd) Usage() string {
	return `batch [-start <YYYY-MM-DD>] [-end <YYYY-MM-DD>] [-delay <duration>]

  Refreshes prices and totals for every recorded day in the range, oldest
  first, then saves once. Exits 2 when some dates failed.
`
}

func (c *batchCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.Start, "start", "", "First date (inclusive); unbounded when empty")
	f.StringVar(&c.End, "end", "", "Last date (inclusive); unbounded when empty")
	f.DurationVar(&c.delay, "delay", -1, "Pause between price and valuation refreshes; defaults to BATCH_DELAY")
}

func (c *batchCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := checkFlags.Struct(c); err != nil {
		fail("-start and -end must be formatted as YYYY-MM-DD")
		return subcommands.ExitFailure
	}

	a, err := openApp(ctx)
	if err != nil {
		fail("%v", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	delay := c.delay
	if delay < 0 {
		delay = a.cfg.BatchDelay
	}

	res, err := a.service.RunBatch(ctx, c.Start, c.End, delay)
	if err != nil {
		fail("%v", err)
		return subcommands.ExitFailure
	}

	for _, date := range res.Dates {
		if res.Outcomes[date] {
			fmt.Printf("%s  ok\n", date)
		} else {
			fmt.Printf("%s  failed: %v\n", date, res.Errors[date])
		}
	}
	failed := res.Failed()
	fmt.Printf("%d date(s) processed, %d failed in %s\n", len(res.Dates), len(failed), res.Duration.Round(time.Millisecond))
	if len(failed) > 0 {
		return exitPartial
	}
	return subcommands.ExitSuccess
}
