// Command assets tracks a multi-currency stock and cash portfolio: it
// records holdings per day, refreshes prices and exchange rates, and values
// each day in USD, CNY and HKD.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"

	"assettracker/internal/logger"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	register(commander)

	flag.Parse()
	status := commander.Execute(context.Background())
	logger.Sync()
	os.Exit(int(status))
}

// register adds every command to c.
func register(c *subcommands.Commander) {
	c.Register(c.HelpCommand(), "")
	c.Register(c.CommandsCommand(), "")
	c.Register(c.FlagsCommand(), "")

	c.Register(&cashCmd{}, "holdings")
	c.Register(&stockCmd{}, "holdings")
	c.Register(&daysCmd{}, "holdings")

	c.Register(&pricesCmd{}, "refresh")
	c.Register(&valueCmd{}, "refresh")
	c.Register(&batchCmd{}, "refresh")

	c.Register(&summaryCmd{}, "reports")

	c.Register(&serveCmd{}, "server")
}
