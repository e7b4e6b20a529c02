package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
)

type updateRatesCmd struct {
	app    *App
	source string
}

func (*updateRatesCmd) Name() string     { return "update-rates" }
func (*updateRatesCmd) Synopsis() string { return "fetch fresh rates into the cache" }
func (*updateRatesCmd) Usage() string {
	return "valutahub update-rates [-source <name>]\n"
}

func (c *updateRatesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.source, "source", "", "refresh only this provider")
}

func (c *updateRatesCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	sources, err := c.app.Sources(c.source)
	if err != nil {
		fmt.Println(err)
		return subcommands.ExitUsageError
	}

	stats, err := c.app.Updater(sources).Run(ctx)
	if err != nil {
		fmt.Println("update failed:", err)
		return subcommands.ExitFailure
	}

	fmt.Printf("updated %d pairs (%d crypto, %d fiat), sources ok %d, failed %d\n",
		stats.TotalCount, stats.CryptoCount, stats.FiatCount, stats.Success, stats.Failed)
	for _, msg := range stats.Errors {
		fmt.Println("  error:", msg)
	}
	if stats.Failed > 0 {
		fmt.Println("partial update: some sources failed, cached rates may be stale")
	}
	return subcommands.ExitSuccess
}
