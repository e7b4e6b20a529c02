package cli

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/google/subcommands"

	"valutahub/internal/pair"
	"valutahub/internal/quote"
)

type showRatesCmd struct {
	app      *App
	currency string
	top      int
	base     string
}

func (*showRatesCmd) Name() string     { return "show-rates" }
func (*showRatesCmd) Synopsis() string { return "list cached exchange rates" }
func (*showRatesCmd) Usage() string {
	return "valutahub show-rates [-currency <code>] [-top <n>] [-base <code>]\n"
}

func (c *showRatesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.currency, "currency", "", "only pairs mentioning this currency")
	f.IntVar(&c.top, "top", 0, "only the n highest-rate crypto pairs")
	f.StringVar(&c.base, "base", "", "re-express rates against this currency")
}

func (c *showRatesCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	quotes, err := c.app.Quotes.List(quote.ListOptions{
		Currency: c.currency,
		Top:      c.top,
		Base:     c.base,
	})
	if err != nil {
		fmt.Println("could not list rates:", err)
		return subcommands.ExitFailure
	}
	if len(quotes) == 0 {
		fmt.Println("no cached rates match, run update-rates first")
		return subcommands.ExitSuccess
	}

	for _, q := range quotes {
		fmt.Printf("%-10s %-16g %-20s %s\n", q.Pair, q.Rate, q.UpdatedAt.Format(pair.TimeLayout), q.Source)
	}

	if refreshed, err := c.app.Quotes.LastRefresh(); err == nil && !refreshed.IsZero() {
		fmt.Printf("last refresh: %s (%s ago)\n",
			refreshed.Format(pair.TimeLayout),
			time.Since(refreshed).Truncate(time.Second))
	}
	return subcommands.ExitSuccess
}
