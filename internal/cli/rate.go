package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
)

type getRateCmd struct {
	app  *App
	from string
	to   string
}

func (*getRateCmd) Name() string     { return "get-rate" }
func (*getRateCmd) Synopsis() string { return "show the cached rate between two currencies" }
func (*getRateCmd) Usage() string {
	return "valutahub get-rate -from <code> -to <code>\n"
}

func (c *getRateCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.from, "from", "", "source currency code")
	f.StringVar(&c.to, "to", "", "target currency code")
}

func (c *getRateCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.from == "" || c.to == "" {
		fmt.Println("both -from and -to are required")
		return subcommands.ExitUsageError
	}

	rate, err := c.app.Quotes.Rate(c.from, c.to)
	if err != nil {
		fmt.Println("rate lookup failed:", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("1 %s = %g %s\n", c.from, rate, c.to)
	return subcommands.ExitSuccess
}
