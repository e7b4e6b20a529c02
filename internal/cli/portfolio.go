package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
)

type showPortfolioCmd struct {
	app  *App
	base string
}

func (*showPortfolioCmd) Name() string     { return "show-portfolio" }
func (*showPortfolioCmd) Synopsis() string { return "price every wallet in one currency" }
func (*showPortfolioCmd) Usage() string {
	return "valutahub show-portfolio [-base <code>]\n"
}

func (c *showPortfolioCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.base, "base", "", "valuation currency (defaults to the configured base)")
}

func (c *showPortfolioCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	sess, ok := c.app.currentUser()
	if !ok {
		return subcommands.ExitFailure
	}

	base := c.base
	if base == "" {
		base = c.app.Cfg.Currencies.Base
	}

	valuation, err := c.app.Accounts.Value(sess.UserID, base)
	if err != nil {
		fmt.Println("could not value portfolio:", err)
		return subcommands.ExitFailure
	}
	if len(valuation.Positions) == 0 {
		fmt.Println("portfolio is empty")
		return subcommands.ExitSuccess
	}

	fmt.Printf("portfolio of %s, valued in %s\n", sess.Username, valuation.Base)
	for _, p := range valuation.Positions {
		if p.Priced {
			fmt.Printf("%-6s %-20s = %s %s\n", p.Currency, p.Balance, p.Value, valuation.Base)
		} else {
			fmt.Printf("%-6s %-20s (no cached rate)\n", p.Currency, p.Balance)
		}
	}
	fmt.Printf("total: %s %s\n", valuation.Total, valuation.Base)
	return subcommands.ExitSuccess
}
