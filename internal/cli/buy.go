package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

type buyCmd struct {
	app      *App
	currency string
	amount   string
}

func (*buyCmd) Name() string     { return "buy" }
func (*buyCmd) Synopsis() string { return "buy a currency with base-currency funds" }
func (*buyCmd) Usage() string {
	return "valutahub buy -currency <code> -amount <value>\n"
}

func (c *buyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.currency, "currency", "", "currency to buy")
	f.StringVar(&c.amount, "amount", "", "amount to buy")
}

func (c *buyCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	sess, ok := c.app.currentUser()
	if !ok {
		return subcommands.ExitFailure
	}
	amount, err := decimal.NewFromString(c.amount)
	if err != nil {
		fmt.Println("invalid amount:", c.amount)
		return subcommands.ExitUsageError
	}

	cost, err := c.app.Accounts.Buy(sess.UserID, c.currency, amount)
	if err != nil {
		fmt.Println("buy failed:", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("bought %s for %s %s\n", amount, cost, c.app.Cfg.Currencies.Base)
	return subcommands.ExitSuccess
}
