package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

type sellCmd struct {
	app      *App
	currency string
	amount   string
}

func (*sellCmd) Name() string     { return "sell" }
func (*sellCmd) Synopsis() string { return "sell a currency back into the base currency" }
func (*sellCmd) Usage() string {
	return "valutahub sell -currency <code> -amount <value>\n"
}

func (c *sellCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.currency, "currency", "", "currency to sell")
	f.StringVar(&c.amount, "amount", "", "amount to sell")
}

func (c *sellCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	sess, ok := c.app.currentUser()
	if !ok {
		return subcommands.ExitFailure
	}
	amount, err := decimal.NewFromString(c.amount)
	if err != nil {
		fmt.Println("invalid amount:", c.amount)
		return subcommands.ExitUsageError
	}

	proceeds, err := c.app.Accounts.Sell(sess.UserID, c.currency, amount)
	if err != nil {
		fmt.Println("sell failed:", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("sold %s for %s %s\n", amount, proceeds, c.app.Cfg.Currencies.Base)
	return subcommands.ExitSuccess
}
