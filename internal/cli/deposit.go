package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

type depositCmd struct {
	app      *App
	currency string
	amount   string
}

func (*depositCmd) Name() string     { return "deposit" }
func (*depositCmd) Synopsis() string { return "add funds to a wallet" }
func (*depositCmd) Usage() string {
	return "valutahub deposit -currency <code> -amount <value>\n"
}

func (c *depositCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.currency, "currency", "", "wallet currency code")
	f.StringVar(&c.amount, "amount", "", "amount to deposit")
}

func (c *depositCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	sess, ok := c.app.currentUser()
	if !ok {
		return subcommands.ExitFailure
	}
	amount, err := decimal.NewFromString(c.amount)
	if err != nil {
		fmt.Println("invalid amount:", c.amount)
		return subcommands.ExitUsageError
	}

	balance, err := c.app.Accounts.Deposit(sess.UserID, c.currency, amount)
	if err != nil {
		fmt.Println("deposit failed:", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("deposited %s, new balance %s\n", amount, balance)
	return subcommands.ExitSuccess
}
