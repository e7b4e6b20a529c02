package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

type withdrawCmd struct {
	app      *App
	currency string
	amount   string
}

func (*withdrawCmd) Name() string     { return "withdraw" }
func (*withdrawCmd) Synopsis() string { return "remove funds from a wallet" }
func (*withdrawCmd) Usage() string {
	return "valutahub withdraw -currency <code> -amount <value>\n"
}

func (c *withdrawCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.currency, "currency", "", "wallet currency code")
	f.StringVar(&c.amount, "amount", "", "amount to withdraw")
}

func (c *withdrawCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	sess, ok := c.app.currentUser()
	if !ok {
		return subcommands.ExitFailure
	}
	amount, err := decimal.NewFromString(c.amount)
	if err != nil {
		fmt.Println("invalid amount:", c.amount)
		return subcommands.ExitUsageError
	}

	balance, err := c.app.Accounts.Withdraw(sess.UserID, c.currency, amount)
	if err != nil {
		fmt.Println("withdrawal failed:", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("withdrew %s, new balance %s\n", amount, balance)
	return subcommands.ExitSuccess
}
