package cli

import (
	"context"
	"flag"
	"fmt"
	"sort"

	"github.com/google/subcommands"
)

type balanceCmd struct {
	app *App
}

func (*balanceCmd) Name() string             { return "balance" }
func (*balanceCmd) Synopsis() string         { return "list wallet balances" }
func (*balanceCmd) Usage() string            { return "valutahub balance\n" }
func (*balanceCmd) SetFlags(f *flag.FlagSet) {}

func (c *balanceCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	sess, ok := c.app.currentUser()
	if !ok {
		return subcommands.ExitFailure
	}

	wallets, err := c.app.Accounts.Balances(sess.UserID)
	if err != nil {
		fmt.Println("could not read balances:", err)
		return subcommands.ExitFailure
	}
	if len(wallets) == 0 {
		fmt.Println("no wallets yet, use deposit to add funds")
		return subcommands.ExitSuccess
	}

	codes := make([]string, 0, len(wallets))
	for code := range wallets {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for _, code := range codes {
		fmt.Printf("%-6s %s\n", code, wallets[code])
	}
	return subcommands.ExitSuccess
}
