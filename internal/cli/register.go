package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
)

type registerCmd struct {
	app      *App
	username string
	password string
}

func (*registerCmd) Name() string     { return "register" }
func (*registerCmd) Synopsis() string { return "create a new account" }
func (*registerCmd) Usage() string {
	return "valutahub register -username <name> -password <password>\n"
}

func (c *registerCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.username, "username", "", "account name")
	f.StringVar(&c.password, "password", "", "account password")
}

func (c *registerCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.username == "" || c.password == "" {
		fmt.Println("both -username and -password are required")
		return subcommands.ExitUsageError
	}

	user, err := c.app.Accounts.Register(c.username, c.password)
	if err != nil {
		fmt.Println("registration failed:", err)
		return subcommands.ExitFailure
	}

	if err := c.app.Sessions.Save(user.ID, user.Username); err != nil {
		fmt.Println("account created but session could not be saved:", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("welcome %s, you are registered and logged in\n", user.Username)
	return subcommands.ExitSuccess
}
