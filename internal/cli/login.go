package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
)

type loginCmd struct {
	app      *App
	username string
	password string
}

func (*loginCmd) Name() string     { return "login" }
func (*loginCmd) Synopsis() string { return "log in to an existing account" }
func (*loginCmd) Usage() string {
	return "valutahub login -username <name> -password <password>\n"
}

func (c *loginCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.username, "username", "", "account name")
	f.StringVar(&c.password, "password", "", "account password")
}

func (c *loginCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.username == "" || c.password == "" {
		fmt.Println("both -username and -password are required")
		return subcommands.ExitUsageError
	}

	user, err := c.app.Accounts.Login(c.username, c.password)
	if err != nil {
		fmt.Println("login failed:", err)
		return subcommands.ExitFailure
	}

	if err := c.app.Sessions.Save(user.ID, user.Username); err != nil {
		fmt.Println("could not save session:", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("welcome back, %s\n", user.Username)
	return subcommands.ExitSuccess
}
