package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
)

type logoutCmd struct {
	app *App
}

func (*logoutCmd) Name() string             { return "logout" }
func (*logoutCmd) Synopsis() string         { return "log out of the current session" }
func (*logoutCmd) Usage() string            { return "valutahub logout\n" }
func (*logoutCmd) SetFlags(f *flag.FlagSet) {}

func (c *logoutCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := c.app.Sessions.Clear(); err != nil {
		fmt.Println("logout failed:", err)
		return subcommands.ExitFailure
	}
	fmt.Println("logged out")
	return subcommands.ExitSuccess
}
