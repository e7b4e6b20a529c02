package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/subcommands"

	"valutahub/internal/scheduler"
)

type watchCmd struct {
	app      *App
	interval time.Duration
}

func (*watchCmd) Name() string     { return "watch" }
func (*watchCmd) Synopsis() string { return "refresh rates on an interval until interrupted" }
func (*watchCmd) Usage() string {
	return "valutahub watch [-interval <duration>]\n"
}

func (c *watchCmd) SetFlags(f *flag.FlagSet) {
	f.DurationVar(&c.interval, "interval", 0, "refresh interval (defaults to the configured one)")
}

func (c *watchCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	interval := c.interval
	if interval <= 0 {
		interval = c.app.Cfg.Scheduler.Interval()
	}

	sources, err := c.app.Sources("")
	if err != nil {
		fmt.Println(err)
		return subcommands.ExitFailure
	}
	sched := scheduler.New(c.app.Updater(sources), interval, c.app.Log)
	if err := sched.Start(); err != nil {
		fmt.Println("could not start scheduler:", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("refreshing every %s, press Ctrl-C to stop\n", interval)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	<-sigs

	fmt.Println("stopping...")
	if err := sched.Stop(c.app.Cfg.Scheduler.StopTimeout()); err != nil {
		fmt.Println("shutdown incomplete:", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
