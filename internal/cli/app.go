// Package cli wires the application together and exposes it as
// subcommands.
package cli

import (
	"fmt"
	"strings"

	"github.com/google/subcommands"

	"valutahub/config"
	"valutahub/internal/portfolio"
	"valutahub/internal/quote"
	"valutahub/internal/session"
	"valutahub/internal/source"
	"valutahub/internal/store"
	"valutahub/internal/updater"
	"valutahub/logger"
)

// App holds every wired dependency the commands share.
type App struct {
	Cfg      *config.Config
	Log      *logger.Log
	Cache    *store.CacheStore
	History  *store.HistoryStore
	Quotes   *quote.Service
	Accounts *portfolio.Service
	Sessions *session.Store

	client *source.Client
}

func NewApp(cfg *config.Config, log *logger.Log) *App {
	cache := store.NewCacheStore(cfg.Storage.RatesPath(), cfg.Currencies.Base, log)
	history := store.NewHistoryStore(cfg.Storage.HistoryPath(), log)
	quotes := quote.NewService(cache, cfg.Currencies.Base, cfg.Currencies.Crypto, log)
	users := portfolio.NewUserStore(cfg.Storage.UsersPath(), log)
	wallets := portfolio.NewWalletStore(cfg.Storage.PortfoliosPath(), log)

	return &App{
		Cfg:      cfg,
		Log:      log,
		Cache:    cache,
		History:  history,
		Quotes:   quotes,
		Accounts: portfolio.NewService(users, wallets, quotes, cfg.Currencies.Base, log),
		Sessions: session.NewStore(cfg.Storage.SessionPath(), log),
		client:   source.NewClient(cfg.Request, log),
	}
}

// Register wires every command into the commander.
func (a *App) Register(c *subcommands.Commander) {
	c.Register(&registerCmd{app: a}, "account")
	c.Register(&loginCmd{app: a}, "account")
	c.Register(&logoutCmd{app: a}, "account")

	c.Register(&depositCmd{app: a}, "portfolio")
	c.Register(&withdrawCmd{app: a}, "portfolio")
	c.Register(&balanceCmd{app: a}, "portfolio")
	c.Register(&buyCmd{app: a}, "portfolio")
	c.Register(&sellCmd{app: a}, "portfolio")
	c.Register(&showPortfolioCmd{app: a}, "portfolio")

	c.Register(&getRateCmd{app: a}, "rates")
	c.Register(&showRatesCmd{app: a}, "rates")
	c.Register(&updateRatesCmd{app: a}, "rates")
	c.Register(&watchCmd{app: a}, "rates")
}

// Sources builds the provider adapters, optionally narrowed to a single
// one by name.
func (a *App) Sources(filter string) ([]source.Source, error) {
	all := []source.Source{
		source.NewCoinGecko(a.Cfg, a.client, a.Log),
		source.NewExchangeRate(a.Cfg, a.client, a.Log),
	}
	if filter == "" {
		return all, nil
	}

	for _, src := range all {
		if strings.EqualFold(src.Name(), filter) {
			return []source.Source{src}, nil
		}
	}
	names := make([]string, 0, len(all))
	for _, src := range all {
		names = append(names, src.Name())
	}
	return nil, fmt.Errorf("unknown source %q, available: %s", filter, strings.Join(names, ", "))
}

// Updater builds a refresh coordinator over the given sources.
func (a *App) Updater(sources []source.Source) *updater.Updater {
	return updater.New(sources, a.Cache, a.History, a.Cfg.Currencies.Crypto, a.Log)
}

// currentUser resolves the active session, printing a hint when nobody is
// logged in.
func (a *App) currentUser() (*session.Session, bool) {
	sess, err := a.Sessions.Current()
	if err != nil {
		fmt.Println("you are not logged in, run: valutahub login -username <name>")
		return nil, false
	}
	return sess, true
}
