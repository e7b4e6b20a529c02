package portfolio

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"valutahub/internal/pair"
	"valutahub/logger"
)

// Rater is the rate lookup the trading operations depend on. The cache's
// read side satisfies it.
type Rater interface {
	Rate(from, to string) (float64, error)
}

// Position is one priced wallet line in a valuation.
type Position struct {
	Currency string
	Balance  decimal.Decimal
	Value    decimal.Decimal
	Priced   bool
}

// Valuation is a user's portfolio priced in one currency. Wallets without a
// cached rate are listed unpriced rather than failing the whole report.
type Valuation struct {
	Base      string
	Positions []Position
	Total     decimal.Decimal
}

// Service ties accounts, wallets and rates together for the CLI.
type Service struct {
	users   *UserStore
	wallets *WalletStore
	rates   Rater
	base    string
	log     *logger.Entry
}

func NewService(users *UserStore, wallets *WalletStore, rates Rater, baseCurrency string, log *logger.Log) *Service {
	return &Service{
		users:   users,
		wallets: wallets,
		rates:   rates,
		base:    baseCurrency,
		log:     log.WithComponent("portfolio"),
	}
}

func (s *Service) Register(username, password string) (*User, error) {
	return s.users.Register(username, password)
}

func (s *Service) Login(username, password string) (*User, error) {
	return s.users.Authenticate(username, password)
}

func (s *Service) Lookup(userID int) (*User, error) {
	return s.users.Lookup(userID)
}

func (s *Service) Deposit(userID int, code string, amount decimal.Decimal) (decimal.Decimal, error) {
	return s.wallets.Deposit(userID, code, amount)
}

func (s *Service) Withdraw(userID int, code string, amount decimal.Decimal) (decimal.Decimal, error) {
	return s.wallets.Withdraw(userID, code, amount)
}

func (s *Service) Balances(userID int) (Wallets, error) {
	return s.wallets.Balances(userID)
}

// Buy purchases amount of code, paying from the base currency wallet at
// the cached rate.
func (s *Service) Buy(userID int, code string, amount decimal.Decimal) (decimal.Decimal, error) {
	code, err := pair.Normalize(code)
	if err != nil {
		return decimal.Zero, err
	}
	if code == s.base {
		return decimal.Zero, fmt.Errorf("cannot buy the base currency %s", s.base)
	}
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("amount must be positive")
	}

	rate, err := s.rates.Rate(code, s.base)
	if err != nil {
		return decimal.Zero, err
	}
	cost := amount.Mul(decimal.NewFromFloat(rate))
	if err := s.wallets.Exchange(userID, s.base, cost, code, amount); err != nil {
		return decimal.Zero, err
	}

	s.log.WithFields(logger.Fields{
		"user_id":  userID,
		"currency": code,
		"amount":   amount.String(),
		"cost":     cost.String(),
	}).Info("buy executed")
	return cost, nil
}

// Sell converts amount of code back into the base currency at the cached
// rate.
func (s *Service) Sell(userID int, code string, amount decimal.Decimal) (decimal.Decimal, error) {
	code, err := pair.Normalize(code)
	if err != nil {
		return decimal.Zero, err
	}
	if code == s.base {
		return decimal.Zero, fmt.Errorf("cannot sell the base currency %s", s.base)
	}
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("amount must be positive")
	}

	rate, err := s.rates.Rate(code, s.base)
	if err != nil {
		return decimal.Zero, err
	}
	proceeds := amount.Mul(decimal.NewFromFloat(rate))
	if err := s.wallets.Exchange(userID, code, amount, s.base, proceeds); err != nil {
		return decimal.Zero, err
	}

	s.log.WithFields(logger.Fields{
		"user_id":  userID,
		"currency": code,
		"amount":   amount.String(),
		"proceeds": proceeds.String(),
	}).Info("sell executed")
	return proceeds, nil
}

// Value prices every wallet in the requested currency. Wallets whose pair
// is not cached stay in the report unpriced.
func (s *Service) Value(userID int, in string) (*Valuation, error) {
	in, err := pair.Normalize(in)
	if err != nil {
		return nil, err
	}

	wallets, err := s.wallets.Balances(userID)
	if err != nil {
		return nil, err
	}

	valuation := &Valuation{Base: in}
	codes := make([]string, 0, len(wallets))
	for code := range wallets {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	for _, code := range codes {
		balance := wallets[code]
		position := Position{Currency: code, Balance: balance}
		if rate, err := s.rates.Rate(code, in); err == nil {
			position.Value = balance.Mul(decimal.NewFromFloat(rate))
			position.Priced = true
			valuation.Total = valuation.Total.Add(position.Value)
		}
		valuation.Positions = append(valuation.Positions, position)
	}
	return valuation, nil
}
