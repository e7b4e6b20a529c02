package portfolio

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"valutahub/logger"
)

type fakeRater struct {
	rates map[string]float64
}

func (f *fakeRater) Rate(from, to string) (float64, error) {
	if from == to {
		return 1, nil
	}
	if rate, ok := f.rates[from+"_"+to]; ok {
		return rate, nil
	}
	return 0, errors.New("no rate")
}

func newTestService(t *testing.T, rates map[string]float64) *Service {
	t.Helper()
	dir := t.TempDir()
	log := logger.Logger()
	users := NewUserStore(filepath.Join(dir, "users.json"), log)
	wallets := NewWalletStore(filepath.Join(dir, "portfolios.json"), log)
	return NewService(users, wallets, &fakeRater{rates: rates}, "USD", log)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newTestService(t, nil)

	user, err := svc.Register("alice", "secret")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if user.ID != 1 {
		t.Errorf("expected id 1, got %d", user.ID)
	}
	if user.PasswordHash == "secret" {
		t.Error("password stored in plain text")
	}

	second, err := svc.Register("bob", "hunter2")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if second.ID != 2 {
		t.Errorf("expected sequential id 2, got %d", second.ID)
	}

	if _, err := svc.Register("Alice", "other"); !errors.Is(err, ErrUserExists) {
		t.Errorf("expected ErrUserExists, got %v", err)
	}

	logged, err := svc.Login("alice", "secret")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if logged.ID != user.ID {
		t.Errorf("unexpected user: %+v", logged)
	}

	if _, err := svc.Login("alice", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login("nobody", "secret"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestService(t, nil)
	if _, err := svc.Register("ab", "secret"); err == nil {
		t.Error("expected error for short username")
	}
	if _, err := svc.Register("alice", "abc"); err == nil {
		t.Error("expected error for short password")
	}
}

func TestDepositWithdraw(t *testing.T) {
	svc := newTestService(t, nil)

	balance, err := svc.Deposit(1, "usd", dec("100.50"))
	if err != nil {
		t.Fatalf("Deposit failed: %v", err)
	}
	if !balance.Equal(dec("100.50")) {
		t.Errorf("unexpected balance: %s", balance)
	}

	balance, err = svc.Withdraw(1, "USD", dec("40"))
	if err != nil {
		t.Fatalf("Withdraw failed: %v", err)
	}
	if !balance.Equal(dec("60.50")) {
		t.Errorf("unexpected balance: %s", balance)
	}

	_, err = svc.Withdraw(1, "USD", dec("1000"))
	var insufficient *InsufficientFundsError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientFundsError, got %v", err)
	}
	if insufficient.Currency != "USD" {
		t.Errorf("unexpected currency in error: %s", insufficient.Currency)
	}

	if _, err := svc.Deposit(1, "USD", dec("-5")); err == nil {
		t.Error("expected error for negative deposit")
	}
}

func TestBuySell(t *testing.T) {
	svc := newTestService(t, map[string]float64{"BTC_USD": 50000})

	if _, err := svc.Deposit(1, "USD", dec("100000")); err != nil {
		t.Fatalf("Deposit failed: %v", err)
	}

	cost, err := svc.Buy(1, "BTC", dec("1.5"))
	if err != nil {
		t.Fatalf("Buy failed: %v", err)
	}
	if !cost.Equal(dec("75000")) {
		t.Errorf("unexpected cost: %s", cost)
	}

	balances, err := svc.Balances(1)
	if err != nil {
		t.Fatalf("Balances failed: %v", err)
	}
	if !balances["USD"].Equal(dec("25000")) {
		t.Errorf("unexpected USD balance: %s", balances["USD"])
	}
	if !balances["BTC"].Equal(dec("1.5")) {
		t.Errorf("unexpected BTC balance: %s", balances["BTC"])
	}

	proceeds, err := svc.Sell(1, "BTC", dec("0.5"))
	if err != nil {
		t.Fatalf("Sell failed: %v", err)
	}
	if !proceeds.Equal(dec("25000")) {
		t.Errorf("unexpected proceeds: %s", proceeds)
	}

	balances, err = svc.Balances(1)
	if err != nil {
		t.Fatalf("Balances failed: %v", err)
	}
	if !balances["USD"].Equal(dec("50000")) {
		t.Errorf("unexpected USD balance after sell: %s", balances["USD"])
	}
	if !balances["BTC"].Equal(dec("1")) {
		t.Errorf("unexpected BTC balance after sell: %s", balances["BTC"])
	}
}

func TestBuyInsufficientFunds(t *testing.T) {
	svc := newTestService(t, map[string]float64{"BTC_USD": 50000})

	if _, err := svc.Deposit(1, "USD", dec("10")); err != nil {
		t.Fatalf("Deposit failed: %v", err)
	}

	_, err := svc.Buy(1, "BTC", dec("1"))
	var insufficient *InsufficientFundsError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientFundsError, got %v", err)
	}

	// A failed trade must not touch either wallet
	balances, err := svc.Balances(1)
	if err != nil {
		t.Fatalf("Balances failed: %v", err)
	}
	if !balances["USD"].Equal(dec("10")) {
		t.Errorf("USD wallet changed by failed buy: %s", balances["USD"])
	}
	if !balances["BTC"].IsZero() {
		t.Errorf("BTC wallet changed by failed buy: %s", balances["BTC"])
	}
}

func TestBuyWithoutRate(t *testing.T) {
	svc := newTestService(t, nil)
	if _, err := svc.Deposit(1, "USD", dec("1000")); err != nil {
		t.Fatalf("Deposit failed: %v", err)
	}
	if _, err := svc.Buy(1, "BTC", dec("1")); err == nil {
		t.Error("expected error when no rate is cached")
	}
}

func TestValue(t *testing.T) {
	svc := newTestService(t, map[string]float64{"BTC_USD": 50000})

	if _, err := svc.Deposit(1, "USD", dec("100")); err != nil {
		t.Fatalf("Deposit failed: %v", err)
	}
	if _, err := svc.Deposit(1, "BTC", dec("2")); err != nil {
		t.Fatalf("Deposit failed: %v", err)
	}
	if _, err := svc.Deposit(1, "XYZ", dec("7")); err != nil {
		t.Fatalf("Deposit failed: %v", err)
	}

	valuation, err := svc.Value(1, "USD")
	if err != nil {
		t.Fatalf("Value failed: %v", err)
	}
	if !valuation.Total.Equal(dec("100100")) {
		t.Errorf("unexpected total: %s", valuation.Total)
	}
	if len(valuation.Positions) != 3 {
		t.Fatalf("expected 3 positions, got %d", len(valuation.Positions))
	}
	// XYZ has no cached rate but still shows up, unpriced
	for _, p := range valuation.Positions {
		if p.Currency == "XYZ" && p.Priced {
			t.Error("expected XYZ to be unpriced")
		}
	}
}
