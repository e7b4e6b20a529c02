package portfolio

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/shopspring/decimal"

	"valutahub/internal/pair"
	"valutahub/internal/store"
	"valutahub/logger"
)

// Wallets maps currency codes to balances for one user.
type Wallets map[string]decimal.Decimal

type walletFile struct {
	// Keyed by user id, rendered as a string for JSON
	Portfolios map[string]Wallets `json:"portfolios"`
}

// WalletStore persists every user's balances in one JSON file.
type WalletStore struct {
	path string

	mu  sync.Mutex
	log *logger.Entry
}

func NewWalletStore(path string, log *logger.Log) *WalletStore {
	return &WalletStore{
		path: path,
		log:  log.WithComponent("wallet-store"),
	}
}

func (s *WalletStore) readLocked() (*walletFile, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &walletFile{Portfolios: map[string]Wallets{}}, nil
		}
		return nil, &store.StorageError{Op: "read", Path: s.path, Err: err}
	}
	var file walletFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, &store.StorageError{Op: "parse", Path: s.path, Err: err}
	}
	if file.Portfolios == nil {
		file.Portfolios = map[string]Wallets{}
	}
	return &file, nil
}

func userKey(userID int) string {
	return strconv.Itoa(userID)
}

// Balances returns a copy of one user's wallets. A user with no portfolio
// yet gets an empty one.
func (s *WalletStore) Balances(userID int) (Wallets, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.readLocked()
	if err != nil {
		return nil, err
	}
	wallets := Wallets{}
	for code, balance := range file.Portfolios[userKey(userID)] {
		wallets[code] = balance
	}
	return wallets, nil
}

// Deposit adds amount to one wallet, creating it at zero if absent.
func (s *WalletStore) Deposit(userID int, code string, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("amount must be positive")
	}
	return s.adjust(userID, code, amount)
}

// Withdraw removes amount from one wallet, failing when the balance does
// not cover it.
func (s *WalletStore) Withdraw(userID int, code string, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("amount must be positive")
	}
	return s.adjust(userID, code, amount.Neg())
}

func (s *WalletStore) adjust(userID int, code string, delta decimal.Decimal) (decimal.Decimal, error) {
	code, err := pair.Normalize(code)
	if err != nil {
		return decimal.Zero, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.readLocked()
	if err != nil {
		return decimal.Zero, err
	}

	key := userKey(userID)
	wallets := file.Portfolios[key]
	if wallets == nil {
		wallets = Wallets{}
		file.Portfolios[key] = wallets
	}

	balance := wallets[code]
	next := balance.Add(delta)
	if next.IsNegative() {
		return decimal.Zero, &InsufficientFundsError{
			Currency:  code,
			Requested: delta.Neg(),
			Available: balance,
		}
	}
	wallets[code] = next

	if err := store.WriteJSONAtomic(s.path, file); err != nil {
		return decimal.Zero, err
	}

	s.log.WithFields(logger.Fields{
		"user_id":  userID,
		"currency": code,
		"balance":  next.String(),
	}).Debug("wallet updated")
	return next, nil
}

// Exchange atomically moves value between two wallets of one user: debit
// fromAmount of fromCode, credit toAmount of toCode, one file write.
func (s *WalletStore) Exchange(userID int, fromCode string, fromAmount decimal.Decimal, toCode string, toAmount decimal.Decimal) error {
	fromCode, err := pair.Normalize(fromCode)
	if err != nil {
		return err
	}
	toCode, err = pair.Normalize(toCode)
	if err != nil {
		return err
	}
	if !fromAmount.IsPositive() || !toAmount.IsPositive() {
		return fmt.Errorf("amount must be positive")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.readLocked()
	if err != nil {
		return err
	}

	key := userKey(userID)
	wallets := file.Portfolios[key]
	if wallets == nil {
		wallets = Wallets{}
		file.Portfolios[key] = wallets
	}

	available := wallets[fromCode]
	if available.LessThan(fromAmount) {
		return &InsufficientFundsError{
			Currency:  fromCode,
			Requested: fromAmount,
			Available: available,
		}
	}
	wallets[fromCode] = available.Sub(fromAmount)
	wallets[toCode] = wallets[toCode].Add(toAmount)

	return store.WriteJSONAtomic(s.path, file)
}
