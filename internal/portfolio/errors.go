package portfolio

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrUserExists         = errors.New("username is already taken")
	ErrInvalidCredentials = errors.New("unknown username or wrong password")
	ErrUserNotFound       = errors.New("user not found")
)

// InsufficientFundsError reports a withdrawal or purchase exceeding the
// wallet balance.
type InsufficientFundsError struct {
	Currency  string
	Requested decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient %s funds: requested %s, available %s",
		e.Currency, e.Requested.String(), e.Available.String())
}
