package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountNumberLength is the canonical length of an account number.
const AccountNumberLength = 12

// Profile is the bank profile attached to a user (GET /account-setup/user/{user}).
type Profile struct {
	ID            int64  `json:"id"`
	AccountNumber string `json:"accountNumber"`
	BankName      string `json:"bankName,omitempty"`

	// PIN is held in memory only, it is never persisted.
	PIN string `json:"-"`
}

// Account is the account record (GET /accounts/number/{accountNumber}).
type Account struct {
	ID            int64           `json:"id"`
	AccountNumber string          `json:"accountNumber"`
	Balance       decimal.Decimal `json:"balance"`
}

// NewTransactionID returns an id for a record created on this client.
func NewTransactionID() string {
	return uuid.New().String()
}

// NewReferenceID returns a human readable correlation token of the form TXNnnnnnn,
// built from the last six digits of the millisecond clock.
func NewReferenceID(now time.Time) string {
	ms := now.UnixNano() / int64(time.Millisecond)
	return fmt.Sprintf("TXN%06d", ms%1000000)
}
