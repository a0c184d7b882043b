package provider

import (
	"context"

	"github.com/voidshard/ledgerview/pkg/domain"
)

// Ledger is the backend account / ledger service as seen by this client.
type Ledger interface {
	// Profile returns the bank profile for a user, or nil (and no error) if the
	// user has not set one up yet.
	Profile(ctx context.Context, user string) (*domain.Profile, error)

	// Account looks up an account by its number. Returns nil (and no error) if
	// there is no such account.
	Account(ctx context.Context, number string) (*domain.Account, error)

	// Transactions returns the ledger for the given account id.
	Transactions(ctx context.Context, accountID int64) ([]*domain.Transaction, error)

	// Transfer asks the backend to move money between two accounts.
	Transfer(ctx context.Context, req *TransferRequest) (*TransferReply, error)
}
