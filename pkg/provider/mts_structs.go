package provider

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/voidshard/ledgerview/pkg/domain"
)

// TransferRequest is the body of POST /transfers/by-account
type TransferRequest struct {
	FromAccountNumber string          `json:"fromAccountNumber"`
	ToAccountNumber   string          `json:"toAccountNumber"`
	Amount            decimal.Decimal `json:"amount"`
}

// TransferReply is what the backend tells us about an accepted transfer.
// Both fields are optional.
type TransferReply struct {
	TransactionID string `json:"transactionId,omitempty"`
	Status        string `json:"status,omitempty"`
	Message       string `json:"message,omitempty"`
}

// we only parse the subset of fields we use
type profileReply struct {
	ID            int64  `json:"id"`
	AccountNumber string `json:"accountNumber"`
	BankName      string `json:"bankName"`
	PIN           string `json:"pin"`
}

func parseProfile(data []byte) (*domain.Profile, error) {
	rep := &profileReply{}
	err := json.Unmarshal(data, rep)
	if err != nil {
		return nil, err
	}
	return &domain.Profile{
		ID:            rep.ID,
		AccountNumber: rep.AccountNumber,
		BankName:      rep.BankName,
		PIN:           rep.PIN,
	}, nil
}

type accountReply struct {
	ID            int64            `json:"id"`
	AccountNumber string           `json:"accountNumber"`
	Balance       *decimal.Decimal `json:"balance"`
}

func parseAccount(data []byte) (*domain.Account, error) {
	rep := &accountReply{}
	err := json.Unmarshal(data, rep)
	if err != nil {
		return nil, err
	}
	acc := &domain.Account{ID: rep.ID, AccountNumber: rep.AccountNumber}
	if rep.Balance != nil {
		acc.Balance = *rep.Balance
	}
	return acc, nil
}

type historyReply struct {
	AccountID    int64       `json:"accountId"`
	Transactions []ledgerDto `json:"transactions"`
}

type ledgerDto struct {
	ID                    json.Number     `json:"id"`
	FromAccountNumber     string          `json:"fromAccountNumber"`
	ToAccountNumber       string          `json:"toAccountNumber"`
	FromAccountHolderName string          `json:"fromAccountHolderName"`
	ToAccountHolderName   string          `json:"toAccountHolderName"`
	Amount                decimal.Decimal `json:"amount"`
	TransactionDate       string          `json:"transactionDate"`
	Type                  string          `json:"type"`
	Status                string          `json:"status"`
	IdempotencyKey        string          `json:"idempotencyKey"`
	Description           string          `json:"description"`
}

// the backend sends LocalDateTime, ie. no zone
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseDate(s string, loc *time.Location) (time.Time, error) {
	for _, layout := range dateLayouts {
		t, err := time.ParseInLocation(layout, s, loc)
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised transaction date %q", s)
}

// parseTransactions maps the history reply. A record with a date we can't read
// is kept with a zero OccurredAt rather than failing the whole ledger.
func parseTransactions(data []byte, loc *time.Location, log zerolog.Logger) ([]*domain.Transaction, error) {
	raw := &historyReply{}
	err := json.Unmarshal(data, raw)
	if err != nil {
		return nil, err
	}

	txns := []*domain.Transaction{}
	for _, t := range raw.Transactions {
		when, err := parseDate(t.TransactionDate, loc)
		if err != nil {
			log.Warn().Err(err).Str("id", t.ID.String()).Msg("keeping transaction without a date")
		}

		ref := t.IdempotencyKey
		if ref == "" {
			ref = fmt.Sprintf("TXN%s", t.ID)
		}

		txns = append(txns, &domain.Transaction{
			ID:          t.ID.String(),
			FromAccount: t.FromAccountNumber,
			ToAccount:   t.ToAccountNumber,
			FromHolder:  t.FromAccountHolderName,
			ToHolder:    t.ToAccountHolderName,
			Amount:      t.Amount.Abs(),
			OccurredAt:  when,
			Kind:        domain.NormalizeKind(t.Type),
			Status:      domain.NormalizeStatus(t.Status),
			ReferenceID: ref,
			Description: t.Description,
		})
	}

	return txns, nil
}

type transferReply struct {
	Message       string      `json:"message"`
	TransactionID json.Number `json:"transactionId"`
	Status        string      `json:"status"`
}

func parseTransferReply(data []byte) (*TransferReply, error) {
	rep := &TransferReply{}
	if len(strings.TrimSpace(string(data))) == 0 {
		return rep, nil // nothing to say, but it was accepted
	}

	raw := &transferReply{}
	err := json.Unmarshal(data, raw)
	if err != nil {
		return nil, err
	}

	rep.TransactionID = raw.TransactionID.String()
	rep.Status = raw.Status
	rep.Message = raw.Message
	return rep, nil
}

// errorReply is the error body our backend sends on failure
type errorReply struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func parseErrorMessage(data []byte) string {
	rep := &errorReply{}
	if err := json.Unmarshal(data, rep); err != nil {
		return ""
	}
	return rep.Message
}
