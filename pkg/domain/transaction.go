package domain

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Kind is the intrinsic type of a ledger record, independent of who is looking at it.
type Kind string

const (
	KindDebit    Kind = "debit"
	KindCredit   Kind = "credit"
	KindTransfer Kind = "transfer"
)

// Status is the canonical record status.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusPending   Status = "pending"
	StatusFailed    Status = "failed"
)

// NormalizeKind maps a backend type string onto a Kind. Unknown values are treated as debits.
func NormalizeKind(s string) Kind {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindCredit:
		return KindCredit
	case KindTransfer:
		return KindTransfer
	default:
		return KindDebit
	}
}

// NormalizeStatus folds the backend's status aliases (SUCCESS, FAILED, ...) into one Status.
func NormalizeStatus(s string) Status {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "completed", "success", "succeeded", "complete":
		return StatusCompleted
	case "failed", "failure", "error", "rejected":
		return StatusFailed
	default:
		return StatusPending
	}
}

type Transaction struct {
	ID string `json:"id"`

	FromAccount string `json:"fromAccount,omitempty"`
	ToAccount   string `json:"toAccount,omitempty"`

	// holder names, when the backend supplies them
	FromHolder string `json:"fromHolder,omitempty"`
	ToHolder   string `json:"toHolder,omitempty"`

	Amount      decimal.Decimal `json:"amount"`
	OccurredAt  time.Time       `json:"occurredAt"`
	Kind        Kind            `json:"kind"`
	Status      Status          `json:"status"`
	ReferenceID string          `json:"referenceId"`
	Description string          `json:"description,omitempty"`

	// Local is set on records that were created on this client and never
	// seen by the backend (eg. failed PIN attempts).
	Local bool `json:"local,omitempty"`
}

// IsTwoParty reports if both sides of the transfer are known.
func (t *Transaction) IsTwoParty() bool {
	return t.FromAccount != "" && t.ToAccount != ""
}

func (t *Transaction) JSON() ([]byte, error) {
	return json.Marshal(t)
}

// ParseTransactions decodes a persisted transaction list. Nil entries are dropped.
func ParseTransactions(data []byte) ([]*Transaction, error) {
	raw := []*Transaction{}
	err := json.Unmarshal(data, &raw)
	if err != nil {
		return nil, err
	}

	txns := make([]*Transaction, 0, len(raw))
	for _, t := range raw {
		if t != nil {
			txns = append(txns, t)
		}
	}
	return txns, nil
}
