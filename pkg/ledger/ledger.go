// Package ledger holds the most recently known transaction list for a session.
//
// The Ledger owns the list. Everyone else proposes whole-list replacements or
// single prepends and reads snapshots; nobody edits a subset in place. Records
// handed out are shared and must be treated as read only.
package ledger

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/rs/zerolog"
	"github.com/voidshard/ledgerview/pkg/domain"
	"github.com/voidshard/ledgerview/pkg/store"
)

// StoreKey is the key the transaction list is mirrored under.
const StoreKey = "transactions"

type Ledger struct {
	lock   sync.Mutex
	txns   []*domain.Transaction
	subs   map[uint64]*Subscription
	nextID uint64
	closed bool

	store store.Store
	log   zerolog.Logger
}

// New creates an empty ledger mirroring to st. st may be nil, in which case
// nothing is persisted.
func New(st store.Store, log zerolog.Logger) *Ledger {
	return &Ledger{
		txns:  []*domain.Transaction{},
		subs:  map[uint64]*Subscription{},
		store: st,
		log:   log.With().Str("component", "ledger").Logger(),
	}
}

// Restore loads the last mirrored list from the store, if any. Missing or
// unreadable content leaves the ledger empty; it is never an error.
func (l *Ledger) Restore() {
	if l.store == nil {
		return
	}

	data, err := l.store.Get(StoreKey)
	if errors.Is(err, store.ErrNoKey) {
		return
	}
	if err != nil {
		l.log.Warn().Err(err).Msg("failed to read stored transactions, starting empty")
		return
	}

	txns, err := domain.ParseTransactions(data)
	if err != nil {
		l.log.Warn().Err(err).Msg("stored transactions unreadable, starting empty")
		return
	}

	l.lock.Lock()
	defer l.lock.Unlock()
	l.txns = txns
	l.publish()
	l.log.Debug().Int("count", len(txns)).Msg("restored transactions")
}

// Replace swaps out the entire list.
func (l *Ledger) Replace(txns []*domain.Transaction) {
	cp := make([]*domain.Transaction, 0, len(txns))
	for _, t := range txns {
		if t != nil {
			cp = append(cp, t)
		}
	}

	l.lock.Lock()
	defer l.lock.Unlock()
	l.txns = cp
	l.publish()
	l.mirror()
}

// Prepend puts t at the front of the list.
func (l *Ledger) Prepend(t *domain.Transaction) {
	if t == nil {
		return
	}

	l.lock.Lock()
	defer l.lock.Unlock()

	updated := make([]*domain.Transaction, 0, len(l.txns)+1)
	updated = append(updated, t)
	l.txns = append(updated, l.txns...)
	l.publish()
	l.mirror()
}

// Current returns a snapshot of the list.
func (l *Ledger) Current() []*domain.Transaction {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.snapshot()
}

func (l *Ledger) snapshot() []*domain.Transaction {
	cp := make([]*domain.Transaction, len(l.txns))
	copy(cp, l.txns)
	return cp
}

// mirror writes the current list to the store. Failures are logged and
// swallowed. Must be called with the lock held so writes land in order.
func (l *Ledger) mirror() {
	if l.store == nil {
		return
	}

	data, err := json.Marshal(l.txns)
	if err != nil {
		l.log.Error().Err(err).Msg("failed to encode transactions")
		return
	}

	err = l.store.Put(StoreKey, data)
	if err != nil {
		l.log.Error().Err(err).Msg("failed to mirror transactions")
	}
}

// Close ends all subscriptions. The ledger is still readable afterwards but
// no longer broadcasts.
func (l *Ledger) Close() {
	l.lock.Lock()
	defer l.lock.Unlock()

	l.closed = true
	for id, sub := range l.subs {
		delete(l.subs, id)
		close(sub.ch)
	}
}
