package ledger

import (
	"github.com/voidshard/ledgerview/pkg/domain"
)

// Subscription receives the full transaction list every time it changes.
//
// Only the latest list is kept; a slow reader skips intermediate versions
// rather than blocking the ledger.
type Subscription struct {
	id     uint64
	ch     chan []*domain.Transaction
	ledger *Ledger
}

// Updates yields snapshots. It is closed when the subscription or the ledger is closed.
func (s *Subscription) Updates() <-chan []*domain.Transaction {
	return s.ch
}

// Close stops delivery. Safe to call more than once.
func (s *Subscription) Close() {
	l := s.ledger
	l.lock.Lock()
	defer l.lock.Unlock()

	if _, ok := l.subs[s.id]; !ok {
		return
	}
	delete(l.subs, s.id)
	close(s.ch)
}

// Subscribe registers for updates. The current list is available on the
// channel straight away.
func (l *Ledger) Subscribe() *Subscription {
	l.lock.Lock()
	defer l.lock.Unlock()

	l.nextID++
	sub := &Subscription{
		id:     l.nextID,
		ch:     make(chan []*domain.Transaction, 1),
		ledger: l,
	}
	if l.closed {
		close(sub.ch)
		return sub
	}

	l.subs[sub.id] = sub
	sub.ch <- l.snapshot()
	return sub
}

// publish hands every subscriber the current list, replacing anything they
// haven't read yet. Must be called with the lock held.
func (l *Ledger) publish() {
	for _, sub := range l.subs {
		select {
		case <-sub.ch: // drop the stale value
		default:
		}
		sub.ch <- l.snapshot()
	}
}
