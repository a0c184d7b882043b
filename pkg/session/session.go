// Package session ties the per-login pieces together: who is looking, the
// shared ledger, the history view and the transfer flow.
package session

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"github.com/voidshard/ledgerview/pkg/domain"
	"github.com/voidshard/ledgerview/pkg/history"
	"github.com/voidshard/ledgerview/pkg/ledger"
	"github.com/voidshard/ledgerview/pkg/provider"
	"github.com/voidshard/ledgerview/pkg/store"
	"github.com/voidshard/ledgerview/pkg/transfer"
)

type Config struct {
	History  *history.Config
	Transfer *transfer.Config
}

// Session is everything that lives between login and logout.
type Session struct {
	Viewer   *domain.Viewer
	Ledger   *ledger.Ledger
	History  *history.Pipeline
	Transfer *transfer.Machine

	log zerolog.Logger

	cancel    context.CancelFunc
	watching  chan struct{}
	closeOnce sync.Once
}

// New starts a session for user. The ledger is restored from st (which may be
// nil) and the history view follows it until Close.
func New(user string, api provider.Ledger, st store.Store, log zerolog.Logger, cfg *Config) *Session {
	if cfg == nil {
		cfg = &Config{}
	}
	log = log.With().Str("user", user).Logger()

	viewer := domain.NewViewer(user)
	l := ledger.New(st, log)
	l.Restore()

	s := &Session{
		Viewer:   viewer,
		Ledger:   l,
		History:  history.New(api, l, viewer, log, cfg.History),
		Transfer: transfer.New(api, l, viewer, log, cfg.Transfer),
		log:      log,
		watching: make(chan struct{}),
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go func() {
		defer close(s.watching)
		s.History.Watch(ctx)
	}()

	log.Debug().Msg("session started")
	return s
}

// Close is logout. In flight fetches are abandoned, the challenge timer is
// stopped and the viewer forgets who it was. Safe to call more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.History.Stop()
		s.Transfer.Close()
		s.cancel()
		s.Ledger.Close()
		<-s.watching
		s.Viewer.Clear()
		s.log.Debug().Msg("session closed")
	})
}
