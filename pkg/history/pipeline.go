// Package history fetches a user's transaction history and keeps a filtered,
// paginated view of it in step with the ledger.
//
// A run walks identity -> bank profile -> account -> ledger, each step waiting on
// the one before. Navigation and refresh each start a new run, superseding the
// previous one: the old run's context is cancelled and, because every run holds a
// generation token, anything it still produces is thrown away. Ledger broadcasts
// only re-derive the view and never start a fetch.
package history

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/voidshard/ledgerview/pkg/domain"
	"github.com/voidshard/ledgerview/pkg/ledger"
	"github.com/voidshard/ledgerview/pkg/provider"
)

const DefaultPageSize = 5

type Config struct {
	// PageSize is how many records LoadMore adds, defaults to DefaultPageSize
	PageSize int

	// Now is the clock filters are evaluated against, defaults to time.Now
	Now func() time.Time
}

type Pipeline struct {
	lock sync.Mutex

	api    provider.Ledger
	ledger *ledger.Ledger
	viewer *domain.Viewer
	log    zerolog.Logger

	pageSize int
	now      func() time.Time

	// current run
	generation uint64
	cancel     context.CancelFunc
	stage      Stage
	outcome    Outcome
	loading    bool
	lastErr    error

	balance    decimal.Decimal
	hasBalance bool

	// view
	filter    domain.Filter
	raw       []*domain.Transaction
	filtered  []*domain.Transaction
	displayed []*domain.Transaction
	page      int
	hasMore   bool
}

func New(api provider.Ledger, l *ledger.Ledger, viewer *domain.Viewer, log zerolog.Logger, cfg *Config) *Pipeline {
	if cfg == nil {
		cfg = &Config{}
	}
	p := &Pipeline{
		api:       api,
		ledger:    l,
		viewer:    viewer,
		log:       log.With().Str("component", "history").Logger(),
		pageSize:  cfg.PageSize,
		now:       cfg.Now,
		filter:    domain.FilterAll,
		raw:       []*domain.Transaction{},
		filtered:  []*domain.Transaction{},
		displayed: []*domain.Transaction{},
	}
	if p.pageSize <= 0 {
		p.pageSize = DefaultPageSize
	}
	if p.now == nil {
		p.now = time.Now
	}

	// start from whatever the ledger already holds (eg. restored from the store)
	p.raw = l.Current()
	p.applyFilter()
	return p
}

// Navigate is called when the history view is arrived at.
func (p *Pipeline) Navigate(ctx context.Context) <-chan struct{} {
	return p.trigger(ctx, SourceNavigation)
}

// Refresh is an explicit request for fresh data.
func (p *Pipeline) Refresh(ctx context.Context) <-chan struct{} {
	return p.trigger(ctx, SourceRefresh)
}

// trigger supersedes any run in flight and starts a new one. The returned
// channel is closed once the new run is finished with, whether it committed,
// failed or was itself superseded.
func (p *Pipeline) trigger(ctx context.Context, source Source) <-chan struct{} {
	runCtx, cancel := context.WithCancel(ctx)

	p.lock.Lock()
	if p.cancel != nil {
		p.cancel()
	}
	p.generation++
	gen := p.generation
	p.cancel = cancel
	p.stage = Idle
	p.outcome = OutcomeNone
	p.loading = true
	p.lock.Unlock()

	p.log.Debug().Uint64("generation", gen).Str("source", string(source)).Msg("starting fetch")

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer cancel()
		p.run(runCtx, gen)
	}()
	return done
}

// Stop cancels any run in flight without starting another.
func (p *Pipeline) Stop() {
	p.lock.Lock()
	defer p.lock.Unlock()

	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.generation++
	p.loading = false
}

// update applies fn if gen is still the latest run. Returns false if the run
// has been superseded.
func (p *Pipeline) update(gen uint64, fn func()) bool {
	p.lock.Lock()
	defer p.lock.Unlock()

	if gen != p.generation {
		return false
	}
	fn()
	return true
}

func (p *Pipeline) enter(gen uint64, stage Stage) bool {
	ok := p.update(gen, func() { p.stage = stage })
	if ok {
		p.log.Debug().Uint64("generation", gen).Str("stage", stage.String()).Msg("pipeline stage")
	}
	return ok
}

func (p *Pipeline) settle(gen uint64, outcome Outcome, reason string) {
	p.update(gen, func() {
		p.stage = Settled
		p.outcome = outcome
		p.loading = false
	})
	if reason != "" {
		p.log.Info().Uint64("generation", gen).Str("outcome", string(outcome)).Msg(reason)
	}
}

func (p *Pipeline) fail(gen uint64, stage Stage, err error) {
	ok := p.update(gen, func() {
		p.stage = Settled
		p.outcome = OutcomeFailed
		p.loading = false
		p.lastErr = err
	})
	if !ok {
		// superseded, our error is nobody's concern
		return
	}
	p.log.Error().Err(err).Uint64("generation", gen).Str("stage", stage.String()).Msg("history fetch failed")
}

func (p *Pipeline) run(ctx context.Context, gen uint64) {
	// 1. who are we?
	user := ""
	if p.viewer != nil {
		user = p.viewer.User()
	}
	if user == "" {
		p.settle(gen, OutcomeEmpty, "no user logged in")
		return
	}

	// 2. bank profile
	if !p.enter(gen, FetchingProfile) {
		return
	}
	profile, err := p.api.Profile(ctx, user)
	if err != nil {
		p.fail(gen, FetchingProfile, err)
		return
	}
	if profile == nil || profile.AccountNumber == "" {
		p.settle(gen, OutcomeEmpty, "bank profile missing account number")
		return
	}
	ok := p.update(gen, func() {
		p.viewer.Resolve(profile.AccountNumber)
		p.stage = FetchingAccount
	})
	if !ok {
		return
	}

	// 3. account record
	account, err := p.api.Account(ctx, profile.AccountNumber)
	if err != nil {
		p.fail(gen, FetchingAccount, err)
		return
	}
	if account == nil {
		p.settle(gen, OutcomeEmpty, "account missing")
		return
	}
	ok = p.update(gen, func() {
		p.balance = account.Balance
		p.hasBalance = true
	})
	if !ok {
		return
	}
	if account.ID == 0 {
		p.settle(gen, OutcomeEmpty, "account has no id")
		return
	}

	// 4. ledger
	if !p.enter(gen, FetchingLedger) {
		return
	}
	txns, err := p.api.Transactions(ctx, account.ID)
	if err != nil {
		p.fail(gen, FetchingLedger, err)
		return
	}

	committed := p.update(gen, func() {
		p.ledger.Replace(txns)
		p.raw = p.ledger.Current()
		p.applyFilter()

		p.stage = Settled
		p.outcome = OutcomeOK
		p.loading = false
		p.lastErr = nil
	})
	if committed {
		p.log.Info().Uint64("generation", gen).Int("count", len(txns)).Msg("history loaded")
	}
}

// Watch re-derives the view every time the ledger broadcasts, until ctx is
// done or the ledger is closed. It blocks, run it in its own goroutine.
func (p *Pipeline) Watch(ctx context.Context) {
	sub := p.ledger.Subscribe()
	defer sub.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case txns, ok := <-sub.Updates():
			if !ok {
				return
			}
			p.lock.Lock()
			p.raw = txns
			p.rederive()
			p.lock.Unlock()
			p.log.Debug().Str("source", string(SourceStore)).Int("count", len(txns)).Msg("ledger updated, view rebuilt")
		}
	}
}
