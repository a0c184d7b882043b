package history

import (
	"github.com/shopspring/decimal"
	"github.com/voidshard/ledgerview/pkg/domain"
)

// View is a point in time copy of what the history screen shows.
type View struct {
	Stage   Stage
	Outcome Outcome
	Loading bool

	// Err is the last fetch failure of the current run, for display / logs only.
	Err error

	// Account is the viewer's account number, "" until resolved.
	Account    string
	Balance    decimal.Decimal
	HasBalance bool

	Filter    domain.Filter
	Total     int // number of records matching Filter
	Page      int // pages loaded so far
	Displayed []*domain.Transaction
	HasMore   bool
}

// BalanceText is the balance to 2dp, or a placeholder if we don't know it yet.
func (v *View) BalanceText() string {
	if !v.HasBalance {
		return "--.--"
	}
	return v.Balance.StringFixed(2)
}

func (p *Pipeline) View() View {
	p.lock.Lock()
	defer p.lock.Unlock()

	displayed := make([]*domain.Transaction, len(p.displayed))
	copy(displayed, p.displayed)

	account := ""
	if p.viewer != nil {
		account = p.viewer.Account()
	}

	return View{
		Stage:      p.stage,
		Outcome:    p.outcome,
		Loading:    p.loading,
		Err:        p.lastErr,
		Account:    account,
		Balance:    p.balance,
		HasBalance: p.hasBalance,
		Filter:     p.filter,
		Total:      len(p.filtered),
		Page:       p.page,
		Displayed:  displayed,
		HasMore:    p.hasMore,
	}
}

// SetFilter changes the filter and resets the view to the first page. It
// works on the records already held and never asks the backend for more.
func (p *Pipeline) SetFilter(f domain.Filter) {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.filter = f
	p.applyFilter()
}

// LoadMore appends the next page and reports if there is more to come.
// Once everything is displayed it changes nothing.
func (p *Pipeline) LoadMore() bool {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.loadMore()
}

// applyFilter must be called with the lock held.
func (p *Pipeline) applyFilter() {
	p.filtered = p.filter.Apply(p.raw, p.now())
	p.displayed = []*domain.Transaction{}
	p.page = 0
	p.loadMore()
}

// rederive refilters p.raw keeping as many pages as are already loaded, so a
// ledger update never undoes LoadMore. Must be called with the lock held.
func (p *Pipeline) rederive() {
	p.filtered = p.filter.Apply(p.raw, p.now())

	pages := p.page
	if pages < 1 {
		pages = 1
	}
	end := pages * p.pageSize
	if end > len(p.filtered) {
		end = len(p.filtered)
	}

	p.displayed = append([]*domain.Transaction{}, p.filtered[:end]...)
	p.page = (end + p.pageSize - 1) / p.pageSize
	p.hasMore = end < len(p.filtered)
}

// loadMore must be called with the lock held.
func (p *Pipeline) loadMore() bool {
	start := len(p.displayed)
	if start >= len(p.filtered) {
		p.hasMore = false
		return false
	}

	end := start + p.pageSize
	if end > len(p.filtered) {
		end = len(p.filtered)
	}

	p.displayed = append(p.displayed, p.filtered[start:end]...)
	p.page++
	p.hasMore = len(p.displayed) < len(p.filtered)
	return p.hasMore
}
