package domain

import (
	"fmt"
	"strings"
	"time"
)

// Filter narrows a transaction list by when each record occurred.
type Filter string

const (
	FilterAll   Filter = "all"
	FilterToday Filter = "today"
	FilterMonth Filter = "this-month"
	FilterYear  Filter = "this-year"
)

// ParseFilter accepts the canonical names plus the short forms "month" and "year".
func ParseFilter(s string) (Filter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return FilterAll, nil
	case "today":
		return FilterToday, nil
	case "this-month", "month":
		return FilterMonth, nil
	case "this-year", "year":
		return FilterYear, nil
	}
	return FilterAll, fmt.Errorf("unknown filter %q, expected one of [all today this-month this-year]", s)
}

// Match reports if t falls inside the filter window relative to now. Dates are
// compared in now's location.
func (f Filter) Match(t *Transaction, now time.Time) bool {
	if t == nil {
		return false
	}
	at := t.OccurredAt.In(now.Location())
	switch f {
	case FilterToday:
		y1, m1, d1 := at.Date()
		y2, m2, d2 := now.Date()
		return y1 == y2 && m1 == m2 && d1 == d2
	case FilterMonth:
		return at.Year() == now.Year() && at.Month() == now.Month()
	case FilterYear:
		return at.Year() == now.Year()
	default:
		return true
	}
}

// Apply returns the records matching f, in their original order. FilterAll returns txns unchanged.
func (f Filter) Apply(txns []*Transaction, now time.Time) []*Transaction {
	if f == FilterAll || f == "" {
		return txns
	}
	out := []*Transaction{}
	for _, t := range txns {
		if f.Match(t, now) {
			out = append(out, t)
		}
	}
	return out
}
