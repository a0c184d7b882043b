package domain

// Direction is how a record looks from the viewer's side.
type Direction string

const (
	Credit Direction = "credit"
	Debit  Direction = "debit"
)

// intrinsic is the direction implied by the record's own Kind.
func intrinsic(t *Transaction) Direction {
	if t != nil && t.Kind == KindCredit {
		return Credit
	}
	return Debit
}

// DirectionFor works out whether a record is money in (Credit) or money out (Debit)
// for the given viewer account. An empty viewer means "not yet resolved".
//
// Two party transfers are judged by which side the viewer sits on, everything
// else falls back to the record's Kind. Never panics, including on nil records.
func DirectionFor(t *Transaction, viewer string) Direction {
	if t == nil || viewer == "" {
		return intrinsic(t)
	}
	if t.IsTwoParty() {
		if t.ToAccount == viewer {
			return Credit
		}
		if t.FromAccount == viewer {
			return Debit
		}
	}
	return intrinsic(t)
}

// SignFor returns "+" for credits and "-" for debits. While the viewer is
// unresolved the sign is ambiguous and "" is returned.
func SignFor(t *Transaction, viewer string) string {
	if viewer == "" {
		return ""
	}
	if DirectionFor(t, viewer) == Credit {
		return "+"
	}
	return "-"
}

// Counterparty returns the account (and holder name, if known) on the other side
// of the record from the viewer.
func Counterparty(t *Transaction, viewer string) (account, holder string) {
	if t == nil {
		return "", ""
	}
	if DirectionFor(t, viewer) == Credit {
		if t.FromAccount != "" {
			return t.FromAccount, t.FromHolder
		}
		return t.ToAccount, t.ToHolder
	}
	if t.ToAccount != "" {
		return t.ToAccount, t.ToHolder
	}
	return t.FromAccount, t.FromHolder
}
