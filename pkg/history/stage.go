package history

// Stage is where a pipeline run has got to.
type Stage int

const (
	Idle Stage = iota
	FetchingProfile
	FetchingAccount
	FetchingLedger
	Settled
)

func (s Stage) String() string {
	switch s {
	case FetchingProfile:
		return "fetching-profile"
	case FetchingAccount:
		return "fetching-account"
	case FetchingLedger:
		return "fetching-ledger"
	case Settled:
		return "settled"
	default:
		return "idle"
	}
}

// Outcome qualifies the Settled stage.
type Outcome string

const (
	// OutcomeNone means the run has not settled (or never ran).
	OutcomeNone Outcome = ""

	// OutcomeOK means the ledger was fetched and written to the store.
	OutcomeOK Outcome = "ok"

	// OutcomeEmpty means a prerequisite was missing (no user, no profile, no
	// account). The user simply isn't set up yet, this is not an error.
	OutcomeEmpty Outcome = "empty"

	// OutcomeFailed means a request failed. Previously displayed data is kept.
	OutcomeFailed Outcome = "failed"
)

// Source is what caused a run.
type Source string

const (
	SourceNavigation Source = "navigation"
	SourceRefresh    Source = "refresh"
	SourceStore      Source = "store"
)
