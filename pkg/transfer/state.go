package transfer

// State of the transfer confirmation flow.
type State int

const (
	Composing State = iota
	PinChallenge
	Submitting
	Succeeded
	RejectedPIN
	RejectedBackend
)

func (s State) String() string {
	switch s {
	case PinChallenge:
		return "pin-challenge"
	case Submitting:
		return "submitting"
	case Succeeded:
		return "succeeded"
	case RejectedPIN:
		return "rejected-incorrect-pin"
	case RejectedBackend:
		return "rejected-backend-error"
	default:
		return "composing"
	}
}

// ChallengeOpen reports if the PIN prompt is showing in this state.
func (s State) ChallengeOpen() bool {
	switch s {
	case PinChallenge, Submitting, RejectedPIN, RejectedBackend:
		return true
	}
	return false
}

const (
	msgPINLength      = "Please enter a 4-digit PIN."
	msgIncorrectPIN   = "Incorrect PIN. Transaction failed."
	msgNoPIN          = "No PIN has been set for this account."
	msgLoading        = "Loading your account details... Please try again in a moment."
	msgGenericFailure = "Transaction failed. Please try again."

	descIncorrectPIN = "Incorrect PIN"
	descCompleted    = "Transfer completed"
)
