// Package transfer gates a money transfer behind a PIN challenge.
//
// A draft is composed, a challenge is opened, the PIN is checked locally against
// the PIN cached for the account and only then is the transfer sent. A wrong PIN
// is recorded in the ledger as a failed transaction and the challenge closes
// itself after a short delay unless the user acts first.
package transfer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/voidshard/ledgerview/pkg/domain"
	"github.com/voidshard/ledgerview/pkg/ledger"
	"github.com/voidshard/ledgerview/pkg/provider"
)

const DefaultDismissAfter = 5 * time.Second

type Config struct {
	// DismissAfter is how long a failed PIN challenge stays open, defaults to DefaultDismissAfter
	DismissAfter time.Duration

	// FallbackPIN is checked against when the account has no PIN of its own.
	// Empty (the default) means there is no fallback and such accounts can't
	// confirm transfers at all. Any value set here is a shared secret for every
	// account without a PIN, so treat it as a test convenience.
	FallbackPIN string

	// Now is the clock used to stamp records, defaults to time.Now
	Now func() time.Time
}

// Draft is the transfer being composed.
type Draft struct {
	Recipient   string
	Amount      string
	Description string
}

// Status is a point in time copy of the machine.
type Status struct {
	State   State
	Draft   Draft
	PIN     string
	Message string

	// Last is the record made by the most recent successful transfer.
	Last *domain.Transaction
}

type Machine struct {
	lock sync.Mutex

	api    provider.Ledger
	ledger *ledger.Ledger
	viewer *domain.Viewer
	log    zerolog.Logger

	dismissAfter time.Duration
	fallbackPIN  string
	now          func() time.Time

	state     State
	draft     Draft
	amount    decimal.Decimal // parsed when the challenge opened
	pin       string
	cachedPIN string
	message   string
	last      *domain.Transaction

	// challenge is bumped every time a challenge opens or closes, so work
	// started under one challenge can tell it has been overtaken.
	challenge uint64
	timer     *time.Timer
	timerGen  uint64
}

func New(api provider.Ledger, l *ledger.Ledger, viewer *domain.Viewer, log zerolog.Logger, cfg *Config) *Machine {
	if cfg == nil {
		cfg = &Config{}
	}
	m := &Machine{
		api:          api,
		ledger:       l,
		viewer:       viewer,
		log:          log.With().Str("component", "transfer").Logger(),
		dismissAfter: cfg.DismissAfter,
		fallbackPIN:  cfg.FallbackPIN,
		now:          cfg.Now,
	}
	if m.dismissAfter <= 0 {
		m.dismissAfter = DefaultDismissAfter
	}
	if m.now == nil {
		m.now = time.Now
	}
	return m
}

// LoadProfile fetches the viewer's bank profile, resolving the sender account
// and caching its PIN in memory. A user with no profile is not an error.
func (m *Machine) LoadProfile(ctx context.Context) error {
	user := m.viewer.User()
	if user == "" {
		return nil
	}

	profile, err := m.api.Profile(ctx, user)
	if err != nil {
		return fmt.Errorf("fetching bank profile: %w", err)
	}
	if profile == nil {
		m.log.Info().Str("user", user).Msg("no bank profile set up")
		return nil
	}

	if profile.AccountNumber != "" {
		m.viewer.Resolve(profile.AccountNumber)
	}

	m.lock.Lock()
	defer m.lock.Unlock()
	m.cachedPIN = profile.PIN
	return nil
}

// Status returns a copy of the current state.
func (m *Machine) Status() Status {
	m.lock.Lock()
	defer m.lock.Unlock()
	return Status{
		State:   m.state,
		Draft:   m.draft,
		PIN:     m.pin,
		Message: m.message,
		Last:    m.last,
	}
}

// SetRecipient takes raw input, anything that isn't a digit is dropped.
func (m *Machine) SetRecipient(input string) string {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.draft.Recipient = CleanAccountNumber(input)
	return m.draft.Recipient
}

func (m *Machine) SetAmount(input string) string {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.draft.Amount = CleanAmount(input)
	return m.draft.Amount
}

func (m *Machine) SetDescription(input string) {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.draft.Description = input
}

// EnterPIN takes raw PIN input, keeping at most 4 digits.
func (m *Machine) EnterPIN(input string) string {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.pin = CleanPIN(input)
	return m.pin
}

// Open validates the draft and opens the PIN challenge. Invalid drafts return a
// *ValidationError and leave the state alone.
func (m *Machine) Open() error {
	m.lock.Lock()
	defer m.lock.Unlock()

	if m.state != Composing {
		return ErrWrongState
	}

	if m.draft.Recipient == "" {
		return invalid("Please enter the recipient's account number.")
	}
	if len(m.draft.Recipient) != domain.AccountNumberLength {
		return invalid(fmt.Sprintf("Account number must be exactly %d digits.", domain.AccountNumberLength))
	}
	if m.draft.Amount == "" {
		return invalid("Please enter the amount to transfer.")
	}
	amount, err := decimal.NewFromString(m.draft.Amount)
	if err != nil {
		return invalid("Please enter a valid amount.")
	}
	if !amount.IsPositive() {
		return invalid("Amount must be greater than zero.")
	}

	m.amount = amount
	m.pin = ""
	m.message = ""
	m.challenge++
	m.state = PinChallenge
	m.log.Debug().Str("recipient", m.draft.Recipient).Str("amount", amount.String()).Msg("pin challenge opened")
	return nil
}

// Cancel closes an open challenge, keeping the draft. Returns false if there
// was no challenge open.
func (m *Machine) Cancel() bool {
	m.lock.Lock()
	defer m.lock.Unlock()

	if !m.state.ChallengeOpen() {
		return false
	}
	m.closeChallenge()
	return true
}

// Reset clears the draft after a finished (or abandoned) transfer, ready to compose another.
func (m *Machine) Reset() {
	m.lock.Lock()
	defer m.lock.Unlock()

	if m.state.ChallengeOpen() {
		m.closeChallenge()
	}
	m.state = Composing
	m.draft = Draft{}
	m.amount = decimal.Zero
}

// closeChallenge must be called with the lock held.
func (m *Machine) closeChallenge() {
	m.disarm()
	m.challenge++
	m.pin = ""
	m.message = ""
	m.state = Composing
}

// Confirm checks the entered PIN and, if it matches, sends the transfer. It
// blocks until the backend answers.
//
// Outcomes the user should see (wrong PIN, backend rejection, account still
// loading) are reported through the returned State and Status().Message; the
// error is only set for input problems or calls made in the wrong state.
func (m *Machine) Confirm(ctx context.Context) (State, error) {
	sub, state, err := m.check()
	if sub == nil {
		return state, err
	}

	reply, err := m.api.Transfer(ctx, sub.req)
	return m.finish(sub, reply, err), nil
}

// submission is a transfer that passed the PIN check.
type submission struct {
	req       *provider.TransferRequest
	draft     Draft
	challenge uint64
}

// check runs the local PIN check. A nil submission means there is nothing to send.
func (m *Machine) check() (*submission, State, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	switch m.state {
	case PinChallenge, RejectedPIN, RejectedBackend:
	default:
		return nil, m.state, ErrWrongState
	}

	if len(m.pin) != pinLength {
		m.message = msgPINLength
		return nil, m.state, invalid(msgPINLength)
	}

	expected := m.cachedPIN
	if expected == "" {
		expected = m.fallbackPIN
	}
	if expected == "" {
		m.message = msgNoPIN
		return nil, m.state, ErrPINNotConfigured
	}

	if m.pin != expected {
		m.rejectPIN()
		return nil, m.state, nil
	}

	// the user acted, the dismissal no longer applies
	m.disarm()

	sender := m.viewer.Account()
	if sender == "" {
		m.state = PinChallenge
		m.message = msgLoading
		return nil, m.state, nil
	}

	m.state = Submitting
	m.message = ""
	return &submission{
		req: &provider.TransferRequest{
			FromAccountNumber: sender,
			ToAccountNumber:   m.draft.Recipient,
			Amount:            m.amount,
		},
		draft:     m.draft,
		challenge: m.challenge,
	}, m.state, nil
}

// finish applies the backend's answer.
func (m *Machine) finish(sub *submission, reply *provider.TransferReply, err error) State {
	m.lock.Lock()
	defer m.lock.Unlock()

	if err != nil {
		if sub.challenge != m.challenge {
			m.log.Warn().Err(err).Msg("transfer failed after challenge was closed")
			return m.state
		}
		m.state = RejectedBackend
		m.message = failureMessage(err)
		m.log.Warn().Err(err).Str("recipient", sub.req.ToAccountNumber).Msg("transfer rejected")
		return m.state
	}

	// the backend moved the money, so the record is kept even if the
	// challenge was cancelled while we waited
	record := m.successRecord(sub.req, reply, sub.draft)
	m.ledger.Prepend(record)
	m.last = record
	m.log.Info().Str("id", record.ID).Str("reference", record.ReferenceID).Msg("transfer completed")

	if sub.challenge != m.challenge {
		return m.state
	}
	m.disarm()
	m.challenge++
	m.pin = ""
	m.message = ""
	m.state = Succeeded
	return m.state
}

// rejectPIN records the failed attempt and arms the auto dismissal. Must be
// called with the lock held.
func (m *Machine) rejectPIN() {
	record := &domain.Transaction{
		ID:          domain.NewTransactionID(),
		ToAccount:   m.draft.Recipient,
		Amount:      m.amount,
		OccurredAt:  m.now(),
		Kind:        domain.KindDebit,
		Status:      domain.StatusFailed,
		ReferenceID: domain.NewReferenceID(m.now()),
		Description: descIncorrectPIN,
		Local:       true,
	}
	m.ledger.Prepend(record)

	m.state = RejectedPIN
	m.pin = ""
	m.message = msgIncorrectPIN
	m.arm()
	m.log.Warn().Str("reference", record.ReferenceID).Msg("incorrect PIN entered")
}

func (m *Machine) successRecord(req *provider.TransferRequest, reply *provider.TransferReply, draft Draft) *domain.Transaction {
	id := ""
	status := domain.StatusCompleted
	if reply != nil {
		id = reply.TransactionID
		if reply.Status != "" {
			status = domain.NormalizeStatus(reply.Status)
		}
	}
	if id == "" {
		id = domain.NewTransactionID()
	}

	desc := draft.Description
	if desc == "" {
		desc = descCompleted
	}

	return &domain.Transaction{
		ID:          id,
		FromAccount: req.FromAccountNumber,
		ToAccount:   req.ToAccountNumber,
		Amount:      req.Amount,
		OccurredAt:  m.now(),
		Kind:        domain.KindTransfer,
		Status:      status,
		ReferenceID: domain.NewReferenceID(m.now()),
		Description: desc,
	}
}

// failureMessage picks what to tell the user about a failed submission.
func failureMessage(err error) string {
	var apiErr *provider.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		if apiErr.StatusText != "" {
			return fmt.Sprintf("%s (%d)", apiErr.StatusText, apiErr.Status)
		}
	}
	return msgGenericFailure
}

// arm (re)starts the dismissal timer. Must be called with the lock held.
func (m *Machine) arm() {
	m.disarm()
	gen := m.timerGen
	m.timer = time.AfterFunc(m.dismissAfter, func() { m.dismiss(gen) })
}

// disarm stops any pending dismissal. Must be called with the lock held.
func (m *Machine) disarm() {
	m.timerGen++
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}

func (m *Machine) dismiss(gen uint64) {
	m.lock.Lock()
	defer m.lock.Unlock()

	// Stop() can lose the race with a timer that already fired
	if gen != m.timerGen || m.state != RejectedPIN {
		m.log.Debug().Msg("ignoring stale dismissal")
		return
	}
	m.closeChallenge()
	m.log.Debug().Msg("pin challenge dismissed")
}

// Close stops the dismissal timer, for session teardown.
func (m *Machine) Close() {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.disarm()
	m.cachedPIN = ""
	m.pin = ""
}
