package transfer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/voidshard/ledgerview/pkg/domain"
	"github.com/voidshard/ledgerview/pkg/ledger"
	"github.com/voidshard/ledgerview/pkg/provider"
)

const (
	sender    = "111111111111"
	recipient = "222222222222"
)

type fakeAPI struct {
	lock     sync.Mutex
	profile  *domain.Profile
	reply    *provider.TransferReply
	err      error
	requests []*provider.TransferRequest
}

func (f *fakeAPI) Profile(ctx context.Context, user string) (*domain.Profile, error) {
	return f.profile, nil
}

func (f *fakeAPI) Account(ctx context.Context, number string) (*domain.Account, error) {
	return nil, nil
}

func (f *fakeAPI) Transactions(ctx context.Context, accountID int64) ([]*domain.Transaction, error) {
	return nil, nil
}

func (f *fakeAPI) Transfer(ctx context.Context, req *provider.TransferRequest) (*provider.TransferReply, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.requests = append(f.requests, req)
	return f.reply, f.err
}

func (f *fakeAPI) sent() int {
	f.lock.Lock()
	defer f.lock.Unlock()
	return len(f.requests)
}

func newMachine(t *testing.T, pin string, cfg *Config) (*Machine, *fakeAPI, *ledger.Ledger) {
	api := &fakeAPI{
		profile: &domain.Profile{ID: 1, AccountNumber: sender, PIN: pin},
		reply:   &provider.TransferReply{TransactionID: "42", Status: "SUCCESS"},
	}
	l := ledger.New(nil, zerolog.Nop())
	if cfg == nil {
		cfg = &Config{DismissAfter: 50 * time.Millisecond}
	}
	m := New(api, l, domain.NewViewer("alice"), zerolog.Nop(), cfg)
	require.NoError(t, m.LoadProfile(context.Background()))
	return m, api, l
}

func openChallenge(t *testing.T, m *Machine) {
	m.SetRecipient(recipient)
	m.SetAmount("50")
	require.NoError(t, m.Open())
}

func TestOpenValidation(t *testing.T) {
	cases := []struct {
		name      string
		recipient string
		amount    string
	}{
		{"no recipient", "", "50"},
		{"short recipient", "12345", "50"},
		{"no amount", recipient, ""},
		{"zero amount", recipient, "0"},
		{"zero point zero", recipient, "0.00"},
		{"just a dot", recipient, "."},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			m, api, l := newMachine(t, "4321", nil)
			m.SetRecipient(c.recipient)
			m.SetAmount(c.amount)

			err := m.Open()

			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.NotEmpty(t, verr.Reason)
			assert.Equal(t, Composing, m.Status().State)
			assert.Zero(t, api.sent())
			assert.Empty(t, l.Current())
		})
	}
}

func TestInputCleaning(t *testing.T) {
	m, _, _ := newMachine(t, "4321", nil)

	assert.Equal(t, recipient, m.SetRecipient("2222-2222-2222-99"))
	assert.Equal(t, "12.50", m.SetAmount("$12.5.0"))
	assert.Equal(t, "1234", m.EnterPIN("1a2b3c4d5"))

	require.NoError(t, m.Open())
	assert.Equal(t, PinChallenge, m.Status().State)
	assert.Empty(t, m.Status().PIN)
}

func TestIncorrectPIN(t *testing.T) {
	m, api, l := newMachine(t, "4321", nil)
	openChallenge(t, m)

	m.EnterPIN("0000")
	state, err := m.Confirm(context.Background())
	require.NoError(t, err)
	assert.Equal(t, RejectedPIN, state)

	status := m.Status()
	assert.Empty(t, status.PIN)
	assert.Equal(t, msgIncorrectPIN, status.Message)
	assert.Zero(t, api.sent())

	txns := l.Current()
	require.Len(t, txns, 1)
	assert.Equal(t, domain.KindDebit, txns[0].Kind)
	assert.Equal(t, domain.StatusFailed, txns[0].Status)
	assert.Equal(t, "Incorrect PIN", txns[0].Description)
	assert.Regexp(t, `^TXN\d{6}$`, txns[0].ReferenceID)
	assert.True(t, txns[0].Local)
	assert.True(t, decimal.NewFromInt(50).Equal(txns[0].Amount))

	// dismissal closes the challenge but keeps the draft
	assert.Eventually(t, func() bool { return m.Status().State == Composing }, time.Second, 5*time.Millisecond)
	status = m.Status()
	assert.Empty(t, status.Message)
	assert.Equal(t, recipient, status.Draft.Recipient)
	assert.Equal(t, "50", status.Draft.Amount)
}

func TestRetryAfterIncorrectPIN(t *testing.T) {
	m, api, l := newMachine(t, "4321", &Config{DismissAfter: time.Hour})
	openChallenge(t, m)

	m.EnterPIN("0000")
	m.Confirm(context.Background())
	m.EnterPIN("1111")
	state, _ := m.Confirm(context.Background())
	assert.Equal(t, RejectedPIN, state)
	assert.Len(t, l.Current(), 2)

	m.EnterPIN("4321")
	state, err := m.Confirm(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Succeeded, state)
	assert.Equal(t, 1, api.sent())
	assert.Len(t, l.Current(), 3)
}

func TestSuccess(t *testing.T) {
	m, api, l := newMachine(t, "4321", nil)
	openChallenge(t, m)
	m.SetDescription("rent")

	m.EnterPIN("4321")
	state, err := m.Confirm(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Succeeded, state)

	require.Equal(t, 1, api.sent())
	req := api.requests[0]
	assert.Equal(t, sender, req.FromAccountNumber)
	assert.Equal(t, recipient, req.ToAccountNumber)
	assert.True(t, decimal.NewFromInt(50).Equal(req.Amount))

	txns := l.Current()
	require.Len(t, txns, 1)
	rec := txns[0]
	assert.Equal(t, "42", rec.ID)
	assert.Equal(t, sender, rec.FromAccount)
	assert.Equal(t, recipient, rec.ToAccount)
	assert.Equal(t, domain.KindTransfer, rec.Kind)
	assert.Equal(t, domain.StatusCompleted, rec.Status)
	assert.Equal(t, "rent", rec.Description)
	assert.Equal(t, domain.Debit, domain.DirectionFor(rec, sender))
	assert.Equal(t, rec, m.Status().Last)

	status := m.Status()
	assert.False(t, status.State.ChallengeOpen())
	assert.Empty(t, status.PIN)

	m.Reset()
	status = m.Status()
	assert.Equal(t, Composing, status.State)
	assert.Equal(t, Draft{}, status.Draft)
}

func TestSuccessDefaults(t *testing.T) {
	m, api, l := newMachine(t, "4321", nil)
	api.reply = nil
	openChallenge(t, m)

	m.EnterPIN("4321")
	m.Confirm(context.Background())

	rec := l.Current()[0]
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, domain.StatusCompleted, rec.Status)
	assert.Equal(t, "Transfer completed", rec.Description)
}

func TestBackendRejection(t *testing.T) {
	m, api, l := newMachine(t, "4321", nil)
	api.err = &provider.APIError{Status: 400, StatusText: "Bad Request", Message: "Insufficient balance"}
	openChallenge(t, m)

	m.EnterPIN("4321")
	state, err := m.Confirm(context.Background())
	require.NoError(t, err)
	assert.Equal(t, RejectedBackend, state)
	assert.Equal(t, "Insufficient balance", m.Status().Message)
	assert.Empty(t, l.Current())

	// still open, the user can try again
	api.err = nil
	state, err = m.Confirm(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Succeeded, state)
	assert.Len(t, l.Current(), 1)
}

func TestFailureMessage(t *testing.T) {
	assert.Equal(t, "nope", failureMessage(&provider.APIError{Status: 409, Message: "nope"}))
	assert.Equal(t, "Service Unavailable (503)", failureMessage(&provider.APIError{Status: 503, StatusText: "Service Unavailable"}))
	assert.Equal(t, msgGenericFailure, failureMessage(errors.New("dial tcp: refused")))
}

func TestUnresolvedSender(t *testing.T) {
	api := &fakeAPI{}
	l := ledger.New(nil, zerolog.Nop())
	m := New(api, l, domain.NewViewer("alice"), zerolog.Nop(), &Config{FallbackPIN: "1234"})
	require.NoError(t, m.LoadProfile(context.Background()))

	openChallenge(t, m)
	m.EnterPIN("1234")
	state, err := m.Confirm(context.Background())
	require.NoError(t, err)

	assert.Equal(t, PinChallenge, state)
	assert.Equal(t, msgLoading, m.Status().Message)
	assert.Zero(t, api.sent())
	assert.Empty(t, l.Current())
}

func TestNoPINConfigured(t *testing.T) {
	m, api, l := newMachine(t, "", nil)
	openChallenge(t, m)

	m.EnterPIN("1234")
	state, err := m.Confirm(context.Background())
	assert.ErrorIs(t, err, ErrPINNotConfigured)
	assert.Equal(t, PinChallenge, state)
	assert.Zero(t, api.sent())
	assert.Empty(t, l.Current())
}

func TestFallbackPIN(t *testing.T) {
	m, api, _ := newMachine(t, "", &Config{FallbackPIN: "1234"})
	openChallenge(t, m)

	m.EnterPIN("1234")
	state, err := m.Confirm(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Succeeded, state)
	assert.Equal(t, 1, api.sent())
}

func TestShortPIN(t *testing.T) {
	m, _, l := newMachine(t, "4321", nil)
	openChallenge(t, m)

	m.EnterPIN("43")
	state, err := m.Confirm(context.Background())

	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))
	assert.Equal(t, PinChallenge, state)
	assert.Equal(t, msgPINLength, m.Status().Message)
	assert.Empty(t, l.Current())
}

func TestConfirmWithoutChallenge(t *testing.T) {
	m, _, _ := newMachine(t, "4321", nil)
	m.EnterPIN("4321")

	_, err := m.Confirm(context.Background())
	assert.ErrorIs(t, err, ErrWrongState)
}

func TestCancelKeepsDraft(t *testing.T) {
	m, _, _ := newMachine(t, "4321", nil)
	openChallenge(t, m)
	m.EnterPIN("12")

	assert.True(t, m.Cancel())
	status := m.Status()
	assert.Equal(t, Composing, status.State)
	assert.Empty(t, status.PIN)
	assert.Empty(t, status.Message)
	assert.Equal(t, recipient, status.Draft.Recipient)

	assert.False(t, m.Cancel())
}

func TestStaleDismissalIgnored(t *testing.T) {
	m, _, _ := newMachine(t, "4321", &Config{DismissAfter: 30 * time.Millisecond})
	openChallenge(t, m)

	m.EnterPIN("0000")
	m.Confirm(context.Background())
	require.Equal(t, RejectedPIN, m.Status().State)

	// cancel and re-open before the timer would have fired
	m.Cancel()
	require.NoError(t, m.Open())

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, PinChallenge, m.Status().State)
}

func TestRearmReplacesTimer(t *testing.T) {
	m, _, l := newMachine(t, "4321", &Config{DismissAfter: 150 * time.Millisecond})
	openChallenge(t, m)

	m.EnterPIN("0000")
	m.Confirm(context.Background())
	time.Sleep(100 * time.Millisecond)

	m.EnterPIN("1111")
	m.Confirm(context.Background())

	// the first timer would have fired by now
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, RejectedPIN, m.Status().State)
	assert.Len(t, l.Current(), 2)

	assert.Eventually(t, func() bool { return m.Status().State == Composing }, time.Second, 5*time.Millisecond)
}

func TestCloseDisarms(t *testing.T) {
	m, _, _ := newMachine(t, "4321", &Config{DismissAfter: 20 * time.Millisecond})
	openChallenge(t, m)
	m.EnterPIN("0000")
	m.Confirm(context.Background())

	m.Close()
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, RejectedPIN, m.Status().State)
}
