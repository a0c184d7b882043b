package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"github.com/voidshard/ledgerview/pkg/domain"
)

const (
	DefaultBaseURL = "http://localhost:8080/api/v1"

	retries        = 5
	defaultTimeout = 30 * time.Second
)

// check it meets the interface
var _ Ledger = &MTS{}

// Config for the MTS backend client. Zero values get defaults.
type Config struct {
	BaseURL string
	Token   *domain.Token

	// Retries is how many times a GET is retried on transport errors & 5xx.
	Retries int
	Timeout time.Duration

	// Backoff builds the retry schedule, defaults to exponential backoff.
	Backoff func() backoff.BackOff

	// Location is used for the zone-less dates the backend sends, defaults to time.Local
	Location *time.Location

	Logger *zerolog.Logger
}

// MTS talks to the money transfer service REST API (/api/v1).
type MTS struct {
	base     *url.URL
	token    *domain.Token
	retries  int
	backoff  func() backoff.BackOff
	location *time.Location
	client   *http.Client
	log      zerolog.Logger
}

func NewMTS(cfg *Config) (*MTS, error) {
	if cfg == nil {
		cfg = &Config{}
	}

	raw := cfg.BaseURL
	if raw == "" {
		raw = DefaultBaseURL
	}
	base, err := url.Parse(strings.TrimRight(raw, "/"))
	if err != nil {
		return nil, err
	}

	m := &MTS{
		base:     base,
		token:    cfg.Token,
		retries:  cfg.Retries,
		backoff:  cfg.Backoff,
		location: cfg.Location,
		client:   &http.Client{Timeout: cfg.Timeout},
		log:      zerolog.Nop(),
	}
	if m.retries <= 0 {
		m.retries = retries
	}
	if m.backoff == nil {
		m.backoff = func() backoff.BackOff { return backoff.NewExponentialBackOff() }
	}
	if m.location == nil {
		m.location = time.Local
	}
	if cfg.Timeout <= 0 {
		m.client.Timeout = defaultTimeout
	}
	if cfg.Logger != nil {
		m.log = *cfg.Logger
	}
	return m, nil
}

func (m *MTS) endpoint(parts ...string) string {
	u := *m.base
	escaped := make([]string, len(parts))
	for i, p := range parts {
		escaped[i] = url.PathEscape(p)
	}
	u.Path = m.base.Path + "/" + strings.Join(parts, "/")
	u.RawPath = m.base.EscapedPath() + "/" + strings.Join(escaped, "/")
	return u.String()
}

func (m *MTS) Profile(ctx context.Context, user string) (*domain.Profile, error) {
	if user == "" {
		return nil, nil
	}
	result, err := m.doGet(ctx, m.endpoint("account-setup", "user", user))
	if errors.Is(err, ErrNotFound) {
		// not yet set up
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(result)) == 0 {
		return nil, nil
	}
	return parseProfile(result)
}

func (m *MTS) Account(ctx context.Context, number string) (*domain.Account, error) {
	if number == "" {
		return nil, nil
	}
	result, err := m.doGet(ctx, m.endpoint("accounts", "number", number))
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return parseAccount(result)
}

func (m *MTS) Transactions(ctx context.Context, accountID int64) ([]*domain.Transaction, error) {
	result, err := m.doGet(ctx, m.endpoint("transfers", "account", fmt.Sprintf("%d", accountID)))
	if err != nil {
		return nil, err
	}
	return parseTransactions(result, m.location, m.log)
}

// Transfer is sent exactly once. Retrying a transfer could move money twice,
// so transport errors are handed straight back to the caller.
func (m *MTS) Transfer(ctx context.Context, req *TransferRequest) (*TransferReply, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	result, err := m.doRequest(ctx, http.MethodPost, m.endpoint("transfers", "by-account"), data)
	if err != nil {
		return nil, err
	}
	return parseTransferReply(result)
}

func (m *MTS) doGet(ctx context.Context, uri string) ([]byte, error) {
	var body []byte

	op := func() error {
		var err error
		body, err = m.doRequest(ctx, http.MethodGet, uri, nil)
		if err == nil {
			return nil
		}

		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status < 500 {
			// ?? probably we screwed up, asking again won't help
			return backoff.Permanent(err)
		}
		if ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		return err
	}

	schedule := backoff.WithContext(backoff.WithMaxRetries(m.backoff(), uint64(m.retries-1)), ctx)
	err := backoff.RetryNotify(op, schedule, func(err error, wait time.Duration) {
		m.log.Warn().Err(err).Str("uri", uri).Dur("wait", wait).Msg("request failed, retrying")
	})
	if err != nil {
		var perm *backoff.PermanentError
		if errors.As(err, &perm) {
			return nil, perm.Err
		}
		return nil, err
	}
	return body, nil
}

func (m *MTS) doRequest(ctx context.Context, method, uri string, data []byte) ([]byte, error) {
	m.log.Debug().Str("method", method).Str("uri", uri).Msg("request")

	var reader io.Reader
	if data != nil {
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, uri, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("Accept", "application/json")

	if auth := m.token.Header(); auth != "" {
		req.Header.Add("Authorization", auth)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	status := resp.StatusCode
	if status >= 200 && status < 300 {
		return body, nil
	}
	return nil, newAPIError(status, body)
}
