/*Wiring shared by the commands*/
package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/voidshard/ledgerview/pkg/domain"
	"github.com/voidshard/ledgerview/pkg/logger"
	"github.com/voidshard/ledgerview/pkg/provider"
	"github.com/voidshard/ledgerview/pkg/session"
	"github.com/voidshard/ledgerview/pkg/store"
)

// backend is a store that can also take a full export.
type backend interface {
	store.Store
	store.Exporter
}

func getStore(out string, log zerolog.Logger) (backend, error) {
	bits := strings.SplitN(out, ":", 2)
	if len(bits) != 2 {
		return nil, fmt.Errorf("invalid store path, expected [jsonfile:/path/to/file.json] or [es8:http://elasticsearch:9200]")
	}

	switch bits[0] {
	case "es8":
		return store.NewElasticsearchV8(log, bits[1]), nil
	case "jsonfile":
		return store.NewJSONFile(bits[1]), nil
	}
	return nil, fmt.Errorf("unknown store type %q", bits[0])
}

func (g *globals) newLogger() zerolog.Logger {
	return logger.New(g.LogLevel)
}

func (g *globals) deadline(log zerolog.Logger) (context.Context, context.CancelFunc, error) {
	timeout, err := time.ParseDuration(g.Timeout)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid timeout %q: %w", g.Timeout, err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	return logger.WithContext(ctx, log), cancel, nil
}

// stateStore is where the session mirrors its ledger, encrypted if keys were given.
func (g *globals) stateStore(log zerolog.Logger) (store.Store, error) {
	if g.Store == "" {
		return nil, nil
	}
	st, err := getStore(g.Store, log)
	if err != nil {
		return nil, err
	}
	if g.Key == "" && g.Sig == "" {
		return st, nil
	}
	if g.Key == "" || g.Sig == "" {
		return nil, fmt.Errorf("both --key and --sig are required to encrypt the store")
	}
	return store.NewEncrypted(st, g.Key, g.Sig), nil
}

func (g *globals) ledgerAPI(log zerolog.Logger) (provider.Ledger, error) {
	return provider.NewMTS(&provider.Config{
		BaseURL: g.API,
		Token:   domain.NewToken(g.Token, 0),
		Retries: g.Retries,
		Logger:  &log,
	})
}

func (g *globals) openSession(log zerolog.Logger, cfg *session.Config) (*session.Session, error) {
	if g.User == "" {
		return nil, fmt.Errorf("--user is required")
	}

	api, err := g.ledgerAPI(log)
	if err != nil {
		return nil, err
	}
	st, err := g.stateStore(log)
	if err != nil {
		return nil, err
	}
	return session.New(g.User, api, st, log, cfg), nil
}
