package store

import (
	"errors"

	"github.com/voidshard/ledgerview/pkg/domain"
)

// ErrNoKey is returned by Get when nothing has been stored under a key.
var ErrNoKey = errors.New("key not found")

// Store is a simple durable key/value store.
type Store interface {
	Put(key string, data []byte) error
	Get(key string) ([]byte, error)
}

// Exporter writes a full set of transactions somewhere for later analysis.
type Exporter interface {
	Write([]*domain.Transaction) error
}
