package store

import (
	"github.com/voidshard/ledgerview/pkg/crypto"
)

// Encrypted wraps another Store, encrypting & signing values before they're
// handed on. Keys are stored as is.
type Encrypted struct {
	inner     Store
	key       string
	signature string
}

func NewEncrypted(inner Store, key, signature string) *Encrypted {
	return &Encrypted{inner: inner, key: key, signature: signature}
}

func (e *Encrypted) Put(key string, data []byte) error {
	cypher, err := crypto.Encrypt(data, e.key, e.signature)
	if err != nil {
		return err
	}
	return e.inner.Put(key, []byte(cypher))
}

func (e *Encrypted) Get(key string) ([]byte, error) {
	cypher, err := e.inner.Get(key)
	if err != nil {
		return nil, err
	}
	return crypto.Decrypt(string(cypher), e.key, e.signature)
}
