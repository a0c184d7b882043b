// Package crypto seals values for the state store: AES-GCM for secrecy and an
// HMAC over the cyphertext so tampering is caught before decrypting.
package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"
	"strings"

	"github.com/gtank/cryptopasta"
)

// keyLength is the number of bytes cryptopasta wants for both keys.
const keyLength = 32

// sealed values are "<cyphertext>.<hmac>", both base64 url encoded
const separator = "."

var (
	ErrKeyTooShort   = errors.New("key too short, want at least 32 chars")
	ErrBadSignature  = errors.New("signature validation failed")
	ErrMalformedSeal = errors.New("sealed value is not in <data>.<signature> form")
)

var encoding = base64.RawURLEncoding

// NewRandomKey returns a fresh key for Encrypt / Decrypt.
func NewRandomKey() (string, error) {
	key := make([]byte, keyLength+1) // 44 chars once encoded
	_, err := io.ReadFull(rand.Reader, key)
	return encoding.EncodeToString(key), err
}

type keys struct {
	enc *[keyLength]byte
	sig *[keyLength]byte
}

func newKeys(key, sig string) (*keys, error) {
	enc, err := toKey(key)
	if err != nil {
		return nil, err
	}
	mac, err := toKey(sig)
	if err != nil {
		return nil, err
	}
	return &keys{enc: enc, sig: mac}, nil
}

// Decrypt checks the signature on a value made by Encrypt and returns the plaintext.
func Decrypt(sealed, key, sig string) ([]byte, error) {
	k, err := newKeys(key, sig)
	if err != nil {
		return nil, err
	}

	bits := strings.SplitN(sealed, separator, 2)
	if len(bits) != 2 {
		return nil, ErrMalformedSeal
	}

	cyphertext, err := encoding.DecodeString(bits[0])
	if err != nil {
		return nil, err
	}
	mac, err := encoding.DecodeString(bits[1])
	if err != nil {
		return nil, err
	}

	if !cryptopasta.CheckHMAC(cyphertext, mac, k.sig) {
		return nil, ErrBadSignature
	}
	return cryptopasta.Decrypt(cyphertext, k.enc)
}

// Encrypt seals plaintext into a printable string.
func Encrypt(plaintext []byte, key, sig string) (string, error) {
	k, err := newKeys(key, sig)
	if err != nil {
		return "", err
	}

	cyphertext, err := cryptopasta.Encrypt(plaintext, k.enc)
	if err != nil {
		return "", err
	}
	mac := cryptopasta.GenerateHMAC(cyphertext, k.sig)

	return encoding.EncodeToString(cyphertext) + separator + encoding.EncodeToString(mac), nil
}

// toKey uses the first 32 bytes of s.
func toKey(s string) (*[keyLength]byte, error) {
	if len(s) < keyLength {
		return nil, ErrKeyTooShort
	}
	data := &[keyLength]byte{}
	copy(data[:], s)
	return data, nil
}
