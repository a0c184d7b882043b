package domain

import (
	"fmt"
	"time"
)

// Token is the bearer credential handed to us by the login flow. Issuing and
// refreshing it is not our job, we only attach it to requests.
type Token struct {
	// token value
	Value string `json:"value"`

	// When the token expires in unix time, 0 if unknown
	Expires int64 `json:"expires"`
}

// NewToken creates a token with Expires set from a ttl. A zero ttl means the
// expiry is unknown and the token is never considered expired locally.
func NewToken(value string, ttl time.Duration) *Token {
	tkn := &Token{Value: value}
	if ttl > 0 {
		tkn.Expires = time.Now().UTC().Add(ttl).Unix()
	}
	return tkn
}

// HasExpired returns if the time now is past Expires
func (t *Token) HasExpired() bool {
	if t == nil || t.Expires == 0 {
		return false
	}
	return time.Now().UTC().Unix() >= t.Expires
}

// Header is the Authorization header value for this token.
func (t *Token) Header() string {
	if t == nil || t.Value == "" {
		return ""
	}
	return fmt.Sprintf("Bearer %s", t.Value)
}
