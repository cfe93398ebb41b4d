package utils // helpers for generating opaque session tokens

import (
	"crypto/rand"
	"encoding/hex"
)

// sessionTokenBytes is the entropy of a session token. 32 bytes gives
// 256 bits of randomness, encoded as 64 hex characters.
const sessionTokenBytes = 32

// NewSessionToken returns a cryptographically secure random bearer
// token. The token is opaque: it carries no claims and is only
// meaningful as a lookup key into the user_sessions table.
func NewSessionToken() (string, error) {
	return randomHex(sessionTokenBytes)
}

// randomHex returns a hex-encoded string generated from n bytes of
// cryptographically secure random data.
func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
