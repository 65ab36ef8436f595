package security

import (
	"crypto/rand"
	"encoding/base64"
)

// NewNonce returns 128 random bits, base64url-encoded. Used for OAuth state
// payloads.
func NewNonce() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
