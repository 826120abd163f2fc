package service

import (
	"crypto/rand"
	"encoding/base64"

	"github.com/google/uuid"
)

// GenerateSessionToken returns a cryptographically random token for login
// session cookies.
func GenerateSessionToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// NewAnonymousKey mints a cart owner key for a browser session that has not
// signed in. Each session gets its own key; keys are never reused across
// sessions, so two anonymous shoppers can never collide on a cart.
func NewAnonymousKey() string {
	return "anon-" + uuid.NewString()
}
