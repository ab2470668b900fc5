package login

import (
	"crypto/rand"
	"encoding/base64"
)

const sessionTokenBytes = 32

// newSessionToken returns a URL-safe random token that fits a cookie as is.
// crypto/rand.Read never fails on supported platforms.
func newSessionToken() string {
	buf := make([]byte, sessionTokenBytes)
	_, _ = rand.Read(buf)
	return base64.RawURLEncoding.EncodeToString(buf)
}
