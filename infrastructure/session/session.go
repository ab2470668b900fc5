package session

import (
	"net/http"
	"time"
)

const CookieName = "wms_session"

// TTL is how long a login stays valid. Cookie and stored session share it.
const TTL = 12 * time.Hour

// SecureCookies marks the session cookie Secure. Set it when serving behind TLS.
var SecureCookies = false

func SessionCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   SecureCookies,
	}
}

// NewCookie issues a cookie for a fresh session token.
func NewCookie(token string) *http.Cookie {
	return SessionCookie(token, int(TTL/time.Second))
}

// ClearCookie expires the session cookie in the browser.
func ClearCookie() *http.Cookie {
	return SessionCookie("", -1)
}

func DefaultExpiry() time.Time {
	return time.Now().Add(TTL)
}
