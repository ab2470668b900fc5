package session

import (
	"testing"
	"time"
)

func TestNewCookieMatchesTTL(t *testing.T) {
	c := NewCookie("tok")
	if c.Name != CookieName || c.Value != "tok" {
		t.Fatalf("unexpected cookie %+v", c)
	}
	if c.MaxAge != 12*60*60 {
		t.Fatalf("expected max age of 12h, got %d", c.MaxAge)
	}
	if !c.HttpOnly || c.Path != "/" {
		t.Fatalf("cookie must be http-only on /, got %+v", c)
	}
}

func TestClearCookieExpires(t *testing.T) {
	if c := ClearCookie(); c.MaxAge >= 0 || c.Value != "" {
		t.Fatalf("expected expired empty cookie, got %+v", c)
	}
}

func TestSecureCookiesFlag(t *testing.T) {
	SecureCookies = true
	defer func() { SecureCookies = false }()
	if !NewCookie("x").Secure {
		t.Fatal("expected secure cookie")
	}
}

func TestDefaultExpiry(t *testing.T) {
	exp := DefaultExpiry()
	if d := time.Until(exp); d < TTL-time.Minute || d > TTL {
		t.Fatalf("unexpected expiry distance %s", d)
	}
}
