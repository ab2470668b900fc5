package login

import (
	"errors"
	"strings"
	"testing"
)

func TestValidatePasswordPolicy(t *testing.T) {
	cases := []struct {
		name string
		pwd  string
		ok   bool
	}{
		{name: "valid mixed", pwd: "Bodega-2024!x", ok: true},
		{name: "valid unicode upper", pwd: "Ñandú#2024abc", ok: true},
		{name: "short", pwd: "Ab1!", ok: false},
		{name: "letters only", pwd: "abcdefghijklmnop", ok: false},
		{name: "no symbol", pwd: "Abcdefgh12345", ok: false},
		{name: "no upper", pwd: "abcdefgh123!!", ok: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidatePasswordPolicy(tc.pwd)
			if tc.ok && err != nil {
				t.Fatalf("expected valid password, got error: %v", err)
			}
			if !tc.ok && err == nil {
				t.Fatalf("expected policy error")
			}
		})
	}
}

func TestValidatePasswordPolicyErrors(t *testing.T) {
	if err := ValidatePasswordPolicy("Ab1!"); !errors.Is(err, ErrPasswordTooShort) {
		t.Fatalf("expected ErrPasswordTooShort, got %v", err)
	}
	// 12 runes but more than 12 bytes still counts as long enough.
	if err := ValidatePasswordPolicy("ñandúñandú1!"); !errors.Is(err, ErrPasswordTooWeak) {
		t.Fatalf("expected ErrPasswordTooWeak, got %v", err)
	}
	// 11 runes that exceed 12 bytes is still short.
	if err := ValidatePasswordPolicy("Ñandú#2024a"); !errors.Is(err, ErrPasswordTooShort) {
		t.Fatalf("expected ErrPasswordTooShort for 11 runes, got %v", err)
	}
}

func TestSessionTokenIsRandomAndCookieSafe(t *testing.T) {
	a, b := newSessionToken(), newSessionToken()
	if a == b {
		t.Fatal("tokens must differ")
	}
	if len(a) != 43 || strings.ContainsAny(a, "+/=") {
		t.Fatalf("unexpected token %q", a)
	}
}
