package argon

import (
	"errors"
	"strings"
	"testing"
)

var testParams = &Params{Memory: 8 * 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

func TestCreateAndCompare(t *testing.T) {
	hash, err := CreateHash("Bodega-2024!x", testParams)
	if err != nil {
		t.Fatalf("create hash: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$v=19$m=8192,t=1,p=1$") {
		t.Fatalf("unexpected encoding %q", hash)
	}
	ok, err := ComparePasswordAndHash("Bodega-2024!x", hash)
	if err != nil {
		t.Fatalf("compare hash: %v", err)
	}
	if !ok {
		t.Fatalf("expected password to match")
	}

	ok, err = ComparePasswordAndHash("wrong", hash)
	if err != nil {
		t.Fatalf("compare hash wrong: %v", err)
	}
	if ok {
		t.Fatalf("expected password mismatch")
	}
}

func TestCreateHashRejectsBlank(t *testing.T) {
	if _, err := CreateHash("   ", nil); err == nil {
		t.Fatal("expected error for blank password")
	}
}

func TestCompareRejectsMalformedHashes(t *testing.T) {
	cases := []struct {
		hash string
		want error
	}{
		{hash: "plain", want: ErrInvalidHash},
		{hash: "$argon2i$v=19$m=1,t=1,p=1$a$b", want: ErrIncompatibleVariant},
		{hash: "$argon2id$v=16$m=1,t=1,p=1$a$b", want: ErrIncompatibleVersion},
		{hash: "$argon2id$v=19$m=x$a$b", want: ErrInvalidHash},
	}
	for _, tc := range cases {
		if _, err := ComparePasswordAndHash("x", tc.hash); !errors.Is(err, tc.want) {
			t.Fatalf("%q: expected %v, got %v", tc.hash, tc.want, err)
		}
	}
}

func TestNeedsRehash(t *testing.T) {
	weak, err := CreateHash("Bodega-2024!x", testParams)
	if err != nil {
		t.Fatalf("create hash: %v", err)
	}
	if NeedsRehash(weak, testParams) {
		t.Fatal("same params must not need rehash")
	}
	stronger := *testParams
	stronger.Iterations = 2
	if !NeedsRehash(weak, &stronger) {
		t.Fatal("expected rehash when iterations grow")
	}
	if !NeedsRehash("garbage", testParams) {
		t.Fatal("unreadable hash must need rehash")
	}
}
