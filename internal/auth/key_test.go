package auth

import (
	"strings"
	"testing"
)

func TestGenerateKey(t *testing.T) {
	k1, err := GenerateKey()
	if err != nil {
		t.Fatal(err)
	}
	k2, _ := GenerateKey()

	if !HasValidPrefix(k1) {
		t.Errorf("key %q lacks prefix", k1)
	}
	if len(k1) != len(KeyPrefix)+32 {
		t.Errorf("unexpected key length %d", len(k1))
	}
	if k1 == k2 {
		t.Error("two generated keys are equal")
	}
}

func TestHashKey(t *testing.T) {
	h := HashKey("arvai_abc")
	if len(h) != 64 {
		t.Errorf("expected sha256 hex, got %q", h)
	}
	if h != HashKey("arvai_abc") {
		t.Error("hash is not deterministic")
	}
	if h == HashKey("arvai_abd") {
		t.Error("different keys share a hash")
	}
}

func TestDisplayPrefix(t *testing.T) {
	if got := DisplayPrefix("arvai_0123456789abcdef"); got != "arvai_012345" {
		t.Errorf("DisplayPrefix() = %q", got)
	}
	if got := DisplayPrefix("short"); got != "short" {
		t.Errorf("DisplayPrefix(short) = %q", got)
	}
	if strings.HasPrefix("bad_key", KeyPrefix) != HasValidPrefix("bad_key") {
		t.Error("HasValidPrefix disagrees with strings.HasPrefix")
	}
}
