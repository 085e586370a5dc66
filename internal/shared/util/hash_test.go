package util

import "testing"

func TestContentHashStable(t *testing.T) {
	text := "Strong application. Recommended for funding."
	got := ContentHash(text)
	if got != ContentHash(text) {
		t.Fatalf("expected stable hash, got %s", got)
	}
	for _, ch := range got {
		if !((ch >= 'a' && ch <= 'f') || (ch >= '0' && ch <= '9')) {
			t.Fatalf("hash contains non-hex character: %c", ch)
		}
	}
	if len(got) != 64 {
		t.Fatalf("expected 64 hex characters, got %d", len(got))
	}
}

func TestContentHashDistinguishesInputs(t *testing.T) {
	if ContentHash("LGTM") == ContentHash("LGTM.") {
		t.Fatal("expected different hashes for different texts")
	}
}
