package invitecode

import (
	"strings"
	"testing"
)

func TestGenerate(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		code, err := Generate()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(code) != Length {
			t.Fatalf("expected %d characters, got %q", Length, code)
		}
		for _, r := range code {
			if !strings.ContainsRune(Alphabet, r) {
				t.Fatalf("code %q contains %q outside the alphabet", code, r)
			}
		}
		seen[code] = true
	}
	if len(seen) < 190 {
		t.Errorf("expected mostly unique codes, got %d distinct of 200", len(seen))
	}
}

func TestAlphabetExcludesAmbiguousGlyphs(t *testing.T) {
	for _, r := range "01OI" {
		if strings.ContainsRune(Alphabet, r) {
			t.Errorf("alphabet should not contain %q", r)
		}
	}
	if len(Alphabet) != 32 {
		t.Errorf("expected 32 symbols, got %d", len(Alphabet))
	}
	if 256%len(Alphabet) != 0 {
		t.Errorf("alphabet length %d does not divide 256", len(Alphabet))
	}
}

func TestNormalize(t *testing.T) {
	if got := Normalize("  ab3k9xyz \n"); got != "AB3K9XYZ" {
		t.Errorf("unexpected normalized code %q", got)
	}
}

func TestHash(t *testing.T) {
	h := Hash("AB3K9XYZ", "pepper")
	if len(h) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(h))
	}
	if h != Hash("AB3K9XYZ", "pepper") {
		t.Error("hash should be deterministic")
	}
	if h == Hash("AB3K9XYZ", "other") {
		t.Error("pepper should change the hash")
	}
	// sha256("abc") with an empty pepper.
	if got := Hash("abc", ""); got != "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad" {
		t.Errorf("unexpected digest %s", got)
	}
}
