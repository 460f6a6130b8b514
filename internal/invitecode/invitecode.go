// Package invitecode generates and hashes household invite codes.
package invitecode

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Alphabet omits glyphs that are easy to confuse when read aloud or
// typed: 0/O and 1/I.
const Alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Length is the number of characters in a generated code.
const Length = 8

// Generate returns a random code drawn from Alphabet. len(Alphabet) divides
// 256, so the modulo keeps the distribution uniform.
func Generate() (string, error) {
	buf := make([]byte, Length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate invite code: %w", err)
	}
	out := make([]byte, Length)
	for i, b := range buf {
		out[i] = Alphabet[int(b)%len(Alphabet)]
	}
	return string(out), nil
}

// Normalize trims and upper-cases user input before hashing.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Hash returns hex(sha256(code + pepper)).
func Hash(code, pepper string) string {
	sum := sha256.Sum256([]byte(code + pepper))
	return hex.EncodeToString(sum[:])
}
