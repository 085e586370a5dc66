package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// ContentHash returns the deterministic hex digest used to key review
// records. Byte-identical inputs always map to the same hash.
func ContentHash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
