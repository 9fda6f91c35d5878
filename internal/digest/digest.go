// Package digest fingerprints statement rows for import deduplication.
// The hash is a collision-avoidance key, not a security boundary.
package digest

import (
	"crypto/sha1"
	"encoding/hex"
)

// KeyLength is the number of hex characters kept for a dedup key.
const KeyLength = 16

// Hex returns the lowercase hex SHA-1 of s.
func Hex(s string) string {
	sum := sha1.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

// DedupKey returns the fixed-length prefix of Hex(s) used as a transaction's
// dedup key.
func DedupKey(s string) string {
	return Hex(s)[:KeyLength]
}
