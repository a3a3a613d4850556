// Package sha256 provides the digests used to name exported files.
package sha256

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hex returns the hex SHA-256 digest of s.
func Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// Short returns the first n hex characters of the digest of s. An n outside
// (0, 64] yields the full digest.
func Short(s string, n int) string {
	h := Hex(s)
	if n <= 0 || n > len(h) {
		return h
	}
	return h[:n]
}
