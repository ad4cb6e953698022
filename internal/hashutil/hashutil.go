package hashutil

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// SHA256Hex returns a trimmed-input SHA-256 hash encoded in hex.
func SHA256Hex(input string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(input)))
	return hex.EncodeToString(sum[:])
}

// SHA256HexParts hashes the trimmed parts joined by sep. Empty parts keep their
// position so ("a", "") and ("", "a") never collide.
func SHA256HexParts(sep string, parts ...string) string {
	trimmed := make([]string, len(parts))
	for i, p := range parts {
		trimmed[i] = strings.TrimSpace(p)
	}
	sum := sha256.Sum256([]byte(strings.Join(trimmed, sep)))
	return hex.EncodeToString(sum[:])
}
