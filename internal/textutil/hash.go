package textutil

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// ContentHash returns a stable hex digest of the text after whitespace
// normalization. Cache keys use it so insignificant formatting changes do not
// invalidate cached translations or synthesis results.
func ContentHash(text string) string {
	normalized := strings.Join(strings.Fields(text), " ")
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

// KeyHash digests an ordered set of key parts joined with an unambiguous
// separator. Parts are hashed as-is; callers normalize them first.
func KeyHash(parts ...string) string {
	h := sha256.New()
	for i, part := range parts {
		if i > 0 {
			h.Write([]byte{0x1f})
		}
		h.Write([]byte(part))
	}
	return hex.EncodeToString(h.Sum(nil))
}
