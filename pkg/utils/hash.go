package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// CacheKey builds a namespaced, fixed-length key from free-text parts.
// Parts are joined with a separator that cannot appear in normalized text.
func CacheKey(namespace string, parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "\x1f")))
	return namespace + ":" + hex.EncodeToString(sum[:16])
}
