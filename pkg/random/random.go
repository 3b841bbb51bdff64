// Package random generates short URL hashes.
package random

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"regexp"
)

// HashPattern matches a well-formed short URL hash: lowercase hex only.
// The length is fixed at twice HashByteLength (hex encoding).
var HashPattern = regexp.MustCompile(`^[a-f0-9]{8}$`)

// HashByteLength is the number of random bytes behind a hash; hex encoding
// doubles it, giving 16^8 possible hashes. Collisions are not regenerated -
// the storage unique constraint surfaces them as an error.
const HashByteLength = 4

// NewHash returns a new random short URL hash.
func NewHash() (string, error) {
	buf := make([]byte, HashByteLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
