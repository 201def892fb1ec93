// Package incremental implements content-addressed change detection for
// incremental blog builds: source fingerprints, the persisted build cache and
// the change set derived from both.
package incremental

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// FingerprintSize is the number of digest bytes kept in a fingerprint.
// Fingerprints are hex encoded, so they are twice this many characters long.
const FingerprintSize = 16

// Hash returns the fingerprint of content: a BLAKE3 digest truncated to
// FingerprintSize bytes, lowercase hex encoded.
//
// Fingerprints detect change only; they are not an integrity check against
// adversarial input.
func Hash(content []byte) string {
	sum := blake3.Sum256(content)
	return hex.EncodeToString(sum[:FingerprintSize])
}

// HashString is Hash for string content.
func HashString(content string) string {
	return Hash([]byte(content))
}
