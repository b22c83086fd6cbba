// SHA-256 fingerprints for document content.
//
// The fingerprint of a PDF is computed over its normalized content stream bytes
// (see the pdf package), never over the whole file, so that the metadata rewrite made
// when an identifier is embedded does not change it.
package crypto

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// FingerprintSize is the length of a hex encoded fingerprint
const FingerprintSize = sha256.Size * 2

// Fingerprint returns the lowercase hex SHA-256 digest of data.
// An empty input is valid and returns the digest of the empty string.
func Fingerprint(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// FingerprintsEqual compares two hex fingerprints in constant time
func FingerprintsEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// IsFingerprint reports whether s looks like a hex encoded SHA-256 digest
func IsFingerprint(s string) bool {
	if len(s) != FingerprintSize {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}
