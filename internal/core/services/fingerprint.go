package services

import (
	"crypto/sha256"
	"encoding/hex"
)

// fingerprint returns the hex SHA-256 of the normalised text. Change
// detection compares this against the stored hash; anything else about
// the file (mtime, size, upload path) is ignored.
func fingerprint(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
