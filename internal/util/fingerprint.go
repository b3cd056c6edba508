package util

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Fingerprint computes a stable hash for one detection occurrence
func Fingerprint(vulnType, contractID string, occurrence int) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|%d", vulnType, contractID, occurrence)
	return hex.EncodeToString(h.Sum(nil))
}
