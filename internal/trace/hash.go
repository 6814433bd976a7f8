package trace

import (
	"crypto/sha256"
	"encoding/hex"
)

// ComputeTraceHash computes the hex sha256 of a canonical trace encoding.
//
// The input is expected to be canonical already (see Canonical.CanonicalJSON).
func ComputeTraceHash(canonicalEncoding []byte) string {
	if len(canonicalEncoding) == 0 {
		return ""
	}
	sum := sha256.Sum256(canonicalEncoding)
	return hex.EncodeToString(sum[:])
}
