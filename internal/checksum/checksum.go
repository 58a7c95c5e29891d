// Package checksum computes the blake3 integrity digest appended to
// persisted vocabulary-tree index files, so a truncated or otherwise
// corrupted file is detected before any topology is exposed to a caller.
package checksum

import (
	"lukechampine.com/blake3"
)

// Size is the digest width in bytes.
const Size = 32

// Sum returns the blake3-256 digest of data.
func Sum(data []byte) [Size]byte {
	return blake3.Sum256(data)
}

// Verify reports whether digest is the blake3-256 sum of data.
func Verify(data []byte, digest [Size]byte) bool {
	return Sum(data) == digest
}
