// Package storage manages the on-disk side of the archive: content
// hashing for deduplication and the per-owner namespace layout beneath
// the uploads and thumbnails roots.
package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
)

// hashChunkSize bounds memory use while hashing arbitrarily large uploads.
const hashChunkSize = 32 * 1024

// HashReader computes the SHA-256 content digest of r, reading in fixed
// chunks. I/O errors propagate; a digest is never returned for a
// partially read stream.
func HashReader(r io.Reader) (string, error) {
	h := sha256.New()
	buf := make([]byte, hashChunkSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("hash: read: %w", err)
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
