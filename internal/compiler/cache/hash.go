// Package cache keeps parsed programs in memory keyed by a hash of their
// source, and orders the files of a project by the classes they declare
// and use so that each file loads after the files it depends on.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
)

// FileHasher computes content hashes for cache keys
type FileHasher struct{}

// NewFileHasher creates a new file hasher
func NewFileHasher() *FileHasher {
	return &FileHasher{}
}

// HashFile reads a file and returns the SHA-256 of its contents along with
// the contents, so callers never read the file twice.
func (fh *FileHasher) HashFile(path string) (string, []byte, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return fh.HashContent(content), content, nil
}

// HashContent computes a SHA-256 hash of the given content
func (fh *FileHasher) HashContent(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// HashString computes a SHA-256 hash of the given string
func (fh *FileHasher) HashString(content string) string {
	return fh.HashContent([]byte(content))
}
