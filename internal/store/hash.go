package store

import (
	"crypto/sha256"
	"fmt"
)

// ContentHash returns the hex sha256 of a source file's content.
func ContentHash(content []byte) string {
	return fmt.Sprintf("%x", sha256.Sum256(content))
}
