// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package binhash

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/zeebo/blake3"
)

// Digest is a BLAKE3-256 file digest.
type Digest [32]byte

// HashFile computes the BLAKE3-256 digest of the file at path. The file
// is streamed through the hash function in chunks (via io.Copy) to keep
// memory usage constant regardless of file size.
func HashFile(path string) (Digest, error) {
	file, err := os.Open(path)
	if err != nil {
		return Digest{}, fmt.Errorf("opening %s for hashing: %w", path, err)
	}
	defer file.Close()

	hasher := blake3.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return Digest{}, fmt.Errorf("hashing %s: %w", path, err)
	}

	var digest Digest
	copy(digest[:], hasher.Sum(nil))
	return digest, nil
}

// FormatDigest returns the hex-encoded string representation of a digest.
func FormatDigest(digest Digest) string {
	return hex.EncodeToString(digest[:])
}

// SameContent hashes both files and reports whether their digests are
// equal. The digests are returned for logging.
func SameContent(leftPath, rightPath string) (bool, Digest, Digest, error) {
	left, err := HashFile(leftPath)
	if err != nil {
		return false, Digest{}, Digest{}, err
	}
	right, err := HashFile(rightPath)
	if err != nil {
		return false, Digest{}, Digest{}, err
	}
	return left == right, left, right, nil
}
