package utils

import (
	"encoding/hex"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/crypto/blake2b"
)

// ChunkSize is the read size used when streaming file contents into a hash.
const ChunkSize = 64 * 1024

// HashFile computes the BLAKE2b-256 digest of a file, streamed in ChunkSize reads.
func HashFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hash, err := blake2b.New256(nil)
	if err != nil {
		return "", err
	}

	buf := make([]byte, ChunkSize)
	if _, err := io.CopyBuffer(hash, file, buf); err != nil {
		return "", err
	}

	return hex.EncodeToString(hash.Sum(nil)), nil
}

// QuickHash returns an xxhash of the first ChunkSize bytes of a file.
// Files that differ here cannot be identical; equal values prove nothing.
func QuickHash(path string) (uint64, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	digest := xxhash.New()
	if _, err := io.CopyN(digest, file, ChunkSize); err != nil && err != io.EOF {
		return 0, err
	}

	return digest.Sum64(), nil
}
