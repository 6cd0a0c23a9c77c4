package repository

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/go-crypt/x/blake2b"
)

// Supported content digest algorithms.
const (
	HashAlgorithmBlake2b = "blake2b"
	HashAlgorithmSHA256  = "sha256"

	HashAlgorithmDefault = HashAlgorithmBlake2b
)

const contentDigestSize = 32

// SupportedHashAlgorithm reports whether name is a digest this repository
// can compute.
func SupportedHashAlgorithm(name string) bool {
	switch name {
	case HashAlgorithmBlake2b, HashAlgorithmSHA256:
		return true
	}
	return false
}

// ComputeHash digests exactly the given bytes and returns the
// algorithm-tagged form "alg:hex" recorded in metadata.
func ComputeHash(algorithm string, data []byte) (string, error) {
	switch algorithm {
	case HashAlgorithmBlake2b:
		h, err := blake2b.New(contentDigestSize, nil)
		if err != nil {
			return "", err
		}
		h.Write(data)
		return algorithm + ":" + hex.EncodeToString(h.Sum(nil)), nil
	case HashAlgorithmSHA256:
		sum := sha256.Sum256(data)
		return algorithm + ":" + hex.EncodeToString(sum[:]), nil
	}
	return "", fmt.Errorf("unsupported hash algorithm %q", algorithm)
}
