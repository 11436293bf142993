package common

import (
	"crypto/rand"
	"encoding/base64"
)

// randRead is a seam for crypto/rand.Read.
var randRead = rand.Read

// MakeRandURLString returns size random bytes encoded as unpadded base64url,
// suitable for use in URL paths.
func MakeRandURLString(size int) (string, error) {
	b := make([]byte, size)
	if _, err := randRead(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// GenerateRandByteArray returns size bytes from the secure random source.
// It panics if the source fails, which only happens on a broken platform.
func GenerateRandByteArray(size int) []byte {
	b := make([]byte, size)
	if _, err := randRead(b); err != nil {
		panic(err)
	}
	return b
}

// WipeByteArray overwrites the contents of the provided byte slice with zeros.
// Use it to drop passwords and keys from memory after use.
//
// If the slice is nil, the function does nothing.
func WipeByteArray(b []byte) {
	if b == nil {
		return
	}
	for i := range b {
		b[i] = 0
	}
}
