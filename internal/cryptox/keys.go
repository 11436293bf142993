// Package cryptox holds every primitive that touches secret material:
// random and password-derived keys, the AEAD ciphers, and the argon2
// hashing of access passwords on the server side.
package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"github.com/dmitrijs2005/uploadhaven/internal/common"
	"golang.org/x/crypto/pbkdf2"
)

const (
	// KeySize is the size of every symmetric key, 256 bits.
	KeySize = 32
	// SaltSize is the size of a freshly generated PBKDF2 salt.
	SaltSize = 16

	// DefaultIterations is used for new password-derived keys and is also
	// the floor accepted at upload time.
	DefaultIterations = 600_000
	// MinAcceptedIterations and MaxAcceptedIterations bound the iteration
	// count read back from stored metadata.
	MinAcceptedIterations = 100_000
	MaxAcceptedIterations = 10_000_000
)

// KDFName identifies the password-based derivation used for envelopes.
const KDFName = "PBKDF2-SHA256"

// randReader is a seam for the platform's secure random source.
var randReader io.Reader = rand.Reader

// SymmetricKey is raw 256-bit key material. It lives in memory only.
type SymmetricKey []byte

// Wipe zeroes the key in place.
func (k SymmetricKey) Wipe() {
	common.WipeByteArray(k)
}

// Valid reports whether the key has the expected length.
func (k SymmetricKey) Valid() bool {
	return len(k) == KeySize
}

func readRandom(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(randReader, b); err != nil {
		return nil, fmt.Errorf("secure random source: %w", err)
	}
	return b, nil
}

// GenerateRandomKey returns a fresh key from the secure random source.
func GenerateRandomKey() (SymmetricKey, error) {
	b, err := readRandom(KeySize)
	if err != nil {
		return nil, err
	}
	return SymmetricKey(b), nil
}

// GenerateSalt returns a fresh salt for one password derivation.
func GenerateSalt() ([]byte, error) {
	return readRandom(SaltSize)
}

// DeriveKeyFromPassword derives a key for a new upload. The password policy
// is checked before any derivation work happens, and iterations below
// DefaultIterations are refused.
func DeriveKeyFromPassword(password []byte, salt []byte, iterations int) (SymmetricKey, error) {
	if err := CheckPasswordPolicy(password); err != nil {
		return nil, err
	}
	if iterations < DefaultIterations {
		return nil, fmt.Errorf("iterations %d below floor %d", iterations, DefaultIterations)
	}
	if len(salt) < SaltSize {
		return nil, fmt.Errorf("salt must be at least %d bytes", SaltSize)
	}
	return derive(password, salt, iterations), nil
}

// DeriveKeyForDecryption re-derives the key of an existing envelope. The
// policy is not applied here because it may have tightened after upload;
// the stored iteration count is only bounded.
func DeriveKeyForDecryption(password []byte, salt []byte, iterations int) (SymmetricKey, error) {
	if iterations < MinAcceptedIterations || iterations > MaxAcceptedIterations {
		return nil, fmt.Errorf("%w: iteration count out of range", common.ErrMalformedPackage)
	}
	if len(salt) < SaltSize {
		return nil, fmt.Errorf("%w: salt too short", common.ErrMalformedPackage)
	}
	return derive(password, salt, iterations), nil
}

func derive(password, salt []byte, iterations int) SymmetricKey {
	return SymmetricKey(pbkdf2.Key(password, salt, iterations, KeySize, sha256.New))
}
