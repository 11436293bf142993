package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"

	"github.com/dmitrijs2005/uploadhaven/internal/common"
	"golang.org/x/crypto/chacha20poly1305"
)

const (
	// AlgorithmAES256GCM is the default cipher.
	AlgorithmAES256GCM = "AES256-GCM"
	// AlgorithmChaCha20Poly1305 is available for platforms without AES hardware.
	AlgorithmChaCha20Poly1305 = "ChaCha20-Poly1305"

	// IVSize is the nonce size of both supported ciphers.
	IVSize = 12
	// TagSize is the authentication tag appended to every ciphertext.
	TagSize = 16
)

// DefaultAlgorithm is used when no algorithm is requested.
const DefaultAlgorithm = AlgorithmAES256GCM

// SupportedAlgorithms lists every identifier Decrypt accepts.
func SupportedAlgorithms() []string {
	return []string{AlgorithmAES256GCM, AlgorithmChaCha20Poly1305}
}

// IsSupportedAlgorithm reports whether alg is a known identifier.
func IsSupportedAlgorithm(alg string) bool {
	for _, a := range SupportedAlgorithms() {
		if a == alg {
			return true
		}
	}
	return false
}

// newAEAD builds the AEAD for the algorithm. The key length is checked
// first so a short key can never select a weaker AES variant.
func newAEAD(algorithm string, key SymmetricKey) (cipher.AEAD, error) {
	if !key.Valid() {
		return nil, fmt.Errorf("key must be %d bytes", KeySize)
	}
	switch algorithm {
	case AlgorithmAES256GCM:
		block, err := aes.NewCipher(key)
		if err != nil {
			return nil, err
		}
		return cipher.NewGCM(block)
	case AlgorithmChaCha20Poly1305:
		return chacha20poly1305.New(key)
	default:
		return nil, fmt.Errorf("unsupported algorithm: %q", algorithm)
	}
}

// Encrypt seals plaintext with the default algorithm and a fresh IV.
func Encrypt(plaintext []byte, key SymmetricKey) (ciphertext, iv []byte, err error) {
	return EncryptWith(DefaultAlgorithm, plaintext, key)
}

// EncryptWith seals plaintext with the named algorithm. A new random IV is
// generated on every call; the algorithm identifier is bound as associated
// data so an envelope cannot be replayed under another cipher.
func EncryptWith(algorithm string, plaintext []byte, key SymmetricKey) (ciphertext, iv []byte, err error) {
	aead, err := newAEAD(algorithm, key)
	if err != nil {
		return nil, nil, err
	}

	iv, err = readRandom(aead.NonceSize())
	if err != nil {
		return nil, nil, err
	}

	ciphertext = aead.Seal(nil, iv, plaintext, []byte(algorithm))
	return ciphertext, iv, nil
}

// Decrypt opens ciphertext sealed by Encrypt.
func Decrypt(ciphertext []byte, key SymmetricKey, iv []byte) ([]byte, error) {
	return DecryptWith(DefaultAlgorithm, ciphertext, key, iv)
}

// DecryptWith opens ciphertext sealed by EncryptWith. Every failure after
// the algorithm is resolved, including a wrong key, a bad tag or a bad IV
// length, is reported as the same ErrDecryption.
func DecryptWith(algorithm string, ciphertext []byte, key SymmetricKey, iv []byte) ([]byte, error) {
	if !IsSupportedAlgorithm(algorithm) {
		return nil, fmt.Errorf("%w: unsupported algorithm", common.ErrMalformedPackage)
	}
	aead, err := newAEAD(algorithm, key)
	if err != nil {
		return nil, common.ErrDecryption
	}
	if len(iv) != aead.NonceSize() || len(ciphertext) < aead.Overhead() {
		return nil, common.ErrDecryption
	}

	plaintext, err := aead.Open(nil, iv, ciphertext, []byte(algorithm))
	if err != nil {
		return nil, common.ErrDecryption
	}
	return plaintext, nil
}
