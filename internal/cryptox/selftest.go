package cryptox

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
)

var (
	// AES-256-GCM, zero key, zero IV, empty plaintext (GCM test case 13).
	gcmKnownTag, _ = hex.DecodeString("530f8afbc74536b9a963b4f1c4cb738b")
	// PBKDF2-HMAC-SHA256("passwd", "salt", 1), RFC 7914 section 11.
	kdfKnownKey, _ = hex.DecodeString("55ac046e56e3089fec1691c22544b605f94185216dde0465e68b9d57c20dacbc")
)

// SelfTestRandom checks that the secure random source answers and is not
// obviously stuck.
func SelfTestRandom() error {
	a, err := readRandom(KeySize)
	if err != nil {
		return err
	}
	b, err := readRandom(KeySize)
	if err != nil {
		return err
	}
	if bytes.Equal(a, b) {
		return errors.New("secure random source repeats output")
	}
	return nil
}

// SelfTestAEAD runs a known answer for AES-256-GCM and a seal/open/tamper
// cycle for every supported algorithm.
func SelfTestAEAD() error {
	zero := SymmetricKey(make([]byte, KeySize))
	gcm, err := newAEAD(AlgorithmAES256GCM, zero)
	if err != nil {
		return err
	}
	if got := gcm.Seal(nil, make([]byte, IVSize), nil, nil); !bytes.Equal(got, gcmKnownTag) {
		return errors.New("AES256-GCM known answer mismatch")
	}

	msg := []byte("uploadhaven self test")
	for _, alg := range SupportedAlgorithms() {
		aead, err := newAEAD(alg, zero)
		if err != nil {
			return fmt.Errorf("%s: %w", alg, err)
		}
		iv := make([]byte, aead.NonceSize())
		ct := aead.Seal(nil, iv, msg, nil)
		if pt, err := aead.Open(nil, iv, ct, nil); err != nil || !bytes.Equal(pt, msg) {
			return fmt.Errorf("%s: round trip failed", alg)
		}
		ct[0] ^= 1
		if _, err := aead.Open(nil, iv, ct, nil); err == nil {
			return fmt.Errorf("%s: tampering not detected", alg)
		}
	}
	return nil
}

// SelfTestKDF checks PBKDF2-HMAC-SHA256 against a published vector.
func SelfTestKDF() error {
	if !bytes.Equal(derive([]byte("passwd"), []byte("salt"), 1), kdfKnownKey) {
		return errors.New(KDFName + " known answer mismatch")
	}
	return nil
}
