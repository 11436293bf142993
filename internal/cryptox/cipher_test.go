package cryptox

import (
	"bytes"
	"testing"

	"github.com/dmitrijs2005/uploadhaven/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey(t *testing.T) SymmetricKey {
	t.Helper()
	k, err := GenerateRandomKey()
	require.NoError(t, err)
	return k
}

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	inputs := [][]byte{
		{},
		[]byte("hello12345"),
		bytes.Repeat([]byte{0xAB}, 4096),
	}

	for _, alg := range SupportedAlgorithms() {
		for _, in := range inputs {
			key := testKey(t)
			ct, iv, err := EncryptWith(alg, in, key)
			require.NoError(t, err)
			assert.Len(t, iv, IVSize)
			assert.Len(t, ct, len(in)+TagSize)

			out, err := DecryptWith(alg, ct, key, iv)
			require.NoError(t, err)
			assert.Equal(t, len(in), len(out))
			assert.True(t, bytes.Equal(in, out), alg)
		}
	}
}

func TestEncrypt_FreshIVEachCall(t *testing.T) {
	key := testKey(t)
	_, iv1, err := Encrypt([]byte("same"), key)
	require.NoError(t, err)
	_, iv2, err := Encrypt([]byte("same"), key)
	require.NoError(t, err)
	assert.NotEqual(t, iv1, iv2)
}

func TestDecrypt_TamperDetection(t *testing.T) {
	for _, alg := range SupportedAlgorithms() {
		key := testKey(t)
		ct, iv, err := EncryptWith(alg, []byte("hello12345"), key)
		require.NoError(t, err)

		for i := 0; i < len(ct)*8; i++ {
			mod := bytes.Clone(ct)
			mod[i/8] ^= 1 << (i % 8)
			_, err := DecryptWith(alg, mod, key, iv)
			require.ErrorIs(t, err, common.ErrDecryption, "%s ciphertext bit %d", alg, i)
		}
		for i := 0; i < len(iv)*8; i++ {
			mod := bytes.Clone(iv)
			mod[i/8] ^= 1 << (i % 8)
			_, err := DecryptWith(alg, ct, key, mod)
			require.ErrorIs(t, err, common.ErrDecryption, "%s iv bit %d", alg, i)
		}
	}
}

func TestDecrypt_WrongKeyLooksLikeTamper(t *testing.T) {
	key := testKey(t)
	ct, iv, err := Encrypt([]byte("hello12345"), key)
	require.NoError(t, err)

	_, errWrongKey := Decrypt(ct, testKey(t), iv)
	require.Error(t, errWrongKey)

	ct[0] ^= 0x01
	_, errTamper := Decrypt(ct, key, iv)
	require.Error(t, errTamper)

	assert.Equal(t, errWrongKey, errTamper)
}

func TestDecrypt_AlgorithmIsBound(t *testing.T) {
	key := testKey(t)
	ct, iv, err := EncryptWith(AlgorithmChaCha20Poly1305, []byte("hello12345"), key)
	require.NoError(t, err)

	_, err = DecryptWith(AlgorithmAES256GCM, ct, key, iv)
	require.ErrorIs(t, err, common.ErrDecryption)
}

func TestDecrypt_BadInputs(t *testing.T) {
	key := testKey(t)

	_, err := DecryptWith("ROT13", []byte("x"), key, make([]byte, IVSize))
	require.ErrorIs(t, err, common.ErrMalformedPackage)

	_, err = Decrypt([]byte("short"), key, make([]byte, IVSize))
	require.ErrorIs(t, err, common.ErrDecryption)

	_, err = Decrypt(make([]byte, 32), key, make([]byte, 4))
	require.ErrorIs(t, err, common.ErrDecryption)

	_, err = Decrypt(make([]byte, 32), key[:16], make([]byte, IVSize))
	require.ErrorIs(t, err, common.ErrDecryption)
}

func TestEncrypt_RejectsBadKeyAndAlgorithm(t *testing.T) {
	_, _, err := Encrypt([]byte("x"), make([]byte, 16))
	require.Error(t, err)

	_, _, err = EncryptWith("DES", []byte("x"), testKey(t))
	require.Error(t, err)
}

func TestEncrypt_RandomFailure(t *testing.T) {
	key := testKey(t)
	orig := randReader
	t.Cleanup(func() { randReader = orig })
	randReader = failingReader{}

	_, _, err := Encrypt([]byte("x"), key)
	require.Error(t, err)
}
