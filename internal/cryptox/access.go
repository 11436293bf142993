package cryptox

import (
	"crypto/subtle"

	"golang.org/x/crypto/argon2"
)

// accessSaltSize is the salt size for server-side access password hashes.
const accessSaltSize = 32

// HashAccessPassword hashes an access password with argon2id. The server
// keeps only the hash and salt; the password itself is never stored.
func HashAccessPassword(password []byte) (hash, salt []byte, err error) {
	salt, err = readRandom(accessSaltSize)
	if err != nil {
		return nil, nil, err
	}
	return hashAccess(password, salt), salt, nil
}

// VerifyAccessPassword compares in constant time.
func VerifyAccessPassword(password, salt, hash []byte) bool {
	if len(hash) == 0 || len(salt) == 0 {
		return false
	}
	return subtle.ConstantTimeCompare(hashAccess(password, salt), hash) == 1
}

func hashAccess(password, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, 32)
}
