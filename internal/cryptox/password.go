package cryptox

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/dmitrijs2005/uploadhaven/internal/common"
)

const (
	// MinPasswordLength is counted in runes.
	MinPasswordLength = 10
	// MinPasswordClasses is how many of lower/upper/digit/symbol must appear.
	MinPasswordClasses = 3

	accessPasswordLength = 20
	// no 0/O, 1/l/I
	accessPasswordAlphabet = "abcdefghijkmnopqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

// CheckPasswordPolicy returns ErrWeakPassword when the password is too
// short or draws from too few character classes. The message never
// includes the password.
func CheckPasswordPolicy(password []byte) error {
	if !utf8.Valid(password) {
		return fmt.Errorf("%w: not valid UTF-8", common.ErrWeakPassword)
	}
	if utf8.RuneCount(password) < MinPasswordLength {
		return fmt.Errorf("%w: shorter than %d characters", common.ErrWeakPassword, MinPasswordLength)
	}

	var lower, upper, digit, symbol bool
	for _, r := range string(password) {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r), unicode.IsSymbol(r), unicode.IsSpace(r):
			symbol = true
		}
	}

	classes := 0
	for _, ok := range []bool{lower, upper, digit, symbol} {
		if ok {
			classes++
		}
	}
	if classes < MinPasswordClasses {
		return fmt.Errorf("%w: needs %d of lower, upper, digit, symbol", common.ErrWeakPassword, MinPasswordClasses)
	}
	return nil
}

// GenerateAccessPassword creates the secondary secret that gates download
// access. It is independent of the encryption key.
func GenerateAccessPassword() (string, error) {
	b, err := readRandom(accessPasswordLength)
	if err != nil {
		return "", err
	}
	defer func() { common.WipeByteArray(b) }()

	// 256 % 57 != 0, so reject the tail to keep the draw uniform.
	const limit = 256 - 256%len(accessPasswordAlphabet)
	out := make([]byte, 0, accessPasswordLength)
	defer func() { common.WipeByteArray(out) }()
	for len(out) < accessPasswordLength {
		for _, v := range b {
			if int(v) >= limit {
				continue
			}
			out = append(out, accessPasswordAlphabet[int(v)%len(accessPasswordAlphabet)])
			if len(out) == accessPasswordLength {
				break
			}
		}
		if len(out) < accessPasswordLength {
			common.WipeByteArray(b)
			if b, err = readRandom(accessPasswordLength); err != nil {
				return "", err
			}
		}
	}
	return string(out), nil
}
