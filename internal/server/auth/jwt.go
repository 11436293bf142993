// Package auth issues and checks the short-lived download tokens that gate
// access-protected uploads.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/uploadhaven/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

const tokenAudience = "uploadhaven-download"

// Claims binds a token to exactly one upload.
type Claims struct {
	jwt.RegisteredClaims
	ShortID string `json:"sid"`
}

// GenerateToken signs an HS256 token for shortID valid from issuedAt until
// expiresAt.
func GenerateToken(shortID string, secretKey []byte, issuedAt, expiresAt time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Audience:  jwt.ClaimStrings{tokenAudience},
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		ShortID: shortID,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}
	return tokenString, nil
}

// GetShortIDFromToken validates tokenString as of now and returns the
// upload it was issued for.
func GetShortIDFromToken(tokenString string, secretKey []byte, now time.Time) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) { return secretKey, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(tokenAudience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if errors.Is(err, jwt.ErrTokenExpired) {
		return "", common.ErrTokenExpired
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	if !token.Valid || claims.ShortID == "" {
		return "", common.ErrInvalidToken
	}
	return claims.ShortID, nil
}
