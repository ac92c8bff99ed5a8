package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AccessTokenIssuer is stamped on tokens minted by IssueAccessToken.
const AccessTokenIssuer = "p2p-ledger"

// ErrMissingSubject is returned for a well-signed token that names no account.
var ErrMissingSubject = errors.New("token has no subject")

// IssueAccessToken signs an HS256 token whose subject is accountID. Login lives in the
// upstream identity service that shares JWT_SECRET; this service only verifies tokens.
// IssueAccessToken mints the same shape for handler tests and local development.
func IssueAccessToken(accountID string, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    AccessTokenIssuer,
		Subject:   accountID,
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseAccessToken validates the signature and standard claims and returns the account
// id in the subject. jwt sentinel errors (expired, not valid yet) are passed through.
func ParseAccessToken(tokenString string, secret string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", jwt.ErrTokenSignatureInvalid
	}
	if claims.Subject == "" {
		return "", ErrMissingSubject
	}
	return claims.Subject, nil
}
