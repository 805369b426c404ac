package core

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenClaims is the payload encoded into every session token.
type TokenClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"uid"`
	Access string `json:"access"`
}

// TokenSigner issues and verifies signed session tokens. Issue and Verify
// are pure functions of the secret and their inputs; persisting a token into
// a user's token sequence (and checking it is still there) is the caller's
// responsibility. That store cross-check is what makes logout enforceable:
// a signature stays valid forever, store presence does not.
type TokenSigner struct {
	secret []byte
}

func NewTokenSigner(secret string) *TokenSigner {
	return &TokenSigner{secret: []byte(secret)}
}

// Issue produces a signed token encoding the user id and access level.
// Tokens carry no expiry; they remain valid until revoked from the store.
// Each issuance stamps iat and a random jti, so two tokens for the same
// user are never byte-identical and revoking one leaves the others intact.
func (s *TokenSigner) Issue(userID, access string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       uuid.NewString(),
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
		UserID: userID,
		Access: access,
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and decodes the claims. It does NOT consult
// the store.
func (s *TokenSigner) Verify(tokenString string) (*TokenClaims, error) {
	claims := &TokenClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, ErrInvalidToken
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
