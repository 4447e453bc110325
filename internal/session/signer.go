package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const tokenType = "session"

var ErrInvalidToken = errors.New("invalid session token")

type cookieClaims struct {
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

// Signer wraps a session id into an HS256 token so forged cookies are
// rejected without a store lookup. The token carries no user data.
type Signer struct {
	secret []byte
}

func NewSigner(secret string) *Signer {
	return &Signer{secret: []byte(secret)}
}

func (s *Signer) Sign(sessionID string, issuedAt time.Time) (string, error) {
	claims := cookieClaims{
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       sessionID,
			IssuedAt: jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify returns the session id inside a token produced by Sign.
func (s *Signer) Verify(raw string) (string, error) {
	token, err := jwt.ParseWithClaims(raw, &cookieClaims{}, func(t *jwt.Token) (interface{}, error) {
		// Enforce HS256
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(*cookieClaims)
	if !ok || !token.Valid || claims.TokenType != tokenType || claims.ID == "" {
		return "", ErrInvalidToken
	}

	return claims.ID, nil
}
