// Package auth issues and verifies the two credentials the catalog
// transports accept: bearer tokens for the REST adapter and short-lived
// nonces for the legacy form-action adapter.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"booklib/internal/policy"
)

type Claims struct {
	Sub  string `json:"sub"`  // actor id
	Role string `json:"role"` // ADMIN/EDITOR/VIEWER
	jwt.RegisteredClaims
}

func generateJTI() (string, error) {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// GenerateToken signs a bearer token for the given actor.
func GenerateToken(secret string, actor policy.Actor, ttl time.Duration) (string, error) {
	jti, err := generateJTI()
	if err != nil {
		return "", err
	}

	c := Claims{
		Sub:  actor.ID,
		Role: actor.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	return t.SignedString([]byte(secret))
}

// ParseToken verifies a bearer token and returns the actor it names.
func ParseToken(secret, tokenStr string) (policy.Actor, error) {
	t, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return policy.Actor{}, err
	}
	claims, ok := t.Claims.(*Claims)
	if !ok || !t.Valid {
		return policy.Actor{}, jwt.ErrTokenInvalidClaims
	}
	return policy.Actor{ID: claims.Sub, Role: claims.Role}, nil
}
