package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"booklib/internal/policy"
)

// NonceTTL bounds how long a form-action nonce stays valid.
const NonceTTL = 12 * time.Hour

const nonceAudience = "form-action"

// IssueNonce signs a short-lived token an authenticated actor presents
// with every form-action request. The nonce carries the actor identity,
// so verifying it both authenticates the request and yields the actor
// for capability checks.
func IssueNonce(secret string, actor policy.Actor) (string, error) {
	jti, err := generateJTI()
	if err != nil {
		return "", err
	}

	c := Claims{
		Sub:  actor.ID,
		Role: actor.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Audience:  jwt.ClaimStrings{nonceAudience},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(NonceTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	return t.SignedString([]byte(secret))
}

// VerifyNonce checks a form-action nonce and returns the actor it was
// issued to. Bearer tokens are rejected here: a nonce must carry the
// form-action audience.
func VerifyNonce(secret, nonce string) (policy.Actor, error) {
	t, err := jwt.ParseWithClaims(nonce, &Claims{}, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithAudience(nonceAudience))
	if err != nil {
		return policy.Actor{}, err
	}
	claims, ok := t.Claims.(*Claims)
	if !ok || !t.Valid {
		return policy.Actor{}, jwt.ErrTokenInvalidClaims
	}
	return policy.Actor{ID: claims.Sub, Role: claims.Role}, nil
}
