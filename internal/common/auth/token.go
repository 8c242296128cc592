package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"fresh-basket/internal/domain"
)

// Claims binds an actor reference and role to a session token. The role is
// fixed once per session; services select their transition strategy from it.
type Claims struct {
	jwt.RegisteredClaims
	Role domain.Role `json:"role"`
}

// Actor is the verified identity attached to incoming requests.
type Actor struct {
	Ref  string
	Role domain.Role
}

// Mint signs an HS256 session token for the given actor.
func Mint(secret []byte, subject string, role domain.Role, ttl time.Duration) (string, error) {
	if !role.Valid() {
		return "", errors.New("unknown role")
	}
	now := time.Now().UTC()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    "fresh-basket",
		},
		Role: role,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// Verify parses and validates a session token.
func Verify(secret []byte, tokenString string) (Actor, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil {
		return Actor{}, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || !claims.Role.Valid() {
		return Actor{}, jwt.ErrTokenSignatureInvalid
	}
	return Actor{Ref: claims.Subject, Role: claims.Role}, nil
}
