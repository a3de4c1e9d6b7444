// Package auth provides bcrypt secret hashing and JWT issuing/parsing for the
// API surface. Leaf package: no domain dependencies, used by the token
// endpoint and the bearer-auth middleware.
package auth

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// BCryptCost is the bcrypt work factor for hashed client secrets.
const BCryptCost = 12

// DefaultTokenExpiryHours is used when JWT_EXPIRY is unset or invalid.
const DefaultTokenExpiryHours = 24

const (
	envJWTSecret = "JWT_SECRET"
	envJWTExpiry = "JWT_EXPIRY"
)

// signingKey reads JWT_SECRET from the environment. Panics if unset so a
// misconfigured deployment fails at startup, not on the first request.
func signingKey() []byte {
	secret := os.Getenv(envJWTSecret)
	if secret == "" {
		panic(envJWTSecret + " environment variable not set — cannot issue or verify tokens")
	}
	return []byte(secret)
}

// parseExpiry converts an hour count string into a Duration, falling back to
// the default on empty or malformed input.
func parseExpiry(s string) time.Duration {
	if s == "" {
		return DefaultTokenExpiryHours * time.Hour
	}
	hours, err := strconv.Atoi(s)
	if err != nil || hours <= 0 {
		return DefaultTokenExpiryHours * time.Hour
	}
	return time.Duration(hours) * time.Hour
}

func tokenExpiry() time.Duration {
	return parseExpiry(os.Getenv(envJWTExpiry))
}

// HashSecret hashes a plaintext client secret with bcrypt.
func HashSecret(secret string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), BCryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash secret: %w", err)
	}
	return string(hash), nil
}

// VerifySecret reports whether a plaintext secret matches a bcrypt hash.
// Returns false rather than an error for malformed hashes so the response
// never leaks hash format details.
func VerifySecret(hash, secret string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)) == nil
}

// Claims are the JWT claims carried by API tokens. ClientID identifies the
// calling integration (there is no per-user account model in this service).
type Claims struct {
	ClientID string `json:"client_id"`
	jwt.RegisteredClaims
}

// GenerateToken issues a signed HS256 token for the given client.
func GenerateToken(clientID string) (string, error) {
	now := time.Now()
	claims := &Claims{
		ClientID: clientID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   clientID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenExpiry())),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(signingKey())
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ParseToken validates a token string and returns its claims.
// Rejects tokens signed with any method other than HS256.
func ParseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return signingKey(), nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}
