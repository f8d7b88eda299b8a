package auth

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the identity provider claims the backend reads.
type Claims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// TokenVerifier checks a bearer token and returns its claims.
type TokenVerifier interface {
	Verify(tokenString string) (*Claims, error)
}

var (
	ErrMissingToken  = errors.New("missing authorization token")
	ErrInvalidToken  = errors.New("invalid token")
	ErrTokenExpired  = errors.New("token expired")
	ErrNotConfigured = errors.New("authentication is not configured")
)

// SigningMethods are the asymmetric algorithms accepted from the key set.
var SigningMethods = []string{
	jwt.SigningMethodRS256.Alg(),
	jwt.SigningMethodES256.Alg(),
	jwt.SigningMethodEdDSA.Alg(),
}
