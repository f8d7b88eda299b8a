package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"

	"github.com/frahmantamala/shared-expenses/internal"
)

// Verifier validates bearer tokens against a key set, an issuer and an
// audience.
type Verifier struct {
	keyfunc jwt.Keyfunc
	parser  *jwt.Parser
}

// NewVerifier builds a verifier around any key lookup. An empty issuer is
// not checked.
func NewVerifier(kf jwt.Keyfunc, issuer, audience string) *Verifier {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods(SigningMethods),
		jwt.WithExpirationRequired(),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	if audience != "" {
		opts = append(opts, jwt.WithAudience(audience))
	}
	return &Verifier{
		keyfunc: kf,
		parser:  jwt.NewParser(opts...),
	}
}

// NewRemoteVerifier fetches the JWKS of the identity provider and keeps it
// refreshed until ctx is cancelled.
func NewRemoteVerifier(ctx context.Context, cfg internal.AuthConfig) (*Verifier, error) {
	url := cfg.KeySetURL()
	if url == "" {
		return nil, ErrNotConfigured
	}
	k, err := keyfunc.NewDefaultCtx(ctx, []string{url})
	if err != nil {
		return nil, fmt.Errorf("load key set from %s: %w", url, err)
	}
	return NewVerifier(k.Keyfunc, cfg.ExpectedIssuer(), cfg.ExpectedAudience()), nil
}

var _ TokenVerifier = (*Verifier)(nil)

// Verify validates a token and returns claims
func (v *Verifier) Verify(tokenString string) (*Claims, error) {
	if v == nil || v.keyfunc == nil {
		return nil, ErrNotConfigured
	}
	if tokenString == "" {
		return nil, ErrMissingToken
	}

	claims := &Claims{}
	token, err := v.parser.ParseWithClaims(tokenString, claims, v.keyfunc)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %v", ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
