// Package auth verifies bearer tokens issued by the external identity
// provider. Tokens are HS256 JWTs signed with a shared secret.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"talentmatch/internal/config"
	"talentmatch/internal/domain"
)

// Claims are the token claims the API relies on.
type Claims struct {
	jwt.RegisteredClaims
	UserID string          `json:"user_id,omitempty"`
	Role   domain.UserRole `json:"role"`
}

// Principal returns user_id, falling back to the subject.
func (c *Claims) Principal() string {
	if c.UserID != "" {
		return c.UserID
	}
	return c.Subject
}

// TokenVerifier validates a raw bearer token.
type TokenVerifier interface {
	Verify(token string) (*Claims, error)
}

// Verifier validates tokens against a JWTConfig.
type Verifier struct {
	cfg config.JWTConfig
}

// NewVerifier creates a Verifier. The secret must be non-empty.
func NewVerifier(cfg config.JWTConfig) (*Verifier, error) {
	if cfg.Secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	return &Verifier{cfg: cfg}, nil
}

// Verify parses and validates token. Issuer and audience are checked only
// when configured.
func (v *Verifier) Verify(token string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.cfg.Issuer))
	}
	if v.cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(v.cfg.Audience))
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(v.cfg.Secret), nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("parsing token: %w", err)
	}
	if !parsed.Valid || claims.Principal() == "" {
		return nil, domain.ErrUnauthorized
	}
	if !domain.IsValidRole(claims.Role) {
		return nil, fmt.Errorf("role %q: %w", claims.Role, domain.ErrForbidden)
	}
	return claims, nil
}

// Issue signs a token for userID. It is used by tests and local tooling;
// production tokens come from the identity provider.
func (v *Verifier) Issue(userID string, role domain.UserRole, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    v.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.New().String(),
		},
		UserID: userID,
		Role:   role,
	}
	if v.cfg.Audience != "" {
		claims.Audience = jwt.ClaimStrings{v.cfg.Audience}
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(v.cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}
