package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/campushub/university_backend/internal/keys"
	"github.com/campushub/university_backend/internal/models"
)

// Decode failure taxonomy. Decode never returns a raw library error; every
// failure collapses into one of these so callers can branch without knowing
// the JWT implementation.
var (
	ErrMalformed        = errors.New("token malformed")
	ErrSignatureInvalid = errors.New("token signature invalid")
	ErrExpired          = errors.New("token expired")
	ErrTypeMismatch     = errors.New("token type mismatch")
	ErrUnsupportedAlg   = errors.New("token algorithm unsupported")
)

// Claims is the wire-exact payload: sub/iat/exp/iss from the registered set
// plus tokenType, authorities and roles.
type Claims struct {
	TokenType   string   `json:"tokenType"`
	Authorities []string `json:"authorities"`
	Roles       []string `json:"roles"`
	jwt.RegisteredClaims
}

// Codec issues and verifies HMAC-SHA512 signed tokens. It is a pure function
// over (token, key, clock); the only side effect anywhere near it is logging
// done by callers.
type Codec struct {
	Keys   *keys.Manager
	Issuer string

	// Now is the verification clock, overridable in tests. Nil means
	// time.Now.
	Now func() time.Time
}

func (c *Codec) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// Issue signs a token for the subject with the key matching purpose. Roles
// are derived from the authorities by stripping the ROLE_ prefix.
func (c *Codec) Issue(subject string, authorities []string, purpose keys.Purpose, ttl time.Duration) (string, error) {
	key, err := c.Keys.Key(purpose)
	if err != nil {
		return "", err
	}

	now := c.now().UTC()
	claims := Claims{
		TokenType:   string(purpose),
		Authorities: authorities,
		Roles:       rolesFromAuthorities(authorities),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    c.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	signed, err := t.SignedString(key.Material)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", purpose, err)
	}
	return signed, nil
}

// Decode verifies the signature with the key matching purpose and validates
// expiry and token type. Expiry is a strict "exp before now" comparison: a
// token whose exp equals the current second is still valid.
func (c *Codec) Decode(raw string, purpose keys.Purpose) (*Claims, error) {
	key, err := c.Keys.Key(purpose)
	if err != nil {
		return nil, err
	}

	var claims Claims
	t, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok || t.Method.Alg() != jwt.SigningMethodHS512.Alg() {
			return nil, ErrUnsupportedAlg
		}
		return key.Material, nil
	}, jwt.WithoutClaimsValidation())
	if err != nil {
		return nil, mapParseError(err)
	}
	if !t.Valid {
		return nil, ErrSignatureInvalid
	}

	if claims.ExpiresAt == nil {
		return nil, ErrMalformed
	}
	if claims.ExpiresAt.Time.Before(c.now()) {
		return nil, ErrExpired
	}
	if claims.TokenType != string(purpose) {
		return nil, ErrTypeMismatch
	}
	return &claims, nil
}

func mapParseError(err error) error {
	switch {
	case errors.Is(err, ErrUnsupportedAlg):
		return ErrUnsupportedAlg
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrSignatureInvalid
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrMalformed
	default:
		return ErrMalformed
	}
}

func rolesFromAuthorities(authorities []string) []string {
	roles := make([]string, 0, len(authorities))
	for _, a := range authorities {
		if r, ok := models.RoleFromAuthority(a); ok {
			roles = append(roles, string(r))
		}
	}
	return roles
}

// RoleSet converts the roles claim back into typed roles, skipping anything
// unknown.
func (c *Claims) RoleSet() []models.Role {
	roles := make([]models.Role, 0, len(c.Roles))
	for _, raw := range c.Roles {
		r := models.Role(strings.ToUpper(raw))
		if r.Valid() {
			roles = append(roles, r)
		}
	}
	return roles
}
