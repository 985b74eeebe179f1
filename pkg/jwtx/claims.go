package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Default token TTL constants. Services override them through configuration.
const (
	// DefaultAccessTokenTTL is the default lifetime for bearer tokens.
	DefaultAccessTokenTTL = 15 * time.Minute

	// DefaultRefreshTokenTTL is the default lifetime for rotation tokens.
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour

	// DefaultExpiringSoonThreshold is how close to expiry a bearer token has
	// to be before clients should proactively refresh it.
	DefaultExpiringSoonThreshold = 5 * time.Minute
)

// TokenTypeRefresh is the type discriminant carried by rotation tokens.
// Bearer tokens carry no type.
const TokenTypeRefresh = "refresh"

// Claims are the decoded payload of a bearer or rotation token.
//
// Bearer payload:   {sub, iat, exp, jti, email, role, name}
// Rotation payload: {sub, iat, exp, jti, type:"refresh"}
type Claims struct {
	jwt.RegisteredClaims

	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	Name  string `json:"name,omitempty"`

	// Type discriminates rotation tokens from bearer tokens.
	Type string `json:"type,omitempty"`
}

// Identity is what a bearer token asserts about its subject at issuance time.
type Identity struct {
	Subject string
	Email   string
	Role    string
	Name    string
}

// NewAccessClaims builds bearer claims for id. Timestamps and jti are filled
// in by Codec.Mint.
func NewAccessClaims(id Identity) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: id.Subject},
		Email:            id.Email,
		Role:             id.Role,
		Name:             id.Name,
	}
}

// NewRefreshClaims builds rotation claims for subject: nothing but the
// subject, a fresh jti, and the type discriminant.
func NewRefreshClaims(subject string) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: subject},
		Type:             TokenTypeRefresh,
	}
}

// NewJTI returns a random identifier for the "jti" claim.
func NewJTI() string {
	return uuid.NewString()
}

// Identity returns the identity the claims assert.
func (c Claims) Identity() Identity {
	return Identity{
		Subject: c.Subject,
		Email:   c.Email,
		Role:    c.Role,
		Name:    c.Name,
	}
}

// IsRefresh reports whether the claims belong to a rotation token.
func (c Claims) IsRefresh() bool {
	return c.Type == TokenTypeRefresh
}

// ExpiresWithin reports whether the token expires within d of now. Tokens
// without an expiry never expire soon.
func (c Claims) ExpiresWithin(d time.Duration, now time.Time) bool {
	if c.ExpiresAt == nil {
		return false
	}
	return !now.Add(d).Before(c.ExpiresAt.Time)
}

// ValidateExpiry ensures the token hasn't expired at now. A token is expired
// at and after its exp instant. A missing exp is an invalid claim.
func (c Claims) ValidateExpiry(now time.Time) error {
	if c.ExpiresAt == nil {
		return ErrInvalidClaim
	}
	if !now.Before(c.ExpiresAt.Time) {
		return ErrExpired
	}
	return nil
}
