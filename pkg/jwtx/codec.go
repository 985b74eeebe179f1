package jwtx

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MinKeyLength is the minimum HS256 key size in bytes.
const MinKeyLength = 32

// Codec mints and verifies HS256 tokens with a single symmetric key that is
// loaded once at startup. A Codec is immutable and safe for concurrent use.
type Codec struct {
	key        []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
	parser     *jwt.Parser
}

// Option configures a Codec.
type Option func(*Codec)

// WithTTL overrides the bearer and rotation validity windows. Non-positive
// values keep the defaults.
func WithTTL(access, refresh time.Duration) Option {
	return func(c *Codec) {
		if access > 0 {
			c.accessTTL = access
		}
		if refresh > 0 {
			c.refreshTTL = refresh
		}
	}
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) {
		if now != nil {
			c.now = now
		}
	}
}

// NewCodec returns a Codec signing with key.
func NewCodec(key []byte, opts ...Option) (*Codec, error) {
	if len(key) < MinKeyLength {
		return nil, fmt.Errorf("%w: need at least %d bytes, got %d", ErrWeakKey, MinKeyLength, len(key))
	}

	c := &Codec{
		key:        append([]byte(nil), key...),
		accessTTL:  DefaultAccessTokenTTL,
		refreshTTL: DefaultRefreshTokenTTL,
		now:        time.Now,
		parser:     jwt.NewParser(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// AccessTTL is the bearer validity window.
func (c *Codec) AccessTTL() time.Duration { return c.accessTTL }

// RefreshTTL is the rotation validity window.
func (c *Codec) RefreshTTL() time.Duration { return c.refreshTTL }

// Mint stamps iat, exp and (when empty) jti onto claims and signs them.
func (c *Codec) Mint(claims Claims, ttl time.Duration) (string, error) {
	signed, _, err := c.mint(claims, ttl)
	return signed, err
}

func (c *Codec) mint(claims Claims, ttl time.Duration) (string, time.Time, error) {
	if ttl <= 0 {
		return "", time.Time{}, fmt.Errorf("%w: ttl must be positive", ErrInvalidClaim)
	}

	now := c.now()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	if claims.ID == "" {
		claims.ID = NewJTI()
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("jwtx: sign: %w", err)
	}
	return signed, claims.ExpiresAt.Time, nil
}

// Verify checks token and returns its claims.
//
// The checks run in a fixed order: exactly three segments, payload decode,
// expiry, then the MAC. Expired tokens fail with ErrExpired whether or not
// their signature is valid.
func (c *Codec) Verify(token string) (Claims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return Claims{}, ErrMalformed
	}

	var claims Claims
	parsed, _, err := c.parser.ParseUnverified(token, &claims)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	if claims.ExpiresAt == nil {
		return Claims{}, fmt.Errorf("%w: missing exp", ErrMalformed)
	}
	if err := claims.ValidateExpiry(c.now()); err != nil {
		return Claims{}, err
	}

	if parsed.Method.Alg() != jwt.SigningMethodHS256.Alg() {
		return Claims{}, fmt.Errorf("%w: unexpected alg %q", ErrInvalidSig, parsed.Method.Alg())
	}

	sig, err := c.parser.DecodeSegment(parts[2])
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	// HMAC comparison inside Verify is constant time.
	if err := jwt.SigningMethodHS256.Verify(parts[0]+"."+parts[1], sig, c.key); err != nil {
		return Claims{}, ErrInvalidSig
	}

	return claims, nil
}

// DecodeUnsafe decodes the payload without verifying anything. The result
// must never drive an authorization decision.
func (c *Codec) DecodeUnsafe(token string) (Claims, bool) {
	return DecodeUnverified(token)
}

// DecodeUnverified is DecodeUnsafe for holders of a token who do not have the
// key, such as clients deciding when to refresh.
func DecodeUnverified(token string) (Claims, bool) {
	if strings.Count(token, ".") != 2 {
		return Claims{}, false
	}

	var claims Claims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return Claims{}, false
	}
	return claims, true
}

// Pair is a freshly minted bearer and rotation token.
type Pair struct {
	AccessToken      string
	AccessExpiresIn  time.Duration
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// MintPair mints a bearer token embedding id and a rotation token carrying
// only the subject, a fresh jti, and the refresh type discriminant.
func (c *Codec) MintPair(id Identity) (Pair, error) {
	access, _, err := c.mint(NewAccessClaims(id), c.accessTTL)
	if err != nil {
		return Pair{}, err
	}

	refresh, refreshExp, err := c.mint(NewRefreshClaims(id.Subject), c.refreshTTL)
	if err != nil {
		return Pair{}, err
	}

	return Pair{
		AccessToken:      access,
		AccessExpiresIn:  c.accessTTL,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExp,
	}, nil
}
