package cryptox

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// Input bounds for the two hashers the service uses. Rotation credentials are
// signed tokens and comfortably exceed the password bound.
const (
	MaxPasswordLength   = 128
	MaxCredentialLength = 4096
)

// maxMemoryKiB caps the memory parameter read back out of a stored digest so a
// corrupted row cannot make a single verify allocate unbounded memory.
const maxMemoryKiB = 2 * 1024 * 1024

var (
	ErrEmptyInput   = errors.New("cryptox: empty input")
	ErrInputTooLong = errors.New("cryptox: input too long")
)

// Params tunes the Argon2id work factor. Every digest records the parameters it
// was produced with, so changing them only affects new digests.
type Params struct {
	Memory      uint32 // KiB
	Iterations  uint32
	Parallelism uint8
	KeyLength   uint32
	SaltLength  uint32
}

// DefaultParams follows the OWASP minimum recommendation for Argon2id.
var DefaultParams = Params{
	Memory:      19 * 1024,
	Iterations:  2,
	Parallelism: 1,
	KeyLength:   32,
	SaltLength:  16,
}

// Hasher produces and checks salted, self-describing Argon2id digests in PHC
// format: $argon2id$v=19$m=X,t=Y,p=Z$salt$hash
//
// A Hasher is immutable after construction and safe for concurrent use.
type Hasher struct {
	params Params
	pepper string
	maxLen int
}

// NewHasher returns a Hasher. An empty pepper disables peppering; maxLen bounds
// the accepted input length in characters (zero means MaxPasswordLength).
func NewHasher(params Params, pepper string, maxLen int) *Hasher {
	if params.Memory == 0 {
		params.Memory = DefaultParams.Memory
	}
	if params.Iterations == 0 {
		params.Iterations = DefaultParams.Iterations
	}
	if params.Parallelism == 0 {
		params.Parallelism = DefaultParams.Parallelism
	}
	if params.KeyLength == 0 {
		params.KeyLength = DefaultParams.KeyLength
	}
	if params.SaltLength == 0 {
		params.SaltLength = DefaultParams.SaltLength
	}
	if maxLen <= 0 {
		maxLen = MaxPasswordLength
	}

	return &Hasher{params: params, pepper: pepper, maxLen: maxLen}
}

// Params returns the work factor new digests are produced with.
func (h *Hasher) Params() Params { return h.params }

// Hash generates a PHC-format Argon2id digest including salt and parameters.
func (h *Hasher) Hash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", ErrEmptyInput
	}
	if utf8.RuneCountInString(plaintext) > h.maxLen {
		return "", ErrInputTooLong
	}

	salt := make([]byte, h.params.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("cryptox: read salt: %w", err)
	}

	key := argon2.IDKey(
		[]byte(plaintext+h.pepper),
		salt,
		h.params.Iterations,
		h.params.Memory,
		h.params.Parallelism,
		h.params.KeyLength,
	)

	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.Memory,
		h.params.Iterations,
		h.params.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify reports whether plaintext matches digest. It never fails loudly:
// empty inputs and malformed digests simply do not match.
//
// Besides Argon2id digests it accepts bcrypt digests ($2a$, $2b$, $2y$) so
// accounts imported from the previous bcrypt-based system keep working. Those
// digests were produced without a pepper.
func (h *Hasher) Verify(plaintext, digest string) bool {
	if plaintext == "" || digest == "" {
		return false
	}
	if utf8.RuneCountInString(plaintext) > h.maxLen {
		return false
	}

	if isBcrypt(digest) {
		return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
	}

	p, salt, expected, err := parsePHC(digest)
	if err != nil {
		return false
	}

	computed := argon2.IDKey(
		[]byte(plaintext+h.pepper),
		salt,
		p.Iterations,
		p.Memory,
		p.Parallelism,
		uint32(len(expected)), // #nosec G115 - bounded by parsePHC
	)

	return subtle.ConstantTimeCompare(computed, expected) == 1
}

func isBcrypt(digest string) bool {
	return strings.HasPrefix(digest, "$2a$") ||
		strings.HasPrefix(digest, "$2b$") ||
		strings.HasPrefix(digest, "$2y$")
}

// parsePHC splits ["", "argon2id", "v=19", "m=X,t=Y,p=Z", "salt", "hash"].
func parsePHC(digest string) (Params, []byte, []byte, error) {
	parts := strings.Split(digest, "$")
	if len(parts) != 6 || parts[0] != "" {
		return Params{}, nil, nil, errors.New("invalid digest: expected 6 parts")
	}
	if parts[1] != "argon2id" {
		return Params{}, nil, nil, errors.New("invalid digest: not argon2id")
	}
	if parts[2] != fmt.Sprintf("v=%d", argon2.Version) {
		return Params{}, nil, nil, errors.New("invalid digest: wrong version")
	}

	var p Params
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Iterations, &p.Parallelism); err != nil {
		return Params{}, nil, nil, fmt.Errorf("invalid digest: parameters: %w", err)
	}
	if p.Iterations < 1 || p.Parallelism < 1 || p.Memory < 1 || p.Memory > maxMemoryKiB {
		return Params{}, nil, nil, errors.New("invalid digest: parameters out of range")
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return Params{}, nil, nil, errors.New("invalid digest: salt")
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 || len(key) > 1024 {
		return Params{}, nil, nil, errors.New("invalid digest: hash")
	}

	return p, salt, key, nil
}
