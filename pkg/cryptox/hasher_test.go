package cryptox

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// fastParams keeps argon2 cheap enough for unit tests.
var fastParams = Params{Memory: 64, Iterations: 1, Parallelism: 1, KeyLength: 32, SaltLength: 16}

func newTestHasher() *Hasher {
	return NewHasher(fastParams, "test-pepper", MaxPasswordLength)
}

func TestHasher_Hash(t *testing.T) {
	t.Parallel()
	h := newTestHasher()

	tests := []struct {
		name     string
		password string
	}{
		{"simple password", "password123"},
		{"complex password", "P@ssw0rd!#$%^&*()"},
		{"max length password", strings.Repeat("a", MaxPasswordLength)},
		{"unicode password", "пароль🔒密码"},
		{"whitespace password", "   spaces   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			digest, err := h.Hash(tt.password)
			require.NoError(t, err)
			require.True(t, strings.HasPrefix(digest, "$argon2id$v=19$"), "digest should be in PHC format")

			parts := strings.Split(digest, "$")
			require.Len(t, parts, 6, "PHC digest should have 6 parts")
			require.Equal(t, "m=64,t=1,p=1", parts[3])
			require.NotEmpty(t, parts[4], "salt should not be empty")
			require.NotEmpty(t, parts[5], "hash should not be empty")

			require.True(t, h.Verify(tt.password, digest))
		})
	}
}

func TestHasher_HashRejectsBadInput(t *testing.T) {
	t.Parallel()
	h := newTestHasher()

	_, err := h.Hash("")
	require.ErrorIs(t, err, ErrEmptyInput)

	_, err = h.Hash(strings.Repeat("a", MaxPasswordLength+1))
	require.ErrorIs(t, err, ErrInputTooLong)

	// Length is counted in characters, not bytes.
	_, err = h.Hash(strings.Repeat("密", MaxPasswordLength))
	require.NoError(t, err)
}

func TestHasher_CredentialBound(t *testing.T) {
	t.Parallel()
	h := NewHasher(fastParams, "", MaxCredentialLength)

	credential := strings.Repeat("eyJhbGciOiJIUzI1NiJ9.", 20)
	digest, err := h.Hash(credential)
	require.NoError(t, err)
	require.True(t, h.Verify(credential, digest))
}

func TestHasher_UniqueSalts(t *testing.T) {
	t.Parallel()
	h := newTestHasher()

	d1, err := h.Hash("samepassword")
	require.NoError(t, err)
	d2, err := h.Hash("samepassword")
	require.NoError(t, err)

	require.NotEqual(t, d1, d2, "digests should differ due to unique salts")
	require.True(t, h.Verify("samepassword", d1))
	require.True(t, h.Verify("samepassword", d2))
}

func TestHasher_VerifyWrongPassword(t *testing.T) {
	t.Parallel()
	h := newTestHasher()

	digest, err := h.Hash("correct-password")
	require.NoError(t, err)

	for _, wrong := range []string{
		"wrong-password",
		"Correct-Password",
		"correct-password ",
		"correct-passwor",
		"",
		strings.Repeat("x", 10000),
	} {
		require.False(t, h.Verify(wrong, digest), "%q should not verify", wrong)
	}
}

func TestHasher_VerifyMalformedDigest(t *testing.T) {
	t.Parallel()
	h := newTestHasher()

	tests := []struct {
		name   string
		digest string
	}{
		{"empty digest", ""},
		{"plain text", "not-a-digest"},
		{"wrong algorithm", "$argon2i$v=19$m=64,t=1,p=1$c2FsdA$aGFzaA"},
		{"missing parts", "$argon2id$v=19$m=64"},
		{"malformed parameters", "$argon2id$v=19$invalid$c2FsdA$aGFzaA"},
		{"zero iterations", "$argon2id$v=19$m=64,t=0,p=1$c2FsdA$aGFzaA"},
		{"zero parallelism", "$argon2id$v=19$m=64,t=1,p=0$c2FsdA$aGFzaA"},
		{"huge memory", "$argon2id$v=19$m=99999999,t=1,p=1$c2FsdA$aGFzaA"},
		{"invalid base64 salt", "$argon2id$v=19$m=64,t=1,p=1$!!!invalid!!!$aGFzaA"},
		{"invalid base64 hash", "$argon2id$v=19$m=64,t=1,p=1$c2FsdA$!!!invalid!!!"},
		{"wrong version", "$argon2id$v=18$m=64,t=1,p=1$c2FsdA$aGFzaA"},
		{"truncated bcrypt", "$2b$12$short"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NotPanics(t, func() {
				require.False(t, h.Verify("test-password", tt.digest))
			})
		})
	}
}

func TestHasher_PepperIsApplied(t *testing.T) {
	t.Parallel()

	a := NewHasher(fastParams, "pepper-a", 0)
	b := NewHasher(fastParams, "pepper-b", 0)

	digest, err := a.Hash("Passw0rd1")
	require.NoError(t, err)

	require.True(t, a.Verify("Passw0rd1", digest))
	require.False(t, b.Verify("Passw0rd1", digest), "a different pepper must not verify")
}

func TestHasher_VerifiesOlderParameters(t *testing.T) {
	t.Parallel()

	old := NewHasher(Params{Memory: 32, Iterations: 2, Parallelism: 1}, "p", 0)
	digest, err := old.Hash("Passw0rd1")
	require.NoError(t, err)

	current := NewHasher(fastParams, "p", 0)
	require.True(t, current.Verify("Passw0rd1", digest), "digests carry their own work factor")
}

func TestHasher_LegacyBcrypt(t *testing.T) {
	t.Parallel()
	h := newTestHasher()

	legacy, err := bcrypt.GenerateFromPassword([]byte("Passw0rd1"), bcrypt.MinCost)
	require.NoError(t, err)

	require.True(t, h.Verify("Passw0rd1", string(legacy)))
	require.False(t, h.Verify("Passw0rd2", string(legacy)))
}

func TestHasher_ConcurrentUse(t *testing.T) {
	t.Parallel()
	h := newTestHasher()

	digest, err := h.Hash("shared-password")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			require.True(t, h.Verify("shared-password", digest))
		}()
	}
	wg.Wait()
}

func TestNewHasher_Defaults(t *testing.T) {
	t.Parallel()

	h := NewHasher(Params{}, "", 0)
	require.Equal(t, DefaultParams, h.Params())
}
