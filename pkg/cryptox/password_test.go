package cryptox

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGeneratePassword(t *testing.T) {
	t.Parallel()

	for _, length := range []int{0, 8, 12, 32} {
		password, err := GeneratePassword(length)
		require.NoError(t, err)

		want := length
		if want == 0 {
			want = DefaultGeneratedPasswordLength
		}
		require.Len(t, password, want)

		// Every generated password must satisfy the registration policy.
		s := Strength(password)
		require.True(t, s.Valid, "generated password %q should be valid", password)

		lower, upper, digit, symbol := characterClasses(password)
		require.True(t, lower && upper && digit && symbol, "all classes should be present in %q", password)
	}
}

func TestGeneratePassword_InvalidLength(t *testing.T) {
	t.Parallel()

	for _, length := range []int{-1, 4, 7, MaxPasswordLength + 1} {
		_, err := GeneratePassword(length)
		require.Error(t, err, "length %d should be rejected", length)
	}
}

func TestGeneratePassword_Uniqueness(t *testing.T) {
	t.Parallel()

	const count = 100
	seen := make(map[string]struct{}, count)
	for range count {
		password, err := GeneratePassword(0)
		require.NoError(t, err)
		require.NotContains(t, seen, password, "duplicate password generated")
		seen[password] = struct{}{}
	}
}

func TestGeneratePassword_CanBeHashed(t *testing.T) {
	t.Parallel()
	h := newTestHasher()

	password, err := GeneratePassword(0)
	require.NoError(t, err)

	digest, err := h.Hash(password)
	require.NoError(t, err)
	require.True(t, h.Verify(password, digest))
}
