package cryptox

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// DefaultGeneratedPasswordLength is used when GeneratePassword is given zero.
const DefaultGeneratedPasswordLength = 16

const (
	upperChars     = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	lowerChars     = "abcdefghijklmnopqrstuvwxyz"
	digitChars     = "0123456789"
	generatedChars = upperChars + lowerChars + digitChars + symbolChars
)

// GeneratePassword returns a random password containing at least one
// character from every class, so it always satisfies Strength.
func GeneratePassword(length int) (string, error) {
	if length == 0 {
		length = DefaultGeneratedPasswordLength
	}
	if length < minPasswordLength || length > MaxPasswordLength {
		return "", fmt.Errorf("cryptox: password length must be between %d and %d, got %d",
			minPasswordLength, MaxPasswordLength, length)
	}

	password := make([]byte, 0, length)
	for _, set := range []string{upperChars, lowerChars, digitChars, symbolChars} {
		c, err := randomChar(set)
		if err != nil {
			return "", err
		}
		password = append(password, c)
	}
	for len(password) < length {
		c, err := randomChar(generatedChars)
		if err != nil {
			return "", err
		}
		password = append(password, c)
	}

	// Fisher-Yates so the guaranteed classes are not always up front.
	for i := len(password) - 1; i > 0; i-- {
		j, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return "", fmt.Errorf("cryptox: shuffle password: %w", err)
		}
		password[i], password[j.Int64()] = password[j.Int64()], password[i]
	}

	return string(password), nil
}

func randomChar(set string) (byte, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(set))))
	if err != nil {
		return 0, fmt.Errorf("cryptox: generate password: %w", err)
	}
	return set[n.Int64()], nil
}
