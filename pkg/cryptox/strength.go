package cryptox

import (
	"strings"
	"unicode/utf8"
)

// Requirement names reported in StrengthResult.Unmet.
const (
	RequirementLength    = "at least 8 characters"
	RequirementLowercase = "a lowercase letter"
	RequirementUppercase = "an uppercase letter"
	RequirementDigit     = "a digit"
	RequirementSymbol    = "a symbol such as !@#$%"
)

const (
	minPasswordLength    = 8
	strongPasswordLength = 12
	symbolChars          = `!@#$%^&*(),.?":{}|<>`
)

// StrengthResult is advisory password scoring.
type StrengthResult struct {
	Valid   bool     `json:"valid"`
	Score   int      `json:"score"` // 0..4
	Unmet   []string `json:"unmet,omitempty"`
	Message string   `json:"message"`
}

// Strength scores a password. Valid requires at least 8 characters and three
// of the four character classes. This is policy only; it has no bearing on
// stored digests.
func Strength(password string) StrengthResult {
	var unmet []string
	score := 0

	length := utf8.RuneCountInString(password)
	switch {
	case length < minPasswordLength:
		unmet = append(unmet, RequirementLength)
	case length >= strongPasswordLength:
		score++
	}

	lower, upper, digit, symbol := characterClasses(password)

	classes := 0
	for _, c := range []struct {
		ok   bool
		name string
	}{
		{lower, RequirementLowercase},
		{upper, RequirementUppercase},
		{digit, RequirementDigit},
		{symbol, RequirementSymbol},
	} {
		if c.ok {
			score++
			classes++
			continue
		}
		unmet = append(unmet, c.name)
	}

	score = min(score, 4)

	return StrengthResult{
		Valid:   length >= minPasswordLength && classes >= 3,
		Score:   score,
		Unmet:   unmet,
		Message: strengthMessage(score),
	}
}

func characterClasses(s string) (lower, upper, digit, symbol bool) {
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(symbolChars, r):
			symbol = true
		}
	}
	return
}

func strengthMessage(score int) string {
	switch score {
	case 0:
		return "very weak"
	case 1:
		return "weak"
	case 2:
		return "fair"
	case 3:
		return "good"
	default:
		return "strong"
	}
}
