package utils

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	// Tunisian mobile/landline numbers: 8 digits starting with 2, 4, 5 or 9.
	phoneRegex = regexp.MustCompile(`^[2459]\d{7}$`)
	emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// NormalizePhone strips whitespace and a leading +216 / 00216 country prefix.
func NormalizePhone(phone string) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, phone)
	switch {
	case strings.HasPrefix(cleaned, "+216"):
		cleaned = strings.TrimPrefix(cleaned, "+216")
	case strings.HasPrefix(cleaned, "00216"):
		cleaned = strings.TrimPrefix(cleaned, "00216")
	}
	return cleaned
}

// IsValidPhone reports whether phone is a valid local number once normalized.
func IsValidPhone(phone string) bool {
	return phoneRegex.MatchString(NormalizePhone(phone))
}

// IsValidEmail checks the loose user@host.tld shape.
func IsValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// IsValidName requires at least two non-blank characters.
func IsValidName(name string) bool {
	return len([]rune(strings.TrimSpace(name))) >= 2
}

// IsValidPasswordLength checks if password meets minimum length requirement.
func IsValidPasswordLength(password string, minLength int) bool {
	return len(password) >= minLength
}

// SanitizeInput trims and drops angle brackets from free text.
func SanitizeInput(s string) string {
	return strings.TrimSpace(strings.NewReplacer("<", "", ">", "").Replace(s))
}
