package utils

import (
	"math"
	"strings"
)

// RoundMoney rounds a dinar amount to millimes (3 decimals).
func RoundMoney(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// NewNullString returns nil for an empty (or blank) string.
func NewNullString(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

// Deref returns the pointed value or the zero value for nil.
func Deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
