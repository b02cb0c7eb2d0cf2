package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidPhone(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"+216 20 123 456", true},
		{"20123456", true},
		{"0021650123456", true},
		{"98 765 432", true},
		{"41234567", true},
		{"12345678", false},
		{"2012345", false},
		{"201234567", false},
		{"+33 6 12 34 56 78", false},
		{"", false},
		{"2012345a", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, IsValidPhone(tc.in), "phone %q", tc.in)
	}
}

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "20123456", NormalizePhone("+216 20 123 456"))
	assert.Equal(t, "20123456", NormalizePhone(" 20\t123456 "))
	assert.Equal(t, "50123456", NormalizePhone("00216 50 123 456"))
}

func TestIsValidEmail(t *testing.T) {
	assert.True(t, IsValidEmail("client@example.com"))
	assert.True(t, IsValidEmail("a.b+c@store.com.tn"))
	assert.False(t, IsValidEmail("client@example"))
	assert.False(t, IsValidEmail("client example@x.com"))
	assert.False(t, IsValidEmail("@example.com"))
	assert.False(t, IsValidEmail(""))
}

func TestIsValidName(t *testing.T) {
	assert.True(t, IsValidName("Ali"))
	assert.True(t, IsValidName(" Mo "))
	assert.False(t, IsValidName(" a "))
	assert.False(t, IsValidName(""))
}

func TestSanitizeInput(t *testing.T) {
	assert.Equal(t, "scriptalert(1)/script", SanitizeInput(" <script>alert(1)</script> "))
}

func TestRoundMoney(t *testing.T) {
	assert.Equal(t, 10.5, RoundMoney(10.4999999))
	assert.Equal(t, 3.333, RoundMoney(10.0/3.0))
}
