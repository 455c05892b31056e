package sanitizex

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanSingleLine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		in       string
		expected string
	}{
		{name: "empty", in: "", expected: ""},
		{name: "trims", in: "  Jane  ", expected: "Jane"},
		{name: "collapses whitespace", in: "Jane \t\n  Shopper", expected: "Jane Shopper"},
		{name: "control characters", in: "Jane\x00\x07Shopper\x7f", expected: "Jane Shopper"},
		{name: "nfc normalization", in: "Café", expected: "Café"},
		{name: "unicode spaces", in: "Jane  Shopper", expected: "Jane Shopper"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, CleanSingleLine(tt.in))
		})
	}
}

func TestCleanEmail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		in       string
		expected string
	}{
		{name: "empty", in: "", expected: ""},
		{name: "lower cases", in: "Jane.Shopper@Example.COM", expected: "jane.shopper@example.com"},
		{name: "removes whitespace", in: "  jane @example.com\n", expected: "jane@example.com"},
		{name: "removes control characters", in: "jane\x00@example.com", expected: "jane@example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, CleanEmail(tt.in))
		})
	}
}

func TestCleanCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "123456", CleanCode(" 123 456 "))
	assert.Equal(t, "123456", CleanCode("123-456"))
	assert.Equal(t, "12a456", CleanCode("12a456"))
	assert.Equal(t, "", CleanCode(""))
}

func TestCleanSingleLine_Idempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{"  a  b  ", strings.Repeat("x ", 100), "Әлия\tНұрлан", "\x01\x02"}
	for _, in := range inputs {
		once := CleanSingleLine(in)
		assert.Equal(t, once, CleanSingleLine(once))
	}
}
