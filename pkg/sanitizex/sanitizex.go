package sanitizex

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var emailFolder = cases.Fold()

// CleanSingleLine normalizes Unicode to NFC, replaces control characters,
// trims, and collapses internal whitespace to a single ASCII space.
func CleanSingleLine(s string) string {
	if s == "" {
		return ""
	}
	s = norm.NFC.String(s)
	s = strings.Map(func(r rune) rune {
		if r == '\u007f' || unicode.IsControl(r) {
			return ' '
		}
		return r
	}, s)
	s = strings.TrimSpace(s)

	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !space {
				b.WriteByte(' ')
				space = true
			}
			continue
		}
		b.WriteRune(r)
		space = false
	}
	return b.String()
}

// CleanEmail returns the canonical lookup form of an address: NFC normalized,
// all whitespace and control characters removed, case folded.
func CleanEmail(s string) string {
	if s == "" {
		return ""
	}
	s = norm.NFC.String(s)
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || unicode.IsControl(r) || r == '\u007f' {
			return -1
		}
		return r
	}, s)
	return emailFolder.String(s)
}

// CleanCode strips every character that is not an ASCII digit, so pasted
// codes such as "123 456" or "123-456" reach validation in canonical form.
// Inputs containing letters keep them and fail validation downstream.
func CleanCode(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '-' {
			return -1
		}
		return r
	}, s)
}
