package logging

import (
	"strings"
	"unicode/utf8"
)

const mask = "****"

// RedactEmail shows first 2 runes of the local part and replaces the rest
// with "****", keeping the domain intact. It leaves the input unchanged if:
// - empty
// - malformed (no '@' or '@' at ends)
// - local part has fewer than 3 runes
func RedactEmail(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	at := strings.IndexByte(s, '@')
	if at <= 0 || at == len(s)-1 {
		return s
	}

	local, domain := s[:at], s[at+1:]
	if utf8.RuneCountInString(local) < 3 {
		return s
	}

	return runePrefix(local, 2) + mask + "@" + domain
}

// RedactUsername keeps the first 2 runes of a display name.
func RedactUsername(s string) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= 2 {
		return s
	}
	return runePrefix(s, 2) + mask
}

// RedactKeepPrefix keeps the first keep runes of s and masks the rest.
// Use it for identifiers that are safe to correlate by prefix only.
func RedactKeepPrefix(s string, keep int) string {
	s = strings.TrimSpace(s)
	if keep < 0 {
		keep = 0
	}
	if utf8.RuneCountInString(s) <= keep {
		return s
	}
	return runePrefix(s, keep) + mask
}

func runePrefix(s string, n int) string {
	offset := 0
	for count := 0; count < n && offset < len(s); count++ {
		_, size := utf8.DecodeRuneInString(s[offset:])
		offset += size
	}
	return s[:offset]
}
