// Package randcode produces one-time numeric codes from a cryptographically
// secure source.
package randcode

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
)

const (
	NumericLength = 6
	numericModulo = 1_000_000
)

// Numeric returns a zero padded six digit code drawn from crypto/rand.
func Numeric() (string, error) {
	return NumericFrom(rand.Reader)
}

// NumericFrom reads four bytes from r, interprets them as a big-endian signed
// 32-bit integer, takes its absolute value and reduces it modulo 1,000,000.
// The absolute value is taken in 64-bit space so math.MinInt32 is handled.
func NumericFrom(r io.Reader) (string, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return "", fmt.Errorf("randcode: read random bytes: %w", err)
	}

	n := int64(int32(binary.BigEndian.Uint32(buf[:])))
	if n < 0 {
		n = -n
	}

	return fmt.Sprintf("%0*d", NumericLength, n%numericModulo), nil
}
