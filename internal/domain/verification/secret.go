package verification

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/ARUMANDESU/storefront-identity/pkg/randcode"
)

// CodeLength is the number of digits in a verification code.
const CodeLength = randcode.NumericLength

// GenerateCode returns a zero padded six digit code from a secure source.
func GenerateCode() (string, error) {
	return randcode.Numeric()
}

// HashCode returns the upper-case hex SHA-256 digest of the code's UTF-8 bytes.
func HashCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}

// ConstantTimeEquals compares a and b without returning early on the first
// differing byte. Strings of different length are unequal immediately; the
// length of a hex digest is not secret.
func ConstantTimeEquals(a, b string) bool {
	return constantTimeEquals(a, b, nil)
}

func constantTimeEquals(a, b string, visit func(i int)) bool {
	if len(a) != len(b) {
		return false
	}

	var acc byte
	for i := 0; i < len(a); i++ {
		if visit != nil {
			visit(i)
		}
		acc |= a[i] ^ b[i]
	}
	return acc == 0
}
