package validationx

import (
	"errors"
	"reflect"
	"regexp"
	"time"
	"unicode"

	"github.com/ARUMANDESU/validation"

	"github.com/ARUMANDESU/storefront-identity/pkg/i18nx"
)

var ErrInvalidPasswordFormat = validation.NewError(
	i18nx.ValidationIsPassword,
	"must be at least 8 characters long, contain at least one uppercase letter, one lowercase letter, one digit, and one special character",
)

var ErrInvalidNameFormat = validation.NewError(
	i18nx.ValidationIsName,
	"must be a valid name containing only letters, spaces, hyphens, apostrophes, and periods",
)

var ErrInvalidCodeFormat = validation.NewError(
	i18nx.ValidationIsCode,
	"must be a 6 digit code",
)

var (
	PasswordFormat = PasswordFormatRule{}
	CodeFormat     = CodeFormatRule{}
	// Required is a validation rule that checks if a value is not empty. Use it for uuid verification, otherwise use validation.Required.
	Required = RequiredRule{}
)

// Allow Unicode letters, spaces, hyphens, apostrophes, periods
var nameRegex = regexp.MustCompile(`^[\p{L}\p{M}\s'\-\.]+$`)

var IsPersonName = validation.By(func(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil // Let Required handle emptiness
	}

	if !nameRegex.MatchString(s) {
		return ErrInvalidNameFormat
	}
	return nil
})

type PasswordFormatRule struct{}

// Validate checks for minimum length and the presence of an uppercase letter,
// a lowercase letter, a digit and a special character.
func (r PasswordFormatRule) Validate(value any) error {
	password, ok := value.(string)
	if !ok {
		return errors.New("value is not a string")
	}

	if len(password) < 8 {
		return ErrInvalidPasswordFormat
	}

	var hasLower, hasUpper, hasDigit, hasSpecial bool

	for _, char := range password {
		switch {
		case char >= 'a' && char <= 'z':
			hasLower = true
		case char >= 'A' && char <= 'Z':
			hasUpper = true
		case char >= '0' && char <= '9':
			hasDigit = true
		case unicode.IsPunct(char) || unicode.IsSymbol(char):
			hasSpecial = true
		default:
			return ErrInvalidPasswordFormat
		}
	}

	if !hasLower || !hasUpper || !hasDigit || !hasSpecial {
		return ErrInvalidPasswordFormat
	}

	return nil
}

// CodeFormatRule accepts exactly six ASCII digits. Empty values are left to Required.
type CodeFormatRule struct{}

func (r CodeFormatRule) Validate(value any) error {
	code, ok := value.(string)
	if !ok {
		return errors.New("value is not a string")
	}
	if code == "" {
		return nil
	}
	if len(code) != 6 {
		return ErrInvalidCodeFormat
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return ErrInvalidCodeFormat
		}
	}
	return nil
}

type RequiredRule struct{}

func (r RequiredRule) Validate(value any) error {
	value, isNil := validation.Indirect(value)
	if isNil || isEmpty(value) {
		return validation.ErrRequired
	}

	return nil
}

func isEmpty(value any) bool {
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Array:
		return v.Equal(reflect.Zero(v.Type())) || v.Len() == 0
	case reflect.String:
		return v.Len() == 0 || v.String() == "00000000-0000-0000-0000-000000000000"
	case reflect.Map, reflect.Slice:
		return v.IsNil() || v.Len() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Invalid:
		return true
	case reflect.Interface, reflect.Ptr:
		if v.IsNil() {
			return true
		}
		return isEmpty(v.Elem().Interface())
	case reflect.Struct:
		t, ok := value.(time.Time)
		if ok && t.IsZero() {
			return true
		}
	}

	return false
}
