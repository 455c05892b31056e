package validationx

import (
	"strings"
	"testing"
	"time"

	"github.com/ARUMANDESU/validation"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestPasswordFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{name: "all classes present", password: "Password1!"},
		{name: "symbol in the middle", password: "Strong9%Pass"},
		{name: "long password", password: "ThisIsAVeryLongPassword123!"},
		{name: "seven characters", password: "Pass1!a", wantErr: true},
		{name: "empty", password: "", wantErr: true},
		{name: "no uppercase", password: "password1!", wantErr: true},
		{name: "no lowercase", password: "PASSWORD1!", wantErr: true},
		{name: "no digit", password: "Password!!", wantErr: true},
		{name: "no special", password: "Password12", wantErr: true},
		{name: "contains space", password: "Pass word1!", wantErr: true},
		{name: "non ascii letter", password: "Pässword1!", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := PasswordFormat.Validate(tt.password)
			if tt.wantErr {
				assert.Equal(t, ErrInvalidPasswordFormat, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	t.Run("non string value", func(t *testing.T) {
		t.Parallel()
		assert.Error(t, PasswordFormat.Validate(42))
	})
}

func TestCodeFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		code    string
		wantErr bool
	}{
		{name: "six digits", code: "123456"},
		{name: "leading zeros", code: "000042"},
		{name: "empty is left to required", code: ""},
		{name: "five digits", code: "12345", wantErr: true},
		{name: "seven digits", code: "1234567", wantErr: true},
		{name: "letters", code: "12a456", wantErr: true},
		{name: "sign", code: "-12345", wantErr: true},
		{name: "unicode digits", code: "١٢٣٤٥٦", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := CodeFormat.Validate(tt.code)
			if tt.wantErr {
				assert.Equal(t, ErrInvalidCodeFormat, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCodeRules(t *testing.T) {
	t.Parallel()

	assert.NoError(t, validation.Validate("987654", CodeRules...))
	assert.Error(t, validation.Validate("", CodeRules...))
	assert.Error(t, validation.Validate("98765", CodeRules...))
	assert.Error(t, validation.Validate("98765x", CodeRules...))
}

func TestEmailRules(t *testing.T) {
	t.Parallel()

	assert.NoError(t, validation.Validate("jane@example.com", EmailRules...))
	assert.Error(t, validation.Validate("", EmailRules...))
	assert.Error(t, validation.Validate("not-an-email", EmailRules...))
	assert.Error(t, validation.Validate(strings.Repeat("a", 250)+"@example.com", EmailRules...))
}

func TestIsPersonName(t *testing.T) {
	t.Parallel()

	valid := []string{"Jane", "Mary-Jane", "O'Neil", "J. R. R.", "Әлия", ""}
	for _, name := range valid {
		assert.NoError(t, IsPersonName.Validate(name), name)
	}

	invalid := []string{"Jane1", "<script>", "jane@example.com", "semi;colon"}
	for _, name := range invalid {
		assert.Error(t, IsPersonName.Validate(name), name)
	}
}

func TestRequired(t *testing.T) {
	t.Parallel()

	var nilPtr *string
	empty := ""
	filled := "x"

	tests := []struct {
		name    string
		value   any
		wantErr bool
	}{
		{name: "nil", value: nil, wantErr: true},
		{name: "nil pointer", value: nilPtr, wantErr: true},
		{name: "empty string pointer", value: &empty, wantErr: true},
		{name: "filled string pointer", value: &filled},
		{name: "zero uuid", value: uuid.Nil, wantErr: true},
		{name: "zero uuid string", value: uuid.Nil.String(), wantErr: true},
		{name: "random uuid", value: uuid.New()},
		{name: "zero time", value: time.Time{}, wantErr: true},
		{name: "now", value: time.Now()},
		{name: "empty slice", value: []string{}, wantErr: true},
		{name: "zero int", value: 0, wantErr: true},
		{name: "false", value: false, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := Required.Validate(tt.value)
			if tt.wantErr {
				assert.Equal(t, validation.ErrRequired, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
