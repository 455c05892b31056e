package errorx

import (
	"errors"
	"fmt"
	"maps"
	"net/http"

	"github.com/nicksnyder/go-i18n/v2/i18n"

	"github.com/ARUMANDESU/storefront-identity/pkg/i18nx"
)

// I18nError is a client facing error carrying a machine readable code and a
// localizable message key. The With* methods return copies, so package level
// sentinels can be decorated without being mutated.
type I18nError struct {
	cause              error
	MessageKey         string
	MessageArgs        map[string]any
	MessagePluralCount any
	HTTPCode           int
	Code               Code
}

func (e *I18nError) Error() string {
	if e.cause == nil {
		return fmt.Sprintf("[%s] %s", e.Code, e.MessageKey)
	}

	return fmt.Sprintf("[%s] %s: %s", e.Code, e.MessageKey, e.cause)
}

func (e *I18nError) Unwrap() error {
	return e.cause
}

// Is reports whether target is an I18nError with the same code and message key.
func (e *I18nError) Is(target error) bool {
	t, ok := target.(*I18nError)
	if !ok {
		return false
	}
	if e == nil || t == nil {
		return e == t
	}
	return e.Code == t.Code && e.MessageKey == t.MessageKey
}

func (e *I18nError) Localize(localizer *i18n.Localizer) string {
	msg, err := localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    e.MessageKey,
		TemplateData: e.MessageArgs,
		PluralCount:  e.MessagePluralCount,
	})
	if err != nil {
		return e.MessageKey
	}
	return msg
}

func (e *I18nError) HTTPStatusCode() int {
	if e.HTTPCode != 0 {
		return e.HTTPCode
	}

	return HTTPStatusCode(e.Code)
}

func (e *I18nError) clone() *I18nError {
	c := *e
	if e.MessageArgs != nil {
		c.MessageArgs = maps.Clone(e.MessageArgs)
	}
	return &c
}

func (e *I18nError) WithHTTPCode(code int) *I18nError {
	c := e.clone()
	c.HTTPCode = code
	return c
}

func (e *I18nError) WithArgs(args map[string]any) *I18nError {
	c := e.clone()
	if c.MessageArgs == nil {
		c.MessageArgs = make(map[string]any, len(args))
	}
	maps.Copy(c.MessageArgs, args)
	return c
}

func (e *I18nError) WithCause(cause error) *I18nError {
	c := e.clone()
	c.cause = cause
	return c
}

func (e *I18nError) WithKey(key string) *I18nError {
	c := e.clone()
	c.MessageKey = key
	return c
}

func New(messageKey string) *I18nError {
	return &I18nError{
		MessageKey:  messageKey,
		MessageArgs: make(map[string]any),
		HTTPCode:    http.StatusInternalServerError,
		Code:        CodeInternal,
	}
}

// Wrap annotates err with the operation name. It returns nil for a nil err.
func Wrap(err error, op string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}

func HTTPStatusCode(code Code) int {
	switch code {
	case CodeInternal:
		return http.StatusInternalServerError
	case CodeNotFound:
		return http.StatusNotFound
	case CodeInvalid, CodeValidationFailed, CodeMalformedJSON, CodePasswordFormatInvalid:
		return http.StatusBadRequest
	case CodeEmailAlreadyConfirmed, CodeEmailNotConfirmed, CodeNoValidCode, CodeInvalidCode,
		CodeCodeExpired, CodeAlreadyActivated, CodeTooManyAttempts, CodeCredentialUpdateFailed, CodeInvalidCredentialState:
		return http.StatusBadRequest
	case CodeConflict, CodeDuplicateEntry:
		return http.StatusConflict
	case CodeUnauthorized, CodeInvalidCredentials:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeRateLimitExceeded:
		return http.StatusTooManyRequests
	case CodeServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func IsCode(err error, code Code) bool {
	if err == nil {
		return false
	}

	var i18nErr *I18nError
	if errors.As(err, &i18nErr) {
		return i18nErr.Code == code
	}

	return false
}

func IsNotFound(err error) bool {
	return IsCode(err, CodeNotFound)
}

func IsDuplicateEntry(err error) bool {
	return IsCode(err, CodeDuplicateEntry)
}

// Client Errors (4xx)
func NewInvalidRequest() *I18nError {
	return &I18nError{
		MessageKey: i18nx.KeyInvalid,
		Code:       CodeInvalid,
		HTTPCode:   http.StatusBadRequest,
	}
}

func NewValidationFieldFailed(field string) *I18nError {
	return &I18nError{
		MessageKey:  i18nx.KeyValidationFailedField,
		MessageArgs: map[string]any{i18nx.ArgField: field},
		Code:        CodeValidationFailed,
		HTTPCode:    http.StatusBadRequest,
	}
}

func NewMalformedJSON() *I18nError {
	return &I18nError{
		MessageKey: i18nx.KeyMalformedJSON,
		Code:       CodeMalformedJSON,
		HTTPCode:   http.StatusBadRequest,
	}
}

func NewUnauthorized() *I18nError {
	return &I18nError{
		MessageKey: i18nx.KeyUnauthorized,
		Code:       CodeUnauthorized,
		HTTPCode:   http.StatusUnauthorized,
	}
}

func NewInvalidCredentials() *I18nError {
	return &I18nError{
		MessageKey: i18nx.KeyInvalidCredentials,
		Code:       CodeInvalidCredentials,
		HTTPCode:   http.StatusUnauthorized,
	}
}

func NewNotFound() *I18nError {
	return &I18nError{
		MessageKey: i18nx.KeyNotFound,
		Code:       CodeNotFound,
		HTTPCode:   http.StatusNotFound,
	}
}

func NewDuplicateEntryWithField(resourceType, field string) *I18nError {
	return &I18nError{
		MessageKey: i18nx.KeyDuplicateEntryWithField,
		MessageArgs: map[string]any{
			i18nx.ArgResourceType: resourceType,
			i18nx.ArgField:        field,
		},
		Code:     CodeDuplicateEntry,
		HTTPCode: http.StatusConflict,
	}
}

func NewRateLimitExceeded() *I18nError {
	return &I18nError{
		MessageKey: i18nx.KeyRateLimitExceeded,
		Code:       CodeRateLimitExceeded,
		HTTPCode:   http.StatusTooManyRequests,
	}
}

func NewPasswordFormatInvalid() *I18nError {
	return &I18nError{
		MessageKey: i18nx.KeyPasswordFormatInvalid,
		Code:       CodePasswordFormatInvalid,
		HTTPCode:   http.StatusBadRequest,
	}
}

// Verification workflow errors. All of them are recoverable by requesting a new code.
func NewEmailAlreadyConfirmed() *I18nError {
	return &I18nError{
		MessageKey: i18nx.KeyEmailAlreadyConfirmed,
		Code:       CodeEmailAlreadyConfirmed,
		HTTPCode:   http.StatusBadRequest,
	}
}

func NewEmailNotConfirmed() *I18nError {
	return &I18nError{
		MessageKey: i18nx.KeyEmailNotConfirmed,
		Code:       CodeEmailNotConfirmed,
		HTTPCode:   http.StatusBadRequest,
	}
}

func NewNoValidCode() *I18nError {
	return &I18nError{
		MessageKey: i18nx.KeyNoValidCode,
		Code:       CodeNoValidCode,
		HTTPCode:   http.StatusBadRequest,
	}
}

func NewInvalidCode() *I18nError {
	return &I18nError{
		MessageKey: i18nx.KeyInvalidVerificationCode,
		Code:       CodeInvalidCode,
		HTTPCode:   http.StatusBadRequest,
	}
}

func NewCodeExpired() *I18nError {
	return &I18nError{
		MessageKey: i18nx.KeyCodeExpired,
		Code:       CodeCodeExpired,
		HTTPCode:   http.StatusBadRequest,
	}
}

func NewAlreadyActivated() *I18nError {
	return &I18nError{
		MessageKey: i18nx.KeyCodeAlreadyActivated,
		Code:       CodeAlreadyActivated,
		HTTPCode:   http.StatusBadRequest,
	}
}

func NewTooManyAttempts() *I18nError {
	return &I18nError{
		MessageKey: i18nx.KeyTooManyAttempts,
		Code:       CodeTooManyAttempts,
		HTTPCode:   http.StatusBadRequest,
	}
}

func NewCredentialUpdateFailed() *I18nError {
	return &I18nError{
		MessageKey: i18nx.KeyCredentialUpdateFailed,
		Code:       CodeCredentialUpdateFailed,
		HTTPCode:   http.StatusBadRequest,
	}
}

func NewInvalidCredentialState() *I18nError {
	return &I18nError{
		MessageKey: i18nx.KeyInvalidCredentialState,
		Code:       CodeInvalidCredentialState,
		HTTPCode:   http.StatusBadRequest,
	}
}

// Server Errors (5xx)
func NewInternalError() *I18nError {
	return &I18nError{
		MessageKey: i18nx.KeyInternalError,
		Code:       CodeInternal,
		HTTPCode:   http.StatusInternalServerError,
	}
}

func NewServiceUnavailable() *I18nError {
	return &I18nError{
		MessageKey: i18nx.KeyServiceUnavailable,
		Code:       CodeServiceUnavailable,
		HTTPCode:   http.StatusServiceUnavailable,
	}
}

// DB
func NewNoRowsAffected() *I18nError {
	return &I18nError{
		MessageKey: i18nx.KeyNotFound,
		Code:       CodeNotFound,
		HTTPCode:   http.StatusNotFound,
	}
}
