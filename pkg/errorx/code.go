package errorx

type Code string

func (c Code) String() string {
	return string(c)
}

const (
	// Client errors (4xx)
	CodeInvalid            Code = "INVALID"
	CodeValidationFailed   Code = "VALIDATION_FAILED"
	CodeMalformedJSON      Code = "MALFORMED_JSON"
	CodeUnauthorized       Code = "UNAUTHORIZED"
	CodeInvalidCredentials Code = "INVALID_CREDENTIALS"
	CodeForbidden          Code = "FORBIDDEN"
	CodeNotFound           Code = "NOT_FOUND"
	CodeConflict           Code = "CONFLICT"
	CodeDuplicateEntry     Code = "DUPLICATE_ENTRY"
	CodeRateLimitExceeded  Code = "RATE_LIMIT_EXCEEDED"

	// Password validation
	CodePasswordFormatInvalid Code = "PASSWORD_FORMAT_INVALID"

	// Verification workflow
	CodeEmailAlreadyConfirmed  Code = "EMAIL_ALREADY_CONFIRMED"
	CodeEmailNotConfirmed      Code = "EMAIL_NOT_CONFIRMED"
	CodeNoValidCode            Code = "NO_VALID_CODE"
	CodeInvalidCode            Code = "INVALID_VERIFICATION_CODE"
	CodeCodeExpired            Code = "CODE_EXPIRED"
	CodeAlreadyActivated       Code = "CODE_ALREADY_ACTIVATED"
	CodeTooManyAttempts        Code = "TOO_MANY_ATTEMPTS"
	CodeCredentialUpdateFailed Code = "CREDENTIAL_UPDATE_FAILED"
	CodeInvalidCredentialState Code = "INVALID_CREDENTIAL_STATE"

	// Server errors (5xx)
	CodeInternal           Code = "INTERNAL_ERROR"
	CodeServiceUnavailable Code = "SERVICE_UNAVAILABLE"
)
