package i18nx

// Error message keys
const (
	// Client errors
	KeyInvalid                 = "invalid"
	KeyValidationFailed        = "validation_failed"
	KeyValidationFailedField   = "validation_failed_field"
	KeyMalformedJSON           = "malformed_json"
	KeyUnauthorized            = "unauthorized"
	KeyInvalidCredentials      = "invalid_credentials"
	KeyForbidden               = "forbidden"
	KeyNotFound                = "not_found"
	KeyConflict                = "conflict"
	KeyDuplicateEntryWithField = "duplicate_entry_with_field"
	KeyRateLimitExceeded       = "rate_limit_exceeded"

	// Password validation
	KeyPasswordFormatInvalid = "password_format_invalid"

	// Server errors
	KeyInternalError      = "internal_error"
	KeyServiceUnavailable = "service_unavailable"

	// Authentication specific
	KeyInvalidRefreshTokenClaims = "invalid_refresh_token_claims"
	KeyRefreshTokenExpired       = "refresh_token_expired"

	// Verification workflow
	KeyEmailAlreadyConfirmed   = "verification_email_already_confirmed"
	KeyEmailNotConfirmed       = "verification_email_not_confirmed"
	KeyNoValidCode             = "verification_no_valid_code"
	KeyInvalidVerificationCode = "verification_invalid_code"
	KeyCodeExpired             = "verification_code_expired"
	KeyCodeAlreadyActivated    = "verification_code_already_activated"
	KeyTooManyAttempts         = "verification_too_many_attempts"
	KeyCredentialUpdateFailed  = "verification_credential_update_failed"
	KeyInvalidCredentialState  = "verification_invalid_credential_state"
)

// Success message keys
const (
	SuccessEmailCodeSent     = "success_email_verification_code_sent"
	SuccessPasswordCodeSent  = "success_password_reset_code_sent"
	SuccessEmailConfirmed    = "success_email_confirmed"
	SuccessResetCodeVerified = "success_reset_code_verified"
	SuccessPasswordChanged   = "success_password_changed"
	SuccessRegistered        = "success_registered"
	SuccessLoggedIn          = "success_logged_in"
	SuccessLoggedOut         = "success_logged_out"
)

// Validation message keys
const (
	ValidationRequired         = "validation_required"
	ValidationLengthTooLong    = "validation_length_too_long"
	ValidationLengthTooShort   = "validation_length_too_short"
	ValidationLengthInvalid    = "validation_length_invalid"
	ValidationLengthOutOfRange = "validation_length_out_of_range"
	ValidationIsDigit          = "validation_is_digit"

	// Custom validation rules
	ValidationIsEmail    = "validation_is_email"
	ValidationIsPassword = "validation_is_password"
	ValidationIsName     = "validation_is_name"
	ValidationIsCode     = "validation_is_code"
)

// Field name keys
const (
	FieldEmail            = "email"
	FieldPassword         = "password"
	FieldNewPassword      = "new_password"
	FieldVerificationCode = "verification_code"
	FieldDisplayName      = "display_name"
)

// Template argument keys (snake_case naming)
const (
	ArgLocalePrefix       = "locale_"
	ArgField              = "field"
	ArgResourceType       = "resource_type"
	ArgLocaleResourceType = "locale_resource_type"
)
