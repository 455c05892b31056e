package verification

import "github.com/ARUMANDESU/storefront-identity/pkg/errorx"

var (
	ErrNoValidCode            = errorx.NewNoValidCode()
	ErrInvalidCode            = errorx.NewInvalidCode()
	ErrCodeExpired            = errorx.NewCodeExpired()
	ErrAlreadyActivated       = errorx.NewAlreadyActivated()
	ErrCredentialUpdateFailed = errorx.NewCredentialUpdateFailed()
	ErrInvalidCredentialState = errorx.NewInvalidCredentialState()

	ErrMissingOwner   = errorx.NewValidationFieldFailed("owner_user_id")
	ErrUnknownPurpose = errorx.NewValidationFieldFailed("purpose")
)

// ErrTooManyAttempts is returned for a code burned by repeated wrong submissions.
var ErrTooManyAttempts = errorx.NewTooManyAttempts()
