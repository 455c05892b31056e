package user

import (
	"github.com/ARUMANDESU/storefront-identity/pkg/errorx"
	"github.com/ARUMANDESU/storefront-identity/pkg/i18nx"
)

var (
	ErrAlreadyConfirmed      = errorx.NewEmailAlreadyConfirmed()
	ErrEmailNotConfirmed     = errorx.NewEmailNotConfirmed()
	ErrInvalidCredentials    = errorx.NewInvalidCredentials()
	ErrEmailDomainNotAllowed = errorx.NewValidationFieldFailed(i18nx.FieldEmail)
	ErrNotFound              = errorx.NewNotFound()
	ErrEmailTaken            = errorx.NewDuplicateEntryWithField("user", i18nx.FieldEmail)
)
