package verification_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/ARUMANDESU/storefront-identity/internal/domain/verification"
	"github.com/ARUMANDESU/storefront-identity/pkg/errorx"
	"github.com/ARUMANDESU/storefront-identity/tests/builders"
	"github.com/ARUMANDESU/storefront-identity/tests/integration"
)

type VerificationSuite struct {
	integration.TestSuite
}

func TestVerificationSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("integration test")
	}
	suite.Run(t, new(VerificationSuite))
}

// registered seeds an unconfirmed user and logs them in.
func (s *VerificationSuite) registered() (email string, access *http.Cookie) {
	u := builders.NewUserBuilder().Build()
	s.DB.SeedUser(s.T(), u)
	return u.Email(), s.HTTP.LoginCookie(s.T(), u.Email(), builders.TestPassword)
}

func (s *VerificationSuite) TestConfirmEmail() {
	email, access := s.registered()

	s.HTTP.SendEmailVerificationCode(s.T(), access).AssertSuccess()
	code := s.ReceiveCode(email)

	s.HTTP.VerifyRegisterCode(s.T(), access, code).AssertSuccess()

	s.DB.RequireUserByEmail(s.T(), email).IsConfirmed()
	s.Event.AssertEmailConfirmed(s.T())
	s.Event.AssertCodeIssued(s.T(), verification.PurposeRegistrationConfirmation)
	s.Event.AssertNeverContains(s.T(), code)
}

func (s *VerificationSuite) TestConfirmEmail_CodeIsSingleUse() {
	email, access := s.registered()
	s.HTTP.SendEmailVerificationCode(s.T(), access).AssertSuccess()
	code := s.ReceiveCode(email)
	s.HTTP.VerifyRegisterCode(s.T(), access, code).AssertSuccess()

	s.HTTP.VerifyRegisterCode(s.T(), access, code).
		AssertError(http.StatusBadRequest, errorx.CodeCodeExpired.String())
}

func (s *VerificationSuite) TestConfirmEmail_WrongCode() {
	email, access := s.registered()
	s.HTTP.SendEmailVerificationCode(s.T(), access).AssertSuccess()
	code := s.ReceiveCode(email)

	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}
	s.HTTP.VerifyRegisterCode(s.T(), access, wrong).
		AssertError(http.StatusBadRequest, errorx.CodeInvalidCode.String())
	s.DB.RequireUserByEmail(s.T(), email).IsNotConfirmed()
}

func (s *VerificationSuite) TestConfirmEmail_Expired() {
	email, access := s.registered()
	s.HTTP.SendEmailVerificationCode(s.T(), access).AssertSuccess()
	code := s.ReceiveCode(email)

	s.App().Clock.Advance(verification.CodeValidity + time.Second)

	s.HTTP.VerifyRegisterCode(s.T(), access, code).
		AssertError(http.StatusBadRequest, errorx.CodeCodeExpired.String())
	s.DB.RequireUserByEmail(s.T(), email).IsNotConfirmed()
}

func (s *VerificationSuite) TestConfirmEmail_NoCodeIssued() {
	_, access := s.registered()

	s.HTTP.VerifyRegisterCode(s.T(), access, builders.TestCode).
		AssertError(http.StatusBadRequest, errorx.CodeNoValidCode.String())
}

func (s *VerificationSuite) TestResendSupersedesPreviousCode() {
	email, access := s.registered()

	s.HTTP.SendEmailVerificationCode(s.T(), access).AssertSuccess()
	first := s.ReceiveCode(email)
	s.HTTP.SendEmailVerificationCode(s.T(), access).AssertSuccess()
	second := s.ReceiveCode(email)

	id := s.DB.RequireUserByEmail(s.T(), email).ID()
	s.Len(s.DB.Codes(s.T(), id, verification.PurposeRegistrationConfirmation), 2)
	s.DB.AssertSingleActiveCode(s.T(), id, verification.PurposeRegistrationConfirmation)

	if first != second {
		s.HTTP.VerifyRegisterCode(s.T(), access, first).
			AssertError(http.StatusBadRequest, errorx.CodeInvalidCode.String())
	}
	s.HTTP.VerifyRegisterCode(s.T(), access, second).AssertSuccess()
}

func (s *VerificationSuite) TestSendCode_AlreadyConfirmed() {
	u := builders.NewUserBuilder().Confirmed().Build()
	s.DB.SeedUser(s.T(), u)
	access := s.HTTP.LoginCookie(s.T(), u.Email(), builders.TestPassword)

	s.HTTP.SendEmailVerificationCode(s.T(), access).
		AssertError(http.StatusBadRequest, errorx.CodeEmailAlreadyConfirmed.String())
	s.Empty(s.App().MockMailSender.GetSentMails())
}
