package verification_test

import (
	"net/http"
	"time"

	mailevent "github.com/ARUMANDESU/storefront-identity/internal/application/mail/event"
	"github.com/ARUMANDESU/storefront-identity/internal/domain/user"
	"github.com/ARUMANDESU/storefront-identity/internal/domain/verification"
	"github.com/ARUMANDESU/storefront-identity/pkg/errorx"
	"github.com/ARUMANDESU/storefront-identity/tests/builders"
)

const newPassword = "N3w!passphrase"

// confirmedWithResetCode seeds a confirmed user and requests a reset code.
func (s *VerificationSuite) confirmedWithResetCode() (u *user.User, code string) {
	u = builders.NewUserBuilder().Confirmed().Build()
	s.DB.SeedUser(s.T(), u)

	s.HTTP.SendPasswordVerificationCode(s.T(), u.Email()).AssertSuccess()
	return u, s.ReceiveCode(u.Email())
}

func (s *VerificationSuite) TestPasswordReset() {
	u, code := s.confirmedWithResetCode()

	s.HTTP.VerifyResetCode(s.T(), u.Email(), code).AssertSuccess()
	s.HTTP.ChangePassword(s.T(), u.Email(), code, newPassword).AssertSuccess()

	s.DB.RequireUserByEmail(s.T(), u.Email()).PasswordMatches(newPassword)
	s.HTTP.Login(s.T(), u.Email(), newPassword).AssertSuccess()
	s.HTTP.Login(s.T(), u.Email(), builders.TestPassword).
		AssertError(http.StatusUnauthorized, errorx.CodeInvalidCredentials.String())

	s.Event.AssertPasswordChanged(s.T(), u.Email())
	notice := s.App().MockMailSender.WaitForMail(s.T(), u.Email(), 10*time.Second)
	s.Equal(mailevent.PasswordChangedSubject, notice.Subject)
	s.Event.AssertNeverContains(s.T(), code)
}

func (s *VerificationSuite) TestPasswordReset_UnknownEmailSucceedsSilently() {
	s.HTTP.SendPasswordVerificationCode(s.T(), "ghost@storefront.kz").AssertSuccess()

	s.Event.AssertNoEvent(s.T(), verification.EventStreamName, "verification.CodeIssued")
	s.Empty(s.App().MockMailSender.GetSentMails())
}

func (s *VerificationSuite) TestPasswordReset_UnconfirmedEmail() {
	u := builders.NewUserBuilder().Build()
	s.DB.SeedUser(s.T(), u)
	s.HTTP.SendPasswordVerificationCode(s.T(), u.Email()).AssertSuccess()
	code := s.ReceiveCode(u.Email())

	s.HTTP.VerifyResetCode(s.T(), u.Email(), code).
		AssertError(http.StatusBadRequest, errorx.CodeEmailNotConfirmed.String())
}

func (s *VerificationSuite) TestPasswordReset_VerifyTwice() {
	u, code := s.confirmedWithResetCode()
	s.HTTP.VerifyResetCode(s.T(), u.Email(), code).AssertSuccess()

	s.HTTP.VerifyResetCode(s.T(), u.Email(), code).
		AssertError(http.StatusBadRequest, errorx.CodeAlreadyActivated.String())
}

func (s *VerificationSuite) TestPasswordReset_VerifyAfterCodeWindow() {
	u, code := s.confirmedWithResetCode()
	s.App().Clock.Advance(verification.CodeValidity + time.Second)

	s.HTTP.VerifyResetCode(s.T(), u.Email(), code).
		AssertError(http.StatusBadRequest, errorx.CodeCodeExpired.String())
}

func (s *VerificationSuite) TestPasswordReset_ChangeWithoutVerifying() {
	u, code := s.confirmedWithResetCode()

	s.HTTP.ChangePassword(s.T(), u.Email(), code, newPassword).
		AssertError(http.StatusBadRequest, errorx.CodeNoValidCode.String())
	s.DB.RequireUserByEmail(s.T(), u.Email()).PasswordMatches(builders.TestPassword)
}

func (s *VerificationSuite) TestPasswordReset_ChangeAfterActivationWindow() {
	u, code := s.confirmedWithResetCode()
	s.HTTP.VerifyResetCode(s.T(), u.Email(), code).AssertSuccess()

	s.App().Clock.Advance(verification.ActivationValidity + time.Second)

	s.HTTP.ChangePassword(s.T(), u.Email(), code, newPassword).
		AssertError(http.StatusBadRequest, errorx.CodeCodeExpired.String())
	s.DB.RequireUserByEmail(s.T(), u.Email()).PasswordMatches(builders.TestPassword)
}

func (s *VerificationSuite) TestPasswordReset_CodeCannotBeReused() {
	u, code := s.confirmedWithResetCode()
	s.HTTP.VerifyResetCode(s.T(), u.Email(), code).AssertSuccess()
	s.HTTP.ChangePassword(s.T(), u.Email(), code, newPassword).AssertSuccess()

	s.HTTP.ChangePassword(s.T(), u.Email(), code, "An0ther!passphrase").
		AssertError(http.StatusBadRequest, errorx.CodeNoValidCode.String())
	s.DB.RequireUserByEmail(s.T(), u.Email()).PasswordMatches(newPassword)
}

func (s *VerificationSuite) TestPasswordReset_WeakNewPassword() {
	u, code := s.confirmedWithResetCode()
	s.HTTP.VerifyResetCode(s.T(), u.Email(), code).AssertSuccess()

	s.HTTP.ChangePassword(s.T(), u.Email(), code, "weak").
		AssertError(http.StatusBadRequest, errorx.CodeValidationFailed.String())

	id := s.DB.RequireUserByEmail(s.T(), u.Email()).PasswordMatches(builders.TestPassword).ID()
	latest := s.DB.Codes(s.T(), id, verification.PurposePasswordReset)[0]
	s.True(latest.IsActive, "a rejected password must not spend the code")
}

func (s *VerificationSuite) TestPasswordReset_WrongGuessesBurnTheCode() {
	u, code := s.confirmedWithResetCode()
	guess := "000000"
	if code == guess {
		guess = "000001"
	}

	for range verification.MaxFailedAttempts {
		s.HTTP.VerifyResetCode(s.T(), u.Email(), guess).
			AssertError(http.StatusBadRequest, errorx.CodeInvalidCode.String())
	}

	codes := s.DB.Codes(s.T(), s.DB.RequireUserByEmail(s.T(), u.Email()).ID(), verification.PurposePasswordReset)
	s.Require().Len(codes, 1)
	s.Equal(verification.MaxFailedAttempts, codes[0].FailedAttempts, "rejections are committed")

	s.HTTP.VerifyResetCode(s.T(), u.Email(), code).
		AssertError(http.StatusBadRequest, errorx.CodeTooManyAttempts.String())
	s.HTTP.ChangePassword(s.T(), u.Email(), code, newPassword).
		AssertError(http.StatusBadRequest, errorx.CodeNoValidCode.String())
	s.DB.RequireUserByEmail(s.T(), u.Email()).PasswordMatches(builders.TestPassword)
}
