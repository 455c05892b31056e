package verification_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ARUMANDESU/storefront-identity/internal/adapters/repos/postgres"
	"github.com/ARUMANDESU/storefront-identity/internal/application/verification/cmd"
	"github.com/ARUMANDESU/storefront-identity/internal/domain/user"
	"github.com/ARUMANDESU/storefront-identity/internal/domain/verification"
	"github.com/ARUMANDESU/storefront-identity/pkg/errorx"
	"github.com/ARUMANDESU/storefront-identity/tests/builders"
)

// failingAdd removes the old password through the real store and then
// fails to add the new one.
type failingAdd struct {
	*postgres.CredentialStore
}

func (f failingAdd) AddPassword(context.Context, user.ID, []byte) error {
	return errors.New("credential backend down")
}

func (s *VerificationSuite) seedActivatedReset() (*user.User, *verification.Code) {
	u := builders.NewUserBuilder().Confirmed().Build()
	s.DB.SeedUser(s.T(), u)
	c := builders.NewCodeBuilder().
		ForOwner(u.ID()).
		WithCreatedAt(time.Now().UTC().Add(-time.Minute)).
		Activated(time.Now().UTC()).
		Build()
	s.DB.SeedCode(s.T(), c)
	return u, c
}

func (s *VerificationSuite) TestSaveCode_SupersedesOnlySamePurpose() {
	ctx := s.T().Context()
	u := builders.NewUserBuilder().Build()
	s.DB.SeedUser(s.T(), u)

	reset := builders.NewCodeBuilder().ForOwner(u.ID()).Activated(time.Now().UTC()).Build()
	s.DB.SeedCode(s.T(), reset)
	old := builders.NewCodeBuilder().ForOwner(u.ID()).WithCreatedAt(time.Now().UTC().Add(-time.Minute)).Build()
	s.DB.SeedCode(s.T(), old)

	fresh := builders.NewCodeBuilder().ForOwner(u.ID()).Build()
	s.Require().NoError(s.App().CodeRepo.SaveCode(ctx, fresh))

	latest := s.DB.AssertSingleActiveCode(s.T(), u.ID(), verification.PurposeRegistrationConfirmation)
	s.Equal(fresh.ID().String(), latest.ID)
	s.DB.AssertSingleActiveCode(s.T(), u.ID(), verification.PurposePasswordReset)
}

func (s *VerificationSuite) TestUpdateLatestCode_RollsBackOnError() {
	ctx := s.T().Context()
	u, _ := s.seedActivatedReset()

	boom := errors.New("boom")
	err := s.App().CodeRepo.UpdateLatestCode(ctx, u.Email(), verification.PurposePasswordReset, true,
		func(_ context.Context, u *user.User, c *verification.Code) error {
			s.Require().NotNil(c)
			s.Require().NoError(c.ConsumeReset(builders.TestCode, time.Now().UTC()))
			u.PasswordChanged([]byte("ignored"), time.Now().UTC())
			return boom
		})
	s.ErrorIs(err, boom)

	latest := s.DB.Codes(s.T(), u.ID(), verification.PurposePasswordReset)[0]
	s.True(latest.IsActive, "code must stay active after a rollback")
	s.Event.AssertNoEvent(s.T(), user.EventStreamName, "user.PasswordChanged")
}

func (s *VerificationSuite) TestUpdateLatestCode_PersistableErrorCommits() {
	ctx := s.T().Context()
	u, _ := s.seedActivatedReset()

	sentinel := errorx.NewInvalidCode()
	err := s.App().CodeRepo.UpdateLatestCode(ctx, u.Email(), verification.PurposePasswordReset, true,
		func(_ context.Context, _ *user.User, c *verification.Code) error {
			c.Supersede()
			return errorx.NewPersistable(sentinel)
		})
	s.ErrorIs(err, sentinel)

	latest := s.DB.Codes(s.T(), u.ID(), verification.PurposePasswordReset)[0]
	s.False(latest.IsActive, "persistable errors keep the changes")
}

func (s *VerificationSuite) TestUpdateLatestCode_UnknownEmail() {
	err := s.App().CodeRepo.UpdateLatestCode(s.T().Context(), "ghost@storefront.kz", verification.PurposePasswordReset, false,
		func(context.Context, *user.User, *verification.Code) error { return nil })
	s.True(errorx.IsNotFound(err))
}

func (s *VerificationSuite) TestChangePassword_CredentialFailureRollsBack() {
	u, _ := s.seedActivatedReset()
	handler := cmd.NewChangePasswordHandler(cmd.ChangePasswordHandlerArgs{
		Repo:            s.App().CodeRepo,
		CredentialStore: failingAdd{CredentialStore: s.App().Credentials},
	})

	err := handler.Handle(s.T().Context(), cmd.ChangePassword{
		Email:       u.Email(),
		Code:        builders.TestCode,
		NewPassword: newPassword,
	})
	s.ErrorIs(err, verification.ErrCredentialUpdateFailed)

	s.DB.RequireUserByEmail(s.T(), u.Email()).PasswordMatches(builders.TestPassword)
	latest := s.DB.Codes(s.T(), u.ID(), verification.PurposePasswordReset)[0]
	s.True(latest.IsActive, "the code stays usable after a failed change")
}

func (s *VerificationSuite) TestVerifyResetCode_ConcurrentActivationWinsOnce() {
	u := builders.NewUserBuilder().Confirmed().Build()
	s.DB.SeedUser(s.T(), u)
	s.DB.SeedCode(s.T(), builders.NewCodeBuilder().ForOwner(u.ID()).AsReset().Build())

	handler := cmd.NewVerifyResetCodeHandler(cmd.VerifyResetCodeHandlerArgs{Repo: s.App().CodeRepo})

	const attempts = 5
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = handler.Handle(context.Background(), cmd.VerifyResetCode{Email: u.Email(), Code: builders.TestCode})
		}()
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		s.ErrorIs(err, verification.ErrAlreadyActivated)
	}
	s.Equal(1, succeeded)
}
