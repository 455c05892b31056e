package cmd

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ARUMANDESU/storefront-identity/internal/domain/verification"
	"github.com/ARUMANDESU/storefront-identity/tests/builders"
)

func newIssuePasswordResetCodeHandler(s *Suite) *IssuePasswordResetCodeHandler {
	return NewIssuePasswordResetCodeHandler(IssuePasswordResetCodeHandlerArgs{
		Clock:     fixedClock(testNow),
		Repo:      s.Store,
		MailQueue: s.MailQueue,
	})
}

func TestIssuePasswordResetCodeHandler_HappyPath(t *testing.T) {
	t.Parallel()

	s := newSuite()
	u := builders.NewUserBuilder().Confirmed().Build()
	s.Store.SeedUser(t, u)

	err := newIssuePasswordResetCodeHandler(s).Handle(t.Context(), IssuePasswordResetCode{Email: u.Email()})
	require.NoError(t, err)

	code := s.Store.RequireLatestCode(t, u.ID(), verification.PurposePasswordReset)
	assert.False(t, code.IsActive(), "reset codes start inactive")
	assert.Nil(t, code.ActivatedAt())

	queued := s.MailQueue.RequireLast(t)
	assert.Equal(t, verification.PurposePasswordReset, queued.Purpose)
	assert.Equal(t, u.DisplayName(), queued.DisplayName)
	assert.Equal(t, verification.HashCode(queued.Code), code.CodeHash())

	s.Store.AssertCodeCount(t, u.ID(), verification.PurposeRegistrationConfirmation, 0)
}

func TestIssuePasswordResetCodeHandler_UnknownEmail_SilentSuccess(t *testing.T) {
	t.Parallel()

	s := newSuite()

	err := newIssuePasswordResetCodeHandler(s).Handle(t.Context(), IssuePasswordResetCode{Email: "ghost@storefront.kz"})
	require.NoError(t, err)

	s.MailQueue.AssertEmpty(t)
	s.Store.AssertEventCount(t, 0)
}

func TestIssuePasswordResetCodeHandler_SupersedesActivatedCode(t *testing.T) {
	t.Parallel()

	s := newSuite()
	u := builders.NewUserBuilder().Confirmed().Build()
	s.Store.SeedUser(t, u)
	s.Store.SeedCode(t, builders.NewCodeBuilder().
		ForOwner(u.ID()).
		WithCreatedAt(testNow.Add(-3*time.Minute)).
		Activated(testNow.Add(-2*time.Minute)).
		Build())

	err := newIssuePasswordResetCodeHandler(s).Handle(t.Context(), IssuePasswordResetCode{Email: u.Email()})
	require.NoError(t, err)

	codes := s.Store.Codes(u.ID(), verification.PurposePasswordReset)
	require.Len(t, codes, 2)
	assert.False(t, codes[0].IsActive())
}

func TestIssuePasswordResetCodeHandler_DoesNotTouchRegistrationCodes(t *testing.T) {
	t.Parallel()

	s := newSuite()
	u := builders.NewUserBuilder().Build()
	s.Store.SeedUser(t, u)
	s.Store.SeedCode(t, builders.NewCodeBuilder().ForOwner(u.ID()).WithCreatedAt(testNow).Build())

	err := newIssuePasswordResetCodeHandler(s).Handle(t.Context(), IssuePasswordResetCode{Email: u.Email()})
	require.NoError(t, err)

	registration := s.Store.RequireLatestCode(t, u.ID(), verification.PurposeRegistrationConfirmation)
	assert.True(t, registration.IsActive())
}
