package cmd

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ARUMANDESU/storefront-identity/internal/domain/user"
	"github.com/ARUMANDESU/storefront-identity/internal/domain/verification"
	"github.com/ARUMANDESU/storefront-identity/tests/builders"
	"github.com/ARUMANDESU/storefront-identity/tests/mocks"
)

func newIssueRegistrationCodeHandler(s *Suite) *IssueRegistrationCodeHandler {
	return NewIssueRegistrationCodeHandler(IssueRegistrationCodeHandlerArgs{
		Clock:     fixedClock(testNow),
		Repo:      s.Store,
		MailQueue: s.MailQueue,
	})
}

func TestIssueRegistrationCodeHandler_HappyPath(t *testing.T) {
	t.Parallel()

	s := newSuite()
	u := builders.NewUserBuilder().Build()
	s.Store.SeedUser(t, u)

	err := newIssueRegistrationCodeHandler(s).Handle(t.Context(), IssueRegistrationCode{Email: u.Email()})
	require.NoError(t, err)

	code := s.Store.RequireLatestCode(t, u.ID(), verification.PurposeRegistrationConfirmation)
	assert.True(t, code.IsActive())
	assert.Equal(t, testNow, code.CreatedAt())
	assert.Nil(t, code.ActivatedAt())

	queued := s.MailQueue.RequireLast(t)
	assert.Equal(t, u.Email(), queued.Email)
	assert.Equal(t, verification.PurposeRegistrationConfirmation, queued.Purpose)
	assert.Regexp(t, `^[0-9]{6}$`, queued.Code)
	assert.Equal(t, verification.HashCode(queued.Code), code.CodeHash())
	assert.NotEqual(t, queued.Code, code.CodeHash())

	issued := mocks.RequireEventExists(t, s.Store.EventRepo, &verification.CodeIssued{})
	assert.Equal(t, code.ID(), issued.CodeID)
	s.Store.AssertEventCount(t, 1).AssertNeverContains(t, queued.Code)
	assert.Len(t, s.Store.Stream(verification.EventStreamName), 1)
}

func TestIssueRegistrationCodeHandler_UnknownEmail_SilentSuccess(t *testing.T) {
	t.Parallel()

	s := newSuite()

	err := newIssueRegistrationCodeHandler(s).Handle(t.Context(), IssueRegistrationCode{Email: "nobody@storefront.kz"})
	require.NoError(t, err)

	s.MailQueue.AssertEmpty(t)
	s.Store.AssertEventCount(t, 0)
}

func TestIssueRegistrationCodeHandler_AlreadyConfirmed(t *testing.T) {
	t.Parallel()

	s := newSuite()
	u := builders.NewUserBuilder().Confirmed().Build()
	s.Store.SeedUser(t, u)

	err := newIssueRegistrationCodeHandler(s).Handle(t.Context(), IssueRegistrationCode{Email: u.Email()})
	require.ErrorIs(t, err, user.ErrAlreadyConfirmed)

	s.Store.AssertCodeCount(t, u.ID(), verification.PurposeRegistrationConfirmation, 0)
	s.MailQueue.AssertEmpty(t)
}

func TestIssueRegistrationCodeHandler_SupersedesPreviousCode(t *testing.T) {
	t.Parallel()

	s := newSuite()
	u := builders.NewUserBuilder().Build()
	s.Store.SeedUser(t, u)
	s.Store.SeedCode(t, builders.NewCodeBuilder().ForOwner(u.ID()).WithCreatedAt(testNow.Add(-2 * time.Minute)).Build())

	err := newIssueRegistrationCodeHandler(s).Handle(t.Context(), IssueRegistrationCode{Email: u.Email()})
	require.NoError(t, err)

	codes := s.Store.Codes(u.ID(), verification.PurposeRegistrationConfirmation)
	require.Len(t, codes, 2)
	assert.False(t, codes[0].IsActive(), "older code must be superseded")
	assert.True(t, codes[1].IsActive())
}

func TestIssueRegistrationCodeHandler_EmailLookupIgnoresCase(t *testing.T) {
	t.Parallel()

	s := newSuite()
	u := builders.NewUserBuilder().WithEmail("Dana@Storefront.kz").Build()
	s.Store.SeedUser(t, u)

	err := newIssueRegistrationCodeHandler(s).Handle(t.Context(), IssueRegistrationCode{Email: "dana@storefront.kz"})
	require.NoError(t, err)
	s.Store.AssertCodeCount(t, u.ID(), verification.PurposeRegistrationConfirmation, 1)
}

func TestIssueRegistrationCodeHandler_QueueFailure(t *testing.T) {
	t.Parallel()

	s := newSuite()
	u := builders.NewUserBuilder().Build()
	s.Store.SeedUser(t, u)
	queueErr := errors.New("queue closed")
	s.MailQueue.Fail(queueErr)

	err := newIssueRegistrationCodeHandler(s).Handle(t.Context(), IssueRegistrationCode{Email: u.Email()})
	require.ErrorIs(t, err, queueErr)
}
