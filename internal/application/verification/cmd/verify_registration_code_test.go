package cmd

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ARUMANDESU/storefront-identity/internal/domain/user"
	"github.com/ARUMANDESU/storefront-identity/internal/domain/verification"
	"github.com/ARUMANDESU/storefront-identity/tests/builders"
	"github.com/ARUMANDESU/storefront-identity/tests/mocks"
)

func newVerifyRegistrationCodeHandler(s *Suite, now time.Time) *VerifyRegistrationCodeHandler {
	return NewVerifyRegistrationCodeHandler(VerifyRegistrationCodeHandlerArgs{
		Clock: fixedClock(now),
		Repo:  s.Store,
	})
}

func TestVerifyRegistrationCodeHandler_HappyPath(t *testing.T) {
	t.Parallel()

	s := newSuite()
	u := builders.NewUserBuilder().Build()
	s.Store.SeedUser(t, u)
	s.Store.SeedCode(t, builders.NewCodeBuilder().ForOwner(u.ID()).WithCreatedAt(testNow).Build())

	// created at :58, verified at :02 of the next hour
	h := newVerifyRegistrationCodeHandler(s, testNow.Add(4*time.Minute))
	err := h.Handle(t.Context(), VerifyRegistrationCode{Email: u.Email(), Code: builders.TestCode})
	require.NoError(t, err)

	s.Store.AssertEmailConfirmed(t, u.Email(), true)
	code := s.Store.RequireLatestCode(t, u.ID(), verification.PurposeRegistrationConfirmation)
	assert.False(t, code.IsActive())

	confirmed := mocks.RequireEventExists(t, s.Store.EventRepo, &user.EmailConfirmed{})
	assert.Equal(t, u.ID(), confirmed.UserID)
}

func TestVerifyRegistrationCodeHandler_SecondAttemptFails(t *testing.T) {
	t.Parallel()

	s := newSuite()
	u := builders.NewUserBuilder().Build()
	s.Store.SeedUser(t, u)
	s.Store.SeedCode(t, builders.NewCodeBuilder().ForOwner(u.ID()).WithCreatedAt(testNow).Build())
	h := newVerifyRegistrationCodeHandler(s, testNow.Add(time.Minute))

	require.NoError(t, h.Handle(t.Context(), VerifyRegistrationCode{Email: u.Email(), Code: builders.TestCode}))
	err := h.Handle(t.Context(), VerifyRegistrationCode{Email: u.Email(), Code: builders.TestCode})
	assert.ErrorIs(t, err, verification.ErrCodeExpired)
}

func TestVerifyRegistrationCodeHandler_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		seedUser      bool
		code          *builders.CodeBuilder
		submitted     string
		now           time.Time
		wantErr       error
		wantConfirmed bool
	}{
		{
			name:      "unknown user",
			submitted: builders.TestCode,
			now:       testNow,
			wantErr:   verification.ErrInvalidCredentialState,
		},
		{
			name:      "no code issued",
			seedUser:  true,
			submitted: builders.TestCode,
			now:       testNow,
			wantErr:   verification.ErrNoValidCode,
		},
		{
			name:      "wrong code",
			seedUser:  true,
			code:      builders.NewCodeBuilder().WithCreatedAt(testNow),
			submitted: "000000",
			now:       testNow.Add(time.Minute),
			wantErr:   verification.ErrInvalidCode,
		},
		{
			name:      "issued six minutes ago",
			seedUser:  true,
			code:      builders.NewCodeBuilder().WithCreatedAt(testNow),
			submitted: builders.TestCode,
			now:       testNow.Add(6 * time.Minute),
			wantErr:   verification.ErrCodeExpired,
		},
		{
			name:      "superseded code",
			seedUser:  true,
			code:      builders.NewCodeBuilder().WithCreatedAt(testNow).Inactive(),
			submitted: builders.TestCode,
			now:       testNow.Add(time.Minute),
			wantErr:   verification.ErrCodeExpired,
		},
		{
			name:      "reset code is never consulted",
			seedUser:  true,
			code:      builders.NewCodeBuilder().WithCreatedAt(testNow).Activated(testNow),
			submitted: builders.TestCode,
			now:       testNow.Add(time.Minute),
			wantErr:   verification.ErrNoValidCode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := newSuite()
			u := builders.NewUserBuilder().Build()
			if tt.seedUser {
				s.Store.SeedUser(t, u)
			}
			if tt.code != nil {
				s.Store.SeedCode(t, tt.code.ForOwner(u.ID()).Build())
			}

			err := newVerifyRegistrationCodeHandler(s, tt.now).Handle(t.Context(), VerifyRegistrationCode{
				Email: u.Email(),
				Code:  tt.submitted,
			})
			require.ErrorIs(t, err, tt.wantErr)

			if tt.seedUser {
				s.Store.AssertEmailConfirmed(t, u.Email(), false)
			}
			s.Store.AssertEventCount(t, 0)
		})
	}
}

func TestVerifyRegistrationCodeHandler_OnlyLatestCodeCounts(t *testing.T) {
	t.Parallel()

	s := newSuite()
	u := builders.NewUserBuilder().Build()
	s.Store.SeedUser(t, u)
	s.Store.SeedCode(t, builders.NewCodeBuilder().ForOwner(u.ID()).WithPlaintext("111111").WithCreatedAt(testNow).Build())
	s.Store.SeedCode(t, builders.NewCodeBuilder().ForOwner(u.ID()).WithPlaintext("222222").WithCreatedAt(testNow.Add(time.Minute)).Build())
	h := newVerifyRegistrationCodeHandler(s, testNow.Add(2*time.Minute))

	err := h.Handle(t.Context(), VerifyRegistrationCode{Email: u.Email(), Code: "111111"})
	require.ErrorIs(t, err, verification.ErrInvalidCode)

	err = h.Handle(t.Context(), VerifyRegistrationCode{Email: u.Email(), Code: "222222"})
	require.NoError(t, err)
}
