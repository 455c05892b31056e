package verification

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ARUMANDESU/storefront-identity/internal/domain/user"
	"github.com/ARUMANDESU/storefront-identity/pkg/errorx"
)

const plain = "042917"

var t0 = time.Date(2026, 3, 14, 9, 58, 0, 0, time.UTC)

func ptr(t time.Time) *time.Time { return &t }

func registrationCode(active bool, createdAt time.Time) *Code {
	return Rehydrate(RehydrateArgs{
		ID:        NewID(),
		Owner:     user.NewID(),
		CodeHash:  HashCode(plain),
		Purpose:   PurposeRegistrationConfirmation,
		IsActive:  active,
		CreatedAt: createdAt,
	})
}

func resetCode(active bool, createdAt time.Time, activatedAt *time.Time) *Code {
	return Rehydrate(RehydrateArgs{
		ID:          NewID(),
		Owner:       user.NewID(),
		CodeHash:    HashCode(plain),
		Purpose:     PurposePasswordReset,
		IsActive:    active,
		CreatedAt:   createdAt,
		ActivatedAt: activatedAt,
	})
}

func TestNewCode(t *testing.T) {
	t.Parallel()

	ok := func(purpose Purpose, active bool) func(*testing.T, *Code, string, error) {
		return func(t *testing.T, c *Code, plaintext string, err error) {
			require.NoError(t, err)
			require.NotNil(t, c)
			assert.Regexp(t, sixDigits, plaintext)
			assert.Equal(t, HashCode(plaintext), c.CodeHash())
			assert.NotContains(t, c.CodeHash(), plaintext)
			assert.Equal(t, purpose, c.Purpose())
			assert.Equal(t, active, c.IsActive())
			assert.Equal(t, t0, c.CreatedAt())
			assert.Nil(t, c.ActivatedAt())

			events := c.GetUncommittedEvents()
			require.Len(t, events, 1)
			issued, isIssued := events[0].(*CodeIssued)
			require.True(t, isIssued)
			assert.Equal(t, c.ID(), issued.CodeID)
			assert.Equal(t, purpose, issued.Purpose)
		}
	}
	bad := func(t *testing.T, c *Code, plaintext string, err error) {
		assert.Error(t, err)
		assert.Nil(t, c)
		assert.Empty(t, plaintext)
	}

	tests := []struct {
		name    string
		owner   user.ID
		purpose Purpose
		want    func(*testing.T, *Code, string, error)
	}{
		{name: "registration starts active", owner: user.NewID(), purpose: PurposeRegistrationConfirmation, want: ok(PurposeRegistrationConfirmation, true)},
		{name: "reset starts inactive", owner: user.NewID(), purpose: PurposePasswordReset, want: ok(PurposePasswordReset, false)},
		{name: "missing owner", purpose: PurposePasswordReset, want: bad},
		{name: "unknown purpose", owner: user.NewID(), purpose: "login", want: bad},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c, plaintext, err := NewCode(tt.owner, tt.purpose, t0)
			tt.want(t, c, plaintext, err)
		})
	}
}

func TestCode_VerifyRegistration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		code       *Code
		submitted  string
		now        time.Time
		wantErr    error
		wantActive bool
	}{
		{name: "correct within window", code: registrationCode(true, t0), submitted: plain, now: t0.Add(4 * time.Minute)},
		{name: "correct at window edge", code: registrationCode(true, t0), submitted: plain, now: t0.Add(CodeValidity)},
		{name: "correct across hour boundary", code: registrationCode(true, t0), submitted: plain, now: t0.Add(3 * time.Minute)},
		{name: "wrong code", code: registrationCode(true, t0), submitted: "000000", now: t0.Add(time.Minute), wantErr: ErrInvalidCode, wantActive: true},
		{name: "expired", code: registrationCode(true, t0), submitted: plain, now: t0.Add(6 * time.Minute), wantErr: ErrCodeExpired, wantActive: true},
		{name: "already consumed", code: registrationCode(false, t0), submitted: plain, now: t0.Add(time.Minute), wantErr: ErrCodeExpired},
		{name: "wrong code on consumed record", code: registrationCode(false, t0), submitted: "111111", now: t0.Add(time.Minute), wantErr: ErrInvalidCode},
		{name: "nil code", code: nil, submitted: plain, now: t0, wantErr: ErrNoValidCode},
		{name: "reset code is not usable here", code: resetCode(true, t0, ptr(t0)), submitted: plain, now: t0, wantActive: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.code.VerifyRegistration(tt.submitted, tt.now)

			switch {
			case tt.name == "reset code is not usable here":
				assert.Error(t, err)
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			default:
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantActive, tt.code.IsActive())
		})
	}
}

func TestCode_VerifyRegistration_OnlyOnce(t *testing.T) {
	t.Parallel()

	c := registrationCode(true, t0)
	require.NoError(t, c.VerifyRegistration(plain, t0.Add(time.Minute)))
	assert.ErrorIs(t, c.VerifyRegistration(plain, t0.Add(2*time.Minute)), ErrCodeExpired)
}

func TestCode_ActivateReset(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		code      *Code
		submitted string
		now       time.Time
		wantErr   error
	}{
		{name: "fresh code", code: resetCode(false, t0, nil), submitted: plain, now: t0.Add(2 * time.Minute)},
		{name: "already active", code: resetCode(true, t0, ptr(t0.Add(time.Minute))), submitted: plain, now: t0.Add(2 * time.Minute), wantErr: ErrAlreadyActivated},
		{name: "already active wins over wrong code", code: resetCode(true, t0, ptr(t0)), submitted: "999999", now: t0, wantErr: ErrAlreadyActivated},
		{name: "wrong code", code: resetCode(false, t0, nil), submitted: "999999", now: t0.Add(time.Minute), wantErr: ErrInvalidCode},
		{name: "wrong code wins over expiry", code: resetCode(false, t0, nil), submitted: "999999", now: t0.Add(time.Hour), wantErr: ErrInvalidCode},
		{name: "expired", code: resetCode(false, t0, nil), submitted: plain, now: t0.Add(5*time.Minute + time.Second), wantErr: ErrCodeExpired},
		{name: "consumed cannot be resurrected", code: resetCode(false, t0, ptr(t0.Add(time.Minute))), submitted: plain, now: t0.Add(2 * time.Minute), wantErr: ErrCodeExpired},
		{name: "nil code", code: nil, submitted: plain, now: t0, wantErr: ErrNoValidCode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.code.ActivateReset(tt.submitted, tt.now)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.True(t, tt.code.IsActive())
			require.NotNil(t, tt.code.ActivatedAt())
			assert.Equal(t, tt.now, *tt.code.ActivatedAt())

			events := tt.code.GetUncommittedEvents()
			require.Len(t, events, 1)
			assert.IsType(t, &ResetCodeActivated{}, events[0])
		})
	}
}

func TestCode_ConsumeReset(t *testing.T) {
	t.Parallel()

	activated := t0.Add(2 * time.Minute)

	tests := []struct {
		name      string
		code      *Code
		submitted string
		now       time.Time
		wantErr   error
	}{
		{name: "within activation window", code: resetCode(true, t0, &activated), submitted: plain, now: activated.Add(29 * time.Minute)},
		{name: "past the code window but within activation window", code: resetCode(true, t0, &activated), submitted: plain, now: t0.Add(20 * time.Minute)},
		{name: "wrong code", code: resetCode(true, t0, &activated), submitted: "123123", now: activated, wantErr: ErrInvalidCode},
		{name: "activation expired", code: resetCode(true, t0, &activated), submitted: plain, now: activated.Add(31 * time.Minute), wantErr: ErrCodeExpired},
		{name: "never activated", code: resetCode(false, t0, nil), submitted: plain, now: t0.Add(time.Minute), wantErr: ErrCodeExpired},
		{name: "active without timestamp", code: resetCode(true, t0, nil), submitted: plain, now: t0.Add(time.Minute), wantErr: ErrCodeExpired},
		{name: "already consumed", code: resetCode(false, t0, &activated), submitted: plain, now: activated.Add(time.Minute), wantErr: ErrCodeExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.code.ConsumeReset(tt.submitted, tt.now)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.False(t, tt.code.IsActive())
		})
	}
}

func TestCode_ResetLifecycle(t *testing.T) {
	t.Parallel()

	c, plaintext, err := NewCode(user.NewID(), PurposePasswordReset, t0)
	require.NoError(t, err)

	require.NoError(t, c.ActivateReset(plaintext, t0.Add(time.Minute)))
	assert.ErrorIs(t, c.ActivateReset(plaintext, t0.Add(2*time.Minute)), ErrAlreadyActivated)

	require.NoError(t, c.ConsumeReset(plaintext, t0.Add(10*time.Minute)))
	assert.ErrorIs(t, c.ConsumeReset(plaintext, t0.Add(11*time.Minute)), ErrCodeExpired)
	assert.ErrorIs(t, c.ActivateReset(plaintext, t0.Add(3*time.Minute)), ErrCodeExpired)
}

func TestCode_Supersede(t *testing.T) {
	t.Parallel()

	c := registrationCode(true, t0)
	c.Supersede()
	assert.False(t, c.IsActive())
	assert.ErrorIs(t, c.VerifyRegistration(plain, t0), ErrCodeExpired)

	var nilCode *Code
	nilCode.Supersede()
}

func TestCode_NilGetters(t *testing.T) {
	t.Parallel()

	var c *Code
	assert.Equal(t, ID{}, c.ID())
	assert.True(t, c.Owner().IsZero())
	assert.Empty(t, c.CodeHash())
	assert.Empty(t, c.Purpose())
	assert.False(t, c.IsActive())
	assert.True(t, c.CreatedAt().IsZero())
	assert.Nil(t, c.ActivatedAt())
}

func TestCode_ActivatedAtIsCopied(t *testing.T) {
	t.Parallel()

	c := resetCode(true, t0, ptr(t0))
	got := c.ActivatedAt()
	*got = t0.Add(time.Hour)
	assert.Equal(t, t0, *c.ActivatedAt())
}

func TestCode_FailedAttempts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		code   *Code
		submit func(c *Code, code string) error
	}{
		{
			name:   "registration",
			code:   registrationCode(true, t0),
			submit: func(c *Code, code string) error { return c.VerifyRegistration(code, t0.Add(time.Minute)) },
		},
		{
			name:   "reset activation",
			code:   resetCode(false, t0, nil),
			submit: func(c *Code, code string) error { return c.ActivateReset(code, t0.Add(time.Minute)) },
		},
		{
			name:   "reset consumption",
			code:   resetCode(true, t0, ptr(t0.Add(time.Minute))),
			submit: func(c *Code, code string) error { return c.ConsumeReset(code, t0.Add(2*time.Minute)) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := tt.code
			for i := 1; i < MaxFailedAttempts; i++ {
				err := tt.submit(c, "000000")
				assert.ErrorIs(t, err, ErrInvalidCode)
				assert.True(t, errorx.IsPersistable(err), "a rejected code changes the counter")
				assert.Equal(t, i, c.FailedAttempts())
			}

			err := tt.submit(c, "000000")
			assert.ErrorIs(t, err, ErrInvalidCode)
			assert.Equal(t, MaxFailedAttempts, c.FailedAttempts())
			assert.False(t, c.IsActive())

			err = tt.submit(c, plain)
			assert.ErrorIs(t, err, ErrTooManyAttempts)
			assert.False(t, errorx.IsPersistable(err))
			assert.Equal(t, MaxFailedAttempts, c.FailedAttempts())
		})
	}
}

func TestCode_FailedAttemptsSurviveRehydrate(t *testing.T) {
	t.Parallel()

	c := Rehydrate(RehydrateArgs{
		ID:             NewID(),
		Owner:          user.NewID(),
		CodeHash:       HashCode(plain),
		Purpose:        PurposeRegistrationConfirmation,
		IsActive:       true,
		CreatedAt:      t0,
		FailedAttempts: MaxFailedAttempts - 1,
	})

	assert.ErrorIs(t, c.VerifyRegistration("111111", t0), ErrInvalidCode)
	assert.False(t, c.IsActive())
	assert.ErrorIs(t, c.VerifyRegistration(plain, t0), ErrTooManyAttempts)
}
