package mailcmd_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mailcmd "github.com/ARUMANDESU/storefront-identity/internal/application/mail/cmd"
	mailrender "github.com/ARUMANDESU/storefront-identity/internal/application/mail/render"
	"github.com/ARUMANDESU/storefront-identity/internal/domain/user"
	"github.com/ARUMANDESU/storefront-identity/internal/domain/verification"
	"github.com/ARUMANDESU/storefront-identity/tests/mocks"
)

func newHandler(t *testing.T) (*mailcmd.SendCodeMailHandler, *mocks.MockMailSender) {
	t.Helper()

	renderer, err := mailrender.New()
	require.NoError(t, err)
	sender := mocks.NewMockMailSender()

	return mailcmd.NewSendCodeMailHandler(mailcmd.SendCodeMailHandlerArgs{
		MailSender: sender,
		Renderer:   renderer,
	}), sender
}

func codeMail(purpose verification.Purpose) *verification.SendCodeMail {
	return &verification.SendCodeMail{
		CodeID:      verification.NewID(),
		UserID:      user.NewID(),
		Email:       "dana.k@example.com",
		DisplayName: "Dana",
		Purpose:     purpose,
		Code:        "304918",
		IssuedAt:    time.Date(2026, 5, 2, 8, 0, 0, 0, time.UTC),
	}
}

func TestSendCodeMailHandler_Handle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		purpose     verification.Purpose
		wantSubject string
		wantBody    []string
	}{
		{
			name:        "registration confirmation",
			purpose:     verification.PurposeRegistrationConfirmation,
			wantSubject: "✅ dana.k, Your pin code is 304918. Please confirm your email address",
			wantBody: []string{
				mailcmd.RegistrationTitle,
				"To complete your registration, please use the following verification code:",
				"Dear Dana,",
				"304918",
				"This code will expire in 5 minutes.",
			},
		},
		{
			name:        "password reset",
			purpose:     verification.PurposePasswordReset,
			wantSubject: "✅ Dana, Reset Your Password - Verification Code: 304918",
			wantBody: []string{
				mailcmd.ResetTitle,
				mailcmd.ResetMessage,
				"304918",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h, sender := newHandler(t)
			require.NoError(t, h.Handle(t.Context(), codeMail(tt.purpose)))

			sent := sender.GetSentMails()
			require.Len(t, sent, 1)
			assert.Equal(t, "dana.k@example.com", sent[0].To)
			assert.Equal(t, tt.wantSubject, sent[0].Subject)
			for _, s := range tt.wantBody {
				assert.Contains(t, sent[0].HTML, s)
			}
		})
	}
}

func TestSendCodeMailHandler_Handle_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		modify  func(m *verification.SendCodeMail)
		sendErr error
	}{
		{name: "invalid email", modify: func(m *verification.SendCodeMail) { m.Email = "not-an-email" }},
		{name: "malformed code", modify: func(m *verification.SendCodeMail) { m.Code = "12ab" }},
		{name: "unknown purpose", modify: func(m *verification.SendCodeMail) { m.Purpose = "invite" }},
		{name: "sender failure", modify: func(*verification.SendCodeMail) {}, sendErr: errors.New("smtp down")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h, sender := newHandler(t)
			if tt.sendErr != nil {
				sender.Fail(tt.sendErr)
			}
			m := codeMail(verification.PurposeRegistrationConfirmation)
			tt.modify(m)

			err := h.Handle(t.Context(), m)
			require.Error(t, err)
			if tt.sendErr != nil {
				assert.ErrorIs(t, err, tt.sendErr)
			}
			assert.Empty(t, sender.GetSentMails())
		})
	}
}

func TestSendCodeMailHandler_Handle_Nil(t *testing.T) {
	t.Parallel()

	h, sender := newHandler(t)
	assert.NoError(t, h.Handle(t.Context(), nil))
	assert.Empty(t, sender.GetSentMails())
}
