package http

import (
	"net/http"
	"testing"

	authhttp "github.com/ARUMANDESU/storefront-identity/internal/ports/http/auth"
)

func (h *Helper) Register(t *testing.T, email, displayName, password string) *Response {
	return h.Do(t, NewRequest(http.MethodPost, "/v1/auth/register").
		WithJSON(authhttp.RegisterRequest{Email: email, DisplayName: displayName, Password: password}).
		Build())
}

func (h *Helper) Login(t *testing.T, email, password string) *Response {
	return h.Do(t, NewRequest(http.MethodPost, "/v1/auth/login").
		WithJSON(authhttp.LoginRequest{Email: email, Password: password}).
		Build())
}

// LoginCookie logs in and returns the access token cookie.
func (h *Helper) LoginCookie(t *testing.T, email, password string) *http.Cookie {
	t.Helper()
	return h.Login(t, email, password).AssertSuccess().GetCookie(authhttp.AccessJWTCookie)
}

func (h *Helper) Refresh(t *testing.T, refresh *http.Cookie) *Response {
	return h.Do(t, NewRequest(http.MethodPost, "/v1/auth/refresh").WithCookie(refresh).Build())
}

func (h *Helper) SendEmailVerificationCode(t *testing.T, access *http.Cookie) *Response {
	return h.Do(t, NewRequest(http.MethodPost, "/v1/auth/send-email-verification-code").
		WithCookie(access).
		Build())
}

func (h *Helper) VerifyRegisterCode(t *testing.T, access *http.Cookie, code string) *Response {
	return h.Do(t, NewRequest(http.MethodPost, "/v1/auth/verify-register-code").
		WithCookie(access).
		WithJSON(authhttp.CodeRequest{Code: code}).
		Build())
}

func (h *Helper) SendPasswordVerificationCode(t *testing.T, email string) *Response {
	return h.Do(t, NewRequest(http.MethodPost, "/v1/auth/send-password-verification-code").
		WithJSON(authhttp.EmailRequest{Email: email}).
		Build())
}

func (h *Helper) VerifyResetCode(t *testing.T, email, code string) *Response {
	return h.Do(t, NewRequest(http.MethodPost, "/v1/auth/verify-reset-code").
		WithJSON(authhttp.VerifyResetCodeRequest{Email: email, Code: code}).
		Build())
}

func (h *Helper) ChangePassword(t *testing.T, email, code, newPassword string) *Response {
	return h.Do(t, NewRequest(http.MethodPost, "/v1/auth/change-password").
		WithJSON(authhttp.ChangePasswordRequest{Email: email, Code: code, NewPassword: newPassword}).
		Build())
}
