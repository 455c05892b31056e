package authhttp

import (
	"net/http"

	"github.com/ARUMANDESU/validation"
	"go.opentelemetry.io/otel/trace"

	"github.com/ARUMANDESU/storefront-identity/internal/application/verification/cmd"
	"github.com/ARUMANDESU/storefront-identity/pkg/ctxs"
	"github.com/ARUMANDESU/storefront-identity/pkg/errorx"
	"github.com/ARUMANDESU/storefront-identity/pkg/httpx"
	"github.com/ARUMANDESU/storefront-identity/pkg/i18nx"
	"github.com/ARUMANDESU/storefront-identity/pkg/logging"
	"github.com/ARUMANDESU/storefront-identity/pkg/otelx"
	"github.com/ARUMANDESU/storefront-identity/pkg/sanitizex"
	"github.com/ARUMANDESU/storefront-identity/pkg/validationx"
)

// principal returns the authenticated user put into ctx by the auth middleware.
func (h *HTTP) principal(w http.ResponseWriter, r *http.Request, span trace.Span) (*ctxs.User, bool) {
	u, ok := ctxs.UserFromCtx(r.Context())
	if !ok {
		h.errhandler.HandleError(w, r, span, errorx.NewUnauthorized(), "no authenticated user in context")
		return nil, false
	}
	otelx.SetSpanAttrs(span, map[string]any{"user.id": u.ID.String()})
	return u, true
}

func (h *HTTP) SendEmailVerificationCode(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "SendEmailVerificationCode")
	defer span.End()

	u, ok := h.principal(w, r, span)
	if !ok {
		return
	}

	if err := h.verification.CMD.IssueRegistrationCode.Handle(ctx, cmd.IssueRegistrationCode{Email: u.Email}); err != nil {
		h.errhandler.HandleError(w, r, span, err, "failed to issue registration code")
		return
	}

	httpx.Success(w, r, http.StatusOK, h.errhandler.Message(r, i18nx.SuccessEmailCodeSent), nil)
}

type CodeRequest struct {
	Code string `json:"code"`
}

func (r *CodeRequest) Sanitized() {
	r.Code = sanitizex.CleanCode(r.Code)
}

func (r *CodeRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Code, validationx.CodeRules...),
	)
}

func (h *HTTP) VerifyRegisterCode(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "VerifyRegisterCode")
	defer span.End()

	u, ok := h.principal(w, r, span)
	if !ok {
		return
	}

	var req CodeRequest
	if err := httpx.ReadJSON(w, r, &req); err != nil {
		h.errhandler.HandleError(w, r, span, err, "failed to read json")
		return
	}
	req.Sanitized()
	if err := req.Validate(); err != nil {
		h.errhandler.HandleError(w, r, span, err, "failed to validate request body")
		return
	}

	err := h.verification.CMD.VerifyRegistrationCode.Handle(ctx, cmd.VerifyRegistrationCode{
		Email: u.Email,
		Code:  req.Code,
	})
	if err != nil {
		h.errhandler.HandleError(w, r, span, err, "failed to verify registration code")
		return
	}

	httpx.Success(w, r, http.StatusOK, h.errhandler.Message(r, i18nx.SuccessEmailConfirmed), nil)
}

type EmailRequest struct {
	Email string `json:"email"`
}

func (r *EmailRequest) Sanitized() {
	r.Email = sanitizex.CleanEmail(r.Email)
}

func (r *EmailRequest) SetSpanAttrs(span trace.Span) {
	otelx.SetSpanAttrs(span, map[string]any{"email": logging.RedactEmail(r.Email)})
}

func (r *EmailRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Email, validationx.EmailRules...),
	)
}

func (h *HTTP) SendPasswordVerificationCode(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "SendPasswordVerificationCode")
	defer span.End()

	var req EmailRequest
	if err := httpx.ReadJSON(w, r, &req); err != nil {
		h.errhandler.HandleError(w, r, span, err, "failed to read json")
		return
	}
	req.Sanitized()
	req.SetSpanAttrs(span)
	if err := req.Validate(); err != nil {
		h.errhandler.HandleError(w, r, span, err, "failed to validate request body")
		return
	}
	if !h.allowEmail(w, r, span, req.Email) {
		return
	}

	if err := h.verification.CMD.IssuePasswordResetCode.Handle(ctx, cmd.IssuePasswordResetCode{Email: req.Email}); err != nil {
		h.errhandler.HandleError(w, r, span, err, "failed to issue password reset code")
		return
	}

	httpx.Success(w, r, http.StatusOK, h.errhandler.Message(r, i18nx.SuccessPasswordCodeSent), nil)
}

type VerifyResetCodeRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

func (r *VerifyResetCodeRequest) Sanitized() {
	r.Email = sanitizex.CleanEmail(r.Email)
	r.Code = sanitizex.CleanCode(r.Code)
}

func (r *VerifyResetCodeRequest) SetSpanAttrs(span trace.Span) {
	otelx.SetSpanAttrs(span, map[string]any{"email": logging.RedactEmail(r.Email)})
}

func (r *VerifyResetCodeRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Email, validationx.EmailRules...),
		validation.Field(&r.Code, validationx.CodeRules...),
	)
}

func (h *HTTP) VerifyResetCode(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "VerifyResetCode")
	defer span.End()

	var req VerifyResetCodeRequest
	if err := httpx.ReadJSON(w, r, &req); err != nil {
		h.errhandler.HandleError(w, r, span, err, "failed to read json")
		return
	}
	req.Sanitized()
	req.SetSpanAttrs(span)
	if err := req.Validate(); err != nil {
		h.errhandler.HandleError(w, r, span, err, "failed to validate request body")
		return
	}
	if !h.allowEmail(w, r, span, req.Email) {
		return
	}

	if err := h.verification.CMD.VerifyResetCode.Handle(ctx, cmd.VerifyResetCode{Email: req.Email, Code: req.Code}); err != nil {
		h.errhandler.HandleError(w, r, span, err, "failed to verify reset code")
		return
	}

	httpx.Success(w, r, http.StatusOK, h.errhandler.Message(r, i18nx.SuccessResetCodeVerified), nil)
}

type ChangePasswordRequest struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"new_password"`
}

func (r *ChangePasswordRequest) Sanitized() {
	r.Email = sanitizex.CleanEmail(r.Email)
	r.Code = sanitizex.CleanCode(r.Code)
}

func (r *ChangePasswordRequest) SetSpanAttrs(span trace.Span) {
	otelx.SetSpanAttrs(span, map[string]any{"email": logging.RedactEmail(r.Email)})
}

func (r *ChangePasswordRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Email, validationx.EmailRules...),
		validation.Field(&r.Code, validationx.CodeRules...),
		validation.Field(&r.NewPassword, validationx.PasswordRules...),
	)
}

func (h *HTTP) ChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ChangePassword")
	defer span.End()

	var req ChangePasswordRequest
	if err := httpx.ReadJSON(w, r, &req); err != nil {
		h.errhandler.HandleError(w, r, span, err, "failed to read json")
		return
	}
	req.Sanitized()
	req.SetSpanAttrs(span)
	if err := req.Validate(); err != nil {
		h.errhandler.HandleError(w, r, span, err, "failed to validate request body")
		return
	}
	if !h.allowEmail(w, r, span, req.Email) {
		return
	}

	err := h.verification.CMD.ChangePassword.Handle(ctx, cmd.ChangePassword{
		Email:       req.Email,
		Code:        req.Code,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		h.errhandler.HandleError(w, r, span, err, "failed to change password")
		return
	}

	httpx.Success(w, r, http.StatusOK, h.errhandler.Message(r, i18nx.SuccessPasswordChanged), nil)
}
