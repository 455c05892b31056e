package authhttp

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ARUMANDESU/validation"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	authapp "github.com/ARUMANDESU/storefront-identity/internal/application/auth"
	userapp "github.com/ARUMANDESU/storefront-identity/internal/application/user"
	usercmd "github.com/ARUMANDESU/storefront-identity/internal/application/user/cmd"
	verificationapp "github.com/ARUMANDESU/storefront-identity/internal/application/verification"
	"github.com/ARUMANDESU/storefront-identity/pkg/errorx"
	"github.com/ARUMANDESU/storefront-identity/pkg/httpx"
	"github.com/ARUMANDESU/storefront-identity/pkg/i18nx"
	"github.com/ARUMANDESU/storefront-identity/pkg/logging"
	"github.com/ARUMANDESU/storefront-identity/pkg/otelx"
	"github.com/ARUMANDESU/storefront-identity/pkg/sanitizex"
)

const (
	AccessJWTCookie   = "storefront_access"
	RefreshJWTCookie  = "storefront_refresh"
	RefreshCookiePath = "/v1/auth/refresh"
)

var (
	tracer = otel.Tracer("storefront-identity/internal/ports/http/auth")
	logger = otelslog.NewLogger("storefront-identity/internal/ports/http/auth")
)

type Middleware = func(http.Handler) http.Handler

// KeyLimiter reports whether another request for key is allowed.
type KeyLimiter interface {
	Allow(key string) bool
}

type unlimited struct{}

func (unlimited) Allow(string) bool { return true }

func passthrough(next http.Handler) http.Handler { return next }

type HTTP struct {
	tracer       trace.Tracer
	logger       *slog.Logger
	auth         *authapp.App
	users        *userapp.App
	verification *verificationapp.App
	errhandler   *httpx.ErrorHandler
	cookiedomain string
	requireAuth  Middleware
	limitIssue   Middleware
	limitVerify  Middleware
	emails       KeyLimiter
}

type Args struct {
	Tracer          trace.Tracer
	Logger          *slog.Logger
	AuthApp         *authapp.App
	UserApp         *userapp.App
	VerificationApp *verificationapp.App
	Errhandler      *httpx.ErrorHandler
	CookieDomain    string
	// RequireAuth must put a ctxs.User into the request context.
	RequireAuth Middleware
	// IssueLimiter guards the endpoints that send mail. Optional.
	IssueLimiter Middleware
	// VerifyLimiter guards the endpoints that accept a code. Optional.
	VerifyLimiter Middleware
	// EmailLimiter is keyed by the target address of the password reset endpoints. Optional.
	EmailLimiter KeyLimiter
}

func NewHTTP(args Args) *HTTP {
	if args.Tracer == nil {
		args.Tracer = tracer
	}
	if args.Logger == nil {
		args.Logger = logger
	}
	if args.RequireAuth == nil {
		panic("auth middleware is required")
	}
	if args.IssueLimiter == nil {
		args.IssueLimiter = passthrough
	}
	if args.VerifyLimiter == nil {
		args.VerifyLimiter = passthrough
	}
	if args.EmailLimiter == nil {
		args.EmailLimiter = unlimited{}
	}

	return &HTTP{
		tracer:       args.Tracer,
		logger:       args.Logger,
		auth:         args.AuthApp,
		users:        args.UserApp,
		verification: args.VerificationApp,
		errhandler:   args.Errhandler,
		cookiedomain: args.CookieDomain,
		requireAuth:  args.RequireAuth,
		limitIssue:   args.IssueLimiter,
		limitVerify:  args.VerifyLimiter,
		emails:       args.EmailLimiter,
	}
}

func (h *HTTP) Route(r chi.Router) {
	r.Route("/v1/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Post("/refresh", h.Refresh)
		r.Post("/logout", h.Logout)

		r.Group(func(r chi.Router) {
			r.Use(h.requireAuth)
			r.With(h.limitIssue).Post("/send-email-verification-code", h.SendEmailVerificationCode)
			r.With(h.limitVerify).Post("/verify-register-code", h.VerifyRegisterCode)
		})

		r.With(h.limitIssue).Post("/send-password-verification-code", h.SendPasswordVerificationCode)
		r.With(h.limitVerify).Post("/verify-reset-code", h.VerifyResetCode)
		r.With(h.limitVerify).Post("/change-password", h.ChangePassword)
	})
}

// allowEmail spends a token of the limiter for email and answers 429 when
// the address is exhausted.
func (h *HTTP) allowEmail(w http.ResponseWriter, r *http.Request, span trace.Span, email string) bool {
	if h.emails.Allow(strings.ToLower(email)) {
		return true
	}
	span.AddEvent("email rate limit exceeded")
	h.errhandler.RateLimited(w, r)
	return false
}

type RegisterRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
}

func (r *RegisterRequest) Sanitized() {
	r.Email = sanitizex.CleanEmail(r.Email)
	r.DisplayName = sanitizex.CleanSingleLine(r.DisplayName)
	// passwords are taken verbatim, login compares them untouched
}

func (h *HTTP) Register(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "Register")
	defer span.End()

	var req RegisterRequest
	if err := httpx.ReadJSON(w, r, &req); err != nil {
		h.errhandler.HandleError(w, r, span, err, "failed to read json")
		return
	}
	req.Sanitized()
	otelx.SetSpanAttrs(span, map[string]any{"email": logging.RedactEmail(req.Email)})

	id, err := h.users.Command.Register.Handle(ctx, usercmd.Register{
		Email:       req.Email,
		DisplayName: req.DisplayName,
		Password:    req.Password,
	})
	if err != nil {
		h.errhandler.HandleError(w, r, span, err, "failed to register user")
		return
	}

	httpx.Success(w, r, http.StatusCreated, h.errhandler.Message(r, i18nx.SuccessRegistered), httpx.Envelope{"user_id": id.String()})
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Sanitized() {
	r.Email = sanitizex.CleanEmail(r.Email)
}

func (r *LoginRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Email, validation.Required, validation.Length(3, 255)),
		validation.Field(&r.Password, validation.Required, validation.Length(1, 72)),
	)
}

func (h *HTTP) Login(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "Login")
	defer span.End()

	var req LoginRequest
	if err := httpx.ReadJSON(w, r, &req); err != nil {
		h.errhandler.HandleError(w, r, span, err, "failed to read json")
		return
	}
	req.Sanitized()
	span.SetAttributes(attribute.String("email", logging.RedactEmail(req.Email)))
	if err := req.Validate(); err != nil {
		h.errhandler.HandleError(w, r, span, err, "failed to validate request body")
		return
	}

	res, err := h.auth.LoginHandle(ctx, authapp.Login{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.errhandler.HandleError(w, r, span, err, "failed to login")
		return
	}

	h.setAccessCookie(w, res.AccessToken, res.AccessTokenExp)
	h.setRefreshCookie(w, res.RefreshToken, res.RefreshTokenExp)
	httpx.Success(w, r, http.StatusOK, h.errhandler.Message(r, i18nx.SuccessLoggedIn), nil)
}

func (h *HTTP) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "Refresh")
	defer span.End()

	refreshCookie, err := r.Cookie(RefreshJWTCookie)
	if err != nil {
		h.errhandler.HandleError(w, r, span, errorx.NewInvalidCredentials().WithCause(err), "failed to get refresh cookie")
		return
	}

	res, err := h.auth.RefreshHandle(ctx, authapp.Refresh{RefreshToken: refreshCookie.Value})
	if err != nil {
		h.errhandler.HandleError(w, r, span, err, "failed to refresh token")
		return
	}

	h.setAccessCookie(w, res.AccessToken, res.AccessTokenExp)
	httpx.Success(w, r, http.StatusOK, "", nil)
}

func (h *HTTP) Logout(w http.ResponseWriter, r *http.Request) {
	_, span := h.tracer.Start(r.Context(), "Logout")
	defer span.End()

	h.setAccessCookie(w, "", -1)
	h.setRefreshCookie(w, "", -1)
	httpx.Success(w, r, http.StatusOK, h.errhandler.Message(r, i18nx.SuccessLoggedOut), nil)
}

func (h *HTTP) setAccessCookie(w http.ResponseWriter, value string, exp time.Duration) {
	http.SetCookie(w, h.cookie(AccessJWTCookie, "/", value, exp))
}

func (h *HTTP) setRefreshCookie(w http.ResponseWriter, value string, exp time.Duration) {
	http.SetCookie(w, h.cookie(RefreshJWTCookie, RefreshCookiePath, value, exp))
}

// cookie builds an auth cookie. A negative exp deletes it.
func (h *HTTP) cookie(name, path, value string, exp time.Duration) *http.Cookie {
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		Domain:   h.cookiedomain,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	}
	if exp < 0 {
		c.MaxAge = -1
		c.Expires = time.Unix(0, 0)
		return c
	}
	c.MaxAge = int(exp.Seconds())
	c.Expires = time.Now().Add(exp).UTC()
	return c
}
