package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	authapp "github.com/ARUMANDESU/storefront-identity/internal/application/auth"
	userapp "github.com/ARUMANDESU/storefront-identity/internal/application/user"
	verificationapp "github.com/ARUMANDESU/storefront-identity/internal/application/verification"
	authhttp "github.com/ARUMANDESU/storefront-identity/internal/ports/http/auth"
	"github.com/ARUMANDESU/storefront-identity/internal/ports/http/middlewares"
	"github.com/ARUMANDESU/storefront-identity/pkg/httpx"
)

const (
	// issue* bound how often one client can trigger code mails.
	issueRateLimit = rate.Limit(0.2)
	issueBurst     = 3
	// verify* bound code submissions per client.
	verifyRateLimit = rate.Limit(0.5)
	verifyBurst     = 10
	// email* bound reset traffic aimed at a single address from any number of clients.
	emailRateLimit = rate.Limit(1.0 / 60)
	emailBurst     = 5
)

// RateLimits overrides the default limits. Zero fields keep the defaults.
type RateLimits struct {
	// Issue is per client IP on the endpoints that send codes.
	Issue rate.Limit
	// Verify is per client IP on the endpoints that accept codes.
	Verify rate.Limit
	// Email is per target address on the password reset endpoints.
	Email rate.Limit
}

func (l RateLimits) orDefault() RateLimits {
	if l.Issue == 0 {
		l.Issue = issueRateLimit
	}
	if l.Verify == 0 {
		l.Verify = verifyRateLimit
	}
	if l.Email == 0 {
		l.Email = emailRateLimit
	}
	return l
}

// NoRateLimits disables every limiter.
func NoRateLimits() RateLimits {
	return RateLimits{Issue: rate.Inf, Verify: rate.Inf, Email: rate.Inf}
}

type Port struct {
	auth *authhttp.HTTP
	cors []string
}

type Args struct {
	AuthApp            *authapp.App
	UserApp            *userapp.App
	VerificationApp    *verificationapp.App
	Errhandler         *httpx.ErrorHandler
	AccessSecret       []byte
	CookieDomain       string
	CORSAllowedOrigins []string
	Limits             RateLimits
}

// NewPort builds the HTTP port. The rate limiters sweep idle keys until ctx is done.
func NewPort(ctx context.Context, args Args) *Port {
	limits := args.Limits.orDefault()
	mw := middlewares.NewMiddleware(middlewares.Args{
		Secret:     args.AccessSecret,
		Errhandler: args.Errhandler,
	})
	issueLimiter := middlewares.NewRateLimiter(ctx, limits.Issue, issueBurst, args.Errhandler)
	verifyLimiter := middlewares.NewRateLimiter(ctx, limits.Verify, verifyBurst, args.Errhandler)
	emailLimiter := middlewares.NewRateLimiter(ctx, limits.Email, emailBurst, args.Errhandler)

	return &Port{
		auth: authhttp.NewHTTP(authhttp.Args{
			AuthApp:         args.AuthApp,
			UserApp:         args.UserApp,
			VerificationApp: args.VerificationApp,
			Errhandler:      args.Errhandler,
			CookieDomain:    args.CookieDomain,
			RequireAuth:     mw.Auth,
			IssueLimiter:    issueLimiter.Limit,
			VerifyLimiter:   verifyLimiter.Limit,
			EmailLimiter:    emailLimiter,
		}),
		cors: args.CORSAllowedOrigins,
	}
}

// Handler returns the complete router with the shared middleware stack.
func (p *Port) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middlewares.OTel)
	r.Use(middlewares.Logger(nil))
	if len(p.cors) > 0 {
		r.Use(middlewares.CORS(p.cors))
	}

	p.Route(r)
	return r
}

func (p *Port) Route(r chi.Router) chi.Router {
	if r == nil {
		r = chi.NewRouter()
	}

	p.auth.Route(r)

	return r
}
