package middlewares

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/ARUMANDESU/validation"
	"github.com/golang-jwt/jwt/v5"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	authapp "github.com/ARUMANDESU/storefront-identity/internal/application/auth"
	"github.com/ARUMANDESU/storefront-identity/internal/domain/user"
	authhttp "github.com/ARUMANDESU/storefront-identity/internal/ports/http/auth"
	"github.com/ARUMANDESU/storefront-identity/pkg/ctxs"
	"github.com/ARUMANDESU/storefront-identity/pkg/errorx"
	"github.com/ARUMANDESU/storefront-identity/pkg/httpx"
)

var (
	tracer = otel.Tracer("storefront-identity/internal/ports/http/middlewares")
	logger = otelslog.NewLogger("storefront-identity/internal/ports/http/middlewares")
)

type Middleware struct {
	tracer     trace.Tracer
	logger     *slog.Logger
	secret     []byte
	errhandler *httpx.ErrorHandler
}

type Args struct {
	Tracer     trace.Tracer
	Logger     *slog.Logger
	Secret     []byte
	Errhandler *httpx.ErrorHandler
}

func NewMiddleware(args Args) *Middleware {
	m := &Middleware{
		tracer:     args.Tracer,
		logger:     args.Logger,
		secret:     args.Secret,
		errhandler: args.Errhandler,
	}

	if m.tracer == nil {
		m.tracer = tracer
	}
	if m.logger == nil {
		m.logger = logger
	}
	if len(m.secret) == 0 {
		panic("secret key is required for auth middleware")
	}
	if m.errhandler == nil {
		panic("error handler is required for auth middleware")
	}
	return m
}

// Auth accepts a valid access token cookie and puts the caller into the
// request context as a ctxs.User.
func (m *Middleware) Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := m.tracer.Start(r.Context(), "AuthMiddleware")
		defer span.End()

		accessCookie, err := r.Cookie(authhttp.AccessJWTCookie)
		if err != nil {
			m.errhandler.HandleError(w, r, span, errorx.NewUnauthorized().WithCause(err), "failed to get access token cookie")
			return
		}

		err = validation.Validate(accessCookie.Value, validation.Required, validation.Length(1, 2000))
		if err != nil {
			m.errhandler.HandleError(w, r, span, errorx.NewUnauthorized().WithCause(err), "invalid access token cookie")
			return
		}

		accessToken, err := jwt.Parse(accessCookie.Value, func(t *jwt.Token) (any, error) {
			return m.secret, nil
		},
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithIssuer(authapp.ISS),
			jwt.WithSubject(authapp.UserSubject),
			jwt.WithExpirationRequired(),
		)
		if err != nil {
			m.errhandler.HandleError(w, r, span, errorx.NewUnauthorized().WithCause(err), "failed to parse access token")
			return
		}

		accessClaims, ok := accessToken.Claims.(jwt.MapClaims)
		if !ok {
			err = errorx.NewUnauthorized().WithCause(errors.New("failed to parse access token claims"))
			m.errhandler.HandleError(w, r, span, err, "failed to parse access token claims")
			return
		}
		uid, _ := accessClaims["uid"].(string)
		userID, err := user.ParseID(uid)
		if err != nil {
			m.errhandler.HandleError(w, r, span, errorx.NewUnauthorized().WithCause(err), "invalid user id in access token claims")
			return
		}
		email, _ := accessClaims["email"].(string)
		if email == "" {
			err = errorx.NewUnauthorized().WithCause(errors.New("email is empty in access token claims"))
			m.errhandler.HandleError(w, r, span, err, "email is empty in access token claims")
			return
		}

		span.SetAttributes(attribute.String("user.id", userID.String()))
		ctx = ctxs.WithUser(ctx, &ctxs.User{
			ID:    userID,
			Email: email,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
