package authapp

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ARUMANDESU/storefront-identity/internal/domain/user"
	"github.com/ARUMANDESU/storefront-identity/pkg/errorx"
	"github.com/ARUMANDESU/storefront-identity/pkg/logging"
	"github.com/ARUMANDESU/storefront-identity/pkg/otelx"
)

const (
	AccessTokenExpDuration  = 30 * time.Minute
	RefreshTokenExpDuration = 14 * 24 * time.Hour
)

const (
	ISS            = "storefront_identity"
	UserSubject    = "user"
	RefreshSubject = "refresh"
	RefreshScope   = "refresh"
)

var (
	tracer = otel.Tracer("storefront-identity/internal/application/auth")
	logger = otelslog.NewLogger("storefront-identity/internal/application/auth")
)

var ErrWrongEmailOrPassword = errorx.NewInvalidCredentials()

type UserGetter interface {
	GetUserByEmail(ctx context.Context, email string) (*user.User, error)
	GetUserByID(ctx context.Context, id user.ID) (*user.User, error)
}

type App struct {
	tracer     trace.Tracer
	logger     *slog.Logger
	usergetter UserGetter

	accessTokenExpDuration  time.Duration
	refreshTokenExpDuration time.Duration
	accessTokenSecretKey    []byte
	refreshTokenSecretKey   []byte
	signingMethod           *jwt.SigningMethodHMAC
}

type Args struct {
	Tracer     trace.Tracer
	Logger     *slog.Logger
	UserGetter UserGetter

	AccessTokenSecretKey    string
	RefreshTokenSecretKey   string
	AccessTokenExpDuration  *time.Duration
	RefreshTokenExpDuration *time.Duration
}

func NewApp(args Args) *App {
	app := &App{
		tracer:     tracer,
		logger:     logger,
		usergetter: args.UserGetter,

		accessTokenExpDuration:  AccessTokenExpDuration,
		refreshTokenExpDuration: RefreshTokenExpDuration,
		accessTokenSecretKey:    []byte(args.AccessTokenSecretKey),
		refreshTokenSecretKey:   []byte(args.RefreshTokenSecretKey),
		signingMethod:           jwt.SigningMethodHS256,
	}

	if args.AccessTokenExpDuration != nil {
		app.accessTokenExpDuration = *args.AccessTokenExpDuration
	}
	if args.RefreshTokenExpDuration != nil {
		app.refreshTokenExpDuration = *args.RefreshTokenExpDuration
	}
	if args.Tracer != nil {
		app.tracer = args.Tracer
	}
	if args.Logger != nil {
		app.logger = args.Logger
	}

	return app
}

type Login struct {
	Email    string
	Password string
}

type LoginResponse struct {
	AccessToken     string
	RefreshToken    string
	AccessTokenExp  time.Duration
	RefreshTokenExp time.Duration
}

// LoginHandle checks the password credential and issues an access and a refresh token.
func (a *App) LoginHandle(ctx context.Context, cmd Login) (LoginResponse, error) {
	ctx, span := a.tracer.Start(ctx, "App.LoginHandle", trace.WithAttributes(
		attribute.String("user.email", logging.RedactEmail(cmd.Email)),
		attribute.String("signing_method", a.signingMethod.Alg()),
	))
	defer span.End()

	u, err := a.usergetter.GetUserByEmail(ctx, cmd.Email)
	if err != nil {
		otelx.RecordSpanError(span, err, "failed to get user")
		if errorx.IsNotFound(err) {
			return LoginResponse{}, ErrWrongEmailOrPassword.WithCause(err)
		}
		return LoginResponse{}, err
	}

	if err := u.ComparePassword(cmd.Password); err != nil {
		otelx.RecordSpanError(span, err, "failed to compare password")
		return LoginResponse{}, ErrWrongEmailOrPassword.WithCause(err)
	}

	now := time.Now()
	accessjwt, err := a.signAccessToken(u, now)
	if err != nil {
		otelx.RecordSpanError(span, err, "failed to sign access token")
		return LoginResponse{}, errorx.NewInternalError().WithCause(err)
	}
	refreshjwt, err := jwt.NewWithClaims(a.signingMethod, jwt.MapClaims{
		"iss":   ISS,
		"sub":   RefreshSubject,
		"exp":   now.Add(a.refreshTokenExpDuration).Unix(),
		"iat":   now.Unix(),
		"jti":   uuid.New().String(),
		"uid":   u.ID().String(),
		"scope": RefreshScope,
	}).SignedString(a.refreshTokenSecretKey)
	if err != nil {
		otelx.RecordSpanError(span, err, "failed to sign refresh token")
		return LoginResponse{}, errorx.NewInternalError().WithCause(err)
	}

	a.logger.InfoContext(ctx, "user logged in", slog.String("user.id", u.ID().String()))
	return LoginResponse{
		AccessToken:     accessjwt,
		RefreshToken:    refreshjwt,
		AccessTokenExp:  a.accessTokenExpDuration,
		RefreshTokenExp: a.refreshTokenExpDuration,
	}, nil
}

type Refresh struct {
	RefreshToken string
}

// RefreshHandle issues a new access token and keeps the refresh token. The
// access token is rebuilt from the stored user, so a confirmed email shows up
// in its claims without a new login.
func (a *App) RefreshHandle(ctx context.Context, cmd Refresh) (LoginResponse, error) {
	ctx, span := a.tracer.Start(ctx, "App.RefreshHandle", trace.WithAttributes(
		attribute.String("signing_method", a.signingMethod.Alg()),
	))
	defer span.End()

	refreshToken, err := jwt.Parse(cmd.RefreshToken, func(t *jwt.Token) (any, error) {
		return a.refreshTokenSecretKey, nil
	},
		jwt.WithValidMethods([]string{a.signingMethod.Alg()}),
		jwt.WithIssuer(ISS),
		jwt.WithSubject(RefreshSubject),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		otelx.RecordSpanError(span, err, "failed to parse refresh jwt token")
		return LoginResponse{}, errorx.NewInvalidCredentials().WithCause(err)
	}

	claims, ok := refreshToken.Claims.(jwt.MapClaims)
	if !ok || claims["scope"] != RefreshScope {
		err := errors.New("invalid refresh token scope")
		otelx.RecordSpanError(span, err, "invalid refresh token claims")
		return LoginResponse{}, errorx.NewInvalidCredentials().WithCause(err)
	}
	rawUID, _ := claims["uid"].(string)
	userID, err := user.ParseID(rawUID)
	if err != nil {
		otelx.RecordSpanError(span, err, "invalid refresh token user id")
		return LoginResponse{}, errorx.NewInvalidCredentials().WithCause(err)
	}
	span.SetAttributes(attribute.String("user.id", userID.String()))

	u, err := a.usergetter.GetUserByID(ctx, userID)
	if err != nil {
		otelx.RecordSpanError(span, err, "failed to get user by id")
		if errorx.IsNotFound(err) {
			return LoginResponse{}, errorx.NewInvalidCredentials().WithCause(err)
		}
		return LoginResponse{}, errorx.NewInternalError().WithCause(err)
	}

	accessjwt, err := a.signAccessToken(u, time.Now())
	if err != nil {
		otelx.RecordSpanError(span, err, "failed to sign access token")
		return LoginResponse{}, errorx.NewInternalError().WithCause(err)
	}

	return LoginResponse{
		AccessToken:     accessjwt,
		RefreshToken:    cmd.RefreshToken,
		AccessTokenExp:  a.accessTokenExpDuration,
		RefreshTokenExp: a.refreshTokenExpDuration,
	}, nil
}

func (a *App) signAccessToken(u *user.User, now time.Time) (string, error) {
	return jwt.NewWithClaims(a.signingMethod, jwt.MapClaims{
		"iss":             ISS,
		"sub":             UserSubject,
		"exp":             now.Add(a.accessTokenExpDuration).Unix(),
		"iat":             now.Unix(),
		"uid":             u.ID().String(),
		"email":           u.Email(),
		"email_confirmed": u.EmailConfirmed(),
	}).SignedString(a.accessTokenSecretKey)
}
