package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"

	identity "github.com/ARUMANDESU/storefront-identity"
	"github.com/ARUMANDESU/storefront-identity/internal/adapters/mailqueue"
	"github.com/ARUMANDESU/storefront-identity/internal/adapters/repos/postgres"
	"github.com/ARUMANDESU/storefront-identity/internal/adapters/services/smtp"
	authapp "github.com/ARUMANDESU/storefront-identity/internal/application/auth"
	"github.com/ARUMANDESU/storefront-identity/internal/application/mail"
	mailevent "github.com/ARUMANDESU/storefront-identity/internal/application/mail/event"
	mailrender "github.com/ARUMANDESU/storefront-identity/internal/application/mail/render"
	userapp "github.com/ARUMANDESU/storefront-identity/internal/application/user"
	verificationapp "github.com/ARUMANDESU/storefront-identity/internal/application/verification"
	"github.com/ARUMANDESU/storefront-identity/internal/domain/user"
	"github.com/ARUMANDESU/storefront-identity/internal/domain/verification"
	httpport "github.com/ARUMANDESU/storefront-identity/internal/ports/http"
	watermillport "github.com/ARUMANDESU/storefront-identity/internal/ports/watermill"
	"github.com/ARUMANDESU/storefront-identity/pkg/env"
	"github.com/ARUMANDESU/storefront-identity/pkg/httpx"
	"github.com/ARUMANDESU/storefront-identity/pkg/logging"
	pgpkg "github.com/ARUMANDESU/storefront-identity/pkg/postgres"
	"github.com/ARUMANDESU/storefront-identity/pkg/watermillx"
)

const shutdownTimeout = 30 * time.Second

// Application holds all the application dependencies
type Application struct {
	Auth         *authapp.App
	User         *userapp.App
	Verification *verificationapp.App
	Mail         *mail.App
}

type Repositories struct {
	User       *postgres.UserRepo
	Code       *postgres.CodeRepo
	Credential *postgres.CredentialStore
}

func serve(ctx context.Context, config *Config) error {
	if err := config.Validate(); err != nil {
		return err
	}

	cleanupLogs := setupLogging(config)
	defer func() { _ = cleanupLogs() }()

	shutdownOTel, err := setupOTelSDK(ctx, config.OTLPEndpoint)
	if err != nil {
		return fmt.Errorf("failed to set up OpenTelemetry SDK: %w", err)
	}
	defer func() {
		if err := shutdownOTel(context.Background()); err != nil {
			slog.Error("failed to shutdown OpenTelemetry SDK", "error", err)
		}
	}()

	slog.InfoContext(ctx, "starting storefront identity", "mode", config.Mode, "port", config.Port)

	pool, err := setupDatabase(ctx, config)
	if err != nil {
		return err
	}
	defer pool.Close()

	wlogger := watermillx.NewSlogAdapter(slog.Default(), slog.LevelInfo)
	if err := watermillx.InitializeEventSchema(ctx, pool, wlogger, user.EventStreamName, verification.EventStreamName); err != nil {
		return fmt.Errorf("failed to initialize event schema: %w", err)
	}

	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: shutdownTimeout}, wlogger)
	if err != nil {
		return fmt.Errorf("failed to create watermill router: %w", err)
	}
	cmdPubSub := watermillx.NewMemoryPubSub(wlogger)
	cmdBus, err := watermillx.NewCommandBus(cmdPubSub, wlogger)
	if err != nil {
		return fmt.Errorf("failed to create command bus: %w", err)
	}

	repos := setupRepositories(pool)
	apps, err := setupApplications(config, repos, mailqueue.New(cmdBus))
	if err != nil {
		return err
	}

	wmport, err := watermillport.NewPort(watermillport.PortArgs{
		Router:        router,
		Conn:          pool,
		CmdSubscriber: cmdPubSub,
		Subscriber:    watermillx.DefaultSubscriberOptions,
		Logger:        wlogger,
	})
	if err != nil {
		return fmt.Errorf("failed to create watermill port: %w", err)
	}
	if err := wmport.Register(watermillport.AppHandlers{Mail: apps.Mail}); err != nil {
		return fmt.Errorf("failed to register watermill handlers: %w", err)
	}

	errCh := make(chan error, 2)
	go func() {
		if err := router.Run(ctx); err != nil {
			errCh <- fmt.Errorf("watermill router: %w", err)
		}
	}()
	select {
	case <-router.Running():
	case err := <-errCh:
		return err
	}

	httpServer, err := setupHTTPServer(ctx, config, apps)
	if err != nil {
		return err
	}
	go func() {
		slog.InfoContext(ctx, "starting HTTP server", "port", config.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		slog.Info("shutting down")
	case runErr = <-errCh:
		slog.Error("component failed, shutting down", "error", runErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		runErr = errors.Join(runErr, fmt.Errorf("failed to shutdown http server: %w", err))
	}
	if err := router.Close(); err != nil {
		runErr = errors.Join(runErr, fmt.Errorf("failed to close watermill router: %w", err))
	}

	slog.Info("server exited")
	return runErr
}

func migrateOnly(ctx context.Context, config *Config) error {
	mode, err := env.ParseMode(config.Mode.String())
	if err != nil {
		return fmt.Errorf("invalid MODE: %w", err)
	}
	config.Mode = mode
	cleanupLogs := setupLogging(config)
	defer func() { _ = cleanupLogs() }()

	if err := pgpkg.Migrate(config.MigrateDSN(), &identity.Migrations); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.InfoContext(ctx, "migrations applied")
	return nil
}

func setupLogging(config *Config) func() error {
	logger, cleanup := logging.Setup(config.Mode, config.LogPath)
	slog.SetDefault(logger)
	return cleanup
}

func setupDatabase(ctx context.Context, config *Config) (*pgxpool.Pool, error) {
	pool, err := pgpkg.NewPgxPool(ctx, config.PgDSN, config.Mode)
	if err != nil {
		return nil, fmt.Errorf("failed to create database pool: %w", err)
	}

	if err := pgpkg.Migrate(config.MigrateDSN(), &identity.Migrations); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return pool, nil
}

func setupRepositories(pool *pgxpool.Pool) *Repositories {
	return &Repositories{
		User:       postgres.NewUserRepo(pool, nil, nil),
		Code:       postgres.NewCodeRepo(pool, nil, nil),
		Credential: postgres.NewCredentialStore(pool, nil, nil),
	}
}

func setupApplications(config *Config, repos *Repositories, queue *mailqueue.Queue) (*Application, error) {
	var sender mailevent.MailSender
	if config.SMTP.Host == "" {
		slog.Warn("SMTP_HOST is empty, outgoing mail is only logged")
		sender = smtp.NewLogSender(nil)
	} else {
		sender = smtp.NewSender(smtp.Config{
			Host:     config.SMTP.Host,
			Port:     config.SMTP.Port,
			Username: config.SMTP.Username,
			Password: config.SMTP.Password,
			From:     config.SMTP.From,
		}, nil, nil)
	}

	renderer, err := mailrender.New()
	if err != nil {
		return nil, err
	}

	return &Application{
		Auth: authapp.NewApp(authapp.Args{
			UserGetter:            repos.User,
			AccessTokenSecretKey:  config.JWTAccessSecret,
			RefreshTokenSecretKey: config.JWTRefreshSecret,
		}),
		User: userapp.NewApp(userapp.Args{
			Mode:     config.Mode,
			UserRepo: repos.User,
		}),
		Verification: verificationapp.NewApp(verificationapp.Args{
			Repo:            repos.Code,
			CredentialStore: repos.Credential,
			MailQueue:       queue,
			Meter:           otel.Meter("storefront-identity/application/verification"),
		}),
		Mail: mail.NewApp(mail.Args{
			Mailsender: sender,
			Renderer:   renderer,
		}),
	}, nil
}

func setupHTTPServer(ctx context.Context, config *Config, apps *Application) (*http.Server, error) {
	errhandler, err := httpx.NewErrorHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to load locales: %w", err)
	}

	port := httpport.NewPort(ctx, httpport.Args{
		AuthApp:            apps.Auth,
		UserApp:            apps.User,
		VerificationApp:    apps.Verification,
		Errhandler:         errhandler,
		AccessSecret:       []byte(config.JWTAccessSecret),
		CookieDomain:       config.CookieDomain,
		CORSAllowedOrigins: config.CORSAllowedOrigins,
	})

	return &http.Server{
		Addr:         ":" + config.Port,
		Handler:      port.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}, nil
}
