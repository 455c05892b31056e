package integration

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ARUMANDESU/storefront-identity/internal/adapters/mailqueue"
	"github.com/ARUMANDESU/storefront-identity/internal/adapters/repos/postgres"
	authapp "github.com/ARUMANDESU/storefront-identity/internal/application/auth"
	"github.com/ARUMANDESU/storefront-identity/internal/application/mail"
	mailrender "github.com/ARUMANDESU/storefront-identity/internal/application/mail/render"
	userapp "github.com/ARUMANDESU/storefront-identity/internal/application/user"
	verificationapp "github.com/ARUMANDESU/storefront-identity/internal/application/verification"
	verificationcmd "github.com/ARUMANDESU/storefront-identity/internal/application/verification/cmd"
	httpport "github.com/ARUMANDESU/storefront-identity/internal/ports/http"
	watermillport "github.com/ARUMANDESU/storefront-identity/internal/ports/watermill"
	"github.com/ARUMANDESU/storefront-identity/pkg/env"
	"github.com/ARUMANDESU/storefront-identity/pkg/httpx"
	"github.com/ARUMANDESU/storefront-identity/pkg/watermillx"
	"github.com/ARUMANDESU/storefront-identity/tests/mocks"
)

var (
	_ verificationcmd.Repo            = (*postgres.CodeRepo)(nil)
	_ verificationcmd.CredentialStore = (*postgres.CredentialStore)(nil)
)

const (
	AccessSecret  = "integration-access-secret"
	RefreshSecret = "integration-refresh-secret"
)

// Clock is a shiftable wall clock shared by the verification handlers.
type Clock struct {
	mu     sync.Mutex
	offset time.Duration
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return time.Now().UTC().Add(c.offset)
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.offset += d
}

func (c *Clock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.offset = 0
}

type App struct {
	HTTPHandler    http.Handler
	MockMailSender *mocks.MockMailSender
	Clock          *Clock
	UserRepo       *postgres.UserRepo
	CodeRepo       *postgres.CodeRepo
	Credentials    *postgres.CredentialStore
	Router         *message.Router
}

// NewApp wires the full service against pool. The returned router is not
// running yet.
func NewApp(ctx context.Context, pool *pgxpool.Pool, wlogger watermill.LoggerAdapter) (*App, error) {
	userRepo := postgres.NewUserRepo(pool, nil, nil)
	codeRepo := postgres.NewCodeRepo(pool, nil, nil)
	credentials := postgres.NewCredentialStore(pool, nil, nil)
	mailSender := mocks.NewMockMailSender()
	clock := &Clock{}

	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: 5 * time.Second}, wlogger)
	if err != nil {
		return nil, fmt.Errorf("failed to create router: %w", err)
	}
	cmdPubSub := watermillx.NewMemoryPubSub(wlogger)
	cmdBus, err := watermillx.NewCommandBus(cmdPubSub, wlogger)
	if err != nil {
		return nil, err
	}

	renderer, err := mailrender.New()
	if err != nil {
		return nil, err
	}
	mailApp := mail.NewApp(mail.Args{Mailsender: mailSender, Renderer: renderer})

	wmport, err := watermillport.NewPort(watermillport.PortArgs{
		Router:        router,
		Conn:          pool,
		CmdSubscriber: cmdPubSub,
		Subscriber:    watermillx.TestSubscriberOptions,
		Logger:        wlogger,
	})
	if err != nil {
		return nil, err
	}
	if err := wmport.Register(watermillport.AppHandlers{Mail: mailApp}); err != nil {
		return nil, err
	}

	errhandler, err := httpx.NewErrorHandler()
	if err != nil {
		return nil, err
	}
	port := httpport.NewPort(ctx, httpport.Args{
		AuthApp: authapp.NewApp(authapp.Args{
			UserGetter:            userRepo,
			AccessTokenSecretKey:  AccessSecret,
			RefreshTokenSecretKey: RefreshSecret,
		}),
		UserApp: userapp.NewApp(userapp.Args{Mode: env.Test, UserRepo: userRepo}),
		VerificationApp: verificationapp.NewApp(verificationapp.Args{
			Repo:            codeRepo,
			CredentialStore: credentials,
			MailQueue:       mailqueue.New(cmdBus),
			Clock:           clock.Now,
		}),
		Errhandler:   errhandler,
		AccessSecret: []byte(AccessSecret),
		Limits:       httpport.NoRateLimits(),
	})

	return &App{
		HTTPHandler:    port.Handler(),
		MockMailSender: mailSender,
		Clock:          clock,
		UserRepo:       userRepo,
		CodeRepo:       codeRepo,
		Credentials:    credentials,
		Router:         router,
	}, nil
}
