package integration

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	identity "github.com/ARUMANDESU/storefront-identity"
	"github.com/ARUMANDESU/storefront-identity/internal/domain/user"
	"github.com/ARUMANDESU/storefront-identity/internal/domain/verification"
	postgrespkg "github.com/ARUMANDESU/storefront-identity/pkg/postgres"
	"github.com/ARUMANDESU/storefront-identity/pkg/watermillx"
	"github.com/ARUMANDESU/storefront-identity/tests/integration/framework/db"
	"github.com/ARUMANDESU/storefront-identity/tests/integration/framework/event"
	httpframework "github.com/ARUMANDESU/storefront-identity/tests/integration/framework/http"
)

const mailTimeout = 5 * time.Second

var mailedCode = regexp.MustCompile(`(?:pin code is|Verification Code:) (\d{6})`)

type TestSuite struct {
	suite.Suite
	pgContainer *tcpostgres.PostgresContainer
	pgPool      *pgxpool.Pool
	app         *App
	stopRouter  context.CancelFunc

	HTTP  *httpframework.Helper
	DB    *db.Helper
	Event *event.Helper
}

func (s *TestSuite) SetupSuite() {
	ctx := context.Background()

	pgContainer, err := tcpostgres.Run(ctx, "postgres:17-alpine",
		tcpostgres.WithDatabase("identity_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		tcpostgres.BasicWaitStrategies(),
	)
	s.Require().NoError(err)
	s.pgContainer = pgContainer

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	s.Require().NoError(err)

	s.pgPool, err = pgxpool.New(ctx, connStr)
	s.Require().NoError(err)

	s.T().Logf("Running migrations on database: %s", connStr)
	err = postgrespkg.Migrate(strings.Replace(connStr, "postgres://", "pgx5://", 1), &identity.Migrations)
	s.Require().NoError(err)

	wlogger := watermillx.NewSlogAdapter(slog.Default(), slog.LevelWarn)
	err = watermillx.InitializeEventSchema(ctx, s.pgPool, wlogger, user.EventStreamName, verification.EventStreamName)
	s.Require().NoError(err)

	routerCtx, cancel := context.WithCancel(ctx)
	s.stopRouter = cancel

	s.app, err = NewApp(routerCtx, s.pgPool, wlogger)
	s.Require().NoError(err)

	go func() {
		_ = s.app.Router.Run(routerCtx)
	}()
	select {
	case <-s.app.Router.Running():
	case <-time.After(10 * time.Second):
		s.FailNow("watermill router did not start")
	}

	s.HTTP = httpframework.NewHelper(s.app.HTTPHandler)
	s.DB = db.NewHelper(s.pgPool)
	s.Event = event.NewHelper(s.pgPool)
}

func (s *TestSuite) TearDownSuite() {
	if s.stopRouter != nil {
		s.stopRouter()
	}
	if s.app != nil {
		_ = s.app.Router.Close()
	}
	if s.pgPool != nil {
		s.pgPool.Close()
	}
	if s.pgContainer != nil {
		err := testcontainers.TerminateContainer(s.pgContainer)
		s.Require().NoError(err)
	}
}

func (s *TestSuite) AfterTest(suiteName, testName string) {
	s.DB.TruncateAll(s.T())
	s.Event.ClearAllEvents(s.T())
	s.app.MockMailSender.Reset()
	s.app.Clock.Reset()
	s.T().Logf("Test data truncated after test: %s in suite: %s", testName, suiteName)
}

func (s *TestSuite) App() *App {
	return s.app
}

// ReceiveCode waits for the next code mail to email and extracts the code
// from its subject.
func (s *TestSuite) ReceiveCode(email string) string {
	s.T().Helper()

	payload := s.app.MockMailSender.WaitForMail(s.T(), email, mailTimeout)
	m := mailedCode.FindStringSubmatch(payload.Subject)
	s.Require().Len(m, 2, "no code in subject %q", payload.Subject)
	s.Contains(payload.HTML, m[1], "mail body should carry the code")
	return m[1]
}
