package verification

import (
	"go.opentelemetry.io/otel/metric"

	"github.com/ARUMANDESU/storefront-identity/internal/application/verification/cmd"
)

type App struct {
	CMD Command
}

type Command struct {
	IssueRegistrationCode  *cmd.IssueRegistrationCodeHandler
	VerifyRegistrationCode *cmd.VerifyRegistrationCodeHandler
	IssuePasswordResetCode *cmd.IssuePasswordResetCodeHandler
	VerifyResetCode        *cmd.VerifyResetCodeHandler
	ChangePassword         *cmd.ChangePasswordHandler
}

type Args struct {
	Repo            cmd.Repo
	CredentialStore cmd.CredentialStore
	MailQueue       cmd.MailQueue
	Meter           metric.Meter
	Clock           cmd.Clock
}

func NewApp(args Args) *App {
	return &App{
		CMD: Command{
			IssueRegistrationCode: cmd.NewIssueRegistrationCodeHandler(cmd.IssueRegistrationCodeHandlerArgs{
				Meter:     args.Meter,
				Clock:     args.Clock,
				Repo:      args.Repo,
				MailQueue: args.MailQueue,
			}),
			VerifyRegistrationCode: cmd.NewVerifyRegistrationCodeHandler(cmd.VerifyRegistrationCodeHandlerArgs{
				Clock: args.Clock,
				Repo:  args.Repo,
			}),
			IssuePasswordResetCode: cmd.NewIssuePasswordResetCodeHandler(cmd.IssuePasswordResetCodeHandlerArgs{
				Meter:     args.Meter,
				Clock:     args.Clock,
				Repo:      args.Repo,
				MailQueue: args.MailQueue,
			}),
			VerifyResetCode: cmd.NewVerifyResetCodeHandler(cmd.VerifyResetCodeHandlerArgs{
				Clock: args.Clock,
				Repo:  args.Repo,
			}),
			ChangePassword: cmd.NewChangePasswordHandler(cmd.ChangePasswordHandlerArgs{
				Clock:           args.Clock,
				Repo:            args.Repo,
				CredentialStore: args.CredentialStore,
			}),
		},
	}
}
