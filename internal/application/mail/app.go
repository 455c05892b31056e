package mail

import (
	mailcmd "github.com/ARUMANDESU/storefront-identity/internal/application/mail/cmd"
	mailevent "github.com/ARUMANDESU/storefront-identity/internal/application/mail/event"
	mailrender "github.com/ARUMANDESU/storefront-identity/internal/application/mail/render"
)

type App struct {
	CMD   Command
	Event *mailevent.MailEventHandler
}

type Command struct {
	SendCodeMail *mailcmd.SendCodeMailHandler
}

type Args struct {
	Mailsender mailevent.MailSender
	Renderer   *mailrender.Renderer
}

func NewApp(args Args) *App {
	return &App{
		CMD: Command{
			SendCodeMail: mailcmd.NewSendCodeMailHandler(mailcmd.SendCodeMailHandlerArgs{
				MailSender: args.Mailsender,
				Renderer:   args.Renderer,
			}),
		},
		Event: mailevent.NewMailEventHandler(mailevent.MailEventHandlerArgs{
			Mailsender: args.Mailsender,
			Renderer:   args.Renderer,
		}),
	}
}
