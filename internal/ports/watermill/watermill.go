package watermill

import (
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ARUMANDESU/storefront-identity/internal/application/mail"
	"github.com/ARUMANDESU/storefront-identity/pkg/watermillx"
)

// Port registers the asynchronous handlers on a watermill router. Domain
// events come from the Postgres outbox, commands from the in-process queue.
type Port struct {
	eventProcessor *cqrs.EventProcessor
	cmdProcessor   *cqrs.CommandProcessor
}

type PortArgs struct {
	Router        *message.Router
	Conn          *pgxpool.Pool
	CmdSubscriber message.Subscriber
	Subscriber    watermillx.SubscriberOptions
	Logger        watermill.LoggerAdapter
}

type AppHandlers struct {
	Mail *mail.App
}

func NewPort(args PortArgs) (*Port, error) {
	eventProcessor, err := watermillx.NewEventProcessor(args.Router, args.Conn, args.Subscriber, args.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create event processor: %w", err)
	}
	cmdProcessor, err := watermillx.NewCommandProcessor(args.Router, args.CmdSubscriber, args.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create command processor: %w", err)
	}

	return &Port{
		eventProcessor: eventProcessor,
		cmdProcessor:   cmdProcessor,
	}, nil
}

// Register adds every handler to the router. It must be called before the router runs.
func (p *Port) Register(handlers AppHandlers) error {
	err := p.eventProcessor.AddHandlers(
		cqrs.NewEventHandler("MailOnPasswordChanged", handlers.Mail.Event.HandlePasswordChanged),
	)
	if err != nil {
		return fmt.Errorf("failed to add event handlers: %w", err)
	}

	err = p.cmdProcessor.AddHandlers(
		cqrs.NewCommandHandler("SendCodeMail", handlers.Mail.CMD.SendCodeMail.Handle),
	)
	if err != nil {
		return fmt.Errorf("failed to add command handlers: %w", err)
	}

	return nil
}
