package watermillx

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	watermillSQL "github.com/ThreeDotsLabs/watermill-sql/v4/pkg/sql"
	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ARUMANDESU/storefront-identity/internal/domain/event"
)

// SubscriberOptions tunes the outbox polling subscribers.
type SubscriberOptions struct {
	InitializeSchema bool
	PollInterval     time.Duration
}

// DefaultSubscriberOptions is used by the running service.
var DefaultSubscriberOptions = SubscriberOptions{InitializeSchema: true}

// TestSubscriberOptions polls quickly against a schema created up front.
var TestSubscriberOptions = SubscriberOptions{PollInterval: 10 * time.Millisecond}

func newSQLSubscriber(conn *pgxpool.Pool, group string, opts SubscriberOptions, logger watermill.LoggerAdapter) (message.Subscriber, error) {
	return watermillSQL.NewSubscriber(
		watermillSQL.BeginnerFromPgx(conn),
		watermillSQL.SubscriberConfig{
			ConsumerGroup:    group,
			SchemaAdapter:    watermillSQL.DefaultPostgreSQLSchema{},
			OffsetsAdapter:   watermillSQL.DefaultPostgreSQLOffsetsAdapter{},
			InitializeSchema: opts.InitializeSchema,
			PollInterval:     opts.PollInterval,
		},
		logger,
	)
}

// NewEventProcessor subscribes event handlers to the Postgres outbox, one
// consumer group per handler.
func NewEventProcessor(
	router *message.Router,
	conn *pgxpool.Pool,
	opts SubscriberOptions,
	logger watermill.LoggerAdapter,
) (*cqrs.EventProcessor, error) {
	return cqrs.NewEventProcessorWithConfig(router, cqrs.EventProcessorConfig{
		GenerateSubscribeTopic: func(params cqrs.EventProcessorGenerateSubscribeTopicParams) (string, error) {
			evt, ok := params.EventHandler.NewEvent().(event.Event)
			if !ok {
				return "", fmt.Errorf("event handler %T does not implement event.Event", params.EventHandler.NewEvent())
			}
			return MessageTopic(evt)
		},
		SubscriberConstructor: func(params cqrs.EventProcessorSubscriberConstructorParams) (message.Subscriber, error) {
			return newSQLSubscriber(conn, params.EventHandler.HandlerName(), opts, logger)
		},
		Marshaler:         cqrs.JSONMarshaler{},
		Logger:            logger,
		AckOnUnknownEvent: true,
	})
}

func NewTxEventBus(tx pgx.Tx, logger watermill.LoggerAdapter) (*cqrs.EventBus, error) {
	publisher, err := watermillSQL.NewPublisher(
		watermillSQL.TxFromPgx(tx),
		watermillSQL.PublisherConfig{
			SchemaAdapter: watermillSQL.DefaultPostgreSQLSchema{},
		},
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create publisher: %w", err)
	}

	eventBus, err := cqrs.NewEventBusWithConfig(publisher, cqrs.EventBusConfig{
		GeneratePublishTopic: func(params cqrs.GenerateEventPublishTopicParams) (string, error) {
			evt, ok := params.Event.(event.Event)
			if !ok {
				return "", fmt.Errorf("event %T does not implement event.Event", params.Event)
			}

			return MessageTopic(evt)
		},
		Marshaler: cqrs.JSONMarshaler{},
		Logger:    logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create event bus: %w", err)
	}

	return eventBus, nil
}

// Publish writes evts to the outbox inside tx, so they become visible only if tx commits.
func Publish(ctx context.Context, tx pgx.Tx, logger watermill.LoggerAdapter, evts ...event.Event) error {
	if len(evts) == 0 {
		return nil
	}

	eventBus, err := NewTxEventBus(tx, logger)
	if err != nil {
		return err
	}

	for _, evt := range evts {
		if err := eventBus.Publish(ctx, evt); err != nil {
			return fmt.Errorf("failed to publish event %T: %w", evt, err)
		}
	}

	return nil
}

func MessageTopic(evt event.Event) (string, error) {
	streamName := evt.GetStreamName()
	if streamName == "" {
		return "", fmt.Errorf("stream name is empty, event: %T", evt)
	}

	return streamName, nil
}

// InitializeEventSchema creates the outbox tables for every stream.
func InitializeEventSchema(ctx context.Context, conn *pgxpool.Pool, logger watermill.LoggerAdapter, streams ...string) error {
	subscriber, err := watermillSQL.NewSubscriber(
		watermillSQL.BeginnerFromPgx(conn),
		watermillSQL.SubscriberConfig{
			SchemaAdapter:    watermillSQL.DefaultPostgreSQLSchema{},
			OffsetsAdapter:   watermillSQL.DefaultPostgreSQLOffsetsAdapter{},
			InitializeSchema: true,
		},
		logger,
	)
	if err != nil {
		return fmt.Errorf("failed to create subscriber: %w", err)
	}
	defer subscriber.Close()

	for _, stream := range streams {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := subscriber.SubscribeInitialize(stream); err != nil {
			return fmt.Errorf("failed to initialize event schema for %s: %w", stream, err)
		}
	}

	return nil
}
