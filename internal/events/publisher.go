package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/andreasstove999/resource-panel/internal/middleware"
	"github.com/andreasstove999/resource-panel/internal/resource"
)

// channel is the subset of *amqp.Channel the publisher needs.
type channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher emits panel activity events after the resource API has confirmed
// a mutation.
type Publisher struct {
	ch       channel
	producer string
	now      func() time.Time
}

type PublisherOptions struct {
	Producer string
}

func NewPublisher(conn *amqp.Connection, opts PublisherOptions) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}
	p, err := newPublisher(ch, opts)
	if err != nil {
		_ = ch.Close()
		return nil, err
	}
	return p, nil
}

func newPublisher(ch channel, opts PublisherOptions) (*Publisher, error) {
	if err := declareEventsExchange(ch); err != nil {
		return nil, fmt.Errorf("declare events exchange: %w", err)
	}

	producer := opts.Producer
	if producer == "" {
		producer = panelServiceName
	}
	return &Publisher{ch: ch, producer: producer, now: time.Now}, nil
}

func (p *Publisher) Close() error {
	return p.ch.Close()
}

func (p *Publisher) ResourceCreated(ctx context.Context, in resource.NewResource) error {
	meta := metaFromContext(ctx)
	env, err := newResourceCreatedEvent(meta, p.producer, ResourceCreatedPayload{
		Name:      in.Name,
		MaxUnits:  in.MaxUnits,
		Actor:     meta.Actor,
		Timestamp: p.now().UTC(),
	})
	if err != nil {
		return err
	}
	return p.publish(ctx, ResourceCreatedRoutingKey, env)
}

func (p *Publisher) QuantityAdjusted(ctx context.Context, name string, change int) error {
	meta := metaFromContext(ctx)
	env, err := newQuantityAdjustedEvent(meta, p.producer, ResourceQuantityAdjustedPayload{
		Name:      name,
		Change:    change,
		Actor:     meta.Actor,
		Timestamp: p.now().UTC(),
	})
	if err != nil {
		return err
	}
	return p.publish(ctx, ResourceQuantityAdjustedRoutingKey, env)
}

func (p *Publisher) publish(ctx context.Context, routingKey string, env EventEnvelope) error {
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal %s envelope: %w", env.EventName, err)
	}

	pubCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return p.ch.PublishWithContext(
		pubCtx,
		EventsExchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:   "application/json",
			DeliveryMode:  amqp.Persistent,
			MessageId:     env.EventID,
			CorrelationId: env.CorrelationID,
			Timestamp:     env.OccurredAt,
			Body:          body,
		},
	)
}

func metaFromContext(ctx context.Context) EventMeta {
	meta := EventMeta{CorrelationID: middleware.GetCorrelationID(ctx)}
	if s, ok := middleware.GetSession(ctx); ok {
		meta.Actor = s.Username
	}
	return meta
}
