package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andreasstove999/resource-panel/internal/middleware"
	"github.com/andreasstove999/resource-panel/internal/resource"
	"github.com/andreasstove999/resource-panel/internal/session"
)

type published struct {
	exchange string
	key      string
	msg      amqp.Publishing
}

type fakeChannel struct {
	declared   []string
	published  []published
	declareErr error
	publishErr error
	closed     bool
}

func (f *fakeChannel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error {
	f.declared = append(f.declared, name+":"+kind)
	return f.declareErr
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.published = append(f.published, published{exchange: exchange, key: key, msg: msg})
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func newTestPublisher(t *testing.T, ch *fakeChannel) *Publisher {
	t.Helper()
	p, err := newPublisher(ch, PublisherOptions{})
	require.NoError(t, err)
	p.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	return p
}

func TestNewPublisherDeclaresExchange(t *testing.T) {
	ch := &fakeChannel{}
	p := newTestPublisher(t, ch)

	assert.Equal(t, []string{"panel.events:topic"}, ch.declared)
	assert.Equal(t, panelServiceName, p.producer)

	require.NoError(t, p.Close())
	assert.True(t, ch.closed)
}

func TestNewPublisherDeclareError(t *testing.T) {
	_, err := newPublisher(&fakeChannel{declareErr: errors.New("nope")}, PublisherOptions{})
	require.Error(t, err)
}

func TestQuantityAdjustedEnvelope(t *testing.T) {
	ch := &fakeChannel{}
	p := newTestPublisher(t, ch)

	ctx := middleware.WithCorrelationID(context.Background(), "cid-1")
	ctx = middleware.WithSession(ctx, session.Session{ID: "sid", Username: "alice"})
	require.NoError(t, p.QuantityAdjusted(ctx, "Widget", -1))

	require.Len(t, ch.published, 1)
	got := ch.published[0]
	assert.Equal(t, EventsExchange, got.exchange)
	assert.Equal(t, ResourceQuantityAdjustedRoutingKey, got.key)
	assert.Equal(t, "application/json", got.msg.ContentType)
	assert.Equal(t, amqp.Persistent, got.msg.DeliveryMode)

	env, err := parseEnvelope(got.msg.Body)
	require.NoError(t, err)
	require.NoError(t, validateQuantityAdjusted(env))
	assert.Equal(t, "Widget", env.PartitionKey)
	assert.Equal(t, "cid-1", env.CorrelationID)
	assert.Equal(t, env.EventID, got.msg.MessageId)

	var payload ResourceQuantityAdjustedPayload
	require.NoError(t, json.Unmarshal(env.Payload, &payload))
	assert.Equal(t, -1, payload.Change)
	assert.Equal(t, "alice", payload.Actor)

	// mutate to ensure validation fails
	env.EventName = "WrongName"
	assert.Error(t, validateQuantityAdjusted(env))
}

func TestResourceCreatedEnvelope(t *testing.T) {
	ch := &fakeChannel{}
	p := newTestPublisher(t, ch)

	require.NoError(t, p.ResourceCreated(context.Background(), resource.NewResource{Name: "Gadget", MaxUnits: 4}))

	require.Len(t, ch.published, 1)
	assert.Equal(t, ResourceCreatedRoutingKey, ch.published[0].key)

	env, err := parseEnvelope(ch.published[0].msg.Body)
	require.NoError(t, err)
	require.NoError(t, env.Validate(EventTypeResourceCreated, 1))

	var payload ResourceCreatedPayload
	require.NoError(t, json.Unmarshal(env.Payload, &payload))
	assert.Equal(t, ResourceCreatedPayload{
		Name:      "Gadget",
		MaxUnits:  4,
		Timestamp: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}, payload)
}

func TestPublishErrorIsReturned(t *testing.T) {
	ch := &fakeChannel{publishErr: errors.New("channel closed")}
	p := newTestPublisher(t, ch)

	err := p.QuantityAdjusted(context.Background(), "Widget", 1)
	require.Error(t, err)
}
