package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeResourceCreated          = "ResourceCreated"
	EventTypeResourceQuantityAdjusted = "ResourceQuantityAdjusted"

	resourceCreatedSchema          = "panel.resource.created.v1"
	resourceQuantityAdjustedSchema = "panel.resource.quantity_adjusted.v1"
)

type ResourceCreatedPayload struct {
	Name      string    `json:"name"`
	MaxUnits  int       `json:"maxUnits"`
	Actor     string    `json:"actor,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type ResourceQuantityAdjustedPayload struct {
	Name      string    `json:"name"`
	Change    int       `json:"change"`
	Actor     string    `json:"actor,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type EventMeta struct {
	CorrelationID string
	Actor         string
}

func newEnvelope(name, schema, producer, partitionKey string, meta EventMeta, payload any, occurredAt time.Time) (EventEnvelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return EventEnvelope{}, fmt.Errorf("marshal %s payload: %w", name, err)
	}
	return EventEnvelope{
		EventName:     name,
		EventVersion:  1,
		EventID:       uuid.NewString(),
		CorrelationID: meta.CorrelationID,
		Producer:      producer,
		PartitionKey:  partitionKey,
		OccurredAt:    occurredAt,
		Schema:        schema,
		Payload:       raw,
	}, nil
}

func newResourceCreatedEvent(meta EventMeta, producer string, payload ResourceCreatedPayload) (EventEnvelope, error) {
	return newEnvelope(EventTypeResourceCreated, resourceCreatedSchema, producer, payload.Name, meta, payload, payload.Timestamp)
}

func newQuantityAdjustedEvent(meta EventMeta, producer string, payload ResourceQuantityAdjustedPayload) (EventEnvelope, error) {
	return newEnvelope(EventTypeResourceQuantityAdjusted, resourceQuantityAdjustedSchema, producer, payload.Name, meta, payload, payload.Timestamp)
}
