package events

import (
	"encoding/json"
	"fmt"
)

func parseEnvelope(body []byte) (EventEnvelope, error) {
	var env EventEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return EventEnvelope{}, err
	}
	return env, nil
}

func validateQuantityAdjusted(env EventEnvelope) error {
	if err := env.Validate(EventTypeResourceQuantityAdjusted, 1); err != nil {
		return err
	}
	var p ResourceQuantityAdjustedPayload
	if err := json.Unmarshal(env.Payload, &p); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	if p.Name == "" {
		return fmt.Errorf("missing name")
	}
	if p.Change == 0 {
		return fmt.Errorf("change must be non-zero")
	}
	return nil
}
