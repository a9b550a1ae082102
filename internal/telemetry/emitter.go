// Package telemetry records gameplay observations to the event store.
package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/matchmint/engine/internal/game/domain"
	"github.com/matchmint/engine/internal/storage"
)

// Emitter appends gameplay events to a session's event log, preserving
// the order they were produced in.
type Emitter struct {
	store storage.EventStore
	clock func() time.Time
}

// NewEmitter creates a new telemetry emitter.
func NewEmitter(store storage.EventStore) *Emitter {
	return &Emitter{store: store, clock: time.Now}
}

// Emit records a single event. It is a no-op when the store is nil.
func (e *Emitter) Emit(ctx context.Context, event domain.Event) error {
	if e == nil || e.store == nil {
		return nil
	}
	if event.Timestamp.IsZero() {
		if e.clock == nil {
			event.Timestamp = time.Now().UTC()
		} else {
			event.Timestamp = e.clock().UTC()
		}
	}

	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("marshal event payload: %w", err)
	}
	_, err = e.store.AppendEvent(ctx, storage.EventRecord{
		SessionID:   event.SessionID,
		Type:        string(event.Type),
		Timestamp:   event.Timestamp,
		PayloadJSON: payload,
	})
	if err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	return nil
}

// EmitAll records events in order, stopping at the first failure.
func (e *Emitter) EmitAll(ctx context.Context, events []domain.Event) error {
	for _, event := range events {
		if err := e.Emit(ctx, event); err != nil {
			return err
		}
	}
	return nil
}
