package telemetry

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/matchmint/engine/internal/game/domain"
	"github.com/matchmint/engine/internal/storage/memory"
)

func TestEmitStampsAndPersists(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	emitter := NewEmitter(store)
	emitter.clock = func() time.Time {
		return time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)
	}

	err := emitter.Emit(ctx, domain.Event{
		SessionID: 4,
		Type:      domain.EventPlayerJoined,
		Payload:   domain.PlayerJoinedPayload{Player: "bob"},
	})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}

	records, err := store.ListEvents(ctx, 4, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected one record, got %d", len(records))
	}
	record := records[0]
	if record.Seq != 1 || record.Type != string(domain.EventPlayerJoined) {
		t.Fatalf("unexpected record: %+v", record)
	}
	if !record.Timestamp.Equal(time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)) {
		t.Fatalf("missing clock stamp: %v", record.Timestamp)
	}

	var payload domain.PlayerJoinedPayload
	if err := json.Unmarshal(record.PayloadJSON, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.Player != "bob" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestEmitAllPreservesOrder(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	emitter := NewEmitter(store)

	events := []domain.Event{
		{SessionID: 1, Type: domain.EventCardFlipped, Payload: domain.CardFlippedPayload{Index: 0}},
		{SessionID: 1, Type: domain.EventCardFlipped, Payload: domain.CardFlippedPayload{Index: 5}},
		{SessionID: 1, Type: domain.EventPairMismatched, Payload: domain.PairMismatchedPayload{IndexA: 0, IndexB: 5}},
	}
	if err := emitter.EmitAll(ctx, events); err != nil {
		t.Fatalf("emit all: %v", err)
	}

	records, err := store.ListEvents(ctx, 1, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected three records, got %d", len(records))
	}
	for i, record := range records {
		if record.Seq != uint64(i+1) {
			t.Fatalf("record %d has seq %d", i, record.Seq)
		}
	}
	if records[2].Type != string(domain.EventPairMismatched) {
		t.Fatalf("order lost: %+v", records)
	}
}

func TestEmitNilEmitterIsNoOp(t *testing.T) {
	var emitter *Emitter
	if err := emitter.Emit(context.Background(), domain.Event{}); err != nil {
		t.Fatalf("nil emitter must be silent, got %v", err)
	}
}
