package domain

import (
	"time"

	"github.com/matchmint/engine/internal/board"
)

// EventType identifies an observable gameplay event.
type EventType string

const (
	// EventSessionCreated records a new session and its creator.
	EventSessionCreated EventType = "SESSION_CREATED"
	// EventPlayerJoined records the second player binding to a session.
	EventPlayerJoined EventType = "PLAYER_JOINED"
	// EventCardFlipped records one card being turned face up. Two of
	// these precede every match or mismatch event.
	EventCardFlipped EventType = "CARD_FLIPPED"
	// EventPairMatched records a successful match and its rewards.
	EventPairMatched EventType = "PAIR_MATCHED"
	// EventPairMismatched records a failed match and the next turn.
	EventPairMismatched EventType = "PAIR_MISMATCHED"
	// EventSessionCompleted records the final board reveal and payout.
	EventSessionCompleted EventType = "SESSION_COMPLETED"
	// EventPoolToppedUp records an administrative pool mint.
	EventPoolToppedUp EventType = "POOL_TOPPED_UP"
)

// Event is one observation appended to a session's event log. Seq is
// assigned by the event store, monotonically per session, preserving
// the order events were produced in.
type Event struct {
	SessionID uint64
	Seq       uint64
	Type      EventType
	Timestamp time.Time
	Payload   any
}

// SessionCreatedPayload describes a SESSION_CREATED event.
type SessionCreatedPayload struct {
	Creator string `json:"creator"`
	Solo    bool   `json:"solo"`
}

// PlayerJoinedPayload describes a PLAYER_JOINED event.
type PlayerJoinedPayload struct {
	Player string `json:"player"`
}

// CardFlippedPayload describes a CARD_FLIPPED event.
type CardFlippedPayload struct {
	Player string       `json:"player"`
	Index  int          `json:"index"`
	Symbol board.Symbol `json:"symbol"`
}

// PairMatchedPayload describes a PAIR_MATCHED event.
type PairMatchedPayload struct {
	Player        string       `json:"player"`
	Symbol        board.Symbol `json:"symbol"`
	CreditsMinted int64        `json:"credits_minted"`
	Collectible   uint8        `json:"collectible_kind"`
}

// PairMismatchedPayload describes a PAIR_MISMATCHED event.
type PairMismatchedPayload struct {
	IndexA   int    `json:"index_a"`
	IndexB   int    `json:"index_b"`
	NextTurn string `json:"next_turn"`
}

// SessionCompletedPayload describes a SESSION_COMPLETED event.
type SessionCompletedPayload struct {
	Winner    string `json:"winner"`
	Pairs     int    `json:"pairs"`
	BonusPaid bool   `json:"bonus_paid"`
}

// PoolToppedUpPayload describes a POOL_TOPPED_UP event.
type PoolToppedUpPayload struct {
	Amount int64 `json:"amount"`
}
