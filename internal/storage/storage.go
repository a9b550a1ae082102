package storage

import (
	"context"
	"errors"
	"time"

	"github.com/matchmint/engine/internal/game/domain"
	"github.com/matchmint/engine/internal/ledger"
)

// ErrNotFound indicates a requested record is missing.
var ErrNotFound = errors.New("record not found")

// ErrInsufficientBalance indicates a transfer exceeding the source
// balance. The failed transfer is a no-op on both balances.
var ErrInsufficientBalance = errors.New("insufficient balance")

// SessionStore persists game sessions.
//
// CreateSession assigns the session id: a positive integer strictly
// greater than every id it has issued before. Sessions are never
// deleted; completed sessions stay readable.
type SessionStore interface {
	CreateSession(ctx context.Context, session domain.Session) (uint64, error)
	GetSession(ctx context.Context, id uint64) (domain.Session, error)
	PutSession(ctx context.Context, session domain.Session) error
	// ListSessions returns up to limit sessions with ids greater than
	// afterID, in ascending id order.
	ListSessions(ctx context.Context, afterID uint64, limit int) ([]domain.Session, error)
}

// LedgerStore persists token balances.
//
// Mutations for a given (address, kind) entry are atomic with respect
// to concurrent mints and transfers touching the same entry. Balances
// never go negative, and the total minted per kind is invariant across
// transfers.
type LedgerStore interface {
	Balance(ctx context.Context, address string, kind ledger.Kind) (int64, error)
	Mint(ctx context.Context, address string, kind ledger.Kind, amount int64) error
	Transfer(ctx context.Context, from, to string, kind ledger.Kind, amount int64) error
	// TotalMinted returns the cumulative minted supply for a kind.
	TotalMinted(ctx context.Context, kind ledger.Kind) (int64, error)
}

// EventRecord is one persisted gameplay observation. Seq is assigned
// by the store, monotonically per session, in append order.
type EventRecord struct {
	SessionID   uint64
	Seq         uint64
	Type        string
	Timestamp   time.Time
	PayloadJSON []byte
}

// EventStore persists the per-session event log.
type EventStore interface {
	// AppendEvent stores the record and returns its assigned sequence.
	AppendEvent(ctx context.Context, record EventRecord) (uint64, error)
	// ListEvents returns up to limit records for a session in
	// ascending sequence order.
	ListEvents(ctx context.Context, sessionID uint64, limit int) ([]EventRecord, error)
}
