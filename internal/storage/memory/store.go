// Package memory provides a mutex-guarded in-memory storage
// implementation. It is the reference store for tests and the default
// runtime when no database path is configured.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/matchmint/engine/internal/game/domain"
	"github.com/matchmint/engine/internal/ledger"
	"github.com/matchmint/engine/internal/storage"
)

type balanceKey struct {
	address string
	kind    ledger.Kind
}

// Store keeps sessions, balances, and events in process memory.
type Store struct {
	mu       sync.Mutex
	nextID   uint64
	sessions map[uint64]domain.Session
	balances map[balanceKey]int64
	minted   map[ledger.Kind]int64
	events   map[uint64][]storage.EventRecord
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		nextID:   1,
		sessions: make(map[uint64]domain.Session),
		balances: make(map[balanceKey]int64),
		minted:   make(map[ledger.Kind]int64),
		events:   make(map[uint64][]storage.EventRecord),
	}
}

// CreateSession assigns the next id and stores the session.
func (s *Store) CreateSession(ctx context.Context, session domain.Session) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	session.ID = s.nextID
	s.nextID++
	s.sessions[session.ID] = session
	return session.ID, nil
}

// GetSession returns a session by id.
func (s *Store) GetSession(ctx context.Context, id uint64) (domain.Session, error) {
	if err := ctx.Err(); err != nil {
		return domain.Session{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return domain.Session{}, storage.ErrNotFound
	}
	return session, nil
}

// PutSession overwrites a previously created session.
func (s *Store) PutSession(ctx context.Context, session domain.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[session.ID]; !ok {
		return storage.ErrNotFound
	}
	s.sessions[session.ID] = session
	return nil
}

// ListSessions returns up to limit sessions after the given id.
func (s *Store) ListSessions(ctx context.Context, afterID uint64, limit int) ([]domain.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]uint64, 0, len(s.sessions))
	for id := range s.sessions {
		if id > afterID {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}

	sessions := make([]domain.Session, 0, len(ids))
	for _, id := range ids {
		sessions = append(sessions, s.sessions[id])
	}
	return sessions, nil
}

// Balance returns the balance for an (address, kind) entry.
func (s *Store) Balance(ctx context.Context, address string, kind ledger.Kind) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balances[balanceKey{address: address, kind: kind}], nil
}

// Mint increases a balance and the minted supply for the kind.
func (s *Store) Mint(ctx context.Context, address string, kind ledger.Kind, amount int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if amount < 0 {
		return ledger.ErrNegativeAmount
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.balances[balanceKey{address: address, kind: kind}] += amount
	s.minted[kind] += amount
	return nil
}

// Transfer atomically moves amount between two addresses.
func (s *Store) Transfer(ctx context.Context, from, to string, kind ledger.Kind, amount int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if amount < 0 {
		return ledger.ErrNegativeAmount
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	fromKey := balanceKey{address: from, kind: kind}
	if s.balances[fromKey] < amount {
		return storage.ErrInsufficientBalance
	}
	s.balances[fromKey] -= amount
	s.balances[balanceKey{address: to, kind: kind}] += amount
	return nil
}

// TotalMinted returns the cumulative minted supply for a kind.
func (s *Store) TotalMinted(ctx context.Context, kind ledger.Kind) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.minted[kind], nil
}

// AppendEvent assigns the next per-session sequence and stores the record.
func (s *Store) AppendEvent(ctx context.Context, record storage.EventRecord) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	record.Seq = uint64(len(s.events[record.SessionID])) + 1
	s.events[record.SessionID] = append(s.events[record.SessionID], record)
	return record.Seq, nil
}

// ListEvents returns up to limit records for a session in sequence order.
func (s *Store) ListEvents(ctx context.Context, sessionID uint64, limit int) ([]storage.EventRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	records := s.events[sessionID]
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	out := make([]storage.EventRecord, len(records))
	copy(out, records)
	return out, nil
}
