// Package sqlite provides a SQLite-backed engine storage implementation.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/matchmint/engine/internal/board"
	"github.com/matchmint/engine/internal/game/domain"
	"github.com/matchmint/engine/internal/ledger"
	"github.com/matchmint/engine/internal/platform/storage/sqlitemigrate"
	"github.com/matchmint/engine/internal/storage"
	"github.com/matchmint/engine/internal/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store persists sessions, balances, and events in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite engine store and applies embedded migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.Apply(ctx, sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func encodeBoard(b board.Board) []byte {
	out := make([]byte, board.Size)
	for i, symbol := range b {
		out[i] = byte(symbol)
	}
	return out
}

func decodeBoard(data []byte) (board.Board, error) {
	var b board.Board
	if len(data) != board.Size {
		return b, fmt.Errorf("board blob has %d bytes, want %d", len(data), board.Size)
	}
	for i, value := range data {
		b[i] = board.Symbol(value)
	}
	return b, nil
}

func encodeMask(revealed [board.Size]bool) int64 {
	var mask int64
	for i, r := range revealed {
		if r {
			mask |= 1 << i
		}
	}
	return mask
}

func decodeMask(mask int64) [board.Size]bool {
	var revealed [board.Size]bool
	for i := range revealed {
		revealed[i] = mask&(1<<i) != 0
	}
	return revealed
}

func boolToInt(value bool) int64 {
	if value {
		return 1
	}
	return 0
}

// CreateSession inserts a session row; SQLite assigns the id.
func (s *Store) CreateSession(ctx context.Context, session domain.Session) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}

	result, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO sessions (
		   first_player, second_player, turn_holder, board, revealed,
		   first_count, second_count, solo, phase, winner, winner_count,
		   bonus_paid, created_at, updated_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		session.First,
		session.Second,
		session.TurnHolder,
		encodeBoard(session.Board),
		encodeMask(session.Revealed),
		session.FirstCount,
		session.SecondCount,
		boolToInt(session.Solo),
		int64(session.Phase),
		session.Winner,
		session.WinnerCount,
		boolToInt(session.BonusPaid),
		toMillis(session.CreatedAt),
		toMillis(session.UpdatedAt),
	)
	if err != nil {
		return 0, fmt.Errorf("create session: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("session id: %w", err)
	}
	return uint64(id), nil
}

const sessionColumns = `id, first_player, second_player, turn_holder, board, revealed,
       first_count, second_count, solo, phase, winner, winner_count,
       bonus_paid, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (domain.Session, error) {
	var session domain.Session
	var boardBlob []byte
	var mask int64
	var solo, phase, bonusPaid int64
	var createdAt, updatedAt int64
	err := row.Scan(
		&session.ID,
		&session.First,
		&session.Second,
		&session.TurnHolder,
		&boardBlob,
		&mask,
		&session.FirstCount,
		&session.SecondCount,
		&solo,
		&phase,
		&session.Winner,
		&session.WinnerCount,
		&bonusPaid,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return domain.Session{}, err
	}
	session.Board, err = decodeBoard(boardBlob)
	if err != nil {
		return domain.Session{}, err
	}
	session.Revealed = decodeMask(mask)
	session.Solo = solo != 0
	session.Phase = domain.Phase(phase)
	session.BonusPaid = bonusPaid != 0
	session.CreatedAt = fromMillis(createdAt)
	session.UpdatedAt = fromMillis(updatedAt)
	return session, nil
}

// GetSession returns a session by id.
func (s *Store) GetSession(ctx context.Context, id uint64) (domain.Session, error) {
	if err := ctx.Err(); err != nil {
		return domain.Session{}, err
	}
	if s == nil || s.sqlDB == nil {
		return domain.Session{}, fmt.Errorf("storage is not configured")
	}

	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id)
	session, err := scanSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Session{}, storage.ErrNotFound
		}
		return domain.Session{}, fmt.Errorf("get session: %w", err)
	}
	return session, nil
}

// PutSession overwrites a previously created session.
func (s *Store) PutSession(ctx context.Context, session domain.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}

	result, err := s.sqlDB.ExecContext(
		ctx,
		`UPDATE sessions SET
		   first_player = ?, second_player = ?, turn_holder = ?, board = ?,
		   revealed = ?, first_count = ?, second_count = ?, solo = ?,
		   phase = ?, winner = ?, winner_count = ?, bonus_paid = ?,
		   created_at = ?, updated_at = ?
		 WHERE id = ?`,
		session.First,
		session.Second,
		session.TurnHolder,
		encodeBoard(session.Board),
		encodeMask(session.Revealed),
		session.FirstCount,
		session.SecondCount,
		boolToInt(session.Solo),
		int64(session.Phase),
		session.Winner,
		session.WinnerCount,
		boolToInt(session.BonusPaid),
		toMillis(session.CreatedAt),
		toMillis(session.UpdatedAt),
		session.ID,
	)
	if err != nil {
		return fmt.Errorf("put session: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("put session: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ListSessions returns up to limit sessions with ids above afterID in
// ascending order.
func (s *Store) ListSessions(ctx context.Context, afterID uint64, limit int) ([]domain.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if limit <= 0 {
		limit = -1 // SQLite treats a negative LIMIT as unbounded
	}

	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE id > ? ORDER BY id ASC LIMIT ?`,
		afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []domain.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("list sessions: %w", err)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

// Balance returns the balance for an (address, kind) entry.
func (s *Store) Balance(ctx context.Context, address string, kind ledger.Kind) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}

	var amount int64
	row := s.sqlDB.QueryRowContext(ctx,
		"SELECT amount FROM balances WHERE address = ? AND kind = ?",
		address, int64(kind))
	if err := row.Scan(&amount); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("read balance: %w", err)
	}
	return amount, nil
}

// Mint increases a balance and the minted supply for the kind in one
// transaction.
func (s *Store) Mint(ctx context.Context, address string, kind ledger.Kind, amount int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if amount < 0 {
		return ledger.ErrNegativeAmount
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin mint: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO balances (address, kind, amount) VALUES (?, ?, ?)
		 ON CONFLICT (address, kind) DO UPDATE SET amount = amount + excluded.amount`,
		address, int64(kind), amount)
	if err != nil {
		return fmt.Errorf("mint balance: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO minted (kind, total) VALUES (?, ?)
		 ON CONFLICT (kind) DO UPDATE SET total = total + excluded.total`,
		int64(kind), amount)
	if err != nil {
		return fmt.Errorf("mint supply: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit mint: %w", err)
	}
	return nil
}

// Transfer atomically moves amount between two addresses.
func (s *Store) Transfer(ctx context.Context, from, to string, kind ledger.Kind, amount int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if amount < 0 {
		return ledger.ErrNegativeAmount
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transfer: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var available int64
	row := tx.QueryRowContext(ctx,
		"SELECT amount FROM balances WHERE address = ? AND kind = ?",
		from, int64(kind))
	if err := row.Scan(&available); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("read sender balance: %w", err)
	}
	if available < amount {
		return storage.ErrInsufficientBalance
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE balances SET amount = amount - ? WHERE address = ? AND kind = ?",
		amount, from, int64(kind))
	if err != nil {
		return fmt.Errorf("debit sender: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO balances (address, kind, amount) VALUES (?, ?, ?)
		 ON CONFLICT (address, kind) DO UPDATE SET amount = amount + excluded.amount`,
		to, int64(kind), amount)
	if err != nil {
		return fmt.Errorf("credit receiver: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transfer: %w", err)
	}
	return nil
}

// TotalMinted returns the cumulative minted supply for a kind.
func (s *Store) TotalMinted(ctx context.Context, kind ledger.Kind) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}

	var total int64
	row := s.sqlDB.QueryRowContext(ctx,
		"SELECT total FROM minted WHERE kind = ?", int64(kind))
	if err := row.Scan(&total); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("read minted supply: %w", err)
	}
	return total, nil
}

// AppendEvent assigns the next per-session sequence and inserts the
// record in one transaction.
func (s *Store) AppendEvent(ctx context.Context, record storage.EventRecord) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin append: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var seq uint64
	row := tx.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(seq), 0) + 1 FROM events WHERE session_id = ?",
		record.SessionID)
	if err := row.Scan(&seq); err != nil {
		return 0, fmt.Errorf("next event seq: %w", err)
	}

	payload := record.PayloadJSON
	if len(payload) == 0 {
		payload = []byte("{}")
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO events (session_id, seq, event_type, occurred_at, payload)
		 VALUES (?, ?, ?, ?, ?)`,
		record.SessionID, seq, record.Type, toMillis(record.Timestamp), string(payload))
	if err != nil {
		return 0, fmt.Errorf("append event: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit append: %w", err)
	}
	return seq, nil
}

// ListEvents returns up to limit records for a session in sequence order.
func (s *Store) ListEvents(ctx context.Context, sessionID uint64, limit int) ([]storage.EventRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT session_id, seq, event_type, occurred_at, payload
		   FROM events WHERE session_id = ? ORDER BY seq ASC LIMIT ?`,
		sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var records []storage.EventRecord
	for rows.Next() {
		var record storage.EventRecord
		var occurredAt int64
		var payload string
		if err := rows.Scan(&record.SessionID, &record.Seq, &record.Type, &occurredAt, &payload); err != nil {
			return nil, fmt.Errorf("list events: %w", err)
		}
		record.Timestamp = fromMillis(occurredAt)
		record.PayloadJSON = []byte(payload)
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return records, nil
}

var _ storage.SessionStore = (*Store)(nil)
var _ storage.LedgerStore = (*Store)(nil)
var _ storage.EventStore = (*Store)(nil)
