package domain

import (
	"errors"
	"time"

	"github.com/matchmint/engine/internal/board"
)

// Phase describes the lifecycle state of a session.
type Phase int

const (
	// PhaseUnspecified represents an invalid phase value.
	PhaseUnspecified Phase = iota
	// PhaseAwaitingOpponent indicates a duo session waiting for its
	// second player. No pairs may be submitted yet.
	PhaseAwaitingOpponent
	// PhaseInProgress indicates a playable session.
	PhaseInProgress
	// PhaseCompleted indicates a fully revealed board. Completed
	// sessions are retained for reads and never mutate again.
	PhaseCompleted
)

// String returns a stable label for the phase.
func (p Phase) String() string {
	switch p {
	case PhaseAwaitingOpponent:
		return "AWAITING_OPPONENT"
	case PhaseInProgress:
		return "IN_PROGRESS"
	case PhaseCompleted:
		return "COMPLETED"
	default:
		return "UNSPECIFIED"
	}
}

var (
	// ErrEmptyPlayer indicates a missing player identity.
	ErrEmptyPlayer = errors.New("player identity is required")
	// ErrSessionInactive indicates an operation on a completed session.
	ErrSessionInactive = errors.New("session is no longer active")
	// ErrSessionFull indicates a join on a session with both seats bound.
	ErrSessionFull = errors.New("session already has two players")
	// ErrSelfJoin indicates the creator attempting to join their own session.
	ErrSelfJoin = errors.New("creator cannot join their own session")
	// ErrAwaitingOpponent indicates a pair submission before the second
	// player has joined a duo session.
	ErrAwaitingOpponent = errors.New("session is waiting for an opponent")
	// ErrNotYourTurn indicates a pair submission by the wrong player.
	ErrNotYourTurn = errors.New("it is not this player's turn")
	// ErrIndexOutOfRange indicates a card index outside the board.
	ErrIndexOutOfRange = errors.New("card index is out of range")
	// ErrDuplicateIndex indicates a pair submission with i == j.
	ErrDuplicateIndex = errors.New("card indices must differ")
	// ErrAlreadyMatched indicates a card that was already revealed.
	ErrAlreadyMatched = errors.New("card is already matched")
	// ErrNotParticipant indicates a board read by a non-participant.
	ErrNotParticipant = errors.New("caller is not a session participant")
)

// Session is one memory-match game between one or two players.
//
// The board is populated once at creation and never changes. The
// reveal mask is monotonic: a revealed position never hides again.
// The session id is assigned by the session store on first persist
// and is never zero.
type Session struct {
	ID          uint64
	First       string
	Second      string // equal to First in solo mode
	TurnHolder  string
	Board       board.Board
	Revealed    [board.Size]bool
	FirstCount  int
	SecondCount int
	Solo        bool
	Phase       Phase
	Winner      string // set on completion
	WinnerCount int
	BonusPaid   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Active reports whether the session still accepts gameplay calls or
// is waiting to. It is true from creation until completion.
func (s *Session) Active() bool {
	return s.Phase == PhaseAwaitingOpponent || s.Phase == PhaseInProgress
}

// Participant reports whether the identity is bound to the session.
func (s *Session) Participant(caller string) bool {
	return caller != "" && (caller == s.First || caller == s.Second)
}

// RevealedCount returns the number of revealed positions.
func (s *Session) RevealedCount() int {
	count := 0
	for _, r := range s.Revealed {
		if r {
			count++
		}
	}
	return count
}

// CreateSessionInput describes the inputs needed to create a session.
type CreateSessionInput struct {
	Seed    int64
	Creator string
	Solo    bool
}

// CreateSession builds a new session with a shuffled board.
//
// The board is fully determined by the seed. In solo mode the creator
// occupies both seats so turn-ownership checks always pass for the
// lone player; otherwise the session waits for a second player. The
// caller persists the result; the store assigns the id.
func CreateSession(input CreateSessionInput, now func() time.Time) (Session, error) {
	if now == nil {
		now = time.Now
	}
	if input.Creator == "" {
		return Session{}, ErrEmptyPlayer
	}

	createdAt := now().UTC()
	session := Session{
		First:      input.Creator,
		TurnHolder: input.Creator,
		Board:      board.Shuffle(input.Seed),
		Solo:       input.Solo,
		Phase:      PhaseAwaitingOpponent,
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
	}
	if input.Solo {
		session.Second = input.Creator
		session.Phase = PhaseInProgress
	}
	return session, nil
}

// Join binds the second player to a duo session.
//
// Precondition order matches the boundary contract: inactive first,
// then full, then self-join. A failed join leaves the session as is.
func (s *Session) Join(joiner string, now func() time.Time) error {
	if now == nil {
		now = time.Now
	}
	if joiner == "" {
		return ErrEmptyPlayer
	}
	if s.Phase == PhaseCompleted {
		return ErrSessionInactive
	}
	if s.Phase != PhaseAwaitingOpponent {
		return ErrSessionFull
	}
	if joiner == s.First {
		return ErrSelfJoin
	}

	s.Second = joiner
	s.Phase = PhaseInProgress
	s.UpdatedAt = now().UTC()
	return nil
}
