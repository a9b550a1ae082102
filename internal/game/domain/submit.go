package domain

import (
	"time"

	"github.com/matchmint/engine/internal/board"
)

// Flip records one card being turned face up during a submission. The
// symbol is exposed to the caller even on a mismatch: the card has
// been seen.
type Flip struct {
	Index  int
	Symbol board.Symbol
}

// SubmitOutcome is the result of a successful pair submission.
type SubmitOutcome struct {
	Flips   [2]Flip
	Matched bool
	// Symbol is the matched symbol, or SymbolNone on a mismatch.
	Symbol board.Symbol
	// NextTurn is the turn holder after this submission.
	NextTurn string
	// Completed is true when this submission revealed the final pair.
	Completed bool
	// Winner and WinnerCount are set only when Completed is true.
	Winner      string
	WinnerCount int
}

// SubmitPair evaluates one pair submission against the session.
//
// All preconditions are checked before any mutation, each with its own
// sentinel error, so a failed call is a no-op on state. On a match the
// two positions are revealed permanently and the caller's pair count
// increments; the turn does not advance. On a mismatch nothing changes
// except the turn, which flips to the other player in duo mode. When
// the final pair is revealed the session completes in the same call:
// the player with the strictly greater pair count wins, and an exact
// tie goes to the first player by contract.
func (s *Session) SubmitPair(caller string, i, j int, now func() time.Time) (SubmitOutcome, error) {
	if now == nil {
		now = time.Now
	}
	if s.Phase == PhaseCompleted {
		return SubmitOutcome{}, ErrSessionInactive
	}
	if s.Phase == PhaseAwaitingOpponent {
		return SubmitOutcome{}, ErrAwaitingOpponent
	}
	if caller != s.TurnHolder {
		return SubmitOutcome{}, ErrNotYourTurn
	}
	if i < 0 || i >= board.Size || j < 0 || j >= board.Size {
		return SubmitOutcome{}, ErrIndexOutOfRange
	}
	if i == j {
		return SubmitOutcome{}, ErrDuplicateIndex
	}
	if s.Revealed[i] || s.Revealed[j] {
		return SubmitOutcome{}, ErrAlreadyMatched
	}

	outcome := SubmitOutcome{
		Flips: [2]Flip{
			{Index: i, Symbol: s.Board[i]},
			{Index: j, Symbol: s.Board[j]},
		},
	}

	if s.Board[i] == s.Board[j] {
		s.Revealed[i] = true
		s.Revealed[j] = true
		if caller == s.First {
			s.FirstCount++
		} else {
			s.SecondCount++
		}
		outcome.Matched = true
		outcome.Symbol = s.Board[i]
		outcome.NextTurn = s.TurnHolder

		if s.RevealedCount() == board.Size {
			s.resolveCompletion()
			outcome.Completed = true
			outcome.Winner = s.Winner
			outcome.WinnerCount = s.WinnerCount
		}
	} else {
		outcome.Symbol = board.SymbolNone
		if !s.Solo {
			if s.TurnHolder == s.First {
				s.TurnHolder = s.Second
			} else {
				s.TurnHolder = s.First
			}
		}
		outcome.NextTurn = s.TurnHolder
	}

	s.UpdatedAt = now().UTC()
	return outcome, nil
}

// resolveCompletion marks the session completed and decides the winner.
// Reached at most once per session: further submissions fail the
// inactive precondition.
func (s *Session) resolveCompletion() {
	s.Phase = PhaseCompleted
	if s.SecondCount > s.FirstCount {
		s.Winner = s.Second
		s.WinnerCount = s.SecondCount
	} else {
		// Strictly greater first count, or the disclosed tie-break:
		// ties go to the first player.
		s.Winner = s.First
		s.WinnerCount = s.FirstCount
	}
}
