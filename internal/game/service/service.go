// Package service orchestrates the memory-match engine: it composes
// the session state machine, the board shuffle, the reward ledger, and
// the event log behind the boundary operations clients call.
//
// The service assumes the host serializes calls per session (spec'd as
// one call at a time against the same pre-state); it looks sessions up
// by id on every call and never hands out live references.
package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/matchmint/engine/internal/board"
	"github.com/matchmint/engine/internal/game/domain"
	"github.com/matchmint/engine/internal/ledger"
	perrors "github.com/matchmint/engine/internal/platform/errors"
	"github.com/matchmint/engine/internal/storage"
	"github.com/matchmint/engine/internal/telemetry"
)

// Stores groups the storage interfaces the service depends on.
type Stores struct {
	Sessions storage.SessionStore
	Ledger   storage.LedgerStore
	Events   storage.EventStore
}

// Service implements the engine's boundary operations.
type Service struct {
	stores    Stores
	emitter   *telemetry.Emitter
	authority string
	clock     func() time.Time
}

// New creates a Service. The authority is the identity whose fungible
// balance funds completion bonuses and who may top up the pool.
func New(stores Stores, authority string) *Service {
	return &Service{
		stores:    stores,
		emitter:   telemetry.NewEmitter(stores.Events),
		authority: authority,
		clock:     time.Now,
	}
}

// Authority returns the pool authority identity.
func (s *Service) Authority() string {
	return s.authority
}

// InitializePool mints the initial credit supply to the pool authority.
// It is idempotent across restarts: nothing is minted when the credit
// supply already exists.
func (s *Service) InitializePool(ctx context.Context) error {
	minted, err := s.stores.Ledger.TotalMinted(ctx, ledger.KindCredit)
	if err != nil {
		return fmt.Errorf("check credit supply: %w", err)
	}
	if minted > 0 {
		return nil
	}
	if err := s.stores.Ledger.Mint(ctx, s.authority, ledger.KindCredit, domain.InitialPoolSupply); err != nil {
		return fmt.Errorf("mint initial pool: %w", err)
	}
	return nil
}

// CreateSessionParams describes a session creation request.
type CreateSessionParams struct {
	Seed    int64
	Creator string
	Solo    bool
}

// CreateSession shuffles a board from the seed and persists a new
// session. The store assigns the id, strictly increasing from 1.
func (s *Service) CreateSession(ctx context.Context, params CreateSessionParams) (domain.Session, error) {
	session, err := domain.CreateSession(domain.CreateSessionInput{
		Seed:    params.Seed,
		Creator: params.Creator,
		Solo:    params.Solo,
	}, s.clock)
	if err != nil {
		return domain.Session{}, mapDomainErr(err)
	}

	id, err := s.stores.Sessions.CreateSession(ctx, session)
	if err != nil {
		return domain.Session{}, perrors.Wrap(perrors.CodeUnknown, "persist session", err)
	}
	session.ID = id

	// Event log is best-effort relative to session state.
	_ = s.emitter.Emit(ctx, domain.Event{
		SessionID: id,
		Type:      domain.EventSessionCreated,
		Payload:   domain.SessionCreatedPayload{Creator: params.Creator, Solo: params.Solo},
	})
	return session, nil
}

// JoinSession binds the second player to a duo session.
func (s *Service) JoinSession(ctx context.Context, sessionID uint64, joiner string) (domain.Session, error) {
	session, err := s.getSession(ctx, sessionID)
	if err != nil {
		return domain.Session{}, err
	}
	if err := session.Join(joiner, s.clock); err != nil {
		return domain.Session{}, mapDomainErr(err)
	}
	if err := s.stores.Sessions.PutSession(ctx, session); err != nil {
		return domain.Session{}, perrors.Wrap(perrors.CodeUnknown, "persist session", err)
	}

	_ = s.emitter.Emit(ctx, domain.Event{
		SessionID: sessionID,
		Type:      domain.EventPlayerJoined,
		Payload:   domain.PlayerJoinedPayload{Player: joiner},
	})
	return session, nil
}

// SubmitResult is the outcome of a pair submission, together with the
// observations the call produced, in emission order.
type SubmitResult struct {
	Matched bool
	// Symbol is the matched symbol, or SymbolNone on a mismatch.
	Symbol    board.Symbol
	Session   domain.Session
	Completed bool
	Winner    string
	BonusPaid bool
	Events    []domain.Event
}

// SubmitPair evaluates one pair submission.
//
// On a match the caller is minted one collectible of the matched kind
// and the fixed credit reward; the turn stays with the caller. On a
// mismatch the turn passes in duo mode. When the final pair is
// revealed the session completes in the same call and the completion
// bonus is transferred from the pool authority to the winner — unless
// the pool cannot cover it, in which case the bonus is skipped and
// only the completion observation says so.
func (s *Service) SubmitPair(ctx context.Context, sessionID uint64, caller string, i, j int) (SubmitResult, error) {
	session, err := s.getSession(ctx, sessionID)
	if err != nil {
		return SubmitResult{}, err
	}

	outcome, err := session.SubmitPair(caller, i, j, s.clock)
	if err != nil {
		return SubmitResult{}, mapDomainErr(err)
	}

	events := make([]domain.Event, 0, 4)
	for _, flip := range outcome.Flips {
		events = append(events, domain.Event{
			SessionID: sessionID,
			Type:      domain.EventCardFlipped,
			Payload:   domain.CardFlippedPayload{Player: caller, Index: flip.Index, Symbol: flip.Symbol},
		})
	}

	result := SubmitResult{
		Matched: outcome.Matched,
		Symbol:  outcome.Symbol,
	}

	if outcome.Matched {
		collectible, err := ledger.CollectibleFor(outcome.Symbol)
		if err != nil {
			return SubmitResult{}, perrors.Wrap(perrors.CodeUnknown, "resolve collectible kind", err)
		}
		if err := s.stores.Ledger.Mint(ctx, caller, collectible, 1); err != nil {
			return SubmitResult{}, perrors.Wrap(perrors.CodeUnknown, "mint collectible", err)
		}
		if err := s.stores.Ledger.Mint(ctx, caller, ledger.KindCredit, domain.RewardPerMatch); err != nil {
			return SubmitResult{}, perrors.Wrap(perrors.CodeUnknown, "mint reward credits", err)
		}
		events = append(events, domain.Event{
			SessionID: sessionID,
			Type:      domain.EventPairMatched,
			Payload: domain.PairMatchedPayload{
				Player:        caller,
				Symbol:        outcome.Symbol,
				CreditsMinted: domain.RewardPerMatch,
				Collectible:   uint8(collectible),
			},
		})
	} else {
		events = append(events, domain.Event{
			SessionID: sessionID,
			Type:      domain.EventPairMismatched,
			Payload: domain.PairMismatchedPayload{
				IndexA:   i,
				IndexB:   j,
				NextTurn: outcome.NextTurn,
			},
		})
	}

	if outcome.Completed {
		bonusPaid, err := s.payBonus(ctx, outcome.Winner)
		if err != nil {
			return SubmitResult{}, err
		}
		session.BonusPaid = bonusPaid
		result.Completed = true
		result.Winner = outcome.Winner
		result.BonusPaid = bonusPaid
		events = append(events, domain.Event{
			SessionID: sessionID,
			Type:      domain.EventSessionCompleted,
			Payload: domain.SessionCompletedPayload{
				Winner:    outcome.Winner,
				Pairs:     outcome.WinnerCount,
				BonusPaid: bonusPaid,
			},
		})
	}

	if err := s.stores.Sessions.PutSession(ctx, session); err != nil {
		return SubmitResult{}, perrors.Wrap(perrors.CodeUnknown, "persist session", err)
	}

	_ = s.emitter.EmitAll(ctx, events)
	result.Session = session
	result.Events = events
	return result, nil
}

// payBonus transfers the completion bonus to the winner when the pool
// can cover it. An under-funded pool is a disclosed skip, not an error.
func (s *Service) payBonus(ctx context.Context, winner string) (bool, error) {
	err := s.stores.Ledger.Transfer(ctx, s.authority, winner, ledger.KindCredit, domain.CompletionBonus)
	if err != nil {
		if errors.Is(err, storage.ErrInsufficientBalance) {
			return false, nil
		}
		return false, perrors.Wrap(perrors.CodeUnknown, "pay completion bonus", err)
	}
	return true, nil
}

// GetBoard returns the full board. Only bound participants may see it:
// board visibility is a capability earned by committing to the session.
func (s *Service) GetBoard(ctx context.Context, sessionID uint64, caller string) (board.Board, error) {
	session, err := s.getSession(ctx, sessionID)
	if err != nil {
		return board.Board{}, err
	}
	if !session.Participant(caller) {
		return board.Board{}, perrors.New(perrors.CodeUnauthorizedRead, "caller is not a session participant")
	}
	return session.Board, nil
}

// GetRevealMask returns the reveal mask. Unrestricted read.
func (s *Service) GetRevealMask(ctx context.Context, sessionID uint64) ([board.Size]bool, error) {
	session, err := s.getSession(ctx, sessionID)
	if err != nil {
		return [board.Size]bool{}, err
	}
	return session.Revealed, nil
}

// Summary is the unrestricted public view of a session.
type Summary struct {
	ID          uint64
	First       string
	Second      string
	TurnHolder  string
	FirstCount  int
	SecondCount int
	Solo        bool
	Active      bool
	Phase       domain.Phase
	Winner      string
	BonusPaid   bool
}

// GetSummary returns the public view of a session. Unrestricted read.
func (s *Service) GetSummary(ctx context.Context, sessionID uint64) (Summary, error) {
	session, err := s.getSession(ctx, sessionID)
	if err != nil {
		return Summary{}, err
	}
	return summarize(session), nil
}

// ListSummaries returns public views for up to limit sessions with ids
// greater than afterID, in ascending id order.
func (s *Service) ListSummaries(ctx context.Context, afterID uint64, limit int) ([]Summary, error) {
	sessions, err := s.stores.Sessions.ListSessions(ctx, afterID, limit)
	if err != nil {
		return nil, perrors.Wrap(perrors.CodeUnknown, "list sessions", err)
	}
	summaries := make([]Summary, 0, len(sessions))
	for _, session := range sessions {
		summaries = append(summaries, summarize(session))
	}
	return summaries, nil
}

// TopUpPool mints additional credit supply to the pool authority.
// Restricted to the authority itself.
func (s *Service) TopUpPool(ctx context.Context, caller string, amount int64) error {
	if caller != s.authority {
		return perrors.New(perrors.CodeNotPoolAuthority, "caller is not the pool authority")
	}
	if amount < 0 {
		return perrors.New(perrors.CodeAmountNegative, "top-up amount is negative")
	}
	if err := s.stores.Ledger.Mint(ctx, s.authority, ledger.KindCredit, amount); err != nil {
		return perrors.Wrap(perrors.CodeUnknown, "mint pool top-up", err)
	}

	_ = s.emitter.Emit(ctx, domain.Event{
		Type:    domain.EventPoolToppedUp,
		Payload: domain.PoolToppedUpPayload{Amount: amount},
	})
	return nil
}

// Balance returns the balance for an (address, kind) entry.
// Unrestricted read.
func (s *Service) Balance(ctx context.Context, address string, kind ledger.Kind) (int64, error) {
	if !kind.Valid() {
		return 0, perrors.New(perrors.CodeUnknown, "unknown token kind")
	}
	balance, err := s.stores.Ledger.Balance(ctx, address, kind)
	if err != nil {
		return 0, perrors.Wrap(perrors.CodeUnknown, "read balance", err)
	}
	return balance, nil
}

// ListEvents returns the persisted event log for a session in sequence
// order.
func (s *Service) ListEvents(ctx context.Context, sessionID uint64, limit int) ([]storage.EventRecord, error) {
	if _, err := s.getSession(ctx, sessionID); err != nil {
		return nil, err
	}
	records, err := s.stores.Events.ListEvents(ctx, sessionID, limit)
	if err != nil {
		return nil, perrors.Wrap(perrors.CodeUnknown, "list events", err)
	}
	return records, nil
}

func (s *Service) getSession(ctx context.Context, sessionID uint64) (domain.Session, error) {
	session, err := s.stores.Sessions.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return domain.Session{}, perrors.WithMetadata(
				perrors.CodeSessionNotFound,
				"session not found",
				map[string]string{"session_id": strconv.FormatUint(sessionID, 10)},
			)
		}
		return domain.Session{}, perrors.Wrap(perrors.CodeUnknown, "load session", err)
	}
	return session, nil
}

func summarize(session domain.Session) Summary {
	return Summary{
		ID:          session.ID,
		First:       session.First,
		Second:      session.Second,
		TurnHolder:  session.TurnHolder,
		FirstCount:  session.FirstCount,
		SecondCount: session.SecondCount,
		Solo:        session.Solo,
		Active:      session.Active(),
		Phase:       session.Phase,
		Winner:      session.Winner,
		BonusPaid:   session.BonusPaid,
	}
}

// mapDomainErr converts domain sentinels to coded platform errors.
func mapDomainErr(err error) error {
	switch {
	case errors.Is(err, domain.ErrEmptyPlayer):
		return perrors.Wrap(perrors.CodeEmptyPlayer, err.Error(), err)
	case errors.Is(err, domain.ErrSessionInactive):
		return perrors.Wrap(perrors.CodeSessionInactive, err.Error(), err)
	case errors.Is(err, domain.ErrSessionFull):
		return perrors.Wrap(perrors.CodeSessionFull, err.Error(), err)
	case errors.Is(err, domain.ErrSelfJoin):
		return perrors.Wrap(perrors.CodeSelfJoin, err.Error(), err)
	case errors.Is(err, domain.ErrAwaitingOpponent):
		return perrors.Wrap(perrors.CodeAwaitingOpponent, err.Error(), err)
	case errors.Is(err, domain.ErrNotYourTurn):
		return perrors.Wrap(perrors.CodeNotYourTurn, err.Error(), err)
	case errors.Is(err, domain.ErrIndexOutOfRange):
		return perrors.Wrap(perrors.CodeIndexOutOfRange, err.Error(), err)
	case errors.Is(err, domain.ErrDuplicateIndex):
		return perrors.Wrap(perrors.CodeDuplicateIndex, err.Error(), err)
	case errors.Is(err, domain.ErrAlreadyMatched):
		return perrors.Wrap(perrors.CodeAlreadyMatched, err.Error(), err)
	default:
		return perrors.Wrap(perrors.CodeUnknown, err.Error(), err)
	}
}
