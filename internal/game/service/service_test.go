package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/matchmint/engine/internal/board"
	"github.com/matchmint/engine/internal/game/domain"
	"github.com/matchmint/engine/internal/ledger"
	perrors "github.com/matchmint/engine/internal/platform/errors"
	"github.com/matchmint/engine/internal/storage/memory"
)

const authority = "pool-authority"

func newService(t *testing.T) *Service {
	t.Helper()
	store := memory.New()
	svc := New(Stores{Sessions: store, Ledger: store, Events: store}, authority)
	svc.clock = func() time.Time {
		return time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)
	}
	return svc
}

func wantCode(t *testing.T, err error, code perrors.Code) {
	t.Helper()
	var perr *perrors.Error
	if !errors.As(err, &perr) {
		t.Fatalf("expected a coded error, got %v", err)
	}
	if perr.Code != code {
		t.Fatalf("expected code %s, got %s", code, perr.Code)
	}
}

// pairsOf groups unrevealed board positions by symbol.
func pairsOf(b board.Board) map[board.Symbol][2]int {
	pairs := make(map[board.Symbol][2]int)
	seen := make(map[board.Symbol]int)
	for i, symbol := range b {
		if first, ok := seen[symbol]; ok {
			pairs[symbol] = [2]int{first, i}
		} else {
			seen[symbol] = i
		}
	}
	return pairs
}

// mismatchOf returns two positions holding different symbols.
func mismatchOf(b board.Board) (int, int) {
	for j := 1; j < board.Size; j++ {
		if b[j] != b[0] {
			return 0, j
		}
	}
	panic("board holds a single symbol")
}

func TestInitializePoolIdempotent(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	if err := svc.InitializePool(ctx); err != nil {
		t.Fatalf("first initialize: %v", err)
	}
	if err := svc.InitializePool(ctx); err != nil {
		t.Fatalf("second initialize: %v", err)
	}

	balance, err := svc.Balance(ctx, authority, ledger.KindCredit)
	if err != nil {
		t.Fatalf("read balance: %v", err)
	}
	if balance != domain.InitialPoolSupply {
		t.Fatalf("expected the initial supply exactly once, got %d", balance)
	}
}

func TestCreateSessionAssignsIncreasingIDs(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	first, err := svc.CreateSession(ctx, CreateSessionParams{Seed: 1, Creator: "alice", Solo: true})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	second, err := svc.CreateSession(ctx, CreateSessionParams{Seed: 2, Creator: "alice", Solo: true})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if first.ID != 1 || second.ID != 2 {
		t.Fatalf("expected ids 1 and 2, got %d and %d", first.ID, second.ID)
	}
	if first.Phase != domain.PhaseInProgress {
		t.Fatalf("solo session must start in progress, got %s", first.Phase)
	}

	records, err := svc.ListEvents(ctx, first.ID, 0)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(records) != 1 || records[0].Type != string(domain.EventSessionCreated) {
		t.Fatalf("expected a single creation event, got %+v", records)
	}
}

func TestJoinSession(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	session, err := svc.CreateSession(ctx, CreateSessionParams{Seed: 7, Creator: "alice"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if session.Phase != domain.PhaseAwaitingOpponent {
		t.Fatalf("duo session must await an opponent, got %s", session.Phase)
	}

	joined, err := svc.JoinSession(ctx, session.ID, "bob")
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if joined.Second != "bob" || joined.Phase != domain.PhaseInProgress {
		t.Fatalf("unexpected session after join: %+v", joined)
	}

	_, err = svc.JoinSession(ctx, session.ID, "carol")
	wantCode(t, err, perrors.CodeSessionFull)
}

func TestJoinMissingSession(t *testing.T) {
	svc := newService(t)
	_, err := svc.JoinSession(context.Background(), 99, "bob")
	wantCode(t, err, perrors.CodeSessionNotFound)
}

func TestSubmitPairMatchMintsRewards(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	session, err := svc.CreateSession(ctx, CreateSessionParams{Seed: 3, Creator: "alice", Solo: true})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	pairs := pairsOf(session.Board)
	pair := pairs[session.Board[0]]

	result, err := svc.SubmitPair(ctx, session.ID, "alice", pair[0], pair[1])
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !result.Matched {
		t.Fatal("expected a match")
	}
	if result.Session.TurnHolder != "alice" {
		t.Fatal("a match must keep the turn")
	}

	credits, err := svc.Balance(ctx, "alice", ledger.KindCredit)
	if err != nil {
		t.Fatalf("read credits: %v", err)
	}
	if credits != domain.RewardPerMatch {
		t.Fatalf("expected %d credits, got %d", domain.RewardPerMatch, credits)
	}

	collectible, err := ledger.CollectibleFor(result.Symbol)
	if err != nil {
		t.Fatalf("collectible kind: %v", err)
	}
	owned, err := svc.Balance(ctx, "alice", collectible)
	if err != nil {
		t.Fatalf("read collectible: %v", err)
	}
	if owned != 1 {
		t.Fatalf("expected one collectible, got %d", owned)
	}

	records, err := svc.ListEvents(ctx, session.ID, 0)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	types := make([]string, 0, len(records))
	for _, record := range records {
		types = append(types, record.Type)
	}
	want := []string{
		string(domain.EventSessionCreated),
		string(domain.EventCardFlipped),
		string(domain.EventCardFlipped),
		string(domain.EventPairMatched),
	}
	if len(types) != len(want) {
		t.Fatalf("expected %d events, got %v", len(want), types)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Fatalf("event %d: expected %s, got %s", i, want[i], types[i])
		}
	}
}

func TestSubmitPairMismatchPassesTurn(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	session, err := svc.CreateSession(ctx, CreateSessionParams{Seed: 11, Creator: "alice"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.JoinSession(ctx, session.ID, "bob"); err != nil {
		t.Fatalf("join: %v", err)
	}

	i, j := mismatchOf(session.Board)
	result, err := svc.SubmitPair(ctx, session.ID, "alice", i, j)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Matched {
		t.Fatal("expected a mismatch")
	}
	if result.Symbol != board.SymbolNone {
		t.Fatalf("mismatch must not disclose a symbol, got %d", result.Symbol)
	}
	if result.Session.TurnHolder != "bob" {
		t.Fatalf("mismatch must pass the turn, holder is %s", result.Session.TurnHolder)
	}

	_, err = svc.SubmitPair(ctx, session.ID, "alice", i, j)
	wantCode(t, err, perrors.CodeNotYourTurn)
}

func TestSubmitPairPreconditionCodes(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	session, err := svc.CreateSession(ctx, CreateSessionParams{Seed: 5, Creator: "alice"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = svc.SubmitPair(ctx, session.ID, "alice", 0, 1)
	wantCode(t, err, perrors.CodeAwaitingOpponent)

	if _, err := svc.JoinSession(ctx, session.ID, "bob"); err != nil {
		t.Fatalf("join: %v", err)
	}

	_, err = svc.SubmitPair(ctx, session.ID, "alice", -1, 1)
	wantCode(t, err, perrors.CodeIndexOutOfRange)

	_, err = svc.SubmitPair(ctx, session.ID, "alice", 4, 4)
	wantCode(t, err, perrors.CodeDuplicateIndex)
}

func playToCompletion(t *testing.T, svc *Service, sessionID uint64, player string, b board.Board) SubmitResult {
	t.Helper()
	var last SubmitResult
	for _, pair := range pairsOf(b) {
		result, err := svc.SubmitPair(context.Background(), sessionID, player, pair[0], pair[1])
		if err != nil {
			t.Fatalf("submit pair %v: %v", pair, err)
		}
		if !result.Matched {
			t.Fatalf("pair %v did not match", pair)
		}
		last = result
	}
	return last
}

func TestCompletionPaysBonus(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	if err := svc.InitializePool(ctx); err != nil {
		t.Fatalf("initialize pool: %v", err)
	}

	session, err := svc.CreateSession(ctx, CreateSessionParams{Seed: 17, Creator: "alice", Solo: true})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	result := playToCompletion(t, svc, session.ID, "alice", session.Board)
	if !result.Completed || result.Winner != "alice" || !result.BonusPaid {
		t.Fatalf("unexpected completion result: %+v", result)
	}
	if result.Session.Phase != domain.PhaseCompleted {
		t.Fatalf("expected a completed session, got %s", result.Session.Phase)
	}

	credits, err := svc.Balance(ctx, "alice", ledger.KindCredit)
	if err != nil {
		t.Fatalf("read credits: %v", err)
	}
	wantCredits := int64(board.SymbolKinds*domain.RewardPerMatch + domain.CompletionBonus)
	if credits != wantCredits {
		t.Fatalf("expected %d credits, got %d", wantCredits, credits)
	}

	poolBalance, err := svc.Balance(ctx, authority, ledger.KindCredit)
	if err != nil {
		t.Fatalf("read pool: %v", err)
	}
	if poolBalance != domain.InitialPoolSupply-domain.CompletionBonus {
		t.Fatalf("pool must fund the bonus, got %d", poolBalance)
	}

	records, err := svc.ListEvents(ctx, session.ID, 0)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	final := records[len(records)-1]
	if final.Type != string(domain.EventSessionCompleted) {
		t.Fatalf("expected a completion event last, got %s", final.Type)
	}

	_, err = svc.SubmitPair(ctx, session.ID, "alice", 0, 1)
	wantCode(t, err, perrors.CodeSessionInactive)
}

func TestCompletionSkipsBonusWhenPoolShort(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	// Pool deliberately left unfunded.

	session, err := svc.CreateSession(ctx, CreateSessionParams{Seed: 23, Creator: "alice", Solo: true})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	result := playToCompletion(t, svc, session.ID, "alice", session.Board)
	if !result.Completed {
		t.Fatal("expected completion")
	}
	if result.BonusPaid {
		t.Fatal("an unfunded pool must skip the bonus")
	}
	if result.Session.BonusPaid {
		t.Fatal("session must record the skipped bonus")
	}

	credits, err := svc.Balance(ctx, "alice", ledger.KindCredit)
	if err != nil {
		t.Fatalf("read credits: %v", err)
	}
	if credits != int64(board.SymbolKinds*domain.RewardPerMatch) {
		t.Fatalf("expected match rewards only, got %d", credits)
	}
}

func TestDuoTieGoesToFirstPlayer(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	session, err := svc.CreateSession(ctx, CreateSessionParams{Seed: 29, Creator: "alice"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.JoinSession(ctx, session.ID, "bob"); err != nil {
		t.Fatalf("join: %v", err)
	}

	// Alice matches three pairs, hands the turn over with a mismatch,
	// then Bob matches the remaining three: a 3-3 tie.
	pairs := make([][2]int, 0, board.SymbolKinds)
	for _, pair := range pairsOf(session.Board) {
		pairs = append(pairs, pair)
	}

	var last SubmitResult
	for _, pair := range pairs[:3] {
		last, err = svc.SubmitPair(ctx, session.ID, "alice", pair[0], pair[1])
		if err != nil {
			t.Fatalf("submit: %v", err)
		}
		if !last.Matched {
			t.Fatalf("pair %v did not match", pair)
		}
	}

	i, j := unrevealedMismatch(last.Session)
	mis, err := svc.SubmitPair(ctx, session.ID, "alice", i, j)
	if err != nil {
		t.Fatalf("forced mismatch: %v", err)
	}
	if mis.Matched || mis.Session.TurnHolder != "bob" {
		t.Fatalf("expected the turn to pass to bob: %+v", mis)
	}

	for _, pair := range pairs[3:] {
		last, err = svc.SubmitPair(ctx, session.ID, "bob", pair[0], pair[1])
		if err != nil {
			t.Fatalf("submit: %v", err)
		}
		if !last.Matched {
			t.Fatalf("pair %v did not match", pair)
		}
	}
	if !last.Completed {
		t.Fatal("expected completion")
	}
	if last.Session.FirstCount != last.Session.SecondCount {
		t.Fatalf("scenario must end tied, got %d vs %d",
			last.Session.FirstCount, last.Session.SecondCount)
	}
	if last.Winner != "alice" {
		t.Fatalf("a tie must go to the first player, got %s", last.Winner)
	}
}

// unrevealedMismatch returns two unrevealed positions with different
// symbols.
func unrevealedMismatch(s domain.Session) (int, int) {
	for i := 0; i < board.Size; i++ {
		if s.Revealed[i] {
			continue
		}
		for j := i + 1; j < board.Size; j++ {
			if !s.Revealed[j] && s.Board[j] != s.Board[i] {
				return i, j
			}
		}
	}
	panic("no unrevealed mismatch left")
}

func TestBoardReadRequiresParticipant(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	session, err := svc.CreateSession(ctx, CreateSessionParams{Seed: 31, Creator: "alice", Solo: true})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.GetBoard(ctx, session.ID, "mallory"); err == nil {
		t.Fatal("non-participants must not see the board")
	} else {
		wantCode(t, err, perrors.CodeUnauthorizedRead)
	}

	got, err := svc.GetBoard(ctx, session.ID, "alice")
	if err != nil {
		t.Fatalf("participant read: %v", err)
	}
	if got != session.Board {
		t.Fatal("participant must see the created board")
	}

	// The reveal mask is public.
	mask, err := svc.GetRevealMask(ctx, session.ID)
	if err != nil {
		t.Fatalf("reveal mask: %v", err)
	}
	if mask != ([board.Size]bool{}) {
		t.Fatal("fresh session must have an empty mask")
	}
}

func TestTopUpPool(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	err := svc.TopUpPool(ctx, "alice", 100)
	wantCode(t, err, perrors.CodeNotPoolAuthority)

	err = svc.TopUpPool(ctx, authority, -1)
	wantCode(t, err, perrors.CodeAmountNegative)

	if err := svc.TopUpPool(ctx, authority, 500); err != nil {
		t.Fatalf("top up: %v", err)
	}
	balance, err := svc.Balance(ctx, authority, ledger.KindCredit)
	if err != nil {
		t.Fatalf("read balance: %v", err)
	}
	if balance != 500 {
		t.Fatalf("expected 500 credits in the pool, got %d", balance)
	}
}

func TestListSummaries(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	for seed := int64(0); seed < 3; seed++ {
		if _, err := svc.CreateSession(ctx, CreateSessionParams{Seed: seed, Creator: "alice", Solo: true}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	summaries, err := svc.ListSummaries(ctx, 1, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(summaries) != 2 || summaries[0].ID != 2 || summaries[1].ID != 3 {
		t.Fatalf("unexpected page: %+v", summaries)
	}
	if !summaries[0].Active || summaries[0].Winner != "" {
		t.Fatalf("fresh session summary is wrong: %+v", summaries[0])
	}
}
