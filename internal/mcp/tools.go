package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/matchmint/engine/internal/board"
	"github.com/matchmint/engine/internal/game/service"
	"github.com/matchmint/engine/internal/ledger"
	"github.com/matchmint/engine/internal/random"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// callTimeout bounds a single tool invocation against the engine.
const callTimeout = 5 * time.Second

// SessionCreateInput represents the MCP tool input for creating a session.
type SessionCreateInput struct {
	Creator string `json:"creator" jsonschema:"identity of the player creating the session"`
	Solo    bool   `json:"solo,omitempty" jsonschema:"play alone instead of waiting for an opponent"`
	Seed    *int64 `json:"seed,omitempty" jsonschema:"board shuffle seed; omit for a random board"`
}

// SessionCreateResult represents the MCP tool output for creating a session.
type SessionCreateResult struct {
	ID         uint64 `json:"id" jsonschema:"session identifier"`
	Phase      string `json:"phase" jsonschema:"session phase (AWAITING_OPPONENT, IN_PROGRESS, COMPLETED)"`
	First      string `json:"first" jsonschema:"first player identity"`
	Second     string `json:"second,omitempty" jsonschema:"second player identity, once bound"`
	TurnHolder string `json:"turn_holder" jsonschema:"player whose turn it is"`
	Solo       bool   `json:"solo" jsonschema:"whether the session is solo"`
	CreatedAt  string `json:"created_at" jsonschema:"RFC3339 timestamp of creation"`
}

func sessionCreateTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "session_create",
		Description: "Creates a memory-match session with a 12-card shuffled board. Duo sessions wait for a second player; solo sessions start immediately.",
	}
}

func (s *Server) sessionCreateHandler() mcp.ToolHandlerFor[SessionCreateInput, SessionCreateResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input SessionCreateInput) (*mcp.CallToolResult, SessionCreateResult, error) {
		runCtx, cancel := context.WithTimeout(ctx, callTimeout)
		defer cancel()

		var seed int64
		if input.Seed != nil {
			seed = *input.Seed
		} else {
			generated, err := random.NewSeed()
			if err != nil {
				return nil, SessionCreateResult{}, fmt.Errorf("generate seed: %w", err)
			}
			seed = generated
		}

		session, err := s.svc.CreateSession(runCtx, service.CreateSessionParams{
			Seed:    seed,
			Creator: input.Creator,
			Solo:    input.Solo,
		})
		if err != nil {
			return nil, SessionCreateResult{}, s.localizeError(err)
		}

		result := SessionCreateResult{
			ID:         session.ID,
			Phase:      session.Phase.String(),
			First:      session.First,
			Second:     session.Second,
			TurnHolder: session.TurnHolder,
			Solo:       session.Solo,
			CreatedAt:  session.CreatedAt.Format(time.RFC3339),
		}
		return nil, result, nil
	}
}

// SessionJoinInput represents the MCP tool input for joining a session.
type SessionJoinInput struct {
	SessionID uint64 `json:"session_id" jsonschema:"session identifier"`
	Player    string `json:"player" jsonschema:"identity of the joining player"`
}

// SessionJoinResult represents the MCP tool output for joining a session.
type SessionJoinResult struct {
	ID         uint64 `json:"id" jsonschema:"session identifier"`
	Phase      string `json:"phase" jsonschema:"session phase after the join"`
	First      string `json:"first" jsonschema:"first player identity"`
	Second     string `json:"second" jsonschema:"second player identity"`
	TurnHolder string `json:"turn_holder" jsonschema:"player whose turn it is"`
}

func sessionJoinTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "session_join",
		Description: "Joins an open duo session as the second player and starts play.",
	}
}

func (s *Server) sessionJoinHandler() mcp.ToolHandlerFor[SessionJoinInput, SessionJoinResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input SessionJoinInput) (*mcp.CallToolResult, SessionJoinResult, error) {
		runCtx, cancel := context.WithTimeout(ctx, callTimeout)
		defer cancel()

		session, err := s.svc.JoinSession(runCtx, input.SessionID, input.Player)
		if err != nil {
			return nil, SessionJoinResult{}, s.localizeError(err)
		}

		result := SessionJoinResult{
			ID:         session.ID,
			Phase:      session.Phase.String(),
			First:      session.First,
			Second:     session.Second,
			TurnHolder: session.TurnHolder,
		}
		return nil, result, nil
	}
}

// PairSubmitInput represents the MCP tool input for submitting a pair.
type PairSubmitInput struct {
	SessionID uint64 `json:"session_id" jsonschema:"session identifier"`
	Player    string `json:"player" jsonschema:"identity of the submitting player"`
	IndexA    int    `json:"index_a" jsonschema:"first card index (0-11)"`
	IndexB    int    `json:"index_b" jsonschema:"second card index (0-11)"`
}

// PairSubmitResult represents the MCP tool output for submitting a pair.
type PairSubmitResult struct {
	Matched       bool   `json:"matched" jsonschema:"whether the two cards held the same symbol"`
	Symbol        uint8  `json:"symbol,omitempty" jsonschema:"matched symbol (1-6), absent on a mismatch"`
	TurnHolder    string `json:"turn_holder" jsonschema:"player whose turn it is after this submission"`
	RevealedCount int    `json:"revealed_count" jsonschema:"number of permanently revealed cards"`
	Completed     bool   `json:"completed" jsonschema:"whether this submission completed the session"`
	Winner        string `json:"winner,omitempty" jsonschema:"winner identity, set on completion"`
	BonusPaid     bool   `json:"bonus_paid,omitempty" jsonschema:"whether the completion bonus was transferred"`
}

func pairSubmitTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "pair_submit",
		Description: "Flips two cards as one turn. A match mints rewards and keeps the turn; a mismatch passes it. Revealing the final pair completes the session and pays the winner's bonus from the pool.",
	}
}

func (s *Server) pairSubmitHandler() mcp.ToolHandlerFor[PairSubmitInput, PairSubmitResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input PairSubmitInput) (*mcp.CallToolResult, PairSubmitResult, error) {
		runCtx, cancel := context.WithTimeout(ctx, callTimeout)
		defer cancel()

		outcome, err := s.svc.SubmitPair(runCtx, input.SessionID, input.Player, input.IndexA, input.IndexB)
		if err != nil {
			return nil, PairSubmitResult{}, s.localizeError(err)
		}

		result := PairSubmitResult{
			Matched:       outcome.Matched,
			Symbol:        uint8(outcome.Symbol),
			TurnHolder:    outcome.Session.TurnHolder,
			RevealedCount: outcome.Session.RevealedCount(),
			Completed:     outcome.Completed,
			Winner:        outcome.Winner,
			BonusPaid:     outcome.BonusPaid,
		}
		return nil, result, nil
	}
}

// BoardGetInput represents the MCP tool input for reading the board.
type BoardGetInput struct {
	SessionID uint64 `json:"session_id" jsonschema:"session identifier"`
	Player    string `json:"player" jsonschema:"identity of the requesting participant"`
}

// BoardGetResult represents the MCP tool output for reading the board.
type BoardGetResult struct {
	Board []uint16 `json:"board" jsonschema:"symbol at each of the 12 positions (1-6)"`
}

func boardGetTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "board_get",
		Description: "Returns the full board layout. Restricted to session participants.",
	}
}

func (s *Server) boardGetHandler() mcp.ToolHandlerFor[BoardGetInput, BoardGetResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input BoardGetInput) (*mcp.CallToolResult, BoardGetResult, error) {
		runCtx, cancel := context.WithTimeout(ctx, callTimeout)
		defer cancel()

		layout, err := s.svc.GetBoard(runCtx, input.SessionID, input.Player)
		if err != nil {
			return nil, BoardGetResult{}, s.localizeError(err)
		}

		symbols := make([]uint16, board.Size)
		for i, symbol := range layout {
			symbols[i] = uint16(symbol)
		}
		return nil, BoardGetResult{Board: symbols}, nil
	}
}

// PoolTopupInput represents the MCP tool input for topping up the pool.
type PoolTopupInput struct {
	Caller string `json:"caller" jsonschema:"identity of the caller; must be the pool authority"`
	Amount int64  `json:"amount" jsonschema:"number of credits to mint into the pool"`
}

// PoolTopupResult represents the MCP tool output for topping up the pool.
type PoolTopupResult struct {
	PoolBalance int64 `json:"pool_balance" jsonschema:"pool credit balance after the top-up"`
}

func poolTopupTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "pool_topup",
		Description: "Mints additional credits into the bonus pool. Restricted to the pool authority.",
	}
}

func (s *Server) poolTopupHandler() mcp.ToolHandlerFor[PoolTopupInput, PoolTopupResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input PoolTopupInput) (*mcp.CallToolResult, PoolTopupResult, error) {
		runCtx, cancel := context.WithTimeout(ctx, callTimeout)
		defer cancel()

		if err := s.svc.TopUpPool(runCtx, input.Caller, input.Amount); err != nil {
			return nil, PoolTopupResult{}, s.localizeError(err)
		}
		balance, err := s.svc.Balance(runCtx, s.svc.Authority(), ledger.KindCredit)
		if err != nil {
			return nil, PoolTopupResult{}, s.localizeError(err)
		}
		return nil, PoolTopupResult{PoolBalance: balance}, nil
	}
}

// BalanceGetInput represents the MCP tool input for reading a balance.
type BalanceGetInput struct {
	Address string `json:"address" jsonschema:"ledger address (player identity or pool authority)"`
	Kind    uint8  `json:"kind,omitempty" jsonschema:"token kind: 0 for credits, 1-6 for symbol collectibles"`
}

// BalanceGetResult represents the MCP tool output for reading a balance.
type BalanceGetResult struct {
	Address string `json:"address" jsonschema:"ledger address"`
	Kind    string `json:"kind" jsonschema:"token kind label"`
	Amount  int64  `json:"amount" jsonschema:"current balance"`
}

func balanceGetTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "balance_get",
		Description: "Returns the balance of one token kind for an address. Balances are public.",
	}
}

func (s *Server) balanceGetHandler() mcp.ToolHandlerFor[BalanceGetInput, BalanceGetResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input BalanceGetInput) (*mcp.CallToolResult, BalanceGetResult, error) {
		runCtx, cancel := context.WithTimeout(ctx, callTimeout)
		defer cancel()

		kind := ledger.Kind(input.Kind)
		amount, err := s.svc.Balance(runCtx, input.Address, kind)
		if err != nil {
			return nil, BalanceGetResult{}, s.localizeError(err)
		}
		return nil, BalanceGetResult{
			Address: input.Address,
			Kind:    kind.String(),
			Amount:  amount,
		}, nil
	}
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, sessionCreateTool(), s.sessionCreateHandler())
	mcp.AddTool(s.mcpServer, sessionJoinTool(), s.sessionJoinHandler())
	mcp.AddTool(s.mcpServer, pairSubmitTool(), s.pairSubmitHandler())
	mcp.AddTool(s.mcpServer, boardGetTool(), s.boardGetHandler())
	mcp.AddTool(s.mcpServer, poolTopupTool(), s.poolTopupHandler())
	mcp.AddTool(s.mcpServer, balanceGetTool(), s.balanceGetHandler())
}
