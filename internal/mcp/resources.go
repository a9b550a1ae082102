package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/matchmint/engine/internal/board"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// SessionSummaryPayload is the public view of a session served as a
// resource. It never includes unrevealed symbols.
type SessionSummaryPayload struct {
	ID          uint64 `json:"id"`
	Phase       string `json:"phase"`
	First       string `json:"first"`
	Second      string `json:"second,omitempty"`
	TurnHolder  string `json:"turn_holder"`
	FirstCount  int    `json:"first_count"`
	SecondCount int    `json:"second_count"`
	Solo        bool   `json:"solo"`
	Active      bool   `json:"active"`
	Winner      string `json:"winner,omitempty"`
	BonusPaid   bool   `json:"bonus_paid,omitempty"`
}

// SessionListPayload is the payload for the session listing resource.
type SessionListPayload struct {
	Sessions []SessionSummaryPayload `json:"sessions"`
}

// RevealMaskPayload is the payload for the reveal mask resource.
type RevealMaskPayload struct {
	SessionID uint64 `json:"session_id"`
	Revealed  []bool `json:"revealed"`
}

// EventEntry is one persisted gameplay observation.
type EventEntry struct {
	Seq        uint64          `json:"seq"`
	Type       string          `json:"type"`
	OccurredAt string          `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// EventListPayload is the payload for the event log resource.
type EventListPayload struct {
	SessionID uint64       `json:"session_id"`
	Events    []EventEntry `json:"events"`
}

func sessionListResource() *mcp.Resource {
	return &mcp.Resource{
		Name:        "session_list",
		Title:       "Sessions",
		Description: "Readable listing of all sessions with public summaries.",
		MIMEType:    "application/json",
		URI:         "session://list",
	}
}

func sessionSummaryResourceTemplate() *mcp.ResourceTemplate {
	return &mcp.ResourceTemplate{
		Name:        "session_summary",
		Title:       "Session summary",
		Description: "Public view of one session. URI format: session://{session_id}/summary",
		MIMEType:    "application/json",
		URITemplate: "session://{session_id}/summary",
	}
}

func revealMaskResourceTemplate() *mcp.ResourceTemplate {
	return &mcp.ResourceTemplate{
		Name:        "session_reveal",
		Title:       "Reveal mask",
		Description: "Which of the 12 positions are permanently revealed. URI format: session://{session_id}/reveal",
		MIMEType:    "application/json",
		URITemplate: "session://{session_id}/reveal",
	}
}

func eventListResourceTemplate() *mcp.ResourceTemplate {
	return &mcp.ResourceTemplate{
		Name:        "session_events",
		Title:       "Event log",
		Description: "Ordered gameplay observations for one session. URI format: session://{session_id}/events",
		MIMEType:    "application/json",
		URITemplate: "session://{session_id}/events",
	}
}

func (s *Server) sessionListResourceHandler() mcp.ResourceHandler {
	return func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		runCtx, cancel := context.WithTimeout(ctx, callTimeout)
		defer cancel()

		summaries, err := s.svc.ListSummaries(runCtx, 0, 0)
		if err != nil {
			return nil, s.localizeError(err)
		}

		payload := SessionListPayload{Sessions: make([]SessionSummaryPayload, 0, len(summaries))}
		for _, summary := range summaries {
			payload.Sessions = append(payload.Sessions, SessionSummaryPayload{
				ID:          summary.ID,
				Phase:       summary.Phase.String(),
				First:       summary.First,
				Second:      summary.Second,
				TurnHolder:  summary.TurnHolder,
				FirstCount:  summary.FirstCount,
				SecondCount: summary.SecondCount,
				Solo:        summary.Solo,
				Active:      summary.Active,
				Winner:      summary.Winner,
				BonusPaid:   summary.BonusPaid,
			})
		}
		return jsonResourceResult(sessionListResource().URI, payload)
	}
}

func (s *Server) sessionSummaryResourceHandler() mcp.ResourceHandler {
	return func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		sessionID, uri, err := sessionIDFromRequest(req, "summary")
		if err != nil {
			return nil, err
		}

		runCtx, cancel := context.WithTimeout(ctx, callTimeout)
		defer cancel()

		summary, err := s.svc.GetSummary(runCtx, sessionID)
		if err != nil {
			return nil, s.localizeError(err)
		}
		payload := SessionSummaryPayload{
			ID:          summary.ID,
			Phase:       summary.Phase.String(),
			First:       summary.First,
			Second:      summary.Second,
			TurnHolder:  summary.TurnHolder,
			FirstCount:  summary.FirstCount,
			SecondCount: summary.SecondCount,
			Solo:        summary.Solo,
			Active:      summary.Active,
			Winner:      summary.Winner,
			BonusPaid:   summary.BonusPaid,
		}
		return jsonResourceResult(uri, payload)
	}
}

func (s *Server) revealMaskResourceHandler() mcp.ResourceHandler {
	return func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		sessionID, uri, err := sessionIDFromRequest(req, "reveal")
		if err != nil {
			return nil, err
		}

		runCtx, cancel := context.WithTimeout(ctx, callTimeout)
		defer cancel()

		mask, err := s.svc.GetRevealMask(runCtx, sessionID)
		if err != nil {
			return nil, s.localizeError(err)
		}
		payload := RevealMaskPayload{SessionID: sessionID, Revealed: make([]bool, board.Size)}
		copy(payload.Revealed, mask[:])
		return jsonResourceResult(uri, payload)
	}
}

func (s *Server) eventListResourceHandler() mcp.ResourceHandler {
	return func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		sessionID, uri, err := sessionIDFromRequest(req, "events")
		if err != nil {
			return nil, err
		}

		runCtx, cancel := context.WithTimeout(ctx, callTimeout)
		defer cancel()

		records, err := s.svc.ListEvents(runCtx, sessionID, 0)
		if err != nil {
			return nil, s.localizeError(err)
		}
		payload := EventListPayload{SessionID: sessionID, Events: make([]EventEntry, 0, len(records))}
		for _, record := range records {
			payload.Events = append(payload.Events, EventEntry{
				Seq:        record.Seq,
				Type:       record.Type,
				OccurredAt: record.Timestamp.Format(time.RFC3339),
				Payload:    json.RawMessage(record.PayloadJSON),
			})
		}
		return jsonResourceResult(uri, payload)
	}
}

// sessionIDFromRequest extracts the session id from a URI of the form
// session://{session_id}/{view}.
func sessionIDFromRequest(req *mcp.ReadResourceRequest, view string) (uint64, string, error) {
	if req == nil || req.Params == nil || req.Params.URI == "" {
		return 0, "", fmt.Errorf("session ID is required; use URI format session://{session_id}/%s", view)
	}
	uri := req.Params.URI

	rest, ok := strings.CutPrefix(uri, "session://")
	if !ok {
		return 0, "", fmt.Errorf("unexpected resource URI %q", uri)
	}
	idText, ok := strings.CutSuffix(rest, "/"+view)
	if !ok {
		return 0, "", fmt.Errorf("unexpected resource URI %q; use session://{session_id}/%s", uri, view)
	}
	sessionID, err := strconv.ParseUint(idText, 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("parse session ID from URI %q: %w", uri, err)
	}
	return sessionID, uri, nil
}

func jsonResourceResult(uri string, payload any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal resource payload: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{
				URI:      uri,
				MIMEType: "application/json",
				Text:     string(data),
			},
		},
	}, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(sessionListResource(), s.sessionListResourceHandler())
	s.mcpServer.AddResourceTemplate(sessionSummaryResourceTemplate(), s.sessionSummaryResourceHandler())
	s.mcpServer.AddResourceTemplate(revealMaskResourceTemplate(), s.revealMaskResourceHandler())
	s.mcpServer.AddResourceTemplate(eventListResourceTemplate(), s.eventListResourceHandler())
}
