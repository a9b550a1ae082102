// Package mcp exposes the match engine over the Model Context
// Protocol: tools for gameplay mutations and resources for reads.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/matchmint/engine/internal/game/service"
	perrors "github.com/matchmint/engine/internal/platform/errors"
	"github.com/matchmint/engine/internal/platform/errors/i18n"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// serverName identifies this MCP server to clients.
	serverName = "MatchMint Engine MCP"
	// serverVersion identifies the MCP server version.
	serverVersion = "0.1.0"
)

// TransportKind identifies the MCP transport implementation.
type TransportKind string

const (
	// TransportStdio uses standard input/output for MCP.
	TransportStdio TransportKind = "stdio"
	// TransportHTTP runs MCP over streamable HTTP for remote clients.
	TransportHTTP TransportKind = "http"
)

// Config configures the MCP server.
type Config struct {
	Transport TransportKind
	HTTPAddr  string // HTTP listen address, defaults to localhost:8081
	Locale    string // BCP 47 tag for user-facing error messages
}

// Server hosts the MCP server over an in-process engine service.
type Server struct {
	mcpServer *mcp.Server
	svc       *service.Service
	locale    string
}

// New creates a configured MCP server bound to the engine service.
func New(svc *service.Service, locale string) (*Server, error) {
	if svc == nil {
		return nil, fmt.Errorf("engine service is required")
	}

	mcpServer := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)
	server := &Server{
		mcpServer: mcpServer,
		svc:       svc,
		locale:    i18n.Locale(locale),
	}
	server.registerTools()
	server.registerResources()
	return server, nil
}

// Run starts a server for the configured transport and blocks until
// the context is cancelled.
func Run(ctx context.Context, svc *service.Service, cfg Config) error {
	server, err := New(svc, cfg.Locale)
	if err != nil {
		return err
	}
	if cfg.Transport == "" {
		cfg.Transport = TransportStdio
	}

	switch cfg.Transport {
	case TransportStdio:
		return server.serveWithTransport(ctx, &mcp.StdioTransport{})
	case TransportHTTP:
		return server.serveHTTP(ctx, cfg.HTTPAddr)
	default:
		return fmt.Errorf("transport %q is not supported", cfg.Transport)
	}
}

// Serve starts the MCP server on stdio and blocks until it stops or
// the context ends.
func (s *Server) Serve(ctx context.Context) error {
	return s.serveWithTransport(ctx, &mcp.StdioTransport{})
}

func (s *Server) serveWithTransport(ctx context.Context, transport mcp.Transport) error {
	if s == nil || s.mcpServer == nil {
		return fmt.Errorf("MCP server is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	err := s.mcpServer.Run(ctx, transport)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		err = nil
	}
	if err != nil {
		return fmt.Errorf("serve MCP: %w", err)
	}
	return nil
}

// serveHTTP serves MCP over the SDK's streamable HTTP handler. The
// listener shuts down when the context ends.
func (s *Server) serveHTTP(ctx context.Context, addr string) error {
	if s == nil || s.mcpServer == nil {
		return fmt.Errorf("MCP server is not configured")
	}
	if addr == "" {
		addr = "localhost:8081"
	}

	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.mcpServer
	}, nil)
	httpServer := &http.Server{Addr: addr, Handler: handler}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown MCP HTTP server: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve MCP HTTP: %w", err)
	}
}

// localizeError translates coded engine errors into the server's
// locale for client display. Uncoded errors pass through unchanged.
func (s *Server) localizeError(err error) error {
	var engineErr *perrors.Error
	if !errors.As(err, &engineErr) {
		return err
	}
	return fmt.Errorf("%s: %s", engineErr.Code, i18n.Format(s.locale, i18n.Code(engineErr.Code), engineErr.Metadata))
}
