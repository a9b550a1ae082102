// Package mcp parses MCP command flags and wires the engine together:
// storage, ledger pool, telemetry, and the MCP transport.
package mcp

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/matchmint/engine/internal/game/service"
	enginemcp "github.com/matchmint/engine/internal/mcp"
	"github.com/matchmint/engine/internal/platform/config"
	"github.com/matchmint/engine/internal/platform/otel"
	"github.com/matchmint/engine/internal/storage/memory"
	"github.com/matchmint/engine/internal/storage/sqlite"
)

// Config holds MCP command configuration.
type Config struct {
	DBPath    string `env:"MATCHMINT_DB_PATH"`
	Authority string `env:"MATCHMINT_POOL_AUTHORITY" envDefault:"bonus-pool"`
	Transport string `env:"MATCHMINT_MCP_TRANSPORT"  envDefault:"stdio"`
	HTTPAddr  string `env:"MATCHMINT_MCP_HTTP_ADDR"  envDefault:"localhost:8081"`
	Locale    string `env:"MATCHMINT_LOCALE"         envDefault:"en-US"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database path (empty for in-memory storage)")
	fs.StringVar(&cfg.Authority, "authority", cfg.Authority, "pool authority identity")
	fs.StringVar(&cfg.Transport, "transport", cfg.Transport, "Transport type: stdio or http")
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP server address (for HTTP transport)")
	fs.StringVar(&cfg.Locale, "locale", cfg.Locale, "locale for user-facing error messages")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the MCP engine server and blocks until the context ends.
func Run(ctx context.Context, cfg Config) error {
	shutdown, err := otel.Setup(ctx, "matchmint-mcp")
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			log.Printf("otel shutdown: %v", err)
		}
	}()

	stores, closeStore, err := openStores(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Printf("close store: %v", err)
		}
	}()

	svc := service.New(stores, cfg.Authority)
	if err := svc.InitializePool(ctx); err != nil {
		return fmt.Errorf("initialize reward pool: %w", err)
	}

	return enginemcp.Run(ctx, svc, enginemcp.Config{
		Transport: enginemcp.TransportKind(cfg.Transport),
		HTTPAddr:  cfg.HTTPAddr,
		Locale:    cfg.Locale,
	})
}

// openStores selects SQLite when a path is configured and falls back
// to in-memory storage otherwise.
func openStores(ctx context.Context, dbPath string) (service.Stores, func() error, error) {
	if dbPath == "" {
		store := memory.New()
		return service.Stores{Sessions: store, Ledger: store, Events: store}, func() error { return nil }, nil
	}

	store, err := sqlite.Open(ctx, dbPath)
	if err != nil {
		return service.Stores{}, nil, fmt.Errorf("open sqlite store: %w", err)
	}
	return service.Stores{Sessions: store, Ledger: store, Events: store}, store.Close, nil
}
