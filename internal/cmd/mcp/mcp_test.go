package mcp

import (
	"flag"
	"testing"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("mcp", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.DBPath != "" {
		t.Fatalf("expected in-memory default, got %q", cfg.DBPath)
	}
	if cfg.Authority != "bonus-pool" {
		t.Fatalf("expected default authority, got %q", cfg.Authority)
	}
	if cfg.Transport != "stdio" {
		t.Fatalf("expected default transport stdio, got %q", cfg.Transport)
	}
	if cfg.HTTPAddr != "localhost:8081" {
		t.Fatalf("expected default http addr, got %q", cfg.HTTPAddr)
	}
	if cfg.Locale != "en-US" {
		t.Fatalf("expected default locale, got %q", cfg.Locale)
	}
}

func TestParseConfigEnvOverrides(t *testing.T) {
	t.Setenv("MATCHMINT_DB_PATH", "/tmp/engine.db")
	t.Setenv("MATCHMINT_POOL_AUTHORITY", "env-pool")
	t.Setenv("MATCHMINT_MCP_TRANSPORT", "http")

	fs := flag.NewFlagSet("mcp", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.DBPath != "/tmp/engine.db" {
		t.Fatalf("expected env db path, got %q", cfg.DBPath)
	}
	if cfg.Authority != "env-pool" {
		t.Fatalf("expected env authority, got %q", cfg.Authority)
	}
	if cfg.Transport != "http" {
		t.Fatalf("expected env transport, got %q", cfg.Transport)
	}
}

func TestParseConfigFlagsBeatEnv(t *testing.T) {
	t.Setenv("MATCHMINT_POOL_AUTHORITY", "env-pool")

	fs := flag.NewFlagSet("mcp", flag.ContinueOnError)
	args := []string{"-authority", "flag-pool", "-db", "flag.db", "-locale", "pt-BR"}
	cfg, err := ParseConfig(fs, args)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Authority != "flag-pool" {
		t.Fatalf("expected flag authority, got %q", cfg.Authority)
	}
	if cfg.DBPath != "flag.db" {
		t.Fatalf("expected flag db path, got %q", cfg.DBPath)
	}
	if cfg.Locale != "pt-BR" {
		t.Fatalf("expected flag locale, got %q", cfg.Locale)
	}
}
