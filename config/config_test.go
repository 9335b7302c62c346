package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "revora.toml")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.RPCAddress != ":8545" || cfg.DBBackend != "leveldb" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("default file not written: %v", err)
	}
}

func TestLoadValidatesBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "revora.toml")
	content := "RPCAddress = \":9000\"\nDBBackend = \"postgres\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected backend validation error")
	}
}

func TestLoadFillsMissingFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "revora.toml")
	content := "DBBackend = \"Bolt\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DBBackend != "bolt" {
		t.Fatalf("backend not normalized: %q", cfg.DBBackend)
	}
	if cfg.RPCAddress == "" || cfg.DataDir == "" {
		t.Fatalf("missing fields not defaulted: %+v", cfg)
	}
}
