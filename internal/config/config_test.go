package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadCreatesDefaultWhenMissing(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ListenPort != DefaultListenPort {
		t.Errorf("ListenPort = %d, want %d", cfg.ListenPort, DefaultListenPort)
	}
	if cfg.ServerVersion != DefaultServerVersion {
		t.Errorf("ServerVersion = %d, want %d", cfg.ServerVersion, DefaultServerVersion)
	}

	if _, err := os.Stat(filepath.Join(dir, DefaultConfigFile)); err != nil {
		t.Errorf("expected config file to be written: %v", err)
	}
}

func TestLoadRoundTripsOverrides(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cfg.ServerName = "Custom Server"
	cfg.MaxConnections = 5
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	reloaded, err := Load(dir)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.ServerName != "Custom Server" || reloaded.MaxConnections != 5 {
		t.Errorf("reloaded = %+v, want overrides preserved", reloaded)
	}
}

func TestValidateRejectsEmptyServerName(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ServerName = "  "
	result := Validate(cfg)
	if result.IsValid() {
		t.Fatalf("expected validation error for empty server name")
	}
}

func TestValidateRejectsOversizedMaxConnections(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxConnections = 100000
	result := Validate(cfg)
	if result.IsValid() {
		t.Fatalf("expected validation error for max_connections beyond 65535")
	}
}

func TestValidateWarnsOnPrivilegedPort(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ListenPort = 80
	result := Validate(cfg)
	if !result.IsValid() {
		t.Fatalf("privileged port should be a warning, not an error: %+v", result.Errors)
	}
	if len(result.Warnings) == 0 {
		t.Errorf("expected a warning for privileged port 80")
	}
}
