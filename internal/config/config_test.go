package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadEnv(t *testing.T) {
	tmpDir := t.TempDir()
	envFile := filepath.Join(tmpDir, ".env")

	content := `
# Comment
KEY1=value1
KEY2="value 2"
KEY3='value 3'
KEY4=value 4 # inline comment
EMPTY=
`
	if err := os.WriteFile(envFile, []byte(content), 0644); err != nil {
		t.Fatalf("failed to create env file: %v", err)
	}

	env, err := LoadEnv(envFile)
	if err != nil {
		t.Fatalf("LoadEnv failed: %v", err)
	}

	tests := []struct {
		key      string
		expected string
	}{
		{"KEY1", "value1"},
		{"KEY2", "value 2"},
		{"KEY3", "value 3"},
		{"KEY4", "value 4"},
		{"EMPTY", ""},
	}

	for _, tt := range tests {
		if got, ok := env[tt.key]; !ok || got != tt.expected {
			t.Errorf("expected %s=%q, got %q (exists=%v)", tt.key, tt.expected, got, ok)
		}
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := Default()

	env := map[string]string{
		"DEFAULT_PROVIDER":        "gemini",
		"DEFAULT_ROUNDS":          "5",
		"CONCURRENCY":             "2",
		"PROVIDER_CLAUDE_ENABLED": "false",
		"PROVIDER_TIMEOUT":        "60",
		"SERVER_PORT":             "9090",
		"STORAGE_PATH":            "/tmp/panelist.db",
	}

	ApplyEnvOverrides(cfg, env)

	if cfg.Defaults.Provider != "gemini" {
		t.Errorf("expected provider gemini, got %s", cfg.Defaults.Provider)
	}
	if cfg.Defaults.Rounds != 5 {
		t.Errorf("expected 5 rounds, got %d", cfg.Defaults.Rounds)
	}
	if cfg.Defaults.Concurrency != 2 {
		t.Errorf("expected concurrency 2, got %d", cfg.Defaults.Concurrency)
	}
	if cfg.Providers["claude"].Enabled {
		t.Error("expected claude to be disabled")
	}
	if cfg.Providers["gemini"].Timeout != 60*time.Second {
		t.Errorf("expected 60s timeout, got %v", cfg.Providers["gemini"].Timeout)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Storage.Path != "/tmp/panelist.db" {
		t.Errorf("expected storage path override, got %s", cfg.Storage.Path)
	}
}

func TestLoadFromMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if cfg.Defaults.Provider != "claude" {
		t.Errorf("expected default provider claude, got %s", cfg.Defaults.Provider)
	}
	if cfg.Defaults.Rounds != 3 {
		t.Errorf("expected default rounds 3, got %d", cfg.Defaults.Rounds)
	}
	if _, ok := cfg.Providers["mock"]; !ok {
		t.Error("expected mock provider in defaults")
	}
}

func TestLoadFromMergesMissingProviders(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")

	content := `
defaults:
  provider: codex
  rounds: 1
providers:
  codex:
    command: codex
    enabled: true
personas:
  - id: security-auditor
    name: Security Auditor
    role: application security engineer
    sentiment_bias: -0.4
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}

	if cfg.Defaults.Provider != "codex" {
		t.Errorf("expected provider codex, got %s", cfg.Defaults.Provider)
	}
	if _, ok := cfg.Providers["claude"]; !ok {
		t.Error("expected claude merged from defaults")
	}

	personas := cfg.CustomPersonas()
	if len(personas) != 1 {
		t.Fatalf("expected 1 custom persona, got %d", len(personas))
	}
	if personas[0].ID != "security-auditor" || personas[0].SentimentBias != -0.4 {
		t.Errorf("unexpected persona: %+v", personas[0])
	}
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := Default()
	cfg.Defaults.Rounds = 7
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if loaded.Defaults.Rounds != 7 {
		t.Errorf("expected rounds 7 after reload, got %d", loaded.Defaults.Rounds)
	}
}

func TestCreateGenerator(t *testing.T) {
	cfg := Default()

	gen, err := cfg.CreateGenerator("mock", "")
	if err != nil {
		t.Fatalf("CreateGenerator failed: %v", err)
	}
	if gen == nil {
		t.Fatal("expected a generator")
	}

	if _, err := cfg.CreateGenerator("missing", ""); err == nil {
		t.Error("expected error for unknown provider")
	}

	claude := cfg.Providers["claude"]
	claude.Enabled = false
	cfg.Providers["claude"] = claude
	if _, err := cfg.CreateGenerator("claude", ""); err == nil {
		t.Error("expected error for disabled provider")
	}
}

func TestCreateRegistrySkipsDisabled(t *testing.T) {
	cfg := Default()
	gemini := cfg.Providers["gemini"]
	gemini.Enabled = false
	cfg.Providers["gemini"] = gemini

	registry := cfg.CreateRegistry()
	if _, err := registry.Get("gemini"); err == nil {
		t.Error("expected gemini to be absent from registry")
	}
	if _, err := registry.Get("mock"); err != nil {
		t.Errorf("expected mock in registry: %v", err)
	}
}
