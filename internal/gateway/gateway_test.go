package gateway

import (
	"os"
	"path/filepath"
	"testing"
)

func clearOverrides(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"TASKTALK_PROVIDER",
		"TASKTALK_MODEL",
		"TASKTALK_BASE_URL",
		"TASKTALK_SYSTEM_PROMPT",
		"TASKTALK_MAX_TOOL_ROUNDS",
		"TASKTALK_MAX_HISTORY_TURNS",
		"TASKTALK_PORT",
	} {
		t.Setenv(name, "")
	}
}

func TestLoadConfigPrecedence(t *testing.T) {
	clearOverrides(t)

	path := filepath.Join(t.TempDir(), "config.json")
	file := `{"provider":"openai","model":"file-model","max_tool_rounds":3}`
	if err := os.WriteFile(path, []byte(file), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	// Environment beats the file, flags beat both.
	t.Setenv("TASKTALK_MODEL", "env-model")
	g := New(path)
	g.MaxToolRounds = 7

	cfg, err := g.LoadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Provider != "openai" {
		t.Errorf("provider = %q, want openai from the file", cfg.Provider)
	}
	if cfg.Model != "env-model" {
		t.Errorf("model = %q, want env-model", cfg.Model)
	}
	if cfg.MaxToolRounds != 7 {
		t.Errorf("rounds = %d, want the flag value 7", cfg.MaxToolRounds)
	}
}

func TestLoadConfigMissingFileIsFine(t *testing.T) {
	clearOverrides(t)

	g := New(filepath.Join(t.TempDir(), "absent.json"))
	cfg, err := g.LoadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Provider != "gemini" {
		t.Errorf("provider = %q, want the default", cfg.Provider)
	}
	if cfg.Model != "gemini-2.0-flash" {
		t.Errorf("model = %q, want the provider default", cfg.Model)
	}
}

func TestLoadConfigModelFollowsProviderOverride(t *testing.T) {
	clearOverrides(t)

	g := New(filepath.Join(t.TempDir(), "absent.json"))
	g.Provider = "anthropic"

	cfg, err := g.LoadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Model != "claude-3-5-sonnet-latest" {
		t.Errorf("model = %q, want the anthropic default", cfg.Model)
	}
}
