// Package config loads and persists the application settings. Precedence is
// flags over environment variables over the config file over built-in
// defaults; the flag layer is applied by the command layer.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// DefaultPath is where settings live unless --config says otherwise.
const DefaultPath = "~/.tasktalk/config.json"

// DefaultSystemPrompt steers the model toward the task functions. It is sent
// with every request but never stored in the conversation history.
const DefaultSystemPrompt = "You manage the user's task list. Use the provided functions to add, " +
	"look up, or update tasks before answering, and reply in plain language. " +
	"Task names are the handles for updates, so repeat them exactly."

const (
	defaultProvider        = "gemini"
	defaultMaxToolRounds   = 10
	defaultMaxHistoryTurns = 200
	defaultPort            = 8080
)

type Config struct {
	Provider        string `json:"provider"`
	Model           string `json:"model"`
	BaseURL         string `json:"base_url,omitempty"`
	APIKey          string `json:"api_key,omitempty"`
	SystemPrompt    string `json:"system_prompt,omitempty"`
	MaxToolRounds   int    `json:"max_tool_rounds,omitempty"`
	MaxHistoryTurns int    `json:"max_history_turns,omitempty"`
	Port            int    `json:"port,omitempty"`
}

func Default() Config {
	return Config{
		Provider:        defaultProvider,
		SystemPrompt:    DefaultSystemPrompt,
		MaxToolRounds:   defaultMaxToolRounds,
		MaxHistoryTurns: defaultMaxHistoryTurns,
		Port:            defaultPort,
	}
}

// Load reads the JSON file at path and overlays it on the defaults. The
// returned config is usable even when the file is missing; the error then
// satisfies os.IsNotExist.
func Load(path string) (Config, error) {
	cfg := Default()

	path, err := expandHome(path)
	if err != nil {
		return cfg, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if cfg.Provider == "" {
		cfg.Provider = defaultProvider
	}
	return cfg, nil
}

// Save writes the config as indented JSON, creating the directory if needed.
func (c Config) Save(path string) error {
	path, err := expandHome(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ApplyEnv overlays TASKTALK_* environment variables on the config.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("TASKTALK_PROVIDER"); v != "" {
		c.Provider = v
	}
	if v := os.Getenv("TASKTALK_MODEL"); v != "" {
		c.Model = v
	}
	if v := os.Getenv("TASKTALK_BASE_URL"); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv("TASKTALK_SYSTEM_PROMPT"); v != "" {
		c.SystemPrompt = v
	}
	applyIntEnv("TASKTALK_MAX_TOOL_ROUNDS", &c.MaxToolRounds)
	applyIntEnv("TASKTALK_MAX_HISTORY_TURNS", &c.MaxHistoryTurns)
	applyIntEnv("TASKTALK_PORT", &c.Port)
}

func applyIntEnv(name string, dst *int) {
	if v := os.Getenv(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			*dst = n
		}
	}
}

// DefaultModel returns the model used when none is configured.
func DefaultModel(provider string) string {
	switch provider {
	case "openai":
		return "gpt-4o"
	case "anthropic":
		return "claude-3-5-sonnet-latest"
	case "ollama":
		return "llama3.2"
	default:
		return "gemini-2.0-flash"
	}
}

// APIKeyEnv returns the environment variable holding the provider's API key.
func APIKeyEnv(provider string) string {
	switch provider {
	case "openai":
		return "OPENAI_API_KEY"
	case "anthropic":
		return "ANTHROPIC_API_KEY"
	case "gemini":
		return "GEMINI_API_KEY"
	default:
		return ""
	}
}

// NeedsAPIKey reports whether the provider requires a key. Ollama talks to a
// local server and does not.
func NeedsAPIKey(provider string) bool {
	return provider != "ollama"
}

// HasAPIKey reports whether a usable key is already available for the
// configured provider, in the config itself or in the environment.
func (c Config) HasAPIKey() bool {
	if !NeedsAPIKey(c.Provider) {
		return true
	}
	if c.APIKey != "" {
		return true
	}
	if env := APIKeyEnv(c.Provider); env != "" && os.Getenv(env) != "" {
		return true
	}
	// The Gemini tooling honors both variables.
	return c.Provider == "gemini" && os.Getenv("GOOGLE_API_KEY") != ""
}

func expandHome(path string) (string, error) {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, path[2:]), nil
	}
	return path, nil
}
