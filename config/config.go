// Package config loads toolchat settings from a YAML file, an optional .env
// file and environment variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/fwojciec/toolchat"
	"github.com/fwojciec/toolchat/registry"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file read when no path is given.
const DefaultPath = "toolchat.yaml"

// DefaultSystemPrompt is sent when the config does not set one.
const DefaultSystemPrompt = `You are a helpful AI assistant.

You can use tools to help the user:
- calculator: arithmetic
- get_weather: current weather for a city
- read_webpage: read the text of a web page
- get_datetime: current date and time
- manage_notes: save and retrieve notes

Use the tools when they help. Keep answers concise but complete.`

// Providers.
const (
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

// Notes backends.
const (
	NotesJSON  = "json"
	NotesRedis = "redis"
)

// Config holds every toolchat setting.
type Config struct {
	Provider       string `yaml:"provider"`
	Model          string `yaml:"model"`
	APIKey         string `yaml:"api_key"`
	MaxTokens      int    `yaml:"max_tokens"`
	MaxRounds      int    `yaml:"max_rounds"`
	SystemPrompt   string `yaml:"system_prompt"`
	DuplicateTools string `yaml:"duplicate_tools"`
	ExtraTools     bool   `yaml:"extra_tools"`
	Stream         bool   `yaml:"stream"`
	LogLevel       string `yaml:"log_level"`
	LogFormat      string `yaml:"log_format"`

	Notes   NotesConfig   `yaml:"notes"`
	Weather WeatherConfig `yaml:"weather"`
	Server  ServerConfig  `yaml:"server"`
	Tracing TracingConfig `yaml:"tracing"`

	// Keys found in the environment, used by ResolveProvider.
	AnthropicAPIKey string `yaml:"-"`
	GeminiAPIKey    string `yaml:"-"`
}

// NotesConfig selects the manage_notes storage.
type NotesConfig struct {
	Backend   string `yaml:"backend"`
	Path      string `yaml:"path"`
	RedisAddr string `yaml:"redis_addr"`
	RedisKey  string `yaml:"redis_key"`
}

// WeatherConfig configures the get_weather tool.
type WeatherConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// TracingConfig toggles OTLP trace export.
type TracingConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Default returns the settings used for anything the file and environment
// leave unset.
func Default() Config {
	return Config{
		MaxRounds:      10,
		SystemPrompt:   DefaultSystemPrompt,
		DuplicateTools: "overwrite",
		Stream:         true,
		LogLevel:       "warn",
		LogFormat:      "text",
		Notes: NotesConfig{
			Backend:  NotesJSON,
			Path:     "agent_notes.json",
			RedisKey: "toolchat:notes",
		},
		Server: ServerConfig{Addr: ":8080"},
	}
}

// Load reads the YAML file at path over Default and then applies overrides
// from getenv. A missing file is an error only when required is set.
func Load(path string, required bool, getenv func(string) string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist) && !required:
	case err != nil:
		return Config{}, fmt.Errorf("config: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	cfg.applyEnv(getenv)
	return cfg, nil
}

// LoadDotEnv loads KEY=value pairs from the given files into the process
// environment without overriding variables that are already set. Missing
// files are skipped. With no paths it reads ".env".
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config: %w", err)
		}
	}
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	set(&c.Provider, "TOOLCHAT_PROVIDER")
	set(&c.Model, "TOOLCHAT_MODEL")
	set(&c.Weather.APIKey, "WEATHER_API_KEY")
	set(&c.Notes.RedisAddr, "REDIS_ADDR")
	set(&c.AnthropicAPIKey, "ANTHROPIC_API_KEY")
	set(&c.GeminiAPIKey, "GEMINI_API_KEY")
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch c.Provider {
	case "", ProviderAnthropic, ProviderGemini:
	default:
		return fmt.Errorf("config: unknown provider %q: must be %q or %q: %w", c.Provider, ProviderAnthropic, ProviderGemini, toolchat.ErrValidation)
	}
	if c.MaxTokens < 0 {
		return fmt.Errorf("config: max_tokens must be >= 0, got %d: %w", c.MaxTokens, toolchat.ErrValidation)
	}
	if c.MaxRounds < 0 {
		return fmt.Errorf("config: max_rounds must be >= 0, got %d: %w", c.MaxRounds, toolchat.ErrValidation)
	}
	if _, err := registry.ParseDuplicatePolicy(c.DuplicateTools); err != nil {
		return fmt.Errorf("config: duplicate_tools: %w", err)
	}
	switch c.Notes.Backend {
	case NotesJSON:
		if c.Notes.Path == "" {
			return fmt.Errorf("config: notes.path is required for the json backend: %w", toolchat.ErrValidation)
		}
	case NotesRedis:
		if c.Notes.RedisAddr == "" {
			return fmt.Errorf("config: notes.redis_addr is required for the redis backend: %w", toolchat.ErrValidation)
		}
	default:
		return fmt.Errorf("config: unknown notes backend %q: %w", c.Notes.Backend, toolchat.ErrValidation)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("config: unknown log_format %q: %w", c.LogFormat, toolchat.ErrValidation)
	}
	return nil
}

// ResolveProvider picks the provider and its API key. An explicit provider
// wins; otherwise it is detected from which of ANTHROPIC_API_KEY and
// GEMINI_API_KEY is set. An explicit api_key overrides the environment key.
func (c Config) ResolveProvider() (provider, key string, err error) {
	provider = c.Provider
	if provider == "" {
		hasAnthropic := c.AnthropicAPIKey != ""
		hasGemini := c.GeminiAPIKey != ""
		switch {
		case hasAnthropic && hasGemini:
			return "", "", fmt.Errorf("config: multiple API keys found (ANTHROPIC_API_KEY, GEMINI_API_KEY): use --provider to select")
		case hasAnthropic:
			provider = ProviderAnthropic
		case hasGemini:
			provider = ProviderGemini
		default:
			return "", "", fmt.Errorf("config: no API key found: set ANTHROPIC_API_KEY or GEMINI_API_KEY (or use --provider and --api-key)")
		}
	}

	key = c.APIKey
	switch provider {
	case ProviderAnthropic:
		if key == "" {
			key = c.AnthropicAPIKey
		}
		if key == "" {
			return "", "", fmt.Errorf("config: ANTHROPIC_API_KEY not set (use --api-key or the environment variable)")
		}
	case ProviderGemini:
		if key == "" {
			key = c.GeminiAPIKey
		}
		if key == "" {
			return "", "", fmt.Errorf("config: GEMINI_API_KEY not set (use --api-key or the environment variable)")
		}
	default:
		return "", "", fmt.Errorf("config: unknown provider %q: must be %q or %q", provider, ProviderAnthropic, ProviderGemini)
	}
	return provider, key, nil
}

// Logger builds a slog logger writing to w with the configured level and
// format. Invalid settings fall back to warn and text.
func (c Config) Logger(w io.Writer) *slog.Logger {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		level = slog.LevelWarn
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return 0, fmt.Errorf("config: unknown log_level %q: %w", s, toolchat.ErrValidation)
	}
	return level, nil
}
