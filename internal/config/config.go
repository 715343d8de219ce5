// Package config loads EchoRepo settings from built-in defaults, an optional
// TOML file, a .env file and the process environment, in that order of
// increasing precedence.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/wonder-codes/echo-repo/internal/utils"
)

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"

	FetcherGitHub = "github"
	FetcherGit    = "git"
)

// Config is the complete service configuration.
type Config struct {
	Port                 int      `toml:"port"`
	StoreURL             string   `toml:"store_url"` // redis:// URL or SQLite path; empty uses the default SQLite path
	Fetcher              string   `toml:"fetcher"`
	SourceExtensions     []string `toml:"source_extensions"`
	MaxStoredSourceBytes int      `toml:"max_stored_source_bytes"`
	MaxBodyBytes         int64    `toml:"max_body_bytes"`
	LogLevel             string   `toml:"log_level"`
	LogFormat            string   `toml:"log_format"`

	LLM      LLMConfig      `toml:"llm"`
	GitHub   GitHubConfig   `toml:"github"`
	Timeouts TimeoutsConfig `toml:"timeouts"`
}

type LLMConfig struct {
	Provider              string  `toml:"provider"`
	APIKey                string  `toml:"api_key"`
	BaseURL               string  `toml:"base_url"`
	GenerationModel       string  `toml:"generation_model"`
	ChatModel             string  `toml:"chat_model"`
	GenerationTemperature float32 `toml:"generation_temperature"`
	ChatTemperature       float32 `toml:"chat_temperature"`
	MaxTokens             int     `toml:"max_tokens"`
}

type GitHubConfig struct {
	Token   string `toml:"token"`
	BaseURL string `toml:"base_url"`
}

// TimeoutsConfig bounds each external call. Zero disables the bound.
type TimeoutsConfig struct {
	Fetch    time.Duration `toml:"fetch"`
	Generate time.Duration `toml:"generate"`
	Chat     time.Duration `toml:"chat"`
	Store    time.Duration `toml:"store"`
}

func Default() *Config {
	return &Config{
		Port:                 5000,
		Fetcher:              FetcherGitHub,
		MaxStoredSourceBytes: 1 << 20,
		MaxBodyBytes:         10 << 20,
		LogLevel:             "info",
		LogFormat:            "console",
		LLM: LLMConfig{
			Provider:              ProviderOpenAI,
			GenerationModel:       "gpt-4o-mini",
			ChatModel:             "gpt-4o-mini",
			GenerationTemperature: 0.7,
			ChatTemperature:       0,
			MaxTokens:             4096,
		},
		Timeouts: TimeoutsConfig{
			Fetch:    2 * time.Minute,
			Generate: 3 * time.Minute,
			Chat:     2 * time.Minute,
			Store:    10 * time.Second,
		},
	}
}

// Load builds the configuration. path may be empty.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, errors.Wrapf(err, "decode config file %s", path)
		}
	}

	if err := utils.LoadEnv(); err != nil {
		return nil, errors.Wrap(err, "load .env")
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// ApplyEnv overrides fields from environment variables.
func (c *Config) ApplyEnv(lookup LookupFunc) error {
	e := envReader{lookup: lookup}

	e.setInt(&c.Port, "PORT")
	e.setString(&c.StoreURL, "STORE_URL", "DATABASE_URL")
	e.setString(&c.Fetcher, "REPO_FETCHER")
	e.setInt(&c.MaxStoredSourceBytes, "MAX_STORED_SOURCE_BYTES")
	e.setInt64(&c.MaxBodyBytes, "MAX_BODY_BYTES")
	e.setString(&c.LogLevel, "LOG_LEVEL")
	e.setString(&c.LogFormat, "LOG_FORMAT")

	e.setString(&c.LLM.Provider, "LLM_PROVIDER")
	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	e.setString(&c.LLM.APIKey, "LLM_API_KEY", providerKeyEnv(c.LLM.Provider))
	e.setString(&c.LLM.BaseURL, "LLM_BASE_URL")
	e.setString(&c.LLM.GenerationModel, "GENERATION_MODEL")
	e.setString(&c.LLM.ChatModel, "CHAT_MODEL")
	e.setFloat32(&c.LLM.GenerationTemperature, "GENERATION_TEMPERATURE")
	e.setFloat32(&c.LLM.ChatTemperature, "CHAT_TEMPERATURE")
	e.setInt(&c.LLM.MaxTokens, "LLM_MAX_TOKENS")

	e.setString(&c.GitHub.Token, "GITHUB_TOKEN")
	e.setString(&c.GitHub.BaseURL, "GITHUB_API_URL")

	e.setDuration(&c.Timeouts.Fetch, "FETCH_TIMEOUT")
	e.setDuration(&c.Timeouts.Generate, "GENERATION_TIMEOUT")
	e.setDuration(&c.Timeouts.Chat, "CHAT_TIMEOUT")
	e.setDuration(&c.Timeouts.Store, "STORE_TIMEOUT")

	return e.err
}

func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case ProviderOpenAI, ProviderAnthropic, ProviderGemini:
	default:
		return fmt.Errorf("unsupported llm provider %q", c.LLM.Provider)
	}
	switch c.Fetcher {
	case FetcherGitHub, FetcherGit:
	default:
		return fmt.Errorf("unsupported repository fetcher %q", c.Fetcher)
	}
	switch strings.ToLower(c.LogFormat) {
	case "console", "json":
	default:
		return fmt.Errorf("unsupported log format %q", c.LogFormat)
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel)); err != nil {
		return fmt.Errorf("unsupported log level %q", c.LogLevel)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.MaxStoredSourceBytes < 0 || c.MaxBodyBytes < 0 || c.LLM.MaxTokens < 0 {
		return errors.New("size limits must not be negative")
	}
	if c.Timeouts.Fetch < 0 || c.Timeouts.Generate < 0 || c.Timeouts.Chat < 0 || c.Timeouts.Store < 0 {
		return errors.New("timeouts must not be negative")
	}
	return nil
}

func providerKeyEnv(provider string) string {
	switch provider {
	case ProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	case ProviderGemini:
		return "GEMINI_API_KEY"
	default:
		return "OPENAI_API_KEY"
	}
}

// envReader applies the first set variable among keys and keeps the first
// parse error.
type envReader struct {
	lookup LookupFunc
	err    error
}

func (e *envReader) value(keys ...string) (string, string, bool) {
	for _, k := range keys {
		if v, ok := e.lookup(k); ok && strings.TrimSpace(v) != "" {
			return k, strings.TrimSpace(v), true
		}
	}
	return "", "", false
}

func (e *envReader) fail(key string, err error) {
	if e.err == nil {
		e.err = errors.Wrapf(err, "parse %s", key)
	}
}

func (e *envReader) setString(dst *string, keys ...string) {
	if _, v, ok := e.value(keys...); ok {
		*dst = v
	}
}

func (e *envReader) setInt(dst *int, keys ...string) {
	if k, v, ok := e.value(keys...); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			e.fail(k, err)
			return
		}
		*dst = n
	}
}

func (e *envReader) setInt64(dst *int64, keys ...string) {
	if k, v, ok := e.value(keys...); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			e.fail(k, err)
			return
		}
		*dst = n
	}
}

func (e *envReader) setFloat32(dst *float32, keys ...string) {
	if k, v, ok := e.value(keys...); ok {
		f, err := strconv.ParseFloat(v, 32)
		if err != nil {
			e.fail(k, err)
			return
		}
		*dst = float32(f)
	}
}

func (e *envReader) setDuration(dst *time.Duration, keys ...string) {
	if k, v, ok := e.value(keys...); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			e.fail(k, err)
			return
		}
		*dst = d
	}
}
