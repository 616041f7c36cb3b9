// Package config loads and validates adforge configuration.
// Configuration lives in .adforge/config.yaml; API keys are normally
// supplied through environment variables rather than checked-in files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all adforge configuration.
type Config struct {
	// Core settings
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Image generation provider
	Provider ProviderConfig `yaml:"provider"`

	// Brief construction (Conductor) LLM
	Conductor ConductorConfig `yaml:"conductor"`

	// Generation orchestration
	Generation GenerationConfig `yaml:"generation"`

	// Quality control
	Quality QualityConfig `yaml:"quality"`

	// Persistence
	Store StoreConfig `yaml:"store"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// ProviderConfig configures the text-to-image provider.
type ProviderConfig struct {
	Name    string `yaml:"name"` // openai, gemini
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
	Timeout string `yaml:"timeout"`

	// MaxPromptLength is the provider's prompt cutoff. Crafted prompts are
	// truncated to this length before submission.
	MaxPromptLength int `yaml:"max_prompt_length"`

	// Cost table in minor currency units (cents) per generated image.
	SquareCostCents int `yaml:"square_cost_cents"`
	WideCostCents   int `yaml:"wide_cost_cents"`
}

// ConductorConfig configures the brief-construction LLM.
type ConductorConfig struct {
	APIKey    string `yaml:"api_key"`
	BaseURL   string `yaml:"base_url"`
	Model     string `yaml:"model"`
	Timeout   string `yaml:"timeout"`
	MaxTokens int    `yaml:"max_tokens"`
}

// GenerationConfig configures the parallel generation orchestrator.
type GenerationConfig struct {
	// MaxConcurrent caps in-flight provider calls (batch size).
	MaxConcurrent int `yaml:"max_concurrent"`

	// MaxAttempts per asset before it is counted as failed.
	MaxAttempts int `yaml:"max_attempts"`

	// RetryBackoffBase is doubled per attempt: base*2, base*4, base*8...
	RetryBackoffBase string `yaml:"retry_backoff_base"`

	// RetryBackoffMax caps the backoff between attempts.
	RetryBackoffMax string `yaml:"retry_backoff_max"`

	// CallTimeout bounds one provider call.
	CallTimeout string `yaml:"call_timeout"`
}

// QualityConfig configures batch quality control.
type QualityConfig struct {
	// BatchSize caps concurrently-validated assets.
	BatchSize int `yaml:"batch_size"`

	// Default thresholds, used when the brief carries none.
	BrandAlignmentThreshold float64 `yaml:"brand_alignment_threshold"`
	VisualQualityThreshold  float64 `yaml:"visual_quality_threshold"`
}

// StoreConfig configures the SQLite store.
type StoreConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	DebugMode  bool            `yaml:"debug_mode"`
	Categories map[string]bool `yaml:"categories"`
	Level      string          `yaml:"level"` // debug, info, warn, error
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "adforge",
		Version: "0.3.0",

		Provider: ProviderConfig{
			Name:            "openai",
			BaseURL:         "https://api.openai.com/v1",
			Model:           "dall-e-3",
			Timeout:         "120s",
			MaxPromptLength: 3900,
			SquareCostCents: 8,
			WideCostCents:   12,
		},

		Conductor: ConductorConfig{
			BaseURL:   "https://api.anthropic.com/v1",
			Model:     "claude-sonnet-4-20250514",
			Timeout:   "120s",
			MaxTokens: 4000,
		},

		Generation: GenerationConfig{
			MaxConcurrent:    3,
			MaxAttempts:      3,
			RetryBackoffBase: "1s",
			RetryBackoffMax:  "5m",
			CallTimeout:      "120s",
		},

		Quality: QualityConfig{
			BatchSize:               5,
			BrandAlignmentThreshold: 0.85,
			VisualQualityThreshold:  0.90,
		},

		Store: StoreConfig{
			DatabasePath: ".adforge/adforge.db",
		},

		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Return defaults if config file doesn't exist
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	// Provider API key (check in priority order; last match wins like the
	// provider switch below)
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		c.Provider.APIKey = key
		if c.Provider.Name == "" {
			c.Provider.Name = "openai"
		}
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" && c.Provider.Name == "gemini" {
		c.Provider.APIKey = key
	}
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		c.Conductor.APIKey = key
	}

	if path := os.Getenv("ADFORGE_DB_PATH"); path != "" {
		c.Store.DatabasePath = path
	}
	if os.Getenv("ADFORGE_DEBUG") == "1" {
		c.Logging.DebugMode = true
		c.Logging.Level = "debug"
	}
}

// Validate checks configuration consistency before a pipeline run.
func (c *Config) Validate() error {
	switch c.Provider.Name {
	case "openai", "gemini":
	default:
		return fmt.Errorf("unknown provider %q", c.Provider.Name)
	}
	if c.Generation.MaxConcurrent < 1 {
		return fmt.Errorf("generation.max_concurrent must be >= 1, got %d", c.Generation.MaxConcurrent)
	}
	if c.Generation.MaxAttempts < 1 {
		return fmt.Errorf("generation.max_attempts must be >= 1, got %d", c.Generation.MaxAttempts)
	}
	if c.Quality.BatchSize < 1 {
		return fmt.Errorf("quality.batch_size must be >= 1, got %d", c.Quality.BatchSize)
	}
	if c.Provider.MaxPromptLength < 1 {
		return fmt.Errorf("provider.max_prompt_length must be >= 1, got %d", c.Provider.MaxPromptLength)
	}
	return nil
}

// ParseTimeout parses a duration string, falling back to a default.
func ParseTimeout(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
