package config

import (
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Provider.Name != "openai" {
		t.Errorf("default provider = %q, want openai", cfg.Provider.Name)
	}
	if cfg.Provider.MaxPromptLength != 3900 {
		t.Errorf("max prompt length = %d, want 3900", cfg.Provider.MaxPromptLength)
	}
	if cfg.Provider.SquareCostCents != 8 || cfg.Provider.WideCostCents != 12 {
		t.Errorf("cost table = %d/%d, want 8/12", cfg.Provider.SquareCostCents, cfg.Provider.WideCostCents)
	}
	if cfg.Generation.MaxConcurrent != 3 || cfg.Generation.MaxAttempts != 3 {
		t.Errorf("generation defaults = %d concurrent / %d attempts, want 3/3",
			cfg.Generation.MaxConcurrent, cfg.Generation.MaxAttempts)
	}
	if cfg.Quality.BatchSize != 5 {
		t.Errorf("quality batch size = %d, want 5", cfg.Quality.BatchSize)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope", "config.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Provider.Name != "openai" {
		t.Errorf("missing file should yield defaults, got provider %q", cfg.Provider.Name)
	}
}

func TestLoadSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".adforge", "config.yaml")

	cfg := DefaultConfig()
	cfg.Provider.Name = "gemini"
	cfg.Provider.Model = "imagen-4.0-generate-001"
	cfg.Generation.MaxConcurrent = 7
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Provider.Name != "gemini" || loaded.Provider.Model != "imagen-4.0-generate-001" {
		t.Errorf("provider not round-tripped: %+v", loaded.Provider)
	}
	if loaded.Generation.MaxConcurrent != 7 {
		t.Errorf("max_concurrent = %d, want 7", loaded.Generation.MaxConcurrent)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("ANTHROPIC_API_KEY", "ak-test")
	t.Setenv("ADFORGE_DB_PATH", "/tmp/override.db")

	cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Provider.APIKey != "sk-test" {
		t.Errorf("provider api key = %q, want env override", cfg.Provider.APIKey)
	}
	if cfg.Conductor.APIKey != "ak-test" {
		t.Errorf("conductor api key = %q, want env override", cfg.Conductor.APIKey)
	}
	if cfg.Store.DatabasePath != "/tmp/override.db" {
		t.Errorf("db path = %q, want env override", cfg.Store.DatabasePath)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid defaults", func(c *Config) {}, false},
		{"unknown provider", func(c *Config) { c.Provider.Name = "dalle2" }, true},
		{"zero concurrency", func(c *Config) { c.Generation.MaxConcurrent = 0 }, true},
		{"zero attempts", func(c *Config) { c.Generation.MaxAttempts = 0 }, true},
		{"zero batch size", func(c *Config) { c.Quality.BatchSize = 0 }, true},
		{"zero prompt length", func(c *Config) { c.Provider.MaxPromptLength = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseTimeout(t *testing.T) {
	tests := []struct {
		in       string
		fallback time.Duration
		want     time.Duration
	}{
		{"30s", time.Minute, 30 * time.Second},
		{"", time.Minute, time.Minute},
		{"garbage", time.Minute, time.Minute},
		{"-5s", time.Minute, time.Minute},
	}
	for _, tt := range tests {
		if got := ParseTimeout(tt.in, tt.fallback); got != tt.want {
			t.Errorf("ParseTimeout(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
