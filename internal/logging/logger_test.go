package logging

import (
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"
)

func writeLoggingConfig(t *testing.T, ws string, cfg loggingConfig) {
	t.Helper()
	dir := filepath.Join(ws, ".adforge")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	data, err := yaml.Marshal(configFile{Logging: cfg})
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), data, 0644); err != nil {
		t.Fatal(err)
	}
}

func TestInitialize_NoConfigIsSilent(t *testing.T) {
	ws := t.TempDir()
	defer CloseAll()

	if err := Initialize(ws); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	if IsDebugMode() {
		t.Error("missing config should disable debug mode")
	}
	// No logs directory is created in production mode.
	if _, err := os.Stat(filepath.Join(ws, ".adforge", "logs")); !os.IsNotExist(err) {
		t.Error("logs directory should not exist without debug mode")
	}
}

func TestInitialize_DebugModeWritesFiles(t *testing.T) {
	ws := t.TempDir()
	defer CloseAll()
	defer SetDebugMode(false)

	writeLoggingConfig(t, ws, loggingConfig{DebugMode: true, Level: "debug"})
	if err := Initialize(ws); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}

	Pipeline("run started for %s", "camp-1")
	GenerationDebug("attempt %d", 1)

	entries, err := os.ReadDir(filepath.Join(ws, ".adforge", "logs"))
	if err != nil {
		t.Fatalf("logs directory missing: %v", err)
	}
	if len(entries) == 0 {
		t.Error("expected per-category log files")
	}
}

func TestIsCategoryEnabled(t *testing.T) {
	ws := t.TempDir()
	defer CloseAll()
	defer SetDebugMode(false)

	writeLoggingConfig(t, ws, loggingConfig{
		DebugMode:  true,
		Categories: map[string]bool{"store": false},
	})
	if err := Initialize(ws); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}

	if !IsCategoryEnabled(CategoryPipeline) {
		t.Error("unlisted categories default to enabled")
	}
	if IsCategoryEnabled(CategoryStore) {
		t.Error("explicitly disabled category should be off")
	}

	SetDebugMode(false)
	if IsCategoryEnabled(CategoryPipeline) {
		t.Error("no category is enabled outside debug mode")
	}
}
