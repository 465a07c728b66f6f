package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rupor-github/gencfg"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfiguration_NoFile(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() with empty path error = %v", err)
	}
	if cfg == nil {
		t.Fatal("LoadConfiguration() returned nil config")
	}
	if cfg.Version != 1 {
		t.Errorf("Default config version = %d, want 1", cfg.Version)
	}
}

func TestConfig_DefaultValues(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if cfg.Extract.Input != "root-original.css" {
		t.Errorf("Input = %q, want root-original.css", cfg.Extract.Input)
	}
	if cfg.Extract.Output != "root-legacy.css" {
		t.Errorf("Output = %q, want root-legacy.css", cfg.Extract.Output)
	}
	if cfg.Extract.InvalidSuffix != ".invalid.css" {
		t.Errorf("InvalidSuffix = %q, want .invalid.css", cfg.Extract.InvalidSuffix)
	}
	if diff := cmp.Diff([]string{"root-legacy.css", "root-base.css"}, cfg.Extract.Containers.Defaults); diff != "" {
		t.Errorf("Containers.Defaults mismatch (-want +got):\n%s", diff)
	}
	if cfg.Extract.Containers.Name != "root-container.css" || cfg.Extract.Containers.Suffix != "-containers" {
		t.Errorf("unexpected containers config %+v", cfg.Extract.Containers)
	}
	if !cfg.Colors.Enable {
		t.Error("Expected color fallbacks to be enabled by default")
	}
	if diff := cmp.Diff([]string{"200C", "200D"}, cfg.Unicode.Escape); diff != "" {
		t.Errorf("Unicode.Escape mismatch (-want +got):\n%s", diff)
	}
	if cfg.Logging.ConsoleLogger.Level != "normal" {
		t.Errorf("Console level = %q, want normal", cfg.Logging.ConsoleLogger.Level)
	}
}

func TestLoadConfiguration_WithFile(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, `version: 1
extract:
  input: in/site.css
  output: out/site-legacy.css
colors:
  enable: false
unicode:
  dir: assets
  extensions: [.js, .mjs]
logging:
  console:
    level: debug
  file:
    level: debug
    destination: `+filepath.Join(dir, "test.log")+`
    mode: append
reporting:
  destination: `+filepath.Join(dir, "report.zip")+`
`)

	cfg, err := LoadConfiguration(path)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if cfg.Extract.Input != "in/site.css" || cfg.Extract.Output != "out/site-legacy.css" {
		t.Errorf("unexpected extract config %+v", cfg.Extract)
	}
	// defaults survive partial override
	if cfg.Extract.Containers.Name != "root-container.css" {
		t.Errorf("Containers.Name = %q, want default", cfg.Extract.Containers.Name)
	}
	if cfg.Colors.Enable {
		t.Error("Expected colors to be disabled from config file")
	}
	if diff := cmp.Diff([]string{".js", ".mjs"}, cfg.Unicode.Extensions); diff != "" {
		t.Errorf("Unicode.Extensions mismatch (-want +got):\n%s", diff)
	}
	if cfg.Logging.FileLogger.Mode != "append" {
		t.Errorf("FileLogger.Mode = %q, want append", cfg.Logging.FileLogger.Mode)
	}
}

func TestLoadConfiguration_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"invalid yaml", "version: 1\nextract:\n  input: a\n  invalid indent\n"},
		{"unknown field", "version: 1\nunknown_field: value\n"},
		{"bad version", "version: 2\n"},
		{"bad escape", "version: 1\nunicode:\n  escape: [zz]\n"},
		{"bad container name", "version: 1\nextract:\n  containers:\n    name: containers\n"},
		{"bad log level", "version: 1\nlogging:\n  console:\n    level: loud\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadConfiguration(writeConfig(t, tt.content)); err == nil {
				t.Error("Expected error, got nil")
			}
		})
	}
}

func TestLoadConfiguration_NonExistentFile(t *testing.T) {
	if _, err := LoadConfiguration("/nonexistent/config.yaml"); err == nil {
		t.Error("Expected error for nonexistent file")
	}
}

func TestLoadConfiguration_WithOptions(t *testing.T) {
	option := func(opts *gencfg.ProcessingOptions) {
		// Options are opaque, just test that we can pass them
	}
	cfg, err := LoadConfiguration("", option)
	if err != nil {
		t.Fatalf("LoadConfiguration() with options error = %v", err)
	}
	if cfg == nil {
		t.Fatal("LoadConfiguration() returned nil config")
	}
}

func TestPrepare(t *testing.T) {
	data, err := Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	if len(data) == 0 {
		t.Fatal("Prepare() returned empty data")
	}
	if _, err = unmarshalConfig(data, &Config{}, true); err != nil {
		t.Errorf("Prepared config is not valid: %v", err)
	}
}

func TestDump(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	cfg.Extract.Output = "dist/legacy.css"

	data, err := Dump(cfg)
	if err != nil {
		t.Fatalf("Dump() error = %v", err)
	}

	cfg2, err := unmarshalConfig(data, &Config{}, false)
	if err != nil {
		t.Fatalf("Dumped config cannot be loaded: %v", err)
	}
	if diff := cmp.Diff(cfg, cfg2); diff != "" {
		t.Errorf("Config mismatch after dump/load (-want +got):\n%s", diff)
	}
}
