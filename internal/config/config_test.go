package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"paneltrim/internal/config"
)

func TestDefaultValidatesAfterNormalize(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.WorkDir = filepath.Join(base, "work")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.toml")
	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if exists {
		t.Fatal("expected exists=false for missing file")
	}
	if resolved != path {
		t.Fatalf("expected resolved path %q, got %q", path, resolved)
	}
	if cfg.Scan.DecodeFPS != 10.0 {
		t.Fatalf("expected default decode_fps, got %v", cfg.Scan.DecodeFPS)
	}
	if cfg.Scan.SampleSpacing != 0.1 {
		t.Fatalf("expected default sample_spacing, got %v", cfg.Scan.SampleSpacing)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	base := t.TempDir()
	path := filepath.Join(base, "config.toml")
	content := strings.Join([]string{
		"[paths]",
		`data_dir = "` + filepath.Join(base, "d") + `"`,
		`work_dir = "` + filepath.Join(base, "w") + `"`,
		`log_dir = "` + filepath.Join(base, "l") + `"`,
		"[scan]",
		"decode_fps = 4.0",
		"sample_spacing = 0.25",
		"acquire_timeout_seconds = 5",
		"[logging]",
		`format = "json"`,
		`level = "debug"`,
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !exists {
		t.Fatal("expected exists=true")
	}
	if cfg.Scan.DecodeFPS != 4.0 || cfg.Scan.SampleSpacing != 0.25 {
		t.Fatalf("unexpected scan settings: %+v", cfg.Scan)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected logging settings: %+v", cfg.Logging)
	}
}

func TestLoadRejectsInvalidScan(t *testing.T) {
	base := t.TempDir()
	path := filepath.Join(base, "config.toml")
	if err := os.WriteFile(path, []byte("[scan]\ndecode_fps = -1.0\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected validation error for negative decode_fps")
	}
}

func TestExpandPathTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}
	expanded, err := config.ExpandPath("~/x")
	if err != nil {
		t.Fatalf("ExpandPath failed: %v", err)
	}
	if expanded != filepath.Join(home, "x") {
		t.Fatalf("expected %q, got %q", filepath.Join(home, "x"), expanded)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[scan]") {
		t.Fatal("expected sample to contain a [scan] section")
	}
}
