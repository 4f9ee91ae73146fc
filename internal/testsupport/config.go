// Package testsupport provides shared helpers for package tests: temp-backed
// configs and queue stores wired for automatic cleanup.
package testsupport

import (
	"path/filepath"
	"testing"

	"paneltrim/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.WorkDir = filepath.Join(base, "work")
	cfg.Paths.LogDir = filepath.Join(base, "logs")

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithScan overrides the scan cadences on the test config.
func WithScan(decodeFPS, sampleSpacing float64, acquireTimeoutSeconds int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Scan.DecodeFPS = decodeFPS
		cfg.Scan.SampleSpacing = sampleSpacing
		cfg.Scan.AcquireTimeoutSeconds = acquireTimeoutSeconds
	}
}
