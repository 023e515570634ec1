package testsupport

import (
	"path/filepath"
	"testing"

	"setlist/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.CacheDir = filepath.Join(base, "cache")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Fetch.MinRequestInterval = 0

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithKeywords overrides the curation keyword list on the test config.
func WithKeywords(keywords ...string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Curation.Keywords = keywords
	}
}
