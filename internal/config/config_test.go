package config

import (
	"errors"
	"testing"
	"time"
)

// validConfig returns a Config that passes validation.
func validConfig() *Config {
	cfg := NewConfig()
	cfg.SeedURLs = []string{"https://example.com"}
	return cfg
}

// TestNewConfig tests default values.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	if cfg.MaxPages != DefaultMaxPages {
		t.Errorf("expected max pages %d, got %d", DefaultMaxPages, cfg.MaxPages)
	}
	if cfg.MaxDepth != DefaultMaxDepth {
		t.Errorf("expected max depth %d, got %d", DefaultMaxDepth, cfg.MaxDepth)
	}
	if !cfg.SameDomain {
		t.Error("expected same-domain scope by default")
	}
	if cfg.CrawlDelay != time.Second {
		t.Errorf("expected 1s crawl delay, got %v", cfg.CrawlDelay)
	}
	if cfg.UserAgent == "" {
		t.Error("expected a default user agent")
	}
	if cfg.SearchBaseURL == "" {
		t.Error("expected a default search base URL")
	}
}

// TestConfigValidate tests configuration validation.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	t.Run("valid config passes", func(t *testing.T) {
		t.Parallel()

		if err := validConfig().Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("query instead of seeds is valid", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.Query = "golang tutorials"
		if err := cfg.Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{
			name:   "no seed input",
			mutate: func(c *Config) { c.SeedURLs = nil },
			want:   ErrNoSeedInput,
		},
		{
			name:   "seeds and query conflict",
			mutate: func(c *Config) { c.Query = "also a query" },
			want:   ErrConflictingSeedInput,
		},
		{
			name:   "zero max pages",
			mutate: func(c *Config) { c.MaxPages = 0 },
			want:   ErrInvalidMaxPages,
		},
		{
			name:   "negative max depth",
			mutate: func(c *Config) { c.MaxDepth = -1 },
			want:   ErrInvalidMaxDepth,
		},
		{
			name:   "zero timeout",
			mutate: func(c *Config) { c.Timeout = 0 },
			want:   ErrInvalidTimeout,
		},
		{
			name:   "negative crawl delay",
			mutate: func(c *Config) { c.CrawlDelay = -time.Second },
			want:   ErrInvalidCrawlDelay,
		},
		{
			name:   "zero batch size",
			mutate: func(c *Config) { c.BatchSize = 0 },
			want:   ErrInvalidBatchSize,
		},
		{
			name: "conflicting export formats",
			mutate: func(c *Config) {
				c.JSONExport = true
				c.MarkdownExport = true
			},
			want: ErrConflictingExportFormats,
		},
		{
			name:   "render mode without endpoint",
			mutate: func(c *Config) { c.RenderMode = true },
			want:   ErrRenderEndpointMissing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}

	t.Run("zero max depth is valid", func(t *testing.T) {
		t.Parallel()

		cfg := validConfig()
		cfg.MaxDepth = 0
		if err := cfg.Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("zero crawl delay is valid", func(t *testing.T) {
		t.Parallel()

		cfg := validConfig()
		cfg.CrawlDelay = 0
		if err := cfg.Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}
