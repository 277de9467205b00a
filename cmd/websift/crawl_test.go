package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/websift/websift/internal/config"
)

// TestNewCrawlCmd tests the crawl command creation.
func TestNewCrawlCmd(t *testing.T) {
	t.Parallel()

	cmd := NewCrawlCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "crawl [url...]" {
			t.Errorf("expected use 'crawl [url...]', got %q", cmd.Use)
		}
	})

	t.Run("has short description", func(t *testing.T) {
		t.Parallel()
		if cmd.Short == "" {
			t.Error("expected non-empty short description")
		}
	})

	t.Run("has long description", func(t *testing.T) {
		t.Parallel()
		if cmd.Long == "" {
			t.Error("expected non-empty long description")
		}
	})

	t.Run("has query flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("query")
		if flag == nil {
			t.Fatal("expected query flag")
		}
		if flag.Shorthand != "q" {
			t.Errorf("expected shorthand 'q', got %q", flag.Shorthand)
		}
	})

	t.Run("has max-pages flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("max-pages")
		if flag == nil {
			t.Fatal("expected max-pages flag")
		}
		if flag.Shorthand != "p" {
			t.Errorf("expected shorthand 'p', got %q", flag.Shorthand)
		}
		if flag.DefValue != "10" {
			t.Errorf("expected default '10', got %q", flag.DefValue)
		}
	})

	t.Run("has depth flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("depth")
		if flag == nil {
			t.Fatal("expected depth flag")
		}
		if flag.Shorthand != "d" {
			t.Errorf("expected shorthand 'd', got %q", flag.Shorthand)
		}
		if flag.DefValue != "2" {
			t.Errorf("expected default '2', got %q", flag.DefValue)
		}
	})

	t.Run("has same-domain flag defaulting on", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("same-domain")
		if flag == nil {
			t.Fatal("expected same-domain flag")
		}
		if flag.DefValue != "true" {
			t.Errorf("expected default 'true', got %q", flag.DefValue)
		}
	})

	t.Run("has single flag", func(t *testing.T) {
		t.Parallel()
		if cmd.Flags().Lookup("single") == nil {
			t.Fatal("expected single flag")
		}
	})

	t.Run("has delay flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("delay")
		if flag == nil {
			t.Fatal("expected delay flag")
		}
		if flag.Shorthand != "w" {
			t.Errorf("expected shorthand 'w', got %q", flag.Shorthand)
		}
	})

	t.Run("has keywords flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("keywords")
		if flag == nil {
			t.Fatal("expected keywords flag")
		}
		if flag.Shorthand != "k" {
			t.Errorf("expected shorthand 'k', got %q", flag.Shorthand)
		}
	})

	t.Run("has render flags", func(t *testing.T) {
		t.Parallel()
		if cmd.Flags().Lookup("render") == nil {
			t.Fatal("expected render flag")
		}
		if cmd.Flags().Lookup("render-endpoint") == nil {
			t.Fatal("expected render-endpoint flag")
		}
	})

	t.Run("has export flags", func(t *testing.T) {
		t.Parallel()
		if cmd.Flags().Lookup("json") == nil {
			t.Fatal("expected json flag")
		}
		if cmd.Flags().Lookup("markdown") == nil {
			t.Fatal("expected markdown flag")
		}
		if cmd.Flags().Lookup("output") == nil {
			t.Fatal("expected output flag")
		}
	})

	t.Run("has config flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("config")
		if flag == nil {
			t.Fatal("expected config flag")
		}
		if flag.Shorthand != "c" {
			t.Errorf("expected shorthand 'c', got %q", flag.Shorthand)
		}
	})
}

// TestBuildConfig tests translating command flags into a Config.
func TestBuildConfig(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		cmd := NewCrawlCmd()
		if err := cmd.ParseFlags(nil); err != nil {
			t.Fatalf("failed to parse flags: %v", err)
		}

		cfg, err := buildConfig(cmd, []string{"https://example.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.MaxPages != config.DefaultMaxPages {
			t.Errorf("expected default max pages, got %d", cfg.MaxPages)
		}
		if cfg.MaxDepth != config.DefaultMaxDepth {
			t.Errorf("expected default depth, got %d", cfg.MaxDepth)
		}
		if !cfg.SameDomain {
			t.Error("expected same-domain default on")
		}
		if !cfg.Crawl {
			t.Error("expected crawl mode by default")
		}
		if !cfg.SaveToDB {
			t.Error("expected persistence by default")
		}
		if len(cfg.SeedURLs) != 1 || cfg.SeedURLs[0] != "https://example.com" {
			t.Errorf("unexpected seeds %v", cfg.SeedURLs)
		}
		if cfg.DBDir == "" {
			t.Error("expected db dir to default to the data directory")
		}
		if cfg.Sites == nil {
			t.Error("expected site config to be initialized")
		}
	})

	t.Run("single disables crawl", func(t *testing.T) {
		t.Parallel()

		cmd := NewCrawlCmd()
		if err := cmd.ParseFlags([]string{"--single"}); err != nil {
			t.Fatalf("failed to parse flags: %v", err)
		}

		cfg, err := buildConfig(cmd, []string{"https://example.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Crawl {
			t.Error("expected crawl to be disabled")
		}
	})

	t.Run("no-save disables persistence", func(t *testing.T) {
		t.Parallel()

		cmd := NewCrawlCmd()
		if err := cmd.ParseFlags([]string{"--no-save"}); err != nil {
			t.Fatalf("failed to parse flags: %v", err)
		}

		cfg, err := buildConfig(cmd, []string{"https://example.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.SaveToDB {
			t.Error("expected persistence to be disabled")
		}
	})

	t.Run("keywords and delay round trip", func(t *testing.T) {
		t.Parallel()

		cmd := NewCrawlCmd()
		if err := cmd.ParseFlags([]string{"-k", "golang,goroutine", "-w", "250ms"}); err != nil {
			t.Fatalf("failed to parse flags: %v", err)
		}

		cfg, err := buildConfig(cmd, []string{"https://example.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(cfg.Keywords) != 2 || cfg.Keywords[0] != "golang" || cfg.Keywords[1] != "goroutine" {
			t.Errorf("unexpected keywords %v", cfg.Keywords)
		}
		if cfg.CrawlDelay != 250*time.Millisecond {
			t.Errorf("unexpected delay %v", cfg.CrawlDelay)
		}
	})

	t.Run("explicit config file is loaded", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), ".websift")
		content := "sites:\n  members.example.com:\n    cookie: \"session=abc\"\n"
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cmd := NewCrawlCmd()
		if err := cmd.ParseFlags([]string{"-c", path}); err != nil {
			t.Fatalf("failed to parse flags: %v", err)
		}

		cfg, err := buildConfig(cmd, []string{"https://example.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Sites.GetSiteConfig("members.example.com").Cookie != "session=abc" {
			t.Error("expected site cookie from config file")
		}
	})

	t.Run("explicit missing config file is an error", func(t *testing.T) {
		t.Parallel()

		cmd := NewCrawlCmd()
		if err := cmd.ParseFlags([]string{"-c", filepath.Join(t.TempDir(), "nope")}); err != nil {
			t.Fatalf("failed to parse flags: %v", err)
		}

		_, err := buildConfig(cmd, []string{"https://example.com"})
		if err == nil {
			t.Fatal("expected error for missing config file")
		}
		if !strings.Contains(err.Error(), "not found") {
			t.Errorf("unexpected error %v", err)
		}
	})
}

// TestNewJob tests job construction from a config.
func TestNewJob(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	cfg.SeedURLs = []string{"https://example.com"}
	cfg.Keywords = []string{"pricing"}
	cfg.Crawl = true
	cfg.JSONExport = true

	job := newJob(cfg)

	if job.ID == "" {
		t.Error("expected generated job ID")
	}
	if job.Status != "pending" {
		t.Errorf("expected pending status, got %q", job.Status)
	}
	if job.ExportFormat != "json" {
		t.Errorf("expected json export format, got %q", job.ExportFormat)
	}
	if job.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
	if !job.Crawl {
		t.Error("expected crawl flag to carry through")
	}
}
