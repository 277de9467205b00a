package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/websift/websift/internal/config"
)

// TestStaticFetch tests the plain HTTP fetch path.
func TestStaticFetch(t *testing.T) {
	t.Parallel()

	t.Run("fetches and extracts an HTML page", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte(`<html><head><title>Hello</title></head><body><p>content</p></body></html>`))
		}))
		defer srv.Close()

		f := NewStatic(srv.Client())
		page, err := f.Fetch(context.Background(), srv.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if page.Title != "Hello" {
			t.Errorf("expected title Hello, got %q", page.Title)
		}
		if page.StatusCode != http.StatusOK {
			t.Errorf("expected status 200, got %d", page.StatusCode)
		}
		if !strings.HasPrefix(page.ContentType, "text/html") {
			t.Errorf("expected HTML content type, got %q", page.ContentType)
		}
	})

	t.Run("sends configured user agent", func(t *testing.T) {
		t.Parallel()

		var gotUA string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotUA = r.Header.Get("User-Agent")
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(`<html></html>`))
		}))
		defer srv.Close()

		f := NewStatic(srv.Client(), WithUserAgent("custom-agent/2.0"))
		if _, err := f.Fetch(context.Background(), srv.URL); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if gotUA != "custom-agent/2.0" {
			t.Errorf("expected custom user agent, got %q", gotUA)
		}
	})

	t.Run("applies per-site cookie and headers", func(t *testing.T) {
		t.Parallel()

		var gotCookie, gotAuth string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotCookie = r.Header.Get("Cookie")
			gotAuth = r.Header.Get("Authorization")
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(`<html></html>`))
		}))
		defer srv.Close()

		host := strings.TrimPrefix(srv.URL, "http://")
		sites := &config.File{
			Sites: map[string]config.SiteConfig{
				host: {
					Cookie:  "session=abc",
					Headers: map[string]string{"Authorization": "Bearer tok"},
				},
			},
		}

		f := NewStatic(srv.Client(), WithSiteConfigs(sites))
		if _, err := f.Fetch(context.Background(), srv.URL); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if gotCookie != "session=abc" {
			t.Errorf("expected site cookie, got %q", gotCookie)
		}
		if gotAuth != "Bearer tok" {
			t.Errorf("expected site header, got %q", gotAuth)
		}
	})

	t.Run("non-2xx status is an error", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		}))
		defer srv.Close()

		f := NewStatic(srv.Client())
		if _, err := f.Fetch(context.Background(), srv.URL); err == nil {
			t.Error("expected error for 404 response")
		}
	})

	t.Run("non-HTML content type is an error", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/pdf")
			_, _ = w.Write([]byte("%PDF-1.4"))
		}))
		defer srv.Close()

		f := NewStatic(srv.Client())
		_, err := f.Fetch(context.Background(), srv.URL)
		if !errors.Is(err, ErrUnsupportedContent) {
			t.Errorf("expected ErrUnsupportedContent, got %v", err)
		}
	})

	t.Run("missing content type is treated as HTML", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Suppress automatic content-type detection.
			w.Header()["Content-Type"] = nil
			_, _ = w.Write([]byte(`<html><head><title>Bare</title></head></html>`))
		}))
		defer srv.Close()

		f := NewStatic(srv.Client())
		page, err := f.Fetch(context.Background(), srv.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if page.Title != "Bare" {
			t.Errorf("expected title from bare response, got %q", page.Title)
		}
	})

	t.Run("decodes legacy charset from content type", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
			// "Café" with a Latin-1 encoded é (0xE9).
			_, _ = w.Write([]byte("<html><head><title>Caf\xe9</title></head></html>"))
		}))
		defer srv.Close()

		f := NewStatic(srv.Client())
		page, err := f.Fetch(context.Background(), srv.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if page.Title != "Café" {
			t.Errorf("expected decoded title Café, got %q", page.Title)
		}
	})

	t.Run("body is capped at max size", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<html><body>" + strings.Repeat("x", 4096) + "</body></html>"))
		}))
		defer srv.Close()

		f := NewStatic(srv.Client(), WithMaxBodySize(64))
		page, err := f.Fetch(context.Background(), srv.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(page.TextContent) > 64 {
			t.Errorf("expected truncated body, got %d bytes of text", len(page.TextContent))
		}
	})

	t.Run("cancelled context aborts the fetch", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(`<html></html>`))
		}))
		defer srv.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		f := NewStatic(srv.Client())
		if _, err := f.Fetch(ctx, srv.URL); err == nil {
			t.Error("expected error from cancelled context")
		}
	})
}

// TestIsHTML tests content-type classification.
func TestIsHTML(t *testing.T) {
	t.Parallel()

	htmlTypes := []string{
		"text/html",
		"text/html; charset=utf-8",
		"TEXT/HTML",
		"application/xhtml+xml",
		"",
	}
	for _, ct := range htmlTypes {
		if !isHTML(ct) {
			t.Errorf("expected %q to be HTML", ct)
		}
	}

	nonHTML := []string{
		"application/json",
		"application/pdf",
		"image/png",
		"text/plain",
	}
	for _, ct := range nonHTML {
		if isHTML(ct) {
			t.Errorf("expected %q to be non-HTML", ct)
		}
	}
}
