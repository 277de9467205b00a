package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

// TestRenderedFetch tests the rendering-service fetch path.
func TestRenderedFetch(t *testing.T) {
	t.Parallel()

	t.Run("posts the target URL and extracts the rendered document", func(t *testing.T) {
		t.Parallel()

		var gotURL, gotContentType string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				t.Errorf("expected POST, got %s", r.Method)
			}
			gotContentType = r.Header.Get("Content-Type")

			var req struct {
				URL string `json:"url"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("failed to decode render request: %v", err)
			}
			gotURL = req.URL

			_, _ = w.Write([]byte(`<html><head><title>Rendered</title></head><body>dynamic</body></html>`))
		}))
		defer srv.Close()

		f := NewRendered(srv.Client(), srv.URL)
		page, err := f.Fetch(context.Background(), "https://app.example.com/dash")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if gotURL != "https://app.example.com/dash" {
			t.Errorf("expected target URL in request body, got %q", gotURL)
		}
		if gotContentType != "application/json" {
			t.Errorf("expected JSON request, got %q", gotContentType)
		}
		if page.Title != "Rendered" {
			t.Errorf("expected rendered title, got %q", page.Title)
		}
		if page.URL != "https://app.example.com/dash" {
			t.Errorf("expected page URL to be the target, got %q", page.URL)
		}
	})

	t.Run("sends bearer token when configured", func(t *testing.T) {
		t.Parallel()

		var gotAuth string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			_, _ = w.Write([]byte(`<html></html>`))
		}))
		defer srv.Close()

		f := NewRendered(srv.Client(), srv.URL, WithRenderToken("secret"))
		if _, err := f.Fetch(context.Background(), "https://example.com/"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if gotAuth != "Bearer secret" {
			t.Errorf("expected bearer token, got %q", gotAuth)
		}
	})

	t.Run("missing endpoint returns ErrNoRenderEndpoint", func(t *testing.T) {
		t.Parallel()

		f := NewRendered(http.DefaultClient, "")
		_, err := f.Fetch(context.Background(), "https://example.com/")
		if !errors.Is(err, ErrNoRenderEndpoint) {
			t.Errorf("expected ErrNoRenderEndpoint, got %v", err)
		}
	})

	t.Run("rendering service error status is an error", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "render timeout", http.StatusBadGateway)
		}))
		defer srv.Close()

		f := NewRendered(srv.Client(), srv.URL)
		if _, err := f.Fetch(context.Background(), "https://example.com/"); err == nil {
			t.Error("expected error for 502 from rendering service")
		}
	})
}
