package crawler

import (
	"fmt"
	"net/url"
	"strings"
)

// trackingParamPrefix matches query parameter families stripped during
// canonicalization. Tracking parameters do not change page content, so
// leaving them in would split the visited set across equivalent URLs.
const trackingParamPrefix = "utm_"

// trackingParamNames are exact query parameter names stripped during
// canonicalization.
var trackingParamNames = map[string]bool{
	"ref":    true,
	"source": true,
}

// nonContentSuffixes are URL suffixes that identify binary or media
// resources the crawler never follows.
var nonContentSuffixes = []string{
	".pdf", ".doc", ".docx", ".xls", ".xlsx", ".ppt", ".pptx",
	".zip", ".rar", ".tar", ".gz",
	".jpg", ".jpeg", ".png", ".gif", ".svg", ".webp", ".ico",
	".mp4", ".avi", ".mov", ".wmv", ".flv",
	".mp3", ".wav", ".ogg",
}

// Canonicalize normalizes a raw URL into the comparable form used as the
// visited-set key. It strips the fragment and known tracking parameters,
// lower-cases the host, and defaults an empty path to "/".
//
// Canonicalization is deterministic and idempotent: the same input always
// yields the same output or the same rejection. Visited-set correctness
// depends on this.
func Canonicalize(raw string) (string, error) {
	if raw == "" {
		return "", fmt.Errorf("empty URL")
	}

	// Fragments never change the fetched content.
	if idx := strings.IndexByte(raw, '#'); idx >= 0 {
		raw = raw[:idx]
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("unparseable URL: %w", err)
	}

	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("missing scheme or host: %q", raw)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}

	if u.RawQuery != "" {
		q := u.Query()
		for key := range q {
			lower := strings.ToLower(key)
			if strings.HasPrefix(lower, trackingParamPrefix) || trackingParamNames[lower] {
				q.Del(key)
			}
		}
		// Encode sorts keys, which keeps the result stable regardless of
		// the original parameter order. Value case is preserved.
		u.RawQuery = q.Encode()
	}

	u.Host = strings.ToLower(u.Host)
	if u.Path == "" {
		u.Path = "/"
	}
	u.Fragment = ""

	return u.String(), nil
}

// IsValid reports whether raw parses with a non-empty scheme and host.
func IsValid(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && u.Scheme != "" && u.Host != ""
}

// ShouldFollow reports whether a discovered link is worth enqueueing:
// it must be valid, must not point at a non-content resource, and, when
// sameDomain is set, must share the base domain (case-insensitively).
func ShouldFollow(raw, baseDomain string, sameDomain bool) bool {
	if !IsValid(raw) {
		return false
	}

	lower := strings.ToLower(raw)
	if strings.HasPrefix(lower, "mailto:") || strings.HasPrefix(lower, "javascript:") {
		return false
	}

	// Canonical URLs carry no fragment; a residual '#' means the caller
	// handed us something unnormalized.
	if strings.Contains(raw, "#") {
		return false
	}

	for _, suffix := range nonContentSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return false
		}
	}

	if sameDomain {
		u, err := url.Parse(raw)
		if err != nil || !strings.EqualFold(u.Host, baseDomain) {
			return false
		}
	}

	return true
}

// HostOf extracts the lower-cased host component of a URL.
// Returns an empty string for unparseable input.
func HostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Host)
}
