package log

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"
)

// sensitiveKeys contains attribute keys whose values are always masked.
// Site configurations may carry authentication material (cookies, API
// tokens for the rendering service), and fetch logging must not leak it.
var sensitiveKeys = map[string]bool{
	"authorization":       true,
	"proxy-authorization": true,
	"cookie":              true,
	"set-cookie":          true,
	"x-api-key":           true,
	"api_key":             true,
	"apikey":              true,
	"token":               true,
	"access_token":        true,
	"render_token":        true,
	"password":            true,
	"secret":              true,
}

// MaskValue is the string used to replace sensitive values.
const MaskValue = "***REDACTED***"

// MaxAttrLen is the maximum length in bytes for a logged string value.
// Page text and snapshots can run to megabytes; logging them whole makes
// the log unusable.
const MaxAttrLen = 256

// RedactHandler wraps an slog.Handler to mask credential-bearing attributes
// and truncate oversized string values before they reach the underlying
// handler.
//
// Design decision: We use a handler wrapper rather than a custom logger
// because it integrates with standard slog APIs and works with any
// underlying handler (text, JSON, etc.).
type RedactHandler struct {
	handler slog.Handler
}

// NewRedactHandler creates a RedactHandler wrapping the given handler.
// If handler is nil, slog.Default().Handler() is used.
func NewRedactHandler(handler slog.Handler) *RedactHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &RedactHandler{handler: handler}
}

// Enabled reports whether the handler handles records at the given level.
func (h *RedactHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle sanitizes the record's attributes and passes it on.
func (h *RedactHandler) Handle(ctx context.Context, r slog.Record) error {
	sanitized := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)

	r.Attrs(func(a slog.Attr) bool {
		sanitized.AddAttrs(h.sanitizeAttr(a))
		return true
	})

	return h.handler.Handle(ctx, sanitized)
}

// WithAttrs returns a new handler with the given attributes added.
// Attributes are sanitized before being added.
func (h *RedactHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	sanitizedAttrs := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		sanitizedAttrs[i] = h.sanitizeAttr(a)
	}
	return &RedactHandler{handler: h.handler.WithAttrs(sanitizedAttrs)}
}

// WithGroup returns a new handler with the given group name.
func (h *RedactHandler) WithGroup(name string) slog.Handler {
	return &RedactHandler{handler: h.handler.WithGroup(name)}
}

// sanitizeAttr sanitizes a single attribute, recursively handling groups.
func (h *RedactHandler) sanitizeAttr(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		sanitizedAttrs := make([]slog.Attr, len(attrs))
		for i, groupAttr := range attrs {
			sanitizedAttrs[i] = h.sanitizeAttr(groupAttr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(sanitizedAttrs...)}
	}

	if sensitiveKeys[strings.ToLower(a.Key)] {
		return slog.String(a.Key, MaskValue)
	}

	if a.Value.Kind() == slog.KindString {
		if s := a.Value.String(); len(s) > MaxAttrLen {
			return slog.String(a.Key, Truncate(s, MaxAttrLen))
		}
	}

	return a
}

// Truncate shortens s to at most n bytes without splitting a UTF-8
// sequence, appending an ellipsis marker when anything was cut.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "...(truncated)"
}
