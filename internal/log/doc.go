// Package log provides a log/slog handler wrapper that masks
// credential-bearing attributes (site cookies, rendering-service tokens)
// and truncates oversized string values such as page text.
//
// Usage:
//
//	handler := log.NewRedactHandler(slog.NewTextHandler(os.Stderr, nil))
//	logger := slog.New(handler)
package log
