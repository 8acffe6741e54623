package log

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"unicode/utf8"
)

// sensitiveKeys contains attribute keys whose values are always masked.
// Per-site config may carry auth headers for staging environments, and
// those must never leak into shared audit logs.
var sensitiveKeys = map[string]bool{
	"authorization":       true,
	"cookie":              true,
	"set-cookie":          true,
	"x-api-key":           true,
	"x-auth-token":        true,
	"proxy-authorization": true,
	"password":            true,
	"secret":              true,
	"token":               true,
	"api_key":             true,
	"apikey":              true,
	"api-key":             true,
	"access_token":        true,
	"credential":          true,
	"credentials":         true,
}

// MaskValue is the string used to replace masked values.
const MaskValue = "***REDACTED***"

// MaxValueLen bounds logged string values. Crawl logging routinely
// carries page titles, meta descriptions, and URL lists; truncating
// keeps a verbose audit log readable without losing the signal.
const MaxValueLen = 256

// TrimHandler wraps an slog.Handler to keep crawl logs usable: string
// attribute values are truncated to MaxValueLen, and values under
// credential-like keys are masked. It works with any underlying
// handler (text, JSON) and composes with the standard slog APIs.
type TrimHandler struct {
	handler slog.Handler
}

// NewTrimHandler creates a TrimHandler wrapping the given handler.
// If handler is nil, slog.Default().Handler() is used.
func NewTrimHandler(handler slog.Handler) *TrimHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &TrimHandler{handler: handler}
}

// Enabled reports whether the handler handles records at the given level.
func (h *TrimHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle rewrites the record's attributes and passes it on.
func (h *TrimHandler) Handle(ctx context.Context, r slog.Record) error {
	rewritten := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)

	r.Attrs(func(a slog.Attr) bool {
		rewritten.AddAttrs(h.rewriteAttr(a))
		return true
	})

	return h.handler.Handle(ctx, rewritten)
}

// WithAttrs returns a new handler with the given attributes added,
// rewritten first.
func (h *TrimHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	rewritten := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		rewritten[i] = h.rewriteAttr(a)
	}
	return &TrimHandler{handler: h.handler.WithAttrs(rewritten)}
}

// WithGroup returns a new handler with the given group name.
func (h *TrimHandler) WithGroup(name string) slog.Handler {
	return &TrimHandler{handler: h.handler.WithGroup(name)}
}

// rewriteAttr masks or truncates a single attribute, recursing into groups.
func (h *TrimHandler) rewriteAttr(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		rewritten := make([]slog.Attr, len(attrs))
		for i, groupAttr := range attrs {
			rewritten[i] = h.rewriteAttr(groupAttr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(rewritten...)}
	}

	if sensitiveKeys[strings.ToLower(a.Key)] {
		return slog.String(a.Key, MaskValue)
	}

	if a.Value.Kind() == slog.KindString {
		if v := a.Value.String(); len(v) > MaxValueLen {
			return slog.String(a.Key, Truncate(v, MaxValueLen))
		}
	}

	return a
}

// Truncate shortens s to at most n bytes without splitting a UTF-8
// rune, appending an ellipsis marker when anything was cut.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}

// NewLogger creates an slog.Logger writing human-readable text to w.
// Verbose selects debug level; otherwise only warnings and errors are
// logged so report output on stdout stays clean.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}

	return slog.New(NewTrimHandler(slog.NewTextHandler(w, opts)))
}

// NewJSONLogger creates an slog.Logger writing JSON to w, for log
// aggregation setups. Same level semantics as NewLogger.
func NewJSONLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}

	return slog.New(NewTrimHandler(slog.NewJSONHandler(w, opts)))
}
