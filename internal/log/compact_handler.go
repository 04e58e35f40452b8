package log

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
)

// DefaultMaxValueLen is the length above which string attribute values are
// truncated. Long enough to keep whole URLs and most link lists readable,
// short enough that a document body never floods the log.
const DefaultMaxValueLen = 256

// truncationMark is appended to truncated values so readers can tell a
// shortened value from a naturally short one.
const truncationMark = "...(truncated)"

// CompactHandler wraps an slog.Handler to keep log records readable.
// It truncates oversized string attribute values and rewrites absolute
// paths under a configured root to their relative form before passing
// records to the underlying handler.
//
// Design decision: We use a handler wrapper rather than a custom logger
// because:
//  1. It integrates seamlessly with standard slog APIs
//  2. It works with any underlying handler (text, JSON, etc.)
//  3. Call sites stay oblivious; they log full values and the handler
//     decides presentation
type CompactHandler struct {
	// handler is the underlying slog handler that receives compacted records.
	handler slog.Handler

	// maxValueLen is the truncation threshold for string values.
	maxValueLen int

	// root, when non-empty, is stripped from path-shaped values.
	root string
}

// CompactOption configures a CompactHandler.
type CompactOption func(*CompactHandler)

// WithMaxValueLen sets the truncation threshold for string values.
// Non-positive values leave the default in place.
func WithMaxValueLen(n int) CompactOption {
	return func(h *CompactHandler) {
		if n > 0 {
			h.maxValueLen = n
		}
	}
}

// WithRoot sets the directory that path values are shown relative to.
func WithRoot(root string) CompactOption {
	return func(h *CompactHandler) {
		h.root = root
	}
}

// NewCompactHandler creates a new CompactHandler wrapping the given handler.
// If handler is nil, the returned CompactHandler uses slog.Default().Handler().
func NewCompactHandler(handler slog.Handler, opts ...CompactOption) *CompactHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	h := &CompactHandler{handler: handler, maxValueLen: DefaultMaxValueLen}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Enabled reports whether the handler handles records at the given level.
// It delegates to the underlying handler.
func (h *CompactHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle compacts the record's attributes and passes it to the underlying handler.
func (h *CompactHandler) Handle(ctx context.Context, r slog.Record) error {
	compacted := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)

	r.Attrs(func(a slog.Attr) bool {
		compacted.AddAttrs(h.compactAttr(a))
		return true
	})

	return h.handler.Handle(ctx, compacted)
}

// WithAttrs returns a new handler with the given attributes added.
// Attributes are compacted before being added.
func (h *CompactHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	compacted := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		compacted[i] = h.compactAttr(a)
	}
	return &CompactHandler{
		handler:     h.handler.WithAttrs(compacted),
		maxValueLen: h.maxValueLen,
		root:        h.root,
	}
}

// WithGroup returns a new handler with the given group name.
func (h *CompactHandler) WithGroup(name string) slog.Handler {
	return &CompactHandler{
		handler:     h.handler.WithGroup(name),
		maxValueLen: h.maxValueLen,
		root:        h.root,
	}
}

// compactAttr compacts a single attribute, recursively handling groups.
func (h *CompactHandler) compactAttr(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		compacted := make([]slog.Attr, len(attrs))
		for i, groupAttr := range attrs {
			compacted[i] = h.compactAttr(groupAttr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(compacted...)}
	}

	if a.Value.Kind() != slog.KindString {
		return a
	}

	val := a.Value.String()
	val = h.relativize(val)
	if len(val) > h.maxValueLen {
		val = val[:h.maxValueLen] + truncationMark
	}
	return slog.String(a.Key, val)
}

// relativize rewrites a value to be relative to the configured root when it
// is a path under that root. Values that merely mention the root somewhere
// in the middle are left alone.
func (h *CompactHandler) relativize(val string) string {
	if h.root == "" || !strings.HasPrefix(val, h.root) {
		return val
	}
	rel, err := filepath.Rel(h.root, val)
	if err != nil || strings.HasPrefix(rel, "..") {
		return val
	}
	return rel
}

// NewCompactLogger creates a new slog.Logger with compact handling.
//
// Parameters:
//   - w: The io.Writer to write log output to (typically os.Stderr)
//   - verbose: If true, sets log level to Debug; otherwise Warn
//
// Returns a *slog.Logger that can be used with slog.SetDefault() or passed
// to components that accept *slog.Logger.
func NewCompactLogger(w io.Writer, verbose bool, opts ...CompactOption) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	text := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(NewCompactHandler(text, opts...))
}
