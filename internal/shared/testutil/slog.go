// Package testutil provides test helpers shared across packages.
package testutil

import (
	"context"
	"log/slog"
	"sync"
)

// Record is one captured log record, with attributes flattened into a map
// for easy assertions.
type Record struct {
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// CaptureHandler is a slog.Handler that keeps every record in memory so
// tests can assert on structured log output. All levels are captured.
type CaptureHandler struct {
	store *recordStore
	attrs []slog.Attr
}

type recordStore struct {
	mu      sync.Mutex
	records []Record
}

// NewCaptureLogger returns a logger whose records the returned handler
// captures.
func NewCaptureLogger() (*slog.Logger, *CaptureHandler) {
	h := &CaptureHandler{store: &recordStore{}}
	return slog.New(h), h
}

// Enabled implements slog.Handler.
func (h *CaptureHandler) Enabled(context.Context, slog.Level) bool {
	return true
}

// Handle implements slog.Handler.
func (h *CaptureHandler) Handle(_ context.Context, r slog.Record) error {
	attrs := make(map[string]any, r.NumAttrs()+len(h.attrs))
	for _, a := range h.attrs {
		attrs[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.Any()
		return true
	})

	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	h.store.records = append(h.store.records, Record{
		Level:   r.Level,
		Message: r.Message,
		Attrs:   attrs,
	})
	return nil
}

// WithAttrs implements slog.Handler. The derived handler shares the record
// store of its parent.
func (h *CaptureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &CaptureHandler{store: h.store, attrs: merged}
}

// WithGroup implements slog.Handler. Groups are ignored; records stay flat
// for assertions.
func (h *CaptureHandler) WithGroup(string) slog.Handler {
	return h
}

// Records returns a copy of every captured record in emission order.
func (h *CaptureHandler) Records() []Record {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	out := make([]Record, len(h.store.records))
	copy(out, h.store.records)
	return out
}

// ByLevel returns the captured records at the given level.
func (h *CaptureHandler) ByLevel(level slog.Level) []Record {
	var out []Record
	for _, r := range h.Records() {
		if r.Level == level {
			out = append(out, r)
		}
	}
	return out
}

// Has reports whether any record carries exactly the given message.
func (h *CaptureHandler) Has(message string) bool {
	for _, r := range h.Records() {
		if r.Message == message {
			return true
		}
	}
	return false
}

// HasAttr reports whether any record carries the attribute. Integer
// attributes come back as int64 from slog, so pass int64 values.
func (h *CaptureHandler) HasAttr(key string, value any) bool {
	for _, r := range h.Records() {
		if got, ok := r.Attrs[key]; ok && got == value {
			return true
		}
	}
	return false
}

// Reset discards every captured record.
func (h *CaptureHandler) Reset() {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	h.store.records = h.store.records[:0]
}
