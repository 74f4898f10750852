// Package testutil provides test helpers shared across packages, currently
// a capturing slog handler for asserting on structured log output.
package testutil

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

// Record is one captured log entry.
type Record struct {
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// CaptureHandler is an slog.Handler that keeps every record in memory so
// tests can assert on what a stage logged.
type CaptureHandler struct {
	mu      sync.Mutex
	records []Record
}

// NewTestLogger returns a logger backed by a capture handler.
func NewTestLogger(t *testing.T) (*slog.Logger, *CaptureHandler) {
	t.Helper()
	h := &CaptureHandler{}
	return slog.New(h), h
}

// Handle implements slog.Handler.
func (h *CaptureHandler) Handle(_ context.Context, r slog.Record) error {
	attrs := make(map[string]any)
	r.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.Any()
		return true
	})

	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, Record{Level: r.Level, Message: r.Message, Attrs: attrs})
	return nil
}

// Enabled implements slog.Handler; tests capture every level.
func (h *CaptureHandler) Enabled(context.Context, slog.Level) bool { return true }

// WithAttrs implements slog.Handler.
func (h *CaptureHandler) WithAttrs([]slog.Attr) slog.Handler { return h }

// WithGroup implements slog.Handler.
func (h *CaptureHandler) WithGroup(string) slog.Handler { return h }

// Records returns a copy of everything captured so far.
func (h *CaptureHandler) Records() []Record {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Record, len(h.records))
	copy(out, h.records)
	return out
}

// ContainsMessage reports whether any record at the level contains the
// message substring.
func (h *CaptureHandler) ContainsMessage(level slog.Level, message string) bool {
	for _, r := range h.Records() {
		if r.Level == level && strings.Contains(r.Message, message) {
			return true
		}
	}
	return false
}
