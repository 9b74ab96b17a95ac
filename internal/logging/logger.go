// Package logging provides leveled logging and decision tracing for carbonpath.
// It offers two complementary outputs:
//   - A leveled slog.Logger for stderr (operational output)
//   - A DecisionLogger for structured JSONL traces of technology steps
//     (<data dir>/decisions.jsonl)
package logging

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// DecisionsFile is the decision log's file name inside the data directory.
const DecisionsFile = "decisions.jsonl"

// LevelTrace is a custom slog level below Debug.
// At this level the engine logs per-year totals.
const LevelTrace = slog.LevelDebug - 4

// ParseLevel maps a string level name to a slog.Level.
// Supported values: "info", "debug", "trace" (case-insensitive).
// Unknown values default to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "trace":
		return LevelTrace
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a leveled slog.Logger writing to w.
func NewLogger(level string, w io.Writer) *slog.Logger {
	lvl := ParseLevel(level)
	opts := &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Label the custom trace level
			if a.Key == slog.LevelKey {
				if lvl, ok := a.Value.Any().(slog.Level); ok && lvl == LevelTrace {
					a.Value = slog.StringValue("TRACE")
				}
			}
			return a
		},
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// sink is the file or writer shared by a DecisionLogger and its children.
type sink struct {
	mu sync.Mutex
	w  io.Writer
}

// DecisionLogger writes structured decision events as JSONL.
// It is safe for concurrent use. A nil DecisionLogger is safe to use;
// all methods are no-ops on nil receiver.
type DecisionLogger struct {
	sink   *sink
	fields map[string]any
}

// NewDecisionLogger creates a decision logger writing to dir/decisions.jsonl.
// At "info" level (the default), returns nil and no file is created.
// At "debug" or "trace" level, the file is opened for append.
// Returns nil if the file cannot be opened. All methods are nil-safe.
func NewDecisionLogger(dir string, level string) *DecisionLogger {
	lvl := ParseLevel(level)
	if lvl == slog.LevelInfo {
		return nil
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil
	}

	path := filepath.Join(dir, DecisionsFile)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil
	}

	return NewDecisionWriter(f)
}

// NewDecisionWriter creates a decision logger writing to w. If w is an
// io.Closer, Close closes it.
func NewDecisionWriter(w io.Writer) *DecisionLogger {
	if w == nil {
		return nil
	}
	return &DecisionLogger{sink: &sink{w: w}}
}

// With returns a child logger that adds fields to every event. The child
// shares the parent's output; closing either closes both.
func (dl *DecisionLogger) With(fields map[string]any) *DecisionLogger {
	if dl == nil {
		return nil
	}
	merged := make(map[string]any, len(dl.fields)+len(fields))
	for k, v := range dl.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &DecisionLogger{sink: dl.sink, fields: merged}
}

// Log writes a decision event as a single JSONL line.
// A "time" field is added automatically. The caller's map is not mutated;
// event keys win over fields from With.
// Safe to call on nil receiver.
func (dl *DecisionLogger) Log(event map[string]any) {
	if dl == nil || dl.sink == nil {
		return
	}

	entry := make(map[string]any, len(dl.fields)+len(event)+1)
	for k, v := range dl.fields {
		entry[k] = v
	}
	for k, v := range event {
		entry[k] = v
	}
	entry["time"] = time.Now().UTC().Format(time.RFC3339Nano)

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	data = append(data, '\n')

	dl.sink.mu.Lock()
	defer dl.sink.mu.Unlock()
	if dl.sink.w == nil {
		return
	}
	_, _ = dl.sink.w.Write(data)
}

// Close closes the underlying output. Safe to call on nil receiver.
func (dl *DecisionLogger) Close() {
	if dl == nil || dl.sink == nil {
		return
	}

	dl.sink.mu.Lock()
	defer dl.sink.mu.Unlock()

	if c, ok := dl.sink.w.(io.Closer); ok {
		c.Close()
	}
	dl.sink.w = nil
}
