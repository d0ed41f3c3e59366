// Package corelog provides the structured logging façade shared across the
// engine. It wraps charmbracelet/log the way the teacher's legacy logger
// wrapped its own infrastructure adapter: callers get a small, nil-safe API
// and never touch the underlying library directly.
package corelog

import (
	"io"
	"os"
	"sort"

	cblog "github.com/charmbracelet/log"
)

// Options configures a Logger at construction time.
type Options struct {
	Level     string // debug, info, warn, error; defaults to info
	Writer    io.Writer
	Component string
}

// Logger is a structured, leveled logger. A nil *Logger is valid and every
// method on it is a no-op, so components can accept one optionally.
type Logger struct {
	base   *cblog.Logger
	fields []interface{}
}

// New creates a configured Logger. An empty Options yields an info-level
// logger writing to stderr.
func New(opts Options) *Logger {
	writer := opts.Writer
	if writer == nil {
		writer = os.Stderr
	}

	level := cblog.InfoLevel
	if opts.Level != "" {
		if parsed, err := cblog.ParseLevel(opts.Level); err == nil {
			level = parsed
		}
	}

	base := cblog.NewWithOptions(writer, cblog.Options{
		Level:           level,
		ReportTimestamp: true,
	})

	var fields []interface{}
	if opts.Component != "" {
		fields = []interface{}{"component", opts.Component}
	}

	return &Logger{base: base.With(fields...)}
}

// Noop returns a Logger that discards everything.
func Noop() *Logger {
	return nil
}

// With returns a derived Logger that always attaches the given key/value
// pairs, sorted by key for deterministic output.
func (l *Logger) With(fields map[string]interface{}) *Logger {
	if l == nil || l.base == nil || len(fields) == 0 {
		return l
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	args := make([]interface{}, 0, len(fields)*2)
	for _, k := range keys {
		args = append(args, k, fields[k])
	}

	return &Logger{base: l.base.With(args...)}
}

func (l *Logger) Debug(msg string, kv ...interface{}) {
	if l == nil || l.base == nil {
		return
	}
	l.base.Debug(msg, kv...)
}

func (l *Logger) Info(msg string, kv ...interface{}) {
	if l == nil || l.base == nil {
		return
	}
	l.base.Info(msg, kv...)
}

func (l *Logger) Warn(msg string, kv ...interface{}) {
	if l == nil || l.base == nil {
		return
	}
	l.base.Warn(msg, kv...)
}

func (l *Logger) Error(msg string, kv ...interface{}) {
	if l == nil || l.base == nil {
		return
	}
	l.base.Error(msg, kv...)
}
