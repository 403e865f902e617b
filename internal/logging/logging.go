// Package logging provides the logger injected into every autopaste component.
package logging

import (
	"io"
	"os"

	"github.com/pterm/pterm"
)

// Logger is a leveled structured logger. Debug output is gated by a single
// verbosity flag fixed when the logger is built.
type Logger struct {
	pl    *pterm.Logger
	debug bool
	attrs []any
}

// New returns a logger writing to w. A nil w means stderr.
func New(w io.Writer, debug bool) *Logger {
	if w == nil {
		w = os.Stderr
	}
	level := pterm.LogLevelInfo
	if debug {
		level = pterm.LogLevelDebug
	}
	pl := pterm.DefaultLogger.
		WithWriter(w).
		WithLevel(level).
		WithTime(false)
	return &Logger{pl: pl, debug: debug}
}

// Nop discards everything.
func Nop() *Logger {
	return New(io.Discard, false)
}

// DebugEnabled reports the verbosity flag.
func (l *Logger) DebugEnabled() bool {
	return l.debug
}

// With returns a logger that adds kv to every line.
func (l *Logger) With(kv ...any) *Logger {
	attrs := make([]any, 0, len(l.attrs)+len(kv))
	attrs = append(attrs, l.attrs...)
	attrs = append(attrs, kv...)
	return &Logger{pl: l.pl, debug: l.debug, attrs: attrs}
}

func (l *Logger) Debug(msg string, kv ...any) {
	if !l.debug {
		return
	}
	l.pl.Debug(msg, l.args(kv))
}

func (l *Logger) Info(msg string, kv ...any) {
	l.pl.Info(msg, l.args(kv))
}

func (l *Logger) Warn(msg string, kv ...any) {
	l.pl.Warn(msg, l.args(kv))
}

func (l *Logger) Error(msg string, kv ...any) {
	l.pl.Error(msg, l.args(kv))
}

func (l *Logger) args(kv []any) []pterm.LoggerArgument {
	if len(l.attrs) == 0 {
		return l.pl.Args(kv...)
	}
	all := make([]any, 0, len(l.attrs)+len(kv))
	all = append(all, l.attrs...)
	all = append(all, kv...)
	return l.pl.Args(all...)
}
