// Package logging is the levelled logger shared by every package.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync/atomic"
)

type Logger interface {
	DebugEnabled() bool
	SetDebug(enabled bool)
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	}
	return fmt.Sprintf("LEVEL(%d)", int(l))
}

// Options configures a DefaultLogger. Debug and info lines go to Out,
// warnings and errors to ErrOut; nil writers mean stdout and stderr.
type Options struct {
	Prefix string
	Debug  bool
	Out    io.Writer
	ErrOut io.Writer
}

// DefaultLogger writes timestamped, level-tagged lines. Debug output can be
// toggled while other goroutines log.
type DefaultLogger struct {
	prefix string
	debug  atomic.Bool
	out    *log.Logger
	err    *log.Logger
}

func New(opts Options) *DefaultLogger {
	out, errOut := opts.Out, opts.ErrOut
	if out == nil {
		out = os.Stdout
	}
	if errOut == nil {
		errOut = os.Stderr
	}
	flags := log.LstdFlags | log.Lmicroseconds
	l := &DefaultLogger{
		prefix: opts.Prefix,
		out:    log.New(out, "", flags),
		err:    log.New(errOut, "", flags),
	}
	l.debug.Store(opts.Debug)
	return l
}

func NewDefaultLogger(prefix string, debug bool) *DefaultLogger {
	return New(Options{Prefix: prefix, Debug: debug})
}

func (l *DefaultLogger) DebugEnabled() bool    { return l.debug.Load() }
func (l *DefaultLogger) SetDebug(enabled bool) { l.debug.Store(enabled) }

// Logf writes one line at level. Debug lines are dropped unless enabled.
func (l *DefaultLogger) Logf(level Level, format string, args ...any) {
	if level <= LevelDebug && !l.DebugEnabled() {
		return
	}
	sink := l.out
	if level >= LevelWarn {
		sink = l.err
	}
	msg := fmt.Sprintf(format, args...)
	if l.prefix == "" {
		sink.Printf("%s: %s", level, msg)
		return
	}
	sink.Printf("[%s] %s: %s", l.prefix, level, msg)
}

func (l *DefaultLogger) Debugf(format string, args ...any) { l.Logf(LevelDebug, format, args...) }
func (l *DefaultLogger) Infof(format string, args ...any)  { l.Logf(LevelInfo, format, args...) }
func (l *DefaultLogger) Warnf(format string, args ...any)  { l.Logf(LevelWarn, format, args...) }
func (l *DefaultLogger) Errorf(format string, args ...any) { l.Logf(LevelError, format, args...) }

type nopLogger struct{}

func NewNopLogger() Logger { return nopLogger{} }

func (nopLogger) DebugEnabled() bool    { return false }
func (nopLogger) SetDebug(bool)         {}
func (nopLogger) Debugf(string, ...any) {}
func (nopLogger) Infof(string, ...any)  {}
func (nopLogger) Warnf(string, ...any)  {}
func (nopLogger) Errorf(string, ...any) {}

// OrNop returns l, or a no-op logger when l is nil. Never returns nil.
func OrNop(l Logger) Logger {
	if l == nil {
		return NewNopLogger()
	}
	return l
}
