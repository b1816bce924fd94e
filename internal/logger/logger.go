// Package logger provides the structured logging sink used across docrag.
//
// Components receive a Logger at construction time; nothing in the core
// looks a logger up globally. The default implementation writes through
// charmbracelet/log so that CLI output and desktop-embedded output share
// the same format.
package logger

import (
	"io"
	"os"
	"strings"

	charmlog "github.com/charmbracelet/log"
	"github.com/charmbracelet/lipgloss"
)

// Level is a logging severity name.
type Level string

// Supported levels.
const (
	DebugLevel    Level = "debug"
	InfoLevel     Level = "info"
	WarnLevel     Level = "warn"
	ErrorLevel    Level = "error"
	CriticalLevel Level = "critical"
)

// criticalLevel sits between charm's error and fatal levels.
// Fatal is avoided because the charm Fatal helpers exit the process.
const criticalLevel = charmlog.ErrorLevel + 2

// Logger is the diagnostics sink injected into every component.
type Logger interface {
	Debug(msg string, keyvals ...any)
	Info(msg string, keyvals ...any)
	Warn(msg string, keyvals ...any)
	Error(msg string, keyvals ...any)
	// Critical reports a failure that aborted a multi-step operation.
	Critical(msg string, keyvals ...any)
	// With returns a logger that adds keyvals to every entry.
	With(keyvals ...any) Logger
}

// Config configures a charm-backed logger.
type Config struct {
	Level      Level
	Output     io.Writer
	JSON       bool
	TimeFormat string
}

// DefaultConfig returns info-level text logging to stderr.
func DefaultConfig() Config {
	return Config{
		Level:      InfoLevel,
		Output:     os.Stderr,
		TimeFormat: "15:04:05",
	}
}

type charmLogger struct {
	l *charmlog.Logger
}

// New creates a Logger from cfg. Zero-valued fields fall back to DefaultConfig.
func New(cfg Config) Logger {
	def := DefaultConfig()
	if cfg.Output == nil {
		cfg.Output = def.Output
	}
	if cfg.TimeFormat == "" {
		cfg.TimeFormat = def.TimeFormat
	}
	l := charmlog.NewWithOptions(cfg.Output, charmlog.Options{
		ReportTimestamp: true,
		TimeFormat:      cfg.TimeFormat,
		Level:           ParseLevel(string(cfg.Level)).charm(),
	})
	if cfg.JSON {
		l.SetFormatter(charmlog.JSONFormatter)
	} else {
		l.SetStyles(styles())
	}
	return &charmLogger{l: l}
}

// ParseLevel maps a level name to a Level, defaulting to info.
func ParseLevel(s string) Level {
	switch Level(strings.ToLower(strings.TrimSpace(s))) {
	case DebugLevel:
		return DebugLevel
	case WarnLevel, "warning":
		return WarnLevel
	case ErrorLevel:
		return ErrorLevel
	case CriticalLevel, "crit":
		return CriticalLevel
	default:
		return InfoLevel
	}
}

func (lv Level) charm() charmlog.Level {
	switch lv {
	case DebugLevel:
		return charmlog.DebugLevel
	case WarnLevel:
		return charmlog.WarnLevel
	case ErrorLevel:
		return charmlog.ErrorLevel
	case CriticalLevel:
		return criticalLevel
	default:
		return charmlog.InfoLevel
	}
}

func styles() *charmlog.Styles {
	s := charmlog.DefaultStyles()
	s.Levels[criticalLevel] = lipgloss.NewStyle().
		SetString("CRIT").
		Bold(true).
		MaxWidth(4).
		Foreground(lipgloss.Color("201"))
	return s
}

func (c *charmLogger) Debug(msg string, keyvals ...any) { c.l.Debug(msg, keyvals...) }
func (c *charmLogger) Info(msg string, keyvals ...any)  { c.l.Info(msg, keyvals...) }
func (c *charmLogger) Warn(msg string, keyvals ...any)  { c.l.Warn(msg, keyvals...) }
func (c *charmLogger) Error(msg string, keyvals ...any) { c.l.Error(msg, keyvals...) }

func (c *charmLogger) Critical(msg string, keyvals ...any) {
	c.l.Log(criticalLevel, msg, append([]any{"severity", string(CriticalLevel)}, keyvals...)...)
}

func (c *charmLogger) With(keyvals ...any) Logger {
	return &charmLogger{l: c.l.With(keyvals...)}
}

// Discard returns a Logger that drops every entry.
func Discard() Logger {
	return New(Config{Output: io.Discard, Level: CriticalLevel})
}
