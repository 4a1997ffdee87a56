// Package logger provides the structured logger shared by the CLI, the HTTP
// server and the forge sessions.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger is the logging surface used across visualforge. It wraps
// slog.Logger so callers can inject a recorder in tests.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	With(args ...any) Logger
	WithGroup(name string) Logger
}

// Format selects the handler used for output.
type Format string

const (
	FormatPretty Format = "pretty"
	FormatText   Format = "text"
	FormatJSON   Format = "json"
)

// ParseFormat accepts "pretty", "text" and "json". The empty string selects
// FormatPretty.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatPretty, nil
	case FormatPretty, FormatText, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("logger: unknown format %q", s)
	}
}

// ParseLevel converts a level name to slog.Level. The empty string is info.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("logger: unknown level %q", level)
	}
}

type Options struct {
	Format Format
	Level  slog.Level
	// AddSource annotates records with file:line.
	AddSource bool
	// NoColor disables ANSI colors in the pretty format.
	NoColor bool
}

type slogLogger struct {
	logger *slog.Logger
}

// FromHandler wraps an arbitrary slog.Handler.
func FromHandler(h slog.Handler) Logger {
	return &slogLogger{logger: slog.New(h)}
}

// New builds a Logger writing to w.
func New(w io.Writer, opts Options) Logger {
	hopts := &slog.HandlerOptions{AddSource: opts.AddSource, Level: opts.Level}
	switch opts.Format {
	case FormatJSON:
		return FromHandler(slog.NewJSONHandler(w, hopts))
	case FormatText:
		return FromHandler(slog.NewTextHandler(w, hopts))
	default:
		return FromHandler(NewPrettyHandler(w, hopts, !opts.NoColor))
	}
}

// Default writes pretty info-level output to stderr. Colors are disabled
// when NO_COLOR is set.
func Default() Logger {
	_, noColor := os.LookupEnv("NO_COLOR")
	return New(os.Stderr, Options{Format: FormatPretty, Level: slog.LevelInfo, NoColor: noColor})
}

// Nop discards everything.
func Nop() Logger {
	return FromHandler(slog.DiscardHandler)
}

type loggerKey struct{}

// FromContext returns the context's logger, or Default when none is set.
func FromContext(ctx context.Context) Logger {
	if l, ok := ctx.Value(loggerKey{}).(Logger); ok {
		return l
	}
	return Default()
}

func WithContext(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

func (l *slogLogger) Debug(msg string, args ...any) { l.logger.Debug(msg, args...) }
func (l *slogLogger) Info(msg string, args ...any)  { l.logger.Info(msg, args...) }
func (l *slogLogger) Warn(msg string, args ...any)  { l.logger.Warn(msg, args...) }
func (l *slogLogger) Error(msg string, args ...any) { l.logger.Error(msg, args...) }

func (l *slogLogger) With(args ...any) Logger {
	return &slogLogger{logger: l.logger.With(args...)}
}

func (l *slogLogger) WithGroup(name string) Logger {
	return &slogLogger{logger: l.logger.WithGroup(name)}
}
