// Package logger provides the structured logger used across this module. It
// mirrors the severity vocabulary and text/json handler switch of the
// teacher's internal/logger package, trimmed of the mount-CLI-specific log
// file rotation (lumberjack) since this repo has no daemon-mode CLI of its
// own — just the kvsnsfsctl administration commands in cmd/.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Severity levels, matching the teacher's five-level vocabulary plus OFF.
const (
	LevelTrace slog.Level = -8
	LevelDebug slog.Level = slog.LevelDebug
	LevelInfo  slog.Level = slog.LevelInfo
	LevelWarn  slog.Level = slog.LevelWarn
	LevelError slog.Level = slog.LevelError
	LevelOff   slog.Level = 100
)

const (
	Trace   = "TRACE"
	Debug   = "DEBUG"
	Info    = "INFO"
	Warning = "WARNING"
	Error   = "ERROR"
	Off     = "OFF"
)

var severityNames = map[slog.Level]string{
	LevelTrace: Trace,
	LevelDebug: Debug,
	LevelInfo:  Info,
	LevelWarn:  Warning,
	LevelError: Error,
}

type loggerFactory struct {
	level  *slog.LevelVar
	format string // "text" or "json"
	writer io.Writer
}

var factory = &loggerFactory{
	level:  levelVarFor(Info),
	format: "text",
	writer: os.Stderr,
}

var defaultLogger = slog.New(factory.handler())

func levelVarFor(level string) *slog.LevelVar {
	v := new(slog.LevelVar)
	setLoggingLevel(level, v)
	return v
}

func setLoggingLevel(level string, v *slog.LevelVar) {
	switch level {
	case Trace:
		v.Set(LevelTrace)
	case Debug:
		v.Set(LevelDebug)
	case Info:
		v.Set(LevelInfo)
	case Warning:
		v.Set(LevelWarn)
	case Error:
		v.Set(LevelError)
	default:
		v.Set(LevelOff)
	}
}

func replaceSeverity(groups []string, a slog.Attr) slog.Attr {
	if a.Key == slog.LevelKey {
		level, _ := a.Value.Any().(slog.Level)
		name, ok := severityNames[level]
		if !ok {
			name = level.String()
		}
		return slog.Attr{Key: "severity", Value: slog.StringValue(name)}
	}
	return a
}

func (f *loggerFactory) handler() slog.Handler {
	opts := &slog.HandlerOptions{Level: f.level, ReplaceAttr: replaceSeverity}
	if f.format == "json" {
		return slog.NewJSONHandler(f.writer, opts)
	}
	return slog.NewTextHandler(f.writer, opts)
}

// SetOutput redirects the default logger, for use by tests.
func SetOutput(w io.Writer) {
	factory.writer = w
	defaultLogger = slog.New(factory.handler())
}

// SetFormat switches between "text" and "json" output.
func SetFormat(format string) {
	if format != "json" {
		format = "text"
	}
	factory.format = format
	defaultLogger = slog.New(factory.handler())
}

// SetLevel sets the minimum severity that will be emitted: one of TRACE,
// DEBUG, INFO, WARNING, ERROR, OFF.
func SetLevel(level string) {
	setLoggingLevel(level, factory.level)
}

func Tracef(format string, args ...any) {
	defaultLogger.Log(context.Background(), LevelTrace, sprintf(format, args...))
}

func Debugf(format string, args ...any) {
	defaultLogger.Debug(sprintf(format, args...))
}

func Infof(format string, args ...any) {
	defaultLogger.Info(sprintf(format, args...))
}

func Warnf(format string, args ...any) {
	defaultLogger.Warn(sprintf(format, args...))
}

func Errorf(format string, args ...any) {
	defaultLogger.Error(sprintf(format, args...))
}

func sprintf(format string, args ...any) string {
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}
